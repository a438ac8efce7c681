package llm

import (
	"fmt"
	"strings"
)

const generateReplyFormat = `Provide a JSON response with the following structure:
{
  "title": "Recipe Title",
  "description": "Brief description of the recipe",
  "ingredients": ["Ingredient 1 with quantity", "Ingredient 2 with quantity", ...],
  "instructions": ["Step 1", "Step 2", ...],
  "cookingTime": time in minutes (integer),
  "servings": number of servings (integer),
  "difficulty": "Easy", "Medium", or "Hard",
  "cuisineType": "The cuisine type",
  "imageUrl": ""
}
Respond with the JSON object only.`

const enhanceReplyFormat = `Provide a JSON response with the following structure:
{
  "title": "Enhanced Recipe Title",
  "description": "Brief description of the enhanced recipe",
  "ingredients": ["Ingredient 1 with quantity", "Ingredient 2 with quantity", ...],
  "instructions": ["Step 1", "Step 2", ...],
  "enhancementSummary": ["Enhancement 1", "Enhancement 2", ...],
  "cookingTime": time in minutes (integer),
  "servings": number of servings (integer),
  "difficulty": "Easy", "Medium", or "Hard",
  "cuisineType": "The cuisine type"
}
Respond with the JSON object only.`

// Values the UI sends when the user picked no constraint.
var (
	noPreferenceValues = []string{"none", "no preference", "no preferences"}
	anyCuisineValues   = []string{"any", "any cuisine"}
)

// buildGeneratePrompt renders the generation prompt. Constraint lines are left
// out entirely when the input is empty or a "no preference" value.
func buildGeneratePrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed recipe using the following ingredients: %s.\n\n", strings.Join(req.Ingredients, ", "))

	if preferences, ok := constraint(req.Preferences, noPreferenceValues); ok {
		fmt.Fprintf(&b, "Dietary preferences: %s.\n", preferences)
	}
	if cuisine, ok := constraint(req.CuisineType, anyCuisineValues); ok {
		fmt.Fprintf(&b, "Cuisine type: %s.\n", cuisine)
	}
	if extra, ok := constraint(req.AdditionalInstructions, nil); ok {
		fmt.Fprintf(&b, "Additional instructions: %s.\n", extra)
	}

	b.WriteString("\n")
	b.WriteString(generateReplyFormat)
	return b.String()
}

// buildEnhancePrompt renders the enhancement prompt for an existing recipe.
func buildEnhancePrompt(req EnhanceRequest) string {
	var b strings.Builder
	b.WriteString("Enhance the following recipe based on the specified focus areas. ")
	b.WriteString("Maintain the core dish but improve it based on the enhancement focus.\n\n")
	fmt.Fprintf(&b, "Recipe Title: %s\n\n", req.Title)
	fmt.Fprintf(&b, "Ingredients:\n%s\n\n", strings.Join(req.Ingredients, "\n"))
	fmt.Fprintf(&b, "Instructions:\n%s\n\n", strings.Join(req.Instructions, "\n"))

	if focus := nonBlank(req.EnhancementFocus); len(focus) > 0 {
		fmt.Fprintf(&b, "Enhancement Focus: %s\n", strings.Join(focus, ", "))
	}
	if notes, ok := constraint(req.AdditionalNotes, nil); ok {
		fmt.Fprintf(&b, "Additional Notes: %s\n", notes)
	}

	b.WriteString("\n")
	b.WriteString(enhanceReplyFormat)
	return b.String()
}

// constraint trims value and reports whether it should appear in a prompt.
func constraint(value string, sentinels []string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, s := range sentinels {
		if strings.EqualFold(value, s) {
			return "", false
		}
	}
	return value, true
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
