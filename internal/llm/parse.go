package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/datatypes"
)

// recipeReply is the JSON object the prompts ask the model to return.
type recipeReply struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Ingredients        []string `json:"ingredients"`
	Instructions       []string `json:"instructions"`
	CookingTime        flexInt  `json:"cookingTime"`
	Servings           flexInt  `json:"servings"`
	Difficulty         string   `json:"difficulty"`
	CuisineType        string   `json:"cuisineType"`
	ImageURL           string   `json:"imageUrl"`
	EnhancementSummary []string `json:"enhancementSummary"`
}

// flexInt accepts a JSON number or a string starting with digits ("30 minutes").
// Anything else decodes to no value instead of failing the whole reply.
type flexInt struct {
	value *int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	f.value = nil
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var n int
	switch v := raw.(type) {
	case float64:
		n = int(math.Round(v))
	case string:
		digits := leadingDigits(strings.TrimSpace(v))
		parsed, err := strconv.Atoi(digits)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n > 0 {
		f.value = &n
	}
	return nil
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// extractJSON strips a surrounding markdown code fence or chatter around the
// outermost JSON object.
func extractJSON(content string) string {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
	}
	if !strings.HasPrefix(text, "{") {
		start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}
	return text
}

// parseRecipeReply decodes the model's text into a recipe carrying recipeType.
// Title, ingredients and instructions are required.
func parseRecipeReply(content, recipeType string) (models.Recipe, error) {
	var reply recipeReply
	decoder := json.NewDecoder(bytes.NewReader([]byte(extractJSON(content))))
	if err := decoder.Decode(&reply); err != nil {
		return models.Recipe{}, fmt.Errorf("decode reply: %w", err)
	}

	ingredients := nonBlank(reply.Ingredients)
	instructions := nonBlank(reply.Instructions)

	var missing []string
	if strings.TrimSpace(reply.Title) == "" {
		missing = append(missing, "title")
	}
	if len(ingredients) == 0 {
		missing = append(missing, "ingredients")
	}
	if len(instructions) == 0 {
		missing = append(missing, "instructions")
	}
	if len(missing) > 0 {
		return models.Recipe{}, errors.New("reply missing required fields: " + strings.Join(missing, ", "))
	}

	recipe := models.Recipe{
		Title:        strings.TrimSpace(reply.Title),
		Description:  optionalString(reply.Description),
		Ingredients:  datatypes.JSONSlice[string](ingredients),
		Instructions: datatypes.JSONSlice[string](instructions),
		CookingTime:  reply.CookingTime.value,
		Servings:     reply.Servings.value,
		Difficulty:   optionalString(reply.Difficulty),
		CuisineType:  optionalString(reply.CuisineType),
		ImageURL:     optionalString(reply.ImageURL),
		RecipeType:   recipeType,
	}

	if recipeType == models.RecipeTypeEnhanced {
		summary := make([]any, 0, len(reply.EnhancementSummary))
		for _, s := range reply.EnhancementSummary {
			summary = append(summary, s)
		}
		data := datatypes.JSONMap{models.EnhancementSummaryKey: summary}
		recipe.AdditionalData = &data
	}
	return recipe, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
