package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recipe types. The pipeline assigns these; clients never choose one for generated
// or enhanced recipes.
const (
	RecipeTypeAIGenerated = "ai_generated"
	RecipeTypeEnhanced    = "enhanced"
	RecipeTypeManual      = "manual"

	// RecipeTypeAll is the filter sentinel that matches every recipe type.
	RecipeTypeAll = "all"
)

// EnhancementSummaryKey is the AdditionalData key holding the list of changes
// the model made to an enhanced recipe.
const EnhancementSummaryKey = "enhancementSummary"

// Recipe represents a stored recipe.
// Optional attributes are pointers so that an absent value serialises as an
// explicit null rather than a missing key.
type Recipe struct {
	ID               int                         `json:"id" gorm:"primaryKey;autoIncrement"`
	Title            string                      `json:"title" gorm:"not null"`
	Description      *string                     `json:"description"`
	Ingredients      datatypes.JSONSlice[string] `json:"ingredients" gorm:"not null" swaggertype:"array,string"`
	Instructions     datatypes.JSONSlice[string] `json:"instructions" gorm:"not null" swaggertype:"array,string"`
	CookingTime      *int                        `json:"cookingTime"`
	Servings         *int                        `json:"servings"`
	Difficulty       *string                     `json:"difficulty"`
	CuisineType      *string                     `json:"cuisineType"`
	ImageURL         *string                     `json:"imageUrl"`
	RecipeType       string                      `json:"recipeType" gorm:"not null;index"`
	OriginalRecipeID *int                        `json:"originalRecipeId" gorm:"index"`
	CreatedAt        time.Time                   `json:"createdAt" gorm:"not null"`
	AdditionalData   *datatypes.JSONMap          `json:"additionalData" swaggertype:"object"`
}

// TableName pins the table name independently of the naming strategy.
func (Recipe) TableName() string {
	return "recipes"
}

// Clone returns a deep copy of the recipe, so that the caller can mutate it
// without affecting the original.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = cloneStrings(r.Ingredients)
	out.Instructions = cloneStrings(r.Instructions)
	out.Description = clonePtr(r.Description)
	out.CookingTime = clonePtr(r.CookingTime)
	out.Servings = clonePtr(r.Servings)
	out.Difficulty = clonePtr(r.Difficulty)
	out.CuisineType = clonePtr(r.CuisineType)
	out.ImageURL = clonePtr(r.ImageURL)
	out.OriginalRecipeID = clonePtr(r.OriginalRecipeID)
	if r.AdditionalData != nil {
		data := datatypes.JSONMap(cloneMap(*r.AdditionalData))
		out.AdditionalData = &data
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the container types JSON decoding produces; scalars are
// returned as is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case datatypes.JSONMap:
		return datatypes.JSONMap(cloneMap(val))
	case []any:
		if val == nil {
			return val
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		if val == nil {
			return val
		}
		return append([]string(nil), val...)
	default:
		return v
	}
}

func cloneStrings(in datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
	if in == nil {
		return nil
	}
	out := make(datatypes.JSONSlice[string], len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// GenerateRecipeInput is the request body for generating a recipe from ingredients.
type GenerateRecipeInput struct {
	Ingredients            []string `json:"ingredients" validate:"min=1"`
	Preferences            string   `json:"preferences"`
	CuisineType            string   `json:"cuisineType"`
	AdditionalInstructions string   `json:"additionalInstructions"`
}

// EnhanceRecipeInput is the request body for enhancing a recipe. Either RecipeID
// refers to a stored recipe, or Title, Ingredients and Instructions describe one.
type EnhanceRecipeInput struct {
	RecipeID         *int     `json:"recipeId"`
	Title            string   `json:"title"`
	Ingredients      []string `json:"ingredients"`
	Instructions     []string `json:"instructions"`
	EnhancementFocus []string `json:"enhancementFocus"`
	AdditionalNotes  string   `json:"additionalNotes"`
}
