package services

import (
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecipeStore is the keyed persistence contract for recipes. The pipeline and
// transport depend only on this interface.
type RecipeStore interface {
	// GetAllRecipes retrieves every recipe in insertion order
	GetAllRecipes() ([]models.Recipe, error)
	// GetRecipeByID retrieves a recipe by its ID; found is false when it does not exist
	GetRecipeByID(id int) (recipe models.Recipe, found bool, err error)
	// GetOriginalAndEnhancedRecipes retrieves a recipe together with its direct enhancements
	GetOriginalAndEnhancedRecipes(originalID int) ([]models.Recipe, error)
	// CreateRecipe assigns an ID and creation time and stores the recipe
	CreateRecipe(recipe models.Recipe) (models.Recipe, error)
	// DeleteRecipe removes a recipe and reports whether it existed
	DeleteRecipe(id int) (bool, error)
	// SearchRecipes matches title, ingredients and description case-insensitively
	SearchRecipes(query string) ([]models.Recipe, error)
	// GetRecipesByType filters on recipe type; "all" returns everything
	GetRecipesByType(recipeType string) ([]models.Recipe, error)
}

// recipeStore is the gorm-backed implementation of RecipeStore
type recipeStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecipeStore creates a RecipeStore persisting to the recipes table
func NewRecipeStore(db *gorm.DB) RecipeStore {
	return &recipeStore{db: db, now: time.Now}
}

func (s *recipeStore) GetAllRecipes() ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if err := s.db.Order("id").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *recipeStore) GetRecipeByID(id int) (models.Recipe, bool, error) {
	var recipe models.Recipe
	result := s.db.Where("id = ?", id).Limit(1).Find(&recipe)
	if result.Error != nil {
		return models.Recipe{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Recipe{}, false, nil
	}
	return recipe, true, nil
}

func (s *recipeStore) GetOriginalAndEnhancedRecipes(originalID int) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := s.db.Where("id = ? OR original_recipe_id = ?", originalID, originalID).
		Order("id").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *recipeStore) CreateRecipe(recipe models.Recipe) (models.Recipe, error) {
	record := prepareForInsert(recipe, s.now())
	if err := s.db.Create(&record).Error; err != nil {
		return models.Recipe{}, err
	}
	return record, nil
}

func (s *recipeStore) DeleteRecipe(id int) (bool, error) {
	result := s.db.Delete(&models.Recipe{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SearchRecipes loads the table and filters in process. Ingredients live in a
// JSON column, so a SQL LIKE would match against escaped JSON text instead of
// the ingredient strings themselves.
func (s *recipeStore) SearchRecipes(query string) ([]models.Recipe, error) {
	recipes, err := s.GetAllRecipes()
	if err != nil {
		return nil, err
	}
	return filterRecipes(recipes, query), nil
}

func (s *recipeStore) GetRecipesByType(recipeType string) ([]models.Recipe, error) {
	if recipeType == models.RecipeTypeAll {
		return s.GetAllRecipes()
	}
	recipes := []models.Recipe{}
	if err := s.db.Where("recipe_type = ?", recipeType).Order("id").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// prepareForInsert copies the caller's recipe and overwrites everything the
// store owns: identity, creation time and non-null sequences.
func prepareForInsert(recipe models.Recipe, now time.Time) models.Recipe {
	record := recipe.Clone()
	record.ID = 0
	record.CreatedAt = now.UTC().Truncate(time.Microsecond)
	if record.Ingredients == nil {
		record.Ingredients = datatypes.JSONSlice[string]{}
	}
	if record.Instructions == nil {
		record.Instructions = datatypes.JSONSlice[string]{}
	}
	return record
}

// filterRecipes keeps the recipes matching query; an empty query keeps all.
func filterRecipes(recipes []models.Recipe, query string) []models.Recipe {
	if query == "" {
		return recipes
	}
	needle := strings.ToLower(query)
	matched := make([]models.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if matchesQuery(recipe, needle) {
			matched = append(matched, recipe)
		}
	}
	return matched
}

func matchesQuery(recipe models.Recipe, needle string) bool {
	if strings.Contains(strings.ToLower(recipe.Title), needle) {
		return true
	}
	for _, ingredient := range recipe.Ingredients {
		if strings.Contains(strings.ToLower(ingredient), needle) {
			return true
		}
	}
	return recipe.Description != nil && strings.Contains(strings.ToLower(*recipe.Description), needle)
}
