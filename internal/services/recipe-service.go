package services

import (
	"context"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/llm"
	"github.com/franciscosanchezn/gin-recipe-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	log "github.com/sirupsen/logrus"
)

// RecipeGenerator produces recipe content from a language model
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, req llm.GenerateRequest) (models.Recipe, error)
	EnhanceRecipe(ctx context.Context, req llm.EnhanceRequest) (models.Recipe, error)
}

// RecipeService orchestrates validation, model calls and persistence for recipes
type RecipeService interface {
	// ListRecipes retrieves all recipes
	ListRecipes() ([]models.Recipe, error)
	// GetRecipe retrieves a recipe by its ID
	GetRecipe(id int) (models.Recipe, error)
	// GetRecipeVersions retrieves a recipe and the recipes directly enhanced from it
	GetRecipeVersions(id int) ([]models.Recipe, error)
	// SearchRecipes finds recipes whose title, ingredients or description contain query
	SearchRecipes(query string) ([]models.Recipe, error)
	// ListRecipesByType retrieves recipes of one type, or all of them for "all"
	ListRecipesByType(recipeType string) ([]models.Recipe, error)
	// GenerateRecipe creates and stores a recipe from a list of ingredients
	GenerateRecipe(ctx context.Context, input models.GenerateRecipeInput) (models.Recipe, error)
	// EnhanceRecipe creates and stores an improved version of a recipe
	EnhanceRecipe(ctx context.Context, input models.EnhanceRecipeInput) (models.Recipe, error)
	// SaveManualRecipe stores a recipe written by the user
	SaveManualRecipe(recipe models.Recipe) (models.Recipe, error)
	// DeleteRecipe removes a recipe by its ID
	DeleteRecipe(id int) error
}

type recipeService struct {
	store     RecipeStore
	generator RecipeGenerator
	metrics   *metrics.Metrics
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(store RecipeStore, generator RecipeGenerator, m *metrics.Metrics) RecipeService {
	return &recipeService{store: store, generator: generator, metrics: m}
}

func (s *recipeService) ListRecipes() ([]models.Recipe, error) {
	recipes, err := s.store.GetAllRecipes()
	return recipes, storeError("list", err)
}

func (s *recipeService) GetRecipe(id int) (models.Recipe, error) {
	recipe, found, err := s.store.GetRecipeByID(id)
	if err != nil {
		return models.Recipe{}, storeError("get", err)
	}
	if !found {
		return models.Recipe{}, &NotFoundError{ID: id}
	}
	return recipe, nil
}

func (s *recipeService) GetRecipeVersions(id int) ([]models.Recipe, error) {
	recipes, err := s.store.GetOriginalAndEnhancedRecipes(id)
	return recipes, storeError("versions", err)
}

func (s *recipeService) SearchRecipes(query string) ([]models.Recipe, error) {
	recipes, err := s.store.SearchRecipes(query)
	return recipes, storeError("search", err)
}

func (s *recipeService) ListRecipesByType(recipeType string) ([]models.Recipe, error) {
	recipes, err := s.store.GetRecipesByType(recipeType)
	return recipes, storeError("list by type", err)
}

func (s *recipeService) GenerateRecipe(ctx context.Context, input models.GenerateRecipeInput) (models.Recipe, error) {
	if err := validateInput(input); err != nil {
		return models.Recipe{}, err
	}

	generated, err := s.generator.GenerateRecipe(ctx, llm.GenerateRequest{
		Ingredients:            input.Ingredients,
		Preferences:            input.Preferences,
		CuisineType:            input.CuisineType,
		AdditionalInstructions: input.AdditionalInstructions,
	})
	if err != nil {
		return models.Recipe{}, err
	}

	generated.RecipeType = models.RecipeTypeAIGenerated
	generated.OriginalRecipeID = nil
	return s.persist(generated)
}

func (s *recipeService) EnhanceRecipe(ctx context.Context, input models.EnhanceRecipeInput) (models.Recipe, error) {
	req := llm.EnhanceRequest{
		EnhancementFocus: input.EnhancementFocus,
		AdditionalNotes:  input.AdditionalNotes,
	}

	// Stored recipe or manual entry; only the former gets a lineage link
	var originalID *int
	if input.RecipeID != nil {
		original, err := s.GetRecipe(*input.RecipeID)
		if err != nil {
			return models.Recipe{}, err
		}
		req.Title = original.Title
		req.Ingredients = original.Ingredients
		req.Instructions = original.Instructions
		id := original.ID
		originalID = &id
	} else {
		if strings.TrimSpace(input.Title) == "" || len(input.Ingredients) == 0 || len(input.Instructions) == 0 {
			return models.Recipe{}, NewValidationError("Missing required recipe details")
		}
		req.Title = input.Title
		req.Ingredients = input.Ingredients
		req.Instructions = input.Instructions
	}

	enhanced, err := s.generator.EnhanceRecipe(ctx, req)
	if err != nil {
		return models.Recipe{}, err
	}

	enhanced.RecipeType = models.RecipeTypeEnhanced
	enhanced.OriginalRecipeID = originalID
	return s.persist(enhanced)
}

func (s *recipeService) SaveManualRecipe(recipe models.Recipe) (models.Recipe, error) {
	if strings.TrimSpace(recipe.Title) == "" {
		return models.Recipe{}, NewValidationError(`Required at "title"`)
	}
	recipe.RecipeType = models.RecipeTypeManual
	recipe.OriginalRecipeID = nil
	return s.persist(recipe)
}

func (s *recipeService) DeleteRecipe(id int) error {
	deleted, err := s.store.DeleteRecipe(id)
	if err != nil {
		return storeError("delete", err)
	}
	if !deleted {
		return &NotFoundError{ID: id}
	}
	log.WithField("recipe_id", id).Info("Recipe deleted")
	return nil
}

func (s *recipeService) persist(recipe models.Recipe) (models.Recipe, error) {
	saved, err := s.store.CreateRecipe(recipe)
	if err != nil {
		return models.Recipe{}, storeError("create", err)
	}
	s.metrics.RecipeCreated(saved.RecipeType)

	fields := log.Fields{"recipe_id": saved.ID, "recipe_type": saved.RecipeType}
	if saved.OriginalRecipeID != nil {
		fields["original_recipe_id"] = *saved.OriginalRecipeID
	}
	log.WithFields(fields).Info("Recipe created")
	return saved, nil
}
