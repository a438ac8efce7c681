package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	// GetAllRecipes retrieves all recipes
	GetAllRecipes(c *gin.Context)
	// GetRecipeByID retrieves a recipe by its ID
	GetRecipeByID(c *gin.Context)
	// GetRecipeVersions retrieves a recipe and its direct enhancements
	GetRecipeVersions(c *gin.Context)
	// SearchRecipes finds recipes matching a query
	SearchRecipes(c *gin.Context)
	// GetRecipesByType retrieves recipes of one type
	GetRecipesByType(c *gin.Context)
	// GenerateRecipe creates a recipe from ingredients with the language model
	GenerateRecipe(c *gin.Context)
	// EnhanceRecipe creates an improved version of a recipe with the language model
	EnhanceRecipe(c *gin.Context)
	// CreateRecipe saves a manual recipe
	CreateRecipe(c *gin.Context)
	// DeleteRecipe deletes a recipe by its ID
	DeleteRecipe(c *gin.Context)
}

type controller struct {
	service      services.RecipeService
	modelTimeout time.Duration
}

// NewRecipeController creates a new instance of RecipeController.
// modelTimeout bounds each generate or enhance call; zero means no bound.
func NewRecipeController(service services.RecipeService, modelTimeout time.Duration) RecipeController {
	return &controller{service: service, modelTimeout: modelTimeout}
}

// GetAllRecipes godoc
// @Summary Get all recipes
// @Description Get every stored recipe in creation order
// @Tags recipes
// @Produce json
// @Success 200 {array} models.Recipe
// @Failure 500 {object} models.APIError
// @Router /api/recipes [get]
func (c *controller) GetAllRecipes(ctx *gin.Context) {
	recipes, err := c.service.ListRecipes()
	if err != nil {
		respondError(ctx, err, "", models.ErrInternalServer, "Failed to fetch recipes")
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// GetRecipeByID godoc
// @Summary Get recipe by ID
// @Description Get a single recipe by its ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (c *controller) GetRecipeByID(ctx *gin.Context) {
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}

	recipe, err := c.service.GetRecipe(id)
	if err != nil {
		respondError(ctx, err, "Recipe not found", models.ErrInternalServer, "Failed to fetch recipe")
		return
	}
	ctx.JSON(http.StatusOK, recipe)
}

// GetRecipeVersions godoc
// @Summary Get recipe versions
// @Description Get a recipe together with the recipes enhanced directly from it
// @Tags recipes
// @Produce json
// @Param id path int true "Original recipe ID"
// @Success 200 {array} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/recipes/{id}/versions [get]
func (c *controller) GetRecipeVersions(ctx *gin.Context) {
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}

	recipes, err := c.service.GetRecipeVersions(id)
	if err != nil {
		respondError(ctx, err, "", models.ErrInternalServer, "Failed to fetch recipe versions")
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// SearchRecipes godoc
// @Summary Search recipes
// @Description Case-insensitive substring search over title, ingredients and description
// @Tags recipes
// @Produce json
// @Param query path string true "Search text"
// @Success 200 {array} models.Recipe
// @Failure 500 {object} models.APIError
// @Router /api/recipes/search/{query} [get]
func (c *controller) SearchRecipes(ctx *gin.Context) {
	recipes, err := c.service.SearchRecipes(ctx.Param("query"))
	if err != nil {
		respondError(ctx, err, "", models.ErrInternalServer, "Failed to search recipes")
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// GetRecipesByType godoc
// @Summary Get recipes by type
// @Description Get recipes of one type; "all" returns every recipe
// @Tags recipes
// @Produce json
// @Param type path string true "Recipe type" Enums(ai_generated, enhanced, manual, all)
// @Success 200 {array} models.Recipe
// @Failure 500 {object} models.APIError
// @Router /api/recipes/type/{type} [get]
func (c *controller) GetRecipesByType(ctx *gin.Context) {
	recipes, err := c.service.ListRecipesByType(ctx.Param("type"))
	if err != nil {
		respondError(ctx, err, "", models.ErrInternalServer, "Failed to fetch recipes by type")
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// GenerateRecipe godoc
// @Summary Generate a recipe
// @Description Generate and store a recipe from a list of ingredients using the language model
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body models.GenerateRecipeInput true "Ingredients and optional constraints"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/generate [post]
func (c *controller) GenerateRecipe(ctx *gin.Context) {
	var input models.GenerateRecipeInput
	if !bindJSON(ctx, &input) {
		return
	}

	modelCtx, cancel := c.modelContext(ctx)
	defer cancel()

	recipe, err := c.service.GenerateRecipe(modelCtx, input)
	if err != nil {
		respondError(ctx, err, "", models.ErrRecipeGenerateFailed, "Failed to generate recipe")
		return
	}
	ctx.JSON(http.StatusCreated, recipe)
}

// EnhanceRecipe godoc
// @Summary Enhance a recipe
// @Description Improve a stored recipe (recipeId) or a manually entered one (title, ingredients, instructions) and store the result
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body models.EnhanceRecipeInput true "Recipe reference or details, plus enhancement focus"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/enhance [post]
func (c *controller) EnhanceRecipe(ctx *gin.Context) {
	var input models.EnhanceRecipeInput
	if !bindJSON(ctx, &input) {
		return
	}

	modelCtx, cancel := c.modelContext(ctx)
	defer cancel()

	recipe, err := c.service.EnhanceRecipe(modelCtx, input)
	if err != nil {
		respondError(ctx, err, "Recipe to enhance not found", models.ErrRecipeEnhanceFailed, "Failed to enhance recipe")
		return
	}
	ctx.JSON(http.StatusCreated, recipe)
}

// CreateRecipe godoc
// @Summary Save a manual recipe
// @Description Store a recipe written by the user; recipeType is always set to "manual"
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body models.Recipe true "Recipe object"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes [post]
func (c *controller) CreateRecipe(ctx *gin.Context) {
	var recipe models.Recipe
	if !bindJSON(ctx, &recipe) {
		return
	}

	saved, err := c.service.SaveManualRecipe(recipe)
	if err != nil {
		respondError(ctx, err, "", models.ErrInternalServer, "Failed to save recipe")
		return
	}
	ctx.JSON(http.StatusCreated, saved)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Delete a recipe by its ID. Recipes enhanced from it keep their originalRecipeId.
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [delete]
func (c *controller) DeleteRecipe(ctx *gin.Context) {
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}

	if err := c.service.DeleteRecipe(id); err != nil {
		respondError(ctx, err, "Recipe not found", models.ErrInternalServer, "Failed to delete recipe")
		return
	}
	ctx.JSON(http.StatusOK, models.MessageResponse{Message: "Recipe deleted successfully"})
}

// modelContext detaches the model call from client disconnects and bounds it by the configured timeout
func (c *controller) modelContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx.Request.Context())
	if c.modelTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, c.modelTimeout)
}

func recipeIDParam(ctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid recipe ID format"))
		return 0, false
	}
	return id, true
}

func bindJSON(ctx *gin.Context, target any) bool {
	if err := ctx.ShouldBindJSON(target); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid request body",
			map[string]interface{}{"error": err.Error()}))
		return false
	}
	return true
}

// respondError maps pipeline errors to status codes. Unexpected causes are logged
// and replaced by failureMessage so they never reach the client.
func respondError(ctx *gin.Context, err error, notFoundMessage, failureCode, failureMessage string) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, validationErr.Message))
	case errors.As(err, &notFoundErr) && notFoundMessage != "":
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrRecipeNotFound, notFoundMessage,
			map[string]interface{}{"id": notFoundErr.ID}))
	default:
		_ = ctx.Error(err)
		log.WithFields(log.Fields{
			"request_id": ctx.GetString(middleware.ContextRequestID),
			"path":       ctx.FullPath(),
		}).WithError(err).Error(failureMessage)
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(failureCode, failureMessage))
	}
}
