package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/llm"
	"github.com/franciscosanchezn/gin-recipe-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const testSecret = "test-jwt-secret-key-32-characters"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGenerator answers with a fixed recipe and records what it was asked
type fakeGenerator struct {
	mu          sync.Mutex
	err         error
	generateReq []llm.GenerateRequest
	enhanceReq  []llm.EnhanceRequest
	lastCtxErr  error
	hadDeadline bool
}

func (f *fakeGenerator) GenerateRecipe(ctx context.Context, req llm.GenerateRequest) (models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateReq = append(f.generateReq, req)
	f.lastCtxErr = ctx.Err()
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return models.Recipe{}, f.err
	}
	return models.Recipe{
		Title:        "Tomato Onion Curry",
		Ingredients:  datatypes.JSONSlice[string]{"2 tomatoes", "1 onion"},
		Instructions: datatypes.JSONSlice[string]{"Chop", "Simmer"},
		RecipeType:   models.RecipeTypeAIGenerated,
	}, nil
}

func (f *fakeGenerator) EnhanceRecipe(ctx context.Context, req llm.EnhanceRequest) (models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enhanceReq = append(f.enhanceReq, req)
	if f.err != nil {
		return models.Recipe{}, f.err
	}
	summary := datatypes.JSONMap{models.EnhancementSummaryKey: []any{"More spice"}}
	return models.Recipe{
		Title:          "Better " + req.Title,
		Ingredients:    datatypes.JSONSlice[string](req.Ingredients),
		Instructions:   datatypes.JSONSlice[string](req.Instructions),
		RecipeType:     models.RecipeTypeEnhanced,
		AdditionalData: &summary,
	}, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generateReq) + len(f.enhanceReq)
}

type testServer struct {
	router    *gin.Engine
	store     services.RecipeStore
	generator *fakeGenerator
	metrics   *metrics.Metrics
}

func setupTestServer(t *testing.T, authSecret string) *testServer {
	t.Helper()
	store := services.NewMemoryRecipeStore()
	generator := &fakeGenerator{}
	m := metrics.New()
	service := services.NewRecipeService(store, generator, m)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(m))
	SetupRoutes(router, NewRecipeController(service, 5*time.Second), RouteOptions{AuthSecret: authSecret, Metrics: m})

	return &testServer{router: router, store: store, generator: generator, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seed(t *testing.T, title string) models.Recipe {
	t.Helper()
	recipe, err := s.store.CreateRecipe(models.Recipe{
		Title:        title,
		Ingredients:  datatypes.JSONSlice[string]{"flour", "egg"},
		Instructions: datatypes.JSONSlice[string]{"Mix", "Fry"},
		RecipeType:   models.RecipeTypeManual,
	})
	require.NoError(t, err)
	return recipe
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestGetAllRecipes(t *testing.T) {
	s := setupTestServer(t, "")

	w := s.do(t, http.MethodGet, "/api/recipes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	s.seed(t, "Pancakes")
	s.seed(t, "Waffles")

	w = s.do(t, http.MethodGet, "/api/recipes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	recipes := decode[[]models.Recipe](t, w)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Pancakes", recipes[0].Title)
}

func TestGetRecipeByID(t *testing.T) {
	s := setupTestServer(t, "")
	seeded := s.seed(t, "Pancakes")

	w := s.do(t, http.MethodGet, "/api/recipes/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	recipe := decode[models.Recipe](t, w)
	assert.Equal(t, seeded.ID, recipe.ID)
	assert.True(t, seeded.CreatedAt.Equal(recipe.CreatedAt))

	// Absent optional fields are explicit nulls
	raw := decode[map[string]any](t, w)
	for _, key := range []string{"description", "cookingTime", "servings", "difficulty", "cuisineType", "imageUrl", "originalRecipeId", "additionalData"} {
		value, present := raw[key]
		assert.True(t, present, "key %s", key)
		assert.Nil(t, value, "key %s", key)
	}

	w = s.do(t, http.MethodGet, "/api/recipes/99", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	apiErr := decode[models.APIError](t, w)
	assert.Equal(t, models.ErrRecipeNotFound, apiErr.Code)
	assert.Equal(t, "Recipe not found", apiErr.Message)

	w = s.do(t, http.MethodGet, "/api/recipes/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateRecipe(t *testing.T) {
	s := setupTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/recipes/generate", map[string]any{
		"ingredients": []string{"tomato", "onion"},
		"preferences": "Vegetarian",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[models.Recipe](t, w)
	assert.Equal(t, 1, recipe.ID)
	assert.Equal(t, models.RecipeTypeAIGenerated, recipe.RecipeType)
	assert.Nil(t, recipe.OriginalRecipeID)

	require.Len(t, s.generator.generateReq, 1)
	assert.Equal(t, []string{"tomato", "onion"}, s.generator.generateReq[0].Ingredients)
	assert.Equal(t, "Vegetarian", s.generator.generateReq[0].Preferences)

	all, err := s.store.GetAllRecipes()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGenerateRecipeValidation(t *testing.T) {
	testCases := []struct {
		name string
		body any
	}{
		{name: "empty ingredients", body: map[string]any{"ingredients": []string{}}},
		{name: "missing ingredients", body: map[string]any{"preferences": "Vegan"}},
		{name: "ingredients of the wrong type", body: map[string]any{"ingredients": "tomato"}},
		{name: "malformed json", body: `{"ingredients": [`},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, "")

			w := s.do(t, http.MethodPost, "/api/recipes/generate", tt.body, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			apiErr := decode[models.APIError](t, w)
			assert.Equal(t, models.ErrValidationFailed, apiErr.Code)
			assert.Zero(t, s.generator.calls())

			all, err := s.store.GetAllRecipes()
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestGenerateRecipeModelFailureIsGeneric(t *testing.T) {
	s := setupTestServer(t, "")
	s.generator.err = &llm.ModelError{Op: "generate", Kind: llm.KindUpstream, Err: errors.New("401 Incorrect API key sk-abc")}

	w := s.do(t, http.MethodPost, "/api/recipes/generate", map[string]any{"ingredients": []string{"tomato"}}, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decode[models.APIError](t, w)
	assert.Equal(t, models.ErrRecipeGenerateFailed, apiErr.Code)
	assert.Equal(t, "Failed to generate recipe", apiErr.Message)
	assert.NotContains(t, w.Body.String(), "sk-abc")
}

func TestModelCallIgnoresClientCancellation(t *testing.T) {
	s := setupTestServer(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/recipes/generate",
		strings.NewReader(`{"ingredients":["rice"]}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, s.generator.lastCtxErr)
	assert.True(t, s.generator.hadDeadline)
}

func TestEnhanceStoredRecipe(t *testing.T) {
	s := setupTestServer(t, "")
	original := s.seed(t, "Pancakes")

	w := s.do(t, http.MethodPost, "/api/recipes/enhance", map[string]any{
		"recipeId":         original.ID,
		"enhancementFocus": []string{"Healthier"},
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[models.Recipe](t, w)
	assert.Equal(t, models.RecipeTypeEnhanced, recipe.RecipeType)
	require.NotNil(t, recipe.OriginalRecipeID)
	assert.Equal(t, original.ID, *recipe.OriginalRecipeID)
	require.NotNil(t, recipe.AdditionalData)
	assert.Equal(t, []any{"More spice"}, (*recipe.AdditionalData)[models.EnhancementSummaryKey])

	require.Len(t, s.generator.enhanceReq, 1)
	assert.Equal(t, "Pancakes", s.generator.enhanceReq[0].Title)
	assert.Equal(t, []string{"Healthier"}, s.generator.enhanceReq[0].EnhancementFocus)

	w = s.do(t, http.MethodGet, "/api/recipes/1/versions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	versions := decode[[]models.Recipe](t, w)
	require.Len(t, versions, 2)
	assert.Equal(t, original.ID, versions[0].ID)
	assert.Equal(t, recipe.ID, versions[1].ID)
}

func TestEnhanceManualRecipe(t *testing.T) {
	s := setupTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/recipes/enhance", map[string]any{
		"title":        "Soup",
		"ingredients":  []string{"water"},
		"instructions": []string{"Boil"},
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[models.Recipe](t, w)
	assert.Nil(t, recipe.OriginalRecipeID)
}

func TestEnhanceRecipeErrors(t *testing.T) {
	t.Run("unknown recipe id", func(t *testing.T) {
		s := setupTestServer(t, "")

		w := s.do(t, http.MethodPost, "/api/recipes/enhance", map[string]any{"recipeId": 5}, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		apiErr := decode[models.APIError](t, w)
		assert.Equal(t, "Recipe to enhance not found", apiErr.Message)
		assert.Zero(t, s.generator.calls())
	})

	t.Run("missing manual details", func(t *testing.T) {
		s := setupTestServer(t, "")

		w := s.do(t, http.MethodPost, "/api/recipes/enhance", map[string]any{"title": "Soup"}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		apiErr := decode[models.APIError](t, w)
		assert.Equal(t, "Missing required recipe details", apiErr.Message)
		assert.Zero(t, s.generator.calls())
	})

	t.Run("model failure", func(t *testing.T) {
		s := setupTestServer(t, "")
		s.generator.err = &llm.ModelError{Op: "enhance", Kind: llm.KindMalformedReply, Err: errors.New("decode reply")}

		w := s.do(t, http.MethodPost, "/api/recipes/enhance", map[string]any{
			"title": "Soup", "ingredients": []string{"water"}, "instructions": []string{"Boil"},
		}, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		apiErr := decode[models.APIError](t, w)
		assert.Equal(t, "Failed to enhance recipe", apiErr.Message)
	})
}

func TestCreateManualRecipe(t *testing.T) {
	s := setupTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/recipes", map[string]any{
		"id":               77,
		"title":            "Toast",
		"ingredients":      []string{"bread", "butter"},
		"instructions":     []string{"Toast the bread", "Spread butter"},
		"servings":         1,
		"recipeType":       "ai_generated",
		"originalRecipeId": 3,
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[models.Recipe](t, w)
	assert.Equal(t, 1, recipe.ID)
	assert.Equal(t, models.RecipeTypeManual, recipe.RecipeType)
	assert.Nil(t, recipe.OriginalRecipeID)
	require.NotNil(t, recipe.Servings)
	assert.Equal(t, 1, *recipe.Servings)

	w = s.do(t, http.MethodPost, "/api/recipes", map[string]any{"ingredients": []string{"bread"}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchAndTypeRoutes(t *testing.T) {
	s := setupTestServer(t, "")
	s.seed(t, "Tomato Soup")
	s.seed(t, "Green Salad")
	w := s.do(t, http.MethodPost, "/api/recipes/generate", map[string]any{"ingredients": []string{"tomato"}}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/recipes/search/TOMATO", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]models.Recipe](t, w)
	require.Len(t, found, 2)
	assert.Equal(t, "Tomato Soup", found[0].Title)
	assert.Equal(t, "Tomato Onion Curry", found[1].Title)

	w = s.do(t, http.MethodGet, "/api/recipes/search/green%20salad", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Recipe](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/recipes/type/manual", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Recipe](t, w), 2)

	w = s.do(t, http.MethodGet, "/api/recipes/type/all", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Recipe](t, w), 3)
}

func TestDeleteRecipe(t *testing.T) {
	s := setupTestServer(t, "")
	s.seed(t, "Pancakes")

	w := s.do(t, http.MethodDelete, "/api/recipes/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Recipe deleted successfully"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/recipes/1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/recipes/1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/recipes/one", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutes(t *testing.T) {
	s := setupTestServer(t, testSecret)
	s.seed(t, "Pancakes")

	editor, err := middleware.IssueToken([]byte(testSecret), "chef-2", middleware.RoleEditor, time.Hour)
	require.NoError(t, err)
	admin, err := middleware.IssueToken([]byte(testSecret), "chef-1", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)

	manual := map[string]any{"title": "Toast", "ingredients": []string{"bread"}, "instructions": []string{"Toast"}}

	// Reads stay public
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/recipes", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/recipes/1", nil, "").Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/recipes", manual, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/recipes/generate", map[string]any{"ingredients": []string{"x"}}, "").Code)
	assert.Zero(t, s.generator.calls())

	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/recipes", manual, editor).Code)
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/recipes/generate", map[string]any{"ingredients": []string{"x"}}, editor).Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/api/recipes/1", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/recipes/1", nil, editor).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/recipes/1", nil, admin).Code)
}

func TestOperationalEndpoints(t *testing.T) {
	s := setupTestServer(t, "")

	w := s.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	health := decode[map[string]string](t, w)
	assert.Equal(t, "healthy", health["status"])

	w = s.do(t, http.MethodPost, "/api/recipes/generate", map[string]any{"ingredients": []string{"x"}}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `recipes_created_total{recipe_type="ai_generated"} 1`)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="POST",path="/api/recipes/generate",status_code="201"} 1`)

	w = s.do(t, http.MethodGet, "/swagger/doc.json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/recipes/generate")
}
