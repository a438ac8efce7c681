package services

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection would get its own private in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Recipe{}))
	return db
}

// storeFactories lets every store test run against both implementations
func storeFactories() map[string]func(t *testing.T) RecipeStore {
	return map[string]func(t *testing.T) RecipeStore{
		"memory": func(t *testing.T) RecipeStore { return NewMemoryRecipeStore() },
		"gorm":   func(t *testing.T) RecipeStore { return NewRecipeStore(setupTestDB(t)) },
	}
}

func forEachStore(t *testing.T, test func(t *testing.T, store RecipeStore)) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			test(t, factory(t))
		})
	}
}

func newRecipe(title, recipeType string, ingredients ...string) models.Recipe {
	return models.Recipe{
		Title:        title,
		Ingredients:  ingredients,
		Instructions: []string{"Cook it"},
		RecipeType:   recipeType,
	}
}

func mustCreate(t *testing.T, store RecipeStore, recipe models.Recipe) models.Recipe {
	t.Helper()
	created, err := store.CreateRecipe(recipe)
	require.NoError(t, err)
	return created
}

func recipeIDs(recipes []models.Recipe) []int {
	ids := make([]int, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestStoreCreateAssignsIdentity(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		before := time.Now().Add(-time.Second)

		input := newRecipe("Soup", models.RecipeTypeManual, "water")
		input.ID = 99
		input.CreatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

		first := mustCreate(t, store, input)
		second := mustCreate(t, store, newRecipe("Stew", models.RecipeTypeManual, "beef"))

		assert.Equal(t, 1, first.ID)
		assert.Equal(t, 2, second.ID)
		assert.True(t, first.CreatedAt.After(before), "createdAt is assigned by the store")

		stored, found, err := store.GetRecipeByID(first.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Soup", stored.Title)
		assert.True(t, first.CreatedAt.Equal(stored.CreatedAt))
	})
}

func TestStoreNormalisesNilSequences(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		created := mustCreate(t, store, models.Recipe{Title: "Air", RecipeType: models.RecipeTypeManual})

		stored, found, err := store.GetRecipeByID(created.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.NotNil(t, stored.Ingredients)
		assert.Empty(t, stored.Ingredients)
		assert.NotNil(t, stored.Instructions)
		assert.Empty(t, stored.Instructions)
	})
}

func TestStoreRoundTripsOptionalFields(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		original := mustCreate(t, store, newRecipe("Pancakes", models.RecipeTypeManual, "flour"))

		summary := datatypes.JSONMap{models.EnhancementSummaryKey: []any{"Less sugar", "Oat flour"}}
		input := newRecipe("Better Pancakes", models.RecipeTypeEnhanced, "oat flour")
		input.Description = ptr("Fluffy")
		input.CookingTime = ptr(20)
		input.Servings = ptr(2)
		input.OriginalRecipeID = &original.ID
		input.AdditionalData = &summary
		created := mustCreate(t, store, input)

		stored, found, err := store.GetRecipeByID(created.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Fluffy", *stored.Description)
		assert.Equal(t, 20, *stored.CookingTime)
		assert.Equal(t, 2, *stored.Servings)
		assert.Nil(t, stored.Difficulty)
		assert.Nil(t, stored.ImageURL)
		require.NotNil(t, stored.OriginalRecipeID)
		assert.Equal(t, original.ID, *stored.OriginalRecipeID)
		require.NotNil(t, stored.AdditionalData)
		assert.Equal(t, []any{"Less sugar", "Oat flour"}, (*stored.AdditionalData)[models.EnhancementSummaryKey])

		plain, _, err := store.GetRecipeByID(original.ID)
		require.NoError(t, err)
		assert.Nil(t, plain.AdditionalData)
		assert.Nil(t, plain.OriginalRecipeID)
	})
}

func TestStoreGetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		_, found, err := store.GetRecipeByID(42)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStoreDeleteDoesNotReuseIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		mustCreate(t, store, newRecipe("One", models.RecipeTypeManual, "a"))
		second := mustCreate(t, store, newRecipe("Two", models.RecipeTypeManual, "b"))

		deleted, err := store.DeleteRecipe(second.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.DeleteRecipe(second.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		third := mustCreate(t, store, newRecipe("Three", models.RecipeTypeManual, "c"))
		assert.Equal(t, 3, third.ID)

		_, found, err := store.GetRecipeByID(second.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStoreGetAllInInsertionOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		all, err := store.GetAllRecipes()
		require.NoError(t, err)
		assert.Empty(t, all)

		for _, title := range []string{"C", "A", "B"} {
			mustCreate(t, store, newRecipe(title, models.RecipeTypeManual, "x"))
		}

		all, err = store.GetAllRecipes()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, recipeIDs(all))
		assert.Equal(t, "C", all[0].Title)
	})
}

func TestStoreSearch(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		withDescription := newRecipe("Green Salad", models.RecipeTypeManual, "lettuce")
		withDescription.Description = ptr("Crunchy and TANGY")
		mustCreate(t, store, withDescription)
		mustCreate(t, store, newRecipe("Tomato Soup", models.RecipeTypeManual, "tomatoes"))
		mustCreate(t, store, newRecipe("Bruschetta", models.RecipeTypeAIGenerated, "Tomato"))
		// Instructions are not searched
		instructionsOnly := newRecipe("Rice", models.RecipeTypeManual, "rice")
		instructionsOnly.Instructions = []string{"Serve with tomato"}
		mustCreate(t, store, instructionsOnly)

		testCases := []struct {
			query string
			ids   []int
		}{
			{query: "tomato", ids: []int{2, 3}},
			{query: "TOMATO", ids: []int{2, 3}},
			{query: "tangy", ids: []int{1}},
			{query: "salad", ids: []int{1}},
			{query: "", ids: []int{1, 2, 3, 4}},
			{query: "chocolate", ids: []int{}},
		}

		for _, tt := range testCases {
			results, err := store.SearchRecipes(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.ids, recipeIDs(results), "query %q", tt.query)
		}
	})
}

func TestStoreGetRecipesByType(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		mustCreate(t, store, newRecipe("A", models.RecipeTypeManual, "x"))
		mustCreate(t, store, newRecipe("B", models.RecipeTypeAIGenerated, "x"))
		mustCreate(t, store, newRecipe("C", models.RecipeTypeManual, "x"))

		manual, err := store.GetRecipesByType(models.RecipeTypeManual)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, recipeIDs(manual))

		all, err := store.GetRecipesByType(models.RecipeTypeAll)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, recipeIDs(all))

		unknown, err := store.GetRecipesByType("dessert")
		require.NoError(t, err)
		assert.Empty(t, unknown)
	})
}

func TestStoreGetOriginalAndEnhancedRecipes(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		original := mustCreate(t, store, newRecipe("Base", models.RecipeTypeManual, "x"))
		mustCreate(t, store, newRecipe("Other", models.RecipeTypeManual, "x"))

		child := newRecipe("Better", models.RecipeTypeEnhanced, "x")
		child.OriginalRecipeID = &original.ID
		first := mustCreate(t, store, child)

		grandchild := newRecipe("Best", models.RecipeTypeEnhanced, "x")
		grandchild.OriginalRecipeID = &first.ID
		mustCreate(t, store, grandchild)

		versions, err := store.GetOriginalAndEnhancedRecipes(original.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{original.ID, first.ID}, recipeIDs(versions))

		none, err := store.GetOriginalAndEnhancedRecipes(100)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		input := newRecipe("Soup", models.RecipeTypeManual, "water")
		created := mustCreate(t, store, input)

		input.Ingredients[0] = "changed"
		created.Ingredients[0] = "changed"
		created.Title = "changed"

		fetched, _, err := store.GetRecipeByID(created.ID)
		require.NoError(t, err)
		fetched.Ingredients[0] = "changed"

		stored, _, err := store.GetRecipeByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Soup", stored.Title)
		assert.Equal(t, []string{"water"}, []string(stored.Ingredients))
	})
}

func TestStoreReturnsCopiesOfAdditionalData(t *testing.T) {
	forEachStore(t, func(t *testing.T, store RecipeStore) {
		input := newRecipe("Soup", models.RecipeTypeEnhanced, "water")
		input.AdditionalData = &datatypes.JSONMap{
			models.EnhancementSummaryKey: []any{"Added salt"},
			"notes":                      map[string]any{"source": "kitchen"},
		}
		created := mustCreate(t, store, input)

		(*input.AdditionalData)[models.EnhancementSummaryKey].([]any)[0] = "changed"

		fetched, _, err := store.GetRecipeByID(created.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.AdditionalData)
		(*fetched.AdditionalData)[models.EnhancementSummaryKey].([]any)[0] = "changed"
		(*fetched.AdditionalData)["notes"].(map[string]any)["source"] = "changed"

		stored, _, err := store.GetRecipeByID(created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AdditionalData)
		assert.Equal(t, []any{"Added salt"}, (*stored.AdditionalData)[models.EnhancementSummaryKey])
		assert.Equal(t, map[string]any{"source": "kitchen"}, (*stored.AdditionalData)["notes"])
	})
}

func TestMemoryStoreUsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.FixedZone("CET", 3600))
	store := NewMemoryRecipeStore().(*memoryRecipeStore)
	store.now = func() time.Time { return fixed }

	created := mustCreate(t, store, newRecipe("Soup", models.RecipeTypeManual, "water"))

	assert.Equal(t, time.UTC, created.CreatedAt.Location())
	assert.True(t, created.CreatedAt.Equal(fixed.Truncate(time.Microsecond)))
}
