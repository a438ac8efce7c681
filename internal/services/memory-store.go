package services

import (
	"slices"
	"sync"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
)

// memoryRecipeStore keeps recipes in a process-local map. Contents are lost on
// restart.
type memoryRecipeStore struct {
	mu      sync.RWMutex
	recipes map[int]models.Recipe
	nextID  int
	now     func() time.Time
}

// NewMemoryRecipeStore creates an empty in-memory RecipeStore. IDs start at 1.
func NewMemoryRecipeStore() RecipeStore {
	return &memoryRecipeStore{
		recipes: make(map[int]models.Recipe),
		nextID:  1,
		now:     time.Now,
	}
}

func (s *memoryRecipeStore) GetAllRecipes() ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(models.Recipe) bool { return true }), nil
}

func (s *memoryRecipeStore) GetRecipeByID(id int) (models.Recipe, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipe, ok := s.recipes[id]
	if !ok {
		return models.Recipe{}, false, nil
	}
	return recipe.Clone(), true, nil
}

func (s *memoryRecipeStore) GetOriginalAndEnhancedRecipes(originalID int) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r models.Recipe) bool {
		return r.ID == originalID || (r.OriginalRecipeID != nil && *r.OriginalRecipeID == originalID)
	}), nil
}

func (s *memoryRecipeStore) CreateRecipe(recipe models.Recipe) (models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := prepareForInsert(recipe, s.now())
	record.ID = s.nextID
	s.nextID++
	s.recipes[record.ID] = record
	return record.Clone(), nil
}

func (s *memoryRecipeStore) DeleteRecipe(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return false, nil
	}
	delete(s.recipes, id)
	return true, nil
}

func (s *memoryRecipeStore) SearchRecipes(query string) ([]models.Recipe, error) {
	all, _ := s.GetAllRecipes()
	return filterRecipes(all, query), nil
}

func (s *memoryRecipeStore) GetRecipesByType(recipeType string) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r models.Recipe) bool {
		return recipeType == models.RecipeTypeAll || r.RecipeType == recipeType
	}), nil
}

// collect returns copies of matching recipes ordered by ID. Callers hold the lock.
func (s *memoryRecipeStore) collect(keep func(models.Recipe) bool) []models.Recipe {
	out := make([]models.Recipe, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		if keep(recipe) {
			out = append(out, recipe.Clone())
		}
	}
	slices.SortFunc(out, func(a, b models.Recipe) int { return a.ID - b.ID })
	return out
}
