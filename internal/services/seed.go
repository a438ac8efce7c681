package services

import (
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	log "github.com/sirupsen/logrus"
)

func sampleRecipes() []models.Recipe {
	return []models.Recipe{
		{
			Title:        "Classic Tomato Bruschetta",
			Description:  ptr("Toasted bread topped with fresh tomatoes, garlic and basil."),
			Ingredients:  []string{"4 ripe tomatoes", "1 baguette", "2 cloves garlic", "Fresh basil", "Olive oil", "Salt"},
			Instructions: []string{"Dice the tomatoes and mix with chopped basil, garlic, olive oil and salt.", "Slice and toast the baguette.", "Spoon the tomato mixture over the toast and serve."},
			CookingTime:  ptr(15),
			Servings:     ptr(4),
			Difficulty:   ptr("Easy"),
			CuisineType:  ptr("Italian"),
		},
		{
			Title:        "Vegetable Fried Rice",
			Description:  ptr("A quick way to use up leftover rice and vegetables."),
			Ingredients:  []string{"3 cups cooked rice", "2 eggs", "1 cup mixed vegetables", "2 tbsp soy sauce", "1 tbsp sesame oil", "2 spring onions"},
			Instructions: []string{"Scramble the eggs in a hot wok and set aside.", "Stir-fry the vegetables for 3 minutes.", "Add the rice and soy sauce and fry until hot.", "Fold in the eggs, sesame oil and spring onions."},
			CookingTime:  ptr(20),
			Servings:     ptr(3),
			Difficulty:   ptr("Easy"),
			CuisineType:  ptr("Chinese"),
		},
	}
}

// SeedSampleRecipes stores a few manual recipes when the collection is empty.
// It returns the number of recipes created.
func SeedSampleRecipes(service RecipeService) (int, error) {
	existing, err := service.ListRecipes()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.WithField("count", len(existing)).Debug("Recipes already present, skipping seed")
		return 0, nil
	}

	created := 0
	for _, recipe := range sampleRecipes() {
		if _, err := service.SaveManualRecipe(recipe); err != nil {
			return created, err
		}
		created++
	}
	log.WithField("count", created).Info("Seeded sample recipes")
	return created, nil
}

func ptr[T any](v T) *T {
	return &v
}
