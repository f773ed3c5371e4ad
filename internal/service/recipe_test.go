package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/recipepal/server/internal/models"
)

func soupInput() (RecipeInput, []IngredientInput, []string) {
	input := RecipeInput{
		Title:        "Soup",
		Servings:     4,
		Instructions: "Boil.",
	}
	ingredients := []IngredientInput{
		{Name: "Water", Amount: 2, Unit: "L"},
	}
	return input, ingredients, []string{"soup", "quick"}
}

// setCreatedAt pins a recipe's creation time so list ordering is
// deterministic in tests.
func setCreatedAt(t *testing.T, db *gorm.DB, recipeID uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", recipeID).Update("created_at", at).Error)
}

func TestCreateRecipePreservesIngredientOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	input := RecipeInput{Title: "Stew", Servings: 2, Instructions: "Simmer."}
	ingredients := []IngredientInput{
		{Name: "Onion", Amount: 1, Unit: "pc"},
		{Name: "Carrot", Amount: 3, Unit: "pc", Notes: "diced"},
		{Name: "Beef", Amount: 0.5, Unit: "kg"},
	}

	created, err := svc.CreateRecipe(ctx, user.ID, input, ingredients, []string{"Dinner", "comfort", "dinner"})
	require.NoError(t, err)

	got, err := svc.GetRecipe(ctx, user.ID, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, "Onion", got.Ingredients[0].Name)
	assert.Equal(t, "Carrot", got.Ingredients[1].Name)
	assert.Equal(t, "diced", got.Ingredients[1].Notes)
	assert.Equal(t, "Beef", got.Ingredients[2].Name)

	// Tag names come back deduplicated and lowercased.
	assert.ElementsMatch(t, []string{"dinner", "comfort"}, got.Tags)
}

func TestGetRecipeOtherUserNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	alice := createTestUser(t, db, "a@x.com")
	bob := createTestUser(t, db, "b@x.com")
	ctx := context.Background()

	input, ingredients, tags := soupInput()
	created, err := svc.CreateRecipe(ctx, alice.ID, input, ingredients, tags)
	require.NoError(t, err)

	// Another user's recipe is indistinguishable from a missing one.
	_, err = svc.GetRecipe(ctx, bob.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetRecipe(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTagDeduplicatedAcrossRecipes(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	alice := createTestUser(t, db, "a@x.com")
	bob := createTestUser(t, db, "b@x.com")
	ctx := context.Background()

	input, ingredients, _ := soupInput()
	_, err := svc.CreateRecipe(ctx, alice.ID, input, ingredients, []string{"Dessert"})
	require.NoError(t, err)
	_, err = svc.CreateRecipe(ctx, bob.ID, input, ingredients, []string{"dessert"})
	require.NoError(t, err)

	var tags []models.Tag
	require.NoError(t, db.Where("name = ?", "dessert").Find(&tags).Error)
	assert.Len(t, tags, 1)
}

func TestUpdateReplacesIngredientSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	input, ingredients, tags := soupInput()
	created, err := svc.CreateRecipe(ctx, user.ID, input, ingredients, tags)
	require.NoError(t, err)

	newIngredients := []IngredientInput{
		{Name: "Stock", Amount: 1.5, Unit: "L"},
		{Name: "Noodles", Amount: 200, Unit: "g"},
	}
	updated, err := svc.UpdateRecipe(ctx, user.ID, created.ID, input, newIngredients, tags)
	require.NoError(t, err)
	require.Len(t, updated.Ingredients, 2)
	assert.Equal(t, "Stock", updated.Ingredients[0].Name)
	assert.Equal(t, "Noodles", updated.Ingredients[1].Name)

	// No residual rows survive the replace.
	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Where("recipe_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUpdateSoupScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	input, ingredients, tags := soupInput()
	created, err := svc.CreateRecipe(ctx, user.ID, input, ingredients, tags)
	require.NoError(t, err)
	assert.Len(t, created.Ingredients, 1)
	assert.ElementsMatch(t, []string{"soup", "quick"}, created.Tags)

	_, err = svc.UpdateRecipe(ctx, user.ID, created.ID, input, ingredients, []string{"soup"})
	require.NoError(t, err)

	got, err := svc.GetRecipe(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"soup"}, got.Tags)
}

func TestUpdateNotOwnedNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	alice := createTestUser(t, db, "a@x.com")
	bob := createTestUser(t, db, "b@x.com")
	ctx := context.Background()

	input, ingredients, tags := soupInput()
	created, err := svc.CreateRecipe(ctx, alice.ID, input, ingredients, tags)
	require.NoError(t, err)

	_, err = svc.UpdateRecipe(ctx, bob.ID, created.ID, input, ingredients, tags)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteRecipe(ctx, bob.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Alice's recipe is untouched.
	_, err = svc.GetRecipe(ctx, alice.ID, created.ID)
	assert.NoError(t, err)
}

func TestListRecipesNewestFirstWithTagFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	user := createTestUser(t, db, "a@x.com")
	other := createTestUser(t, db, "b@x.com")
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mk := func(title string, tags []string, offset time.Duration) uuid.UUID {
		input := RecipeInput{Title: title, Servings: 1, Instructions: "Cook."}
		created, err := svc.CreateRecipe(ctx, user.ID, input, nil, tags)
		require.NoError(t, err)
		setCreatedAt(t, db, created.ID, base.Add(offset))
		return created.ID
	}

	oldest := mk("Chili", []string{"vegan", "spicy"}, 0)
	middle := mk("Toast", []string{"breakfast"}, time.Hour)
	newest := mk("Salad", []string{"Vegan"}, 2*time.Hour)

	// A recipe owned by someone else never shows up.
	otherInput := RecipeInput{Title: "Secret", Servings: 1, Instructions: "Hide."}
	_, err := svc.CreateRecipe(ctx, other.ID, otherInput, nil, []string{"vegan"})
	require.NoError(t, err)

	all, err := svc.ListRecipes(ctx, user.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest, all[0].ID)
	assert.Equal(t, middle, all[1].ID)
	assert.Equal(t, oldest, all[2].ID)

	// Tag filter keeps the relative order of the unfiltered list.
	vegan, err := svc.ListRecipes(ctx, user.ID, "vegan")
	require.NoError(t, err)
	require.Len(t, vegan, 2)
	assert.Equal(t, newest, vegan[0].ID)
	assert.Equal(t, oldest, vegan[1].ID)

	none, err := svc.ListRecipes(ctx, user.ID, "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteRecipeKeepsOrphanTags(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	input, ingredients, _ := soupInput()
	created, err := svc.CreateRecipe(ctx, user.ID, input, ingredients, []string{"onlyhere"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecipe(ctx, user.ID, created.ID))

	_, err = svc.GetRecipe(ctx, user.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListRecipes(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	var ingredientCount, joinCount int64
	require.NoError(t, db.Model(&models.Ingredient{}).Where("recipe_id = ?", created.ID).Count(&ingredientCount).Error)
	require.NoError(t, db.Model(&models.RecipeTag{}).Where("recipe_id = ?", created.ID).Count(&joinCount).Error)
	assert.Zero(t, ingredientCount)
	assert.Zero(t, joinCount)

	// The tag itself survives as an orphan.
	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "onlyhere", tags[0].Name)
}

func TestListTagsSortedByName(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	input, ingredients, _ := soupInput()
	_, err := svc.CreateRecipe(ctx, user.ID, input, ingredients, []string{"zucchini", "apple", "Mango"})
	require.NoError(t, err)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "apple", tags[0].Name)
	assert.Equal(t, "mango", tags[1].Name)
	assert.Equal(t, "zucchini", tags[2].Name)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecipeService(db)
	user := createTestUser(t, db, "a@x.com")
	ctx := context.Background()

	cases := []struct {
		name        string
		input       RecipeInput
		ingredients []IngredientInput
	}{
		{
			name:  "missing title",
			input: RecipeInput{Servings: 2, Instructions: "Cook."},
		},
		{
			name:  "zero servings",
			input: RecipeInput{Title: "Soup", Instructions: "Cook."},
		},
		{
			name:  "negative prep time",
			input: RecipeInput{Title: "Soup", Servings: 2, PrepTime: -5, Instructions: "Cook."},
		},
		{
			name:  "missing instructions",
			input: RecipeInput{Title: "Soup", Servings: 2},
		},
		{
			name:        "ingredient without name",
			input:       RecipeInput{Title: "Soup", Servings: 2, Instructions: "Cook."},
			ingredients: []IngredientInput{{Amount: 1, Unit: "L"}},
		},
		{
			name:        "ingredient with zero amount",
			input:       RecipeInput{Title: "Soup", Servings: 2, Instructions: "Cook."},
			ingredients: []IngredientInput{{Name: "Water", Unit: "L"}},
		},
		{
			name:        "ingredient without unit",
			input:       RecipeInput{Title: "Soup", Servings: 2, Instructions: "Cook."},
			ingredients: []IngredientInput{{Name: "Water", Amount: 1}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRecipe(ctx, user.ID, tc.input, tc.ingredients, nil)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := normalizeTags([]string{" Dessert ", "dessert", "", "QUICK", "quick"})
	assert.Equal(t, []string{"dessert", "quick"}, got)
}
