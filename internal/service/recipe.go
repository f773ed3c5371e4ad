package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recipepal/server/internal/models"
)

// RecipeService owns recipes, their ingredient sets and their tag
// associations. Every query and mutation is scoped to the owning user.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// RecipeInput carries the scalar fields of a recipe.
type RecipeInput struct {
	Title        string
	Description  string
	Servings     int
	PrepTime     int
	CookTime     int
	Instructions string
}

// IngredientInput is one submitted ingredient line. Input order is preserved
// as the visible order of the stored set.
type IngredientInput struct {
	Name   string
	Amount float64
	Unit   string
	Notes  string
}

func validateRecipe(input RecipeInput, ingredients []IngredientInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Servings <= 0 {
		return fmt.Errorf("%w: servings must be positive", ErrValidation)
	}
	if input.PrepTime < 0 || input.CookTime < 0 {
		return fmt.Errorf("%w: prep and cook times cannot be negative", ErrValidation)
	}
	if strings.TrimSpace(input.Instructions) == "" {
		return fmt.Errorf("%w: instructions are required", ErrValidation)
	}
	for i, ing := range ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("%w: ingredient %d is missing a name", ErrValidation, i+1)
		}
		if ing.Amount <= 0 {
			return fmt.Errorf("%w: ingredient %q must have a positive amount", ErrValidation, ing.Name)
		}
		if strings.TrimSpace(ing.Unit) == "" {
			return fmt.Errorf("%w: ingredient %q is missing a unit", ErrValidation, ing.Name)
		}
	}
	return nil
}

// normalizeTags lowercases and trims tag names, dropping empties and
// duplicates while keeping first-occurrence order.
func normalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// resolveOrCreateTag returns the id of the tag with the given normalized
// name, creating it if absent. The insert races against concurrent requests
// for the same name, so it is an upsert keyed on the unique name index
// rather than a check-then-insert.
func resolveOrCreateTag(tx *gorm.DB, name string) (uuid.UUID, error) {
	tag := models.Tag{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error
	if err != nil {
		return uuid.Nil, err
	}

	// On conflict nothing was inserted and tag.ID holds a discarded value,
	// so always read the id back by name, into a fresh struct so the stale
	// primary key cannot leak into the query conditions.
	var stored models.Tag
	if err := tx.Where("name = ?", name).First(&stored).Error; err != nil {
		return uuid.Nil, err
	}
	return stored.ID, nil
}

// replaceTags rewrites the recipe's tag associations: all prior join rows are
// deleted, then one row per resolved tag is inserted.
func replaceTags(tx *gorm.DB, recipeID uuid.UUID, tagNames []string) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	for _, name := range tagNames {
		tagID, err := resolveOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Create(&models.RecipeTag{RecipeID: recipeID, TagID: tagID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// replaceIngredients rewrites the recipe's ingredient set. Ingredient ids are
// not preserved across updates; the prior set is deleted wholesale.
func replaceIngredients(tx *gorm.DB, recipeID uuid.UUID, ingredients []IngredientInput) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Ingredient{}).Error; err != nil {
		return err
	}
	for i, ing := range ingredients {
		row := models.Ingredient{
			RecipeID: recipeID,
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
			Position: i,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateRecipe inserts a recipe with its ingredient set and tag associations
// in a single transaction and returns the stored aggregate.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, input RecipeInput, ingredients []IngredientInput, tagNames []string) (*models.Recipe, error) {
	if err := validateRecipe(input, ingredients); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		UserID:       userID,
		Title:        input.Title,
		Description:  input.Description,
		Servings:     input.Servings,
		PrepTime:     input.PrepTime,
		CookTime:     input.CookTime,
		Instructions: input.Instructions,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceIngredients(tx, recipe.ID, ingredients); err != nil {
			return err
		}
		return replaceTags(tx, recipe.ID, normalizeTags(tagNames))
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, userID, recipe.ID)
}

// GetRecipe returns the aggregate for a recipe owned by userID. A recipe that
// does not exist and a recipe owned by someone else both yield ErrNotFound.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients", orderedIngredients).
		Where("id = ? AND user_id = ?", recipeID, userID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.attachTags(ctx, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns the user's recipes newest first. When tagFilter is
// non-empty the result is restricted to recipes carrying at least one tag
// with that normalized name.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, tagFilter string) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).
		Preload("Ingredients", orderedIngredients).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if tagFilter = strings.ToLower(strings.TrimSpace(tagFilter)); tagFilter != "" {
		tagged := s.db.Model(&models.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.name = ?", tagFilter)
		query = query.Where("id IN (?)", tagged)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	for i := range recipes {
		if err := s.attachTags(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

// UpdateRecipe replaces the scalar fields, the full ingredient set and the
// full tag association set of a recipe the user owns, in one transaction.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, input RecipeInput, ingredients []IngredientInput, tagNames []string) (*models.Recipe, error) {
	if err := validateRecipe(input, ingredients); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", recipeID, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"title":        input.Title,
			"description":  input.Description,
			"servings":     input.Servings,
			"prep_time":    input.PrepTime,
			"cook_time":    input.CookTime,
			"instructions": input.Instructions,
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}

		if err := replaceIngredients(tx, recipe.ID, ingredients); err != nil {
			return err
		}
		return replaceTags(tx, recipe.ID, normalizeTags(tagNames))
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, userID, recipeID)
}

// DeleteRecipe removes a recipe the user owns together with its ingredient
// set and tag associations. Tags themselves are left in place even when no
// recipe references them anymore.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", recipeID, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// ListTags returns every known tag sorted by name.
func (s *RecipeService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func orderedIngredients(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (s *RecipeService) attachTags(ctx context.Context, recipe *models.Recipe) error {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.RecipeTag{}).
		Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
		Where("recipe_tags.recipe_id = ?", recipe.ID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	recipe.Tags = names
	return nil
}
