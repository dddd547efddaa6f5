package gorm

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/larderapp/larder/internal/domain/recipe"
	"github.com/larderapp/larder/internal/ports/outbound"
)

// RecipeRepository implements outbound.RecipeRepository using GORM
type RecipeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ outbound.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository creates a new GORM recipe repository
func NewRecipeRepository(db *gorm.DB, logger *zap.Logger) *RecipeRepository {
	return &RecipeRepository{db: db, logger: logger}
}

// Create persists a recipe with its children in one transaction
func (r *RecipeRepository) Create(ctx context.Context, entity *recipe.Recipe) (int64, error) {
	model := RecipeToModel(entity)
	model.ID = 0
	for i := range model.Ingredients {
		model.Ingredients[i].RecipeID = 0
	}
	for i := range model.Steps {
		model.Steps[i].RecipeID = 0
	}
	for i := range model.Tags {
		model.Tags[i].RecipeID = 0
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

// Update saves the recipe row and replaces its children wholesale
func (r *RecipeRepository) Update(ctx context.Context, entity *recipe.Recipe) error {
	model := RecipeToModel(entity)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RecipeModel{}).Where("id = ?", model.ID).Updates(map[string]interface{}{
			"title":             model.Title,
			"description":       model.Description,
			"servings":          model.Servings,
			"prep_time_minutes": model.PrepTimeMinutes,
			"cook_time_minutes": model.CookTimeMinutes,
			"rating":            model.Rating,
			"source_type":       model.SourceType,
			"source_text":       model.SourceText,
			"source_context":    model.SourceContext,
			"parent_recipe_id":  model.ParentRecipeID,
			"variant_type":      model.VariantType,
			"updated_at":        model.UpdatedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}

		if err := deleteChildren(tx, model.ID); err != nil {
			return err
		}
		for i := range model.Ingredients {
			model.Ingredients[i].ID = 0
			model.Ingredients[i].RecipeID = model.ID
		}
		for i := range model.Steps {
			model.Steps[i].ID = 0
			model.Steps[i].RecipeID = model.ID
		}
		for i := range model.Tags {
			model.Tags[i].ID = 0
			model.Tags[i].RecipeID = model.ID
		}
		if len(model.Ingredients) > 0 {
			if err := tx.Create(&model.Ingredients).Error; err != nil {
				return err
			}
		}
		if len(model.Steps) > 0 {
			if err := tx.Create(&model.Steps).Error; err != nil {
				return err
			}
		}
		if len(model.Tags) > 0 {
			if err := tx.Create(&model.Tags).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the recipe, its direct variants and all their
// children. Variants of variants do not exist so one level suffices.
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var childIDs []int64
		if err := tx.Model(&RecipeModel{}).
			Where("parent_recipe_id = ?", id).
			Pluck("id", &childIDs).Error; err != nil {
			return err
		}

		targets := append(childIDs, id)
		for _, targetID := range targets {
			if err := deleteChildren(tx, targetID); err != nil {
				return err
			}
			if err := tx.Delete(&ChatMessageModel{}, "recipe_id = ?", targetID).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&RecipeModel{}, "id IN ?", targets)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}
		return nil
	})
}

// UpdateRating sets only the rating column
func (r *RecipeRepository) UpdateRating(ctx context.Context, id int64, rating recipe.Rating) error {
	result := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("id = ?", id).
		Update("rating", string(rating))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// FindByID loads a recipe with its children in position order
func (r *RecipeRepository) FindByID(ctx context.Context, id int64) (*recipe.Recipe, error) {
	var model RecipeModel
	err := r.preloaded(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, err
	}
	return ModelToRecipe(&model)
}

// FindRoots lists recipes with no parent, newest first
func (r *RecipeRepository) FindRoots(ctx context.Context) ([]*recipe.Recipe, error) {
	var models []RecipeModel
	err := r.preloaded(ctx).
		Where("parent_recipe_id IS NULL").
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	recipes := make([]*recipe.Recipe, 0, len(models))
	for i := range models {
		entity, err := ModelToRecipe(&models[i])
		if err != nil {
			r.logger.Warn("Skipping unmappable recipe row",
				zap.Int64("recipe_id", models[i].ID), zap.Error(err))
			continue
		}
		recipes = append(recipes, entity)
	}
	return recipes, nil
}

// FindPortionVariants lists portion-variant refs of a parent, sorted
// by servings then id
func (r *RecipeRepository) FindPortionVariants(ctx context.Context, parentID int64) ([]recipe.Ref, error) {
	return r.findRefs(ctx, "parent_recipe_id = ? AND variant_type = ?", parentID, string(recipe.VariantTypePortion))
}

// FindContentVariants lists content-variant refs of a parent. A set
// parent with no variant type counts as content.
func (r *RecipeRepository) FindContentVariants(ctx context.Context, parentID int64) ([]recipe.Ref, error) {
	return r.findRefs(ctx, "parent_recipe_id = ? AND variant_type <> ?", parentID, string(recipe.VariantTypePortion))
}

func (r *RecipeRepository) findRefs(ctx context.Context, query string, args ...interface{}) ([]recipe.Ref, error) {
	var models []RecipeModel
	err := r.db.WithContext(ctx).
		Select("id", "title", "servings").
		Where(query, args...).
		Order("servings ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	refs := make([]recipe.Ref, len(models))
	for i := range models {
		refs[i] = ModelToRef(&models[i])
	}
	return refs, nil
}

// Ref loads a lightweight reference without the child rows
func (r *RecipeRepository) Ref(ctx context.Context, id int64) (*recipe.Ref, error) {
	var model RecipeModel
	err := r.db.WithContext(ctx).
		Select("id", "title", "servings").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, err
	}
	ref := ModelToRef(&model)
	return &ref, nil
}

// DistinctTags lists every tag in use, alphabetically
func (r *RecipeRepository) DistinctTags(ctx context.Context) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).Model(&TagModel{}).
		Distinct("tag").
		Order("tag ASC").
		Pluck("tag", &tags).Error
	return tags, err
}

func (r *RecipeRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Tags")
}

func deleteChildren(tx *gorm.DB, recipeID int64) error {
	if err := tx.Delete(&IngredientModel{}, "recipe_id = ?", recipeID).Error; err != nil {
		return err
	}
	if err := tx.Delete(&StepModel{}, "recipe_id = ?", recipeID).Error; err != nil {
		return err
	}
	return tx.Delete(&TagModel{}, "recipe_id = ?", recipeID).Error
}
