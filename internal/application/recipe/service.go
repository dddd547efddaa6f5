// Package recipe implements the recipe management use cases.
package recipe

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/larderapp/larder/internal/domain/recipe"
	"github.com/larderapp/larder/internal/ports/inbound"
	"github.com/larderapp/larder/internal/ports/outbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

// Service implements the RecipeService inbound port
type Service struct {
	repo   outbound.RecipeRepository
	chats  outbound.ChatRepository
	logger *zap.Logger
}

var _ inbound.RecipeService = (*Service)(nil)

// NewService creates a new recipe service
func NewService(repo outbound.RecipeRepository, chats outbound.ChatRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		chats:  chats,
		logger: logger,
	}
}

// CreateRecipe creates a new root recipe from caller-supplied fields
func (s *Service) CreateRecipe(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
	s.logger.Info("Creating recipe", zap.String("title", cmd.Title))

	sourceType := recipe.SourceType(cmd.SourceType)
	if cmd.SourceType == "" {
		sourceType = recipe.SourceTypeText
	}

	r, err := recipe.NewRecipe(cmd.Title, sourceType)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.applyContent(r, cmd); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	r.SetSource(cmd.SourceText, cmd.SourceContext)

	id, err := s.repo.Create(ctx, r)
	if err != nil {
		s.logger.Error("Failed to create recipe", zap.Error(err))
		return nil, apperrors.NewDatabaseError("create recipe", err)
	}
	r.SetID(id)

	dto := ToDTO(r)
	return &dto, nil
}

func (s *Service) applyContent(r *recipe.Recipe, cmd inbound.CreateRecipeCommand) error {
	if err := r.UpdateServings(cmd.Servings); err != nil {
		return err
	}
	if err := r.UpdateTimes(cmd.PrepTimeMinutes, cmd.CookTimeMinutes); err != nil {
		return err
	}
	r.UpdateDescription(cmd.Description)
	if err := r.ReplaceIngredients(IngredientsFromInput(cmd.Ingredients)); err != nil {
		return err
	}
	if err := r.ReplaceSteps(StepsFromInput(cmd.Steps)); err != nil {
		return err
	}
	return r.ReplaceTags(TagsFromInput(cmd.Tags, false))
}

// UpdateRecipe applies a partial update. Child lists, when present,
// replace the stored lists wholesale.
func (s *Service) UpdateRecipe(ctx context.Context, cmd inbound.UpdateRecipeCommand) (*inbound.RecipeDTO, error) {
	r, err := s.loadRecipe(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}

	if cmd.Title != nil {
		if err := r.UpdateTitle(*cmd.Title); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Description != nil {
		r.UpdateDescription(*cmd.Description)
	}
	if cmd.Servings != nil || cmd.ClearServings {
		servings := cmd.Servings
		if cmd.ClearServings {
			servings = nil
		}
		if err := r.UpdateServings(servings); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.PrepTimeMinutes != nil || cmd.CookTimeMinutes != nil {
		prep := r.PrepTimeMinutes()
		cook := r.CookTimeMinutes()
		if cmd.PrepTimeMinutes != nil {
			prep = cmd.PrepTimeMinutes
		}
		if cmd.CookTimeMinutes != nil {
			cook = cmd.CookTimeMinutes
		}
		if err := r.UpdateTimes(prep, cook); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.SourceContext != nil {
		r.UpdateSourceContext(*cmd.SourceContext)
	}
	if cmd.Ingredients != nil {
		if err := r.ReplaceIngredients(IngredientsFromInput(*cmd.Ingredients)); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Steps != nil {
		if err := r.ReplaceSteps(StepsFromInput(*cmd.Steps)); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Tags != nil {
		if err := r.ReplaceTags(TagsFromInput(*cmd.Tags, false)); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	if err := s.repo.Update(ctx, r); err != nil {
		s.logger.Error("Failed to update recipe", zap.Int64("recipe_id", cmd.RecipeID), zap.Error(err))
		return nil, apperrors.NewDatabaseError("update recipe", err)
	}

	dto := ToDTO(r)
	return &dto, nil
}

// DeleteRecipe removes a recipe and its direct variants, along with
// any conversation history attached to them
func (s *Service) DeleteRecipe(ctx context.Context, recipeID int64) error {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}

	if err := s.chats.DeleteByRecipe(ctx, recipeID); err != nil {
		s.logger.Warn("Failed to clear chat history", zap.Int64("recipe_id", recipeID), zap.Error(err))
	}

	if err := s.repo.Delete(ctx, recipeID); err != nil {
		s.logger.Error("Failed to delete recipe", zap.Int64("recipe_id", recipeID), zap.Error(err))
		return apperrors.NewDatabaseError("delete recipe", err)
	}

	s.logger.Info("Deleted recipe", zap.Int64("recipe_id", recipeID))
	return nil
}

// RateRecipe sets or clears the recipe's rating
func (s *Service) RateRecipe(ctx context.Context, recipeID int64, rating string) error {
	verdict := recipe.Rating(rating)
	if err := verdict.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}

	if err := s.repo.UpdateRating(ctx, recipeID, verdict); err != nil {
		return apperrors.NewDatabaseError("update rating", err)
	}
	return nil
}

// GetRecipe returns the full view of a recipe with lineage context
func (s *Service) GetRecipe(ctx context.Context, recipeID int64) (*inbound.RecipeDetail, error) {
	r, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	detail := &inbound.RecipeDetail{
		Recipe:          ToDTO(r),
		PortionOptions:  []inbound.PortionOption{},
		ContentVariants: []inbound.VariantRef{},
	}

	if parentID := r.ParentRecipeID(); parentID != nil {
		parent, err := s.repo.Ref(ctx, *parentID)
		if err == nil && parent != nil {
			detail.Parent = &inbound.VariantRef{
				ID:       parent.ID,
				Title:    parent.Title,
				Servings: parent.Servings,
			}
		}
	}

	options, err := s.portionOptions(ctx, r)
	if err != nil {
		return nil, err
	}
	detail.PortionOptions = options

	contentRefs, err := s.repo.FindContentVariants(ctx, r.EffectiveRootID())
	if err != nil {
		return nil, apperrors.NewDatabaseError("list content variants", err)
	}
	for _, ref := range contentRefs {
		detail.ContentVariants = append(detail.ContentVariants, inbound.VariantRef{
			ID:       ref.ID,
			Title:    ref.Title,
			Servings: ref.Servings,
		})
	}

	return detail, nil
}

// ListRoots lists all recipes with no parent
func (s *Service) ListRoots(ctx context.Context) ([]inbound.RecipeDTO, error) {
	roots, err := s.repo.FindRoots(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recipes", err)
	}

	dtos := make([]inbound.RecipeDTO, len(roots))
	for i, r := range roots {
		dtos[i] = ToDTO(r)

		refs, err := s.repo.FindPortionVariants(ctx, r.ID())
		if err != nil {
			return nil, apperrors.NewDatabaseError("list portion variants", err)
		}
		for _, ref := range refs {
			dtos[i].PortionVariants = append(dtos[i].PortionVariants, inbound.VariantRef{
				ID:       ref.ID,
				Title:    ref.Title,
				Servings: ref.Servings,
			})
		}
	}
	return dtos, nil
}

// GetPortionSiblings enumerates the portion options of the recipe's
// lineage group. The result is identical no matter which sibling the
// query starts from; only the "current" flag moves.
func (s *Service) GetPortionSiblings(ctx context.Context, recipeID int64) ([]inbound.PortionOption, error) {
	r, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return s.portionOptions(ctx, r)
}

func (s *Service) portionOptions(ctx context.Context, r *recipe.Recipe) ([]inbound.PortionOption, error) {
	rootID := r.EffectiveRootID()

	root, err := s.repo.Ref(ctx, rootID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load lineage root", err)
	}

	refs, err := s.repo.FindPortionVariants(ctx, rootID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list portion variants", err)
	}
	if root != nil && root.Servings != nil {
		refs = append(refs, *root)
	}

	sort.SliceStable(refs, func(i, j int) bool {
		si, sj := servingsOrZero(refs[i]), servingsOrZero(refs[j])
		if si != sj {
			return si < sj
		}
		return refs[i].ID < refs[j].ID
	})

	options := make([]inbound.PortionOption, 0, len(refs))
	for _, ref := range refs {
		if ref.Servings == nil {
			continue
		}
		options = append(options, inbound.PortionOption{
			RecipeID: ref.ID,
			Servings: *ref.Servings,
			Current:  ref.ID == r.ID(),
		})
	}
	return options, nil
}

// ScaleRecipe builds a portion-variant proposal at the target serving
// count. The proposal re-enters the system through the chat mutation
// protocol; nothing is persisted here.
func (s *Service) ScaleRecipe(ctx context.Context, recipeID int64, targetServings float64) (*inbound.RecipeProposal, error) {
	r, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	base := 0.0
	if r.Servings() != nil {
		base = *r.Servings()
	}
	scale, err := recipe.ScaleFactor(base, targetServings)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	baseID := r.EffectiveRootID()
	target := targetServings

	ingredients := make([]inbound.ProposalItem, len(r.Ingredients()))
	for i, ing := range r.Ingredients() {
		item := inbound.ProposalItem{
			Name:  ing.Name,
			Unit:  ing.Unit,
			Notes: ing.Notes,
		}
		if ing.Quantity != nil {
			scaled := math.Round(recipe.ScaleQuantity(*ing.Quantity, scale)*100) / 100
			item.Quantity = &scaled
		}
		ingredients[i] = item
	}

	steps := make([]inbound.ProposalStep, len(r.Steps()))
	for i, st := range r.Steps() {
		steps[i] = inbound.ProposalStep{Instruction: recipe.ScaleMarkers(st.Instruction, scale)}
	}

	tags := make([]string, len(r.Tags()))
	for i, t := range r.Tags() {
		tags[i] = t.Tag
	}

	return &inbound.RecipeProposal{
		Title:           r.Title(),
		Description:     r.Description(),
		Servings:        &target,
		PrepTimeMinutes: r.PrepTimeMinutes(),
		CookTimeMinutes: r.CookTimeMinutes(),
		Ingredients:     ingredients,
		Steps:           steps,
		Tags:            tags,
		VariantType:     string(recipe.VariantTypePortion),
		ParentRecipeID:  &baseID,
	}, nil
}

func (s *Service) loadRecipe(ctx context.Context, recipeID int64) (*recipe.Recipe, error) {
	r, err := s.repo.FindByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(recipeID)
		}
		return nil, apperrors.NewDatabaseError("load recipe", err)
	}
	return r, nil
}

func servingsOrZero(ref recipe.Ref) float64 {
	if ref.Servings == nil {
		return 0
	}
	return *ref.Servings
}
