// Package ingest implements the import pipeline: capture a source,
// run model extraction over it, reconcile multi-variant payloads into
// a lineage group, and persist the result.
package ingest

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	recipeapp "github.com/larderapp/larder/internal/application/recipe"
	"github.com/larderapp/larder/internal/domain/recipe"
	"github.com/larderapp/larder/internal/ports/inbound"
	"github.com/larderapp/larder/internal/ports/outbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

// photoSeparator joins per-image transcriptions before parsing
const photoSeparator = "\n\n---\n\n"

// Service implements the ImportService inbound port
type Service struct {
	repo     outbound.RecipeRepository
	ai       outbound.CompletionClient
	fetcher  outbound.URLFetcher
	progress outbound.ProgressNotifier
	logger   *zap.Logger
}

var _ inbound.ImportService = (*Service)(nil)

// NewService creates a new import service
func NewService(
	repo outbound.RecipeRepository,
	ai outbound.CompletionClient,
	fetcher outbound.URLFetcher,
	progress outbound.ProgressNotifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		ai:       ai,
		fetcher:  fetcher,
		progress: progress,
		logger:   logger,
	}
}

// ImportFromText runs extraction over pasted text
func (s *Service) ImportFromText(ctx context.Context, cmd inbound.ImportTextCommand) (*inbound.ImportResult, error) {
	ext, err := s.extract(ctx, cmd.JobID, cmd.Text)
	if err != nil {
		return nil, s.fail(cmd.JobID, err)
	}
	return s.save(ctx, cmd.JobID, ext, recipe.SourceTypeText, cmd.Text, cmd.SourceContext)
}

// ImportFromURL fetches a web page and runs extraction over its text
func (s *Service) ImportFromURL(ctx context.Context, cmd inbound.ImportURLCommand) (*inbound.ImportResult, error) {
	s.progress.Publish(cmd.JobID, inbound.StageFetching, cmd.URL)

	text, err := s.fetcher.FetchText(ctx, cmd.URL)
	if err != nil {
		s.logger.Error("Failed to fetch URL", zap.String("url", cmd.URL), zap.Error(err))
		return nil, s.fail(cmd.JobID, apperrors.NewExternalServiceError("url fetcher", err))
	}

	ext, err := s.extract(ctx, cmd.JobID, text)
	if err != nil {
		return nil, s.fail(cmd.JobID, err)
	}
	return s.save(ctx, cmd.JobID, ext, recipe.SourceTypeURL, text, cmd.URL)
}

// ImportFromPhotos transcribes each photo, joins the transcriptions
// and runs extraction over the combined text
func (s *Service) ImportFromPhotos(ctx context.Context, cmd inbound.ImportPhotosCommand) (*inbound.ImportResult, error) {
	if len(cmd.Photos) == 0 {
		return nil, s.fail(cmd.JobID, apperrors.NewValidationError("at least one photo is required"))
	}

	s.progress.Publish(cmd.JobID, inbound.StageFetching, "transcribing photos")

	combined := ""
	for i, photo := range cmd.Photos {
		text, err := s.ai.CompleteWithImage(ctx, imageExtractPrompt, photo.Data, photo.MimeType)
		if err != nil {
			s.logger.Error("Photo transcription failed", zap.Int("photo", i), zap.Error(err))
			return nil, s.fail(cmd.JobID, apperrors.NewExternalServiceError("completion provider", err))
		}
		if i > 0 {
			combined += photoSeparator
		}
		combined += text
	}

	ext, err := s.extract(ctx, cmd.JobID, combined)
	if err != nil {
		return nil, s.fail(cmd.JobID, err)
	}
	return s.save(ctx, cmd.JobID, ext, recipe.SourceTypePhoto, combined, cmd.SourceContext)
}

// GenerateRecipe creates a recipe from a free-form request. Generation
// always yields a single recipe; a multi-variant response is a
// provider fault.
func (s *Service) GenerateRecipe(ctx context.Context, cmd inbound.GenerateRecipeCommand) (*inbound.ImportResult, error) {
	s.progress.Publish(cmd.JobID, inbound.StageExtracting, "")

	response, err := s.ai.Complete(ctx, generatePrompt+cmd.Prompt)
	if err != nil {
		return nil, s.fail(cmd.JobID, apperrors.NewExternalServiceError("completion provider", err))
	}

	s.progress.Publish(cmd.JobID, inbound.StageParsing, "")
	ext, err := ParseExtraction(response)
	if err != nil {
		return nil, s.fail(cmd.JobID, s.normalizeError(err))
	}
	if ext.HasVariants() {
		return nil, s.fail(cmd.JobID, apperrors.NewExternalServiceError(
			"completion provider", errors.New("generation returned serving variants")))
	}

	return s.save(ctx, cmd.JobID, ext, recipe.SourceTypeText, cmd.Prompt, "generated")
}

// Reparse re-runs extraction over a recipe's stored source text and
// replaces its content in place. Lineage fields are untouched; a
// multi-variant re-extraction contributes only its smallest variant.
func (s *Service) Reparse(ctx context.Context, recipeID int64) (*inbound.RecipeDTO, error) {
	r, err := s.repo.FindByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(recipeID)
		}
		return nil, apperrors.NewDatabaseError("load recipe", err)
	}
	if r.SourceText() == "" {
		return nil, apperrors.NewValidationError("recipe has no stored source text to re-parse")
	}

	ext, err := s.extract(ctx, uuid.Nil, r.SourceText())
	if err != nil {
		return nil, err
	}

	title := ext.Title
	description := ext.Description
	servings := ext.Servings
	prep := ext.PrepTimeMinutes
	cook := ext.CookTimeMinutes
	ingredients := ext.Ingredients
	steps := ext.Steps
	if ext.HasVariants() {
		sortVariants(ext.Variants)
		v := ext.Variants[0]
		servings = &v.Servings
		prep = v.PrepTimeMinutes
		cook = v.CookTimeMinutes
		ingredients = v.Ingredients
		steps = v.Steps
	}

	if err := r.UpdateTitle(title); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	r.UpdateDescription(description)
	if r.VariantType() != recipe.VariantTypePortion || servings != nil {
		if err := r.UpdateServings(servings); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if err := r.UpdateTimes(prep, cook); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := r.ReplaceIngredients(toIngredients(ingredients)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := r.ReplaceSteps(toSteps(steps)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := r.ReplaceTags(recipeapp.TagsFromInput(ext.SuggestedTags, true)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, apperrors.NewDatabaseError("update recipe", err)
	}

	dto := recipeapp.ToDTO(r)
	return &dto, nil
}

// extract runs the parse prompt over text and normalizes the response
func (s *Service) extract(ctx context.Context, jobID uuid.UUID, text string) (*Extraction, error) {
	tags, err := s.repo.DistinctTags(ctx)
	if err != nil {
		s.logger.Warn("Failed to load tag vocabulary", zap.Error(err))
		tags = nil
	}

	s.progress.Publish(jobID, inbound.StageExtracting, "")
	response, err := s.ai.Complete(ctx, buildParsePrompt(tags)+text)
	if err != nil {
		s.logger.Error("Extraction call failed", zap.Error(err))
		return nil, apperrors.NewExternalServiceError("completion provider", err)
	}

	s.progress.Publish(jobID, inbound.StageParsing, "")
	ext, err := ParseExtraction(response)
	if err != nil {
		return nil, s.normalizeError(err)
	}
	return ext, nil
}

// save persists a normalized extraction. Multi-variant payloads are
// reconciled here: the smallest-servings variant becomes the root and
// the rest become its portion variants, all sharing the root's title,
// description and tags.
func (s *Service) save(
	ctx context.Context,
	jobID uuid.UUID,
	ext *Extraction,
	sourceType recipe.SourceType,
	sourceText, sourceContext string,
) (*inbound.ImportResult, error) {
	s.progress.Publish(jobID, inbound.StageSaving, "")

	result := &inbound.ImportResult{JobID: jobID}

	if !ext.HasVariants() {
		r, err := s.buildRecipe(ext.Title, ext.Description, ext.Servings,
			ext.PrepTimeMinutes, ext.CookTimeMinutes,
			ext.Ingredients, ext.Steps, ext.SuggestedTags, sourceType)
		if err != nil {
			return nil, s.fail(jobID, apperrors.NewValidationError(err.Error()))
		}
		r.SetSource(sourceText, sourceContext)

		id, err := s.repo.Create(ctx, r)
		if err != nil {
			return nil, s.fail(jobID, apperrors.NewDatabaseError("create recipe", err))
		}
		r.SetID(id)

		result.RootID = id
		result.Recipes = []inbound.RecipeDTO{recipeapp.ToDTO(r)}
		s.progress.Publish(jobID, inbound.StageComplete, "")
		return result, nil
	}

	sortVariants(ext.Variants)

	var rootID int64
	for i, v := range ext.Variants {
		servings := v.Servings
		r, err := s.buildRecipe(ext.Title, ext.Description, &servings,
			v.PrepTimeMinutes, v.CookTimeMinutes,
			v.Ingredients, v.Steps, ext.SuggestedTags, sourceType)
		if err != nil {
			return nil, s.fail(jobID, apperrors.NewValidationError(err.Error()))
		}

		if i == 0 {
			r.SetSource(sourceText, sourceContext)
		} else {
			r.SetSource("", sourceContext)
			if err := r.AsPortionVariantOf(rootID, v.Servings); err != nil {
				return nil, s.fail(jobID, apperrors.NewValidationError(err.Error()))
			}
		}

		id, err := s.repo.Create(ctx, r)
		if err != nil {
			return nil, s.fail(jobID, apperrors.NewDatabaseError("create recipe", err))
		}
		r.SetID(id)

		if i == 0 {
			rootID = id
			result.RootID = id
		}
		result.Recipes = append(result.Recipes, recipeapp.ToDTO(r))
	}

	s.logger.Info("Imported recipe group",
		zap.Int64("root_id", rootID),
		zap.Int("variants", len(ext.Variants)-1))
	s.progress.Publish(jobID, inbound.StageComplete, "")
	return result, nil
}

func (s *Service) buildRecipe(
	title, description string,
	servings *float64,
	prep, cook *int,
	ingredients []ExtractedIngredient,
	steps []ExtractedStep,
	tags []string,
	sourceType recipe.SourceType,
) (*recipe.Recipe, error) {
	r, err := recipe.NewRecipe(title, sourceType)
	if err != nil {
		return nil, err
	}
	r.UpdateDescription(description)
	if err := r.UpdateServings(servings); err != nil {
		return nil, err
	}
	if err := r.UpdateTimes(prep, cook); err != nil {
		return nil, err
	}
	if err := r.ReplaceIngredients(toIngredients(ingredients)); err != nil {
		return nil, err
	}
	if err := r.ReplaceSteps(toSteps(steps)); err != nil {
		return nil, err
	}
	if err := r.ReplaceTags(recipeapp.TagsFromInput(tags, true)); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) normalizeError(err error) error {
	if errors.Is(err, ErrNoTitle) {
		return apperrors.NewValidationError(err.Error())
	}
	return apperrors.NewExternalServiceError("completion provider", err)
}

func (s *Service) fail(jobID uuid.UUID, err error) error {
	if jobID != uuid.Nil {
		s.progress.Publish(jobID, inbound.StageError, err.Error())
	}
	return err
}

func sortVariants(variants []ExtractedVariant) {
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Servings < variants[j].Servings
	})
}

func toIngredients(items []ExtractedIngredient) []recipe.Ingredient {
	out := make([]recipe.Ingredient, len(items))
	for i, item := range items {
		out[i] = recipe.Ingredient{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Notes:    item.Notes,
		}
	}
	return out
}

func toSteps(items []ExtractedStep) []recipe.Step {
	out := make([]recipe.Step, len(items))
	for i, item := range items {
		out[i] = recipe.Step{Instruction: item.Instruction}
	}
	return out
}
