package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/larderapp/larder/internal/ports/inbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

// RecipeHandlers serves the recipe CRUD and scaling endpoints
type RecipeHandlers struct {
	recipes  inbound.RecipeService
	imports  inbound.ImportService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRecipeHandlers creates new recipe handlers
func NewRecipeHandlers(recipes inbound.RecipeService, imports inbound.ImportService, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{
		recipes:  recipes,
		imports:  imports,
		validate: validator.New(),
		logger:   logger,
	}
}

type ingredientRequest struct {
	Name     string   `json:"name" validate:"required"`
	Quantity *float64 `json:"quantity" validate:"omitempty,gt=0"`
	Unit     string   `json:"unit"`
	Notes    string   `json:"notes"`
}

type stepRequest struct {
	Instruction string `json:"instruction" validate:"required"`
}

type createRecipeRequest struct {
	Title           string              `json:"title" validate:"required,max=500"`
	Description     string              `json:"description"`
	Servings        *float64            `json:"servings" validate:"omitempty,gt=0"`
	PrepTimeMinutes *int                `json:"prep_time_minutes" validate:"omitempty,min=0"`
	CookTimeMinutes *int                `json:"cook_time_minutes" validate:"omitempty,min=0"`
	SourceContext   string              `json:"source_context"`
	Ingredients     []ingredientRequest `json:"ingredients" validate:"dive"`
	Steps           []stepRequest       `json:"steps" validate:"dive"`
	Tags            []string            `json:"tags"`
}

type updateRecipeRequest struct {
	Title           *string              `json:"title" validate:"omitempty,min=1,max=500"`
	Description     *string              `json:"description"`
	Servings        *float64             `json:"servings" validate:"omitempty,gt=0"`
	ClearServings   bool                 `json:"clear_servings"`
	PrepTimeMinutes *int                 `json:"prep_time_minutes" validate:"omitempty,min=0"`
	CookTimeMinutes *int                 `json:"cook_time_minutes" validate:"omitempty,min=0"`
	SourceContext   *string              `json:"source_context"`
	Ingredients     *[]ingredientRequest `json:"ingredients" validate:"omitempty,dive"`
	Steps           *[]stepRequest       `json:"steps" validate:"omitempty,dive"`
	Tags            *[]string            `json:"tags"`
}

type rateRecipeRequest struct {
	Rating string `json:"rating" validate:"omitempty,oneof=meh good great"`
}

type scaleRecipeRequest struct {
	TargetServings float64 `json:"target_servings" validate:"required,gt=0"`
}

func ingredientInputs(reqs []ingredientRequest) []inbound.IngredientInput {
	out := make([]inbound.IngredientInput, 0, len(reqs))
	for _, i := range reqs {
		out = append(out, inbound.IngredientInput{
			Name:     i.Name,
			Quantity: i.Quantity,
			Unit:     i.Unit,
			Notes:    i.Notes,
		})
	}
	return out
}

func stepInputs(reqs []stepRequest) []inbound.StepInput {
	out := make([]inbound.StepInput, 0, len(reqs))
	for _, s := range reqs {
		out = append(out, inbound.StepInput{Instruction: s.Instruction})
	}
	return out
}

// Create handles POST /api/v1/recipes
func (h *RecipeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	dto, err := h.recipes.CreateRecipe(r.Context(), inbound.CreateRecipeCommand{
		Title:           req.Title,
		Description:     req.Description,
		Servings:        req.Servings,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		SourceType:      "text",
		SourceContext:   req.SourceContext,
		Ingredients:     ingredientInputs(req.Ingredients),
		Steps:           stepInputs(req.Steps),
		Tags:            req.Tags,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, dto)
}

// List handles GET /api/v1/recipes, returning root recipes only
func (h *RecipeHandlers) List(w http.ResponseWriter, r *http.Request) {
	roots, err := h.recipes.ListRoots(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, roots)
}

// Get handles GET /api/v1/recipes/{id}
func (h *RecipeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	detail, err := h.recipes.GetRecipe(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, detail)
}

// Update handles PATCH /api/v1/recipes/{id}
func (h *RecipeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateRecipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	cmd := inbound.UpdateRecipeCommand{
		RecipeID:        id,
		Title:           req.Title,
		Description:     req.Description,
		Servings:        req.Servings,
		ClearServings:   req.ClearServings,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		SourceContext:   req.SourceContext,
		Tags:            req.Tags,
	}
	if req.Ingredients != nil {
		ins := ingredientInputs(*req.Ingredients)
		cmd.Ingredients = &ins
	}
	if req.Steps != nil {
		steps := stepInputs(*req.Steps)
		cmd.Steps = &steps
	}

	dto, err := h.recipes.UpdateRecipe(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto)
}

// Delete handles DELETE /api/v1/recipes/{id}
func (h *RecipeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.recipes.DeleteRecipe(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Rate handles PUT /api/v1/recipes/{id}/rating. An empty rating clears it.
func (h *RecipeHandlers) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req rateRecipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	if err := h.recipes.RateRecipe(r.Context(), id, req.Rating); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Portions handles GET /api/v1/recipes/{id}/portions
func (h *RecipeHandlers) Portions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	options, err := h.recipes.GetPortionSiblings(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, options)
}

// Scale handles POST /api/v1/recipes/{id}/scale. The response is a
// proposal; nothing is persisted until the client applies it.
func (h *RecipeHandlers) Scale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req scaleRecipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	proposal, err := h.recipes.ScaleRecipe(r.Context(), id, req.TargetServings)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, proposal)
}

// Reparse handles POST /api/v1/recipes/{id}/reparse
func (h *RecipeHandlers) Reparse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.imports.Reparse(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto)
}
