package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/larderapp/larder/internal/ports/inbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

type stubRecipeService struct {
	createFn func(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error)
	getFn    func(ctx context.Context, id int64) (*inbound.RecipeDetail, error)
	listFn   func(ctx context.Context) ([]inbound.RecipeDTO, error)
	scaleFn  func(ctx context.Context, id int64, target float64) (*inbound.RecipeProposal, error)
}

func (s *stubRecipeService) CreateRecipe(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
	return s.createFn(ctx, cmd)
}

func (s *stubRecipeService) UpdateRecipe(ctx context.Context, cmd inbound.UpdateRecipeCommand) (*inbound.RecipeDTO, error) {
	return nil, apperrors.NewInternalError("not stubbed")
}

func (s *stubRecipeService) DeleteRecipe(ctx context.Context, recipeID int64) error { return nil }

func (s *stubRecipeService) RateRecipe(ctx context.Context, recipeID int64, rating string) error {
	return nil
}

func (s *stubRecipeService) GetRecipe(ctx context.Context, recipeID int64) (*inbound.RecipeDetail, error) {
	return s.getFn(ctx, recipeID)
}

func (s *stubRecipeService) ListRoots(ctx context.Context) ([]inbound.RecipeDTO, error) {
	return s.listFn(ctx)
}

func (s *stubRecipeService) GetPortionSiblings(ctx context.Context, recipeID int64) ([]inbound.PortionOption, error) {
	return nil, nil
}

func (s *stubRecipeService) ScaleRecipe(ctx context.Context, recipeID int64, targetServings float64) (*inbound.RecipeProposal, error) {
	return s.scaleFn(ctx, recipeID, targetServings)
}

func newTestRouter(t *testing.T, svc inbound.RecipeService) *chi.Mux {
	t.Helper()
	h := NewRecipeHandlers(svc, nil, zaptest.NewLogger(t))

	router := chi.NewRouter()
	router.Get("/recipes", h.List)
	router.Post("/recipes", h.Create)
	router.Get("/recipes/{id}", h.Get)
	router.Post("/recipes/{id}/scale", h.Scale)
	return router
}

func TestListRoots(t *testing.T) {
	svc := &stubRecipeService{
		listFn: func(ctx context.Context) ([]inbound.RecipeDTO, error) {
			return []inbound.RecipeDTO{{ID: 1, Title: "Dal"}}, nil
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                `json:"success"`
		Data    []inbound.RecipeDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Dal", body.Data[0].Title)
}

func TestGetRecipeNotFound(t *testing.T) {
	svc := &stubRecipeService{
		getFn: func(ctx context.Context, id int64) (*inbound.RecipeDetail, error) {
			return nil, apperrors.NewRecipeNotFoundError(id)
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/42", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeRecipeNotFound, body.Error.Code)
}

func TestGetRecipeInvalidID(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, &stubRecipeService{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/recipes/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recipes",
		strings.NewReader(`{"title":""}`))
	newTestRouter(t, &stubRecipeService{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeValidationFailed, body.Error.Code)
}

func TestCreateRecipePassesCommand(t *testing.T) {
	var captured inbound.CreateRecipeCommand
	svc := &stubRecipeService{
		createFn: func(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
			captured = cmd
			return &inbound.RecipeDTO{ID: 7, Title: cmd.Title}, nil
		},
	}

	payload := `{
		"title": "Shakshuka",
		"servings": 2,
		"ingredients": [{"name": "eggs", "quantity": 4}],
		"steps": [{"instruction": "Simmer for {{timer:10}}."}],
		"tags": ["breakfast"]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(payload))
	newTestRouter(t, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Shakshuka", captured.Title)
	require.NotNil(t, captured.Servings)
	assert.Equal(t, 2.0, *captured.Servings)
	require.Len(t, captured.Ingredients, 1)
	assert.Equal(t, "eggs", captured.Ingredients[0].Name)
	require.Len(t, captured.Steps, 1)
	assert.Equal(t, []string{"breakfast"}, captured.Tags)
}

func TestScaleRecipe(t *testing.T) {
	svc := &stubRecipeService{
		scaleFn: func(ctx context.Context, id int64, target float64) (*inbound.RecipeProposal, error) {
			assert.Equal(t, int64(3), id)
			assert.Equal(t, 6.0, target)
			parent := id
			return &inbound.RecipeProposal{
				Title:          "Dal",
				Servings:       &target,
				VariantType:    "portion",
				ParentRecipeID: &parent,
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recipes/3/scale",
		strings.NewReader(`{"target_servings": 6}`))
	newTestRouter(t, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data inbound.RecipeProposal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "portion", body.Data.VariantType)
	require.NotNil(t, body.Data.ParentRecipeID)
	assert.Equal(t, int64(3), *body.Data.ParentRecipeID)
}
