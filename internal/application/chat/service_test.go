package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/larderapp/larder/internal/domain/chat"
	"github.com/larderapp/larder/internal/domain/recipe"
	"github.com/larderapp/larder/internal/ports/inbound"
	"github.com/larderapp/larder/internal/ports/outbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

// MockCompletionClient is a mock implementation of the completion client
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompletionClient) CompleteWithImage(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error) {
	args := m.Called(ctx, prompt, imageData, mimeType)
	return args.String(0), args.Error(1)
}

func (m *MockCompletionClient) Chat(ctx context.Context, system string, turns []outbound.ChatTurn) (string, error) {
	args := m.Called(ctx, system, turns)
	return args.String(0), args.Error(1)
}

// fakeRecipeRepo is a minimal in-memory recipe store
type fakeRecipeRepo struct {
	nextID  int64
	recipes map[int64]*recipe.Recipe
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[int64]*recipe.Recipe)}
}

func (f *fakeRecipeRepo) Create(_ context.Context, r *recipe.Recipe) (int64, error) {
	f.nextID++
	r.SetID(f.nextID)
	f.recipes[f.nextID] = r
	return f.nextID, nil
}

func (f *fakeRecipeRepo) Update(_ context.Context, r *recipe.Recipe) error {
	f.recipes[r.ID()] = r
	return nil
}

func (f *fakeRecipeRepo) Delete(_ context.Context, id int64) error {
	delete(f.recipes, id)
	return nil
}

func (f *fakeRecipeRepo) UpdateRating(_ context.Context, id int64, rating recipe.Rating) error {
	return nil
}

func (f *fakeRecipeRepo) FindByID(_ context.Context, id int64) (*recipe.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, recipe.ErrRecipeNotFound
	}
	return r, nil
}

func (f *fakeRecipeRepo) FindRoots(_ context.Context) ([]*recipe.Recipe, error) { return nil, nil }

func (f *fakeRecipeRepo) FindPortionVariants(_ context.Context, parentID int64) ([]recipe.Ref, error) {
	return nil, nil
}

func (f *fakeRecipeRepo) FindContentVariants(_ context.Context, parentID int64) ([]recipe.Ref, error) {
	return nil, nil
}

func (f *fakeRecipeRepo) Ref(_ context.Context, id int64) (*recipe.Ref, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, recipe.ErrRecipeNotFound
	}
	return &recipe.Ref{ID: r.ID(), Title: r.Title(), Servings: r.Servings()}, nil
}

func (f *fakeRecipeRepo) DistinctTags(_ context.Context) ([]string, error) { return nil, nil }

// fakeChatRepo stores messages in memory
type fakeChatRepo struct {
	messages map[int64][]chat.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{messages: make(map[int64][]chat.Message)}
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, msg *chat.Message) error {
	msg.ID = int64(len(f.messages[msg.RecipeID]) + 1)
	f.messages[msg.RecipeID] = append(f.messages[msg.RecipeID], *msg)
	return nil
}

func (f *fakeChatRepo) History(_ context.Context, recipeID int64) ([]chat.Message, error) {
	return f.messages[recipeID], nil
}

func (f *fakeChatRepo) DeleteByRecipe(_ context.Context, recipeID int64) error {
	delete(f.messages, recipeID)
	return nil
}

func seedRoot(t *testing.T, repo *fakeRecipeRepo, title string, servings *float64) *recipe.Recipe {
	t.Helper()
	r, err := recipe.NewRecipe(title, recipe.SourceTypeText)
	require.NoError(t, err)
	require.NoError(t, r.UpdateServings(servings))
	_, err = repo.Create(context.Background(), r)
	require.NoError(t, err)
	return r
}

func seedPortionVariant(t *testing.T, repo *fakeRecipeRepo, parentID int64, servings float64) *recipe.Recipe {
	t.Helper()
	r, err := recipe.NewRecipe("variant", recipe.SourceTypeText)
	require.NoError(t, err)
	require.NoError(t, r.AsPortionVariantOf(parentID, servings))
	_, err = repo.Create(context.Background(), r)
	require.NoError(t, err)
	return r
}

func floatPtr(v float64) *float64 { return &v }

func TestSendStoresBothTurns(t *testing.T) {
	repo := newFakeRecipeRepo()
	chats := newFakeChatRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))

	ai := &MockCompletionClient{}
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"reply": "It keeps for three days in the fridge.", "proposals": []}`, nil)

	svc := NewService(repo, chats, ai, zaptest.NewLogger(t))

	reply, err := svc.Send(context.Background(), inbound.SendMessageCommand{
		RecipeID: root.ID(),
		Message:  "How long does this keep?",
	})
	require.NoError(t, err)

	assert.Equal(t, "It keeps for three days in the fridge.", reply.Message.Content)
	assert.Empty(t, reply.Proposals)

	history, err := svc.History(context.Background(), root.ID())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestSendDegradesToPlainText(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))

	ai := &MockCompletionClient{}
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return("Just simmer it a bit longer, no structural changes needed!", nil)

	svc := NewService(repo, newFakeChatRepo(), ai, zaptest.NewLogger(t))

	reply, err := svc.Send(context.Background(), inbound.SendMessageCommand{
		RecipeID: root.ID(),
		Message:  "It's too watery",
	})
	require.NoError(t, err)

	assert.Equal(t, "Just simmer it a bit longer, no structural changes needed!", reply.Message.Content)
	assert.Empty(t, reply.Proposals)
}

func TestSendForcesPortionProposalParent(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))
	variant := seedPortionVariant(t, repo, root.ID(), 4)

	// The proposal claims a bogus parent; for portion variants only the
	// intent is trusted and the parent is forced to the lineage root.
	ai := &MockCompletionClient{}
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"reply": "Here is the recipe for six.",
		"proposals": [{
			"title": "Dal",
			"servings": 6,
			"variantType": "portion",
			"parentRecipeId": 999,
			"ingredients": [{"name": "red lentils", "quantity": 450, "unit": "g"}],
			"steps": [{"instruction": "Rinse {{qty:450:g}} lentils."}]
		}]
	}`, nil)

	svc := NewService(repo, newFakeChatRepo(), ai, zaptest.NewLogger(t))

	reply, err := svc.Send(context.Background(), inbound.SendMessageCommand{
		RecipeID: variant.ID(),
		Message:  "Make it for six people",
	})
	require.NoError(t, err)

	require.Len(t, reply.Proposals, 1)
	p := reply.Proposals[0]
	assert.Equal(t, "portion", p.VariantType)
	require.NotNil(t, p.ParentRecipeID)
	assert.Equal(t, root.ID(), *p.ParentRecipeID)
}

func TestSendDefaultsContentProposalParent(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))

	ai := &MockCompletionClient{}
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"reply": "Try it with spinach.",
		"proposals": [{"title": "Spinach Dal", "ingredients": [], "steps": []}]
	}`, nil)

	svc := NewService(repo, newFakeChatRepo(), ai, zaptest.NewLogger(t))

	reply, err := svc.Send(context.Background(), inbound.SendMessageCommand{
		RecipeID: root.ID(),
		Message:  "Any greens I could add?",
	})
	require.NoError(t, err)

	require.Len(t, reply.Proposals, 1)
	p := reply.Proposals[0]
	assert.Equal(t, "content", p.VariantType)
	require.NotNil(t, p.ParentRecipeID)
	assert.Equal(t, root.ID(), *p.ParentRecipeID)
}

func TestApplyProposalReplaceKeepsLineage(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))
	variant := seedPortionVariant(t, repo, root.ID(), 4)

	svc := NewService(repo, newFakeChatRepo(), &MockCompletionClient{}, zaptest.NewLogger(t))

	dto, err := svc.ApplyProposal(context.Background(), inbound.ApplyProposalCommand{
		RecipeID: variant.ID(),
		Action:   inbound.ActionReplace,
		Proposal: inbound.RecipeProposal{
			Title:    "Tarka Dal",
			Servings: floatPtr(4),
			Ingredients: []inbound.ProposalItem{
				{Name: "red lentils", Quantity: floatPtr(300), Unit: "g"},
			},
			Steps: []inbound.ProposalStep{{Instruction: "Rinse {{qty:300:g}} lentils."}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, variant.ID(), dto.ID)
	assert.Equal(t, "Tarka Dal", dto.Title)
	assert.Equal(t, "portion_variant", dto.LineageRole)
	require.NotNil(t, dto.ParentRecipeID)
	assert.Equal(t, root.ID(), *dto.ParentRecipeID)
}

func TestApplyProposalSaveAsNew(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))

	svc := NewService(repo, newFakeChatRepo(), &MockCompletionClient{}, zaptest.NewLogger(t))

	dto, err := svc.ApplyProposal(context.Background(), inbound.ApplyProposalCommand{
		RecipeID: root.ID(),
		Action:   inbound.ActionSaveAsNew,
		Proposal: inbound.RecipeProposal{
			Title:          "Lentil Soup",
			VariantType:    "content",
			ParentRecipeID: floatToID(root.ID()),
		},
	})
	require.NoError(t, err)

	assert.NotEqual(t, root.ID(), dto.ID)
	assert.Equal(t, "root", dto.LineageRole)
	assert.Nil(t, dto.ParentRecipeID)
}

func TestApplyProposalSaveAsVariantPortion(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))
	variant := seedPortionVariant(t, repo, root.ID(), 4)

	svc := NewService(repo, newFakeChatRepo(), &MockCompletionClient{}, zaptest.NewLogger(t))

	bogus := int64(999)
	dto, err := svc.ApplyProposal(context.Background(), inbound.ApplyProposalCommand{
		RecipeID: variant.ID(),
		Action:   inbound.ActionSaveAsVariant,
		Proposal: inbound.RecipeProposal{
			Title:          "Dal",
			Servings:       floatPtr(6),
			VariantType:    "portion",
			ParentRecipeID: &bogus,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "portion_variant", dto.LineageRole)
	require.NotNil(t, dto.ParentRecipeID)
	assert.Equal(t, root.ID(), *dto.ParentRecipeID)
}

func TestApplyProposalPortionVariantRequiresServings(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))

	svc := NewService(repo, newFakeChatRepo(), &MockCompletionClient{}, zaptest.NewLogger(t))

	_, err := svc.ApplyProposal(context.Background(), inbound.ApplyProposalCommand{
		RecipeID: root.ID(),
		Action:   inbound.ActionSaveAsVariant,
		Proposal: inbound.RecipeProposal{Title: "Dal", VariantType: "portion"},
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func TestApplyProposalUnknownAction(t *testing.T) {
	repo := newFakeRecipeRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))

	svc := NewService(repo, newFakeChatRepo(), &MockCompletionClient{}, zaptest.NewLogger(t))

	_, err := svc.ApplyProposal(context.Background(), inbound.ApplyProposalCommand{
		RecipeID: root.ID(),
		Action:   "merge",
		Proposal: inbound.RecipeProposal{Title: "Dal"},
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func floatToID(id int64) *int64 { return &id }

func TestClearHistory(t *testing.T) {
	repo := newFakeRecipeRepo()
	chats := newFakeChatRepo()
	root := seedRoot(t, repo, "Dal", floatPtr(2))

	ai := &MockCompletionClient{}
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"reply": "Sure.", "proposals": []}`, nil)

	svc := NewService(repo, chats, ai, zaptest.NewLogger(t))

	_, err := svc.Send(context.Background(), inbound.SendMessageCommand{
		RecipeID: root.ID(),
		Message:  "Any substitutions for ghee?",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ClearHistory(context.Background(), root.ID()))

	history, err := svc.History(context.Background(), root.ID())
	require.NoError(t, err)
	assert.Empty(t, history)

	err = svc.ClearHistory(context.Background(), 404)
	assert.True(t, apperrors.Is(err, apperrors.CodeRecipeNotFound))
}
