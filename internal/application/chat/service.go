// Package chat implements the recipe assistant use cases, including
// the mutation protocol that turns assistant proposals into recipes.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/larderapp/larder/internal/application/ingest"
	recipeapp "github.com/larderapp/larder/internal/application/recipe"
	"github.com/larderapp/larder/internal/domain/chat"
	"github.com/larderapp/larder/internal/domain/recipe"
	"github.com/larderapp/larder/internal/ports/inbound"
	"github.com/larderapp/larder/internal/ports/outbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

// Service implements the ChatService inbound port
type Service struct {
	recipes outbound.RecipeRepository
	chats   outbound.ChatRepository
	ai      outbound.CompletionClient
	logger  *zap.Logger
}

var _ inbound.ChatService = (*Service)(nil)

// NewService creates a new chat service
func NewService(
	recipes outbound.RecipeRepository,
	chats outbound.ChatRepository,
	ai outbound.CompletionClient,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes: recipes,
		chats:   chats,
		ai:      ai,
		logger:  logger,
	}
}

// History returns a recipe's stored conversation, oldest first
func (s *Service) History(ctx context.Context, recipeID int64) ([]inbound.ChatMessageDTO, error) {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return nil, err
	}

	messages, err := s.chats.History(ctx, recipeID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load chat history", err)
	}

	dtos := make([]inbound.ChatMessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = messageToDTO(m)
	}
	return dtos, nil
}

// ClearHistory drops the recipe's stored conversation
func (s *Service) ClearHistory(ctx context.Context, recipeID int64) error {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}

	if err := s.chats.DeleteByRecipe(ctx, recipeID); err != nil {
		return apperrors.NewDatabaseError("clear chat history", err)
	}

	s.logger.Info("Cleared chat history", zap.Int64("recipe_id", recipeID))
	return nil
}

// Send forwards one user turn to the assistant. The reply is stored
// and returned together with any recipe proposals it carried. An
// unparseable assistant response degrades to plain conversation text
// with no proposals; the user-visible exchange never fails over it.
func (s *Service) Send(ctx context.Context, cmd inbound.SendMessageCommand) (*inbound.ChatReply, error) {
	if cmd.Message == "" {
		return nil, apperrors.NewValidationError("message is required")
	}

	r, err := s.loadRecipe(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}

	history, err := s.chats.History(ctx, cmd.RecipeID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load chat history", err)
	}

	userMsg, err := chat.NewMessage(cmd.RecipeID, chat.RoleUser, cmd.Message)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.chats.SaveMessage(ctx, userMsg); err != nil {
		return nil, apperrors.NewDatabaseError("save chat message", err)
	}

	turns := make([]outbound.ChatTurn, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, outbound.ChatTurn{Role: string(m.Role), Content: m.Content})
	}
	turns = append(turns, outbound.ChatTurn{Role: string(chat.RoleUser), Content: cmd.Message})

	response, err := s.ai.Chat(ctx, buildSystemPrompt(r), turns)
	if err != nil {
		s.logger.Error("Assistant call failed", zap.Int64("recipe_id", cmd.RecipeID), zap.Error(err))
		return nil, apperrors.NewExternalServiceError("completion provider", err)
	}

	replyText, proposals := s.parseAssistantResponse(response, r)

	assistantMsg, err := chat.NewMessage(cmd.RecipeID, chat.RoleAssistant, replyText)
	if err != nil {
		return nil, apperrors.NewInternalError("assistant returned an empty reply")
	}
	if len(proposals) > 0 {
		if encoded, err := json.Marshal(proposals); err == nil {
			assistantMsg.ProposalJSON = string(encoded)
		}
	}
	if err := s.chats.SaveMessage(ctx, assistantMsg); err != nil {
		return nil, apperrors.NewDatabaseError("save chat message", err)
	}

	return &inbound.ChatReply{
		Message:   messageToDTO(*assistantMsg),
		Proposals: proposals,
	}, nil
}

// ApplyProposal commits a proposal with one of the protocol actions
func (s *Service) ApplyProposal(ctx context.Context, cmd inbound.ApplyProposalCommand) (*inbound.RecipeDTO, error) {
	r, err := s.loadRecipe(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}
	if cmd.Proposal.Title == "" {
		return nil, apperrors.NewValidationError("proposal has no title")
	}

	switch cmd.Action {
	case inbound.ActionReplace:
		return s.replaceInPlace(ctx, r, cmd.Proposal)
	case inbound.ActionSaveAsNew:
		return s.saveAsNew(ctx, r, cmd.Proposal)
	case inbound.ActionSaveAsVariant:
		return s.saveAsVariant(ctx, r, cmd.Proposal)
	}
	return nil, apperrors.NewValidationError("unknown proposal action: " + cmd.Action)
}

// replaceInPlace overwrites the viewed recipe's content. Lineage
// fields are untouched.
func (s *Service) replaceInPlace(ctx context.Context, r *recipe.Recipe, p inbound.RecipeProposal) (*inbound.RecipeDTO, error) {
	if err := applyProposalContent(r, p); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.recipes.Update(ctx, r); err != nil {
		return nil, apperrors.NewDatabaseError("update recipe", err)
	}

	dto := recipeapp.ToDTO(r)
	return &dto, nil
}

// saveAsNew inserts the proposal as an unrelated root recipe
func (s *Service) saveAsNew(ctx context.Context, current *recipe.Recipe, p inbound.RecipeProposal) (*inbound.RecipeDTO, error) {
	r, err := buildFromProposal(p, current.SourceType())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return s.create(ctx, r)
}

// saveAsVariant inserts the proposal per the protocol classification.
// A portion proposal is anchored to the current recipe's root no
// matter what parent it claimed; only its intent is trusted. Content
// proposals keep their stated parent, defaulting to the same anchor.
func (s *Service) saveAsVariant(ctx context.Context, current *recipe.Recipe, p inbound.RecipeProposal) (*inbound.RecipeDTO, error) {
	r, err := buildFromProposal(p, current.SourceType())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	baseID := current.EffectiveRootID()

	if p.VariantType == string(recipe.VariantTypePortion) {
		if p.Servings == nil || *p.Servings <= 0 {
			return nil, apperrors.NewValidationError("a portion variant proposal must set servings")
		}
		if err := r.AsPortionVariantOf(baseID, *p.Servings); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	} else {
		parentID := baseID
		if p.ParentRecipeID != nil {
			parentID = *p.ParentRecipeID
		}
		if _, err := s.loadRecipe(ctx, parentID); err != nil {
			return nil, err
		}
		if err := r.AsContentVariantOf(parentID); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	return s.create(ctx, r)
}

func (s *Service) create(ctx context.Context, r *recipe.Recipe) (*inbound.RecipeDTO, error) {
	id, err := s.recipes.Create(ctx, r)
	if err != nil {
		return nil, apperrors.NewDatabaseError("create recipe", err)
	}
	r.SetID(id)

	dto := recipeapp.ToDTO(r)
	return &dto, nil
}

// assistantResponse is the JSON shape the system prompt requests
type assistantResponse struct {
	Reply     string                   `json:"reply"`
	Proposals []inbound.RecipeProposal `json:"proposals"`
}

// parseAssistantResponse recovers the structured reply. Any failure
// falls back to the raw response as plain text with zero proposals.
func (s *Service) parseAssistantResponse(response string, r *recipe.Recipe) (string, []inbound.RecipeProposal) {
	raw, err := ingest.ExtractJSON(response)
	if err != nil {
		return response, nil
	}

	var parsed assistantResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Reply == "" {
		return response, nil
	}

	if len(parsed.Proposals) > proposalsLimit {
		parsed.Proposals = parsed.Proposals[:proposalsLimit]
	}

	proposals := make([]inbound.RecipeProposal, 0, len(parsed.Proposals))
	for _, p := range parsed.Proposals {
		if p.Title == "" {
			continue
		}
		proposals = append(proposals, classifyProposal(p, r))
	}
	return parsed.Reply, proposals
}

// classifyProposal normalizes a proposal's lineage intent against the
// recipe the conversation is about
func classifyProposal(p inbound.RecipeProposal, r *recipe.Recipe) inbound.RecipeProposal {
	baseID := r.EffectiveRootID()

	if p.VariantType == string(recipe.VariantTypePortion) {
		p.ParentRecipeID = &baseID
		return p
	}

	if p.VariantType == "" {
		p.VariantType = string(recipe.VariantTypeContent)
	}
	if p.ParentRecipeID == nil {
		p.ParentRecipeID = &baseID
	}
	return p
}

// buildFromProposal materializes a proposal as a fresh root entity;
// lineage is attached separately by the caller
func buildFromProposal(p inbound.RecipeProposal, sourceType recipe.SourceType) (*recipe.Recipe, error) {
	r, err := recipe.NewRecipe(p.Title, sourceType)
	if err != nil {
		return nil, err
	}
	if err := applyProposalContent(r, p); err != nil {
		return nil, err
	}
	return r, nil
}

func applyProposalContent(r *recipe.Recipe, p inbound.RecipeProposal) error {
	if err := r.UpdateTitle(p.Title); err != nil {
		return err
	}
	r.UpdateDescription(p.Description)
	if p.Servings != nil || r.VariantType() != recipe.VariantTypePortion {
		if err := r.UpdateServings(p.Servings); err != nil {
			return err
		}
	}
	if err := r.UpdateTimes(p.PrepTimeMinutes, p.CookTimeMinutes); err != nil {
		return err
	}

	ingredients := make([]recipe.Ingredient, len(p.Ingredients))
	for i, item := range p.Ingredients {
		ingredients[i] = recipe.Ingredient{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Notes:    item.Notes,
		}
	}
	if err := r.ReplaceIngredients(ingredients); err != nil {
		return err
	}

	steps := make([]recipe.Step, len(p.Steps))
	for i, st := range p.Steps {
		steps[i] = recipe.Step{Instruction: st.Instruction}
	}
	if err := r.ReplaceSteps(steps); err != nil {
		return err
	}

	return r.ReplaceTags(recipeapp.TagsFromInput(p.Tags, true))
}

func (s *Service) loadRecipe(ctx context.Context, recipeID int64) (*recipe.Recipe, error) {
	r, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(recipeID)
		}
		return nil, apperrors.NewDatabaseError("load recipe", err)
	}
	return r, nil
}

func messageToDTO(m chat.Message) inbound.ChatMessageDTO {
	return inbound.ChatMessageDTO{
		ID:        m.ID,
		RecipeID:  m.RecipeID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
