package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/larderapp/larder/internal/ports/inbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

// ChatHandlers serves the per-recipe assistant conversation endpoints
type ChatHandlers struct {
	chat     inbound.ChatService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewChatHandlers creates new chat handlers
func NewChatHandlers(chat inbound.ChatService, logger *zap.Logger) *ChatHandlers {
	return &ChatHandlers{
		chat:     chat,
		validate: validator.New(),
		logger:   logger,
	}
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type applyProposalRequest struct {
	Action   string                 `json:"action" validate:"required,oneof=replace save_as_variant save_as_new"`
	Proposal inbound.RecipeProposal `json:"proposal" validate:"required"`
}

// History handles GET /api/v1/recipes/{id}/chat
func (h *ChatHandlers) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	messages, err := h.chat.History(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, messages)
}

// Clear handles DELETE /api/v1/recipes/{id}/chat
func (h *ChatHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.chat.ClearHistory(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send handles POST /api/v1/recipes/{id}/chat
func (h *ChatHandlers) Send(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	reply, err := h.chat.Send(r.Context(), inbound.SendMessageCommand{
		RecipeID: id,
		Message:  req.Message,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, reply)
}

// Apply handles POST /api/v1/recipes/{id}/chat/apply
func (h *ChatHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req applyProposalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	dto, err := h.chat.ApplyProposal(r.Context(), inbound.ApplyProposalCommand{
		RecipeID: id,
		Action:   req.Action,
		Proposal: req.Proposal,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto)
}
