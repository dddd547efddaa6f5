package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/larderapp/larder/internal/domain/chat"
	"github.com/larderapp/larder/internal/ports/outbound"
)

// ChatRepository implements outbound.ChatRepository using GORM
type ChatRepository struct {
	db *gorm.DB
}

var _ outbound.ChatRepository = (*ChatRepository)(nil)

// NewChatRepository creates a new GORM chat repository
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// SaveMessage appends a conversation turn, stamping its assigned id
func (r *ChatRepository) SaveMessage(ctx context.Context, msg *chat.Message) error {
	model := MessageToModel(msg)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	msg.ID = model.ID
	return nil
}

// History returns a recipe's conversation, oldest first
func (r *ChatRepository) History(ctx context.Context, recipeID int64) ([]chat.Message, error) {
	var models []ChatMessageModel
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]chat.Message, len(models))
	for i := range models {
		messages[i] = ModelToMessage(&models[i])
	}
	return messages, nil
}

// DeleteByRecipe removes a recipe's entire conversation
func (r *ChatRepository) DeleteByRecipe(ctx context.Context, recipeID int64) error {
	return r.db.WithContext(ctx).
		Delete(&ChatMessageModel{}, "recipe_id = ?", recipeID).Error
}
