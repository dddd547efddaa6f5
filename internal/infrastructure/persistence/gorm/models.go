// Package gorm provides GORM model definitions and repository
// implementations for the persistence layer.
package gorm

import (
	"time"
)

// RecipeModel is the GORM model for recipes
type RecipeModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"not null"`
	Description     string
	Servings        *float64
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Rating          string
	SourceType      string `gorm:"not null"`
	SourceText      string
	SourceContext   string
	ParentRecipeID  *int64 `gorm:"index"`
	VariantType     string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Ingredients []IngredientModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Steps       []StepModel       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags        []TagModel        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for RecipeModel
func (RecipeModel) TableName() string {
	return "recipes"
}

// IngredientModel is the GORM model for ingredient lines
type IngredientModel struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	RecipeID int64 `gorm:"index;not null"`
	Position int   `gorm:"not null"`
	Name     string `gorm:"not null"`
	Quantity *float64
	Unit     string
	Notes    string
}

// TableName specifies the table name for IngredientModel
func (IngredientModel) TableName() string {
	return "ingredients"
}

// StepModel is the GORM model for instruction steps
type StepModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	RecipeID    int64  `gorm:"index;not null"`
	Position    int    `gorm:"not null"`
	Instruction string `gorm:"not null"`
}

// TableName specifies the table name for StepModel
func (StepModel) TableName() string {
	return "steps"
}

// TagModel is the GORM model for recipe tags
type TagModel struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	RecipeID      int64  `gorm:"index;not null"`
	Tag           string `gorm:"not null"`
	AutoGenerated bool
}

// TableName specifies the table name for TagModel
func (TagModel) TableName() string {
	return "tags"
}

// ChatMessageModel is the GORM model for conversation turns
type ChatMessageModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	RecipeID     int64  `gorm:"index;not null"`
	Role         string `gorm:"not null"`
	Content      string `gorm:"not null"`
	ProposalJSON string
	CreatedAt    time.Time
}

// TableName specifies the table name for ChatMessageModel
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}
