// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application expects infrastructure to implement
package outbound

import (
	"context"

	"github.com/larderapp/larder/internal/domain/chat"
	"github.com/larderapp/larder/internal/domain/recipe"
)

// RecipeRepository defines the persistence operations for recipes
type RecipeRepository interface {
	// Create persists a new recipe with its children and returns the
	// assigned id
	Create(ctx context.Context, r *recipe.Recipe) (int64, error)

	// Update persists the recipe and replaces its ingredients, steps
	// and tags wholesale
	Update(ctx context.Context, r *recipe.Recipe) error

	// Delete removes a recipe and its direct variants (one level,
	// variants of variants are never created)
	Delete(ctx context.Context, id int64) error

	// UpdateRating sets only the rating column
	UpdateRating(ctx context.Context, id int64, rating recipe.Rating) error

	FindByID(ctx context.Context, id int64) (*recipe.Recipe, error)

	// FindRoots lists recipes with no parent, newest first
	FindRoots(ctx context.Context) ([]*recipe.Recipe, error)

	// FindPortionVariants lists the portion-variant refs of a parent
	FindPortionVariants(ctx context.Context, parentID int64) ([]recipe.Ref, error)

	// FindContentVariants lists the content-variant refs of a parent
	FindContentVariants(ctx context.Context, parentID int64) ([]recipe.Ref, error)

	// Ref loads a lightweight reference without the child rows
	Ref(ctx context.Context, id int64) (*recipe.Ref, error)

	// DistinctTags lists every tag in use, for prompt construction
	DistinctTags(ctx context.Context) ([]string, error)
}

// ChatRepository persists per-recipe conversation history
type ChatRepository interface {
	SaveMessage(ctx context.Context, msg *chat.Message) error
	History(ctx context.Context, recipeID int64) ([]chat.Message, error)
	DeleteByRecipe(ctx context.Context, recipeID int64) error
}

// ChatTurn is one prior turn passed to the model for context
type ChatTurn struct {
	Role    string
	Content string
}

// CompletionClient abstracts the LLM provider used for extraction,
// generation and the recipe assistant
type CompletionClient interface {
	// Complete sends a single-shot prompt and returns the raw text
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithImage sends a prompt plus one image for vision
	// extraction; imageData is the raw bytes, mimeType e.g. "image/jpeg"
	CompleteWithImage(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error)

	// Chat sends a system prompt and conversation history
	Chat(ctx context.Context, system string, turns []ChatTurn) (string, error)
}

// URLFetcher retrieves the textual content of a web page for
// URL-based imports
type URLFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}
