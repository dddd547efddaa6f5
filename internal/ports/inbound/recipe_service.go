// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"
)

// RecipeService defines the use cases for recipe management
// This is the primary port that HTTP handlers and other driving adapters will use
type RecipeService interface {
	// Commands - operations that modify state
	CreateRecipe(ctx context.Context, cmd CreateRecipeCommand) (*RecipeDTO, error)
	UpdateRecipe(ctx context.Context, cmd UpdateRecipeCommand) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, recipeID int64) error
	RateRecipe(ctx context.Context, recipeID int64, rating string) error

	// Queries - operations that read state
	GetRecipe(ctx context.Context, recipeID int64) (*RecipeDetail, error)
	ListRoots(ctx context.Context) ([]RecipeDTO, error)

	// GetPortionSiblings enumerates the portion options of a recipe's
	// lineage group, sorted ascending by servings. The anchor recipe
	// itself appears in the list when it has servings.
	GetPortionSiblings(ctx context.Context, recipeID int64) ([]PortionOption, error)

	// ScaleRecipe produces a portion-variant proposal at the target
	// serving count. The proposal is applied through the chat mutation
	// protocol, never persisted directly.
	ScaleRecipe(ctx context.Context, recipeID int64, targetServings float64) (*RecipeProposal, error)
}

// ImportService defines the ingestion use cases. Every import runs the
// same pipeline: capture source, extract structured recipes, reconcile
// multi-variant payloads, persist. Progress is pushed per JobID.
type ImportService interface {
	ImportFromText(ctx context.Context, cmd ImportTextCommand) (*ImportResult, error)
	ImportFromURL(ctx context.Context, cmd ImportURLCommand) (*ImportResult, error)
	ImportFromPhotos(ctx context.Context, cmd ImportPhotosCommand) (*ImportResult, error)
	GenerateRecipe(ctx context.Context, cmd GenerateRecipeCommand) (*ImportResult, error)

	// Reparse re-runs extraction over a recipe's stored source text
	// and replaces its content in place
	Reparse(ctx context.Context, recipeID int64) (*RecipeDTO, error)
}

// ChatService defines the recipe assistant use cases
type ChatService interface {
	History(ctx context.Context, recipeID int64) ([]ChatMessageDTO, error)

	// ClearHistory drops a recipe's stored conversation
	ClearHistory(ctx context.Context, recipeID int64) error

	// Send forwards a user message about a recipe to the assistant and
	// returns the reply, with structured proposals when the assistant
	// suggested concrete changes
	Send(ctx context.Context, cmd SendMessageCommand) (*ChatReply, error)

	// ApplyProposal commits an assistant proposal with one of the
	// protocol actions: replace the recipe, save as a variant, or save
	// as a standalone recipe
	ApplyProposal(ctx context.Context, cmd ApplyProposalCommand) (*RecipeDTO, error)
}

// Proposal actions for ApplyProposalCommand
const (
	ActionReplace       = "replace"
	ActionSaveAsVariant = "save_as_variant"
	ActionSaveAsNew     = "save_as_new"
)

// Import progress stages pushed over the job channel
const (
	StageFetching   = "fetching"
	StageExtracting = "extracting"
	StageParsing    = "parsing"
	StageSaving     = "saving"
	StageComplete   = "complete"
	StageError      = "error"
)

// Command objects for operations

// IngredientInput is one ingredient line supplied by a caller
type IngredientInput struct {
	Name     string
	Quantity *float64
	Unit     string
	Notes    string
}

// StepInput is one instruction supplied by a caller; the text may
// embed quantity and timer markers
type StepInput struct {
	Instruction string
}

// CreateRecipeCommand contains data for creating a new recipe
type CreateRecipeCommand struct {
	Title           string
	Description     string
	Servings        *float64
	PrepTimeMinutes *int
	CookTimeMinutes *int
	SourceType      string
	SourceText      string
	SourceContext   string
	Ingredients     []IngredientInput
	Steps           []StepInput
	Tags            []string
}

// UpdateRecipeCommand contains data for updating a recipe.
// Nil pointers leave the field unchanged; child lists, when present,
// replace the stored lists wholesale.
type UpdateRecipeCommand struct {
	RecipeID        int64
	Title           *string
	Description     *string
	Servings        *float64
	ClearServings   bool
	PrepTimeMinutes *int
	CookTimeMinutes *int
	SourceContext   *string
	Ingredients     *[]IngredientInput
	Steps           *[]StepInput
	Tags            *[]string
}

// ImportTextCommand imports from pasted text
type ImportTextCommand struct {
	JobID         uuid.UUID
	Text          string
	SourceContext string
}

// ImportURLCommand imports from a web page
type ImportURLCommand struct {
	JobID uuid.UUID
	URL   string
}

// PhotoInput is one captured image
type PhotoInput struct {
	Data     []byte
	MimeType string
}

// ImportPhotosCommand imports from one or more photos of a recipe
type ImportPhotosCommand struct {
	JobID         uuid.UUID
	Photos        []PhotoInput
	SourceContext string
}

// GenerateRecipeCommand creates a recipe from a free-form request
type GenerateRecipeCommand struct {
	JobID  uuid.UUID
	Prompt string
}

// SendMessageCommand is one user turn in a recipe's conversation
type SendMessageCommand struct {
	RecipeID int64
	Message  string
}

// ApplyProposalCommand commits a proposal to the store
type ApplyProposalCommand struct {
	RecipeID int64
	Action   string
	Proposal RecipeProposal
}

// Response DTOs

// RecipeDTO is the data transfer object for recipes
type RecipeDTO struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Servings        *float64        `json:"servings,omitempty"`
	PrepTimeMinutes *int            `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int            `json:"cook_time_minutes,omitempty"`
	Rating          string          `json:"rating,omitempty"`
	SourceType      string          `json:"source_type"`
	SourceContext   string          `json:"source_context,omitempty"`
	ParentRecipeID  *int64          `json:"parent_recipe_id,omitempty"`
	VariantType     string          `json:"variant_type,omitempty"`
	LineageRole     string          `json:"lineage_role"`
	Ingredients     []IngredientDTO `json:"ingredients"`
	Steps           []StepDTO       `json:"steps"`
	Tags            []TagDTO        `json:"tags"`
	PortionVariants []VariantRef    `json:"portion_variants,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// IngredientDTO for ingredient data
type IngredientDTO struct {
	Position int      `json:"position"`
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// StepDTO for step data. Instruction carries the raw marker syntax;
// Rendered is the display form at scale 1 with Timers extracted.
type StepDTO struct {
	Position    int        `json:"position"`
	Instruction string     `json:"instruction"`
	Rendered    string     `json:"rendered"`
	Timers      []TimerDTO `json:"timers,omitempty"`
}

// TimerDTO is one timer occurrence in a step
type TimerDTO struct {
	Minutes  float64 `json:"minutes"`
	Position int     `json:"position"`
}

// TagDTO for tag data
type TagDTO struct {
	Tag           string `json:"tag"`
	AutoGenerated bool   `json:"auto_generated"`
}

// VariantRef is a lightweight pointer to a related recipe
type VariantRef struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Servings *float64 `json:"servings,omitempty"`
}

// PortionOption is one entry in a lineage group's portion picker
type PortionOption struct {
	RecipeID int64   `json:"recipe_id"`
	Servings float64 `json:"servings"`
	Current  bool    `json:"current"`
}

// RecipeDetail is the full view of a recipe with its lineage context
type RecipeDetail struct {
	Recipe          RecipeDTO       `json:"recipe"`
	Parent          *VariantRef     `json:"parent,omitempty"`
	PortionOptions  []PortionOption `json:"portion_options"`
	ContentVariants []VariantRef    `json:"content_variants"`
}

// RecipeProposal is a structured recipe payload produced by the
// assistant or the scaling engine, pending user confirmation
type RecipeProposal struct {
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	Servings        *float64            `json:"servings,omitempty"`
	PrepTimeMinutes *int                `json:"prepTimeMinutes,omitempty"`
	CookTimeMinutes *int                `json:"cookTimeMinutes,omitempty"`
	Ingredients     []ProposalItem      `json:"ingredients"`
	Steps           []ProposalStep      `json:"steps"`
	Tags            []string            `json:"tags,omitempty"`
	VariantType     string              `json:"variantType,omitempty"`
	ParentRecipeID  *int64              `json:"parentRecipeId,omitempty"`
}

// ProposalItem is one proposed ingredient line
type ProposalItem struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// ProposalStep is one proposed instruction
type ProposalStep struct {
	Instruction string `json:"instruction"`
}

// ImportResult reports everything an import created. Multi-variant
// sources yield one root plus portion variants sharing its id.
type ImportResult struct {
	JobID   uuid.UUID   `json:"job_id"`
	RootID  int64       `json:"root_id"`
	Recipes []RecipeDTO `json:"recipes"`
}

// ChatMessageDTO is one stored conversation turn
type ChatMessageDTO struct {
	ID        int64  `json:"id"`
	RecipeID  int64  `json:"recipe_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatReply is the assistant's answer to one user turn. Proposals are
// inert until applied through ApplyProposal; each one is independent.
type ChatReply struct {
	Message   ChatMessageDTO   `json:"message"`
	Proposals []RecipeProposal `json:"proposals,omitempty"`
}
