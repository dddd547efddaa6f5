package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrTitleRequired      = errors.New("recipe title is required")
	ErrInvalidServings    = errors.New("servings must be greater than 0")
	ErrServingsRequired   = errors.New("portion variant must have servings")
	ErrParentRequired     = errors.New("portion variant must have a parent recipe")
	ErrInvalidTimeMinutes = errors.New("time in minutes cannot be negative")

	// Lineage errors
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrSelfParent      = errors.New("recipe cannot be its own parent")
	ErrNestedVariant   = errors.New("variants of variants are not supported")
	ErrNoBaseServings  = errors.New("recipe has no base servings to scale from")
	ErrInvalidScale    = errors.New("target servings must be greater than 0")
)
