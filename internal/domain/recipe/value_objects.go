package recipe

import "errors"

// Value Objects - Immutable objects that describe aspects of the domain

// Ingredient represents an ingredient line in a recipe.
// A nil Quantity means "to taste" or otherwise unquantifiable.
type Ingredient struct {
	Position int
	Name     string
	Quantity *float64
	Unit     string
	Notes    string
}

// Validate validates the ingredient
func (i Ingredient) Validate() error {
	if i.Name == "" {
		return errors.New("ingredient name is required")
	}
	if i.Quantity != nil && *i.Quantity < 0 {
		return errors.New("ingredient quantity cannot be negative")
	}
	return nil
}

// Step represents a cooking step. The instruction text may embed
// {{qty:VALUE:UNIT}} and {{timer:MINUTES}} markers.
type Step struct {
	Position    int
	Instruction string
}

// Validate validates the step
func (s Step) Validate() error {
	if s.Instruction == "" {
		return errors.New("step instruction is required")
	}
	return nil
}

// Tag labels a recipe. AutoGenerated marks tags suggested by the
// extraction engine rather than entered by a user.
type Tag struct {
	Tag           string
	AutoGenerated bool
}

// Validate validates the tag
func (t Tag) Validate() error {
	if t.Tag == "" {
		return errors.New("tag is required")
	}
	return nil
}

// Ref is a lightweight reference to a recipe, used for variant
// navigation without loading the full aggregate.
type Ref struct {
	ID       int64
	Title    string
	Servings *float64
}

// VariantType classifies how a recipe relates to its parent
type VariantType string

const (
	// VariantTypeNone marks a recipe with no variant classification;
	// combined with a parent id it still denotes a content variant.
	VariantTypeNone    VariantType = ""
	VariantTypePortion VariantType = "portion"
	VariantTypeContent VariantType = "content"
)

// Validate validates the variant type
func (v VariantType) Validate() error {
	switch v {
	case VariantTypeNone, VariantTypePortion, VariantTypeContent:
		return nil
	}
	return errors.New("invalid variant type")
}

// LineageRole is a recipe's role in its lineage group
type LineageRole string

const (
	LineageRoleRoot           LineageRole = "root"
	LineageRolePortionVariant LineageRole = "portion_variant"
	LineageRoleContentVariant LineageRole = "content_variant"
)

// SourceType records how a recipe was captured
type SourceType string

const (
	SourceTypePhoto SourceType = "photo"
	SourceTypeURL   SourceType = "url"
	SourceTypeText  SourceType = "text"
)

// Validate validates the source type
func (s SourceType) Validate() error {
	switch s {
	case SourceTypePhoto, SourceTypeURL, SourceTypeText:
		return nil
	}
	return errors.New("invalid source type")
}

// Rating is a coarse three-point verdict on a recipe
type Rating string

const (
	RatingNone  Rating = ""
	RatingMeh   Rating = "meh"
	RatingGood  Rating = "good"
	RatingGreat Rating = "great"
)

// Validate validates the rating
func (r Rating) Validate() error {
	switch r {
	case RatingNone, RatingMeh, RatingGood, RatingGreat:
		return nil
	}
	return errors.New("invalid rating")
}
