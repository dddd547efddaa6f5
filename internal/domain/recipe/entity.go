// Package recipe contains the core domain logic for recipe management:
// the recipe aggregate, its portion/content variant lineage, and the
// marker and scaling engines that keep variants consistent.
package recipe

import (
	"time"
)

// Recipe represents the core recipe entity in our domain.
// It encapsulates all business logic related to recipes, including the
// lineage invariants that tie portion variants to their root.
type Recipe struct {
	id int64

	// Basic attributes
	title       string
	description string

	// Metrics
	servings        *float64
	prepTimeMinutes *int
	cookTimeMinutes *int
	rating          Rating

	// Source provenance
	sourceType    SourceType
	sourceText    string
	sourceContext string

	// Lineage
	parentRecipeID *int64
	variantType    VariantType

	// Children
	ingredients []Ingredient
	steps       []Step
	tags        []Tag

	// Metadata
	createdAt time.Time
	updatedAt time.Time
}

// NewRecipe creates a new root Recipe with validation
func NewRecipe(title string, sourceType SourceType) (*Recipe, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := sourceType.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Recipe{
		title:      title,
		sourceType: sourceType,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstitute rebuilds a Recipe from persisted state. It bypasses
// creation-time defaults but still enforces the lineage invariants.
func Reconstitute(
	id int64,
	title, description string,
	servings *float64,
	prepTimeMinutes, cookTimeMinutes *int,
	rating Rating,
	sourceType SourceType,
	sourceText, sourceContext string,
	parentRecipeID *int64,
	variantType VariantType,
	ingredients []Ingredient,
	steps []Step,
	tags []Tag,
	createdAt, updatedAt time.Time,
) (*Recipe, error) {
	r := &Recipe{
		id:              id,
		title:           title,
		description:     description,
		servings:        servings,
		prepTimeMinutes: prepTimeMinutes,
		cookTimeMinutes: cookTimeMinutes,
		rating:          rating,
		sourceType:      sourceType,
		sourceText:      sourceText,
		sourceContext:   sourceContext,
		parentRecipeID:  parentRecipeID,
		variantType:     variantType,
		ingredients:     ingredients,
		steps:           steps,
		tags:            tags,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
	if err := r.validateLineage(); err != nil {
		return nil, err
	}
	return r, nil
}

// ID returns the recipe's identifier (0 until persisted)
func (r *Recipe) ID() int64 { return r.id }

// SetID stamps the identifier assigned by the store
func (r *Recipe) SetID(id int64) { r.id = id }

// Title returns the recipe's title
func (r *Recipe) Title() string { return r.title }

// Description returns the recipe's description
func (r *Recipe) Description() string { return r.description }

// Servings returns the serving count, nil when not applicable
func (r *Recipe) Servings() *float64 { return r.servings }

// PrepTimeMinutes returns the preparation time in minutes
func (r *Recipe) PrepTimeMinutes() *int { return r.prepTimeMinutes }

// CookTimeMinutes returns the cooking time in minutes
func (r *Recipe) CookTimeMinutes() *int { return r.cookTimeMinutes }

// Rating returns the recipe's rating
func (r *Recipe) Rating() Rating { return r.rating }

// SourceType returns how the recipe was captured
func (r *Recipe) SourceType() SourceType { return r.sourceType }

// SourceText returns the raw captured source
func (r *Recipe) SourceText() string { return r.sourceText }

// SourceContext returns free-text provenance (URL, note)
func (r *Recipe) SourceContext() string { return r.sourceContext }

// ParentRecipeID returns the lineage back-reference, nil for roots
func (r *Recipe) ParentRecipeID() *int64 { return r.parentRecipeID }

// VariantType returns the recipe's variant classification
func (r *Recipe) VariantType() VariantType { return r.variantType }

// Ingredients returns the recipe's ingredients in position order
func (r *Recipe) Ingredients() []Ingredient { return r.ingredients }

// Steps returns the recipe's steps in position order
func (r *Recipe) Steps() []Step { return r.steps }

// Tags returns the recipe's tags
func (r *Recipe) Tags() []Tag { return r.tags }

// CreatedAt returns when the recipe was created
func (r *Recipe) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the recipe was last updated
func (r *Recipe) UpdatedAt() time.Time { return r.updatedAt }

// LineageRole derives the recipe's role in its lineage group.
// A set parent with variantType absent still counts as a content variant.
func (r *Recipe) LineageRole() LineageRole {
	if r.parentRecipeID == nil {
		return LineageRoleRoot
	}
	if r.variantType == VariantTypePortion {
		return LineageRolePortionVariant
	}
	return LineageRoleContentVariant
}

// EffectiveRootID resolves the anchor for portion-sibling enumeration:
// the parent for a portion variant, the recipe itself otherwise.
func (r *Recipe) EffectiveRootID() int64 {
	if r.LineageRole() == LineageRolePortionVariant {
		return *r.parentRecipeID
	}
	return r.id
}

// UpdateTitle updates the recipe title with validation
func (r *Recipe) UpdateTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	r.title = title
	r.touch()
	return nil
}

// UpdateDescription updates the recipe description
func (r *Recipe) UpdateDescription(description string) {
	r.description = description
	r.touch()
}

// UpdateServings sets the serving count; nil clears it. A portion
// variant may not have its servings cleared.
func (r *Recipe) UpdateServings(servings *float64) error {
	if servings != nil && *servings <= 0 {
		return ErrInvalidServings
	}
	if servings == nil && r.variantType == VariantTypePortion {
		return ErrServingsRequired
	}
	r.servings = servings
	r.touch()
	return nil
}

// UpdateTimes sets prep and cook times in minutes; nil clears
func (r *Recipe) UpdateTimes(prepMinutes, cookMinutes *int) error {
	if (prepMinutes != nil && *prepMinutes < 0) || (cookMinutes != nil && *cookMinutes < 0) {
		return ErrInvalidTimeMinutes
	}
	r.prepTimeMinutes = prepMinutes
	r.cookTimeMinutes = cookMinutes
	r.touch()
	return nil
}

// SetRating sets or clears the rating
func (r *Recipe) SetRating(rating Rating) error {
	if err := rating.Validate(); err != nil {
		return err
	}
	r.rating = rating
	r.touch()
	return nil
}

// SetSource records the raw capture and its context
func (r *Recipe) SetSource(sourceText, sourceContext string) {
	r.sourceText = sourceText
	r.sourceContext = sourceContext
	r.touch()
}

// UpdateSourceContext updates only the provenance note
func (r *Recipe) UpdateSourceContext(sourceContext string) {
	r.sourceContext = sourceContext
	r.touch()
}

// ReplaceIngredients swaps the ingredient list wholesale,
// renumbering positions densely from 0
func (r *Recipe) ReplaceIngredients(ingredients []Ingredient) error {
	for _, ing := range ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	for i := range ingredients {
		ingredients[i].Position = i
	}
	r.ingredients = ingredients
	r.touch()
	return nil
}

// ReplaceSteps swaps the step list wholesale, renumbering positions
func (r *Recipe) ReplaceSteps(steps []Step) error {
	for _, s := range steps {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for i := range steps {
		steps[i].Position = i
	}
	r.steps = steps
	r.touch()
	return nil
}

// ReplaceTags swaps the tag list wholesale
func (r *Recipe) ReplaceTags(tags []Tag) error {
	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	r.tags = tags
	r.touch()
	return nil
}

// AsPortionVariantOf links this recipe to a root as a portion variant.
// Lineage changes only here and in AsContentVariantOf; unrelated edits
// never reclassify a recipe.
func (r *Recipe) AsPortionVariantOf(parentID int64, servings float64) error {
	if parentID == r.id && r.id != 0 {
		return ErrSelfParent
	}
	if servings <= 0 {
		return ErrInvalidServings
	}
	r.parentRecipeID = &parentID
	r.variantType = VariantTypePortion
	r.servings = &servings
	r.touch()
	return nil
}

// AsContentVariantOf links this recipe to a parent as a content variant
func (r *Recipe) AsContentVariantOf(parentID int64) error {
	if parentID == r.id && r.id != 0 {
		return ErrSelfParent
	}
	r.parentRecipeID = &parentID
	r.variantType = VariantTypeContent
	r.touch()
	return nil
}

// validateLineage enforces the variant invariants: a portion variant
// must have both a parent and a serving count.
func (r *Recipe) validateLineage() error {
	if err := r.variantType.Validate(); err != nil {
		return err
	}
	if r.variantType == VariantTypePortion {
		if r.parentRecipeID == nil {
			return ErrParentRequired
		}
		if r.servings == nil || *r.servings <= 0 {
			return ErrServingsRequired
		}
	}
	if r.parentRecipeID != nil && *r.parentRecipeID == r.id && r.id != 0 {
		return ErrSelfParent
	}
	return nil
}

func (r *Recipe) touch() {
	r.updatedAt = time.Now()
}

// validateTitle validates recipe title
func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	return nil
}
