package recipe

import (
	"time"

	"github.com/larderapp/larder/internal/domain/recipe"
	"github.com/larderapp/larder/internal/ports/inbound"
)

// ToDTO converts a recipe entity to its transfer representation.
// Step text is rendered at scale 1 so markers always reach clients in
// display form alongside the raw instruction.
func ToDTO(r *recipe.Recipe) inbound.RecipeDTO {
	ingredients := make([]inbound.IngredientDTO, len(r.Ingredients()))
	for i, ing := range r.Ingredients() {
		ingredients[i] = inbound.IngredientDTO{
			Position: ing.Position,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		}
	}

	steps := make([]inbound.StepDTO, len(r.Steps()))
	for i, st := range r.Steps() {
		timers := recipe.ExtractTimers(st.Instruction)
		timerDTOs := make([]inbound.TimerDTO, len(timers))
		for j, tm := range timers {
			timerDTOs[j] = inbound.TimerDTO{Minutes: tm.Minutes, Position: tm.Position}
		}
		steps[i] = inbound.StepDTO{
			Position:    st.Position,
			Instruction: st.Instruction,
			Rendered:    recipe.RenderStepText(st.Instruction, 1),
			Timers:      timerDTOs,
		}
	}

	tags := make([]inbound.TagDTO, len(r.Tags()))
	for i, t := range r.Tags() {
		tags[i] = inbound.TagDTO{Tag: t.Tag, AutoGenerated: t.AutoGenerated}
	}

	return inbound.RecipeDTO{
		ID:              r.ID(),
		Title:           r.Title(),
		Description:     r.Description(),
		Servings:        r.Servings(),
		PrepTimeMinutes: r.PrepTimeMinutes(),
		CookTimeMinutes: r.CookTimeMinutes(),
		Rating:          string(r.Rating()),
		SourceType:      string(r.SourceType()),
		SourceContext:   r.SourceContext(),
		ParentRecipeID:  r.ParentRecipeID(),
		VariantType:     string(r.VariantType()),
		LineageRole:     string(r.LineageRole()),
		Ingredients:     ingredients,
		Steps:           steps,
		Tags:            tags,
		CreatedAt:       r.CreatedAt().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt().Format(time.RFC3339),
	}
}

// IngredientsFromInput converts caller-supplied ingredient lines to
// domain values; positions are assigned by the entity on replace.
func IngredientsFromInput(inputs []inbound.IngredientInput) []recipe.Ingredient {
	out := make([]recipe.Ingredient, len(inputs))
	for i, in := range inputs {
		out[i] = recipe.Ingredient{
			Name:     in.Name,
			Quantity: in.Quantity,
			Unit:     in.Unit,
			Notes:    in.Notes,
		}
	}
	return out
}

// StepsFromInput converts caller-supplied instructions to domain values
func StepsFromInput(inputs []inbound.StepInput) []recipe.Step {
	out := make([]recipe.Step, len(inputs))
	for i, in := range inputs {
		out[i] = recipe.Step{Instruction: in.Instruction}
	}
	return out
}

// TagsFromInput converts plain tag strings to domain values
func TagsFromInput(tags []string, autoGenerated bool) []recipe.Tag {
	out := make([]recipe.Tag, len(tags))
	for i, t := range tags {
		out[i] = recipe.Tag{Tag: t, AutoGenerated: autoGenerated}
	}
	return out
}
