package gorm

import (
	"github.com/larderapp/larder/internal/domain/chat"
	"github.com/larderapp/larder/internal/domain/recipe"
)

// RecipeToModel converts a domain recipe to its GORM model, children
// included
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	model := &RecipeModel{
		ID:              r.ID(),
		Title:           r.Title(),
		Description:     r.Description(),
		Servings:        r.Servings(),
		PrepTimeMinutes: r.PrepTimeMinutes(),
		CookTimeMinutes: r.CookTimeMinutes(),
		Rating:          string(r.Rating()),
		SourceType:      string(r.SourceType()),
		SourceText:      r.SourceText(),
		SourceContext:   r.SourceContext(),
		ParentRecipeID:  r.ParentRecipeID(),
		VariantType:     string(r.VariantType()),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}

	for _, ing := range r.Ingredients() {
		model.Ingredients = append(model.Ingredients, IngredientModel{
			RecipeID: r.ID(),
			Position: ing.Position,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		})
	}
	for _, st := range r.Steps() {
		model.Steps = append(model.Steps, StepModel{
			RecipeID:    r.ID(),
			Position:    st.Position,
			Instruction: st.Instruction,
		})
	}
	for _, t := range r.Tags() {
		model.Tags = append(model.Tags, TagModel{
			RecipeID:      r.ID(),
			Tag:           t.Tag,
			AutoGenerated: t.AutoGenerated,
		})
	}
	return model
}

// ModelToRecipe rebuilds a domain recipe from its GORM model
func ModelToRecipe(m *RecipeModel) (*recipe.Recipe, error) {
	ingredients := make([]recipe.Ingredient, len(m.Ingredients))
	for i, ing := range m.Ingredients {
		ingredients[i] = recipe.Ingredient{
			Position: ing.Position,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		}
	}

	steps := make([]recipe.Step, len(m.Steps))
	for i, st := range m.Steps {
		steps[i] = recipe.Step{
			Position:    st.Position,
			Instruction: st.Instruction,
		}
	}

	tags := make([]recipe.Tag, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = recipe.Tag{
			Tag:           t.Tag,
			AutoGenerated: t.AutoGenerated,
		}
	}

	return recipe.Reconstitute(
		m.ID,
		m.Title,
		m.Description,
		m.Servings,
		m.PrepTimeMinutes,
		m.CookTimeMinutes,
		recipe.Rating(m.Rating),
		recipe.SourceType(m.SourceType),
		m.SourceText,
		m.SourceContext,
		m.ParentRecipeID,
		recipe.VariantType(m.VariantType),
		ingredients,
		steps,
		tags,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

// ModelToRef extracts a lightweight reference from a recipe model
func ModelToRef(m *RecipeModel) recipe.Ref {
	return recipe.Ref{
		ID:       m.ID,
		Title:    m.Title,
		Servings: m.Servings,
	}
}

// MessageToModel converts a conversation turn to its GORM model
func MessageToModel(msg *chat.Message) *ChatMessageModel {
	return &ChatMessageModel{
		ID:           msg.ID,
		RecipeID:     msg.RecipeID,
		Role:         string(msg.Role),
		Content:      msg.Content,
		ProposalJSON: msg.ProposalJSON,
		CreatedAt:    msg.CreatedAt,
	}
}

// ModelToMessage rebuilds a conversation turn from its GORM model
func ModelToMessage(m *ChatMessageModel) chat.Message {
	return chat.Message{
		ID:           m.ID,
		RecipeID:     m.RecipeID,
		Role:         chat.Role(m.Role),
		Content:      m.Content,
		ProposalJSON: m.ProposalJSON,
		CreatedAt:    m.CreatedAt,
	}
}
