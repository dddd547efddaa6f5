package chat

import (
	"encoding/json"
	"fmt"

	"github.com/larderapp/larder/internal/domain/recipe"
)

const assistantPromptTemplate = `You are a cooking assistant helping with one specific recipe. The user may ask questions about it or ask you to change it.

Respond with valid JSON in this exact format:
{
  "reply": "Your conversational answer to the user",
  "proposals": []
}

When the user asks for a concrete change to the recipe (different ingredients, technique, serving size, dietary substitution), include one proposal per suggested version in "proposals":
{
  "title": "Recipe Title",
  "description": "Brief description",
  "servings": 4,
  "prepTimeMinutes": 15,
  "cookTimeMinutes": 30,
  "ingredients": [{"name": "flour", "quantity": 500, "unit": "g", "notes": null}],
  "steps": [{"instruction": "Add {{qty:500:g}} flour to a bowl. Cook for {{timer:5}}."}],
  "tags": ["main", "quick"],
  "variantType": "content"
}

RULES:
1. Use metric units and British English ingredient names
2. Embed quantities in step text as {{qty:VALUE:UNIT}} and durations as {{timer:M}} markers
3. Set "variantType" to "portion" only when the proposal is the same recipe at a different serving size; use "content" for any change to the dish itself
4. For questions that need no recipe change, return an empty "proposals" array
5. Return ONLY the JSON object, no other text

The recipe under discussion:
%s`

// proposalsLimit caps how many proposals one reply may carry
const proposalsLimit = 5

// recipeContext serializes the recipe for the system prompt
type recipeContext struct {
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	Servings        *float64            `json:"servings,omitempty"`
	PrepTimeMinutes *int                `json:"prepTimeMinutes,omitempty"`
	CookTimeMinutes *int                `json:"cookTimeMinutes,omitempty"`
	Ingredients     []recipeContextItem `json:"ingredients"`
	Steps           []string            `json:"steps"`
	Tags            []string            `json:"tags,omitempty"`
}

type recipeContextItem struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

func buildSystemPrompt(r *recipe.Recipe) string {
	ctx := recipeContext{
		Title:           r.Title(),
		Description:     r.Description(),
		Servings:        r.Servings(),
		PrepTimeMinutes: r.PrepTimeMinutes(),
		CookTimeMinutes: r.CookTimeMinutes(),
		Ingredients:     make([]recipeContextItem, len(r.Ingredients())),
		Steps:           make([]string, len(r.Steps())),
	}
	for i, ing := range r.Ingredients() {
		ctx.Ingredients[i] = recipeContextItem{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		}
	}
	for i, st := range r.Steps() {
		ctx.Steps[i] = st.Instruction
	}
	for _, t := range r.Tags() {
		ctx.Tags = append(ctx.Tags, t.Tag)
	}

	encoded, err := json.Marshal(ctx)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%q", r.Title()))
	}
	return fmt.Sprintf(assistantPromptTemplate, encoded)
}
