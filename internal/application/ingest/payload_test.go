package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractionSingleRecipe(t *testing.T) {
	response := `{
		"title": "Shakshuka",
		"description": "Eggs poached in spiced tomato sauce",
		"servings": 2,
		"prepTimeMinutes": 10,
		"cookTimeMinutes": 25,
		"ingredients": [
			{"name": "crushed tomatoes", "quantity": 400, "unit": "g", "notes": null},
			{"name": "eggs", "quantity": 4, "unit": null, "notes": null}
		],
		"steps": [
			{"instruction": "Add {{qty:400:g}} tomatoes. Simmer for {{timer:10}}."}
		],
		"suggestedTags": ["breakfast", "vegetarian"]
	}`

	ext, err := ParseExtraction(response)
	require.NoError(t, err)

	assert.Equal(t, "Shakshuka", ext.Title)
	assert.False(t, ext.HasVariants())
	require.NotNil(t, ext.Servings)
	assert.Equal(t, 2.0, *ext.Servings)
	require.Len(t, ext.Ingredients, 2)
	assert.Equal(t, "g", ext.Ingredients[0].Unit)
	require.NotNil(t, ext.Ingredients[1].Quantity)
	assert.Equal(t, 4.0, *ext.Ingredients[1].Quantity)
	require.Len(t, ext.Steps, 1)
	assert.Equal(t, []string{"breakfast", "vegetarian"}, ext.SuggestedTags)
}

func TestParseExtractionMarkdownFence(t *testing.T) {
	response := "Here is the recipe:\n```json\n{\"title\": \"Dal\", \"steps\": []}\n```\nEnjoy!"

	ext, err := ParseExtraction(response)
	require.NoError(t, err)
	assert.Equal(t, "Dal", ext.Title)
}

func TestParseExtractionBraceFallback(t *testing.T) {
	response := `Sure! {"title": "Dal", "servings": 4} Anything else?`

	ext, err := ParseExtraction(response)
	require.NoError(t, err)
	assert.Equal(t, "Dal", ext.Title)
	require.NotNil(t, ext.Servings)
	assert.Equal(t, 4.0, *ext.Servings)
}

func TestParseExtractionStepsAsBareStrings(t *testing.T) {
	response := `{"title": "Dal", "steps": ["Rinse the lentils.", {"instruction": "Simmer for {{timer:25}}."}]}`

	ext, err := ParseExtraction(response)
	require.NoError(t, err)
	require.Len(t, ext.Steps, 2)
	assert.Equal(t, "Rinse the lentils.", ext.Steps[0].Instruction)
	assert.Equal(t, "Simmer for {{timer:25}}.", ext.Steps[1].Instruction)
}

func TestParseExtractionDefaultsMalformedFields(t *testing.T) {
	response := `{
		"title": "Dal",
		"servings": "four",
		"prepTimeMinutes": null,
		"ingredients": "not a list",
		"steps": 12,
		"suggestedTags": [1, "quick", null]
	}`

	ext, err := ParseExtraction(response)
	require.NoError(t, err)
	assert.Nil(t, ext.Servings)
	assert.Nil(t, ext.PrepTimeMinutes)
	assert.Empty(t, ext.Ingredients)
	assert.Empty(t, ext.Steps)
	assert.Equal(t, []string{"quick"}, ext.SuggestedTags)
}

func TestParseExtractionMissingTitleIsFatal(t *testing.T) {
	_, err := ParseExtraction(`{"servings": 4}`)
	assert.ErrorIs(t, err, ErrNoTitle)

	_, err = ParseExtraction(`{"title": ""}`)
	assert.ErrorIs(t, err, ErrNoTitle)
}

func TestParseExtractionNoJSON(t *testing.T) {
	_, err := ParseExtraction("I could not find a recipe in that text, sorry.")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestParseExtractionVariants(t *testing.T) {
	response := `{
		"title": "Pancakes",
		"description": "Classic pancakes",
		"suggestedTags": ["breakfast"],
		"variants": [
			{
				"servings": 4,
				"cookTimeMinutes": 20,
				"ingredients": [{"name": "flour", "quantity": 500, "unit": "g"}],
				"steps": [{"instruction": "Add {{qty:500:g}} flour."}]
			},
			{
				"servings": 2,
				"ingredients": [{"name": "flour", "quantity": 250, "unit": "g"}],
				"steps": ["Add {{qty:250:g}} flour."]
			}
		]
	}`

	ext, err := ParseExtraction(response)
	require.NoError(t, err)
	assert.True(t, ext.HasVariants())
	require.Len(t, ext.Variants, 2)
	assert.Equal(t, 4.0, ext.Variants[0].Servings)
	require.NotNil(t, ext.Variants[0].CookTimeMinutes)
	assert.Equal(t, 20, *ext.Variants[0].CookTimeMinutes)
	assert.Nil(t, ext.Variants[1].CookTimeMinutes)
	require.Len(t, ext.Variants[1].Steps, 1)
}

func TestParseExtractionVariantServingsDefault(t *testing.T) {
	response := `{"title": "Pancakes", "variants": [{"ingredients": [], "steps": []}]}`

	ext, err := ParseExtraction(response)
	require.NoError(t, err)
	require.Len(t, ext.Variants, 1)
	assert.Equal(t, 1.0, ext.Variants[0].Servings)
}
