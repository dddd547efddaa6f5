package ingest

import (
	"fmt"
	"strings"
)

// DefaultTags seeds tag suggestions until the library has its own
var DefaultTags = []string{
	"pasta", "indian", "mexican", "asian", "mediterranean", "british",
	"american", "main", "side", "dessert", "snack", "breakfast", "quick",
	"vegetarian", "vegan", "one-pot", "make-ahead", "soup", "salad", "baking",
}

const parsePromptTemplate = `You are a recipe parsing assistant. Extract the recipe from the provided text and return it as valid JSON.

IMPORTANT RULES:
1. Convert all measurements to metric units (grams, millilitres, celsius)
2. Convert oven temperatures to fan oven (typically 20C lower than conventional)
3. Use British English ingredient names:
   - eggplant -> aubergine
   - cilantro -> coriander
   - zucchini -> courgette
   - bell pepper -> pepper
   - scallion/green onion -> spring onion
   - arugula -> rocket
   - shrimp -> prawns
   - ground beef -> beef mince
4. In step instructions, embed quantities using {{qty:VALUE:UNIT}} markers where VALUE is the number and UNIT is the unit (g, ml, tsp, tbsp, or empty for countable items). Examples:
   - "Add {{qty:500:g}} flour" (500 grams)
   - "Pour in {{qty:200:ml}} milk" (200 millilitres)
   - "Add {{qty:2:tsp}} salt" (2 teaspoons)
   - "Beat {{qty:3:}} eggs" (3 eggs, no unit)
5. Mark timer durations with {{timer:M}} where M is minutes (e.g., {{timer:15}} for 15 minutes)
6. Suggest appropriate tags from: %s
7. SPLIT STEPS: Each step should focus on ONE main action. If a step contains multiple unrelated actions, split them into separate steps.
8. MULTIPLE PORTION SIZES: If the recipe provides quantities for multiple serving sizes (e.g., "For 2 people: 200g flour, For 4 people: 400g flour"), you MUST extract ALL variants using the multi-variant format below.

SINGLE SERVING FORMAT (when recipe has one serving size):
{
  "title": "Recipe Title",
  "description": "Brief description of the dish",
  "servings": 4,
  "prepTimeMinutes": 15,
  "cookTimeMinutes": 30,
  "ingredients": [
    {"name": "flour", "quantity": 500, "unit": "g", "notes": "sifted"},
    {"name": "eggs", "quantity": 3, "unit": null, "notes": null}
  ],
  "steps": [
    {"instruction": "Add {{qty:500:g}} flour to a bowl."},
    {"instruction": "Beat {{qty:3:}} eggs and mix in. Cook for {{timer:5}}."}
  ],
  "suggestedTags": ["main", "quick", "vegetarian"]
}

MULTI-VARIANT FORMAT (when recipe has quantities for multiple serving sizes):
{
  "title": "Recipe Title",
  "description": "Brief description of the dish",
  "suggestedTags": ["main", "quick"],
  "variants": [
    {
      "servings": 2,
      "prepTimeMinutes": 15,
      "cookTimeMinutes": 30,
      "ingredients": [{"name": "flour", "quantity": 250, "unit": "g", "notes": null}],
      "steps": [{"instruction": "Add {{qty:250:g}} flour to a bowl."}]
    },
    {
      "servings": 4,
      "prepTimeMinutes": 15,
      "cookTimeMinutes": 35,
      "ingredients": [{"name": "flour", "quantity": 500, "unit": "g", "notes": null}],
      "steps": [{"instruction": "Add {{qty:500:g}} flour to a bowl."}]
    }
  ]
}

IMPORTANT: Use multi-variant format ONLY when the source recipe explicitly provides different quantities for different serving sizes. If it only gives one serving size, use the single format.

For ingredients:
- quantity should be a number or null (for "to taste", "a pinch", etc.)
- unit should be "g", "ml", "tsp", "tbsp", or null for countable items like "2 eggs"
- notes are optional (for prep instructions like "diced", "room temperature")

Parse this recipe:
`

const generatePrompt = `You are a creative recipe assistant. Generate a complete recipe based on the user's description.

IMPORTANT RULES:
1. Use metric units (grams, millilitres, celsius)
2. Use fan oven temperatures
3. Use British English ingredient names (aubergine not eggplant, coriander not cilantro, etc.)
4. In step instructions, embed quantities using {{qty:VALUE:UNIT}} markers
5. Mark timer durations with {{timer:M}} where M is minutes
6. Create practical, delicious recipes that a home cook can make
7. Be creative but realistic with ingredients and techniques
8. Suggest appropriate tags

Return ONLY valid JSON in this exact format:
{
  "title": "Recipe Title",
  "description": "Brief description of the dish",
  "servings": 4,
  "prepTimeMinutes": 15,
  "cookTimeMinutes": 30,
  "ingredients": [
    {"name": "flour", "quantity": 500, "unit": "g", "notes": "sifted"},
    {"name": "eggs", "quantity": 3, "unit": null, "notes": null}
  ],
  "steps": [
    {"instruction": "Add {{qty:500:g}} flour to a bowl."},
    {"instruction": "Beat {{qty:3:}} eggs and mix in. Cook for {{timer:5}}."}
  ],
  "suggestedTags": ["main", "quick", "vegetarian"]
}

User's recipe request:
`

const imageExtractPrompt = `Extract all text from this recipe image. Include:
- Recipe title
- Any description or introduction
- All ingredients with quantities
- All cooking steps/method
- Any times, temperatures, or serving information

Return the text as if you were transcribing the recipe from a cookbook. Include all details visible in the image.`

// buildParsePrompt inserts the tag vocabulary into the parse prompt,
// falling back to DefaultTags when the library is empty
func buildParsePrompt(tags []string) string {
	if len(tags) == 0 {
		tags = DefaultTags
	}
	return fmt.Sprintf(parsePromptTemplate, strings.Join(tags, ", "))
}
