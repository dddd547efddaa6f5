package ingest

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoTitle is the one hard failure of extraction normalization.
// Every other malformed field is defaulted instead of rejected because
// the upstream producer is a language model and cannot be reasoned with.
var ErrNoTitle = errors.New("extracted recipe has no title")

// ErrNoJSON means no JSON object could be recovered from the response
var ErrNoJSON = errors.New("no JSON object found in model response")

// ExtractedIngredient is one normalized ingredient line
type ExtractedIngredient struct {
	Name     string
	Quantity *float64
	Unit     string
	Notes    string
}

// ExtractedStep is one normalized instruction
type ExtractedStep struct {
	Instruction string
}

// ExtractedVariant is one serving-size variant of a multi-variant
// extraction, with its own quantities
type ExtractedVariant struct {
	Servings        float64
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Ingredients     []ExtractedIngredient
	Steps           []ExtractedStep
}

// Extraction is the normalized output of a model extraction call.
// Either the single-recipe fields or Variants are populated, never both.
type Extraction struct {
	Title           string
	Description     string
	Servings        *float64
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Ingredients     []ExtractedIngredient
	Steps           []ExtractedStep
	SuggestedTags   []string
	Variants        []ExtractedVariant
}

// HasVariants reports whether this is a multi-variant extraction
func (e *Extraction) HasVariants() bool {
	return len(e.Variants) > 0
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseExtraction recovers and normalizes a recipe payload from a raw
// model response. Markdown code fences are stripped first; failing
// that, the outermost brace pair is tried. Loose typing in the payload
// (steps as bare strings, junk in numeric fields) is absorbed here so
// nothing downstream has to cope with it.
func ParseExtraction(response string) (*Extraction, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrNoJSON
	}
	return normalize(doc)
}

// ExtractJSON recovers a JSON object from a model response, trying a
// markdown code fence first and the outermost brace pair second
func ExtractJSON(response string) ([]byte, error) {
	candidate := response
	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	if json.Valid([]byte(candidate)) {
		return []byte(candidate), nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}
	candidate = response[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, ErrNoJSON
	}
	return []byte(candidate), nil
}

func normalize(doc map[string]any) (*Extraction, error) {
	title := asString(doc["title"])
	if title == "" {
		return nil, ErrNoTitle
	}

	ext := &Extraction{
		Title:         title,
		Description:   asString(doc["description"]),
		SuggestedTags: normalizeTags(doc["suggestedTags"]),
	}

	if variants, ok := doc["variants"].([]any); ok && len(variants) > 0 {
		for _, v := range variants {
			vdoc, ok := v.(map[string]any)
			if !ok {
				continue
			}
			servings := 1.0
			if n, ok := asNumber(vdoc["servings"]); ok {
				servings = n
			}
			ext.Variants = append(ext.Variants, ExtractedVariant{
				Servings:        servings,
				PrepTimeMinutes: asMinutes(vdoc["prepTimeMinutes"]),
				CookTimeMinutes: asMinutes(vdoc["cookTimeMinutes"]),
				Ingredients:     normalizeIngredients(vdoc["ingredients"]),
				Steps:           normalizeSteps(vdoc["steps"]),
			})
		}
		return ext, nil
	}

	if n, ok := asNumber(doc["servings"]); ok {
		ext.Servings = &n
	}
	ext.PrepTimeMinutes = asMinutes(doc["prepTimeMinutes"])
	ext.CookTimeMinutes = asMinutes(doc["cookTimeMinutes"])
	ext.Ingredients = normalizeIngredients(doc["ingredients"])
	ext.Steps = normalizeSteps(doc["steps"])
	return ext, nil
}

func normalizeIngredients(v any) []ExtractedIngredient {
	items, ok := v.([]any)
	if !ok {
		return []ExtractedIngredient{}
	}
	out := make([]ExtractedIngredient, 0, len(items))
	for _, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ing := ExtractedIngredient{
			Name:  asString(doc["name"]),
			Unit:  asString(doc["unit"]),
			Notes: asString(doc["notes"]),
		}
		if n, ok := asNumber(doc["quantity"]); ok {
			ing.Quantity = &n
		}
		if ing.Name == "" {
			continue
		}
		out = append(out, ing)
	}
	return out
}

// normalizeSteps accepts both {instruction: "..."} objects and bare
// strings, which some models emit despite the prompt
func normalizeSteps(v any) []ExtractedStep {
	items, ok := v.([]any)
	if !ok {
		return []ExtractedStep{}
	}
	out := make([]ExtractedStep, 0, len(items))
	for _, item := range items {
		var instruction string
		switch s := item.(type) {
		case string:
			instruction = s
		case map[string]any:
			instruction = asString(s["instruction"])
		}
		if instruction == "" {
			continue
		}
		out = append(out, ExtractedStep{Instruction: instruction})
	}
	return out
}

func normalizeTags(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

func asMinutes(v any) *int {
	if n, ok := v.(float64); ok {
		m := int(n)
		return &m
	}
	return nil
}
