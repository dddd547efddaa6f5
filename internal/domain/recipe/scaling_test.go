package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleFactor(t *testing.T) {
	t.Run("valid ratio", func(t *testing.T) {
		scale, err := ScaleFactor(2, 4)
		assert.NoError(t, err)
		assert.Equal(t, 2.0, scale)
	})

	t.Run("no base servings", func(t *testing.T) {
		_, err := ScaleFactor(0, 4)
		assert.ErrorIs(t, err, ErrNoBaseServings)
	})

	t.Run("non-positive target", func(t *testing.T) {
		_, err := ScaleFactor(2, 0)
		assert.ErrorIs(t, err, ErrInvalidScale)

		_, err = ScaleFactor(2, -3)
		assert.ErrorIs(t, err, ErrInvalidScale)
	})
}

func TestScaleQuantity(t *testing.T) {
	assert.Equal(t, 5.0, ScaleQuantity(2.5, 2))
	assert.Equal(t, 0.0, ScaleQuantity(0, 3))
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		unit     string
		scale    float64
		expected string
	}{
		{"grams unscaled", 500, "g", 1, "500g"},
		{"grams promoted to kg", 500, "g", 2, "1kg"},
		{"promoted with decimal", 750, "g", 2, "1.5kg"},
		{"promoted rounds to one decimal", 1234, "g", 1, "1.2kg"},
		{"millilitres promoted to L", 500, "ml", 4, "2L"},
		{"just under promotion threshold", 999, "g", 1, "999g"},
		{"non-metric unit spaced", 2, "tsp", 1, "2 tsp"},
		{"loose unit spaced", 1, "bunch", 1, "1 bunch"},
		{"empty unit bare", 1, "", 3, "3"},
		{"fractional bare", 1.5, "", 1, "1.5"},
		{"zero value", 0, "g", 1, "0g"},
		{"fractional metric", 2.5, "ml", 1, "2.5ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatQuantity(tt.value, tt.unit, tt.scale))
		})
	}
}

// Identical inputs must always yield identical strings so that
// ingredient lists and in-step markers never drift apart.
func TestFormatQuantityDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "500g", FormatQuantity(500, "g", 1))
		assert.Equal(t, "1kg", FormatQuantity(500, "g", 2))
	}
}
