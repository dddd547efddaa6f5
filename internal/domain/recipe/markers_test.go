package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTimers(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []TimerMark
	}{
		{
			name:     "no markers",
			text:     "Knead the dough until smooth.",
			expected: []TimerMark{},
		},
		{
			name:     "single timer",
			text:     "Simmer for {{timer:15}}.",
			expected: []TimerMark{{Minutes: 15, Position: 11}},
		},
		{
			name: "multiple timers in order",
			text: "Rest {{timer:10}} then bake {{timer:25}}.",
			expected: []TimerMark{
				{Minutes: 10, Position: 5},
				{Minutes: 25, Position: 28},
			},
		},
		{
			name:     "fractional minutes",
			text:     "Blanch for {{timer:0.5}}.",
			expected: []TimerMark{{Minutes: 0.5, Position: 11}},
		},
		{
			name:     "malformed markers ignored",
			text:     "Wait {{timer:abc}} or {{timer:5}",
			expected: []TimerMark{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractTimers(tt.text))
		})
	}
}

func TestRenderStepText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		scale    float64
		expected string
	}{
		{
			name:     "plain text unchanged",
			text:     "Season to taste.",
			scale:    2,
			expected: "Season to taste.",
		},
		{
			name:     "quantity scaled up with promotion",
			text:     "Add {{qty:500:g}} flour. Cook for {{timer:15}}.",
			scale:    2,
			expected: "Add 1kg flour. Cook for 15 min.",
		},
		{
			name:     "quantity scaled down",
			text:     "Add {{qty:500:g}} flour. Cook for {{timer:15}}.",
			scale:    0.5,
			expected: "Add 250g flour. Cook for 15 min.",
		},
		{
			name:     "empty unit renders bare number",
			text:     "Crack {{qty:2:}} eggs.",
			scale:    1.5,
			expected: "Crack 3 eggs.",
		},
		{
			name:     "non-metric unit gets a space",
			text:     "Stir in {{qty:2:tsp}} vanilla.",
			scale:    1,
			expected: "Stir in 2 tsp vanilla.",
		},
		{
			name:     "malformed marker passes through",
			text:     "Add {{qty:some:g}} flour.",
			scale:    2,
			expected: "Add {{qty:some:g}} flour.",
		},
		{
			name:     "zero timer",
			text:     "Serve immediately {{timer:0}}.",
			scale:    1,
			expected: "Serve immediately 0 sec.",
		},
		{
			name:     "hour and minute duration",
			text:     "Braise for {{timer:90}}.",
			scale:    1,
			expected: "Braise for 1h 30 min.",
		},
		{
			name:     "minute and second duration",
			text:     "Whisk for {{timer:1.5}}.",
			scale:    1,
			expected: "Whisk for 1 min 30 sec.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderStepText(tt.text, tt.scale))
		})
	}
}

func TestScaleMarkers(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		scale    float64
		expected string
	}{
		{
			name:     "scales quantity in place",
			text:     "Add {{qty:500:g}} flour.",
			scale:    0.5,
			expected: "Add {{qty:250:g}} flour.",
		},
		{
			name:     "keeps fractional values trimmed",
			text:     "Add {{qty:1:tsp}} salt.",
			scale:    1.5,
			expected: "Add {{qty:1.5:tsp}} salt.",
		},
		{
			name:     "timers untouched",
			text:     "Cook {{qty:200:g}} rice for {{timer:12}}.",
			scale:    2,
			expected: "Cook {{qty:400:g}} rice for {{timer:12}}.",
		},
		{
			name:     "malformed marker untouched",
			text:     "Add {{qty::g}} flour.",
			scale:    2,
			expected: "Add {{qty::g}} flour.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScaleMarkers(tt.text, tt.scale))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes  float64
		expected string
	}{
		{0, "0 sec"},
		{0.5, "30 sec"},
		{1, "1 min"},
		{1.5, "1 min 30 sec"},
		{15, "15 min"},
		{60, "1h"},
		{90, "1h 30 min"},
		{125, "2h 5 min"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.minutes), "minutes=%v", tt.minutes)
	}
}
