package recipe

import (
	"math"
	"strconv"
	"strings"
)

// Metric abbreviations are joined to the number with no space ("500g");
// every other unit gets a single space ("2 tsp").
var metricUnits = map[string]bool{
	"g":  true,
	"kg": true,
	"mg": true,
	"ml": true,
	"cl": true,
	"L":  true,
	"l":  true,
}

// ScaleFactor computes the ratio of target to base servings
func ScaleFactor(baseServings, targetServings float64) (float64, error) {
	if baseServings <= 0 {
		return 0, ErrNoBaseServings
	}
	if targetServings <= 0 {
		return 0, ErrInvalidScale
	}
	return targetServings / baseServings, nil
}

// ScaleQuantity applies linear scaling with no rounding
func ScaleQuantity(value, scale float64) float64 {
	return value * scale
}

// FormatQuantity converts a base quantity and unit into a scaled,
// display-ready string. Grams promote to kilograms and millilitres to
// litres at 1000 and above. The function is pure so ingredient lists
// and in-step markers always render identically.
// Negative values are formatted as-is without promotion.
func FormatQuantity(value float64, unit string, scale float64) string {
	v := value * scale

	if v >= 1000 {
		switch unit {
		case "g":
			return formatPromoted(v) + "kg"
		case "ml":
			return formatPromoted(v) + "L"
		}
	}

	num := formatNumber(v)
	if unit == "" {
		return num
	}
	if metricUnits[unit] {
		return num + unit
	}
	return num + " " + unit
}

// formatPromoted renders v/1000 with one decimal place, or none when
// v is an exact multiple of 1000.
func formatPromoted(v float64) string {
	p := v / 1000
	if math.Mod(v, 1000) == 0 {
		return strconv.FormatFloat(p, 'f', 0, 64)
	}
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// formatNumber renders integers bare and non-integers with one decimal
// place, suppressing a trailing ".0".
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
