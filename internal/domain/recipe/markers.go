package recipe

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Step instructions may embed two marker forms:
//
//	{{qty:VALUE:UNIT}}   a quantity tied to the ingredient list so both
//	                     scale together; UNIT may be empty for countables
//	{{timer:MINUTES}}    a cooking duration, fractional minutes allowed
//
// Anything that does not match these shapes exactly (missing braces,
// non-numeric payload) is left as literal text. Rendering never fails.
var (
	qtyMarkerRe   = regexp.MustCompile(`\{\{qty:(\d+(?:\.\d+)?):([a-zA-Z]*)\}\}`)
	timerMarkerRe = regexp.MustCompile(`\{\{timer:(\d+(?:\.\d+)?)\}\}`)
)

// TimerMark is one {{timer:...}} occurrence in a step instruction.
// Position is the character offset of the match start.
type TimerMark struct {
	Minutes  float64
	Position int
}

// ExtractTimers scans text left to right and returns one TimerMark per
// well-formed timer marker, in order of appearance.
func ExtractTimers(text string) []TimerMark {
	matches := timerMarkerRe.FindAllStringSubmatchIndex(text, -1)
	marks := make([]TimerMark, 0, len(matches))
	for _, m := range matches {
		minutes, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		marks = append(marks, TimerMark{Minutes: minutes, Position: m[0]})
	}
	return marks
}

// RenderStepText produces human-readable instruction text: quantity
// markers become scaled, unit-formatted strings and timer markers
// become duration strings. Timers do not scale with servings.
func RenderStepText(text string, scale float64) string {
	out := qtyMarkerRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := qtyMarkerRe.FindStringSubmatch(m)
		value, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return m
		}
		return FormatQuantity(value, sub[2], scale)
	})
	return timerMarkerRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := timerMarkerRe.FindStringSubmatch(m)
		minutes, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return m
		}
		return FormatDuration(minutes)
	})
}

// ScaleMarkers rewrites quantity markers with their values multiplied
// by scale, keeping the marker syntax intact. Used when a scaled copy
// of a recipe is stored rather than displayed.
func ScaleMarkers(text string, scale float64) string {
	return qtyMarkerRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := qtyMarkerRe.FindStringSubmatch(m)
		value, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return m
		}
		scaled := math.Round(value*scale*100) / 100
		return "{{qty:" + formatMarkerValue(scaled) + ":" + sub[2] + "}}"
	})
}

// FormatDuration renders minutes as a human duration string:
// "30 sec", "15 min", "1 min 30 sec", "1h 30 min", "0 sec" for zero.
func FormatDuration(minutes float64) string {
	totalSeconds := int(math.Round(minutes * 60))
	if totalSeconds <= 0 {
		return "0 sec"
	}

	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+"h")
	}
	if mins > 0 {
		parts = append(parts, strconv.Itoa(mins)+" min")
	}
	if secs > 0 {
		parts = append(parts, strconv.Itoa(secs)+" sec")
	}
	return strings.Join(parts, " ")
}

// formatMarkerValue renders a scaled marker value with up to two
// decimal places and no trailing zeros.
func formatMarkerValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
