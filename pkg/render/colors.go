// Package render draws pages of a document with saved and preview words
// highlighted.
package render

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Mode selects how saved word counts map to highlight colors.
type Mode string

const (
	Discrete   Mode = "discrete"
	Continuous Mode = "continuous"
)

// ParseMode accepts "discrete" (the default for "") or "continuous".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Discrete:
		return Discrete, nil
	case Continuous:
		return Continuous, nil
	default:
		return "", fmt.Errorf("unknown highlight mode %q (want discrete or continuous)", s)
	}
}

// maxLevel is the count at which the color scale stops changing.
const maxLevel = 5

type hsl struct{ h, s, l float64 }

func (c hsl) hex() string {
	return colorful.Hsl(c.h, c.s/100, c.l/100).Clamped().Hex()
}

var (
	discreteScale = [maxLevel]hsl{
		{193, 92, 90},
		{193, 91, 80},
		{193, 85, 70},
		{216, 75, 60},
		{219, 99, 50},
	}
	previewColor = hsl{272, 95, 78}
)

func level(count int) int {
	if count < 1 {
		return 1
	}
	if count > maxLevel {
		return maxLevel
	}
	return count
}

// SavedColor returns the background color of a saved word seen count times.
func SavedColor(count int, mode Mode) string {
	n := level(count)
	if mode == Continuous {
		step := float64(n - 1)
		return hsl{
			h: 60 - 12.5*step,
			s: 60 + 7.5*step,
			l: 90 - 7.5*step,
		}.hex()
	}
	return discreteScale[n-1].hex()
}

// PreviewColor returns the background color of a staged word.
func PreviewColor() string {
	return previewColor.hex()
}
