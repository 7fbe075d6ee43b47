package css

import (
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// MaybeColorFromString resolves a CSS named color keyword (SVG 1.1 set).
func MaybeColorFromString(name string) (color.RGBA, bool) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
