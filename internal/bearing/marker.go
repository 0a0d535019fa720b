package bearing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// pixelValue matches a CSS pixel length such as "120px" or "-7.5px".
var pixelValue = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)px$`)

// leadingInt matches the first integer in a score readout.
var leadingInt = regexp.MustCompile(`-?\d+`)

// ParseMarkerPosition extracts the marker's position from its inline style,
// e.g. "position: absolute; left: 120px; top: 60px;". Both left and top must be
// present as pixel lengths.
func ParseMarkerPosition(style string) (schemas.Coordinate, error) {
	left, ok := styleProperty(style, "left")
	if !ok {
		return schemas.Coordinate{}, &AttributeFormatError{Attribute: "style.left", Value: style}
	}
	top, ok := styleProperty(style, "top")
	if !ok {
		return schemas.Coordinate{}, &AttributeFormatError{Attribute: "style.top", Value: style}
	}
	return schemas.Coordinate{X: left, Y: top}, nil
}

func styleProperty(style, name string) (float64, bool) {
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(key), name) {
			continue
		}
		m := pixelValue.FindStringSubmatch(strings.TrimSpace(value))
		if m == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// ParseScore reads the first integer from the score readout.
func ParseScore(text string) (int, error) {
	m := leadingInt.FindString(text)
	if m == "" {
		return 0, &AttributeFormatError{Attribute: "score", Value: text}
	}
	score, err := strconv.Atoi(m)
	if err != nil {
		return 0, &AttributeFormatError{Attribute: "score", Value: text}
	}
	return score, nil
}

// DefaultTargetSelector finds the grid cell whose inline style places it
// exactly at the target.
const DefaultTargetSelector = `canvas[style*="left: {x}px; top: {y}px;"]`

// TargetSelector fills the {x} and {y} placeholders of template with the
// coordinate, formatted the way the page writes inline pixel values (130, not
// 130.0). The match is exact: no rounding or tolerance is applied.
func TargetSelector(template string, c schemas.Coordinate) string {
	return strings.NewReplacer(
		"{x}", formatPixel(c.X),
		"{y}", formatPixel(c.Y),
	).Replace(template)
}

func formatPixel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
