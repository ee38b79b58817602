package dom

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA color as reported by getComputedStyle.
type Color struct {
	R, G, B uint8
	A       float64
}

// Well-known colors that rubrics refer to by name.
var (
	White = Color{R: 255, G: 255, B: 255, A: 1}
	Black = Color{A: 1}
)

// Transparent reports whether the color contributes nothing, meaning the element shows
// whatever its ancestors paint.
func (c Color) Transparent() bool {
	return c.A == 0
}

// Hex packs the color channels into a single integer, 0xRRGGBB. Alpha is ignored.
func (c Color) Hex() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (c Color) String() string {
	if c.A == 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// ParseColor parses the computed-style forms "rgb(r, g, b)", "rgba(r, g, b, a)" and the keyword
// "transparent". An empty string is an error, since computed styles always carry a value.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" {
		return Color{}, nil
	}
	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return Color{}, fmt.Errorf("unsupported color value %q", s)
	}
	parts := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("unsupported color value %q", s)
	}
	c := Color{A: 1}
	for i, channel := range []*uint8{&c.R, &c.G, &c.B} {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil || v < 0 || v > 255 {
			return Color{}, fmt.Errorf("invalid color channel %q in %q", parts[i], s)
		}
		*channel = uint8(v + 0.5)
	}
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(parts[3], 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("invalid alpha %q in %q", parts[3], s)
		}
		c.A = a
	}
	return c, nil
}

// ParseHex parses "#rrggbb", "0xrrggbb", "rrggbb", or one of the names "white" and "black".
func ParseHex(s string) (uint32, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white":
		return White.Hex(), nil
	case "black":
		return Black.Hex(), nil
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#"), "0x")
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || v > 0xFFFFFF {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return uint32(v), nil
}

// FormatHex renders a packed color as "#rrggbb".
func FormatHex(v uint32) string {
	return fmt.Sprintf("#%06x", v)
}
