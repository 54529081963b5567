package chart

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// defaultColors are the palettes used for 1, 5 and 9 lines. Other counts
// take the first n of the next larger palette or, past the largest, an even
// spread around the hue wheel.
var defaultColors = map[int][]string{
	1: {"indianred"},
	5: {"royalblue", "darkorange", "forestgreen", "indianred", "gray"},
	9: {
		"darkblue", "darkorange", "forestgreen", "indianred", "purple",
		"gold", "lightcoral", "lightseagreen", "gray",
	},
}

var shortColors = map[string]color.RGBA{
	"b": {0, 0, 255, 255},
	"g": {0, 128, 0, 255},
	"r": {255, 0, 0, 255},
	"c": {0, 191, 191, 255},
	"m": {191, 0, 191, 255},
	"y": {191, 191, 0, 255},
	"k": {0, 0, 0, 255},
	"w": {255, 255, 255, 255},
}

// ColorList returns count color names for count lines.
func ColorList(count int) []string {
	if count <= 0 {
		return nil
	}
	if colors, ok := defaultColors[count]; ok {
		return append([]string(nil), colors...)
	}

	sizes := make([]int, 0, len(defaultColors))
	for k := range defaultColors {
		sizes = append(sizes, k)
	}
	sort.Ints(sizes)
	for _, size := range sizes {
		if size > count {
			return append([]string(nil), defaultColors[size][:count]...)
		}
	}

	out := make([]string, count)
	for i := range out {
		r, g, b := hsvToRGB(float64(i)/float64(count), 0.85, 0.85)
		out[i] = fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return out
}

// ParseColor understands CSS color names, single-letter names (b, g, r, c,
// m, y, k, w) and #rgb, #rrggbb or #rrggbbaa hex strings.
func ParseColor(s string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "#") {
		return parseHex(name)
	}
	if c, ok := shortColors[name]; ok {
		return c, nil
	}
	name = strings.ReplaceAll(name, " ", "")
	if name == "grey" {
		name = "gray"
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown color %q", s)
}

func parseHex(s string) (color.Color, error) {
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("malformed hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("malformed hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// WithAlpha returns c with its opacity set to alpha in [0, 1].
func WithAlpha(c color.Color, alpha float64) color.Color {
	alpha = math.Max(0, math.Min(1, alpha))
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(alpha * 255))
	return n
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}
