package chart

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"mgchart/internal/frame"
	"mgchart/internal/kwargs"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ReferenceColor is used for the y=0 and x=0 reference lines.
var ReferenceColor = color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}

var defaultSpanColor = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0x80}

// HSpan shades the band between two y values across the plot width.
type HSpan struct {
	Min, Max float64
	Color    color.Color
}

func (s *HSpan) Plot(c draw.Canvas, p *plot.Plot) {
	_, trY := p.Transforms(&c)
	y0 := trY(clamp(s.Min, p.Y.Min, p.Y.Max))
	y1 := trY(clamp(s.Max, p.Y.Min, p.Y.Max))
	fillRect(c, s.Color, c.Min.X, y0, c.Max.X, y1)
}

// VSpan shades the band between two x values across the plot height.
type VSpan struct {
	Min, Max float64
	Color    color.Color
}

func (s *VSpan) Plot(c draw.Canvas, p *plot.Plot) {
	trX, _ := p.Transforms(&c)
	x0 := trX(clamp(s.Min, p.X.Min, p.X.Max))
	x1 := trX(clamp(s.Max, p.X.Min, p.X.Max))
	fillRect(c, s.Color, x0, c.Min.Y, x1, c.Max.Y)
}

// HLine draws a horizontal line at Y across the plot width. Lines outside
// the visible range are not drawn.
type HLine struct {
	Y float64
	draw.LineStyle
}

func (l *HLine) Plot(c draw.Canvas, p *plot.Plot) {
	if l.Y < p.Y.Min || l.Y > p.Y.Max {
		return
	}
	_, trY := p.Transforms(&c)
	y := trY(l.Y)
	c.StrokeLine2(l.LineStyle, c.Min.X, y, c.Max.X, y)
}

// VLine draws a vertical line at X across the plot height.
type VLine struct {
	X float64
	draw.LineStyle
}

func (l *VLine) Plot(c draw.Canvas, p *plot.Plot) {
	if l.X < p.X.Min || l.X > p.X.Max {
		return
	}
	trX, _ := p.Transforms(&c)
	x := trX(l.X)
	c.StrokeLine2(l.LineStyle, x, c.Min.Y, x, c.Max.Y)
}

// ReferenceLine returns the thin grey line used to highlight zero.
func ReferenceLine() draw.LineStyle {
	return draw.LineStyle{Color: ReferenceColor, Width: vg.Points(0.66)}
}

func fillRect(c draw.Canvas, clr color.Color, x0, y0, x1, y1 vg.Length) {
	pts := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	c.FillPolygon(clr, c.ClipPolygonXY(pts))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Option maps arrive from users as loosely typed values; these decode the
// keys each decoration understands and reject any other key.

var spanKeys = map[string]bool{"color": true, "c": true, "alpha": true}
var lineKeys = map[string]bool{
	"color": true, "c": true, "alpha": true,
	"linewidth": true, "lw": true, "linestyle": true, "ls": true,
}

// HSpanFromOptions builds an HSpan from ymin, ymax, color and alpha.
func HSpanFromOptions(m map[string]any) (*HSpan, error) {
	if err := checkKeys("axhspan", m, spanKeys, "ymin", "ymax"); err != nil {
		return nil, err
	}
	lo, err := numberOpt("axhspan", m, "ymin")
	if err != nil {
		return nil, err
	}
	hi, err := numberOpt("axhspan", m, "ymax")
	if err != nil {
		return nil, err
	}
	clr, err := colorOpt("axhspan", m, defaultSpanColor)
	if err != nil {
		return nil, err
	}
	return &HSpan{Min: math.Min(lo, hi), Max: math.Max(lo, hi), Color: clr}, nil
}

// VSpanFromOptions builds a VSpan from xmin, xmax, color and alpha. x values
// may be numbers or dates (YYYY-MM-DD or YYYY-MM) on time axes.
func VSpanFromOptions(m map[string]any) (*VSpan, error) {
	if err := checkKeys("axvspan", m, spanKeys, "xmin", "xmax"); err != nil {
		return nil, err
	}
	lo, err := xOpt("axvspan", m, "xmin")
	if err != nil {
		return nil, err
	}
	hi, err := xOpt("axvspan", m, "xmax")
	if err != nil {
		return nil, err
	}
	clr, err := colorOpt("axvspan", m, defaultSpanColor)
	if err != nil {
		return nil, err
	}
	return &VSpan{Min: math.Min(lo, hi), Max: math.Max(lo, hi), Color: clr}, nil
}

// HLineFromOptions builds an HLine from y, color, alpha, linewidth and
// linestyle.
func HLineFromOptions(m map[string]any) (*HLine, error) {
	if err := checkKeys("axhline", m, lineKeys, "y"); err != nil {
		return nil, err
	}
	y, err := numberOpt("axhline", m, "y")
	if err != nil {
		return nil, err
	}
	style, err := lineStyleOpt("axhline", m)
	if err != nil {
		return nil, err
	}
	return &HLine{Y: y, LineStyle: style}, nil
}

// VLineFromOptions builds a VLine from x, color, alpha, linewidth and
// linestyle.
func VLineFromOptions(m map[string]any) (*VLine, error) {
	if err := checkKeys("axvline", m, lineKeys, "x"); err != nil {
		return nil, err
	}
	x, err := xOpt("axvline", m, "x")
	if err != nil {
		return nil, err
	}
	style, err := lineStyleOpt("axvline", m)
	if err != nil {
		return nil, err
	}
	return &VLine{X: x, LineStyle: style}, nil
}

func checkKeys(name string, m map[string]any, allowed map[string]bool, required ...string) error {
	var unknown []string
	for k := range m {
		if allowed[k] {
			continue
		}
		isRequired := false
		for _, r := range required {
			if k == r {
				isRequired = true
				break
			}
		}
		if !isRequired {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: %w: %s", name, kwargs.ErrUnknownOption, strings.Join(unknown, ", "))
	}
	for _, r := range required {
		if _, ok := m[r]; !ok {
			return fmt.Errorf("%s: missing %q", name, r)
		}
	}
	return nil
}

func numberOpt(name string, m map[string]any, key string) (float64, error) {
	f, ok := kwargs.Float64(m[key])
	if !ok {
		return 0, fmt.Errorf("%s: %w: %q must be a number, got %T", name, kwargs.ErrBadType, key, m[key])
	}
	return f, nil
}

// xOpt reads an x position: a number or a date, as Unix seconds.
func xOpt(name string, m map[string]any, key string) (float64, error) {
	if s, ok := m[key].(string); ok {
		t, err := frame.ParseDate(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %q: %w", name, key, err)
		}
		return float64(t.Unix()), nil
	}
	return numberOpt(name, m, key)
}

func colorOpt(name string, m map[string]any, fallback color.Color) (color.Color, error) {
	clr := fallback
	raw, ok := m["color"]
	if !ok {
		raw, ok = m["c"]
	}
	if ok {
		s, isString := raw.(string)
		if !isString {
			return nil, fmt.Errorf("%s: %w: color must be a string, got %T", name, kwargs.ErrBadType, raw)
		}
		parsed, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		clr = parsed
	}
	if raw, ok := m["alpha"]; ok {
		alpha, isNumber := kwargs.Float64(raw)
		if !isNumber {
			return nil, fmt.Errorf("%s: %w: alpha must be a number, got %T", name, kwargs.ErrBadType, raw)
		}
		clr = WithAlpha(clr, alpha)
	}
	return clr, nil
}

func lineStyleOpt(name string, m map[string]any) (draw.LineStyle, error) {
	clr, err := colorOpt(name, m, color.Black)
	if err != nil {
		return draw.LineStyle{}, err
	}
	style := draw.LineStyle{Color: clr, Width: vg.Points(1)}

	for _, key := range []string{"linewidth", "lw"} {
		if raw, ok := m[key]; ok {
			w, isNumber := kwargs.Float64(raw)
			if !isNumber {
				return draw.LineStyle{}, fmt.Errorf("%s: %w: %s must be a number, got %T", name, kwargs.ErrBadType, key, raw)
			}
			style.Width = vg.Points(w)
		}
	}
	for _, key := range []string{"linestyle", "ls"} {
		if raw, ok := m[key]; ok {
			s, isString := raw.(string)
			if !isString {
				return draw.LineStyle{}, fmt.Errorf("%s: %w: %s must be a string, got %T", name, kwargs.ErrBadType, key, raw)
			}
			dashes, err := ParseDashes(s)
			if err != nil {
				return draw.LineStyle{}, fmt.Errorf("%s: %w", name, err)
			}
			style.Dashes = dashes
		}
	}
	return style, nil
}

// ParseDashes maps a line style name to a dash pattern: "-" or "solid",
// "--" or "dashed", ":" or "dotted", "-." or "dashdot".
func ParseDashes(s string) ([]vg.Length, error) {
	switch strings.TrimSpace(s) {
	case "", "-", "solid":
		return nil, nil
	case "--", "dashed":
		return []vg.Length{vg.Points(6), vg.Points(3)}, nil
	case ":", "dotted":
		return []vg.Length{vg.Points(1), vg.Points(2)}, nil
	case "-.", "dashdot":
		return []vg.Length{vg.Points(6), vg.Points(2), vg.Points(1), vg.Points(2)}, nil
	}
	return nil, fmt.Errorf("unknown line style %q", s)
}
