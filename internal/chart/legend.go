package chart

import (
	"fmt"
	"sort"
	"strings"

	"mgchart/internal/kwargs"

	"gonum.org/v1/plot/vg"
)

type legendLoc struct{ top, left bool }

// gonum legends sit in a corner; "best" and "right" map to upper right.
var legendLocs = map[string]legendLoc{
	"best":        {top: true},
	"right":       {top: true},
	"upper right": {top: true},
	"upper left":  {top: true, left: true},
	"lower left":  {left: true},
	"lower right": {},
}

// matplotlib location codes 0-4
var legendLocCodes = []string{"best", "upper right", "upper left", "lower left", "lower right"}

// relative to a 10pt base
var legendFontSizes = map[string]float64{
	"xx-small": 5.79,
	"x-small":  6.94,
	"small":    8.33,
	"medium":   10,
	"large":    12,
	"x-large":  14.4,
	"xx-large": 17.28,
}

// ValidateLegend reports whether opts is a usable legend option map.
func ValidateLegend(opts map[string]any) error {
	_, _, err := parseLegend(opts)
	return err
}

// ShowLegend draws the recorded legend entries using loc and fontsize from
// opts. Calling it again only updates the position and font.
func (c *Chart) ShowLegend(opts map[string]any) error {
	if c.closed {
		return ErrClosed
	}
	loc, size, err := parseLegend(opts)
	if err != nil {
		return err
	}

	c.plot.Legend.Top = loc.top
	c.plot.Legend.Left = loc.left
	if size > 0 {
		c.plot.Legend.TextStyle.Font.Size = size
	}

	if !c.legendShown {
		for _, e := range c.legend {
			c.plot.Legend.Add(e.label, e.thumbs...)
		}
		c.legendShown = true
	}
	return nil
}

// parseLegend returns the location and font size; size is zero when opts
// does not set one.
func parseLegend(opts map[string]any) (legendLoc, vg.Length, error) {
	var unknown []string
	for k := range opts {
		if k != "loc" && k != "fontsize" {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return legendLoc{}, 0, fmt.Errorf("legend: %w: %s", kwargs.ErrUnknownOption, strings.Join(unknown, ", "))
	}

	loc := legendLocs["best"]
	if raw, ok := opts["loc"]; ok {
		parsed, err := parseLegendLoc(raw)
		if err != nil {
			return legendLoc{}, 0, err
		}
		loc = parsed
	}
	var size vg.Length
	if raw, ok := opts["fontsize"]; ok {
		parsed, err := parseFontSize(raw)
		if err != nil {
			return legendLoc{}, 0, err
		}
		size = parsed
	}
	return loc, size, nil
}

func parseLegendLoc(raw any) (legendLoc, error) {
	if code, ok := kwargs.Float64(raw); ok {
		i := int(code)
		if float64(i) != code || i < 0 || i >= len(legendLocCodes) {
			return legendLoc{}, fmt.Errorf("legend: unsupported loc code %v", raw)
		}
		return legendLocs[legendLocCodes[i]], nil
	}
	s, ok := raw.(string)
	if !ok {
		return legendLoc{}, fmt.Errorf("legend: %w: loc must be a string or code, got %T", kwargs.ErrBadType, raw)
	}
	loc, ok := legendLocs[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return legendLoc{}, fmt.Errorf("legend: unsupported loc %q", s)
	}
	return loc, nil
}

func parseFontSize(raw any) (vg.Length, error) {
	if pts, ok := kwargs.Float64(raw); ok {
		if pts <= 0 {
			return 0, fmt.Errorf("legend: fontsize must be positive, got %v", pts)
		}
		return vg.Points(pts), nil
	}
	s, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("legend: %w: fontsize must be a number or size name, got %T", kwargs.ErrBadType, raw)
	}
	pts, ok := legendFontSizes[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("legend: unsupported fontsize %q", s)
	}
	return vg.Points(pts), nil
}
