package finalise

import (
	"fmt"
	"math"
	"strings"

	"mgchart/internal/chart"

	"gonum.org/v1/plot"
)

const margin = 0.02

type axisScale int

const (
	scaleUnchanged axisScale = iota
	scaleLinear
	scaleLog
)

func parseScale(s string, set bool) (axisScale, error) {
	if !set {
		return scaleUnchanged, nil
	}
	switch strings.ToLower(s) {
	case "linear":
		return scaleLinear, nil
	case "log":
		return scaleLog, nil
	}
	return scaleUnchanged, fmt.Errorf("unsupported axis scale %q", s)
}

func applyScale(axis *plot.Axis, s axisScale) {
	switch s {
	case scaleLinear:
		axis.Scale = plot.LinearScale{}
		axis.Tick.Marker = plot.DefaultTicks{}
	case scaleLog:
		axis.Scale = plot.LogScale{}
		axis.Tick.Marker = plot.LogTicks{Prec: -1}
	}
}

// isLog reports whether axis will be logarithmic once s is applied.
func isLog(s axisScale, axis plot.Axis) bool {
	if s == scaleUnchanged {
		_, ok := axis.Scale.(plot.LogScale)
		return ok
	}
	return s == scaleLog
}

// checkLimits rejects limits that can not be drawn: NaN or infinite values
// on any axis, and values <= 0 on a log axis.
func checkLimits(key string, lim [2]float64, logScale bool) error {
	for _, v := range lim {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %v", key, lim)
		}
		if logScale && v <= 0 {
			return fmt.Errorf("%s on a log axis must be positive, got %v", key, lim)
		}
	}
	return nil
}

// padded widens r by 2% of its span on each side. Log axes are padded in
// log space so they stay positive; a zero-width range is opened by one unit
// or, on log axes, by 2% of its value.
func padded(r chart.Range, logScale bool) chart.Range {
	if !r.Valid() {
		return r
	}
	if logScale && r.Min > 0 {
		lo, hi := math.Log10(r.Min), math.Log10(r.Max)
		pad := (hi - lo) * margin
		if pad == 0 {
			pad = math.Log10(1 + margin)
		}
		return chart.Range{Min: math.Pow(10, lo-pad), Max: math.Pow(10, hi+pad)}
	}
	pad := (r.Max - r.Min) * margin
	if pad == 0 {
		pad = 1
	}
	return chart.Range{Min: r.Min - pad, Max: r.Max + pad}
}

// includeZero widens the y range so zero is visible with a little room.
func includeZero(axis *plot.Axis) {
	adj := (axis.Max - axis.Min) * margin
	if axis.Min > -adj {
		axis.Min = -adj
	}
	if axis.Max < adj {
		axis.Max = adj
	}
}

// timeFormat picks a tick label layout for a time axis spanning the given
// number of seconds.
func timeFormat(span float64) string {
	const day = 24 * 60 * 60
	switch {
	case span > 3*365*day:
		return "2006"
	case span > 90*day:
		return "Jan 2006"
	case span > 2*day:
		return "02 Jan"
	default:
		return "15:04"
	}
}
