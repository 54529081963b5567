// Package frame holds time-indexed tables of float columns: the data the
// plot builders chart.
package frame

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/plot/plotter"
)

var (
	ErrShape          = errors.New("frame shape mismatch")
	ErrColumnNotFound = errors.New("column not found")
	ErrUnsorted       = errors.New("index is not in ascending order")
)

// Frame is an immutable table: a date index and named columns of equal
// length. Missing values are NaN.
type Frame struct {
	index   []time.Time
	names   []string
	columns [][]float64
}

// New builds a frame. columns[i] holds the values of names[i]. The index
// must be in ascending order.
func New(index []time.Time, names []string, columns [][]float64) (*Frame, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrShape, len(names), len(columns))
	}
	seen := make(map[string]bool, len(names))
	for i, col := range columns {
		if len(col) != len(index) {
			return nil, fmt.Errorf("%w: column %q has %d values for %d index entries",
				ErrShape, names[i], len(col), len(index))
		}
		if seen[names[i]] {
			return nil, fmt.Errorf("duplicate column %q", names[i])
		}
		seen[names[i]] = true
	}
	if !sort.SliceIsSorted(index, func(i, j int) bool { return index[i].Before(index[j]) }) {
		return nil, ErrUnsorted
	}
	return &Frame{index: index, names: names, columns: columns}, nil
}

// Len is the number of rows.
func (f *Frame) Len() int { return len(f.index) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	return append([]string(nil), f.names...)
}

// Index returns the row dates.
func (f *Frame) Index() []time.Time {
	return append([]time.Time(nil), f.index...)
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	for i, n := range f.names {
		if n == name {
			return append([]float64(nil), f.columns[i]...), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Select returns a frame holding only the named columns, in the given
// order, sharing the index.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return New(f.index, append([]string(nil), names...), cols)
}

// AllNaN reports whether the named column has no values.
func (f *Frame) AllNaN(name string) bool {
	col, err := f.Column(name)
	if err != nil {
		return true
	}
	for _, v := range col {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Since returns the rows dated on or after start. A zero start returns f.
func (f *Frame) Since(start time.Time) *Frame {
	if start.IsZero() {
		return f
	}
	i := sort.Search(len(f.index), func(i int) bool { return !f.index[i].Before(start) })
	cols := make([][]float64, len(f.columns))
	for c, col := range f.columns {
		cols[c] = col[i:]
	}
	return &Frame{index: f.index[i:], names: f.names, columns: cols}
}

// Points returns the column as x/y pairs with x in Unix seconds. With
// dropNaN the missing values are removed; otherwise they stay as NaN and
// break the line.
func (f *Frame) Points(name string, dropNaN bool) (plotter.XYs, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, 0, len(col))
	for i, v := range col {
		if dropNaN && math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(f.index[i].Unix()), Y: v})
	}
	return pts, nil
}

// Last returns the last non-missing value in the named column.
func (f *Frame) Last(name string) (time.Time, float64, bool) {
	col, err := f.Column(name)
	if err != nil {
		return time.Time{}, 0, false
	}
	for i := len(col) - 1; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return f.index[i], col[i], true
		}
	}
	return time.Time{}, 0, false
}

// ParseDate reads YYYY-MM-DD, YYYY-MM or YYYY as a UTC date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}
