package frame

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const sample = `date,Headline,Core
2020-01-01,1.5,2.0
2020-02-01,NA,2.1
2020-03-01,1.7,
2020-04-01,1.9,2.3
`

func TestReadCSV(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 4, f.Len())
	assert.Equal(t, []string{"Headline", "Core"}, f.Names())
	assert.Equal(t, day(2020, 2, 1), f.Index()[1])

	headline, err := f.Column("Headline")
	require.NoError(t, err)
	want := []float64{1.5, math.NaN(), 1.7, 1.9}
	if diff := cmp.Diff(want, headline, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("Headline mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"no values":     "date\n2020-01-01\n",
		"bad date":      "date,a\nyesterday,1\n",
		"bad number":    "date,a\n2020-01-01,one\n",
		"ragged":        "date,a,b\n2020-01-01,1\n",
		"unsorted":      "date,a\n2020-02-01,1\n2020-01-01,2\n",
		"duplicate col": "date,a,a\n2020-01-01,1,2\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	f, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNew_Shape(t *testing.T) {
	_, err := New([]time.Time{day(2020, 1, 1)}, []string{"a"}, [][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrShape)

	_, err = New(nil, []string{"a", "b"}, [][]float64{nil})
	assert.ErrorIs(t, err, ErrShape)

	_, err = New([]time.Time{day(2020, 2, 1), day(2020, 1, 1)}, []string{"a"}, [][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrUnsorted)
}

func TestFrame_SinceAndPoints(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Same(t, f, f.Since(time.Time{}))

	later := f.Since(day(2020, 2, 15))
	assert.Equal(t, 2, later.Len())
	assert.Equal(t, day(2020, 3, 1), later.Index()[0])
	assert.Zero(t, f.Since(day(2021, 1, 1)).Len())

	pts, err := f.Points("Headline", true)
	require.NoError(t, err)
	want := plotter.XYs{
		{X: float64(day(2020, 1, 1).Unix()), Y: 1.5},
		{X: float64(day(2020, 3, 1).Unix()), Y: 1.7},
		{X: float64(day(2020, 4, 1).Unix()), Y: 1.9},
	}
	assert.Empty(t, cmp.Diff(want, pts))

	withGaps, err := f.Points("Headline", false)
	require.NoError(t, err)
	assert.Len(t, withGaps, 4)
	assert.True(t, math.IsNaN(withGaps[1].Y))

	_, err = f.Points("Missing", true)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFrame_Select(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	core, err := f.Select("Core")
	require.NoError(t, err)
	assert.Equal(t, []string{"Core"}, core.Names())
	assert.Equal(t, f.Index(), core.Index())
	want, _ := f.Column("Core")
	got, _ := core.Column("Core")
	assert.Empty(t, cmp.Diff(want, got, cmpopts.EquateNaNs()))

	swapped, err := f.Select("Core", "Headline")
	require.NoError(t, err)
	assert.Equal(t, []string{"Core", "Headline"}, swapped.Names())

	_, err = f.Select("Missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFrame_LastAndAllNaN(t *testing.T) {
	f, err := New(
		[]time.Time{day(2020, 1, 1), day(2020, 2, 1), day(2020, 3, 1)},
		[]string{"a", "empty"},
		[][]float64{{1, 2, math.NaN()}, {math.NaN(), math.NaN(), math.NaN()}},
	)
	require.NoError(t, err)

	when, v, ok := f.Last("a")
	require.True(t, ok)
	assert.Equal(t, day(2020, 2, 1), when)
	assert.Equal(t, 2.0, v)

	_, _, ok = f.Last("empty")
	assert.False(t, ok)
	assert.True(t, f.AllNaN("empty"))
	assert.False(t, f.AllNaN("a"))
	assert.True(t, f.AllNaN("nope"))
}

func TestParseDate(t *testing.T) {
	for in, want := range map[string]time.Time{
		"2021-07-04": day(2021, 7, 4),
		"2021-07":    day(2021, 7, 1),
		" 2021 ":     day(2021, 1, 1),
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDate("04/07/2021")
	assert.Error(t, err)
}
