package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestChartDir_Default(t *testing.T) {
	assert.Equal(t, DefaultChartDir, NewChartDir("").Path())

	var nilDir *ChartDir
	assert.Equal(t, DefaultChartDir, nilDir.Path())
}

func TestChartDir_SetCreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b")
	d := NewChartDir("")

	require.NoError(t, d.Set(target))

	assert.Equal(t, target, d.Path())
	assert.DirExists(t, target)
}

func TestChartDir_SetFailureKeepsPath(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	touch(t, blocker)
	d := NewChartDir(base)

	err := d.Set(filepath.Join(blocker, "sub"))

	assert.Error(t, err)
	assert.Equal(t, base, d.Path())
}

func TestChartDir_ClearRemovesOnlyTopLevelImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"a.png", "b.svg", "c.jpg", "d.jpeg", "e.PNG",
		"f.tif", "g.tiff", "h.pdf", "i.eps",
		"notes.txt", "data.csv", "noext",
	} {
		touch(t, filepath.Join(dir, name))
	}
	sub := filepath.Join(dir, "keep")
	require.NoError(t, os.Mkdir(sub, 0755))
	touch(t, filepath.Join(sub, "inner.png"))

	removed, err := NewChartDir(dir).Clear()

	require.NoError(t, err)
	assert.Equal(t, 9, removed)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	sort.Strings(left)
	assert.Equal(t, []string{"data.csv", "keep", "noext", "notes.txt"}, left)
	assert.FileExists(t, filepath.Join(sub, "inner.png"))
}

func TestChartDir_ClearMissingDirectory(t *testing.T) {
	removed, err := NewChartDir(filepath.Join(t.TempDir(), "missing")).Clear()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestChartDir_Join(t *testing.T) {
	d := NewChartDir("charts")
	assert.Equal(t, filepath.Join("charts", "x.png"), d.Join("", "x.png"))
	assert.Equal(t, filepath.Join("other", "x.png"), d.Join("other", "x.png"))

	var nilDir *ChartDir
	assert.Equal(t, "x.png", nilDir.Join("", "x.png"))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chart.png")

	size, err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)

	_, err = WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("second"))
		return err
	})
	require.NoError(t, err)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(body))
}

func TestWriteFileAtomic_FailedWriteKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")
	touch(t, path)

	_, err := WriteFileAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("render failed")
	})

	require.Error(t, err)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(body))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "pending file is cleaned up")
}

func TestWriteFileAtomic_EmptyIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	_, err := WriteFileAtomic(path, func(w io.Writer) error { return nil })
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}
