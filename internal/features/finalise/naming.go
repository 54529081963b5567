package finalise

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mgchart/internal/config"
	"mgchart/internal/infra/fs"
	"mgchart/internal/kwargs"
)

var (
	ErrNoTitle             = errors.New("a title is required to name the saved chart")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

const maxTitleLen = 150

var (
	unsafeChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f\x7f]`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
)

// SanitizeTitle turns a chart title into a filename fragment: characters
// that are unsafe in filenames become "-", runs of "-" collapse to one and
// the result is cut to 150 characters.
func SanitizeTitle(title string) string {
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}
	return strings.TrimSpace(sanitizeFragment(title))
}

// sanitizeFragment replaces unsafe characters with "-" and collapses runs.
// pre_tag and tag go through it too, so they can not leave the chart
// directory.
func sanitizeFragment(s string) string {
	s = unsafeChars.ReplaceAllString(s, "-")
	return dashRuns.ReplaceAllString(s, "-")
}

// NormaliseFileType lower-cases ext and strips a leading dot.
func NormaliseFileType(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Filename builds {chart_dir}/{pre_tag}{title}{tag}.{file_type}, with title
// and both tags sanitized. chart_dir falls back to dir and file_type to
// defaultType. The result depends on nothing but its inputs.
func Filename(opts kwargs.Options, dir *fs.ChartDir, defaultType string) (string, error) {
	title, _ := opts.String(KeyTitle)
	stem := SanitizeTitle(title)
	if stem == "" {
		return "", ErrNoTitle
	}

	fileType := defaultType
	if ft, ok := opts.String(KeyFileType); ok {
		fileType = ft
	}
	fileType = NormaliseFileType(fileType)
	if !config.SupportedFileType(fileType) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}

	chartDir, _ := opts.String(KeyChartDir)
	preTag, _ := opts.String(KeyPreTag)
	tag, _ := opts.String(KeyTag)
	name := sanitizeFragment(preTag) + stem + sanitizeFragment(tag) + "." + fileType
	return dir.Join(chartDir, name), nil
}
