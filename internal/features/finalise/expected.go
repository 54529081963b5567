package finalise

import "mgchart/internal/kwargs"

// Option names understood by Finalise.
const (
	KeyTitle        = "title"
	KeyXLabel       = "xlabel"
	KeyYLabel       = "ylabel"
	KeyYLim         = "ylim"
	KeyXLim         = "xlim"
	KeyYScale       = "yscale"
	KeyXScale       = "xscale"
	KeyLegend       = "legend"
	KeyAxHSpan      = "axhspan"
	KeyAxVSpan      = "axvspan"
	KeyAxHLine      = "axhline"
	KeyAxVLine      = "axvline"
	KeyPreTag       = "pre_tag"
	KeyTag          = "tag"
	KeyChartDir     = "chart_dir"
	KeyFileType     = "file_type"
	KeyDPI          = "dpi"
	KeyFigSize      = "figsize"
	KeyShow         = "show"
	KeyLFooter      = "lfooter"
	KeyRFooter      = "rfooter"
	KeyLHeader      = "lheader"
	KeyRHeader      = "rheader"
	KeyZeroY        = "zero_y"
	KeyY0           = "y0"
	KeyX0           = "x0"
	KeyDontSave     = "dont_save"
	KeyDontClose    = "dont_close"
	KeyConciseDates = "concise_dates"
)

// Expected is the closed set of options Finalise accepts.
var Expected = kwargs.Expected{
	KeyTitle:  kwargs.String | kwargs.Nil,
	KeyXLabel: kwargs.String | kwargs.Nil,
	KeyYLabel: kwargs.String | kwargs.Nil,
	KeyYLim:   kwargs.Pair | kwargs.Nil,
	KeyXLim:   kwargs.Pair | kwargs.Nil,
	KeyYScale: kwargs.String | kwargs.Nil,
	KeyXScale: kwargs.String | kwargs.Nil,

	KeyLegend:  kwargs.Bool | kwargs.Map | kwargs.Nil,
	KeyAxHSpan: kwargs.Map | kwargs.Nil,
	KeyAxVSpan: kwargs.Map | kwargs.Nil,
	KeyAxHLine: kwargs.Map | kwargs.Nil,
	KeyAxVLine: kwargs.Map | kwargs.Nil,

	KeyPreTag:   kwargs.String,
	KeyTag:      kwargs.String,
	KeyChartDir: kwargs.String,
	KeyFileType: kwargs.String,
	KeyDPI:      kwargs.Int,

	KeyFigSize: kwargs.Pair,
	KeyShow:    kwargs.Bool,

	KeyLFooter: kwargs.String,
	KeyRFooter: kwargs.String,
	KeyLHeader: kwargs.String,
	KeyRHeader: kwargs.String,

	KeyZeroY:        kwargs.Bool,
	KeyY0:           kwargs.Bool,
	KeyX0:           kwargs.Bool,
	KeyDontSave:     kwargs.Bool,
	KeyDontClose:    kwargs.Bool,
	KeyConciseDates: kwargs.Bool,
	kwargs.Verbose:  kwargs.Bool,
}
