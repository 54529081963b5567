package chart

import (
	"image/color"

	stdfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Annotation is text placed at a fixed position on the figure, independent
// of the data coordinates.
type Annotation struct {
	Text   string
	X, Y   float64 // fractions of figure width and height, origin bottom left
	XAlign text.XAlignment
	YAlign text.YAlignment
	Size   vg.Length
	Italic bool
	Color  color.Color
}

func (a Annotation) style() text.Style {
	fnt := font.From(plot.DefaultFont, a.Size)
	if a.Italic {
		fnt.Style = stdfont.StyleItalic
	}
	clr := a.Color
	if clr == nil {
		clr = color.Black
	}
	return text.Style{
		Color:   clr,
		Font:    fnt,
		XAlign:  a.XAlign,
		YAlign:  a.YAlign,
		Handler: plot.DefaultTextHandler,
	}
}

func (a Annotation) draw(dc draw.Canvas) {
	if a.Text == "" {
		return
	}
	w := dc.Max.X - dc.Min.X
	h := dc.Max.Y - dc.Min.Y
	pt := vg.Point{
		X: dc.Min.X + vg.Length(a.X)*w,
		Y: dc.Min.Y + vg.Length(a.Y)*h,
	}
	dc.FillText(a.style(), pt, a.Text)
}
