package finalise

import (
	"fmt"
	"io"

	"mgchart/internal/chart"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Render writes c to w in the given file type. Raster types use dpi.
func Render(c *chart.Chart, fileType string, dpi int, w io.Writer) error {
	width, height := c.Size()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("chart has no size set")
	}

	var out io.WriterTo
	switch fileType {
	case "png", "jpg", "jpeg", "tif", "tiff":
		canvas, err := Rasterize(c, dpi)
		if err != nil {
			return err
		}
		switch fileType {
		case "png":
			out = vgimg.PngCanvas{Canvas: canvas}
		case "jpg", "jpeg":
			out = vgimg.JpegCanvas{Canvas: canvas}
		default:
			out = vgimg.TiffCanvas{Canvas: canvas}
		}
	case "svg":
		canvas := vgsvg.New(width, height)
		if err := c.Draw(draw.New(canvas)); err != nil {
			return err
		}
		out = canvas
	case "pdf":
		canvas := vgpdf.New(width, height)
		if err := c.Draw(draw.New(canvas)); err != nil {
			return err
		}
		out = canvas
	case "eps":
		canvas := vgeps.New(width, height)
		if err := c.Draw(draw.New(canvas)); err != nil {
			return err
		}
		out = canvas
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", fileType, err)
	}
	return nil
}

// Rasterize draws c onto an image canvas at dpi.
func Rasterize(c *chart.Chart, dpi int) (*vgimg.Canvas, error) {
	width, height := c.Size()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("chart has no size set")
	}
	canvas := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	if err := c.Draw(draw.New(canvas)); err != nil {
		return nil, err
	}
	return canvas, nil
}

func inches(v float64) vg.Length {
	return vg.Length(v) * vg.Inch
}
