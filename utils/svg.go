package utils

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/chris17453/imagetosvg"
)

type SVGOptions struct {
	// SeparatePaths writes every contour as its own nonzero path. Hole loops are
	// then painted over with the group color. By default each color is a single
	// even-odd path holding all its contours, so holes stay open.
	SeparatePaths bool
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return len(p), nil
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, nil
}

func fillAttr(c color.RGBA) string {
	return fmt.Sprintf(`fill="%s"`, imagetosvg.Hex(c))
}

// WriteSVG serializes d: a background rect, then one <g> per color in paint order.
func WriteSVG(w io.Writer, d imagetosvg.Drawing, opts SVGOptions) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("write svg: empty drawing %dx%d", d.Width, d.Height)
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startview(d.Width, d.Height, 0, 0, d.Width, d.Height)
	canvas.Rect(0, 0, d.Width, d.Height, fillAttr(d.Background))
	for _, g := range d.Groups {
		canvas.Group(fillAttr(g.Color), `stroke="none"`)
		if opts.SeparatePaths {
			for _, c := range g.Contours {
				canvas.Path(c.PathData())
			}
		} else {
			parts := make([]string, len(g.Contours))
			for i, c := range g.Contours {
				parts[i] = c.PathData()
			}
			canvas.Path(strings.Join(parts, " "), `fill-rule="evenodd"`)
		}
		canvas.Gend()
	}
	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("write svg: %w", ew.err)
	}
	return nil
}

// WriteRunsSVG writes the quantized image losslessly: per color, one 1-pixel-high
// rect for every horizontal run of that color. Output is large; it is meant for
// comparing against the traced drawing.
func WriteRunsSVG(w io.Writer, labels imagetosvg.LabelGrid, palette imagetosvg.Palette) error {
	if labels.Width <= 0 || labels.Height <= 0 {
		return fmt.Errorf("write runs svg: empty label grid")
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startview(labels.Width, labels.Height, 0, 0, labels.Width, labels.Height)
	for idx, c := range palette {
		canvas.Group(fillAttr(c), `stroke="none"`)
		for y := range labels.Height {
			x := 0
			for x < labels.Width {
				if labels.At(x, y) != idx {
					x++
					continue
				}
				start := x
				for x < labels.Width && labels.At(x, y) == idx {
					x++
				}
				canvas.Rect(start, y, x-start, 1)
			}
		}
		canvas.Gend()
	}
	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("write runs svg: %w", ew.err)
	}
	return nil
}

// WriteJSON writes d as indented JSON.
func WriteJSON(w io.Writer, d imagetosvg.Drawing) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
