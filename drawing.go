package imagetosvg

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Group is the set of contours painted with one palette color.
type Group struct {
	Index    int        `json:"index"`
	Color    color.RGBA `json:"color"`
	Contours []Contour  `json:"contours"`
}

// Drawing is the result of a run: a background fill and color groups in paint order.
type Drawing struct {
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	BackgroundIndex int        `json:"backgroundIndex"`
	Background      color.RGBA `json:"background"`
	Groups          []Group    `json:"groups"`
}

// Assemble builds a drawing from groups given in paint order. Groups without
// contours are left out. The drawing does not share slices with groups.
func Assemble(width, height, backgroundIndex int, background color.RGBA, groups []Group) Drawing {
	d := Drawing{
		Width:           width,
		Height:          height,
		BackgroundIndex: backgroundIndex,
		Background:      background,
	}
	for _, g := range groups {
		if len(g.Contours) == 0 {
			continue
		}
		cs := make([]Contour, len(g.Contours))
		for i, c := range g.Contours {
			cs[i] = append(Contour(nil), c...)
		}
		d.Groups = append(d.Groups, Group{Index: g.Index, Color: g.Color, Contours: cs})
	}
	return d
}

// ContourCount returns the number of contours over all groups.
func (d Drawing) ContourCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Contours)
	}
	return n
}

func formatCoord(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PathData renders c as "M x0,y0 L x1,y1 ... Z".
func (c Contour) PathData() string {
	if len(c) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range c {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(formatCoord(p.X))
		sb.WriteByte(',')
		sb.WriteString(formatCoord(p.Y))
	}
	sb.WriteString(" Z")
	return sb.String()
}
