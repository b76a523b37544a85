package imagetosvg

import (
	"math"
)

// Point is a vertex in pixel-edge coordinates: pixel (x, y) covers [x, x+1]×[y, y+1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Contour is a closed polyline. The last vertex connects back to the first.
type Contour []Point

// Field is a scalar grid sampled at pixel centers.
type Field interface {
	Size() (w, h int)
	Value(x, y int) float64
}

func (m Mask) Size() (int, int) {
	return m.Width, m.Height
}

func (m Mask) Value(x, y int) float64 {
	if m.At(x, y) {
		return 1
	}
	return 0
}

// Cell edges of the marching squares table.
const (
	edgeTop = iota
	edgeRight
	edgeBottom
	edgeLeft
)

// segmentTable lists the directed segments of each cell case, keyed by
// tl<<3 | tr<<2 | br<<1 | bl. Every segment keeps the inside on its left, so each
// crossing has exactly one successor. Saddles (0b1010, 0b0101) cut the inside corners
// apart, which matches the 4-connectivity used by the component labelling.
var segmentTable = [16][][2]int{
	0b0000: nil,
	0b0001: {{edgeBottom, edgeLeft}},
	0b0010: {{edgeRight, edgeBottom}},
	0b0011: {{edgeRight, edgeLeft}},
	0b0100: {{edgeTop, edgeRight}},
	0b0101: {{edgeTop, edgeRight}, {edgeBottom, edgeLeft}},
	0b0110: {{edgeTop, edgeBottom}},
	0b0111: {{edgeTop, edgeLeft}},
	0b1000: {{edgeLeft, edgeTop}},
	0b1001: {{edgeBottom, edgeTop}},
	0b1010: {{edgeLeft, edgeTop}, {edgeRight, edgeBottom}},
	0b1011: {{edgeRight, edgeTop}},
	0b1100: {{edgeLeft, edgeRight}},
	0b1101: {{edgeBottom, edgeRight}},
	0b1110: {{edgeLeft, edgeBottom}},
	0b1111: nil,
}

// isoGrid indexes the crossings of a field extended by one sample of zeros on each
// side. Horizontal crossings (between (x,y) and (x+1,y)) come first, vertical ones
// (between (x,y) and (x,y+1)) after.
type isoGrid struct {
	f     Field
	w, h  int
	ew    int
	eh    int
	level float64
}

func (g isoGrid) sample(x, y int) float64 {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return 0
	}
	return g.f.Value(x, y)
}

func (g isoGrid) inside(x, y int) bool {
	return g.sample(x, y) > g.level
}

func (g isoGrid) hKey(x, y int) int {
	return (y+1)*g.ew + (x + 1)
}

func (g isoGrid) vKey(x, y int) int {
	return g.ew*g.eh + (y+1)*g.ew + (x + 1)
}

func (g isoGrid) edgeKey(edge, x, y int) int {
	switch edge {
	case edgeTop:
		return g.hKey(x, y)
	case edgeRight:
		return g.vKey(x+1, y)
	case edgeBottom:
		return g.hKey(x, y+1)
	default:
		return g.vKey(x, y)
	}
}

// point returns the interpolated position of a crossing in pixel-edge coordinates.
func (g isoGrid) point(key int) Point {
	vertical := key >= g.ew*g.eh
	if vertical {
		key -= g.ew * g.eh
	}
	x, y := key%g.ew-1, key/g.ew-1
	v0 := g.sample(x, y)
	var v1 float64
	if vertical {
		v1 = g.sample(x, y+1)
	} else {
		v1 = g.sample(x+1, y)
	}
	t := 0.5
	if v1 != v0 {
		t = (g.level - v0) / (v1 - v0)
	}
	if vertical {
		return Point{X: float64(x) + 0.5, Y: float64(y) + t + 0.5}
	}
	return Point{X: float64(x) + t + 0.5, Y: float64(y) + 0.5}
}

// Trace extracts the closed iso-lines of f at level with marching squares. Samples
// outside the grid count as 0, so regions touching the frame still give closed loops.
// Loops come out in row-major order of their first crossing, inside on the left.
func Trace(f Field, level float64) []Contour {
	w, h := f.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	g := isoGrid{f: f, w: w, h: h, ew: w + 2, eh: h + 2, level: level}

	next := make([]int32, 2*g.ew*g.eh)
	for i := range next {
		next[i] = -1
	}
	var starts []int
	for y := -1; y < h; y++ {
		for x := -1; x < w; x++ {
			c := 0
			if g.inside(x, y) {
				c |= 0b1000
			}
			if g.inside(x+1, y) {
				c |= 0b0100
			}
			if g.inside(x+1, y+1) {
				c |= 0b0010
			}
			if g.inside(x, y+1) {
				c |= 0b0001
			}
			for _, seg := range segmentTable[c] {
				from := g.edgeKey(seg[0], x, y)
				next[from] = int32(g.edgeKey(seg[1], x, y))
				starts = append(starts, from)
			}
		}
	}

	visited := make([]bool, len(next))
	var out []Contour
	for _, start := range starts {
		if visited[start] {
			continue
		}
		var c Contour
		closed := false
		for cur := start; !visited[cur]; {
			visited[cur] = true
			c = append(c, g.point(cur))
			n := next[cur]
			if n < 0 {
				break
			}
			cur = int(n)
			if cur == start {
				closed = true
			}
		}
		if closed {
			out = append(out, c)
		}
	}
	return out
}

// TraceMask traces a padded mask at 0.5 and moves the loops back to the coordinates
// of the unpadded mask.
func TraceMask(p PaddedMask) []Contour {
	contours := Trace(p.Mask, 0.5)
	off := float64(p.Border)
	for _, c := range contours {
		for i := range c {
			c[i].X -= off
			c[i].Y -= off
		}
	}
	return contours
}

// EdgeMargin is how far outside the image frame a vertex may lie and still count.
const EdgeMargin = 0.5

// Bounds is an axis aligned box, edges inclusive.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// MarginBounds returns the image frame of a w×h image grown by margin.
func MarginBounds(w, h int, margin float64) Bounds {
	return Bounds{MinX: -margin, MinY: -margin, MaxX: float64(w) + margin, MaxY: float64(h) + margin}
}

func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Clip cuts c to b (Sutherland–Hodgman). Vertices outside b are dropped and the loop
// is closed along the box edges.
func (c Contour) Clip(b Bounds) Contour {
	out := clipHalf(c,
		func(p Point) bool { return p.X >= b.MinX },
		func(p, q Point) Point { return atX(p, q, b.MinX) })
	out = clipHalf(out,
		func(p Point) bool { return p.X <= b.MaxX },
		func(p, q Point) Point { return atX(p, q, b.MaxX) })
	out = clipHalf(out,
		func(p Point) bool { return p.Y >= b.MinY },
		func(p, q Point) Point { return atY(p, q, b.MinY) })
	out = clipHalf(out,
		func(p Point) bool { return p.Y <= b.MaxY },
		func(p, q Point) Point { return atY(p, q, b.MaxY) })
	return dedupe(out)
}

func clipHalf(in Contour, inside func(Point) bool, cross func(p, q Point) Point) Contour {
	if len(in) == 0 {
		return nil
	}
	out := make(Contour, 0, len(in)+4)
	prev := in[len(in)-1]
	for _, cur := range in {
		switch {
		case inside(cur):
			if !inside(prev) {
				out = append(out, cross(prev, cur))
			}
			out = append(out, cur)
		case inside(prev):
			out = append(out, cross(prev, cur))
		}
		prev = cur
	}
	return out
}

func atX(p, q Point, x float64) Point {
	t := (x - p.X) / (q.X - p.X)
	return Point{X: x, Y: p.Y + t*(q.Y-p.Y)}
}

func atY(p, q Point, y float64) Point {
	t := (y - p.Y) / (q.Y - p.Y)
	return Point{X: p.X + t*(q.X-p.X), Y: y}
}

const pointEpsilon = 1e-9

func samePoint(a, b Point) bool {
	return math.Abs(a.X-b.X) < pointEpsilon && math.Abs(a.Y-b.Y) < pointEpsilon
}

// dedupe drops consecutive repeated vertices, including across the closing edge.
func dedupe(c Contour) Contour {
	out := make(Contour, 0, len(c))
	for _, p := range c {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// Outline traces a padded mask and returns the contours of a w×h image that are
// worth drawing. A loop with fewer than minArea vertices is dropped. The rest are
// simplified with factor and clipped to the margin box, and must keep 3 vertices.
// A loop that mirror padding pushed past the margin, such as the outline of a
// region covering the whole frame, is cut back to the box edges.
func Outline(p PaddedMask, w, h, minArea, factor int) []Contour {
	box := MarginBounds(w, h, EdgeMargin)
	var out []Contour
	for _, c := range TraceMask(p) {
		if len(c) < 3 || len(c) < minArea {
			continue
		}
		c = Simplify(c, factor).Clip(box)
		if len(c) < 3 {
			continue
		}
		out = append(out, c)
	}
	return out
}
