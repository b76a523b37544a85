package imagetosvg

import (
	"errors"
	"image"
	"image/color"
	"math"
	"slices"
	"testing"

	"github.com/chris17453/imagetosvg/internal/testutil/testlog"
)

func TestBuildSolidImageHasOnlyBackground(t *testing.T) {
	testlog.Start(t)

	opts := DefaultOptions()
	opts.Colors = 1
	b := NewBuilder(fillPixels(4, 4, func(int, int) color.RGBA { return red }), opts)
	d, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(b.Palette) != 1 || b.Palette[0] != red {
		t.Fatalf("expected palette [red], got %v", b.Palette)
	}
	for _, l := range b.Labels.Labels {
		if l != 0 {
			t.Fatalf("expected all labels 0, got %v", b.Labels.Labels)
		}
	}
	if d.Background != red || d.BackgroundIndex != 0 {
		t.Fatalf("expected red background, got %v (%d)", d.Background, d.BackgroundIndex)
	}
	if len(d.Groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(d.Groups))
	}
}

func TestBuildTwoToneSplitTracesOneBoundary(t *testing.T) {
	testlog.Start(t)

	pixels := fillPixels(10, 10, func(x, _ int) color.RGBA {
		if x < 5 {
			return black
		}
		return white
	})
	opts := DefaultOptions()
	opts.Colors = 2
	opts.MinArea = 5
	d, err := Vectorize(pixels, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(d.Groups) != 1 {
		t.Fatalf("expected one color group, got %d", len(d.Groups))
	}
	g := d.Groups[0]
	if g.Color == d.Background {
		t.Fatalf("group repeats the background color %v", g.Color)
	}
	if len(g.Contours) != 1 {
		t.Fatalf("expected one contour, got %d", len(g.Contours))
	}
	c := g.Contours[0]
	if len(c) < 3 {
		t.Fatalf("expected a closed polygon, got %v", c)
	}

	// The drawn half lies entirely on one side of x=5 and reaches it.
	box := MarginBounds(10, 10, EdgeMargin)
	onBoundary := false
	left, right := true, true
	for _, p := range c {
		if !box.Contains(p) {
			t.Fatalf("vertex %v outside the margin box", p)
		}
		if math.Abs(p.X-5) < 1e-9 {
			onBoundary = true
		}
		left = left && p.X <= 5+1e-9
		right = right && p.X >= 5-1e-9
	}
	if !onBoundary || left == right {
		t.Fatalf("expected a boundary at x=5, got %v", c)
	}
	if want := (g.Color == white); right != want {
		t.Fatalf("contour on the wrong side for %v: %v", g.Color, c)
	}
}

func TestBuildCheckerboardCollapses(t *testing.T) {
	testlog.Start(t)

	pixels := fillPixels(8, 8, func(x, y int) color.RGBA {
		if (x+y)%2 == 0 {
			return black
		}
		return white
	})
	opts := DefaultOptions()
	opts.Colors = 2
	opts.MinArea = 4
	d, err := Vectorize(pixels, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(d.Groups) != 0 {
		t.Fatalf("expected every region dropped, got %d groups", len(d.Groups))
	}
}

func TestBuildKeepsRegionsCoveringTheFrame(t *testing.T) {
	testlog.Start(t)

	// Red 2 pixel frame on all four edges, blue interior.
	pixels := fillPixels(20, 20, func(x, y int) color.RGBA {
		if x < 2 || y < 2 || x >= 18 || y >= 18 {
			return red
		}
		return blue
	})
	opts := DefaultOptions()
	opts.Colors = 2
	opts.MinArea = 4
	d, err := Vectorize(pixels, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if d.Background != blue {
		t.Fatalf("expected a blue background, got %v", d.Background)
	}
	if len(d.Groups) != 1 || d.Groups[0].Color != red {
		t.Fatalf("expected one red group, got %+v", d.Groups)
	}
	box := MarginBounds(20, 20, EdgeMargin)
	var outer, inner bool
	for _, c := range d.Groups[0].Contours {
		b := contourBounds(c)
		if nearBounds(b, box) {
			outer = true
		}
		if b.MinX >= 2-1e-9 && b.MaxX <= 18+1e-9 && b.MinY >= 2-1e-9 && b.MaxY <= 18+1e-9 {
			inner = true
		}
	}
	if !outer || !inner {
		t.Fatalf("expected the frame and its hole, got %v", d.Groups[0].Contours)
	}
}

func TestBuildTracesMasksFilledByClosing(t *testing.T) {
	testlog.Start(t)

	// Two colors in a checker: closing fills the non-background mask completely.
	for _, size := range []image.Point{{2, 2}, {1, 7}} {
		pixels := fillPixels(size.X, size.Y, func(x, y int) color.RGBA {
			if (x+y)%2 == 0 {
				return black
			}
			return white
		})
		for _, border := range []int{2, 9} {
			opts := DefaultOptions()
			opts.Colors = 2
			opts.MinArea = 0
			opts.MirrorBorder = border
			d, err := Vectorize(pixels, opts)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(d.Groups) != 1 || len(d.Groups[0].Contours) != 1 {
				t.Fatalf("%v border %d: expected one group with one loop, got %+v", size, border, d.Groups)
			}
			want := MarginBounds(size.X, size.Y, EdgeMargin)
			if b := contourBounds(d.Groups[0].Contours[0]); !nearBounds(b, want) {
				t.Fatalf("%v border %d: expected the margin box, got %+v", size, border, b)
			}
		}
	}
}

func rings(w, h int) PixelBuffer {
	cx, cy := float64(w)/2, float64(h)/2
	return fillPixels(w, h, func(x, y int) color.RGBA {
		r := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
		switch {
		case r < 5:
			return red
		case r < 10:
			return blue
		case r < 14:
			return green
		default:
			return white
		}
	})
}

func TestBuildContoursAreValidPolygons(t *testing.T) {
	testlog.Start(t)

	opts := DefaultOptions()
	opts.Colors = 4
	opts.MinArea = 8
	for _, method := range []LayerMethod{LayerDarkFirst, LayerLightFirst, LayerArea, LayerHue} {
		opts.LayerMethod = method
		b := NewBuilder(rings(40, 36), opts)
		d, err := b.Build()
		if err != nil {
			t.Fatalf("%v: build: %v", method, err)
		}
		if len(d.Groups) != 3 {
			t.Fatalf("%v: expected 3 groups, got %d", method, len(d.Groups))
		}
		box := MarginBounds(40, 36, EdgeMargin)
		seen := map[int]bool{}
		for i, g := range d.Groups {
			if g.Index == d.BackgroundIndex || seen[g.Index] {
				t.Fatalf("%v: bad group index %d", method, g.Index)
			}
			seen[g.Index] = true
			if g.Index != b.Order[i] {
				t.Fatalf("%v: group %d out of paint order %v", method, g.Index, b.Order)
			}
			for _, c := range g.Contours {
				if len(c) < 3 {
					t.Fatalf("%v: degenerate contour %v", method, c)
				}
				for _, p := range c {
					if !box.Contains(p) {
						t.Fatalf("%v: vertex %v outside the margin box", method, p)
					}
				}
			}
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	testlog.Start(t)

	opts := DefaultOptions()
	opts.Colors = 4
	opts.MinArea = 8
	opts.Seed = 7
	opts.Workers = 1
	d1, err := Vectorize(rings(30, 30), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	opts.Workers = 6
	d2, err := Vectorize(rings(30, 30), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(d1.Groups) != len(d2.Groups) {
		t.Fatalf("group count differs: %d vs %d", len(d1.Groups), len(d2.Groups))
	}
	for i := range d1.Groups {
		g1, g2 := d1.Groups[i], d2.Groups[i]
		if g1.Index != g2.Index || len(g1.Contours) != len(g2.Contours) {
			t.Fatalf("group %d differs", i)
		}
		for j := range g1.Contours {
			if !slices.Equal(g1.Contours[j], g2.Contours[j]) {
				t.Fatalf("group %d contour %d differs", i, j)
			}
		}
	}
}

func TestBuildRejectsInvalidOptions(t *testing.T) {
	testlog.Start(t)

	pixels := rings(8, 8)
	mutate := []func(*Options){
		func(o *Options) { o.Colors = 0 },
		func(o *Options) { o.MinArea = -1 },
		func(o *Options) { o.SimplifyFactor = 0 },
		func(o *Options) { o.MirrorBorder = -2 },
		func(o *Options) { o.MaxIterations = 0 },
		func(o *Options) { o.Workers = -1 },
		func(o *Options) { o.LayerMethod = LayerMethod(42) },
		func(o *Options) { o.Seeding = Seeding(42) },
	}
	for i, m := range mutate {
		opts := DefaultOptions()
		m(&opts)
		if _, err := Vectorize(pixels, opts); !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("case %d: expected ErrInvalidOptions, got %v", i, err)
		}
	}
	if _, err := Vectorize(PixelBuffer{Width: 2, Height: 2}, DefaultOptions()); !errors.Is(err, ErrInvalidBuffer) {
		t.Fatalf("expected ErrInvalidBuffer, got %v", err)
	}
}

func TestOptionsFromSize(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		size image.Point
		want int
	}{
		{image.Pt(32, 32), 4},
		{image.Pt(200, 200), 16},
		{image.Pt(1024, 768), DefaultOptions().MinArea},
		{image.Pt(0, 10), DefaultOptions().MinArea},
	}
	for _, tc := range cases {
		if got := OptionsFromSize(tc.size).MinArea; got != tc.want {
			t.Fatalf("%v: min area %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestReconstructPaintsLabels(t *testing.T) {
	testlog.Start(t)

	opts := DefaultOptions()
	opts.Colors = 4
	b := NewBuilder(rings(20, 20), opts)
	if _, err := b.Build(); err != nil {
		t.Fatalf("build: %v", err)
	}
	recon := b.Reconstruct()
	if recon == nil {
		t.Fatalf("expected an image")
	}
	for y := range 20 {
		for x := range 20 {
			if int(recon.ColorIndexAt(x, y)) != b.Labels.At(x, y) {
				t.Fatalf("pixel (%d,%d) index %d, label %d", x, y, recon.ColorIndexAt(x, y), b.Labels.At(x, y))
			}
		}
	}
}
