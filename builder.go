package imagetosvg

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

type Options struct {
	// Palette size K.
	// Ideal start: 4-8. Higher values keep more detail but multiply the path count.
	Colors int
	// Regions, holes and traced contours below this size are dropped.
	// Ideal start: ~50 for photos, 5-20 for icons and pixel art.
	MinArea int
	// Keep every n-th contour vertex. 1 keeps all of them.
	// Ideal start: 2. Higher values give rounder, smaller output.
	SimplifyFactor int
	// Paint order of the color layers.
	LayerMethod LayerMethod
	// Mirror padding in pixels added before tracing. 0 disables it and lets regions
	// touching the frame be clipped.
	MirrorBorder int
	// k-means seed. Same seed and input, same output.
	Seed uint64
	// k-means iteration cap.
	MaxIterations int
	Seeding       Seeding
	// Goroutines for quantization and for the per-color tracing. 0 means NumCPU.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Colors:         5,
		MinArea:        50,
		SimplifyFactor: 2,
		LayerMethod:    LayerDarkFirst,
		MirrorBorder:   2,
		Seed:           0,
		MaxIterations:  100,
		Seeding:        SeedKMeansPlusPlus,
	}
}

// OptionsFromSize returns DefaultOptions with MinArea scaled down for small images,
// where 50 pixels would remove most of the content.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	pixels := size.X * size.Y
	if pixels <= 64*64 {
		opt.MinArea = 4
	} else if pixels <= 256*256 {
		opt.MinArea = 16
	}
	return opt
}

// Validate rejects options that cannot be run. Nothing is clamped.
func (o Options) Validate() error {
	switch {
	case o.Colors < 1:
		return fmt.Errorf("%w: colors must be >= 1, got %d", ErrInvalidOptions, o.Colors)
	case o.MinArea < 0:
		return fmt.Errorf("%w: min area must be >= 0, got %d", ErrInvalidOptions, o.MinArea)
	case o.SimplifyFactor < 1:
		return fmt.Errorf("%w: simplify factor must be >= 1, got %d", ErrInvalidOptions, o.SimplifyFactor)
	case o.MirrorBorder < 0:
		return fmt.Errorf("%w: mirror border must be >= 0, got %d", ErrInvalidOptions, o.MirrorBorder)
	case o.MaxIterations < 1:
		return fmt.Errorf("%w: max iterations must be >= 1, got %d", ErrInvalidOptions, o.MaxIterations)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidOptions, o.Workers)
	case o.LayerMethod < LayerDarkFirst || o.LayerMethod > LayerHue:
		return fmt.Errorf("%w: unknown layer method %d", ErrInvalidOptions, o.LayerMethod)
	case o.Seeding < SeedKMeansPlusPlus || o.Seeding > SeedDominant:
		return fmt.Errorf("%w: unknown seeding %d", ErrInvalidOptions, o.Seeding)
	}
	return nil
}

func (o Options) quantizeOptions() QuantizeOptions {
	return QuantizeOptions{
		Seed:          o.Seed,
		MaxIterations: o.MaxIterations,
		Seeding:       o.Seeding,
		Workers:       o.Workers,
	}
}

// Builder runs the vectorization pipeline and keeps its intermediate results.
type Builder struct {
	Pixels     PixelBuffer
	Options    Options
	Labels     LabelGrid
	Palette    Palette
	Background int
	Order      []int
	Drawing    Drawing
}

func NewBuilder(pixels PixelBuffer, opts Options) *Builder {
	return &Builder{
		Pixels:  pixels,
		Options: opts,
	}
}

// Vectorize runs a Builder once and returns its drawing.
func Vectorize(pixels PixelBuffer, opts Options) (Drawing, error) {
	return NewBuilder(pixels, opts).Build()
}

func (b *Builder) Build() (Drawing, error) {
	if err := b.Options.Validate(); err != nil {
		return Drawing{}, err
	}
	if err := b.Pixels.Validate(); err != nil {
		return Drawing{}, err
	}
	if err := b.quantize(); err != nil {
		return Drawing{}, err
	}
	if err := b.order(); err != nil {
		return Drawing{}, err
	}
	groups, err := b.traceGroups()
	if err != nil {
		return Drawing{}, err
	}
	b.Drawing = Assemble(b.Pixels.Width, b.Pixels.Height, b.Background, b.Palette[b.Background], groups)
	log.Debug().
		Int("groups", len(b.Drawing.Groups)).
		Int("contours", b.Drawing.ContourCount()).
		Msg("drawing assembled")
	return b.Drawing, nil
}

func (b *Builder) quantize() error {
	labels, palette, err := Quantize(b.Pixels, b.Options.Colors, b.Options.quantizeOptions())
	if err != nil {
		return err
	}
	b.Labels = labels
	b.Palette = palette
	b.Background = BackgroundIndex(labels, len(palette))
	return nil
}

func (b *Builder) order() error {
	order, err := Order(b.Palette, b.Labels, b.Background, b.Options.LayerMethod)
	if err != nil {
		return err
	}
	b.Order = order
	return nil
}

// colorsInUse counts the palette entries that got at least one pixel.
func (b *Builder) colorsInUse() int {
	n := 0
	for _, c := range b.Labels.Counts(len(b.Palette)) {
		if c > 0 {
			n++
		}
	}
	return n
}

// traceGroups runs mask, denoise, pad, trace and simplify for every color in paint
// order. Colors are independent, so they run on a bounded pool and each worker
// writes only its own slot.
func (b *Builder) traceGroups() ([]Group, error) {
	policy := DenoisePolicyFor(b.Options.MinArea, min(len(b.Palette), b.colorsInUse()))
	workers := b.Options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	groups := make([]Group, len(b.Order))
	errs := make([]error, len(b.Order))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for slot, idx := range b.Order {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot, idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			contours, err := b.traceColor(idx, policy)
			if err != nil {
				errs[slot] = err
				return
			}
			groups[slot] = Group{Index: idx, Color: b.Palette[idx], Contours: contours}
		}(slot, idx)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (b *Builder) traceColor(idx int, policy DenoisePolicy) ([]Contour, error) {
	mask, err := ExtractMask(b.Labels, idx)
	if err != nil {
		return nil, err
	}
	if mask.Count() == 0 {
		return nil, nil
	}
	mask = Denoise(mask, policy)
	padded := PadWithMirror(mask, b.Options.MirrorBorder)
	contours := Outline(padded, b.Pixels.Width, b.Pixels.Height, policy.MinArea, b.Options.SimplifyFactor)
	log.Debug().
		Int("index", idx).
		Str("color", Hex(b.Palette[idx])).
		Int("contours", len(contours)).
		Msg("color traced")
	return contours, nil
}

// PaletteColors returns the palette as color.Color values, for image/color users.
func (b *Builder) PaletteColors() color.Palette {
	out := make(color.Palette, len(b.Palette))
	for i, c := range b.Palette {
		out[i] = c
	}
	return out
}

// Reconstruct renders the quantized image: every pixel painted with its palette color.
// It is the raster the drawing approximates. Call after Build. Returns nil for
// palettes larger than 256 colors.
func (b *Builder) Reconstruct() *image.Paletted {
	if len(b.Palette) > 256 {
		return nil
	}
	w, h := b.Labels.Width, b.Labels.Height
	recon := image.NewPaletted(image.Rect(0, 0, w, h), b.PaletteColors())
	for y := range h {
		for x := range w {
			recon.SetColorIndex(x, y, uint8(b.Labels.At(x, y)))
		}
	}
	return recon
}
