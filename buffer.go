package imagetosvg

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	ErrInvalidOptions  = errors.New("invalid options")
	ErrInvalidBuffer   = errors.New("invalid pixel buffer")
	ErrSizeMismatch    = errors.New("size mismatch")
	ErrIndexOutOfRange = errors.New("palette index out of range")
)

// PixelBuffer is a decoded image as interleaved 8-bit RGB.
type PixelBuffer struct {
	Width, Height int
	Pix           []uint8 // len = Width*Height*3
}

// Palette holds the representative colors of one run. Indices are label values.
type Palette []color.RGBA

// LabelGrid holds one palette index per pixel.
type LabelGrid struct {
	Width, Height int
	Labels        []int // len = Width*Height
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func labelOffset(w, x, y int) int {
	return y*w + x
}

// NewPixelBuffer copies img into an RGB buffer. Alpha is dropped.
func NewPixelBuffer(img image.Image) PixelBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pb := PixelBuffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*3),
	}
	for y := range h {
		for x := range w {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := pixOffset(w, x, y)
			pb.Pix[off] = uint8(r >> 8)
			pb.Pix[off+1] = uint8(g >> 8)
			pb.Pix[off+2] = uint8(b >> 8)
		}
	}
	return pb
}

// Validate reports a malformed buffer.
func (pb PixelBuffer) Validate() error {
	if pb.Width <= 0 || pb.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidBuffer, pb.Width, pb.Height)
	}
	if len(pb.Pix) != pb.Width*pb.Height*3 {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrInvalidBuffer, len(pb.Pix), pb.Width*pb.Height*3)
	}
	return nil
}

// RGBAt returns the color at (x, y).
func (pb PixelBuffer) RGBAt(x, y int) color.RGBA {
	off := pixOffset(pb.Width, x, y)
	return color.RGBA{R: pb.Pix[off], G: pb.Pix[off+1], B: pb.Pix[off+2], A: 255}
}

// Image returns an opaque RGBA copy, for libraries that take image.Image.
func (pb PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.Width, pb.Height))
	for y := range pb.Height {
		for x := range pb.Width {
			img.SetRGBA(x, y, pb.RGBAt(x, y))
		}
	}
	return img
}

// At returns the label at (x, y).
func (lg LabelGrid) At(x, y int) int {
	return lg.Labels[labelOffset(lg.Width, x, y)]
}

// Counts returns the number of pixels assigned to each of the k indices.
func (lg LabelGrid) Counts(k int) []int {
	counts := make([]int, k)
	for _, l := range lg.Labels {
		if l >= 0 && l < k {
			counts[l]++
		}
	}
	return counts
}

func (lg LabelGrid) validate() error {
	if lg.Width <= 0 || lg.Height <= 0 || len(lg.Labels) != lg.Width*lg.Height {
		return fmt.Errorf("%w: label grid %dx%d with %d labels", ErrSizeMismatch, lg.Width, lg.Height, len(lg.Labels))
	}
	return nil
}

// BackgroundIndex returns the most frequent label. Ties go to the lowest index.
func BackgroundIndex(labels LabelGrid, k int) int {
	counts := labels.Counts(k)
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
