package imagetosvg

import (
	"fmt"
)

// Mask marks the pixels of one palette index.
type Mask struct {
	Width, Height int
	Bits          []bool // len = Width*Height
}

func NewMask(w, h int) Mask {
	return Mask{Width: w, Height: h, Bits: make([]bool, w*h)}
}

// At reports whether (x, y) is set. Outside the grid is false.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[labelOffset(m.Width, x, y)]
}

func (m Mask) Set(x, y int, v bool) {
	m.Bits[labelOffset(m.Width, x, y)] = v
}

// Count returns the number of set pixels.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

func (m Mask) Clone() Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Bits, m.Bits)
	return out
}

// ExtractMask returns the mask of the pixels labelled index.
func ExtractMask(labels LabelGrid, index int) (Mask, error) {
	if err := labels.validate(); err != nil {
		return Mask{}, err
	}
	if index < 0 {
		return Mask{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	m := NewMask(labels.Width, labels.Height)
	for i, l := range labels.Labels {
		m.Bits[i] = l == index
	}
	return m, nil
}

const (
	// DefaultClosingRadius smooths single pixel jaggies.
	DefaultClosingRadius = 1
	// TwoColorClosingRadius and TwoColorAreaScale tune the stronger pass used when the
	// image has at most two colors. Picked by eye, not derived.
	TwoColorClosingRadius = 2
	TwoColorAreaScale     = 4
)

// DenoisePolicy controls the cleanup applied to a mask before tracing.
type DenoisePolicy struct {
	// Components and holes smaller than this many pixels are removed or filled.
	MinArea int
	// Disk radius of the closing. 0 skips it.
	ClosingRadius int
}

// DenoisePolicyFor returns the policy for an image with the given number of colors
// in use.
func DenoisePolicyFor(minArea, colorsInUse int) DenoisePolicy {
	if colorsInUse <= 2 {
		return DenoisePolicy{
			MinArea:       minArea * TwoColorAreaScale,
			ClosingRadius: TwoColorClosingRadius,
		}
	}
	return DenoisePolicy{MinArea: minArea, ClosingRadius: DefaultClosingRadius}
}

// Denoise removes speckles, fills pinholes and closes the mask, in that order.
// The input is not modified.
func Denoise(m Mask, p DenoisePolicy) Mask {
	out := m.Clone()
	if p.MinArea > 0 {
		out = RemoveSmallObjects(out, p.MinArea)
		out = FillSmallHoles(out, p.MinArea)
	}
	if p.ClosingRadius > 0 {
		out = Close(out, p.ClosingRadius)
	}
	return out
}
