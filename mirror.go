package imagetosvg

// PaddedMask is a mask grown by Border pixels on every side.
type PaddedMask struct {
	Mask
	Border int
}

// reflect maps an index outside [0, n) back inside by symmetric reflection, the edge
// pixel being repeated once: -1 -> 0, -2 -> 1, n -> n-1.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// PadWithMirror surrounds m with a border whose pixels mirror the nearest interior
// rows and columns, corners included. A border of 0 returns a copy.
func PadWithMirror(m Mask, border int) PaddedMask {
	border = max(0, border)
	w, h := m.Width+2*border, m.Height+2*border
	p := PaddedMask{Mask: NewMask(w, h), Border: border}
	if m.Width == 0 || m.Height == 0 {
		return p
	}
	for y := range h {
		sy := reflect(y-border, m.Height)
		for x := range w {
			sx := reflect(x-border, m.Width)
			p.Bits[labelOffset(w, x, y)] = m.Bits[labelOffset(m.Width, sx, sy)]
		}
	}
	return p
}

// Crop returns the interior mask without the border.
func (p PaddedMask) Crop() Mask {
	w, h := p.Width-2*p.Border, p.Height-2*p.Border
	out := NewMask(w, h)
	for y := range h {
		src := labelOffset(p.Width, p.Border, y+p.Border)
		copy(out.Bits[y*w:(y+1)*w], p.Bits[src:src+w])
	}
	return out
}
