package imagetosvg

import (
	"image"
)

// Disk returns the offsets of a digital disk of radius r (dx²+dy² <= r²).
func Disk(r int) []image.Point {
	if r < 0 {
		return nil
	}
	var se []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				se = append(se, image.Point{X: dx, Y: dy})
			}
		}
	}
	return se
}

// Dilate sets every pixel that has a set pixel under the structuring element.
// Pixels outside the mask count as unset.
func Dilate(m Mask, se []image.Point) Mask {
	out := NewMask(m.Width, m.Height)
	for y := range m.Height {
		for x := range m.Width {
			for _, o := range se {
				if m.At(x+o.X, y+o.Y) {
					out.Bits[labelOffset(m.Width, x, y)] = true
					break
				}
			}
		}
	}
	return out
}

// Erode keeps the pixels whose whole structuring element neighborhood is set.
// Pixels outside the mask count as unset.
func Erode(m Mask, se []image.Point) Mask {
	out := NewMask(m.Width, m.Height)
	for y := range m.Height {
		for x := range m.Width {
			keep := true
			for _, o := range se {
				if !m.At(x+o.X, y+o.Y) {
					keep = false
					break
				}
			}
			out.Bits[labelOffset(m.Width, x, y)] = keep
		}
	}
	return out
}

// Close dilates then erodes with a disk of radius r. The work is done on a mirror
// padded copy so regions touching the frame are not eaten by the erosion.
func Close(m Mask, r int) Mask {
	if r <= 0 {
		return m.Clone()
	}
	se := Disk(r)
	p := PadWithMirror(m, 2*r)
	p.Mask = Erode(Dilate(p.Mask, se), se)
	return p.Crop()
}

// Open erodes then dilates with a disk of radius r, mirror padded like Close.
func Open(m Mask, r int) Mask {
	if r <= 0 {
		return m.Clone()
	}
	se := Disk(r)
	p := PadWithMirror(m, 2*r)
	p.Mask = Dilate(Erode(p.Mask, se), se)
	return p.Crop()
}

// components labels the 4-connected regions of pixels equal to value.
// Pixels of the other value get -1. sizes[i] is the pixel count of region i and
// framed[i] reports whether it touches the image frame.
func components(m Mask, value bool) (labels []int, sizes []int, framed []bool) {
	labels = make([]int, len(m.Bits))
	for i := range labels {
		labels[i] = -1
	}
	queue := make([]int, 0, 64)
	for start, b := range m.Bits {
		if b != value || labels[start] >= 0 {
			continue
		}
		id := len(sizes)
		size := 0
		touches := false
		labels[start] = id
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			size++
			x, y := cur%m.Width, cur/m.Width
			if x == 0 || y == 0 || x == m.Width-1 || y == m.Height-1 {
				touches = true
			}
			for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
				nx, ny := n[0], n[1]
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				ni := labelOffset(m.Width, nx, ny)
				if m.Bits[ni] == value && labels[ni] < 0 {
					labels[ni] = id
					queue = append(queue, ni)
				}
			}
		}
		sizes = append(sizes, size)
		framed = append(framed, touches)
	}
	return labels, sizes, framed
}

// RemoveSmallObjects clears set regions smaller than minArea pixels.
func RemoveSmallObjects(m Mask, minArea int) Mask {
	return flipSmall(m, true, minArea, false)
}

// FillSmallHoles sets enclosed unset regions smaller than minArea pixels. Unset
// regions touching the frame are not holes and stay unset.
func FillSmallHoles(m Mask, minArea int) Mask {
	return flipSmall(m, false, minArea, true)
}

func flipSmall(m Mask, value bool, minArea int, enclosedOnly bool) Mask {
	out := m.Clone()
	if minArea <= 0 {
		return out
	}
	labels, sizes, framed := components(m, value)
	for i, id := range labels {
		if id < 0 || sizes[id] >= minArea {
			continue
		}
		if enclosedOnly && framed[id] {
			continue
		}
		out.Bits[i] = !value
	}
	return out
}
