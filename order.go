package imagetosvg

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// LayerMethod decides the paint order of the colors. Later layers cover earlier ones.
type LayerMethod int

const (
	LayerDarkFirst LayerMethod = iota
	LayerLightFirst
	LayerArea
	LayerHue
)

func (m LayerMethod) String() string {
	switch m {
	case LayerLightFirst:
		return "light_first"
	case LayerArea:
		return "area"
	case LayerHue:
		return "hue"
	default:
		return "dark_first"
	}
}

// ParseLayerMethod accepts dark_first, light_first, area and hue.
func ParseLayerMethod(raw string) (LayerMethod, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "dark_first", "dark":
		return LayerDarkFirst, nil
	case "light_first", "light":
		return LayerLightFirst, nil
	case "area":
		return LayerArea, nil
	case "hue":
		return LayerHue, nil
	default:
		return 0, fmt.Errorf("%w: unknown layer method %q", ErrInvalidOptions, raw)
	}
}

// Order returns the palette indices other than background in paint order.
// Ties keep ascending palette order.
func Order(palette Palette, labels LabelGrid, background int, method LayerMethod) ([]int, error) {
	if err := labels.validate(); err != nil {
		return nil, err
	}
	if background < 0 || background >= len(palette) {
		return nil, fmt.Errorf("%w: background %d of %d", ErrIndexOutOfRange, background, len(palette))
	}

	keys := make([]float64, len(palette))
	switch method {
	case LayerDarkFirst:
		for i, c := range palette {
			keys[i] = Luminance(c)
		}
	case LayerLightFirst:
		for i, c := range palette {
			keys[i] = -Luminance(c)
		}
	case LayerArea:
		for i, n := range labels.Counts(len(palette)) {
			keys[i] = -float64(n)
		}
	case LayerHue:
		for i, c := range palette {
			keys[i] = Hue(c)
		}
	default:
		return nil, fmt.Errorf("%w: unknown layer method %d", ErrInvalidOptions, method)
	}

	order := make([]int, 0, len(palette)-1)
	for i := range palette {
		if i != background {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(keys[a], keys[b])
	})
	return order, nil
}
