package imagetosvg

import (
	"errors"
	"image/color"
	"slices"
	"testing"

	"github.com/chris17453/imagetosvg/internal/testutil/testlog"
)

func gridOf(labels ...int) LabelGrid {
	return LabelGrid{Width: len(labels), Height: 1, Labels: labels}
}

func TestOrderDarkFirstIsNonDecreasing(t *testing.T) {
	testlog.Start(t)

	palette := Palette{white, red, black, blue, green, {R: 128, G: 128, B: 128, A: 255}}
	labels := gridOf(0, 1, 2, 3, 4, 5)
	order, err := Order(palette, labels, 0, LayerDarkFirst)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if len(order) != len(palette)-1 || slices.Contains(order, 0) {
		t.Fatalf("expected every index but the background, got %v", order)
	}
	for i := 1; i < len(order); i++ {
		if Luminance(palette[order[i-1]]) > Luminance(palette[order[i]]) {
			t.Fatalf("luminance decreases at %d: %v", i, order)
		}
	}

	light, err := Order(palette, labels, 0, LayerLightFirst)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	reversed := slices.Clone(order)
	slices.Reverse(reversed)
	if !slices.Equal(light, reversed) {
		t.Fatalf("light_first %v is not the reverse of dark_first %v", light, order)
	}
}

func TestOrderByAreaLargestFirst(t *testing.T) {
	testlog.Start(t)

	palette := Palette{black, red, green, blue}
	labels := gridOf(0, 0, 0, 0, 1, 2, 2, 2, 3, 3)
	order, err := Order(palette, labels, 0, LayerArea)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if want := []int{2, 3, 1}; !slices.Equal(order, want) {
		t.Fatalf("got %v, want %v", order, want)
	}
}

func TestOrderByHue(t *testing.T) {
	testlog.Start(t)

	yellow := color.RGBA{R: 255, G: 255, A: 255}
	palette := Palette{white, blue, yellow, green, red}
	order, err := Order(palette, gridOf(0, 1, 2, 3, 4), 0, LayerHue)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if want := []int{4, 2, 3, 1}; !slices.Equal(order, want) {
		t.Fatalf("got %v, want %v", order, want)
	}
}

func TestOrderTiesKeepPaletteOrder(t *testing.T) {
	testlog.Start(t)

	palette := Palette{white, red, red, black, red}
	order, err := Order(palette, gridOf(0, 1, 2, 3, 4), 0, LayerDarkFirst)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if want := []int{3, 1, 2, 4}; !slices.Equal(order, want) {
		t.Fatalf("got %v, want %v", order, want)
	}
}

func TestOrderRejectsBadInput(t *testing.T) {
	testlog.Start(t)

	palette := Palette{black, white}
	labels := gridOf(0, 1)
	if _, err := Order(palette, labels, 2, LayerDarkFirst); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := Order(palette, labels, 0, LayerMethod(9)); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
	if _, err := Order(palette, LabelGrid{Width: 3, Height: 1, Labels: []int{0}}, 0, LayerArea); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestParseLayerMethod(t *testing.T) {
	testlog.Start(t)

	for _, m := range []LayerMethod{LayerDarkFirst, LayerLightFirst, LayerArea, LayerHue} {
		got, err := ParseLayerMethod(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseLayerMethod(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseLayerMethod("random"); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}
