package imagetosvg

import (
	"testing"

	"github.com/chris17453/imagetosvg/internal/testutil/testlog"
)

func TestDiskSizes(t *testing.T) {
	testlog.Start(t)

	for r, want := range map[int]int{0: 1, 1: 5, 2: 13, 3: 29} {
		if got := len(Disk(r)); got != want {
			t.Fatalf("Disk(%d) has %d offsets, want %d", r, got, want)
		}
	}
	if Disk(-1) != nil {
		t.Fatalf("expected no offsets for a negative radius")
	}
}

func TestRemoveSmallObjectsUsesFourConnectivity(t *testing.T) {
	testlog.Start(t)

	m := maskFrom(
		"#....",
		".#...",
		"...##",
	)
	assertMask(t, RemoveSmallObjects(m, 2),
		".....",
		".....",
		"...##",
	)
}

func TestFillSmallHolesLeavesFrameRegions(t *testing.T) {
	testlog.Start(t)

	m := maskFrom(
		".####",
		"#####",
		"##.##",
		"#####",
		"#####",
	)
	assertMask(t, FillSmallHoles(m, 2),
		".####",
		"#####",
		"#####",
		"#####",
		"#####",
	)
	assertMask(t, FillSmallHoles(m, 1), maskString(m)...)
}

func TestCloseKeepsRegionFlushWithFrame(t *testing.T) {
	testlog.Start(t)

	m := maskFrom(
		"###...",
		"###...",
		"###...",
		"###...",
		"###...",
	)
	assertMask(t, Close(m, 2), maskString(m)...)

	// Without the mirror padding the frame acts as background and eats the edge.
	plain := Erode(Dilate(m, Disk(1)), Disk(1))
	if plain.At(0, 0) {
		t.Fatalf("expected unpadded closing to erode the frame corner")
	}
}

func TestCloseBridgesNarrowGap(t *testing.T) {
	testlog.Start(t)

	m := maskFrom(
		"###.###",
		"###.###",
		"###.###",
		"###.###",
	)
	assertMask(t, Close(m, 1),
		"#######",
		"#######",
		"#######",
		"#######",
	)
}

func TestOpenRemovesThinSpur(t *testing.T) {
	testlog.Start(t)

	m := maskFrom(
		".........",
		".#####...",
		".#####...",
		".#######.",
		".#####...",
		".#####...",
		".........",
	)
	out := Open(m, 1)
	if out.At(7, 3) {
		t.Fatalf("expected spur tip removed:\n%v", maskString(out))
	}
	if !out.At(3, 3) {
		t.Fatalf("expected block center kept")
	}
}
