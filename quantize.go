package imagetosvg

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/muesli/clusters"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Seeding selects how the initial centroids are chosen.
type Seeding int

const (
	// SeedKMeansPlusPlus draws weighted k-means++ seeds from a PCG source.
	SeedKMeansPlusPlus Seeding = iota
	// SeedDominant starts from dominant colors spread apart in Lab space.
	SeedDominant
)

func (s Seeding) String() string {
	switch s {
	case SeedDominant:
		return "dominant"
	default:
		return "kmeans++"
	}
}

// ParseSeeding accepts "kmeans++" (or "kmeanspp") and "dominant".
func ParseSeeding(raw string) (Seeding, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "kmeans++", "kmeanspp", "plusplus":
		return SeedKMeansPlusPlus, nil
	case "dominant", "dominantcolor":
		return SeedDominant, nil
	default:
		return 0, fmt.Errorf("%w: unknown seeding %q", ErrInvalidOptions, raw)
	}
}

type QuantizeOptions struct {
	// Seed for the k-means++ draw. Same seed, same palette.
	Seed uint64
	// Lloyd iterations cap. Hitting it is not an error.
	MaxIterations int
	Seeding       Seeding
	// Goroutines for the assignment step. 0 means runtime.NumCPU().
	Workers int
}

func DefaultQuantizeOptions() QuantizeOptions {
	return QuantizeOptions{
		Seed:          0,
		MaxIterations: 100,
		Seeding:       SeedKMeansPlusPlus,
	}
}

// colorHistogram is the set of distinct colors of an image with their pixel counts.
// k-means runs on it instead of on every pixel.
type colorHistogram struct {
	colors  clusters.Observations // ascending by packed RGB
	weights []float64
	index   []int // per pixel, into colors
}

func packRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func buildHistogram(pb PixelBuffer) colorHistogram {
	n := pb.Width * pb.Height
	keys := make([]uint32, n)
	for i := range n {
		off := i * 3
		keys[i] = packRGB(pb.Pix[off], pb.Pix[off+1], pb.Pix[off+2])
	}
	distinct := slices.Clone(keys)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	pos := make(map[uint32]int, len(distinct))
	h := colorHistogram{
		colors:  make(clusters.Observations, len(distinct)),
		weights: make([]float64, len(distinct)),
		index:   make([]int, n),
	}
	for i, key := range distinct {
		pos[key] = i
		h.colors[i] = clusters.Coordinates{
			float64(key >> 16 & 0xff),
			float64(key >> 8 & 0xff),
			float64(key & 0xff),
		}
	}
	for i, key := range keys {
		u := pos[key]
		h.index[i] = u
		h.weights[u]++
	}
	return h
}

// Quantize clusters the colors of pixels into k palette entries with k-means in RGB
// space and labels every pixel with the index of its cluster.
func Quantize(pixels PixelBuffer, k int, opts QuantizeOptions) (LabelGrid, Palette, error) {
	if err := pixels.Validate(); err != nil {
		return LabelGrid{}, nil, err
	}
	if k < 1 {
		return LabelGrid{}, nil, fmt.Errorf("%w: colors must be >= 1, got %d", ErrInvalidOptions, k)
	}
	if opts.MaxIterations < 1 {
		return LabelGrid{}, nil, fmt.Errorf("%w: max iterations must be >= 1, got %d", ErrInvalidOptions, opts.MaxIterations)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	h := buildHistogram(pixels)

	var cc clusters.Clusters
	if opts.Seeding == SeedDominant {
		cc = seedDominant(pixels, h, k)
	}
	if len(cc) == 0 {
		cc = seedPlusPlus(h, k, rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)))
	}
	cc = padCenters(cc, k)

	assign := make([]int, len(h.colors))
	for i := range assign {
		assign[i] = -1
	}
	iter := 0
	for ; iter < opts.MaxIterations; iter++ {
		if assignNearest(h.colors, cc, assign, workers) == 0 {
			break
		}
		recenter(h, cc, assign)
	}
	if iter == opts.MaxIterations {
		// Labels must follow the last recentered centroids.
		assignNearest(h.colors, cc, assign, workers)
	}
	log.Debug().
		Int("k", k).
		Int("distinct", len(h.colors)).
		Int("iterations", iter).
		Str("seeding", opts.Seeding.String()).
		Msg("kmeans finished")

	labels := LabelGrid{
		Width:  pixels.Width,
		Height: pixels.Height,
		Labels: make([]int, len(h.index)),
	}
	for p, u := range h.index {
		labels.Labels[p] = assign[u]
	}

	palette := make(Palette, len(cc))
	for i, c := range cc {
		palette[i] = color.RGBA{
			R: channel8(c.Center[0]),
			G: channel8(c.Center[1]),
			B: channel8(c.Center[2]),
			A: 255,
		}
	}
	return labels, palette, nil
}

func channel8(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v))))
}

func sqDist(a, b clusters.Coordinates) float64 {
	var d float64
	for i := range a {
		t := a[i] - b[i]
		d += t * t
	}
	return d
}

// weightedPick returns an index drawn with probability proportional to w.
func weightedPick(w []float64, total float64, rng *rand.Rand) int {
	target := rng.Float64() * total
	cumulative := 0.0
	last := 0
	for i, v := range w {
		if v <= 0 {
			continue
		}
		cumulative += v
		last = i
		if cumulative > target {
			return i
		}
	}
	return last
}

// seedPlusPlus picks up to k distinct colors as initial centers. It stops early when
// every remaining color coincides with a chosen center.
func seedPlusPlus(h colorHistogram, k int, rng *rand.Rand) clusters.Clusters {
	n := len(h.colors)
	cc := make(clusters.Clusters, 0, k)
	first := weightedPick(h.weights, floats.Sum(h.weights), rng)
	cc = append(cc, clusters.Cluster{Center: slices.Clone(h.colors[first].Coordinates())})

	d2 := make([]float64, n)
	for i := range n {
		d2[i] = sqDist(h.colors[i].Coordinates(), cc[0].Center)
	}
	scores := make([]float64, n)
	for len(cc) < k {
		for i := range n {
			scores[i] = d2[i] * h.weights[i]
		}
		total := floats.Sum(scores)
		if total == 0 {
			break
		}
		next := weightedPick(scores, total, rng)
		center := slices.Clone(h.colors[next].Coordinates())
		cc = append(cc, clusters.Cluster{Center: center})
		for i := range n {
			d2[i] = min(d2[i], sqDist(h.colors[i].Coordinates(), center))
		}
	}
	return cc
}

// seedDominant takes its centers from the dominant colors of the image, weighted by
// the histogram and spread apart in Lab.
func seedDominant(pixels PixelBuffer, h colorHistogram, k int) clusters.Clusters {
	cc := spreadSeeds(dominantCandidates(pixels.Image(), h, max(24, k*8)), k)
	if len(cc) == 0 {
		log.Warn().Msg("dominant seeding returned no colors, falling back to kmeans++")
		return nil
	}
	return cc
}

// padCenters repeats the last center until there are k. Duplicates lose every tie to
// the earlier copy, so they stay empty.
func padCenters(cc clusters.Clusters, k int) clusters.Clusters {
	if len(cc) > k {
		return cc[:k]
	}
	for len(cc) < k {
		cc = append(cc, clusters.Cluster{Center: slices.Clone(cc[len(cc)-1].Center)})
	}
	return cc
}

func nearest(o clusters.Observation, cc clusters.Clusters) int {
	best := 0
	bestD := math.Inf(1)
	for ci := range cc {
		// Strict comparison keeps the lowest index on ties.
		if d := o.Distance(cc[ci].Center); d < bestD {
			best = ci
			bestD = d
		}
	}
	return best
}

// assignNearest updates assign in place and returns how many entries changed.
func assignNearest(colors clusters.Observations, cc clusters.Clusters, assign []int, workers int) int {
	n := len(colors)
	workers = max(1, min(workers, n))
	chunk := (n + workers - 1) / workers
	changed := make([]int, workers)

	var wg sync.WaitGroup
	for w := range workers {
		lo := w * chunk
		hi := min(n, lo+chunk)
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(slot, lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				ci := nearest(colors[i], cc)
				if assign[i] != ci {
					assign[i] = ci
					changed[slot]++
				}
			}
		}(w, lo, hi)
	}
	wg.Wait()

	total := 0
	for _, c := range changed {
		total += c
	}
	return total
}

// recenter moves every non-empty cluster to the weighted mean of its colors.
// Empty clusters keep their previous center.
func recenter(h colorHistogram, cc clusters.Clusters, assign []int) {
	members := make([][]int, len(cc))
	for i, ci := range assign {
		members[ci] = append(members[ci], i)
	}
	for ci, m := range members {
		if len(m) == 0 {
			continue
		}
		values := make([]float64, len(m))
		weights := make([]float64, len(m))
		center := make(clusters.Coordinates, 3)
		for d := range 3 {
			for j, i := range m {
				values[j] = h.colors[i].Coordinates()[d]
				weights[j] = h.weights[i]
			}
			center[d] = stat.Mean(values, weights)
		}
		cc[ci].Center = center
	}
}
