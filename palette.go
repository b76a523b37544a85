package imagetosvg

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
)

// seedCandidate is a dominantcolor candidate with the number of histogram pixels
// closer to it than to any other candidate.
type seedCandidate struct {
	center  clusters.Coordinates // 0..255 RGB
	lab     colorful.Color
	support float64
}

func newSeedCandidate(c color.RGBA, support float64) seedCandidate {
	lab, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return seedCandidate{
		center:  clusters.Coordinates{float64(c.R), float64(c.G), float64(c.B)},
		lab:     lab,
		support: support,
	}
}

// dominantCandidates asks dominantcolor for n colors of img and weighs each by the
// pixels of h it is nearest to. Candidates no pixel is nearest to are dropped.
func dominantCandidates(img image.Image, h colorHistogram, n int) []seedCandidate {
	found := dominantcolor.FindWeight(img, n)
	if len(found) == 0 {
		return nil
	}
	cands := make([]seedCandidate, len(found))
	for i, f := range found {
		cands[i] = newSeedCandidate(f.RGBA, 0)
	}
	for i, o := range h.colors {
		nearest, best := 0, math.Inf(1)
		for j := range cands {
			if d := sqDist(o.Coordinates(), cands[j].center); d < best {
				nearest, best = j, d
			}
		}
		cands[nearest].support += h.weights[i]
	}
	return slices.DeleteFunc(cands, func(c seedCandidate) bool { return c.support == 0 })
}

// spreadSeeds picks up to k centers from cands. The best supported candidate goes
// first; after that the candidate farthest in Lab from every pick, scaled by the
// square root of its support. Candidates equal to a pick are never chosen.
func spreadSeeds(cands []seedCandidate, k int) clusters.Clusters {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	first := 0
	for i, c := range cands {
		if c.support > cands[first].support {
			first = i
		}
	}
	picked := make([]bool, len(cands))
	gap := make([]float64, len(cands)) // Lab distance to the nearest pick
	pick := func(i int) clusters.Cluster {
		picked[i] = true
		for j := range cands {
			d := cands[j].lab.DistanceLab(cands[i].lab)
			if i == first || d < gap[j] {
				gap[j] = d
			}
		}
		return clusters.Cluster{Center: slices.Clone(cands[i].center)}
	}

	cc := clusters.Clusters{pick(first)}
	for len(cc) < k {
		next, score := -1, 0.0
		for i, c := range cands {
			if picked[i] {
				continue
			}
			if s := gap[i] * math.Sqrt(c.support); s > score {
				next, score = i, s
			}
		}
		if next < 0 {
			break
		}
		cc = append(cc, pick(next))
	}
	return cc
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	col, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return col.Hex()
}

// Luminance is the Rec. 601 luma of c on the 0..255 scale.
func Luminance(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Hue returns the HSV hue of c in [0, 360). Grays map to 0.
func Hue(c color.RGBA) float64 {
	col, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	h, _, _ := col.Hsv()
	return h
}
