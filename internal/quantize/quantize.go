// Package quantize reduces an image to a small palette using the same
// frequency-bucket approach the teacher's DominantColors helper uses for
// palette preview, grown into a full quantizer that also remaps every
// pixel of the full-resolution image to its nearest palette entry.
package quantize

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/embroidery-core/internal/raster"
)

// Color is one palette entry, unique by (R,G,B,A).
type Color struct {
	R, G, B, A uint8
}

// Palette is an ordered, deduplicated list of up to K colors, most
// frequent first.
type Palette []Color

// String renders the palette as a debug-friendly, comma-separated list of
// sRGB hex strings, using go-colorful purely for formatting — palette
// selection itself never touches Lab space.
func (p Palette) String() string {
	out := ""
	for i, c := range p {
		if i > 0 {
			out += ","
		}
		cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		out += cc.Hex()
	}
	return out
}

// IndexOf returns the index of the palette entry matching (r,g,b,a)
// exactly, or -1 if none matches.
func (p Palette) IndexOf(r, g, b, a uint8) int {
	for i, c := range p {
		if c.R == r && c.G == g && c.B == b && c.A == a {
			return i
		}
	}
	return -1
}

// Result is a quantized image (same resolution/alpha as the input, RGB
// snapped to a palette entry) plus the palette used. DistinctColors is the
// number of distinct sampled colors seen before truncation to k — it can
// exceed len(Palette), which is always capped at k.
type Result struct {
	Image          *raster.Raster
	Palette        Palette
	DistinctColors int
}

const analysisMaxSide = 400
const sampleStride = 4
const roundTo = 16

// Quantize reduces img to at most k colors (2<=k<=12, already clamped by
// the caller) and remaps every pixel to the nearest palette entry in RGB,
// preserving the input's alpha channel unchanged.
func Quantize(img *raster.Raster, k int) (*Result, error) {
	if img.W == 0 || img.H == 0 {
		return nil, fmt.Errorf("empty image")
	}

	aw, ah := raster.FitDimensions(img.W, img.H, analysisMaxSide)
	small := raster.ResizeNearestRGBA(img, aw, ah)

	type bucket struct {
		r, g, b, a uint8
	}
	order := make([]bucket, 0, 256)
	counts := make(map[bucket]int)

	for y := 0; y < small.H; y++ {
		for x := 0; x < small.W; x += sampleStride {
			i := (y*small.W + x) * small.C
			rr := roundDown(small.Pix[i+0])
			gg := roundDown(small.Pix[i+1])
			bb := roundDown(small.Pix[i+2])
			var aa uint8 = 255
			if small.C >= 4 {
				aa = small.Pix[i+3]
			}
			b := bucket{rr, gg, bb, aa}
			if _, ok := counts[b]; !ok {
				order = append(order, b)
			}
			counts[b]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	distinct := len(order)
	if len(order) > k {
		order = order[:k]
	}

	palette := make(Palette, len(order))
	for i, b := range order {
		palette[i] = Color{R: b.r, G: b.g, B: b.b, A: b.a}
	}
	if len(palette) == 0 {
		palette = Palette{{R: 0, G: 0, B: 0, A: 255}}
	}

	out := raster.New(img.W, img.H, 4)
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			i := (y*img.W + x) * img.C
			r8 := img.Pix[i+0]
			g8 := img.Pix[i+1]
			b8 := img.Pix[i+2]
			var a8 uint8 = 255
			if img.C >= 4 {
				a8 = img.Pix[i+3]
			}
			nearest := nearestColor(palette, r8, g8, b8)
			o := (y*img.W + x) * 4
			out.Pix[o+0] = nearest.R
			out.Pix[o+1] = nearest.G
			out.Pix[o+2] = nearest.B
			out.Pix[o+3] = a8
		}
	}

	return &Result{Image: out, Palette: palette, DistinctColors: distinct}, nil
}

func roundDown(v uint8) uint8 {
	return uint8(int(v) / roundTo * roundTo)
}

// nearestColor finds the palette entry with the smallest squared Euclidean
// distance in RGB. Ties resolve to the earlier (more frequent) entry,
// matching the palette's stable insertion order.
func nearestColor(p Palette, r, g, b uint8) Color {
	best := p[0]
	bestDist := sqDist(best, r, g, b)
	for _, c := range p[1:] {
		d := sqDist(c, r, g, b)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func sqDist(c Color, r, g, b uint8) int {
	dr := int(c.R) - int(r)
	dg := int(c.G) - int(g)
	db := int(c.B) - int(b)
	return dr*dr + dg*dg + db*db
}
