// Package texture synthesizes the small tileable thread and hatch textures
// the Compositor repeats across the output frame. Its pixel-drawing style
// (direct per-pixel image.NRGBA manipulation) is grounded on the teacher's
// grid.go; the thread stripe's dark-light-dark
// shading gradient is built on go-colorful's Lab-aware color blend rather
// than a hand-rolled channel lerp.
package texture

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/embroidery-core/internal/lrucache"
)

// Hatch selects the cross-hatching style overlaid beneath the thread
// layers.
type Hatch int

const (
	HatchNone Hatch = iota
	HatchDiagonal
	HatchCross
)

// ParseHatch validates and converts a hatch option string.
func ParseHatch(s string) (Hatch, error) {
	switch s {
	case "none":
		return HatchNone, nil
	case "diagonal":
		return HatchDiagonal, nil
	case "cross":
		return HatchCross, nil
	default:
		return 0, fmt.Errorf("unknown hatch: %q", s)
	}
}

const threadBinCount = 6 // fixed synthesis bin count M, independent of the orientation analyzer's N
const tileSize = 64
const hatchSize = 32

var (
	stripeDark  = colorful.Color{R: 0x33 / 255.0, G: 0x33 / 255.0, B: 0x33 / 255.0}
	stripeLight = colorful.Color{R: 0x88 / 255.0, G: 0x88 / 255.0, B: 0x88 / 255.0}
)

// ConfigKey is the process-wide texture-configuration cache key.
type ConfigKey struct {
	ThreadThickness int
	Hatch           Hatch
	DensityScale    float64
}

// Bundle is a synthesized TileBank (one tile per bin, pre-rotated) plus
// the HatchTexture, cached together under one ConfigKey.
type Bundle struct {
	Tiles []*image.NRGBA // len == threadBinCount
	Hatch *image.NRGBA
}

// Synthesizer owns the process-wide texture-configuration cache. It is
// constructed once and injected into the pipeline driver, not held in a
// package-level global, so tests can use a fresh cache per run.
type Synthesizer struct {
	cache *lrucache.Cache[ConfigKey, *Bundle]
}

// New builds a synthesizer with its own bounded configuration cache,
// retaining the most recent 32 (thickness, hatch, density) configurations.
func New() *Synthesizer {
	return &Synthesizer{cache: lrucache.New[ConfigKey, *Bundle](32, 0)}
}

// Get returns the TileBank+HatchTexture for a configuration, synthesizing
// and caching it on first use. The cache has no TTL (a zero TTL duration
// means "never expires"): texture configurations are finite and cheap to
// keep, unlike per-request tile sheets.
func (s *Synthesizer) Get(key ConfigKey) (*Bundle, error) {
	if b, ok := s.cache.Get(key); ok {
		return b, nil
	}
	b, err := synthesize(key)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, b)
	return b, nil
}

func synthesize(key ConfigKey) (*Bundle, error) {
	tiles := make([]*image.NRGBA, threadBinCount)
	for i := 0; i < threadBinCount; i++ {
		angle := float64(i) * (180.0 / float64(threadBinCount))
		tiles[i] = drawThreadTile(key.ThreadThickness, key.DensityScale, angle)
	}

	hatch, err := drawHatch(key.Hatch, key.DensityScale)
	if err != nil {
		return nil, err
	}

	return &Bundle{Tiles: tiles, Hatch: hatch}, nil
}

// drawThreadTile renders one S×S tile of parallel stripes at the given
// rotation angle (degrees), each stripe shaded dark->light->dark across
// its width to suggest thread perpendicular to the stripe.
func drawThreadTile(threadThickness int, densityScale float64, angleDeg float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, tileSize, tileSize))

	t := threadThickness
	if t < 1 {
		t = 1
	}
	spacing := int(math.Round(float64(t) * 1.2 / densityScale))
	if spacing < 2 {
		spacing = 2
	}

	theta := angleDeg * math.Pi / 180.0
	cx, cy := float64(tileSize)/2, float64(tileSize)/2
	cosT, sinT := math.Cos(-theta), math.Sin(-theta)

	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			// Rotate the sample point back into the un-rotated drawing
			// frame, where stripes run vertically.
			dx, dy := float64(x)-cx, float64(y)-cy
			rx := dx*cosT - dy*sinT + cx

			px := posMod(rx, float64(spacing))
			if px >= float64(t) {
				continue // gap between stripes: stays transparent
			}

			var shade colorful.Color
			half := float64(t) / 2
			if px <= half {
				shade = stripeDark.BlendLab(stripeLight, px/half)
			} else {
				shade = stripeLight.BlendLab(stripeDark, (px-half)/half)
			}
			r, g, b := shade.RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

func posMod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

// drawHatch renders the hatch tile: an empty transparent tile for "none",
// 45-degree lines for "diagonal", and both diagonals overlaid for "cross".
func drawHatch(h Hatch, densityScale float64) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, hatchSize, hatchSize))
	if h == HatchNone {
		return img, nil
	}

	spacing := int(math.Round(4.0 / densityScale))
	if spacing < 3 {
		spacing = 3
	}

	switch h {
	case HatchDiagonal:
		strokeAlpha := uint8(0.4 * 255)
		for y := 0; y < hatchSize; y++ {
			for x := 0; x < hatchSize; x++ {
				if (x+y)%spacing == 0 {
					img.SetNRGBA(x, y, color.NRGBA{R: 0, G: 0, B: 0, A: strokeAlpha})
				}
			}
		}
	case HatchCross:
		strokeAlpha := uint8(77) // ~0.3 alpha
		for y := 0; y < hatchSize; y++ {
			for x := 0; x < hatchSize; x++ {
				onA := (x+y)%spacing == 0
				onB := ((x-y)%spacing+spacing)%spacing == 0
				if onA || onB {
					img.SetNRGBA(x, y, color.NRGBA{R: 0, G: 0, B: 0, A: strokeAlpha})
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown hatch: %v", h)
	}

	return img, nil
}
