package embroidery

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/ironsheep/embroidery-core/internal/raster"
)

// fabricSwatches is the small built-in table of named fabric backdrops.
// A real deployment would load these from an asset bundle; recovering a
// missing name to defaultFabricColor below is what stands in for that
// asset lookup here.
var fabricSwatches = map[string]string{
	"linen":     "#E5E0D6",
	"denim":     "#2E3B55",
	"felt-red":  "#9B2D30",
	"felt-navy": "#1F2A44",
	"canvas":    "#D8CBB0",
}

// resolveBackground turns a Background option into a solid RGB color,
// recovering AssetMissing (an unknown fabric name) to defaultFabricColor
// rather than failing the whole request, per spec.md §7.
func resolveBackground(bg *Background) (color.NRGBA, error) {
	switch bg.Kind {
	case BackgroundColor:
		return parseHexColor(bg.Hex)
	case BackgroundFabric:
		hex, ok := fabricSwatches[bg.Name]
		if !ok {
			hex = defaultFabricColor
		}
		c, err := parseHexColor(hex)
		if err != nil {
			// defaultFabricColor is a constant we control; a parse
			// failure here would be our own bug, not bad input.
			return color.NRGBA{}, newError(InternalError, "background", "default fabric color is malformed", err)
		}
		return c, nil
	default:
		return color.NRGBA{}, nil
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func parseHexColor(hex string) (color.NRGBA, error) {
	orig := hex
	if len(hex) == 0 {
		return color.NRGBA{}, newError(InvalidInput, "background", "empty color string", nil)
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, newError(InvalidInput, "background", fmt.Sprintf("invalid hex color %q", orig), err)
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, newError(InvalidInput, "background", fmt.Sprintf("invalid hex color %q", orig), err)
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, newError(InvalidInput, "background", fmt.Sprintf("invalid hex color %q", orig), nil)
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// flattenBackground composites img (straight alpha) over a solid backdrop
// color, producing an opaque result.
func flattenBackground(img *raster.Raster, bg color.NRGBA) *raster.Raster {
	out := raster.New(img.W, img.H, 4)
	for i := 0; i < img.W*img.H; i++ {
		o := i * 4
		sr, sg, sb, sa := img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3]
		af := float64(sa) / 255.0
		out.Pix[o+0] = blend8(sr, bg.R, af)
		out.Pix[o+1] = blend8(sg, bg.G, af)
		out.Pix[o+2] = blend8(sb, bg.B, af)
		out.Pix[o+3] = 255
	}
	return out
}

func blend8(fg, bg uint8, alpha float64) uint8 {
	v := float64(fg)*alpha + float64(bg)*(1-alpha)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}
