// Package warnings implements the WarningAnalyzer: small, single-purpose
// threshold checks over already-computed buffers, in the same spirit as
// the teacher's measure.go functions (no shared state, no third-party
// dependency, just arithmetic over pixel data).
package warnings

import (
	"fmt"

	"github.com/ironsheep/embroidery-core/internal/raster"
)

const (
	thinStrokeWarning  = "Thin strokes may not embroider cleanly"
	denseDetailWarning = "Dense detail may fill in on fabric"
	smallImageWarning  = "Very small image may lose detail"
	denseEdgeThreshold = 0.12
	smallImageSide     = 50
)

// Analyze inspects the alpha channel, the continuous (non-dashed) edge map,
// palette reduction and image size to produce human-readable quality
// warnings. It never fails the
// request; it only appends strings.
func Analyze(alpha []byte, w, h, threadThickness int, edgeMap []byte, maxColors, paletteSize int) []string {
	var out []string

	if w > 0 && h > 0 {
		// DistanceTransform treats nonzero pixels as distance-0 "set"
		// points; marking the background (transparent) pixels as set
		// makes dist[i] the distance from an opaque pixel to the nearest
		// background pixel — roughly half the local stroke width.
		bin := make([]byte, w*h)
		for i, a := range alpha {
			if a == 0 {
				bin[i] = 255
			}
		}
		dist := raster.DistanceTransform(bin, w, h)

		hasOpaque := false
		minStroke := -1.0
		for i, a := range alpha {
			if a == 0 {
				continue
			}
			hasOpaque = true
			s := 2 * dist[i]
			if minStroke < 0 || s < minStroke {
				minStroke = s
			}
		}
		if hasOpaque && minStroke < float64(threadThickness) {
			out = append(out, thinStrokeWarning)
		}
	}

	if w > 0 && h > 0 {
		// edgeDensity uses the continuous edge map, not the dashed variant
		// the compositor draws with: dashing halves the pixel count as a
		// stitching style, not a change in how much detail is present.
		edgeCount := 0
		for _, v := range edgeMap {
			if v != 0 {
				edgeCount++
			}
		}
		density := float64(edgeCount) / float64(w*h)
		if density > denseEdgeThreshold {
			out = append(out, denseDetailWarning)
		}
	}

	if paletteSize > maxColors {
		out = append(out, fmt.Sprintf("Reduced colors to %d", maxColors))
	}

	if w > 0 && h > 0 {
		minSide := w
		if h < minSide {
			minSide = h
		}
		if minSide < smallImageSide {
			out = append(out, smallImageWarning)
		}
	}

	return out
}

