// Package embroidery is the pipeline's front door: it parses options,
// drives every stage in order, and assembles the final Result. Its
// Driver mirrors the teacher's per-server struct in internal/server —
// long-lived caches injected once at construction, a single entry point
// method invoked per request.
package embroidery

import (
	"fmt"
	"hash/fnv"
	"image"
	"sync"
	"time"

	"github.com/ironsheep/embroidery-core/internal/compositor"
	"github.com/ironsheep/embroidery-core/internal/edges"
	"github.com/ironsheep/embroidery-core/internal/lrucache"
	"github.com/ironsheep/embroidery-core/internal/orientation"
	"github.com/ironsheep/embroidery-core/internal/quantize"
	"github.com/ironsheep/embroidery-core/internal/raster"
	"github.com/ironsheep/embroidery-core/internal/texture"
	"github.com/ironsheep/embroidery-core/internal/warnings"
)

// normalizeMaxSide bounds the longest side of the working image before any
// other stage runs, keeping every downstream buffer a predictable size.
const normalizeMaxSide = 1600

// Driver holds everything that should persist across requests: the
// tile/mask sheet cache and the texture configuration cache. Build one with
// New and reuse it; it is safe for concurrent use by multiple goroutines
// calling Process, since every cache it owns is internally synchronized.
type Driver struct {
	tiles *lrucache.TileAndMaskCache
	tex   *texture.Synthesizer
}

// New constructs a Driver with fresh process-lifetime caches.
func New() *Driver {
	return &Driver{
		tiles: lrucache.NewTileAndMaskCache(),
		tex:   texture.New(),
	}
}

// Process runs the full stylization pipeline over src and returns the
// embroidered result. raw is validated and defaulted internally; a bad
// option value surfaces as an *Error with Kind UnsupportedOption, a bad
// image as Kind InvalidInput, and anything unexpected as InternalError.
func (d *Driver) Process(src image.Image, raw RawOptions) (*Result, error) {
	start := time.Now()

	opts, err := ParseOptions(raw)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, newError(InvalidInput, "decode", "source image is nil", nil)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, newError(InvalidInput, "decode", "source image has zero area", nil)
	}

	var timings Timings

	t0 := time.Now()
	normalized := raster.NormalizeFitInside(src, normalizeMaxSide)
	timings.Normalize = time.Since(t0)

	t0 = time.Now()
	quantized, err := quantize.Quantize(normalized, opts.MaxColors)
	if err != nil {
		return nil, newError(InternalError, "quantize", "failed to quantize image", err)
	}
	timings.Quantize = time.Since(t0)

	edgeMode := edges.Photo
	orientMode := orientation.Photo
	if opts.StyleMode == "logo" {
		edgeMode = edges.Logo
		orientMode = orientation.Logo
	}
	orientMethod := orientation.Binned
	if opts.StyleOrientation == "lic" {
		orientMethod = orientation.LIC
	}

	var edgeResult *edges.Result
	var orientResult *orientation.Result
	var edgeDur, orientDur time.Duration
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t := time.Now()
		edgeResult = edges.Detect(quantized.Image, opts.ThreadThickness, opts.BorderWidth, edgeMode)
		edgeDur = time.Since(t)
	}()
	go func() {
		defer wg.Done()
		t := time.Now()
		orientResult = orientation.Estimate(quantized.Image, orientMethod, orientMode)
		orientDur = time.Since(t)
	}()
	wg.Wait()
	timings.Edges = edgeDur
	timings.Orientation = orientDur

	t0 = time.Now()
	hatch, err := texture.ParseHatch(opts.Hatch)
	if err != nil {
		return nil, newError(UnsupportedOption, "texture", "invalid hatch option", err)
	}
	bundle, err := d.tex.Get(texture.ConfigKey{
		ThreadThickness: opts.ThreadThickness,
		Hatch:           hatch,
		DensityScale:    opts.DensityScale,
	})
	if err != nil {
		return nil, newError(InternalError, "texture", "failed to synthesize thread/hatch textures", err)
	}
	timings.Texture = time.Since(t0)

	t0 = time.Now()
	composed := compositor.Composite(quantized.Image, compositor.Inputs{
		Bundle:          bundle,
		EdgeDashed:      edgeResult.Dashed,
		RimBand:         edgeResult.RimBand,
		OrientationBins: orientResult.Bins,
		OrientationN:    orientResult.N,
		Signature:       orientationSignature(opts, orientMethod, orientMode, orientResult.Bins),
		ThreadSignature: threadSignature(opts.ThreadThickness, opts.DensityScale),
		HatchSignature:  hatchSignature(opts.ThreadThickness, hatch, opts.DensityScale),
	}, d.tiles, compositor.Options{
		ThreadThickness: opts.ThreadThickness,
		BorderStitch:    opts.BorderStitch,
		Strategy:        compositor.StrategyFull,
	})
	timings.Composite = time.Since(t0)

	final := composed
	if !opts.PreserveTransparency && opts.Background != nil {
		t0 = time.Now()
		bgColor, err := resolveBackground(opts.Background)
		if err != nil {
			return nil, err
		}
		final = flattenBackground(composed, bgColor)
		timings.Background = time.Since(t0)
	}

	t0 = time.Now()
	alpha := raster.ExtractAlpha(quantized.Image)
	warn := warnings.Analyze(alpha, quantized.Image.W, quantized.Image.H, opts.ThreadThickness, edgeResult.EdgeMap, opts.MaxColors, quantized.DistinctColors)
	timings.Warnings = time.Since(t0)

	timings.Total = time.Since(start)

	return &Result{
		Image: final,
		Meta: Meta{
			Width:    final.W,
			Height:   final.H,
			Palette:  quantized.Palette,
			Warnings: warn,
			Timings:  timings,
		},
	}, nil
}

// orientationSignature fingerprints the inputs that influence the
// orientation-bin mask cache — the orientation options and a hash of the
// bin map itself — so stale masks from a differently-configured request, or
// from a different image of the same size, never leak into a new one
// sharing the Driver's cache.
func orientationSignature(opts Options, method orientation.Method, mode orientation.Mode, bins []byte) string {
	hsh := fnv.New64a()
	hsh.Write(bins)
	return opts.StyleOrientation + "|" + opts.StyleMode + "|" + string(rune('0'+int(method))) + string(rune('0'+int(mode))) + fmt.Sprintf("|%x", hsh.Sum64())
}

// threadSignature fingerprints the config that produced the thread tile
// bank: thickness and density scale only. Thread stripe drawing never
// depends on the hatch option, so hatch is deliberately excluded — a
// hatch-only change must not invalidate already-cached thread sheets.
func threadSignature(threadThickness int, densityScale float64) string {
	return fmt.Sprintf("%d|%.3f", threadThickness, densityScale)
}

// hatchSignature fingerprints the config that produced the hatch tile:
// thickness, hatch style, and density scale.
func hatchSignature(threadThickness int, hatch texture.Hatch, densityScale float64) string {
	return fmt.Sprintf("%d|%d|%.3f", threadThickness, hatch, densityScale)
}
