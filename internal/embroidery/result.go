package embroidery

import (
	"bytes"
	"image/png"
	"time"

	"github.com/ironsheep/embroidery-core/internal/quantize"
	"github.com/ironsheep/embroidery-core/internal/raster"
)

// Timings records wall-clock duration per pipeline stage, surfaced for
// diagnostics the way the teacher's handlers.go reports per-tool timing.
type Timings struct {
	Normalize   time.Duration
	Quantize    time.Duration
	Edges       time.Duration
	Orientation time.Duration
	Texture     time.Duration
	Composite   time.Duration
	Background  time.Duration
	Warnings    time.Duration
	Total       time.Duration
}

// Meta is the non-pixel output of one Process call.
type Meta struct {
	Width, Height int
	Palette       quantize.Palette
	Warnings      []string
	Timings       Timings
}

// Result is the full output of one Process call: the stylized image plus
// its metadata.
type Result struct {
	Image *raster.Raster
	Meta  Meta
}

// EncodePNG renders the result image as a PNG. Quantized, mostly-flat-color
// embroidery renders compress well under PNG, so no other format is
// offered.
func (r *Result) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image.ToNRGBA()); err != nil {
		return nil, newError(InternalError, "encode", "failed to encode PNG", err)
	}
	return buf.Bytes(), nil
}
