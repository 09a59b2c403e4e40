package quantize

import (
	"testing"

	"github.com/ironsheep/embroidery-core/internal/raster"
)

func solidRaster(w, h int, r, g, b, a uint8) *raster.Raster {
	ras := raster.New(w, h, 4)
	for i := 0; i < len(ras.Pix); i += 4 {
		ras.Pix[i], ras.Pix[i+1], ras.Pix[i+2], ras.Pix[i+3] = r, g, b, a
	}
	return ras
}

func TestQuantizeEmptyImageErrors(t *testing.T) {
	ras := raster.New(0, 0, 4)
	if _, err := Quantize(ras, 4); err == nil {
		t.Fatalf("expected error for empty image")
	}
}

func TestQuantizeSolidColorSinglePaletteEntry(t *testing.T) {
	ras := solidRaster(100, 100, 200, 0, 0, 255)
	res, err := Quantize(ras, 4)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if len(res.Palette) != 1 {
		t.Fatalf("solid image should reduce to 1 palette entry, got %d", len(res.Palette))
	}
}

func TestQuantizePaletteClosure(t *testing.T) {
	ras := raster.New(20, 20, 4)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			i := (y*20 + x) * 4
			ras.Pix[i] = byte((x * 13) % 256)
			ras.Pix[i+1] = byte((y * 29) % 256)
			ras.Pix[i+2] = byte((x + y) % 256)
			ras.Pix[i+3] = 255
		}
	}
	res, err := Quantize(ras, 6)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if len(res.Palette) < 1 || len(res.Palette) > 6 {
		t.Fatalf("palette size out of bounds [1,6]: %d", len(res.Palette))
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			i := (y*20 + x) * 4
			r, g, b := res.Image.Pix[i], res.Image.Pix[i+1], res.Image.Pix[i+2]
			if res.Palette.IndexOf(r, g, b, res.Palette[0].A) == -1 {
				found := false
				for _, c := range res.Palette {
					if c.R == r && c.G == g && c.B == b {
						found = true
					}
				}
				if !found {
					t.Fatalf("pixel (%d,%d) RGB (%d,%d,%d) not in palette", x, y, r, g, b)
				}
			}
		}
	}
}

func TestQuantizePreservesInputAlpha(t *testing.T) {
	ras := raster.New(4, 4, 4)
	for i := 0; i < len(ras.Pix); i += 4 {
		ras.Pix[i], ras.Pix[i+1], ras.Pix[i+2] = 10, 10, 10
	}
	ras.Pix[3] = 0
	ras.Pix[4*4+3] = 128
	res, err := Quantize(ras, 4)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if res.Image.Pix[3] != 0 {
		t.Fatalf("alpha should be preserved unchanged, got %d", res.Image.Pix[3])
	}
	if res.Image.Pix[4*4+3] != 128 {
		t.Fatalf("alpha should be preserved unchanged, got %d", res.Image.Pix[4*4+3])
	}
}

func TestQuantizeDistinctColorsExceedsPaletteWhenTruncated(t *testing.T) {
	ras := raster.New(20, 20, 4)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			i := (y*20 + x) * 4
			ras.Pix[i] = byte((x * 13) % 256)
			ras.Pix[i+1] = byte((y * 29) % 256)
			ras.Pix[i+2] = byte((x + y) % 256)
			ras.Pix[i+3] = 255
		}
	}
	res, err := Quantize(ras, 4)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if len(res.Palette) > 4 {
		t.Fatalf("palette should be capped at k=4, got %d", len(res.Palette))
	}
	if res.DistinctColors <= len(res.Palette) {
		t.Fatalf("a busy image truncated to k should report more distinct colors (%d) than its capped palette (%d)", res.DistinctColors, len(res.Palette))
	}
}

func TestQuantizeDistinctColorsMatchesPaletteWhenNotTruncated(t *testing.T) {
	ras := solidRaster(50, 50, 10, 20, 30, 255)
	res, err := Quantize(ras, 4)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if res.DistinctColors != len(res.Palette) {
		t.Fatalf("a solid image should report DistinctColors == len(Palette), got %d vs %d", res.DistinctColors, len(res.Palette))
	}
}

func TestPaletteStringNonEmpty(t *testing.T) {
	p := Palette{{R: 10, G: 20, B: 30, A: 255}}
	if p.String() == "" {
		t.Fatalf("expected non-empty debug string")
	}
}
