package embroidery

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func solidSourceImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestProcessSolidImageEndToEnd(t *testing.T) {
	driver := New()
	src := solidSourceImage(80, 80, color.RGBA{R: 200, G: 60, B: 60, A: 255})
	result, err := driver.Process(src, RawOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Meta.Width != 80 || result.Meta.Height != 80 {
		t.Fatalf("unexpected output size: %dx%d", result.Meta.Width, result.Meta.Height)
	}
	if len(result.Meta.Palette) == 0 {
		t.Fatalf("expected a non-empty palette")
	}
	if _, err := result.EncodePNG(); err != nil {
		t.Fatalf("failed to encode result: %v", err)
	}
}

func TestProcessRejectsNilImage(t *testing.T) {
	driver := New()
	_, err := driver.Process(nil, RawOptions{})
	if err == nil {
		t.Fatalf("expected error for nil image")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestProcessRejectsZeroAreaImage(t *testing.T) {
	driver := New()
	src := image.NewRGBA(image.Rect(0, 0, 0, 0))
	_, err := driver.Process(src, RawOptions{})
	if err == nil {
		t.Fatalf("expected error for zero-area image")
	}
}

func TestProcessPropagatesOptionErrors(t *testing.T) {
	driver := New()
	src := solidSourceImage(20, 20, color.RGBA{A: 255})
	h := "not-a-real-hatch"
	_, err := driver.Process(src, RawOptions{Hatch: &h})
	if err == nil {
		t.Fatalf("expected error for invalid hatch option")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != UnsupportedOption {
		t.Fatalf("expected UnsupportedOption, got %v", err)
	}
}

func TestProcessFlattensOntoBackgroundWhenTransparencyNotPreserved(t *testing.T) {
	driver := New()
	src := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x < 20 {
				src.Set(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
			}
			// right half stays fully transparent
		}
	}
	preserve := false
	result, err := driver.Process(src, RawOptions{
		PreserveTransparency: &preserve,
		Background:           &RawBackground{Type: "color", Hex: "#00FF00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// every pixel in a flattened result must be fully opaque
	for i := 3; i < len(result.Image.Pix); i += 4 {
		if result.Image.Pix[i] != 255 {
			t.Fatalf("flattened output should be fully opaque at byte %d, got %d", i, result.Image.Pix[i])
		}
	}
}

func TestProcessWarnsWhenColorsAreReduced(t *testing.T) {
	driver := New()
	src := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{
				R: uint8((x * 37) % 256),
				G: uint8((y * 53) % 256),
				B: uint8((x + y*7) % 256),
				A: 255,
			})
		}
	}
	maxColors := 2
	result, err := driver.Process(src, RawOptions{MaxColors: &maxColors})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, w := range result.Meta.Warnings {
		if strings.Contains(w, "Reduced colors to 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("busy image quantized down to 2 colors should warn about the reduction, got %v", result.Meta.Warnings)
	}
}

func TestProcessReusesCachesAcrossCalls(t *testing.T) {
	driver := New()
	src := solidSourceImage(60, 60, color.RGBA{R: 10, G: 200, B: 40, A: 255})
	if _, err := driver.Process(src, RawOptions{}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := driver.Process(src, RawOptions{}); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
}
