package embroidery

import (
	"image/color"
	"testing"

	"github.com/ironsheep/embroidery-core/internal/raster"
)

func TestParseHexColorSixDigit(t *testing.T) {
	c, err := parseHexColor("#FF8000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.R != 0xFF || c.G != 0x80 || c.B != 0x00 || c.A != 255 {
		t.Fatalf("unexpected color: %+v", c)
	}
}

func TestParseHexColorEightDigit(t *testing.T) {
	c, err := parseHexColor("#0000FF80")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.A != 0x80 {
		t.Fatalf("expected alpha 0x80, got %x", c.A)
	}
}

func TestParseHexColorAcceptsMissingHash(t *testing.T) {
	if _, err := parseHexColor("FF0000"); err != nil {
		t.Fatalf("unexpected error for hex without leading #: %v", err)
	}
}

func TestParseHexColorRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"#FF00", "#ZZZZZZ", ""} {
		if _, err := parseHexColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestResolveBackgroundUnknownFabricFallsBackToDefault(t *testing.T) {
	c, err := resolveBackground(&Background{Kind: BackgroundFabric, Name: "nonexistent-weave"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := parseHexColor(defaultFabricColor)
	if c != want {
		t.Fatalf("unknown fabric should fall back to default, got %+v", c)
	}
}

func TestResolveBackgroundKnownFabric(t *testing.T) {
	c, err := resolveBackground(&Background{Kind: BackgroundFabric, Name: "denim"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := parseHexColor(fabricSwatches["denim"])
	if c != want {
		t.Fatalf("known fabric should resolve to its swatch, got %+v", c)
	}
}

func TestFlattenBackgroundOpaquePixelUnaffected(t *testing.T) {
	img := raster.New(2, 2, 4)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 10, 20, 30, 255
	}
	out := flattenBackground(img, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	if out.Pix[0] != 10 || out.Pix[1] != 20 || out.Pix[2] != 30 {
		t.Fatalf("fully opaque pixel should be unaffected by background, got %v", out.Pix[:4])
	}
	if out.Pix[3] != 255 {
		t.Fatalf("flattened output should be fully opaque")
	}
}

func TestFlattenBackgroundTransparentPixelTakesBackground(t *testing.T) {
	img := raster.New(1, 1, 4)
	out := flattenBackground(img, color.NRGBA{R: 9, G: 99, B: 199, A: 255})
	if out.Pix[0] != 9 || out.Pix[1] != 99 || out.Pix[2] != 199 {
		t.Fatalf("fully transparent pixel should take the background color exactly, got %v", out.Pix[:3])
	}
}
