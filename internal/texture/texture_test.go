package texture

import "testing"

func TestParseHatchUnknownErrors(t *testing.T) {
	if _, err := ParseHatch("plaid"); err == nil {
		t.Fatalf("expected error for unknown hatch")
	}
}

func TestParseHatchValid(t *testing.T) {
	for _, s := range []string{"none", "diagonal", "cross"} {
		if _, err := ParseHatch(s); err != nil {
			t.Fatalf("ParseHatch(%q) failed: %v", s, err)
		}
	}
}

func TestSynthesizeTileBankSize(t *testing.T) {
	s := New()
	b, err := s.Get(ConfigKey{ThreadThickness: 3, Hatch: HatchDiagonal, DensityScale: 1.0})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(b.Tiles) != threadBinCount {
		t.Fatalf("expected %d tiles, got %d", threadBinCount, len(b.Tiles))
	}
	for i, tile := range b.Tiles {
		if tile.Bounds().Dx() != tileSize || tile.Bounds().Dy() != tileSize {
			t.Fatalf("tile %d has wrong size: %v", i, tile.Bounds())
		}
	}
	if b.Hatch.Bounds().Dx() != hatchSize || b.Hatch.Bounds().Dy() != hatchSize {
		t.Fatalf("hatch tile has wrong size: %v", b.Hatch.Bounds())
	}
}

func TestSynthesizeHatchNoneIsTransparent(t *testing.T) {
	s := New()
	b, err := s.Get(ConfigKey{ThreadThickness: 3, Hatch: HatchNone, DensityScale: 1.0})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for _, v := range b.Hatch.Pix {
		_ = v
	}
	for y := 0; y < hatchSize; y++ {
		for x := 0; x < hatchSize; x++ {
			_, _, _, a := b.Hatch.At(x, y).RGBA()
			if a != 0 {
				t.Fatalf("hatch=none should be fully transparent, pixel (%d,%d) alpha=%d", x, y, a)
			}
		}
	}
}

func TestSynthesizeIdempotentAcrossCacheHitAndMiss(t *testing.T) {
	s := New()
	key := ConfigKey{ThreadThickness: 4, Hatch: HatchCross, DensityScale: 1.2}
	a, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	b, err := s.Get(key) // cache hit
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for i := range a.Tiles {
		if string(a.Tiles[i].Pix) != string(b.Tiles[i].Pix) {
			t.Fatalf("tile %d differs between cache hit and original", i)
		}
	}

	fresh, err := synthesize(key) // regenerate outside the cache entirely
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	for i := range a.Tiles {
		if string(a.Tiles[i].Pix) != string(fresh.Tiles[i].Pix) {
			t.Fatalf("regenerated tile %d is not byte-identical to the original", i)
		}
	}
}
