package lrucache

import "time"

// TileKey identifies a tiled full-frame background sheet: a thread or
// hatch texture repeated to cover a (W,H) frame. AngleBin is unused (0)
// for the hatch kind, since there is only one hatch texture per
// configuration. Signature fingerprints the texture configuration that
// produced the tile (thread thickness and density scale for the thread
// kind; thickness, hatch style and density scale for the hatch kind), so a
// long-lived cache never serves a sheet baked for one request's texture
// settings to a later request that shares only its dimensions.
type TileKey struct {
	Kind      string // "thread" or "hatch"
	AngleBin  int
	W, H      int
	Signature string
}

// MaskKey identifies an orientation-bin mask at a given resolution and for
// a given orientation-source signature. Bin is the thread-bank bin the mask
// was built for; the mask is 255 where OrientationBins equals that bin
// mapped into the orientation analyzer's bin space, 0 elsewhere.
type MaskKey struct {
	Bin       int
	W, H      int
	Signature string
}

// TileAndMaskCache holds the two bounded LRU caches the Compositor reads
// from and writes to: pre-tiled full-frame sheets, and orientation-bin
// masks. Both store raw 8-bit pixel buffers. It is constructed once per
// process and injected into the pipeline driver, never accessed through a
// package-level global, so tests can build a pipeline with a fresh cache.
type TileAndMaskCache struct {
	Tiles *Cache[TileKey, []byte]
	Masks *Cache[MaskKey, []byte]
}

// NewTileAndMaskCache builds the two caches with the capacities and TTLs
// specified for the embroidery pipeline: 64 tile sheets for 300s, 128
// orientation masks for 120s.
func NewTileAndMaskCache() *TileAndMaskCache {
	return &TileAndMaskCache{
		Tiles: New[TileKey, []byte](64, 300*time.Second),
		Masks: New[MaskKey, []byte](128, 120*time.Second),
	}
}
