// Package raster holds the pixel buffer type and the pure numeric kernels
// every other stage in the embroidery pipeline is built from: grayscale and
// alpha extraction, blur and Sobel gradients, orientation binning, magnitude
// thresholding, the Chamfer distance transform, nearest-neighbor resampling
// and a seeded PRNG.
//
// Every function here is total: out-of-range indices are clamped rather than
// causing a panic, and there is no I/O. Two calls with the same inputs
// always return byte-identical outputs.
package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Raster is an 8-bit-per-channel, row-major, top-to-bottom pixel buffer.
// C is the channel count (1 gray, 3 RGB, 4 RGBA). Pixels are packed with no
// padding: Pix[(y*W+x)*C+ch].
type Raster struct {
	W, H, C int
	Pix     []byte
}

// New allocates a zeroed raster of the given dimensions and channel count.
func New(w, h, c int) *Raster {
	return &Raster{W: w, H: h, C: c, Pix: make([]byte, w*h*c)}
}

// At returns channel ch of the pixel at (x,y). Out-of-range coordinates are
// clamped to the nearest edge pixel.
func (r *Raster) At(x, y, ch int) byte {
	x = clampInt(x, 0, r.W-1)
	y = clampInt(y, 0, r.H-1)
	return r.Pix[(y*r.W+x)*r.C+ch]
}

// Set writes channel ch of the pixel at (x,y). Out-of-range coordinates are
// ignored.
func (r *Raster) Set(x, y, ch int, v byte) {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return
	}
	r.Pix[(y*r.W+x)*r.C+ch] = v
}

// FromImage converts a standard library image into a 4-channel RGBA Raster,
// forcing an alpha channel to exist (opaque 255 when the source has none).
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := New(w, h, 4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r8, g8, b8, a8 := rgba8(img.At(b.Min.X+x, b.Min.Y+y))
			i := (y*w + x) * 4
			out.Pix[i+0] = r8
			out.Pix[i+1] = g8
			out.Pix[i+2] = b8
			out.Pix[i+3] = a8
		}
	}
	return out
}

// ToNRGBA converts a 4-channel Raster back into a standard library image.
func (r *Raster) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	if r.C == 4 {
		copy(img.Pix, r.Pix)
		return img
	}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			v := r.At(x, y, 0)
			o := img.PixOffset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = v, v, v, 255
		}
	}
	return img
}

// rgba8 converts to straight (non-premultiplied) 8-bit channels. color.Color
// always reports premultiplied values from RGBA(), so a partially
// transparent pixel needs the NRGBA model's unpremultiply, not a raw shift.
func rgba8(c color.Color) (r, g, b, a uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B, n.A
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeFitInside resizes img to fit inside maxSide on its longest side,
// preserving aspect ratio and never enlarging, then returns it as a
// 4-channel RGBA Raster. This is the one resize in the pipeline where
// output quality matters more than exact resampling semantics, so it uses
// Lanczos rather than nearest-neighbor.
func NormalizeFitInside(img image.Image, maxSide int) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return New(0, 0, 4)
	}
	if w <= maxSide && h <= maxSide {
		return FromImage(img)
	}
	var nw, nh int
	if w >= h {
		nw = maxSide
		nh = int(float64(h) * float64(maxSide) / float64(w))
	} else {
		nh = maxSide
		nw = int(float64(w) * float64(maxSide) / float64(h))
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	resized := imaging.Resize(img, nw, nh, imaging.Lanczos)
	return FromImage(resized)
}

// ResizeNearestRGBA resizes a 4-channel raster to (dw,dh) using
// disintegration/imaging's NearestNeighbor filter, preserving colors
// exactly (no new colors introduced, unlike Lanczos).
func ResizeNearestRGBA(src *Raster, dw, dh int) *Raster {
	if src.W == 0 || src.H == 0 || dw <= 0 || dh <= 0 {
		return New(dw, dh, src.C)
	}
	img := image.NewNRGBA(image.Rect(0, 0, src.W, src.H))
	copy(img.Pix, src.Pix)
	resized := imaging.Resize(img, dw, dh, imaging.NearestNeighbor)
	out := New(dw, dh, src.C)
	copy(out.Pix, resized.Pix)
	return out
}

// ResizeNearestGray resizes a 1-channel buffer to (dw,dh), also via
// imaging.Resize/NearestNeighbor: the buffer is wrapped as an image.Gray
// (one byte per pixel) and resized; imaging.Resize always returns an
// *image.NRGBA regardless of the source type, so the single channel is
// read back out of that 4-byte stride.
func ResizeNearestGray(src []byte, sw, sh, dw, dh int) []byte {
	out := make([]byte, dw*dh)
	if sw == 0 || sh == 0 || dw <= 0 || dh <= 0 {
		return out
	}
	gray := image.NewGray(image.Rect(0, 0, sw, sh))
	copy(gray.Pix, src)
	resized := imaging.Resize(gray, dw, dh, imaging.NearestNeighbor)
	for i := 0; i < dw*dh; i++ {
		out[i] = resized.Pix[i*4]
	}
	return out
}

// FitDimensions returns the dimensions of the largest box with the same
// aspect ratio as (w,h) whose longest side equals maxSide, never enlarging.
func FitDimensions(w, h, maxSide int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	if w >= h {
		nh := int(float64(h) * float64(maxSide) / float64(w))
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := int(float64(w) * float64(maxSide) / float64(h))
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}
