// Package texture decodes images into XY-addressable textures and samples
// them onto mesh vertices through texture coordinates.
//
// A Texture is stored column-major with the origin in the lower-left
// corner, so that the (s, t) coordinates produced by pkg/shape index it
// directly: s along x, t along y.
package texture

import (
	"fmt"
	"image"
	"os"

	// Registered decoders. NASA Blue Marble imagery ships as TIFF or JPEG;
	// webp covers recompressed copies.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture is a channel-interleaved scalar grid. Values are in [0, 255]
// when decoded from an image.
type Texture struct {
	W, H int
	C    int
	data []float64
}

// New returns a zeroed texture of the given size and channel count.
func New(w, h, c int) *Texture {
	return &Texture{W: w, H: h, C: c, data: make([]float64, w*h*c)}
}

// At returns channel c of the texel at (x, y).
func (t *Texture) At(x, y, c int) float64 {
	return t.data[(x*t.H+y)*t.C+c]
}

// Set stores channel c of the texel at (x, y).
func (t *Texture) Set(x, y, c int, v float64) {
	t.data[(x*t.H+y)*t.C+c] = v
}

// Mean returns the channel mean of the texel at (x, y).
func (t *Texture) Mean(x, y int) float64 {
	sum := 0.0
	base := (x*t.H + y) * t.C
	for c := 0; c < t.C; c++ {
		sum += t.data[base+c]
	}
	return sum / float64(t.C)
}

// Invert replaces every value v with 255-v, in place.
func (t *Texture) Invert() {
	for i, v := range t.data {
		t.data[i] = 255 - v
	}
}

// FromImage converts a decoded image into a texture. Image axes are
// swapped and the vertical axis reversed, moving the origin from the
// image's upper-left corner to the texture's lower-left so texture
// coordinates address it as XY.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := New(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+(h-1-y)).RGBA()
			base := (x*h + y) * 3
			t.data[base+0] = float64(r >> 8)
			t.data[base+1] = float64(g >> 8)
			t.data[base+2] = float64(bl >> 8)
		}
	}
	return t
}

// Load reads and decodes an image file into a texture.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Mask is a boolean grid aligned to a texture.
type Mask struct {
	W, H int
	Bits []bool
}

// NewMask returns an all-false mask of the given size.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Bits: make([]bool, w*h)}
}

// At returns the mask bit at (x, y).
func (m *Mask) At(x, y int) bool {
	return m.Bits[x*m.H+y]
}

// Set stores the mask bit at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[x*m.H+y] = v
}
