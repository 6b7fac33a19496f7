package texture

import (
	"math"

	"github.com/chazu/relief/pkg/mesh"
)

// texel maps a texture coordinate to grid indices: floor(coord * size),
// clamped to the valid range so coordinates of exactly 1 stay in bounds.
func texel(tc mesh.TexCoord, w, h int) (int, int) {
	x := int(math.Floor(tc[0] * float64(w)))
	y := int(math.Floor(tc[1] * float64(h)))
	return clamp(x, w), clamp(y, h)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Sample returns the channel-mean texture value under each vertex's
// texture coordinate, nearest-texel.
func Sample(tcoords []mesh.TexCoord, t *Texture) []float64 {
	out := make([]float64, len(tcoords))
	for i, tc := range tcoords {
		x, y := texel(tc, t.W, t.H)
		out[i] = t.Mean(x, y)
	}
	return out
}

// SampleMask returns the mask bit under each vertex's texture coordinate.
func SampleMask(tcoords []mesh.TexCoord, m *Mask) []bool {
	out := make([]bool, len(tcoords))
	for i, tc := range tcoords {
		x, y := texel(tc, m.W, m.H)
		out[i] = m.At(x, y)
	}
	return out
}

// Threshold converts sampled values to a vertex mask: true where the value
// is at least threshold, or below it when reverse is set.
func Threshold(values []float64, threshold float64, reverse bool) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = (v >= threshold) != reverse
	}
	return out
}
