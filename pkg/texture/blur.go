package texture

import "math"

// gaussianKernel returns a normalized 1D Gaussian kernel truncated at
// four standard deviations.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(4 * sigma))
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// reflect maps an out-of-range index back into [0, n) by mirroring at the
// edges.
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// GaussianBlur returns a copy of the texture convolved with a separable
// Gaussian of the given standard deviation, each channel independently.
// Edges reflect. A sigma of zero or less returns the texture unchanged.
func GaussianBlur(t *Texture, sigma float64) *Texture {
	if sigma <= 0 {
		return t
	}
	k := gaussianKernel(sigma)
	radius := len(k) / 2

	tmp := New(t.W, t.H, t.C)
	out := New(t.W, t.H, t.C)

	// Horizontal pass.
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			for c := 0; c < t.C; c++ {
				sum := 0.0
				for i := -radius; i <= radius; i++ {
					sum += k[i+radius] * t.At(reflect(x+i, t.W), y, c)
				}
				tmp.Set(x, y, c, sum)
			}
		}
	}
	// Vertical pass.
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			for c := 0; c < t.C; c++ {
				sum := 0.0
				for i := -radius; i <= radius; i++ {
					sum += k[i+radius] * tmp.At(x, reflect(y+i, t.H), c)
				}
				out.Set(x, y, c, sum)
			}
		}
	}
	return out
}

// SmoothMask blurs a boolean mask as a 0/1 field and rethresholds it at
// one half, rounding off pixel-level noise along the mask boundary.
func SmoothMask(m *Mask, sigma float64) *Mask {
	if sigma <= 0 {
		return m
	}
	field := New(m.W, m.H, 1)
	for x := 0; x < m.W; x++ {
		for y := 0; y < m.H; y++ {
			if m.At(x, y) {
				field.Set(x, y, 0, 1)
			}
		}
	}
	blurred := GaussianBlur(field, sigma)

	out := NewMask(m.W, m.H)
	for x := 0; x < m.W; x++ {
		for y := 0; y < m.H; y++ {
			out.Set(x, y, blurred.At(x, y, 0) >= 0.5)
		}
	}
	return out
}
