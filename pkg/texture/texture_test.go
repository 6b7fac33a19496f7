package texture

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/chazu/relief/pkg/mesh"
)

func TestFromImageAxisTransform(t *testing.T) {
	// 2x2 image: red upper-left, green upper-right, blue lower-left,
	// white lower-right.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{255, 255, 255, 255})

	tex := FromImage(img)
	if tex.W != 2 || tex.H != 2 || tex.C != 3 {
		t.Fatalf("unexpected shape %dx%dx%d", tex.W, tex.H, tex.C)
	}

	// The origin moves to the lower-left: texture (0,0) is the image's
	// lower-left pixel (blue), texture (0,1) its upper-left (red).
	if tex.At(0, 0, 2) != 255 || tex.At(0, 0, 0) != 0 {
		t.Errorf("texel (0,0) should be blue, got (%v,%v,%v)",
			tex.At(0, 0, 0), tex.At(0, 0, 1), tex.At(0, 0, 2))
	}
	if tex.At(0, 1, 0) != 255 || tex.At(0, 1, 2) != 0 {
		t.Errorf("texel (0,1) should be red, got (%v,%v,%v)",
			tex.At(0, 1, 0), tex.At(0, 1, 1), tex.At(0, 1, 2))
	}
	if tex.At(1, 1, 1) != 255 || tex.At(1, 1, 0) != 0 {
		t.Errorf("texel (1,1) should be green, got (%v,%v,%v)",
			tex.At(1, 1, 0), tex.At(1, 1, 1), tex.At(1, 1, 2))
	}
}

func TestSampleClamping(t *testing.T) {
	tex := New(4, 2, 1)
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			tex.Set(x, y, 0, float64(x*10+y))
		}
	}

	tcoords := []mesh.TexCoord{
		{0, 0},       // texel (0,0)
		{0.99, 0.99}, // texel (3,1)
		{1, 1},       // clamped to (3,1)
		{-0.5, 2},    // clamped to (0,1)
		{0.5, 0},     // texel (2,0)
	}
	got := Sample(tcoords, tex)
	want := []float64{0, 31, 31, 1, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestThreshold(t *testing.T) {
	values := []float64{0, 127, 128, 255}
	got := Threshold(values, 128, false)
	want := []bool{false, false, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %v: got %v, want %v", values[i], got[i], want[i])
		}
	}

	rev := Threshold(values, 128, true)
	for i := range want {
		if rev[i] != !want[i] {
			t.Errorf("reversed value %v: got %v, want %v", values[i], rev[i], !want[i])
		}
	}
}

func TestGaussianBlurConservesFlatField(t *testing.T) {
	tex := New(8, 8, 1)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			tex.Set(x, y, 0, 100)
		}
	}
	out := GaussianBlur(tex, 1.5)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if math.Abs(out.At(x, y, 0)-100) > 1e-9 {
				t.Fatalf("texel (%d,%d): %v, want 100", x, y, out.At(x, y, 0))
			}
		}
	}
}

func TestGaussianBlurSpreadsImpulse(t *testing.T) {
	tex := New(9, 9, 1)
	tex.Set(4, 4, 0, 255)
	out := GaussianBlur(tex, 1)

	center := out.At(4, 4, 0)
	neighbor := out.At(4, 5, 0)
	diagonal := out.At(5, 5, 0)
	if center <= neighbor || neighbor <= diagonal || diagonal <= 0 {
		t.Errorf("expected monotone falloff, got center=%v neighbor=%v diagonal=%v",
			center, neighbor, diagonal)
	}
}

func TestSmoothMaskRemovesSpeckle(t *testing.T) {
	m := NewMask(11, 11)
	m.Set(5, 5, true) // single isolated pixel

	out := SmoothMask(m, 1.5)
	for i, b := range out.Bits {
		if b {
			t.Fatalf("speckle survived smoothing at bit %d", i)
		}
	}
}

func TestClassifyEarth(t *testing.T) {
	tex := New(4, 1, 3)
	set := func(x int, r, g, b float64) {
		tex.Set(x, 0, 0, r)
		tex.Set(x, 0, 1, g)
		tex.Set(x, 0, 2, b)
	}
	set(0, 30, 80, 200)    // deep blue: sea
	set(1, 100, 120, 60)   // green-brown: land
	set(2, 220, 225, 240)  // bright, blue-leaning: ice
	set(3, 200, 40, 40)    // red desert: land

	masks := ClassifyEarth(tex, 0)

	wantSea := []bool{true, false, false, false}
	wantIce := []bool{false, false, true, false}
	for x := 0; x < 4; x++ {
		if masks.Sea.At(x, 0) != wantSea[x] {
			t.Errorf("texel %d: sea=%v, want %v", x, masks.Sea.At(x, 0), wantSea[x])
		}
		if masks.Ice.At(x, 0) != wantIce[x] {
			t.Errorf("texel %d: ice=%v, want %v", x, masks.Ice.At(x, 0), wantIce[x])
		}
		if masks.Land.At(x, 0) != (!wantSea[x] && !wantIce[x]) {
			t.Errorf("texel %d: land=%v inconsistent with sea/ice", x, masks.Land.At(x, 0))
		}
	}
}
