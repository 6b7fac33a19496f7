package texture

// EarthMasks holds the three-way classification of an earth texture.
type EarthMasks struct {
	Land, Sea, Ice *Mask
}

// ClassifyEarth partitions an RGB earth texture (e.g. NASA Blue Marble)
// into land, sea and ice masks:
//
//	ice:  bright texels (channel mean >= 200) where blue dominates red
//	      and green — snow and shelf ice
//	sea:  texels where blue is at least 1.5 times red
//	land: everything else
//
// Land and ice are then smoothed with a Gaussian of the given sigma and
// rethresholded; sea absorbs whatever the smoothing leaves over, so the
// three masks always partition the texture.
func ClassifyEarth(t *Texture, sigma float64) EarthMasks {
	ice := NewMask(t.W, t.H)
	sea := NewMask(t.W, t.H)
	land := NewMask(t.W, t.H)

	for x := 0; x < t.W; x++ {
		for y := 0; y < t.H; y++ {
			r := t.At(x, y, 0)
			g := t.At(x, y, 1)
			b := t.At(x, y, 2)

			isIce := t.Mean(x, y) >= 200 && b >= r && b >= g
			isSea := b >= 1.5*r
			ice.Set(x, y, isIce)
			sea.Set(x, y, isSea)
			land.Set(x, y, !isIce && !isSea)
		}
	}

	land = SmoothMask(land, sigma)
	ice = SmoothMask(ice, sigma)
	for i := range sea.Bits {
		sea.Bits[i] = !land.Bits[i] && !ice.Bits[i]
	}

	return EarthMasks{Land: land, Sea: sea, Ice: ice}
}
