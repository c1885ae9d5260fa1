package effects

import "github.com/chewxy/math32"

// Smoothstep is the GLSL smoothstep. Reversed edges give a falling curve.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := math32.Min(math32.Max((x-edge0)/(edge1-edge0), 0), 1)
	return t * t * (3 - 2*t)
}

// RingMask is the aura ring's radial mask at distance d from the centre:
// zero in the hole, one on the band, zero past the outer edge.
func RingMask(c AuraConfig, d float32) float32 {
	hole := Smoothstep(c.InnerStart, c.InnerEnd, d)
	edge := 1 - Smoothstep(c.OuterStart, c.OuterEnd, d)
	return hole * edge
}

// RingDistance maps a normalised coordinate of a w×h drawing area to the
// distance the aura kernel feeds RingMask.
func RingDistance(u, v float32, w, h int) float32 {
	if h <= 0 {
		return 0
	}
	aspect := float32(w) / float32(h)
	return math32.Hypot((u-0.5)*aspect, v-0.5)
}

// ScrollOpacity maps a scroll offset to the plasma opacity. Offsets at or
// before fade_start give 1, at or past fade_end give opacity_floor, and the
// value falls linearly in between.
func ScrollOpacity(c PlasmaConfig, offset float64) float32 {
	floor := math32.Min(math32.Max(c.OpacityFloor, 0), 1)
	if offset <= c.FadeStart {
		return 1
	}
	if offset >= c.FadeEnd || c.FadeEnd <= c.FadeStart {
		return floor
	}
	t := float32((offset - c.FadeStart) / (c.FadeEnd - c.FadeStart))
	v := 1 - t*(1-floor)
	return math32.Min(math32.Max(v, floor), 1)
}

// EdgeFade is the plasma's border attenuation at a normalised coordinate.
func EdgeFade(u, v float32) float32 {
	return Smoothstep(0, 0.15, u) * Smoothstep(1, 0.85, u) *
		Smoothstep(0, 0.15, v) * Smoothstep(1, 0.85, v)
}
