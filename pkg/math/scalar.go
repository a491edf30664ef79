package math

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms1"
)

// Pi and Tau as float32.
const (
	Pi  = float32(math32.Pi)
	Tau = 2 * Pi
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return ms1.Clamp(v, lo, hi)
}

// Saturate limits v to [0, 1].
func Saturate(v float32) float32 {
	return ms1.Clamp(v, 0, 1)
}

// Lerp interpolates a..b by t.
func Lerp(a, b, t float32) float32 {
	return ms1.Interp(a, b, t)
}

// SmoothStep is the cubic Hermite step between edge0 and edge1.
// Reversed edges produce a falling step; equal edges a hard step.
func SmoothStep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	if edge0 > edge1 {
		return 1 - ms1.SmoothStep(edge1, edge0, x)
	}
	return ms1.SmoothStep(edge0, edge1, x)
}

// SmootherStep is the quintic step 6t^5-15t^4+10t^3, with zero first and
// second derivatives at both edges.
func SmootherStep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * t * (t*(t*6-15) + 10)
}

// Gaussian returns exp(-0.5*((x-center)/sigma)^2). Sigma is floored to keep
// the mask finite.
func Gaussian(x, center, sigma float32) float32 {
	if sigma < 1e-6 {
		sigma = 1e-6
	}
	d := (x - center) / sigma
	return math32.Exp(-0.5 * d * d)
}

// WrapAngle maps a to (-Pi, Pi].
func WrapAngle(a float32) float32 {
	if !isFinite(a) {
		return 0
	}
	if a > -Pi && a <= Pi {
		return a
	}
	a = math32.Mod(a+Pi, Tau)
	if a <= 0 {
		a += Tau
	}
	return a - Pi
}

// WrapUnit maps a to [0, 1).
func WrapUnit(a float32) float32 {
	a -= math32.Floor(a)
	if a >= 1 {
		a = 0
	}
	return a
}

// AngleDistance returns |WrapAngle(a-b)|.
func AngleDistance(a, b float32) float32 {
	return math32.Abs(WrapAngle(a - b))
}

// Sign returns -1 for negative values and +1 otherwise.
func Sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

// SafeDiv returns a/b, or fallback when |b| is below eps.
func SafeDiv(a, b, eps, fallback float32) float32 {
	if math32.Abs(b) < eps {
		return fallback
	}
	return a / b
}
