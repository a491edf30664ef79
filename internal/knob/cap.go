package knob

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
)

const (
	crownHeightScale   = 0.1
	crownExponent      = 2
	spiralHeightScale  = 0.05
	spiralPhaseJitter  = 0.3
	spiralShapeJitter  = 0.6
	spiralNoiseDensity = 3
	spiralFadeStart    = 0.9
	indicatorFadeStart = 0.92
)

// CrownOffset returns the axial dome (positive crown) or dish (negative)
// height at normalized cap radius rho, zero at the rim.
func CrownOffset(crown, capRadius, rho float32) float32 {
	c := math.Sign(crown) * math32.Min(math32.Abs(crown), 1)
	return c * capRadius * crownHeightScale * (1 - math32.Pow(math.Saturate(rho), crownExponent))
}

// SpiralRidgeOffset returns the spiral ridge height at normalized cap radius
// rho and angle theta. Ridges sit on integer values of the continuous ring
// phase rho/pitch - theta/2pi; noise varies their phase, width and height
// along the spiral.
func SpiralRidgeOffset(s params.Spiral, height, rho, theta float32) float32 {
	if s.Depth <= 0 || s.Pitch <= 0 {
		return 0
	}
	along := rho / s.Pitch * spiralNoiseDensity
	jitter := func(salt uint32, shift float32) float32 {
		return s.Jitter * (math.ValueNoise1D(along+shift, s.Seed+salt) - 0.5)
	}

	phase := rho/s.Pitch - theta/math.Tau + spiralPhaseJitter*jitter(0, 0)
	d := math32.Abs(phase - math32.Floor(phase+0.5))
	hw := 0.5 * s.Width * (1 + spiralShapeJitter*jitter(1, 17.3))
	if hw <= 0 || d >= hw {
		return 0
	}
	q := d / hw
	h := s.Depth * height * spiralHeightScale * (1 + spiralShapeJitter*jitter(2, 41.7))
	fade := math.SmoothStep(1, spiralFadeStart, rho) * math.SmoothStep(0, 2*s.Pitch, rho)
	return h * (1 - q*q) * fade
}

// capSurface evaluates the front cap height field above the rim plane.
type capSurface struct {
	knob      params.Knob
	radius    float32
	indicator indicator
}

func newCapSurface(p params.Knob, capRadius float32) capSurface {
	return capSurface{
		knob:      p,
		radius:    capRadius,
		indicator: newIndicator(p.Indicator, capRadius, p.Height),
	}
}

// base is the cap height without the indicator.
func (c capSurface) base(rho, theta float32) float32 {
	return CrownOffset(c.knob.CrownProfile, c.radius, rho) +
		SpiralRidgeOffset(c.knob.Spiral, c.knob.Height, rho, theta)
}

// indicatorFade keeps the indicator off the rim ring.
func (c capSurface) indicatorFade(rho float32) float32 {
	return math.SmoothStep(1, indicatorFadeStart, rho)
}

// at returns the full cap height at polar position (rho, theta).
func (c capSurface) at(rho, theta float32) float32 {
	sin, cos := math32.Sincos(theta)
	x, y := rho*c.radius*cos, rho*c.radius*sin
	return c.base(rho, theta) + c.indicator.offset(x, y)*c.indicatorFade(rho)
}

// atXY returns the base and indicator heights at cap point (x, y).
func (c capSurface) atXY(x, y float32) (base, ind float32) {
	rho := math32.Hypot(x, y) / c.radius
	theta := math32.Atan2(y, x)
	return c.base(rho, theta), c.indicator.amp * c.indicatorFade(rho)
}
