// Package params holds the knob and collar parameter snapshots consumed by the
// mesh builders, with their documented ranges and defaults.
package params

import (
	"github.com/Faultbox/knobsmith/pkg/math"
)

// Knob describes the revolved knob body. Lengths are in model units; every
// *Ratio and scale field is dimensionless.
type Knob struct {
	Radius         float32   `yaml:"radius"`
	Height         float32   `yaml:"height"`
	Bevel          float32   `yaml:"bevel"`       // Front edge round-over, model units
	BevelCurve     float32   `yaml:"bevel_curve"` // Easing exponent of the bevel radius
	TopRadiusScale float32   `yaml:"top_radius_scale"`
	RadialSegments int       `yaml:"radial_segments"`
	CrownProfile   float32   `yaml:"crown_profile"` // Signed dome (+) or dish (-) of the cap
	BodyTaper      float32   `yaml:"body_taper"`
	BodyBulge      float32   `yaml:"body_bulge"`
	Grip           Grip      `yaml:"grip"`
	Spiral         Spiral    `yaml:"spiral"`
	Indicator      Indicator `yaml:"indicator"`
}

// Grip describes the knurl band on the side of the body.
type Grip struct {
	Type      GripType `yaml:"type"`
	Start     float32  `yaml:"start"`     // Band start along the side, 0 = back edge
	Height    float32  `yaml:"height"`    // Band length along the side
	Density   float32  `yaml:"density"`   // Ridges around the circumference
	Pitch     float32  `yaml:"pitch"`     // Slope of the crossing groove sets
	Depth     float32  `yaml:"depth"`     // Groove depth relative to ridge spacing
	Width     float32  `yaml:"width"`     // Groove width relative to ridge spacing
	Sharpness float32  `yaml:"sharpness"` // Exponent applied to the groove mask
}

// Spiral describes the concentric spiral ridge texture on the front cap.
// A zero depth disables it.
type Spiral struct {
	Depth  float32 `yaml:"depth"`  // Ridge height relative to knob height
	Pitch  float32 `yaml:"pitch"`  // Turn spacing relative to cap radius
	Width  float32 `yaml:"width"`  // Ridge width relative to pitch
	Jitter float32 `yaml:"jitter"` // Value-noise variation of phase, width and height
	Seed   uint32  `yaml:"seed"`
}

// Indicator describes the pointer mark on the front cap.
type Indicator struct {
	Shape          IndicatorShape   `yaml:"shape"`
	Relief         IndicatorRelief  `yaml:"relief"`
	Profile        IndicatorProfile `yaml:"profile"`
	WidthRatio     float32          `yaml:"width_ratio"`     // Relative to cap radius
	LengthRatio    float32          `yaml:"length_ratio"`    // Relative to cap radius
	PositionRatio  float32          `yaml:"position_ratio"`  // Center distance from the axis, relative to cap radius
	ThicknessRatio float32          `yaml:"thickness_ratio"` // Relief height relative to knob height
	Roundness      float32          `yaml:"roundness"`       // Edge feather
	CadWalls       bool             `yaml:"cad_walls"`       // Emit hard vertical walls for straight profiles
}

// Enabled reports whether the indicator contributes geometry.
func (i Indicator) Enabled() bool {
	return i.Shape != IndicatorNone && i.ThicknessRatio > 0
}

// DefaultKnob returns the stock knob.
func DefaultKnob() Knob {
	return Knob{
		Radius:         220,
		Height:         120,
		Bevel:          18,
		BevelCurve:     1,
		TopRadiusScale: 0.86,
		RadialSegments: 180,
		CrownProfile:   0.15,
		BodyTaper:      0.1,
		BodyBulge:      0,
		Grip: Grip{
			Type:      GripFlutes,
			Start:     0.1,
			Height:    0.8,
			Density:   36,
			Pitch:     1,
			Depth:     0.25,
			Width:     0.5,
			Sharpness: 1.5,
		},
		Spiral: Spiral{
			Pitch:  0.06,
			Width:  0.5,
			Jitter: 0.2,
			Seed:   1,
		},
		Indicator: Indicator{
			Shape:          IndicatorBar,
			Relief:         ReliefEngraved,
			Profile:        ProfileRounded,
			WidthRatio:     0.06,
			LengthRatio:    0.35,
			PositionRatio:  0.6,
			ThicknessRatio: 0.1,
			Roundness:      0.5,
		},
	}
}

// Clamp limits every field to its documented range.
func (k *Knob) Clamp() {
	k.Radius = math.Clamp(k.Radius, 1, 10000)
	k.Height = math.Clamp(k.Height, 1, 10000)
	k.Bevel = math.Clamp(k.Bevel, 0, 0.5*min(k.Radius, k.Height))
	k.BevelCurve = math.Clamp(k.BevelCurve, 0.25, 4)
	k.TopRadiusScale = math.Clamp(k.TopRadiusScale, 0.3, 1.5)
	k.RadialSegments = clampInt(k.RadialSegments, 8, 1024)
	k.CrownProfile = math.Clamp(k.CrownProfile, -1, 1)
	k.BodyTaper = math.Clamp(k.BodyTaper, -1, 1)
	k.BodyBulge = math.Clamp(k.BodyBulge, -1, 1)

	g := &k.Grip
	if g.Type < GripNone || g.Type > GripHex {
		g.Type = GripNone
	}
	g.Start = math.Clamp(g.Start, 0, 1)
	g.Height = math.Clamp(g.Height, 0, 1-g.Start)
	g.Density = math.Clamp(g.Density, 3, 240)
	g.Pitch = math.Clamp(g.Pitch, 0.2, 4)
	g.Depth = math.Clamp(g.Depth, 0, 1)
	g.Width = math.Clamp(g.Width, 0.05, 0.95)
	g.Sharpness = math.Clamp(g.Sharpness, 0.25, 8)

	s := &k.Spiral
	s.Depth = math.Clamp(s.Depth, 0, 1)
	s.Pitch = math.Clamp(s.Pitch, 0.01, 0.5)
	s.Width = math.Clamp(s.Width, 0.05, 1)
	s.Jitter = math.Clamp(s.Jitter, 0, 1)

	ind := &k.Indicator
	if ind.Shape < IndicatorNone || ind.Shape > IndicatorDot {
		ind.Shape = IndicatorNone
	}
	if ind.Relief != ReliefEngraved {
		ind.Relief = ReliefRaised
	}
	if ind.Profile < ProfileStraight || ind.Profile > ProfileChamfer {
		ind.Profile = ProfileRounded
	}
	ind.WidthRatio = math.Clamp(ind.WidthRatio, 0.01, 0.5)
	ind.LengthRatio = math.Clamp(ind.LengthRatio, 0.02, 1)
	ind.PositionRatio = math.Clamp(ind.PositionRatio, 0, 1)
	ind.ThicknessRatio = math.Clamp(ind.ThicknessRatio, 0, 1)
	ind.Roundness = math.Clamp(ind.Roundness, 0, 1)
}

// Collar describes the decorative ring around the knob. Radial ratios are
// relative to the knob radius.
type Collar struct {
	InnerRadiusRatio  float32 `yaml:"inner_radius_ratio"`
	GapToKnobRatio    float32 `yaml:"gap_to_knob_ratio"`
	ElevationRatio    float32 `yaml:"elevation_ratio"` // Relative to half the knob height
	OverallRotation   float32 `yaml:"overall_rotation"`
	BiteAngle         float32 `yaml:"bite_angle"`
	BodyRadiusRatio   float32 `yaml:"body_radius_ratio"`
	BodyEllipseYScale float32 `yaml:"body_ellipse_y_scale"`
	NeckTaper         float32 `yaml:"neck_taper"`
	TailTaper         float32 `yaml:"tail_taper"`
	MassBias          float32 `yaml:"mass_bias"`
	TailUnderlap      float32 `yaml:"tail_underlap"`
	HeadScale         float32 `yaml:"head_scale"`
	JawBulge          float32 `yaml:"jaw_bulge"`
	ScaleRelief       float32 `yaml:"scale_relief"` // Relief amplitude relative to local tube radius
	PathSegments      int     `yaml:"path_segments"`
	CrossSegments     int     `yaml:"cross_segments"`
	UVSeamOffset      float32 `yaml:"uv_seam_offset"`
	UVSeamFollowBite  bool    `yaml:"uv_seam_follow_bite"`
	Import            Import  `yaml:"import"`
}

// Import holds the collar fields used only when the ring comes from a mesh
// file.
type Import struct {
	MeshPath           string  `yaml:"mesh_path"`
	Scale              float32 `yaml:"scale"`
	Rotation           float32 `yaml:"rotation"`
	Mirror             Mirror  `yaml:"mirror"`
	OffsetX            float32 `yaml:"offset_x"` // Relative to knob radius
	OffsetY            float32 `yaml:"offset_y"`
	InflateRatio       float32 `yaml:"inflate_ratio"` // Relative to knob radius
	BodyLengthScale    float32 `yaml:"body_length_scale"`
	BodyThicknessScale float32 `yaml:"body_thickness_scale"`
	HeadLengthScale    float32 `yaml:"head_length_scale"`
	HeadThicknessScale float32 `yaml:"head_thickness_scale"`
	HeadAngleOffset    float32 `yaml:"head_angle_offset"`
}

// Mirror flags flip the imported mesh along an axis.
type Mirror struct {
	X bool `yaml:"x"`
	Y bool `yaml:"y"`
	Z bool `yaml:"z"`
}

// Count returns how many axes are mirrored.
func (m Mirror) Count() int {
	n := 0
	for _, f := range [...]bool{m.X, m.Y, m.Z} {
		if f {
			n++
		}
	}
	return n
}

// RingRadius returns the centerline radius for a knob of the given radius.
func (c Collar) RingRadius(knobRadius float32) float32 {
	return knobRadius * (c.InnerRadiusRatio + c.GapToKnobRatio + c.BodyRadiusRatio)
}

// DefaultCollar returns the stock serpent collar.
func DefaultCollar() Collar {
	return Collar{
		InnerRadiusRatio:  1,
		GapToKnobRatio:    0.04,
		ElevationRatio:    0,
		BiteAngle:         math.Pi / 2,
		BodyRadiusRatio:   0.12,
		BodyEllipseYScale: 0.85,
		NeckTaper:         0.25,
		TailTaper:         0.55,
		MassBias:          0.15,
		TailUnderlap:      0.3,
		HeadScale:         1,
		JawBulge:          0.3,
		ScaleRelief:       0.04,
		PathSegments:      256,
		CrossSegments:     24,
		UVSeamFollowBite:  true,
		Import: Import{
			Scale:              1,
			BodyLengthScale:    1,
			BodyThicknessScale: 1,
			HeadLengthScale:    1,
			HeadThicknessScale: 1,
		},
	}
}

// Clamp limits every field to its documented range.
func (c *Collar) Clamp() {
	c.InnerRadiusRatio = math.Clamp(c.InnerRadiusRatio, 0.5, 3)
	c.GapToKnobRatio = math.Clamp(c.GapToKnobRatio, 0, 1)
	c.ElevationRatio = math.Clamp(c.ElevationRatio, -1.5, 1.5)
	c.OverallRotation = math.WrapAngle(c.OverallRotation)
	c.BiteAngle = math.WrapAngle(c.BiteAngle)
	c.BodyRadiusRatio = math.Clamp(c.BodyRadiusRatio, 0.01, 0.6)
	c.BodyEllipseYScale = math.Clamp(c.BodyEllipseYScale, 0.2, 3)
	c.NeckTaper = math.Clamp(c.NeckTaper, 0, 0.9)
	c.TailTaper = math.Clamp(c.TailTaper, 0, 0.95)
	c.MassBias = math.Clamp(c.MassBias, -1, 1)
	c.TailUnderlap = math.Clamp(c.TailUnderlap, 0, 1)
	c.HeadScale = math.Clamp(c.HeadScale, 0.25, 3)
	c.JawBulge = math.Clamp(c.JawBulge, 0, 1)
	c.ScaleRelief = math.Clamp(c.ScaleRelief, 0, 0.25)
	c.PathSegments = clampInt(c.PathSegments, 16, 2048)
	c.CrossSegments = clampInt(c.CrossSegments, 6, 256)
	c.UVSeamOffset = math.WrapAngle(c.UVSeamOffset)

	im := &c.Import
	im.Scale = math.Clamp(im.Scale, 0.05, 20)
	im.Rotation = math.WrapAngle(im.Rotation)
	im.OffsetX = math.Clamp(im.OffsetX, -2, 2)
	im.OffsetY = math.Clamp(im.OffsetY, -2, 2)
	im.InflateRatio = math.Clamp(im.InflateRatio, -0.1, 0.1)
	im.BodyLengthScale = math.Clamp(im.BodyLengthScale, 0.25, 4)
	im.BodyThicknessScale = math.Clamp(im.BodyThicknessScale, 0.25, 4)
	im.HeadLengthScale = math.Clamp(im.HeadLengthScale, 0.25, 4)
	im.HeadThicknessScale = math.Clamp(im.HeadThicknessScale, 0.25, 4)
	im.HeadAngleOffset = math.WrapAngle(im.HeadAngleOffset)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
