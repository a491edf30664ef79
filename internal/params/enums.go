package params

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// GripType selects the knurl pattern on the side of the body.
type GripType int

// Grip patterns.
const (
	GripNone    GripType = iota // Smooth side
	GripFlutes                  // Vertical ridges
	GripDiamond                 // Two crossing helical groove sets
	GripSquare                  // Axial and circumferential grooves
	GripHex                     // Three groove sets at 60 degrees
)

var gripNames = []string{"none", "flutes", "diamond", "square", "hex"}

// IndicatorShape selects the contour of the pointer mark on the cap.
type IndicatorShape int

// Indicator shapes.
const (
	IndicatorNone IndicatorShape = iota
	IndicatorBar
	IndicatorTapered
	IndicatorCapsule
	IndicatorNeedle
	IndicatorTriangle
	IndicatorDiamond
	IndicatorDot
)

var indicatorShapeNames = []string{"none", "bar", "tapered", "capsule", "needle", "triangle", "diamond", "dot"}

// IndicatorRelief tells whether the indicator stands out of or is cut into
// the cap.
type IndicatorRelief int

// Indicator relief kinds.
const (
	ReliefRaised IndicatorRelief = iota
	ReliefEngraved
)

var reliefNames = []string{"raised", "engraved"}

// IndicatorProfile is the edge profile of the indicator.
type IndicatorProfile int

// Indicator edge profiles.
const (
	ProfileStraight IndicatorProfile = iota // Vertical walls
	ProfileRounded                          // Smooth falloff
	ProfileChamfer                          // Linear falloff
)

var profileNames = []string{"straight", "rounded", "chamfer"}

func (g GripType) String() string         { return enumString(gripNames, int(g)) }
func (s IndicatorShape) String() string   { return enumString(indicatorShapeNames, int(s)) }
func (r IndicatorRelief) String() string  { return enumString(reliefNames, int(r)) }
func (p IndicatorProfile) String() string { return enumString(profileNames, int(p)) }

// Sign returns +1 for raised and -1 for engraved relief.
func (r IndicatorRelief) Sign() float32 {
	if r == ReliefEngraved {
		return -1
	}
	return 1
}

// ParseGripType parses a grip pattern name.
func ParseGripType(s string) (GripType, error) {
	v, err := parseEnum("grip type", gripNames, s)
	return GripType(v), err
}

// ParseIndicatorShape parses an indicator shape name.
func ParseIndicatorShape(s string) (IndicatorShape, error) {
	v, err := parseEnum("indicator shape", indicatorShapeNames, s)
	return IndicatorShape(v), err
}

// ParseIndicatorRelief parses an indicator relief name.
func ParseIndicatorRelief(s string) (IndicatorRelief, error) {
	v, err := parseEnum("indicator relief", reliefNames, s)
	return IndicatorRelief(v), err
}

// ParseIndicatorProfile parses an indicator profile name.
func ParseIndicatorProfile(s string) (IndicatorProfile, error) {
	v, err := parseEnum("indicator profile", profileNames, s)
	return IndicatorProfile(v), err
}

// MarshalYAML writes the enum as its lower-case name.
func (g GripType) MarshalYAML() (interface{}, error)         { return g.String(), nil }
func (s IndicatorShape) MarshalYAML() (interface{}, error)   { return s.String(), nil }
func (r IndicatorRelief) MarshalYAML() (interface{}, error)  { return r.String(), nil }
func (p IndicatorProfile) MarshalYAML() (interface{}, error) { return p.String(), nil }

// UnmarshalYAML reads the enum from its name.
func (g *GripType) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseGripType(value.Value)
	if err != nil {
		return err
	}
	*g = v
	return nil
}

func (s *IndicatorShape) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseIndicatorShape(value.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (r *IndicatorRelief) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseIndicatorRelief(value.Value)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (p *IndicatorProfile) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseIndicatorProfile(value.Value)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func enumString(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}
