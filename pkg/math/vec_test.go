package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Perp(t *testing.T) {
	// Edge of a counter-clockwise square along +X: outside is -Y.
	got := Vec2{1, 0}.Perp()
	want := Vec2{0, -1}
	if got != want {
		t.Errorf("Vec2.Perp() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3NormalizeOr(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"unit", Vec3{0, 0, 2}, Vec3{0, 0, 1}},
		{"zero falls back", Vec3{}, AxisY},
		{"nan falls back", Vec3{math32.NaN(), 0, 0}, AxisY},
		{"inf falls back", Vec3{math32.Inf(1), 0, 0}, AxisY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.NormalizeOr(AxisY); got != tt.want {
				t.Errorf("NormalizeOr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Components(t *testing.T) {
	v := Vec3{1, 2, 3}
	for i, want := range []float32{1, 2, 3} {
		if got := v.Component(i); got != want {
			t.Errorf("Component(%d) = %v, want %v", i, got, want)
		}
	}
	if got := v.SetComponent(1, 9); got != (Vec3{1, 9, 3}) {
		t.Errorf("SetComponent() = %v", got)
	}
}
