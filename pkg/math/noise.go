package math

import "github.com/chewxy/math32"

// Hash01 maps an integer lattice coordinate and seed to [0, 1).
func Hash01(i int32, seed uint32) float32 {
	h := uint32(i)*0x9E3779B1 ^ seed*0x85EBCA77
	h ^= h >> 15
	h *= 0x2C1B3C6D
	h ^= h >> 12
	h *= 0x297A2D39
	h ^= h >> 15
	return float32(h>>8) / float32(1<<24)
}

// Hash01x2 is Hash01 over a 2D lattice.
func Hash01x2(i, j int32, seed uint32) float32 {
	return Hash01(i*73856093^j*19349663, seed)
}

// ValueNoise1D is smooth value noise in [0, 1).
func ValueNoise1D(x float32, seed uint32) float32 {
	x0 := math32.Floor(x)
	t := x - x0
	i := int32(x0)
	t = t * t * (3 - 2*t)
	return Lerp(Hash01(i, seed), Hash01(i+1, seed), t)
}

// ValueNoise2D is smooth bilinear value noise in [0, 1).
func ValueNoise2D(x, y float32, seed uint32) float32 {
	x0, y0 := math32.Floor(x), math32.Floor(y)
	tx, ty := x-x0, y-y0
	i, j := int32(x0), int32(y0)
	tx = tx * tx * (3 - 2*tx)
	ty = ty * ty * (3 - 2*ty)
	a := Lerp(Hash01x2(i, j, seed), Hash01x2(i+1, j, seed), tx)
	b := Lerp(Hash01x2(i, j+1, seed), Hash01x2(i+1, j+1, seed), tx)
	return Lerp(a, b, ty)
}
