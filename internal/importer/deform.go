package importer

import (
	"sort"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
)

const (
	// headMaskWidth is the angular half-width (radians) of the head region.
	headMaskWidth = 0.6

	// anchorRadiusBand selects near-innermost vertices as head anchor
	// candidates, as a fraction of the radius range.
	anchorRadiusBand = 0.02
	// anchorHeightBand limits candidates to the middle of the Z range.
	anchorHeightBand = 0.25
	// anchorFallbackWeight trades height for radius when no candidate qualifies.
	anchorFallbackWeight = 0.25

	minDeformScale = 0.25
	maxDeformScale = 4

	// lengthSamples is the resolution of the angular remap table.
	lengthSamples = 256
)

// deformation describes the body/head split of a centered, flat ring.
type deformation struct {
	anchor    int
	headAngle float32
	ringR     float32 // Median planar radius
	midZ      float32
	mask      []float32 // Head weight per vertex, from pre-deform angles
}

// needsDeform reports whether any of the body/head scales differs from 1.
func needsDeform(imp params.Import) bool {
	return imp.BodyLengthScale != 1 || imp.BodyThicknessScale != 1 ||
		imp.HeadLengthScale != 1 || imp.HeadThicknessScale != 1
}

// analyzeDeform finds the head anchor and the head mask. Positions must be
// centered on the ring axis.
func analyzeDeform(positions []math.Vec3, headOffset float32) deformation {
	d := deformation{anchor: -1, mask: make([]float32, len(positions))}
	if len(positions) == 0 {
		return d
	}

	radii := make([]float32, len(positions))
	rMin, rMax := math32.Inf(1), math32.Inf(-1)
	zMin, zMax := math32.Inf(1), math32.Inf(-1)
	sorted := make([]float64, len(positions))
	for i, p := range positions {
		r := p.XY().Length()
		radii[i] = r
		sorted[i] = float64(r)
		rMin, rMax = math32.Min(rMin, r), math32.Max(rMax, r)
		zMin, zMax = math32.Min(zMin, p.Z), math32.Max(zMax, p.Z)
	}
	sort.Float64s(sorted)
	d.ringR = float32(stat.Quantile(0.5, stat.Empirical, sorted, nil))
	d.midZ = 0.5 * (zMin + zMax)

	band := rMin + anchorRadiusBand*(rMax-rMin)
	halfZ := anchorHeightBand * (zMax - zMin)
	for i, p := range positions {
		if radii[i] > band || math32.Abs(p.Z-d.midZ) > halfZ {
			continue
		}
		if d.anchor < 0 || p.Z < positions[d.anchor].Z {
			d.anchor = i
		}
	}
	if d.anchor < 0 {
		best := math32.Inf(1)
		for i, p := range positions {
			s := radii[i] + anchorFallbackWeight*math32.Abs(p.Z-d.midZ)
			if s < best {
				best, d.anchor = s, i
			}
		}
	}

	d.headAngle = positions[d.anchor].XY().Angle() + headOffset
	for i, p := range positions {
		d.mask[i] = d.headWeight(p.XY().Angle())
	}
	return d
}

func (d *deformation) headWeight(angle float32) float32 {
	return math.SmoothStep(headMaskWidth, 0, math.AngleDistance(angle, d.headAngle))
}

// deformBodyHead scales the head and body regions independently in radial
// thickness and along the ring, then restores both regions' weighted
// centroids. Positions must be centered on the ring axis.
func deformBodyHead(positions []math.Vec3, imp params.Import) {
	if len(positions) == 0 || !needsDeform(imp) {
		return
	}
	d := analyzeDeform(positions, imp.HeadAngleOffset)
	headBefore, bodyBefore, okHead, okBody := regionCentroids(positions, d.mask)

	remap := newAngularRemap(&d, imp.BodyLengthScale, imp.HeadLengthScale)
	for i, p := range positions {
		m := d.mask[i]
		ts := math.Clamp(math.Lerp(imp.BodyThicknessScale, imp.HeadThicknessScale, m), minDeformScale, maxDeformScale)
		r := p.XY().Length()
		r = d.ringR + (r-d.ringR)*ts
		z := d.midZ + (p.Z-d.midZ)*ts

		angle := remap.apply(p.XY().Angle())
		s, c := math32.Sincos(angle)
		positions[i] = math.Vec3{X: r * c, Y: r * s, Z: z}
	}

	headAfter, bodyAfter, _, _ := regionCentroids(positions, d.mask)
	var dh, db math.Vec3
	if okHead {
		dh = headBefore.Sub(headAfter)
	}
	if okBody {
		db = bodyBefore.Sub(bodyAfter)
	}
	sh, sb := centroidShifts(d.mask, dh, db)
	for i := range positions {
		m := d.mask[i]
		positions[i] = positions[i].Add(sh.Scale(m)).Add(sb.Scale(1 - m))
	}
}

// centroidShifts solves for the head and body translations that, blended by
// the mask, move the weighted centroids by exactly dh and db. Overlapping
// masks couple the two; a singular system falls back to the plain deltas.
func centroidShifts(mask []float32, dh, db math.Vec3) (math.Vec3, math.Vec3) {
	var wh, wb, hh, hb, bb float64
	for _, m := range mask {
		mf := float64(m)
		wh += mf
		wb += 1 - mf
		hh += mf * mf
		hb += mf * (1 - mf)
		bb += (1 - mf) * (1 - mf)
	}
	if wh <= 1e-6 || wb <= 1e-6 {
		return dh, db
	}
	// [a b1; b2 c] [sh; sb] = [dh; db]
	a, b1 := hh/wh, hb/wh
	b2, c := hb/wb, bb/wb
	det := a*c - b1*b2
	if det < 1e-9 {
		return dh, db
	}
	sh := dh.Scale(float32(c / det)).Sub(db.Scale(float32(b1 / det)))
	sb := db.Scale(float32(a / det)).Sub(dh.Scale(float32(b2 / det)))
	return sh, sb
}

// regionCentroids returns the mask-weighted head and body centroids.
func regionCentroids(positions []math.Vec3, mask []float32) (head, body math.Vec3, okHead, okBody bool) {
	var wh, wb float32
	for i, p := range positions {
		m := mask[i]
		head = head.Add(p.Scale(m))
		body = body.Add(p.Scale(1 - m))
		wh += m
		wb += 1 - m
	}
	if wh > 1e-6 {
		head, okHead = head.Scale(1/wh), true
	}
	if wb > 1e-6 {
		body, okBody = body.Scale(1/wb), true
	}
	return head, body, okHead, okBody
}

// angularRemap redistributes angle around the ring so each region's arc grows
// in proportion to its length scale. The head center and the opposite point
// stay fixed when the density is symmetric about the head.
type angularRemap struct {
	origin float32 // Angle of table position 0, half a turn before the head
	cum    [lengthSamples + 1]float32
}

func newAngularRemap(d *deformation, bodyScale, headScale float32) *angularRemap {
	r := &angularRemap{origin: d.headAngle - math.Pi}
	step := math.Tau / lengthSamples
	for k := 0; k < lengthSamples; k++ {
		angle := r.origin + (float32(k)+0.5)*step
		density := math.Clamp(math.Lerp(bodyScale, headScale, d.headWeight(angle)), minDeformScale, maxDeformScale)
		r.cum[k+1] = r.cum[k] + density
	}
	return r
}

func (r *angularRemap) apply(angle float32) float32 {
	u := math.WrapUnit((angle - r.origin) / math.Tau)
	x := u * lengthSamples
	k := int(x)
	if k >= lengthSamples {
		k = lengthSamples - 1
	}
	c := math.Lerp(r.cum[k], r.cum[k+1], x-float32(k))
	return r.origin + math.Tau*c/r.cum[lengthSamples]
}
