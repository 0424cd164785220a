// Package polarization tracks per-ray Jones transfer matrices across
// interfaces: local s/p basis construction, Fresnel amplitude coefficients,
// and composition of 3x3 complex interface matrices onto the running
// transfer matrix carried by the ray batch.
package polarization

import "github.com/opticore/opticore/pkg/core"

const degenerateEps = 1e-9

// LocalBasis returns unit axes (s, p) completing the direction k to a
// right-handed orthonormal triad. The s axis is built against the global x
// axis, falling back to y when k is parallel to x; the guard keeps the
// basis well-defined at the degenerate orientation instead of failing.
func LocalBasis(k core.Vec3) (s, p core.Vec3) {
	s = k.Cross(core.NewVec3(1, 0, 0))
	if s.Length() < degenerateEps {
		s = k.Cross(core.NewVec3(0, 1, 0))
	}
	s = s.Normalize()
	p = k.Cross(s)
	return s, p
}

// IncidenceBasis returns the s axis of the plane of incidence spanned by the
// incident direction and the surface normal. At normal incidence the plane
// is undefined and the reference-axis basis is used instead.
func IncidenceBasis(inDir, normal core.Vec3) core.Vec3 {
	s := inDir.Cross(normal)
	if s.Length() < degenerateEps {
		s, _ = LocalBasis(inDir)
		return s
	}
	return s.Normalize()
}
