package geometry

import (
	"math"

	"github.com/opticore/opticore/pkg/core"
)

const (
	// sagTol is the convergence tolerance on |z(t) - sag(x(t), y(t))| in mm.
	sagTol = 1e-10

	// maxNewtonIter bounds the 1D sag iteration; rays that have not
	// converged by then are reported as misses and clipped by the caller.
	maxNewtonIter = 100

	// forwardEps tolerates intersections marginally behind the ray origin,
	// which occur when a ray starts exactly on the surface.
	forwardEps = -1e-9
)

// sagProfile is the shape capability the shared Newton solver and normal
// computation work against: the sag and its first partial derivatives.
type sagProfile interface {
	Sag(x, y float64) float64
	sagGradient(x, y float64) (gx, gy float64)
}

// profileNormal returns the normalized gradient of z - sag(x, y), the
// outward (+z) unit normal of any sag-described shape.
func profileNormal(p sagProfile, x, y float64) core.Vec3 {
	gx, gy := p.sagGradient(x, y)
	return core.NewVec3(-gx, -gy, 1).Normalize()
}

// newtonIntersect runs Newton-Raphson on f(t) = z(t) - sag(x(t), y(t)),
// seeded from the vertex-tangent-plane solution. Returns ok=false on
// non-convergence, a vanishing derivative, or a converged root behind the
// ray origin.
func newtonIntersect(p sagProfile, origin, dir core.Vec3) (float64, bool) {
	t := 0.0
	if math.Abs(dir.Z) > 1e-12 {
		t = -origin.Z / dir.Z
		if t < 0 {
			t = 0
		}
	}

	for iter := 0; iter < maxNewtonIter; iter++ {
		x := origin.X + t*dir.X
		y := origin.Y + t*dir.Y
		z := origin.Z + t*dir.Z

		f := z - p.Sag(x, y)
		if math.IsNaN(f) {
			return 0, false
		}
		if math.Abs(f) < sagTol {
			if t < forwardEps {
				return 0, false
			}
			return t, true
		}

		gx, gy := p.sagGradient(x, y)
		df := dir.Z - gx*dir.X - gy*dir.Y
		if math.Abs(df) < 1e-14 {
			return 0, false
		}
		t -= f / df
	}
	return 0, false
}
