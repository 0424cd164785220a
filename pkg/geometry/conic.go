package geometry

import (
	"fmt"
	"math"

	"github.com/opticore/opticore/pkg/core"
)

// conicBase carries the rotationally symmetric conic sag shared by the
// closed-form conic and the Newton-iterated asphere/grating shapes.
// Curvature c may be zero (flat base).
type conicBase struct {
	c float64 // curvature, 1/mm
	k float64 // conic constant
}

// Sag returns c·r² / (1 + sqrt(1 - (1+k)c²r²)). NaN outside the domain of
// the vertex branch; callers treat NaN as a miss.
func (b conicBase) Sag(x, y float64) float64 {
	if b.c == 0 {
		return 0
	}
	r2 := x*x + y*y
	arg := 1 - (1+b.k)*b.c*b.c*r2
	if arg < 0 {
		return math.NaN()
	}
	return b.c * r2 / (1 + math.Sqrt(arg))
}

func (b conicBase) sagGradient(x, y float64) (float64, float64) {
	if b.c == 0 {
		return 0, 0
	}
	r2 := x*x + y*y
	arg := 1 - (1+b.k)*b.c*b.c*r2
	if arg < 1e-14 {
		arg = 1e-14
	}
	// dz/dr = c·r / sqrt(arg), distributed over x and y.
	s := b.c / math.Sqrt(arg)
	return s * x, s * y
}

type conicParams struct {
	Radius float64 `json:"radius"`
	Conic  float64 `json:"conic"`
}

// Conic is a rotationally symmetric conic section (sphere for conic
// constant 0) with its vertex at the local origin.
type Conic struct {
	Radius float64 // radius of curvature, mm; sign follows the z convention
	K      float64 // conic constant

	base conicBase
}

// NewConic validates and creates a conic geometry. Flat surfaces use Plane,
// so a zero radius is a configuration error.
func NewConic(radius, conic float64) (*Conic, error) {
	if radius == 0 {
		return nil, fmt.Errorf("geometry: conic radius must be non-zero (use a plane for flats)")
	}
	return &Conic{
		Radius: radius,
		K:      conic,
		base:   conicBase{c: 1 / radius, k: conic},
	}, nil
}

// Sag implements Geometry.
func (c *Conic) Sag(x, y float64) float64 { return c.base.Sag(x, y) }

// Normal implements Geometry.
func (c *Conic) Normal(x, y float64) core.Vec3 { return profileNormal(c.base, x, y) }

// Intersect implements Geometry with the closed-form quadratic solution of
// c(x² + y² + (1+k)z²) − 2z = 0 along the ray.
func (c *Conic) Intersect(origin, dir core.Vec3) (float64, bool) {
	cv, k := c.base.c, c.base.k

	a := cv * (dir.X*dir.X + dir.Y*dir.Y + (1+k)*dir.Z*dir.Z)
	b := 2*cv*(origin.X*dir.X+origin.Y*dir.Y+(1+k)*origin.Z*dir.Z) - 2*dir.Z
	cc := cv*(origin.X*origin.X+origin.Y*origin.Y+(1+k)*origin.Z*origin.Z) - 2*origin.Z

	if math.Abs(a) < 1e-14 {
		// Degenerate to the linear (near-planar) solution.
		if math.Abs(b) < 1e-14 {
			return 0, false
		}
		t := -cc / b
		if t < forwardEps || !c.onVertexBranch(origin, dir, t) {
			return 0, false
		}
		return t, true
	}

	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, false
	}
	sqrtD := math.Sqrt(disc)

	// Try the nearer root first, then the farther one. The quadratic also
	// describes the phantom branch of the conic, so each candidate is
	// verified against the vertex-branch sag before being accepted.
	t1 := (-b - sqrtD) / (2 * a)
	t2 := (-b + sqrtD) / (2 * a)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	for _, t := range [2]float64{t1, t2} {
		if t < forwardEps {
			continue
		}
		if c.onVertexBranch(origin, dir, t) {
			return t, true
		}
	}
	return 0, false
}

// onVertexBranch checks that the candidate intersection lies on the branch
// of the conic through the vertex, not the phantom branch.
func (c *Conic) onVertexBranch(origin, dir core.Vec3, t float64) bool {
	x := origin.X + t*dir.X
	y := origin.Y + t*dir.Y
	z := origin.Z + t*dir.Z
	sag := c.base.Sag(x, y)
	// NaN sag (outside the branch domain) fails this comparison.
	return math.Abs(z-sag) < 1e-8*(1+math.Abs(z))
}

func (c *Conic) encode() (string, any) {
	return "conic", conicParams{Radius: c.Radius, Conic: c.K}
}
