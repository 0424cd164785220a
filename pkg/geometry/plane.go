package geometry

import (
	"math"

	"github.com/opticore/opticore/pkg/core"
)

// Plane is the flat surface z = 0.
type Plane struct{}

// NewPlane creates a plane geometry.
func NewPlane() Plane { return Plane{} }

// Sag implements Geometry; a plane has zero sag everywhere.
func (Plane) Sag(_, _ float64) float64 { return 0 }

// Normal implements Geometry.
func (Plane) Normal(_, _ float64) core.Vec3 { return core.NewVec3(0, 0, 1) }

// Intersect implements Geometry with the closed-form planar solution.
func (Plane) Intersect(origin, dir core.Vec3) (float64, bool) {
	// A ray parallel to the plane never crosses it.
	if math.Abs(dir.Z) < 1e-12 {
		return 0, false
	}
	t := -origin.Z / dir.Z
	if t < forwardEps {
		return 0, false
	}
	return t, true
}

func (Plane) encode() (string, any) { return "plane", struct{}{} }
