package pipeline

import (
	"math"

	"github.com/opticore/opticore/pkg/material"
	"github.com/opticore/opticore/pkg/ray"
)

// advance moves ray i by the signed distance t along its direction through a
// medium of complex index n: position update, optical path accumulation, and
// Beer-Lambert attenuation from the imaginary index.
func advance(b *ray.Batch, i int, t float64, n complex128) {
	b.SetPosition(i, b.Position(i).Add(b.Direction(i).Multiply(t)))
	b.OPD[i] += real(n) * t
	if k := imag(n); k != 0 {
		lambdaMM := b.Wavelength[i] * 1e-3
		b.Intensity[i] *= math.Exp(-4 * math.Pi * k / lambdaMM * t)
	}
}

// Propagate advances every live ray of the batch by the same scalar distance
// through a homogeneous medium. Directions are unchanged; dead rays stay
// parked in place.
func Propagate(b *ray.Batch, distance float64, m material.Medium, env material.Environment) {
	for i := 0; i < b.Len(); i++ {
		if !b.Alive(i) {
			continue
		}
		advance(b, i, distance, m.IndexAt(b.Wavelength[i], env))
	}
}
