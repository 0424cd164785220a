package interaction

import (
	"math"

	"github.com/opticore/opticore/pkg/core"
)

// outgoingDirection solves the shared wavevector problem behind refraction,
// diffraction and phase interactions. The incident wavevector n1·k0·d is
// split against the unit normal; g (already tangential) is added to the
// tangential part; the outgoing normal component comes from conservation of
// ‖k_out‖ = n2·k0. A negative radicand is the evanescent/TIR case and
// reports ok=false so the caller clips the ray. The normal component keeps
// the incident sign on the transmitted branch and flips it on reflection.
func outgoingDirection(d, normal core.Vec3, n1, n2, k0 float64, g core.Vec3, reflect bool) (core.Vec3, bool) {
	kIn := d.Multiply(n1 * k0)
	kNormal := kIn.Dot(normal)
	kTan := kIn.Subtract(normal.Multiply(kNormal)).Add(g)

	radicand := n2*k0*n2*k0 - kTan.LengthSquared()
	if radicand < 0 {
		return core.Vec3{}, false
	}

	mag := math.Sqrt(radicand)
	sign := 1.0
	if kNormal < 0 {
		sign = -1
	}
	if reflect {
		sign = -sign
	}

	kOut := kTan.Add(normal.Multiply(sign * mag))
	return kOut.Normalize(), true
}

// projectTangent removes the normal component of v, leaving its projection
// in the local tangent plane.
func projectTangent(v, normal core.Vec3) core.Vec3 {
	return v.Subtract(normal.Multiply(v.Dot(normal)))
}
