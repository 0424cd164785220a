package geometry

import (
	"fmt"
	"math"

	"github.com/opticore/opticore/pkg/core"
)

type asphereParams struct {
	Radius float64   `json:"radius"`
	Conic  float64   `json:"conic"`
	Coeffs []float64 `json:"coeffs"`
}

func asphereBase(radius float64) conicBase {
	if radius == 0 {
		return conicBase{}
	}
	return conicBase{c: 1 / radius}
}

// EvenAsphere is a conic base plus even-power polynomial terms:
// sag = conic(r) + Σ Cᵢ·r^(2i+2). Radius 0 means a flat base.
type EvenAsphere struct {
	Radius float64
	K      float64
	Coeffs []float64

	base conicBase
}

// NewEvenAsphere validates and creates an even asphere.
func NewEvenAsphere(radius, conic float64, coeffs []float64) (*EvenAsphere, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("geometry: even asphere needs at least one polynomial coefficient")
	}
	base := asphereBase(radius)
	base.k = conic
	return &EvenAsphere{Radius: radius, K: conic, Coeffs: coeffs, base: base}, nil
}

// Sag implements Geometry.
func (a *EvenAsphere) Sag(x, y float64) float64 {
	r2 := x*x + y*y
	sag := a.base.Sag(x, y)
	rp := r2 // r^(2i+2), starting at r²
	for _, c := range a.Coeffs {
		sag += c * rp
		rp *= r2
	}
	return sag
}

func (a *EvenAsphere) sagGradient(x, y float64) (float64, float64) {
	gx, gy := a.base.sagGradient(x, y)
	r2 := x*x + y*y
	// d/dr Σ Cᵢ r^(2i+2) = Σ Cᵢ(2i+2) r^(2i+1); times x/r gives
	// Σ Cᵢ(2i+2) r^(2i) · x.
	rp := 1.0 // r^(2i)
	for i, c := range a.Coeffs {
		p := float64(2*i + 2)
		gx += c * p * rp * x
		gy += c * p * rp * y
		rp *= r2
	}
	return gx, gy
}

// Normal implements Geometry.
func (a *EvenAsphere) Normal(x, y float64) core.Vec3 { return profileNormal(a, x, y) }

// Intersect implements Geometry by Newton iteration seeded at the vertex
// tangent plane.
func (a *EvenAsphere) Intersect(origin, dir core.Vec3) (float64, bool) {
	return newtonIntersect(a, origin, dir)
}

func (a *EvenAsphere) encode() (string, any) {
	return "even_asphere", asphereParams{Radius: a.Radius, Conic: a.K, Coeffs: a.Coeffs}
}

// OddAsphere is a conic base plus all-power polynomial terms:
// sag = conic(r) + Σ Cᵢ·r^(i+1).
type OddAsphere struct {
	Radius float64
	K      float64
	Coeffs []float64

	base conicBase
}

// NewOddAsphere validates and creates an odd asphere.
func NewOddAsphere(radius, conic float64, coeffs []float64) (*OddAsphere, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("geometry: odd asphere needs at least one polynomial coefficient")
	}
	base := asphereBase(radius)
	base.k = conic
	return &OddAsphere{Radius: radius, K: conic, Coeffs: coeffs, base: base}, nil
}

// Sag implements Geometry.
func (a *OddAsphere) Sag(x, y float64) float64 {
	r := math.Sqrt(x*x + y*y)
	sag := a.base.Sag(x, y)
	rp := r // r^(i+1), starting at r
	for _, c := range a.Coeffs {
		sag += c * rp
		rp *= r
	}
	return sag
}

func (a *OddAsphere) sagGradient(x, y float64) (float64, float64) {
	gx, gy := a.base.sagGradient(x, y)
	r := math.Sqrt(x*x + y*y)
	if r < 1e-12 {
		return gx, gy
	}
	// d/dr Σ Cᵢ r^(i+1) = Σ Cᵢ(i+1) r^i, distributed over x/r and y/r.
	dr := 0.0
	rp := 1.0 // r^i
	for i, c := range a.Coeffs {
		dr += c * float64(i+1) * rp
		rp *= r
	}
	return gx + dr*x/r, gy + dr*y/r
}

// Normal implements Geometry.
func (a *OddAsphere) Normal(x, y float64) core.Vec3 { return profileNormal(a, x, y) }

// Intersect implements Geometry by Newton iteration.
func (a *OddAsphere) Intersect(origin, dir core.Vec3) (float64, bool) {
	return newtonIntersect(a, origin, dir)
}

func (a *OddAsphere) encode() (string, any) {
	return "odd_asphere", asphereParams{Radius: a.Radius, Conic: a.K, Coeffs: a.Coeffs}
}
