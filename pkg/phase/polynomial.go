package phase

import (
	"fmt"
	"math"
)

type radialPolyParams struct {
	Coeffs []float64 `json:"coeffs"`
	Eff    float64   `json:"efficiency"`
}

// RadialPoly is a rotationally symmetric phase profile
// φ(r) = Σ Cᵢ·r^(2i+2), the usual description of a diffractive lens.
type RadialPoly struct {
	Coeffs []float64 // rad/mm^(2i+2)
	Eff    float64
}

// NewRadialPoly validates and creates a radial polynomial profile.
func NewRadialPoly(coeffs []float64, eff float64) (*RadialPoly, error) {
	if err := validEfficiency(eff); err != nil {
		return nil, err
	}
	return &RadialPoly{Coeffs: coeffs, Eff: eff}, nil
}

// Phase implements Profile.
func (p *RadialPoly) Phase(x, y, _ float64) float64 {
	r2 := x*x + y*y
	phi := 0.0
	rp := r2
	for _, c := range p.Coeffs {
		phi += c * rp
		rp *= r2
	}
	return phi
}

// Gradient implements Profile.
func (p *RadialPoly) Gradient(x, y, _ float64) (float64, float64, float64) {
	r2 := x*x + y*y
	// d/dr Σ Cᵢ r^(2i+2) = Σ Cᵢ(2i+2) r^(2i+1), distributed over x and y.
	rp := 1.0
	gx, gy := 0.0, 0.0
	for i, c := range p.Coeffs {
		s := c * float64(2*i+2) * rp
		gx += s * x
		gy += s * y
		rp *= r2
	}
	return gx, gy, 0
}

// ParaxialGradient implements Profile.
func (p *RadialPoly) ParaxialGradient(y, wavelengthUm float64) float64 {
	_, gy, _ := p.Gradient(0, y, wavelengthUm)
	return gy
}

// Efficiency implements Profile.
func (p *RadialPoly) Efficiency() float64 { return p.Eff }

func (p *RadialPoly) encode() (string, any, error) {
	return "radial_poly", radialPolyParams{Coeffs: p.Coeffs, Eff: p.Eff}, nil
}

type linearGratingParams struct {
	Order       int     `json:"order"`
	Period      float64 `json:"period"`
	Orientation float64 `json:"orientation"`
	Eff         float64 `json:"efficiency"`
}

// LinearGrating is the phase-profile form of a linear grating:
// φ = 2π·m·u/d with u the coordinate along the groove normal. Its gradient
// reproduces the grating equation term m·(2π/d)·ĝ exactly.
type LinearGrating struct {
	Order       int
	Period      float64 // mm
	Orientation float64 // rad
	Eff         float64

	cosO, sinO float64
}

// NewLinearGrating validates and creates a linear grating profile.
func NewLinearGrating(order int, period, orientation, eff float64) (*LinearGrating, error) {
	if period <= 0 {
		return nil, fmt.Errorf("phase: grating period %g, must be positive", period)
	}
	if err := validEfficiency(eff); err != nil {
		return nil, err
	}
	return &LinearGrating{
		Order:       order,
		Period:      period,
		Orientation: orientation,
		Eff:         eff,
		cosO:        math.Cos(orientation),
		sinO:        math.Sin(orientation),
	}, nil
}

// Phase implements Profile.
func (g *LinearGrating) Phase(x, y, _ float64) float64 {
	u := x*g.cosO + y*g.sinO
	return 2 * math.Pi * float64(g.Order) * u / g.Period
}

// Gradient implements Profile.
func (g *LinearGrating) Gradient(_, _, _ float64) (float64, float64, float64) {
	s := 2 * math.Pi * float64(g.Order) / g.Period
	return s * g.cosO, s * g.sinO, 0
}

// ParaxialGradient implements Profile.
func (g *LinearGrating) ParaxialGradient(_, _ float64) float64 {
	return 2 * math.Pi * float64(g.Order) / g.Period * g.sinO
}

// Efficiency implements Profile.
func (g *LinearGrating) Efficiency() float64 { return g.Eff }

func (g *LinearGrating) encode() (string, any, error) {
	return "linear_grating", linearGratingParams{
		Order:       g.Order,
		Period:      g.Period,
		Orientation: g.Orientation,
		Eff:         g.Eff,
	}, nil
}
