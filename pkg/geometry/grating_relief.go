package geometry

import (
	"fmt"
	"math"

	"github.com/opticore/opticore/pkg/core"
)

type gratingReliefParams struct {
	Radius      float64 `json:"radius"`
	Conic       float64 `json:"conic"`
	Amplitude   float64 `json:"amplitude"`
	Period      float64 `json:"period"`
	Orientation float64 `json:"orientation"`
}

// GratingRelief is a conic substrate modulated by a cosinusoidal groove
// relief: sag = conic(r) + A·cos(2π·u/d) where u is the in-plane coordinate
// along the groove normal, rotated by the orientation angle. The relief is
// the physical groove profile; the diffraction itself is an interaction
// model concern.
type GratingRelief struct {
	Radius      float64
	K           float64
	Amplitude   float64 // groove depth amplitude, mm
	Period      float64 // groove period, mm
	Orientation float64 // groove-normal rotation in the tangent plane, rad

	base conicBase
	cosO float64
	sinO float64
}

// NewGratingRelief validates and creates a grating-modulated substrate.
// Radius 0 means a flat substrate.
func NewGratingRelief(radius, conic, amplitude, period, orientation float64) (*GratingRelief, error) {
	if period <= 0 {
		return nil, fmt.Errorf("geometry: grating period %g, must be positive", period)
	}
	base := asphereBase(radius)
	base.k = conic
	return &GratingRelief{
		Radius:      radius,
		K:           conic,
		Amplitude:   amplitude,
		Period:      period,
		Orientation: orientation,
		base:        base,
		cosO:        math.Cos(orientation),
		sinO:        math.Sin(orientation),
	}, nil
}

// Sag implements Geometry.
func (g *GratingRelief) Sag(x, y float64) float64 {
	u := x*g.cosO + y*g.sinO
	return g.base.Sag(x, y) + g.Amplitude*math.Cos(2*math.Pi*u/g.Period)
}

func (g *GratingRelief) sagGradient(x, y float64) (float64, float64) {
	gx, gy := g.base.sagGradient(x, y)
	u := x*g.cosO + y*g.sinO
	du := -g.Amplitude * 2 * math.Pi / g.Period * math.Sin(2*math.Pi*u/g.Period)
	return gx + du*g.cosO, gy + du*g.sinO
}

// Normal implements Geometry.
func (g *GratingRelief) Normal(x, y float64) core.Vec3 { return profileNormal(g, x, y) }

// Intersect implements Geometry by Newton iteration.
func (g *GratingRelief) Intersect(origin, dir core.Vec3) (float64, bool) {
	return newtonIntersect(g, origin, dir)
}

func (g *GratingRelief) encode() (string, any) {
	return "grating_relief", gratingReliefParams{
		Radius:      g.Radius,
		Conic:       g.K,
		Amplitude:   g.Amplitude,
		Period:      g.Period,
		Orientation: g.Orientation,
	}
}
