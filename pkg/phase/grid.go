package phase

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/material"
)

// bilinear is a rectilinear sample grid with bilinear interpolation and
// exact in-cell partial derivatives. Shared by the grid phase profile and
// the height-map profile.
type bilinear struct {
	xs, ys []float64
	vals   [][]float64 // [ix][iy]
}

func newBilinear(xs, ys []float64, vals [][]float64) (*bilinear, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("phase: grid needs at least 2 samples per axis, got %dx%d", len(xs), len(ys))
	}
	for _, axis := range [][]float64{xs, ys} {
		for i := 1; i < len(axis); i++ {
			if axis[i] <= axis[i-1] {
				return nil, fmt.Errorf("phase: grid axis is not strictly increasing at index %d", i)
			}
		}
	}
	if len(vals) != len(xs) {
		return nil, fmt.Errorf("phase: grid has %d value rows, want %d", len(vals), len(xs))
	}
	for i, row := range vals {
		if len(row) != len(ys) {
			return nil, fmt.Errorf("phase: grid value row %d has %d entries, want %d", i, len(row), len(ys))
		}
	}
	return &bilinear{xs: xs, ys: ys, vals: vals}, nil
}

// cell returns the lower index of the interval containing x, clamping to the
// grid so queries outside the sampled region extrapolate the edge cell.
func cell(axis []float64, x float64) int {
	lo, hi := 0, len(axis)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if axis[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// sample returns the interpolated value and its partial derivatives at (x, y).
func (b *bilinear) sample(x, y float64) (v, dx, dy float64) {
	i := cell(b.xs, x)
	j := cell(b.ys, y)
	x0, x1 := b.xs[i], b.xs[i+1]
	y0, y1 := b.ys[j], b.ys[j+1]
	fx := (x - x0) / (x1 - x0)
	fy := (y - y0) / (y1 - y0)

	v00 := b.vals[i][j]
	v10 := b.vals[i+1][j]
	v01 := b.vals[i][j+1]
	v11 := b.vals[i+1][j+1]

	v = v00*(1-fx)*(1-fy) + v10*fx*(1-fy) + v01*(1-fx)*fy + v11*fx*fy
	dx = ((v10-v00)*(1-fy) + (v11-v01)*fy) / (x1 - x0)
	dy = ((v01-v00)*(1-fx) + (v11-v10)*fx) / (y1 - y0)
	return v, dx, dy
}

type gridParams struct {
	Xs     []float64   `json:"xs"`
	Ys     []float64   `json:"ys"`
	Values [][]float64 `json:"values"`
	Eff    float64     `json:"efficiency"`
}

// Grid is an interpolated phase profile sampled on a rectilinear grid,
// the escape hatch for measured or externally optimized phase maps.
type Grid struct {
	Eff float64

	interp *bilinear
}

// NewGrid validates and creates a grid profile. Values are radians.
func NewGrid(xs, ys []float64, values [][]float64, eff float64) (*Grid, error) {
	if err := validEfficiency(eff); err != nil {
		return nil, err
	}
	interp, err := newBilinear(xs, ys, values)
	if err != nil {
		return nil, err
	}
	return &Grid{Eff: eff, interp: interp}, nil
}

// Phase implements Profile.
func (g *Grid) Phase(x, y, _ float64) float64 {
	v, _, _ := g.interp.sample(x, y)
	return v
}

// Gradient implements Profile.
func (g *Grid) Gradient(x, y, _ float64) (float64, float64, float64) {
	_, dx, dy := g.interp.sample(x, y)
	return dx, dy, 0
}

// ParaxialGradient implements Profile.
func (g *Grid) ParaxialGradient(y, wavelengthUm float64) float64 {
	_, gy, _ := g.Gradient(0, y, wavelengthUm)
	return gy
}

// Efficiency implements Profile.
func (g *Grid) Efficiency() float64 { return g.Eff }

func (g *Grid) encode() (string, any, error) {
	return "grid", gridParams{Xs: g.interp.xs, Ys: g.interp.ys, Values: g.interp.vals, Eff: g.Eff}, nil
}

type heightMapParams struct {
	Xs      []float64    `json:"xs"`
	Ys      []float64    `json:"ys"`
	Heights [][]float64  `json:"heights"`
	Medium  core.Encoded `json:"medium"`
	Eff     float64      `json:"efficiency"`
}

// HeightMap is a surface-relief phase profile: a physical height grid (mm)
// on a dispersive material, φ(x, y, λ) = k₀·(n(λ)−1)·h(x, y). Dispersion
// enters through the medium, so the same relief diffracts differently per
// wavelength.
type HeightMap struct {
	Medium material.Medium
	Eff    float64

	interp *bilinear
}

// NewHeightMap validates and creates a height-map profile.
func NewHeightMap(xs, ys []float64, heights [][]float64, medium material.Medium, eff float64) (*HeightMap, error) {
	if medium == nil {
		return nil, fmt.Errorf("phase: height map requires a medium")
	}
	if err := validEfficiency(eff); err != nil {
		return nil, err
	}
	interp, err := newBilinear(xs, ys, heights)
	if err != nil {
		return nil, err
	}
	return &HeightMap{Medium: medium, Eff: eff, interp: interp}, nil
}

// scale returns k₀·(n−1) at the given wavelength, in rad/mm.
func (h *HeightMap) scale(wavelengthUm float64) float64 {
	n := real(h.Medium.IndexAt(wavelengthUm, material.DefaultEnvironment()))
	k0 := 2 * math.Pi / (wavelengthUm * 1e-3)
	return k0 * (n - 1)
}

// Phase implements Profile.
func (h *HeightMap) Phase(x, y, wavelengthUm float64) float64 {
	v, _, _ := h.interp.sample(x, y)
	return h.scale(wavelengthUm) * v
}

// Gradient implements Profile.
func (h *HeightMap) Gradient(x, y, wavelengthUm float64) (float64, float64, float64) {
	_, dx, dy := h.interp.sample(x, y)
	s := h.scale(wavelengthUm)
	return s * dx, s * dy, 0
}

// ParaxialGradient implements Profile.
func (h *HeightMap) ParaxialGradient(y, wavelengthUm float64) float64 {
	_, gy, _ := h.Gradient(0, y, wavelengthUm)
	return gy
}

// Efficiency implements Profile.
func (h *HeightMap) Efficiency() float64 { return h.Eff }

func (h *HeightMap) encode() (string, any, error) {
	enc, err := material.Encode(h.Medium)
	if err != nil {
		return "", nil, err
	}
	return "height_map", heightMapParams{
		Xs:      h.interp.xs,
		Ys:      h.interp.ys,
		Heights: h.interp.vals,
		Medium:  enc,
		Eff:     h.Eff,
	}, nil
}

func decodeHeightMap(raw json.RawMessage) (Profile, error) {
	var p heightMapParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	medium, err := material.Decode(p.Medium)
	if err != nil {
		return nil, err
	}
	return NewHeightMap(p.Xs, p.Ys, p.Heights, medium, p.Eff)
}
