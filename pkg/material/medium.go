// Package material provides the refractive-index capability consumed by the
// trace engine. Media are pure functions of wavelength (and the ambient
// environment); everything else about glass catalogs lives outside the core.
package material

import (
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/opticore/opticore/pkg/core"
)

// Environment carries the ambient conditions a dispersion model may depend on.
type Environment struct {
	TemperatureC float64 `json:"temperature_c"`
	PressureAtm  float64 `json:"pressure_atm"`
}

// DefaultEnvironment is 20 °C at one atmosphere.
func DefaultEnvironment() Environment {
	return Environment{TemperatureC: 20, PressureAtm: 1}
}

// Medium is the refractive-index capability. The imaginary part of the
// returned index is the absorption coefficient used by Beer-Lambert
// attenuation during homogeneous propagation.
type Medium interface {
	// IndexAt returns the complex refractive index at the given wavelength
	// (µm) under the given environment.
	IndexAt(wavelengthUm float64, env Environment) complex128

	encode() (string, any)
}

// Constant is a non-dispersive medium with a fixed complex index.
type Constant struct {
	N float64 `json:"n"`
	K float64 `json:"k,omitempty"` // absorption coefficient
}

// NewConstant creates a constant-index medium.
func NewConstant(n float64) Constant { return Constant{N: n} }

// NewAbsorbing creates a constant-index medium with absorption coefficient k.
func NewAbsorbing(n, k float64) Constant { return Constant{N: n, K: k} }

// Vacuum returns the unit-index medium.
func Vacuum() Constant { return Constant{N: 1} }

// Air returns standard air at the reference wavelength, treated as
// non-dispersive. Close enough for the engine's bookkeeping; a catalog air
// model plugs in through the Medium interface when it matters.
func Air() Constant { return Constant{N: 1.000273} }

// IndexAt implements Medium.
func (c Constant) IndexAt(_ float64, _ Environment) complex128 {
	return complex(c.N, c.K)
}

func (c Constant) encode() (string, any) { return "constant", c }

// Sellmeier is the three-term Sellmeier dispersion model
// n² = 1 + Σ Bᵢλ²/(λ²−Cᵢ) with λ in µm.
type Sellmeier struct {
	B [3]float64 `json:"b"`
	C [3]float64 `json:"c"`
}

// NewSellmeier validates and creates a Sellmeier medium.
func NewSellmeier(b, c [3]float64) (Sellmeier, error) {
	for i := range c {
		if c[i] < 0 {
			return Sellmeier{}, fmt.Errorf("material: sellmeier C[%d] = %g, must be non-negative", i, c[i])
		}
	}
	return Sellmeier{B: b, C: c}, nil
}

// IndexAt implements Medium.
func (s Sellmeier) IndexAt(wavelengthUm float64, _ Environment) complex128 {
	l2 := wavelengthUm * wavelengthUm
	n2 := 1.0
	for i := 0; i < 3; i++ {
		n2 += s.B[i] * l2 / (l2 - s.C[i])
	}
	return cmplx.Sqrt(complex(n2, 0))
}

func (s Sellmeier) encode() (string, any) { return "sellmeier", s }

// Abbe is the two-parameter (n_d, V_d) glass model using a linear dispersion
// fit around the d line. Coarse, but it matches how lens prescriptions are
// commonly specified before a catalog glass is chosen.
type Abbe struct {
	Nd float64 `json:"nd"`
	Vd float64 `json:"vd"`
}

// NewAbbe validates and creates an Abbe-model medium.
func NewAbbe(nd, vd float64) (Abbe, error) {
	if vd <= 0 {
		return Abbe{}, fmt.Errorf("material: abbe number %g, must be positive", vd)
	}
	return Abbe{Nd: nd, Vd: vd}, nil
}

// IndexAt implements Medium.
func (a Abbe) IndexAt(wavelengthUm float64, _ Environment) complex128 {
	// d, F and C Fraunhofer lines in µm.
	const ld, lf, lc = 0.5875618, 0.4861327, 0.6562725
	slope := (a.Nd - 1) / (a.Vd * (1/(lf*lf) - 1/(lc*lc)))
	n := a.Nd + slope*(1/(wavelengthUm*wavelengthUm)-1/(ld*ld))
	return complex(n, 0)
}

func (a Abbe) encode() (string, any) { return "abbe", a }

// RealIndex returns the real part of a medium's index, the part that drives
// ray geometry and optical path length.
func RealIndex(m Medium, wavelengthUm float64, env Environment) float64 {
	return real(m.IndexAt(wavelengthUm, env))
}

// AbsorptionIndex returns the imaginary part of a medium's index.
func AbsorptionIndex(m Medium, wavelengthUm float64, env Environment) float64 {
	return imag(m.IndexAt(wavelengthUm, env))
}

var decoders = map[string]func(json.RawMessage) (Medium, error){
	"constant": func(raw json.RawMessage) (Medium, error) {
		var c Constant
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.N <= 0 || math.IsNaN(c.N) {
			return nil, fmt.Errorf("material: constant index %g, must be positive", c.N)
		}
		return c, nil
	},
	"sellmeier": func(raw json.RawMessage) (Medium, error) {
		var s Sellmeier
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return NewSellmeier(s.B, s.C)
	},
	"abbe": func(raw json.RawMessage) (Medium, error) {
		var a Abbe
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return NewAbbe(a.Nd, a.Vd)
	},
}

// Encode serializes a medium with its registry type tag.
func Encode(m Medium) (core.Encoded, error) {
	tag, params := m.encode()
	return core.NewEncoded(tag, params)
}

// Decode resolves a serialized medium through the static registry.
func Decode(e core.Encoded) (Medium, error) {
	dec, ok := decoders[e.Type]
	if !ok {
		return nil, fmt.Errorf("material: unknown medium type %q", e.Type)
	}
	return dec(e.Params)
}
