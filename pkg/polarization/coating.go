package polarization

import (
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/opticore/opticore/pkg/core"
)

// Coating produces the s and p amplitude response of an interface. It runs
// after the geometric direction update; its amplitudes feed both the Jones
// composition and the intensity scale.
type Coating interface {
	// Amplitudes returns (as, ap) for the given incidence cosine, media and
	// wavelength. reflect selects the reflected branch.
	Amplitudes(cosI float64, n1, n2 complex128, wavelengthUm float64, reflect bool) (as, ap complex128)

	encode() (string, any)
}

// FresnelCoating is the bare-interface response computed from the Fresnel
// equations, the default when a coated surface gives no explicit stack.
type FresnelCoating struct{}

// Amplitudes implements Coating.
func (FresnelCoating) Amplitudes(cosI float64, n1, n2 complex128, _ float64, reflect bool) (complex128, complex128) {
	c := Fresnel(cosI, n1, n2)
	if reflect {
		return c.Rs, c.Rp
	}
	return c.Ts, c.Tp
}

func (FresnelCoating) encode() (string, any) { return "fresnel", struct{}{} }

// Diattenuator is an ideal partial polarizer with fixed s and p power
// transmittances.
type Diattenuator struct {
	Ts float64 `json:"ts"`
	Tp float64 `json:"tp"`
}

// NewDiattenuator validates and creates a diattenuator coating.
func NewDiattenuator(ts, tp float64) (Diattenuator, error) {
	if ts < 0 || ts > 1 || tp < 0 || tp > 1 {
		return Diattenuator{}, fmt.Errorf("polarization: diattenuator transmittances (%g, %g), must lie in [0, 1]", ts, tp)
	}
	return Diattenuator{Ts: ts, Tp: tp}, nil
}

// Amplitudes implements Coating.
func (d Diattenuator) Amplitudes(_ float64, _, _ complex128, _ float64, _ bool) (complex128, complex128) {
	return complex(math.Sqrt(d.Ts), 0), complex(math.Sqrt(d.Tp), 0)
}

func (d Diattenuator) encode() (string, any) { return "diattenuator", d }

// Retarder is an ideal lossless retarder applying a phase delta between the
// s and p components.
type Retarder struct {
	Delta float64 `json:"delta"` // radians
}

// Amplitudes implements Coating.
func (r Retarder) Amplitudes(_ float64, _, _ complex128, _ float64, _ bool) (complex128, complex128) {
	return 1, cmplx.Exp(complex(0, r.Delta))
}

func (r Retarder) encode() (string, any) { return "retarder", r }

// IntensityScale converts coating amplitudes into the unpolarized power
// factor applied to ray intensity: the mean of |as|² and |ap|², with the
// projected-area correction on the transmitted branch.
func IntensityScale(as, ap complex128, cosI float64, n1, n2 complex128, reflect bool) float64 {
	scale := (real(as*cmplx.Conj(as)) + real(ap*cmplx.Conj(ap))) / 2
	if !reflect {
		ct := TransmittedCosine(cosI, n1, n2)
		denom := real(n1) * cosI
		if denom > 1e-12 {
			scale *= real(n2*ct) / denom
		}
	}
	return scale
}

var coatingDecoders = map[string]func(json.RawMessage) (Coating, error){
	"fresnel": func(json.RawMessage) (Coating, error) { return FresnelCoating{}, nil },
	"diattenuator": func(raw json.RawMessage) (Coating, error) {
		var d Diattenuator
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return NewDiattenuator(d.Ts, d.Tp)
	},
	"retarder": func(raw json.RawMessage) (Coating, error) {
		var r Retarder
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return r, nil
	},
}

// EncodeCoating serializes a coating with its registry type tag.
func EncodeCoating(c Coating) (core.Encoded, error) {
	tag, params := c.encode()
	return core.NewEncoded(tag, params)
}

// DecodeCoating resolves a serialized coating through the static registry.
func DecodeCoating(e core.Encoded) (Coating, error) {
	dec, ok := coatingDecoders[e.Type]
	if !ok {
		return nil, fmt.Errorf("polarization: unknown coating type %q", e.Type)
	}
	return dec(e.Params)
}
