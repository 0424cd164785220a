// Package interaction provides the boundary-physics models applied at each
// surface: refraction/reflection by the vector Snell law, grating
// diffraction, and arbitrary phase profiles under the generalized Snell law.
// All three share one tangential-wavevector solver; per-ray optical
// impossibilities (total internal reflection, evanescent orders) clip the
// ray in place and never raise.
package interaction

import (
	"encoding/json"
	"fmt"

	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/polarization"
	"github.com/opticore/opticore/pkg/ray"
)

// Context carries the per-ray interface conditions resolved by the pipeline:
// media indices at the ray's wavelength and the vacuum wavenumber.
type Context struct {
	N1, N2     complex128
	Wavelength float64 // µm
	K0         float64 // 2π/λ, rad/mm
}

// Model is the boundary-physics contract. Interact updates direction,
// intensity, OPD and (when tracked) the polarization transfer matrix of ray
// i, given the outward unit normal at its intersection point in the local
// frame.
type Model interface {
	Interact(b *ray.Batch, i int, normal core.Vec3, ctx Context)

	// Reflective reports whether the model folds the path; the pipeline
	// then reuses the incident medium on the outgoing side.
	Reflective() bool

	encode() (string, any, error)
}

// applyPolarization composes the interface Jones matrix onto the ray's
// transfer matrix and scales intensity by the coating's power factor. A nil
// coating leaves intensity untouched; when polarization is tracked it falls
// back to the bare Fresnel response on transmission and to unit amplitudes
// on reflection (the pipeline hands reflective models an index-matched
// interface, where the Fresnel reflection amplitudes vanish).
func applyPolarization(b *ray.Batch, i int, inDir, outDir, normal core.Vec3, ctx Context, coat polarization.Coating, reflect bool) {
	if coat == nil && !b.HasPolarization() {
		return
	}
	cosI := inDir.Dot(normal)
	if cosI < 0 {
		cosI = -cosI
	}

	scaleIntensity := coat != nil
	var as, ap complex128
	switch {
	case coat != nil:
		as, ap = coat.Amplitudes(cosI, ctx.N1, ctx.N2, ctx.Wavelength, reflect)
	case reflect:
		as, ap = 1, 1
	default:
		as, ap = polarization.FresnelCoating{}.Amplitudes(cosI, ctx.N1, ctx.N2, ctx.Wavelength, false)
	}

	if b.HasPolarization() {
		m := polarization.InterfaceMatrix(inDir, outDir, normal, as, ap)
		polarization.Compose(b.P[i], m)
	}
	if scaleIntensity {
		b.Intensity[i] *= polarization.IntensityScale(as, ap, cosI, ctx.N1, ctx.N2, reflect)
	}
}

var decoders = map[string]func(json.RawMessage) (Model, error){
	"refraction": func(raw json.RawMessage) (Model, error) {
		var p refractionParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		coat, err := decodeCoating(p.Coating)
		if err != nil {
			return nil, err
		}
		return &Refraction{Reflect: p.Reflect, Coating: coat}, nil
	},
	"grating": func(raw json.RawMessage) (Model, error) {
		var p gratingParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		coat, err := decodeCoating(p.Coating)
		if err != nil {
			return nil, err
		}
		return NewGrating(p.Order, p.Period, p.Orientation, p.Reflect, coat)
	},
	"phase": decodePhaseSurface,
}

func decodeCoating(e *core.Encoded) (polarization.Coating, error) {
	if e == nil {
		return nil, nil
	}
	return polarization.DecodeCoating(*e)
}

func encodeCoating(c polarization.Coating) (*core.Encoded, error) {
	if c == nil {
		return nil, nil
	}
	enc, err := polarization.EncodeCoating(c)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// Encode serializes a model with its registry type tag.
func Encode(m Model) (core.Encoded, error) {
	tag, params, err := m.encode()
	if err != nil {
		return core.Encoded{}, err
	}
	return core.NewEncoded(tag, params)
}

// Decode resolves a serialized model through the static registry.
func Decode(e core.Encoded) (Model, error) {
	dec, ok := decoders[e.Type]
	if !ok {
		return nil, fmt.Errorf("interaction: unknown model type %q", e.Type)
	}
	return dec(e.Params)
}
