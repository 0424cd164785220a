// Package phase provides the phase-profile strategies behind the
// generalized-Snell interaction model. A profile is a pure function of the
// local intersection coordinates (and, for dispersive variants, wavelength);
// all directional physics lives in the interaction model that consumes it.
package phase

import (
	"encoding/json"
	"fmt"

	"github.com/opticore/opticore/pkg/core"
)

// Profile is the phase strategy consumed by the generalized-Snell
// interaction. Phases are in radians, gradients in rad/mm, coordinates in
// the surface's local frame, wavelengths in µm.
type Profile interface {
	// Phase returns φ(x, y) at the given wavelength.
	Phase(x, y, wavelengthUm float64) float64

	// Gradient returns (∂φ/∂x, ∂φ/∂y, ∂φ/∂z).
	Gradient(x, y, wavelengthUm float64) (gx, gy, gz float64)

	// ParaxialGradient returns the on-axis ∂φ/∂y used by paraxial tracing.
	ParaxialGradient(y, wavelengthUm float64) float64

	// Efficiency is the fraction of intensity carried into the traced
	// order, in [0, 1].
	Efficiency() float64

	encode() (string, any, error)
}

func validEfficiency(eff float64) error {
	if eff < 0 || eff > 1 {
		return fmt.Errorf("phase: efficiency %g, must lie in [0, 1]", eff)
	}
	return nil
}

var decoders = map[string]func(json.RawMessage) (Profile, error){
	"radial_poly": func(raw json.RawMessage) (Profile, error) {
		var p radialPolyParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewRadialPoly(p.Coeffs, p.Eff)
	},
	"linear_grating": func(raw json.RawMessage) (Profile, error) {
		var p linearGratingParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewLinearGrating(p.Order, p.Period, p.Orientation, p.Eff)
	},
	"grid": func(raw json.RawMessage) (Profile, error) {
		var p gridParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewGrid(p.Xs, p.Ys, p.Values, p.Eff)
	},
	"zernike": func(raw json.RawMessage) (Profile, error) {
		var p zernikeParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewZernike(p.Coeffs, p.NormRadius, p.Eff)
	},
	"height_map": decodeHeightMap,
}

// Encode serializes a profile with its registry type tag.
func Encode(p Profile) (core.Encoded, error) {
	tag, params, err := p.encode()
	if err != nil {
		return core.Encoded{}, err
	}
	return core.NewEncoded(tag, params)
}

// Decode resolves a serialized profile through the static registry.
func Decode(e core.Encoded) (Profile, error) {
	dec, ok := decoders[e.Type]
	if !ok {
		return nil, fmt.Errorf("phase: unknown profile type %q", e.Type)
	}
	return dec(e.Params)
}
