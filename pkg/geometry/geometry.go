// Package geometry provides the surface-shape abstraction: signed sag,
// outward normals, and ray intersection for every shape family the engine
// traces. Shapes are stateless with respect to rays; intersection failure is
// reported through the ok return and never through an error, because the
// pipeline's recovery is always the same (clip the ray).
package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/opticore/opticore/pkg/core"
)

// Geometry is the shape contract consumed by the surface pipeline. All
// coordinates are in the surface's local frame, with the vertex at the
// origin and the optical axis along +z.
type Geometry interface {
	// Sag returns the z-displacement of the surface at (x, y) relative to
	// its vertex.
	Sag(x, y float64) float64

	// Normal returns the outward unit normal at the surface point above
	// (x, y), oriented toward +z.
	Normal(x, y float64) core.Vec3

	// Intersect returns the smallest non-negative distance t along the ray
	// at which origin + t·dir lies on the surface. ok is false when no
	// forward intersection exists or the iterative solver fails to
	// converge; the caller clips the ray in that case.
	Intersect(origin, dir core.Vec3) (t float64, ok bool)

	encode() (string, any)
}

// Decoders for every shape family, keyed by serialization type tag. Built
// once here rather than populated by registration side effects so the
// variant set stays closed and auditable.
var decoders = map[string]func(json.RawMessage) (Geometry, error){
	"plane": func(raw json.RawMessage) (Geometry, error) {
		return Plane{}, nil
	},
	"conic": func(raw json.RawMessage) (Geometry, error) {
		var p conicParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewConic(p.Radius, p.Conic)
	},
	"even_asphere": func(raw json.RawMessage) (Geometry, error) {
		var p asphereParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewEvenAsphere(p.Radius, p.Conic, p.Coeffs)
	},
	"odd_asphere": func(raw json.RawMessage) (Geometry, error) {
		var p asphereParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewOddAsphere(p.Radius, p.Conic, p.Coeffs)
	},
	"grating_relief": func(raw json.RawMessage) (Geometry, error) {
		var p gratingReliefParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewGratingRelief(p.Radius, p.Conic, p.Amplitude, p.Period, p.Orientation)
	},
	"nurbs": func(raw json.RawMessage) (Geometry, error) {
		var p nurbsParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return newNURBSFromParams(p)
	},
}

// Encode serializes a geometry with its registry type tag.
func Encode(g Geometry) (core.Encoded, error) {
	tag, params := g.encode()
	return core.NewEncoded(tag, params)
}

// Decode resolves a serialized geometry through the static registry.
func Decode(e core.Encoded) (Geometry, error) {
	dec, ok := decoders[e.Type]
	if !ok {
		return nil, fmt.Errorf("geometry: unknown type %q", e.Type)
	}
	return dec(e.Params)
}
