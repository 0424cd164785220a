package surface

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/opticore/opticore/pkg/core"
)

// Aperture is the physical clipping predicate of a surface, evaluated at the
// intersection point in local coordinates. A nil Aperture means unbounded.
type Aperture interface {
	Contains(x, y float64) bool

	encode() (string, any)
}

// Circular is a centered circular aperture.
type Circular struct {
	Radius float64 `json:"radius"`
}

// NewCircular validates and creates a circular aperture.
func NewCircular(radius float64) (Circular, error) {
	if radius <= 0 {
		return Circular{}, fmt.Errorf("surface: circular aperture radius %g, must be positive", radius)
	}
	return Circular{Radius: radius}, nil
}

// Contains implements Aperture.
func (c Circular) Contains(x, y float64) bool {
	return x*x+y*y <= c.Radius*c.Radius
}

func (c Circular) encode() (string, any) { return "circular", c }

// Annular is a centered ring aperture, the usual model for a secondary
// mirror obscuration.
type Annular struct {
	Inner float64 `json:"inner"`
	Outer float64 `json:"outer"`
}

// NewAnnular validates and creates an annular aperture.
func NewAnnular(inner, outer float64) (Annular, error) {
	if inner < 0 || outer <= inner {
		return Annular{}, fmt.Errorf("surface: annular aperture radii (%g, %g), need 0 <= inner < outer", inner, outer)
	}
	return Annular{Inner: inner, Outer: outer}, nil
}

// Contains implements Aperture.
func (a Annular) Contains(x, y float64) bool {
	r2 := x*x + y*y
	return r2 >= a.Inner*a.Inner && r2 <= a.Outer*a.Outer
}

func (a Annular) encode() (string, any) { return "annular", a }

// Rectangular is a centered rectangular aperture.
type Rectangular struct {
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
}

// NewRectangular validates and creates a rectangular aperture.
func NewRectangular(halfWidth, halfHeight float64) (Rectangular, error) {
	if halfWidth <= 0 || halfHeight <= 0 {
		return Rectangular{}, fmt.Errorf("surface: rectangular aperture half sizes (%g, %g), must be positive", halfWidth, halfHeight)
	}
	return Rectangular{HalfWidth: halfWidth, HalfHeight: halfHeight}, nil
}

// Contains implements Aperture.
func (r Rectangular) Contains(x, y float64) bool {
	return math.Abs(x) <= r.HalfWidth && math.Abs(y) <= r.HalfHeight
}

func (r Rectangular) encode() (string, any) { return "rectangular", r }

var apertureDecoders = map[string]func(json.RawMessage) (Aperture, error){
	"circular": func(raw json.RawMessage) (Aperture, error) {
		var c Circular
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return NewCircular(c.Radius)
	},
	"annular": func(raw json.RawMessage) (Aperture, error) {
		var a Annular
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return NewAnnular(a.Inner, a.Outer)
	},
	"rectangular": func(raw json.RawMessage) (Aperture, error) {
		var r Rectangular
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return NewRectangular(r.HalfWidth, r.HalfHeight)
	},
}

// EncodeAperture serializes an aperture with its registry type tag.
func EncodeAperture(a Aperture) (core.Encoded, error) {
	tag, params := a.encode()
	return core.NewEncoded(tag, params)
}

// DecodeAperture resolves a serialized aperture through the static registry.
func DecodeAperture(e core.Encoded) (Aperture, error) {
	dec, ok := apertureDecoders[e.Type]
	if !ok {
		return nil, fmt.Errorf("surface: unknown aperture type %q", e.Type)
	}
	return dec(e.Params)
}
