// Package surface composes a geometry, an interaction model, a coordinate
// frame, the bounding media and a physical aperture into one traceable
// surface. Surfaces never own rays; they are transformation rules applied by
// the pipeline.
package surface

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/opticore/opticore/pkg/frame"
	"github.com/opticore/opticore/pkg/geometry"
	"github.com/opticore/opticore/pkg/interaction"
	"github.com/opticore/opticore/pkg/material"
)

// Surface is one element of the sequential pipeline.
type Surface struct {
	ID      string
	Comment string

	Frame    *frame.Frame
	Geometry geometry.Geometry
	Model    interaction.Model

	// Pre is the medium rays travel through to reach this surface; Post is
	// the medium behind it. For reflective models Post is ignored and the
	// pipeline reuses Pre on the outgoing side.
	Pre, Post material.Medium

	// Aperture clips rays at the intersection point; nil means unbounded.
	Aperture Aperture

	// Thickness is the signed axial distance to the next surface, negative
	// for propagation in local −z after a fold.
	Thickness float64

	IsStop bool
}

// Config collects the pieces of a surface for New.
type Config struct {
	ID        string
	Comment   string
	Frame     *frame.Frame
	Geometry  geometry.Geometry
	Model     interaction.Model
	Pre, Post material.Medium
	Aperture  Aperture
	Thickness float64
	IsStop    bool
}

// New validates and assembles a surface, assigning a fresh identifier when
// the config leaves ID empty.
func New(cfg Config) (*Surface, error) {
	if cfg.Geometry == nil {
		return nil, fmt.Errorf("surface: geometry is required")
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("surface: interaction model is required")
	}
	if cfg.Pre == nil {
		return nil, fmt.Errorf("surface: pre medium is required")
	}
	post := cfg.Post
	if post == nil {
		if !cfg.Model.Reflective() {
			return nil, fmt.Errorf("surface: post medium is required for transmissive surfaces")
		}
		post = cfg.Pre
	}
	f := cfg.Frame
	if f == nil {
		f = frame.Axial(0)
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Surface{
		ID:        id,
		Comment:   cfg.Comment,
		Frame:     f,
		Geometry:  cfg.Geometry,
		Model:     cfg.Model,
		Pre:       cfg.Pre,
		Post:      post,
		Aperture:  cfg.Aperture,
		Thickness: cfg.Thickness,
		IsStop:    cfg.IsStop,
	}, nil
}
