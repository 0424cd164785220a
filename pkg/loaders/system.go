// Package loaders assembles optical systems from their JSON descriptions and
// writes trace snapshots to compressed dumps. The polymorphic pieces
// (geometries, interaction models, phase profiles, media, apertures) resolve
// through each family's static decode registry.
package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/frame"
	"github.com/opticore/opticore/pkg/geometry"
	"github.com/opticore/opticore/pkg/interaction"
	"github.com/opticore/opticore/pkg/log"
	"github.com/opticore/opticore/pkg/material"
	"github.com/opticore/opticore/pkg/pipeline"
	"github.com/opticore/opticore/pkg/surface"
)

var logger = log.New("loaders")

// FrameConfig positions a surface. Z is optional: when omitted the surface
// sits at the running axial position accumulated from thicknesses.
type FrameConfig struct {
	X  float64  `json:"x,omitempty"`
	Y  float64  `json:"y,omitempty"`
	Z  *float64 `json:"z,omitempty"`
	RX float64  `json:"rx,omitempty"`
	RY float64  `json:"ry,omitempty"`
	RZ float64  `json:"rz,omitempty"`
}

// SurfaceConfig is the JSON description of one surface.
type SurfaceConfig struct {
	Comment     string        `json:"comment,omitempty"`
	Frame       *FrameConfig  `json:"frame,omitempty"`
	Geometry    core.Encoded  `json:"geometry"`
	Interaction core.Encoded  `json:"interaction"`
	Material    *core.Encoded `json:"material,omitempty"` // post medium; defaults to the pre medium for mirrors
	Aperture    *core.Encoded `json:"aperture,omitempty"`
	Thickness   float64       `json:"thickness,omitempty"`
	Stop        bool          `json:"stop,omitempty"`
}

// SystemConfig is the JSON description of a whole system. The object medium
// fills the space before the first surface.
type SystemConfig struct {
	Name         string                `json:"name,omitempty"`
	Environment  *material.Environment `json:"environment,omitempty"`
	ObjectMedium *core.Encoded         `json:"object_medium,omitempty"`
	Surfaces     []SurfaceConfig       `json:"surfaces"`
}

// LoadSystem reads a JSON system description and assembles the pipeline.
func LoadSystem(r io.Reader) (*pipeline.Group, error) {
	var cfg SystemConfig
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("loaders: parsing system: %w", err)
	}
	return BuildSystem(cfg)
}

// LoadSystemFile loads a system description from disk.
func LoadSystemFile(path string) (*pipeline.Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSystem(f)
}

// BuildSystem assembles a pipeline from a parsed configuration. Surface
// frames default to the optical axis at the running thickness sum; the pre
// medium of each surface is the post medium of the previous one.
func BuildSystem(cfg SystemConfig) (*pipeline.Group, error) {
	if len(cfg.Surfaces) == 0 {
		return nil, fmt.Errorf("loaders: system has no surfaces")
	}

	env := material.DefaultEnvironment()
	if cfg.Environment != nil {
		env = *cfg.Environment
	}

	var pre material.Medium = material.Air()
	if cfg.ObjectMedium != nil {
		m, err := material.Decode(*cfg.ObjectMedium)
		if err != nil {
			return nil, fmt.Errorf("loaders: object medium: %w", err)
		}
		pre = m
	}

	surfaces := make([]*surface.Surface, 0, len(cfg.Surfaces))
	axialZ := 0.0
	for idx, sc := range cfg.Surfaces {
		geom, err := geometry.Decode(sc.Geometry)
		if err != nil {
			return nil, fmt.Errorf("loaders: surface %d geometry: %w", idx, err)
		}
		model, err := interaction.Decode(sc.Interaction)
		if err != nil {
			return nil, fmt.Errorf("loaders: surface %d interaction: %w", idx, err)
		}

		var post material.Medium
		if sc.Material != nil {
			post, err = material.Decode(*sc.Material)
			if err != nil {
				return nil, fmt.Errorf("loaders: surface %d material: %w", idx, err)
			}
		}

		var aper surface.Aperture
		if sc.Aperture != nil {
			aper, err = surface.DecodeAperture(*sc.Aperture)
			if err != nil {
				return nil, fmt.Errorf("loaders: surface %d aperture: %w", idx, err)
			}
		}

		f := buildFrame(sc.Frame, axialZ)
		s, err := surface.New(surface.Config{
			Comment:   sc.Comment,
			Frame:     f,
			Geometry:  geom,
			Model:     model,
			Pre:       pre,
			Post:      post,
			Aperture:  aper,
			Thickness: sc.Thickness,
			IsStop:    sc.Stop,
		})
		if err != nil {
			return nil, fmt.Errorf("loaders: surface %d: %w", idx, err)
		}
		surfaces = append(surfaces, s)

		axialZ = f.Z + sc.Thickness
		pre = s.Post
	}

	logger.Infof("assembled system %q with %d surfaces", cfg.Name, len(surfaces))
	return pipeline.New(env, surfaces...), nil
}

func buildFrame(fc *FrameConfig, axialZ float64) *frame.Frame {
	if fc == nil {
		return frame.Axial(axialZ)
	}
	z := axialZ
	if fc.Z != nil {
		z = *fc.Z
	}
	return frame.New(fc.X, fc.Y, z, fc.RX, fc.RY, fc.RZ)
}
