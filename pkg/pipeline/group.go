// Package pipeline advances ray batches through an ordered sequence of
// surfaces, recording a per-surface state snapshot for downstream analyses.
// Per-ray failures (missed intersection, aperture clip, total internal
// reflection, solver non-convergence) zero the ray's intensity in place and
// the trace continues; only structural misconfiguration returns an error.
package pipeline

import (
	"fmt"
	"math"

	"github.com/opticore/opticore/pkg/interaction"
	"github.com/opticore/opticore/pkg/material"
	"github.com/opticore/opticore/pkg/ray"
	"github.com/opticore/opticore/pkg/surface"
)

// Group is an ordered surface pipeline with its per-surface snapshot cache.
// Surfaces are read-only during a trace; mutate them only between traces and
// call Rebuild afterwards.
type Group struct {
	Env material.Environment

	surfaces  []*surface.Surface
	snapshots []ray.Snapshot
}

// New creates a pipeline over the given surfaces.
func New(env material.Environment, surfaces ...*surface.Surface) *Group {
	return &Group{Env: env, surfaces: surfaces}
}

// NumSurfaces returns the number of surfaces in the pipeline.
func (g *Group) NumSurfaces() int { return len(g.surfaces) }

// SurfaceAt returns surface i.
func (g *Group) SurfaceAt(i int) *surface.Surface { return g.surfaces[i] }

// Surfaces returns the pipeline's surfaces in order.
func (g *Group) Surfaces() []*surface.Surface { return g.surfaces }

// Stop returns the aperture-stop surface and its index, or (nil, -1) when no
// surface is flagged.
func (g *Group) Stop() (*surface.Surface, int) {
	for i, s := range g.surfaces {
		if s.IsStop {
			return s, i
		}
	}
	return nil, -1
}

// Add appends a surface and invalidates cached snapshots.
func (g *Group) Add(s *surface.Surface) {
	g.surfaces = append(g.surfaces, s)
	g.Rebuild()
}

// Insert places a surface at index i and invalidates cached snapshots.
func (g *Group) Insert(i int, s *surface.Surface) error {
	if i < 0 || i > len(g.surfaces) {
		return fmt.Errorf("pipeline: insert index %d out of range [0, %d]", i, len(g.surfaces))
	}
	g.surfaces = append(g.surfaces[:i], append([]*surface.Surface{s}, g.surfaces[i:]...)...)
	g.Rebuild()
	return nil
}

// Remove deletes surface i and invalidates cached snapshots.
func (g *Group) Remove(i int) error {
	if i < 0 || i >= len(g.surfaces) {
		return fmt.Errorf("pipeline: remove index %d out of range [0, %d)", i, len(g.surfaces))
	}
	g.surfaces = append(g.surfaces[:i], g.surfaces[i+1:]...)
	g.Rebuild()
	return nil
}

// Rebuild drops the snapshot cache after surfaces were added, removed,
// reordered or mutated.
func (g *Group) Rebuild() { g.snapshots = nil }

// Snapshots returns the per-surface records of the most recent trace.
func (g *Group) Snapshots() []ray.Snapshot { return g.snapshots }

// SnapshotAt returns the post-interaction record of surface i from the most
// recent trace.
func (g *Group) SnapshotAt(i int) (ray.Snapshot, error) {
	if i < 0 || i >= len(g.snapshots) {
		return ray.Snapshot{}, fmt.Errorf("pipeline: no snapshot for surface %d (have %d)", i, len(g.snapshots))
	}
	return g.snapshots[i], nil
}

// Trace advances the batch through every surface in order and returns it.
// The batch is mutated in place; rays that fail a surface keep their slot
// with zero intensity for the rest of the trace.
func (g *Group) Trace(b *ray.Batch) (*ray.Batch, error) {
	if b == nil || b.Len() == 0 {
		return nil, fmt.Errorf("pipeline: empty ray batch")
	}
	if len(g.surfaces) == 0 {
		return nil, fmt.Errorf("pipeline: no surfaces")
	}
	g.snapshots = make([]ray.Snapshot, 0, len(g.surfaces))

	for _, s := range g.surfaces {
		s.Frame.BatchToLocal(b)
		b.CacheIncident()

		for i := 0; i < b.Len(); i++ {
			if !b.Alive(i) {
				continue
			}
			g.traceSurface(b, i, s)
		}

		s.Frame.BatchToGlobal(b)
		g.snapshots = append(g.snapshots, ray.TakeSnapshot(b))
	}
	return b, nil
}

// traceSurface runs the full per-ray surface step in the local frame:
// intersection, homogeneous propagation through the pre-medium, aperture
// test, and the boundary interaction.
func (g *Group) traceSurface(b *ray.Batch, i int, s *surface.Surface) {
	wavelength := b.Wavelength[i]
	n1 := s.Pre.IndexAt(wavelength, g.Env)
	n2 := n1
	if !s.Model.Reflective() {
		n2 = s.Post.IndexAt(wavelength, g.Env)
	}

	t, ok := s.Geometry.Intersect(b.Position(i), b.Direction(i))
	if !ok {
		b.Clip(i)
		return
	}
	advance(b, i, t, n1)

	x, y := b.X[i], b.Y[i]
	if s.Aperture != nil && !s.Aperture.Contains(x, y) {
		b.Clip(i)
		return
	}

	normal := s.Geometry.Normal(x, y)
	ctx := interaction.Context{
		N1:         n1,
		N2:         n2,
		Wavelength: wavelength,
		K0:         2 * math.Pi / (wavelength * 1e-3),
	}
	s.Model.Interact(b, i, normal, ctx)
}
