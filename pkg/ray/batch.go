// Package ray holds the structure-of-arrays ray batch that the surface
// pipeline advances through an optical system. A batch is never resized
// during a trace: rays that fail intersection, aperture or total internal
// reflection tests are zero-weighted in place so array indices stay aligned
// across surfaces.
package ray

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/opticore/opticore/pkg/core"
)

// Batch holds the state of N rays traced simultaneously.
// Positions are in mm, wavelengths in µm, direction cosines unit-norm.
type Batch struct {
	X, Y, Z    []float64 // position
	L, M, N    []float64 // direction cosines
	Wavelength []float64 // µm
	Intensity  []float64 // 0 marks a clipped (dead) ray
	OPD        []float64 // accumulated optical path length, mm

	// P is the per-ray 3x3 complex polarization transfer matrix in global
	// coordinates. Nil unless polarization tracking is enabled.
	P []*mat.CDense

	// Incident-direction cache, written before each interaction. Consumed
	// by phase-profile interactions and paraxial bookkeeping.
	L0, M0, N0 []float64
}

// New creates a batch of n rays at the origin travelling along +z with unit
// intensity and the given wavelength.
func New(n int, wavelengthUm float64) *Batch {
	b := &Batch{
		X: make([]float64, n), Y: make([]float64, n), Z: make([]float64, n),
		L: make([]float64, n), M: make([]float64, n), N: make([]float64, n),
		Wavelength: make([]float64, n),
		Intensity:  make([]float64, n),
		OPD:        make([]float64, n),
	}
	for i := 0; i < n; i++ {
		b.N[i] = 1
		b.Wavelength[i] = wavelengthUm
		b.Intensity[i] = 1
	}
	return b
}

// FromArrays builds a batch from caller-owned slices, validating that the
// leading lengths agree.
func FromArrays(x, y, z, l, m, n, wavelength, intensity []float64) (*Batch, error) {
	size := len(x)
	for name, s := range map[string][]float64{
		"y": y, "z": z, "L": l, "M": m, "N": n,
		"wavelength": wavelength, "intensity": intensity,
	} {
		if len(s) != size {
			return nil, fmt.Errorf("ray batch: %s has length %d, want %d", name, len(s), size)
		}
	}
	return &Batch{
		X: x, Y: y, Z: z, L: l, M: m, N: n,
		Wavelength: wavelength,
		Intensity:  intensity,
		OPD:        make([]float64, size),
	}, nil
}

// Len returns the number of rays in the batch, dead rays included.
func (b *Batch) Len() int { return len(b.X) }

// Alive reports whether ray i still carries intensity.
func (b *Batch) Alive(i int) bool { return b.Intensity[i] > 0 }

// Clip marks ray i dead. The ray keeps its array slot and its last state so
// downstream indices stay aligned.
func (b *Batch) Clip(i int) { b.Intensity[i] = 0 }

// Position returns the position of ray i.
func (b *Batch) Position(i int) core.Vec3 {
	return core.Vec3{X: b.X[i], Y: b.Y[i], Z: b.Z[i]}
}

// SetPosition overwrites the position of ray i.
func (b *Batch) SetPosition(i int, p core.Vec3) {
	b.X[i], b.Y[i], b.Z[i] = p.X, p.Y, p.Z
}

// Direction returns the direction cosines of ray i.
func (b *Batch) Direction(i int) core.Vec3 {
	return core.Vec3{X: b.L[i], Y: b.M[i], Z: b.N[i]}
}

// SetDirection overwrites the direction of ray i, renormalizing to keep the
// unit-norm invariant against accumulated rounding.
func (b *Batch) SetDirection(i int, d core.Vec3) {
	d = d.Normalize()
	b.L[i], b.M[i], b.N[i] = d.X, d.Y, d.Z
}

// EnablePolarization allocates identity transfer matrices for every ray.
// Calling it twice is a no-op.
func (b *Batch) EnablePolarization() {
	if b.P != nil {
		return
	}
	b.P = make([]*mat.CDense, b.Len())
	for i := range b.P {
		p := mat.NewCDense(3, 3, nil)
		p.Set(0, 0, 1)
		p.Set(1, 1, 1)
		p.Set(2, 2, 1)
		b.P[i] = p
	}
}

// HasPolarization reports whether transfer matrices are being tracked.
func (b *Batch) HasPolarization() bool { return b.P != nil }

// CacheIncident records the current directions into L0/M0/N0, allocating the
// cache on first use.
func (b *Batch) CacheIncident() {
	if b.L0 == nil {
		b.L0 = make([]float64, b.Len())
		b.M0 = make([]float64, b.Len())
		b.N0 = make([]float64, b.Len())
	}
	copy(b.L0, b.L)
	copy(b.M0, b.M)
	copy(b.N0, b.N)
}

// Incident returns the cached pre-interaction direction of ray i. Before the
// first CacheIncident call it falls back to the live direction.
func (b *Batch) Incident(i int) core.Vec3 {
	if b.L0 == nil {
		return b.Direction(i)
	}
	return core.Vec3{X: b.L0[i], Y: b.M0[i], Z: b.N0[i]}
}

// Clone deep-copies the batch, transfer matrices included.
func (b *Batch) Clone() *Batch {
	out := &Batch{
		X: append([]float64(nil), b.X...),
		Y: append([]float64(nil), b.Y...),
		Z: append([]float64(nil), b.Z...),
		L: append([]float64(nil), b.L...),
		M: append([]float64(nil), b.M...),
		N: append([]float64(nil), b.N...),

		Wavelength: append([]float64(nil), b.Wavelength...),
		Intensity:  append([]float64(nil), b.Intensity...),
		OPD:        append([]float64(nil), b.OPD...),
	}
	if b.L0 != nil {
		out.L0 = append([]float64(nil), b.L0...)
		out.M0 = append([]float64(nil), b.M0...)
		out.N0 = append([]float64(nil), b.N0...)
	}
	if b.P != nil {
		out.P = make([]*mat.CDense, len(b.P))
		for i, p := range b.P {
			cp := mat.NewCDense(3, 3, nil)
			cp.Copy(p)
			out.P[i] = cp
		}
	}
	return out
}
