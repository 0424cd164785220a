package interaction

import (
	"encoding/json"

	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/phase"
	"github.com/opticore/opticore/pkg/polarization"
	"github.com/opticore/opticore/pkg/ray"
)

type phaseSurfaceParams struct {
	Profile core.Encoded  `json:"profile"`
	Reflect bool          `json:"reflect,omitempty"`
	Coating *core.Encoded `json:"coating,omitempty"`
}

// PhaseSurface applies the generalized Snell law for an arbitrary phase
// profile: the profile gradient, projected into the local tangent plane, is
// added to the incident tangential wavevector; the normal component follows
// from wavevector-magnitude conservation just like refraction and grating
// diffraction. OPD shifts by −φ/k0 and intensity scales by the profile
// efficiency. All profile variants share this one law.
type PhaseSurface struct {
	Profile phase.Profile
	Reflect bool
	Coating polarization.Coating
}

// NewPhaseSurface creates a phase interaction from a profile strategy.
func NewPhaseSurface(profile phase.Profile, reflect bool, coating polarization.Coating) *PhaseSurface {
	return &PhaseSurface{Profile: profile, Reflect: reflect, Coating: coating}
}

// Interact implements Model.
func (p *PhaseSurface) Interact(b *ray.Batch, i int, normal core.Vec3, ctx Context) {
	// Phase interactions work from the cached incident direction so paraxial
	// consumers can recover the pre-interface state.
	d := b.Incident(i)
	x, y := b.X[i], b.Y[i]

	gx, gy, gz := p.Profile.Gradient(x, y, ctx.Wavelength)
	add := projectTangent(core.NewVec3(gx, gy, gz), normal)

	out, ok := outgoingDirection(d, normal, real(ctx.N1), real(ctx.N2), ctx.K0, add, p.Reflect)
	if !ok {
		b.Clip(i)
		return
	}
	b.SetDirection(i, out)
	b.OPD[i] -= p.Profile.Phase(x, y, ctx.Wavelength) / ctx.K0
	b.Intensity[i] *= p.Profile.Efficiency()
	applyPolarization(b, i, d, out, normal, ctx, p.Coating, p.Reflect)
}

// Reflective implements Model.
func (p *PhaseSurface) Reflective() bool { return p.Reflect }

func (p *PhaseSurface) encode() (string, any, error) {
	enc, err := phase.Encode(p.Profile)
	if err != nil {
		return "", nil, err
	}
	coat, err := encodeCoating(p.Coating)
	if err != nil {
		return "", nil, err
	}
	return "phase", phaseSurfaceParams{Profile: enc, Reflect: p.Reflect, Coating: coat}, nil
}

func decodePhaseSurface(raw json.RawMessage) (Model, error) {
	var p phaseSurfaceParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	profile, err := phase.Decode(p.Profile)
	if err != nil {
		return nil, err
	}
	coat, err := decodeCoating(p.Coating)
	if err != nil {
		return nil, err
	}
	return NewPhaseSurface(profile, p.Reflect, coat), nil
}
