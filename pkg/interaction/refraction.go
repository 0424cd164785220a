package interaction

import (
	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/polarization"
	"github.com/opticore/opticore/pkg/ray"
)

type refractionParams struct {
	Reflect bool          `json:"reflect,omitempty"`
	Coating *core.Encoded `json:"coating,omitempty"`
}

// Refraction applies the vector form of Snell's law, or the mirror law when
// Reflect is set. Total internal reflection on the transmissive branch clips
// the ray.
type Refraction struct {
	Reflect bool
	Coating polarization.Coating
}

// NewRefraction creates a transmissive interface model.
func NewRefraction(coating polarization.Coating) *Refraction {
	return &Refraction{Coating: coating}
}

// NewReflection creates a mirror interface model.
func NewReflection(coating polarization.Coating) *Refraction {
	return &Refraction{Reflect: true, Coating: coating}
}

// Interact implements Model.
func (r *Refraction) Interact(b *ray.Batch, i int, normal core.Vec3, ctx Context) {
	d := b.Direction(i)
	out, ok := outgoingDirection(d, normal, real(ctx.N1), real(ctx.N2), ctx.K0, core.Vec3{}, r.Reflect)
	if !ok {
		b.Clip(i)
		return
	}
	b.SetDirection(i, out)
	applyPolarization(b, i, d, out, normal, ctx, r.Coating, r.Reflect)
}

// Reflective implements Model.
func (r *Refraction) Reflective() bool { return r.Reflect }

func (r *Refraction) encode() (string, any, error) {
	coat, err := encodeCoating(r.Coating)
	if err != nil {
		return "", nil, err
	}
	return "refraction", refractionParams{Reflect: r.Reflect, Coating: coat}, nil
}
