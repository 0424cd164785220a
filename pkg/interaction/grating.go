package interaction

import (
	"fmt"
	"math"

	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/polarization"
	"github.com/opticore/opticore/pkg/ray"
)

type gratingParams struct {
	Order       int           `json:"order"`
	Period      float64       `json:"period"`
	Orientation float64       `json:"orientation"`
	Reflect     bool          `json:"reflect,omitempty"`
	Coating     *core.Encoded `json:"coating,omitempty"`
}

// Grating diffracts into a single signed order by adding m·(2π/d)·ĝ to the
// tangential wavevector, with ĝ the groove-normal direction projected into
// the local tangent plane at the intersection point. Working in the local
// tangent plane couples substrate curvature and grating dispersion through
// the same surface normal the geometry reports; evanescent orders clip.
type Grating struct {
	Order       int
	Period      float64 // mm
	Orientation float64 // rad
	Reflect     bool
	Coating     polarization.Coating

	grooveDir core.Vec3
}

// NewGrating validates and creates a grating model.
func NewGrating(order int, period, orientation float64, reflect bool, coating polarization.Coating) (*Grating, error) {
	if period <= 0 {
		return nil, fmt.Errorf("interaction: grating period %g, must be positive", period)
	}
	return &Grating{
		Order:       order,
		Period:      period,
		Orientation: orientation,
		Reflect:     reflect,
		Coating:     coating,
		grooveDir:   core.NewVec3(math.Cos(orientation), math.Sin(orientation), 0),
	}, nil
}

// Interact implements Model.
func (g *Grating) Interact(b *ray.Batch, i int, normal core.Vec3, ctx Context) {
	d := b.Direction(i)

	var add core.Vec3
	if g.Order != 0 {
		tangent := projectTangent(g.grooveDir, normal)
		if tangent.Length() < 1e-12 {
			// Groove direction parallel to the normal: the grating has no
			// component in the tangent plane here, a degenerate layout.
			b.Clip(i)
			return
		}
		add = tangent.Normalize().Multiply(float64(g.Order) * 2 * math.Pi / g.Period)
	}

	out, ok := outgoingDirection(d, normal, real(ctx.N1), real(ctx.N2), ctx.K0, add, g.Reflect)
	if !ok {
		b.Clip(i)
		return
	}
	b.SetDirection(i, out)
	applyPolarization(b, i, d, out, normal, ctx, g.Coating, g.Reflect)
}

// Reflective implements Model.
func (g *Grating) Reflective() bool { return g.Reflect }

func (g *Grating) encode() (string, any, error) {
	coat, err := encodeCoating(g.Coating)
	if err != nil {
		return "", nil, err
	}
	return "grating", gratingParams{
		Order:       g.Order,
		Period:      g.Period,
		Orientation: g.Orientation,
		Reflect:     g.Reflect,
		Coating:     coat,
	}, nil
}
