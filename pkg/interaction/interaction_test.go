package interaction

import (
	"math"
	"testing"

	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/phase"
	"github.com/opticore/opticore/pkg/polarization"
	"github.com/opticore/opticore/pkg/ray"
)

func contextFor(n1, n2 float64, wavelengthUm float64) Context {
	return Context{
		N1:         complex(n1, 0),
		N2:         complex(n2, 0),
		Wavelength: wavelengthUm,
		K0:         2 * math.Pi / (wavelengthUm * 1e-3),
	}
}

// incidentBatch builds a one-ray batch heading along dir at the origin.
func incidentBatch(dir core.Vec3, wavelengthUm float64) *ray.Batch {
	b := ray.New(1, wavelengthUm)
	b.SetDirection(0, dir)
	b.CacheIncident()
	return b
}

// transferApplied returns the real part of the ray's polarization transfer
// matrix applied to a real vector.
func transferApplied(b *ray.Batch, i int, v core.Vec3) core.Vec3 {
	in := [3]complex128{complex(v.X, 0), complex(v.Y, 0), complex(v.Z, 0)}
	var out [3]float64
	for r := 0; r < 3; r++ {
		out[r] = real(b.P[i].At(r, 0)*in[0] + b.P[i].At(r, 1)*in[1] + b.P[i].At(r, 2)*in[2])
	}
	return core.NewVec3(out[0], out[1], out[2])
}

func TestRefraction_MirrorAtNormalIncidence(t *testing.T) {
	b := incidentBatch(core.NewVec3(0, 0, 1), 0.55)
	mirror := NewReflection(nil)

	mirror.Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1, 1, 0.55))

	got := b.Direction(0)
	want := core.NewVec3(0, 0, -1)
	if got.Subtract(want).Length() > 1e-12 {
		t.Errorf("Expected direction %v, got %v", want, got)
	}
	if b.Intensity[0] != 1 {
		t.Errorf("Expected intensity unchanged, got %f", b.Intensity[0])
	}
}

func TestRefraction_MirrorLawObliqueIncidence(t *testing.T) {
	// 30° incidence in the x-z plane: the tangential component survives and
	// the normal component flips.
	in := core.NewVec3(math.Sin(math.Pi/6), 0, math.Cos(math.Pi/6))
	b := incidentBatch(in, 0.55)
	mirror := NewReflection(nil)

	mirror.Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1.5, 1.5, 0.55))

	got := b.Direction(0)
	want := core.NewVec3(in.X, 0, -in.Z)
	if got.Subtract(want).Length() > 1e-12 {
		t.Errorf("Expected direction %v, got %v", want, got)
	}
}

func TestReflection_BareMirrorKeepsJonesTransfer(t *testing.T) {
	// An uncoated mirror sees an index-matched interface, where the Fresnel
	// reflection amplitudes vanish; the transfer matrix must still carry the
	// transverse field through with unit amplitude.
	in := core.NewVec3(0, 0, 1)
	normal := core.NewVec3(0, 0, 1)
	b := incidentBatch(in, 0.55)
	b.EnablePolarization()

	NewReflection(nil).Interact(b, 0, normal, contextFor(1, 1, 0.55))

	s := polarization.IncidenceBasis(in, normal)
	if got := transferApplied(b, 0, s); got.Subtract(s).Length() > 1e-12 {
		t.Errorf("M·s = %v, want %v", got, s)
	}
	if got := transferApplied(b, 0, in); got.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-12 {
		t.Errorf("M·k_in = %v, want (0, 0, -1)", got)
	}
}

func TestRefraction_SnellLaw(t *testing.T) {
	tests := []struct {
		name     string
		n1, n2   float64
		thetaDeg float64
	}{
		{"air to glass 30 deg", 1.0, 1.5, 30},
		{"glass to air 20 deg", 1.5, 1.0, 20},
		{"dense to denser 45 deg", 1.4, 1.7, 45},
		{"near grazing 89.9 deg", 1.0, 1.5, 89.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theta := tt.thetaDeg * math.Pi / 180
			in := core.NewVec3(math.Sin(theta), 0, math.Cos(theta))
			b := incidentBatch(in, 0.55)

			NewRefraction(nil).Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(tt.n1, tt.n2, 0.55))

			out := b.Direction(0)
			wantSin := tt.n1 * math.Sin(theta) / tt.n2
			if math.Abs(out.X-wantSin) > 1e-12 {
				t.Errorf("sin(theta2) = %.12f, Snell gives %.12f", out.X, wantSin)
			}
			if out.Y != 0 {
				t.Errorf("Expected refraction to stay in the plane of incidence, got y=%g", out.Y)
			}
			if out.Z <= 0 {
				t.Errorf("Expected transmitted ray to keep the incident normal sign, got z=%g", out.Z)
			}
			if math.Abs(out.Length()-1) > 1e-12 {
				t.Errorf("Expected unit direction, got length %.15f", out.Length())
			}
		})
	}
}

func TestRefraction_TotalInternalReflectionClips(t *testing.T) {
	// 60° from glass into air exceeds the critical angle (≈41.8°).
	theta := math.Pi / 3
	in := core.NewVec3(math.Sin(theta), 0, math.Cos(theta))
	b := incidentBatch(in, 0.55)

	NewRefraction(nil).Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1.5, 1.0, 0.55))

	if b.Alive(0) {
		t.Error("Expected ray clipped on total internal reflection")
	}
	if b.Direction(0).Subtract(in).Length() > 1e-12 {
		t.Error("Expected direction untouched on clip")
	}
}

func TestRefraction_NearGrazingReflectionKeepsTangent(t *testing.T) {
	theta := 89.9 * math.Pi / 180
	in := core.NewVec3(math.Sin(theta), 0, math.Cos(theta))
	b := incidentBatch(in, 0.55)

	NewReflection(nil).Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1, 1, 0.55))

	out := b.Direction(0)
	if math.Abs(out.X-in.X) > 1e-12 {
		t.Errorf("Expected tangential component preserved: %g vs %g", out.X, in.X)
	}
	if math.Abs(out.Z+in.Z) > 1e-12 {
		t.Errorf("Expected normal component flipped: %g vs %g", out.Z, -in.Z)
	}
}

func TestGrating_ZeroOrderReproducesRefraction(t *testing.T) {
	theta := 25 * math.Pi / 180
	in := core.NewVec3(math.Sin(theta), 0, math.Cos(theta))
	ctx := contextFor(1.0, 1.52, 0.55)

	bG := incidentBatch(in, 0.55)
	bR := incidentBatch(in, 0.55)

	g, err := NewGrating(0, 1e-3, 0, false, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	g.Interact(bG, 0, core.NewVec3(0, 0, 1), ctx)
	NewRefraction(nil).Interact(bR, 0, core.NewVec3(0, 0, 1), ctx)

	if bG.Direction(0).Subtract(bR.Direction(0)).Length() > 1e-15 {
		t.Errorf("Order zero diverged from refraction: %v vs %v", bG.Direction(0), bR.Direction(0))
	}
}

func TestGrating_Equation(t *testing.T) {
	// At normal incidence the grating equation reads
	// n2·sin(theta_m) = m·λ/d with λ and d in the same units.
	tests := []struct {
		name     string
		order    int
		periodMm float64
		n2       float64
	}{
		{"first order in air", 1, 2e-3, 1.0},
		{"minus first order in air", -1, 2e-3, 1.0},
		{"second order in glass", 2, 5e-3, 1.5},
	}
	const wl = 0.55 // µm
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := incidentBatch(core.NewVec3(0, 0, 1), wl)
			g, _ := NewGrating(tt.order, tt.periodMm, 0, false, nil)

			g.Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1, tt.n2, wl))

			out := b.Direction(0)
			wantSin := float64(tt.order) * wl * 1e-3 / (tt.n2 * tt.periodMm)
			if math.Abs(out.X-wantSin) > 1e-12 {
				t.Errorf("sin(theta_m) = %.12f, grating equation gives %.12f", out.X, wantSin)
			}
		})
	}
}

func TestGrating_EvanescentOrderClips(t *testing.T) {
	// λ/d > 1 pushes the first order past 90°.
	b := incidentBatch(core.NewVec3(0, 0, 1), 0.55)
	g, _ := NewGrating(1, 4e-4, 0, false, nil)

	g.Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1, 1, 0.55))

	if b.Alive(0) {
		t.Error("Expected evanescent order to clip the ray")
	}
}

func TestGrating_ReflectiveOrderFoldsPath(t *testing.T) {
	b := incidentBatch(core.NewVec3(0, 0, 1), 0.55)
	g, _ := NewGrating(1, 2e-3, 0, true, nil)

	g.Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1, 1, 0.55))

	out := b.Direction(0)
	if out.Z >= 0 {
		t.Errorf("Expected reflected order on the incident side, got z=%g", out.Z)
	}
	wantSin := 0.55 * 1e-3 / 2e-3
	if math.Abs(out.X-wantSin) > 1e-12 {
		t.Errorf("sin(theta_m) = %.12f, want %.12f", out.X, wantSin)
	}
}

func TestGrating_RejectsNonPositivePeriod(t *testing.T) {
	if _, err := NewGrating(1, 0, 0, false, nil); err == nil {
		t.Error("Expected error for zero period")
	}
}

func TestPhaseSurface_ConstantPhaseShiftsOPDOnly(t *testing.T) {
	// A flat grid profile has zero gradient, so the direction must be
	// unchanged while the OPD picks up −φ/k0 and the intensity the
	// efficiency factor.
	profile, err := phase.NewGrid(
		[]float64{-5, 5}, []float64{-5, 5},
		[][]float64{{3, 3}, {3, 3}}, 0.85)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	in := core.NewVec3(0.1, -0.05, 1).Normalize()
	b := incidentBatch(in, 0.55)
	ctx := contextFor(1, 1, 0.55)

	NewPhaseSurface(profile, false, nil).Interact(b, 0, core.NewVec3(0, 0, 1), ctx)

	if b.Direction(0).Subtract(in).Length() > 1e-12 {
		t.Errorf("Expected direction unchanged, got %v", b.Direction(0))
	}
	wantOPD := -3 / ctx.K0
	if math.Abs(b.OPD[0]-wantOPD) > 1e-15 {
		t.Errorf("OPD = %g, want %g", b.OPD[0], wantOPD)
	}
	if math.Abs(b.Intensity[0]-0.85) > 1e-12 {
		t.Errorf("Intensity = %f, want 0.85", b.Intensity[0])
	}
}

func TestPhaseSurface_LinearGratingProfileMatchesGratingModel(t *testing.T) {
	// The phase-profile form of a linear grating and the dedicated grating
	// model encode the same physics and must bend a ray identically.
	const (
		wl     = 0.55
		period = 2e-3
	)
	ctx := contextFor(1, 1, wl)
	in := core.NewVec3(math.Sin(0.2), 0, math.Cos(0.2))

	profile, _ := phase.NewLinearGrating(1, period, 0, 1)
	bP := incidentBatch(in, wl)
	NewPhaseSurface(profile, false, nil).Interact(bP, 0, core.NewVec3(0, 0, 1), ctx)

	g, _ := NewGrating(1, period, 0, false, nil)
	bG := incidentBatch(in, wl)
	g.Interact(bG, 0, core.NewVec3(0, 0, 1), ctx)

	if bP.Direction(0).Subtract(bG.Direction(0)).Length() > 1e-12 {
		t.Errorf("Profile form %v diverged from grating model %v", bP.Direction(0), bG.Direction(0))
	}
}

func TestPhaseSurface_NearGrazingTransmissionKeepsNormalSign(t *testing.T) {
	theta := 89.9 * math.Pi / 180
	in := core.NewVec3(math.Sin(theta), 0, math.Cos(theta))
	b := incidentBatch(in, 0.55)

	profile, _ := phase.NewRadialPoly([]float64{1e-4}, 1)
	NewPhaseSurface(profile, false, nil).Interact(b, 0, core.NewVec3(0, 0, 1), contextFor(1, 1.5, 0.55))

	if !b.Alive(0) {
		t.Fatal("Expected ray to survive")
	}
	if b.Direction(0).Z <= 0 {
		t.Errorf("Expected transmitted ray on the far side, got z=%g", b.Direction(0).Z)
	}
}

func TestPhaseSurface_ComposesPolarization(t *testing.T) {
	// A flat profile leaves the direction alone, isolating the interface's
	// polarization update.
	profile, err := phase.NewGrid(
		[]float64{-5, 5}, []float64{-5, 5},
		[][]float64{{3, 3}, {3, 3}}, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	in := core.NewVec3(0, 0, 1)
	normal := core.NewVec3(0, 0, 1)

	t.Run("bare interface composes Fresnel", func(t *testing.T) {
		b := incidentBatch(in, 0.55)
		b.EnablePolarization()

		NewPhaseSurface(profile, false, nil).Interact(b, 0, normal, contextFor(1, 1.5, 0.55))

		s := polarization.IncidenceBasis(in, normal)
		want := s.Multiply(2.0 / 2.5) // ts at normal incidence
		if got := transferApplied(b, 0, s); got.Subtract(want).Length() > 1e-12 {
			t.Errorf("M·s = %v, want %v", got, want)
		}
	})

	t.Run("coating scales intensity", func(t *testing.T) {
		coat, err := polarization.NewDiattenuator(0.7, 0.9)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		b := incidentBatch(in, 0.55)

		NewPhaseSurface(profile, false, coat).Interact(b, 0, normal, contextFor(1, 1, 0.55))

		want := (0.7 + 0.9) / 2
		if math.Abs(b.Intensity[0]-want) > 1e-12 {
			t.Errorf("Intensity = %f, want %f", b.Intensity[0], want)
		}
	})
}

func TestModel_EncodeDecodeRoundTrip(t *testing.T) {
	grating, _ := NewGrating(-1, 1e-3, 0.4, true, nil)
	profile, _ := phase.NewRadialPoly([]float64{-2.5}, 0.9)

	models := []Model{
		NewRefraction(nil),
		NewReflection(nil),
		grating,
		NewPhaseSurface(profile, false, nil),
		NewPhaseSurface(profile, false, polarization.Retarder{Delta: 0.3}),
	}

	theta := 0.3
	in := core.NewVec3(math.Sin(theta), 0, math.Cos(theta))
	ctx := contextFor(1, 1.5, 0.55)

	for _, m := range models {
		enc, err := Encode(m)
		if err != nil {
			t.Fatalf("%T: unexpected encode error: %v", m, err)
		}
		decoded, err := Decode(enc)
		if err != nil {
			t.Fatalf("%T: unexpected decode error: %v", m, err)
		}
		if decoded.Reflective() != m.Reflective() {
			t.Errorf("%T: reflectivity changed across round trip", m)
		}

		bA := incidentBatch(in, 0.55)
		bB := incidentBatch(in, 0.55)
		m.Interact(bA, 0, core.NewVec3(0, 0, 1), ctx)
		decoded.Interact(bB, 0, core.NewVec3(0, 0, 1), ctx)
		if bA.Direction(0).Subtract(bB.Direction(0)).Length() > 1e-15 {
			t.Errorf("%T: behavior changed across round trip", m)
		}
	}
}
