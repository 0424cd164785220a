package geometry

import (
	"math"
	"testing"

	"github.com/opticore/opticore/pkg/core"
)

func TestEvenAsphere_NewtonMatchesConicForTinyCoeffs(t *testing.T) {
	// With vanishing polynomial terms the Newton solution must agree with
	// the closed-form conic to the solver tolerance.
	conic, _ := NewConic(50, -0.5)
	asphere, err := NewEvenAsphere(50, -0.5, []float64{0})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, x := range []float64{0, 2, 5, 9, -7} {
		origin := core.NewVec3(x, 0, -20)
		dir := core.NewVec3(0.05, 0.02, 1).Normalize()

		tConic, okConic := conic.Intersect(origin, dir)
		tAsphere, okAsphere := asphere.Intersect(origin, dir)
		if !okConic || !okAsphere {
			t.Fatalf("x=%f: expected both to hit (conic=%t asphere=%t)", x, okConic, okAsphere)
		}
		if math.Abs(tConic-tAsphere) > 1e-8 {
			t.Errorf("x=%f: conic t=%.12f, asphere t=%.12f", x, tConic, tAsphere)
		}
	}
}

func TestEvenAsphere_IntersectionLiesOnSurface(t *testing.T) {
	asphere, _ := NewEvenAsphere(-80, 0.2, []float64{2e-5, -1e-8})
	origin := core.NewVec3(4, -6, -15)
	dir := core.NewVec3(-0.03, 0.08, 1).Normalize()

	tHit, ok := asphere.Intersect(origin, dir)
	if !ok {
		t.Fatal("Expected hit")
	}
	p := origin.Add(dir.Multiply(tHit))
	if math.Abs(p.Z-asphere.Sag(p.X, p.Y)) > 1e-9 {
		t.Errorf("Intersection point off surface by %g", p.Z-asphere.Sag(p.X, p.Y))
	}
}

func TestEvenAsphere_GradientMatchesFiniteDifference(t *testing.T) {
	asphere, _ := NewEvenAsphere(60, -1.2, []float64{1e-4, 3e-7})
	const h = 1e-6

	for _, xy := range [][2]float64{{1, 2}, {-4, 3}, {6, -5}} {
		x, y := xy[0], xy[1]
		gx, gy := asphere.sagGradient(x, y)
		fx := (asphere.Sag(x+h, y) - asphere.Sag(x-h, y)) / (2 * h)
		fy := (asphere.Sag(x, y+h) - asphere.Sag(x, y-h)) / (2 * h)
		if math.Abs(gx-fx) > 1e-6 || math.Abs(gy-fy) > 1e-6 {
			t.Errorf("(%f,%f): gradient (%g,%g), finite difference (%g,%g)", x, y, gx, gy, fx, fy)
		}
	}
}

func TestOddAsphere_LinearTermIsCone(t *testing.T) {
	// A pure linear term C0·r is a cone with slope C0.
	cone, _ := NewOddAsphere(0, 0, []float64{0.1})

	if got := cone.Sag(3, 4); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected sag 0.5 at r=5, got %f", got)
	}

	tHit, ok := cone.Intersect(core.NewVec3(3, 4, -2), core.NewVec3(0, 0, 1))
	if !ok || math.Abs(tHit-2.5) > 1e-9 {
		t.Errorf("Expected hit at t=2.5, got hit=%t t=%f", ok, tHit)
	}
}

func TestOddAsphere_GradientGuardsVertex(t *testing.T) {
	cone, _ := NewOddAsphere(0, 0, []float64{0.1})
	gx, gy := cone.sagGradient(0, 0)
	if gx != 0 || gy != 0 {
		t.Errorf("Expected guarded zero gradient at vertex, got (%g,%g)", gx, gy)
	}
}

func TestAsphere_RequiresCoefficients(t *testing.T) {
	if _, err := NewEvenAsphere(50, 0, nil); err == nil {
		t.Error("Expected error for even asphere without coefficients")
	}
	if _, err := NewOddAsphere(50, 0, nil); err == nil {
		t.Error("Expected error for odd asphere without coefficients")
	}
}

func TestGratingRelief_SagIsPeriodic(t *testing.T) {
	relief, err := NewGratingRelief(0, 0, 5e-4, 0.02, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, x := range []float64{0.003, -0.011, 0.5} {
		a := relief.Sag(x, 1)
		b := relief.Sag(x+0.02, 1)
		if math.Abs(a-b) > 1e-12 {
			t.Errorf("Expected sag periodic in the groove direction: %g != %g", a, b)
		}
	}
}

func TestGratingRelief_ZeroAmplitudeIsSubstrate(t *testing.T) {
	relief, _ := NewGratingRelief(100, -1, 0, 0.01, 0.7)
	conic, _ := NewConic(100, -1)

	origin := core.NewVec3(2, 3, -10)
	dir := core.NewVec3(0.01, -0.02, 1).Normalize()

	tRelief, okR := relief.Intersect(origin, dir)
	tConic, okC := conic.Intersect(origin, dir)
	if !okR || !okC {
		t.Fatalf("Expected both to hit (relief=%t conic=%t)", okR, okC)
	}
	if math.Abs(tRelief-tConic) > 1e-8 {
		t.Errorf("Expected substrate intersection %f, got %f", tConic, tRelief)
	}
}

func TestGratingRelief_RejectsNonPositivePeriod(t *testing.T) {
	if _, err := NewGratingRelief(0, 0, 1e-4, 0, 0); err == nil {
		t.Error("Expected error for zero grating period")
	}
}
