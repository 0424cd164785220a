package phase

import (
	"math"
	"testing"

	"github.com/opticore/opticore/pkg/material"
)

// checkGradient compares a profile's analytic gradient against central
// differences of its Phase.
func checkGradient(t *testing.T, p Profile, x, y, wavelengthUm, tol float64) {
	t.Helper()
	const h = 1e-6
	gx, gy, gz := p.Gradient(x, y, wavelengthUm)
	fx := (p.Phase(x+h, y, wavelengthUm) - p.Phase(x-h, y, wavelengthUm)) / (2 * h)
	fy := (p.Phase(x, y+h, wavelengthUm) - p.Phase(x, y-h, wavelengthUm)) / (2 * h)
	if math.Abs(gx-fx) > tol || math.Abs(gy-fy) > tol {
		t.Errorf("(%f,%f): gradient (%g,%g), finite difference (%g,%g)", x, y, gx, gy, fx, fy)
	}
	if gz != 0 {
		t.Errorf("(%f,%f): expected zero z gradient for an in-plane profile, got %g", x, y, gz)
	}
}

func TestRadialPoly_GradientMatchesFiniteDifference(t *testing.T) {
	p, err := NewRadialPoly([]float64{-2.5, 0.03, -1e-4}, 1.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, xy := range [][2]float64{{0.5, 1.2}, {-2, 3}, {4, -1}} {
		checkGradient(t, p, xy[0], xy[1], 0.55, 1e-4)
	}
}

func TestRadialPoly_VertexPhaseIsZero(t *testing.T) {
	p, _ := NewRadialPoly([]float64{-2.5}, 1.0)
	if got := p.Phase(0, 0, 0.55); got != 0 {
		t.Errorf("Expected zero phase at the vertex, got %f", got)
	}
}

func TestLinearGrating_GradientIsGratingEquationTerm(t *testing.T) {
	// With u along the groove normal the gradient must be exactly
	// m·(2π/d)·ĝ, with no positional dependence.
	g, err := NewLinearGrating(2, 0.01, math.Pi/6, 0.9)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := 2 * math.Pi * 2 / 0.01
	gx, gy, _ := g.Gradient(3.7, -1.2, 0.55)
	if math.Abs(gx-want*math.Cos(math.Pi/6)) > 1e-9 {
		t.Errorf("gx = %f, want %f", gx, want*math.Cos(math.Pi/6))
	}
	if math.Abs(gy-want*math.Sin(math.Pi/6)) > 1e-9 {
		t.Errorf("gy = %f, want %f", gy, want*math.Sin(math.Pi/6))
	}

	gx2, gy2, _ := g.Gradient(-8, 5, 0.55)
	if gx2 != gx || gy2 != gy {
		t.Error("Expected a position-independent gradient")
	}
}

func TestLinearGrating_Validation(t *testing.T) {
	if _, err := NewLinearGrating(1, 0, 0, 1); err == nil {
		t.Error("Expected error for zero period")
	}
	if _, err := NewLinearGrating(1, 0.01, 0, 1.5); err == nil {
		t.Error("Expected error for efficiency above one")
	}
	if _, err := NewLinearGrating(1, 0.01, 0, -0.1); err == nil {
		t.Error("Expected error for negative efficiency")
	}
}

func TestGrid_ConstantValuesHaveZeroGradient(t *testing.T) {
	xs := []float64{-5, 0, 5}
	ys := []float64{-5, 0, 5}
	vals := [][]float64{{3, 3, 3}, {3, 3, 3}, {3, 3, 3}}

	g, err := NewGrid(xs, ys, vals, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := g.Phase(1.3, -2.4, 0.55); math.Abs(got-3) > 1e-12 {
		t.Errorf("Expected constant phase 3, got %f", got)
	}
	gx, gy, _ := g.Gradient(1.3, -2.4, 0.55)
	if gx != 0 || gy != 0 {
		t.Errorf("Expected zero gradient, got (%g,%g)", gx, gy)
	}
}

func TestGrid_BilinearRampIsExact(t *testing.T) {
	// A bilinear interpolant reproduces v = 2x + 3y exactly, including its
	// gradient inside every cell.
	xs := []float64{-4, 0, 4}
	ys := []float64{-4, 0, 4}
	vals := make([][]float64, 3)
	for i, x := range xs {
		vals[i] = make([]float64, 3)
		for j, y := range ys {
			vals[i][j] = 2*x + 3*y
		}
	}

	g, _ := NewGrid(xs, ys, vals, 1)
	for _, xy := range [][2]float64{{1, 1}, {-3, 2}, {3.9, -3.9}} {
		x, y := xy[0], xy[1]
		if got := g.Phase(x, y, 0.55); math.Abs(got-(2*x+3*y)) > 1e-12 {
			t.Errorf("Phase(%f,%f) = %f, want %f", x, y, got, 2*x+3*y)
		}
		gx, gy, _ := g.Gradient(x, y, 0.55)
		if math.Abs(gx-2) > 1e-12 || math.Abs(gy-3) > 1e-12 {
			t.Errorf("Gradient(%f,%f) = (%g,%g), want (2,3)", x, y, gx, gy)
		}
	}
}

func TestGrid_RejectsUnsortedAxes(t *testing.T) {
	vals := [][]float64{{0, 0}, {0, 0}}
	if _, err := NewGrid([]float64{1, 0}, []float64{0, 1}, vals, 1); err == nil {
		t.Error("Expected error for a decreasing x axis")
	}
	if _, err := NewGrid([]float64{0, 1}, []float64{0, 0}, vals, 1); err == nil {
		t.Error("Expected error for a non-increasing y axis")
	}
}

func TestZernike_DefocusMatchesClosedForm(t *testing.T) {
	// OSA index 4 is defocus: Z = √3·(2ρ² − 1) without the normalization
	// factor folded in, so the raw polynomial is 2ρ² − 1.
	z, err := NewZernike([]float64{0, 0, 0, 0, 1}, 10, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, xy := range [][2]float64{{0, 0}, {5, 0}, {0, 7}, {3, 4}} {
		rho2 := (xy[0]*xy[0] + xy[1]*xy[1]) / 100
		want := 2*rho2 - 1
		if got := z.Phase(xy[0], xy[1], 0.55); math.Abs(got-want) > 1e-9 {
			t.Errorf("Phase(%f,%f) = %f, want %f", xy[0], xy[1], got, want)
		}
	}
}

func TestZernike_GradientMatchesFiniteDifference(t *testing.T) {
	z, _ := NewZernike([]float64{0, 0.4, -0.2, 0.7, 1.1, 0, -0.3}, 10, 1)
	for _, xy := range [][2]float64{{2, 3}, {-4, 1}, {5, -5}} {
		checkGradient(t, z, xy[0], xy[1], 0.55, 1e-4)
	}
}

func TestZernike_RejectsNonPositiveRadius(t *testing.T) {
	if _, err := NewZernike([]float64{1}, 0, 1); err == nil {
		t.Error("Expected error for zero normalization radius")
	}
}

func TestHeightMap_PhaseScalesWithIndexContrast(t *testing.T) {
	xs := []float64{-2, 2}
	ys := []float64{-2, 2}
	heights := [][]float64{{1e-3, 1e-3}, {1e-3, 1e-3}} // 1 µm everywhere

	h, err := NewHeightMap(xs, ys, heights, material.NewConstant(1.5), 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// φ = k₀·(n−1)·h with k₀ = 2π/λ in rad/mm.
	wl := 0.55
	want := 2 * math.Pi / (wl * 1e-3) * 0.5 * 1e-3
	if got := h.Phase(0, 0, wl); math.Abs(got-want) > 1e-9 {
		t.Errorf("Phase = %f, want %f", got, want)
	}
}

func TestProfile_EncodeDecodeRoundTrip(t *testing.T) {
	radial, _ := NewRadialPoly([]float64{-2.5, 0.03}, 0.95)
	grating, _ := NewLinearGrating(1, 0.02, 0.3, 0.8)
	grid, _ := NewGrid([]float64{-1, 1}, []float64{-1, 1}, [][]float64{{0, 1}, {2, 3}}, 1)
	zern, _ := NewZernike([]float64{0, 0, 0, 0, 0.5}, 8, 1)
	hmap, _ := NewHeightMap([]float64{-1, 1}, []float64{-1, 1},
		[][]float64{{0, 1e-3}, {1e-3, 0}}, material.NewConstant(1.46), 0.9)

	profiles := []Profile{radial, grating, grid, zern, hmap}
	for _, p := range profiles {
		enc, err := Encode(p)
		if err != nil {
			t.Fatalf("%T: unexpected encode error: %v", p, err)
		}
		decoded, err := Decode(enc)
		if err != nil {
			t.Fatalf("%T: unexpected decode error: %v", p, err)
		}

		for _, xy := range [][2]float64{{0, 0}, {0.5, -0.3}} {
			a := p.Phase(xy[0], xy[1], 0.55)
			b := decoded.Phase(xy[0], xy[1], 0.55)
			if math.Abs(a-b) > 1e-12 {
				t.Errorf("%T: phase changed across round trip at (%f,%f): %g vs %g", p, xy[0], xy[1], a, b)
			}
		}
		if decoded.Efficiency() != p.Efficiency() {
			t.Errorf("%T: efficiency changed across round trip", p)
		}
	}
}
