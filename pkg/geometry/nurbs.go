package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/opticore/opticore/pkg/core"
)

type nurbsParams struct {
	Control [][][3]float64 `json:"control"`
	Weights [][]float64    `json:"weights"`
	KnotsU  []float64      `json:"knots_u"`
	KnotsV  []float64      `json:"knots_v"`
	DegreeU int            `json:"degree_u"`
	DegreeV int            `json:"degree_v"`
	NormX   float64        `json:"norm_x"`
	NormY   float64        `json:"norm_y"`
}

// NURBS is a free-form surface patch: a weighted control-point grid over
// (u, v) ∈ [0,1]². NormX/NormY map the physical semi-aperture onto the unit
// parameter square, so sag and normal queries at (x, y) evaluate the patch
// at u = ½ + x/(2·NormX), v = ½ + y/(2·NormY).
type NURBS struct {
	ctrl    [][]core.Vec3
	weights [][]float64
	knotsU  []float64
	knotsV  []float64
	degU    int
	degV    int
	normX   float64
	normY   float64
}

// NewNURBS validates the control grid, weights, knot vectors and degrees and
// creates the patch. Rank mismatches are configuration errors, raised here
// rather than during tracing.
func NewNURBS(ctrl [][]core.Vec3, weights [][]float64, knotsU, knotsV []float64, degU, degV int, normX, normY float64) (*NURBS, error) {
	nu := len(ctrl)
	if nu == 0 {
		return nil, fmt.Errorf("geometry: nurbs control grid is empty")
	}
	nv := len(ctrl[0])
	for i, row := range ctrl {
		if len(row) != nv {
			return nil, fmt.Errorf("geometry: nurbs control grid row %d has %d points, want %d", i, len(row), nv)
		}
	}
	if len(weights) != nu {
		return nil, fmt.Errorf("geometry: nurbs weight grid has %d rows, want %d", len(weights), nu)
	}
	for i, row := range weights {
		if len(row) != nv {
			return nil, fmt.Errorf("geometry: nurbs weight grid row %d has %d entries, want %d", i, len(row), nv)
		}
		for j, w := range row {
			if w <= 0 {
				return nil, fmt.Errorf("geometry: nurbs weight (%d,%d) = %g, must be positive", i, j, w)
			}
		}
	}
	if degU < 1 || degV < 1 {
		return nil, fmt.Errorf("geometry: nurbs degrees (%d,%d), must be at least 1", degU, degV)
	}
	if nu <= degU || nv <= degV {
		return nil, fmt.Errorf("geometry: nurbs grid %dx%d too small for degrees (%d,%d)", nu, nv, degU, degV)
	}
	if len(knotsU) != nu+degU+1 {
		return nil, fmt.Errorf("geometry: nurbs u knot vector has %d entries, want %d", len(knotsU), nu+degU+1)
	}
	if len(knotsV) != nv+degV+1 {
		return nil, fmt.Errorf("geometry: nurbs v knot vector has %d entries, want %d", len(knotsV), nv+degV+1)
	}
	for _, knots := range [][]float64{knotsU, knotsV} {
		for i := 1; i < len(knots); i++ {
			if knots[i] < knots[i-1] {
				return nil, fmt.Errorf("geometry: nurbs knot vector is not non-decreasing at index %d", i)
			}
		}
	}
	if normX <= 0 || normY <= 0 {
		return nil, fmt.Errorf("geometry: nurbs domain normalization (%g, %g), must be positive", normX, normY)
	}
	return &NURBS{
		ctrl:    ctrl,
		weights: weights,
		knotsU:  knotsU,
		knotsV:  knotsV,
		degU:    degU,
		degV:    degV,
		normX:   normX,
		normY:   normY,
	}, nil
}

func newNURBSFromParams(p nurbsParams) (*NURBS, error) {
	ctrl := make([][]core.Vec3, len(p.Control))
	for i, row := range p.Control {
		ctrl[i] = make([]core.Vec3, len(row))
		for j, pt := range row {
			ctrl[i][j] = core.NewVec3(pt[0], pt[1], pt[2])
		}
	}
	return NewNURBS(ctrl, p.Weights, p.KnotsU, p.KnotsV, p.DegreeU, p.DegreeV, p.NormX, p.NormY)
}

// findSpan locates the knot span containing u (NURBS book A2.1).
func findSpan(n, p int, u float64, knots []float64) int {
	if u >= knots[n+1] {
		return n
	}
	if u <= knots[p] {
		return p
	}
	lo, hi := p, n+1
	mid := (lo + hi) / 2
	for u < knots[mid] || u >= knots[mid+1] {
		if u < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}
	return mid
}

// basisDerivs computes the non-vanishing basis functions and their first
// derivatives at u (NURBS book A2.3 restricted to order 1). Row 0 holds the
// function values, row 1 the derivatives.
func basisDerivs(span, p int, u float64, knots []float64) [2][]float64 {
	ndu := make([][]float64, p+1)
	for i := range ndu {
		ndu[i] = make([]float64, p+1)
	}
	left := make([]float64, p+1)
	right := make([]float64, p+1)
	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - knots[span+1-j]
		right[j] = knots[span+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}

	out := [2][]float64{make([]float64, p+1), make([]float64, p+1)}
	for j := 0; j <= p; j++ {
		out[0][j] = ndu[j][p]
	}
	// First derivatives from the triangular table.
	for r := 0; r <= p; r++ {
		d := 0.0
		if r >= 1 {
			d = ndu[r-1][p-1] / ndu[p][r-1]
		}
		if r <= p-1 {
			d -= ndu[r][p-1] / ndu[p][r]
		}
		out[1][r] = d * float64(p)
	}
	return out
}

// evaluate returns the surface point and its first parametric partials at
// (u, v), via the homogeneous-coordinate quotient rule.
func (s *NURBS) evaluate(u, v float64) (pt, du, dv core.Vec3) {
	nu := len(s.ctrl) - 1
	nv := len(s.ctrl[0]) - 1

	spanU := findSpan(nu, s.degU, u, s.knotsU)
	spanV := findSpan(nv, s.degV, v, s.knotsV)
	bu := basisDerivs(spanU, s.degU, u, s.knotsU)
	bv := basisDerivs(spanV, s.degV, v, s.knotsV)

	var a, au, av core.Vec3 // weighted numerators
	var w, wu, wv float64   // weight sums
	for i := 0; i <= s.degU; i++ {
		iu := spanU - s.degU + i
		for j := 0; j <= s.degV; j++ {
			jv := spanV - s.degV + j
			wij := s.weights[iu][jv]
			p := s.ctrl[iu][jv].Multiply(wij)

			b := bu[0][i] * bv[0][j]
			bU := bu[1][i] * bv[0][j]
			bV := bu[0][i] * bv[1][j]

			a = a.Add(p.Multiply(b))
			au = au.Add(p.Multiply(bU))
			av = av.Add(p.Multiply(bV))
			w += wij * b
			wu += wij * bU
			wv += wij * bV
		}
	}

	pt = a.Multiply(1 / w)
	du = au.Subtract(pt.Multiply(wu)).Multiply(1 / w)
	dv = av.Subtract(pt.Multiply(wv)).Multiply(1 / w)
	return pt, du, dv
}

func (s *NURBS) paramAt(x, y float64) (float64, float64) {
	u := 0.5 + x/(2*s.normX)
	v := 0.5 + y/(2*s.normY)
	return clamp01(u), clamp01(v)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Sag implements Geometry.
func (s *NURBS) Sag(x, y float64) float64 {
	u, v := s.paramAt(x, y)
	pt, _, _ := s.evaluate(u, v)
	return pt.Z
}

// Normal implements Geometry: the normalized cross product of the parametric
// partials, ε-guarded against degenerate parameterizations and oriented
// toward +z.
func (s *NURBS) Normal(x, y float64) core.Vec3 {
	u, v := s.paramAt(x, y)
	_, du, dv := s.evaluate(u, v)
	n := du.Cross(dv)
	if n.Length() < 1e-12 {
		return core.NewVec3(0, 0, 1)
	}
	n = n.Normalize()
	if n.Z < 0 {
		n = n.Negate()
	}
	return n
}

const maxNURBSIter = 50

// Intersect implements Geometry by a coupled Newton iteration on
// S(u,v) − origin − t·dir = 0, solving each 3x3 step for (Δu, Δv, Δt).
func (s *NURBS) Intersect(origin, dir core.Vec3) (float64, bool) {
	// Seed t from the vertex tangent plane, then (u, v) from the seed point.
	t := 0.0
	if math.Abs(dir.Z) > 1e-12 {
		t = -origin.Z / dir.Z
		if t < 0 {
			t = 0
		}
	}
	u, v := s.paramAt(origin.X+t*dir.X, origin.Y+t*dir.Y)

	jac := mat.NewDense(3, 3, nil)
	rhs := mat.NewVecDense(3, nil)
	var delta mat.VecDense

	for iter := 0; iter < maxNURBSIter; iter++ {
		pt, du, dv := s.evaluate(u, v)
		g := pt.Subtract(origin).Subtract(dir.Multiply(t))
		if g.Length() < 1e-9 {
			if t < forwardEps {
				return 0, false
			}
			return t, true
		}

		jac.Set(0, 0, du.X)
		jac.Set(1, 0, du.Y)
		jac.Set(2, 0, du.Z)
		jac.Set(0, 1, dv.X)
		jac.Set(1, 1, dv.Y)
		jac.Set(2, 1, dv.Z)
		jac.Set(0, 2, -dir.X)
		jac.Set(1, 2, -dir.Y)
		jac.Set(2, 2, -dir.Z)
		rhs.SetVec(0, -g.X)
		rhs.SetVec(1, -g.Y)
		rhs.SetVec(2, -g.Z)

		if err := delta.SolveVec(jac, rhs); err != nil {
			// Singular Jacobian: degenerate parameterization or a ray
			// grazing the patch. Treated as a miss, never an error.
			return 0, false
		}

		u = clamp01(u + delta.AtVec(0))
		v = clamp01(v + delta.AtVec(1))
		t += delta.AtVec(2)
	}
	return 0, false
}

func (s *NURBS) encode() (string, any) {
	control := make([][][3]float64, len(s.ctrl))
	for i, row := range s.ctrl {
		control[i] = make([][3]float64, len(row))
		for j, pt := range row {
			control[i][j] = [3]float64{pt.X, pt.Y, pt.Z}
		}
	}
	return "nurbs", nurbsParams{
		Control: control,
		Weights: s.weights,
		KnotsU:  s.knotsU,
		KnotsV:  s.knotsV,
		DegreeU: s.degU,
		DegreeV: s.degV,
		NormX:   s.normX,
		NormY:   s.normY,
	}
}
