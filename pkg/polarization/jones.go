package polarization

import (
	"gonum.org/v1/gonum/mat"

	"github.com/opticore/opticore/pkg/core"
)

// rowBasis packs three real vectors into a complex 3x3 matrix as rows; the
// product with a field vector projects it onto the basis.
func rowBasis(r0, r1, r2 core.Vec3) *mat.CDense {
	m := mat.NewCDense(3, 3, nil)
	for j, v := range [3]core.Vec3{r0, r1, r2} {
		m.Set(j, 0, complex(v.X, 0))
		m.Set(j, 1, complex(v.Y, 0))
		m.Set(j, 2, complex(v.Z, 0))
	}
	return m
}

// columnBasis packs three real vectors as columns; the product with basis
// components expands them back into global coordinates.
func columnBasis(c0, c1, c2 core.Vec3) *mat.CDense {
	m := mat.NewCDense(3, 3, nil)
	for j, v := range [3]core.Vec3{c0, c1, c2} {
		m.Set(0, j, complex(v.X, 0))
		m.Set(1, j, complex(v.Y, 0))
		m.Set(2, j, complex(v.Z, 0))
	}
	return m
}

// mul3 stores the 3x3 product a·b in dst. gonum's CDense carries no
// arithmetic of its own, so the product is spelled out.
func mul3(dst, a, b *mat.CDense) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			dst.Set(r, c, a.At(r, 0)*b.At(0, c)+a.At(r, 1)*b.At(1, c)+a.At(r, 2)*b.At(2, c))
		}
	}
}

// InterfaceMatrix builds the 3x3 Jones matrix of an interface in global
// coordinates: project onto the incident (s, p_in, k_in) basis, apply the
// diagonal amplitudes (as, ap, 1), and expand on the outgoing
// (s, p_out, k_out) basis. The s axis is shared between the two bases.
func InterfaceMatrix(inDir, outDir, normal core.Vec3, as, ap complex128) *mat.CDense {
	s := IncidenceBasis(inDir, normal)
	pIn := inDir.Cross(s)
	pOut := outDir.Cross(s)

	bIn := rowBasis(s, pIn, inDir)
	bOut := columnBasis(s, pOut, outDir)

	diag := mat.NewCDense(3, 3, nil)
	diag.Set(0, 0, as)
	diag.Set(1, 1, ap)
	diag.Set(2, 2, 1)

	// M = B_out · diag · B_in
	tmp := mat.NewCDense(3, 3, nil)
	mul3(tmp, diag, bIn)
	out := mat.NewCDense(3, 3, nil)
	mul3(out, bOut, tmp)
	return out
}

// Compose left-multiplies the interface matrix m onto the running transfer
// matrix p, in place: p ← m·p.
func Compose(p, m *mat.CDense) {
	tmp := mat.NewCDense(3, 3, nil)
	mul3(tmp, m, p)
	p.Copy(tmp)
}
