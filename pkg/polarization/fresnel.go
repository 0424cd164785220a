package polarization

import "math/cmplx"

// Coefficients holds the Fresnel amplitude coefficients of an interface for
// the s and p polarizations.
type Coefficients struct {
	Rs, Rp complex128
	Ts, Tp complex128
}

// Fresnel computes the amplitude coefficients for an interface between
// complex indices n1 and n2 at incidence cosine cosI. The transmitted
// cosine is the principal square root, which carries evanescent cases as
// complex values rather than NaN.
func Fresnel(cosI float64, n1, n2 complex128) Coefficients {
	ci := complex(cosI, 0)
	ratio := n1 / n2
	st2 := ratio * ratio * (1 - ci*ci)
	ct := cmplx.Sqrt(1 - st2)

	return Coefficients{
		Rs: (n1*ci - n2*ct) / (n1*ci + n2*ct),
		Rp: (n2*ci - n1*ct) / (n2*ci + n1*ct),
		Ts: 2 * n1 * ci / (n1*ci + n2*ct),
		Tp: 2 * n1 * ci / (n2*ci + n1*ct),
	}
}

// TransmittedCosine returns cos θt for the refracted branch.
func TransmittedCosine(cosI float64, n1, n2 complex128) complex128 {
	ci := complex(cosI, 0)
	ratio := n1 / n2
	return cmplx.Sqrt(1 - ratio*ratio*(1-ci*ci))
}
