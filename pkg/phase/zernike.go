package phase

import (
	"fmt"
	"math"
)

type zernikeParams struct {
	Coeffs     []float64 `json:"coeffs"`
	NormRadius float64   `json:"norm_radius"`
	Eff        float64   `json:"efficiency"`
}

// Zernike is a phase profile expanded over the Zernike circle polynomials in
// OSA/ANSI single-index ordering, normalized to NormRadius. Coefficients are
// radians at the unit circle edge.
type Zernike struct {
	Coeffs     []float64
	NormRadius float64 // mm
	Eff        float64
}

// NewZernike validates and creates a Zernike profile.
func NewZernike(coeffs []float64, normRadius, eff float64) (*Zernike, error) {
	if normRadius <= 0 {
		return nil, fmt.Errorf("phase: zernike normalization radius %g, must be positive", normRadius)
	}
	if err := validEfficiency(eff); err != nil {
		return nil, err
	}
	return &Zernike{Coeffs: coeffs, NormRadius: normRadius, Eff: eff}, nil
}

// osaIndices converts the OSA/ANSI single index j to (n, m).
func osaIndices(j int) (n, m int) {
	n = int((math.Sqrt(float64(8*j+1)) - 1) / 2)
	m = 2*j - n*(n+2)
	return n, m
}

// radial evaluates the Zernike radial polynomial R_n^|m|(rho).
func radial(n, m int, rho float64) float64 {
	if m < 0 {
		m = -m
	}
	if (n-m)%2 != 0 {
		return 0
	}
	sum := 0.0
	for k := 0; k <= (n-m)/2; k++ {
		num := math.Gamma(float64(n-k) + 1)
		den := math.Gamma(float64(k)+1) *
			math.Gamma(float64((n+m)/2-k)+1) *
			math.Gamma(float64((n-m)/2-k)+1)
		term := num / den * math.Pow(rho, float64(n-2*k))
		if k%2 == 1 {
			term = -term
		}
		sum += term
	}
	return sum
}

// Phase implements Profile.
func (z *Zernike) Phase(x, y, _ float64) float64 {
	rho := math.Hypot(x, y) / z.NormRadius
	theta := math.Atan2(y, x)
	phi := 0.0
	for j, c := range z.Coeffs {
		if c == 0 {
			continue
		}
		n, m := osaIndices(j)
		r := radial(n, m, rho)
		switch {
		case m > 0:
			phi += c * r * math.Cos(float64(m)*theta)
		case m < 0:
			phi += c * r * math.Sin(float64(-m)*theta)
		default:
			phi += c * r
		}
	}
	return phi
}

// Gradient implements Profile via central differences; the step is scaled to
// the normalization radius so the stencil stays well inside one part in 10⁶
// of the aperture.
func (z *Zernike) Gradient(x, y, wavelengthUm float64) (float64, float64, float64) {
	h := 1e-6 * z.NormRadius
	gx := (z.Phase(x+h, y, wavelengthUm) - z.Phase(x-h, y, wavelengthUm)) / (2 * h)
	gy := (z.Phase(x, y+h, wavelengthUm) - z.Phase(x, y-h, wavelengthUm)) / (2 * h)
	return gx, gy, 0
}

// ParaxialGradient implements Profile.
func (z *Zernike) ParaxialGradient(y, wavelengthUm float64) float64 {
	_, gy, _ := z.Gradient(0, y, wavelengthUm)
	return gy
}

// Efficiency implements Profile.
func (z *Zernike) Efficiency() float64 { return z.Eff }

func (z *Zernike) encode() (string, any, error) {
	return "zernike", zernikeParams{Coeffs: z.Coeffs, NormRadius: z.NormRadius, Eff: z.Eff}, nil
}
