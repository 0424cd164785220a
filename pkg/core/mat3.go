package core

import "math"

// Mat3 is a 3x3 row-major matrix used for rigid rotations
type Mat3 struct {
	M [3][3]float64
}

// Identity3 returns the 3x3 identity matrix
func Identity3() Mat3 {
	return Mat3{M: [3][3]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}}
}

func rotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	m := Identity3()
	m.M[1][1], m.M[1][2] = c, -s
	m.M[2][1], m.M[2][2] = s, c
	return m
}

func rotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	m := Identity3()
	m.M[0][0], m.M[0][2] = c, s
	m.M[2][0], m.M[2][2] = -s, c
	return m
}

func rotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	m := Identity3()
	m.M[0][0], m.M[0][1] = c, -s
	m.M[1][0], m.M[1][1] = s, c
	return m
}

// RotationXYZ composes the rotation Rz(rz)·Ry(ry)·Rx(rx), mapping a
// surface's local axes into the global frame.
func RotationXYZ(rx, ry, rz float64) Mat3 {
	r := rotX(rx)
	r = rotY(ry).Mul(r)
	r = rotZ(rz).Mul(r)
	return r
}

// Mul returns the matrix product m·other
func (m Mat3) Mul(other Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += m.M[i][k] * other.M[k][j]
			}
			out.M[i][j] = sum
		}
	}
	return out
}

// Transpose returns the transposed matrix; for a rotation this is its inverse
func (m Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.M[i][j] = m.M[j][i]
		}
	}
	return out
}

// Apply returns m·v
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		Y: m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		Z: m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}
