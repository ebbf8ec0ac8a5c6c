// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Jacobian deals with the 4x4 quaternion left/right multiplication matrices
// and the projected bilinear form built from them that is used to linearise
// relative angular velocity across a rotational joint.
//
// For quaternions p, q with column vector (w, x, y, z):
//    L(q)*p represents the quaternion product q*p
//    R(q)*p represents the quaternion product p*q
// Project(M) extracts the bottom right 3x3 block of 4x4 matrix M, the block
// indexed by the imaginary (x, y, z) rows and columns.
//
// ProjectMultiplyLeftRight(a, b) is Project(L(a) * R(b)) expanded by hand
// into nine bilinear terms. The expansion below was checked against the
// matrix product entry by entry; do not simplify or reorder the terms
// without rechecking against L(a)*R(b).

// SetProjectMultiplyLeftRight updates m to be Project(L(a)*R(b)), the 3x3
// rotational Jacobian block for quaternions a and b. Quaternions a and b
// are unchanged. The updated matrix m is returned.
func (m *M3) SetProjectMultiplyLeftRight(a, b *Q) *M3 {
	aw, ax, ay, az := a.W, a.X, a.Y, a.Z
	bw, bx, by, bz := b.W, b.X, b.Y, b.Z

	m.Xx = aw*bw - ax*bx + ay*by + az*bz
	m.Xy = -(ax*by + ay*bx) + aw*bz - az*bw
	m.Xz = -(ax*bz + az*bx) + ay*bw - aw*by

	m.Yx = -ay*bx - ax*by - aw*bz + az*bw
	m.Yy = aw*bw + ax*bx - ay*by + az*bz
	m.Yz = -(ay*bz + az*by) + aw*bx - ax*bw

	m.Zx = -az*bx - ax*bz - ay*bw + aw*by
	m.Zy = -az*by - ay*bz + ax*bw - aw*bx
	m.Zz = aw*bw + ax*bx + ay*by - az*bz
	return m
}
