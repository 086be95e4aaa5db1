// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import "math/big"

// Sqrt is the OpenZeppelin integer square root: floor(sqrt(a)) for
// non-negative a.
func Sqrt(a *big.Int) *big.Int {
	if a.Cmp(One) <= 0 {
		return new(big.Int).Set(a)
	}

	aa := new(big.Int).Set(a)
	xn := big.NewInt(1)
	for _, s := range []uint{128, 64, 32, 16, 8, 4} {
		if aa.BitLen() > int(s) {
			aa.Rsh(aa, s)
			xn.Lsh(xn, s/2)
		}
	}
	if aa.Cmp(big.NewInt(4)) >= 0 {
		xn.Lsh(xn, 1)
	}

	xn.Mul(xn, big.NewInt(3)).Rsh(xn, 1)

	q := new(big.Int)
	for i := 0; i < 5; i++ {
		q.Quo(a, xn)
		xn.Add(xn, q).Rsh(xn, 1)
	}

	if xn.Cmp(q.Quo(a, xn)) > 0 {
		return xn.Sub(xn, One)
	}
	return xn
}

// SqrtScaled18 returns sqrt(x) for an 18-decimal x.
func SqrtScaled18(x *big.Int) *big.Int {
	return Sqrt(new(big.Int).Mul(x, WAD))
}
