// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
)

// LogExpMath constants. x values are exponents, a values are e^x.
// x0 and x1 carry 18 decimals and a0, a1 none; x2 onward and a2 onward
// carry 20 decimals.
var (
	maxNaturalExponent = MustParse("130000000000000000000")
	minNaturalExponent = MustParse("-41000000000000000000")
	ln36LowerBound     = MustParse("900000000000000000")
	ln36UpperBound     = MustParse("1100000000000000000")

	// 2^254 / HUNDRED_WAD
	mildExponentBound = MustParse("289480223093290488558927462521719769633174961664101410098")
	twoPow255         = new(big.Int).Lsh(One, 255)

	ray        = MustParse("1000000000000000000000000000000000000")
	hundredWAD = MustParse("100000000000000000000")
	hundred    = big.NewInt(100)

	x0 = MustParse("128000000000000000000")
	a0 = MustParse("38877084059945950922200000000000000000000000000000000000")
	x1 = MustParse("64000000000000000000")
	a1 = MustParse("6235149080811616882910000000")

	a0WAD = new(big.Int).Mul(a0, WAD)
	a1WAD = new(big.Int).Mul(a1, WAD)

	// x2..x11 and a2..a11 in 20 decimals.
	expTable = []struct{ x, a *big.Int }{
		{MustParse("3200000000000000000000"), MustParse("7896296018268069516100000000000000")},
		{MustParse("1600000000000000000000"), MustParse("888611052050787263676000000")},
		{MustParse("800000000000000000000"), MustParse("298095798704172827474000")},
		{MustParse("400000000000000000000"), MustParse("5459815003314423907810")},
		{MustParse("200000000000000000000"), MustParse("738905609893065022723")},
		{MustParse("100000000000000000000"), MustParse("271828182845904523536")},
		{MustParse("50000000000000000000"), MustParse("164872127070012814685")},
		{MustParse("25000000000000000000"), MustParse("128402541668774148407")},
		{MustParse("12500000000000000000"), MustParse("113314845306682631683")},
		{MustParse("6250000000000000000"), MustParse("106449445891785942956")},
	}
)

// Pow computes x^y for 18-decimal x and y using ln and exp. The result
// is accurate to within MaxPowRelativeError; callers pick a rounding
// direction through PowUp or PowDown.
func Pow(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return new(big.Int).Set(WAD), nil
	}
	if x.Sign() == 0 {
		return new(big.Int), nil
	}
	if x.Sign() < 0 || x.Cmp(twoPow255) >= 0 {
		return nil, fmt.Errorf("%w: pow base out of bounds", core.ErrMathOverflow)
	}
	if y.Cmp(mildExponentBound) >= 0 {
		return nil, fmt.Errorf("%w: pow exponent out of bounds", core.ErrMathOverflow)
	}

	var logxTimesY *big.Int
	if x.Cmp(ln36LowerBound) > 0 && x.Cmp(ln36UpperBound) < 0 {
		l := ln36(x)
		hi := new(big.Int).Quo(l, WAD)
		hi.Mul(hi, y)
		lo := new(big.Int).Rem(l, WAD)
		lo.Mul(lo, y).Quo(lo, WAD)
		logxTimesY = hi.Add(hi, lo)
	} else {
		logxTimesY = ln(x)
		logxTimesY.Mul(logxTimesY, y)
	}
	logxTimesY.Quo(logxTimesY, WAD)

	if logxTimesY.Cmp(minNaturalExponent) < 0 || logxTimesY.Cmp(maxNaturalExponent) > 0 {
		return nil, fmt.Errorf("%w: pow product out of bounds", core.ErrMathOverflow)
	}
	return exp(logxTimesY)
}

func exp(x *big.Int) (*big.Int, error) {
	if x.Cmp(minNaturalExponent) < 0 || x.Cmp(maxNaturalExponent) > 0 {
		return nil, fmt.Errorf("%w: exp argument out of bounds", core.ErrMathOverflow)
	}
	if x.Sign() < 0 {
		inv, err := exp(new(big.Int).Neg(x))
		if err != nil {
			return nil, err
		}
		r := new(big.Int).Mul(WAD, WAD)
		return r.Quo(r, inv), nil
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	switch {
	case x.Cmp(x0) >= 0:
		x.Sub(x, x0)
		firstAN.Set(a0)
	case x.Cmp(x1) >= 0:
		x.Sub(x, x1)
		firstAN.Set(a1)
	}

	x.Mul(x, hundred)

	product := new(big.Int).Set(hundredWAD)
	for _, e := range expTable[:8] {
		if x.Cmp(e.x) >= 0 {
			x.Sub(x, e.x)
			product.Mul(product, e.a).Quo(product, hundredWAD)
		}
	}

	// Taylor series up to the 12th term.
	sum := new(big.Int).Add(hundredWAD, x)
	term := new(big.Int).Set(x)
	for n := int64(2); n <= 12; n++ {
		term.Mul(term, x).Quo(term, hundredWAD).Quo(term, big.NewInt(n))
		sum.Add(sum, term)
	}

	r := product.Mul(product, sum)
	r.Quo(r, hundredWAD).Mul(r, firstAN).Quo(r, hundred)
	return r, nil
}

// ln is the natural logarithm of a positive 18-decimal value.
func ln(x *big.Int) *big.Int {
	if x.Cmp(WAD) < 0 {
		inv := new(big.Int).Mul(WAD, WAD)
		inv.Quo(inv, x)
		r := ln(inv)
		return r.Neg(r)
	}

	a := new(big.Int).Set(x)
	sum := new(big.Int)
	if a.Cmp(a0WAD) >= 0 {
		a.Quo(a, a0)
		sum.Add(sum, x0)
	}
	if a.Cmp(a1WAD) >= 0 {
		a.Quo(a, a1)
		sum.Add(sum, x1)
	}

	sum.Mul(sum, hundred)
	a.Mul(a, hundred)

	for _, e := range expTable {
		if a.Cmp(e.a) >= 0 {
			a.Mul(a, hundredWAD).Quo(a, e.a)
			sum.Add(sum, e.x)
		}
	}

	z := new(big.Int).Sub(a, hundredWAD)
	z.Mul(z, hundredWAD).Quo(z, new(big.Int).Add(a, hundredWAD))
	series := oddSeries(z, hundredWAD, 11)

	r := sum.Add(sum, series)
	return r.Quo(r, hundred)
}

// ln36 computes ln(x) with 36 decimals for x close to one.
func ln36(x *big.Int) *big.Int {
	xr := new(big.Int).Mul(x, WAD)
	z := new(big.Int).Sub(xr, ray)
	z.Mul(z, ray).Quo(z, new(big.Int).Add(xr, ray))
	return oddSeries(z, ray, 15)
}

// oddSeries returns 2 * (z + z^3/3 + ... + z^last/last) at the given
// precision.
func oddSeries(z, one *big.Int, last int64) *big.Int {
	z2 := new(big.Int).Mul(z, z)
	z2.Quo(z2, one)

	num := new(big.Int).Set(z)
	sum := new(big.Int).Set(z)
	for d := int64(3); d <= last; d += 2 {
		num.Mul(num, z2).Quo(num, one)
		sum.Add(sum, new(big.Int).Quo(num, big.NewInt(d)))
	}
	return sum.Mul(sum, Two)
}
