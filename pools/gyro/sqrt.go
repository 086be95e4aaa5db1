// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// Initial guesses for inputs below one, keyed by upper bound.
var sqrtGuesses = []struct{ max, guess *big.Int }{
	{big.NewInt(10), big.NewInt(3162277660)},
	{big.NewInt(100), big.NewInt(10000000000)},
	{big.NewInt(1000), big.NewInt(31622776601)},
	{big.NewInt(10000), big.NewInt(100000000000)},
	{big.NewInt(100000), big.NewInt(316227766016)},
	{big.NewInt(1000000), big.NewInt(1000000000000)},
	{big.NewInt(10000000), big.NewInt(3162277660168)},
	{big.NewInt(100000000), big.NewInt(10000000000000)},
	{big.NewInt(1000000000), big.NewInt(31622776601683)},
	{big.NewInt(10000000000), big.NewInt(100000000000000)},
	{big.NewInt(100000000000), big.NewInt(316227766016837)},
	{big.NewInt(1000000000000), big.NewInt(1000000000000000)},
	{big.NewInt(10000000000000), big.NewInt(3162277660168379)},
	{big.NewInt(100000000000000), big.NewInt(10000000000000000)},
	{big.NewInt(1000000000000000), big.NewInt(31622776601683793)},
	{big.NewInt(10000000000000000), big.NewInt(100000000000000000)},
	{big.NewInt(100000000000000000), big.NewInt(316227766016837933)},
}

// ErrSqrtTolerance reports a square root outside the requested tolerance.
var ErrSqrtTolerance = fmt.Errorf("%w: sqrt tolerance exceeded", core.ErrMathOverflow)

// Sqrt returns the 18-decimal square root of x using seven Newton steps,
// and checks the result squares back to x within tolerance units.
func Sqrt(x *big.Int, tolerance int64) (*big.Int, error) {
	if x.Sign() == 0 {
		return new(big.Int), nil
	}

	guess := initialGuess(x)
	xWAD := new(big.Int).Mul(x, fp.WAD)
	q := new(big.Int)
	for i := 0; i < 7; i++ {
		q.Quo(xWAD, guess)
		guess.Add(guess, q).Quo(guess, fp.Two)
	}

	sq := new(big.Int).Mul(guess, guess)
	sq.Quo(sq, fp.WAD)
	margin := mulUpFixed(guess, big.NewInt(tolerance))
	if sq.Cmp(add(x, margin)) > 0 || sq.Cmp(sub(x, margin)) < 0 {
		return nil, ErrSqrtTolerance
	}
	return guess, nil
}

func mustSqrt(x *big.Int, tolerance int64) *big.Int {
	r, err := Sqrt(x, tolerance)
	if err != nil {
		fail(err)
	}
	return r
}

func initialGuess(x *big.Int) *big.Int {
	if x.Cmp(fp.WAD) >= 0 {
		g := new(big.Int).Lsh(fp.One, intLog2Halved(new(big.Int).Quo(x, fp.WAD)))
		return g.Mul(g, fp.WAD)
	}
	for _, e := range sqrtGuesses {
		if x.Cmp(e.max) <= 0 {
			return new(big.Int).Set(e.guess)
		}
	}
	return new(big.Int).Set(x)
}

func intLog2Halved(x *big.Int) uint {
	var n uint
	for _, s := range []uint{128, 64, 32, 16, 8, 4, 2} {
		if x.BitLen() > int(s) {
			x.Rsh(x, s)
			n += s / 2
		}
	}
	return n
}
