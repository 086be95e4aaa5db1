// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// Signed fixed point helpers. "Mag" variants round the magnitude, so an
// "up" result moves away from zero for negative values. "Xp" values
// carry 38 decimals.

var (
	one   = fp.WAD
	oneXP = fp.MustParse("100000000000000000000000000000000000000")
	e19   = fp.MustParse("10000000000000000000")
)

// calcError carries an arithmetic failure out of the internal helpers.
// Exported entry points convert it back into an error with recoverCalc.
type calcError struct{ err error }

func fail(err error) { panic(calcError{err}) }

func recoverCalc(errp *error) {
	if r := recover(); r != nil {
		ce, ok := r.(calcError)
		if !ok {
			panic(r)
		}
		*errp = ce.err
	}
}

func nonZero(b *big.Int) {
	if b.Sign() == 0 {
		fail(fmt.Errorf("%w: division by zero", core.ErrMathOverflow))
	}
}

func add(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }
func sub(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
func neg(a *big.Int) *big.Int    { return new(big.Int).Neg(a) }

func mulInt(a *big.Int, k int64) *big.Int { return new(big.Int).Mul(a, big.NewInt(k)) }
func addInt(a *big.Int, k int64) *big.Int { return new(big.Int).Add(a, big.NewInt(k)) }

func mulDownMag(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, one)
}

func mulUpMag(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	switch p.Sign() {
	case 1:
		p.Sub(p, fp.One).Quo(p, one)
		return p.Add(p, fp.One)
	case -1:
		p.Add(p, fp.One).Quo(p, one)
		return p.Sub(p, fp.One)
	}
	return p
}

// mulUpFixed rounds a non-negative product up; a negative product is
// treated as a plain offset by one.
func mulUpFixed(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	if p.Sign() == 0 {
		return p
	}
	p.Sub(p, fp.One).Quo(p, one)
	return p.Add(p, fp.One)
}

func divDownMag(a, b *big.Int) *big.Int {
	nonZero(b)
	p := new(big.Int).Mul(a, one)
	return p.Quo(p, b)
}

func divUpMag(a, b *big.Int) *big.Int {
	nonZero(b)
	if a.Sign() == 0 {
		return new(big.Int)
	}
	x, y := a, b
	if b.Sign() < 0 {
		x, y = neg(a), neg(b)
	}
	p := new(big.Int).Mul(x, one)
	if p.Sign() > 0 {
		p.Sub(p, fp.One).Quo(p, y)
		return p.Add(p, fp.One)
	}
	p.Add(p, fp.One).Quo(p, y)
	return p.Sub(p, fp.One)
}

func mulXp(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, oneXP)
}

func divXp(a, b *big.Int) *big.Int {
	nonZero(b)
	p := new(big.Int).Mul(a, oneXP)
	return p.Quo(p, b)
}

// splitXp multiplies a by the two halves of b (split at 1e19) so the
// products stay inside 256 bits.
func splitXp(a, b *big.Int) (*big.Int, *big.Int, *big.Int) {
	b1 := new(big.Int).Quo(b, e19)
	b2 := new(big.Int).Rem(b, e19)
	p1 := b1.Mul(a, b1)
	p2 := b2.Mul(a, b2)
	return p1, p2, new(big.Int).Quo(p2, e19)
}

// mulDownXpToNp multiplies an 18-decimal a by a 38-decimal b, returning
// 18 decimals rounded down in magnitude.
func mulDownXpToNp(a, b *big.Int) *big.Int {
	p1, p2, p2d := splitXp(a, b)
	nonNeg := p1.Sign() >= 0 && p2.Sign() >= 0
	r := p1.Add(p1, p2d)
	if nonNeg {
		return r.Quo(r, e19)
	}
	r.Add(r, fp.One).Quo(r, e19)
	return r.Sub(r, fp.One)
}

// mulUpXpToNp is mulDownXpToNp rounded up in magnitude.
func mulUpXpToNp(a, b *big.Int) *big.Int {
	p1, p2, p2d := splitXp(a, b)
	nonPos := p1.Sign() <= 0 && p2.Sign() <= 0
	r := p1.Add(p1, p2d)
	if nonPos {
		return r.Quo(r, e19)
	}
	r.Sub(r, fp.One).Quo(r, e19)
	return r.Add(r, fp.One)
}
