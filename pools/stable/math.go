// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package stable implements the StableSwap curve. Amplification values
// carry AmpPrecision.
package stable

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

const (
	AmpPrecision = 1000

	maxIterations = 255
)

var (
	MinInvariantRatio = big.NewInt(6e17)
	MaxInvariantRatio = big.NewInt(5e18)

	ampPrecision = big.NewInt(AmpPrecision)
)

var errDivisionByZero = fmt.Errorf("%w: division by zero", core.ErrMathOverflow)

// ComputeInvariant solves the StableSwap invariant D with Newton's
// method. A pool with no balance has a zero invariant.
func ComputeInvariant(amp *big.Int, balances []*big.Int) (*big.Int, error) {
	total := new(big.Int)
	for _, b := range balances {
		total.Add(total, b)
	}
	if total.Sign() == 0 {
		return new(big.Int), nil
	}

	n := big.NewInt(int64(len(balances)))
	ampTimesTotal := new(big.Int).Mul(amp, n)
	invariant := new(big.Int).Set(total)

	for i := 0; i < maxIterations; i++ {
		dP := new(big.Int).Set(invariant)
		for _, b := range balances {
			den := new(big.Int).Mul(b, n)
			if den.Sign() == 0 {
				return nil, errDivisionByZero
			}
			dP.Mul(dP, invariant).Quo(dP, den)
		}

		prev := invariant

		num := new(big.Int).Mul(ampTimesTotal, total)
		num.Quo(num, ampPrecision)
		num.Add(num, new(big.Int).Mul(dP, n))
		num.Mul(num, invariant)

		den := new(big.Int).Sub(ampTimesTotal, ampPrecision)
		den.Mul(den, invariant).Quo(den, ampPrecision)
		den.Add(den, new(big.Int).Mul(big.NewInt(int64(len(balances)+1)), dP))
		if den.Sign() == 0 {
			return nil, errDivisionByZero
		}

		invariant = num.Quo(num, den)
		if converged(invariant, prev) {
			return invariant, nil
		}
	}

	return nil, core.ErrStableInvariantDidntConverge
}

// ComputeOutGivenExactIn returns the amount out for amountIn, rounded
// in favour of the pool.
func ComputeOutGivenExactIn(amp *big.Int, balances []*big.Int, indexIn, indexOut int, amountIn, invariant *big.Int) (*big.Int, error) {
	bs := core.CopyAmounts(balances)
	bs[indexIn].Add(bs[indexIn], amountIn)

	final, err := ComputeBalance(amp, bs, invariant, indexOut)
	if err != nil {
		return nil, err
	}

	out := new(big.Int).Sub(bs[indexOut], final)
	return out.Sub(out, fp.One), nil
}

// ComputeInGivenExactOut returns the amount in for amountOut, rounded
// in favour of the pool.
func ComputeInGivenExactOut(amp *big.Int, balances []*big.Int, indexIn, indexOut int, amountOut, invariant *big.Int) (*big.Int, error) {
	bs := core.CopyAmounts(balances)
	bs[indexOut].Sub(bs[indexOut], amountOut)

	final, err := ComputeBalance(amp, bs, invariant, indexIn)
	if err != nil {
		return nil, err
	}

	in := new(big.Int).Sub(final, bs[indexIn])
	return in.Add(in, fp.One), nil
}

// ComputeBalance solves for the balance of tokenIndex that keeps the
// invariant given all other balances.
func ComputeBalance(amp *big.Int, balances []*big.Int, invariant *big.Int, tokenIndex int) (*big.Int, error) {
	if invariant.Sign() == 0 {
		return nil, errDivisionByZero
	}

	n := big.NewInt(int64(len(balances)))
	ampTimesTotal := new(big.Int).Mul(amp, n)
	if ampTimesTotal.Sign() == 0 {
		return nil, errDivisionByZero
	}

	sum := new(big.Int).Set(balances[0])
	pD := new(big.Int).Mul(balances[0], n)
	for _, b := range balances[1:] {
		pD.Mul(pD, b).Mul(pD, n).Quo(pD, invariant)
		sum.Add(sum, b)
	}
	sum.Sub(sum, balances[tokenIndex])

	inv2 := new(big.Int).Mul(invariant, invariant)
	c := fp.DivUpRaw(new(big.Int).Mul(inv2, ampPrecision), new(big.Int).Mul(ampTimesTotal, pD))
	c.Mul(c, balances[tokenIndex])

	b := new(big.Int).Mul(invariant, ampPrecision)
	b.Quo(b, ampTimesTotal).Add(b, sum)

	balance := fp.DivUpRaw(new(big.Int).Add(inv2, c), new(big.Int).Add(invariant, b))

	for i := 0; i < maxIterations; i++ {
		prev := balance

		num := new(big.Int).Mul(balance, balance)
		num.Add(num, c)
		den := new(big.Int).Mul(balance, fp.Two)
		den.Add(den, b).Sub(den, invariant)

		balance = fp.DivUpRaw(num, den)
		if converged(balance, prev) {
			return balance, nil
		}
	}

	return nil, core.ErrStableInvariantDidntConverge
}

func converged(cur, prev *big.Int) bool {
	d := new(big.Int).Sub(cur, prev)
	return d.CmpAbs(fp.One) <= 0
}
