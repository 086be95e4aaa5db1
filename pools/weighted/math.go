// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package weighted implements the constant-weighted-product curve
// (Balancer weighted pools): invariant = prod(balance_i ^ weight_i).
package weighted

import (
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

var (
	// MinWeight is the smallest normalized weight a token may carry.
	MinWeight = big.NewInt(1e16)

	// Swaps may not move more than 30% of a balance in or out.
	MaxInRatio  = big.NewInt(3e17)
	MaxOutRatio = big.NewInt(3e17)

	MaxInvariantRatio = big.NewInt(3e18)
	MinInvariantRatio = big.NewInt(7e17)
)

// ComputeInvariantDown returns prod(b_i ^ w_i), every step rounded down.
func ComputeInvariantDown(weights, balances []*big.Int) (*big.Int, error) {
	return computeInvariant(weights, balances, fp.PowDown, fp.MulDown)
}

// ComputeInvariantUp returns prod(b_i ^ w_i), every step rounded up.
func ComputeInvariantUp(weights, balances []*big.Int) (*big.Int, error) {
	return computeInvariant(weights, balances, fp.PowUp, fp.MulUp)
}

func computeInvariant(weights, balances []*big.Int, pow, mul func(a, b *big.Int) (*big.Int, error)) (*big.Int, error) {
	if len(balances) < len(weights) {
		return nil, core.ErrInvalidTokenIndex
	}

	invariant := new(big.Int).Set(fp.WAD)
	for i, w := range weights {
		p, err := pow(balances[i], w)
		if err != nil {
			return nil, err
		}
		if invariant, err = mul(invariant, p); err != nil {
			return nil, err
		}
	}

	if invariant.Sign() == 0 {
		return nil, core.ErrZeroInvariant
	}
	return invariant, nil
}

// ComputeOutGivenExactIn returns the amount of token out received for
// amountIn of token in, rounded down.
func ComputeOutGivenExactIn(balanceIn, weightIn, balanceOut, weightOut, amountIn *big.Int) (*big.Int, error) {
	maxIn, err := fp.MulDown(balanceIn, MaxInRatio)
	if err != nil {
		return nil, err
	}
	if amountIn.Cmp(maxIn) > 0 {
		return nil, core.ErrMaxInRatioExceeded
	}

	base, err := fp.DivUp(balanceIn, new(big.Int).Add(balanceIn, amountIn))
	if err != nil {
		return nil, err
	}
	exponent, err := fp.DivDown(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	power, err := fp.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}

	return fp.MulDown(balanceOut, fp.Complement(power))
}

// ComputeInGivenExactOut returns the amount of token in required to
// receive amountOut of token out, rounded up.
func ComputeInGivenExactOut(balanceIn, weightIn, balanceOut, weightOut, amountOut *big.Int) (*big.Int, error) {
	maxOut, err := fp.MulDown(balanceOut, MaxOutRatio)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(maxOut) > 0 {
		return nil, core.ErrMaxOutRatioExceeded
	}

	base, err := fp.DivUp(balanceOut, new(big.Int).Sub(balanceOut, amountOut))
	if err != nil {
		return nil, err
	}
	exponent, err := fp.DivUp(weightOut, weightIn)
	if err != nil {
		return nil, err
	}
	power, err := fp.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}

	return fp.MulUp(balanceIn, power.Sub(power, fp.WAD))
}

// ComputeBalanceOutGivenInvariant returns the balance a token must hold
// for the invariant to scale by invariantRatio, rounded up.
func ComputeBalanceOutGivenInvariant(currentBalance, weight, invariantRatio *big.Int) (*big.Int, error) {
	exponent, err := fp.DivUp(fp.WAD, weight)
	if err != nil {
		return nil, err
	}
	ratio, err := fp.PowUp(invariantRatio, exponent)
	if err != nil {
		return nil, err
	}
	return fp.MulUp(currentBalance, ratio)
}
