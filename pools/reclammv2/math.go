// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reclammv2 is the second ReClamm generation. It shares the
// centeredness, price range and price ratio machinery with reclamm and
// differs in the swap formulas and the range tracking step.
package reclammv2

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
	"github.com/luxfi/balancer/pools/reclamm"
)

// MaxShiftDuration caps the elapsed seconds fed to the daily price
// shift so PowDown stays in range.
const MaxShiftDuration = 30 * 24 * 60 * 60

var maxShiftDuration = big.NewInt(MaxShiftDuration)

// ComputeCurrentVirtualBalances returns the virtual balances at
// p.CurrentTimestamp and whether they moved.
func ComputeCurrentVirtualBalances(balances []*big.Int, p *core.ReClammParams) (reclamm.VirtualBalances, bool, error) {
	return reclamm.CurrentVirtualBalances(balances, p, shiftPriceRange)
}

func shiftPriceRange(balances []*big.Int, v reclamm.VirtualBalances, above bool, p *core.ReClammParams) (reclamm.VirtualBalances, error) {
	ratio, err := reclamm.ComputePriceRatio(balances, v)
	if err != nil {
		return reclamm.VirtualBalances{}, err
	}
	sqrtPriceRatio := fp.SqrtScaled18(ratio)

	balUnder, balOver, virtOver := balances[1], balances[0], v.A
	if above {
		balUnder, balOver, virtOver = balances[0], balances[1], v.B
	}

	duration := new(big.Int).SetUint64(p.CurrentTimestamp)
	duration.Sub(duration, new(big.Int).SetUint64(p.LastTimestamp))
	if duration.Cmp(maxShiftDuration) > 0 {
		duration.Set(maxShiftDuration)
	}
	factor, err := fp.PowDown(p.DailyPriceShiftBase, duration.Mul(duration, fp.WAD))
	if err != nil {
		return reclamm.VirtualBalances{}, err
	}
	if virtOver, err = fp.MulDown(virtOver, factor); err != nil {
		return reclamm.VirtualBalances{}, err
	}

	// Vo never drops below the value that puts the pool at centeredness 1.
	fourthRoot := new(big.Int).Sub(fp.SqrtScaled18(sqrtPriceRatio), fp.WAD)
	minOver, err := fp.DivDown(balOver, fourthRoot)
	if err != nil {
		return reclamm.VirtualBalances{}, err
	}
	if virtOver.Cmp(minOver) < 0 {
		virtOver = minOver
	}

	den, err := fp.MulDown(new(big.Int).Sub(sqrtPriceRatio, fp.WAD), virtOver)
	if err != nil {
		return reclamm.VirtualBalances{}, err
	}
	den.Sub(den, balOver)
	if den.Sign() == 0 {
		return reclamm.VirtualBalances{}, fmt.Errorf("%w: division by zero", core.ErrMathOverflow)
	}
	under := new(big.Int).Add(virtOver, balOver)
	under.Mul(under, balUnder).Quo(under, den)

	if above {
		return reclamm.VirtualBalances{A: under, B: virtOver}, nil
	}
	return reclamm.VirtualBalances{A: virtOver, B: under}, nil
}

func virtualFor(v reclamm.VirtualBalances, i int) *big.Int {
	if i == 0 {
		return v.A
	}
	return v.B
}

// ComputeOutGivenIn returns (Bo + Vo) * Ai / (Bi + Vi + Ai), truncated.
func ComputeOutGivenIn(balances []*big.Int, v reclamm.VirtualBalances, in, out int, amountIn *big.Int) (*big.Int, error) {
	den := new(big.Int).Add(balances[in], virtualFor(v, in))
	den.Add(den, amountIn)
	if den.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", core.ErrMathOverflow)
	}

	amountOut := new(big.Int).Add(balances[out], virtualFor(v, out))
	amountOut.Mul(amountOut, amountIn).Quo(amountOut, den)
	if amountOut.Cmp(balances[out]) > 0 {
		return nil, reclamm.ErrAmountOutGreaterThanBalance
	}
	return amountOut, nil
}

// ComputeInGivenOut returns (Bi + Vi) * Ao / (Bo + Vo - Ao), rounded up.
func ComputeInGivenOut(balances []*big.Int, v reclamm.VirtualBalances, in, out int, amountOut *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balances[out]) > 0 {
		return nil, reclamm.ErrAmountOutGreaterThanBalance
	}

	totalIn := new(big.Int).Add(balances[in], virtualFor(v, in))
	den := new(big.Int).Add(balances[out], virtualFor(v, out))
	return fp.MulDivUp(totalIn, amountOut, den.Sub(den, amountOut))
}
