// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reclamm implements the readjusting concentrated liquidity
// curve: a constant product over real plus virtual balances, where the
// virtual balances drift over time to follow the market price and to
// move between configured price ratios.
package reclamm

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

const (
	a = 0
	b = 1
)

var (
	ErrNegativeAmountOut           = fmt.Errorf("%w: negative amount out", core.ErrInvalidSwapParameters)
	ErrAmountOutGreaterThanBalance = fmt.Errorf("%w: amount out greater than balance", core.ErrInvalidSwapParameters)
	ErrTwoTokens                   = fmt.Errorf("%w: ReClamm pools have exactly 2 tokens", core.ErrInvalidInput)
)

var ray = fp.MustParse("1000000000000000000000000000000000000")

// VirtualBalances is the virtual (A, B) pair added to the real balances.
type VirtualBalances struct {
	A *big.Int
	B *big.Int
}

func (v VirtualBalances) get(i int) *big.Int {
	if i == a {
		return v.A
	}
	return v.B
}

func u64(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

// PriceRangeShift moves the overvalued virtual balance after elapsed
// seconds and re-derives the undervalued side. Each generation plugs in
// its own variant.
type PriceRangeShift func(balances []*big.Int, v VirtualBalances, above bool, p *core.ReClammParams) (VirtualBalances, error)

// ComputeCurrentVirtualBalances returns the virtual balances at
// p.CurrentTimestamp and whether they differ from the stored ones.
func ComputeCurrentVirtualBalances(balances []*big.Int, p *core.ReClammParams) (VirtualBalances, bool, error) {
	return CurrentVirtualBalances(balances, p, shiftPriceRange)
}

// CurrentVirtualBalances runs the shared update sequence: the price
// ratio transition first, then range tracking when the pool has left
// its target range.
func CurrentVirtualBalances(balances []*big.Int, p *core.ReClammParams, shift PriceRangeShift) (VirtualBalances, bool, error) {
	if len(balances) != 2 || len(p.LastVirtualBalances) != 2 {
		return VirtualBalances{}, false, ErrTwoTokens
	}

	current := VirtualBalances{A: p.LastVirtualBalances[a], B: p.LastVirtualBalances[b]}
	if p.LastTimestamp == p.CurrentTimestamp {
		return current, false, nil
	}

	changed := false
	if p.CurrentTimestamp > p.PriceRatioUpdateStartTime && p.LastTimestamp < p.PriceRatioUpdateEndTime {
		ratio, err := ComputeFourthRootPriceRatio(p.CurrentTimestamp, p.StartFourthRootPriceRatio, p.EndFourthRootPriceRatio, p.PriceRatioUpdateStartTime, p.PriceRatioUpdateEndTime)
		if err != nil {
			return VirtualBalances{}, false, err
		}
		if current, err = VirtualBalancesUpdatingPriceRatio(ratio, balances, current); err != nil {
			return VirtualBalances{}, false, err
		}
		changed = true
	}

	centeredness, above, err := ComputeCenteredness(balances, current)
	if err != nil {
		return VirtualBalances{}, false, err
	}
	if centeredness.Cmp(p.CenterednessMargin) < 0 {
		if current, err = shift(balances, current, above, p); err != nil {
			return VirtualBalances{}, false, err
		}
		changed = true
	}
	return current, changed, nil
}

// VirtualBalancesUpdatingPriceRatio solves for the virtual balances that
// keep the centeredness constant under a new fourth-root price ratio.
//
//	Vu = Ru (1 + C + sqrt(1 + C (C + 4 Q0 - 2))) / 2 (Q0 - 1)
func VirtualBalancesUpdatingPriceRatio(fourthRootPriceRatio *big.Int, balances []*big.Int, last VirtualBalances) (VirtualBalances, error) {
	centeredness, above, err := ComputeCenteredness(balances, last)
	if err != nil {
		return VirtualBalances{}, err
	}

	balUnder, lastUnder, lastOver := balances[b], last.B, last.A
	if above {
		balUnder, lastUnder, lastOver = balances[a], last.A, last.B
	}

	sqrtPriceRatio, err := fp.MulDown(fourthRootPriceRatio, fourthRootPriceRatio)
	if err != nil {
		return VirtualBalances{}, err
	}

	// 36-decimal input so the root comes out with 18 decimals.
	in := new(big.Int).Mul(sqrtPriceRatio, big.NewInt(4))
	in.Add(in, centeredness).Sub(in, fp.TwoWAD)
	in.Mul(in, centeredness).Add(in, ray)
	if in.Sign() < 0 {
		return VirtualBalances{}, fmt.Errorf("%w: negative price ratio discriminant", core.ErrMathOverflow)
	}
	root := fp.Sqrt(in)

	den := new(big.Int).Sub(sqrtPriceRatio, fp.WAD)
	den.Lsh(den, 1)
	if den.Sign() == 0 || lastUnder.Sign() == 0 {
		return VirtualBalances{}, fmt.Errorf("%w: division by zero", core.ErrMathOverflow)
	}

	under := new(big.Int).Add(fp.WAD, centeredness)
	under.Add(under, root).Mul(under, balUnder).Quo(under, den)

	over := new(big.Int).Mul(under, lastOver)
	over.Quo(over, lastUnder)

	if above {
		return VirtualBalances{A: under, B: over}, nil
	}
	return VirtualBalances{A: over, B: under}, nil
}

// shiftPriceRange scales the overvalued virtual balance by
// base^(elapsed seconds).
func shiftPriceRange(balances []*big.Int, v VirtualBalances, above bool, p *core.ReClammParams) (VirtualBalances, error) {
	ratio, err := ComputePriceRatio(balances, v)
	if err != nil {
		return VirtualBalances{}, err
	}
	sqrtPriceRatio := fp.SqrtScaled18(ratio)

	balUnder, balOver, virtOver := balances[b], balances[a], v.A
	if above {
		balUnder, balOver, virtOver = balances[a], balances[b], v.B
	}

	elapsed := new(big.Int).Sub(u64(p.CurrentTimestamp), u64(p.LastTimestamp))
	factor, err := fp.Pow(p.DailyPriceShiftBase, elapsed.Mul(elapsed, fp.WAD))
	if err != nil {
		return VirtualBalances{}, err
	}
	if virtOver, err = fp.MulDown(virtOver, factor); err != nil {
		return VirtualBalances{}, err
	}

	under, err := undervaluedForOvervalued(sqrtPriceRatio, balUnder, balOver, virtOver)
	if err != nil {
		return VirtualBalances{}, err
	}
	if above {
		return VirtualBalances{A: under, B: virtOver}, nil
	}
	return VirtualBalances{A: virtOver, B: under}, nil
}

// undervaluedForOvervalued returns Vu = Ru (Vo + Ro) / ((Q0 - 1) Vo - Ro).
func undervaluedForOvervalued(sqrtPriceRatio, balUnder, balOver, virtOver *big.Int) (*big.Int, error) {
	den, err := fp.MulDown(new(big.Int).Sub(sqrtPriceRatio, fp.WAD), virtOver)
	if err != nil {
		return nil, err
	}
	den.Sub(den, balOver)
	if den.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", core.ErrMathOverflow)
	}

	under := new(big.Int).Add(virtOver, balOver)
	return under.Mul(under, balUnder).Quo(under, den), nil
}

// ComputePriceRatio returns maxPrice / minPrice rounded up.
func ComputePriceRatio(balances []*big.Int, v VirtualBalances) (*big.Int, error) {
	minPrice, maxPrice, err := ComputePriceRange(balances, v)
	if err != nil {
		return nil, err
	}
	return fp.DivUp(maxPrice, minPrice)
}

// ComputePriceRange returns the price of A in B at both range edges:
// Vb^2 / L and L / Va^2.
func ComputePriceRange(balances []*big.Int, v VirtualBalances) (*big.Int, *big.Int, error) {
	invariant, err := ComputeInvariant(balances, v, core.RoundDown)
	if err != nil {
		return nil, nil, err
	}
	if invariant.Sign() == 0 {
		return nil, nil, core.ErrZeroInvariant
	}

	minPrice := new(big.Int).Mul(v.B, v.B)
	minPrice.Quo(minPrice, invariant)

	vaSq, err := fp.MulDown(v.A, v.A)
	if err != nil {
		return nil, nil, err
	}
	maxPrice, err := fp.DivDown(invariant, vaSq)
	if err != nil {
		return nil, nil, err
	}
	return minPrice, maxPrice, nil
}

// ComputeFourthRootPriceRatio interpolates geometrically between start
// and end over [startTime, endTime], never dropping below the smaller
// endpoint.
func ComputeFourthRootPriceRatio(now uint64, start, end *big.Int, startTime, endTime uint64) (*big.Int, error) {
	switch {
	case now >= endTime:
		return new(big.Int).Set(end), nil
	case now <= startTime:
		return new(big.Int).Set(start), nil
	}

	exponent, err := fp.DivDown(u64(now-startTime), u64(endTime-startTime))
	if err != nil {
		return nil, err
	}
	base, err := fp.DivDown(end, start)
	if err != nil {
		return nil, err
	}
	factor, err := fp.Pow(base, exponent)
	if err != nil {
		return nil, err
	}
	current, err := fp.MulDown(start, factor)
	if err != nil {
		return nil, err
	}

	floor := start
	if end.Cmp(start) < 0 {
		floor = end
	}
	if current.Cmp(floor) > 0 {
		return current, nil
	}
	return new(big.Int).Set(floor), nil
}

// ComputeCenteredness returns min(Ra*Vb, Va*Rb) / max(Ra*Vb, Va*Rb) and
// whether the pool sits above centre (token A relatively abundant).
func ComputeCenteredness(balances []*big.Int, v VirtualBalances) (*big.Int, bool, error) {
	if balances[a].Sign() == 0 {
		return new(big.Int), false, nil
	}
	if balances[b].Sign() == 0 {
		return new(big.Int), true, nil
	}

	num := new(big.Int).Mul(balances[a], v.B)
	den := new(big.Int).Mul(v.A, balances[b])
	if num.Cmp(den) <= 0 {
		c, err := fp.DivDown(num, den)
		return c, false, err
	}
	c, err := fp.DivDown(den, num)
	return c, true, err
}

// IsPoolWithinTargetRange reports whether the centeredness is at least
// the margin.
func IsPoolWithinTargetRange(balances []*big.Int, v VirtualBalances, margin *big.Int) (bool, error) {
	c, _, err := ComputeCenteredness(balances, v)
	if err != nil {
		return false, err
	}
	return c.Cmp(margin) >= 0, nil
}

// ComputeInvariant returns (Ra + Va)(Rb + Vb).
func ComputeInvariant(balances []*big.Int, v VirtualBalances, rounding core.Rounding) (*big.Int, error) {
	x := new(big.Int).Add(balances[a], v.A)
	y := new(big.Int).Add(balances[b], v.B)
	if rounding == core.RoundUp {
		return fp.MulUp(x, y)
	}
	return fp.MulDown(x, y)
}

// ComputeOutGivenIn derives the amount out through the rounded-up
// invariant so the swapper absorbs the rounding.
func ComputeOutGivenIn(balances []*big.Int, v VirtualBalances, in, out int, amountIn *big.Int) (*big.Int, error) {
	invariant, err := ComputeInvariant(balances, v, core.RoundUp)
	if err != nil {
		return nil, err
	}

	den := new(big.Int).Add(balances[in], v.get(in))
	newTotalOut, err := fp.DivUp(invariant, den.Add(den, amountIn))
	if err != nil {
		return nil, err
	}

	totalOut := new(big.Int).Add(balances[out], v.get(out))
	if newTotalOut.Cmp(totalOut) > 0 {
		return nil, ErrNegativeAmountOut
	}
	amountOut := totalOut.Sub(totalOut, newTotalOut)
	if amountOut.Cmp(balances[out]) > 0 {
		return nil, ErrAmountOutGreaterThanBalance
	}
	return amountOut, nil
}

// ComputeInGivenOut returns the amount in for an exact amount out,
// rounded up.
func ComputeInGivenOut(balances []*big.Int, v VirtualBalances, in, out int, amountOut *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balances[out]) > 0 {
		return nil, ErrAmountOutGreaterThanBalance
	}

	invariant, err := ComputeInvariant(balances, v, core.RoundUp)
	if err != nil {
		return nil, err
	}

	den := new(big.Int).Add(balances[out], v.get(out))
	amountIn, err := fp.DivUp(invariant, den.Sub(den, amountOut))
	if err != nil {
		return nil, err
	}
	amountIn.Sub(amountIn, balances[in])
	return amountIn.Sub(amountIn, v.get(in)), nil
}
