// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"
	"slices"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
	"github.com/luxfi/balancer/pools/stable"
)

// StableSurge charges a fee that grows linearly from the static fee to
// a maximum once a swap leaves the pool more imbalanced than the
// threshold. Unbalanced liquidity changes that do the same are vetoed.
type StableSurge struct {
	Default
	state *core.StableSurgeHookState
}

// NewStableSurge binds the surge policy to s.
func NewStableSurge(s *core.StableSurgeHookState) *StableSurge {
	return &StableSurge{state: s}
}

func (*StableSurge) Type() core.HookType { return core.HookTypeStableSurge }

func (*StableSurge) Flags() Flags {
	return CallComputeDynamicSwapFee | CallAfterAddLiquidity | CallAfterRemoveLiquidity
}

// OnComputeDynamicSwapFee simulates the swap on the stable curve and
// prices the resulting imbalance.
func (h *StableSurge) OnComputeDynamicSwapFee(params *core.SwapParams, staticSwapFee *big.Int) (*big.Int, error) {
	calculated, err := stable.NewPool(h.state.Amp).OnSwap(params)
	if err != nil {
		return nil, err
	}

	newBalances := core.CopyAmounts(params.BalancesLiveScaled18)
	in, out := newBalances[params.IndexIn], newBalances[params.IndexOut]
	if params.SwapKind == core.GivenIn {
		in.Add(in, params.AmountGivenScaled18)
		out.Sub(out, calculated)
	} else {
		in.Add(in, calculated)
		out.Sub(out, params.AmountGivenScaled18)
	}

	newImbalance, err := Imbalance(newBalances)
	if err != nil {
		return nil, err
	}
	surging, err := h.isSurging(params.BalancesLiveScaled18, newImbalance)
	if err != nil {
		return nil, err
	}
	if !surging {
		return new(big.Int).Set(staticSwapFee), nil
	}

	threshold := h.state.SurgeThresholdPercentage
	feeDifference := new(big.Int).Sub(h.state.MaxSurgeFeePercentage, staticSwapFee)
	excess := new(big.Int).Sub(newImbalance, threshold)

	multiplier, err := fp.DivDown(excess, fp.Complement(threshold))
	if err != nil {
		return nil, err
	}
	increase, err := fp.MulDown(feeDifference, multiplier)
	if err != nil {
		return nil, err
	}
	return increase.Add(increase, staticSwapFee), nil
}

func (h *StableSurge) OnAfterAddLiquidity(_ core.AddLiquidityKind, amountsInScaled18, amountsInRaw []*big.Int, _ *big.Int, balancesScaled18 []*big.Int) ([]*big.Int, error) {
	old := make([]*big.Int, len(balancesScaled18))
	for i, b := range balancesScaled18 {
		old[i] = new(big.Int).Sub(b, amountsInScaled18[i])
	}
	if err := h.checkNotSurging(old, balancesScaled18); err != nil {
		return nil, err
	}
	return core.CopyAmounts(amountsInRaw), nil
}

func (h *StableSurge) OnAfterRemoveLiquidity(kind core.RemoveLiquidityKind, _ *big.Int, amountsOutScaled18, amountsOutRaw, balancesScaled18 []*big.Int) ([]*big.Int, error) {
	// Proportional exits never change the imbalance.
	if kind == core.RemoveProportional {
		return core.CopyAmounts(amountsOutRaw), nil
	}

	old := make([]*big.Int, len(balancesScaled18))
	for i, b := range balancesScaled18 {
		old[i] = new(big.Int).Add(b, amountsOutScaled18[i])
	}
	if err := h.checkNotSurging(old, balancesScaled18); err != nil {
		return nil, err
	}
	return core.CopyAmounts(amountsOutRaw), nil
}

func (h *StableSurge) checkNotSurging(oldBalances, newBalances []*big.Int) error {
	newImbalance, err := Imbalance(newBalances)
	if err != nil {
		return err
	}
	surging, err := h.isSurging(oldBalances, newImbalance)
	if err != nil {
		return err
	}
	if surging {
		return ErrSurging
	}
	return nil
}

// isSurging reports whether the move to newImbalance both worsens the
// pool and lands above the threshold.
func (h *StableSurge) isSurging(oldBalances []*big.Int, newImbalance *big.Int) (bool, error) {
	if newImbalance.Sign() == 0 {
		return false, nil
	}
	oldImbalance, err := Imbalance(oldBalances)
	if err != nil {
		return false, err
	}
	return newImbalance.Cmp(oldImbalance) > 0 && newImbalance.Cmp(h.state.SurgeThresholdPercentage) > 0, nil
}

// Imbalance is sum(|b - median|) / sum(b) as an 18-decimal fraction.
func Imbalance(balances []*big.Int) (*big.Int, error) {
	median := Median(balances)

	total := new(big.Int)
	diff := new(big.Int)
	d := new(big.Int)
	for _, b := range balances {
		total.Add(total, b)
		diff.Add(diff, d.Abs(d.Sub(b, median)))
	}
	return fp.DivDown(diff, total)
}

// Median of balances; the mean of the two middle values, rounded down,
// for an even count.
func Median(balances []*big.Int) *big.Int {
	if len(balances) == 0 {
		return new(big.Int)
	}
	sorted := slices.Clone(balances)
	slices.SortFunc(sorted, func(a, b *big.Int) int { return a.Cmp(b) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return new(big.Int).Set(sorted[mid])
	}
	m := new(big.Int).Add(sorted[mid-1], sorted[mid])
	return m.Rsh(m, 1)
}
