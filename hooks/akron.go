// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// Akron prices a weighted pool swap at the loss-versus-rebalancing an
// arbitrageur would extract from it, floored at a configured minimum.
type Akron struct {
	Default
	state *core.AkronHookState
}

// NewAkron binds the LVR fee policy to s.
func NewAkron(s *core.AkronHookState) *Akron {
	return &Akron{state: s}
}

func (*Akron) Type() core.HookType { return core.HookTypeAkron }
func (*Akron) Flags() Flags        { return CallComputeDynamicSwapFee }

// OnComputeDynamicSwapFee ignores the static fee. A trade too large for
// the closed form is charged the minimum.
func (h *Akron) OnComputeDynamicSwapFee(params *core.SwapParams, _ *big.Int) (*big.Int, error) {
	w := h.state.Weights
	if params.IndexIn < 0 || params.IndexOut < 0 || params.IndexIn >= len(w) || params.IndexOut >= len(w) {
		return nil, core.ErrInvalidTokenIndex
	}

	var (
		calculated *big.Int
		err        error
	)
	if params.SwapKind == core.GivenIn {
		calculated, err = akronFeeGivenIn(params.BalancesLiveScaled18[params.IndexIn], w[params.IndexIn], w[params.IndexOut], params.AmountGivenScaled18)
	} else {
		calculated, err = akronFeeGivenOut(params.BalancesLiveScaled18[params.IndexOut], w[params.IndexOut], w[params.IndexIn], params.AmountGivenScaled18)
	}
	if err != nil {
		calculated = new(big.Int)
	}

	if floor := h.state.MinimumSwapFeePercentage; floor != nil && floor.Cmp(calculated) > 0 {
		return new(big.Int).Set(floor), nil
	}
	return calculated, nil
}

func akronFeeGivenIn(balanceIn, weightIn, weightOut, amountIn *big.Int) (*big.Int, error) {
	exponent, err := fp.DivDown(weightIn, weightOut)
	if err != nil {
		return nil, err
	}

	plusAmount := new(big.Int).Add(balanceIn, amountIn)
	plusTwice := new(big.Int).Add(plusAmount, amountIn)

	ratio, err := fp.DivUp(plusAmount, plusTwice)
	if err != nil {
		return nil, err
	}
	withFees, err := fp.PowUp(ratio, exponent)
	if err != nil {
		return nil, err
	}
	if ratio, err = fp.DivUp(balanceIn, plusAmount); err != nil {
		return nil, err
	}
	withoutFees, err := fp.PowUp(ratio, exponent)
	if err != nil {
		return nil, err
	}

	numerator, err := fp.MulDivUp(plusAmount, new(big.Int).Sub(withFees, withoutFees), withFees)
	if err != nil {
		return nil, err
	}
	return fp.MulDivUp(exponent, numerator, amountIn)
}

func akronFeeGivenOut(balanceOut, weightOut, weightIn, amountOut *big.Int) (*big.Int, error) {
	exponent, err := fp.DivUp(weightOut, weightIn)
	if err != nil {
		return nil, err
	}

	minusAmount := new(big.Int).Sub(balanceOut, amountOut)
	minusTwice := new(big.Int).Sub(minusAmount, amountOut)
	if minusTwice.Sign() <= 0 {
		return nil, core.ErrMaxOutRatioExceeded
	}

	ratio, err := fp.DivUp(minusAmount, minusTwice)
	if err != nil {
		return nil, err
	}
	withFees, err := fp.PowUp(ratio, exponent)
	if err != nil {
		return nil, err
	}
	if ratio, err = fp.DivUp(balanceOut, minusAmount); err != nil {
		return nil, err
	}
	withoutFees, err := fp.PowUp(ratio, exponent)
	if err != nil {
		return nil, err
	}

	return fp.DivUp(new(big.Int).Sub(withFees, withoutFees), new(big.Int).Sub(withFees, fp.WAD))
}
