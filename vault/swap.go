// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
	"github.com/luxfi/balancer/hooks"
	"github.com/luxfi/balancer/pools/buffer"
)

// Swap returns the raw amount of the counter token for input: the amount
// out for GivenIn, the amount in (fee included) for GivenOut. A buffer
// snapshot is priced directly by its wrap rate and never runs hooks.
func (v *Vault) Swap(input *core.SwapInput, state core.PoolState, hookState core.HookState) (*big.Int, error) {
	if input == nil || state == nil {
		return nil, fmt.Errorf("%w: nil swap input or pool state", core.ErrInvalidInput)
	}
	if input.AmountRaw == nil || input.AmountRaw.Sign() == 0 {
		return new(big.Int), nil
	}
	if input.AmountRaw.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative swap amount %s", core.ErrInvalidAmount, input.AmountRaw)
	}

	if b, ok := state.(*core.BufferState); ok {
		out, err := buffer.WrapOrUnwrap(input, b)
		if err != nil {
			return nil, err
		}
		v.log.Debug("buffer swap",
			"pool", b.ID(),
			"kind", input.SwapKind,
			"amountGiven", input.AmountRaw,
			"amountCalculated", out,
		)
		return out, nil
	}

	base := state.Base()
	if err := validate(base); err != nil {
		return nil, err
	}
	indexIn := base.TokenIndex(input.TokenIn)
	if indexIn < 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrInputTokenNotFound, input.TokenIn)
	}
	indexOut := base.TokenIndex(input.TokenOut)
	if indexOut < 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrOutputTokenNotFound, input.TokenOut)
	}

	curve, err := curveFor(state)
	if err != nil {
		return nil, err
	}
	hook := v.resolveHook(base, hookState)
	flags := hook.Flags()

	amountGivenScaled18, err := scaleAmountGiven(input, indexIn, indexOut, base)
	if err != nil {
		return nil, err
	}

	balances := core.CopyAmounts(base.BalancesLiveScaled18)
	params := &core.SwapParams{
		SwapKind:             input.SwapKind,
		AmountGivenScaled18:  new(big.Int).Set(amountGivenScaled18),
		BalancesLiveScaled18: core.CopyAmounts(balances),
		IndexIn:              indexIn,
		IndexOut:             indexOut,
	}

	if flags.Has(hooks.CallBeforeSwap) {
		adjusted, err := hook.OnBeforeSwap(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrBeforeSwapHookFailed, err)
		}
		for i := 0; i < len(adjusted) && i < len(balances); i++ {
			balances[i] = orZero(adjusted[i])
		}
		params.BalancesLiveScaled18 = core.CopyAmounts(balances)
	}

	swapFee := new(big.Int).Set(orZero(base.SwapFee))
	if flags.Has(hooks.CallComputeDynamicSwapFee) {
		dynamic, err := hook.OnComputeDynamicSwapFee(params, new(big.Int).Set(swapFee))
		if err != nil {
			v.log.Debug("dynamic swap fee rejected, keeping static fee",
				"pool", base.ID(),
				"hook", hook.Type(),
				"err", err,
			)
		} else if dynamic != nil {
			swapFee = dynamic
		}
	}

	totalSwapFee := new(big.Int)
	if input.SwapKind == core.GivenIn {
		if totalSwapFee, err = fp.MulUp(params.AmountGivenScaled18, swapFee); err != nil {
			return nil, err
		}
		params.AmountGivenScaled18.Sub(params.AmountGivenScaled18, totalSwapFee)
	}

	if err := checkMinimumTrade(params.AmountGivenScaled18); err != nil {
		return nil, err
	}
	amountCalculatedScaled18, err := curve.OnSwap(params)
	if err != nil {
		return nil, err
	}
	if err := checkMinimumTrade(amountCalculatedScaled18); err != nil {
		return nil, err
	}

	var amountCalculatedRaw *big.Int
	if input.SwapKind == core.GivenIn {
		// Leaving the vault: round down against a rounded-up rate.
		amountCalculatedRaw, err = ToRawUndoRateRoundDown(amountCalculatedScaled18,
			base.ScalingFactors[indexOut], ComputeRateRoundUp(base.TokenRates[indexOut]))
		if err != nil {
			return nil, err
		}
	} else {
		if totalSwapFee, err = fp.MulDivUp(amountCalculatedScaled18, swapFee, fp.Complement(swapFee)); err != nil {
			return nil, err
		}
		withFee := new(big.Int).Add(amountCalculatedScaled18, totalSwapFee)
		amountCalculatedRaw, err = ToRawUndoRateRoundUp(withFee, base.ScalingFactors[indexIn], base.TokenRates[indexIn])
		if err != nil {
			return nil, err
		}
	}

	aggregateFee, err := ComputeAndChargeAggregateSwapFees(totalSwapFee, orZero(base.AggregateSwapFee),
		base.ScalingFactors, base.TokenRates, indexIn)
	if err != nil {
		return nil, err
	}

	var balanceInIncrement, balanceOutDecrement *big.Int
	if input.SwapKind == core.GivenIn {
		balanceInIncrement = new(big.Int).Sub(amountGivenScaled18, aggregateFee)
		balanceOutDecrement = amountCalculatedScaled18
	} else {
		balanceInIncrement = new(big.Int).Sub(amountCalculatedScaled18, aggregateFee)
		balanceOutDecrement = amountGivenScaled18
	}
	balances[indexIn].Add(balances[indexIn], balanceInIncrement)
	balances[indexOut].Sub(balances[indexOut], balanceOutDecrement)

	result := amountCalculatedRaw
	if flags.Has(hooks.CallAfterSwap) {
		adjusted, err := hook.OnAfterSwap(&hooks.AfterSwapParams{
			Kind:                     input.SwapKind,
			IndexIn:                  indexIn,
			IndexOut:                 indexOut,
			AmountInScaled18:         new(big.Int).Set(amountGivenScaled18),
			AmountOutScaled18:        new(big.Int).Set(amountCalculatedScaled18),
			TokenInBalanceScaled18:   new(big.Int).Set(balances[indexIn]),
			TokenOutBalanceScaled18:  new(big.Int).Set(balances[indexOut]),
			AmountCalculatedScaled18: new(big.Int).Set(amountCalculatedScaled18),
			AmountCalculatedRaw:      new(big.Int).Set(amountCalculatedRaw),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrAfterSwapHookFailed, err)
		}
		if flags.Has(hooks.EnableHookAdjustedAmounts) && adjusted != nil {
			result = adjusted
		}
	}

	v.log.Debug("swap",
		"pool", base.ID(),
		"kind", input.SwapKind,
		"hook", hook.Type(),
		"swapFee", swapFee,
		"amountGiven", input.AmountRaw,
		"amountCalculated", result,
	)
	return result, nil
}

// scaleAmountGiven scales the fixed side of a swap, rounding in the
// pool's favour: down for an amount entering, up for one leaving.
func scaleAmountGiven(input *core.SwapInput, indexIn, indexOut int, base *core.BasePoolState) (*big.Int, error) {
	if input.SwapKind == core.GivenIn {
		return ToScaled18ApplyRateRoundDown(input.AmountRaw, base.ScalingFactors[indexIn], base.TokenRates[indexIn])
	}
	return ToScaled18ApplyRateRoundUp(input.AmountRaw, base.ScalingFactors[indexOut], base.TokenRates[indexOut])
}
