// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	"github.com/luxfi/balancer/hooks"
)

// AddLiquidity prices a deposit. For AddUnbalanced every max amount is
// deposited in full; for AddSingleTokenExactOut the single non-zero max
// amount selects the token and MinBptAmountOutRaw is minted exactly.
// Limits are not enforced: the result reports what the pool would take.
func (v *Vault) AddLiquidity(input *core.AddLiquidityInput, state core.PoolState, hookState core.HookState) (*core.AddLiquidityResult, error) {
	if input == nil || state == nil {
		return nil, fmt.Errorf("%w: nil add liquidity input or pool state", core.ErrInvalidInput)
	}
	base, curve, err := liquidityTarget(state)
	if err != nil {
		return nil, err
	}
	n := len(base.Tokens)

	maxAmountsInScaled18, err := CopyToScaled18ApplyRateRoundDownArray(input.MaxAmountsInRaw, base.ScalingFactors, base.TokenRates)
	if err != nil {
		return nil, err
	}
	minBptAmountOut := orZero(input.MinBptAmountOutRaw)

	hook := v.resolveHook(base, hookState)
	flags := hook.Flags()

	balances := core.CopyAmounts(base.BalancesLiveScaled18)
	if flags.Has(hooks.CallBeforeAddLiquidity) {
		adjusted, err := hook.OnBeforeAddLiquidity(input.Kind, core.CopyAmounts(maxAmountsInScaled18),
			new(big.Int).Set(minBptAmountOut), core.CopyAmounts(balances))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrBeforeAddLiquidityHookFailed, err)
		}
		for i := 0; i < len(adjusted) && i < n; i++ {
			balances[i] = orZero(adjusted[i])
		}
	}

	var (
		bptAmountOut      *big.Int
		amountsInScaled18 []*big.Int
		swapFeeAmounts    []*big.Int
	)
	switch input.Kind {
	case core.AddUnbalanced:
		if !base.SupportsUnbalancedLiquidity {
			return nil, ErrDoesNotSupportUnbalancedLiquidity
		}
		amountsInScaled18 = maxAmountsInScaled18
		bptAmountOut, swapFeeAmounts, err = ComputeAddLiquidityUnbalanced(
			balances,
			maxAmountsInScaled18,
			base.TotalSupply,
			orZero(base.SwapFee),
			curve.MaximumInvariantRatio(),
			curve.ComputeInvariant,
		)
		if err != nil {
			return nil, err
		}

	case core.AddSingleTokenExactOut:
		if !base.SupportsUnbalancedLiquidity {
			return nil, ErrDoesNotSupportUnbalancedLiquidity
		}
		index, err := GetSingleInputIndex(maxAmountsInScaled18)
		if err != nil {
			return nil, err
		}
		bptAmountOut = new(big.Int).Set(minBptAmountOut)
		amountIn, fees, err := ComputeAddLiquiditySingleTokenExactOut(
			balances,
			index,
			bptAmountOut,
			base.TotalSupply,
			orZero(base.SwapFee),
			curve.MaximumInvariantRatio(),
			curve.ComputeBalance,
		)
		if err != nil {
			return nil, err
		}
		amountsInScaled18 = zeros(n)
		amountsInScaled18[index] = amountIn
		swapFeeAmounts = fees

	default:
		return nil, fmt.Errorf("%w: add liquidity kind %s", core.ErrInvalidLiquidityParameters, input.Kind)
	}

	amountsInRaw := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		// Entering the pool: round up.
		raw, err := ToRawUndoRateRoundUp(amountsInScaled18[i], base.ScalingFactors[i], base.TokenRates[i])
		if err != nil {
			return nil, err
		}
		amountsInRaw[i] = raw
		aggregateFee, err := ComputeAndChargeAggregateSwapFees(swapFeeAmounts[i], orZero(base.AggregateSwapFee),
			base.ScalingFactors, base.TokenRates, i)
		if err != nil {
			return nil, err
		}
		balances[i].Add(balances[i], amountsInScaled18[i])
		balances[i].Sub(balances[i], aggregateFee)
	}

	if flags.Has(hooks.CallAfterAddLiquidity) {
		adjusted, err := hook.OnAfterAddLiquidity(input.Kind, core.CopyAmounts(amountsInScaled18),
			core.CopyAmounts(amountsInRaw), new(big.Int).Set(bptAmountOut), core.CopyAmounts(balances))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrAfterAddLiquidityHookFailed, err)
		}
		if len(adjusted) != n {
			return nil, fmt.Errorf("%w: hook returned %d amounts for %d tokens", core.ErrAfterAddLiquidityHookFailed, len(adjusted), n)
		}
		if flags.Has(hooks.EnableHookAdjustedAmounts) {
			amountsInRaw = core.CopyAmounts(adjusted)
		}
	}

	v.log.Debug("add liquidity",
		"pool", base.ID(),
		"kind", input.Kind,
		"hook", hook.Type(),
		"bptAmountOut", bptAmountOut,
		"amountsIn", amountsInRaw,
	)
	return &core.AddLiquidityResult{
		BptAmountOutRaw: bptAmountOut,
		AmountsInRaw:    amountsInRaw,
	}, nil
}

// liquidityTarget validates a pool snapshot for a liquidity change and
// builds its curve. Buffers hold no BPT and are rejected.
func liquidityTarget(state core.PoolState) (*core.BasePoolState, core.Curve, error) {
	if _, ok := state.(*core.BufferState); ok {
		return nil, nil, fmt.Errorf("%w: buffers do not take liquidity", core.ErrUnsupportedPoolType)
	}
	base := state.Base()
	if err := validate(base); err != nil {
		return nil, nil, err
	}
	if base.TotalSupply == nil || base.TotalSupply.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: total supply must be positive", core.ErrInsufficientLiquidity)
	}
	curve, err := curveFor(state)
	if err != nil {
		return nil, nil, err
	}
	return base, curve, nil
}
