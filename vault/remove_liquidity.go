// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	"github.com/luxfi/balancer/hooks"
)

// RemoveLiquidity prices a withdrawal. RemoveProportional and
// RemoveSingleTokenExactIn burn MaxBptAmountInRaw exactly; for
// RemoveSingleTokenExactOut the single non-zero min amount is withdrawn
// exactly and the BPT burned is computed.
func (v *Vault) RemoveLiquidity(input *core.RemoveLiquidityInput, state core.PoolState, hookState core.HookState) (*core.RemoveLiquidityResult, error) {
	if input == nil || state == nil {
		return nil, fmt.Errorf("%w: nil remove liquidity input or pool state", core.ErrInvalidInput)
	}
	base, curve, err := liquidityTarget(state)
	if err != nil {
		return nil, err
	}
	n := len(base.Tokens)

	// Higher amounts out burn more BPT, so round up.
	minAmountsOutScaled18, err := CopyToScaled18ApplyRateRoundUpArray(input.MinAmountsOutRaw, base.ScalingFactors, base.TokenRates)
	if err != nil {
		return nil, err
	}
	maxBptAmountIn := orZero(input.MaxBptAmountInRaw)

	hook := v.resolveHook(base, hookState)
	flags := hook.Flags()

	balances := core.CopyAmounts(base.BalancesLiveScaled18)
	if flags.Has(hooks.CallBeforeRemoveLiquidity) {
		adjusted, err := hook.OnBeforeRemoveLiquidity(input.Kind, new(big.Int).Set(maxBptAmountIn),
			core.CopyAmounts(minAmountsOutScaled18), core.CopyAmounts(balances))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrBeforeRemoveLiquidityHookFailed, err)
		}
		for i := 0; i < len(adjusted) && i < n; i++ {
			balances[i] = orZero(adjusted[i])
		}
	}

	var (
		bptAmountIn        *big.Int
		amountsOutScaled18 []*big.Int
		swapFeeAmounts     []*big.Int
	)
	switch input.Kind {
	case core.RemoveProportional:
		bptAmountIn = new(big.Int).Set(maxBptAmountIn)
		if amountsOutScaled18, err = ComputeProportionalAmountsOut(balances, base.TotalSupply, bptAmountIn); err != nil {
			return nil, err
		}
		swapFeeAmounts = zeros(n)

	case core.RemoveSingleTokenExactIn:
		if !base.SupportsUnbalancedLiquidity {
			return nil, ErrDoesNotSupportUnbalancedLiquidity
		}
		index, err := GetSingleInputIndex(input.MinAmountsOutRaw)
		if err != nil {
			return nil, err
		}
		bptAmountIn = new(big.Int).Set(maxBptAmountIn)
		amountOut, fees, err := ComputeRemoveLiquiditySingleTokenExactIn(
			balances,
			index,
			bptAmountIn,
			base.TotalSupply,
			orZero(base.SwapFee),
			curve.MinimumInvariantRatio(),
			curve.ComputeBalance,
		)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = zeros(n)
		amountsOutScaled18[index] = amountOut
		swapFeeAmounts = fees

	case core.RemoveSingleTokenExactOut:
		if !base.SupportsUnbalancedLiquidity {
			return nil, ErrDoesNotSupportUnbalancedLiquidity
		}
		index, err := GetSingleInputIndex(input.MinAmountsOutRaw)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = minAmountsOutScaled18
		bptAmountIn, swapFeeAmounts, err = ComputeRemoveLiquiditySingleTokenExactOut(
			balances,
			index,
			amountsOutScaled18[index],
			base.TotalSupply,
			orZero(base.SwapFee),
			curve.MinimumInvariantRatio(),
			curve.ComputeInvariant,
		)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: remove liquidity kind %s", core.ErrInvalidLiquidityParameters, input.Kind)
	}

	amountsOutRaw := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		// Leaving the pool: round down.
		raw, err := ToRawUndoRateRoundDown(amountsOutScaled18[i], base.ScalingFactors[i], base.TokenRates[i])
		if err != nil {
			return nil, err
		}
		amountsOutRaw[i] = raw
		aggregateFee, err := ComputeAndChargeAggregateSwapFees(swapFeeAmounts[i], orZero(base.AggregateSwapFee),
			base.ScalingFactors, base.TokenRates, i)
		if err != nil {
			return nil, err
		}
		balances[i].Sub(balances[i], amountsOutScaled18[i])
		balances[i].Sub(balances[i], aggregateFee)
	}

	if flags.Has(hooks.CallAfterRemoveLiquidity) {
		adjusted, err := hook.OnAfterRemoveLiquidity(input.Kind, new(big.Int).Set(bptAmountIn),
			core.CopyAmounts(amountsOutScaled18), core.CopyAmounts(amountsOutRaw), core.CopyAmounts(balances))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrAfterRemoveLiquidityHookFailed, err)
		}
		if len(adjusted) != n {
			return nil, fmt.Errorf("%w: hook returned %d amounts for %d tokens", core.ErrAfterRemoveLiquidityHookFailed, len(adjusted), n)
		}
		if flags.Has(hooks.EnableHookAdjustedAmounts) {
			amountsOutRaw = core.CopyAmounts(adjusted)
		}
	}

	v.log.Debug("remove liquidity",
		"pool", base.ID(),
		"kind", input.Kind,
		"hook", hook.Type(),
		"bptAmountIn", bptAmountIn,
		"amountsOut", amountsOutRaw,
	)
	return &core.RemoveLiquidityResult{
		BptAmountInRaw: bptAmountIn,
		AmountsOutRaw:  amountsOutRaw,
	}, nil
}
