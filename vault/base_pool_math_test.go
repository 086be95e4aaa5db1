// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
	"github.com/luxfi/balancer/pools/weighted"
)

func evenWeightedPool(t *testing.T) (*weighted.Pool, []*big.Int, *big.Int) {
	t.Helper()
	pool, err := weighted.NewPool([]*big.Int{big.NewInt(5e17), big.NewInt(5e17)})
	require.NoError(t, err)
	balances := []*big.Int{wad(1000), wad(1000)}
	supply, err := pool.ComputeInvariant(balances, core.RoundDown)
	require.NoError(t, err)
	return pool, balances, supply
}

func TestComputeAddLiquidityUnbalanced(t *testing.T) {
	pool, balances, supply := evenWeightedPool(t)
	fee := big.NewInt(1e16)

	t.Run("proportional add mints its share", func(t *testing.T) {
		bpt, fees, err := ComputeAddLiquidityUnbalanced(balances, []*big.Int{wad(10), wad(10)}, supply, fee,
			pool.MaximumInvariantRatio(), pool.ComputeInvariant)
		require.NoError(t, err)

		share := new(big.Int).Div(supply, big.NewInt(100))
		require.LessOrEqual(t, bpt.Cmp(share), 0)
		require.Negative(t, new(big.Int).Sub(share, bpt).Cmp(big.NewInt(1e12)))
		for _, f := range fees {
			require.Negative(t, f.Cmp(big.NewInt(1e10)))
		}
	})

	t.Run("single sided add pays fee on that token", func(t *testing.T) {
		bpt, fees, err := ComputeAddLiquidityUnbalanced(balances, []*big.Int{wad(10), new(big.Int)}, supply, fee,
			pool.MaximumInvariantRatio(), pool.ComputeInvariant)
		require.NoError(t, err)
		require.Positive(t, bpt.Sign())
		require.Positive(t, fees[0].Sign())
		require.Zero(t, fees[1].Sign())

		noFee, _, err := ComputeAddLiquidityUnbalanced(balances, []*big.Int{wad(10), new(big.Int)}, supply, new(big.Int),
			pool.MaximumInvariantRatio(), pool.ComputeInvariant)
		require.NoError(t, err)
		require.Negative(t, bpt.Cmp(noFee))
	})

	t.Run("ratio above maximum", func(t *testing.T) {
		_, _, err := ComputeAddLiquidityUnbalanced(balances, []*big.Int{wad(10000), wad(10000)}, supply, fee,
			pool.MaximumInvariantRatio(), pool.ComputeInvariant)
		require.ErrorIs(t, err, core.ErrMathOverflow)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, _, err := ComputeAddLiquidityUnbalanced(balances, []*big.Int{wad(1)}, supply, fee,
			pool.MaximumInvariantRatio(), pool.ComputeInvariant)
		require.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func TestComputeAddLiquiditySingleTokenExactOut(t *testing.T) {
	pool, balances, supply := evenWeightedPool(t)
	bptOut := new(big.Int).Div(supply, big.NewInt(100))

	withFee, fees, err := ComputeAddLiquiditySingleTokenExactOut(balances, 1, bptOut, supply, big.NewInt(1e16),
		pool.MaximumInvariantRatio(), pool.ComputeBalance)
	require.NoError(t, err)
	require.Zero(t, fees[0].Sign())
	require.Positive(t, fees[1].Sign())

	noFee, _, err := ComputeAddLiquiditySingleTokenExactOut(balances, 1, bptOut, supply, new(big.Int),
		pool.MaximumInvariantRatio(), pool.ComputeBalance)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Add(noFee, fees[1]).String(), withFee.String())

	// A single sided 1% mint costs about 2% of one balance on an even pool.
	require.Positive(t, noFee.Cmp(wad(20)))
	require.Negative(t, noFee.Cmp(wad(21)))

	_, _, err = ComputeAddLiquiditySingleTokenExactOut(balances, 0, new(big.Int).Mul(supply, big.NewInt(3)), supply,
		new(big.Int), pool.MaximumInvariantRatio(), pool.ComputeBalance)
	require.ErrorIs(t, err, core.ErrMathOverflow)
}

func TestComputeProportionalAmountsOut(t *testing.T) {
	out, err := ComputeProportionalAmountsOut(amounts(1000, 7), big.NewInt(300), big.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, amounts(333, 2), out)

	_, err = ComputeProportionalAmountsOut(amounts(1000), new(big.Int), big.NewInt(1))
	require.ErrorIs(t, err, core.ErrInsufficientLiquidity)
}

func TestComputeRemoveLiquiditySingleTokenExactIn(t *testing.T) {
	pool, balances, supply := evenWeightedPool(t)
	bptIn := new(big.Int).Div(supply, big.NewInt(100))

	out, fees, err := ComputeRemoveLiquiditySingleTokenExactIn(balances, 0, bptIn, supply, big.NewInt(1e16),
		pool.MinimumInvariantRatio(), pool.ComputeBalance)
	require.NoError(t, err)
	require.Positive(t, fees[0].Sign())
	require.Zero(t, fees[1].Sign())

	noFee, _, err := ComputeRemoveLiquiditySingleTokenExactIn(balances, 0, bptIn, supply, new(big.Int),
		pool.MinimumInvariantRatio(), pool.ComputeBalance)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Sub(noFee, fees[0]).String(), out.String())
	require.Negative(t, noFee.Cmp(wad(20)))

	_, _, err = ComputeRemoveLiquiditySingleTokenExactIn(balances, 0, new(big.Int).Div(supply, big.NewInt(2)), supply,
		new(big.Int), pool.MinimumInvariantRatio(), pool.ComputeBalance)
	require.ErrorIs(t, err, core.ErrMathOverflow)
}

func TestComputeRemoveLiquiditySingleTokenExactOut(t *testing.T) {
	pool, balances, supply := evenWeightedPool(t)

	bptIn, fees, err := ComputeRemoveLiquiditySingleTokenExactOut(balances, 1, wad(10), supply, big.NewInt(1e16),
		pool.MinimumInvariantRatio(), pool.ComputeInvariant)
	require.NoError(t, err)
	require.Positive(t, fees[1].Sign())
	require.Zero(t, fees[0].Sign())

	noFee, _, err := ComputeRemoveLiquiditySingleTokenExactOut(balances, 1, wad(10), supply, new(big.Int),
		pool.MinimumInvariantRatio(), pool.ComputeInvariant)
	require.NoError(t, err)
	require.Positive(t, bptIn.Cmp(noFee))

	// Withdrawing 1% of one side burns roughly half a percent of supply.
	half := new(big.Int).Div(supply, big.NewInt(200))
	require.Positive(t, noFee.Cmp(half))

	_, _, err = ComputeRemoveLiquiditySingleTokenExactOut(balances, 1, wad(600), supply, new(big.Int),
		pool.MinimumInvariantRatio(), pool.ComputeInvariant)
	require.ErrorIs(t, err, core.ErrMathOverflow)
}

func TestGrossUp(t *testing.T) {
	// 99 * 1/(1-0.01) - 99 = 1
	fee, err := grossUp(wad(99), big.NewInt(1e16))
	require.NoError(t, err)
	require.Equal(t, fp.WAD, fee)

	fee, err = grossUp(wad(99), new(big.Int))
	require.NoError(t, err)
	require.Zero(t, fee.Sign())
}
