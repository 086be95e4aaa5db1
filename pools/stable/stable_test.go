// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stable

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

var (
	thousand = fp.MustParse("1000000000000000000000")
	amp      = big.NewInt(100 * AmpPrecision)
)

func within(t *testing.T, got, want *big.Int, tol int64) {
	t.Helper()
	d := new(big.Int).Sub(got, want)
	require.LessOrEqual(t, d.CmpAbs(big.NewInt(tol)), 0, "got %s want %s", got, want)
}

func TestInvariant(t *testing.T) {
	tests := []struct {
		name     string
		balances []*big.Int
		want     *big.Int
	}{
		{"balanced", []*big.Int{thousand, thousand}, fp.MustParse("2000000000000000000000")},
		{"balanced three", []*big.Int{thousand, thousand, thousand}, fp.MustParse("3000000000000000000000")},
		{"empty", []*big.Int{new(big.Int), new(big.Int)}, new(big.Int)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeInvariant(amp, tt.balances)
			require.NoError(t, err)
			require.Equal(t, tt.want.String(), got.String())
		})
	}

	// Imbalance lowers D below the plain sum.
	skewed := []*big.Int{thousand, fp.MustParse("100000000000000000000")}
	d, err := ComputeInvariant(amp, skewed)
	require.NoError(t, err)
	require.Equal(t, -1, d.Cmp(fp.MustParse("1100000000000000000000")))
}

func TestPoolRounding(t *testing.T) {
	pool := NewPool(amp)
	balances := []*big.Int{thousand, thousand}

	down, err := pool.ComputeInvariant(balances, core.RoundDown)
	require.NoError(t, err)
	up, err := pool.ComputeInvariant(balances, core.RoundUp)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Add(down, fp.One).String(), up.String())

	zero, err := pool.ComputeInvariant([]*big.Int{new(big.Int), new(big.Int)}, core.RoundUp)
	require.NoError(t, err)
	require.Zero(t, zero.Sign())
}

func TestOnSwap(t *testing.T) {
	pool := FromState(&core.StableState{Amp: amp})
	balances := []*big.Int{thousand, thousand}
	amount := big.NewInt(1e18)

	out, err := pool.OnSwap(&core.SwapParams{SwapKind: core.GivenIn, AmountGivenScaled18: amount, BalancesLiveScaled18: balances, IndexIn: 0, IndexOut: 1})
	require.NoError(t, err)
	require.Equal(t, -1, out.Cmp(amount))
	require.Equal(t, 1, out.Cmp(big.NewInt(999e15)))

	in, err := pool.OnSwap(&core.SwapParams{SwapKind: core.GivenOut, AmountGivenScaled18: out, BalancesLiveScaled18: balances, IndexIn: 0, IndexOut: 1})
	require.NoError(t, err)
	within(t, in, amount, 1e6)

	// The curve works on a copy.
	require.Equal(t, thousand.String(), balances[0].String())
	require.Equal(t, thousand.String(), balances[1].String())

	_, err = pool.OnSwap(&core.SwapParams{SwapKind: core.GivenIn, AmountGivenScaled18: amount, BalancesLiveScaled18: balances, IndexIn: 0, IndexOut: 3})
	require.ErrorIs(t, err, core.ErrInvalidTokenIndex)
}

func TestComputeBalance(t *testing.T) {
	pool := NewPool(amp)
	balances := []*big.Int{thousand, thousand}

	got, err := pool.ComputeBalance(balances, 0, fp.WAD)
	require.NoError(t, err)
	within(t, got, thousand, 10)

	grown, err := pool.ComputeBalance(balances, 0, big.NewInt(11e17))
	require.NoError(t, err)
	// Growing D by 10% on one side needs roughly 200 more tokens.
	require.Equal(t, 1, grown.Cmp(fp.MustParse("1190000000000000000000")))
	require.Equal(t, -1, grown.Cmp(fp.MustParse("1210000000000000000000")))
}
