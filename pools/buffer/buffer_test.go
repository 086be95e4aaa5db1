// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/balancer/core"
)

var (
	wrapped    = common.HexToAddress("0x0000000000000000000000000000000000000b0f")
	underlying = common.HexToAddress("0x0000000000000000000000000000000000000a55")
)

func bufferState(maxDeposit, maxMint *big.Int) *core.BufferState {
	return &core.BufferState{
		BasePoolState: core.BasePoolState{
			PoolAddress: wrapped,
			PoolType:    core.PoolTypeBuffer,
			Tokens:      []common.Address{wrapped, underlying},
		},
		Rate:       big.NewInt(1_100_000_000_000_000_000), // 1 share = 1.1 assets
		MaxDeposit: maxDeposit,
		MaxMint:    maxMint,
	}
}

func TestWrapOrUnwrap(t *testing.T) {
	tests := []struct {
		name    string
		kind    core.SwapKind
		tokenIn common.Address
		amount  int64
		want    string
	}{
		// 1000 / 1.1 = 909.09
		{"wrap given in rounds down", core.GivenIn, underlying, 1000, "909"},
		// 1000 * 1.1 = 1100
		{"wrap given out", core.GivenOut, underlying, 1000, "1100"},
		{"unwrap given in", core.GivenIn, wrapped, 1000, "1100"},
		{"unwrap given out rounds up", core.GivenOut, wrapped, 1000, "910"},
		{"wrap given out rounds up", core.GivenOut, underlying, 1001, "1102"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WrapOrUnwrap(&core.SwapInput{
				AmountRaw: big.NewInt(tt.amount),
				SwapKind:  tt.kind,
				TokenIn:   tt.tokenIn,
			}, bufferState(nil, nil))
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestLimits(t *testing.T) {
	s := bufferState(big.NewInt(5000), big.NewInt(2000))

	_, err := WrapOrUnwrap(&core.SwapInput{AmountRaw: big.NewInt(999), TokenIn: underlying}, s)
	require.ErrorIs(t, err, ErrWrapAmountTooSmall)
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = WrapOrUnwrap(&core.SwapInput{AmountRaw: big.NewInt(5001), SwapKind: core.GivenIn, TokenIn: underlying}, s)
	require.ErrorIs(t, err, ErrExceededMaxDeposit)
	require.Contains(t, err.Error(), "5001 > 5000")

	_, err = WrapOrUnwrap(&core.SwapInput{AmountRaw: big.NewInt(2001), SwapKind: core.GivenOut, TokenIn: underlying}, s)
	require.ErrorIs(t, err, ErrExceededMaxMint)

	// Limits only bind wrapping.
	_, err = WrapOrUnwrap(&core.SwapInput{AmountRaw: big.NewInt(9000), SwapKind: core.GivenIn, TokenIn: wrapped}, s)
	require.NoError(t, err)
}

func TestDirection(t *testing.T) {
	require.Equal(t, Unwrap, DirectionOf(wrapped, wrapped))
	require.Equal(t, Wrap, DirectionOf(underlying, wrapped))
	require.Equal(t, "Unwrap", Unwrap.String())
}
