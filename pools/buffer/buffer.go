// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package buffer converts between an ERC-4626 vault's shares and its
// underlying assets at a fixed rate. A buffer has no curve: the vault
// routes swaps whose pool is a wrapped token here directly.
package buffer

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// MinimumWrapAmount is the smallest raw amount a buffer accepts.
const MinimumWrapAmount = 1000

var minimumWrapAmount = big.NewInt(MinimumWrapAmount)

var (
	ErrWrapAmountTooSmall = fmt.Errorf("%w: wrap amount too small", core.ErrInvalidAmount)
	ErrExceededMaxDeposit = fmt.Errorf("%w: ERC4626 exceeded max deposit", core.ErrInvalidAmount)
	ErrExceededMaxMint    = fmt.Errorf("%w: ERC4626 exceeded max mint", core.ErrInvalidAmount)
)

// Direction is the conversion a buffer swap performs.
type Direction uint8

const (
	// Wrap turns assets into shares.
	Wrap Direction = iota
	// Unwrap turns shares into assets.
	Unwrap
)

func (d Direction) String() string {
	if d == Unwrap {
		return "Unwrap"
	}
	return "Wrap"
}

// DirectionOf infers the direction from the tokens: selling the wrapped
// token (the buffer's own address) unwraps.
func DirectionOf(tokenIn common.Address, pool common.Address) Direction {
	if tokenIn == pool {
		return Unwrap
	}
	return Wrap
}

// WrapOrUnwrap prices a raw buffer swap against the snapshot rate.
func WrapOrUnwrap(input *core.SwapInput, s *core.BufferState) (*big.Int, error) {
	if input.AmountRaw.Cmp(minimumWrapAmount) < 0 {
		return nil, fmt.Errorf("%w: %s < %d", ErrWrapAmountTooSmall, input.AmountRaw, MinimumWrapAmount)
	}
	dir := DirectionOf(input.TokenIn, s.PoolAddress)
	return CalculateBufferAmounts(dir, input.SwapKind, input.AmountRaw, s.Rate, s.MaxDeposit, s.MaxMint)
}

// CalculateBufferAmounts returns the counter amount of a wrap or unwrap.
// A nil maxDeposit or maxMint is unlimited.
func CalculateBufferAmounts(dir Direction, kind core.SwapKind, amount, rate, maxDeposit, maxMint *big.Int) (*big.Int, error) {
	if dir == Unwrap {
		if kind == core.GivenIn {
			return ConvertToAssets(amount, rate, core.RoundDown)
		}
		return ConvertToShares(amount, rate, core.RoundUp)
	}

	if kind == core.GivenIn {
		if maxDeposit != nil && amount.Cmp(maxDeposit) > 0 {
			return nil, fmt.Errorf("%w: %s > %s", ErrExceededMaxDeposit, amount, maxDeposit)
		}
		return ConvertToShares(amount, rate, core.RoundDown)
	}
	if maxMint != nil && amount.Cmp(maxMint) > 0 {
		return nil, fmt.Errorf("%w: %s > %s", ErrExceededMaxMint, amount, maxMint)
	}
	return ConvertToAssets(amount, rate, core.RoundUp)
}

// ConvertToShares divides assets by the rate.
func ConvertToShares(assets, rate *big.Int, rounding core.Rounding) (*big.Int, error) {
	if rounding == core.RoundUp {
		return fp.DivUp(assets, rate)
	}
	return fp.DivDown(assets, rate)
}

// ConvertToAssets multiplies shares by the rate.
func ConvertToAssets(shares, rate *big.Int, rounding core.Rounding) (*big.Int, error) {
	if rounding == core.RoundUp {
		return fp.MulUp(shares, rate)
	}
	return fp.MulDown(shares, rate)
}
