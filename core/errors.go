// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import "errors"

// Errors - Arithmetic
var (
	ErrMathOverflow                 = errors.New("math overflow")
	ErrZeroInvariant                = errors.New("zero invariant")
	ErrStableInvariantDidntConverge = errors.New("stable invariant didn't converge")
)

// Errors - Input validation
var (
	ErrInvalidAmount              = errors.New("invalid amount")
	ErrInvalidInput               = errors.New("invalid input")
	ErrInvalidTokenIndex          = errors.New("invalid token index")
	ErrInvalidSwapParameters      = errors.New("invalid swap parameters")
	ErrInvalidLiquidityParameters = errors.New("invalid liquidity parameters")
	ErrInputTokenNotFound         = errors.New("input token not found")
	ErrOutputTokenNotFound        = errors.New("output token not found")
	ErrTradeAmountTooSmall        = errors.New("trade amount too small")
)

// Errors - Pool state
var (
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInvalidPoolType       = errors.New("invalid pool type")
	ErrPoolNotFound          = errors.New("pool not found")
	ErrUnsupportedPoolType   = errors.New("unsupported pool type")
	ErrMaxInRatioExceeded    = errors.New("max in ratio exceeded")
	ErrMaxOutRatioExceeded   = errors.New("max out ratio exceeded")
)

// Errors - Hooks
var (
	ErrHook                            = errors.New("hook error")
	ErrUnsupportedHookType             = errors.New("unsupported hook type")
	ErrNoStateForHook                  = errors.New("no state for hook")
	ErrBeforeSwapHookFailed            = errors.New("before swap hook failed")
	ErrAfterSwapHookFailed             = errors.New("after swap hook failed")
	ErrBeforeAddLiquidityHookFailed    = errors.New("before add liquidity hook failed")
	ErrAfterAddLiquidityHookFailed     = errors.New("after add liquidity hook failed")
	ErrBeforeRemoveLiquidityHookFailed = errors.New("before remove liquidity hook failed")
	ErrAfterRemoveLiquidityHookFailed  = errors.New("after remove liquidity hook failed")
)
