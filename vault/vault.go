// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault runs swaps and liquidity changes against a pool
// snapshot. It scales raw amounts to 18 decimals, drives the hook
// pipeline around the pool curve, charges swap fees and converts the
// result back to raw token units. Nothing is persisted: every call
// reads its snapshot and returns a result.
package vault

import (
	"fmt"
	"math/big"

	log "github.com/luxfi/log"

	"github.com/luxfi/balancer/core"
	"github.com/luxfi/balancer/fixedpoint"
	"github.com/luxfi/balancer/hooks"
	"github.com/luxfi/balancer/pools/gyro"
	"github.com/luxfi/balancer/pools/lbp"
	"github.com/luxfi/balancer/pools/quantamm"
	"github.com/luxfi/balancer/pools/reclamm"
	"github.com/luxfi/balancer/pools/reclammv2"
	"github.com/luxfi/balancer/pools/stable"
	"github.com/luxfi/balancer/pools/weighted"
)

// MinimumTradeAmount is the smallest scaled18 amount a swap may move on
// either side.
const MinimumTradeAmount = 1_000_000

var minimumTradeAmount = big.NewInt(MinimumTradeAmount)

// ErrDoesNotSupportUnbalancedLiquidity is returned for a single-token or
// unbalanced operation on a pool that only accepts proportional changes.
var ErrDoesNotSupportUnbalancedLiquidity = fmt.Errorf("%w: pool does not support unbalanced liquidity", core.ErrInvalidLiquidityParameters)

// Vault executes operations on snapshots. It holds no pool state and is
// safe for concurrent use.
type Vault struct {
	log   log.Logger
	hooks *hooks.Registry
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger replaces the default logger.
func WithLogger(l log.Logger) Option {
	return func(v *Vault) { v.log = l }
}

// WithHookRegistry resolves hooks from r instead of the built-in set.
func WithHookRegistry(r *hooks.Registry) Option {
	return func(v *Vault) { v.hooks = r }
}

// New creates a vault.
func New(opts ...Option) *Vault {
	v := &Vault{
		log:   log.NewTestLogger(log.InfoLevel),
		hooks: hooks.NewRegistry(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Vault) resolveHook(base *core.BasePoolState, state core.HookState) hooks.Hook {
	return v.hooks.Resolve(base.HookType, state)
}

// curveFor builds the curve a pool snapshot trades on.
func curveFor(state core.PoolState) (core.Curve, error) {
	switch s := state.(type) {
	case *core.WeightedState:
		return weighted.FromState(s)
	case *core.StableState:
		return stable.FromState(s), nil
	case *core.GyroECLPState:
		return gyro.ECLPFromState(s)
	case *core.Gyro2CLPState:
		return gyro.TwoCLPFromState(s)
	case *core.ReClammState:
		return reclamm.FromState(s), nil
	case *core.ReClammV2State:
		return reclammv2.FromState(s), nil
	case *core.QuantAmmState:
		return quantamm.FromState(s)
	case *core.LiquidityBootstrappingState:
		return lbp.FromState(s)
	case nil:
		return nil, fmt.Errorf("%w: nil pool state", core.ErrUnsupportedPoolType)
	default:
		return nil, fmt.Errorf("%w: %T", core.ErrUnsupportedPoolType, state)
	}
}

// validate checks that the per-token arrays of a snapshot line up.
func validate(base *core.BasePoolState) error {
	n := len(base.Tokens)
	if n == 0 {
		return fmt.Errorf("%w: pool has no tokens", core.ErrInvalidInput)
	}
	if len(base.ScalingFactors) != n || len(base.TokenRates) != n || len(base.BalancesLiveScaled18) != n {
		return fmt.Errorf("%w: %d tokens, %d scaling factors, %d rates, %d balances", core.ErrInvalidInput,
			n, len(base.ScalingFactors), len(base.TokenRates), len(base.BalancesLiveScaled18))
	}
	for i := 0; i < n; i++ {
		if base.ScalingFactors[i] == nil || base.TokenRates[i] == nil || base.BalancesLiveScaled18[i] == nil {
			return fmt.Errorf("%w: missing value for token %d", core.ErrInvalidInput, i)
		}
		if base.TokenRates[i].Sign() <= 0 || base.ScalingFactors[i].Sign() <= 0 {
			return fmt.Errorf("%w: non-positive rate or scaling factor for token %d", core.ErrInvalidInput, i)
		}
		if _, err := fixedpoint.ToUint256(base.BalancesLiveScaled18[i]); err != nil {
			return fmt.Errorf("%w: balance of token %d: %w", core.ErrInvalidInput, i, err)
		}
	}
	return nil
}

func checkMinimumTrade(amount *big.Int) error {
	if amount.Cmp(minimumTradeAmount) < 0 {
		return fmt.Errorf("%w: %s < %d", core.ErrTradeAmountTooSmall, amount, MinimumTradeAmount)
	}
	return nil
}
