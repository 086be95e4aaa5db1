// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
)

// LiquidityBootstrapping restricts an LBP so that only its owner can
// seed it and nobody can withdraw before the sale ends.
type LiquidityBootstrapping struct {
	Default
	state *core.LiquidityBootstrappingHookState
}

// NewLiquidityBootstrapping binds the sale gate to s.
func NewLiquidityBootstrapping(s *core.LiquidityBootstrappingHookState) *LiquidityBootstrapping {
	return &LiquidityBootstrapping{state: s}
}

func (*LiquidityBootstrapping) Type() core.HookType {
	return core.HookTypeLiquidityBootstrapping
}

func (*LiquidityBootstrapping) Flags() Flags {
	return CallBeforeAddLiquidity | CallBeforeRemoveLiquidity
}

func (h *LiquidityBootstrapping) OnBeforeAddLiquidity(_ core.AddLiquidityKind, _ []*big.Int, _ *big.Int, balancesScaled18 []*big.Int) ([]*big.Int, error) {
	if h.state.Sender != h.state.LbpOwner {
		return nil, fmt.Errorf("%w: sender %s", ErrNotLbpOwner, h.state.Sender)
	}
	return core.CopyAmounts(balancesScaled18), nil
}

func (h *LiquidityBootstrapping) OnBeforeRemoveLiquidity(_ core.RemoveLiquidityKind, _ *big.Int, _, balancesScaled18 []*big.Int) ([]*big.Int, error) {
	if h.state.CurrentTimestamp < h.state.EndTime {
		return nil, fmt.Errorf("%w: now %d, ends %d", ErrLbpNotEnded, h.state.CurrentTimestamp, h.state.EndTime)
	}
	return core.CopyAmounts(balancesScaled18), nil
}
