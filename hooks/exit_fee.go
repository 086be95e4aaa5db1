// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// ExitFee withholds a fixed percentage of every token on proportional
// removals. The withheld amounts stay in the pool as a donation to the
// remaining LPs.
type ExitFee struct {
	Default
	state *core.ExitFeeHookState
}

// NewExitFee binds the exit fee policy to s.
func NewExitFee(s *core.ExitFeeHookState) *ExitFee {
	return &ExitFee{state: s}
}

func (*ExitFee) Type() core.HookType { return core.HookTypeExitFee }

func (*ExitFee) Flags() Flags {
	return CallAfterRemoveLiquidity | EnableHookAdjustedAmounts
}

// OnAfterRemoveLiquidity rejects any non-proportional removal, since a
// fee on an exact-out amount would have to be charged in BPT.
func (h *ExitFee) OnAfterRemoveLiquidity(kind core.RemoveLiquidityKind, _ *big.Int, _, amountsOutRaw, _ []*big.Int) ([]*big.Int, error) {
	if kind != core.RemoveProportional {
		return nil, ErrNotProportional
	}

	adjusted := core.CopyAmounts(amountsOutRaw)
	pct := h.state.RemoveLiquidityHookFeePercentage
	if pct == nil || pct.Sign() <= 0 {
		return adjusted, nil
	}
	for _, amount := range adjusted {
		fee, err := fp.MulDown(amount, pct)
		if err != nil {
			return nil, err
		}
		amount.Sub(amount, fee)
	}
	return adjusted, nil
}
