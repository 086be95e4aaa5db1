// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reclamm

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
)

var _ core.Curve = (*Pool)(nil)

// ErrUnbalancedLiquidity is returned by ComputeBalance: liquidity can
// only move proportionally through a ReClamm pool.
var ErrUnbalancedLiquidity = fmt.Errorf("%w: ReClamm pools only support proportional liquidity", core.ErrInvalidLiquidityParameters)

// Pool is a ReClamm curve bound to one time-dependent configuration.
type Pool struct {
	Params core.ReClammParams
}

// FromState builds the curve for a ReClamm snapshot.
func FromState(s *core.ReClammState) *Pool {
	return &Pool{Params: s.ReClammParams}
}

func (p *Pool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	balances := params.BalancesLiveScaled18
	if err := checkIndexes(balances, params.IndexIn, params.IndexOut); err != nil {
		return nil, err
	}

	v, _, err := ComputeCurrentVirtualBalances(balances, &p.Params)
	if err != nil {
		return nil, err
	}

	if params.SwapKind == core.GivenIn {
		return ComputeOutGivenIn(balances, v, params.IndexIn, params.IndexOut, params.AmountGivenScaled18)
	}
	return ComputeInGivenOut(balances, v, params.IndexIn, params.IndexOut, params.AmountGivenScaled18)
}

// ComputeInvariant evaluates the product over the current virtual
// balances.
func (p *Pool) ComputeInvariant(balances []*big.Int, rounding core.Rounding) (*big.Int, error) {
	v, _, err := ComputeCurrentVirtualBalances(balances, &p.Params)
	if err != nil {
		return nil, err
	}
	return ComputeInvariant(balances, v, rounding)
}

func (p *Pool) ComputeBalance([]*big.Int, int, *big.Int) (*big.Int, error) {
	return nil, ErrUnbalancedLiquidity
}

// Invariant ratio bounds are unused: only proportional liquidity.
func (p *Pool) MinimumInvariantRatio() *big.Int { return new(big.Int) }
func (p *Pool) MaximumInvariantRatio() *big.Int { return new(big.Int) }

func checkIndexes(balances []*big.Int, in, out int) error {
	if len(balances) != 2 {
		return ErrTwoTokens
	}
	if in < 0 || in > 1 || out < 0 || out > 1 || in == out {
		return core.ErrInvalidTokenIndex
	}
	return nil
}
