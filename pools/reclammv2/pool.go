// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reclammv2

import (
	"math/big"

	"github.com/luxfi/balancer/core"
	"github.com/luxfi/balancer/pools/reclamm"
)

var _ core.Curve = (*Pool)(nil)

// Pool is a ReClammV2 curve.
type Pool struct {
	Params core.ReClammParams
}

// FromState builds the curve for a ReClammV2 snapshot.
func FromState(s *core.ReClammV2State) *Pool {
	return &Pool{Params: s.ReClammParams}
}

func (p *Pool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	balances := params.BalancesLiveScaled18
	if len(balances) != 2 {
		return nil, reclamm.ErrTwoTokens
	}
	if params.IndexIn < 0 || params.IndexIn > 1 || params.IndexOut < 0 || params.IndexOut > 1 || params.IndexIn == params.IndexOut {
		return nil, core.ErrInvalidTokenIndex
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

func (p *Pool) ComputeInvariant(balances []*big.Int, rounding core.Rounding) (*big.Int, error) {
	v, _, err := ComputeCurrentVirtualBalances(balances, &p.Params)
	if err != nil {
		return nil, err
	}
	return reclamm.ComputeInvariant(balances, v, rounding)
}

func (p *Pool) ComputeBalance([]*big.Int, int, *big.Int) (*big.Int, error) {
	return nil, reclamm.ErrUnbalancedLiquidity
}

func (p *Pool) MinimumInvariantRatio() *big.Int { return new(big.Int) }
func (p *Pool) MaximumInvariantRatio() *big.Int { return new(big.Int) }
