// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weighted

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
)

var _ core.Curve = (*Pool)(nil)

// Pool is a weighted curve over a fixed set of normalized weights.
type Pool struct {
	weights []*big.Int
}

// NewPool returns a weighted curve. Weights must be non-empty.
func NewPool(weights []*big.Int) (*Pool, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights", core.ErrInvalidSwapParameters)
	}
	return &Pool{weights: weights}, nil
}

// FromState builds the curve for a weighted pool snapshot.
func FromState(s *core.WeightedState) (*Pool, error) {
	return NewPool(s.Weights)
}

// NormalizedWeights returns the pool weights.
func (p *Pool) NormalizedWeights() []*big.Int { return p.weights }

func (p *Pool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	in, out := params.IndexIn, params.IndexOut
	if in < 0 || out < 0 || in >= len(p.weights) || out >= len(p.weights) ||
		in >= len(params.BalancesLiveScaled18) || out >= len(params.BalancesLiveScaled18) {
		return nil, core.ErrInvalidTokenIndex
	}

	balanceIn, weightIn := params.BalancesLiveScaled18[in], p.weights[in]
	balanceOut, weightOut := params.BalancesLiveScaled18[out], p.weights[out]

	if params.SwapKind == core.GivenIn {
		return ComputeOutGivenExactIn(balanceIn, weightIn, balanceOut, weightOut, params.AmountGivenScaled18)
	}
	return ComputeInGivenExactOut(balanceIn, weightIn, balanceOut, weightOut, params.AmountGivenScaled18)
}

func (p *Pool) ComputeInvariant(balances []*big.Int, rounding core.Rounding) (*big.Int, error) {
	if rounding == core.RoundUp {
		return ComputeInvariantUp(p.weights, balances)
	}
	return ComputeInvariantDown(p.weights, balances)
}

func (p *Pool) ComputeBalance(balances []*big.Int, tokenInIndex int, invariantRatio *big.Int) (*big.Int, error) {
	if tokenInIndex < 0 || tokenInIndex >= len(balances) || tokenInIndex >= len(p.weights) {
		return nil, core.ErrInvalidTokenIndex
	}
	return ComputeBalanceOutGivenInvariant(balances[tokenInIndex], p.weights[tokenInIndex], invariantRatio)
}

func (p *Pool) MinimumInvariantRatio() *big.Int { return new(big.Int).Set(MinInvariantRatio) }
func (p *Pool) MaximumInvariantRatio() *big.Int { return new(big.Int).Set(MaxInvariantRatio) }
