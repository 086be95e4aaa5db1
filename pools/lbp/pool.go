// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lbp

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	"github.com/luxfi/balancer/pools/weighted"
)

var _ core.Curve = (*Pool)(nil)

var (
	ErrSwapsDisabled           = fmt.Errorf("%w: swaps are disabled", core.ErrInvalidSwapParameters)
	ErrProjectTokenSwapBlocked = fmt.Errorf("%w: project token cannot be swapped in", core.ErrInvalidSwapParameters)
)

// Pool is the weighted curve at the snapshot's interpolated weights.
type Pool struct {
	*weighted.Pool

	SwapEnabled           bool
	ProjectTokenIndex     int
	ProjectTokenInBlocked bool
}

// FromState builds the curve for an LBP snapshot.
func FromState(s *core.LiquidityBootstrappingState) (*Pool, error) {
	if len(s.StartWeights) != 2 || len(s.EndWeights) != 2 {
		return nil, fmt.Errorf("%w: LBP pools have exactly 2 weights", core.ErrInvalidSwapParameters)
	}
	if s.ProjectTokenIndex != 0 && s.ProjectTokenIndex != 1 {
		return nil, core.ErrInvalidTokenIndex
	}

	weights, err := GetNormalizedWeights(s.ProjectTokenIndex, s.CurrentTimestamp, s.StartTime, s.EndTime,
		s.StartWeights[s.ProjectTokenIndex], s.EndWeights[s.ProjectTokenIndex])
	if err != nil {
		return nil, err
	}
	wp, err := weighted.NewPool(weights)
	if err != nil {
		return nil, err
	}
	return &Pool{
		Pool:                  wp,
		SwapEnabled:           s.IsSwapEnabled,
		ProjectTokenIndex:     s.ProjectTokenIndex,
		ProjectTokenInBlocked: s.IsProjectTokenSwapInBlocked,
	}, nil
}

// OnSwap applies the sale gating before the weighted curve.
func (p *Pool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	if params.IndexIn < 0 || params.IndexIn > 1 || params.IndexOut < 0 || params.IndexOut > 1 {
		return nil, core.ErrInvalidTokenIndex
	}
	if !p.SwapEnabled {
		return nil, ErrSwapsDisabled
	}
	if p.ProjectTokenInBlocked && params.IndexIn == p.ProjectTokenIndex {
		return nil, ErrProjectTokenSwapBlocked
	}
	return p.Pool.OnSwap(params)
}
