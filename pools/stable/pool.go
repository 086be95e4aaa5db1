// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stable

import (
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

var _ core.Curve = (*Pool)(nil)

// Pool is a StableSwap curve with a fixed amplification parameter.
type Pool struct {
	Amp *big.Int
}

// NewPool returns a stable curve for amp (with AmpPrecision).
func NewPool(amp *big.Int) *Pool {
	return &Pool{Amp: amp}
}

// FromState builds the curve for a stable pool snapshot.
func FromState(s *core.StableState) *Pool {
	return NewPool(s.Amp)
}

func (p *Pool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	balances := params.BalancesLiveScaled18
	if params.IndexIn < 0 || params.IndexOut < 0 || params.IndexIn >= len(balances) || params.IndexOut >= len(balances) {
		return nil, core.ErrInvalidTokenIndex
	}

	invariant, err := ComputeInvariant(p.Amp, balances)
	if err != nil {
		return nil, err
	}

	if params.SwapKind == core.GivenIn {
		return ComputeOutGivenExactIn(p.Amp, balances, params.IndexIn, params.IndexOut, params.AmountGivenScaled18, invariant)
	}
	return ComputeInGivenExactOut(p.Amp, balances, params.IndexIn, params.IndexOut, params.AmountGivenScaled18, invariant)
}

// ComputeInvariant rounds up by adding one unit to a non-zero invariant.
func (p *Pool) ComputeInvariant(balances []*big.Int, rounding core.Rounding) (*big.Int, error) {
	invariant, err := ComputeInvariant(p.Amp, balances)
	if err != nil {
		return nil, err
	}
	if invariant.Sign() > 0 && rounding == core.RoundUp {
		invariant.Add(invariant, fp.One)
	}
	return invariant, nil
}

func (p *Pool) ComputeBalance(balances []*big.Int, tokenInIndex int, invariantRatio *big.Int) (*big.Int, error) {
	if tokenInIndex < 0 || tokenInIndex >= len(balances) {
		return nil, core.ErrInvalidTokenIndex
	}

	invariant, err := p.ComputeInvariant(balances, core.RoundUp)
	if err != nil {
		return nil, err
	}
	scaled, err := fp.MulDown(invariant, invariantRatio)
	if err != nil {
		return nil, err
	}
	return ComputeBalance(p.Amp, balances, scaled, tokenInIndex)
}

func (p *Pool) MinimumInvariantRatio() *big.Int { return new(big.Int).Set(MinInvariantRatio) }
func (p *Pool) MaximumInvariantRatio() *big.Int { return new(big.Int).Set(MaxInvariantRatio) }
