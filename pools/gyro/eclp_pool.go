// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
)

var _ core.Curve = (*ECLPPool)(nil)

// ECLPPool is a Gyro elliptic concentrated liquidity curve.
type ECLPPool struct {
	Params  core.GyroECLPParams
	Derived core.GyroECLPDerived
}

// NewECLPPool validates the parameters that appear as divisors.
func NewECLPPool(params core.GyroECLPParams, derived core.GyroECLPDerived) (*ECLPPool, error) {
	if params.Lambda == nil || params.Lambda.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero lambda", core.ErrInvalidInput)
	}
	if derived.DSq == nil || derived.DSq.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero dSq", core.ErrInvalidInput)
	}
	return &ECLPPool{Params: params, Derived: derived}, nil
}

// ECLPFromState builds the curve for an ECLP snapshot.
func ECLPFromState(s *core.GyroECLPState) (*ECLPPool, error) {
	return NewECLPPool(s.Params, s.Derived)
}

func (p *ECLPPool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	balances := params.BalancesLiveScaled18
	inv, invErr, err := CalculateInvariantWithError(balances, &p.Params, &p.Derived)
	if err != nil {
		return nil, err
	}

	// Overestimate x and underestimate y.
	r := vector2{X: add(inv, mulInt(invErr, 2)), Y: inv}
	tokenInIsToken0 := params.IndexIn == 0

	if params.SwapKind == core.GivenIn {
		return CalcOutGivenIn(balances, params.AmountGivenScaled18, tokenInIsToken0, &p.Params, &p.Derived, r)
	}
	return CalcInGivenOut(balances, params.AmountGivenScaled18, tokenInIsToken0, &p.Params, &p.Derived, r)
}

func (p *ECLPPool) ComputeInvariant(balances []*big.Int, rounding core.Rounding) (*big.Int, error) {
	inv, invErr, err := CalculateInvariantWithError(balances, &p.Params, &p.Derived)
	if err != nil {
		return nil, err
	}
	if rounding == core.RoundUp {
		return inv.Add(inv, invErr), nil
	}
	return inv.Sub(inv, invErr), nil
}

func (p *ECLPPool) ComputeBalance(balances []*big.Int, tokenInIndex int, invariantRatio *big.Int) (*big.Int, error) {
	return ComputeBalance(balances, tokenInIndex, invariantRatio, &p.Params, &p.Derived)
}

func (p *ECLPPool) MinimumInvariantRatio() *big.Int { return new(big.Int).Set(ECLPMinInvariantRatio) }
func (p *ECLPPool) MaximumInvariantRatio() *big.Int { return new(big.Int).Set(ECLPMaxInvariantRatio) }
