// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantamm

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
	"github.com/luxfi/balancer/pools/weighted"
)

var _ core.Curve = (*Pool)(nil)

// ErrMaxTradeSizeRatio is returned when a swap leg exceeds the allowed
// share of the pool balance.
var ErrMaxTradeSizeRatio = fmt.Errorf("%w: max trade size ratio exceeded", core.ErrInvalidSwapParameters)

// Pool is a weighted curve frozen at the interpolated weights of one
// timestamp, with a per-leg trade size cap.
type Pool struct {
	*weighted.Pool
	MaxTradeSizeRatio *big.Int
}

// FromState interpolates the snapshot weights to its current timestamp.
func FromState(s *core.QuantAmmState) (*Pool, error) {
	n := len(s.Tokens)
	if n == 0 || n > MaxTokens {
		return nil, fmt.Errorf("%w: %d tokens", core.ErrInvalidSwapParameters, n)
	}

	w1, m1, err := GetFirstFourWeightsAndMultipliers(n, s.FirstFourWeightsAndMultipliers)
	if err != nil {
		return nil, err
	}
	w2, m2, err := GetSecondFourWeightsAndMultipliers(n, s.SecondFourWeightsAndMultipliers)
	if err != nil {
		return nil, err
	}

	weights, err := NormalizedWeights(append(append([]*big.Int{}, w1...), w2...), append(append([]*big.Int{}, m1...), m2...),
		s.LastUpdateTime, s.LastInteropTime, s.CurrentTimestamp)
	if err != nil {
		return nil, err
	}
	wp, err := weighted.NewPool(weights)
	if err != nil {
		return nil, err
	}
	return &Pool{Pool: wp, MaxTradeSizeRatio: s.MaxTradeSizeRatio}, nil
}

func (p *Pool) checkTradeSize(amount, balance *big.Int) error {
	limit, err := fp.MulDown(balance, p.MaxTradeSizeRatio)
	if err != nil {
		return err
	}
	if amount.Cmp(limit) > 0 {
		return ErrMaxTradeSizeRatio
	}
	return nil
}

// OnSwap caps the given amount before the curve call and the computed
// amount after it.
func (p *Pool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	in, out := params.IndexIn, params.IndexOut
	n := len(p.NormalizedWeights())
	if in < 0 || out < 0 || in >= n || out >= n || in >= len(params.BalancesLiveScaled18) || out >= len(params.BalancesLiveScaled18) {
		return nil, core.ErrInvalidTokenIndex
	}
	balanceIn, balanceOut := params.BalancesLiveScaled18[in], params.BalancesLiveScaled18[out]

	givenBalance, computedBalance := balanceIn, balanceOut
	if params.SwapKind == core.GivenOut {
		givenBalance, computedBalance = balanceOut, balanceIn
	}

	if err := p.checkTradeSize(params.AmountGivenScaled18, givenBalance); err != nil {
		return nil, err
	}
	amount, err := p.Pool.OnSwap(params)
	if err != nil {
		return nil, err
	}
	if err := p.checkTradeSize(amount, computedBalance); err != nil {
		return nil, err
	}
	return amount, nil
}
