// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// Conversions between raw token units and the 18-decimal, rate-adjusted
// units the curves work in. A scaling factor is 10^(18 - decimals).

// ToScaled18ApplyRateRoundDown returns amount*scalingFactor*rate/WAD,
// rounded down.
func ToScaled18ApplyRateRoundDown(amount, scalingFactor, rate *big.Int) (*big.Int, error) {
	return fp.MulDown(new(big.Int).Mul(amount, scalingFactor), rate)
}

// ToScaled18ApplyRateRoundUp returns amount*scalingFactor*rate/WAD,
// rounded up.
func ToScaled18ApplyRateRoundUp(amount, scalingFactor, rate *big.Int) (*big.Int, error) {
	return fp.MulUp(new(big.Int).Mul(amount, scalingFactor), rate)
}

// ToRawUndoRateRoundDown reverses the scaling, rounded down.
func ToRawUndoRateRoundDown(amount, scalingFactor, rate *big.Int) (*big.Int, error) {
	return fp.DivDown(amount, new(big.Int).Mul(scalingFactor, rate))
}

// ToRawUndoRateRoundUp reverses the scaling, rounded up.
func ToRawUndoRateRoundUp(amount, scalingFactor, rate *big.Int) (*big.Int, error) {
	return fp.DivUp(amount, new(big.Int).Mul(scalingFactor, rate))
}

// ComputeRateRoundUp bumps a rate with a fractional part by one unit so
// that dividing by it can only shrink the result.
func ComputeRateRoundUp(rate *big.Int) *big.Int {
	if new(big.Int).Rem(rate, fp.WAD).Sign() == 0 {
		return new(big.Int).Set(rate)
	}
	return new(big.Int).Add(rate, fp.One)
}

// CopyToScaled18ApplyRateRoundDownArray scales every amount, leaving
// amounts untouched.
func CopyToScaled18ApplyRateRoundDownArray(amounts, scalingFactors, rates []*big.Int) ([]*big.Int, error) {
	return scaleAll(amounts, scalingFactors, rates, ToScaled18ApplyRateRoundDown)
}

// CopyToScaled18ApplyRateRoundUpArray is the rounding-up counterpart.
func CopyToScaled18ApplyRateRoundUpArray(amounts, scalingFactors, rates []*big.Int) ([]*big.Int, error) {
	return scaleAll(amounts, scalingFactors, rates, ToScaled18ApplyRateRoundUp)
}

func scaleAll(amounts, scalingFactors, rates []*big.Int, scale func(a, s, r *big.Int) (*big.Int, error)) ([]*big.Int, error) {
	if len(amounts) != len(scalingFactors) || len(amounts) != len(rates) {
		return nil, fmt.Errorf("%w: %d amounts for %d tokens", core.ErrInvalidInput, len(amounts), len(scalingFactors))
	}
	out := make([]*big.Int, len(amounts))
	for i, a := range amounts {
		v, err := scale(orZero(a), scalingFactors[i], rates[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ComputeAndChargeAggregateSwapFees returns the protocol and creator
// share of a swap fee collected in token index, in raw units.
func ComputeAndChargeAggregateSwapFees(swapFeeAmountScaled18, aggregateSwapFeePercentage *big.Int, scalingFactors, rates []*big.Int, index int) (*big.Int, error) {
	if swapFeeAmountScaled18.Sign() <= 0 || aggregateSwapFeePercentage.Sign() <= 0 {
		return new(big.Int), nil
	}
	raw, err := ToRawUndoRateRoundDown(swapFeeAmountScaled18, scalingFactors[index], rates[index])
	if err != nil {
		return nil, err
	}
	return fp.MulDown(raw, aggregateSwapFeePercentage)
}

// GetSingleInputIndex returns the index of the only non-zero amount.
func GetSingleInputIndex(amounts []*big.Int) (int, error) {
	index := -1
	for i, a := range amounts {
		if a == nil || a.Sign() == 0 {
			continue
		}
		if index >= 0 {
			return 0, fmt.Errorf("%w: multiple non-zero inputs for single token operation", core.ErrInvalidInput)
		}
		index = i
	}
	if index < 0 {
		return 0, fmt.Errorf("%w: all zero inputs for single token operation", core.ErrInvalidInput)
	}
	return index, nil
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}
