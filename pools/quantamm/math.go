// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package quantamm implements QuantAMM pools: weighted pools whose
// weights move linearly per second between on-chain updates.
package quantamm

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// MaxTokens is the largest pool the packed layout can describe.
const MaxTokens = 8

var errPacking = fmt.Errorf("%w: weights and multipliers do not match token count", core.ErrInvalidInput)

// CalculateBlockNormalisedWeight moves weight by multiplier per second
// over elapsed seconds.
func CalculateBlockNormalisedWeight(weight, multiplier, elapsed *big.Int) (*big.Int, error) {
	scaled := new(big.Int).Mul(multiplier, fp.WAD)
	if multiplier.Sign() > 0 {
		delta, err := fp.MulDown(scaled, elapsed)
		if err != nil {
			return nil, err
		}
		return delta.Add(weight, delta), nil
	}
	delta, err := fp.MulDown(scaled.Neg(scaled), elapsed)
	if err != nil {
		return nil, err
	}
	return delta.Sub(weight, delta), nil
}

// unpack splits n weights followed by n multipliers.
func unpack(packed []*big.Int, n int) ([]*big.Int, []*big.Int, error) {
	if len(packed) < 2*n {
		return nil, nil, errPacking
	}
	return packed[:n], packed[n : 2*n], nil
}

// GetFirstFourWeightsAndMultipliers returns the weights and multipliers
// of tokens one to four.
func GetFirstFourWeightsAndMultipliers(numTokens int, packed []*big.Int) ([]*big.Int, []*big.Int, error) {
	return unpack(packed, min(numTokens, 4))
}

// GetSecondFourWeightsAndMultipliers returns the weights and multipliers
// of tokens five to eight, or nothing for pools of four or fewer tokens.
func GetSecondFourWeightsAndMultipliers(numTokens int, packed []*big.Int) ([]*big.Int, []*big.Int, error) {
	if numTokens <= 4 {
		return nil, nil, nil
	}
	return unpack(packed, numTokens-4)
}

// NormalizedWeights interpolates every weight to now, stopping at
// lastInteropTime.
func NormalizedWeights(weights, multipliers []*big.Int, lastUpdateTime, lastInteropTime, now uint64) ([]*big.Int, error) {
	t := now
	if now >= lastInteropTime {
		t = lastInteropTime
	}
	elapsed := new(big.Int).SetUint64(t)
	elapsed.Sub(elapsed, new(big.Int).SetUint64(lastUpdateTime))

	out := make([]*big.Int, len(weights))
	for i := range weights {
		w, err := CalculateBlockNormalisedWeight(weights[i], multipliers[i], elapsed)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}
