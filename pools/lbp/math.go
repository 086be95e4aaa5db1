// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lbp implements two-token liquidity bootstrapping pools: a
// weighted curve whose project token weight moves linearly between a
// start and an end weight, with optional swap gating.
package lbp

import (
	"math/big"

	fp "github.com/luxfi/balancer/fixedpoint"
)

// Progress returns how far now is through [start, end] as a WAD
// fraction, clamped to [0, 1].
func Progress(now, start, end uint64) *big.Int {
	switch {
	case now >= end:
		return new(big.Int).Set(fp.WAD)
	case now <= start:
		return new(big.Int)
	}
	p, _ := fp.DivDown(new(big.Int).SetUint64(now-start), new(big.Int).SetUint64(end-start))
	return p
}

// Interpolate moves linearly from start to end by progress, rounding
// the step down.
func Interpolate(start, end, progress *big.Int) (*big.Int, error) {
	if progress.Cmp(fp.WAD) >= 0 || start.Cmp(end) == 0 {
		return new(big.Int).Set(end), nil
	}
	if progress.Sign() == 0 {
		return new(big.Int).Set(start), nil
	}

	if start.Cmp(end) > 0 {
		delta, err := fp.MulDown(progress, new(big.Int).Sub(start, end))
		if err != nil {
			return nil, err
		}
		return delta.Sub(start, delta), nil
	}
	delta, err := fp.MulDown(progress, new(big.Int).Sub(end, start))
	if err != nil {
		return nil, err
	}
	return delta.Add(start, delta), nil
}

// GetNormalizedWeights returns both weights at now. The reserve token
// takes the complement of the project token weight.
func GetNormalizedWeights(projectTokenIndex int, now, start, end uint64, startWeight, endWeight *big.Int) ([]*big.Int, error) {
	project, err := Interpolate(startWeight, endWeight, Progress(now, start, end))
	if err != nil {
		return nil, err
	}

	weights := make([]*big.Int, 2)
	weights[projectTokenIndex] = project
	weights[1-projectTokenIndex] = new(big.Int).Sub(fp.WAD, project)
	return weights, nil
}
