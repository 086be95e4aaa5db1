// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// DirectionalFee charges (in - out) / (in + out) of the post-trade
// balances when the trade leaves more of the input token than the
// output token, never less than the static fee.
type DirectionalFee struct {
	Default
}

func (DirectionalFee) Type() core.HookType { return core.HookTypeDirectionalFee }
func (DirectionalFee) Flags() Flags        { return CallComputeDynamicSwapFee }

func (DirectionalFee) OnComputeDynamicSwapFee(params *core.SwapParams, staticSwapFee *big.Int) (*big.Int, error) {
	amount := params.AmountGivenScaled18
	finalIn := new(big.Int).Add(params.BalancesLiveScaled18[params.IndexIn], amount)
	finalOut := new(big.Int).Sub(params.BalancesLiveScaled18[params.IndexOut], amount)

	fee := new(big.Int).Set(staticSwapFee)
	if finalIn.Cmp(finalOut) <= 0 {
		return fee, nil
	}

	diff := new(big.Int).Sub(finalIn, finalOut)
	total := new(big.Int).Add(finalIn, finalOut)
	calculated, err := fp.DivDown(diff, total)
	if err != nil {
		return nil, err
	}
	if calculated.Cmp(fee) > 0 {
		return calculated, nil
	}
	return fee, nil
}
