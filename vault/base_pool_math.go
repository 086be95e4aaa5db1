// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

// Curve-independent liquidity maths. Every function rounds so that the
// pool never mints more, or pays out more, than the exact result.

// InvariantFunc and BalanceFunc let the maths run against any curve.
type (
	InvariantFunc func(balances []*big.Int, rounding core.Rounding) (*big.Int, error)
	BalanceFunc   func(balances []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error)
)

// ComputeAddLiquidityUnbalanced returns the BPT minted for exactAmounts
// and the swap fee charged per token on the non-proportional part.
func ComputeAddLiquidityUnbalanced(
	currentBalances []*big.Int,
	exactAmounts []*big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	maxInvariantRatio *big.Int,
	computeInvariant InvariantFunc,
) (*big.Int, []*big.Int, error) {
	n := len(currentBalances)
	if len(exactAmounts) != n {
		return nil, nil, fmt.Errorf("%w: %d amounts for %d balances", core.ErrInvalidInput, len(exactAmounts), n)
	}

	// One wei is shaved off every new balance to absorb rounding in the
	// invariant.
	newBalances := make([]*big.Int, n)
	for i := range currentBalances {
		newBalances[i] = new(big.Int).Add(currentBalances[i], exactAmounts[i])
		newBalances[i].Sub(newBalances[i], fp.One)
	}

	currentInvariant, err := computeInvariant(currentBalances, core.RoundUp)
	if err != nil {
		return nil, nil, err
	}
	newInvariant, err := computeInvariant(newBalances, core.RoundDown)
	if err != nil {
		return nil, nil, err
	}

	invariantRatio, err := fp.DivDown(newInvariant, currentInvariant)
	if err != nil {
		return nil, nil, err
	}
	if invariantRatio.Cmp(maxInvariantRatio) > 0 {
		return nil, nil, fmt.Errorf("%w: invariant ratio %s above maximum %s", core.ErrMathOverflow, invariantRatio, maxInvariantRatio)
	}

	swapFeeAmounts := zeros(n)
	for i := range currentBalances {
		proportional, err := fp.MulDown(invariantRatio, currentBalances[i])
		if err != nil {
			return nil, nil, err
		}
		if newBalances[i].Cmp(proportional) <= 0 {
			continue
		}
		taxable := new(big.Int).Sub(newBalances[i], proportional)
		fee, err := fp.MulUp(taxable, swapFeePercentage)
		if err != nil {
			return nil, nil, err
		}
		swapFeeAmounts[i] = fee
		newBalances[i].Sub(newBalances[i], fee)
	}

	invariantWithFees, err := computeInvariant(newBalances, core.RoundDown)
	if err != nil {
		return nil, nil, err
	}

	bptOut := new(big.Int).Sub(invariantWithFees, currentInvariant)
	bptOut.Mul(bptOut, totalSupply).Quo(bptOut, currentInvariant)
	return bptOut, swapFeeAmounts, nil
}

// ComputeAddLiquiditySingleTokenExactOut returns the amount of token
// tokenInIndex, fee included, needed to mint exactly exactBptAmountOut.
func ComputeAddLiquiditySingleTokenExactOut(
	currentBalances []*big.Int,
	tokenInIndex int,
	exactBptAmountOut *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	maxInvariantRatio *big.Int,
	computeBalance BalanceFunc,
) (*big.Int, []*big.Int, error) {
	newSupply := new(big.Int).Add(exactBptAmountOut, totalSupply)
	invariantRatio, err := fp.DivUp(newSupply, totalSupply)
	if err != nil {
		return nil, nil, err
	}
	if invariantRatio.Cmp(maxInvariantRatio) > 0 {
		return nil, nil, fmt.Errorf("%w: invariant ratio %s above maximum %s", core.ErrMathOverflow, invariantRatio, maxInvariantRatio)
	}

	balance := currentBalances[tokenInIndex]
	newBalance, err := computeBalance(currentBalances, tokenInIndex, invariantRatio)
	if err != nil {
		return nil, nil, err
	}
	amountIn := new(big.Int).Sub(newBalance, balance)

	scaled, err := fp.MulDown(newSupply, balance)
	if err != nil {
		return nil, nil, err
	}
	nonTaxable, err := fp.DivDown(scaled, totalSupply)
	if err != nil {
		return nil, nil, err
	}
	taxable := new(big.Int).Add(amountIn, balance)
	taxable.Sub(taxable, nonTaxable)

	fee, err := grossUp(taxable, swapFeePercentage)
	if err != nil {
		return nil, nil, err
	}

	swapFeeAmounts := zeros(len(currentBalances))
	swapFeeAmounts[tokenInIndex] = fee
	return amountIn.Add(amountIn, fee), swapFeeAmounts, nil
}

// ComputeProportionalAmountsOut returns balance*bptAmountIn/totalSupply
// for every token, rounded down.
func ComputeProportionalAmountsOut(balances []*big.Int, totalSupply, bptAmountIn *big.Int) ([]*big.Int, error) {
	if totalSupply.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero total supply", core.ErrInsufficientLiquidity)
	}
	out := make([]*big.Int, len(balances))
	for i, b := range balances {
		out[i] = new(big.Int).Mul(b, bptAmountIn)
		out[i].Quo(out[i], totalSupply)
	}
	return out, nil
}

// ComputeRemoveLiquiditySingleTokenExactIn returns the amount of token
// tokenOutIndex, net of fee, paid for burning exactBptAmountIn.
func ComputeRemoveLiquiditySingleTokenExactIn(
	currentBalances []*big.Int,
	tokenOutIndex int,
	exactBptAmountIn *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	minInvariantRatio *big.Int,
	computeBalance BalanceFunc,
) (*big.Int, []*big.Int, error) {
	newSupply := new(big.Int).Sub(totalSupply, exactBptAmountIn)
	invariantRatio, err := fp.DivUp(newSupply, totalSupply)
	if err != nil {
		return nil, nil, err
	}
	if invariantRatio.Cmp(minInvariantRatio) < 0 {
		return nil, nil, fmt.Errorf("%w: invariant ratio %s below minimum %s", core.ErrMathOverflow, invariantRatio, minInvariantRatio)
	}

	balance := currentBalances[tokenOutIndex]
	newBalance, err := computeBalance(currentBalances, tokenOutIndex, invariantRatio)
	if err != nil {
		return nil, nil, err
	}
	amountOut := new(big.Int).Sub(balance, newBalance)

	beforeTax, err := fp.MulDivUp(newSupply, balance, totalSupply)
	if err != nil {
		return nil, nil, err
	}
	taxable := new(big.Int).Sub(beforeTax, newBalance)
	fee, err := fp.MulUp(taxable, swapFeePercentage)
	if err != nil {
		return nil, nil, err
	}

	swapFeeAmounts := zeros(len(currentBalances))
	swapFeeAmounts[tokenOutIndex] = fee
	return amountOut.Sub(amountOut, fee), swapFeeAmounts, nil
}

// ComputeRemoveLiquiditySingleTokenExactOut returns the BPT burned to
// withdraw exactly exactAmountOut of token tokenOutIndex.
func ComputeRemoveLiquiditySingleTokenExactOut(
	currentBalances []*big.Int,
	tokenOutIndex int,
	exactAmountOut *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	minInvariantRatio *big.Int,
	computeInvariant InvariantFunc,
) (*big.Int, []*big.Int, error) {
	n := len(currentBalances)
	newBalances := make([]*big.Int, n)
	for i, b := range currentBalances {
		newBalances[i] = new(big.Int).Sub(b, fp.One)
	}
	newBalances[tokenOutIndex].Sub(newBalances[tokenOutIndex], exactAmountOut)

	currentInvariant, err := computeInvariant(currentBalances, core.RoundUp)
	if err != nil {
		return nil, nil, err
	}
	newInvariant, err := computeInvariant(newBalances, core.RoundUp)
	if err != nil {
		return nil, nil, err
	}
	invariantRatio, err := fp.DivUp(newInvariant, currentInvariant)
	if err != nil {
		return nil, nil, err
	}
	if invariantRatio.Cmp(minInvariantRatio) < 0 {
		return nil, nil, fmt.Errorf("%w: invariant ratio %s below minimum %s", core.ErrMathOverflow, invariantRatio, minInvariantRatio)
	}

	proportional, err := fp.MulUp(invariantRatio, currentBalances[tokenOutIndex])
	if err != nil {
		return nil, nil, err
	}
	taxable := proportional.Sub(proportional, newBalances[tokenOutIndex])
	fee, err := grossUp(taxable, swapFeePercentage)
	if err != nil {
		return nil, nil, err
	}
	newBalances[tokenOutIndex].Sub(newBalances[tokenOutIndex], fee)

	invariantWithFees, err := computeInvariant(newBalances, core.RoundDown)
	if err != nil {
		return nil, nil, err
	}

	swapFeeAmounts := zeros(n)
	swapFeeAmounts[tokenOutIndex] = fee

	bptIn, err := fp.MulDivUp(totalSupply, new(big.Int).Sub(currentInvariant, invariantWithFees), currentInvariant)
	if err != nil {
		return nil, nil, err
	}
	return bptIn, swapFeeAmounts, nil
}

// grossUp returns the fee that, charged on top of amount, leaves amount
// after the fee percentage is deducted: amount/(1-fee) - amount.
func grossUp(amount, feePercentage *big.Int) (*big.Int, error) {
	gross, err := fp.DivUp(amount, fp.Complement(feePercentage))
	if err != nil {
		return nil, err
	}
	return gross.Sub(gross, amount), nil
}

func zeros(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
	}
	return out
}
