// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

var _ core.Curve = (*TwoCLPPool)(nil)

// ErrSqrtParamsWrong rejects a 2-CLP range with sqrtAlpha >= sqrtBeta.
var ErrSqrtParamsWrong = fmt.Errorf("%w: sqrt params wrong", core.ErrInvalidInput)

var (
	wadPlusTwo  = big.NewInt(1e18 + 2)
	wadMinusOne = big.NewInt(1e18 - 1)
)

type fixedFn func(a, b *big.Int) (*big.Int, error)

// TwoCLPPool is a Gyro two-token concentrated liquidity curve on the
// price range [alpha, beta], with invariant (x + a)(y + b) = L^2.
type TwoCLPPool struct {
	SqrtAlpha *big.Int
	SqrtBeta  *big.Int
}

// NewTwoCLPPool returns a 2-CLP curve.
func NewTwoCLPPool(sqrtAlpha, sqrtBeta *big.Int) (*TwoCLPPool, error) {
	if sqrtAlpha.Cmp(sqrtBeta) >= 0 {
		return nil, ErrSqrtParamsWrong
	}
	return &TwoCLPPool{SqrtAlpha: sqrtAlpha, SqrtBeta: sqrtBeta}, nil
}

// TwoCLPFromState builds the curve for a 2-CLP snapshot.
func TwoCLPFromState(s *core.Gyro2CLPState) (*TwoCLPPool, error) {
	return NewTwoCLPPool(s.SqrtAlpha, s.SqrtBeta)
}

// Calculate2CLPInvariant solves the quadratic for L.
func Calculate2CLPInvariant(balances []*big.Int, sqrtAlpha, sqrtBeta *big.Int, rounding core.Rounding) (*big.Int, error) {
	if len(balances) != 2 {
		return nil, fmt.Errorf("%w: 2-CLP pools have exactly 2 tokens", core.ErrInvalidInput)
	}

	divUpOrDown, mulUpOrDown, mulDownOrUp := fixedFn(fp.DivDown), fixedFn(fp.MulDown), fixedFn(fp.MulUp)
	if rounding == core.RoundUp {
		divUpOrDown, mulUpOrDown, mulDownOrUp = fp.DivUp, fp.MulUp, fp.MulDown
	}

	var err error
	call := func(f fixedFn, a, b *big.Int) *big.Int {
		if err != nil {
			return new(big.Int)
		}
		r, e := f(a, b)
		if e != nil {
			err = e
			return new(big.Int)
		}
		return r
	}

	b0, b1 := balances[0], balances[1]

	a := sub(fp.WAD, call(divUpOrDown, sqrtAlpha, sqrtBeta))
	mb := add(call(divUpOrDown, b1, sqrtBeta), call(mulUpOrDown, b0, sqrtAlpha))
	mc := call(mulUpOrDown, b0, b1)

	bSquare := call(mulUpOrDown, call(mulUpOrDown, call(mulUpOrDown, b0, b0), sqrtAlpha), sqrtAlpha)
	bSquare.Add(bSquare, call(divUpOrDown, mulInt(call(mulUpOrDown, call(mulUpOrDown, b0, b1), sqrtAlpha), 2), sqrtBeta))
	bSquare.Add(bSquare, call(divUpOrDown, call(mulUpOrDown, b1, b1), call(mulDownOrUp, sqrtBeta, sqrtBeta)))
	if err != nil {
		return nil, err
	}

	return solveQuadratic(a, mb, bSquare, mc)
}

func solveQuadratic(a, mb, bSquare, mc *big.Int) (*big.Int, error) {
	den, err := fp.MulUp(a, fp.TwoWAD)
	if err != nil {
		return nil, err
	}
	addTerm, err := fp.MulDown(mc, fp.FourWAD)
	if err != nil {
		return nil, err
	}
	if addTerm, err = fp.MulDown(addTerm, a); err != nil {
		return nil, err
	}

	root, err := Sqrt(add(bSquare, addTerm), 5)
	if err != nil {
		return nil, err
	}
	return fp.DivDown(add(mb, root), den)
}

// Calc2CLPOutGivenIn returns the amount out, leaving a safety margin on
// the virtual offsets.
func Calc2CLPOutGivenIn(balanceIn, balanceOut, amountIn, virtualIn, virtualOut *big.Int) (*big.Int, error) {
	virtInOver, virtOutUnder, err := virtualBalances(balanceIn, balanceOut, virtualIn, virtualOut)
	if err != nil {
		return nil, err
	}

	num, err := fp.MulDown(virtOutUnder, amountIn)
	if err != nil {
		return nil, err
	}
	out, err := fp.DivDown(num, add(virtInOver, amountIn))
	if err != nil {
		return nil, err
	}
	if out.Cmp(balanceOut) > 0 {
		return nil, ErrAssetBoundsExceeded
	}
	return out, nil
}

// Calc2CLPInGivenOut returns the amount in for an exact amount out.
func Calc2CLPInGivenOut(balanceIn, balanceOut, amountOut, virtualIn, virtualOut *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balanceOut) > 0 {
		return nil, ErrAssetBoundsExceeded
	}
	virtInOver, virtOutUnder, err := virtualBalances(balanceIn, balanceOut, virtualIn, virtualOut)
	if err != nil {
		return nil, err
	}

	num, err := fp.MulUp(virtInOver, amountOut)
	if err != nil {
		return nil, err
	}
	return fp.DivUp(num, sub(virtOutUnder, amountOut))
}

func virtualBalances(balanceIn, balanceOut, virtualIn, virtualOut *big.Int) (*big.Int, *big.Int, error) {
	vIn, err := fp.MulUp(virtualIn, wadPlusTwo)
	if err != nil {
		return nil, nil, err
	}
	vOut, err := fp.MulDown(virtualOut, wadMinusOne)
	if err != nil {
		return nil, nil, err
	}
	return add(balanceIn, vIn), add(balanceOut, vOut), nil
}

// VirtualParameter0 is L / sqrt(beta).
func VirtualParameter0(invariant, sqrtBeta *big.Int, rounding core.Rounding) (*big.Int, error) {
	if rounding == core.RoundUp {
		return fp.DivUp(invariant, sqrtBeta)
	}
	return fp.DivDown(invariant, sqrtBeta)
}

// VirtualParameter1 is L * sqrt(alpha).
func VirtualParameter1(invariant, sqrtAlpha *big.Int, rounding core.Rounding) (*big.Int, error) {
	if rounding == core.RoundUp {
		return fp.MulUp(invariant, sqrtAlpha)
	}
	return fp.MulDown(invariant, sqrtAlpha)
}

func (p *TwoCLPPool) virtualOffsets(balanceIn, balanceOut *big.Int, tokenInIsToken0 bool) (*big.Int, *big.Int, error) {
	balances := []*big.Int{balanceOut, balanceIn}
	if tokenInIsToken0 {
		balances = []*big.Int{balanceIn, balanceOut}
	}

	inv, err := Calculate2CLPInvariant(balances, p.SqrtAlpha, p.SqrtBeta, core.RoundDown)
	if err != nil {
		return nil, nil, err
	}

	if tokenInIsToken0 {
		vIn, err := VirtualParameter0(inv, p.SqrtBeta, core.RoundUp)
		if err != nil {
			return nil, nil, err
		}
		vOut, err := VirtualParameter1(inv, p.SqrtAlpha, core.RoundDown)
		return vIn, vOut, err
	}

	vIn, err := VirtualParameter1(inv, p.SqrtAlpha, core.RoundUp)
	if err != nil {
		return nil, nil, err
	}
	vOut, err := VirtualParameter0(inv, p.SqrtBeta, core.RoundDown)
	return vIn, vOut, err
}

func (p *TwoCLPPool) OnSwap(params *core.SwapParams) (*big.Int, error) {
	balances := params.BalancesLiveScaled18
	if len(balances) != 2 || params.IndexIn < 0 || params.IndexIn > 1 || params.IndexOut < 0 || params.IndexOut > 1 {
		return nil, core.ErrInvalidTokenIndex
	}

	balanceIn, balanceOut := balances[params.IndexIn], balances[params.IndexOut]
	vIn, vOut, err := p.virtualOffsets(balanceIn, balanceOut, params.IndexIn == 0)
	if err != nil {
		return nil, err
	}

	if params.SwapKind == core.GivenIn {
		return Calc2CLPOutGivenIn(balanceIn, balanceOut, params.AmountGivenScaled18, vIn, vOut)
	}
	return Calc2CLPInGivenOut(balanceIn, balanceOut, params.AmountGivenScaled18, vIn, vOut)
}

func (p *TwoCLPPool) ComputeInvariant(balances []*big.Int, rounding core.Rounding) (*big.Int, error) {
	return Calculate2CLPInvariant(balances, p.SqrtAlpha, p.SqrtBeta, rounding)
}

func (p *TwoCLPPool) ComputeBalance(balances []*big.Int, tokenInIndex int, invariantRatio *big.Int) (*big.Int, error) {
	if tokenInIndex < 0 || tokenInIndex > 1 {
		return nil, core.ErrInvalidTokenIndex
	}

	inv, err := Calculate2CLPInvariant(balances, p.SqrtAlpha, p.SqrtBeta, core.RoundUp)
	if err != nil {
		return nil, err
	}
	if inv, err = fp.MulUp(inv, invariantRatio); err != nil {
		return nil, err
	}
	sq := new(big.Int).Mul(inv, inv)

	a, err := fp.DivDown(inv, p.SqrtBeta)
	if err != nil {
		return nil, err
	}
	b, err := fp.MulDown(inv, p.SqrtAlpha)
	if err != nil {
		return nil, err
	}

	if tokenInIndex == 0 {
		return sub(fp.DivUpRaw(sq, add(balances[1], b)), a), nil
	}
	return sub(fp.DivUpRaw(sq, add(balances[0], a)), b), nil
}

func (p *TwoCLPPool) MinimumInvariantRatio() *big.Int { return new(big.Int) }
func (p *TwoCLPPool) MaximumInvariantRatio() *big.Int { return new(big.Int).Set(fp.MaxUint256) }
