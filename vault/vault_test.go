// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
	"github.com/luxfi/balancer/hooks"
)

func wad(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), fp.WAD) }

func amounts(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func bigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid integer " + s)
	}
	return v
}

func hookType(t core.HookType) *core.HookType { return &t }

func newTestVault() *Vault {
	return New(WithLogger(log.NewTestLogger(log.DebugLevel)))
}

var (
	tokenA = common.HexToAddress("0x7b79995e5f793A07Bc00c21412e50Ecae098E7f9")
	tokenB = common.HexToAddress("0xb19382073c7A0aDdbb56Ac6AF1808Fa49e377B75")
)

func exitFeePool() *core.WeightedState {
	return &core.WeightedState{
		BasePoolState: core.BasePoolState{
			PoolAddress:                 common.HexToAddress("0x03722034317d8fb16845213bd3ce15439f9ce136"),
			PoolType:                    core.PoolTypeWeighted,
			Tokens:                      []common.Address{tokenA, tokenB},
			ScalingFactors:              amounts(1, 1),
			TokenRates:                  []*big.Int{wad(1), wad(1)},
			BalancesLiveScaled18:        []*big.Int{big.NewInt(5e15), big.NewInt(5e18)},
			SwapFee:                     big.NewInt(1e17),
			AggregateSwapFee:            new(big.Int),
			TotalSupply:                 big.NewInt(158113883008415798),
			SupportsUnbalancedLiquidity: true,
			HookType:                    hookType(core.HookTypeExitFee),
		},
		Weights: []*big.Int{big.NewInt(5e17), big.NewInt(5e17)},
	}
}

func TestRemoveLiquidityExitFee(t *testing.T) {
	tests := []struct {
		name string
		fee  *big.Int
		want []*big.Int
	}{
		{"no fee", new(big.Int), amounts(316227766016, 316227766016844)},
		{"five percent", big.NewInt(5e16), amounts(300416377716, 300416377716002)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestVault().RemoveLiquidity(&core.RemoveLiquidityInput{
				MinAmountsOutRaw:  amounts(1, 1),
				MaxBptAmountInRaw: big.NewInt(1e13),
				Kind:              core.RemoveProportional,
			}, exitFeePool(), &core.ExitFeeHookState{
				Tokens:                           []common.Address{tokenA, tokenB},
				RemoveLiquidityHookFeePercentage: tt.fee,
			})
			require.NoError(t, err)
			require.Equal(t, big.NewInt(1e13), res.BptAmountInRaw)
			require.Equal(t, tt.want, res.AmountsOutRaw)
		})
	}
}

func TestRemoveLiquidityExitFeeRejectsSingleToken(t *testing.T) {
	_, err := newTestVault().RemoveLiquidity(&core.RemoveLiquidityInput{
		MinAmountsOutRaw:  amounts(1000, 0),
		MaxBptAmountInRaw: big.NewInt(1e13),
		Kind:              core.RemoveSingleTokenExactIn,
	}, exitFeePool(), &core.ExitFeeHookState{RemoveLiquidityHookFeePercentage: big.NewInt(5e16)})
	require.ErrorIs(t, err, core.ErrAfterRemoveLiquidityHookFailed)
	require.ErrorIs(t, err, hooks.ErrNotProportional)
}

func stableSurgePool() *core.StableState {
	return &core.StableState{
		BasePoolState: core.BasePoolState{
			PoolAddress:                 common.HexToAddress("0x132F4bAa39330d9062fC52d81dF72F601DF8C01f"),
			PoolType:                    core.PoolTypeStable,
			Tokens:                      []common.Address{tokenA, tokenB},
			ScalingFactors:              amounts(1, 1),
			TokenRates:                  []*big.Int{wad(1), wad(1)},
			BalancesLiveScaled18:        []*big.Int{big.NewInt(1e16), bigInt("10000000000000000000")},
			SwapFee:                     big.NewInt(1e16),
			AggregateSwapFee:            big.NewInt(1e16),
			TotalSupply:                 bigInt("9079062661965173292"),
			SupportsUnbalancedLiquidity: true,
			HookType:                    hookType(core.HookTypeStableSurge),
		},
		Amp: big.NewInt(1e6),
	}
}

func TestSwapStableSurge(t *testing.T) {
	surge := &core.StableSurgeHookState{
		Amp:                      big.NewInt(1e6),
		SurgeThresholdPercentage: big.NewInt(3e17),
		MaxSurgeFeePercentage:    big.NewInt(95e16),
	}
	tests := []struct {
		name     string
		amount   *big.Int
		in, out  common.Address
		expected string
	}{
		{"below threshold small", big.NewInt(1e15), tokenA, tokenB, "78522716365403684"},
		{"below threshold", big.NewInt(1e16), tokenA, tokenB, "452983383563178802"},
		{"above threshold", big.NewInt(8e18), tokenB, tokenA, "3252130027531260"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newTestVault().Swap(&core.SwapInput{
				AmountRaw: tt.amount,
				SwapKind:  core.GivenIn,
				TokenIn:   tt.in,
				TokenOut:  tt.out,
			}, stableSurgePool(), surge)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out.String())
		})
	}
}

func TestSwapDirectionalFee(t *testing.T) {
	usdc := common.HexToAddress("0xaA8E23Fb1079EA71e0a56F48a2aA51851D8433D0")
	dai := common.HexToAddress("0xFF34B3d4Aee8ddCd6F9AFFFB6Fe49bD371b8a357")
	pool := func(hook *core.HookType) *core.StableState {
		return &core.StableState{
			BasePoolState: core.BasePoolState{
				PoolAddress:                 common.HexToAddress("0xb4cd36aba5d75feb6bf2b8512dbf8fbd8add3656"),
				PoolType:                    core.PoolTypeStable,
				Tokens:                      []common.Address{usdc, dai},
				ScalingFactors:              amounts(1e12, 1),
				TokenRates:                  []*big.Int{wad(1), wad(1)},
				BalancesLiveScaled18:        []*big.Int{wad(20000), wad(20000)},
				SwapFee:                     big.NewInt(1e15),
				AggregateSwapFee:            new(big.Int),
				TotalSupply:                 wad(40000),
				SupportsUnbalancedLiquidity: true,
				HookType:                    hook,
			},
			Amp: big.NewInt(1e6),
		}
	}
	input := &core.SwapInput{AmountRaw: big.NewInt(1e8), SwapKind: core.GivenIn, TokenIn: usdc, TokenOut: dai}

	v := newTestVault()
	withHook, err := v.Swap(input, pool(hookType(core.HookTypeDirectionalFee)), &core.DirectionalFeeHookState{})
	require.NoError(t, err)
	withoutHook, err := v.Swap(input, pool(nil), nil)
	require.NoError(t, err)
	require.Negative(t, withHook.Cmp(withoutHook))
}

func akronPool() *core.WeightedState {
	return &core.WeightedState{
		BasePoolState: core.BasePoolState{
			PoolAddress:          common.HexToAddress("0x4fbb7870dbe7a7ef4866a33c0eed73d395730dc0"),
			PoolType:             core.PoolTypeWeighted,
			Tokens:               []common.Address{akronToken6, akronToken18},
			ScalingFactors:       amounts(1e12, 1),
			SwapFee:              big.NewInt(1e13),
			AggregateSwapFee:     big.NewInt(5e17),
			BalancesLiveScaled18: []*big.Int{bigInt("4313058813293560452630"), bigInt("1641665567011677058")},
			TokenRates:           []*big.Int{bigInt("1088293475435366304"), bigInt("1026824525555904684")},
			TotalSupply:          bigInt("83925520418320097254"),
			HookType:             hookType(core.HookTypeAkron),
		},
		Weights: []*big.Int{big.NewInt(5e17), big.NewInt(5e17)},
	}
}

var (
	akronToken6  = common.HexToAddress("0xC768c589647798a6EE01A91FdE98EF2ed046DBD6")
	akronToken18 = common.HexToAddress("0xe298b938631f750DD409fB18227C4a23dCdaab9b")
)

func TestSwapAkronMinimumFee(t *testing.T) {
	state := &core.AkronHookState{
		Weights:                  []*big.Int{big.NewInt(5e17), big.NewInt(5e17)},
		MinimumSwapFeePercentage: big.NewInt(1e13),
	}
	tests := []struct {
		name     string
		kind     core.SwapKind
		amount   int64
		in, out  common.Address
		expected string
	}{
		{"6 decimals in, given in", core.GivenIn, 10000, akronToken6, akronToken18, "4034072160040"},
		{"6 decimals in, given out", core.GivenOut, 1034072160040, akronToken6, akronToken18, "2564"},
		{"6 decimals out, given in", core.GivenIn, 1000000000000, akronToken18, akronToken6, "2478"},
		{"6 decimals out, given out", core.GivenOut, 10000, akronToken18, akronToken6, "4034173201018"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newTestVault().Swap(&core.SwapInput{
				AmountRaw: big.NewInt(tt.amount),
				SwapKind:  tt.kind,
				TokenIn:   tt.in,
				TokenOut:  tt.out,
			}, akronPool(), state)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out.String())
		})
	}
}

func evenPool() *core.WeightedState {
	return &core.WeightedState{
		BasePoolState: core.BasePoolState{
			PoolType:                    core.PoolTypeWeighted,
			Tokens:                      []common.Address{tokenA, tokenB},
			ScalingFactors:              amounts(1, 1),
			TokenRates:                  []*big.Int{wad(1), wad(1)},
			BalancesLiveScaled18:        []*big.Int{wad(1000), wad(1000)},
			SwapFee:                     big.NewInt(1e16),
			TotalSupply:                 wad(1000),
			SupportsUnbalancedLiquidity: true,
		},
		Weights: []*big.Int{big.NewInt(5e17), big.NewInt(5e17)},
	}
}

func TestSwapEdgeCases(t *testing.T) {
	v := newTestVault()
	other := common.HexToAddress("0x1")

	t.Run("zero amount", func(t *testing.T) {
		out, err := v.Swap(&core.SwapInput{AmountRaw: new(big.Int), TokenIn: other, TokenOut: other}, evenPool(), nil)
		require.NoError(t, err)
		require.Zero(t, out.Sign())
	})
	t.Run("input token not found", func(t *testing.T) {
		_, err := v.Swap(&core.SwapInput{AmountRaw: wad(1), TokenIn: other, TokenOut: tokenB}, evenPool(), nil)
		require.ErrorIs(t, err, core.ErrInputTokenNotFound)
	})
	t.Run("output token not found", func(t *testing.T) {
		_, err := v.Swap(&core.SwapInput{AmountRaw: wad(1), TokenIn: tokenA, TokenOut: other}, evenPool(), nil)
		require.ErrorIs(t, err, core.ErrOutputTokenNotFound)
	})
	t.Run("trade below minimum", func(t *testing.T) {
		_, err := v.Swap(&core.SwapInput{AmountRaw: big.NewInt(1e6), TokenIn: tokenA, TokenOut: tokenB}, evenPool(), nil)
		require.ErrorIs(t, err, core.ErrTradeAmountTooSmall)
	})
	t.Run("mismatched arrays", func(t *testing.T) {
		s := evenPool()
		s.TokenRates = s.TokenRates[:1]
		_, err := v.Swap(&core.SwapInput{AmountRaw: wad(1), TokenIn: tokenA, TokenOut: tokenB}, s, nil)
		require.ErrorIs(t, err, core.ErrInvalidInput)
	})
	t.Run("negative balance", func(t *testing.T) {
		s := evenPool()
		s.BalancesLiveScaled18[0] = big.NewInt(-1)
		_, err := v.Swap(&core.SwapInput{AmountRaw: wad(1), TokenIn: tokenA, TokenOut: tokenB}, s, nil)
		require.ErrorIs(t, err, core.ErrInvalidInput)
		require.ErrorIs(t, err, core.ErrMathOverflow)
	})
}

func TestSwapChargesFeeOnBothKinds(t *testing.T) {
	v := newTestVault()
	noFee := evenPool()
	noFee.SwapFee = new(big.Int)

	in := &core.SwapInput{AmountRaw: wad(10), SwapKind: core.GivenIn, TokenIn: tokenA, TokenOut: tokenB}
	outWithFee, err := v.Swap(in, evenPool(), nil)
	require.NoError(t, err)
	outNoFee, err := v.Swap(in, noFee, nil)
	require.NoError(t, err)
	require.Negative(t, outWithFee.Cmp(outNoFee))

	out := &core.SwapInput{AmountRaw: wad(10), SwapKind: core.GivenOut, TokenIn: tokenA, TokenOut: tokenB}
	inWithFee, err := v.Swap(out, evenPool(), nil)
	require.NoError(t, err)
	inNoFee, err := v.Swap(out, noFee, nil)
	require.NoError(t, err)
	require.Positive(t, inWithFee.Cmp(inNoFee))

	// 10 out of an even 1000/1000 pool costs 1000*(1000/990 - 1) in, with
	// the ratio rounded up to 18 decimals.
	require.Equal(t, "10101010101010102000", inNoFee.String())
}

func TestSwapBuffer(t *testing.T) {
	wrapped := common.HexToAddress("0xbeef")
	underlying := common.HexToAddress("0xcafe")
	state := &core.BufferState{
		BasePoolState: core.BasePoolState{
			PoolAddress: wrapped,
			PoolType:    core.PoolTypeBuffer,
			Tokens:      []common.Address{wrapped, underlying},
		},
		Rate: big.NewInt(11e17),
	}
	out, err := newTestVault().Swap(&core.SwapInput{AmountRaw: big.NewInt(1000), SwapKind: core.GivenIn, TokenIn: underlying, TokenOut: wrapped}, state, nil)
	require.NoError(t, err)
	require.Equal(t, "909", out.String())

	_, err = newTestVault().AddLiquidity(&core.AddLiquidityInput{MaxAmountsInRaw: amounts(1, 1)}, state, nil)
	require.ErrorIs(t, err, core.ErrUnsupportedPoolType)
}

func TestAddLiquidity(t *testing.T) {
	v := newTestVault()

	t.Run("unbalanced proportional", func(t *testing.T) {
		res, err := v.AddLiquidity(&core.AddLiquidityInput{
			MaxAmountsInRaw: []*big.Int{wad(10), wad(10)},
			Kind:            core.AddUnbalanced,
		}, evenPool(), nil)
		require.NoError(t, err)
		require.Equal(t, []*big.Int{wad(10), wad(10)}, res.AmountsInRaw)
		require.LessOrEqual(t, res.BptAmountOutRaw.Cmp(wad(10)), 0)
		require.Positive(t, res.BptAmountOutRaw.Cmp(new(big.Int).Sub(wad(10), big.NewInt(1e12))))
	})

	t.Run("single token exact out", func(t *testing.T) {
		res, err := v.AddLiquidity(&core.AddLiquidityInput{
			MaxAmountsInRaw:    []*big.Int{new(big.Int), wad(100)},
			MinBptAmountOutRaw: wad(10),
			Kind:               core.AddSingleTokenExactOut,
		}, evenPool(), nil)
		require.NoError(t, err)
		require.Equal(t, wad(10), res.BptAmountOutRaw)
		require.Zero(t, res.AmountsInRaw[0].Sign())
		require.Positive(t, res.AmountsInRaw[1].Cmp(wad(20)))
	})

	t.Run("proportional only pool", func(t *testing.T) {
		s := evenPool()
		s.SupportsUnbalancedLiquidity = false
		_, err := v.AddLiquidity(&core.AddLiquidityInput{MaxAmountsInRaw: []*big.Int{wad(1), wad(1)}}, s, nil)
		require.ErrorIs(t, err, ErrDoesNotSupportUnbalancedLiquidity)
		require.ErrorIs(t, err, core.ErrInvalidLiquidityParameters)
	})

	t.Run("two inputs for single token", func(t *testing.T) {
		_, err := v.AddLiquidity(&core.AddLiquidityInput{
			MaxAmountsInRaw:    []*big.Int{wad(1), wad(1)},
			MinBptAmountOutRaw: wad(1),
			Kind:               core.AddSingleTokenExactOut,
		}, evenPool(), nil)
		require.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func TestRemoveLiquidity(t *testing.T) {
	v := newTestVault()

	t.Run("proportional", func(t *testing.T) {
		res, err := v.RemoveLiquidity(&core.RemoveLiquidityInput{
			MinAmountsOutRaw:  amounts(0, 0),
			MaxBptAmountInRaw: wad(10),
			Kind:              core.RemoveProportional,
		}, evenPool(), nil)
		require.NoError(t, err)
		require.Equal(t, []*big.Int{wad(10), wad(10)}, res.AmountsOutRaw)
	})

	t.Run("single token exact in", func(t *testing.T) {
		res, err := v.RemoveLiquidity(&core.RemoveLiquidityInput{
			MinAmountsOutRaw:  []*big.Int{big.NewInt(1), new(big.Int)},
			MaxBptAmountInRaw: wad(10),
			Kind:              core.RemoveSingleTokenExactIn,
		}, evenPool(), nil)
		require.NoError(t, err)
		require.Equal(t, wad(10), res.BptAmountInRaw)
		require.Negative(t, res.AmountsOutRaw[0].Cmp(wad(20)))
		require.Zero(t, res.AmountsOutRaw[1].Sign())
	})

	t.Run("single token exact out", func(t *testing.T) {
		res, err := v.RemoveLiquidity(&core.RemoveLiquidityInput{
			MinAmountsOutRaw:  []*big.Int{new(big.Int), wad(10)},
			MaxBptAmountInRaw: wad(100),
			Kind:              core.RemoveSingleTokenExactOut,
		}, evenPool(), nil)
		require.NoError(t, err)
		require.Zero(t, res.AmountsOutRaw[0].Sign())
		require.Equal(t, wad(10).String(), res.AmountsOutRaw[1].String())
		require.Positive(t, res.BptAmountInRaw.Cmp(wad(5)))
	})

	t.Run("invariant ratio below minimum", func(t *testing.T) {
		_, err := v.RemoveLiquidity(&core.RemoveLiquidityInput{
			MinAmountsOutRaw:  []*big.Int{wad(600), new(big.Int)},
			MaxBptAmountInRaw: wad(1000),
			Kind:              core.RemoveSingleTokenExactOut,
		}, evenPool(), nil)
		require.ErrorIs(t, err, core.ErrMathOverflow)
	})
}

func lbpPool(now uint64) *core.LiquidityBootstrappingState {
	return &core.LiquidityBootstrappingState{
		BasePoolState: core.BasePoolState{
			PoolType:                    core.PoolTypeLiquidityBootstrapping,
			Tokens:                      []common.Address{tokenA, tokenB},
			ScalingFactors:              amounts(1, 1),
			TokenRates:                  []*big.Int{wad(1), wad(1)},
			BalancesLiveScaled18:        []*big.Int{wad(1000), wad(1000)},
			SwapFee:                     big.NewInt(1e16),
			TotalSupply:                 wad(1000),
			SupportsUnbalancedLiquidity: true,
			HookType:                    hookType(core.HookTypeLiquidityBootstrapping),
		},
		IsSwapEnabled:     true,
		CurrentTimestamp:  now,
		ProjectTokenIndex: 0,
		StartWeights:      []*big.Int{big.NewInt(9e17), big.NewInt(1e17)},
		EndWeights:        []*big.Int{big.NewInt(1e17), big.NewInt(9e17)},
		StartTime:         0,
		EndTime:           1000,
	}
}

func TestLiquidityBootstrappingHookThroughVault(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	gate := func(sender common.Address, now uint64) *core.LiquidityBootstrappingHookState {
		return &core.LiquidityBootstrappingHookState{LbpOwner: owner, Sender: sender, EndTime: 1000, CurrentTimestamp: now}
	}
	remove := &core.RemoveLiquidityInput{MinAmountsOutRaw: amounts(0, 0), MaxBptAmountInRaw: wad(1), Kind: core.RemoveProportional}
	add := &core.AddLiquidityInput{MaxAmountsInRaw: []*big.Int{wad(1), wad(1)}, Kind: core.AddUnbalanced}
	v := newTestVault()

	_, err := v.RemoveLiquidity(remove, lbpPool(500), gate(owner, 500))
	require.ErrorIs(t, err, core.ErrBeforeRemoveLiquidityHookFailed)
	require.ErrorIs(t, err, hooks.ErrLbpNotEnded)

	_, err = v.RemoveLiquidity(remove, lbpPool(1000), gate(owner, 1000))
	require.NoError(t, err)

	_, err = v.AddLiquidity(add, lbpPool(500), gate(tokenA, 500))
	require.ErrorIs(t, err, core.ErrBeforeAddLiquidityHookFailed)
	require.ErrorIs(t, err, hooks.ErrNotLbpOwner)

	_, err = v.AddLiquidity(add, lbpPool(500), gate(owner, 500))
	require.NoError(t, err)
}

// shortAfterAdd returns fewer amounts than the pool has tokens.
type shortAfterAdd struct{ hooks.Default }

func (shortAfterAdd) Flags() hooks.Flags { return hooks.CallAfterAddLiquidity }

func (shortAfterAdd) OnAfterAddLiquidity(_ core.AddLiquidityKind, _, amountsInRaw []*big.Int, _ *big.Int, _ []*big.Int) ([]*big.Int, error) {
	return amountsInRaw[:1], nil
}

func TestAfterHookLengthMismatch(t *testing.T) {
	const custom core.HookType = "ShortAfterAdd"
	registry := hooks.NewRegistry()
	require.NoError(t, registry.Register(custom, func(core.HookState) (hooks.Hook, bool) {
		return shortAfterAdd{}, true
	}))

	s := evenPool()
	s.HookType = hookType(custom)
	v := New(WithHookRegistry(registry))
	_, err := v.AddLiquidity(&core.AddLiquidityInput{
		MaxAmountsInRaw: []*big.Int{wad(1), wad(1)},
		Kind:            core.AddUnbalanced,
	}, s, &core.DirectionalFeeHookState{})
	require.ErrorIs(t, err, core.ErrAfterAddLiquidityHookFailed)

	// The built-in registry does not know the type and falls back to the
	// pass-through hook.
	_, err = newTestVault().AddLiquidity(&core.AddLiquidityInput{
		MaxAmountsInRaw: []*big.Int{wad(1), wad(1)},
		Kind:            core.AddUnbalanced,
	}, s, &core.DirectionalFeeHookState{})
	require.NoError(t, err)
}

func TestCurveFor(t *testing.T) {
	_, err := curveFor(&core.BufferState{})
	require.ErrorIs(t, err, core.ErrUnsupportedPoolType)
	_, err = curveFor(nil)
	require.ErrorIs(t, err, core.ErrUnsupportedPoolType)

	c, err := curveFor(evenPool())
	require.NoError(t, err)
	require.Equal(t, big.NewInt(3e18), c.MaximumInvariantRatio())
}
