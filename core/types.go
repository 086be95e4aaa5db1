// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package core holds the data model shared by the Balancer v3 curve
// families, the hook pipeline and the vault: operation kinds, pool and
// hook state snapshots, request and result shapes, the Curve contract
// and the flat error taxonomy.
package core

import (
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// SwapKind selects which side of a swap the caller fixes.
type SwapKind uint8

const (
	GivenIn SwapKind = iota
	GivenOut
)

func (k SwapKind) String() string {
	switch k {
	case GivenIn:
		return "GivenIn"
	case GivenOut:
		return "GivenOut"
	default:
		return "Unknown"
	}
}

// Rounding is the direction an inexact result is pushed.
type Rounding uint8

const (
	RoundDown Rounding = iota
	RoundUp
)

func (r Rounding) String() string {
	if r == RoundUp {
		return "RoundUp"
	}
	return "RoundDown"
}

// AddLiquidityKind enumerates supported add-liquidity modes.
type AddLiquidityKind uint8

const (
	AddUnbalanced AddLiquidityKind = iota
	AddSingleTokenExactOut
)

func (k AddLiquidityKind) String() string {
	switch k {
	case AddUnbalanced:
		return "Unbalanced"
	case AddSingleTokenExactOut:
		return "SingleTokenExactOut"
	default:
		return "Unknown"
	}
}

// RemoveLiquidityKind enumerates supported remove-liquidity modes.
type RemoveLiquidityKind uint8

const (
	RemoveProportional RemoveLiquidityKind = iota
	RemoveSingleTokenExactIn
	RemoveSingleTokenExactOut
)

func (k RemoveLiquidityKind) String() string {
	switch k {
	case RemoveProportional:
		return "Proportional"
	case RemoveSingleTokenExactIn:
		return "SingleTokenExactIn"
	case RemoveSingleTokenExactOut:
		return "SingleTokenExactOut"
	default:
		return "Unknown"
	}
}

// PoolType tags a pool snapshot with its curve family.
type PoolType string

const (
	PoolTypeWeighted               PoolType = "WEIGHTED"
	PoolTypeStable                 PoolType = "STABLE"
	PoolTypeGyroECLP               PoolType = "GYROE"
	PoolTypeGyro2CLP               PoolType = "GYRO"
	PoolTypeReClamm                PoolType = "RECLAMM"
	PoolTypeReClammV2              PoolType = "RECLAMM_V2"
	PoolTypeQuantAmm               PoolType = "QUANT_AMM_WEIGHTED"
	PoolTypeLiquidityBootstrapping PoolType = "LIQUIDITY_BOOTSTRAPPING"
	PoolTypeBuffer                 PoolType = "BUFFER"
)

// HookType tags the hook attached to a pool.
type HookType string

const (
	HookTypeExitFee                HookType = "ExitFee"
	HookTypeStableSurge            HookType = "StableSurge"
	HookTypeDirectionalFee         HookType = "DirectionalFee"
	HookTypeAkron                  HookType = "Akron"
	HookTypeLiquidityBootstrapping HookType = "LiquidityBootstrapping"
)

// BasePoolState is the family-independent part of a pool snapshot.
// Balances are live balances already scaled to 18 decimals and
// multiplied by the token rate.
type BasePoolState struct {
	PoolAddress                 common.Address
	PoolType                    PoolType
	Tokens                      []common.Address
	ScalingFactors              []*big.Int
	TokenRates                  []*big.Int
	BalancesLiveScaled18        []*big.Int
	SwapFee                     *big.Int
	AggregateSwapFee            *big.Int
	TotalSupply                 *big.Int
	SupportsUnbalancedLiquidity bool
	HookType                    *HookType
}

// ID returns a stable fingerprint of the pool identity (address, type
// and token list), used to tag log lines.
func (s *BasePoolState) ID() common.Hash {
	h := blake3.New()
	h.Write(s.PoolAddress.Bytes())
	h.Write([]byte(s.PoolType))
	for _, t := range s.Tokens {
		h.Write(t.Bytes())
	}

	var id common.Hash
	h.Digest().Read(id[:])
	return id
}

// TokenIndex returns the position of token in the pool, or -1.
func (s *BasePoolState) TokenIndex(token common.Address) int {
	for i, t := range s.Tokens {
		if t == token {
			return i
		}
	}
	return -1
}

// SwapInput is a raw (unscaled) swap request.
type SwapInput struct {
	AmountRaw *big.Int
	SwapKind  SwapKind
	TokenIn   common.Address
	TokenOut  common.Address
}

// SwapParams is what a curve sees for a single swap, in scaled18 units.
type SwapParams struct {
	SwapKind             SwapKind
	AmountGivenScaled18  *big.Int
	BalancesLiveScaled18 []*big.Int
	IndexIn              int
	IndexOut             int
}

// AddLiquidityInput is a raw add-liquidity request.
type AddLiquidityInput struct {
	Pool               common.Address
	MaxAmountsInRaw    []*big.Int
	MinBptAmountOutRaw *big.Int
	Kind               AddLiquidityKind
}

// AddLiquidityResult reports the bpt minted and raw amounts pulled in.
type AddLiquidityResult struct {
	BptAmountOutRaw *big.Int
	AmountsInRaw    []*big.Int
}

// RemoveLiquidityInput is a raw remove-liquidity request.
type RemoveLiquidityInput struct {
	Pool              common.Address
	MinAmountsOutRaw  []*big.Int
	MaxBptAmountInRaw *big.Int
	Kind              RemoveLiquidityKind
}

// RemoveLiquidityResult reports the bpt burned and raw amounts paid out.
type RemoveLiquidityResult struct {
	BptAmountInRaw *big.Int
	AmountsOutRaw  []*big.Int
}

// Curve is the contract every pool family exposes to the vault.
type Curve interface {
	OnSwap(params *SwapParams) (*big.Int, error)
	ComputeInvariant(balancesLiveScaled18 []*big.Int, rounding Rounding) (*big.Int, error)
	ComputeBalance(balancesLiveScaled18 []*big.Int, tokenInIndex int, invariantRatio *big.Int) (*big.Int, error)
	MinimumInvariantRatio() *big.Int
	MaximumInvariantRatio() *big.Int
}

// CopyAmounts returns a deep copy of xs.
func CopyAmounts(xs []*big.Int) []*big.Int {
	out := make([]*big.Int, len(xs))
	for i, x := range xs {
		if x == nil {
			out[i] = new(big.Int)
			continue
		}
		out[i] = new(big.Int).Set(x)
	}
	return out
}
