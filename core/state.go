// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// PoolState is a complete pool snapshot. The set of implementations is
// closed: only the variants declared in this package satisfy it.
type PoolState interface {
	Base() *BasePoolState
	isPoolState()
}

// WeightedState is a weighted pool snapshot.
type WeightedState struct {
	BasePoolState
	Weights []*big.Int
}

// StableState is a stable pool snapshot. Amp carries AmpPrecision.
type StableState struct {
	BasePoolState
	Amp *big.Int
}

// Vector2 is a signed pair used by the Gyro ECLP parameterisation.
type Vector2 struct {
	X *big.Int
	Y *big.Int
}

// GyroECLPParams are the 18-decimal ellipse parameters.
type GyroECLPParams struct {
	Alpha  *big.Int
	Beta   *big.Int
	C      *big.Int
	S      *big.Int
	Lambda *big.Int
}

// GyroECLPDerived are the 38-decimal precomputed ellipse parameters.
type GyroECLPDerived struct {
	TauAlpha Vector2
	TauBeta  Vector2
	U        *big.Int
	V        *big.Int
	W        *big.Int
	Z        *big.Int
	DSq      *big.Int
}

// GyroECLPState is an elliptic concentrated liquidity pool snapshot.
type GyroECLPState struct {
	BasePoolState
	Params  GyroECLPParams
	Derived GyroECLPDerived
}

// Gyro2CLPState is a two-token concentrated liquidity pool snapshot.
type Gyro2CLPState struct {
	BasePoolState
	SqrtAlpha *big.Int
	SqrtBeta  *big.Int
}

// ReClammParams is the time-dependent range configuration shared by
// both ReClamm generations.
type ReClammParams struct {
	LastVirtualBalances       []*big.Int
	DailyPriceShiftBase       *big.Int
	LastTimestamp             uint64
	CurrentTimestamp          uint64
	CenterednessMargin        *big.Int
	StartFourthRootPriceRatio *big.Int
	EndFourthRootPriceRatio   *big.Int
	PriceRatioUpdateStartTime uint64
	PriceRatioUpdateEndTime   uint64
}

// ReClammState is a readjusting concentrated liquidity pool snapshot.
type ReClammState struct {
	BasePoolState
	ReClammParams
}

// ReClammV2State is the second-generation ReClamm snapshot.
type ReClammV2State struct {
	BasePoolState
	ReClammParams
}

// QuantAmmState is a QuantAMM snapshot. Weights and per-second
// multipliers are packed: the first array holds up to four weights
// followed by their multipliers, the second holds tokens five to eight
// in the same layout.
type QuantAmmState struct {
	BasePoolState
	FirstFourWeightsAndMultipliers  []*big.Int
	SecondFourWeightsAndMultipliers []*big.Int
	LastUpdateTime                  uint64
	LastInteropTime                 uint64
	CurrentTimestamp                uint64
	MaxTradeSizeRatio               *big.Int
}

// LiquidityBootstrappingState is a two-token LBP snapshot.
type LiquidityBootstrappingState struct {
	BasePoolState
	IsSwapEnabled               bool
	CurrentTimestamp            uint64
	ProjectTokenIndex           int
	IsProjectTokenSwapInBlocked bool
	StartWeights                []*big.Int
	EndWeights                  []*big.Int
	StartTime                   uint64
	EndTime                     uint64
}

// BufferState is an ERC-4626 buffer snapshot. A nil MaxDeposit or
// MaxMint means unlimited.
type BufferState struct {
	BasePoolState
	Rate       *big.Int
	MaxDeposit *big.Int
	MaxMint    *big.Int
}

func (s *WeightedState) Base() *BasePoolState               { return &s.BasePoolState }
func (s *StableState) Base() *BasePoolState                 { return &s.BasePoolState }
func (s *GyroECLPState) Base() *BasePoolState               { return &s.BasePoolState }
func (s *Gyro2CLPState) Base() *BasePoolState               { return &s.BasePoolState }
func (s *ReClammState) Base() *BasePoolState                { return &s.BasePoolState }
func (s *ReClammV2State) Base() *BasePoolState              { return &s.BasePoolState }
func (s *QuantAmmState) Base() *BasePoolState               { return &s.BasePoolState }
func (s *LiquidityBootstrappingState) Base() *BasePoolState { return &s.BasePoolState }
func (s *BufferState) Base() *BasePoolState                 { return &s.BasePoolState }

func (*WeightedState) isPoolState()               {}
func (*StableState) isPoolState()                 {}
func (*GyroECLPState) isPoolState()               {}
func (*Gyro2CLPState) isPoolState()               {}
func (*ReClammState) isPoolState()                {}
func (*ReClammV2State) isPoolState()              {}
func (*QuantAmmState) isPoolState()               {}
func (*LiquidityBootstrappingState) isPoolState() {}
func (*BufferState) isPoolState()                 {}

// HookState is the snapshot a hook policy reads. Closed set.
type HookState interface {
	HookType() HookType
	isHookState()
}

// ExitFeeHookState charges a percentage on proportional exits.
type ExitFeeHookState struct {
	Tokens                           []common.Address
	RemoveLiquidityHookFeePercentage *big.Int
}

// StableSurgeHookState raises the swap fee when a swap pushes a stable
// pool further out of balance.
type StableSurgeHookState struct {
	Amp                      *big.Int
	SurgeThresholdPercentage *big.Int
	MaxSurgeFeePercentage    *big.Int
}

// DirectionalFeeHookState has no parameters.
type DirectionalFeeHookState struct{}

// AkronHookState carries the pool weights used for the LVR fee.
type AkronHookState struct {
	Weights                  []*big.Int
	MinimumSwapFeePercentage *big.Int
}

// LiquidityBootstrappingHookState gates liquidity changes on an LBP.
type LiquidityBootstrappingHookState struct {
	LbpOwner         common.Address
	Sender           common.Address
	EndTime          uint64
	CurrentTimestamp uint64
}

func (*ExitFeeHookState) HookType() HookType        { return HookTypeExitFee }
func (*StableSurgeHookState) HookType() HookType    { return HookTypeStableSurge }
func (*DirectionalFeeHookState) HookType() HookType { return HookTypeDirectionalFee }
func (*AkronHookState) HookType() HookType          { return HookTypeAkron }
func (*LiquidityBootstrappingHookState) HookType() HookType {
	return HookTypeLiquidityBootstrapping
}

func (*ExitFeeHookState) isHookState()                {}
func (*StableSurgeHookState) isHookState()            {}
func (*DirectionalFeeHookState) isHookState()         {}
func (*AkronHookState) isHookState()                  {}
func (*LiquidityBootstrappingHookState) isHookState() {}
