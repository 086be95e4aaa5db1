// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/balancer/core"
)

var (
	ErrUnknownPoolType = errors.New("unknown pool type")
	ErrUnknownHookType = errors.New("unknown hook type")
)

// amount is a non-fractional decimal. JSON strings and bare numbers are
// both accepted so that 256-bit values survive the trip.
type amount big.Int

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if _, ok := (*big.Int)(a).SetString(s, 10); !ok {
		return fmt.Errorf("%w: %q is not an integer", core.ErrInvalidInput, s)
	}
	return nil
}

func (a *amount) int() *big.Int {
	if a == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(a))
}

func ints(as []*amount) []*big.Int {
	if as == nil {
		return nil
	}
	out := make([]*big.Int, len(as))
	for i, a := range as {
		out[i] = a.int()
	}
	return out
}

type vector2Doc struct {
	X *amount `json:"x"`
	Y *amount `json:"y"`
}

func (v vector2Doc) vector() core.Vector2 { return core.Vector2{X: v.X.int(), Y: v.Y.int()} }

// poolDoc is the on-disk pool snapshot. Family specific fields are
// ignored by families that do not use them.
type poolDoc struct {
	PoolType                    core.PoolType    `json:"poolType"`
	PoolAddress                 common.Address   `json:"poolAddress"`
	Tokens                      []common.Address `json:"tokens"`
	ScalingFactors              []*amount        `json:"scalingFactors"`
	TokenRates                  []*amount        `json:"tokenRates"`
	BalancesLiveScaled18        []*amount        `json:"balancesLiveScaled18"`
	SwapFee                     *amount          `json:"swapFee"`
	AggregateSwapFee            *amount          `json:"aggregateSwapFee"`
	TotalSupply                 *amount          `json:"totalSupply"`
	SupportsUnbalancedLiquidity bool             `json:"supportsUnbalancedLiquidity"`
	HookType                    *core.HookType   `json:"hookType,omitempty"`

	// Weighted, LBP
	Weights      []*amount `json:"weights,omitempty"`
	StartWeights []*amount `json:"startWeights,omitempty"`
	EndWeights   []*amount `json:"endWeights,omitempty"`

	// Stable
	Amp *amount `json:"amp,omitempty"`

	// Gyro
	Params *struct {
		Alpha  *amount `json:"alpha"`
		Beta   *amount `json:"beta"`
		C      *amount `json:"c"`
		S      *amount `json:"s"`
		Lambda *amount `json:"lambda"`
	} `json:"params,omitempty"`
	Derived *struct {
		TauAlpha vector2Doc `json:"tauAlpha"`
		TauBeta  vector2Doc `json:"tauBeta"`
		U        *amount    `json:"u"`
		V        *amount    `json:"v"`
		W        *amount    `json:"w"`
		Z        *amount    `json:"z"`
		DSq      *amount    `json:"dSq"`
	} `json:"derived,omitempty"`
	SqrtAlpha *amount `json:"sqrtAlpha,omitempty"`
	SqrtBeta  *amount `json:"sqrtBeta,omitempty"`

	// ReClamm
	LastVirtualBalances       []*amount `json:"lastVirtualBalances,omitempty"`
	DailyPriceShiftBase       *amount   `json:"dailyPriceShiftBase,omitempty"`
	LastTimestamp             uint64    `json:"lastTimestamp,omitempty"`
	CenterednessMargin        *amount   `json:"centerednessMargin,omitempty"`
	StartFourthRootPriceRatio *amount   `json:"startFourthRootPriceRatio,omitempty"`
	EndFourthRootPriceRatio   *amount   `json:"endFourthRootPriceRatio,omitempty"`
	PriceRatioUpdateStartTime uint64    `json:"priceRatioUpdateStartTime,omitempty"`
	PriceRatioUpdateEndTime   uint64    `json:"priceRatioUpdateEndTime,omitempty"`

	// QuantAMM
	FirstFourWeightsAndMultipliers  []*amount `json:"firstFourWeightsAndMultipliers,omitempty"`
	SecondFourWeightsAndMultipliers []*amount `json:"secondFourWeightsAndMultipliers,omitempty"`
	LastUpdateTime                  uint64    `json:"lastUpdateTime,omitempty"`
	LastInteropTime                 uint64    `json:"lastInteropTime,omitempty"`
	MaxTradeSizeRatio               *amount   `json:"maxTradeSizeRatio,omitempty"`

	// LBP
	IsSwapEnabled               bool   `json:"isSwapEnabled,omitempty"`
	ProjectTokenIndex           int    `json:"projectTokenIndex,omitempty"`
	IsProjectTokenSwapInBlocked bool   `json:"isProjectTokenSwapInBlocked,omitempty"`
	StartTime                   uint64 `json:"startTime,omitempty"`
	EndTime                     uint64 `json:"endTime,omitempty"`

	// Shared clock for time dependent families
	CurrentTimestamp uint64 `json:"currentTimestamp,omitempty"`

	// Buffer
	Rate       *amount `json:"rate,omitempty"`
	MaxDeposit *amount `json:"maxDeposit,omitempty"`
	MaxMint    *amount `json:"maxMint,omitempty"`
}

func (d *poolDoc) base() core.BasePoolState {
	return core.BasePoolState{
		PoolAddress:                 d.PoolAddress,
		PoolType:                    d.PoolType,
		Tokens:                      d.Tokens,
		ScalingFactors:              ints(d.ScalingFactors),
		TokenRates:                  ints(d.TokenRates),
		BalancesLiveScaled18:        ints(d.BalancesLiveScaled18),
		SwapFee:                     d.SwapFee.int(),
		AggregateSwapFee:            d.AggregateSwapFee.int(),
		TotalSupply:                 d.TotalSupply.int(),
		SupportsUnbalancedLiquidity: d.SupportsUnbalancedLiquidity,
		HookType:                    d.HookType,
	}
}

func (d *poolDoc) reclamm() core.ReClammParams {
	return core.ReClammParams{
		LastVirtualBalances:       ints(d.LastVirtualBalances),
		DailyPriceShiftBase:       d.DailyPriceShiftBase.int(),
		LastTimestamp:             d.LastTimestamp,
		CurrentTimestamp:          d.CurrentTimestamp,
		CenterednessMargin:        d.CenterednessMargin.int(),
		StartFourthRootPriceRatio: d.StartFourthRootPriceRatio.int(),
		EndFourthRootPriceRatio:   d.EndFourthRootPriceRatio.int(),
		PriceRatioUpdateStartTime: d.PriceRatioUpdateStartTime,
		PriceRatioUpdateEndTime:   d.PriceRatioUpdateEndTime,
	}
}

// state converts the document into the snapshot variant its pool type
// names.
func (d *poolDoc) state() (core.PoolState, error) {
	switch d.PoolType {
	case core.PoolTypeWeighted:
		return &core.WeightedState{BasePoolState: d.base(), Weights: ints(d.Weights)}, nil
	case core.PoolTypeStable:
		return &core.StableState{BasePoolState: d.base(), Amp: d.Amp.int()}, nil
	case core.PoolTypeGyroECLP:
		if d.Params == nil || d.Derived == nil {
			return nil, fmt.Errorf("%w: GYROE pool needs params and derived", core.ErrInvalidInput)
		}
		return &core.GyroECLPState{
			BasePoolState: d.base(),
			Params: core.GyroECLPParams{
				Alpha:  d.Params.Alpha.int(),
				Beta:   d.Params.Beta.int(),
				C:      d.Params.C.int(),
				S:      d.Params.S.int(),
				Lambda: d.Params.Lambda.int(),
			},
			Derived: core.GyroECLPDerived{
				TauAlpha: d.Derived.TauAlpha.vector(),
				TauBeta:  d.Derived.TauBeta.vector(),
				U:        d.Derived.U.int(),
				V:        d.Derived.V.int(),
				W:        d.Derived.W.int(),
				Z:        d.Derived.Z.int(),
				DSq:      d.Derived.DSq.int(),
			},
		}, nil
	case core.PoolTypeGyro2CLP:
		return &core.Gyro2CLPState{BasePoolState: d.base(), SqrtAlpha: d.SqrtAlpha.int(), SqrtBeta: d.SqrtBeta.int()}, nil
	case core.PoolTypeReClamm:
		return &core.ReClammState{BasePoolState: d.base(), ReClammParams: d.reclamm()}, nil
	case core.PoolTypeReClammV2:
		return &core.ReClammV2State{BasePoolState: d.base(), ReClammParams: d.reclamm()}, nil
	case core.PoolTypeQuantAmm:
		return &core.QuantAmmState{
			BasePoolState:                   d.base(),
			FirstFourWeightsAndMultipliers:  ints(d.FirstFourWeightsAndMultipliers),
			SecondFourWeightsAndMultipliers: ints(d.SecondFourWeightsAndMultipliers),
			LastUpdateTime:                  d.LastUpdateTime,
			LastInteropTime:                 d.LastInteropTime,
			CurrentTimestamp:                d.CurrentTimestamp,
			MaxTradeSizeRatio:               d.MaxTradeSizeRatio.int(),
		}, nil
	case core.PoolTypeLiquidityBootstrapping:
		return &core.LiquidityBootstrappingState{
			BasePoolState:               d.base(),
			IsSwapEnabled:               d.IsSwapEnabled,
			CurrentTimestamp:            d.CurrentTimestamp,
			ProjectTokenIndex:           d.ProjectTokenIndex,
			IsProjectTokenSwapInBlocked: d.IsProjectTokenSwapInBlocked,
			StartWeights:                ints(d.StartWeights),
			EndWeights:                  ints(d.EndWeights),
			StartTime:                   d.StartTime,
			EndTime:                     d.EndTime,
		}, nil
	case core.PoolTypeBuffer:
		return &core.BufferState{
			BasePoolState: d.base(),
			Rate:          d.Rate.int(),
			MaxDeposit:    d.MaxDeposit.int(),
			MaxMint:       d.MaxMint.int(),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPoolType, d.PoolType)
	}
}

// hookDoc is the on-disk hook snapshot.
type hookDoc struct {
	HookType core.HookType `json:"hookType"`

	Tokens                           []common.Address `json:"tokens,omitempty"`
	RemoveLiquidityHookFeePercentage *amount          `json:"removeLiquidityHookFeePercentage,omitempty"`

	Amp                      *amount `json:"amp,omitempty"`
	SurgeThresholdPercentage *amount `json:"surgeThresholdPercentage,omitempty"`
	MaxSurgeFeePercentage    *amount `json:"maxSurgeFeePercentage,omitempty"`

	Weights                  []*amount `json:"weights,omitempty"`
	MinimumSwapFeePercentage *amount   `json:"minimumSwapFeePercentage,omitempty"`

	LbpOwner         common.Address `json:"lbpOwner,omitempty"`
	Sender           common.Address `json:"sender,omitempty"`
	EndTime          uint64         `json:"endTime,omitempty"`
	CurrentTimestamp uint64         `json:"currentTimestamp,omitempty"`
}

func (d *hookDoc) state() (core.HookState, error) {
	switch d.HookType {
	case core.HookTypeExitFee:
		return &core.ExitFeeHookState{
			Tokens:                           d.Tokens,
			RemoveLiquidityHookFeePercentage: d.RemoveLiquidityHookFeePercentage.int(),
		}, nil
	case core.HookTypeStableSurge:
		return &core.StableSurgeHookState{
			Amp:                      d.Amp.int(),
			SurgeThresholdPercentage: d.SurgeThresholdPercentage.int(),
			MaxSurgeFeePercentage:    d.MaxSurgeFeePercentage.int(),
		}, nil
	case core.HookTypeDirectionalFee:
		return &core.DirectionalFeeHookState{}, nil
	case core.HookTypeAkron:
		return &core.AkronHookState{
			Weights:                  ints(d.Weights),
			MinimumSwapFeePercentage: d.MinimumSwapFeePercentage.int(),
		}, nil
	case core.HookTypeLiquidityBootstrapping:
		return &core.LiquidityBootstrappingHookState{
			LbpOwner:         d.LbpOwner,
			Sender:           d.Sender,
			EndTime:          d.EndTime,
			CurrentTimestamp: d.CurrentTimestamp,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHookType, d.HookType)
	}
}

// loadPool reads, validates and decodes a pool snapshot file.
func loadPool(path string) (core.PoolState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validatePool(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var doc poolDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.state()
}

// loadHook reads a hook snapshot file. An empty path means no hook.
func loadHook(path string) (core.HookState, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateHook(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var doc hookDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.state()
}
