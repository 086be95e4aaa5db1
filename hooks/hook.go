// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hooks implements the callback pipeline the vault runs around
// every swap and liquidity operation. A Hook is bound to its state
// snapshot when it is resolved; the vault consults Flags to decide which
// callbacks to invoke and treats any returned error as a veto.
package hooks

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/luxfi/balancer/core"
)

// TypeDefault tags the pass-through hook.
const TypeDefault core.HookType = "Default"

// Hook errors
var (
	ErrHookAlreadyRegistered = errors.New("hook type already registered")
	ErrNotProportional       = fmt.Errorf("%w: only proportional removal is supported", core.ErrHook)
	ErrSurging               = fmt.Errorf("%w: operation pushes pool imbalance past the surge threshold", core.ErrHook)
	ErrNotLbpOwner           = fmt.Errorf("%w: liquidity adder is not the lbp owner", core.ErrHook)
	ErrLbpNotEnded           = fmt.Errorf("%w: lbp has not ended yet", core.ErrHook)
)

// AfterSwapParams is what the after-swap callback observes. Balances are
// post-trade.
type AfterSwapParams struct {
	Kind                     core.SwapKind
	IndexIn                  int
	IndexOut                 int
	AmountInScaled18         *big.Int
	AmountOutScaled18        *big.Int
	TokenInBalanceScaled18   *big.Int
	TokenOutBalanceScaled18  *big.Int
	AmountCalculatedScaled18 *big.Int
	AmountCalculatedRaw      *big.Int
}

// Hook is a pool's interception policy. Before-callbacks return the
// (possibly adjusted) live balances; after-callbacks return the
// (possibly adjusted) raw amounts; the dynamic fee callback returns the
// fee to charge. A non-nil error vetoes the operation.
type Hook interface {
	Type() core.HookType
	Flags() Flags

	OnBeforeSwap(params *core.SwapParams) ([]*big.Int, error)
	OnAfterSwap(params *AfterSwapParams) (*big.Int, error)
	OnComputeDynamicSwapFee(params *core.SwapParams, staticSwapFee *big.Int) (*big.Int, error)

	OnBeforeAddLiquidity(kind core.AddLiquidityKind, maxAmountsInScaled18 []*big.Int, minBptAmountOut *big.Int, balancesScaled18 []*big.Int) ([]*big.Int, error)
	OnAfterAddLiquidity(kind core.AddLiquidityKind, amountsInScaled18, amountsInRaw []*big.Int, bptAmountOut *big.Int, balancesScaled18 []*big.Int) ([]*big.Int, error)

	OnBeforeRemoveLiquidity(kind core.RemoveLiquidityKind, maxBptAmountIn *big.Int, minAmountsOutScaled18, balancesScaled18 []*big.Int) ([]*big.Int, error)
	OnAfterRemoveLiquidity(kind core.RemoveLiquidityKind, bptAmountIn *big.Int, amountsOutScaled18, amountsOutRaw, balancesScaled18 []*big.Int) ([]*big.Int, error)
}

// Default passes every value through unchanged and requests no
// callbacks. Policies embed it and override what they need.
type Default struct{}

var _ Hook = Default{}

func (Default) Type() core.HookType { return TypeDefault }
func (Default) Flags() Flags        { return 0 }

func (Default) OnBeforeSwap(params *core.SwapParams) ([]*big.Int, error) {
	return core.CopyAmounts(params.BalancesLiveScaled18), nil
}

func (Default) OnAfterSwap(params *AfterSwapParams) (*big.Int, error) {
	return new(big.Int).Set(params.AmountCalculatedRaw), nil
}

func (Default) OnComputeDynamicSwapFee(_ *core.SwapParams, staticSwapFee *big.Int) (*big.Int, error) {
	return new(big.Int).Set(staticSwapFee), nil
}

func (Default) OnBeforeAddLiquidity(_ core.AddLiquidityKind, _ []*big.Int, _ *big.Int, balancesScaled18 []*big.Int) ([]*big.Int, error) {
	return core.CopyAmounts(balancesScaled18), nil
}

func (Default) OnAfterAddLiquidity(_ core.AddLiquidityKind, _, amountsInRaw []*big.Int, _ *big.Int, _ []*big.Int) ([]*big.Int, error) {
	return core.CopyAmounts(amountsInRaw), nil
}

func (Default) OnBeforeRemoveLiquidity(_ core.RemoveLiquidityKind, _ *big.Int, _, balancesScaled18 []*big.Int) ([]*big.Int, error) {
	return core.CopyAmounts(balancesScaled18), nil
}

func (Default) OnAfterRemoveLiquidity(_ core.RemoveLiquidityKind, _ *big.Int, _, amountsOutRaw, _ []*big.Int) ([]*big.Int, error) {
	return core.CopyAmounts(amountsOutRaw), nil
}

// Factory binds a policy to a state snapshot. It reports false when
// the snapshot is not the variant the policy expects.
type Factory func(state core.HookState) (Hook, bool)

// Registry maps hook type tags to the policies that implement them.
type Registry struct {
	mu        sync.RWMutex
	factories map[core.HookType]Factory
}

// NewRegistry returns a registry holding the built-in policies.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[core.HookType]Factory)}
	r.factories[core.HookTypeExitFee] = func(s core.HookState) (Hook, bool) {
		st, ok := s.(*core.ExitFeeHookState)
		return NewExitFee(st), ok && st != nil
	}
	r.factories[core.HookTypeStableSurge] = func(s core.HookState) (Hook, bool) {
		st, ok := s.(*core.StableSurgeHookState)
		return NewStableSurge(st), ok && st != nil
	}
	r.factories[core.HookTypeDirectionalFee] = func(s core.HookState) (Hook, bool) {
		_, ok := s.(*core.DirectionalFeeHookState)
		return DirectionalFee{}, ok
	}
	r.factories[core.HookTypeAkron] = func(s core.HookState) (Hook, bool) {
		st, ok := s.(*core.AkronHookState)
		return NewAkron(st), ok && st != nil
	}
	r.factories[core.HookTypeLiquidityBootstrapping] = func(s core.HookState) (Hook, bool) {
		st, ok := s.(*core.LiquidityBootstrappingHookState)
		return NewLiquidityBootstrapping(st), ok && st != nil
	}
	return r
}

// Register adds a policy for hookType.
func (r *Registry) Register(hookType core.HookType, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[hookType]; exists {
		return fmt.Errorf("%w: %s", ErrHookAlreadyRegistered, hookType)
	}
	r.factories[hookType] = f
	return nil
}

// Lookup binds the policy registered for hookType to state, failing
// when the type is unknown or the state is missing or of another
// variant.
func (r *Registry) Lookup(hookType core.HookType, state core.HookState) (Hook, error) {
	r.mu.RLock()
	f, ok := r.factories[hookType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedHookType, hookType)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNoStateForHook, hookType)
	}
	h, ok := f(state)
	if !ok {
		return nil, fmt.Errorf("%w: %s got %s state", core.ErrNoStateForHook, hookType, state.HookType())
	}
	return h, nil
}

// Resolve is Lookup with the pass-through hook substituted for every
// failure, including a pool that declares no hook.
func (r *Registry) Resolve(hookType *core.HookType, state core.HookState) Hook {
	if hookType == nil {
		return Default{}
	}
	h, err := r.Lookup(*hookType, state)
	if err != nil {
		return Default{}
	}
	return h
}

var builtin = NewRegistry()

// Resolve resolves against the built-in policies.
func Resolve(hookType *core.HookType, state core.HookState) Hook {
	return builtin.Resolve(hookType, state)
}
