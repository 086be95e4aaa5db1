// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import "strings"

// Flags is the bitmap of callbacks a hook wants the vault to invoke.
type Flags uint16

const (
	CallComputeDynamicSwapFee Flags = 1 << iota
	CallBeforeSwap
	CallAfterSwap
	CallBeforeAddLiquidity
	CallAfterAddLiquidity
	CallBeforeRemoveLiquidity
	CallAfterRemoveLiquidity
	// EnableHookAdjustedAmounts lets after-callbacks replace the raw
	// amounts returned to the caller.
	EnableHookAdjustedAmounts
)

var flagNames = []string{
	"ComputeDynamicSwapFee",
	"BeforeSwap",
	"AfterSwap",
	"BeforeAddLiquidity",
	"AfterAddLiquidity",
	"BeforeRemoveLiquidity",
	"AfterRemoveLiquidity",
	"HookAdjustedAmounts",
}

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

func (fl Flags) String() string {
	if fl == 0 {
		return "none"
	}
	var names []string
	for i, name := range flagNames {
		if fl&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// Permissions is the expanded, field-per-callback form of Flags.
type Permissions struct {
	ComputeDynamicSwapFee     bool
	BeforeSwap                bool
	AfterSwap                 bool
	BeforeAddLiquidity        bool
	AfterAddLiquidity         bool
	BeforeRemoveLiquidity     bool
	AfterRemoveLiquidity      bool
	EnableHookAdjustedAmounts bool
}

// EncodePermissions packs p into a Flags bitmap.
func EncodePermissions(p Permissions) Flags {
	var flags Flags

	if p.ComputeDynamicSwapFee {
		flags |= CallComputeDynamicSwapFee
	}
	if p.BeforeSwap {
		flags |= CallBeforeSwap
	}
	if p.AfterSwap {
		flags |= CallAfterSwap
	}
	if p.BeforeAddLiquidity {
		flags |= CallBeforeAddLiquidity
	}
	if p.AfterAddLiquidity {
		flags |= CallAfterAddLiquidity
	}
	if p.BeforeRemoveLiquidity {
		flags |= CallBeforeRemoveLiquidity
	}
	if p.AfterRemoveLiquidity {
		flags |= CallAfterRemoveLiquidity
	}
	if p.EnableHookAdjustedAmounts {
		flags |= EnableHookAdjustedAmounts
	}

	return flags
}

// DecodePermissions expands a Flags bitmap.
func DecodePermissions(flags Flags) Permissions {
	return Permissions{
		ComputeDynamicSwapFee:     flags&CallComputeDynamicSwapFee != 0,
		BeforeSwap:                flags&CallBeforeSwap != 0,
		AfterSwap:                 flags&CallAfterSwap != 0,
		BeforeAddLiquidity:        flags&CallBeforeAddLiquidity != 0,
		AfterAddLiquidity:         flags&CallAfterAddLiquidity != 0,
		BeforeRemoveLiquidity:     flags&CallBeforeRemoveLiquidity != 0,
		AfterRemoveLiquidity:      flags&CallAfterRemoveLiquidity != 0,
		EnableHookAdjustedAmounts: flags&EnableHookAdjustedAmounts != 0,
	}
}
