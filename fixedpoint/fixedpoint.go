// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fixedpoint implements 18-decimal (WAD) fixed point arithmetic
// with the exact rounding behaviour of the Balancer v3 on-chain math
// libraries. All values are *big.Int; products and quotients are range
// checked against 256 bits and report core.ErrMathOverflow instead of
// wrapping.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/luxfi/balancer/core"
)

// MaxPowRelativeError bounds the relative error of Pow (1e-14).
const MaxPowRelativeError = 10000

var (
	Zero       = big.NewInt(0)
	One        = big.NewInt(1)
	Two        = big.NewInt(2)
	WAD        = big.NewInt(1e18)
	TwoWAD     = big.NewInt(2e18)
	FourWAD    = big.NewInt(4e18)
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	maxPowRelativeError = big.NewInt(MaxPowRelativeError)
)

// MustParse parses a base-10 literal. It panics on malformed input and
// is meant for package-level constant tables.
func MustParse(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Sprintf("fixedpoint: bad literal %q", s))
	}
	return v
}

// ToUint256 converts x to a uint256, failing when x is negative or does
// not fit in 256 bits.
func ToUint256(x *big.Int) (*uint256.Int, error) {
	if x == nil {
		return new(uint256.Int), nil
	}
	if x.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s", core.ErrMathOverflow, x)
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds 256 bits", core.ErrMathOverflow, x)
	}
	return v, nil
}

// checked rejects magnitudes that do not fit in a 256-bit word.
func checked(x *big.Int) (*big.Int, error) {
	if _, overflow := uint256.FromBig(new(big.Int).Abs(x)); overflow {
		return nil, core.ErrMathOverflow
	}
	return x, nil
}

func mul(a, b *big.Int) (*big.Int, error) {
	return checked(new(big.Int).Mul(a, b))
}

// MulDown returns a*b/WAD rounded toward zero.
func MulDown(a, b *big.Int) (*big.Int, error) {
	p, err := mul(a, b)
	if err != nil {
		return nil, err
	}
	return p.Quo(p, WAD), nil
}

// MulUp returns a*b/WAD rounded up. A zero product yields zero.
func MulUp(a, b *big.Int) (*big.Int, error) {
	p, err := mul(a, b)
	if err != nil {
		return nil, err
	}
	if p.Sign() == 0 {
		return p, nil
	}
	p.Sub(p, One).Quo(p, WAD)
	return p.Add(p, One), nil
}

// DivDown returns a*WAD/b rounded toward zero.
func DivDown(a, b *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	if b.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", core.ErrMathOverflow)
	}
	p, err := mul(a, WAD)
	if err != nil {
		return nil, err
	}
	return p.Quo(p, b), nil
}

// DivUp returns a*WAD/b rounded up.
func DivUp(a, b *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	if b.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", core.ErrMathOverflow)
	}
	p, err := mul(a, WAD)
	if err != nil {
		return nil, err
	}
	p.Sub(p, One).Quo(p, b)
	return p.Add(p, One), nil
}

// DivUpRaw returns ceil(a/b) on plain integers. A zero dividend or
// divisor yields zero.
func DivUpRaw(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Sub(a, One)
	r.Quo(r, b)
	return r.Add(r, One)
}

// MulDivUp returns ceil(a*b/c). A zero product yields zero.
func MulDivUp(a, b, c *big.Int) (*big.Int, error) {
	if c.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", core.ErrMathOverflow)
	}
	p, err := mul(a, b)
	if err != nil {
		return nil, err
	}
	if p.Sign() == 0 {
		return p, nil
	}
	p.Sub(p, One).Quo(p, c)
	return p.Add(p, One), nil
}

// Complement returns 1 - x, saturating at zero.
func Complement(x *big.Int) *big.Int {
	if x.Cmp(WAD) < 0 {
		return new(big.Int).Sub(WAD, x)
	}
	return new(big.Int)
}

// PowDown computes x^y rounded down.
func PowDown(x, y *big.Int) (*big.Int, error) {
	return PowDownVersion(x, y, 0)
}

// PowUp computes x^y rounded up.
func PowUp(x, y *big.Int) (*big.Int, error) {
	return PowUpVersion(x, y, 0)
}

// PowDownVersion is PowDown with an explicit math version. Version 1
// disables the exact fast paths for exponents 1, 2 and 4.
func PowDownVersion(x, y *big.Int, version uint32) (*big.Int, error) {
	if v, ok, err := powFastPath(x, y, version); ok {
		return v, err
	}
	raw, maxErr, err := powWithError(x, y)
	if err != nil {
		return nil, err
	}
	if raw.Cmp(maxErr) < 0 {
		return new(big.Int), nil
	}
	return raw.Sub(raw, maxErr), nil
}

// PowUpVersion is PowUp with an explicit math version.
func PowUpVersion(x, y *big.Int, version uint32) (*big.Int, error) {
	if v, ok, err := powFastPath(x, y, version); ok {
		return v, err
	}
	raw, maxErr, err := powWithError(x, y)
	if err != nil {
		return nil, err
	}
	return raw.Add(raw, maxErr), nil
}

func powFastPath(x, y *big.Int, version uint32) (*big.Int, bool, error) {
	if version == 1 {
		return nil, false, nil
	}
	switch {
	case y.Cmp(WAD) == 0:
		return new(big.Int).Set(x), true, nil
	case y.Cmp(TwoWAD) == 0:
		v, err := MulUp(x, x)
		return v, true, err
	case y.Cmp(FourWAD) == 0:
		sq, err := MulUp(x, x)
		if err != nil {
			return nil, true, err
		}
		v, err := MulUp(sq, sq)
		return v, true, err
	}
	return nil, false, nil
}

func powWithError(x, y *big.Int) (*big.Int, *big.Int, error) {
	raw, err := Pow(x, y)
	if err != nil {
		return nil, nil, err
	}
	maxErr, err := MulUp(raw, maxPowRelativeError)
	if err != nil {
		return nil, nil, err
	}
	return raw, maxErr.Add(maxErr, One), nil
}
