// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/balancer/core"
)

func TestMulDiv(t *testing.T) {
	third := MustParse("333333333333333333")

	tests := []struct {
		name string
		fn   func(a, b *big.Int) (*big.Int, error)
		a, b *big.Int
		want *big.Int
	}{
		{"MulDown exact", MulDown, TwoWAD, big.NewInt(3e18), big.NewInt(6e18)},
		{"MulUp exact", MulUp, TwoWAD, big.NewInt(3e18), big.NewInt(6e18)},
		{"MulDown truncates", MulDown, One, One, Zero},
		{"MulUp rounds", MulUp, One, One, One},
		{"MulUp zero", MulUp, Zero, WAD, Zero},
		{"DivDown third", DivDown, One, big.NewInt(3), third},
		{"DivUp third", DivUp, One, big.NewInt(3), new(big.Int).Add(third, One)},
		{"DivDown zero numerator", DivDown, Zero, Zero, Zero},
		{"DivUp zero numerator", DivUp, Zero, Zero, Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.a, tt.b)
			require.NoError(t, err)
			require.Zero(t, tt.want.Cmp(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := DivDown(WAD, Zero)
	require.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = DivUp(WAD, Zero)
	require.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = MulDivUp(WAD, WAD, Zero)
	require.ErrorIs(t, err, core.ErrMathOverflow)

	require.Zero(t, DivUpRaw(WAD, Zero).Sign())
}

func TestOverflow(t *testing.T) {
	_, err := MulDown(MaxUint256, Two)
	require.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = DivUp(MaxUint256, One)
	require.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = ToUint256(big.NewInt(-1))
	require.ErrorIs(t, err, core.ErrMathOverflow)

	v, err := ToUint256(MaxUint256)
	require.NoError(t, err)
	require.Equal(t, MaxUint256.String(), v.Dec())
}

func TestRawHelpers(t *testing.T) {
	require.Equal(t, int64(4), DivUpRaw(big.NewInt(7), Two).Int64())
	require.Equal(t, int64(3), DivUpRaw(big.NewInt(6), Two).Int64())

	v, err := MulDivUp(big.NewInt(7), big.NewInt(3), Two)
	require.NoError(t, err)
	require.Equal(t, int64(11), v.Int64())

	v, err = MulDivUp(Zero, WAD, Two)
	require.NoError(t, err)
	require.Zero(t, v.Sign())

	require.Zero(t, Complement(big.NewInt(12e17)).Sign())
	require.Equal(t, int64(3e17), Complement(big.NewInt(7e17)).Int64())
}

func TestPowFastPaths(t *testing.T) {
	base := big.NewInt(15e17)

	up, err := PowUp(base, WAD)
	require.NoError(t, err)
	require.Zero(t, base.Cmp(up))

	sq, err := PowDown(base, TwoWAD)
	require.NoError(t, err)
	require.Equal(t, int64(225e16), sq.Int64())

	quad, err := PowUp(base, FourWAD)
	require.NoError(t, err)
	require.Equal(t, MustParse("5062500000000000000").String(), quad.String())

	// Version 1 goes through ln/exp and carries the error margin.
	down, err := PowDownVersion(base, TwoWAD, 1)
	require.NoError(t, err)
	require.Equal(t, -1, down.Cmp(sq))
}

func TestPow(t *testing.T) {
	one, err := Pow(WAD, big.NewInt(7e17))
	require.NoError(t, err)
	require.Zero(t, WAD.Cmp(one))

	v, err := Pow(Zero, WAD)
	require.NoError(t, err)
	require.Zero(t, v.Sign())

	v, err = Pow(big.NewInt(5e18), Zero)
	require.NoError(t, err)
	require.Zero(t, WAD.Cmp(v))

	tests := []struct {
		name string
		x, y *big.Int
		want *big.Int
	}{
		{"sqrt two", TwoWAD, big.NewInt(5e17), MustParse("1414213562373095048")},
		{"near one", big.NewInt(1e18 + 5e16), big.NewInt(3e18), MustParse("1157625000000000000")},
		{"below one", big.NewInt(5e17), big.NewInt(3e18), MustParse("125000000000000000")},
		{"large base", MustParse("1000000000000000000000"), big.NewInt(2e18 + 5e17), MustParse("31622776601683793319988935")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pow(tt.x, tt.y)
			require.NoError(t, err)

			diff := new(big.Int).Sub(got, tt.want)
			tol := new(big.Int).Quo(tt.want, big.NewInt(1e13))
			require.LessOrEqual(t, diff.CmpAbs(tol), 0, "got %s want %s", got, tt.want)

			up, err := PowUp(tt.x, tt.y)
			require.NoError(t, err)
			down, err := PowDown(tt.x, tt.y)
			require.NoError(t, err)
			require.Equal(t, 1, up.Cmp(got))
			require.Equal(t, -1, down.Cmp(got))
		})
	}
}

func TestPowBounds(t *testing.T) {
	_, err := Pow(new(big.Int).Lsh(One, 255), WAD)
	require.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = Pow(TwoWAD, mildExponentBound)
	require.ErrorIs(t, err, core.ErrMathOverflow)

	// e^(ln(1e9) * 10) is far past the natural exponent bound.
	_, err = Pow(MustParse("1000000000000000000000000000"), MustParse("10000000000000000000"))
	require.ErrorIs(t, err, core.ErrMathOverflow)
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		in   *big.Int
		want *big.Int
	}{
		{Zero, Zero},
		{One, One},
		{Two, One},
		{big.NewInt(4), Two},
		{big.NewInt(99), big.NewInt(9)},
		{MustParse("1000000000000000000000000000000000000"), WAD},
		{MaxUint256, new(big.Int).Sub(new(big.Int).Lsh(One, 128), One)},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			require.Zero(t, tt.want.Cmp(Sqrt(tt.in)))
		})
	}

	for _, s := range []string{"12345678901234567890", "98765432109876543210123456789", "3000000000000000000000000000000000001"} {
		n := MustParse(s)
		r := Sqrt(n)
		require.LessOrEqual(t, new(big.Int).Mul(r, r).Cmp(n), 0)
		r1 := new(big.Int).Add(r, One)
		require.Equal(t, 1, new(big.Int).Mul(r1, r1).Cmp(n))
	}

	require.Zero(t, MustParse("1414213562373095048").Cmp(SqrtScaled18(TwoWAD)))
}
