// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

var thousand = fp.MustParse("1000000000000000000000")

// requireNear asserts |got - want| <= tol.
func requireNear(t *testing.T, want, got, tol *big.Int) {
	t.Helper()
	d := new(big.Int).Sub(got, want)
	require.True(t, d.CmpAbs(tol) <= 0, "want %s got %s (tol %s)", want, got, tol)
}

// Symmetric ECLP: no rotation, unit stretch, price range [0.5, 2].
func testECLP(t *testing.T) *ECLPPool {
	t.Helper()
	small := fp.MustParse("44721359549995793928183473374625524708")
	large := fp.MustParse("89442719099991587856366946749251049417")
	pool, err := NewECLPPool(
		core.GyroECLPParams{
			Alpha:  big.NewInt(5e17),
			Beta:   big.NewInt(2e18),
			C:      big.NewInt(1e18),
			S:      new(big.Int),
			Lambda: big.NewInt(1e18),
		},
		core.GyroECLPDerived{
			TauAlpha: core.Vector2{X: small, Y: large},
			TauBeta:  core.Vector2{X: large, Y: small},
			U:        new(big.Int),
			V:        large,
			W:        new(big.Int),
			Z:        large,
			DSq:      fp.MustParse("100000000000000000000000000000000000000"),
		},
	)
	require.NoError(t, err)
	return pool
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		name string
		in   *big.Int
		want *big.Int
		tol  int64
	}{
		{"zero", new(big.Int), new(big.Int), 0},
		{"four", big.NewInt(4e18), big.NewInt(2e18), 0},
		{"two", big.NewInt(2e18), big.NewInt(1414213562373095048), 1},
		{"quarter", big.NewInt(25e16), big.NewInt(5e17), 1},
		{"large", thousand, fp.MustParse("31622776601683793319"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sqrt(tt.in, 5)
			require.NoError(t, err)
			requireNear(t, tt.want, got, big.NewInt(tt.tol))
		})
	}
}

func TestNewECLPPool(t *testing.T) {
	_, err := NewECLPPool(core.GyroECLPParams{Lambda: new(big.Int)}, core.GyroECLPDerived{DSq: fp.WAD})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = NewECLPPool(core.GyroECLPParams{Lambda: fp.WAD}, core.GyroECLPDerived{})
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestECLPInvariant(t *testing.T) {
	pool := testECLP(t)
	balances := []*big.Int{thousand, thousand}

	inv, invErr, err := CalculateInvariantWithError(balances, &pool.Params, &pool.Derived)
	require.NoError(t, err)
	requireNear(t, fp.MustParse("5338446573954878009145"), inv, big.NewInt(1e6))
	require.Positive(t, invErr.Sign())
	require.True(t, invErr.Cmp(big.NewInt(1e6)) < 0)

	down, err := pool.ComputeInvariant(balances, core.RoundDown)
	require.NoError(t, err)
	up, err := pool.ComputeInvariant(balances, core.RoundUp)
	require.NoError(t, err)
	require.True(t, up.Cmp(down) > 0)

	_, _, err = CalculateInvariantWithError([]*big.Int{thousand}, &pool.Params, &pool.Derived)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	huge := fp.MustParse("60000000000000000000000000000000000")
	_, _, err = CalculateInvariantWithError([]*big.Int{huge, huge}, &pool.Params, &pool.Derived)
	require.ErrorIs(t, err, ErrMaxAssetsExceeded)
}

func TestECLPSwap(t *testing.T) {
	pool := testECLP(t)
	ten := big.NewInt(0).Mul(big.NewInt(10), fp.WAD)
	tol := big.NewInt(1e9)

	tests := []struct {
		name    string
		kind    core.SwapKind
		in, out int
		want    string
	}{
		{"given in 0 to 1", core.GivenIn, 0, 1, "9973578793827098416"},
		{"given in 1 to 0", core.GivenIn, 1, 0, "9973578793827098416"},
		{"given out 0 to 1", core.GivenOut, 0, 1, "10026561564379157792"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := []*big.Int{thousand, new(big.Int).Set(thousand)}
			got, err := pool.OnSwap(&core.SwapParams{
				SwapKind:             tt.kind,
				AmountGivenScaled18:  ten,
				BalancesLiveScaled18: balances,
				IndexIn:              tt.in,
				IndexOut:             tt.out,
			})
			require.NoError(t, err)
			requireNear(t, fp.MustParse(tt.want), got, tol)
			require.Equal(t, thousand, balances[1])
		})
	}

	// Paying in never beats receiving out.
	out, err := pool.OnSwap(&core.SwapParams{SwapKind: core.GivenIn, AmountGivenScaled18: ten, BalancesLiveScaled18: []*big.Int{thousand, thousand}, IndexIn: 0, IndexOut: 1})
	require.NoError(t, err)
	in, err := pool.OnSwap(&core.SwapParams{SwapKind: core.GivenOut, AmountGivenScaled18: ten, BalancesLiveScaled18: []*big.Int{thousand, thousand}, IndexIn: 0, IndexOut: 1})
	require.NoError(t, err)
	require.True(t, out.Cmp(ten) < 0)
	require.True(t, in.Cmp(ten) > 0)
}

func TestECLPSwapOutTooLarge(t *testing.T) {
	pool := testECLP(t)
	_, err := pool.OnSwap(&core.SwapParams{
		SwapKind:             core.GivenOut,
		AmountGivenScaled18:  fp.MustParse("2000000000000000000000"),
		BalancesLiveScaled18: []*big.Int{thousand, thousand},
		IndexIn:              0,
		IndexOut:             1,
	})
	require.ErrorIs(t, err, ErrAssetBoundsExceeded)
}

func TestECLPComputeBalance(t *testing.T) {
	pool := testECLP(t)
	balances := []*big.Int{thousand, thousand}

	got, err := pool.ComputeBalance(balances, 0, fp.WAD)
	require.NoError(t, err)
	requireNear(t, thousand, got, big.NewInt(1e6))
	require.True(t, got.Cmp(thousand) >= 0)

	got, err = pool.ComputeBalance(balances, 1, big.NewInt(11e17))
	require.NoError(t, err)
	requireNear(t, fp.MustParse("1202468463698351788683"), got, big.NewInt(1e9))

	_, err = pool.ComputeBalance(balances, 2, fp.WAD)
	require.ErrorIs(t, err, core.ErrInvalidTokenIndex)

	require.Equal(t, ECLPMinInvariantRatio, pool.MinimumInvariantRatio())
	require.Equal(t, ECLPMaxInvariantRatio, pool.MaximumInvariantRatio())
}

func TestECLPSpotPrice(t *testing.T) {
	pool := testECLP(t)
	balances := []*big.Int{thousand, thousand}
	inv, _, err := CalculateInvariantWithError(balances, &pool.Params, &pool.Derived)
	require.NoError(t, err)

	price, err := CalcSpotPrice0In1(balances, &pool.Params, &pool.Derived, inv)
	require.NoError(t, err)
	requireNear(t, fp.WAD, price, big.NewInt(1e12))
}

func TestTwoCLP(t *testing.T) {
	_, err := NewTwoCLPPool(big.NewInt(11e17), big.NewInt(9e17))
	require.ErrorIs(t, err, ErrSqrtParamsWrong)

	pool, err := NewTwoCLPPool(big.NewInt(9e17), big.NewInt(11e17))
	require.NoError(t, err)
	balances := []*big.Int{thousand, thousand}

	down, err := pool.ComputeInvariant(balances, core.RoundDown)
	require.NoError(t, err)
	require.Equal(t, "10475056817888338824629", down.String())
	up, err := pool.ComputeInvariant(balances, core.RoundUp)
	require.NoError(t, err)
	require.Equal(t, "10475056817888338879494", up.String())

	ten := new(big.Int).Mul(big.NewInt(10), fp.WAD)
	tests := []struct {
		name string
		kind core.SwapKind
		want string
	}{
		{"given in", core.GivenIn, "9900094941705991061"},
		{"given out", core.GivenOut, "10101010101010101038"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pool.OnSwap(&core.SwapParams{
				SwapKind:             tt.kind,
				AmountGivenScaled18:  ten,
				BalancesLiveScaled18: balances,
				IndexIn:              0,
				IndexOut:             1,
			})
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}

	bal, err := pool.ComputeBalance(balances, 0, fp.WAD)
	require.NoError(t, err)
	require.Equal(t, "1000000000000000001915", bal.String())

	_, err = pool.OnSwap(&core.SwapParams{BalancesLiveScaled18: balances, IndexIn: 0, IndexOut: 2})
	require.ErrorIs(t, err, core.ErrInvalidTokenIndex)
}

func TestSignedRounding(t *testing.T) {
	a := big.NewInt(-15e17)
	b := big.NewInt(3)

	require.Equal(t, "-4", mulDownMag(a, b).String())
	require.Equal(t, "-5", mulUpMag(a, b).String())
	require.Equal(t, "5", mulUpMag(big.NewInt(15e17), b).String())

	var err error
	func() {
		defer recoverCalc(&err)
		divXp(fp.One, new(big.Int))
	}()
	require.ErrorIs(t, err, core.ErrMathOverflow)
}
