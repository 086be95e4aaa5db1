// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"fmt"
	"math/big"

	"github.com/luxfi/balancer/core"
	fp "github.com/luxfi/balancer/fixedpoint"
)

var (
	// MaxBalances caps the sum of ECLP balances (1e35).
	MaxBalances = fp.MustParse("100000000000000000000000000000000000")
	// MaxInvariant caps the ECLP invariant (3e36).
	MaxInvariant = fp.MustParse("3000000000000000000000000000000000000")

	ECLPMinInvariantRatio = big.NewInt(6e17)
	ECLPMaxInvariantRatio = big.NewInt(5e18)

	oneE36 = fp.MustParse("1000000000000000000000000000000000000")
)

var (
	ErrMaxAssetsExceeded    = fmt.Errorf("%w: max assets exceeded", core.ErrInvalidInput)
	ErrMaxInvariantExceeded = fmt.Errorf("%w: max invariant exceeded", core.ErrInvalidInput)
	ErrAssetBoundsExceeded  = fmt.Errorf("%w: asset bounds exceeded", core.ErrInvalidInput)
)

type (
	eclpParams  = core.GyroECLPParams
	eclpDerived = core.GyroECLPDerived
	vector2     = core.Vector2
)

func scalarProd(t1, t2 vector2) *big.Int {
	return add(mulDownMag(t1.X, t2.X), mulDownMag(t1.Y, t2.Y))
}

// mulA applies the ellipse transformation A to tp.
func mulA(p *eclpParams, tp vector2) vector2 {
	return vector2{
		X: divDownMag(sub(mulDownMag(p.C, tp.X), mulDownMag(p.S, tp.Y)), p.Lambda),
		Y: add(mulDownMag(p.S, tp.X), mulDownMag(p.C, tp.Y)),
	}
}

// VirtualOffset0 returns the x offset of the ellipse centre, rounded up.
func VirtualOffset0(p *eclpParams, d *eclpDerived, r vector2) *big.Int {
	termXp := divXp(d.TauBeta.X, d.DSq)
	var a *big.Int
	if d.TauBeta.X.Sign() > 0 {
		a = mulUpXpToNp(mulUpMag(mulUpMag(r.X, p.Lambda), p.C), termXp)
	} else {
		a = mulUpXpToNp(mulDownMag(mulDownMag(r.Y, p.Lambda), p.C), termXp)
	}
	return a.Add(a, mulUpXpToNp(mulUpMag(r.X, p.S), divXp(d.TauBeta.Y, d.DSq)))
}

// VirtualOffset1 returns the y offset of the ellipse centre, rounded up.
func VirtualOffset1(p *eclpParams, d *eclpDerived, r vector2) *big.Int {
	termXp := divXp(d.TauAlpha.X, d.DSq)
	var b *big.Int
	if d.TauAlpha.X.Sign() < 0 {
		b = mulUpXpToNp(mulUpMag(mulUpMag(r.X, p.Lambda), p.S), neg(termXp))
	} else {
		b = mulUpXpToNp(mulDownMag(mulDownMag(neg(r.Y), p.Lambda), p.S), termXp)
	}
	return b.Add(b, mulUpXpToNp(mulUpMag(r.X, p.C), divXp(d.TauAlpha.Y, d.DSq)))
}

func maxBalances0(p *eclpParams, d *eclpDerived, r vector2) *big.Int {
	termXp1 := divXp(sub(d.TauBeta.X, d.TauAlpha.X), d.DSq)
	termXp2 := divXp(sub(d.TauBeta.Y, d.TauAlpha.Y), d.DSq)

	xp := mulDownXpToNp(mulDownMag(mulDownMag(r.Y, p.Lambda), p.C), termXp1)
	var term *big.Int
	if termXp2.Sign() > 0 {
		term = mulDownMag(r.Y, p.S)
	} else {
		term = mulUpMag(r.X, p.S)
	}
	return xp.Add(xp, mulDownXpToNp(term, termXp2))
}

func maxBalances1(p *eclpParams, d *eclpDerived, r vector2) *big.Int {
	termXp1 := divXp(sub(d.TauBeta.X, d.TauAlpha.X), d.DSq)
	termXp2 := divXp(sub(d.TauAlpha.Y, d.TauBeta.Y), d.DSq)

	yp := mulDownXpToNp(mulDownMag(mulDownMag(r.Y, p.Lambda), p.S), termXp1)
	var term *big.Int
	if termXp2.Sign() > 0 {
		term = mulDownMag(r.Y, p.C)
	} else {
		term = mulUpMag(r.X, p.C)
	}
	return yp.Add(yp, mulDownXpToNp(term, termXp2))
}

func calcAtAChi(x, y *big.Int, p *eclpParams, d *eclpDerived) *big.Int {
	dSq2 := mulXp(d.DSq, d.DSq)

	termXp := divXp(divDownMag(add(divDownMag(d.W, p.Lambda), d.Z), p.Lambda), dSq2)
	val := mulDownXpToNp(sub(mulDownMag(x, p.C), mulDownMag(y, p.S)), termXp)

	termNp := add(mulDownMag(mulDownMag(x, p.Lambda), p.S), mulDownMag(mulDownMag(y, p.Lambda), p.C))
	val.Add(val, mulDownXpToNp(termNp, divXp(d.U, dSq2)))

	termNp = add(mulDownMag(x, p.S), mulDownMag(y, p.C))
	return val.Add(val, mulDownXpToNp(termNp, divXp(d.V, dSq2)))
}

func calcAChiAChiInXp(p *eclpParams, d *eclpDerived) *big.Int {
	dSq3 := mulXp(mulXp(d.DSq, d.DSq), d.DSq)

	val := mulUpMag(p.Lambda, divXp(mulXp(mulInt(d.U, 2), d.V), dSq3))

	u1 := addInt(d.U, 1)
	val.Add(val, mulUpMag(mulUpMag(divXp(mulXp(u1, u1), dSq3), p.Lambda), p.Lambda))
	val.Add(val, divXp(mulXp(d.V, d.V), dSq3))

	termXp := add(divUpMag(d.W, p.Lambda), d.Z)
	return val.Add(val, divXp(mulXp(termXp, termXp), dSq3))
}

func dSq4(d *eclpDerived) *big.Int {
	return mulXp(mulXp(mulXp(d.DSq, d.DSq), d.DSq), d.DSq)
}

func calcMinAtxAChiySqPlusAtxSq(x, y *big.Int, p *eclpParams, d *eclpDerived) *big.Int {
	termNp := add(
		mulUpMag(mulUpMag(mulUpMag(x, x), p.C), p.C),
		mulUpMag(mulUpMag(mulUpMag(y, y), p.S), p.S),
	)
	termNp.Sub(termNp, mulDownMag(mulDownMag(mulDownMag(x, y), mulInt(p.C, 2)), p.S))

	termXp := mulXp(d.U, d.U)
	termXp.Add(termXp, divDownMag(mulXp(mulInt(d.U, 2), d.V), p.Lambda))
	termXp.Add(termXp, divDownMag(divDownMag(mulXp(d.V, d.V), p.Lambda), p.Lambda))
	termXp = divXp(termXp, dSq4(d))

	val := mulDownXpToNp(neg(termNp), termXp)
	val.Add(val, mulDownXpToNp(
		divDownMag(divDownMag(addInt(termNp, -9), p.Lambda), p.Lambda),
		divXp(oneXP, d.DSq),
	))
	return val
}

func calc2AtxAtyAChixAChiy(x, y *big.Int, p *eclpParams, d *eclpDerived) *big.Int {
	termNp := mulDownMag(mulDownMag(sub(mulDownMag(x, x), mulUpMag(y, y)), mulInt(p.C, 2)), p.S)

	xy := mulDownMag(y, mulInt(x, 2))
	termNp.Add(termNp, mulDownMag(mulDownMag(xy, p.C), p.C))
	termNp.Sub(termNp, mulDownMag(mulDownMag(xy, p.S), p.S))

	termXp := mulXp(d.Z, d.U)
	termXp.Add(termXp, divDownMag(divDownMag(mulXp(d.W, d.V), p.Lambda), p.Lambda))
	termXp.Add(termXp, divDownMag(add(mulXp(d.W, d.U), mulXp(d.Z, d.V)), p.Lambda))
	termXp = divXp(termXp, dSq4(d))

	return mulDownXpToNp(termNp, termXp)
}

func calcMinAtyAChixSqPlusAtySq(x, y *big.Int, p *eclpParams, d *eclpDerived) *big.Int {
	termNp := add(
		mulUpMag(mulUpMag(mulUpMag(x, x), p.S), p.S),
		mulUpMag(mulUpMag(mulUpMag(y, y), p.C), p.C),
	)
	termNp.Add(termNp, mulUpMag(mulUpMag(mulUpMag(x, y), mulInt(p.S, 2)), p.C))

	termXp := mulXp(d.Z, d.Z)
	termXp.Add(termXp, divDownMag(divDownMag(mulXp(d.W, d.W), p.Lambda), p.Lambda))
	termXp.Add(termXp, divDownMag(mulXp(mulInt(d.Z, 2), d.W), p.Lambda))
	termXp = divXp(termXp, dSq4(d))

	val := mulDownXpToNp(neg(termNp), termXp)
	return val.Add(val, mulDownXpToNp(addInt(termNp, -9), divXp(oneXP, d.DSq)))
}

func calcInvariantSqrt(x, y *big.Int, p *eclpParams, d *eclpDerived) (*big.Int, *big.Int) {
	val := calcMinAtxAChiySqPlusAtxSq(x, y, p, d)
	val.Add(val, calc2AtxAtyAChixAChiy(x, y, p, d))
	val.Add(val, calcMinAtyAChixSqPlusAtySq(x, y, p, d))

	errv := add(mulUpMag(x, x), mulUpMag(y, y))
	errv.Quo(errv, oneXP)

	if val.Sign() > 0 {
		return mustSqrt(val, 5), errv
	}
	return new(big.Int), errv
}

// CalcSpotPrice0In1 returns the price of token 0 in units of token 1.
func CalcSpotPrice0In1(balances []*big.Int, p *eclpParams, d *eclpDerived, invariant *big.Int) (price *big.Int, err error) {
	defer recoverCalc(&err)

	r := vector2{X: invariant, Y: invariant}
	ab := vector2{X: VirtualOffset0(p, d, r), Y: VirtualOffset1(p, d, r)}
	vec := vector2{X: sub(balances[0], ab.X), Y: sub(balances[1], ab.Y)}

	t := mulA(p, vec)
	pc := vector2{X: divDownMag(t.X, t.Y), Y: one}

	pgx := scalarProd(pc, mulA(p, vector2{X: one, Y: new(big.Int)}))
	return divDownMag(pgx, scalarProd(pc, mulA(p, vector2{X: new(big.Int), Y: one}))), nil
}

// CalculateInvariantWithError returns the ECLP invariant of a two token
// balance pair together with an upper bound on its absolute error.
func CalculateInvariantWithError(balances []*big.Int, p *eclpParams, d *eclpDerived) (inv, invErr *big.Int, err error) {
	defer recoverCalc(&err)

	if len(balances) != 2 {
		return nil, nil, fmt.Errorf("%w: ECLP pools have exactly 2 tokens", core.ErrInvalidInput)
	}
	x, y := balances[0], balances[1]
	if add(x, y).Cmp(MaxBalances) > 0 {
		return nil, nil, ErrMaxAssetsExceeded
	}

	atAChi := calcAtAChi(x, y, p, d)
	sqrt, e := calcInvariantSqrt(x, y, p, d)

	switch {
	case sqrt.Sign() > 0:
		e = divUpMag(addInt(e, 1), mulInt(sqrt, 2))
	case e.Sign() > 0:
		e = mustSqrt(e, 5)
	default:
		e = big.NewInt(1e9)
	}

	// lambda * (x + y) / 1e38 + err + 1, times 20
	e = add(new(big.Int).Quo(new(big.Int).Mul(p.Lambda, add(x, y)), oneXP), e)
	e = mulInt(addInt(e, 1), 20)

	achiachi := calcAChiAChiInXp(p, d)
	mulDenominator := divXp(oneXP, sub(achiachi, oneXP))

	numerator := add(atAChi, sqrt)
	numerator.Sub(numerator, e)
	inv = mulDownXpToNp(numerator, mulDenominator)
	e = mulUpXpToNp(e, mulDenominator)

	lambdaSqDiv := new(big.Int).Mul(p.Lambda, p.Lambda)
	lambdaSqDiv.Quo(lambdaSqDiv, oneE36)
	extra := mulUpXpToNp(inv, mulDenominator)
	extra.Mul(extra, lambdaSqDiv).Mul(extra, big.NewInt(40)).Quo(extra, oneXP)
	e.Add(e, extra).Add(e, fp.One)

	if add(inv, e).Cmp(MaxInvariant) > 0 {
		return nil, nil, ErrMaxInvariantExceeded
	}
	return inv, e, nil
}

func solveQuadraticSwap(lambda, x, s, c *big.Int, r, ab, tauBeta vector2, dSq *big.Int) *big.Int {
	lamBar := vector2{
		X: sub(oneXP, divDownMag(divDownMag(oneXP, lambda), lambda)),
		Y: sub(oneXP, divUpMag(divUpMag(oneXP, lambda), lambda)),
	}

	var qa, qb, qc *big.Int
	xp := sub(x, ab.X)
	if xp.Sign() > 0 {
		qb = mulUpXpToNp(mulDownMag(mulDownMag(neg(xp), s), c), divXp(lamBar.Y, dSq))
	} else {
		qb = mulUpXpToNp(mulUpMag(mulUpMag(neg(xp), s), c), addInt(divXp(lamBar.X, dSq), 1))
	}

	sTermX := divXp(mulDownMag(mulDownMag(lamBar.Y, s), s), dSq)
	sTermY := addInt(divXp(mulUpMag(mulUpMag(lamBar.X, s), s), addInt(dSq, 1)), 1)
	sTermX = sub(oneXP, sTermX)
	sTermY = sub(oneXP, sTermY)

	qc = neg(calcXpXpDivLambdaLambda(x, r, lambda, s, c, tauBeta, dSq))
	qc.Add(qc, mulDownXpToNp(mulDownMag(r.Y, r.Y), sTermY))
	if qc.Sign() > 0 {
		qc = mustSqrt(qc, 5)
	} else {
		qc = new(big.Int)
	}

	diff := sub(qb, qc)
	if diff.Sign() > 0 {
		qa = mulUpXpToNp(diff, addInt(divXp(oneXP, sTermY), 1))
	} else {
		qa = mulUpXpToNp(diff, divXp(oneXP, sTermX))
	}
	return qa.Add(qa, ab.Y)
}

func calcXpXpDivLambdaLambda(x *big.Int, r vector2, lambda, s, c *big.Int, tauBeta vector2, dSq *big.Int) *big.Int {
	sqX := mulXp(dSq, dSq)
	sqY := mulUpMag(r.X, r.X)

	var qa, qb, qc *big.Int
	termXp := divXp(mulXp(tauBeta.X, tauBeta.Y), sqX)
	if termXp.Sign() > 0 {
		qa = mulUpMag(sqY, mulInt(s, 2))
		qa = mulUpXpToNp(mulUpMag(qa, c), addInt(termXp, 7))
	} else {
		qa = mulDownMag(r.Y, r.Y)
		qa = mulDownMag(qa, mulInt(s, 2))
		qa = mulUpXpToNp(mulDownMag(qa, c), termXp)
	}

	if tauBeta.X.Sign() < 0 {
		qb = mulUpXpToNp(mulUpMag(mulUpMag(r.X, x), mulInt(c, 2)), addInt(neg(divXp(tauBeta.X, dSq)), 3))
	} else {
		qb = mulUpXpToNp(mulDownMag(mulDownMag(neg(r.Y), x), mulInt(c, 2)), divXp(tauBeta.X, dSq))
	}
	qa = add(qa, qb)

	termXp2 := addInt(divXp(mulXp(tauBeta.Y, tauBeta.Y), sqX), 7)
	qb = mulUpMag(sqY, s)
	qb = mulUpXpToNp(mulUpMag(qb, s), termXp2)

	qc = mulUpXpToNp(mulDownMag(mulDownMag(neg(r.Y), x), mulInt(s, 2)), divXp(tauBeta.Y, dSq))

	qb = add(qb, qc)
	qb.Add(qb, mulUpMag(x, x))
	if qb.Sign() > 0 {
		qb = divUpMag(qb, lambda)
	} else {
		qb = divDownMag(qb, lambda)
	}

	qa = add(qa, qb)
	if qa.Sign() > 0 {
		qa = divUpMag(qa, lambda)
	} else {
		qa = divDownMag(qa, lambda)
	}

	termXp2 = addInt(divXp(mulXp(tauBeta.X, tauBeta.X), sqX), 7)
	val := mulUpMag(mulUpMag(sqY, c), c)
	val = mulUpXpToNp(val, termXp2)
	return val.Add(val, qa)
}

// CalcYGivenX solves the ellipse for y at the given x and invariant.
func CalcYGivenX(x *big.Int, p *eclpParams, d *eclpDerived, r vector2) (y *big.Int, err error) {
	defer recoverCalc(&err)
	return calcYGivenX(x, p, d, r), nil
}

// CalcXGivenY solves the ellipse for x at the given y and invariant.
func CalcXGivenY(y *big.Int, p *eclpParams, d *eclpDerived, r vector2) (x *big.Int, err error) {
	defer recoverCalc(&err)
	return calcXGivenY(y, p, d, r), nil
}

func calcYGivenX(x *big.Int, p *eclpParams, d *eclpDerived, r vector2) *big.Int {
	ab := vector2{X: VirtualOffset0(p, d, r), Y: VirtualOffset1(p, d, r)}
	return solveQuadraticSwap(p.Lambda, x, p.S, p.C, r, ab, d.TauBeta, d.DSq)
}

func calcXGivenY(y *big.Int, p *eclpParams, d *eclpDerived, r vector2) *big.Int {
	ba := vector2{X: VirtualOffset1(p, d, r), Y: VirtualOffset0(p, d, r)}
	tau := vector2{X: neg(d.TauAlpha.X), Y: d.TauAlpha.Y}
	return solveQuadraticSwap(p.Lambda, y, p.C, p.S, r, ba, tau, d.DSq)
}

func checkAssetBounds(p *eclpParams, d *eclpDerived, invariant vector2, newBal *big.Int, assetIndex int) error {
	var bound *big.Int
	if assetIndex == 0 {
		bound = maxBalances0(p, d, invariant)
	} else {
		bound = maxBalances1(p, d, invariant)
	}
	if newBal.Cmp(MaxBalances) > 0 || newBal.Cmp(bound) > 0 {
		return ErrAssetBoundsExceeded
	}
	return nil
}

// CalcOutGivenIn returns the amount out of an ECLP swap.
func CalcOutGivenIn(balances []*big.Int, amountIn *big.Int, tokenInIsToken0 bool, p *eclpParams, d *eclpDerived, invariant vector2) (out *big.Int, err error) {
	defer recoverCalc(&err)

	if tokenInIsToken0 {
		balInNew := add(balances[0], amountIn)
		if err := checkAssetBounds(p, d, invariant, balInNew, 0); err != nil {
			return nil, err
		}
		return sub(balances[1], calcYGivenX(balInNew, p, d, invariant)), nil
	}

	balInNew := add(balances[1], amountIn)
	if err := checkAssetBounds(p, d, invariant, balInNew, 1); err != nil {
		return nil, err
	}
	return sub(balances[0], calcXGivenY(balInNew, p, d, invariant)), nil
}

// CalcInGivenOut returns the amount in of an ECLP swap.
func CalcInGivenOut(balances []*big.Int, amountOut *big.Int, tokenInIsToken0 bool, p *eclpParams, d *eclpDerived, invariant vector2) (in *big.Int, err error) {
	defer recoverCalc(&err)

	if tokenInIsToken0 {
		if amountOut.Cmp(balances[1]) > 0 {
			return nil, ErrAssetBoundsExceeded
		}
		balInNew := calcXGivenY(sub(balances[1], amountOut), p, d, invariant)
		if err := checkAssetBounds(p, d, invariant, balInNew, 0); err != nil {
			return nil, err
		}
		return sub(balInNew, balances[0]), nil
	}

	if amountOut.Cmp(balances[0]) > 0 {
		return nil, ErrAssetBoundsExceeded
	}
	balInNew := calcYGivenX(sub(balances[0], amountOut), p, d, invariant)
	if err := checkAssetBounds(p, d, invariant, balInNew, 1); err != nil {
		return nil, err
	}
	return sub(balInNew, balances[1]), nil
}

// ComputeBalance returns the balance of tokenIndex that scales the
// invariant by invariantRatio, holding the other balance fixed.
func ComputeBalance(balances []*big.Int, tokenIndex int, invariantRatio *big.Int, p *eclpParams, d *eclpDerived) (bal *big.Int, err error) {
	if len(balances) != 2 {
		return nil, fmt.Errorf("%w: ECLP pools have exactly 2 tokens", core.ErrInvalidInput)
	}
	if tokenIndex < 0 || tokenIndex >= 2 {
		return nil, core.ErrInvalidTokenIndex
	}

	inv, invErr, err := CalculateInvariantWithError(balances, p, d)
	if err != nil {
		return nil, err
	}

	defer recoverCalc(&err)

	r := vector2{
		X: mulUpFixed(add(inv, invErr), invariantRatio),
		Y: mulUpFixed(sub(inv, invErr), invariantRatio),
	}
	if r.X.Cmp(MaxInvariant) > 0 {
		return nil, ErrMaxInvariantExceeded
	}

	if tokenIndex == 0 {
		return calcXGivenY(balances[1], p, d, r), nil
	}
	return calcYGivenX(balances[0], p, d, r), nil
}
