// Package optionpricing implements the closed-form Black-Scholes option
// kernel and its Greeks (spec.md §4.1, component A), plus the replication
// identities used both to price embedded FIA/RILA options and to validate
// the Monte Carlo engine.
package optionpricing

import (
	"math"

	"github.com/aristath/annuity-pricer/internal/engerr"
)

// Inputs bundles the six Black-Scholes parameters.
type Inputs struct {
	Spot          float64 // S
	Strike        float64 // K
	RiskFreeRate  float64 // r
	DividendYield float64 // q
	Volatility    float64 // sigma
	TimeToExpiry  float64 // T, in years
}

// Greeks holds the standard sensitivities in the conventions spec.md §4.1
// names: vega per 1% vol, theta per calendar day, rho per 1% rate.
type Greeks struct {
	Delta float64
	Gamma float64
	Vega  float64 // per 1% vol
	Theta float64 // per calendar day
	Rho   float64 // per 1% rate
}

// Result is a priced option plus its Greeks.
type Result struct {
	Price  float64
	Greeks Greeks
}

func validate(in Inputs) error {
	if in.Spot <= 0 {
		return &engerr.PreconditionError{Component: "optionpricing", Invariant: "spot must be > 0", Value: in.Spot}
	}
	if in.Strike <= 0 {
		return &engerr.PreconditionError{Component: "optionpricing", Invariant: "strike must be > 0", Value: in.Strike}
	}
	if in.Volatility < 0 {
		return &engerr.PreconditionError{Component: "optionpricing", Invariant: "volatility must be >= 0", Value: in.Volatility}
	}
	if in.TimeToExpiry < 0 {
		return &engerr.PreconditionError{Component: "optionpricing", Invariant: "time to expiry must be >= 0", Value: in.TimeToExpiry}
	}
	return nil
}

// normCDF is the standard normal CDF N(x), via the stdlib complementary
// error function — no pack dependency offers a normal CDF, and
// 0.5*math.Erfc(-x/sqrt2) is the exact, textbook way to compute it.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// d1d2 computes d1 and d2 for non-degenerate (sigma>0, T>0) inputs.
func d1d2(in Inputs) (d1, d2 float64) {
	sqrtT := math.Sqrt(in.TimeToExpiry)
	d1 = (math.Log(in.Spot/in.Strike) + (in.RiskFreeRate-in.DividendYield+0.5*in.Volatility*in.Volatility)*in.TimeToExpiry) / (in.Volatility * sqrtT)
	d2 = d1 - in.Volatility*sqrtT
	return d1, d2
}

// Call prices a European call and its Greeks. sigma=0 or T=0 collapse to
// intrinsic value with zero Greeks beyond delta, per spec.md §4.1.
func Call(in Inputs) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}
	if in.Volatility == 0 || in.TimeToExpiry == 0 {
		return intrinsicCall(in), nil
	}

	d1, d2 := d1d2(in)
	sqrtT := math.Sqrt(in.TimeToExpiry)
	discQ := math.Exp(-in.DividendYield * in.TimeToExpiry)
	discR := math.Exp(-in.RiskFreeRate * in.TimeToExpiry)

	price := in.Spot*discQ*normCDF(d1) - in.Strike*discR*normCDF(d2)

	delta := discQ * normCDF(d1)
	gamma := discQ * normPDF(d1) / (in.Spot * in.Volatility * sqrtT)
	vega := in.Spot * discQ * normPDF(d1) * sqrtT * 0.01
	theta := (-(in.Spot*discQ*normPDF(d1)*in.Volatility)/(2*sqrtT) -
		in.RiskFreeRate*in.Strike*discR*normCDF(d2) +
		in.DividendYield*in.Spot*discQ*normCDF(d1)) / 365.0
	rho := in.Strike * in.TimeToExpiry * discR * normCDF(d2) * 0.01

	return Result{
		Price: price,
		Greeks: Greeks{
			Delta: delta,
			Gamma: gamma,
			Vega:  vega,
			Theta: theta,
			Rho:   rho,
		},
	}, nil
}

// Put prices a European put directly from its own closed form; it does not
// call Call or check put-call parity (C - P = S*e^-qT - K*e^-rT) itself.
func Put(in Inputs) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}
	if in.Volatility == 0 || in.TimeToExpiry == 0 {
		return intrinsicPut(in), nil
	}

	d1, d2 := d1d2(in)
	sqrtT := math.Sqrt(in.TimeToExpiry)
	discQ := math.Exp(-in.DividendYield * in.TimeToExpiry)
	discR := math.Exp(-in.RiskFreeRate * in.TimeToExpiry)

	price := in.Strike*discR*normCDF(-d2) - in.Spot*discQ*normCDF(-d1)

	delta := -discQ * normCDF(-d1)
	gamma := discQ * normPDF(d1) / (in.Spot * in.Volatility * sqrtT)
	vega := in.Spot * discQ * normPDF(d1) * sqrtT * 0.01
	theta := (-(in.Spot*discQ*normPDF(d1)*in.Volatility)/(2*sqrtT) +
		in.RiskFreeRate*in.Strike*discR*normCDF(-d2) -
		in.DividendYield*in.Spot*discQ*normCDF(-d1)) / 365.0
	rho := -in.Strike * in.TimeToExpiry * discR * normCDF(-d2) * 0.01

	return Result{
		Price: price,
		Greeks: Greeks{
			Delta: delta,
			Gamma: gamma,
			Vega:  vega,
			Theta: theta,
			Rho:   rho,
		},
	}, nil
}

func intrinsicCall(in Inputs) Result {
	price := math.Max(in.Spot-in.Strike, 0)
	delta := 0.0
	if in.Spot > in.Strike {
		delta = 1.0
	}
	return Result{Price: price, Greeks: Greeks{Delta: delta}}
}

func intrinsicPut(in Inputs) Result {
	price := math.Max(in.Strike-in.Spot, 0)
	delta := 0.0
	if in.Spot < in.Strike {
		delta = -1.0
	}
	return Result{Price: price, Greeks: Greeks{Delta: delta}}
}

// DigitalCall prices a cash-or-nothing digital call paying `payout` if
// S_T > K: digital_call = e^{-rT} N(d2) * payout (spec.md §4.1).
func DigitalCall(in Inputs, payout float64) (float64, error) {
	if err := validate(in); err != nil {
		return 0, err
	}
	if in.Volatility == 0 || in.TimeToExpiry == 0 {
		if in.Spot > in.Strike {
			return payout, nil
		}
		return 0, nil
	}
	_, d2 := d1d2(in)
	return math.Exp(-in.RiskFreeRate*in.TimeToExpiry) * normCDF(d2) * payout, nil
}

// CappedCall replicates a capped call as a call spread:
// capped_call(K1, K2) = call(K1) - call(K2), per spec.md §4.1.
func CappedCall(lowStrike, highStrike float64, in Inputs) (float64, error) {
	low := in
	low.Strike = lowStrike
	high := in
	high.Strike = highStrike

	lowResult, err := Call(low)
	if err != nil {
		return 0, err
	}
	highResult, err := Call(high)
	if err != nil {
		return 0, err
	}
	return lowResult.Price - highResult.Price, nil
}

// BufferPutSpread replicates a buffer's downside protection as a put spread:
// buffer_put_spread(K_ATM, K_OTM) = put(K_ATM) - put(K_OTM).
func BufferPutSpread(atmStrike, otmStrike float64, in Inputs) (float64, error) {
	atm := in
	atm.Strike = atmStrike
	otm := in
	otm.Strike = otmStrike

	atmResult, err := Put(atm)
	if err != nil {
		return 0, err
	}
	otmResult, err := Put(otm)
	if err != nil {
		return 0, err
	}
	return atmResult.Price - otmResult.Price, nil
}
