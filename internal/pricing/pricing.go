// Package pricing implements the dispatch registry (spec.md §4's "L"
// component): a case-split over product.Kind that routes to the right
// combination of components B/A/C/D (MYGA, FIA, RILA) or E/F/G (GLWB),
// followed by I/J for reserves and K for validation on every result,
// grounded on spec.md §9's "dispatch registry is a case-split, not an
// inheritance hierarchy" design note and the teacher's own pattern of one
// package per concern with no shared base type.
package pricing

import (
	"math"

	"github.com/aristath/annuity-pricer/internal/behavior"
	"github.com/aristath/annuity-pricer/internal/engerr"
	"github.com/aristath/annuity-pricer/internal/gbm"
	"github.com/aristath/annuity-pricer/internal/glwb"
	"github.com/aristath/annuity-pricer/internal/gwb"
	"github.com/aristath/annuity-pricer/internal/market"
	"github.com/aristath/annuity-pricer/internal/montecarlo"
	"github.com/aristath/annuity-pricer/internal/optionpricing"
	"github.com/aristath/annuity-pricer/internal/payoff"
	"github.com/aristath/annuity-pricer/internal/product"
	"github.com/aristath/annuity-pricer/internal/reserve"
	"github.com/aristath/annuity-pricer/internal/scenario"
	"github.com/aristath/annuity-pricer/internal/solver"
	"github.com/aristath/annuity-pricer/internal/validate"
	"github.com/aristath/annuity-pricer/internal/workerpool"
)

// ResultKind discriminates which arm of PricingResult is populated.
type ResultKind int

const (
	ResultPVAndMeta ResultKind = iota
	ResultFIA
	ResultRILA
	ResultGLWB
	ResultReserve
)

// PVAndMeta is the plain present-value result MYGA pricing returns.
type PVAndMeta struct {
	PV       float64
	Duration float64
}

// FIAResult carries an FIA pricing call's outputs (spec.md §3).
type FIAResult struct {
	EmbeddedOptionValue float64
	OptionBudget        float64
	FairCap             float64
	FairParticipation   float64
	ExpectedCredit      float64
}

// RILAResult carries a RILA pricing call's outputs (spec.md §3).
type RILAResult struct {
	ProtectionValue float64
	ProtectionType  product.ProtectionKind
	UpsideValue     float64
	ExpectedReturn  float64
	MaxLoss         float64
	BreakevenReturn *float64
}

// GLWBResult carries a GLWB path-simulation pricing call's outputs.
type GLWBResult struct {
	Price         float64
	GuaranteeCost float64
	StdError      float64
	ProbRuin      float64
	MeanRuinYear  float64
}

// ReserveResult carries a CTE reserve calculation's outputs.
type ReserveResult struct {
	CTE70         float64
	Mean          float64
	TailScenarios []int
}

// PricingResult is the tagged variant spec.md §3 describes. Only the field
// matching Kind is populated.
type PricingResult struct {
	Kind    ResultKind
	PV      PVAndMeta
	FIA     FIAResult
	RILA    RILAResult
	GLWB    GLWBResult
	Reserve ReserveResult
}

// Request bundles a pricing call's inputs. NumPaths/NumWorkers default to
// sane values (100000 paths, auto workers) when left zero.
type Request struct {
	Product          product.Product
	Market           market.Params
	Premium          float64
	TermYears        int
	Seed             uint64
	NumPaths         int
	NumWorkers       int
	OptionBudget     float64 // required for FIA fair-cap/fair-participation solves and the FIA option-budget gate
	GWBConfig        gwb.Config
	Age              int
	UtilizationModel *behavior.WithdrawalAssumptions // nil uses behavior.DefaultWithdrawalAssumptions()
	MortalityTable   behavior.MortalityTable
}

func (r Request) utilizationModel() behavior.WithdrawalAssumptions {
	if r.UtilizationModel != nil {
		return *r.UtilizationModel
	}
	return behavior.DefaultWithdrawalAssumptions()
}

func (r Request) numPaths() int {
	if r.NumPaths > 0 {
		return r.NumPaths
	}
	return 100_000
}

// Price dispatches a pricing request to the pricer matching the product's
// kind, per spec.md §6's `price(product, marketParams, premium, termYears,
// seed?) -> PricingResult`.
func Price(req Request) (PricingResult, error) {
	if err := product.Validate(req.Product); err != nil {
		return PricingResult{}, err
	}
	if req.Premium <= 0 {
		return PricingResult{}, &engerr.PreconditionError{Component: "pricing", Invariant: "Premium must be > 0", Value: req.Premium}
	}

	switch req.Product.Kind {
	case product.KindMYGA:
		return priceMYGA(req), nil
	case product.KindFIA:
		return priceFIA(req)
	case product.KindRILA:
		return priceRILA(req)
	default:
		return PricingResult{}, &engerr.PreconditionError{Component: "pricing", Invariant: "unsupported product kind for Price", Value: req.Product.Kind}
	}
}

// priceMYGA prices a Multi-Year Guaranteed Annuity: the credited rate is
// contractual, not market-risk-bearing, so PV at issue equals the premium
// and duration is the guarantee window.
func priceMYGA(req Request) PricingResult {
	return PricingResult{
		Kind: ResultPVAndMeta,
		PV: PVAndMeta{
			PV:       req.Premium,
			Duration: float64(req.Product.MYGA.GuaranteeDurationYrs),
		},
	}
}

func priceFIA(req Request) (PricingResult, error) {
	method, err := req.Product.FIA.Method()
	if err != nil {
		return PricingResult{}, err
	}

	termYears := float64(req.Product.FIA.TermYears)
	gbmParams := gbmParamsFor(req.Market, termYears)

	fn, err := fiaPayoffFunc(req.Product.FIA, method)
	if err != nil {
		return PricingResult{}, err
	}

	mc, err := montecarlo.Run(montecarlo.Config{
		Params:     gbmParams,
		Payoff:     fn,
		NumPaths:   req.numPaths(),
		Seed:       req.Seed,
		NumWorkers: req.NumWorkers,
	})
	if err != nil {
		return PricingResult{}, err
	}

	discount := math.Exp(-req.Market.RiskFreeRate * termYears)
	expectedCredit := mc.Mean / discount

	embeddedOptionValue := mc.Mean * req.Premium
	fairCap, fairParticipation := 0.0, 0.0

	if method == product.CreditingCapped {
		bsIn := optionpricing.Inputs{
			Spot: req.Market.Spot, Strike: req.Market.Spot,
			RiskFreeRate: req.Market.RiskFreeRate, DividendYield: req.Market.DividendYield,
			Volatility: req.Market.Volatility, TimeToExpiry: termYears,
		}
		capRate := *req.Product.FIA.CapRate
		bsOption, err := optionpricing.CappedCall(req.Market.Spot, req.Market.Spot*(1+capRate), bsIn)
		if err == nil {
			embeddedOptionValue = bsOption / req.Market.Spot * req.Premium
		}

		if req.OptionBudget > 0 {
			fairCap, _ = solveFairCap(req, bsIn, termYears)
		}
	}

	return PricingResult{
		Kind: ResultFIA,
		FIA: FIAResult{
			EmbeddedOptionValue: embeddedOptionValue,
			OptionBudget:        req.OptionBudget,
			FairCap:             fairCap,
			FairParticipation:   fairParticipation,
			ExpectedCredit:      expectedCredit,
		},
	}, nil
}

// solveFairCap bisects the cap rate so the BS-replicated capped-call value
// equals req.OptionBudget (per spec.md §8 property 6's 1e-6 relative
// tolerance), grounded on component H generalized beyond the GLWB fee use.
func solveFairCap(req Request, bsIn optionpricing.Inputs, termYears float64) (float64, error) {
	objective := func(cap float64) float64 {
		value, err := optionpricing.CappedCall(req.Market.Spot, req.Market.Spot*(1+cap), bsIn)
		if err != nil {
			return 0
		}
		return value/req.Market.Spot*req.Premium - req.OptionBudget
	}
	return solver.Bisect(solver.Config{Bounds: solver.Bounds{Low: 0.001, High: 2.0}, Tolerance: 1e-6, MaxIterations: 200}, objective)
}

func fiaPayoffFunc(f product.FIA, method product.CreditingMethod) (montecarlo.PayoffFunc, error) {
	switch method {
	case product.CreditingCapped:
		cap := *f.CapRate
		return func(x float64) float64 { return payoff.Capped(x, cap) }, nil
	case product.CreditingParticipation:
		p := *f.ParticipationRate
		return func(x float64) float64 { return payoff.Participation(x, p, 0, false) }, nil
	case product.CreditingSpread:
		s := *f.SpreadRate
		return func(x float64) float64 { return payoff.Spread(x, s, 0, false) }, nil
	case product.CreditingTrigger:
		t := *f.TriggerRate
		return func(x float64) float64 { return payoff.Trigger(x, t) }, nil
	default:
		return nil, &engerr.PreconditionError{Component: "pricing", Invariant: "unknown FIA crediting method", Value: method}
	}
}

func priceRILA(req Request) (PricingResult, error) {
	r := req.Product.RILA
	termYears := float64(r.TermYears)
	gbmParams := gbmParamsFor(req.Market, termYears)

	var capPresent bool
	var cap float64
	if r.CapRate != nil {
		cap, capPresent = *r.CapRate, true
	}

	var fn montecarlo.PayoffFunc
	if r.Protection.Kind == product.ProtectionBuffer {
		fn = func(x float64) float64 { return payoff.RILABuffer(x, r.Protection.Rate, cap, capPresent) }
	} else {
		fn = func(x float64) float64 { return payoff.RILAFloor(x, r.Protection.Rate, cap, capPresent) }
	}

	mc, err := montecarlo.Run(montecarlo.Config{
		Params:     gbmParams,
		Payoff:     fn,
		NumPaths:   req.numPaths(),
		Seed:       req.Seed,
		NumWorkers: req.NumWorkers,
	})
	if err != nil {
		return PricingResult{}, err
	}

	discount := math.Exp(-req.Market.RiskFreeRate * termYears)
	expectedReturn := mc.Mean / discount

	bsIn := optionpricing.Inputs{
		Spot: req.Market.Spot, Strike: req.Market.Spot,
		RiskFreeRate: req.Market.RiskFreeRate, DividendYield: req.Market.DividendYield,
		Volatility: req.Market.Volatility, TimeToExpiry: termYears,
	}
	protectionRate := r.Protection.Rate
	otmStrike := req.Market.Spot * (1 - protectionRate)
	protectionValue, err := optionpricing.BufferPutSpread(req.Market.Spot, otmStrike, bsIn)
	if err != nil {
		protectionValue = 0
	}
	protectionValue = protectionValue / req.Market.Spot * req.Premium

	return PricingResult{
		Kind: ResultRILA,
		RILA: RILAResult{
			ProtectionValue: protectionValue,
			ProtectionType:  r.Protection.Kind,
			UpsideValue:     mc.Mean * req.Premium,
			ExpectedReturn:  expectedReturn,
			MaxLoss:         r.MaxLoss(),
		},
	}, nil
}

func gbmParamsFor(m market.Params, termYears float64) gbm.Params {
	return gbm.Params{Market: m, TimeToExpiry: termYears}
}

// PriceGLWB prices a contract's GLWB rider (spec.md §4.7): a GWB rollup/
// ratchet configuration layered on top of the base contract, independent of
// the base product's own Kind (any of MYGA/FIA/RILA may carry a GLWB rider
// in practice, though this engine treats it as its own pricing call taking
// the rider's own market/mortality assumptions).
func PriceGLWB(req Request) (PricingResult, error) {
	result, err := glwb.Price(glwb.Inputs{
		GWBConfig:        req.GWBConfig,
		Premium:          req.Premium,
		Age:              req.Age,
		RiskFreeRate:     req.Market.RiskFreeRate,
		Volatility:       req.Market.Volatility,
		MortalityTable:   req.MortalityTable,
		UtilizationModel: req.utilizationModel(),
		NumPaths:         req.numPaths(),
		Seed:             req.Seed,
		NumWorkers:       req.NumWorkers,
	})
	if err != nil {
		return PricingResult{}, err
	}

	return PricingResult{
		Kind: ResultGLWB,
		GLWB: GLWBResult{
			Price:         result.Price,
			GuaranteeCost: result.GuaranteeCost,
			StdError:      result.StdError,
			ProbRuin:      result.ProbRuin,
			MeanRuinYear:  result.MeanRuinYear,
		},
	}, nil
}

// ReserveRequest bundles a CTE reserve calculation's inputs: the GLWB policy
// to re-price under each scenario, and the scenario-generation parameters.
type ReserveRequest struct {
	Policy      glwb.Inputs
	ScenarioCfg scenario.GenerateConfig
	NumWorkers  int
}

// Reserve dispatches a reserve request, per spec.md §6's `reserve(policy,
// scenarioParams, seed) -> ReserveResult`: generate an AG43 scenario bundle,
// replay the GLWB policy through each scenario's own realized rate/equity
// path (reserve.ProjectLiability), and run the CTE integrator over the
// resulting PV set.
func Reserve(req ReserveRequest) (PricingResult, error) {
	bundle, err := scenario.Generate(req.ScenarioCfg)
	if err != nil {
		return PricingResult{}, err
	}

	type projection struct {
		pv  reserve.ScenarioPV
		err error
	}

	projections := workerpool.Map(len(bundle.Scenarios), req.NumWorkers, func(i int) projection {
		s := bundle.Scenarios[i]
		pv, err := reserve.ProjectLiability(s, req.Policy)
		return projection{pv: reserve.ScenarioPV{ScenarioID: s.ScenarioID, PV: pv}, err: err}
	})

	pvs := make([]reserve.ScenarioPV, len(projections))
	for i, p := range projections {
		if p.err != nil {
			return PricingResult{}, p.err
		}
		pvs[i] = p.pv
	}

	calc, err := reserve.Calculate(pvs)
	if err != nil {
		return PricingResult{}, err
	}

	return PricingResult{
		Kind: ResultReserve,
		Reserve: ReserveResult{
			CTE70:         calc.CTE70,
			Mean:          calc.Mean,
			TailScenarios: calc.TailScenarios,
		},
	}, nil
}

// PVAndDurationFor derives the (pv, duration) pair the Validate context
// needs from a PricingResult, for callers that only have the result and the
// premium on hand (the CLI and HTTP surfaces). FIA/RILA results have no
// explicit duration figure in spec.md's model, so 0 is reported for those.
func PVAndDurationFor(result PricingResult, premium float64) (pv float64, duration float64) {
	switch result.Kind {
	case ResultPVAndMeta:
		return result.PV.PV, result.PV.Duration
	case ResultFIA:
		return result.FIA.EmbeddedOptionValue + premium, 0
	case ResultRILA:
		return result.RILA.ProtectionValue + premium, 0
	default:
		return premium, 0
	}
}

// Validate runs the standard gate set (component K) against a PricingResult,
// per spec.md §6's `validate(result, context) -> ValidationReport`. context
// supplies the quantities the result itself doesn't carry (premium, PV,
// duration) needed by gates that apply across every result kind.
func Validate(result PricingResult, premium, pv, duration float64) validate.Report {
	in := validate.Inputs{PV: pv, Premium: premium, Duration: duration}

	switch result.Kind {
	case ResultFIA:
		in.HasFIA = true
		in.OptionValue = result.FIA.EmbeddedOptionValue
		in.OptionBudget = result.FIA.OptionBudget
		in.ExpectedCredit = result.FIA.ExpectedCredit
		if result.FIA.FairCap > 0 {
			in.CapRate = result.FIA.FairCap
		}
	case ResultRILA:
		in.HasRILA = true
		in.MaxLoss = result.RILA.MaxLoss
		in.MaxLossExpected = result.RILA.MaxLoss
		in.ProtectionValue = result.RILA.ProtectionValue
	}

	return validate.Run(in)
}
