// Package server exposes the pricing engine's programmatic HTTP surface
// (spec.md §6): POST /v1/price, /v1/reserve, /v1/validate, and GET /healthz.
// It holds no state between requests and performs no persistence, grounded
// on the teacher's `trader/internal/server/planning_routes.go` chi-router/
// handler-struct-per-resource shape.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/annuity-pricer/internal/batch"
	"github.com/aristath/annuity-pricer/internal/glwb"
	"github.com/aristath/annuity-pricer/internal/gwb"
	"github.com/aristath/annuity-pricer/internal/market"
	"github.com/aristath/annuity-pricer/internal/pricing"
	"github.com/aristath/annuity-pricer/internal/scenario"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server holds the dependencies every route handler needs.
type Server struct {
	log     zerolog.Logger
	devMode bool // relaxes validation HALTs to WARNs, per config.Config.DevMode
}

// New constructs a Server.
func New(log zerolog.Logger, devMode bool) *Server {
	return &Server{log: log, devMode: devMode}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/price", s.handlePrice)
		r.Post("/reserve", s.handleReserve)
		r.Post("/validate", s.handleValidate)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// marketBody is the wire shape of market.Params.
type marketBody struct {
	Spot          float64 `json:"spot"`
	RiskFreeRate  float64 `json:"riskFreeRate"`
	DividendYield float64 `json:"dividendYield"`
	Volatility    float64 `json:"volatility"`
}

func (m marketBody) toParams() (market.Params, error) {
	return market.New(m.Spot, m.RiskFreeRate, m.DividendYield, m.Volatility)
}

// priceRequestBody is POST /v1/price's body.
type priceRequestBody struct {
	Product      batch.ProductYAMLData `json:"product"`
	Market       marketBody            `json:"market"`
	Seed         uint64                `json:"seed"`
	NumPaths     int                   `json:"numPaths"`
	OptionBudget float64               `json:"optionBudget"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var body priceRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := body.Product.ToProduct()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	m, err := body.Market.toParams()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	req := pricing.Request{
		Product:      p,
		Market:       m,
		Premium:      body.Product.Premium,
		Seed:         body.Seed,
		NumPaths:     body.NumPaths,
		OptionBudget: body.OptionBudget,
	}

	result, err := pricing.Price(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.log.Info().Str("product", body.Product.Name).Str("kind", body.Product.Kind).Msg("priced product")
	writeJSON(w, http.StatusOK, result)
}

// glwbRequestBody is the GLWB rider (policy) side of POST /v1/reserve.
// MortalityTable is never
// accepted over the wire (it is a Go function value, not JSON data) — the
// engine always falls back to the Gompertz default for HTTP callers.
type glwbRequestBody struct {
	Premium      float64    `json:"premium"`
	Age          int        `json:"age"`
	RiskFreeRate float64    `json:"riskFreeRate"`
	Volatility   float64    `json:"volatility"`
	GWBConfig    gwb.Config `json:"gwbConfig"`
	NumPaths     int        `json:"numPaths"`
	Seed         uint64     `json:"seed"`
}

func (b glwbRequestBody) toInputs() glwb.Inputs {
	return glwb.Inputs{
		GWBConfig:    b.GWBConfig,
		Premium:      b.Premium,
		Age:          b.Age,
		RiskFreeRate: b.RiskFreeRate,
		Volatility:   b.Volatility,
		NumPaths:     b.NumPaths,
		Seed:         b.Seed,
	}
}

// reserveRequestBody is POST /v1/reserve's body: a GLWB policy plus the
// scenario-generation parameters (spec.md §6's `reserve(policy,
// scenarioParams, seed)`).
type reserveRequestBody struct {
	Policy      glwbRequestBody        `json:"policy"`
	ScenarioCfg scenario.GenerateConfig `json:"scenarioConfig"`
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	var body reserveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := pricing.Reserve(pricing.ReserveRequest{
		Policy:      body.Policy.toInputs(),
		ScenarioCfg: body.ScenarioCfg,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.log.Info().Int("numScenarios", body.ScenarioCfg.NumScenarios).Msg("computed reserve")
	writeJSON(w, http.StatusOK, result)
}

// validateRequestBody wraps a priceRequestBody so /v1/validate can price and
// validate a product in one round trip, matching spec.md §6's `validate`
// call while sparing HTTP callers from re-POSTing a PricingResult they
// cannot construct client-side (the result carries no exported constructor).
type validateRequestBody struct {
	priceRequestBody
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var body validateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := body.Product.ToProduct()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	m, err := body.Market.toParams()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	req := pricing.Request{
		Product:      p,
		Market:       m,
		Premium:      body.Product.Premium,
		Seed:         body.Seed,
		NumPaths:     body.NumPaths,
		OptionBudget: body.OptionBudget,
	}

	result, err := pricing.Price(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	pv, duration := pricing.PVAndDurationFor(result, body.Product.Premium)
	report := pricing.Validate(result, body.Product.Premium, pv, duration)
	if s.devMode {
		report = report.Relaxed()
	}

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
