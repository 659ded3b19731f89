package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/annuity-pricer/internal/batch"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	return New(zerolog.Nop(), false)
}

func TestHandleHealthz(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePrice_MYGA(t *testing.T) {
	s := testServer()
	body := priceRequestBody{
		Product: productBody("MYGA", 1000),
		Market:  marketBody{Spot: 100, RiskFreeRate: 0.05, DividendYield: 0.02, Volatility: 0.20},
	}
	body.Product.FixedRate = 0.03
	body.Product.GuaranteeDurationYrs = 5

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/price", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, float64(0), decoded["Kind"])
}

func TestHandlePrice_RejectsMalformedJSON(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/price", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePrice_RejectsUnknownProductKind(t *testing.T) {
	s := testServer()
	body := priceRequestBody{
		Product: productBody("BOGUS", 1000),
		Market:  marketBody{Spot: 100, RiskFreeRate: 0.05, DividendYield: 0.02, Volatility: 0.20},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/price", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleValidate_MYGAPasses(t *testing.T) {
	s := testServer()
	body := validateRequestBody{priceRequestBody: priceRequestBody{
		Product: productBody("MYGA", 1000),
		Market:  marketBody{Spot: 100, RiskFreeRate: 0.05, DividendYield: 0.02, Volatility: 0.20},
	}}
	body.Product.FixedRate = 0.03
	body.Product.GuaranteeDurationYrs = 5

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/validate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleValidate_DevModeRelaxesHalt(t *testing.T) {
	// GuaranteeDurationYrs=50 is a valid product per product.Validate (only
	// MYGA.GuaranteeDurationYrs >= 1 is enforced there) but HALTs the
	// duration_bounds gate ([0,30] years), exercising Report.Relaxed().
	body := validateRequestBody{priceRequestBody: priceRequestBody{
		Product: productBody("MYGA", 1000),
		Market:  marketBody{Spot: 100, RiskFreeRate: 0.05, DividendYield: 0.02, Volatility: 0.20},
	}}
	body.Product.FixedRate = 0.03
	body.Product.GuaranteeDurationYrs = 50
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	strict := New(zerolog.Nop(), false)
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	strict.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var strictReport map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &strictReport))

	relaxed := New(zerolog.Nop(), true)
	req2 := httptest.NewRequest(http.MethodPost, "/v1/validate", bytes.NewReader(payload))
	rec2 := httptest.NewRecorder()
	relaxed.Routes().ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusOK, rec2.Code)

	var relaxedReport struct {
		Results []struct {
			Status int
		}
	}
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &relaxedReport))
	for _, g := range relaxedReport.Results {
		assert.NotEqual(t, 2, g.Status, "dev mode must downgrade halt (2) to warn (1)")
	}
}

func productBody(kind string, premium float64) batch.ProductYAMLData {
	return batch.ProductYAMLData{Kind: kind, Name: "test-product", Premium: premium}
}
