package server

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/moneysplit/moneysplit/internal/compare"
	"github.com/moneysplit/moneysplit/internal/registry"
	"github.com/moneysplit/moneysplit/internal/store"
	"github.com/moneysplit/moneysplit/internal/taxengine"
)

func newTestServer(t *testing.T, st *store.Store) *Server {
	t.Helper()
	reg := registry.New()
	calc := taxengine.NewEngine(reg, nil)
	return New(calc, compare.NewEngine(calc), reg, st, nil)
}

func serve(s *Server, method, uri string, body []byte) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != nil {
		req.SetBody(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.Handler(ctx)
	return ctx
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodGet, "/healthz", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))
	assert.Contains(t, string(ctx.Response.Body()), "ok")
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestMethodMismatchIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodGet, "/api/v1/compare", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestCompareEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	body := []byte(`{"revenue": 80000, "costs": 0, "numPeople": 2, "country": "US"}`)
	ctx := serve(s, fasthttp.MethodPost, "/api/v1/compare", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp CompareResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))

	require.Len(t, resp.AllStrategies, 4)
	require.NotNil(t, resp.Optimal)
	assert.Equal(t, "individual", resp.Optimal.Strategy)
	assert.InDelta(t, 70559.00, resp.Optimal.NetIncomeGroup, 0.001)
	assert.InDelta(t, 22033.87, resp.Recommendation.Savings, 0.001)
	assert.Equal(t, "Individual Tax", resp.Recommendation.Choice)
}

func TestCompareEndpointPersistsRecord(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := newTestServer(t, st)
	body := []byte(`{"revenue": 80000, "numPeople": 1, "country": "US"}`)
	ctx := serve(s, fasthttp.MethodPost, "/api/v1/compare", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	saveCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	records, err := st.ListRecords(saveCtx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "US", records[0].Country)
	assert.Equal(t, "individual", records[0].OptimalStrategy)
	assert.True(t, records[0].Revenue.Equal(decimal.NewFromInt(80000)))
}

func TestCompareEndpointBadJSON(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodPost, "/api/v1/compare", []byte(`{"revenue":`))
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestCompareEndpointInvalidInput(t *testing.T) {
	s := newTestServer(t, nil)
	body := []byte(`{"revenue": -5, "numPeople": 1, "country": "US"}`)
	ctx := serve(s, fasthttp.MethodPost, "/api/v1/compare", body)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Contains(t, resp.Message, "revenue")
	assert.NotEmpty(t, resp.RequestID)
}

func TestCompareEndpointUnknownCountry(t *testing.T) {
	s := newTestServer(t, nil)
	body := []byte(`{"revenue": 80000, "numPeople": 1, "country": "Mars"}`)
	ctx := serve(s, fasthttp.MethodPost, "/api/v1/compare", body)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
}

func TestCalculateEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	body := []byte(`{"revenue": 80000, "numPeople": 2, "country": "US", "taxType": "Business", "distributionMethod": "Dividend"}`)
	ctx := serve(s, fasthttp.MethodPost, "/api/v1/calculate", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp StrategyResultDTO
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "business_dividend", resp.Strategy)
	assert.InDelta(t, 26280.00, resp.TotalTax, 0.001)
	assert.InDelta(t, 53720.00, resp.NetIncomeGroup, 0.001)
}

func TestBracketsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodGet, "/api/v1/brackets?country=US&taxType=Business", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp struct {
		Country  string       `json:"country"`
		TaxType  string       `json:"taxType"`
		Brackets []BracketDTO `json:"brackets"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "US", resp.Country)
	assert.Equal(t, "Business", resp.TaxType)
	require.Len(t, resp.Brackets, 1)
	assert.Nil(t, resp.Brackets[0].IncomeLimit, "flat corporate bracket is unbounded")
	assert.InDelta(t, 0.21, resp.Brackets[0].Rate, 1e-9)
}

func TestBracketsEndpointRequiresCountry(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodGet, "/api/v1/brackets", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestBracketsEndpointUnknownCountry(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodGet, "/api/v1/brackets?country=Mars", nil)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
}

func TestForecastEndpointWithoutStore(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := serve(s, fasthttp.MethodGet, "/api/v1/forecast", nil)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
}

func TestForecastEndpointInsufficientHistory(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := newTestServer(t, st)
	ctx := serve(s, fasthttp.MethodGet, "/api/v1/forecast", nil)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
}

func TestForecastEndpointInvalidMonths(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := newTestServer(t, st)
	for _, months := range []string{"0", "25", "abc"} {
		ctx := serve(s, fasthttp.MethodGet, "/api/v1/forecast?months="+months, nil)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), "months=%s", months)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	serve(s, fasthttp.MethodPost, "/api/v1/compare",
		[]byte(`{"revenue": 80000, "numPeople": 1, "country": "US"}`))

	ctx := serve(s, fasthttp.MethodGet, "/metrics", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var snap Snapshot
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &snap))
	assert.Equal(t, int64(2), snap.Requests)
	assert.Equal(t, int64(1), snap.Comparisons)
}
