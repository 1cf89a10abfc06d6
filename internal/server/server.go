// Package server exposes the comparison engine over HTTP using fasthttp.
package server

import (
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/moneysplit/moneysplit/internal/compare"
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/forecast"
	"github.com/moneysplit/moneysplit/internal/registry"
	"github.com/moneysplit/moneysplit/internal/store"
	"github.com/moneysplit/moneysplit/internal/taxengine"
)

// Server routes API requests to the engines. The store is optional; when
// nil the forecast endpoint reports 503 and runs are not persisted.
type Server struct {
	calc    *taxengine.Engine
	cmp     *compare.Engine
	reg     *registry.Registry
	store   *store.Store
	log     *zap.Logger
	metrics *Metrics
}

// New builds a Server around an already-wired engine.
func New(calc *taxengine.Engine, cmp *compare.Engine, reg *registry.Registry, st *store.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		calc:    calc,
		cmp:     cmp,
		reg:     reg,
		store:   st,
		log:     log,
		metrics: NewMetrics(),
	}
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("server starting", zap.String("addr", addr))
	return fasthttp.ListenAndServe(addr, s.Handler)
}

// Handler is the fasthttp entry point.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	s.metrics.requests.Add(1)
	requestID := uuid.NewString()
	ctx.Response.Header.Set("X-Request-ID", requestID)

	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/healthz" && method == fasthttp.MethodGet:
		s.handleHealth(ctx)
	case path == "/metrics" && method == fasthttp.MethodGet:
		s.handleMetrics(ctx)
	case path == "/api/v1/compare" && method == fasthttp.MethodPost:
		s.handleCompare(ctx, requestID)
	case path == "/api/v1/calculate" && method == fasthttp.MethodPost:
		s.handleCalculate(ctx, requestID)
	case path == "/api/v1/brackets" && method == fasthttp.MethodGet:
		s.handleBrackets(ctx, requestID)
	case path == "/api/v1/forecast" && method == fasthttp.MethodGet:
		s.handleForecast(ctx, requestID)
	default:
		s.writeError(ctx, requestID, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleCompare(ctx *fasthttp.RequestCtx, requestID string) {
	var req CompareRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, requestID, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	project, err := req.Project()
	if err != nil {
		s.writeDomainError(ctx, requestID, err)
		return
	}

	cmp := s.cmp
	if req.IncludeReinvest {
		cmp = compare.NewEngine(s.calc)
		cmp.Options.IncludeReinvest = true
	}

	result, err := cmp.Compare(ctx, &project)
	if err != nil {
		s.writeDomainError(ctx, requestID, err)
		return
	}
	s.metrics.comparisons.Add(1)

	if s.store != nil && result.Optimal != nil {
		if _, err := s.store.SaveRecord(ctx, store.Record{
			Country:         project.Country,
			State:           project.State,
			Revenue:         project.Revenue,
			Costs:           project.Costs,
			NumPeople:       project.NumPeople,
			OptimalStrategy: result.Optimal.Strategy.String(),
			TotalTax:        result.Optimal.TotalTax,
			NetIncome:       result.Optimal.NetIncomeGroup,
		}); err != nil {
			// Persistence is best effort for API callers.
			s.log.Warn("failed to save comparison record", zap.String("requestId", requestID), zap.Error(err))
		}
	}

	s.log.Info("comparison served",
		zap.String("requestId", requestID),
		zap.String("country", project.Country),
		zap.String("optimal", result.Recommendation.Choice))
	s.writeJSON(ctx, fasthttp.StatusOK, compareResponse(result))
}

func (s *Server) handleCalculate(ctx *fasthttp.RequestCtx, requestID string) {
	var req CompareRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, requestID, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	project, err := req.Project()
	if err != nil {
		s.writeDomainError(ctx, requestID, err)
		return
	}

	result, err := s.calc.SimulatePreferred(ctx, &project)
	if err != nil {
		s.writeDomainError(ctx, requestID, err)
		return
	}
	s.metrics.calculations.Add(1)

	s.log.Info("calculation served",
		zap.String("requestId", requestID),
		zap.String("country", project.Country),
		zap.String("strategy", result.Strategy.String()))
	s.writeJSON(ctx, fasthttp.StatusOK, strategyDTO(result))
}

func (s *Server) handleBrackets(ctx *fasthttp.RequestCtx, requestID string) {
	country := string(ctx.QueryArgs().Peek("country"))
	if country == "" {
		s.writeError(ctx, requestID, fasthttp.StatusBadRequest, "country query parameter is required")
		return
	}

	taxType := domain.TaxTypeIndividual
	if raw := string(ctx.QueryArgs().Peek("taxType")); raw != "" {
		parsed, err := domain.ParseTaxType(raw)
		if err != nil {
			s.writeDomainError(ctx, requestID, err)
			return
		}
		taxType = parsed
	}

	brackets, err := s.reg.Brackets(ctx, country, taxType)
	if err != nil {
		s.writeDomainError(ctx, requestID, err)
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"country":  country,
		"taxType":  taxType.String(),
		"brackets": bracketDTOs(brackets),
	})
}

func (s *Server) handleForecast(ctx *fasthttp.RequestCtx, requestID string) {
	if s.store == nil {
		s.writeError(ctx, requestID, fasthttp.StatusServiceUnavailable, "forecasting requires a database")
		return
	}

	months := 3
	if raw := string(ctx.QueryArgs().Peek("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 24 {
			s.writeError(ctx, requestID, fasthttp.StatusBadRequest, "months must be an integer between 1 and 24")
			return
		}
		months = parsed
	}

	totals, err := s.store.MonthlyTotals(ctx)
	if err != nil {
		s.writeError(ctx, requestID, fasthttp.StatusInternalServerError, "failed to load history")
		s.log.Error("monthly totals query failed", zap.String("requestId", requestID), zap.Error(err))
		return
	}

	history := make([]forecast.Point, len(totals))
	for i, t := range totals {
		history[i] = forecast.Point{Month: t.Month, Revenue: t.Revenue}
	}

	fc, err := forecast.Revenue(history, months)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			s.writeError(ctx, requestID, fasthttp.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(ctx, requestID, fasthttp.StatusInternalServerError, "forecast failed")
		s.log.Error("forecast failed", zap.String("requestId", requestID), zap.Error(err))
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, fc)
}

// writeDomainError maps engine errors onto status codes: bad input is 400,
// missing configuration is 422, anything else is a 500.
func (s *Server) writeDomainError(ctx *fasthttp.RequestCtx, requestID string, err error) {
	var invalidInput *domain.InvalidInputError
	var unsupportedCountry *domain.UnsupportedCountryError
	var unsupportedStrategy *domain.UnsupportedStrategyError
	var configuration *domain.ConfigurationError

	switch {
	case errors.As(err, &invalidInput):
		s.writeError(ctx, requestID, fasthttp.StatusBadRequest, err.Error())
	case errors.As(err, &unsupportedCountry), errors.As(err, &unsupportedStrategy), errors.As(err, &configuration):
		s.writeError(ctx, requestID, fasthttp.StatusUnprocessableEntity, err.Error())
	default:
		s.writeError(ctx, requestID, fasthttp.StatusInternalServerError, "internal error")
		s.log.Error("request failed", zap.String("requestId", requestID), zap.Error(err))
	}
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(payload); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, requestID string, status int, message string) {
	if status >= fasthttp.StatusBadRequest {
		s.metrics.errors.Add(1)
	}
	s.writeJSON(ctx, status, ErrorResponse{
		Status:    status,
		Message:   message,
		RequestID: requestID,
	})
}
