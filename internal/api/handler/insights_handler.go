package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/model"
	"go-insights-engine/internal/pipeline"
)

// Service is the query surface the handlers call.
type Service interface {
	Query(ctx context.Context, shape string, params pipeline.Params) (*model.Result, error)
	Records(ctx context.Context, params pipeline.Params) ([]model.Record, error)
	AllRecords(ctx context.Context) ([]model.Record, error)
	FilterOptions(ctx context.Context) (*pipeline.FilterOptions, error)
}

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Handler serves the insights endpoints.
type Handler struct {
	svc    Service
	pinger Pinger
	log    logger.Logger
}

// New returns a Handler. pinger may be nil, in which case /healthz always
// reports ok.
func New(svc Service, pinger Pinger, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{svc: svc, pinger: pinger, log: log}
}

// GetAllData returns every record
// @Summary List records
// @Description Return every stored record
// @Tags data
// @Produce json
// @Success 200 {array} model.Record
// @Failure 500 {object} ErrorResponse "Record store failure"
// @Router /data [get]
func (h *Handler) GetAllData(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.AllRecords(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetFilteredData returns the records matching the query parameters
// @Summary Filter records
// @Description Return records matching every given filter (end_year, topic, sector, region, pestle, source, country)
// @Tags data
// @Produce json
// @Param end_year query string false "End year"
// @Param topic query string false "Topic"
// @Param sector query string false "Sector"
// @Param region query string false "Region"
// @Param pestle query string false "PESTLE category"
// @Param source query string false "Source"
// @Param country query string false "Country"
// @Success 200 {array} model.Record
// @Failure 500 {object} ErrorResponse "Record store failure"
// @Router /data/filter [get]
func (h *Handler) GetFilteredData(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Records(r.Context(), pipeline.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetFilterOptions lists the distinct values of each filterable field
// @Summary Filter options
// @Description Distinct non-blank values of every filterable field
// @Tags data
// @Produce json
// @Success 200 {object} pipeline.FilterOptions
// @Failure 500 {object} ErrorResponse "Record store failure"
// @Router /data/filters [get]
func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.FilterOptions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// GetStats returns the global averages and record count
// @Summary Summary statistics
// @Description Average intensity, likelihood and relevance plus the record count over the filtered records. Empty object when nothing matches.
// @Tags aggregations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse "Record store failure"
// @Router /data/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Query(r.Context(), pipeline.ShapeStats, pipeline.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(result.Rows) == 0 {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, result.Rows[0])
}

// Shape returns a handler that runs the named shape with the request's
// query parameters as filters.
func (h *Handler) Shape(shape string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		h.runShape(w, r, shape)
	}
}

// GetShape runs any built-in shape by name
// @Summary Run a query shape
// @Description Run the named aggregation (intensity-by-year, topics-distribution, likelihood-by-region, relevance-by-sector, country-distribution, stats)
// @Tags aggregations
// @Produce json
// @Param shape path string true "Shape name"
// @Success 200 {array} model.Row
// @Failure 400 {object} ErrorResponse "Unknown shape"
// @Failure 500 {object} ErrorResponse "Record store failure"
// @Failure 504 {object} ErrorResponse "Query timed out"
// @Router /data/query/{shape} [get]
func (h *Handler) GetShape(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	h.runShape(w, r, parts[len(parts)-1])
}

func (h *Handler) runShape(w http.ResponseWriter, r *http.Request, shape string) {
	result, err := h.svc.Query(r.Context(), shape, pipeline.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rows := result.Rows
	if rows == nil {
		rows = []model.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Health reports store reachability
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse "Record store unreachable"
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.log.Warn("Health check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: "record store unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeJSON(w, status, ErrorResponse{Message: err.Error()})
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var ce *pipeline.ConfigError
	switch {
	case errors.As(err, &ce):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
