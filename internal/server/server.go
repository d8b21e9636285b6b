// Package server exposes the prediction pipeline as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"disease-predictor/internal/domain"
	"disease-predictor/internal/ml"
)

const maxBodyBytes = 1 << 20

// RequestMetrics records one count per served request.
type RequestMetrics interface {
	RequestsInc(route string, code int)
}

// Config holds server settings. Zero values fall back to defaults.
type Config struct {
	Port           int
	RequestTimeout time.Duration
	Metrics        RequestMetrics
	// MetricsHandler serves /metrics; defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

// ModelServer provides HTTP API for disease predictions
type ModelServer struct {
	pipeline *ml.Pipeline
	metrics  RequestMetrics
	timeout  time.Duration
	started  time.Time
	handler  http.Handler
	server   *http.Server
}

// PredictionResponse is a prediction result plus display fields.
type PredictionResponse struct {
	ml.Result
	Label           string    `json:"label"`
	PositivePercent float64   `json:"positive_percent"`
	NegativePercent float64   `json:"negative_percent"`
	Latency         float64   `json:"latency_ms"`
	Timestamp       time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// DomainInfo describes one servable domain.
type DomainInfo struct {
	ID            domain.ID  `json:"id"`
	Name          string     `json:"name"`
	PositiveLabel string     `json:"positive_label"`
	NegativeLabel string     `json:"negative_label"`
	Loaded        bool       `json:"loaded"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	Features      []string   `json:"features,omitempty"`
}

// NewModelServer creates a new HTTP server for model serving
func NewModelServer(pipeline *ml.Pipeline, cfg Config) *ModelServer {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MetricsHandler == nil {
		cfg.MetricsHandler = promhttp.Handler()
	}

	ms := &ModelServer{
		pipeline: pipeline,
		metrics:  cfg.Metrics,
		timeout:  cfg.RequestTimeout,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.Handle("POST /v1/predict/{domain}", ms.instrument("predict", ms.handlePredict))
	mux.Handle("POST /v1/predict/{domain}/raw", ms.instrument("predict_raw", ms.handlePredictRaw))
	mux.Handle("GET /v1/domains", ms.instrument("domains", ms.handleDomains))
	mux.Handle("GET /health", ms.instrument("health", ms.handleHealth))
	mux.Handle("GET /metrics", cfg.MetricsHandler)
	ms.handler = mux

	ms.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return ms
}

// Handler returns the routed handler without starting a listener.
func (ms *ModelServer) Handler() http.Handler {
	return ms.handler
}

// Start begins serving HTTP requests. It returns nil after Shutdown.
func (ms *ModelServer) Start() error {
	log.Info().Str("addr", ms.server.Addr).Msg("starting model server")
	if err := ms.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (ms *ModelServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

func (ms *ModelServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := domain.Parse(r.PathValue("domain"))
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := domain.NewRecord(id)
	if err != nil {
		writeError(w, err)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(rec); err != nil {
		writeError(w, &domain.Error{Op: "decode request", Kind: domain.KindMalformedInput, Domain: id, Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ms.timeout)
	defer cancel()

	res, err := ms.pipeline.PredictRecord(ctx, rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPredictionResponse(res, start))
}

func (ms *ModelServer) handlePredictRaw(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := domain.Parse(r.PathValue("domain"))
	if err != nil {
		writeError(w, err)
		return
	}

	var raw domain.RawInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		writeError(w, &domain.Error{Op: "decode request", Kind: domain.KindMalformedInput, Domain: id, Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ms.timeout)
	defer cancel()

	res, err := ms.pipeline.Predict(ctx, id, raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPredictionResponse(res, start))
}

func (ms *ModelServer) handleDomains(w http.ResponseWriter, r *http.Request) {
	reg := ms.pipeline.Registry()

	decls := domain.All()
	out := make([]DomainInfo, 0, len(decls))
	for _, d := range decls {
		info := DomainInfo{
			ID:            d.ID,
			Name:          d.Name,
			PositiveLabel: d.PositiveLabel,
			NegativeLabel: d.NegativeLabel,
			Loaded:        reg.Loaded(d.ID),
		}
		// only report features already in memory; listing must not trigger loads
		if info.Loaded {
			if spec, err := reg.Resolve(d.ID); err == nil {
				info.Features = spec.FeatureNames()
				loadedAt := spec.LoadedAt
				info.LoadedAt = &loadedAt
			}
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (ms *ModelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	reg := ms.pipeline.Registry()

	loaded := []domain.ID{}
	for _, d := range domain.All() {
		if reg.Loaded(d.ID) {
			loaded = append(loaded, d.ID)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": time.Since(ms.started).Seconds(),
		"loaded_domains": loaded,
	})
}

func newPredictionResponse(res ml.Result, start time.Time) PredictionResponse {
	return PredictionResponse{
		Result:          res,
		Label:           res.Label(),
		PositivePercent: res.PositivePercent(),
		NegativePercent: res.NegativePercent(),
		Latency:         float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:       time.Now(),
	}
}

// StatusFor maps an error kind to the HTTP status returned for it.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnknownDomain:
		return http.StatusNotFound
	case domain.KindMalformedInput:
		return http.StatusBadRequest
	case domain.KindClassifierError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), ErrorResponse{Error: err.Error(), Kind: string(domain.KindOf(err))})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
