// Package service exposes a loaded JSON document over HTTP.
//
// The QueryService is the main component of this package, providing:
// - a POST /query endpoint accepting a JSON query description
// - a GET /healthz endpoint for liveness checks
// - HTTP server lifecycle management with context-driven shutdown
// - CORS handling driven by the service configuration
//
// Usage:
//
//	// Create a query service around a parsed document
//	qs := service.NewQueryService(cfg, base, logger)
//
//	// Start serving
//	qs.Start(ctx)
//
//	// Later, gracefully shut down
//	qs.Shutdown(ctx)
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/sjonq/sjonq-go/internal/app/config"
	"github.com/sjonq/sjonq-go/sjonq"
)

// QueryService serves query requests against a base document and manages
// the HTTP server lifecycle.
type QueryService struct {
	server  *http.Server
	router  *http.ServeMux
	base    *sjonq.JSONQuery
	cfg     config.Config
	logger  *zap.Logger
	mu      sync.RWMutex
	started bool
}

// NewQueryService creates a query service around a parsed base document.
// The base instance is never mutated; every request runs against an
// independent deep copy.
func NewQueryService(cfg config.Config, base *sjonq.JSONQuery, logger *zap.Logger) *QueryService {
	qs := &QueryService{
		router: http.NewServeMux(),
		base:   base,
		cfg:    cfg,
		logger: logger,
	}
	qs.router.HandleFunc("POST /query", qs.handleQuery)
	qs.router.HandleFunc("GET /healthz", qs.handleHealth)
	return qs
}

// Handler returns the full request handler including CORS middleware.
func (qs *QueryService) Handler() http.Handler {
	return CORSMiddleware(qs.router, qs.cfg.CORS)
}

// Start begins serving on the configured address. The server shuts down
// when ctx is cancelled.
func (qs *QueryService) Start(ctx context.Context) error {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.started {
		return fmt.Errorf("query service already started")
	}

	qs.server = &http.Server{
		Addr:    qs.cfg.Server.ListenAddr,
		Handler: qs.Handler(),
	}

	go func() {
		qs.logger.Info("starting HTTP server", zap.String("addr", qs.cfg.Server.ListenAddr))
		if err := qs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			qs.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		qs.logger.Info("shutting down HTTP server")
		if err := qs.server.Shutdown(context.Background()); err != nil {
			qs.logger.Error("error shutting down HTTP server", zap.Error(err))
		}
	}()

	qs.started = true
	return nil
}

// Shutdown gracefully shuts down the server.
func (qs *QueryService) Shutdown(ctx context.Context) error {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.server != nil && qs.started {
		qs.started = false
		return qs.server.Shutdown(ctx)
	}
	return nil
}

func (qs *QueryService) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (qs *QueryService) handleQuery(w http.ResponseWriter, r *http.Request) {
	result, err := qs.runQuery(r)
	if err != nil {
		qs.logger.Warn("query failed", zap.Error(err))
		writeJSON(w, statusFor(err), map[string]interface{}{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

func statusFor(err error) int {
	switch err.(type) {
	case *errBadRequest:
		return http.StatusBadRequest
	case *sjonq.ErrPathNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
