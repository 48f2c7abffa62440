// Package handlers exposes the worker over HTTP: health checks, Pub/Sub push intake
// and batch intake.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"scribe/internal/infra"
	"scribe/internal/orchestrator"
)

// Processor runs processing passes. *orchestrator.Orchestrator satisfies it.
type Processor interface {
	Handle(ctx context.Context, d orchestrator.Delivery) orchestrator.Result
	ProcessBatch(ctx context.Context, deliveries []orchestrator.Delivery) orchestrator.BatchResult
}

// Check is one readiness dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type App struct {
	Processor Processor
	Checks    []Check
	Logger    *infra.Logger
	// DeliveryTimeout is the write budget per processed record. Zero keeps
	// the server's write timeout.
	DeliveryTimeout time.Duration
}

func NewApp(p Processor, logger *infra.Logger, checks ...Check) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{Processor: p, Checks: checks, Logger: logger}
}

// extendWriteDeadline gives the response n delivery budgets from now so a
// long generation is not cut off by the server-wide write timeout.
func (a *App) extendWriteDeadline(w http.ResponseWriter, n int) {
	if a.DeliveryTimeout <= 0 || n <= 0 {
		return
	}
	deadline := time.Now().Add(time.Duration(n) * a.DeliveryTimeout)
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		a.Logger.Warn().Err(err).Msg("http: extend write deadline")
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
