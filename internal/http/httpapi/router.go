package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"scribe/internal/http/handlers"
	"scribe/internal/infra"
	"scribe/internal/middleware"
)

func NewRouter(app *handlers.App, logger *infra.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/readyz", app.Ready)

	r.Post("/v1/pubsub/push", app.PubSubPush)
	r.Post("/v1/batches", app.Batches)

	return r
}
