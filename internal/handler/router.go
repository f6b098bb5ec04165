package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"confirm.durgadawaghar.com/internal/metrics"
)

// NewRouter wires every route and the middleware stack
func NewRouter(h *Handler, logger *zap.Logger, maxBodyBytes int64) http.Handler {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(RequestSizeLimit(maxBodyBytes))

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	// Pages
	r.Get("/", h.Home)
	r.Post("/parse", h.Parse)
	r.Get("/import", h.Import)
	r.Post("/import/preview", h.ImportPreview)
	r.Post("/import/confirm", h.ImportConfirm)
	r.Get("/confirmations", h.Confirmations)
	r.Get("/rejections", h.Rejections)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/confirmations", h.SubmitConfirmation)
		r.Post("/payments", h.CreatePayment)
		r.Get("/payments/{reference}", h.GetPayment)
	})

	return r
}
