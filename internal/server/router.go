package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/telhawk-csv/internal/handlers"
	"github.com/telhawk-systems/telhawk-csv/internal/middleware"
)

// NewRouter wires HTTP routes for the csv header service.
func NewRouter(h *handlers.HeaderHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/headers/decode", h.Decode)
	mux.HandleFunc("POST /api/v1/headers/encode", h.Encode)
	mux.HandleFunc("GET /api/v1/headers/{source}", h.Get)
	mux.HandleFunc("DELETE /api/v1/headers/{source}", h.Delete)
	mux.HandleFunc("GET /api/v1/dlq", h.ListDLQ)
	mux.HandleFunc("DELETE /api/v1/dlq", h.PurgeDLQ)
	mux.HandleFunc("DELETE /api/v1/dlq/{id}", h.DeleteDLQ)
	mux.HandleFunc("/healthz", h.Health)
	mux.Handle("/metrics", promhttp.Handler())
	return middleware.RequestID(mux)
}
