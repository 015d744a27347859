package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAPIServer создает роутер JSON API сервиса лент.
// rateLimit - число запросов в минуту с одного IP; 0 отключает ограничение.
func NewAPIServer(log *slog.Logger, h *Handler, rateLimit int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/api/health", h.healthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if rateLimit > 0 {
			r.Use(httprate.LimitByIP(rateLimit, time.Minute))
		}
		r.Get("/api/ping", h.ping)
		r.Get("/api/news", h.getNews)
		r.Get("/api/trending", h.getTrending)
		r.Get("/api/article/{id}", h.getArticle)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"ping":   "/api/ping",
			"news":   "/api/news?limit=5",
		})
	})
	return r
}

// NewLandingServer создает роутер страницы-лендинга.
func NewLandingServer(log *slog.Logger, h *LandingHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/", h.index)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
