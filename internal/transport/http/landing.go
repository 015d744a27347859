package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"gamepulse/internal/landing"
)

type pageBuilder interface {
	Build(ctx context.Context) landing.Page
}

// LandingHandler отдаёт страницу-лендинг. Каждый запрос - отдельная загрузка страницы.
type LandingHandler struct {
	log     *slog.Logger
	builder pageBuilder
}

func NewLandingHandler(log *slog.Logger, builder pageBuilder) *LandingHandler {
	return &LandingHandler{log: log, builder: builder}
}

func (h *LandingHandler) index(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/index"
	page := h.builder.Build(r.Context())
	var buf bytes.Buffer
	if err := page.Write(&buf); err != nil {
		h.log.Error("Failed to render page",
			slog.String("op", op),
			slog.String("request_id", getRequestID(r.Context())),
			slog.Any("error", err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
