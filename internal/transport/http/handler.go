package http

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gamepulse/internal/domain"
	"gamepulse/storage"

	"github.com/go-chi/chi/v5"
)

type newsGetter interface {
	GetNews(ctx context.Context, limit int, query string) ([]domain.Article, error)
	GetArticle(ctx context.Context, id string) (domain.Article, error)
}

type trendingGetter interface {
	Trending(ctx context.Context, limit int) ([]domain.GameSummary, error)
}

// Handler обслуживает JSON API сервиса лент.
type Handler struct {
	log      *slog.Logger
	news     newsGetter
	trending trendingGetter
	now      func() time.Time
}

func NewHandler(log *slog.Logger, news newsGetter, trending trendingGetter) *Handler {
	return &Handler{
		log:      log,
		news:     news,
		trending: trending,
		now:      time.Now,
	}
}

type newsResponse struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Link    string     `json:"link"`
	Image   string     `json:"image"`
	Excerpt string     `json:"excerpt"`
	Source  string     `json:"source"`
	PubDate *time.Time `json:"pubDate"`
}

type articleResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	Link        string     `json:"link"`
	PubDate     *time.Time `json:"pubDate"`
	Image       string     `json:"image"`
	ContentHTML string     `json:"content_html"`
	Attribution string     `json:"attribution"`
}

// getNews - GET /api/news?limit=&q=
func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getNews"
	log := h.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))
	limit, ok := parseLimit(w, r, log)
	if !ok {
		return
	}
	articles, err := h.news.GetNews(r.Context(), limit, r.URL.Query().Get("q"))
	if err != nil {
		log.Error("Failed to get news", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	out := make([]newsResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, newsResponse{
			ID:      a.ID,
			Title:   a.Title,
			URL:     a.Link,
			Link:    a.Link,
			Image:   a.Image,
			Excerpt: a.Excerpt,
			Source:  a.Source,
			PubDate: a.PubDate,
		})
	}
	respondWithJSON(w, http.StatusOK, out)
}

// getTrending - GET /api/trending?limit=
func (h *Handler) getTrending(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getTrending"
	log := h.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))
	limit, ok := parseLimit(w, r, log)
	if !ok {
		return
	}
	games, err := h.trending.Trending(r.Context(), limit)
	if err != nil {
		log.Error("Failed to get trending games", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if games == nil {
		games = []domain.GameSummary{}
	}
	respondWithJSON(w, http.StatusOK, games)
}

// getArticle - GET /api/article/{id}
func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getArticle"
	log := h.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))
	id := chi.URLParam(r, "id")
	a, err := h.news.GetArticle(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		log.Error("Failed to get article", slog.String("id", id), slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	content := a.ContentHTML
	if content == "" {
		content = "<p>" + html.EscapeString(a.Excerpt) + "</p>"
	}
	respondWithJSON(w, http.StatusOK, articleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Source:      a.Source,
		Link:        a.Link,
		PubDate:     a.PubDate,
		Image:       a.Image,
		ContentHTML: content,
		Attribution: "Preview from " + a.Source + " (RSS). Full story at the source.",
	})
}

// ping - GET /api/ping
func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"ts": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseLimit(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		log.Warn("Invalid limit parameter", slog.String("limit", limitStr))
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return 0, false
	}
	return limit, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
