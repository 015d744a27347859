package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"gamepulse/internal/adapter/fetcher"
	"gamepulse/internal/adapter/parser"
	"gamepulse/internal/config"
	"gamepulse/internal/domain"
	"gamepulse/internal/migrations"
	server "gamepulse/internal/transport/http"
	"gamepulse/internal/usecase"
	"gamepulse/internal/worker"
	"gamepulse/storage"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

// FeedService - сервис лент: фоновая загрузка RSS в PostgreSQL и JSON API поверх неё.
type FeedService struct {
	config  *config.Config
	logger  *slog.Logger
	server  *http.Server
	worker  *worker.Worker
	storage storage.Storage
}

// NewFeedService подключается к базе (с повторами), применяет миграции,
// заполняет таблицу трендов и собирает все зависимости сервиса.
func NewFeedService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*FeedService, error) {
	dbPool, err := connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := migrations.Apply(ctx, log, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	db := storage.NewPostgresDB(dbPool, log)

	feedNames := make(map[string]string, len(cfg.App.FeedURLs))
	urls := make([]string, 0, len(cfg.App.FeedURLs))
	for _, feed := range cfg.App.FeedURLs {
		feedNames[feed.URL] = feed.Name
		urls = append(urls, feed.URL)
	}

	feedProcessor := usecase.NewFeedProcessingUseCase(
		fetcher.NewHTTPFetcher(log),
		parser.NewXMLParser(log),
		db,
		log,
		feedNames,
	)
	newsGetter := usecase.NewNewsGetterUseCase(db, cfg.App.DefaultNewsLimit, cfg.App.MaxNewsLimit)
	trending := usecase.NewTrendingUseCase(db, cfg.App.TrendingLimit, log)
	if err := trending.Seed(ctx, trendingEntries(cfg.App.TrendingGames)); err != nil {
		db.Close()
		return nil, err
	}

	interval, err := time.ParseDuration(cfg.App.ProcessingInterval)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bad processing interval: %w", err)
	}

	handler := server.NewHandler(log, newsGetter, trending)
	return &FeedService{
		config:  cfg,
		logger:  log,
		storage: db,
		worker:  worker.New(feedProcessor, urls, interval, log),
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           server.NewAPIServer(log, handler, cfg.Server.RateLimit),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run запускает воркер и HTTP-сервер и блокируется до отмены ctx.
func (a *FeedService) Run(ctx context.Context) error {
	a.logger.Info("Starting feed service",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.worker.URLs())),
		slog.String("processing_interval", a.worker.Interval().String()),
	)
	a.worker.Start(ctx)
	defer a.storage.Close()
	defer a.worker.Stop()
	return serve(ctx, a.server, a.logger)
}

// connect открывает пул соединений и проверяет его пингом,
// повторяя попытки с экспоненциальной задержкой.
func connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err = backoff.RetryNotify(
		func() error { return pool.Ping(ctx) },
		policy,
		func(err error, wait time.Duration) {
			log.Warn("Database ping failed, retrying",
				slog.String("component", "database"),
				slog.Duration("wait", wait),
				slog.Any("error", err),
			)
		},
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("Database connection established", slog.String("component", "database"))
	return pool, nil
}

func trendingEntries(games []config.TrendingGame) []domain.TrendingEntry {
	out := make([]domain.TrendingEntry, 0, len(games))
	for _, g := range games {
		entry := domain.TrendingEntry{
			GameSummary: domain.GameSummary{Name: g.Name, Cover: g.Cover},
			Score:       g.Score,
		}
		if g.Rating != nil {
			entry.Rating = ratingNumber(*g.Rating)
		}
		out = append(out, entry)
	}
	return out
}

func ratingNumber(v float64) *json.Number {
	n := json.Number(strconv.FormatFloat(v, 'f', -1, 64))
	return &n
}

// serve обслуживает srv до отмены ctx, затем выполняет graceful shutdown.
func serve(ctx context.Context, srv *http.Server, log *slog.Logger) error {
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	log.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received", slog.String("component", "app"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", slog.String("component", "server"), slog.Any("error", err))
		return err
	}
	log.Info("HTTP server stopped gracefully", slog.String("component", "server"))
	return nil
}
