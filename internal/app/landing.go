package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gamepulse/internal/adapter/feedclient"
	"gamepulse/internal/config"
	"gamepulse/internal/landing"
	"gamepulse/internal/render"
	server "gamepulse/internal/transport/http"
)

// Landing собирает страницу-лендинг из двух лент сервиса.
type Landing struct {
	cfg     config.LandingConfig
	logger  *slog.Logger
	builder *landing.Builder
}

// NewLanding создает лендинг, обращающийся к сервису по cfg.Landing.APIBaseURL.
func NewLanding(cfg *config.Config, log *slog.Logger, opts ...feedclient.Option) *Landing {
	client := feedclient.New(cfg.Landing.APIBaseURL, log, opts...)
	return &Landing{
		cfg:    cfg.Landing,
		logger: log,
		builder: landing.NewBuilder(
			cfg.Landing,
			client,
			render.NewTrending(),
			render.NewNews(),
			landing.MetricsObserver{},
			log,
		),
	}
}

// RenderOnce выполняет одну загрузку страницы и пишет её в w.
func (l *Landing) RenderOnce(ctx context.Context, w io.Writer) error {
	return l.builder.Build(ctx).Write(w)
}

// Run обслуживает страницу по HTTP до отмены ctx.
func (l *Landing) Run(ctx context.Context) error {
	l.logger.Info("Starting landing server",
		slog.String("component", "app"),
		slog.String("api_base_url", l.cfg.APIBaseURL),
	)
	srv := &http.Server{
		Addr:              l.cfg.Address,
		Handler:           server.NewLandingServer(l.logger, server.NewLandingHandler(l.logger, l.builder)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, l.logger)
}
