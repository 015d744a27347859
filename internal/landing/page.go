package landing

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"time"

	"gamepulse/internal/config"
	"gamepulse/internal/section"
)

//go:embed templates/page.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "templates/page.html"))

// Page - собранная страница: заголовок и области обеих секций.
type Page struct {
	Title       string
	Lang        string
	Trending    section.Region
	News        section.Region
	GeneratedAt time.Time
}

// Write выводит страницу целиком.
func (p Page) Write(w io.Writer) error {
	return pageTemplate.ExecuteTemplate(w, "page.html", p)
}

// Builder собирает страницу: на каждую загрузку создаёт свежие секции,
// запускает их через Orchestrator и ждёт, пока обе завершатся.
type Builder struct {
	cfg      config.LandingConfig
	fetcher  section.Fetcher
	trending section.Renderer
	news     section.Renderer
	observer section.Observer
	log      *slog.Logger
	now      func() time.Time
}

// NewBuilder создает Builder. observer может быть nil.
func NewBuilder(
	cfg config.LandingConfig,
	fetcher section.Fetcher,
	trending section.Renderer,
	news section.Renderer,
	observer section.Observer,
	log *slog.Logger,
) *Builder {
	return &Builder{
		cfg:      cfg,
		fetcher:  fetcher,
		trending: trending,
		news:     news,
		observer: observer,
		log:      log,
		now:      time.Now,
	}
}

// Build выполняет одну загрузку страницы.
func (b *Builder) Build(ctx context.Context) Page {
	trending := section.New(section.Config{
		Name:         "trending",
		Path:         b.cfg.TrendingPath,
		ErrorMessage: b.cfg.TrendingError,
	}, b.fetcher, b.trending, b.log)
	news := section.New(section.Config{
		Name:         "news",
		Path:         b.cfg.NewsPath,
		ErrorMessage: b.cfg.NewsError,
	}, b.fetcher, b.news, b.log)
	if b.observer != nil {
		trending.WithObserver(b.observer)
		news.WithObserver(b.observer)
	}

	NewOrchestrator(b.log, trending, news).Start(ctx).Wait()

	return Page{
		Title:       b.cfg.Title,
		Lang:        "en",
		Trending:    trending.Region(),
		News:        news.Region(),
		GeneratedAt: b.now(),
	}
}
