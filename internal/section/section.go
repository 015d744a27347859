package section

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"
)

// State - состояние секции страницы.
type State int

const (
	Idle State = iota
	Loading
	Rendered
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Fetcher запрашивает JSON-ресурс у сервиса лент.
type Fetcher interface {
	FetchResource(ctx context.Context, path string) (any, error)
}

// Renderer превращает JSON-значение в HTML-фрагмент.
type Renderer interface {
	RenderValue(value any) (string, error)
}

// Region - то, что секция выводит на страницу: контейнер с разметкой
// и парный элемент ошибки, который виден только в состоянии Errored.
type Region struct {
	Markup       template.HTML
	ErrorVisible bool
	ErrorText    string
}

// Observer получает итог каждой секции; используется для метрик.
type Observer interface {
	SectionSettled(name string, state State, duration time.Duration)
}

// Controller ведёт одну секцию через Idle → Loading → Rendered | Errored.
// Оба конечных состояния окончательные: повторный Run ничего не делает.
type Controller struct {
	name     string
	path     string
	message  string
	fetcher  Fetcher
	renderer Renderer
	observer Observer
	log      *slog.Logger

	mu     sync.Mutex
	state  State
	region Region
	err    error
}

// Config описывает одну секцию.
type Config struct {
	Name         string
	Path         string
	ErrorMessage string
}

// New создает контроллер секции в состоянии Idle.
func New(cfg Config, fetcher Fetcher, renderer Renderer, log *slog.Logger) *Controller {
	return &Controller{
		name:     cfg.Name,
		path:     cfg.Path,
		message:  cfg.ErrorMessage,
		fetcher:  fetcher,
		renderer: renderer,
		log: log.With(
			slog.String("component", "section"),
			slog.String("section", cfg.Name),
		),
	}
}

// WithObserver подключает наблюдателя за итогами секции.
func (c *Controller) WithObserver(o Observer) *Controller {
	c.observer = o
	return c
}

// Name возвращает имя секции.
func (c *Controller) Name() string { return c.name }

// Run запрашивает ленту, отображает её и записывает результат в Region.
// Любая ошибка (сеть, статус ответа, разбор записей, паника при отрисовке)
// переводит секцию в Errored и не выходит за её пределы.
func (c *Controller) Run(ctx context.Context) {
	const op = "section.Run"
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return
	}
	c.state = Loading
	c.mu.Unlock()

	start := time.Now()
	log := c.log.With(slog.String("op", op), slog.String("path", c.path))
	log.Debug("Section loading")

	markup, err := c.load(ctx)

	c.mu.Lock()
	if err != nil {
		c.state = Errored
		c.err = err
		c.region = Region{ErrorVisible: true, ErrorText: c.message}
	} else {
		c.state = Rendered
		c.region = Region{Markup: template.HTML(markup)}
	}
	state := c.state
	c.mu.Unlock()

	duration := time.Since(start)
	if err != nil {
		log.Error("Section failed", slog.Any("error", err), slog.Duration("duration", duration))
	} else {
		log.Info("Section rendered", slog.Int("bytes", len(markup)), slog.Duration("duration", duration))
	}
	c.notify(log, state, duration)
}

// notify сообщает итог наблюдателю. Состояние к этому моменту уже записано,
// поэтому паника наблюдателя только логируется.
func (c *Controller) notify(log *slog.Logger, state State, duration time.Duration) {
	if c.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Section observer panicked", slog.Any("panic", r))
		}
	}()
	c.observer.SectionSettled(c.name, state, duration)
}

// load выполняет запрос и отрисовку. Паника внутри отрисовки превращается в ошибку.
func (c *Controller) load(ctx context.Context) (markup string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("section %s panicked: %v", c.name, r)
		}
	}()
	value, err := c.fetcher.FetchResource(ctx, c.path)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", c.path, err)
	}
	return c.renderer.RenderValue(value)
}

// State возвращает текущее состояние секции.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Region возвращает содержимое секции для вывода на страницу.
func (c *Controller) Region() Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}

// Err возвращает ошибку, из-за которой секция перешла в Errored. Пользователю не показывается.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
