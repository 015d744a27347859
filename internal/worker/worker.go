package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const feedTimeout = 30 * time.Second

var (
	feedRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamepulse_feed_runs_total",
		Help: "RSS feed processing runs by result",
	}, []string{"result"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gamepulse_feed_cycle_duration_seconds",
		Help:    "Duration of a full processing cycle over all feeds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
	})
)

// FeedProcessor обрабатывает одну RSS-ленту.
type FeedProcessor interface {
	ProcessFeed(ctx context.Context, url string) error
}

// Worker периодически обрабатывает все настроенные RSS-ленты.
type Worker struct {
	processor FeedProcessor
	urls      []string
	interval  time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New создает воркер для списка лент.
func New(processor FeedProcessor, urls []string, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		processor: processor,
		urls:      urls,
		interval:  interval,
		log:       log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине. Первый цикл выполняется сразу.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop останавливает воркер и ждёт завершения текущего цикла.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	w.log.Info("Feed processing worker started",
		slog.String("interval", w.interval.String()),
		slog.Int("feed_count", len(w.urls)),
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// RunOnce обрабатывает все ленты параллельно и возвращает число успешных и неудачных.
func (w *Worker) RunOnce(ctx context.Context) (succeeded, failed int) {
	start := time.Now()
	var wg sync.WaitGroup
	var successCount, errorCount int64
	for _, url := range w.urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			opCtx, opCancel := context.WithTimeout(ctx, feedTimeout)
			defer opCancel()
			if err := w.processor.ProcessFeed(opCtx, u); err != nil {
				atomic.AddInt64(&errorCount, 1)
				feedRuns.WithLabelValues("error").Inc()
				w.log.Error("Feed processing failed", slog.String("url", u), slog.Any("error", err))
				return
			}
			atomic.AddInt64(&successCount, 1)
			feedRuns.WithLabelValues("success").Inc()
		}(url)
	}
	wg.Wait()
	duration := time.Since(start)
	cycleDuration.Observe(duration.Seconds())
	w.log.Info("Feed processing cycle completed",
		slog.Int64("successful", successCount),
		slog.Int64("errors", errorCount),
		slog.Int("total", len(w.urls)),
		slog.Duration("duration", duration),
	)
	return int(successCount), int(errorCount)
}

// URLs возвращает список обрабатываемых лент.
func (w *Worker) URLs() []string { return w.urls }

// Interval возвращает интервал между циклами.
func (w *Worker) Interval() time.Duration { return w.interval }
