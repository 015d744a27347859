package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func (p *countingProcessor) ProcessFeed(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = map[string]int{}
	}
	p.calls[url]++
	if p.fail[url] {
		return errors.New("feed down")
	}
	return nil
}

func (p *countingProcessor) count(url string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[url]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_RunOnce(t *testing.T) {
	p := &countingProcessor{fail: map[string]bool{"b": true}}
	w := New(p, []string{"a", "b", "c"}, time.Minute, testLogger())

	ok, failed := w.RunOnce(context.Background())

	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, p.count("a"))
	assert.Equal(t, 1, p.count("b"))
}

func TestWorker_RunOnce_CancelledContext(t *testing.T) {
	p := &countingProcessor{}
	w := New(p, []string{"a"}, time.Minute, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, failed := w.RunOnce(ctx)

	assert.Zero(t, ok)
	assert.Zero(t, failed)
	assert.Zero(t, p.count("a"))
}

func TestWorker_StartStop(t *testing.T) {
	p := &countingProcessor{}
	w := New(p, []string{"a"}, 10*time.Millisecond, testLogger())

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return p.count("a") >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	after := p.count("a")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, p.count("a"))
	assert.Equal(t, []string{"a"}, w.URLs())
	assert.Equal(t, 10*time.Millisecond, w.Interval())
}
