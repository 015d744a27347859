package landing

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamepulse/internal/adapter/feedclient"
	"gamepulse/internal/config"
	"gamepulse/internal/render"
	"gamepulse/internal/section"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type funcRunner struct {
	name string
	run  func(ctx context.Context)
}

func (r funcRunner) Name() string            { return r.name }
func (r funcRunner) Run(ctx context.Context) { r.run(ctx) }

func TestOrchestrator_StartsSectionsConcurrently(t *testing.T) {
	newsStarted := make(chan struct{})
	trending := funcRunner{name: "trending", run: func(ctx context.Context) {
		// Finishes only once the other section is running.
		<-newsStarted
	}}
	news := funcRunner{name: "news", run: func(ctx context.Context) {
		close(newsStarted)
	}}

	load := NewOrchestrator(testLogger(), trending, news).Start(context.Background())

	select {
	case <-load.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("sections were not started concurrently")
	}
}

func TestOrchestrator_StartDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	slow := funcRunner{name: "slow", run: func(ctx context.Context) { <-release }}

	load := NewOrchestrator(testLogger(), slow).Start(context.Background())

	select {
	case <-load.Done():
		t.Fatal("load finished before the section settled")
	default:
	}
	close(release)
	load.Wait()
}

func TestOrchestrator_PanicStaysInSection(t *testing.T) {
	ran := false
	bad := funcRunner{name: "bad", run: func(ctx context.Context) { panic("boom") }}
	good := funcRunner{name: "good", run: func(ctx context.Context) { ran = true }}

	NewOrchestrator(testLogger(), bad, good).Start(context.Background()).Wait()

	assert.True(t, ran)
}

// feedService emulates the remote service; handlers are keyed by path.
func feedService(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func statusCode(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(code) }
}

func newBuilder(baseURL string) *Builder {
	cfg := config.New().Landing
	log := testLogger()
	return NewBuilder(cfg, feedclient.New(baseURL, log), render.NewTrending(), render.NewNews(), nil, log)
}

func TestBuilder_BothSectionsRender(t *testing.T) {
	srv := feedService(t, map[string]http.HandlerFunc{
		"/api/trending": jsonBody(`[{"name":"Chrono","cover":"c.png","rating":9}]`),
		"/api/news":     jsonBody(`[{"title":"Patch","image":"p.png","url":"https://example.com/p","excerpt":"Fixes"}]`),
	})

	page := newBuilder(srv.URL + "/").Build(context.Background())

	assert.False(t, page.Trending.ErrorVisible)
	assert.False(t, page.News.ErrorVisible)
	assert.Contains(t, string(page.Trending.Markup), "Chrono")
	assert.Contains(t, string(page.Trending.Markup), `src="c.png"`)
	assert.Contains(t, string(page.Trending.Markup), ">9<")
	assert.Contains(t, string(page.News.Markup), "Fixes")
}

func TestBuilder_TrendingFailureDoesNotAffectNews(t *testing.T) {
	srv := feedService(t, map[string]http.HandlerFunc{
		"/api/trending": statusCode(http.StatusInternalServerError),
		"/api/news":     jsonBody(`[{"title":"Patch","image":"p.png","url":"https://example.com/p"}]`),
	})

	page := newBuilder(srv.URL).Build(context.Background())

	assert.True(t, page.Trending.ErrorVisible)
	assert.Equal(t, "Failed to fetch trending from API", page.Trending.ErrorText)
	assert.Empty(t, page.Trending.Markup)
	assert.False(t, page.News.ErrorVisible)
	assert.Contains(t, string(page.News.Markup), "Patch")
}

func TestBuilder_NewsFailureDoesNotAffectTrending(t *testing.T) {
	srv := feedService(t, map[string]http.HandlerFunc{
		"/api/trending": jsonBody(`[{"name":"Chrono","cover":"c.png"}]`),
		"/api/news":     statusCode(http.StatusInternalServerError),
	})

	page := newBuilder(srv.URL).Build(context.Background())

	assert.True(t, page.News.ErrorVisible)
	assert.Equal(t, "Failed to fetch news from API", page.News.ErrorText)
	assert.False(t, page.Trending.ErrorVisible)
	assert.Contains(t, string(page.Trending.Markup), ">—<")
}

func TestBuilder_SlowFailingSectionDoesNotDelayTheOther(t *testing.T) {
	release := make(chan struct{})
	newsDone := make(chan struct{})
	srv := feedService(t, map[string]http.HandlerFunc{
		"/api/trending": func(w http.ResponseWriter, r *http.Request) {
			<-release
			w.WriteHeader(http.StatusBadGateway)
		},
		"/api/news": func(w http.ResponseWriter, r *http.Request) {
			defer close(newsDone)
			io.WriteString(w, `[]`)
		},
	})

	pageCh := make(chan Page, 1)
	go func() { pageCh <- newBuilder(srv.URL).Build(context.Background()) }()

	select {
	case <-newsDone:
	case <-time.After(2 * time.Second):
		t.Fatal("news section waited for trending")
	}
	close(release)
	page := <-pageCh

	assert.True(t, page.Trending.ErrorVisible)
	assert.False(t, page.News.ErrorVisible)
}

func TestBuilder_ServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	page := newBuilder(url).Build(context.Background())

	assert.True(t, page.Trending.ErrorVisible)
	assert.True(t, page.News.ErrorVisible)
	assert.Empty(t, page.Trending.Markup)
	assert.Empty(t, page.News.Markup)
}

func TestBuilder_EmptyAndNullFeeds(t *testing.T) {
	srv := feedService(t, map[string]http.HandlerFunc{
		"/api/trending": jsonBody(`null`),
		"/api/news":     jsonBody(`[]`),
	})

	page := newBuilder(srv.URL).Build(context.Background())

	assert.False(t, page.Trending.ErrorVisible)
	assert.False(t, page.News.ErrorVisible)
	assert.Empty(t, page.Trending.Markup)
	assert.Empty(t, page.News.Markup)
}

func TestPage_Write(t *testing.T) {
	page := Page{
		Title:       "GamePulse",
		Lang:        "en",
		Trending:    section.Region{Markup: `<article class="game-card">x</article>`},
		News:        section.Region{ErrorVisible: true, ErrorText: "Failed to fetch news from API"},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, page.Write(&buf))
	html := buf.String()

	assert.Contains(t, html, `<div id="trending-list" class="card-grid"><article class="game-card">x</article></div>`)
	assert.Contains(t, html, `<p id="trending-error" class="section-error" role="alert" hidden></p>`)
	assert.Contains(t, html, `<p id="news-error" class="section-error" role="alert">Failed to fetch news from API</p>`)
	assert.Contains(t, html, `<div id="news-list" class="card-list"></div>`)
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
}

func TestMetricsObserver(t *testing.T) {
	errored := sectionOutcomes.WithLabelValues("news", "errored")
	rendered := sectionOutcomes.WithLabelValues("news", "rendered")
	erroredBefore := testutil.ToFloat64(errored)
	renderedBefore := testutil.ToFloat64(rendered)

	MetricsObserver{}.SectionSettled("news", section.Errored, 10*time.Millisecond)

	assert.Equal(t, erroredBefore+1, testutil.ToFloat64(errored))
	assert.Equal(t, renderedBefore, testutil.ToFloat64(rendered))
}

func TestBuilder_RecordsSectionOutcomes(t *testing.T) {
	srv := feedService(t, map[string]http.HandlerFunc{
		"/api/trending": jsonBody(`[]`),
		"/api/news":     statusCode(http.StatusInternalServerError),
	})
	trendingRendered := sectionOutcomes.WithLabelValues("trending", "rendered")
	newsErrored := sectionOutcomes.WithLabelValues("news", "errored")
	trendingBefore := testutil.ToFloat64(trendingRendered)
	newsBefore := testutil.ToFloat64(newsErrored)

	log := testLogger()
	builder := NewBuilder(config.New().Landing, feedclient.New(srv.URL, log),
		render.NewTrending(), render.NewNews(), MetricsObserver{}, log)
	builder.Build(context.Background())

	assert.Equal(t, trendingBefore+1, testutil.ToFloat64(trendingRendered))
	assert.Equal(t, newsBefore+1, testutil.ToFloat64(newsErrored))
}
