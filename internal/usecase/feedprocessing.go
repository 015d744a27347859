package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"gamepulse/internal/domain"
	"gamepulse/internal/sanitize"

	"github.com/samber/lo"
)

// FeedProcessingUseCase загружает RSS-ленту, превращает записи в статьи и сохраняет их.
type FeedProcessingUseCase struct {
	fetcher   FeedFetcher
	parser    FeedParser
	storage   ArticleStorage
	log       *slog.Logger
	feedNames map[string]string
}

// NewFeedProcessingUseCase создает UseCase обработки RSS-лент.
// feedNames сопоставляет URL ленты с именем источника.
func NewFeedProcessingUseCase(
	fetcher FeedFetcher,
	parser FeedParser,
	storage ArticleStorage,
	log *slog.Logger,
	feedNames map[string]string,
) *FeedProcessingUseCase {
	return &FeedProcessingUseCase{
		fetcher:   fetcher,
		parser:    parser,
		storage:   storage,
		log:       log,
		feedNames: feedNames,
	}
}

// ProcessFeed выполняет полный цикл: загрузка, разбор, очистка и сохранение.
// Записи без ссылки или заголовка пропускаются.
func (uc *FeedProcessingUseCase) ProcessFeed(ctx context.Context, feedURL string) error {
	start := time.Now()
	source := uc.sourceName(feedURL)
	log := uc.log.With(
		slog.String("component", "feed-processor"),
		slog.String("feed", source),
		slog.String("url", feedURL),
	)
	log.Info("Processing feed started")

	reader, err := uc.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		log.Error("Feed fetch failed", slog.String("stage", "fetch"), slog.Any("error", err))
		return fmt.Errorf("fetch failed for %s: %w", source, err)
	}
	defer reader.Close()

	feed, err := uc.parser.Parse(ctx, reader)
	if err != nil {
		log.Error("Feed parsing failed", slog.String("stage", "parse"), slog.Any("error", err))
		return fmt.Errorf("parse failed for %s: %w", source, err)
	}

	articles := lo.FilterMap(feed.Items, func(item domain.Item, _ int) (domain.Article, bool) {
		if item.Link == "" || item.Title == "" {
			return domain.Article{}, false
		}
		return toArticle(item, source), true
	})
	log.Debug("Feed parsed",
		slog.String("stage", "parse"),
		slog.Int("items_parsed", len(feed.Items)),
		slog.Int("items_kept", len(articles)),
	)

	savedCount, err := uc.storage.SaveArticles(ctx, articles)
	if err != nil {
		log.Error("Feed save failed", slog.String("stage", "save"), slog.Any("error", err))
		return fmt.Errorf("save failed for %s: %w", source, err)
	}

	log.Info("Feed processing completed",
		slog.Int("items_found", len(feed.Items)),
		slog.Int("items_saved", savedCount),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// ArticleID возвращает идентификатор статьи: md5 от ссылки в шестнадцатеричном виде.
func ArticleID(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}

func toArticle(item domain.Item, source string) domain.Article {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	return domain.Article{
		ID:          ArticleID(item.Link),
		Title:       item.Title,
		Link:        item.Link,
		Source:      source,
		Image:       item.Image,
		Excerpt:     sanitize.Text(item.Description),
		ContentHTML: sanitize.Content(body),
		PubDate:     item.PubDate,
	}
}

// sourceName возвращает имя источника из конфигурации или, если его нет, домен ленты.
func (uc *FeedProcessingUseCase) sourceName(feedURL string) string {
	if name, ok := uc.feedNames[feedURL]; ok {
		return name
	}
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
