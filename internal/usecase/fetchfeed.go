package usecase

import (
	"context"
	"io"

	"gamepulse/internal/domain"
)

// FeedFetcher загружает данные RSS-ленты. Возвращённый io.ReadCloser должен быть закрыт.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedParser преобразует RSS-данные в доменную модель.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error)
}

// ArticleStorage сохраняет статьи и возвращает число новых записей.
type ArticleStorage interface {
	SaveArticles(ctx context.Context, articles []domain.Article) (int, error)
}
