package storage

import (
	"context"
	"errors"

	"gamepulse/internal/domain"
)

// ErrNotFound возвращается, если запрошенная запись отсутствует.
var ErrNotFound = errors.New("not found")

// Storage объединяет операции сервиса лент над хранилищем: статьи, тренды и закрытие соединения.
type Storage interface {
	SaveArticles(ctx context.Context, articles []domain.Article) (int, error)
	ListNews(ctx context.Context, limit int, query string) ([]domain.Article, error)
	GetArticle(ctx context.Context, id string) (domain.Article, error)
	UpsertGames(ctx context.Context, games []domain.TrendingEntry) (int, error)
	TrendingGames(ctx context.Context, limit int) ([]domain.GameSummary, error)
	Close()
}
