package usecase

import (
	"context"
	"strings"

	"gamepulse/internal/domain"
)

// NewsStorage предоставляет доступ к сохранённым статьям.
type NewsStorage interface {
	ListNews(ctx context.Context, limit int, query string) ([]domain.Article, error)
	GetArticle(ctx context.Context, id string) (domain.Article, error)
}

// NewsGetterUseCase отдаёт статьи для API.
type NewsGetterUseCase struct {
	storage      NewsStorage
	defaultLimit int
	maxLimit     int
}

// NewNewsGetterUseCase создает UseCase получения новостей.
// Лимит запроса приводится к диапазону [1, maxLimit]; 0 заменяется на defaultLimit.
func NewNewsGetterUseCase(s NewsStorage, defaultLimit, maxLimit int) *NewsGetterUseCase {
	return &NewsGetterUseCase{storage: s, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// GetNews возвращает свежие статьи, опционально отфильтрованные по подстроке query.
func (uc *NewsGetterUseCase) GetNews(ctx context.Context, limit int, query string) ([]domain.Article, error) {
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	if limit > uc.maxLimit {
		limit = uc.maxLimit
	}
	return uc.storage.ListNews(ctx, limit, strings.TrimSpace(query))
}

// GetArticle возвращает статью по идентификатору.
func (uc *NewsGetterUseCase) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	return uc.storage.GetArticle(ctx, id)
}
