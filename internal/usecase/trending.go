package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"gamepulse/internal/domain"
)

// TrendingStorage хранит таблицу трендовых игр.
type TrendingStorage interface {
	UpsertGames(ctx context.Context, games []domain.TrendingEntry) (int, error)
	TrendingGames(ctx context.Context, limit int) ([]domain.GameSummary, error)
}

// TrendingUseCase отдаёт трендовые игры и заполняет таблицу при старте.
type TrendingUseCase struct {
	storage TrendingStorage
	limit   int
	log     *slog.Logger
}

func NewTrendingUseCase(s TrendingStorage, limit int, log *slog.Logger) *TrendingUseCase {
	return &TrendingUseCase{storage: s, limit: limit, log: log}
}

// Trending возвращает не более limit игр с наибольшим весом. limit вне (0, настроенного] заменяется настроенным.
func (uc *TrendingUseCase) Trending(ctx context.Context, limit int) ([]domain.GameSummary, error) {
	if limit <= 0 || limit > uc.limit {
		limit = uc.limit
	}
	return uc.storage.TrendingGames(ctx, limit)
}

// Seed добавляет или обновляет игры из конфигурации.
func (uc *TrendingUseCase) Seed(ctx context.Context, games []domain.TrendingEntry) error {
	if len(games) == 0 {
		return nil
	}
	n, err := uc.storage.UpsertGames(ctx, games)
	if err != nil {
		return fmt.Errorf("seed trending games: %w", err)
	}
	uc.log.Info("Trending games seeded",
		slog.String("component", "trending"),
		slog.Int("count", n),
	)
	return nil
}
