package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gamepulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDB реализует Storage поверх пула соединений pgx.
type PostgresDB struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresDB(pool *pgxpool.Pool, log *slog.Logger) *PostgresDB {
	log.Info("Initializing Postgres storage", slog.String("component", "storage"))
	return &PostgresDB{
		pool: pool,
		log:  log.With(slog.String("component", "storage")),
	}
}

func (db *PostgresDB) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// SaveArticles сохраняет статьи одной транзакцией. Уже известные ссылки пропускаются.
// Возвращает число действительно добавленных статей.
func (db *PostgresDB) SaveArticles(ctx context.Context, articles []domain.Article) (saved int, err error) {
	const op = "storage.postgres.SaveArticles"
	if len(articles) == 0 {
		return 0, nil
	}
	log := db.log.With(slog.String("op", op))
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	batch := &pgx.Batch{}
	query := `
	INSERT INTO news (id, title, link, source, image, excerpt, content_html, pub_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (link) DO NOTHING;
	`
	for _, a := range articles {
		batch.Queue(query, a.ID, a.Title, a.Link, a.Source, a.Image, a.Excerpt, a.ContentHTML, a.PubDate)
	}
	results := tx.SendBatch(ctx, batch)
	for range articles {
		tag, execErr := results.Exec()
		if execErr != nil {
			results.Close()
			err = execErr
			log.Error("Failed to execute batch", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to execute batch: %w", op, err)
		}
		saved += int(tag.RowsAffected())
	}
	if err = results.Close(); err != nil {
		log.Error("Failed to close batch", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to close batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return saved, nil
}

// ListNews возвращает до limit статей, новые первыми; статьи без даты идут в конце.
// Непустой query фильтрует по подстроке в заголовке или описании без учёта регистра.
func (db *PostgresDB) ListNews(ctx context.Context, limit int, query string) ([]domain.Article, error) {
	const op = "storage.postgres.ListNews"
	log := db.log.With(slog.String("op", op), slog.Int("limit", limit))
	sql := `
	SELECT id, title, link, source, image, excerpt, content_html, pub_date
	FROM news
	WHERE $2 = '' OR title ILIKE '%' || $2 || '%' OR excerpt ILIKE '%' || $2 || '%'
	ORDER BY pub_date DESC NULLS LAST, created_at DESC
	LIMIT $1;
	`
	rows, err := db.pool.Query(ctx, sql, limit, escapeLike(query))
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	articles, err := pgx.CollectRows(rows, scanArticle)
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Retrieved news", slog.Int("count", len(articles)))
	return articles, nil
}

// GetArticle возвращает статью по идентификатору или ErrNotFound.
func (db *PostgresDB) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	const op = "storage.postgres.GetArticle"
	rows, err := db.pool.Query(ctx, `
	SELECT id, title, link, source, image, excerpt, content_html, pub_date
	FROM news WHERE id = $1;
	`, id)
	if err != nil {
		return domain.Article{}, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	article, err := pgx.CollectExactlyOneRow(rows, scanArticle)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Article{}, ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	return article, nil
}

// UpsertGames добавляет игры в таблицу трендов или обновляет существующие по имени.
func (db *PostgresDB) UpsertGames(ctx context.Context, games []domain.TrendingEntry) (int, error) {
	const op = "storage.postgres.UpsertGames"
	batch := &pgx.Batch{}
	for _, g := range games {
		var rating *float64
		if g.Rating != nil {
			v, err := g.Rating.Float64()
			if err != nil {
				return 0, fmt.Errorf("%s: invalid rating for %q: %w", op, g.Name, err)
			}
			rating = &v
		}
		batch.Queue(`
		INSERT INTO games (name, cover, rating, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET cover = EXCLUDED.cover, rating = EXCLUDED.rating, score = EXCLUDED.score;
		`, g.Name, g.Cover, rating, g.Score)
	}
	if err := db.pool.SendBatch(ctx, batch).Close(); err != nil {
		db.log.Error("Failed to upsert games", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to execute batch: %w", op, err)
	}
	return len(games), nil
}

// TrendingGames возвращает до limit игр по убыванию веса.
func (db *PostgresDB) TrendingGames(ctx context.Context, limit int) ([]domain.GameSummary, error) {
	const op = "storage.postgres.TrendingGames"
	rows, err := db.pool.Query(ctx, `
	SELECT name, cover, rating
	FROM games
	ORDER BY score DESC, name ASC
	LIMIT $1;
	`, limit)
	if err != nil {
		db.log.Error("Database query failed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GameSummary, error) {
		var g domain.GameSummary
		var rating *float64
		if err := row.Scan(&g.Name, &g.Cover, &rating); err != nil {
			return g, err
		}
		if rating != nil {
			n := json.Number(strconv.FormatFloat(*rating, 'f', -1, 64))
			g.Rating = &n
		}
		return g, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	return games, nil
}

func scanArticle(row pgx.CollectableRow) (domain.Article, error) {
	var a domain.Article
	var pubDate *time.Time
	err := row.Scan(&a.ID, &a.Title, &a.Link, &a.Source, &a.Image, &a.Excerpt, &a.ContentHTML, &pubDate)
	a.PubDate = pubDate
	return a, err
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
