package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration - одна миграция схемы. ID определяет порядок применения.
type Migration struct {
	ID    string
	UpSQL string
}

var allMigrations = []Migration{
	{
		ID: "20260101120000_create_news_table",
		UpSQL: `
		CREATE TABLE news(
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		link TEXT UNIQUE NOT NULL,
		source TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		content_html TEXT NOT NULL DEFAULT '',
		pub_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX news_pub_date_idx ON news (pub_date DESC NULLS LAST);`,
	},
	{
		ID: "20260101120100_create_games_table",
		UpSQL: `
		CREATE TABLE games(
		name TEXT PRIMARY KEY,
		cover TEXT NOT NULL,
		rating DOUBLE PRECISION,
		score INTEGER NOT NULL DEFAULT 0
		);`,
	},
}

// Migrations возвращает список миграций в порядке применения.
func Migrations() []Migration {
	out := make([]Migration, len(allMigrations))
	copy(out, allMigrations)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Apply применяет ещё не применённые миграции одной транзакцией.
func Apply(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Checking database migrations")
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
	id TEXT PRIMARY KEY
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := pool.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration id: %w", err)
	}
	pending := Pending(Migrations(), applied)
	if len(pending) == 0 {
		log.Info("Database is up to date")
		return nil
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Database migrations applied", slog.Int("count", len(pending)))
	return nil
}

// Pending возвращает миграции из all, идентификаторов которых нет в applied.
func Pending(all []Migration, applied []string) []Migration {
	done := make(map[string]bool, len(applied))
	for _, id := range applied {
		done[id] = true
	}
	var out []Migration
	for _, m := range all {
		if !done[m.ID] {
			out = append(out, m)
		}
	}
	return out
}
