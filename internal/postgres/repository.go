package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Ping checks database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id VARCHAR(64) PRIMARY KEY,
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			last_name VARCHAR(255) NOT NULL DEFAULT '',
			preferred_name VARCHAR(255) NOT NULL DEFAULT '',
			color VARCHAR(32) NOT NULL DEFAULT '',
			picture_url TEXT NOT NULL DEFAULT '',
			show_on_leaderboard BOOLEAN NOT NULL DEFAULT TRUE,
			user_id VARCHAR(128) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			points INT NOT NULL DEFAULT 0,
			type VARCHAR(20) NOT NULL DEFAULT 'board',
			color VARCHAR(32) NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(64) PRIMARY KEY,
			location VARCHAR(255) NOT NULL DEFAULT '',
			date DATE NOT NULL,
			player_ids TEXT[] NOT NULL DEFAULT '{}',
			game_ids TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id VARCHAR(64) PRIMARY KEY,
			event_id VARCHAR(64) NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			game_id VARCHAR(64) NOT NULL,
			sort_order INT NOT NULL DEFAULT 0,
			player_results JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard_configs (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			game_tags TEXT[] NOT NULL DEFAULT '{}',
			player_ids TEXT[] NOT NULL DEFAULT '{}',
			start_date DATE,
			end_date DATE,
			year INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS archived_years (
			year INT PRIMARY KEY,
			object_key TEXT NOT NULL,
			archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`ALTER TABLE archived_years ADD COLUMN IF NOT EXISTS fingerprint TEXT NOT NULL DEFAULT ''`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
		`CREATE INDEX IF NOT EXISTS idx_results_event ON results(event_id, sort_order)`,
		`CREATE INDEX IF NOT EXISTS idx_results_game ON results(game_id)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// LoadSnapshot reads every collection inside one read-only transaction so the
// snapshot is consistent
func (r *Repository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var snap domain.Snapshot
	if snap.Players, err = listPlayers(ctx, tx); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Games, err = listGames(ctx, tx); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Events, err = listEvents(ctx, tx); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Results, err = listResults(ctx, tx, ""); err != nil {
		return domain.Snapshot{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Snapshot{}, fmt.Errorf("committing snapshot transaction: %w", err)
	}

	snap.LoadedAt = time.Now()
	r.logger.Debug("snapshot loaded",
		"players", len(snap.Players),
		"games", len(snap.Games),
		"events", len(snap.Events),
		"results", len(snap.Results),
	)
	return snap, nil
}

// ArchivedYears returns the fingerprint of the standings archived for each year
func (r *Repository) ArchivedYears(ctx context.Context) (map[int]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT year, fingerprint FROM archived_years`)
	if err != nil {
		return nil, fmt.Errorf("listing archived years: %w", err)
	}
	defer rows.Close()

	years := make(map[int]string)
	for rows.Next() {
		var (
			year        int
			fingerprint string
		)
		if err := rows.Scan(&year, &fingerprint); err != nil {
			return nil, fmt.Errorf("scanning archived year: %w", err)
		}
		years[year] = fingerprint
	}
	return years, rows.Err()
}

// MarkArchived records that a year's standings were written to objectKey
func (r *Repository) MarkArchived(ctx context.Context, year int, objectKey, fingerprint string) error {
	query := `
		INSERT INTO archived_years (year, object_key, fingerprint, archived_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year) DO UPDATE SET object_key = $2, fingerprint = $3, archived_at = $4
	`
	if _, err := r.pool.Exec(ctx, query, year, objectKey, fingerprint, time.Now()); err != nil {
		return fmt.Errorf("marking year archived: %w", err)
	}
	return nil
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
