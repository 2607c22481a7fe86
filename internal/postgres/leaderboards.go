package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamenight-tracker/internal/domain"
)

const leaderboardColumns = `id, name, game_tags, player_ids, start_date, end_date, year, created_at, updated_at`

func scanLeaderboard(row pgx.Row) (domain.LeaderboardConfig, error) {
	var c domain.LeaderboardConfig
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.GameTags,
		&c.PlayerIDs,
		&c.StartDate,
		&c.EndDate,
		&c.Year,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// CreateLeaderboard stores a saved leaderboard configuration
func (r *Repository) CreateLeaderboard(ctx context.Context, config domain.LeaderboardConfig) error {
	query := `
		INSERT INTO leaderboard_configs (` + leaderboardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		config.ID,
		config.Name,
		orEmpty(config.GameTags),
		orEmpty(config.PlayerIDs),
		config.StartDate,
		config.EndDate,
		config.Year,
		config.CreatedAt,
		config.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrLeaderboardExists
		}
		return fmt.Errorf("creating leaderboard: %w", err)
	}
	return nil
}

// GetLeaderboard retrieves a leaderboard configuration by ID
func (r *Repository) GetLeaderboard(ctx context.Context, leaderboardID string) (*domain.LeaderboardConfig, error) {
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard_configs WHERE id = $1`
	config, err := scanLeaderboard(r.pool.QueryRow(ctx, query, leaderboardID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeaderboardNotFound
		}
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	return &config, nil
}

// ListLeaderboards retrieves all leaderboard configurations
func (r *Repository) ListLeaderboards(ctx context.Context) ([]domain.LeaderboardConfig, error) {
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard_configs ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing leaderboards: %w", err)
	}
	defer rows.Close()

	configs := make([]domain.LeaderboardConfig, 0)
	for rows.Next() {
		config, err := scanLeaderboard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning leaderboard: %w", err)
		}
		configs = append(configs, config)
	}
	return configs, rows.Err()
}

// DeleteLeaderboard removes a saved leaderboard
func (r *Repository) DeleteLeaderboard(ctx context.Context, leaderboardID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leaderboard_configs WHERE id = $1`, leaderboardID)
	if err != nil {
		return fmt.Errorf("deleting leaderboard: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrLeaderboardNotFound
	}
	return nil
}
