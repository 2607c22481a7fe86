package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamenight-tracker/internal/domain"
)

const gameColumns = `id, name, points, type, color, tags, created_at, updated_at`

func scanGame(row pgx.Row) (domain.Game, error) {
	var g domain.Game
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Points,
		&g.Type,
		&g.Color,
		&g.Tags,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	return g, err
}

// CreateGame inserts a new game
func (r *Repository) CreateGame(ctx context.Context, g domain.Game) error {
	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		g.ID, g.Name, g.Points, string(g.Type), g.Color, orEmpty(g.Tags), g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

// UpdateGame replaces a game's editable fields
func (r *Repository) UpdateGame(ctx context.Context, g domain.Game) error {
	query := `
		UPDATE games
		SET name = $2, points = $3, type = $4, color = $5, tags = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		g.ID, g.Name, g.Points, string(g.Type), g.Color, orEmpty(g.Tags), g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating game: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// DeleteGame removes a game. Results that reference it are kept.
func (r *Repository) DeleteGame(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// GetGame retrieves a game by ID
func (r *Repository) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := scanGame(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &g, nil
}

// ListGames retrieves every game ordered by name
func (r *Repository) ListGames(ctx context.Context) ([]domain.Game, error) {
	return listGames(ctx, r.pool)
}

func listGames(ctx context.Context, q querier) ([]domain.Game, error) {
	rows, err := q.Query(ctx, `SELECT `+gameColumns+` FROM games ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	games := make([]domain.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
