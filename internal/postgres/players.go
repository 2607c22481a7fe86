package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamenight-tracker/internal/domain"
)

const playerColumns = `id, first_name, last_name, preferred_name, color, picture_url,
	show_on_leaderboard, user_id, created_at, updated_at`

func scanPlayer(row pgx.Row) (domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.PreferredName,
		&p.Color,
		&p.PictureURL,
		&p.ShowOnLeaderboard,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// CreatePlayer inserts a new player
func (r *Repository) CreatePlayer(ctx context.Context, p domain.Player) error {
	query := `
		INSERT INTO players (` + playerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.PreferredName, p.Color, p.PictureURL,
		p.ShowOnLeaderboard, p.UserID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	return nil
}

// UpdatePlayer replaces a player's editable fields
func (r *Repository) UpdatePlayer(ctx context.Context, p domain.Player) error {
	query := `
		UPDATE players
		SET first_name = $2, last_name = $3, preferred_name = $4, color = $5,
			picture_url = $6, show_on_leaderboard = $7, user_id = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.PreferredName, p.Color,
		p.PictureURL, p.ShowOnLeaderboard, p.UserID, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// DeletePlayer removes a player. Results that reference it are kept.
func (r *Repository) DeletePlayer(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// GetPlayer retrieves a player by ID
func (r *Repository) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	p, err := scanPlayer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return &p, nil
}

// ListPlayers retrieves every player ordered by creation
func (r *Repository) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return listPlayers(ctx, r.pool)
}

func listPlayers(ctx context.Context, q querier) ([]domain.Player, error) {
	rows, err := q.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	players := make([]domain.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
