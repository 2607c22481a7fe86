package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamenight-tracker/internal/domain"
)

const eventColumns = `id, location, date, player_ids, game_ids, created_at, updated_at`

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Location,
		&e.Date,
		&e.PlayerIDs,
		&e.GameIDs,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	e.Date = domain.CalendarDay(e.Date)
	return e, err
}

// CreateEvent inserts a new game night
func (r *Repository) CreateEvent(ctx context.Context, e domain.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Location, e.Date, orEmpty(e.PlayerIDs), orEmpty(e.GameIDs), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

// UpdateEvent replaces an event's editable fields
func (r *Repository) UpdateEvent(ctx context.Context, e domain.Event) error {
	query := `
		UPDATE events
		SET location = $2, date = $3, player_ids = $4, game_ids = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		e.ID, e.Location, e.Date, orEmpty(e.PlayerIDs), orEmpty(e.GameIDs), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event together with its results
func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// GetEvent retrieves an event by ID
func (r *Repository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return &e, nil
}

// ListEvents retrieves every event in chronological order
func (r *Repository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return listEvents(ctx, r.pool)
}

func listEvents(ctx context.Context, q querier) ([]domain.Event, error) {
	rows, err := q.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
