package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamenight-tracker/internal/domain"
)

const resultColumns = `id, event_id, game_id, sort_order, player_results, created_at, updated_at`

func scanResult(row pgx.Row) (domain.Result, error) {
	var (
		res           domain.Result
		playerResults []byte
	)
	err := row.Scan(
		&res.ID,
		&res.EventID,
		&res.GameID,
		&res.Order,
		&playerResults,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(playerResults, &res.PlayerResults); err != nil {
		return res, fmt.Errorf("decoding player results of %s: %w", res.ID, err)
	}
	return res, nil
}

const upsertResultQuery = `
	INSERT INTO results (` + resultColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id)
	DO UPDATE SET event_id = $2, game_id = $3, sort_order = $4, player_results = $5, updated_at = $7
`

func resultArgs(res domain.Result) ([]any, error) {
	playerResults, err := json.Marshal(res.PlayerResults)
	if err != nil {
		return nil, fmt.Errorf("marshaling player results: %w", err)
	}
	return []any{res.ID, res.EventID, res.GameID, res.Order, playerResults, res.CreatedAt, res.UpdatedAt}, nil
}

// UpsertResult inserts a result or replaces the one with the same ID
func (r *Repository) UpsertResult(ctx context.Context, res domain.Result) error {
	args, err := resultArgs(res)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, upsertResultQuery, args...); err != nil {
		return fmt.Errorf("upserting result: %w", err)
	}
	return nil
}

// UpsertResults writes many results in one round trip
func (r *Repository) UpsertResults(ctx context.Context, results []domain.Result) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, res := range results {
		args, err := resultArgs(res)
		if err != nil {
			return err
		}
		batch.Queue(upsertResultQuery, args...)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch upserting results: %w", err)
		}
	}
	return nil
}

// DeleteResult removes a result
func (r *Repository) DeleteResult(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrResultNotFound
	}
	return nil
}

// GetResult retrieves a result by ID
func (r *Repository) GetResult(ctx context.Context, id string) (*domain.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE id = $1`
	res, err := scanResult(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("getting result: %w", err)
	}
	return &res, nil
}

// ListResults retrieves results of one event, or of every event when eventID is empty
func (r *Repository) ListResults(ctx context.Context, eventID string) ([]domain.Result, error) {
	return listResults(ctx, r.pool, eventID)
}

func listResults(ctx context.Context, q querier, eventID string) ([]domain.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results ORDER BY event_id, sort_order, id`
	var args []any
	if eventID != "" {
		query = `SELECT ` + resultColumns + ` FROM results WHERE event_id = $1 ORDER BY sort_order, id`
		args = append(args, eventID)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	results := make([]domain.Result, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
