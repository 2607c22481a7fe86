package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gamenight-tracker/internal/domain"
)

// buildResult checks a submission against the current snapshot and turns it into a result
func (s *TrackerService) buildResult(snap domain.Snapshot, sub domain.ResultSubmission) (domain.Result, error) {
	events := snap.EventsByID()
	if _, ok := events[sub.EventID]; !ok {
		return domain.Result{}, fmt.Errorf("%w: %w: %s", domain.ErrInvalidResult, domain.ErrEventNotFound, sub.EventID)
	}
	games := snap.GamesByID()
	if _, ok := games[sub.GameID]; !ok {
		return domain.Result{}, fmt.Errorf("%w: %w: %s", domain.ErrInvalidResult, domain.ErrGameNotFound, sub.GameID)
	}
	if len(sub.PlayerResults) == 0 {
		return domain.Result{}, fmt.Errorf("%w: no players", domain.ErrInvalidResult)
	}

	players := snap.PlayersByID()
	seen := make(map[string]bool, len(sub.PlayerResults))
	for _, pr := range sub.PlayerResults {
		if _, ok := players[pr.PlayerID]; !ok {
			return domain.Result{}, fmt.Errorf("%w: %w: %s", domain.ErrInvalidResult, domain.ErrPlayerNotFound, pr.PlayerID)
		}
		if seen[pr.PlayerID] {
			return domain.Result{}, fmt.Errorf("%w: player %s listed twice", domain.ErrInvalidResult, pr.PlayerID)
		}
		seen[pr.PlayerID] = true
		if pr.Rank != nil && *pr.Rank < 1 {
			return domain.Result{}, fmt.Errorf("%w: rank must be at least 1", domain.ErrInvalidResult)
		}
	}

	now := s.now()
	id := sub.ID
	if id == "" {
		id = uuid.NewString()
	}
	return domain.Result{
		ID:            id,
		EventID:       sub.EventID,
		GameID:        sub.GameID,
		Order:         sub.Order,
		PlayerResults: sub.PlayerResults,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RecordResult validates and stores one game result. Submitting an existing ID
// replaces that result.
func (s *TrackerService) RecordResult(ctx context.Context, sub domain.ResultSubmission) (*domain.Result, error) {
	res, err := s.buildResult(s.store.Current(), sub)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertResult(ctx, res); err != nil {
		return nil, fmt.Errorf("recording result: %w", err)
	}

	s.logger.Info("result recorded",
		"result_id", res.ID,
		"event_id", res.EventID,
		"game_id", res.GameID,
		"players", len(res.PlayerResults),
	)
	s.afterWrite(ctx)
	return &res, nil
}

// RecordResultBatch stores every valid submission in one write and reports the
// rejected ones. The snapshot is republished once.
func (s *TrackerService) RecordResultBatch(ctx context.Context, batch domain.BatchResultSubmission) (*domain.BatchOutcome, error) {
	snap := s.store.Current()
	outcome := &domain.BatchOutcome{
		Recorded: make([]domain.Result, 0, len(batch.Results)),
		Failed:   make([]domain.BatchFailure, 0),
	}

	for i, sub := range batch.Results {
		res, err := s.buildResult(snap, sub)
		if err != nil {
			s.logger.Warn("rejected result in batch",
				"index", i,
				"event_id", sub.EventID,
				"game_id", sub.GameID,
				"error", err,
			)
			outcome.Failed = append(outcome.Failed, domain.BatchFailure{Index: i, ID: sub.ID, Error: err.Error()})
			continue
		}
		outcome.Recorded = append(outcome.Recorded, res)
	}

	if len(outcome.Recorded) == 0 {
		return outcome, nil
	}
	if err := s.repo.UpsertResults(ctx, outcome.Recorded); err != nil {
		return nil, fmt.Errorf("recording result batch: %w", err)
	}

	s.logger.Info("result batch recorded",
		"recorded", len(outcome.Recorded),
		"failed", len(outcome.Failed),
	)
	s.afterWrite(ctx)
	return outcome, nil
}

// DeleteResult removes a result
func (s *TrackerService) DeleteResult(ctx context.Context, id string) error {
	if err := s.repo.DeleteResult(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

// GetResult returns a result by ID
func (s *TrackerService) GetResult(ctx context.Context, id string) (*domain.Result, error) {
	return s.repo.GetResult(ctx, id)
}

// ListResults returns the results of one event, or every result when eventID is empty
func (s *TrackerService) ListResults(ctx context.Context, eventID string) ([]domain.Result, error) {
	return s.repo.ListResults(ctx, eventID)
}
