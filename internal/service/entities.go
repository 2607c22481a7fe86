package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gamenight-tracker/internal/domain"
)

// CreatePlayer adds a player. New players are shown on leaderboards unless the
// request says otherwise.
func (s *TrackerService) CreatePlayer(ctx context.Context, req domain.PlayerRequest) (*domain.Player, error) {
	now := s.now()
	p := domain.Player{
		ID:                uuid.NewString(),
		ShowOnLeaderboard: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	req.Apply(&p)

	if err := s.repo.CreatePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	s.afterWrite(ctx)
	return &p, nil
}

// UpdatePlayer replaces a player's editable fields
func (s *TrackerService) UpdatePlayer(ctx context.Context, id string, req domain.PlayerRequest) (*domain.Player, error) {
	p, err := s.repo.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(p)
	p.UpdatedAt = s.now()

	if err := s.repo.UpdatePlayer(ctx, *p); err != nil {
		return nil, fmt.Errorf("updating player: %w", err)
	}
	s.afterWrite(ctx)
	return p, nil
}

// DeletePlayer removes a player. Their results stay and are skipped by aggregation.
func (s *TrackerService) DeletePlayer(ctx context.Context, id string) error {
	if err := s.repo.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

// GetPlayer returns a player by ID
func (s *TrackerService) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	return s.repo.GetPlayer(ctx, id)
}

// ListPlayers returns every player
func (s *TrackerService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.repo.ListPlayers(ctx)
}

// CreateGame adds a game
func (s *TrackerService) CreateGame(ctx context.Context, req domain.GameRequest) (*domain.Game, error) {
	now := s.now()
	g := domain.Game{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(&g)

	if err := s.repo.CreateGame(ctx, g); err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	s.afterWrite(ctx)
	return &g, nil
}

// UpdateGame replaces a game's editable fields. Changing the points value
// rescores every past result of the game.
func (s *TrackerService) UpdateGame(ctx context.Context, id string, req domain.GameRequest) (*domain.Game, error) {
	g, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(g)
	g.UpdatedAt = s.now()

	if err := s.repo.UpdateGame(ctx, *g); err != nil {
		return nil, fmt.Errorf("updating game: %w", err)
	}
	s.afterWrite(ctx)
	return g, nil
}

// DeleteGame removes a game. Its results stay but award no points.
func (s *TrackerService) DeleteGame(ctx context.Context, id string) error {
	if err := s.repo.DeleteGame(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

// GetGame returns a game by ID
func (s *TrackerService) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	return s.repo.GetGame(ctx, id)
}

// ListGames returns every game
func (s *TrackerService) ListGames(ctx context.Context) ([]domain.Game, error) {
	return s.repo.ListGames(ctx)
}

// CreateEvent adds a game night
func (s *TrackerService) CreateEvent(ctx context.Context, req domain.EventRequest) (*domain.Event, error) {
	now := s.now()
	e := domain.Event{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := req.Apply(&e); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	s.afterWrite(ctx)
	return &e, nil
}

// UpdateEvent replaces an event's editable fields
func (s *TrackerService) UpdateEvent(ctx context.Context, id string, req domain.EventRequest) (*domain.Event, error) {
	e, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = s.now()

	if err := s.repo.UpdateEvent(ctx, *e); err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}
	s.afterWrite(ctx)
	return e, nil
}

// DeleteEvent removes an event together with its results
func (s *TrackerService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

// GetEvent returns an event by ID
func (s *TrackerService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// ListEvents returns every event in chronological order
func (s *TrackerService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}
