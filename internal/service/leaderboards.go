package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/stats"
)

// CreateLeaderboard saves a filtered leaderboard definition
func (s *TrackerService) CreateLeaderboard(ctx context.Context, req domain.CreateLeaderboardRequest) (*domain.LeaderboardConfig, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.ErrInvalidLeaderboard
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	cfg, err := req.ToConfig(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateLeaderboard(ctx, cfg); err != nil {
		if errors.Is(err, domain.ErrLeaderboardExists) {
			return nil, err
		}
		return nil, fmt.Errorf("creating leaderboard: %w", err)
	}
	return &cfg, nil
}

// ListLeaderboards returns every saved leaderboard definition
func (s *TrackerService) ListLeaderboards(ctx context.Context) ([]domain.LeaderboardConfig, error) {
	return s.repo.ListLeaderboards(ctx)
}

// GetLeaderboardConfig returns a saved leaderboard definition
func (s *TrackerService) GetLeaderboardConfig(ctx context.Context, id string) (*domain.LeaderboardConfig, error) {
	return s.repo.GetLeaderboard(ctx, id)
}

// DeleteLeaderboard removes a saved leaderboard definition
func (s *TrackerService) DeleteLeaderboard(ctx context.Context, id string) error {
	return s.repo.DeleteLeaderboard(ctx, id)
}

// resolveScope turns a scope id into the filter it stands for and a display name
func (s *TrackerService) resolveScope(ctx context.Context, scopeID string) (stats.Filter, string, error) {
	switch {
	case scopeID == domain.ScopeOverall:
		return stats.Filter{}, "Overall", nil

	case strings.HasPrefix(scopeID, domain.YearScopePrefix):
		year, err := strconv.Atoi(strings.TrimPrefix(scopeID, domain.YearScopePrefix))
		if err != nil || year < 1900 || year > 9999 {
			return stats.Filter{}, "", fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidRequest, scopeID)
		}
		return stats.Filter{Year: year}, fmt.Sprintf("%d season", year), nil

	case strings.HasPrefix(scopeID, domain.ConfigScopePrefix):
		cfg, err := s.repo.GetLeaderboard(ctx, strings.TrimPrefix(scopeID, domain.ConfigScopePrefix))
		if err != nil {
			return stats.Filter{}, "", err
		}
		return stats.FilterFromConfig(*cfg), cfg.Name, nil
	}
	return stats.Filter{}, "", fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidRequest, scopeID)
}

func (s *TrackerService) computeLeaderboard(ctx context.Context, snap domain.Snapshot, scopeID string) (*domain.Leaderboard, error) {
	filter, name, err := s.resolveScope(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	return &domain.Leaderboard{
		Scope:      scopeID,
		Name:       name,
		Version:    snap.Version,
		Rows:       s.calc.Leaderboard(stats.NewScope(snap, filter)),
		ComputedAt: s.now(),
	}, nil
}

// fullLeaderboard returns every row of a scope's leaderboard, from cache when possible
func (s *TrackerService) fullLeaderboard(ctx context.Context, snap domain.Snapshot, scopeID string) (*domain.Leaderboard, error) {
	if s.cache != nil {
		lb, err := s.cache.GetLeaderboard(ctx, scopeID, snap.Revision(), 0, 0)
		if err == nil {
			return lb, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("failed to read cached leaderboard", "scope", scopeID, "error", err)
		}
	}

	lb, err := s.computeLeaderboard(ctx, snap, scopeID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.StoreLeaderboard(ctx, snap.Revision(), *lb); err != nil {
			s.logger.Warn("failed to cache leaderboard", "scope", scopeID, "error", err)
		}
	}
	return lb, nil
}

// Leaderboard returns a page of the ranked leaderboard of a scope
func (s *TrackerService) Leaderboard(ctx context.Context, scopeID string, offset, limit int) (*domain.Leaderboard, error) {
	// Resolve first so deleted saved leaderboards are not served from cache
	if _, _, err := s.resolveScope(ctx, scopeID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}
	offset = max(offset, 0)

	lb, err := s.fullLeaderboard(ctx, s.store.Current(), scopeID)
	if err != nil {
		return nil, err
	}
	page := *lb
	page.Rows = pageRows(lb.Rows, offset, limit)
	return &page, nil
}

// LeaderboardAround returns the rows within count positions of a player
func (s *TrackerService) LeaderboardAround(ctx context.Context, scopeID, playerID string, count int) ([]domain.LeaderboardRow, error) {
	if _, _, err := s.resolveScope(ctx, scopeID); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = s.config.AroundRange
	}
	count = min(count, maxAroundRange)

	snap := s.store.Current()
	if s.cache != nil {
		rows, err := s.cache.GetAroundPlayer(ctx, scopeID, snap.Revision(), playerID, count)
		if err == nil || errors.Is(err, domain.ErrPlayerNotFound) {
			return rows, err
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("failed to read cached leaderboard", "scope", scopeID, "error", err)
		}
	}

	lb, err := s.fullLeaderboard(ctx, snap, scopeID)
	if err != nil {
		return nil, err
	}
	for i, row := range lb.Rows {
		if row.Player.ID == playerID {
			start := max(i-count, 0)
			end := min(i+count+1, len(lb.Rows))
			return lb.Rows[start:end], nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

// LeaderboardForScope returns the first page of a scope's leaderboard
func (s *TrackerService) LeaderboardForScope(ctx context.Context, scopeID string) (*domain.Leaderboard, error) {
	return s.Leaderboard(ctx, scopeID, 0, 0)
}

func pageRows(rows []domain.LeaderboardRow, offset, limit int) []domain.LeaderboardRow {
	if offset >= len(rows) {
		return []domain.LeaderboardRow{}
	}
	end := min(offset+limit, len(rows))
	return rows[offset:end]
}
