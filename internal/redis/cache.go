package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
)

// Cache stores computed leaderboards and views keyed by scope and snapshot revision.
// A revision never reads entries written for another one, including entries of
// other processes sharing the same Redis.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache connects to Redis and returns a cache
func NewCache(cfg *config.RedisConfig, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewCacheWithClient(client, cfg.KeyPrefix, cfg.TTL, logger), nil
}

// NewCacheWithClient wraps an existing client
func NewCacheWithClient(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks Redis connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// base returns the key prefix shared by every entry of one store epoch
func (c *Cache) base(epoch string) string {
	if epoch == "" {
		epoch = "-"
	}
	return c.prefix + ":" + epoch
}

// metaKey returns the key of a leaderboard's metadata hash
func (c *Cache) metaKey(scope string, rev domain.Revision) string {
	return fmt.Sprintf("%s:leaderboard:%s:v%d:meta", c.base(rev.Epoch), scope, rev.Version)
}

// rowsKey returns the key of a leaderboard's row list
func (c *Cache) rowsKey(scope string, rev domain.Revision) string {
	return fmt.Sprintf("%s:leaderboard:%s:v%d:rows", c.base(rev.Epoch), scope, rev.Version)
}

// positionsKey returns the key of the sorted set mapping players to positions
func (c *Cache) positionsKey(scope string, rev domain.Revision) string {
	return fmt.Sprintf("%s:leaderboard:%s:v%d:positions", c.base(rev.Epoch), scope, rev.Version)
}

// viewKey returns the key of an arbitrary cached view
func (c *Cache) viewKey(name string, rev domain.Revision) string {
	return fmt.Sprintf("%s:view:%s:v%d", c.base(rev.Epoch), name, rev.Version)
}

// StoreLeaderboard caches a computed leaderboard. Rows are kept as a list so pages
// can be read without decoding the whole board.
func (c *Cache) StoreLeaderboard(ctx context.Context, rev domain.Revision, lb domain.Leaderboard) error {
	metaKey := c.metaKey(lb.Scope, rev)
	rowsKey := c.rowsKey(lb.Scope, rev)
	posKey := c.positionsKey(lb.Scope, rev)

	rows := make([]interface{}, len(lb.Rows))
	positions := make([]redis.Z, len(lb.Rows))
	for i, row := range lb.Rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshaling row: %w", err)
		}
		rows[i] = data
		positions[i] = redis.Z{Score: float64(row.Position), Member: row.Player.ID}
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, rowsKey, posKey)
		pipe.HSet(ctx, metaKey,
			"scope", lb.Scope,
			"name", lb.Name,
			"version", lb.Version,
			"epoch", rev.Epoch,
			"computed_at", lb.ComputedAt.Format(time.RFC3339Nano),
			"count", len(lb.Rows),
		)
		if len(rows) > 0 {
			pipe.RPush(ctx, rowsKey, rows...)
			pipe.ZAdd(ctx, posKey, positions...)
		}
		pipe.Expire(ctx, metaKey, c.ttl)
		pipe.Expire(ctx, rowsKey, c.ttl)
		pipe.Expire(ctx, posKey, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing leaderboard: %w", err)
	}
	return nil
}

// GetLeaderboard returns a page of a cached leaderboard. A limit of zero or less
// returns every row from offset on.
func (c *Cache) GetLeaderboard(ctx context.Context, scope string, rev domain.Revision, offset, limit int) (*domain.Leaderboard, error) {
	meta, err := c.client.HGetAll(ctx, c.metaKey(scope, rev)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard meta: %w", err)
	}
	if len(meta) == 0 {
		return nil, domain.ErrCacheMiss
	}

	end := int64(-1)
	if limit > 0 {
		end = int64(offset + limit - 1)
	}
	rows, err := c.rowRange(ctx, scope, rev, int64(offset), end)
	if err != nil {
		return nil, err
	}

	computedAt, _ := time.Parse(time.RFC3339Nano, meta["computed_at"])
	return &domain.Leaderboard{
		Scope:      meta["scope"],
		Name:       meta["name"],
		Version:    rev.Version,
		Rows:       rows,
		ComputedAt: computedAt,
	}, nil
}

// GetAroundPlayer returns the rows within count positions of a player
func (c *Cache) GetAroundPlayer(ctx context.Context, scope string, rev domain.Revision, playerID string, count int) ([]domain.LeaderboardRow, error) {
	exists, err := c.client.Exists(ctx, c.metaKey(scope, rev)).Result()
	if err != nil {
		return nil, fmt.Errorf("checking leaderboard: %w", err)
	}
	if exists == 0 {
		return nil, domain.ErrCacheMiss
	}

	rank, err := c.client.ZRank(ctx, c.positionsKey(scope, rev), playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player position: %w", err)
	}

	start := max(rank-int64(count), 0)
	return c.rowRange(ctx, scope, rev, start, rank+int64(count))
}

func (c *Cache) rowRange(ctx context.Context, scope string, rev domain.Revision, start, end int64) ([]domain.LeaderboardRow, error) {
	raw, err := c.client.LRange(ctx, c.rowsKey(scope, rev), start, end).Result()
	if err != nil {
		return nil, fmt.Errorf("getting rows: %w", err)
	}
	rows := make([]domain.LeaderboardRow, len(raw))
	for i, data := range raw {
		if err := json.Unmarshal([]byte(data), &rows[i]); err != nil {
			return nil, fmt.Errorf("decoding row: %w", err)
		}
	}
	return rows, nil
}

// SetView caches any JSON-encodable value under a name for one snapshot revision
func (c *Cache) SetView(ctx context.Context, name string, rev domain.Revision, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling view: %w", err)
	}
	if err := c.client.Set(ctx, c.viewKey(name, rev), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("setting view: %w", err)
	}
	return nil
}

// GetView decodes a cached view into dest
func (c *Cache) GetView(ctx context.Context, name string, rev domain.Revision, dest interface{}) error {
	data, err := c.client.Get(ctx, c.viewKey(name, rev)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrCacheMiss
		}
		return fmt.Errorf("getting view: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decoding view: %w", err)
	}
	return nil
}

// Invalidate removes the entries of keep's epoch written for any other version.
// Entries of other epochs belong to other processes and are left to expire.
func (c *Cache) Invalidate(ctx context.Context, keep domain.Revision) (int, error) {
	suffix := ":v" + strconv.FormatInt(keep.Version, 10)
	pattern := c.base(keep.Epoch) + ":*"
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return removed, fmt.Errorf("scanning keys: %w", err)
		}

		stale := make([]string, 0, len(keys))
		for _, key := range keys {
			if !containsVersion(key, suffix) {
				stale = append(stale, key)
			}
		}
		if len(stale) > 0 {
			n, err := c.client.Del(ctx, stale...).Result()
			if err != nil {
				return removed, fmt.Errorf("deleting stale keys: %w", err)
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("cache invalidated", "epoch", keep.Epoch, "keep_version", keep.Version, "removed", removed)
	return removed, nil
}

// containsVersion reports whether key carries the version segment, either at the
// end or followed by another segment
func containsVersion(key, suffix string) bool {
	return strings.HasSuffix(key, suffix) || strings.Contains(key, suffix+":")
}
