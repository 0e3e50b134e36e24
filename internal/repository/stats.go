package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/warfront-relay/internal/entity"
)

var ErrStatsNotFound = errors.New("stats not found")

// StatsRepository mirrors coordinator snapshots into redis for dashboards. Entries expire;
// nothing is ever read back into the coordinator.
type StatsRepository interface {
	Save(ctx context.Context, stats *entity.Stats, ttl time.Duration) error
	Get(ctx context.Context) (*entity.Stats, error)
	OnlineCount(ctx context.Context) (int, error)
}

type dbStats struct {
	client *redis.Client
	prefix string
}

func NewStatsRepository(client *redis.Client, prefix string) StatsRepository {
	return &dbStats{
		client: client,
		prefix: prefix,
	}
}

func (that *dbStats) Save(ctx context.Context, stats *entity.Stats, ttl time.Duration) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, that.statsKey(), statsJSON, ttl)
	pipe.Set(ctx, that.onlineKey(), stats.OnlineCount, ttl)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set stats: %w", err)
	}

	return nil
}

func (that *dbStats) Get(ctx context.Context) (*entity.Stats, error) {
	response, err := that.client.Get(ctx, that.statsKey()).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrStatsNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	var stats entity.Stats
	if err = json.Unmarshal([]byte(response), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	return &stats, nil
}

func (that *dbStats) OnlineCount(ctx context.Context) (int, error) {
	count, err := that.client.Get(ctx, that.onlineKey()).Int()

	if errors.Is(err, redis.Nil) {
		return 0, ErrStatsNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get online count: %w", err)
	}

	return count, nil
}

func (that *dbStats) statsKey() string {
	return that.prefix + "stats"
}

func (that *dbStats) onlineKey() string {
	return that.prefix + "online"
}
