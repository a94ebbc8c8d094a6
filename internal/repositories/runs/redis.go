package runs

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-action/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-action/internal/redis"
)

const (
	// Key pattern: run:{id}
	runKeyPrefix = "run:"
	// Sorted set of run ids scored by finish time
	recentKey = "runs:recent"

	defaultHistory = 100
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	// History caps the number of records kept; older ones are deleted
	History int
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.History < 0 {
		return errors.InvalidArgument("history cannot be negative")
	}
	return nil
}

type redisRepository struct {
	client  redisclient.Client
	history int
}

// NewRedis creates a Redis backed run record repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	history := cfg.History
	if history == 0 {
		history = defaultHistory
	}

	return &redisRepository{
		client:  cfg.Client,
		history: history,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}
	record := input.Record

	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal run %s", record.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, runKey(record.ID), data, 0)
	pipe.ZAdd(ctx, recentKey, redis.Z{
		Score:  float64(record.FinishedAt.UnixNano()),
		Member: record.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save run %s", record.ID)
	}

	if err := r.trim(ctx); err != nil {
		return nil, err
	}

	return &SaveOutput{Record: record}, nil
}

// trim drops the oldest records beyond the history cap
func (r *redisRepository) trim(ctx context.Context) error {
	count, err := r.client.ZCard(ctx, recentKey).Result()
	if err != nil {
		return errors.Wrap(err, "failed to count runs")
	}
	excess := count - int64(r.history)
	if excess <= 0 {
		return nil
	}

	stale, err := r.client.ZRange(ctx, recentKey, 0, excess-1).Result()
	if err != nil {
		return errors.Wrap(err, "failed to list stale runs")
	}

	pipe := r.client.TxPipeline()
	for _, id := range stale {
		pipe.Del(ctx, runKey(id))
		pipe.ZRem(ctx, recentKey, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to trim runs")
	}
	return nil
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument("run ID is required")
	}

	data, err := r.client.Get(ctx, runKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("run %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get run %s", input.ID)
	}

	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal run %s", input.ID)
	}

	return &GetOutput{Record: &record}, nil
}

func (r *redisRepository) ListRecent(ctx context.Context, input *ListRecentInput) (*ListRecentOutput, error) {
	stop := int64(-1)
	if input != nil && input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}

	ids, err := r.client.ZRevRange(ctx, recentKey, 0, stop).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	if len(ids) == 0 {
		return &ListRecentOutput{Records: []*Record{}}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = runKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load runs")
	}

	records := make([]*Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a body; skip it
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal run %s", ids[i])
		}
		records = append(records, &record)
	}

	return &ListRecentOutput{Records: records}, nil
}

func runKey(id string) string {
	return runKeyPrefix + id
}
