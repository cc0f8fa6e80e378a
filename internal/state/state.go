package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateManager checkpoints how far a mapping run has progressed so an
// interrupted run can resume instead of recomputing the whole batch.
type StateManager interface {
	GetLastProcessedIndex(ctx context.Context, runID string) (int, error)
	SetLastProcessedIndex(ctx context.Context, runID string, index int) error
}

const checkpointTTL = 7 * 24 * time.Hour

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   "mapper:progress:run:",
	}
}

func (s *redisStateManager) GetLastProcessedIndex(ctx context.Context, runID string) (int, error) {
	key := s.keyPrefix + runID
	val, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil // No progress saved yet
		}
		return 0, fmt.Errorf("failed to get progress for run %s: %w", runID, err)
	}

	index, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse progress for run %s: %w", runID, err)
	}

	return index, nil
}

func (s *redisStateManager) SetLastProcessedIndex(ctx context.Context, runID string, index int) error {
	key := s.keyPrefix + runID
	err := s.redisClient.Set(ctx, key, index, checkpointTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set progress for run %s: %w", runID, err)
	}
	return nil
}
