package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"staybook/pkg/config"
	"staybook/pkg/model"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const tempLockKeyPrefix = "staybook:templock:"

// redisTempLockRepository keeps the holds of one room in a sorted set scored
// by expiry (unix ms). Expired members are pruned on write and ignored on
// read; the key itself expires with its longest-lived hold.
type redisTempLockRepository struct {
	cfg    *config.Config
	client *redis.Client
}

func NewRedisTempLockRepository(cfg *config.Config) TempLockRepository {
	return &redisTempLockRepository{
		cfg:    cfg,
		client: cfg.Client.Redis,
	}
}

func tempLockKey(roomID string) string {
	return tempLockKeyPrefix + roomID
}

func (r *redisTempLockRepository) Create(ctx context.Context, lock *model.TempLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if lock.ID == "" {
		lock.ID = uuid.NewString()
	}
	if lock.LockedAt.IsZero() {
		lock.LockedAt = now()
	}

	payload, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("failed to encode temp lock: %w", err)
	}

	key := tempLockKey(lock.RoomID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(lock.LockedAt.UnixMilli(), 10))
		pipe.ZAdd(ctx, key, &redis.Z{Score: float64(lock.ExpiresAt.UnixMilli()), Member: payload})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create temp lock: %w", err)
	}

	latest, err := r.client.ZRevRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to read temp lock expiry: %w", err)
	}
	if len(latest) > 0 {
		expireAt := time.UnixMilli(int64(latest[0].Score))
		if err := r.client.PExpireAt(ctx, key, expireAt).Err(); err != nil {
			return fmt.Errorf("failed to set temp lock expiry: %w", err)
		}
	}

	return nil
}

func (r *redisTempLockRepository) FindActive(ctx context.Context, roomID string, now time.Time) (*model.TempLock, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	members, err := r.client.ZRevRangeByScore(ctx, tempLockKey(roomID), &redis.ZRangeBy{
		Max:   "+inf",
		Min:   "(" + strconv.FormatInt(now.UnixMilli(), 10),
		Count: 1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find temp lock: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	var lock model.TempLock
	if err := json.Unmarshal([]byte(members[0]), &lock); err != nil {
		return nil, fmt.Errorf("failed to decode temp lock: %w", err)
	}
	return &lock, nil
}

func (r *redisTempLockRepository) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	key := tempLockKey(roomID)
	var card *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		card = pipe.ZCard(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete temp locks: %w", err)
	}
	return card.Val(), nil
}

// Delete removes one hold. The member is the JSON written by Create, so lock
// must be the value that was passed to Create.
func (r *redisTempLockRepository) Delete(ctx context.Context, lock *model.TempLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	payload, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("failed to encode temp lock: %w", err)
	}
	if err := r.client.ZRem(ctx, tempLockKey(lock.RoomID), payload).Err(); err != nil {
		return fmt.Errorf("failed to delete temp lock: %w", err)
	}
	return nil
}
