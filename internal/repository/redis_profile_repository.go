package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/credit-ledger/internal/domain"
)

type redisProfileRepository struct {
	client *redis.Client
}

// NewRedisProfileRepository returns a Redis-backed implementation storing
// JSON-encoded profile records.
func NewRedisProfileRepository(client *redis.Client) ProfileRepository {
	return &redisProfileRepository{client: client}
}

func profileKey(subjectID string) string {
	return "profile:" + subjectID
}

func (r *redisProfileRepository) Get(ctx context.Context, subjectID string) (*domain.Profile, error) {
	raw, err := r.client.Get(ctx, profileKey(subjectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

func (r *redisProfileRepository) Set(ctx context.Context, subjectID string, profile *domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := r.client.Set(ctx, profileKey(subjectID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func (r *redisProfileRepository) CompareAndSet(ctx context.Context, subjectID string, expectedBalance int, profile *domain.Profile) error {
	key := profileKey(subjectID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrBalanceConflict
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}

		var current domain.Profile
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode profile: %w", err)
		}
		if current.Balance != expectedBalance {
			return ErrBalanceConflict
		}

		encoded, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		return ErrBalanceConflict
	}
	return err
}
