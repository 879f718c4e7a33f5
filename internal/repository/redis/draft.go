package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ugur-Atakan/mckaycpa/internal/wizard"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

const keyPrefix = "draft:"

// DraftRepository implements repository.DraftRepository using Redis.
// Every save refreshes the TTL, so only abandoned sessions expire.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftRepository creates a new Redis-backed draft repository.
func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	return &DraftRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a wizard draft by session ID.
func (r *DraftRepository) Get(ctx context.Context, id string) (*wizard.Draft, error) {
	key := keyPrefix + id

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("wizard session", id)
		}
		return nil, fmt.Errorf("redis get draft: %w", err)
	}

	var draft wizard.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}

	return &draft, nil
}

// Save persists a wizard draft with the configured TTL.
func (r *DraftRepository) Save(ctx context.Context, draft *wizard.Draft) error {
	key := keyPrefix + draft.ID

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}

	return nil
}

// Delete removes a wizard draft by session ID.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	key := keyPrefix + id

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}

	return nil
}
