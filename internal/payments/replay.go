package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amitrajput-dev/zelora-backend/pkg/redis"
)

// ReplayGuard deduplicates webhook deliveries. The first caller to mark an
// event id wins; later deliveries of the same event are dropped.
type ReplayGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewReplayGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*ReplayGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &ReplayGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark returns true when the event was already seen.
func (g *ReplayGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete drops the mark so a failed delivery can be retried.
func (g *ReplayGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	return g.store.Del(ctx, key)
}
