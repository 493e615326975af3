package payments

import (
	"context"
	"testing"
	"time"
)

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *stubStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = "1"
	return true, nil
}

func (s *stubStore) IdempotencyKey(scope, id string) string {
	return "zelora:idempotency:" + scope + ":" + id
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestReplayGuardFirstMarkWins(t *testing.T) {
	t.Parallel()

	guard, err := NewReplayGuard(newStubStore(), time.Hour, "razorpay")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if seen {
		t.Fatalf("first delivery must not be flagged as seen")
	}

	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !seen {
		t.Fatalf("duplicate delivery must be flagged as seen")
	}

	if err := guard.Delete(ctx, "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("mark after delete: %v", err)
	}
	if seen {
		t.Fatalf("released event id must be markable again")
	}
}

func TestReplayGuardValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewReplayGuard(nil, time.Hour, "razorpay"); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := NewReplayGuard(newStubStore(), time.Hour, ""); err == nil {
		t.Fatalf("expected error for empty scope")
	}

	guard, err := NewReplayGuard(newStubStore(), time.Hour, "razorpay")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty event id")
	}
}
