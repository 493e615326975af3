package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (s *fakeRateStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if s.err != nil {
		return false, 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func loginPolicy(ipLimit, emailLimit int64) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "login",
		Window:     time.Minute,
		IPLimit:    ipLimit,
		EmailLimit: emailLimit,
	}
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	handler := AuthRateLimit(newFakeRateStore(), nil, loginPolicy(2, 2))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"tester@example.com"`) {
			t.Fatalf("body not replayed to handler: %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"tester@example.com","password":"secret"}`))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimitEmailLimitTriggers(t *testing.T) {
	handler := AuthRateLimit(newFakeRateStore(), nil, loginPolicy(0, 2))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"blocked@example.com","password":"secret"}`))
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("expected success before limit, got %d", rec.Code)
		}
		if i >= 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 past limit, got %d", rec.Code)
		}
	}
}

func TestAuthRateLimitIPLimitCoversDistinctEmails(t *testing.T) {
	handler := AuthRateLimit(newFakeRateStore(), nil, loginPolicy(2, 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for i, email := range emails {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
		req.RemoteAddr = "9.9.9.9:1111"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("expected success before limit, got %d", rec.Code)
		}
		if i >= 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 past ip limit, got %d", rec.Code)
		}
	}
}

func TestAuthRateLimitIdentifierFieldCounts(t *testing.T) {
	store := newFakeRateStore()
	handler := AuthRateLimit(store, nil, loginPolicy(0, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"identifier":"tester@example.com","password":"secret"}`))
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusOK {
			t.Fatalf("expected first attempt to pass, got %d", rec.Code)
		}
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for repeated identifier, got %d", rec.Code)
		}
	}
}

func TestAuthRateLimitRefusesOnStoreError(t *testing.T) {
	store := newFakeRateStore()
	store.err = context.DeadlineExceeded
	handler := AuthRateLimit(store, nil, loginPolicy(1, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the limiter is down")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com"}`))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the limiter backend is down, got %d", rec.Code)
	}
}

func TestAuthRateLimitNilStorePassesThrough(t *testing.T) {
	handler := AuthRateLimit(nil, nil, loginPolicy(1, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without a limiter, got %d", rec.Code)
	}
}
