package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memoryIdempotencyStore struct {
	values map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: make(map[string]string)}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *memoryIdempotencyStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func countingHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	h := IdempotencyMiddleware(store)(countingHandler(&calls, http.StatusOK, `{"id":"vis-1"}`))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/visitors/update-status", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "gate-device-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
		if rec.Body.String() != `{"id":"vis-1"}` {
			t.Fatalf("request %d body = %q", i, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Fatalf("handler invoked %d times, want 1 (second request replayed from cache)", calls)
	}
}

func TestIdempotencyDistinctKeysDoNotCollide(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	h := IdempotencyMiddleware(store)(countingHandler(&calls, http.StatusOK, `{}`))

	for _, key := range []string{"key-a", "key-b"} {
		req := httptest.NewRequest(http.MethodPost, "/packages", nil)
		req.Header.Set("Idempotency-Key", key)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Fatalf("handler invoked %d times, want 2", calls)
	}
}

func TestIdempotencySkipsRequestsWithoutKey(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	h := IdempotencyMiddleware(store)(countingHandler(&calls, http.StatusOK, `{}`))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/packages", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Fatalf("handler invoked %d times, want 2 without a key", calls)
	}
	if len(store.values) != 0 {
		t.Errorf("store holds %d entries, want 0", len(store.values))
	}
}

func TestIdempotencySkipsNonPost(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	h := IdempotencyMiddleware(store)(countingHandler(&calls, http.StatusOK, `{}`))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/visitors", nil)
		req.Header.Set("Idempotency-Key", "same-key")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Fatalf("handler invoked %d times, want 2 for GET", calls)
	}
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	h := IdempotencyMiddleware(store)(countingHandler(&calls, http.StatusConflict, `{"error":"already checked in"}`))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/visitors/update-status", nil)
		req.Header.Set("Idempotency-Key", "gate-device-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("request %d status = %d, want 409", i, rec.Code)
		}
	}

	if calls != 2 {
		t.Fatalf("handler invoked %d times, want 2 (failures are never replayed)", calls)
	}
}
