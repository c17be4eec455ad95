package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akruglov/footsync/internal/platform/resilience"
)

func newTestClient(t *testing.T, server *httptest.Server, maxRetries int) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		Source:     "test-source",
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled: false,
		},
	})
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	client := newTestClient(t, server, 3)
	raw, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if string(raw) != "payload" {
		t.Fatalf("unexpected body %q", raw)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestGet_PermanentStatusFailsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server, 3)
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if IsTransient(err) {
		t.Fatalf("404 must be permanent, got transient: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestGet_TransientExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server, 2)
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !IsTransient(err) {
		t.Fatalf("429 must stay transient, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGet_CircuitBreakerShortCircuits(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		Source:     "test-source",
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Fatal("expected first request to fail")
	}
	_, err := client.Get(context.Background(), server.URL+"/other")
	if err == nil {
		t.Fatal("expected breaker to reject second request")
	}
	if !IsTransient(err) {
		t.Fatalf("breaker rejection must be transient, got %v", err)
	}
}

func TestGetJSON_DecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server, 0)
	var target struct{ Name string }
	if err := client.GetJSON(context.Background(), server.URL, &target); err == nil {
		t.Fatal("expected decode error for non-JSON body")
	}
}
