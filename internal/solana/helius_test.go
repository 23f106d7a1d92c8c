package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnhancedClient_ListTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/addresses/DF1ow4tspfHX9JwWJsAb9epbkA8hmpSEAtxXy1V27QBH/transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api-key"); got != "test-key" {
			t.Errorf("expected api-key test-key, got %s", got)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("expected limit 50, got %s", got)
		}

		resp := []map[string]interface{}{
			{"signature": "sigA", "slot": int64(2001), "timestamp": int64(1700000100)},
			{"signature": "sigB", "slot": int64(2000), "timestamp": int64(1700000090)},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEnhancedClient("test-key", WithEnhancedBaseURL(server.URL))

	infos, err := client.ListTransactions(context.Background(), "DF1ow4tspfHX9JwWJsAb9epbkA8hmpSEAtxXy1V27QBH", 50)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(infos))
	}

	if infos[0].Signature != "sigA" || infos[0].Slot != 2001 || infos[0].BlockTime != 1700000100 {
		t.Errorf("unexpected first entry: %+v", infos[0])
	}
}

func TestEnhancedClient_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{})
	}))
	defer server.Close()

	client := NewEnhancedClient("k",
		WithEnhancedBaseURL(server.URL),
		WithEnhancedMaxRetries(2))
	client.retryDelay = time.Millisecond

	infos, err := client.ListTransactions(context.Background(), "addr", 10)
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected empty listing, got %d entries", len(infos))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestEnhancedClient_ExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewEnhancedClient("k",
		WithEnhancedBaseURL(server.URL),
		WithEnhancedMaxRetries(1))
	client.retryDelay = time.Millisecond

	if _, err := client.ListTransactions(context.Background(), "addr", 10); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}
