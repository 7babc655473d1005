package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestClientCallSignsAndReturnsBody(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient("test", server.URL, MarketplaceSigner{AccessKey: "a", SecretKey: "s"}, time.Second)
	query := url.Values{"keyword": {"물티슈"}, "limit": {"10"}}

	resp, err := client.Call(context.Background(), http.MethodGet, "/search", query)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("Unexpected body %s", resp.Body)
	}
	if gotAuth == "" {
		t.Error("Expected Authorization header")
	}
	if gotQuery != query.Encode() {
		t.Errorf("Expected query %s, got %s", query.Encode(), gotQuery)
	}
}

func TestClientClassifiesStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		kind      Kind
		retryable bool
	}{
		{"server error", http.StatusBadGateway, KindTransientNetwork, true},
		{"rate limited", http.StatusTooManyRequests, KindTransientNetwork, true},
		{"forbidden", http.StatusForbidden, KindAuthRejected, false},
		{"bad request", http.StatusBadRequest, KindRequestRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient("test", server.URL, nil, time.Second)
			_, err := client.Call(context.Background(), http.MethodGet, "/", nil)

			if KindOf(err) != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, KindOf(err))
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("Expected retryable=%v for %v", tt.retryable, err)
			}
		})
	}
}

func TestClientPayloadCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rCode":"ERROR"}`))
	}))
	defer server.Close()

	client := NewClient("test", server.URL, nil, time.Second)
	client.Check = func(body []byte) error {
		return NewError(KindAuthRejected, "", 200, body, errors.New("vendor error"))
	}

	_, err := client.Call(context.Background(), http.MethodGet, "/", nil)
	if !errors.Is(err, ErrAuthRejected) {
		t.Errorf("Expected ErrAuthRejected, got %v", err)
	}
	if !IsTerminal(err) {
		t.Error("Expected auth rejection to be terminal")
	}
}

func TestClientNetworkFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewClient("test", addr, nil, time.Second)
	_, err := client.Call(context.Background(), http.MethodGet, "/", nil)
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Expected ErrTransient, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("Expected network failure to be retryable")
	}
}

func TestSignerErrorStopsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient("test", server.URL, AdPlatformSigner{}, time.Second)
	_, err := client.Call(context.Background(), http.MethodGet, "/", nil)

	if !errors.Is(err, ErrConfigMissing) {
		t.Errorf("Expected ErrConfigMissing, got %v", err)
	}
	if called {
		t.Error("Request should not be sent without credentials")
	}
}
