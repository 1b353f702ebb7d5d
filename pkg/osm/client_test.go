package osm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientDoCallsHooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	var requestCalled, responseCalled bool
	var capturedService, capturedOperation string
	var capturedSuccess bool

	c := NewClient(ClientOptions{
		Service: "overpass",
		Hooks: &MonitoringHooks{
			OnRequest: func(service, operation string) {
				requestCalled = true
				capturedService = service
				capturedOperation = operation
			},
			OnResponse: func(service, operation string, duration time.Duration, success bool) {
				responseCalled = true
				capturedSuccess = success
			},
		},
	})

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := c.Do(context.Background(), req, "query")
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	if !requestCalled {
		t.Error("OnRequest should have been called")
	}
	if !responseCalled {
		t.Error("OnResponse should have been called")
	}
	if capturedService != "overpass" {
		t.Errorf("Expected service 'overpass', got %s", capturedService)
	}
	if capturedOperation != "query" {
		t.Errorf("Expected operation 'query', got %s", capturedOperation)
	}
	if !capturedSuccess {
		t.Error("Request should have been successful")
	}
}

func TestClientDoErrorStatusIsNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var errorCalled bool
	capturedSuccess := true

	c := NewClient(ClientOptions{
		Service: "notes",
		Hooks: &MonitoringHooks{
			OnResponse: func(service, operation string, duration time.Duration, success bool) {
				capturedSuccess = success
			},
			OnError: func(service, errorType string) {
				errorCalled = true
			},
		},
	})

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := c.Do(context.Background(), req, "create_note")
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	if capturedSuccess {
		t.Error("Request should not have been successful")
	}
	// only transport failures count as errors
	if errorCalled {
		t.Error("OnError should not have been called for HTTP error status")
	}
}

func TestClientDoNetworkError(t *testing.T) {
	var capturedErrorType string

	c := NewClient(ClientOptions{
		Service: "overpass",
		Hooks: &MonitoringHooks{
			OnError: func(service, errorType string) {
				capturedErrorType = errorType
			},
		},
	})

	req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)
	if _, err := c.Do(context.Background(), req, "query"); err == nil {
		t.Fatal("Expected network error")
	}
	if capturedErrorType != "request_error" {
		t.Errorf("Expected error type 'request_error', got %s", capturedErrorType)
	}
}

func TestClientSetsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	c := NewClient(ClientOptions{Service: "overpass", UserAgent: "surveyor/1.0"})
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := c.Do(context.Background(), req, "query")
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got != "surveyor/1.0" {
		t.Errorf("User-Agent = %q, want surveyor/1.0", got)
	}

	if NewClient(ClientOptions{}).userAgent != DefaultUserAgent {
		t.Error("expected default user agent")
	}
}

func TestClientRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var rateLimitCalled bool
	var capturedWait time.Duration

	c := NewClient(ClientOptions{
		Service:           "overpass",
		RequestsPerSecond: 5,
		Burst:             1,
		Hooks: &MonitoringHooks{
			OnRateLimit: func(service string, waitTime time.Duration) {
				rateLimitCalled = true
				capturedWait = waitTime
			},
		},
	})

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := c.Do(context.Background(), req, "query")
		if err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
		resp.Body.Close()
	}

	if !rateLimitCalled {
		t.Error("OnRateLimit should have been called")
	}
	if capturedWait <= 0 {
		t.Error("wait time should be positive")
	}
}

func TestClientRateLimitCancelled(t *testing.T) {
	c := NewClient(ClientOptions{Service: "overpass", RequestsPerSecond: 0.001, Burst: 1})
	c.limiter.Allow() // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)
	if _, err := c.Do(ctx, req, "query"); err == nil {
		t.Fatal("expected error from cancelled rate limit wait")
	}
}
