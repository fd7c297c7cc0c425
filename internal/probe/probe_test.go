package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDo_ReturnsBodyAndStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	res := client.Do(context.Background(), Request{URL: server.URL})

	if res.Err != nil {
		t.Fatalf("Do() Err = %v, want nil", res.Err)
	}
	if res.StatusCode != http.StatusAccepted {
		t.Errorf("StatusCode = %d, want %d", res.StatusCode, http.StatusAccepted)
	}
	if string(res.Body) != "hello" {
		t.Errorf("Body = %q, want %q", res.Body, "hello")
	}
	if res.Latency <= 0 {
		t.Errorf("Latency = %v, want > 0", res.Latency)
	}
}

func TestDo_DefaultsToGET(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	res := client.Do(context.Background(), Request{URL: server.URL})
	if res.Err != nil {
		t.Fatalf("Do() Err = %v, want nil", res.Err)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
}

func TestDo_SetsHeaders(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Probe")
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	res := client.Do(context.Background(), Request{
		URL:     server.URL,
		Headers: map[string]string{"X-Probe": "yes"},
	})
	if res.Err != nil {
		t.Fatalf("Do() Err = %v, want nil", res.Err)
	}
	if gotHeader != "yes" {
		t.Errorf("X-Probe = %q, want %q", gotHeader, "yes")
	}
}

func TestDo_TimeoutProducesErr(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	res := client.Do(context.Background(), Request{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})
	if res.Err == nil {
		t.Error("Do() Err = nil, want timeout error")
	}
}

func TestDo_UnreachableProducesErr(t *testing.T) {
	client := NewClient()
	defer client.Close()

	res := client.Do(context.Background(), Request{
		URL:     "http://localhost:1", // port 1 should refuse connections
		Timeout: 500 * time.Millisecond,
	})
	if res.Err == nil {
		t.Error("Do() Err = nil, want connection error")
	}
	if res.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a failed request", res.StatusCode)
	}
}

func TestDo_BadURLProducesErr(t *testing.T) {
	client := NewClient()
	defer client.Close()

	res := client.Do(context.Background(), Request{URL: "://not-a-url"})
	if res.Err == nil {
		t.Error("Do() Err = nil, want request creation error")
	}
}

func TestClose_Idempotent(t *testing.T) {
	client := NewClient()
	client.Close()
	client.Close()

	// client remains usable after Close
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	res := client.Do(context.Background(), Request{URL: server.URL})
	if res.Err != nil {
		t.Errorf("Do() after Close Err = %v, want nil", res.Err)
	}
}
