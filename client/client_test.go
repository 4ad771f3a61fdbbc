package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"left-pad","size":0}`))
	}))
	defer server.Close()

	var got struct {
		Name string `json:"name"`
		Size *int   `json:"size"`
	}
	if err := DefaultClient().GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got.Name != "left-pad" {
		t.Errorf("Name = %q, want %q", got.Name, "left-pad")
	}
	if got.Size == nil || *got.Size != 0 {
		t.Errorf("Size = %v, want pointer to 0", got.Size)
	}
}

func TestDefaultClient_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, _ = DefaultClient().GetBody(context.Background(), server.URL)

	if gotUA != DefaultUserAgent {
		t.Errorf("default User-Agent = %q, want %q", gotUA, DefaultUserAgent)
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(WithUserAgent("custom-agent/2.0"))
	_, _ = c.GetBody(context.Background(), server.URL)

	if gotUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom-agent/2.0")
	}
}

func TestGetBody_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	}))
	defer server.Close()

	_, err := DefaultClient().GetBody(context.Background(), server.URL+"/missing")

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("GetBody error = %v, want *HTTPError", err)
	}
	if !httpErr.IsNotFound() {
		t.Errorf("IsNotFound() = false for status %d", httpErr.StatusCode)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound(err) = false, want true")
	}
	if httpErr.Body != `{"error":"Not found"}` {
		t.Errorf("Body = %q", httpErr.Body)
	}
}

func TestGetBody_ServerErrorSingleAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := DefaultClient().GetBody(context.Background(), server.URL)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("GetBody error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusServiceUnavailable)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestGetJSON_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var v map[string]any
	err := DefaultClient().GetJSON(context.Background(), server.URL, &v)
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		t.Errorf("decode failure reported as HTTPError: %v", err)
	}
}
