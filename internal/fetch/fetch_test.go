package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, ok := New(Options{}).Fetch(context.Background(), srv.URL)
	if !ok {
		t.Fatal("expected fetch to succeed")
	}
	if body != "<html>ok</html>" {
		t.Errorf("body: got %q", body)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("user agent: got %q", gotUA)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	body, ok := New(Options{}).Fetch(context.Background(), srv.URL)
	if ok || body != "" {
		t.Errorf("expected absent result, got ok=%v body=%q", ok, body)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, ok := New(Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), srv.URL)
	if ok {
		t.Error("expected timeout to report absent page")
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, ok := New(Options{}).Fetch(context.Background(), url); ok {
		t.Error("expected closed server to report absent page")
	}
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := New(Options{RequestsPerSecond: 1}).Fetch(ctx, srv.URL); ok {
		t.Error("expected cancelled context to report absent page")
	}
}

func TestFetchRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	f := New(Options{RequestsPerSecond: 20})
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, ok := f.Fetch(context.Background(), srv.URL); !ok {
			t.Fatalf("fetch %d failed", i)
		}
	}
	// Burst of one: the second and third requests each wait ~50ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("requests were not spaced: %v", elapsed)
	}
}
