package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"review_scraper/internal/adapters/web"
	"review_scraper/internal/domain"
)

func TestClient_Fetch_SendsHeadersAndReturnsBody(t *testing.T) {
	var ua, accept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua, accept = r.UserAgent(), r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer ts.Close()

	cl := web.New(web.Options{UserAgent: "review-bot/1.0", RPS: 100})
	got, err := cl.Fetch(context.Background(), ts.URL+"/p/1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "<html>ok</html>" {
		t.Fatalf("body = %q", got)
	}
	if ua != "review-bot/1.0" || accept == "" {
		t.Fatalf("headers: ua=%q accept=%q", ua, accept)
	}
}

func TestClient_Fetch_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte("<html></html>"))
		}
	}))
	defer ts.Close()

	cl := web.New(web.Options{RPS: 100, Retries: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cl.Fetch(ctx, ts.URL); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Fetch_NoRetriesByDefault(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := web.New(web.Options{}).Fetch(context.Background(), ts.URL)
	var fe *domain.FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusServiceUnavailable {
		t.Fatalf("err = %v", err)
	}
	if hits != 1 {
		t.Fatalf("hits = %d", hits)
	}
}

func TestClient_Fetch_StatusErrors(t *testing.T) {
	cases := []struct {
		status int
		target error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusUnauthorized, domain.ErrForbidden},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := web.New(web.Options{Retries: 2}).Fetch(context.Background(), ts.URL)
		ts.Close()
		if !errors.Is(err, tc.target) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.target)
		}
	}
}

func TestClient_Fetch_RequestDelay(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer ts.Close()

	cl := web.New(web.Options{RequestDelay: 50 * time.Millisecond})
	start := time.Now()
	if _, err := cl.Fetch(context.Background(), ts.URL); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d < 50*time.Millisecond {
		t.Fatalf("returned after %s, want at least the request delay", d)
	}
}

func TestClient_Fetch_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := web.New(web.Options{Retries: 3}).Fetch(ctx, ts.URL); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
