package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// FetchError reports a non-2xx answer from the page fetcher.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

// Is lets callers match 404 against ErrNotFound and 401/403 against ErrForbidden.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrForbidden:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// PageFetcher returns the raw HTML behind an absolute URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type ReviewRepository interface {
	// Write paths
	UpsertReviews(ctx context.Context, productURL string, rs []Review) error
	LogMiss(ctx context.Context, productURL string, status int, reason string) error

	// Read paths
	ListReviews(ctx context.Context, productURL string, pg PageQuery) (ReviewsPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type PageQuery struct {
	Limit int
	Sort  string
}

type ReviewsPage struct {
	ProductURL string   `json:"productUrl"`
	Items      []Review `json:"items"`
}
