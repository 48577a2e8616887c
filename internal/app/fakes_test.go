package app_test

import (
	"context"
	"encoding/json"
	"sync"

	"review_scraper/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	rp      domain.ReviewsPage
	listErr error
	upErr   error
	upserts map[string][]domain.Review
	misses  map[string]int
	lists   int
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, productURL string, rs []domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upErr != nil {
		return f.upErr
	}
	if f.upserts == nil {
		f.upserts = map[string][]domain.Review{}
	}
	f.upserts[productURL] = append(f.upserts[productURL], rs...)
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, productURL string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.misses == nil {
		f.misses = map[string]int{}
	}
	f.misses[productURL] = status
	return nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, productURL string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	f.lists++
	return f.rp, f.listErr
}

type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// fakeFetcher serves canned pages keyed by URL; unknown URLs answer 404.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if html, ok := f.pages[url]; ok {
		return html, nil
	}
	return "", &domain.FetchError{URL: url, Status: 404}
}

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
