package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"review_scraper/internal/app"
	"review_scraper/internal/domain"
)

func TestIngestion_Persist(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	ing := app.NewIngestionService(repo, cache)

	res := app.BatchResult{Units: []app.UnitResult{
		{Identifier: "a", ProductURL: "https://x/a", Reviews: []domain.Review{{ProductURL: "https://x/a", Text: "hi"}}},
		{Identifier: "b", ProductURL: "https://x/b", Err: fmt.Errorf("fetch: %w", &domain.FetchError{URL: "https://x/b", Status: 404})},
		{Identifier: "c", ProductURL: "https://x/c", Err: &domain.FetchError{URL: "https://x/c", Status: 403}},
		{Identifier: "d", ProductURL: "https://x/d", Err: errors.New("connection reset")},
		{Identifier: "e", Skipped: true},
	}}

	if err := ing.Persist(context.Background(), res); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if got := repo.upserts["https://x/a"]; len(got) != 1 || got[0].Text != "hi" {
		t.Fatalf("upserts = %+v", repo.upserts)
	}
	if repo.misses["https://x/b"] != 404 || repo.misses["https://x/c"] != 403 {
		t.Fatalf("misses = %+v", repo.misses)
	}
	if _, ok := repo.misses["https://x/d"]; ok {
		t.Fatal("transport failure should not be logged as a miss")
	}
	// three limits evicted for a, b and c
	if len(cache.dels) != 9 {
		t.Fatalf("cache dels = %d", len(cache.dels))
	}
}

func TestIngestion_UpsertErrorSurfaces(t *testing.T) {
	repo := &fakeRepo{upErr: errors.New("db down")}
	ing := app.NewIngestionService(repo, nil)

	res := app.BatchResult{Units: []app.UnitResult{
		{ProductURL: "https://x/a", Reviews: []domain.Review{{Text: "1"}}},
		{ProductURL: "https://x/b", Reviews: []domain.Review{{Text: "2"}}},
	}}
	err := ing.Persist(context.Background(), res)
	if err == nil || !errors.Is(err, repo.upErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestIngestion_InvalidatesQueryCache(t *testing.T) {
	repo := &fakeRepo{rp: domain.ReviewsPage{ProductURL: "https://x/a", Items: []domain.Review{{Text: "old"}}}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 0)
	ctx := context.Background()

	if _, err := q.ListReviews(ctx, "https://x/a", domain.PageQuery{Limit: 50}); err != nil {
		t.Fatal(err)
	}
	repo.rp.Items = []domain.Review{{Text: "new"}}

	ing := app.NewIngestionService(repo, cache)
	if err := ing.PersistUnit(ctx, app.UnitResult{ProductURL: "https://x/a", Reviews: repo.rp.Items}); err != nil {
		t.Fatal(err)
	}
	out, err := q.ListReviews(ctx, "https://x/a", domain.PageQuery{Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Items) != 1 || out.Items[0].Text != "new" {
		t.Fatalf("stale page served: %+v", out.Items)
	}
}
