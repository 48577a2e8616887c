//go:build integration || !unit

package mysql_test

import (
	"context"
	"testing"

	"review_scraper/internal/domain"
	mysqlrepo "review_scraper/internal/storage/mysql"
	"review_scraper/internal/testutil/mysqltest"
)

func pstr(s string) *string { return &s }
func pint(i int) *int       { return &i }

func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	db := mysqltest.Start(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	url := "https://www.woolworths.com.au/shop/productdetails/10001"
	older := domain.Review{
		ProductURL:  url,
		Username:    pstr("Ana"),
		Text:        "Très bon",
		CreatedDate: pstr("2022-10-01T00:00:00Z"),
		Rating:      pint(4),
		Source:      domain.DefaultSource,
	}
	newer := domain.Review{
		ProductURL:       url,
		Username:         pstr("Bob"),
		Text:             "Ok",
		CreatedDate:      pstr("2022-10-03T02:38:00Z"),
		Source:           domain.DefaultSource,
		SyndicatedSource: pstr("Countdown"),
	}
	undated := domain.Review{ProductURL: url, Text: "no date", Source: domain.DefaultSource}
	empty := domain.Review{ProductURL: url, Source: domain.DefaultSource}

	if err := repo.UpsertReviews(ctx, url, []domain.Review{older, newer, undated, empty}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// Same key again with a new rating updates in place.
	older.Rating = pint(5)
	if err := repo.UpsertReviews(ctx, url, []domain.Review{older}); err != nil {
		t.Fatalf("UpsertReviews again: %v", err)
	}

	page, err := repo.ListReviews(ctx, url, domain.PageQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("want 3 stored reviews, got %d: %+v", len(page.Items), page.Items)
	}
	if page.Items[0].Text != "Ok" || page.Items[1].Text != "Très bon" || page.Items[2].Text != "no date" {
		t.Fatalf("unexpected order: %+v", page.Items)
	}
	if r := page.Items[1].Rating; r == nil || *r != 5 {
		t.Fatalf("rating not updated: %v", r)
	}
	if s := page.Items[0].SyndicatedSource; s == nil || *s != "Countdown" {
		t.Fatalf("syndicatedSource = %v", s)
	}
	if page.Items[2].CreatedDate != nil || page.Items[2].Username != nil {
		t.Fatalf("nulls not preserved: %+v", page.Items[2])
	}

	if err := repo.LogMiss(ctx, url+"/gone", 404, "not found"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, url+"/gone", 403, "forbidden"); err != nil {
		t.Fatalf("LogMiss again: %v", err)
	}
	var status int
	if err := db.QueryRowContext(ctx, "SELECT http_status FROM ingest_misses WHERE product_url = ?", url+"/gone").Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != 403 {
		t.Fatalf("status = %d", status)
	}

	other, err := repo.ListReviews(ctx, "https://www.woolworths.com.au/unknown", domain.PageQuery{Limit: 10})
	if err != nil || len(other.Items) != 0 {
		t.Fatalf("unknown product: %+v %v", other, err)
	}
}
