package app

import (
	"context"

	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/domain"
	"review_scraper/internal/extract"
)

// ScrapeService turns product identifiers into review records for one region.
type ScrapeService struct {
	fetcher   domain.PageFetcher
	extractor *extract.PageExtractor
	urls      *URLNormalizer
}

// NewScrapeService fails for an unknown region.
func NewScrapeService(f domain.PageFetcher, e *extract.PageExtractor, region string) (*ScrapeService, error) {
	urls, err := NewURLNormalizer(region)
	if err != nil {
		return nil, err
	}
	if e == nil {
		e = extract.NewPageExtractor(nil)
	}
	return &ScrapeService{fetcher: f, extractor: e, urls: urls}, nil
}

// ScrapeProduct normalizes, fetches and extracts a single product page.
func (s *ScrapeService) ScrapeProduct(ctx context.Context, identifier string) ([]domain.Review, error) {
	res := runUnit(ctx, identifier, s.urls.Normalize, s.fetcher.Fetch, s.Extract)
	return res.Reviews, res.Err
}

// Extract runs the page extractor and records its counters.
func (s *ScrapeService) Extract(html, productURL string) ([]domain.Review, error) {
	res, err := s.extractor.Extract(html, productURL)
	if err != nil {
		return nil, err
	}
	for _, sk := range res.Skips {
		observability.ObserveSkip(sk.Stage)
	}
	observability.ObserveReviews(len(res.Reviews))
	return res.Reviews, nil
}

// Run scrapes every identifier concurrently.
func (s *ScrapeService) Run(ctx context.Context, ids []string, opts BatchOptions) BatchResult {
	return RunBatch(ctx, ids, s.urls.Normalize, s.fetcher.Fetch, s.Extract, opts)
}
