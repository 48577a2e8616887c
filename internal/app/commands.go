package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"review_scraper/internal/domain"
)

// DefaultSort is the only ordering the read side serves: newest first.
const DefaultSort = "-created_at"

// Limits the read API hands out most often; their cached pages are evicted on write.
var cachedLimits = []int{50, 100, 200}

type IngestionService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewIngestionService(r domain.ReviewRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{repo: r, cache: cache}
}

// Persist stores the reviews of every successful unit and records a miss for
// units whose page answered 404 or 401/403. Other failures were already
// counted by the batch and are not stored. Every unit is attempted; the
// returned error joins the ones that failed.
func (s *IngestionService) Persist(ctx context.Context, res BatchResult) error {
	var errs []error
	for _, u := range res.Units {
		if u.Skipped || u.ProductURL == "" {
			continue
		}
		if err := s.PersistUnit(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *IngestionService) PersistUnit(ctx context.Context, u UnitResult) error {
	if u.Err != nil {
		var fe *domain.FetchError
		switch {
		case errors.Is(u.Err, domain.ErrNotFound) && errors.As(u.Err, &fe):
			_ = s.repo.LogMiss(ctx, u.ProductURL, fe.Status, "not found")
		case errors.Is(u.Err, domain.ErrForbidden) && errors.As(u.Err, &fe):
			_ = s.repo.LogMiss(ctx, u.ProductURL, fe.Status, "forbidden")
		default:
			return nil
		}
		// the page is gone, so is anything we served for it
		s.invalidateReviews(ctx, u.ProductURL)
		return nil
	}

	if len(u.Reviews) > 0 {
		if err := s.repo.UpsertReviews(ctx, u.ProductURL, u.Reviews); err != nil {
			return fmt.Errorf("upsert reviews failed for %s: %w", u.ProductURL, err)
		}
	}
	// even zero reviews replace a stale cached page
	s.invalidateReviews(ctx, u.ProductURL)
	log.Debug().Str("url", u.ProductURL).Int("reviews", len(u.Reviews)).Msg("reviews persisted")
	return nil
}

func (s *IngestionService) invalidateReviews(ctx context.Context, productURL string) {
	if s.cache == nil {
		return
	}
	for _, lim := range cachedLimits {
		_ = s.cache.Del(ctx, reviewsCacheKey(productURL, lim, DefaultSort))
	}
}
