package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/domain"
)

// Unit stages, one function per stage.
type (
	NormalizeFunc func(identifier string) (string, error)
	FetchFunc     func(ctx context.Context, url string) (string, error)
	ExtractFunc   func(html, productURL string) ([]domain.Review, error)
)

type BatchOptions struct {
	Workers int
	// HaltOnFirstFailure skips units that have not started once any unit failed.
	HaltOnFirstFailure bool
}

// UnitResult is the outcome of one identifier.
type UnitResult struct {
	Identifier string
	ProductURL string
	Reviews    []domain.Review
	Err        error
	Skipped    bool
	Duration   time.Duration
}

// BatchResult holds every successful record in completion order.
type BatchResult struct {
	Reviews  []domain.Review
	Units    []UnitResult
	Failures int
	Skipped  int
}

// RunBatch runs normalize → fetch → extract for every identifier on a fixed
// pool of workers. A failing or panicking unit is counted and logged and never
// stops its siblings. Only the collector below touches the result; the
// halt flag is the one thing workers share.
func RunBatch(ctx context.Context, ids []string, normalize NormalizeFunc, fetch FetchFunc, extract ExtractFunc, opts BatchOptions) BatchResult {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if len(ids) > 0 && workers > len(ids) {
		workers = len(ids)
	}

	jobs := make(chan string)
	results := make(chan UnitResult)
	var halted atomic.Bool

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for id := range jobs {
				if halted.Load() || ctx.Err() != nil {
					results <- UnitResult{Identifier: id, Skipped: true}
					continue
				}
				res := runUnit(ctx, id, normalize, fetch, extract)
				if res.Err != nil && opts.HaltOnFirstFailure {
					halted.Store(true)
				}
				results <- res
			}
			return nil
		})
	}
	go func() {
		defer close(jobs)
		for _, id := range ids {
			jobs <- id
		}
	}()
	go func() {
		_ = g.Wait()
		close(results)
	}()

	out := BatchResult{Units: make([]UnitResult, 0, len(ids))}
	for res := range results {
		out.Units = append(out.Units, res)
		switch {
		case res.Skipped:
			out.Skipped++
			observability.ObserveUnit("skipped", 0)
			log.Debug().Str("id", res.Identifier).Msg("unit skipped")
		case res.Err != nil:
			out.Failures++
			observability.ObserveUnit("failed", res.Duration)
			log.Warn().Str("id", res.Identifier).Str("kind", observability.LabelErr(res.Err)).Err(res.Err).Msg("scrape failed")
		default:
			out.Reviews = append(out.Reviews, res.Reviews...)
			observability.ObserveUnit("ok", res.Duration)
			log.Info().Str("id", res.Identifier).Int("reviews", len(res.Reviews)).Msg("scrape ok")
		}
	}

	log.Info().
		Int("units", len(ids)).
		Int("reviews", len(out.Reviews)).
		Int("failures", out.Failures).
		Int("skipped", out.Skipped).
		Msg("batch finished")
	return out
}

func runUnit(ctx context.Context, id string, normalize NormalizeFunc, fetch FetchFunc, extract ExtractFunc) (res UnitResult) {
	res.Identifier = id
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Reviews = nil
			res.Err = fmt.Errorf("unit panicked: %v", p)
		}
		res.Duration = time.Since(start)
	}()

	u, err := normalize(id)
	if err != nil {
		res.Err = fmt.Errorf("normalize: %w", err)
		return res
	}
	res.ProductURL = u

	html, err := fetch(ctx, u)
	if err != nil {
		res.Err = err
		return res
	}
	rs, err := extract(html, u)
	if err != nil {
		res.Err = fmt.Errorf("extract %s: %w", u, err)
		return res
	}
	res.Reviews = rs
	return res
}
