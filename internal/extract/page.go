package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"review_scraper/internal/domain"
)

const jsonLDType = "application/ld+json"

// PageResult is what one page yields: the unique reviews in first-seen
// order plus every item dropped along the way.
type PageResult struct {
	Reviews    []domain.Review
	Skips      []Skip
	Candidates int // JSON values located on the page
	RawObjects int // review-shaped objects found in them
}

// PageExtractor runs locate → flatten → build → dedup over one HTML page.
type PageExtractor struct {
	builder *Builder
}

func NewPageExtractor(b *Builder) *PageExtractor {
	if b == nil {
		b = NewBuilder(nil)
	}
	return &PageExtractor{builder: b}
}

// Extract returns the unique reviews found in html. The only error is a
// failure to read the document; malformed scripts and items become skips.
func (e *PageExtractor) Extract(html, productURL string) (PageResult, error) {
	var res PageResult

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return res, fmt.Errorf("parse html: %w", err)
	}
	scripts := doc.Find("script")

	// 1) JSON-LD blocks.
	var candidates []Node
	scripts.Each(func(_ int, s *goquery.Selection) {
		if !isJSONLD(s) {
			return
		}
		nodes, err := ParseJSONLD(s.Text())
		if err != nil {
			log.Debug().Err(err).Str("url", productURL).Msg("json-ld script is not JSON")
			res.Skips = append(res.Skips, Skip{Stage: StageJSONLD, Reason: err.Error()})
			return
		}
		candidates = append(candidates, nodes...)
	})

	// 2) Inline scripts that mention reviews, only when JSON-LD gave nothing.
	if len(candidates) == 0 {
		scripts.Each(func(_ int, s *goquery.Selection) {
			text := s.Text()
			if text == "" || !strings.Contains(strings.ToLower(text), "review") {
				return
			}
			nodes, skips := LocateCandidates(text)
			candidates = append(candidates, nodes...)
			res.Skips = append(res.Skips, skips...)
		})
	}
	res.Candidates = len(candidates)

	// 3) Flatten.
	var raw []Node
	for _, c := range candidates {
		raw = append(raw, CollectReviewObjects(c)...)
	}
	res.RawObjects = len(raw)

	// 4) Build.
	built := make([]domain.Review, 0, len(raw))
	for _, item := range raw {
		rv, err := e.safeBuild(item, productURL)
		if err != nil {
			log.Debug().Err(err).Str("url", productURL).Msg("failed to build review from JSON item")
			res.Skips = append(res.Skips, Skip{Stage: StageBuild, Reason: err.Error()})
			continue
		}
		built = append(built, rv)
	}

	// 5) Dedup.
	unique, skips := Dedup(built)
	res.Reviews = unique
	res.Skips = append(res.Skips, skips...)

	log.Debug().
		Str("url", productURL).
		Int("candidates", res.Candidates).
		Int("raw", res.RawObjects).
		Int("reviews", len(res.Reviews)).
		Int("skips", len(res.Skips)).
		Msg("page extracted")
	return res, nil
}

// Reviews is Extract without the bookkeeping.
func (e *PageExtractor) Reviews(html, productURL string) ([]domain.Review, error) {
	res, err := e.Extract(html, productURL)
	if err != nil {
		return nil, err
	}
	return res.Reviews, nil
}

func (e *PageExtractor) safeBuild(item Node, productURL string) (rv domain.Review, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("build panicked: %v", p)
		}
	}()
	return e.builder.Build(item, productURL), nil
}

func isJSONLD(s *goquery.Selection) bool {
	t, ok := s.Attr("type")
	return ok && strings.EqualFold(strings.TrimSpace(t), jsonLDType)
}

// Dedup keeps the first review for each dedup key, in input order.
// Reviews without text and date have no key and are dropped.
func Dedup(in []domain.Review) ([]domain.Review, []Skip) {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Review, 0, len(in))
	var skips []Skip
	for _, rv := range in {
		key, ok := rv.DedupKey()
		if !ok {
			skips = append(skips, Skip{Stage: StageDedup, Reason: "no text and no date"})
			continue
		}
		if _, dup := seen[key]; dup {
			skips = append(skips, Skip{Stage: StageDedup, Reason: "duplicate"})
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rv)
	}
	return out, skips
}
