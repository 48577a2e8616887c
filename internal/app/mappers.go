package app

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"review_scraper/internal/domain"
)

// ErrEmptyIdentifier is returned for blank product identifiers.
var ErrEmptyIdentifier = errors.New("empty product identifier")

/********** identifier -> product URL **********/

// URLNormalizer maps product identifiers onto absolute URLs on a region's
// storefront. Absolute http(s) URLs pass through untouched.
type URLNormalizer struct {
	base string
}

func NewURLNormalizer(region string) (*URLNormalizer, error) {
	r, err := domain.ParseRegion(region)
	if err != nil {
		return nil, err
	}
	return &URLNormalizer{base: "https://" + r.BaseDomain()}, nil
}

func (n *URLNormalizer) Normalize(identifier string) (string, error) {
	u := strings.TrimSpace(identifier)
	if u == "" {
		return "", ErrEmptyIdentifier
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u, nil
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	out := n.base + u
	log.Debug().Str("identifier", identifier).Str("url", out).Msg("normalized relative URL")
	return out, nil
}

/********** keys **********/

func hashURL(productURL string) string {
	sum := sha1.Sum([]byte(productURL))
	return hex.EncodeToString(sum[:])
}

func reviewsCacheKey(productURL string, limit int, sort string) string {
	return fmt.Sprintf("reviews:%s:%d:%s", hashURL(productURL), limit, sort)
}
