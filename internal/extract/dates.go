package extract

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog/log"
)

// DefaultTimeZone is attached to dates that carry no zone of their own.
const DefaultTimeZone = "UTC"

// DateNormalizer turns free-form review dates into RFC 3339 UTC timestamps.
type DateNormalizer struct {
	loc *time.Location // nil when the default zone could not be loaded
}

// NewDateNormalizer resolves tz once. An unknown zone is not an error:
// zone-less dates are then read the way time.Parse reads them (as UTC).
func NewDateNormalizer(tz string) *DateNormalizer {
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Debug().Err(err).Str("tz", tz).Msg("default time zone lookup failed")
		return &DateNormalizer{}
	}
	return &DateNormalizer{loc: loc}
}

// Normalize returns the canonical form of raw and true, or "" and false
// when raw is empty or cannot be parsed.
func (d *DateNormalizer) Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	var (
		t   time.Time
		err error
	)
	if d.loc != nil {
		t, err = dateparse.ParseIn(raw, d.loc)
	} else {
		t, err = dateparse.ParseAny(raw)
	}
	if err != nil {
		log.Debug().Err(err).Str("date", raw).Msg("failed to parse date string")
		return "", false
	}
	return t.UTC().Format(time.RFC3339Nano), true
}

// NormalizeDate is a one-shot helper around DateNormalizer.
func NormalizeDate(raw, defaultTZ string) (string, bool) {
	return NewDateNormalizer(defaultTZ).Normalize(raw)
}
