package extract

import (
	"math"
	"strconv"
	"strings"

	"review_scraper/internal/domain"
)

/********** field shapes **********/

type authorKind uint8

const (
	authorNone  authorKind = iota
	authorNamed            // {"@type":"Person","name":"..."}
	authorPlain            // "..."
)

// authorField is the decoded shape of an "author" value.
type authorField struct {
	kind authorKind
	name *string
}

func decodeAuthor(n Node, present bool) authorField {
	if !present {
		return authorField{}
	}
	switch n.Kind {
	case Object:
		if name, ok := n.Get("name"); ok && name.Kind == String {
			s := name.Str
			return authorField{kind: authorNamed, name: &s}
		}
		return authorField{kind: authorNamed}
	case String:
		s := n.Str
		return authorField{kind: authorPlain, name: &s}
	}
	return authorField{}
}

type ratingKind uint8

const (
	ratingNone      ratingKind = iota
	ratingContainer            // {"ratingValue": ...}
	ratingScalar               // 5 or "5"
)

// ratingField is the decoded shape of a "reviewRating" value.
type ratingField struct {
	kind  ratingKind
	value Node
}

func decodeRating(n Node, present bool) ratingField {
	if !present {
		return ratingField{}
	}
	switch n.Kind {
	case Object:
		v, _ := n.Get("ratingValue")
		return ratingField{kind: ratingContainer, value: v}
	case Number, String:
		return ratingField{kind: ratingScalar, value: n}
	}
	return ratingField{}
}

func (r ratingField) int() *int {
	if r.kind == ratingNone {
		return nil
	}
	return coerceInt(r.value)
}

/********** tiny helpers **********/

// coerceInt converts numbers (truncating) and integer strings; anything else is nil.
func coerceInt(n Node) *int {
	switch n.Kind {
	case Number:
		if i, err := n.Number.Int64(); err == nil {
			return intPtr(i)
		}
		f, err := n.Number.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		f = math.Trunc(f)
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return nil
		}
		return intPtr(int64(f))
	case String:
		i, err := strconv.ParseInt(strings.TrimSpace(n.Str), 10, 64)
		if err != nil {
			return nil
		}
		return intPtr(i)
	}
	return nil
}

func intPtr(i int64) *int {
	if i > math.MaxInt || i < math.MinInt {
		return nil
	}
	x := int(i)
	return &x
}

// firstString returns the first non-empty string stored under one of keys.
func firstString(n Node, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := n.Get(k); ok {
			if s, ok := v.StringValue(); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func optionalString(n Node, key string) *string {
	v, ok := n.Get(key)
	if !ok {
		return nil
	}
	s, ok := v.StringValue()
	if !ok {
		return nil
	}
	return &s
}

/********** builder **********/

// Builder maps review-shaped objects onto domain.Review.
type Builder struct {
	dates         *DateNormalizer
	defaultSource string
}

func NewBuilder(dates *DateNormalizer) *Builder {
	if dates == nil {
		dates = NewDateNormalizer(DefaultTimeZone)
	}
	return &Builder{dates: dates, defaultSource: domain.DefaultSource}
}

// Build never fails: a malformed field degrades to nil (or its default)
// and the rest of the record is still produced.
func (b *Builder) Build(item Node, productURL string) domain.Review {
	rv := domain.Review{ProductURL: productURL}

	rv.Username = decodeAuthor(item.Get("author")).name

	if s, ok := firstString(item, "reviewBody", "description"); ok {
		rv.Text = strings.TrimSpace(s)
	}

	rv.Rating = decodeRating(item.Get("reviewRating")).int()

	if raw, ok := firstString(item, "datePublished", "dateCreated"); ok {
		if d, ok := b.dates.Normalize(raw); ok {
			rv.CreatedDate = &d
		}
	}

	rv.Source = b.defaultSource
	if s, ok := firstString(item, "source"); ok {
		rv.Source = s
	}
	rv.SyndicatedSource = optionalString(item, "syndicatedSource")

	return rv
}
