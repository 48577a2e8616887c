package domain

import "strings"

// DefaultSource is used when a review payload does not name its source.
const DefaultSource = "Woolworths/BazaarVoice"

// Review is the canonical record emitted for one product review.
// Absent optional fields are nil and serialize as null.
type Review struct {
	ProductURL       string  `json:"productUrl"`
	Username         *string `json:"username"`
	Text             string  `json:"text"`
	CreatedDate      *string `json:"createdDate"`
	Rating           *int    `json:"rating"`
	Source           string  `json:"source"`
	SyndicatedSource *string `json:"syndicatedSource"`
}

// DedupKey joins the trimmed text and the normalized date with "|".
// ok is false when the review has neither text nor date; such reviews
// are never collected.
func (r Review) DedupKey() (key string, ok bool) {
	text := strings.TrimSpace(r.Text)
	date := ""
	if r.CreatedDate != nil {
		date = *r.CreatedDate
	}
	if text == "" && date == "" {
		return "", false
	}
	return text + "|" + date, true
}
