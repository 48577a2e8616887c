package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"review_scraper/internal/domain"
)

// maxRowsPerInsert keeps one statement well under the placeholder limit.
const maxRowsPerInsert = 500

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// valTime turns a canonical createdDate into a DATETIME value for ordering.
func valTime(p *string) any {
	if p == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *p)
	if err != nil {
		return nil
	}
	return t.UTC()
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertReviews stores rs under productURL keyed by their dedup key.
// Reviews without a key are not stored.
func (r *Repo) UpsertReviews(ctx context.Context, productURL string, rs []domain.Review) error {
	productHash := sha1Hex(productURL)

	rows := make([][]any, 0, len(rs))
	for _, rv := range rs {
		key, ok := rv.DedupKey()
		if !ok {
			continue
		}
		rows = append(rows, []any{
			productHash,
			productURL,
			sha1Hex(key),
			valStr(rv.Username),
			rv.Text,
			valStr(rv.CreatedDate),
			valTime(rv.CreatedDate),
			valInt(rv.Rating),
			rv.Source,
			valStr(rv.SyndicatedSource),
		})
	}

	for start := 0; start < len(rows); start += maxRowsPerInsert {
		end := min(start+maxRowsPerInsert, len(rows))
		chunk := rows[start:end]

		values := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*10)
		for _, row := range chunk {
			values = append(values, reviewRowPlaceholders)
			args = append(args, row...)
		}
		sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
		if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert %d reviews: %w", len(chunk), err)
		}
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, productURL string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, sha1Hex(productURL), productURL, status, reason)
	return err
}

func (r *Repo) ListReviews(ctx context.Context, productURL string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, sha1Hex(productURL), pg.Limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var username, createdDate, syndicated sql.NullString
		var rating sql.NullInt64
		if err := rows.Scan(
			&rv.ProductURL,
			&username,
			&rv.Text,
			&createdDate,
			&rating,
			&rv.Source,
			&syndicated,
		); err != nil {
			return domain.ReviewsPage{}, err
		}
		rv.Username = nullStr(username)
		rv.CreatedDate = nullStr(createdDate)
		rv.SyndicatedSource = nullStr(syndicated)
		if rating.Valid {
			n := int(rating.Int64)
			rv.Rating = &n
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{ProductURL: productURL, Items: out}, nil
}
