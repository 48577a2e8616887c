package mysql

// Note: `text` is a keyword; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (product_hash, product_url, review_key, username, `text`, created_date, created_at, rating, source, syndicated_source)\n" +
	"VALUES "

const reviewRowPlaceholders = "(?,?,?,?,?,?,?,?,?,?)"

// The key is (product, text|date), so only the descriptive columns can change.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  username          = VALUES(username),\n" +
	"  rating            = VALUES(rating),\n" +
	"  source            = VALUES(source),\n" +
	"  syndicated_source = VALUES(syndicated_source),\n" +
	"  created_at        = VALUES(created_at)\n"

const insertMissSQL = `
INSERT INTO ingest_misses (product_hash, product_url, http_status, reason)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// Newest first; NULL dates sort last. Served by ix_reviews_product_created.
const listReviewsSQL = "SELECT product_url, username, `text`, created_date, rating, source, syndicated_source\n" +
	"FROM reviews\n" +
	"WHERE product_hash = ?\n" +
	"ORDER BY created_at DESC, id DESC\n" +
	"LIMIT ?"
