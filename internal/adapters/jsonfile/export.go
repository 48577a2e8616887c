package jsonfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"review_scraper/internal/domain"
)

// Export writes reviews to path as one JSON array, creating parent
// directories. Non-ASCII text is written as is; pretty uses a 2-space indent.
func Export(reviews []domain.Review, path string, pretty bool) error {
	if reviews == nil {
		reviews = []domain.Review{}
	}
	log.Info().Int("reviews", len(reviews)).Str("path", path).Msg("exporting reviews")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(reviews); err != nil {
		return fmt.Errorf("encode reviews: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("json export complete")
	return nil
}
