package shared

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoURLs = errors.New("no URLs found")

// LoadURLs reads one product identifier per line. Blank lines and lines
// starting with # are skipped; a file that yields nothing is an error.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input URLs file: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoURLs, path)
	}
	return urls, nil
}
