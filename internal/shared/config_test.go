package shared_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"review_scraper/internal/shared"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := shared.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Region != "au" || c.Workers != 4 || c.FetchTimeout != 10*time.Second || !c.Pretty || c.DefaultTimeZone != "UTC" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoad_JSONSettings(t *testing.T) {
	p := writeFile(t, "settings.json", `{
	"input_file": "in.txt",
	"output_file": "out/reviews.json",
	"region": "NZ",
	"concurrency": 8,
	"timeout": 2.5,
	"request_delay": 0.25,
	"user_agent": "bot/1",
	"pretty": false
}`)
	c, err := shared.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.InputFile != "in.txt" || c.OutputFile != "out/reviews.json" || c.Region != "nz" {
		t.Fatalf("paths/region: %+v", c)
	}
	if c.Workers != 8 || c.FetchTimeout != 2500*time.Millisecond || c.RequestDelay != 250*time.Millisecond {
		t.Fatalf("numbers: %+v", c)
	}
	if c.UserAgent != "bot/1" || c.Pretty {
		t.Fatalf("ua/pretty: %+v", c)
	}
}

func TestLoad_YAMLSettingsAndEnvOverride(t *testing.T) {
	p := writeFile(t, "settings.yaml", "region: au\nconcurrency: 2\ndefault_time_zone: Australia/Sydney\n")
	t.Setenv("SCRAPE_WORKERS", "6")
	t.Setenv("REQUEST_DELAY_MS", "150")
	t.Setenv("FETCH_RETRIES", "2")

	c, err := shared.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.Workers != 6 || c.RequestDelay != 150*time.Millisecond || c.FetchRetries != 2 {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.DefaultTimeZone != "Australia/Sydney" {
		t.Fatalf("tz = %q", c.DefaultTimeZone)
	}
}

func TestLoad_ClampsWorkers(t *testing.T) {
	p := writeFile(t, "settings.json", `{"concurrency": 0}`)
	c, err := shared.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.Workers != 1 {
		t.Fatalf("workers = %d", c.Workers)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := shared.Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}
	if _, err := shared.Load(writeFile(t, "bad.json", `{"concurrency": "many"}`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadURLs(t *testing.T) {
	p := writeFile(t, "urls.txt", "# products\n\nhttps://www.woolworths.com.au/shop/productdetails/1\n  /shop/productdetails/2  \n#skip\n")
	urls, err := shared.LoadURLs(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 || urls[1] != "/shop/productdetails/2" {
		t.Fatalf("urls = %q", urls)
	}

	if _, err := shared.LoadURLs(writeFile(t, "empty.txt", "\n# nothing\n")); !errors.Is(err, shared.ErrNoURLs) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := shared.LoadURLs(filepath.Join(t.TempDir(), "nope.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing: %v", err)
	}
}
