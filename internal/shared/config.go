package shared

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string
	LogLevel string

	// scraping
	InputFile       string
	OutputFile      string
	Region          string
	Workers         int
	FetchTimeout    time.Duration
	RequestDelay    time.Duration
	FetchRPS        int
	FetchRetries    int
	UserAgent       string
	Pretty          bool
	DefaultTimeZone string

	// persistence and read API
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
}

// Settings is the on-disk settings file. Durations are in seconds.
// Absent keys keep the defaults.
type Settings struct {
	InputFile       *string  `json:"input_file" yaml:"input_file"`
	OutputFile      *string  `json:"output_file" yaml:"output_file"`
	Region          *string  `json:"region" yaml:"region"`
	Concurrency     *int     `json:"concurrency" yaml:"concurrency"`
	Timeout         *float64 `json:"timeout" yaml:"timeout"`
	RequestDelay    *float64 `json:"request_delay" yaml:"request_delay"`
	UserAgent       *string  `json:"user_agent" yaml:"user_agent"`
	Pretty          *bool    `json:"pretty" yaml:"pretty"`
	DefaultTimeZone *string  `json:"default_time_zone" yaml:"default_time_zone"`
}

func defaults() Config {
	return Config{
		AppEnv:          "prod",
		InputFile:       "data/inputs.txt",
		OutputFile:      "data/reviews.json",
		Region:          "au",
		Workers:         4,
		FetchTimeout:    10 * time.Second,
		FetchRPS:        5,
		Pretty:          true,
		DefaultTimeZone: "UTC",
		HTTPAddr:        ":8080",
		MySQLDSN:        "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:       "localhost:6379",
		CacheTTL:        900 * time.Second,
	}
}

// Load builds the config from defaults, then the settings file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	c := defaults()
	if path != "" {
		s, err := ReadSettings(path)
		if err != nil {
			return Config{}, err
		}
		s.apply(&c)
	}
	c.applyEnv()

	if c.Workers < 1 {
		log.Warn().Int("workers", c.Workers).Msg("concurrency below 1, using 1")
		c.Workers = 1
	}
	c.Region = strings.ToLower(strings.TrimSpace(c.Region))
	return c, nil
}

// ReadSettings parses a JSON (.json) or YAML settings file.
func ReadSettings(path string) (Settings, error) {
	var s Settings
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("settings file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(b, &s)
	} else {
		err = yaml.Unmarshal(b, &s)
	}
	if err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) apply(c *Config) {
	if s.InputFile != nil {
		c.InputFile = *s.InputFile
	}
	if s.OutputFile != nil {
		c.OutputFile = *s.OutputFile
	}
	if s.Region != nil {
		c.Region = *s.Region
	}
	if s.Concurrency != nil {
		c.Workers = *s.Concurrency
	}
	if s.Timeout != nil {
		c.FetchTimeout = seconds(*s.Timeout)
	}
	if s.RequestDelay != nil {
		c.RequestDelay = seconds(*s.RequestDelay)
	}
	if s.UserAgent != nil {
		c.UserAgent = *s.UserAgent
	}
	if s.Pretty != nil {
		c.Pretty = *s.Pretty
	}
	if s.DefaultTimeZone != nil {
		c.DefaultTimeZone = *s.DefaultTimeZone
	}
}

func (c *Config) applyEnv() {
	c.AppEnv = env("APP_ENV", c.AppEnv)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.Region = env("REGION", c.Region)
	c.Workers = atoi("SCRAPE_WORKERS", c.Workers)
	c.FetchTimeout = durEnv("FETCH_TIMEOUT_SECONDS", time.Second, c.FetchTimeout)
	c.RequestDelay = durEnv("REQUEST_DELAY_MS", time.Millisecond, c.RequestDelay)
	c.FetchRPS = atoi("FETCH_RPS", c.FetchRPS)
	c.FetchRetries = atoi("FETCH_RETRIES", c.FetchRetries)
	c.UserAgent = env("USER_AGENT", c.UserAgent)
	c.HTTPAddr = env("HTTP_ADDR", c.HTTPAddr)
	c.MetricsAddr = env("METRICS_ADDR", c.MetricsAddr)
	c.MySQLDSN = env("MYSQL_DSN", c.MySQLDSN)
	c.RedisAddr = env("REDIS_ADDR", c.RedisAddr)
	c.RedisPass = env("REDIS_PASSWORD", c.RedisPass)
	c.RedisDB = atoi("REDIS_DB", c.RedisDB)
	c.CacheTTL = durEnv("CACHE_TTL_SECONDS", time.Second, c.CacheTTL)
}

// durEnv reads an integer count of unit from k.
func durEnv(k string, unit, def time.Duration) time.Duration {
	if os.Getenv(k) == "" {
		return def
	}
	return time.Duration(atoi(k, int(def/unit))) * unit
}

func seconds(f float64) time.Duration {
	if f <= 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
	}
	return def
}
