// internal/adapters/web/client.go
package web

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/domain"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second

	maxBody = 16 << 20
)

type Options struct {
	UserAgent    string
	Timeout      time.Duration
	RequestDelay time.Duration // pause after every successful fetch
	RPS          int           // client-side rate limit; <= 0 disables it
	Retries      int           // extra attempts on 429/5xx and network errors
}

// Client fetches product pages as HTML.
type Client struct {
	hc    *http.Client
	ua    string
	delay time.Duration
	rl    *rate.Limiter
	tries int
}

func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	rl := rate.NewLimiter(rate.Inf, 0)
	if o.RPS > 0 {
		rl = rate.NewLimiter(rate.Limit(o.RPS), o.RPS)
	}
	return &Client{
		hc:    &http.Client{Timeout: o.Timeout},
		ua:    o.UserAgent,
		delay: o.RequestDelay,
		rl:    rl,
		tries: o.Retries + 1,
	}
}

// Fetch performs a GET with client-side rate limiting and retries and returns the body.
// Non-2xx answers come back as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}
	host := hostOf(pageURL)
	log.Debug().Str("url", pageURL).Msg("fetching")

	var lastErr error
	for i := 0; i < c.tries; i++ {
		last := i == c.tries-1

		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		req.Header.Set("User-Agent", c.ua)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("web", host, 0, time.Since(start))
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = fmt.Errorf("fetch %s: %w", pageURL, err)
			if !last && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", lastErr
		}
		observability.ObserveExternal("web", host, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			resp.Body.Close()
			if err != nil {
				return "", fmt.Errorf("read %s: %w", pageURL, err)
			}
			if c.delay > 0 {
				sleepCtx(ctx, c.delay)
			}
			return string(b), nil

		case retryable(resp.StatusCode):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = &domain.FetchError{URL: pageURL, Status: resp.StatusCode}
			if wait == 0 {
				wait = backoff(i)
			}
			if !last && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Debug().Str("url", pageURL).Int("status", resp.StatusCode).Msg("request failed")
			return "", lastErr

		default:
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			log.Debug().Str("url", pageURL).Int("status", resp.StatusCode).Msg("request failed")
			return "", &domain.FetchError{URL: pageURL, Status: resp.StatusCode}
		}
	}
	return "", lastErr
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
