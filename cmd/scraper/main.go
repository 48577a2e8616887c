package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"review_scraper/internal/adapters/jsonfile"
	"review_scraper/internal/adapters/observability"
	redisad "review_scraper/internal/adapters/redis"
	"review_scraper/internal/adapters/web"
	"review_scraper/internal/app"
	"review_scraper/internal/extract"
	"review_scraper/internal/shared"
	mysqlrepo "review_scraper/internal/storage/mysql"
)

type options struct {
	Settings      string `long:"settings" env:"SETTINGS_FILE" description:"Path to a JSON or YAML settings file"`
	Input         string `long:"input" description:"Override the input URLs file from settings"`
	Output        string `long:"output" description:"Override the output JSON file from settings"`
	Region        string `long:"region" description:"Override the region (au or nz)"`
	Workers       int    `long:"workers" description:"Override the number of concurrent scrapes"`
	Verbose       []bool `short:"v" long:"verbose" description:"Increase verbosity (-v for info, -vv for debug)"`
	Compact       bool   `long:"compact" description:"Write compact JSON instead of pretty-printed"`
	Persist       bool   `long:"persist" description:"Also upsert reviews into MySQL and evict cached pages"`
	HaltOnFailure bool   `long:"halt-on-failure" description:"Skip remaining products after the first failure"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Error().Err(err).Msg("scrape aborted")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := shared.Load(opts.Settings)
	if err != nil {
		// logger is not configured yet; keep the default
		return fmt.Errorf("load settings: %w", err)
	}
	if opts.Input != "" {
		cfg.InputFile = opts.Input
	}
	if opts.Output != "" {
		cfg.OutputFile = opts.Output
	}
	if opts.Region != "" {
		cfg.Region = opts.Region
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Compact {
		cfg.Pretty = false
	}

	// 1) global logger: -v wins over LOG_LEVEL
	log.Logger = observability.NewLogger(cfg.AppEnv)
	level := observability.ParseLevel(cfg.LogLevel, zerolog.WarnLevel)
	if len(opts.Verbose) > 0 {
		level = observability.VerbosityLevel(len(opts.Verbose))
	}
	zerolog.SetGlobalLevel(level)

	reg := observability.InitRegistry()
	if srv := observability.Serve(cfg.MetricsAddr, reg); srv != nil {
		defer srv.Close()
	}

	urls, err := shared.LoadURLs(cfg.InputFile)
	if err != nil {
		return err
	}
	log.Info().Int("urls", len(urls)).Str("input", cfg.InputFile).Msg("loaded URLs")

	fetcher := web.New(web.Options{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.FetchTimeout,
		RequestDelay: cfg.RequestDelay,
		RPS:          cfg.FetchRPS,
		Retries:      cfg.FetchRetries,
	})
	extractor := extract.NewPageExtractor(extract.NewBuilder(extract.NewDateNormalizer(cfg.DefaultTimeZone)))
	svc, err := app.NewScrapeService(fetcher, extractor, cfg.Region)
	if err != nil {
		return err
	}

	log.Info().Int("workers", cfg.Workers).Str("region", cfg.Region).Msg("starting scrape")
	res := svc.Run(ctx, urls, app.BatchOptions{Workers: cfg.Workers, HaltOnFirstFailure: opts.HaltOnFailure})
	log.Info().Int("reviews", len(res.Reviews)).Int("errors", res.Failures).Msg("scraping finished")

	if err := jsonfile.Export(res.Reviews, cfg.OutputFile, cfg.Pretty); err != nil {
		return err
	}

	if opts.Persist {
		if err := persist(ctx, cfg, res); err != nil {
			return err
		}
	}

	if opts.HaltOnFailure && res.Failures > 0 {
		return errors.New("halted after a failed product")
	}
	fmt.Printf("Scraping complete. %d review(s) saved to %s\n", len(res.Reviews), cfg.OutputFile)
	return nil
}

func persist(ctx context.Context, cfg shared.Config, res app.BatchResult) error {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	ing := app.NewIngestionService(mysqlrepo.New(db), cache)
	if err := ing.Persist(ctx, res); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	log.Info().Int("reviews", len(res.Reviews)).Msg("reviews persisted")
	return nil
}
