package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reinarrr/TLR-web-cfpages/internal/config"
	"github.com/reinarrr/TLR-web-cfpages/internal/content"
	"github.com/reinarrr/TLR-web-cfpages/internal/feed"
	"github.com/reinarrr/TLR-web-cfpages/internal/fetch"
	"github.com/reinarrr/TLR-web-cfpages/internal/logging"
	"github.com/reinarrr/TLR-web-cfpages/internal/overrides"
	"github.com/reinarrr/TLR-web-cfpages/internal/page"
	"github.com/reinarrr/TLR-web-cfpages/internal/schedule"
	"github.com/reinarrr/TLR-web-cfpages/internal/server"
	"github.com/reinarrr/TLR-web-cfpages/internal/target"
	"github.com/reinarrr/TLR-web-cfpages/internal/youtube"
)

const shutdownTimeout = 10 * time.Second

func main() {
	exportDir := flag.String("export", "", "render every page once into this directory and exit")
	flag.Parse()

	// Env loading runs before the real logger exists so LOG_LEVEL from
	// .env is honoured.
	config.LoadEnvFile(logging.Bootstrap())

	cfg, err := config.Load()
	if err != nil {
		base := logging.Base()
		base.Fatal().Err(err).Msg("config")
	}
	logging.Configure(logging.Config{Level: cfg.LogLevel})
	logger := logging.WithComponent("main")

	pages, err := config.LoadPages(cfg.PagesFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("pages")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fetcher := fetch.New(cfg.RequestTimeout)
	site := content.New(cfg.SiteBaseURL, fetcher)

	src, closeSrc, err := overrideSource(ctx, cfg, site, fetcher, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("overrides")
	}
	defer closeSrc()

	loader := page.NewLoader(page.Deps{
		Feed:        youtube.New(cfg.FeedURL, fetcher),
		Overrides:   src,
		Content:     site,
		Merger:      feed.Merger{Location: cfg.DisplayLocation},
		Rule:        cfg.Rule,
		Location:    cfg.DisplayLocation,
		LibraryYear: cfg.LibraryYear,
	}, logging.WithComponent("loader"))

	if *exportDir != "" {
		store := &target.DirStore{Root: *exportDir}
		logger.Info().Str("dir", *exportDir).Int("pages", len(pages)).Msg("export: rendering")
		if err := loader.LoadAll(ctx, pages, store); err != nil {
			logger.Fatal().Err(err).Msg("export")
		}
		logger.Info().Msg("export: done")
		return
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer closeStore()

	// Run immediately at startup so every page exists before the first
	// request and before the clocks start writing.
	logger.Info().Msg("render: running immediately on startup")
	if err := loader.LoadAll(ctx, pages, store); err != nil {
		logger.Warn().Err(err).Msg("render: startup run incomplete")
	}

	clocks := startClocks(cfg, pages, store)
	defer func() {
		for _, c := range clocks {
			c.Stop()
		}
	}()

	srv := &server.Server{
		Store:     store,
		Loader:    loader,
		Pages:     pages,
		Rule:      cfg.Rule,
		Location:  cfg.DisplayLocation,
		RateLimit: cfg.RateLimitPerMin,
		Logger:    logging.WithComponent("http"),
	}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("http: listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		refreshLoop(gctx, loader, pages, store, cfg.RefreshInterval, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("shutdown")
		return
	}
	logger.Info().Msg("shutdown: clean")
}

func refreshLoop(ctx context.Context, loader *page.Loader, pages []page.Page, store target.Store, every time.Duration, logger zerolog.Logger) {
	logger.Info().Dur("interval", every).Msg("render: refresh enabled")
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if err := loader.LoadAll(ctx, pages, store); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Msg("render: scheduled run incomplete")
		}
	}
}

// overrideSource prefers the curated Postgres table when DATABASE_URL is
// set, otherwise messages.json on the site.
func overrideSource(ctx context.Context, cfg config.Config, site *content.Client, f *fetch.Client, logger zerolog.Logger) (overrides.Source, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := overrides.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := &overrides.PGStore{Pool: pool}
		if err := pg.ApplySchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Msg("overrides: using postgres")
		return pg, pool.Close, nil
	}
	u, err := site.Resolve(cfg.OverridesPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("url", u).Msg("overrides: using static document")
	return &overrides.HTTPSource{URL: u, Fetcher: f}, func() {}, nil
}

func newStore(cfg config.Config) (target.Store, func(), error) {
	if cfg.RedisURL == "" {
		return target.NewMemoryStore(), func() {}, nil
	}
	rdb, err := target.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}
	return &target.RedisStore{Client: rdb, TTL: cfg.FragmentTTL}, func() { _ = rdb.Close() }, nil
}

// startClocks runs a live status clock for every page that shows one.
func startClocks(cfg config.Config, pages []page.Page, store target.Store) []*schedule.Clock {
	var clocks []*schedule.Clock
	for _, p := range pages {
		if !slices.Contains(p.Containers, schedule.TimeContainer) {
			continue
		}
		logger := logging.ForPage("clock", p.Name)
		surface := &target.StoreSurface{Store: store, Page: p.Name, Containers: p.Containers, Logger: logger}
		clocks = append(clocks, schedule.Start(cfg.Rule, cfg.DisplayLocation, surface, schedule.Options{Logger: logger}))
	}
	return clocks
}
