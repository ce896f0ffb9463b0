package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reinarrr/TLR-web-cfpages/internal/feed"
	"github.com/reinarrr/TLR-web-cfpages/internal/metrics"
	"github.com/reinarrr/TLR-web-cfpages/internal/overrides"
	"github.com/reinarrr/TLR-web-cfpages/internal/render"
	"github.com/reinarrr/TLR-web-cfpages/internal/schedule"
	"github.com/reinarrr/TLR-web-cfpages/internal/target"
	"github.com/reinarrr/TLR-web-cfpages/internal/youtube"
)

// Grid windows of the merged feed.
const (
	homeFeedCount = 3
	homeDeepDives = 3
	flexDays      = 40
	recentStart   = 1
	archiveStart  = 4
	archiveEnd    = 12
)

var (
	errNoFeed    = errors.New("feed source not configured")
	errNoContent = errors.New("content source not configured")
)

// DefaultSections is every section of the site, keyed by trigger container.
func DefaultSections() []Section {
	return []Section{
		{Name: "shared", Trigger: HeaderContainer, Run: runShared},
		{Name: "home-feed", Trigger: "youtube-feed", Run: runHomeFeed},
		{Name: "replays", Trigger: "latest-container", Run: runReplays},
		{Name: "home-deepdives", Trigger: "home-deepdives-grid", Run: runHomeDeepDives},
		{Name: "library", Trigger: "library-grid", Run: runLibrary},
		{Name: "devotionals", Trigger: "devotional-grid", Run: runDevotionals},
		{Name: "flex-grid", Trigger: "flex-grid-container", Run: runFlexGrid},
		{Name: "banner", Trigger: "banner-title", Run: runBanner},
		{Name: "live-player", Trigger: "live-player-container", Run: runLivePlayer},
		{Name: "service-clock", Trigger: schedule.TimeContainer, Run: runServiceClock},
	}
}

// set writes into a container if it exists on the surface.
func set(s target.Surface, id, html string) bool {
	t, ok := s.Target(id)
	if !ok {
		return false
	}
	t.SetContent(html)
	return true
}

func fetchFeed(ctx context.Context, d Deps) ([]youtube.Item, error) {
	if d.Feed == nil {
		return nil, errNoFeed
	}
	items, err := d.Feed.FetchFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return items, nil
}

// mergedFeed fetches the feed and the overrides side by side. An override
// failure is logged and treated as an empty override set.
func mergedFeed(ctx context.Context, d Deps) ([]feed.DisplayItem, error) {
	var (
		items   []youtube.Item
		records []overrides.Record
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		items, err = fetchFeed(ctx, d)
		return err
	})
	g.Go(func() error {
		if d.Overrides == nil {
			return nil
		}
		var err error
		records, err = d.Overrides.Load(ctx)
		metrics.OverridesLoaded(err)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("overrides unavailable, using feed data only")
			records = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d.Merger.Merge(items, records), nil
}

func runShared(ctx context.Context, d Deps, s target.Surface, p Page) (Outcome, error) {
	if d.Content == nil {
		return OutcomeError, errNoContent
	}
	var g errgroup.Group
	var headerErr, footerErr error
	g.Go(func() error {
		header, err := d.Content.Component(ctx, "header")
		if err != nil {
			headerErr = fmt.Errorf("header: %w", err)
			return nil
		}
		if marked, err := MarkActiveNav(header, p.Current); err == nil {
			header = marked
		} else {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("active nav not marked")
		}
		set(s, HeaderContainer, header)
		return nil
	})
	g.Go(func() error {
		footer, err := d.Content.Component(ctx, "footer")
		if err != nil {
			footerErr = fmt.Errorf("footer: %w", err)
			return nil
		}
		set(s, FooterContainer, footer)
		return nil
	})
	_ = g.Wait()
	if err := errors.Join(headerErr, footerErr); err != nil {
		return OutcomeError, err
	}
	return OutcomeOK, nil
}

func runHomeFeed(ctx context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	merged, err := mergedFeed(ctx, d)
	if err != nil {
		return OutcomeError, err
	}
	if len(merged) == 0 {
		set(s, "youtube-feed", render.FeedFallback)
		return OutcomeFallback, nil
	}
	out, err := render.HomeCards(feed.Window(merged, 0, homeFeedCount))
	if err != nil {
		return OutcomeError, err
	}
	set(s, "youtube-feed", out)
	return OutcomeOK, nil
}

func runReplays(ctx context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	merged, err := mergedFeed(ctx, d)
	if err != nil {
		return OutcomeError, err
	}
	if len(merged) == 0 {
		set(s, "latest-container", render.FeedFallback)
		return OutcomeFallback, nil
	}

	hero, err := render.FeatureCard(merged[0])
	if err != nil {
		return OutcomeError, err
	}
	recent, err := render.HybridCards(feed.Window(merged, recentStart, archiveStart), render.SizeRecent)
	if err != nil {
		return OutcomeError, err
	}
	archive, err := render.HybridCards(feed.Window(merged, archiveStart, archiveEnd), render.SizeArchive)
	if err != nil {
		return OutcomeError, err
	}
	set(s, "latest-container", hero)
	set(s, "recent-grid", recent)
	set(s, "archive-grid", archive)
	return OutcomeOK, nil
}

func runHomeDeepDives(ctx context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	if d.Content == nil {
		return OutcomeError, errNoContent
	}
	entries, err := d.Content.DeepDives(ctx, d.LibraryYear)
	if err != nil {
		return OutcomeError, err
	}
	if len(entries) > homeDeepDives {
		entries = entries[:homeDeepDives]
	}
	out, err := render.DeepDiveCards(entries)
	if err != nil {
		return OutcomeError, err
	}
	set(s, "home-deepdives-grid", out)
	if len(entries) == 0 {
		return OutcomeEmpty, nil
	}
	return OutcomeOK, nil
}

func runLibrary(ctx context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	if d.Content == nil {
		set(s, "library-grid", render.ArchiveFallback)
		return OutcomeFallback, errNoContent
	}
	entries, err := d.Content.DeepDives(ctx, d.LibraryYear)
	if err != nil {
		set(s, "library-grid", render.ArchiveFallback)
		return OutcomeFallback, fmt.Errorf("library %s: %w", d.LibraryYear, err)
	}
	out, err := render.LibraryGrid(entries)
	if err != nil {
		return OutcomeError, err
	}
	set(s, "library-grid", out)
	if len(entries) == 0 {
		return OutcomeEmpty, nil
	}
	return OutcomeOK, nil
}

func runDevotionals(ctx context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	if d.Content == nil {
		set(s, "devotional-grid", render.ArchiveFallback)
		return OutcomeFallback, errNoContent
	}
	entries, err := d.Content.Devotionals(ctx)
	if err != nil {
		set(s, "devotional-grid", render.ArchiveFallback)
		return OutcomeFallback, err
	}
	out, err := render.DevotionalGrid(entries)
	if err != nil {
		return OutcomeError, err
	}
	set(s, "devotional-grid", out)
	if len(entries) == 0 {
		return OutcomeEmpty, nil
	}
	return OutcomeOK, nil
}

func runFlexGrid(_ context.Context, _ Deps, s target.Surface, _ Page) (Outcome, error) {
	out, err := render.FlexGrid(flexDays)
	if err != nil {
		return OutcomeError, err
	}
	set(s, "flex-grid-container", out)
	return OutcomeOK, nil
}

// runBanner shows the newest feed item as is, without filtering.
func runBanner(ctx context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	if _, ok := s.Target("banner-image"); !ok {
		return OutcomeSkipped, nil
	}
	items, err := fetchFeed(ctx, d)
	if err != nil {
		return OutcomeError, err
	}
	if len(items) == 0 {
		return OutcomeEmpty, nil
	}
	img, err := render.BannerImage(items[0].ThumbnailURL)
	if err != nil {
		return OutcomeError, err
	}
	set(s, "banner-title", render.BannerTitle(items[0].Title))
	set(s, "banner-image", img)
	return OutcomeOK, nil
}

// runLivePlayer embeds the newest feed item, whatever its broadcast state.
func runLivePlayer(ctx context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	items, err := fetchFeed(ctx, d)
	if err != nil {
		set(s, "live-player-container", render.StreamFallback)
		return OutcomeFallback, err
	}
	if len(items) == 0 {
		return OutcomeEmpty, nil
	}
	out, err := render.LivePlayer(items[0].ID)
	if err != nil {
		set(s, "live-player-container", render.StreamFallback)
		return OutcomeFallback, err
	}
	set(s, "live-player-container", out)
	return OutcomeOK, nil
}

// runServiceClock renders the clock once; a running schedule.Clock keeps it
// fresh afterwards.
func runServiceClock(_ context.Context, d Deps, s target.Surface, _ Page) (Outcome, error) {
	st := d.Rule.StatusAt(d.now(), d.Location)
	schedule.Apply(st, s)
	return OutcomeOK, nil
}
