package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reinarrr/TLR-web-cfpages/internal/content"
	"github.com/reinarrr/TLR-web-cfpages/internal/feed"
	"github.com/reinarrr/TLR-web-cfpages/internal/overrides"
	"github.com/reinarrr/TLR-web-cfpages/internal/render"
	"github.com/reinarrr/TLR-web-cfpages/internal/schedule"
	"github.com/reinarrr/TLR-web-cfpages/internal/target"
	"github.com/reinarrr/TLR-web-cfpages/internal/youtube"
)

var now = time.Date(2026, 1, 3, 22, 0, 0, 0, time.UTC)

type fakeFeed struct {
	items []youtube.Item
	err   error
}

func (f fakeFeed) FetchFeed(context.Context) ([]youtube.Item, error) { return f.items, f.err }

type fakeOverrides struct {
	records []overrides.Record
	err     error
}

func (f fakeOverrides) Load(context.Context) ([]overrides.Record, error) { return f.records, f.err }

type fakeContent struct {
	deepDives   map[string][]content.Entry
	devotionals []content.Entry
	components  map[string]string
	err         error
}

func (f fakeContent) DeepDives(_ context.Context, year string) ([]content.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.deepDives[year]
	if !ok {
		return nil, fmt.Errorf("no archive for %s", year)
	}
	return e, nil
}

func (f fakeContent) Devotionals(context.Context) ([]content.Entry, error) {
	return f.devotionals, f.err
}

func (f fakeContent) Component(_ context.Context, name string) (string, error) {
	c, ok := f.components[name]
	if !ok {
		return "", fmt.Errorf("component %s missing", name)
	}
	return c, nil
}

func pastItems(n int) []youtube.Item {
	out := make([]youtube.Item, 0, n)
	for i := 0; i < n; i++ {
		ts := now.AddDate(0, 0, -7*(i+1))
		out = append(out, youtube.Item{
			ID:           fmt.Sprintf("vid%02d", i),
			Title:        fmt.Sprintf("Message %d", i),
			ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/vid%02d/hqdefault.jpg", i),
			PublishedAt:  &ts,
		})
	}
	return out
}

func testDeps() Deps {
	return Deps{
		Feed:      fakeFeed{items: pastItems(5)},
		Overrides: fakeOverrides{records: []overrides.Record{{ID: "vid00", Title: "Special Service", Date: "Custom"}}},
		Content: fakeContent{
			deepDives: map[string][]content.Entry{
				"2026": {{Title: "Romans"}, {Title: "Acts"}, {Title: "John"}, {Title: "Mark"}},
				"2025": {{Title: "Genesis"}},
			},
			devotionals: []content.Entry{{Title: "Rest", Excerpt: "Come to me"}},
			components: map[string]string{
				"header": `<nav><a href="/" data-page="home" class="nav-link">Home</a><a href="/live.html" data-page="live" class="nav-link">Live</a></nav>`,
				"footer": `<footer>The Living Room</footer>`,
			},
		},
		Merger:      feed.Merger{Now: func() time.Time { return now }},
		Rule:        schedule.DefaultRule(),
		Location:    time.UTC,
		LibraryYear: "2026",
		Now:         func() time.Time { return now },
	}
}

func newTestLoader(d Deps) *Loader {
	return NewLoader(d, zerolog.Nop())
}

func mustPage(t *testing.T, name string) Page {
	t.Helper()
	p, ok := Find(DefaultPages(), name)
	require.True(t, ok, "page %s", name)
	return p
}

func TestHomePage(t *testing.T) {
	p := mustPage(t, "home")
	surface := target.NewMemory(p.Containers...)

	res := newTestLoader(testDeps()).Load(context.Background(), p, surface, Options{})
	assert.Equal(t, []string{"home-deepdives", "home-feed", "shared"}, res.Sections())
	assert.NotEmpty(t, res.RunID)

	feedHTML, _ := surface.Content("youtube-feed")
	assert.Equal(t, 3, strings.Count(feedHTML, "<a "))
	assert.Contains(t, feedHTML, "Special Service")
	assert.Contains(t, feedHTML, ">Custom</span>")
	assert.Contains(t, feedHTML, "DEC 20, 2025")
	assert.NotContains(t, feedHTML, "vid03")

	deep, _ := surface.Content("home-deepdives-grid")
	assert.Contains(t, deep, "John")
	assert.NotContains(t, deep, "Mark")

	header, _ := surface.Content(HeaderContainer)
	assert.Contains(t, header, `class="nav-link !text-teal"`)
	assert.Equal(t, 1, strings.Count(header, "!text-teal"))
	footer, _ := surface.Content(FooterContainer)
	assert.Equal(t, "<footer>The Living Room</footer>", footer)
}

func TestOverrideFailureDegradesToFeedOnly(t *testing.T) {
	d := testDeps()
	d.Overrides = fakeOverrides{err: errors.New("dial tcp: connection refused")}
	p := mustPage(t, "home")
	surface := target.NewMemory(p.Containers...)

	res := newTestLoader(d).Load(context.Background(), p, surface, Options{})
	assert.Equal(t, OutcomeOK, res.Outcomes["home-feed"])

	feedHTML, _ := surface.Content("youtube-feed")
	assert.Contains(t, feedHTML, "Message 0")
	assert.NotContains(t, feedHTML, "Special Service")
}

func TestFeedFailureIsIsolated(t *testing.T) {
	d := testDeps()
	d.Feed = fakeFeed{err: errors.New("http 500")}
	p := mustPage(t, "home")
	surface := target.NewMemory(p.Containers...)

	res := newTestLoader(d).Load(context.Background(), p, surface, Options{})
	assert.Equal(t, OutcomeError, res.Outcomes["home-feed"])
	assert.Equal(t, OutcomeOK, res.Outcomes["home-deepdives"])

	_, ok := surface.Content("youtube-feed")
	assert.False(t, ok, "failed feed leaves the container untouched")
	deep, _ := surface.Content("home-deepdives-grid")
	assert.Contains(t, deep, "Romans")
}

func TestEmptyFeedShowsFallback(t *testing.T) {
	d := testDeps()
	d.Feed = fakeFeed{items: []youtube.Item{{ID: "soon", Status: youtube.StatusUpcoming}}}
	p := mustPage(t, "home")
	surface := target.NewMemory(p.Containers...)

	res := newTestLoader(d).Load(context.Background(), p, surface, Options{})
	assert.Equal(t, OutcomeFallback, res.Outcomes["home-feed"])
	got, _ := surface.Content("youtube-feed")
	assert.Equal(t, render.FeedFallback, got)
}

func TestMissingContainerSkipsSection(t *testing.T) {
	surface := target.NewMemory("home-deepdives-grid")
	res := newTestLoader(testDeps()).Load(context.Background(), Page{Name: "partial"}, surface, Options{})
	assert.Equal(t, []string{"home-deepdives"}, res.Sections())
}

func TestReplaysWindows(t *testing.T) {
	d := testDeps()
	d.Feed = fakeFeed{items: pastItems(14)}
	p := mustPage(t, "messages")
	surface := target.NewMemory(p.Containers...)

	newTestLoader(d).Load(context.Background(), p, surface, Options{})

	latest, _ := surface.Content("latest-container")
	assert.Contains(t, latest, "Special Service")
	assert.Contains(t, latest, "h-[50vh]")

	recent, _ := surface.Content("recent-grid")
	assert.Equal(t, 3, strings.Count(recent, "<a "))
	assert.Contains(t, recent, "vid01")
	assert.Contains(t, recent, "vid03")

	archive, _ := surface.Content("archive-grid")
	assert.Equal(t, 8, strings.Count(archive, "<a "))
	assert.Contains(t, archive, "vid04")
	assert.Contains(t, archive, "vid11")
	assert.NotContains(t, archive, "vid12")
}

func TestReplaysWithoutGrids(t *testing.T) {
	surface := target.NewMemory("latest-container")
	res := newTestLoader(testDeps()).Load(context.Background(), Page{Name: "replays-lite"}, surface, Options{})
	assert.Equal(t, OutcomeOK, res.Outcomes["replays"])
	assert.Len(t, surface.Snapshot(), 1)
}

func TestLibraryYearOption(t *testing.T) {
	p := mustPage(t, "library")
	surface := target.NewMemory(p.Containers...)
	newTestLoader(testDeps()).Load(context.Background(), p, surface, Options{Year: "2025"})

	grid, _ := surface.Content("library-grid")
	assert.Contains(t, grid, "Genesis")
	assert.NotContains(t, grid, "Romans")

	surface = target.NewMemory(p.Containers...)
	res := newTestLoader(testDeps()).Load(context.Background(), p, surface, Options{Year: "1999"})
	assert.Equal(t, OutcomeFallback, res.Outcomes["library"])
	grid, _ = surface.Content("library-grid")
	assert.Equal(t, render.ArchiveFallback, grid)
}

func TestDevotionalsAndFlexGrid(t *testing.T) {
	surface := target.NewMemory("devotional-grid", "flex-grid-container")
	res := newTestLoader(testDeps()).Load(context.Background(), Page{Name: "mixed"}, surface, Options{})
	assert.Equal(t, OutcomeOK, res.Outcomes["devotionals"])
	assert.Equal(t, OutcomeOK, res.Outcomes["flex-grid"])

	dev, _ := surface.Content("devotional-grid")
	assert.Contains(t, dev, "Come to me")
	flex, _ := surface.Content("flex-grid-container")
	assert.Equal(t, 40, strings.Count(flex, "day-grid-item"))
}

func TestBanner(t *testing.T) {
	d := testDeps()
	d.Feed = fakeFeed{items: append([]youtube.Item{{ID: "next", Title: "Next Sunday", Status: youtube.StatusUpcoming, ThumbnailURL: "https://i.ytimg.com/next.jpg"}}, pastItems(2)...)}
	p := mustPage(t, "resources")
	surface := target.NewMemory(p.Containers...)

	newTestLoader(d).Load(context.Background(), p, surface, Options{})
	title, _ := surface.Content("banner-title")
	assert.Equal(t, "Next Sunday", title, "banner uses the raw newest item")
	img, _ := surface.Content("banner-image")
	assert.Contains(t, img, "https://i.ytimg.com/next.jpg")

	surface = target.NewMemory("banner-title")
	res := newTestLoader(d).Load(context.Background(), Page{Name: "title-only"}, surface, Options{})
	assert.Equal(t, OutcomeSkipped, res.Outcomes["banner"])
	assert.Empty(t, surface.Snapshot())
}

func TestLivePage(t *testing.T) {
	p := mustPage(t, "live")
	surface := target.NewMemory(p.Containers...)
	newTestLoader(testDeps()).Load(context.Background(), p, surface, Options{})

	player, _ := surface.Content("live-player-container")
	assert.Contains(t, player, "https://www.youtube.com/embed/vid00?autoplay=1")
	clock, _ := surface.Content(schedule.TimeContainer)
	assert.Equal(t, "Live in 03:00:00", clock)
	zone, _ := surface.Content(schedule.ZoneContainer)
	assert.Equal(t, "Starts at 1:00 AM • UTC", zone)
}

func TestLivePlayerFallback(t *testing.T) {
	d := testDeps()
	d.Feed = fakeFeed{err: errors.New("network down")}
	surface := target.NewMemory("live-player-container")
	res := newTestLoader(d).Load(context.Background(), Page{Name: "live"}, surface, Options{})
	assert.Equal(t, OutcomeFallback, res.Outcomes["live-player"])
	got, _ := surface.Content("live-player-container")
	assert.Equal(t, render.StreamFallback, got)
}

func TestPanickingSectionIsIsolated(t *testing.T) {
	l := newTestLoader(testDeps())
	l.Sections = append(l.Sections, Section{
		Name:    "broken",
		Trigger: "youtube-feed",
		Run: func(context.Context, Deps, target.Surface, Page) (Outcome, error) {
			panic("boom")
		},
	})
	surface := target.NewMemory("youtube-feed")
	res := l.Load(context.Background(), Page{Name: "home"}, surface, Options{})
	assert.Equal(t, OutcomeError, res.Outcomes["broken"])
	assert.Equal(t, OutcomeOK, res.Outcomes["home-feed"])
}

func TestNilSourcesFailLocally(t *testing.T) {
	p := mustPage(t, "home")
	surface := target.NewMemory(p.Containers...)
	res := newTestLoader(Deps{}).Load(context.Background(), p, surface, Options{})
	for name, o := range res.Outcomes {
		assert.Equal(t, OutcomeError, o, name)
	}
}

func TestLoadAllPublishes(t *testing.T) {
	store := target.NewMemoryStore()
	pages := DefaultPages()
	require.NoError(t, newTestLoader(testDeps()).LoadAll(context.Background(), pages, store))

	got, err := store.Pages(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, len(pages))

	frags, err := store.Fragments(context.Background(), "fortyflex")
	require.NoError(t, err)
	assert.Contains(t, frags, "flex-grid-container")
	assert.Contains(t, frags, HeaderContainer)
}

func TestPageValidate(t *testing.T) {
	for _, p := range DefaultPages() {
		assert.NoError(t, p.Validate(), p.Name)
	}
	assert.Error(t, Page{}.Validate())
	assert.Error(t, Page{Name: "x", Containers: []string{"a", "a"}}.Validate())
	assert.Error(t, Page{Name: "x", Containers: []string{""}}.Validate())
}

func TestMarkActiveNav(t *testing.T) {
	in := `<nav><a data-page="home">Home</a><a data-page="live" class="px-2">Live</a></nav>`

	out, err := MarkActiveNav(in, "live")
	require.NoError(t, err)
	assert.Contains(t, out, `<a data-page="live" class="px-2 !text-teal">Live</a>`)
	assert.Contains(t, out, `<a data-page="home">Home</a>`)

	out, err = MarkActiveNav(in, "home")
	require.NoError(t, err)
	assert.Contains(t, out, `<a data-page="home" class="!text-teal">Home</a>`)

	dup := `<nav><a data-page="live">Live</a></nav><footer><a data-page="live">Watch</a></footer>`
	out, err = MarkActiveNav(dup, "live")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, activeNavClass))
	assert.Contains(t, out, `<a data-page="live" class="!text-teal">Live</a>`)
	assert.Contains(t, out, `<a data-page="live">Watch</a>`)

	out, err = MarkActiveNav(in, "missing")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out, err = MarkActiveNav(in, "")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
