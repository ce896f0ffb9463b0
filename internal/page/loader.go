package page

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reinarrr/TLR-web-cfpages/internal/content"
	"github.com/reinarrr/TLR-web-cfpages/internal/feed"
	"github.com/reinarrr/TLR-web-cfpages/internal/logging"
	"github.com/reinarrr/TLR-web-cfpages/internal/metrics"
	"github.com/reinarrr/TLR-web-cfpages/internal/overrides"
	"github.com/reinarrr/TLR-web-cfpages/internal/schedule"
	"github.com/reinarrr/TLR-web-cfpages/internal/target"
	"github.com/reinarrr/TLR-web-cfpages/internal/youtube"
)

// FeedSource yields the channel feed.
type FeedSource interface {
	FetchFeed(ctx context.Context) ([]youtube.Item, error)
}

// ContentSource yields the static site documents.
type ContentSource interface {
	DeepDives(ctx context.Context, year string) ([]content.Entry, error)
	Devotionals(ctx context.Context) ([]content.Entry, error)
	Component(ctx context.Context, name string) (string, error)
}

// Deps are the collaborators every section may use. Each section reads only
// what it needs; nil sources make the dependent sections fail locally.
type Deps struct {
	Feed      FeedSource
	Overrides overrides.Source
	Content   ContentSource
	Merger    feed.Merger
	Rule      schedule.Rule
	// Location is the viewer's time zone for the service clock.
	Location *time.Location
	// LibraryYear selects the deep dive archive.
	LibraryYear string
	Now         func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Outcome of one section run.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFallback Outcome = "fallback"
	OutcomeEmpty    Outcome = "empty"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeError    Outcome = "error"
)

// Section renders into one or more containers. Trigger is the container
// whose presence on the page enables the section.
type Section struct {
	Name    string
	Trigger string
	Run     func(ctx context.Context, d Deps, s target.Surface, p Page) (Outcome, error)
}

// Options tweak a single page load.
type Options struct {
	// Year overrides Deps.LibraryYear for this load.
	Year string
}

// Result summarises a page load.
type Result struct {
	RunID    string
	Page     string
	Outcomes map[string]Outcome
	Duration time.Duration
}

// Loader runs the sections of a page. Every section is isolated: its
// failure is logged and handled in place, siblings keep running.
type Loader struct {
	Deps     Deps
	Sections []Section
	Logger   zerolog.Logger
}

func NewLoader(d Deps, logger zerolog.Logger) *Loader {
	return &Loader{Deps: d, Sections: DefaultSections(), Logger: logger}
}

// Load renders every section of p whose trigger container exists on surface.
func (l *Loader) Load(ctx context.Context, p Page, surface target.Surface, opts Options) Result {
	start := time.Now()
	runID := uuid.NewString()
	logger := logging.PageRun(l.Logger, p.Name, runID)

	d := l.Deps
	if opts.Year != "" {
		d.LibraryYear = opts.Year
	}

	var (
		mu       sync.Mutex
		outcomes = make(map[string]Outcome, len(l.Sections))
		g        errgroup.Group
	)
	record := func(name string, o Outcome) {
		mu.Lock()
		outcomes[name] = o
		mu.Unlock()
		metrics.SectionRendered(p.Name, name, string(o))
	}

	for _, sec := range l.Sections {
		if _, ok := surface.Target(sec.Trigger); !ok {
			continue
		}
		g.Go(func() error {
			secLog := logging.Section(logger, sec.Name)
			o, err := runSection(secLog.WithContext(ctx), sec, d, surface, p)
			if err != nil {
				secLog.Warn().Err(err).Str("outcome", string(o)).Msg("section failed")
			} else {
				secLog.Debug().Str("outcome", string(o)).Msg("section rendered")
			}
			record(sec.Name, o)
			// Never fail the group: one section must not cancel another.
			return nil
		})
	}
	_ = g.Wait()

	res := Result{RunID: runID, Page: p.Name, Outcomes: outcomes, Duration: time.Since(start)}
	metrics.PageLoaded(p.Name, res.Duration)
	logger.Info().Dur("took", res.Duration).Int("sections", len(outcomes)).Msg("page loaded")
	return res
}

func runSection(ctx context.Context, sec Section, d Deps, s target.Surface, p Page) (o Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			o, err = OutcomeError, fmt.Errorf("section %s panicked: %v", sec.Name, r)
		}
	}()
	return sec.Run(ctx, d, s, p)
}

// Sections returns the names of the sections that ran, sorted.
func (r Result) Sections() []string {
	out := make([]string, 0, len(r.Outcomes))
	for name := range r.Outcomes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadAll renders every page into a fresh memory surface and publishes the
// result to store. A publish failure for one page does not stop the others.
func (l *Loader) LoadAll(ctx context.Context, pages []Page, store target.Store) error {
	var failed int
	for _, p := range pages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		surface := target.NewMemory(p.Containers...)
		l.Load(ctx, p, surface, Options{})
		if err := store.Publish(ctx, p.Name, surface.Snapshot()); err != nil {
			failed++
			l.Logger.Error().Err(err).Str(logging.FieldPage, p.Name).Msg("publish failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("publish completed with %d/%d page failures", failed, len(pages))
	}
	return nil
}
