package schedule

import (
	"html"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reinarrr/TLR-web-cfpages/internal/metrics"
	"github.com/reinarrr/TLR-web-cfpages/internal/target"
)

// Container IDs the clock renders into.
const (
	TimeContainer = "next-service-time"
	ZoneContainer = "local-timezone"
)

// Options tune a Clock. Zero values give a one-second wall-clock ticker.
type Options struct {
	Interval time.Duration
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Clock re-renders the service status on every tick until stopped.
type Clock struct {
	rule    Rule
	loc     *time.Location
	surface target.Surface
	now     func() time.Time
	logger  zerolog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start renders once synchronously, then keeps rendering every interval. If
// the surface has no time container, nothing is started and the returned
// Clock is already stopped.
func Start(rule Rule, loc *time.Location, surface target.Surface, opts Options) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Clock{
		rule:    rule,
		loc:     loc,
		surface: surface,
		now:     opts.Now,
		logger:  opts.Logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if _, ok := surface.Target(TimeContainer); !ok {
		c.logger.Debug().Str("container", TimeContainer).Msg("clock: container missing, not starting")
		close(c.done)
		c.stopOnce.Do(func() { close(c.stop) })
		return c
	}

	c.Render()
	go c.run(opts.Interval)
	return c
}

func (c *Clock) run(interval time.Duration) {
	defer close(c.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.Render()
		}
	}
}

// Render writes the current status into the surface and returns it.
func (c *Clock) Render() Status {
	st := c.rule.StatusAt(c.now(), c.loc)
	Apply(st, c.surface)
	metrics.ClockTick(string(st.State))
	return st
}

// Stop halts the ticker and waits for the render goroutine to exit. It is
// safe to call more than once.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// Apply writes a status into the clock containers that exist on surface.
func Apply(st Status, surface target.Surface) {
	if t, ok := surface.Target(TimeContainer); ok {
		t.SetContent(LabelHTML(st))
	}
	if t, ok := surface.Target(ZoneContainer); ok {
		t.SetContent(html.EscapeString(st.Subtitle))
	}
}

// LabelHTML is the markup for the time container; the live state pulses.
func LabelHTML(st Status) string {
	if st.State == StateLive {
		return `<span class="text-teal animate-pulse">` + html.EscapeString(st.Label) + `</span>`
	}
	return html.EscapeString(st.Label)
}
