// Package feed turns the raw channel feed into render-ready display items.
package feed

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reinarrr/TLR-web-cfpages/internal/overrides"
	"github.com/reinarrr/TLR-web-cfpages/internal/youtube"
)

// DisplayItem is one merged video ready for a card template.
type DisplayItem struct {
	ID        string
	Title     string
	Date      string
	Thumbnail string
}

func (d DisplayItem) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + d.ID
}

// Merger filters out broadcasts that have not started and applies overrides.
type Merger struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Location is where date labels are rendered; nil means UTC.
	Location *time.Location
}

// EffectiveStart is the best known start of a broadcast: actual, scheduled,
// content-published, then metadata-published. Nil when none is set.
func EffectiveStart(it youtube.Item) *time.Time {
	for _, t := range []*time.Time{it.ActualStartTime, it.ScheduledStartTime, it.VideoPublishedAt, it.PublishedAt} {
		if t != nil {
			return t
		}
	}
	return nil
}

// IsPast reports whether an item may appear in a grid. Upcoming broadcasts
// are excluded whatever their timestamps say.
func IsPast(it youtube.Item, now time.Time) bool {
	if it.Status == youtube.StatusUpcoming {
		return false
	}
	if start := EffectiveStart(it); start != nil && start.After(now) {
		return false
	}
	return true
}

// FormatDate renders t as "JAN 5, 2026" in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Upper(language.English).String(t.In(loc).Format("Jan 2, 2006"))
}

// Filter keeps past items in their original order.
func (m Merger) Filter(items []youtube.Item) []youtube.Item {
	now := m.now()
	out := make([]youtube.Item, 0, len(items))
	for _, it := range items {
		if IsPast(it, now) {
			out = append(out, it)
		}
	}
	return out
}

// Merge filters items and builds one DisplayItem per survivor. A matching
// override replaces the title and the date independently; an empty field
// keeps the feed value.
func (m Merger) Merge(items []youtube.Item, records []overrides.Record) []DisplayItem {
	idx := overrides.NewIndex(records)
	kept := m.Filter(items)
	out := make([]DisplayItem, 0, len(kept))
	for _, it := range kept {
		d := DisplayItem{
			ID:        it.ID,
			Title:     it.Title,
			Thumbnail: it.ThumbnailURL,
		}
		if start := EffectiveStart(it); start != nil {
			d.Date = FormatDate(*start, m.Location)
		}
		if o, ok := idx.Lookup(it.ID); ok {
			if o.Title != "" {
				d.Title = o.Title
			}
			if o.Date != "" {
				d.Date = o.Date
			}
		}
		out = append(out, d)
	}
	return out
}

// Window returns items[start:end] clamped to the slice bounds.
func Window(items []DisplayItem, start, end int) []DisplayItem {
	if start < 0 {
		start = 0
	}
	if end > len(items) {
		end = len(items)
	}
	if start >= end {
		return nil
	}
	return items[start:end]
}

func (m Merger) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
