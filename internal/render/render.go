// Package render maps display data to HTML fragments. Every function is
// deterministic and escapes its input.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/reinarrr/TLR-web-cfpages/internal/content"
	"github.com/reinarrr/TLR-web-cfpages/internal/feed"
)

const (
	PlaceholderImage = "/img/placeholder.jpg"
	UntitledStudy    = "Untitled Study"
	// StreamFallback is shown when the live player cannot be loaded.
	StreamFallback = `<p class="text-zinc-400 p-20 text-center">Unable to load stream. Please check our YouTube channel.</p>`
	// FeedFallback is shown when a video grid has nothing to show.
	FeedFallback = `<p class="text-zinc-400 p-10 text-center">New messages are on their way. Visit our YouTube channel in the meantime.</p>`
	// ArchiveFallback is shown when a study or devotional archive cannot be loaded.
	ArchiveFallback = `<p class="text-zinc-400 p-10 text-center">This archive is not available right now.</p>`
)

// Card sizes used by the replay grids.
const (
	SizeRecent  = "text-xl"
	SizeArchive = "text-sm"
)

var tmpl = template.Must(template.New("render").Funcs(template.FuncMap{
	"featured":    func(i int) bool { return i%3 == 0 },
	"orFallback":  orFallback,
	"placeholder": func(s string) string { return orFallback(s, PlaceholderImage) },
	"safeURL":     func(s string) string { return orFallback(s, "#") },
}).Parse(templates))

func orFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// HomeCards renders the home page video cards.
func HomeCards(items []feed.DisplayItem) (string, error) {
	return execute("home_cards", items)
}

// FeatureCard renders the hero card of the replay page.
func FeatureCard(item feed.DisplayItem) (string, error) {
	return execute("feature_card", item)
}

// HybridCards renders replay grid cards with the given title size class.
func HybridCards(items []feed.DisplayItem, size string) (string, error) {
	return execute("hybrid_cards", struct {
		Items []feed.DisplayItem
		Size  string
	}{items, size})
}

// DeepDiveCards renders the home page study teasers.
func DeepDiveCards(entries []content.Entry) (string, error) {
	return execute("deepdive_cards", entries)
}

// LibraryGrid renders a year of studies; every third entry is featured.
func LibraryGrid(entries []content.Entry) (string, error) {
	return execute("library_grid", entries)
}

// DevotionalGrid renders the daily reflections; every third entry is featured.
func DevotionalGrid(entries []content.Entry) (string, error) {
	return execute("devotional_grid", entries)
}

type flexDay struct {
	Num  int
	Slug string
}

// FlexGrid renders links to days 1..days of the FortyFlex plan.
func FlexGrid(days int) (string, error) {
	list := make([]flexDay, 0, days)
	for i := 1; i <= days; i++ {
		list = append(list, flexDay{Num: i, Slug: fmt.Sprintf("%02d", i)})
	}
	return execute("flex_grid", list)
}

// LivePlayer embeds the given video with autoplay.
func LivePlayer(videoID string) (string, error) {
	return execute("live_player", videoID)
}

// BannerTitle is the escaped title text for the resource banner.
func BannerTitle(title string) string {
	return template.HTMLEscapeString(title)
}

// BannerImage renders the resource banner image.
func BannerImage(url string) (string, error) {
	return execute("banner_image", url)
}
