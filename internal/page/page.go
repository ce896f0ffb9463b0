// Package page runs the sections of a site page concurrently and writes
// their output into the page's containers.
package page

import "fmt"

// Container IDs shared by every page.
const (
	HeaderContainer = "header-placeholder"
	FooterContainer = "footer-placeholder"
)

// Page is one HTML page of the site and the containers it declares.
type Page struct {
	Name string `yaml:"name" json:"name"`
	// Current marks the active navigation link (the body's data-current).
	Current    string   `yaml:"current" json:"current"`
	Containers []string `yaml:"containers" json:"containers"`
}

func (p Page) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("page without name")
	}
	seen := make(map[string]struct{}, len(p.Containers))
	for _, c := range p.Containers {
		if c == "" {
			return fmt.Errorf("page %s: empty container id", p.Name)
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("page %s: duplicate container %q", p.Name, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func withShared(containers ...string) []string {
	return append([]string{HeaderContainer, FooterContainer}, containers...)
}

// DefaultPages mirrors the pages of the public site.
func DefaultPages() []Page {
	return []Page{
		{Name: "home", Current: "home", Containers: withShared("youtube-feed", "home-deepdives-grid")},
		{Name: "messages", Current: "messages", Containers: withShared("latest-container", "recent-grid", "archive-grid")},
		{Name: "library", Current: "library", Containers: withShared("library-grid")},
		{Name: "devotionals", Current: "devotionals", Containers: withShared("devotional-grid")},
		{Name: "fortyflex", Current: "devotionals", Containers: withShared("flex-grid-container")},
		{Name: "resources", Current: "resources", Containers: withShared("banner-title", "banner-image")},
		{Name: "live", Current: "live", Containers: withShared("live-player-container", "next-service-time", "local-timezone")},
	}
}

// Find returns the page with the given name.
func Find(pages []Page, name string) (Page, bool) {
	for _, p := range pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}
