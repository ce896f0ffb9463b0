// Package content reads the site's static JSON archives (deep dives, devotionals).
package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/reinarrr/TLR-web-cfpages/internal/fetch"
)

// Entry is one archival, devotional or study item. Every field is optional.
type Entry struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Image   string `json:"image"`
	URL     string `json:"url"`
}

// Client resolves document paths against the site base URL.
type Client struct {
	BaseURL string
	Fetcher *fetch.Client
}

func New(baseURL string, f *fetch.Client) *Client {
	return &Client{BaseURL: baseURL, Fetcher: f}
}

// Resolve joins a site-relative path onto the base URL.
func (c *Client) Resolve(path string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse SITE_BASE_URL: %w", err)
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String(), nil
}

// DeepDives returns the study archive for the given year.
func (c *Client) DeepDives(ctx context.Context, year string) ([]Entry, error) {
	return c.entries(ctx, "deepdives", "/res/deep/"+url.PathEscape(year)+"/deepdives.json")
}

func (c *Client) Devotionals(ctx context.Context) ([]Entry, error) {
	return c.entries(ctx, "devotionals", "/res/dev/devotionals.json")
}

// Component returns a shared HTML component such as /components/header.html.
func (c *Client) Component(ctx context.Context, name string) (string, error) {
	u, err := c.Resolve("/components/" + name + ".html")
	if err != nil {
		return "", err
	}
	return c.Fetcher.Text(ctx, "component", u)
}

func (c *Client) entries(ctx context.Context, source, path string) ([]Entry, error) {
	u, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	var out []Entry
	if err := c.Fetcher.JSON(ctx, source, u, &out); err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	return out, nil
}
