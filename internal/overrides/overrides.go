// Package overrides loads the manually curated title/date replacements for feed videos.
package overrides

import (
	"context"
	"fmt"
	"strings"

	"github.com/reinarrr/TLR-web-cfpages/internal/fetch"
)

// Record replaces the derived title and date of the video with the same ID.
type Record struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Source yields the current override set.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// Index maps a video ID to its override. The first record for an ID wins.
type Index map[string]Record

func NewIndex(records []Record) Index {
	idx := make(Index, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, ok := idx[r.ID]; ok {
			continue
		}
		idx[r.ID] = r
	}
	return idx
}

// Lookup is safe on a nil Index.
func (idx Index) Lookup(id string) (Record, bool) {
	r, ok := idx[id]
	return r, ok
}

// HTTPSource reads the static messages.json document.
type HTTPSource struct {
	URL     string
	Fetcher *fetch.Client
}

func (s *HTTPSource) Load(ctx context.Context) ([]Record, error) {
	if s == nil || strings.TrimSpace(s.URL) == "" {
		return nil, nil
	}
	var out []Record
	if err := s.Fetcher.JSON(ctx, "overrides", s.URL, &out); err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return out, nil
}
