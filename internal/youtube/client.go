package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reinarrr/TLR-web-cfpages/internal/fetch"
)

// Client reads the channel feed from the YouTube proxy.
type Client struct {
	FeedURL string
	Fetcher *fetch.Client
}

func New(feedURL string, f *fetch.Client) *Client {
	return &Client{FeedURL: feedURL, Fetcher: f}
}

type thumb struct {
	URL string `json:"url"`
}

type feedResponse struct {
	Items []feedItem `json:"items"`
}

type feedItem struct {
	ID      json.RawMessage `json:"id"`
	Snippet struct {
		Title                string `json:"title"`
		PublishedAt          string `json:"publishedAt"`
		LiveBroadcastContent string `json:"liveBroadcastContent"`
		Thumbnails           struct {
			Maxres  thumb `json:"maxres"`
			High    thumb `json:"high"`
			Medium  thumb `json:"medium"`
			Default thumb `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		VideoID          string `json:"videoId"`
		VideoPublishedAt string `json:"videoPublishedAt"`
	} `json:"contentDetails"`
	LiveStreamingDetails struct {
		ScheduledStartTime string `json:"scheduledStartTime"`
		ActualStartTime    string `json:"actualStartTime"`
	} `json:"liveStreamingDetails"`
}

// FetchFeed returns the feed items in source order. Items without any usable
// identifier are dropped.
func (c *Client) FetchFeed(ctx context.Context) ([]Item, error) {
	if c.FeedURL == "" {
		return nil, fmt.Errorf("missing FEED_URL")
	}
	var resp feedResponse
	if err := c.Fetcher.JSON(ctx, "youtube_feed", c.FeedURL, &resp); err != nil {
		return nil, err
	}
	return convertItems(resp.Items), nil
}

func convertItems(in []feedItem) []Item {
	out := make([]Item, 0, len(in))
	for _, it := range in {
		id := it.ContentDetails.VideoID
		if id == "" {
			id = rawVideoID(it.ID)
		}
		if id == "" {
			continue
		}
		out = append(out, Item{
			ID:                 id,
			Title:              it.Snippet.Title,
			ThumbnailURL:       pickThumb(it.Snippet.Thumbnails.High, it.Snippet.Thumbnails.Maxres, it.Snippet.Thumbnails.Medium, it.Snippet.Thumbnails.Default),
			Status:             parseStatus(it.Snippet.LiveBroadcastContent),
			PublishedAt:        parseTimePtr(it.Snippet.PublishedAt),
			VideoPublishedAt:   parseTimePtr(it.ContentDetails.VideoPublishedAt),
			ScheduledStartTime: parseTimePtr(it.LiveStreamingDetails.ScheduledStartTime),
			ActualStartTime:    parseTimePtr(it.LiveStreamingDetails.ActualStartTime),
		})
	}
	return out
}

// rawVideoID accepts both the videos.list form ("id": "abc") and the
// search.list form ("id": {"videoId": "abc"}).
func rawVideoID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		VideoID string `json:"videoId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.VideoID
	}
	return ""
}

func parseStatus(s string) BroadcastStatus {
	switch BroadcastStatus(s) {
	case StatusLive:
		return StatusLive
	case StatusUpcoming:
		return StatusUpcoming
	default:
		return StatusNone
	}
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	tt := t.UTC()
	return &tt
}

// pickThumb returns the first non-empty URL, high resolution first.
func pickThumb(candidates ...thumb) string {
	for _, t := range candidates {
		if t.URL != "" {
			return t.URL
		}
	}
	return ""
}
