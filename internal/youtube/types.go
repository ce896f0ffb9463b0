package youtube

import "time"

type BroadcastStatus string

const (
	StatusNone     BroadcastStatus = "none"
	StatusLive     BroadcastStatus = "live"
	StatusUpcoming BroadcastStatus = "upcoming"
)

// Item is one video from the channel feed, normalised from the proxy's JSON.
type Item struct {
	ID           string
	Title        string
	ThumbnailURL string
	Status       BroadcastStatus

	PublishedAt        *time.Time
	VideoPublishedAt   *time.Time
	ScheduledStartTime *time.Time
	ActualStartTime    *time.Time
}

// WatchURL is the public YouTube page for the item.
func (it Item) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + it.ID
}
