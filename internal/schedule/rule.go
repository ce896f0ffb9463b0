// Package schedule computes the live status of the weekly service and keeps a
// rendered label of it up to date.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

const week = 7 * 24 * time.Hour

// State is the display mode of the service clock.
type State string

const (
	StateLive     State = "live"
	StateImminent State = "imminent"
	StateStandard State = "standard"
)

// Rule is a weekly event at a fixed UTC weekday and time.
type Rule struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
	// LiveWindow is how long after the start the service counts as live.
	LiveWindow time.Duration
	// CountdownWindow is how long before the start the countdown is shown.
	CountdownWindow time.Duration
}

// DefaultRule is Sunday 01:00 UTC, live for two hours, countdown from eight hours out.
func DefaultRule() Rule {
	return Rule{
		Weekday:         time.Sunday,
		Hour:            1,
		Minute:          0,
		LiveWindow:      2 * time.Hour,
		CountdownWindow: 8 * time.Hour,
	}
}

func (r Rule) Validate() error {
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday %d", r.Weekday)
	}
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("invalid hour %d", r.Hour)
	}
	if r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("invalid minute %d", r.Minute)
	}
	if r.LiveWindow <= 0 || r.LiveWindow >= week {
		return fmt.Errorf("live window %s out of range", r.LiveWindow)
	}
	if r.CountdownWindow < 0 || r.CountdownWindow >= week {
		return fmt.Errorf("countdown window %s out of range", r.CountdownWindow)
	}
	return nil
}

// Previous returns the latest weekly instant at or before now.
func (r Rule) Previous(now time.Time) time.Time {
	n := now.UTC()
	cand := time.Date(n.Year(), n.Month(), n.Day(), r.Hour, r.Minute, 0, 0, time.UTC)
	shift := (int(n.Weekday()) - int(r.Weekday) + 7) % 7
	cand = cand.AddDate(0, 0, -shift)
	if cand.After(n) {
		cand = cand.AddDate(0, 0, -7)
	}
	return cand
}

// Next returns the first weekly instant strictly after now. Being exactly at
// an instant rolls over to the following week.
func (r Rule) Next(now time.Time) time.Time {
	return r.Previous(now).AddDate(0, 0, 7)
}

// Status is one rendering of the clock.
type Status struct {
	State State
	// Start is the occurrence the status refers to: the running service
	// while live, otherwise the next one.
	Start     time.Time
	Countdown string
	Label     string
	Subtitle  string
}

// StatusAt evaluates the clock at now for a viewer in loc. The states are
// tested in order: live, imminent, standard.
func (r Rule) StatusAt(now time.Time, loc *time.Location) Status {
	if loc == nil {
		loc = time.UTC
	}
	zone := ZoneName(loc)

	prev := r.Previous(now)
	if since := now.Sub(prev); since >= 0 && since < r.LiveWindow {
		return Status{
			State:    StateLive,
			Start:    prev,
			Label:    "● LIVE NOW",
			Subtitle: fmt.Sprintf("Started at %s (%s)", localClock(prev, loc), zone),
		}
	}

	next := r.Next(now)
	if until := next.Sub(now); until > 0 && until < r.CountdownWindow {
		cd := FormatCountdown(until)
		return Status{
			State:     StateImminent,
			Start:     next,
			Countdown: cd,
			Label:     "Live in " + cd,
			Subtitle:  fmt.Sprintf("Starts at %s • %s", localClock(next, loc), zone),
		}
	}

	return Status{
		State:    StateStandard,
		Start:    next,
		Label:    next.In(loc).Format("Monday, January 2 at 3:04 PM"),
		Subtitle: fmt.Sprintf("Converted to your time (%s)", zone),
	}
}

// FormatCountdown renders d as HH:MM:SS, truncated to whole seconds. Hours
// are not capped at 24.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ZoneName is the IANA name of loc with underscores shown as spaces.
func ZoneName(loc *time.Location) string {
	return strings.ReplaceAll(loc.String(), "_", " ")
}

func localClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("3:04 PM")
}
