// Package lesson models a single bookable slot on the lesson platform and the
// booking window that governs when it may be reserved.
package lesson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingID    = errors.New("lesson record has no id")
	ErrMissingStart = errors.New("lesson record has no start time")
	ErrBadTimestamp = errors.New("unparseable lesson timestamp")
)

// Record is one lesson as returned by the platform's listing and detail
// endpoints.
type Record struct {
	ID                  ID     `json:"_id"`
	Description         string `json:"Description"`
	LessonStartTime     string `json:"LessonStartTime"`
	LessonEndTime       string `json:"LessonEndTime"`
	UTCStartTime        string `json:"UTCStartTime"`
	UTCEndTime          string `json:"UTCEndTime"`
	MaximumParticipants int    `json:"MaximumParticipants"`
	SpotsInt            int    `json:"SpotsInt"`
	Trainer             string `json:"Trainer"`
	LocationName        string `json:"LocationName"`
	BookingStatus       string `json:"BookingStatus"`
	Full                bool   `json:"Full"`
}

func (r Record) Status() BookingStatus {
	return ParseBookingStatus(r.BookingStatus)
}

// ID accepts both string and numeric JSON ids.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("lesson id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Lesson struct {
	ID              string
	TypeName        string
	Start           time.Time
	DurationMinutes int
	Instructor      string
	Location        string
	AvailableSpots  int
}

// Parse builds a Lesson from a raw record. Local timestamps without an offset
// are read in loc; the UTC pair is only used when the local pair is absent.
func Parse(r Record, loc *time.Location) (Lesson, error) {
	if r.ID == "" {
		return Lesson{}, ErrMissingID
	}
	start, err := pickTime(r.LessonStartTime, r.UTCStartTime, loc)
	if err != nil {
		return Lesson{}, fmt.Errorf("lesson %s start: %w", r.ID, err)
	}
	end, err := pickTime(r.LessonEndTime, r.UTCEndTime, loc)
	if err != nil {
		return Lesson{}, fmt.Errorf("lesson %s end: %w", r.ID, err)
	}
	return Lesson{
		ID:              string(r.ID),
		TypeName:        r.Description,
		Start:           start,
		DurationMinutes: int(end.Sub(start) / time.Minute),
		Instructor:      r.Trainer,
		Location:        r.LocationName,
		AvailableSpots:  r.MaximumParticipants - r.SpotsInt,
	}, nil
}

func pickTime(local, utc string, loc *time.Location) (time.Time, error) {
	local = strings.TrimSpace(local)
	if local != "" {
		return parseLocal(local, loc)
	}
	utc = strings.TrimSpace(utc)
	if utc == "" {
		return time.Time{}, ErrMissingStart
	}
	t, err := time.Parse(time.RFC3339Nano, utc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, utc)
	}
	return t.In(loc), nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseLocal(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// Weekday returns the local weekday with Monday as 0.
func (l Lesson) Weekday() int {
	return (int(l.Start.Weekday()) + 6) % 7
}

// ClockTime is the local start formatted as HH:MM.
func (l Lesson) ClockTime() string {
	return l.Start.Format("15:04")
}

// StartUTCISO is the start time in the form the join endpoint expects.
func (l Lesson) StartUTCISO() string {
	return l.Start.UTC().Format("2006-01-02T15:04:05.000Z")
}

func (l Lesson) String() string {
	return fmt.Sprintf("%s @ %s", l.TypeName, l.Start.Format("Mon 2006-01-02 15:04"))
}
