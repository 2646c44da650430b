package repositories

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// flexDate reads the backend "date" field: a plain date, a local date-time or an
// RFC 3339 timestamp. The calendar date as written is kept. Null, empty and
// unreadable values decode to no date so one bad row does not fail a snapshot.
type flexDate struct {
	date *civil.Date
}

func (f *flexDate) UnmarshalJSON(data []byte) error {
	f.date = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if d, err := civil.ParseDate(s); err == nil {
		f.date = &d
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d := civil.DateOf(t)
		f.date = &d
		return nil
	}
	if dt, err := civil.ParseDateTime(s); err == nil {
		f.date = &dt.Date
		return nil
	}
	if len(s) > len("2006-01-02") {
		if d, err := civil.ParseDate(s[:len("2006-01-02")]); err == nil {
			f.date = &d
		}
	}
	return nil
}

// matchWire decodes a match record; its date field shadows the strict one of the model.
type matchWire struct {
	models.MatchRecord
	Date flexDate `json:"date"`
}

func (w matchWire) record() models.MatchRecord {
	m := w.MatchRecord
	m.Date = w.Date.date
	return m
}

func matchRecords(wires []matchWire) []models.MatchRecord {
	matches := make([]models.MatchRecord, 0, len(wires))
	for _, w := range wires {
		matches = append(matches, w.record())
	}
	return matches
}

type tournamentWire struct {
	models.Tournament
	Matches []matchWire `json:"matches"`
}
