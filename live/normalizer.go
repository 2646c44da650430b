package live

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// ErrMalformedEvent is returned for payloads that are not valid JSON or lack type/matchId.
var ErrMalformedEvent = errors.New("malformed live event")

// flexInt accepts a JSON number or a numeric string holding an integer.
// Fractions, exponents that leave a fraction and values outside the int range are rejected.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" {
		return fmt.Errorf("flexInt: empty value")
	}
	if n, err := strconv.ParseInt(s, 10, strconv.IntSize); err == nil {
		*f = flexInt(n)
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
		return fmt.Errorf("flexInt: not an integer: %s", string(data))
	}
	*f = flexInt(int(n))
	return nil
}

func (f *flexInt) ptr() *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// flexTime accepts RFC 3339, a zone-less ISO local date-time (read as UTC) or epoch milliseconds.
// Anything else leaves the zero time.
type flexTime time.Time

var localLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] != '"' {
		if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			*f = flexTime(time.UnixMilli(ms).UTC())
		}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = flexTime(t)
			return nil
		}
	}
	return nil
}

type rawEvent struct {
	Type       string              `json:"type"`
	MatchID    *flexInt            `json:"matchId"`
	TeamID     *flexInt            `json:"teamId"`
	PlayerID   *flexInt            `json:"playerId"`
	GameMinute *flexInt            `json:"gameMinute"`
	MatchScore map[string]*flexInt `json:"matchScore"`
	Timestamp  flexTime            `json:"timestamp"`
}

// Normalize turns one raw message body into a LiveEvent, resolving team and player names.
// It is a pure function of its inputs.
func Normalize(raw []byte, names NameMaps) (models.LiveEvent, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return models.LiveEvent{}, fmt.Errorf("%w: empty payload", ErrMalformedEvent)
	}

	var re rawEvent
	if err := json.Unmarshal(raw, &re); err != nil {
		return models.LiveEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return re.toEvent(names)
}

// NormalizeBatch normalizes a historical batch (a JSON array). Malformed elements are
// skipped and reported through the returned count; a batch that is not an array fails.
func NormalizeBatch(raw []byte, names NameMaps) ([]models.LiveEvent, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: batch is not a JSON array: %v", ErrMalformedEvent, err)
	}
	events := make([]models.LiveEvent, 0, len(items))
	dropped := 0
	for _, item := range items {
		ev, err := Normalize(item, names)
		if err != nil {
			dropped++
			continue
		}
		events = append(events, ev)
	}
	return events, dropped, nil
}

func (re rawEvent) toEvent(names NameMaps) (models.LiveEvent, error) {
	eventType := strings.ToUpper(strings.TrimSpace(re.Type))
	if eventType == "" {
		return models.LiveEvent{}, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	if re.MatchID == nil {
		return models.LiveEvent{}, fmt.Errorf("%w: missing matchId", ErrMalformedEvent)
	}

	ev := models.LiveEvent{
		Type:       models.EventType(eventType),
		MatchID:    int(*re.MatchID),
		TeamID:     re.TeamID.ptr(),
		PlayerID:   re.PlayerID.ptr(),
		GameMinute: re.GameMinute.ptr(),
		Timestamp:  time.Time(re.Timestamp),
	}
	if len(re.MatchScore) > 0 {
		ev.MatchScore = make(map[int]int, len(re.MatchScore))
		for key, score := range re.MatchScore {
			teamID, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil || score == nil {
				continue
			}
			ev.MatchScore[teamID] = int(*score)
		}
	}
	ev.TeamName = names.Team(ev.TeamID)
	ev.PlayerName = names.Player(ev.PlayerID)
	return ev, nil
}
