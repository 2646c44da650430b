package models

import "time"

type EventType string

const (
	EventMatchStart      EventType = "MATCH_START"
	EventScore           EventType = "SCORE"
	EventSnitchCaught    EventType = "SNITCH_CAUGHT"
	EventYellowCard      EventType = "YELLOW_CARD"
	EventRedCard         EventType = "RED_CARD"
	EventSubstitutionIn  EventType = "SUBSTITUTION_IN"
	EventSubstitutionOut EventType = "SUBSTITUTION_OUT"
	EventMatchEnd        EventType = "MATCH_END"
)

// Known reports whether t is one of the event types the engine understands.
// Unknown types still flow through the pipeline and get a generic description.
func (t EventType) Known() bool {
	switch t {
	case EventMatchStart, EventScore, EventSnitchCaught, EventYellowCard,
		EventRedCard, EventSubstitutionIn, EventSubstitutionOut, EventMatchEnd:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether an event of this type ends a match.
func (t EventType) IsTerminal() bool {
	return t == EventMatchEnd || t == EventSnitchCaught
}

// LiveEvent is a normalized event from the push channel or a historical batch.
// TeamName and PlayerName are resolved from the name maps at normalization time.
type LiveEvent struct {
	Type       EventType   `json:"type"`
	MatchID    int         `json:"matchId"`
	TeamID     *int        `json:"teamId,omitempty"`
	PlayerID   *int        `json:"playerId,omitempty"`
	GameMinute *int        `json:"gameMinute,omitempty"`
	MatchScore map[int]int `json:"matchScore,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	TeamName   string      `json:"teamName"`
	PlayerName string      `json:"playerName"`
}

// Minute returns the game minute, 0 when absent.
func (e LiveEvent) Minute() int {
	if e.GameMinute == nil {
		return 0
	}
	return *e.GameMinute
}

type LogStyle string

const (
	StyleSuccess   LogStyle = "success"
	StyleHighlight LogStyle = "highlight"
	StyleWarning   LogStyle = "warning"
	StyleInfo      LogStyle = "info"
	StyleNeutral   LogStyle = "neutral"
)

// LogEntry is one line of the commentary log.
type LogEntry struct {
	LiveEvent
	Description string   `json:"description"`
	Style       LogStyle `json:"style"`
}
