package live

import (
	"sort"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// SnitchEffect describes what a transition does to snitchCaughtByTeamId.
type SnitchEffect int

const (
	SnitchKeep SnitchEffect = iota
	SnitchClear
	SnitchSet
)

// Transition is the outcome of feeding one event type to the status machine.
type Transition struct {
	Status models.MatchStatus
	Snitch SnitchEffect
}

// NextStatus is the SCHEDULED -> LIVE -> FINISHED machine, with FINISHED -> LIVE allowed
// on MATCH_START for a match re-simulated from scratch.
func NextStatus(current models.MatchStatus, eventType models.EventType) Transition {
	switch eventType {
	case models.EventMatchStart:
		return Transition{Status: models.StatusLive, Snitch: SnitchClear}
	case models.EventSnitchCaught:
		if current == models.StatusLive || current == models.StatusScheduled {
			return Transition{Status: models.StatusFinished, Snitch: SnitchSet}
		}
		return Transition{Status: current, Snitch: SnitchKeep}
	case models.EventMatchEnd:
		return Transition{Status: models.StatusFinished, Snitch: SnitchKeep}
	default:
		return Transition{Status: current, Snitch: SnitchKeep}
	}
}

// InitialStatus derives the status of a freshly loaded snapshot. A recorded snitch catch
// finishes the match; otherwise a terminal most-recent historical event does; otherwise a
// non-nil home score means it is live.
func InitialStatus(m models.MatchRecord, history []models.LiveEvent) models.MatchStatus {
	if m.SnitchCaughtByTeamID != nil {
		return models.StatusFinished
	}
	if latest, ok := MostRecent(history); ok && latest.Type.IsTerminal() {
		return models.StatusFinished
	}
	if m.HomeScore != nil {
		return models.StatusLive
	}
	return models.StatusScheduled
}

// IsStarted is the presentation heuristic gating LIVE.
func IsStarted(m models.MatchRecord, logLen int) bool {
	if m.HomeScore != nil || logLen > 0 {
		return true
	}
	return positive(m.HomeScore) || positive(m.AwayScore)
}

// Presented is the status shown to clients: LIVE without IsStarted is shown as SCHEDULED.
func Presented(status models.MatchStatus, m models.MatchRecord, logLen int) models.MatchStatus {
	if status == models.StatusLive && !IsStarted(m, logLen) {
		return models.StatusScheduled
	}
	return status
}

func positive(score *int) bool {
	return score != nil && *score > 0
}

// eventBefore orders events by (gameMinute, timestamp).
func eventBefore(a, b models.LiveEvent) bool {
	if a.Minute() != b.Minute() {
		return a.Minute() < b.Minute()
	}
	return a.Timestamp.Before(b.Timestamp)
}

// SortNewestFirst returns a copy of a historical batch ordered descending by
// (gameMinute, timestamp). On ties the event later in the batch comes first.
func SortNewestFirst(events []models.LiveEvent) []models.LiveEvent {
	sorted := make([]models.LiveEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return eventBefore(sorted[i], sorted[j])
	})
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted
}

// MostRecent returns the newest event of a historical batch by the batch ordering key.
func MostRecent(events []models.LiveEvent) (models.LiveEvent, bool) {
	if len(events) == 0 {
		return models.LiveEvent{}, false
	}
	latest := events[0]
	for _, ev := range events[1:] {
		if !eventBefore(ev, latest) {
			latest = ev
		}
	}
	return latest, true
}
