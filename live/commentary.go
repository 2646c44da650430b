package live

import (
	"fmt"
	"sync"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// Describe renders the human-readable commentary line for an event.
func Describe(ev models.LiveEvent, names NameMaps) string {
	player := ev.PlayerName
	if player == "" {
		player = names.Player(ev.PlayerID)
	}
	team := ev.TeamName
	if team == "" {
		team = names.Team(ev.TeamID)
	}

	switch ev.Type {
	case models.EventMatchStart:
		return "The Quaffle is released! Match Started."
	case models.EventScore:
		return fmt.Sprintf("GOAL! %s scores 10 points for %s!", player, team)
	case models.EventSnitchCaught:
		return fmt.Sprintf("SNITCH CAUGHT! %s ends the game for %s!", player, team)
	case models.EventYellowCard:
		return fmt.Sprintf("Yellow Card for %s.", player)
	case models.EventRedCard:
		return fmt.Sprintf("RED CARD! %s is sent off!", player)
	case models.EventSubstitutionIn:
		return fmt.Sprintf("Substitution: %s enters the pitch.", player)
	case models.EventSubstitutionOut:
		return fmt.Sprintf("Substitution: %s leaves the pitch.", player)
	case models.EventMatchEnd:
		return "The referee blows the final whistle."
	default:
		return fmt.Sprintf("Event %s by %s", ev.Type, team)
	}
}

func StyleOf(t models.EventType) models.LogStyle {
	switch t {
	case models.EventScore:
		return models.StyleSuccess
	case models.EventSnitchCaught:
		return models.StyleHighlight
	case models.EventRedCard, models.EventYellowCard:
		return models.StyleWarning
	case models.EventMatchStart, models.EventMatchEnd:
		return models.StyleInfo
	default:
		return models.StyleNeutral
	}
}

func NewLogEntry(ev models.LiveEvent, names NameMaps) models.LogEntry {
	return models.LogEntry{
		LiveEvent:   ev,
		Description: Describe(ev, names),
		Style:       StyleOf(ev.Type),
	}
}

// Commentary is the commentary log of one match, newest entry at index 0.
// Live entries are prepended in arrival order and never re-sorted.
type Commentary struct {
	mu      sync.RWMutex
	entries []models.LogEntry
}

// NewCommentary builds the initial log from a historical batch, sorted newest first.
func NewCommentary(history []models.LiveEvent, names NameMaps) *Commentary {
	sorted := SortNewestFirst(history)
	entries := make([]models.LogEntry, 0, len(sorted))
	for _, ev := range sorted {
		entries = append(entries, NewLogEntry(ev, names))
	}
	return &Commentary{entries: entries}
}

// Append prepends one live event and returns its entry.
func (c *Commentary) Append(ev models.LiveEvent, names NameMaps) models.LogEntry {
	entry := NewLogEntry(ev, names)
	c.mu.Lock()
	c.entries = append([]models.LogEntry{entry}, c.entries...)
	c.mu.Unlock()
	return entry
}

// Entries returns a copy of the log.
func (c *Commentary) Entries() []models.LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Commentary) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
