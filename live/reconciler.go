package live

import (
	"errors"
	"sync"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// ErrUnknownMatch marks an event for a match that is not tracked. Callers ignore it.
var ErrUnknownMatch = errors.New("event for untracked match")

// Reconciler owns the canonical state of one match. Apply calls are mutually exclusive.
type Reconciler struct {
	mu      sync.Mutex
	state   models.MatchRecord
	status  models.MatchStatus
	applied int
}

// Seed starts a reconciler from a snapshot and the match's historical batch.
// The snapshot is authoritative for scores; history only settles the status.
func Seed(snapshot models.MatchRecord, history []models.LiveEvent) *Reconciler {
	return &Reconciler{
		state:   cloneRecord(snapshot),
		status:  InitialStatus(snapshot, history),
		applied: len(history),
	}
}

// Apply folds one event into the state and returns the new record.
// Events for another match return ErrUnknownMatch and change nothing.
func (r *Reconciler) Apply(ev models.LiveEvent) (models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.MatchID != r.state.ID {
		return cloneRecord(r.state), ErrUnknownMatch
	}

	if ev.MatchScore != nil && r.state.HomeTeamID != nil && r.state.AwayTeamID != nil {
		home, okHome := ev.MatchScore[*r.state.HomeTeamID]
		away, okAway := ev.MatchScore[*r.state.AwayTeamID]
		if okHome && okAway {
			r.state.HomeScore = intPtr(home)
			r.state.AwayScore = intPtr(away)
		}
	}

	if ev.GameMinute != nil {
		r.state.GameMinute = *ev.GameMinute
	}

	tr := NextStatus(r.status, ev.Type)
	r.status = tr.Status
	switch tr.Snitch {
	case SnitchClear:
		r.state.SnitchCaughtByTeamID = nil
	case SnitchSet:
		if ev.TeamID != nil {
			r.state.SnitchCaughtByTeamID = intPtr(*ev.TeamID)
		}
	}
	r.applied++

	return cloneRecord(r.state), nil
}

// Current returns a copy of the canonical record.
func (r *Reconciler) Current() models.MatchRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneRecord(r.state)
}

// Status returns the machine state, before the presentation heuristic.
func (r *Reconciler) Status() models.MatchStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// View builds the client view-model. logLen is the commentary length when a log
// is kept; the reconciler's own applied-event count is used when it is larger.
func (r *Reconciler) View(names NameMaps, logLen int) models.MatchView {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.applied > logLen {
		logLen = r.applied
	}
	status := Presented(r.status, r.state, logLen)
	return models.MatchView{
		MatchRecord:     cloneRecord(r.state),
		Status:          status,
		IsMatchFinished: status == models.StatusFinished,
		HomeTeamName:    teamNameOrEmpty(names, r.state.HomeTeamID),
		AwayTeamName:    teamNameOrEmpty(names, r.state.AwayTeamID),
	}
}

func teamNameOrEmpty(names NameMaps, id *int) string {
	if id == nil {
		return ""
	}
	return names.Team(id)
}

func intPtr(v int) *int {
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}

// cloneRecord copies every pointer field so callers never alias reconciler state.
func cloneRecord(m models.MatchRecord) models.MatchRecord {
	c := m
	c.TournamentID = copyInt(m.TournamentID)
	c.HomeTeamID = copyInt(m.HomeTeamID)
	c.AwayTeamID = copyInt(m.AwayTeamID)
	c.HomeScore = copyInt(m.HomeScore)
	c.AwayScore = copyInt(m.AwayScore)
	c.SnitchCaughtByTeamID = copyInt(m.SnitchCaughtByTeamID)
	c.StadiumID = copyInt(m.StadiumID)
	c.Round = copyInt(m.Round)
	c.BracketIndex = copyInt(m.BracketIndex)
	if m.Date != nil {
		d := *m.Date
		c.Date = &d
	}
	return c
}
