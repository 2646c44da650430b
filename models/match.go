package models

import "cloud.google.com/go/civil"

// MatchStatus is the status derived client-side from scores, the snitch field and the last event seen.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusLive      MatchStatus = "LIVE"
	StatusFinished  MatchStatus = "FINISHED"
)

// MatchRecord is a match as returned by GET /matches.
// Nil scores mean the match has not started; nil team slots are not seeded yet.
type MatchRecord struct {
	ID                   int         `json:"id"`
	TournamentID         *int        `json:"tournamentId,omitempty"`
	HomeTeamID           *int        `json:"homeTeamId"`
	AwayTeamID           *int        `json:"awayTeamId"`
	HomeScore            *int        `json:"homeScore"`
	AwayScore            *int        `json:"awayScore"`
	GameMinute           int         `json:"gameMinute"`
	SnitchCaughtByTeamID *int        `json:"snitchCaughtByTeamId"`
	Date                 *civil.Date `json:"date"`
	StadiumID            *int        `json:"stadiumId,omitempty"`
	StadiumName          string      `json:"stadiumName,omitempty"`
	Round                *int        `json:"round,omitempty"`
	BracketIndex         *int        `json:"bracketIndex,omitempty"`
}

// RoundNumber returns the round field, 0 when absent.
func (m MatchRecord) RoundNumber() int {
	if m.Round == nil {
		return 0
	}
	return *m.Round
}

// BracketPosition returns the bracket index, 0 when absent.
func (m MatchRecord) BracketPosition() int {
	if m.BracketIndex == nil {
		return 0
	}
	return *m.BracketIndex
}

// HasBothTeams reports whether both team slots are filled.
func (m MatchRecord) HasBothTeams() bool {
	return m.HomeTeamID != nil && m.AwayTeamID != nil
}

// MatchView is the list/detail view-model handed to web clients.
type MatchView struct {
	MatchRecord
	Status          MatchStatus `json:"status"`
	IsMatchFinished bool        `json:"isMatchFinished"`
	HomeTeamName    string      `json:"homeTeamName,omitempty"`
	AwayTeamName    string      `json:"awayTeamName,omitempty"`
}
