package live

import (
	"fmt"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// NameMaps resolves team and player ids to display names.
// A NameMaps value is rebuilt wholesale on every full load and never mutated afterwards.
type NameMaps struct {
	teams   map[int]string
	players map[int]string
}

func NewNameMaps(teams []models.Team, players []models.Player) NameMaps {
	nm := NameMaps{
		teams:   make(map[int]string, len(teams)),
		players: make(map[int]string, len(players)),
	}
	for _, t := range teams {
		if t.Name != "" {
			nm.teams[t.ID] = t.Name
		}
	}
	for _, p := range players {
		if name := p.DisplayName(); name != "" {
			nm.players[p.ID] = name
		}
	}
	return nm
}

// Team never fails: unknown ids become "Team {id}".
func (nm NameMaps) Team(id *int) string {
	if id == nil {
		return "Unknown Team"
	}
	if name, ok := nm.teams[*id]; ok {
		return name
	}
	return fmt.Sprintf("Team %d", *id)
}

// Player never fails: unknown ids become "Player {id}".
func (nm NameMaps) Player(id *int) string {
	if id == nil {
		return "Unknown Player"
	}
	if name, ok := nm.players[*id]; ok {
		return name
	}
	return fmt.Sprintf("Player %d", *id)
}

func (nm NameMaps) TeamCount() int   { return len(nm.teams) }
func (nm NameMaps) PlayerCount() int { return len(nm.players) }
