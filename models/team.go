package models

import (
	"fmt"
	"strings"
)

type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Player struct {
	ID        int    `json:"id"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	TeamID    *int   `json:"teamId,omitempty"`
}

// DisplayName returns name, else "first last", else an empty string.
func (p Player) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", p.FirstName, p.LastName))
}
