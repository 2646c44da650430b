package models

// Tournament is the bracket source returned by GET /tournaments/{id}.
type Tournament struct {
	ID      int           `json:"id"`
	Name    string        `json:"name,omitempty"`
	Matches []MatchRecord `json:"matches"`
}
