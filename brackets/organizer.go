package brackets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// Naming selects how positional round names are rendered.
type Naming string

const (
	// NamingClassic: "Final", "Semi-Finals", then "Round N".
	NamingClassic Naming = "classic"
	// NamingGrand: "The Grand Final", "Semi-Finals", "Quarter-Finals", then "Round N".
	NamingGrand Naming = "grand"
)

// ParseNaming accepts "classic" or "grand", case-insensitively. Empty means classic.
func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamingClassic:
		return NamingClassic, nil
	case NamingGrand:
		return NamingGrand, nil
	default:
		return "", fmt.Errorf("unknown bracket naming %q (want %q or %q)", s, NamingClassic, NamingGrand)
	}
}

// Round is one column of the bracket.
type Round struct {
	Position int                  `json:"position"`
	Number   int                  `json:"round"`
	Name     string               `json:"name"`
	Matches  []models.MatchRecord `json:"matches"`
}

type Organizer struct {
	Naming Naming
}

func NewOrganizer(naming Naming) *Organizer {
	return &Organizer{Naming: naming}
}

// Organize groups a flat match list into rounds using classic naming.
func Organize(matches []models.MatchRecord) []Round {
	return NewOrganizer(NamingClassic).Organize(matches)
}

// Organize groups matches by round (absent round is 0), orders the rounds numerically
// and each round by bracketIndex (absent is 0, ties keep input order). Names are
// positional relative to the final, independent of the round numbers.
func (o *Organizer) Organize(matches []models.MatchRecord) []Round {
	if len(matches) == 0 {
		return []Round{}
	}

	buckets := make(map[int][]models.MatchRecord)
	keys := make([]int, 0)
	for _, m := range matches {
		n := m.RoundNumber()
		if _, ok := buckets[n]; !ok {
			keys = append(keys, n)
		}
		buckets[n] = append(buckets[n], m)
	}
	sort.Ints(keys)

	rounds := make([]Round, 0, len(keys))
	for pos, n := range keys {
		bucket := buckets[n]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].BracketPosition() < bucket[j].BracketPosition()
		})
		rounds = append(rounds, Round{
			Position: pos,
			Number:   n,
			Name:     RoundName(pos, len(keys), o.Naming),
			Matches:  bucket,
		})
	}
	return rounds
}

// RoundName names the round at position out of total rounds.
func RoundName(position, total int, naming Naming) string {
	switch fromFinal := total - 1 - position; {
	case fromFinal == 0:
		if naming == NamingGrand {
			return "The Grand Final"
		}
		return "Final"
	case fromFinal == 1:
		return "Semi-Finals"
	case fromFinal == 2 && naming == NamingGrand:
		return "Quarter-Finals"
	default:
		return fmt.Sprintf("Round %d", position+1)
	}
}

// MatchCount sums the matches of all rounds.
func MatchCount(rounds []Round) int {
	total := 0
	for _, r := range rounds {
		total += len(r.Matches)
	}
	return total
}
