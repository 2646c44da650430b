package live

import (
	"sync"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// Board tracks the currently loaded match collection, one Reconciler per match.
// Apply calls for different matches do not block each other.
type Board struct {
	mu      sync.RWMutex
	order   []int
	matches map[int]*Reconciler
	names   NameMaps
}

func NewBoard() *Board {
	return &Board{matches: make(map[int]*Reconciler)}
}

// Replace swaps the whole collection, as a full refetch does.
func (b *Board) Replace(snapshot []models.MatchRecord, history map[int][]models.LiveEvent, names NameMaps) {
	order := make([]int, 0, len(snapshot))
	matches := make(map[int]*Reconciler, len(snapshot))
	for _, m := range snapshot {
		if _, dup := matches[m.ID]; !dup {
			order = append(order, m.ID)
		}
		matches[m.ID] = Seed(m, history[m.ID])
	}

	b.mu.Lock()
	b.order = order
	b.matches = matches
	b.names = names
	b.mu.Unlock()
}

// Apply routes an event to its match. Untracked matchIds yield ErrUnknownMatch.
func (b *Board) Apply(ev models.LiveEvent) (models.MatchView, error) {
	b.mu.RLock()
	rec, ok := b.matches[ev.MatchID]
	names := b.names
	b.mu.RUnlock()
	if !ok {
		return models.MatchView{}, ErrUnknownMatch
	}
	if _, err := rec.Apply(ev); err != nil {
		return models.MatchView{}, err
	}
	return rec.View(names, 0), nil
}

func (b *Board) View(matchID int) (models.MatchView, bool) {
	b.mu.RLock()
	rec, ok := b.matches[matchID]
	names := b.names
	b.mu.RUnlock()
	if !ok {
		return models.MatchView{}, false
	}
	return rec.View(names, 0), true
}

// Views returns every match in snapshot order.
func (b *Board) Views() []models.MatchView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	views := make([]models.MatchView, 0, len(b.order))
	for _, id := range b.order {
		views = append(views, b.matches[id].View(b.names, 0))
	}
	return views
}

func (b *Board) Records() []models.MatchRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	records := make([]models.MatchRecord, 0, len(b.order))
	for _, id := range b.order {
		records = append(records, b.matches[id].Current())
	}
	return records
}

func (b *Board) Names() NameMaps {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.names
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}
