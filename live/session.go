package live

import (
	"errors"
	"sync"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// ErrSessionClosed is returned for events delivered after Close. They are no-ops.
var ErrSessionClosed = errors.New("match session closed")

// Update is what one processed event produced.
type Update struct {
	Entry models.LogEntry
	Match models.MatchView
}

// Session is the detail-view pipeline of one match: normalize, reconcile, append.
// Each event is processed to completion before the next one starts.
type Session struct {
	mu         sync.Mutex
	matchID    int
	reconciler *Reconciler
	commentary *Commentary
	names      NameMaps
	closed     bool
}

func NewSession(snapshot models.MatchRecord, history []models.LiveEvent, names NameMaps) *Session {
	return &Session{
		matchID:    snapshot.ID,
		reconciler: Seed(snapshot, history),
		commentary: NewCommentary(history, names),
		names:      names,
	}
}

func (s *Session) MatchID() int { return s.matchID }

// Handle processes one raw push message. Malformed payloads return ErrMalformedEvent,
// events for other matches ErrUnknownMatch; neither touches the state.
func (s *Session) Handle(raw []byte) (Update, error) {
	return s.HandlePublish(raw, nil)
}

// HandlePublish is Handle with publish called on the resulting update before the
// session lock is released. A Snapshot never observes state that publish has not seen.
func (s *Session) HandlePublish(raw []byte, publish func(Update)) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Update{}, ErrSessionClosed
	}
	ev, err := Normalize(raw, s.names)
	if err != nil {
		return Update{}, err
	}
	update, err := s.applyLocked(ev)
	if err != nil {
		return Update{}, err
	}
	if publish != nil {
		publish(update)
	}
	return update, nil
}

// HandleEvent processes an already normalized event.
func (s *Session) HandleEvent(ev models.LiveEvent) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Update{}, ErrSessionClosed
	}
	return s.applyLocked(ev)
}

func (s *Session) applyLocked(ev models.LiveEvent) (Update, error) {
	if ev.MatchID != s.matchID {
		return Update{}, ErrUnknownMatch
	}
	if _, err := s.reconciler.Apply(ev); err != nil {
		return Update{}, err
	}
	entry := s.commentary.Append(ev, s.names)
	return Update{
		Entry: entry,
		Match: s.reconciler.View(s.names, s.commentary.Len()),
	}, nil
}

func (s *Session) View() models.MatchView {
	return s.reconciler.View(s.names, s.commentary.Len())
}

func (s *Session) Log() []models.LogEntry {
	return s.commentary.Entries()
}

// Snapshot calls fn with the current view and log while no event is being applied.
func (s *Session) Snapshot(fn func(view models.MatchView, log []models.LogEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.reconciler.View(s.names, s.commentary.Len()), s.commentary.Entries())
}

// Close makes every later Handle call a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
