package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/LarisaDinulescu/quadball-live/live"
	"github.com/LarisaDinulescu/quadball-live/models"
	"github.com/LarisaDinulescu/quadball-live/realtime"
	"github.com/LarisaDinulescu/quadball-live/repositories"
	"github.com/LarisaDinulescu/quadball-live/stream"
	"golang.org/x/sync/errgroup"
)

const historyFetchLimit = 8

// Broadcaster pushes messages to downstream websocket rooms.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type LiveConfig struct {
	GlobalTopic      string
	MatchTopicPrefix string
}

// MatchTopic is the per-match topic: prefix followed by the id.
func (c LiveConfig) MatchTopic(matchID int) string {
	return c.MatchTopicPrefix + strconv.Itoa(matchID)
}

// LiveService owns the list board and the open match-detail sessions.
type LiveService interface {
	Load(ctx context.Context) error
	RunGlobal(ctx context.Context) error
	AcquireMatch(ctx context.Context, matchID int) (*live.Session, func(), error)
	MatchView(ctx context.Context, matchID int) (*models.MatchView, error)
	MatchLog(ctx context.Context, matchID int) ([]models.LogEntry, error)
	Board() *live.Board
	OpenSessions() int
	// SyncList runs fn while no list update is being applied or broadcast.
	SyncList(fn func())
}

type liveService struct {
	matchRepo  repositories.MatchRepository
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	eventRepo  repositories.EventRepository
	channel    stream.Channel
	hub        Broadcaster
	cfg        LiveConfig
	log        *slog.Logger

	board  *live.Board
	listMu sync.Mutex

	mu       sync.Mutex
	sessions map[int]*matchSession
}

type matchSession struct {
	session *live.Session
	sub     stream.Subscription
	cancel  context.CancelFunc
	done    chan struct{}
	refs    int
}

func NewLiveService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	eventRepo repositories.EventRepository,
	channel stream.Channel,
	hub Broadcaster,
	cfg LiveConfig,
	log *slog.Logger,
) LiveService {
	return &liveService{
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		eventRepo:  eventRepo,
		channel:    channel,
		hub:        hub,
		cfg:        cfg,
		log:        log,
		board:      live.NewBoard(),
		sessions:   make(map[int]*matchSession),
	}
}

func (s *liveService) Board() *live.Board {
	return s.board
}

func (s *liveService) SyncList(fn func()) {
	s.listMu.Lock()
	defer s.listMu.Unlock()
	fn()
}

func (s *liveService) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Load refetches the snapshot, the name maps and every match history, then swaps the board.
// On failure the previous board stays in place.
func (s *liveService) Load(ctx context.Context) error {
	var (
		matches []models.MatchRecord
		names   live.NameMaps
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.matchRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to fetch matches: %w", err)
		}
		matches = list
		return nil
	})
	g.Go(func() error {
		nm, err := s.loadNames(gCtx)
		if err != nil {
			return err
		}
		names = nm
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("snapshot load failed, keeping previous state", slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	history := s.loadHistories(ctx, matches, names)
	s.board.Replace(matches, history, names)
	s.log.Info("match snapshot loaded",
		slog.Int("matches", len(matches)),
		slog.Int("teams", names.TeamCount()),
		slog.Int("players", names.PlayerCount()))
	return nil
}

func (s *liveService) loadNames(ctx context.Context) (live.NameMaps, error) {
	var (
		teams   []models.Team
		players []models.Player
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.teamRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to fetch teams: %w", err)
		}
		teams = list
		return nil
	})
	g.Go(func() error {
		list, err := s.playerRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to fetch players: %w", err)
		}
		players = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return live.NameMaps{}, err
	}
	return live.NewNameMaps(teams, players), nil
}

// loadHistories fetches the event batches used to settle initial statuses.
// A failed batch degrades that match to its snapshot fields.
func (s *liveService) loadHistories(ctx context.Context, matches []models.MatchRecord, names live.NameMaps) map[int][]models.LiveEvent {
	var mu sync.Mutex
	history := make(map[int][]models.LiveEvent, len(matches))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(historyFetchLimit)
	for _, m := range matches {
		matchID := m.ID
		g.Go(func() error {
			events, err := s.fetchHistory(gCtx, matchID, names)
			if err != nil {
				s.log.Warn("history fetch failed", slog.Int("match_id", matchID), slog.Any("error", err))
				return nil
			}
			mu.Lock()
			history[matchID] = events
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return history
}

func (s *liveService) fetchHistory(ctx context.Context, matchID int, names live.NameMaps) ([]models.LiveEvent, error) {
	raw, err := s.eventRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	events, dropped, err := live.NormalizeBatch(raw, names)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		s.log.Warn("dropped malformed historical events", slog.Int("match_id", matchID), slog.Int("dropped", dropped))
	}
	return events, nil
}

// RunGlobal consumes the global topic until ctx is done or the subscription drops.
func (s *liveService) RunGlobal(ctx context.Context) error {
	sub, err := s.channel.Subscribe(ctx, s.cfg.GlobalTopic)
	if err != nil {
		s.log.Error("global topic subscribe failed", slog.String("topic", s.cfg.GlobalTopic), slog.Any("error", err))
		return fmt.Errorf("%w: subscribe %s: %v", ErrBackendUnavailable, s.cfg.GlobalTopic, err)
	}
	defer sub.Close()
	s.log.Info("global topic subscribed", slog.String("topic", s.cfg.GlobalTopic))

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-sub.Messages():
			if !ok {
				s.log.Warn("global topic subscription closed", slog.String("topic", s.cfg.GlobalTopic))
				return fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, s.cfg.GlobalTopic, stream.ErrClosed)
			}
			s.handleGlobal(raw)
		}
	}
}

func (s *liveService) handleGlobal(raw []byte) {
	ev, err := live.Normalize(raw, s.board.Names())
	if err != nil {
		s.log.Warn("dropping malformed event", slog.String("topic", s.cfg.GlobalTopic), slog.Any("error", err))
		return
	}
	s.listMu.Lock()
	defer s.listMu.Unlock()
	view, err := s.board.Apply(ev)
	if err != nil {
		if errors.Is(err, live.ErrUnknownMatch) {
			s.log.Debug("event for untracked match", slog.Int("match_id", ev.MatchID))
			return
		}
		s.log.Warn("event not applied", slog.Int("match_id", ev.MatchID), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToRoom(realtime.MatchesRoom, realtime.WebSocketMessage{
		Type:    realtime.TypeMatchUpdated,
		Payload: view,
		RoomID:  realtime.MatchesRoom,
	})
}

// AcquireMatch returns the detail session of a match. The first caller opens the
// per-match subscription; the returned release must be called once per acquire.
func (s *liveService) AcquireMatch(ctx context.Context, matchID int) (*live.Session, func(), error) {
	s.mu.Lock()
	if ms, ok := s.sessions[matchID]; ok {
		ms.refs++
		s.mu.Unlock()
		return ms.session, s.releaser(matchID, ms), nil
	}
	s.mu.Unlock()

	session, err := s.openSession(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	topic := s.cfg.MatchTopic(matchID)
	sub, err := s.channel.Subscribe(ctx, topic)
	if err != nil {
		s.log.Error("match topic subscribe failed", slog.String("topic", topic), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: subscribe %s: %v", ErrBackendUnavailable, topic, err)
	}

	s.mu.Lock()
	if existing, ok := s.sessions[matchID]; ok {
		// Another caller opened the match meanwhile.
		existing.refs++
		s.mu.Unlock()
		sub.Close()
		session.Close()
		return existing.session, s.releaser(matchID, existing), nil
	}
	consumeCtx, cancel := context.WithCancel(context.Background())
	ms := &matchSession{
		session: session,
		sub:     sub,
		cancel:  cancel,
		done:    make(chan struct{}),
		refs:    1,
	}
	s.sessions[matchID] = ms
	s.mu.Unlock()

	s.log.Info("match session opened", slog.Int("match_id", matchID), slog.String("topic", topic))
	go s.consume(consumeCtx, ms)
	return session, s.releaser(matchID, ms), nil
}

func (s *liveService) releaser(matchID int, ms *matchSession) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			ms.refs--
			last := ms.refs == 0
			if last && s.sessions[matchID] == ms {
				delete(s.sessions, matchID)
			}
			s.mu.Unlock()

			if last {
				ms.session.Close()
				ms.cancel()
				<-ms.done
				if err := ms.sub.Close(); err != nil {
					s.log.Warn("match subscription close failed", slog.Int("match_id", matchID), slog.Any("error", err))
				}
				s.log.Info("match session released", slog.Int("match_id", matchID))
			}
		})
	}
}

func (s *liveService) consume(ctx context.Context, ms *matchSession) {
	defer close(ms.done)
	matchID := ms.session.MatchID()
	room := realtime.MatchRoom(matchID)

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ms.sub.Messages():
			if !ok {
				s.log.Warn("match subscription closed, evicting session", slog.Int("match_id", matchID))
				s.evict(matchID, ms)
				return
			}
			_, err := ms.session.HandlePublish(raw, func(update live.Update) {
				s.hub.BroadcastToRoom(room, realtime.WebSocketMessage{
					Type:    realtime.TypeLogEntry,
					Payload: update.Entry,
					RoomID:  room,
				})
				s.hub.BroadcastToRoom(room, realtime.WebSocketMessage{
					Type:    realtime.TypeMatchUpdated,
					Payload: update.Match,
					RoomID:  room,
				})
			})
			switch {
			case err == nil:
			case errors.Is(err, live.ErrSessionClosed):
				return
			case errors.Is(err, live.ErrUnknownMatch):
				s.log.Debug("event for another match on match topic", slog.Int("match_id", matchID))
			default:
				s.log.Warn("dropping malformed event", slog.String("topic", ms.sub.Topic()), slog.Any("error", err))
			}
		}
	}
}

// evict forgets a session whose subscription dropped so the next acquire resubscribes.
// Holders keep their release; it still closes the dead subscription.
func (s *liveService) evict(matchID int, ms *matchSession) {
	s.mu.Lock()
	if s.sessions[matchID] == ms {
		delete(s.sessions, matchID)
	}
	s.mu.Unlock()
	ms.session.Close()
}

// openSession fetches the match and its history and seeds a session from them.
func (s *liveService) openSession(ctx context.Context, matchID int) (*live.Session, error) {
	names := s.board.Names()
	if names.TeamCount() == 0 && names.PlayerCount() == 0 {
		nm, err := s.loadNames(ctx)
		if err != nil {
			s.log.Warn("name maps unavailable, using placeholders", slog.Any("error", err))
		} else {
			names = nm
		}
	}

	var (
		record  *models.MatchRecord
		history []models.LiveEvent
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.matchRepo.GetByID(gCtx, matchID)
		if err != nil {
			return handleRepositoryError(err, ErrMatchNotFound, fmt.Sprintf("match %d", matchID))
		}
		record = m
		return nil
	})
	g.Go(func() error {
		events, err := s.fetchHistory(gCtx, matchID, names)
		if err != nil {
			return fmt.Errorf("%w: history of match %d: %v", ErrBackendUnavailable, matchID, err)
		}
		history = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if record.ID == 0 {
		record.ID = matchID
	}
	return live.NewSession(*record, history, names), nil
}

// MatchView prefers an open session, then the board, then a fresh fetch.
func (s *liveService) MatchView(ctx context.Context, matchID int) (*models.MatchView, error) {
	if session := s.openedSession(matchID); session != nil {
		view := session.View()
		return &view, nil
	}
	if view, ok := s.board.View(matchID); ok {
		return &view, nil
	}
	session, err := s.openSession(ctx, matchID)
	if err != nil {
		return nil, err
	}
	view := session.View()
	return &view, nil
}

// MatchLog returns the commentary log newest first.
func (s *liveService) MatchLog(ctx context.Context, matchID int) ([]models.LogEntry, error) {
	if session := s.openedSession(matchID); session != nil {
		return session.Log(), nil
	}
	session, err := s.openSession(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return session.Log(), nil
}

func (s *liveService) openedSession(matchID int) *live.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok := s.sessions[matchID]; ok {
		return ms.session
	}
	return nil
}
