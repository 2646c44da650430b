package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"cloud.google.com/go/civil"

	"github.com/LarisaDinulescu/quadball-live/models"
	"github.com/LarisaDinulescu/quadball-live/realtime"
	"github.com/LarisaDinulescu/quadball-live/repositories"
	"github.com/LarisaDinulescu/quadball-live/storage"
	"github.com/LarisaDinulescu/quadball-live/stream"
)

func ip(v int) *int { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches []models.MatchRecord
	err     error
}

func (r *fakeMatchRepo) List(ctx context.Context) ([]models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]models.MatchRecord(nil), r.matches...), nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, m := range r.matches {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeMatchRepo) set(matches []models.MatchRecord, err error) {
	r.mu.Lock()
	r.matches = matches
	r.err = err
	r.mu.Unlock()
}

type fakeTeamRepo struct{ teams []models.Team }

func (r *fakeTeamRepo) List(ctx context.Context) ([]models.Team, error) { return r.teams, nil }

type fakePlayerRepo struct{ players []models.Player }

func (r *fakePlayerRepo) List(ctx context.Context) ([]models.Player, error) { return r.players, nil }

type fakeEventRepo struct{ batches map[int]string }

func (r *fakeEventRepo) ListByMatch(ctx context.Context, matchID int) (json.RawMessage, error) {
	if b, ok := r.batches[matchID]; ok {
		return json.RawMessage(b), nil
	}
	return json.RawMessage("[]"), nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	err         error
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if r.err != nil {
		return nil, r.err
	}
	if t, ok := r.tournaments[id]; ok {
		return t, nil
	}
	return nil, repositories.ErrNotFound
}

type sentMessage struct {
	room string
	msg  realtime.WebSocketMessage
}

type recordingHub struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (h *recordingHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, sentMessage{room: roomID, msg: message.(realtime.WebSocketMessage)})
}

func (h *recordingHub) messages() []sentMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]sentMessage(nil), h.sent...)
}

type fakePublisher struct {
	keys      []string
	deleted   []string
	err       error
	deleteErr error
}

func (p *fakePublisher) Publish(ctx context.Context, key, contentType string, reader io.Reader) (*storage.PublishResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.keys = append(p.keys, key)
	return &storage.PublishResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (p *fakePublisher) Delete(ctx context.Context, key string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, key)
	return nil
}

func (p *fakePublisher) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

var errBackendDown = errors.New("connection refused")

var testConfig = LiveConfig{GlobalTopic: "/topic/live-events", MatchTopicPrefix: "/topic/match/"}

var today = civil.Date{Year: 2024, Month: 5, Day: 1}

type fixture struct {
	matches *fakeMatchRepo
	events  *fakeEventRepo
	channel *stream.Memory
	hub     *recordingHub
	live    LiveService
}

func newFixture() *fixture {
	tomorrow := today.AddDays(1)
	f := &fixture{
		matches: &fakeMatchRepo{matches: []models.MatchRecord{
			{ID: 1, HomeTeamID: ip(1), AwayTeamID: ip(2), HomeScore: ip(30), AwayScore: ip(10), GameMinute: 12},
			{ID: 2, HomeTeamID: ip(1), AwayTeamID: ip(2), HomeScore: ip(0), AwayScore: ip(0)},
			{ID: 3, HomeTeamID: ip(1), AwayTeamID: ip(2), Date: &today},
			{ID: 4, HomeTeamID: ip(1), AwayTeamID: ip(2), Date: &tomorrow},
			{ID: 5, HomeTeamID: ip(1), Date: &today},
		}},
		events: &fakeEventRepo{batches: map[int]string{
			2: `[{"type":"MATCH_START","matchId":2,"gameMinute":0},{"type":"MATCH_END","matchId":2,"gameMinute":40}]`,
			3: `[{"type":"SCORE","matchId":3,"gameMinute":5},{"type":"SCORE","matchId":3,"gameMinute":12},{"type":"YELLOW_CARD","matchId":3,"gameMinute":3},"garbage"]`,
		}},
		channel: stream.NewMemory(),
		hub:     &recordingHub{},
	}
	f.live = NewLiveService(
		f.matches,
		&fakeTeamRepo{teams: []models.Team{{ID: 1, Name: "Holyhead Harpies"}, {ID: 2, Name: "Chudley Cannons"}}},
		&fakePlayerRepo{players: []models.Player{{ID: 10, Name: "Gwenog Jones"}}},
		f.events,
		f.channel,
		f.hub,
		testConfig,
		discardLogger(),
	)
	return f
}
