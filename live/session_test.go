package live

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarisaDinulescu/quadball-live/models"
)

func TestSessionSkipsMalformedPayload(t *testing.T) {
	m := match(1, 1, 2)
	m.HomeScore, m.AwayScore = ip(0), ip(0)
	s := NewSession(m, []models.LiveEvent{event(models.EventMatchStart, 1, 0)}, testNames())
	require.Len(t, s.Log(), 1)

	_, err := s.Handle([]byte(`{"type": "SCORE", "matchId": `))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	upd, err := s.Handle([]byte(`{"type":"SCORE","matchId":1,"teamId":1,"playerId":10,"gameMinute":3,"matchScore":{"1":10,"2":0}}`))
	require.NoError(t, err)

	log := s.Log()
	require.Len(t, log, 2)
	assert.Equal(t, models.EventScore, log[0].Type)
	assert.Equal(t, "GOAL! Gwenog Jones scores 10 points for Holyhead Harpies!", upd.Entry.Description)
	assert.Equal(t, 10, *upd.Match.HomeScore)
	assert.Equal(t, models.StatusLive, upd.Match.Status)
}

func TestSessionDropsOtherMatches(t *testing.T) {
	s := NewSession(match(1, 1, 2), nil, NameMaps{})

	_, err := s.Handle([]byte(`{"type":"MATCH_START","matchId":2}`))
	assert.ErrorIs(t, err, ErrUnknownMatch)
	assert.Empty(t, s.Log())
	assert.Equal(t, models.StatusScheduled, s.View().Status)
}

func TestSessionStartMakesMatchLive(t *testing.T) {
	s := NewSession(match(1, 1, 2), nil, NameMaps{})
	assert.Equal(t, models.StatusScheduled, s.View().Status)

	upd, err := s.HandleEvent(event(models.EventMatchStart, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, models.StatusLive, upd.Match.Status)
	assert.Equal(t, models.StyleInfo, upd.Entry.Style)
	assert.Equal(t, 1, s.MatchID())
}

func TestSessionClosedIsNoop(t *testing.T) {
	s := NewSession(match(1, 1, 2), nil, NameMaps{})
	s.Close()
	assert.True(t, s.Closed())

	_, err := s.Handle([]byte(`{"type":"MATCH_START","matchId":1}`))
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.HandleEvent(event(models.EventMatchEnd, 1, 40))
	assert.ErrorIs(t, err, ErrSessionClosed)

	assert.Empty(t, s.Log())
	assert.Equal(t, models.StatusScheduled, s.View().Status)
}

func TestSessionHandlePublishAgreesWithSnapshot(t *testing.T) {
	m := match(1, 1, 2)
	m.HomeScore, m.AwayScore = ip(0), ip(0)
	s := NewSession(m, []models.LiveEvent{event(models.EventMatchStart, 1, 0)}, testNames())

	var published atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for minute := 1; minute <= 50; minute++ {
			raw := fmt.Sprintf(`{"type":"SCORE","matchId":1,"teamId":1,"gameMinute":%d}`, minute)
			_, err := s.HandlePublish([]byte(raw), func(u Update) {
				assert.Equal(t, minute, u.Entry.Minute())
				published.Add(1)
			})
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 50; i++ {
		s.Snapshot(func(view models.MatchView, log []models.LogEntry) {
			assert.Len(t, log, 1+int(published.Load()))
		})
	}
	<-done

	_, err := s.HandlePublish([]byte(`{"matchId":`), func(Update) { t.Error("malformed event was published") })
	assert.ErrorIs(t, err, ErrMalformedEvent)
	assert.Equal(t, int32(50), published.Load())
}
