package live

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarisaDinulescu/quadball-live/models"
)

func TestNormalizeScoreEvent(t *testing.T) {
	raw := []byte(`{"type":"SCORE","matchId":3,"teamId":1,"playerId":10,"gameMinute":12,
		"matchScore":{"1":20,"2":10},"timestamp":"2024-05-01T12:12:00Z"}`)

	ev, err := Normalize(raw, testNames())
	require.NoError(t, err)

	assert.Equal(t, models.EventScore, ev.Type)
	assert.Equal(t, 3, ev.MatchID)
	require.NotNil(t, ev.TeamID)
	assert.Equal(t, 1, *ev.TeamID)
	assert.Equal(t, 12, ev.Minute())
	assert.Equal(t, map[int]int{1: 20, 2: 10}, ev.MatchScore)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 12, 0, 0, time.UTC), ev.Timestamp)
	assert.Equal(t, "Holyhead Harpies", ev.TeamName)
	assert.Equal(t, "Gwenog Jones", ev.PlayerName)
}

func TestNormalizeTolerantFields(t *testing.T) {
	raw := []byte(`{"type":"yellow_card","matchId":"7","teamId":"2","playerId":20,"timestamp":"2024-05-01T12:30:15.5"}`)

	ev, err := Normalize(raw, testNames())
	require.NoError(t, err)

	assert.Equal(t, models.EventYellowCard, ev.Type)
	assert.Equal(t, 7, ev.MatchID)
	assert.Nil(t, ev.GameMinute)
	assert.Equal(t, "Joey Jenkins", ev.PlayerName)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 15, 500_000_000, time.UTC), ev.Timestamp)
}

func TestNormalizeEpochMillis(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"MATCH_END","matchId":1,"timestamp":1714565520000}`), NameMaps{})
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1714565520000).UTC(), ev.Timestamp)
}

func TestNormalizePlaceholderNames(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"SCORE","matchId":1,"teamId":99,"playerId":42}`), testNames())
	require.NoError(t, err)
	assert.Equal(t, "Team 99", ev.TeamName)
	assert.Equal(t, "Player 42", ev.PlayerName)

	ev, err = Normalize([]byte(`{"type":"MATCH_START","matchId":1}`), testNames())
	require.NoError(t, err)
	assert.Equal(t, "Unknown Team", ev.TeamName)
	assert.Equal(t, "Unknown Player", ev.PlayerName)
}

func TestNormalizeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"type":`,
		"empty":         ``,
		"missing type":  `{"matchId":1}`,
		"blank type":    `{"type":"  ","matchId":1}`,
		"missing match": `{"type":"SCORE"}`,
		"null match":    `{"type":"SCORE","matchId":null}`,
		"bad match id":  `{"type":"SCORE","matchId":"abc"}`,
		"fractional id": `{"type":"SCORE","matchId":1.7}`,
		"huge id":       `{"type":"SCORE","matchId":1e30}`,
		"huge string":   `{"type":"SCORE","matchId":"99999999999999999999"}`,
		"fraction team": `{"type":"SCORE","matchId":1,"teamId":"2.5"}`,
		"frac minute":   `{"type":"SCORE","matchId":1,"gameMinute":12.25}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize([]byte(raw), testNames())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedEvent))
		})
	}
}

func TestNormalizeIntegralNumbers(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"SCORE","matchId":3.0,"teamId":"2","gameMinute":1e1}`), testNames())
	require.NoError(t, err)
	assert.Equal(t, 3, ev.MatchID)
	assert.Equal(t, 2, *ev.TeamID)
	assert.Equal(t, 10, *ev.GameMinute)
}

func TestNormalizeSkipsBadScoreKeys(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"SCORE","matchId":1,"matchScore":{"1":30,"home":10,"2":null}}`), NameMaps{})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 30}, ev.MatchScore)
}

func TestNormalizeBatch(t *testing.T) {
	raw := []byte(`[{"type":"MATCH_START","matchId":1,"gameMinute":0},{"matchId":1},{"type":"SCORE","matchId":1,"gameMinute":4}]`)

	events, dropped, err := NormalizeBatch(raw, NameMaps{})
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventMatchStart, events[0].Type)
	assert.Equal(t, models.EventScore, events[1].Type)

	_, _, err = NormalizeBatch([]byte(`{"type":"SCORE"}`), NameMaps{})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}
