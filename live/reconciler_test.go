package live

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarisaDinulescu/quadball-live/models"
)

func finishedMatch() models.MatchRecord {
	m := match(1, 1, 2)
	m.HomeScore, m.AwayScore = ip(60), ip(30)
	m.SnitchCaughtByTeamID = ip(7)
	m.GameMinute = 40
	return m
}

func TestApplyMatchEndIsIdempotent(t *testing.T) {
	r := Seed(finishedMatch(), nil)
	require.Equal(t, models.StatusFinished, r.Status())

	end := event(models.EventMatchEnd, 1, 40)
	first, err := r.Apply(end)
	require.NoError(t, err)
	second, err := r.Apply(end)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFinished, r.Status())
	assert.Equal(t, first, second)
	assert.Equal(t, 60, *second.HomeScore)
	assert.Equal(t, 30, *second.AwayScore)
}

func TestApplyMatchStartResetsFinishedMatch(t *testing.T) {
	r := Seed(finishedMatch(), nil)

	got, err := r.Apply(event(models.EventMatchStart, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, models.StatusLive, r.Status())
	assert.Nil(t, got.SnitchCaughtByTeamID)
	assert.Equal(t, 0, got.GameMinute)
}

func TestApplyScoreRequiresBothTeams(t *testing.T) {
	m := match(1, 1, 2)
	m.HomeScore, m.AwayScore = ip(10), ip(0)
	r := Seed(m, nil)

	partial := event(models.EventScore, 1, 8)
	partial.MatchScore = map[int]int{1: 20}
	got, err := r.Apply(partial)
	require.NoError(t, err)
	assert.Equal(t, 10, *got.HomeScore)
	assert.Equal(t, 0, *got.AwayScore)
	assert.Equal(t, 8, got.GameMinute, "minute is still taken from the event")

	full := event(models.EventScore, 1, 9)
	full.MatchScore = map[int]int{1: 20, 2: 10}
	got, err = r.Apply(full)
	require.NoError(t, err)
	assert.Equal(t, 20, *got.HomeScore)
	assert.Equal(t, 10, *got.AwayScore)
}

func TestApplyScoreIgnoredWithoutSeededTeams(t *testing.T) {
	r := Seed(models.MatchRecord{ID: 1}, nil)
	ev := event(models.EventScore, 1, 3)
	ev.MatchScore = map[int]int{1: 10, 2: 0}

	got, err := r.Apply(ev)
	require.NoError(t, err)
	assert.Nil(t, got.HomeScore)
	assert.Nil(t, got.AwayScore)
}

func TestApplyKeepsMinuteWhenAbsent(t *testing.T) {
	m := match(1, 1, 2)
	m.GameMinute = 17
	r := Seed(m, nil)

	got, err := r.Apply(models.LiveEvent{Type: models.EventYellowCard, MatchID: 1})
	require.NoError(t, err)
	assert.Equal(t, 17, got.GameMinute)
}

func TestApplySnitchCaught(t *testing.T) {
	m := match(1, 1, 2)
	m.HomeScore, m.AwayScore = ip(0), ip(0)
	r := Seed(m, nil)
	require.Equal(t, models.StatusLive, r.Status())

	ev := event(models.EventSnitchCaught, 1, 33)
	ev.TeamID = ip(2)
	ev.MatchScore = map[int]int{1: 0, 2: 30}
	got, err := r.Apply(ev)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFinished, r.Status())
	require.NotNil(t, got.SnitchCaughtByTeamID)
	assert.Equal(t, 2, *got.SnitchCaughtByTeamID)
	assert.Equal(t, 30, *got.AwayScore)

	again := event(models.EventSnitchCaught, 1, 34)
	again.TeamID = ip(1)
	got, err = r.Apply(again)
	require.NoError(t, err)
	assert.Equal(t, 2, *got.SnitchCaughtByTeamID, "a finished match keeps its snitch holder")
}

func TestApplyForeignMatch(t *testing.T) {
	r := Seed(match(1, 1, 2), nil)
	before := r.Current()

	_, err := r.Apply(event(models.EventMatchStart, 2, 0))
	assert.ErrorIs(t, err, ErrUnknownMatch)
	assert.Equal(t, before, r.Current())
	assert.Equal(t, models.StatusScheduled, r.Status())
}

func TestCurrentDoesNotAlias(t *testing.T) {
	m := match(1, 1, 2)
	m.HomeScore = ip(10)
	r := Seed(m, nil)

	*m.HomeScore = 99
	got := r.Current()
	*got.HomeScore = 50

	assert.Equal(t, 10, *r.Current().HomeScore)
}

func TestViewPresentation(t *testing.T) {
	r := Seed(match(1, 1, 2), nil)
	v := r.View(testNames(), 0)
	assert.Equal(t, models.StatusScheduled, v.Status)
	assert.False(t, v.IsMatchFinished)
	assert.Equal(t, "Holyhead Harpies", v.HomeTeamName)
	assert.Equal(t, "Chudley Cannons", v.AwayTeamName)

	_, err := r.Apply(event(models.EventMatchStart, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, models.StatusLive, r.View(testNames(), 0).Status)

	_, err = r.Apply(event(models.EventMatchEnd, 1, 30))
	require.NoError(t, err)
	v = r.View(testNames(), 0)
	assert.Equal(t, models.StatusFinished, v.Status)
	assert.True(t, v.IsMatchFinished)

	unseeded := Seed(models.MatchRecord{ID: 5}, nil).View(testNames(), 0)
	assert.Empty(t, unseeded.HomeTeamName)
}

func TestApplyConcurrentCallsAreSerialized(t *testing.T) {
	r := Seed(match(1, 1, 2), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(minute int) {
			defer wg.Done()
			_, _ = r.Apply(event(models.EventScore, 1, minute))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.applied)
	assert.Equal(t, models.StatusScheduled, r.Status())
}
