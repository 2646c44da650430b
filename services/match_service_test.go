package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarisaDinulescu/quadball-live/models"
)

func matchIDs(views []models.MatchView) []int {
	ids := make([]int, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestListVisible(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.live.Load(context.Background()))
	svc := NewMatchService(f.live)

	spectator := svc.ListVisible(models.Spectator, today)
	assert.Equal(t, []int{1, 2, 3, 5}, matchIDs(spectator))

	manager := svc.ListVisible(models.Viewer{UserID: 7, Role: "manager", IsManager: true}, today)
	assert.Equal(t, []int{1, 2, 3, 4}, matchIDs(manager))

	tomorrow := svc.ListVisible(models.Spectator, today.AddDays(1))
	assert.Equal(t, []int{1, 2, 4}, matchIDs(tomorrow))
}

func TestReloadRequiresManager(t *testing.T) {
	f := newFixture()
	svc := NewMatchService(f.live)

	_, err := svc.Reload(context.Background(), models.Spectator)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
	assert.Equal(t, 0, f.live.Board().Len())

	n, err := svc.Reload(context.Background(), models.Viewer{IsManager: true})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	f.matches.set(nil, errBackendDown)
	_, err = svc.Reload(context.Background(), models.Viewer{IsManager: true})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestGetAndLog(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.live.Load(context.Background()))
	svc := NewMatchService(f.live)

	view, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, view.Status)

	entries, err := svc.Log(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "The referee blows the final whistle.", entries[0].Description)

	_, err = svc.Get(context.Background(), 77)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
