package services

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/LarisaDinulescu/quadball-live/live"
	"github.com/LarisaDinulescu/quadball-live/models"
)

type MatchService interface {
	ListVisible(viewer models.Viewer, today civil.Date) []models.MatchView
	Get(ctx context.Context, matchID int) (*models.MatchView, error)
	Log(ctx context.Context, matchID int) ([]models.LogEntry, error)
	Reload(ctx context.Context, viewer models.Viewer) (int, error)
}

type matchService struct {
	live LiveService
}

func NewMatchService(liveService LiveService) MatchService {
	return &matchService{live: liveService}
}

// ListVisible returns the board in snapshot order, filtered for the viewer.
func (s *matchService) ListVisible(viewer models.Viewer, today civil.Date) []models.MatchView {
	return live.FilterVisible(s.live.Board().Views(), viewer.IsManager, today)
}

func (s *matchService) Get(ctx context.Context, matchID int) (*models.MatchView, error) {
	return s.live.MatchView(ctx, matchID)
}

func (s *matchService) Log(ctx context.Context, matchID int) ([]models.LogEntry, error) {
	return s.live.MatchLog(ctx, matchID)
}

// Reload is a manager action: a full snapshot refetch.
func (s *matchService) Reload(ctx context.Context, viewer models.Viewer) (int, error) {
	if !viewer.IsManager {
		return 0, ErrForbiddenOperation
	}
	if err := s.live.Load(ctx); err != nil {
		return 0, err
	}
	return s.live.Board().Len(), nil
}
