package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LarisaDinulescu/quadball-live/brackets"
	"github.com/LarisaDinulescu/quadball-live/repositories"
	"github.com/LarisaDinulescu/quadball-live/storage"
)

type BracketView struct {
	TournamentID int              `json:"tournament_id"`
	Name         string           `json:"name,omitempty"`
	Rounds       []brackets.Round `json:"rounds"`
	PublishedURL string           `json:"published_url,omitempty"`
}

type BracketService interface {
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	tournamentRepo repositories.TournamentRepository
	organizer      *brackets.Organizer
	publisher      storage.Publisher
	log            *slog.Logger
}

// NewBracketService builds the service; publisher may be nil to skip publishing.
func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	organizer *brackets.Organizer,
	publisher storage.Publisher,
	log *slog.Logger,
) BracketService {
	return &bracketService{
		tournamentRepo: tournamentRepo,
		organizer:      organizer,
		publisher:      publisher,
		log:            log,
	}
}

func bracketKey(tournamentID int) string {
	return fmt.Sprintf("brackets/tournament_%d.json", tournamentID)
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		err = handleRepositoryError(err, ErrTournamentNotFound, fmt.Sprintf("tournament %d", tournamentID))
		if errors.Is(err, ErrTournamentNotFound) {
			s.unpublish(ctx, tournamentID)
		}
		return nil, err
	}

	view := &BracketView{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		Rounds:       s.organizer.Organize(tournament.Matches),
	}
	s.log.Debug("bracket organized",
		slog.Int("tournament_id", tournamentID),
		slog.Int("rounds", len(view.Rounds)),
		slog.Int("matches", brackets.MatchCount(view.Rounds)))

	if s.publisher == nil {
		return view, nil
	}

	// Publishing is best effort; the organized bracket is returned either way.
	body, err := json.Marshal(view)
	if err != nil {
		s.log.Error("failed to marshal bracket", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return view, nil
	}
	result, err := s.publisher.Publish(ctx, bracketKey(tournamentID), "application/json", bytes.NewReader(body))
	if err != nil {
		s.log.Warn("bracket publish failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return view, nil
	}
	view.PublishedURL = result.Location
	return view, nil
}

// unpublish removes the published copy of a tournament the backend no longer knows.
func (s *bracketService) unpublish(ctx context.Context, tournamentID int) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Delete(ctx, bracketKey(tournamentID)); err != nil {
		s.log.Warn("stale bracket delete failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	s.log.Debug("stale bracket deleted", slog.Int("tournament_id", tournamentID))
}
