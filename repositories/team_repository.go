package repositories

import (
	"context"

	"github.com/LarisaDinulescu/quadball-live/models"
)

type TeamRepository interface {
	List(ctx context.Context) ([]models.Team, error)
}

type PlayerRepository interface {
	List(ctx context.Context) ([]models.Player, error)
}

type httpTeamRepository struct {
	client *Client
}

func NewHTTPTeamRepository(client *Client) TeamRepository {
	return &httpTeamRepository{client: client}
}

func (r *httpTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := r.client.getJSON(ctx, "/teams", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

type httpPlayerRepository struct {
	client *Client
}

func NewHTTPPlayerRepository(client *Client) PlayerRepository {
	return &httpPlayerRepository{client: client}
}

func (r *httpPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := r.client.getJSON(ctx, "/players", &players); err != nil {
		return nil, err
	}
	return players, nil
}
