package repositories

import (
	"context"
	"fmt"

	"github.com/LarisaDinulescu/quadball-live/models"
)

type MatchRepository interface {
	List(ctx context.Context) ([]models.MatchRecord, error)
	GetByID(ctx context.Context, id int) (*models.MatchRecord, error)
}

type httpMatchRepository struct {
	client *Client
}

func NewHTTPMatchRepository(client *Client) MatchRepository {
	return &httpMatchRepository{client: client}
}

func (r *httpMatchRepository) List(ctx context.Context) ([]models.MatchRecord, error) {
	var wires []matchWire
	if err := r.client.getJSON(ctx, "/matches", &wires); err != nil {
		return nil, err
	}
	return matchRecords(wires), nil
}

func (r *httpMatchRepository) GetByID(ctx context.Context, id int) (*models.MatchRecord, error) {
	var wire matchWire
	if err := r.client.getJSON(ctx, fmt.Sprintf("/matches/%d", id), &wire); err != nil {
		return nil, err
	}
	match := wire.record()
	return &match, nil
}
