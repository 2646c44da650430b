package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LarisaDinulescu/quadball-live/models"
)

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
}

type httpTournamentRepository struct {
	client *Client
}

func NewHTTPTournamentRepository(client *Client) TournamentRepository {
	return &httpTournamentRepository{client: client}
}

// GetByID accepts either a bare match array or a tournament object with a "matches" field.
func (r *httpTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	path := fmt.Sprintf("/tournaments/%d", id)
	body, err := r.client.getRaw(ctx, path)
	if err != nil {
		return nil, err
	}

	wire := tournamentWire{Tournament: models.Tournament{ID: id}}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &wire.Matches)
	} else {
		err = json.Unmarshal(trimmed, &wire)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding GET %s: %v", ErrTransport, path, err)
	}
	tournament := &wire.Tournament
	if tournament.ID == 0 {
		tournament.ID = id
	}
	tournament.Matches = matchRecords(wire.Matches)
	return tournament, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
