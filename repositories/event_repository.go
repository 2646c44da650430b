package repositories

import (
	"context"
	"encoding/json"
	"fmt"
)

// EventRepository returns historical event batches undecoded, so that every event
// enters the engine through the normalizer.
type EventRepository interface {
	ListByMatch(ctx context.Context, matchID int) (json.RawMessage, error)
}

type httpEventRepository struct {
	client *Client
}

func NewHTTPEventRepository(client *Client) EventRepository {
	return &httpEventRepository{client: client}
}

// ListByMatch treats a 404 as an empty batch: matches that never started have no events.
func (r *httpEventRepository) ListByMatch(ctx context.Context, matchID int) (json.RawMessage, error) {
	body, err := r.client.getRaw(ctx, fmt.Sprintf("/live-game-events/match/%d", matchID))
	if err != nil {
		if isNotFound(err) {
			return json.RawMessage("[]"), nil
		}
		return nil, err
	}
	if len(body) == 0 || string(body) == "null" {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(body), nil
}
