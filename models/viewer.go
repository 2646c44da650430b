package models

// Viewer is the explicit caller context handed to the visibility filter and manager-gated actions.
type Viewer struct {
	UserID    int    `json:"user_id,omitempty"`
	Role      string `json:"role,omitempty"`
	IsManager bool   `json:"is_manager"`
}

// Spectator is the viewer used when no valid token is present.
var Spectator = Viewer{}
