package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"

	"github.com/LarisaDinulescu/quadball-live/middleware"
	"github.com/LarisaDinulescu/quadball-live/services"
)

type MatchHandler struct {
	matchService services.MatchService
	today        func() civil.Date
}

// NewMatchHandler takes the clock used to decide which fixtures are today's.
func NewMatchHandler(ms services.MatchService, today func() civil.Date) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
		today:        today,
	}
}

// ListHandler serves GET /api/matches.
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())
	matches := h.matchService.ListVisible(viewer, h.today())

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler serves GET /api/matches/{matchID}.
func (h *MatchHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Get(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LogHandler serves GET /api/matches/{matchID}/log, newest entry first.
func (h *MatchHandler) LogHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.matchService.Log(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"log": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReloadHandler serves POST /api/matches/reload for managers.
func (h *MatchHandler) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	n, err := h.matchService.Reload(r.Context(), viewer)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
