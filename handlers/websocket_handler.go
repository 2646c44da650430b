package handlers

import (
	"log/slog"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/gorilla/websocket"

	"github.com/LarisaDinulescu/quadball-live/middleware"
	"github.com/LarisaDinulescu/quadball-live/models"
	"github.com/LarisaDinulescu/quadball-live/realtime"
	"github.com/LarisaDinulescu/quadball-live/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS configuration of the API, not here.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub          *realtime.Hub
	liveService  services.LiveService
	matchService services.MatchService
	today        func() civil.Date
	log          *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, ls services.LiveService, ms services.MatchService, today func() civil.Date, log *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		liveService:  ls,
		matchService: ms,
		today:        today,
		log:          log,
	}
}

// ServeMatchesWs joins the list room. The client first receives the visible list,
// then a MATCH_UPDATED message per event applied after that list was taken.
func (h *WebSocketHandler) ServeMatchesWs(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn("websocket upgrade failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.MatchesRoom)
	var joinErr error
	h.liveService.SyncList(func() {
		matches := h.matchService.ListVisible(viewer, h.today())
		joinErr = h.join(client, jsonResponse{"matches": matches})
	})
	h.start(client, joinErr)
}

// ServeMatchWs joins the room of one match. Connecting acquires the match session and
// disconnecting releases it.
func (h *WebSocketHandler) ServeMatchWs(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, release, err := h.liveService.AcquireMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.Int("match_id", matchID), slog.Any("error", err))
		release()
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.MatchRoom(matchID))
	client.OnClose = release
	var joinErr error
	session.Snapshot(func(view models.MatchView, log []models.LogEntry) {
		joinErr = h.join(client, jsonResponse{"match": view, "log": log})
	})
	h.start(client, joinErr)
}

// join must run under the lock that orders the room's broadcasts.
func (h *WebSocketHandler) join(client *realtime.Client, payload interface{}) error {
	return h.hub.Join(client, realtime.WebSocketMessage{Type: realtime.TypeMatchState, Payload: payload, RoomID: client.Room})
}

func (h *WebSocketHandler) start(client *realtime.Client, joinErr error) {
	if joinErr != nil {
		h.log.Warn("websocket join failed", slog.String("room", client.Room), slog.Any("error", joinErr))
		client.Conn.Close()
		if client.OnClose != nil {
			client.OnClose()
		}
		return
	}

	go client.WritePump()
	go client.ReadPump()
	h.log.Debug("websocket client joined", slog.String("room", client.Room), slog.String("client", client.ID))
}
