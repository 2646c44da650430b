package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/LarisaDinulescu/quadball-live/handlers"
	"github.com/LarisaDinulescu/quadball-live/middleware"
)

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	viewerAuth *middleware.ViewerAuth,
	matchHandler *handlers.MatchHandler,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(viewerAuth.Middleware)

	router.Get("/healthz", handlers.HealthHandler)

	router.Route("/api", func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListHandler)
			r.Post("/reload", matchHandler.ReloadHandler)
			r.Get("/{matchID}", matchHandler.GetHandler)
			r.Get("/{matchID}/log", matchHandler.LogHandler)
		})

		r.Get("/tournaments/{tournamentID}/bracket", bracketHandler.GetBracketHandler)
	})

	// Websocket routes stay outside the timeout middleware.
	router.Route("/ws", func(r chi.Router) {
		r.Get("/matches", webSocketHandler.ServeMatchesWs)
		r.Get("/matches/{matchID}", webSocketHandler.ServeMatchWs)
	})
}
