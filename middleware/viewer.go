package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/LarisaDinulescu/quadball-live/models"
)

type contextKey string

const viewerContextKey contextKey = "viewer"

// ViewerAuth resolves the viewer of every request from an optional bearer token.
// Requests without a valid token continue as spectators; nothing is rejected here.
type ViewerAuth struct {
	secret       []byte
	managerRoles map[string]bool
	log          *slog.Logger
}

func NewViewerAuth(secret string, managerRoles []string, log *slog.Logger) *ViewerAuth {
	roles := make(map[string]bool, len(managerRoles))
	for _, r := range managerRoles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			roles[r] = true
		}
	}
	return &ViewerAuth{secret: []byte(secret), managerRoles: roles, log: log}
}

func (a *ViewerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := models.Spectator
		if token := tokenFromRequest(r); token != "" && len(a.secret) > 0 {
			v, err := a.viewerFromToken(token)
			if err != nil {
				a.log.Debug("ignoring invalid token", slog.String("path", r.URL.Path), slog.Any("error", err))
			} else {
				viewer = v
			}
		}
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
	})
}

func (a *ViewerAuth) viewerFromToken(tokenString string) (models.Viewer, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return models.Spectator, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Spectator, fmt.Errorf("invalid token claims")
	}

	role := claimRole(claims)
	return models.Viewer{
		UserID:    claimUserID(claims),
		Role:      role,
		IsManager: a.managerRoles[strings.ToLower(role)],
	}, nil
}

// tokenFromRequest reads the Authorization header, then the token query parameter
// that browser websocket clients use.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func WithViewer(ctx context.Context, viewer models.Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey, viewer)
}

// GetViewerFromContext returns the request viewer, a spectator when none was set.
func GetViewerFromContext(ctx context.Context) models.Viewer {
	if v, ok := ctx.Value(viewerContextKey).(models.Viewer); ok {
		return v
	}
	return models.Spectator
}
