package live

import (
	"cloud.google.com/go/civil"

	"github.com/LarisaDinulescu/quadball-live/models"
)

// IsVisible decides whether a match is listed for the viewer.
// Started and finished matches are always listed. Of the unstarted ones, managers see the
// fully seeded fixtures whatever their date and spectators see those scheduled for today.
func IsVisible(m models.MatchView, viewerIsManager bool, today civil.Date) bool {
	switch m.Status {
	case models.StatusLive, models.StatusFinished:
		return true
	}
	if viewerIsManager {
		return m.HasBothTeams()
	}
	return m.Date != nil && *m.Date == today
}

// FilterVisible keeps the order of views.
func FilterVisible(views []models.MatchView, viewerIsManager bool, today civil.Date) []models.MatchView {
	visible := make([]models.MatchView, 0, len(views))
	for _, v := range views {
		if IsVisible(v, viewerIsManager, today) {
			visible = append(visible, v)
		}
	}
	return visible
}
