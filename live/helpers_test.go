package live

import (
	"time"

	"github.com/LarisaDinulescu/quadball-live/models"
)

func ip(v int) *int { return &v }

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func event(t models.EventType, matchID, minute int) models.LiveEvent {
	return models.LiveEvent{
		Type:       t,
		MatchID:    matchID,
		GameMinute: ip(minute),
		Timestamp:  baseTime.Add(time.Duration(minute) * time.Minute),
	}
}

func match(id, home, away int) models.MatchRecord {
	return models.MatchRecord{ID: id, HomeTeamID: ip(home), AwayTeamID: ip(away)}
}

func testNames() NameMaps {
	return NewNameMaps(
		[]models.Team{{ID: 1, Name: "Holyhead Harpies"}, {ID: 2, Name: "Chudley Cannons"}},
		[]models.Player{{ID: 10, Name: "Gwenog Jones"}, {ID: 20, FirstName: "Joey", LastName: "Jenkins"}},
	)
}
