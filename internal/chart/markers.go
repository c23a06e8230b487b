package chart

import (
	"time"

	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

const (
	intradayToleranceDays = 2
	dailyToleranceDays    = 4
)

type Marker struct {
	Event earnings.Event `json:"event"`
	Time  time.Time      `json:"time"`
	Close float64        `json:"close"`
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// MatchMarkers pins each event to a series point. A point on the event's
// calendar day wins (the closest one if there are several); otherwise the
// nearest point within the tolerance band is used. Events with no candidate
// are dropped.
func MatchMarkers(points []alphavantage.Point, events []earnings.Event, intraday bool) []Marker {
	toleranceDays := dailyToleranceDays
	if intraday {
		toleranceDays = intradayToleranceDays
	}
	tolerance := time.Duration(toleranceDays) * 24 * time.Hour

	var markers []Marker
	for _, ev := range events {
		target, err := time.Parse("2006-01-02", ev.Date)
		if err != nil {
			continue
		}

		sameDay, nearest := -1, -1
		var sameDayDist, nearestDist time.Duration
		for i, p := range points {
			dist := absDuration(p.Time.Sub(target))
			if p.Time.Format("2006-01-02") == ev.Date {
				if sameDay < 0 || dist < sameDayDist {
					sameDay, sameDayDist = i, dist
				}
				continue
			}
			if dist > tolerance {
				continue
			}
			if nearest < 0 || dist < nearestDist {
				nearest, nearestDist = i, dist
			}
		}

		pick := sameDay
		if pick < 0 {
			pick = nearest
		}
		if pick < 0 {
			continue
		}
		markers = append(markers, Marker{Event: ev, Time: points[pick].Time, Close: points[pick].Close})
	}
	return markers
}
