package model

import (
	"math"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrDirtyTouchpoints is returned when the engine is handed touchpoints that
// already carry attributed revenue. Re-running on an unzeroed table would
// double count, so the precondition is enforced instead of documented away.
var ErrDirtyTouchpoints = errors.New("touchpoints must carry zero attributed revenue before attribution")

// AttributionStats is the engine's per-run accounting. Unattributed revenue
// is tracked, not dropped: UnattributedTotal plus AttributedTotal equals the
// sum over all structurally valid revenue amounts.
type AttributionStats struct {
	EventsProcessed    int     `json:"events_processed"`
	EventsAttributed   int     `json:"events_attributed"`
	EventsUnattributed int     `json:"events_unattributed"`
	EventsRejected     int     `json:"events_rejected"`
	AttributedTotal    float64 `json:"attributed_total"`
	UnattributedTotal  float64 `json:"unattributed_total"`
}

// touchpointWeight pairs an eligible touchpoint with its share of an event,
// so alternative weighting models stay expressible as "fill the weights
// differently".
type touchpointWeight struct {
	index  int
	weight float64
}

// linearWeights selects the eligible touchpoint set for one event — the
// client's touchpoints dated on or before the event, bounded by the optional
// lookback window — and assigns every member the equal 1/n weight.
func linearWeights(indices []int, touchpoints []Touchpoint, eventDate time.Time, lookbackDays int) []touchpointWeight {
	var windowStart time.Time
	if lookbackDays > 0 {
		windowStart = eventDate.AddDate(0, 0, -lookbackDays)
	}

	var weights []touchpointWeight
	for _, idx := range indices {
		date := touchpoints[idx].Date
		if date.After(eventDate) {
			continue
		}
		if lookbackDays > 0 && date.Before(windowStart) {
			continue
		}
		weights = append(weights, touchpointWeight{index: idx})
	}
	for i := range weights {
		weights[i].weight = 1 / float64(len(weights))
	}
	return weights
}

// ApplyLinearAttribution distributes every revenue event's amount equally
// across the client's eligible touchpoints, accumulating shares in
// attributed_revenue. A touchpoint eligible for several events receives a
// share from each. lookbackDays 0 leaves the full pre-conversion history
// eligible.
//
// Events for a client_id absent from the clients index, or with a
// non-positive or non-finite amount, are rejected and counted; events with
// no eligible touchpoints land in the unattributed bucket. Neither case
// aborts the remaining events.
func ApplyLinearAttribution(touchpoints []Touchpoint, events []RevenueEvent,
	clients map[string]Client, lookbackDays int) (*AttributionStats, error) {

	for i := range touchpoints {
		if touchpoints[i].AttributedRevenue != 0 {
			return nil, ErrDirtyTouchpoints
		}
	}

	byClient := make(map[string][]int)
	for i := range touchpoints {
		byClient[touchpoints[i].ClientID] = append(byClient[touchpoints[i].ClientID], i)
	}

	stats := &AttributionStats{}
	for _, event := range events {
		stats.EventsProcessed++

		if event.Amount <= 0 || math.IsNaN(event.Amount) || math.IsInf(event.Amount, 0) {
			stats.EventsRejected++
			log.WithFields(log.Fields{"client_id": event.ClientID, "date": event.Date,
				"amount": event.Amount}).Warn("Rejected revenue event with malformed amount.")
			continue
		}
		if _, known := clients[event.ClientID]; !known {
			// Attribution-ineligible, but the amount stays visible in the
			// unattributed bucket so aggregate totals still reconcile.
			stats.EventsRejected++
			stats.EventsUnattributed++
			stats.UnattributedTotal += event.Amount
			log.WithFields(log.Fields{"client_id": event.ClientID, "date": event.Date,
				"amount": event.Amount}).Warn("Rejected revenue event for unknown client.")
			continue
		}

		weights := linearWeights(byClient[event.ClientID], touchpoints, event.Date, lookbackDays)
		if len(weights) == 0 {
			stats.EventsUnattributed++
			stats.UnattributedTotal += event.Amount
			log.WithFields(log.Fields{"client_id": event.ClientID, "date": event.Date,
				"amount": event.Amount}).Info("Revenue event has no eligible touchpoints.")
			continue
		}

		for _, w := range weights {
			touchpoints[w.index].AttributedRevenue += event.Amount * w.weight
		}
		stats.EventsAttributed++
		stats.AttributedTotal += event.Amount
	}

	log.WithFields(log.Fields{"events": stats.EventsProcessed,
		"attributed": stats.EventsAttributed, "unattributed": stats.EventsUnattributed,
		"rejected": stats.EventsRejected, "attributed_total": stats.AttributedTotal,
		"unattributed_total": stats.UnattributedTotal}).Info("Attribution completed.")
	return stats, nil
}
