package model

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// RunSummary is the per-run account of what the pipeline kept, dropped and
// could not attribute. Every counter here is independently queryable by the
// caller; nothing is reported only through logs.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SourceStats []*NormalizeStats `json:"source_stats"`
	// FailedSources lists sources whose raw table was structurally broken
	// (entire key column set missing); their contribution was dropped while
	// the rest of the run proceeded.
	FailedSources []string `json:"failed_sources"`

	Join        *JoinStats        `json:"join"`
	Attribution *AttributionStats `json:"attribution"`

	TouchpointCount int `json:"touchpoint_count"`
}

func (s *RunSummary) TotalRejectedRows() int {
	total := 0
	for _, stats := range s.SourceStats {
		total += stats.RejectedRows
	}
	return total
}

// UnattributedRevenue exposes the revenue amount that found no eligible
// touchpoints so its size stays visible alongside attributed totals.
func (s *RunSummary) UnattributedRevenue() float64 {
	if s.Attribution == nil {
		return 0
	}
	return s.Attribution.UnattributedTotal
}

func (s *RunSummary) Log() {
	fields := log.Fields{
		"run_id":           s.RunID,
		"duration_seconds": s.FinishedAt.Sub(s.StartedAt).Seconds(),
		"touchpoints":      s.TouchpointCount,
		"rejected_rows":    s.TotalRejectedRows(),
		"failed_sources":   s.FailedSources,
	}
	if s.Join != nil {
		fields["join_gap_rows"] = s.Join.JoinGapRows
	}
	if s.Attribution != nil {
		fields["attributed_total"] = s.Attribution.AttributedTotal
		fields["unattributed_total"] = s.Attribution.UnattributedTotal
		fields["rejected_events"] = s.Attribution.EventsRejected
	}
	log.WithFields(fields).Info("Pipeline run summary.")
}
