package model

// Derived metrics are a pure function of a single row's raw counters; no
// cross-row state is consulted, so any row's metrics can be re-derived and
// verified independently of the rest of the table.
//
// interactions is defined in this repository as clicks + impressions. A
// divide-by-zero denominator makes the metric undefined (nil), never zero:
// ctr 0 means zero clicks against real impressions, which is a different
// fact than "no impressions to measure against".

func float64Ptr(v float64) *float64 { return &v }

// RowMetrics computes the derived metric set for one set of raw counters.
func RowMetrics(clicks, impressions int64, spend float64) (interactions int64, ctr, cpc, cpm *float64) {
	interactions = clicks + impressions

	if impressions > 0 {
		ctr = float64Ptr(float64(clicks) / float64(impressions))
		cpm = float64Ptr(spend / float64(impressions) * 1000)
	}
	if clicks > 0 {
		cpc = float64Ptr(spend / float64(clicks))
	}
	return interactions, ctr, cpc, cpm
}

// ComputeMetrics fills the derived metric columns for every touchpoint in
// place. Row order does not affect any row's result.
func ComputeMetrics(touchpoints []Touchpoint) {
	for i := range touchpoints {
		tp := &touchpoints[i]
		tp.Interactions, tp.CTR, tp.CPC, tp.CPM = RowMetrics(tp.Clicks, tp.Impressions, tp.Spend)
	}
}
