package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	U "martech/util"
)

// ErrMissingKeyColumns marks a raw table as structurally broken for its
// source: the header lacks a required column entirely. The source's
// contribution to the run is aborted; other sources proceed.
var ErrMissingKeyColumns = errors.New("raw table is missing required key columns")

// NormalizeStats records the per-source outcome of normalization. Failures
// are per-row: a rejected row increments RejectedRows and processing
// continues.
type NormalizeStats struct {
	Source       string `json:"source"`
	InputRows    int    `json:"input_rows"`
	OutputRows   int    `json:"output_rows"`
	RejectedRows int    `json:"rejected_rows"`
}

// rowReader coerces one raw row through the resolved column mapping.
// Identifier and date lookups report validity; counts and money coerce
// invalid or missing values to zero, labels to the empty-string sentinel.
type rowReader struct {
	source   string
	resolved map[string]string
	row      map[string]string
}

func (rr *rowReader) value(canonical string) (string, bool) {
	rawName, exists := rr.resolved[canonical]
	if !exists {
		return "", false
	}
	value, exists := rr.row[rawName]
	return strings.TrimSpace(value), exists
}

func (rr *rowReader) ident(canonical string) (string, bool) {
	value, _ := rr.value(canonical)
	return value, value != ""
}

func (rr *rowReader) date(canonical string) (time.Time, bool) {
	value, _ := rr.value(canonical)
	if value == "" {
		return time.Time{}, false
	}
	t, err := U.ParseDate(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (rr *rowReader) count(canonical string) int64 {
	value, _ := rr.value(canonical)
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Counters exported as decimals ("12.0") still count.
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || f != float64(int64(f)) || f < 0 {
			log.WithFields(log.Fields{"source": rr.source, "column": canonical,
				"value": value}).Debug("Coerced invalid counter value to zero.")
			return 0
		}
		return int64(f)
	}
	if n < 0 {
		return 0
	}
	return n
}

func (rr *rowReader) money(canonical string) (float64, bool) {
	value, _ := rr.value(canonical)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.WithFields(log.Fields{"source": rr.source, "column": canonical,
			"value": value}).Debug("Coerced invalid money value to zero.")
		return 0, false
	}
	return f, true
}

func (rr *rowReader) label(canonical string) string {
	value, _ := rr.value(canonical)
	return value
}

// requiredFields extracts the identifier and date every touchpoint and
// revenue row must carry. ok is false when the row has to be rejected.
func (rr *rowReader) requiredFields() (clientID string, date time.Time, ok bool) {
	clientID, ok = rr.ident("client_id")
	if !ok {
		return "", time.Time{}, false
	}
	date, ok = rr.date("date")
	if !ok {
		return "", time.Time{}, false
	}
	return clientID, date, true
}

func (r *SchemaRegistry) prepare(source string, raw *RawTable) (map[string]string, *NormalizeStats, error) {
	schema, err := r.Get(source)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := resolveColumns(schema, raw.Columns)
	if err != nil {
		return nil, nil, err
	}
	return resolved, &NormalizeStats{Source: source, InputRows: len(raw.Rows)}, nil
}

func logNormalized(stats *NormalizeStats) {
	entry := log.WithFields(log.Fields{"source": stats.Source, "input_rows": stats.InputRows,
		"output_rows": stats.OutputRows, "rejected_rows": stats.RejectedRows})
	if stats.RejectedRows > 0 {
		entry.Warn("Normalized source with row rejections.")
		return
	}
	entry.Info("Normalized source.")
}

// NormalizeAds normalizes an ad platform raw table (google_ads or
// facebook_ads) into canonical ads rows.
func (r *SchemaRegistry) NormalizeAds(source string, raw *RawTable) ([]AdsRow, *NormalizeStats, error) {
	resolved, stats, err := r.prepare(source, raw)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]AdsRow, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		rr := &rowReader{source: source, resolved: resolved, row: rawRow}
		clientID, date, ok := rr.requiredFields()
		if !ok {
			stats.RejectedRows++
			continue
		}
		spend, _ := rr.money("spend")
		if spend < 0 {
			spend = 0
		}
		rows = append(rows, AdsRow{
			ClientID:    clientID,
			CampaignID:  rr.label("campaign_id"),
			Date:        date,
			Impressions: rr.count("impressions"),
			Clicks:      rr.count("clicks"),
			Spend:       spend,
			DeviceType:  rr.label("device_type"),
			Geo:         rr.label("geo"),
		})
	}
	stats.OutputRows = len(rows)
	logNormalized(stats)
	return rows, stats, nil
}

func (r *SchemaRegistry) NormalizeEmail(raw *RawTable) ([]EmailRow, *NormalizeStats, error) {
	resolved, stats, err := r.prepare(SourceEmailCampaigns, raw)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]EmailRow, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		rr := &rowReader{source: SourceEmailCampaigns, resolved: resolved, row: rawRow}
		clientID, date, ok := rr.requiredFields()
		if !ok {
			stats.RejectedRows++
			continue
		}
		rows = append(rows, EmailRow{
			ClientID:   clientID,
			CampaignID: rr.label("campaign_id"),
			Date:       date,
			Sent:       rr.count("sent"),
			Opened:     rr.count("opened"),
			Clicked:    rr.count("clicked"),
		})
	}
	stats.OutputRows = len(rows)
	logNormalized(stats)
	return rows, stats, nil
}

func (r *SchemaRegistry) NormalizeWeb(raw *RawTable) ([]WebRow, *NormalizeStats, error) {
	resolved, stats, err := r.prepare(SourceWebTraffic, raw)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]WebRow, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		rr := &rowReader{source: SourceWebTraffic, resolved: resolved, row: rawRow}
		clientID, date, ok := rr.requiredFields()
		if !ok {
			stats.RejectedRows++
			continue
		}
		rows = append(rows, WebRow{
			ClientID:        clientID,
			Date:            date,
			Sessions:        rr.count("sessions"),
			ReferrerChannel: rr.label("referrer_channel"),
		})
	}
	stats.OutputRows = len(rows)
	logNormalized(stats)
	return rows, stats, nil
}

func (r *SchemaRegistry) NormalizeClients(raw *RawTable) ([]Client, *NormalizeStats, error) {
	resolved, stats, err := r.prepare(SourceClients, raw)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]Client, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		rr := &rowReader{source: SourceClients, resolved: resolved, row: rawRow}
		clientID, ok := rr.ident("client_id")
		if !ok {
			stats.RejectedRows++
			continue
		}
		signupDate, _ := rr.date("signup_date")
		rows = append(rows, Client{
			ClientID:       clientID,
			Name:           rr.label("name"),
			Industry:       rr.label("industry"),
			AccountManager: rr.label("account_manager"),
			SignupDate:     signupDate,
		})
	}
	stats.OutputRows = len(rows)
	logNormalized(stats)
	return rows, stats, nil
}

// NormalizeRevenue rejects rows whose amount is missing or unparseable:
// unlike counters, a revenue amount has no meaningful zero default.
func (r *SchemaRegistry) NormalizeRevenue(raw *RawTable) ([]RevenueEvent, *NormalizeStats, error) {
	resolved, stats, err := r.prepare(SourceRevenue, raw)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]RevenueEvent, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		rr := &rowReader{source: SourceRevenue, resolved: resolved, row: rawRow}
		clientID, date, ok := rr.requiredFields()
		if !ok {
			stats.RejectedRows++
			continue
		}
		amount, valid := rr.money("amount")
		if !valid {
			stats.RejectedRows++
			continue
		}
		rows = append(rows, RevenueEvent{ClientID: clientID, Date: date, Amount: amount})
	}
	stats.OutputRows = len(rows)
	logNormalized(stats)
	return rows, stats, nil
}
