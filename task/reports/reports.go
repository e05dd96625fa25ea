package reports

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"martech/model"
	U "martech/util"
)

const (
	DailyClientSpendReport      = "daily_client_spend_report.csv"
	TotalClicksByChannelReport  = "total_clicks_by_channel_report.csv"
	CTRTrendsReport             = "ctr_trends_report.csv"
	CampaignSummaryReport       = "campaign_summary_report.csv"
	CampaignSummaryWorkbook     = "campaign_summary_report.xlsx"
	CrossChannelLiftReport      = "cross_channel_lift_report.csv"
	unattributedRevenueRowLabel = "(unattributed)"
)

// adChannels are the channels whose impressions make CTR meaningful.
var adChannels = []string{model.ChannelGoogleAds, model.ChannelFacebookAds}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(filePath string, header []string, records [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create report file %s", filePath)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write report header")
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "failed to write report record")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush report writer")
}

// GenerateAll writes every summary report for the unified table under
// outputDir. Each report is a pure aggregation over the table; group keys
// are emitted in sorted order so identical inputs produce identical files.
func GenerateAll(touchpoints []model.Touchpoint, summary *model.RunSummary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create reports directory %s", outputDir)
	}

	generators := []struct {
		name     string
		generate func([]model.Touchpoint, *model.RunSummary, string) error
	}{
		{DailyClientSpendReport, dailyClientSpend},
		{TotalClicksByChannelReport, totalClicksByChannel},
		{CTRTrendsReport, ctrTrends},
		{CampaignSummaryReport, campaignSummary},
		{CrossChannelLiftReport, crossChannelLift},
	}
	for _, generator := range generators {
		if err := generator.generate(touchpoints, summary, outputDir); err != nil {
			return err
		}
		log.WithField("report", generator.name).Info("Generated report.")
	}
	return nil
}

func dailyClientSpend(touchpoints []model.Touchpoint, _ *model.RunSummary, outputDir string) error {
	type key struct {
		date     string
		clientID string
	}
	spend := make(map[key]float64)
	for i := range touchpoints {
		k := key{date: U.DateOnly(touchpoints[i].Date), clientID: touchpoints[i].ClientID}
		spend[k] += touchpoints[i].Spend
	}

	keys := make([]key, 0, len(spend))
	for k := range spend {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].clientID < keys[j].clientID
	})

	records := make([][]string, 0, len(keys))
	for _, k := range keys {
		records = append(records, []string{k.date, k.clientID, formatFloat(spend[k])})
	}
	return writeCSV(filepath.Join(outputDir, DailyClientSpendReport),
		[]string{"date", "client_id", "total_spend"}, records)
}

func totalClicksByChannel(touchpoints []model.Touchpoint, _ *model.RunSummary, outputDir string) error {
	clicks := make(map[string]int64)
	for i := range touchpoints {
		clicks[touchpoints[i].Channel] += touchpoints[i].Clicks
	}

	channels := make([]string, 0, len(clicks))
	for channel := range clicks {
		channels = append(channels, channel)
	}
	sort.Strings(channels)

	records := make([][]string, 0, len(channels))
	for _, channel := range channels {
		records = append(records, []string{channel, strconv.FormatInt(clicks[channel], 10)})
	}
	return writeCSV(filepath.Join(outputDir, TotalClicksByChannelReport),
		[]string{"channel", "total_clicks"}, records)
}

// ctrTrends aggregates ad-channel clicks and impressions per day. Days with
// zero impressions keep an empty daily_ctr cell: the aggregate metric is as
// undefined as the per-row one.
func ctrTrends(touchpoints []model.Touchpoint, _ *model.RunSummary, outputDir string) error {
	type counters struct {
		clicks      int64
		impressions int64
	}
	daily := make(map[string]*counters)
	for i := range touchpoints {
		if !U.ContainsStringInArray(adChannels, touchpoints[i].Channel) {
			continue
		}
		date := U.DateOnly(touchpoints[i].Date)
		if daily[date] == nil {
			daily[date] = &counters{}
		}
		daily[date].clicks += touchpoints[i].Clicks
		daily[date].impressions += touchpoints[i].Impressions
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	records := make([][]string, 0, len(dates))
	for _, date := range dates {
		c := daily[date]
		dailyCTR := ""
		if c.impressions > 0 {
			dailyCTR = formatFloat(float64(c.clicks) / float64(c.impressions))
		}
		records = append(records, []string{date,
			strconv.FormatInt(c.clicks, 10), strconv.FormatInt(c.impressions, 10), dailyCTR})
	}
	return writeCSV(filepath.Join(outputDir, CTRTrendsReport),
		[]string{"date", "total_clicks", "total_impressions", "daily_ctr"}, records)
}

type campaignTotals struct {
	clientID          string
	campaignID        string
	spend             float64
	clicks            int64
	impressions       int64
	attributedRevenue float64
}

func aggregateCampaigns(touchpoints []model.Touchpoint) []campaignTotals {
	type key struct {
		clientID   string
		campaignID string
	}
	totals := make(map[key]*campaignTotals)
	for i := range touchpoints {
		tp := &touchpoints[i]
		k := key{clientID: tp.ClientID, campaignID: tp.CampaignID}
		if totals[k] == nil {
			totals[k] = &campaignTotals{clientID: tp.ClientID, campaignID: tp.CampaignID}
		}
		totals[k].spend += tp.Spend
		totals[k].clicks += tp.Clicks
		totals[k].impressions += tp.Impressions
		totals[k].attributedRevenue += tp.AttributedRevenue
	}

	rows := make([]campaignTotals, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, *t)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].clientID != rows[j].clientID {
			return rows[i].clientID < rows[j].clientID
		}
		return rows[i].campaignID < rows[j].campaignID
	})
	return rows
}

var campaignSummaryHeader = []string{"client_id", "campaign_id",
	"total_spend", "total_clicks", "total_impressions", "attributed_revenue"}

// campaignSummary emits both the CSV report and the xlsx workbook with the
// same rows.
func campaignSummary(touchpoints []model.Touchpoint, _ *model.RunSummary, outputDir string) error {
	rows := aggregateCampaigns(touchpoints)

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{row.clientID, row.campaignID,
			formatFloat(row.spend), strconv.FormatInt(row.clicks, 10),
			strconv.FormatInt(row.impressions, 10), formatFloat(row.attributedRevenue)})
	}
	if err := writeCSV(filepath.Join(outputDir, CampaignSummaryReport),
		campaignSummaryHeader, records); err != nil {
		return err
	}

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(workbook.GetActiveSheetIndex())

	header := make([]interface{}, len(campaignSummaryHeader))
	for i, name := range campaignSummaryHeader {
		header[i] = name
	}
	if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write workbook header")
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to compute workbook cell")
		}
		values := []interface{}{row.clientID, row.campaignID,
			row.spend, row.clicks, row.impressions, row.attributedRevenue}
		if err := workbook.SetSheetRow(sheet, axis, &values); err != nil {
			return errors.Wrapf(err, "failed to write workbook row %d", i)
		}
	}
	return errors.Wrap(workbook.SaveAs(filepath.Join(outputDir, CampaignSummaryWorkbook)),
		"failed to save campaign summary workbook")
}

// crossChannelLift compares channels by attributed revenue yield. The final
// row surfaces the run's unattributed revenue so channel totals reconcile
// against overall revenue.
func crossChannelLift(touchpoints []model.Touchpoint, summary *model.RunSummary, outputDir string) error {
	type channelTotals struct {
		channel           string
		attributedRevenue float64
		spend             float64
		clicks            int64
		impressions       int64
		touchpointCount   int64
	}
	totals := make(map[string]*channelTotals)
	for i := range touchpoints {
		tp := &touchpoints[i]
		if totals[tp.Channel] == nil {
			totals[tp.Channel] = &channelTotals{channel: tp.Channel}
		}
		totals[tp.Channel].attributedRevenue += tp.AttributedRevenue
		totals[tp.Channel].spend += tp.Spend
		totals[tp.Channel].clicks += tp.Clicks
		totals[tp.Channel].impressions += tp.Impressions
		totals[tp.Channel].touchpointCount++
	}

	rows := make([]*channelTotals, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, t)
	}
	sort.Slice(rows, func(i, j int) bool {
		perTouchpointI := rows[i].attributedRevenue / float64(rows[i].touchpointCount)
		perTouchpointJ := rows[j].attributedRevenue / float64(rows[j].touchpointCount)
		if perTouchpointI != perTouchpointJ {
			return perTouchpointI > perTouchpointJ
		}
		return rows[i].channel < rows[j].channel
	})

	records := make([][]string, 0, len(rows)+1)
	for _, row := range rows {
		revenuePerTouchpoint := row.attributedRevenue / float64(row.touchpointCount)
		roi := ""
		if row.spend > 0 {
			roi = formatFloat((row.attributedRevenue - row.spend) / row.spend * 100)
		}
		records = append(records, []string{row.channel,
			formatFloat(row.attributedRevenue), formatFloat(row.spend),
			strconv.FormatInt(row.clicks, 10), strconv.FormatInt(row.impressions, 10),
			strconv.FormatInt(row.touchpointCount, 10), formatFloat(revenuePerTouchpoint), roi})
	}
	if summary != nil && summary.UnattributedRevenue() > 0 {
		records = append(records, []string{unattributedRevenueRowLabel,
			formatFloat(summary.UnattributedRevenue()), "0", "0", "0", "0", "", ""})
	}

	return writeCSV(filepath.Join(outputDir, CrossChannelLiftReport),
		[]string{"channel", "total_attributed_revenue", "total_spend", "total_clicks",
			"total_impressions", "total_touchpoints", "revenue_per_touchpoint", "attributed_roi_pct"},
		records)
}
