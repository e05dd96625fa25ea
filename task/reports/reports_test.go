package reports

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martech/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func readReport(t *testing.T, filePath string) [][]string {
	file, err := os.Open(filePath)
	require.Nil(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.Nil(t, err)
	return records
}

func sampleTouchpoints() []model.Touchpoint {
	return []model.Touchpoint{
		{ClientID: "C1", Channel: model.ChannelGoogleAds, CampaignID: "g-1", Date: day(1),
			Impressions: 100, Clicks: 10, Spend: 5, AttributedRevenue: 60},
		{ClientID: "C1", Channel: model.ChannelGoogleAds, CampaignID: "g-1", Date: day(2),
			Impressions: 200, Clicks: 20, Spend: 10, AttributedRevenue: 40},
		{ClientID: "C2", Channel: model.ChannelFacebookAds, CampaignID: "fb-1", Date: day(1),
			Impressions: 50, Clicks: 5, Spend: 4, AttributedRevenue: 10},
		{ClientID: "C2", Channel: model.ChannelEmail, CampaignID: "e-1", Date: day(2),
			Impressions: 30, Clicks: 3},
	}
}

func TestDailyClientSpend(t *testing.T) {
	outputDir := t.TempDir()
	require.Nil(t, dailyClientSpend(sampleTouchpoints(), nil, outputDir))

	records := readReport(t, filepath.Join(outputDir, DailyClientSpendReport))
	require.Len(t, records, 5)
	assert.Equal(t, []string{"date", "client_id", "total_spend"}, records[0])
	assert.Equal(t, []string{"2024-01-01", "C1", "5"}, records[1])
	assert.Equal(t, []string{"2024-01-01", "C2", "4"}, records[2])
	assert.Equal(t, []string{"2024-01-02", "C1", "10"}, records[3])
	assert.Equal(t, []string{"2024-01-02", "C2", "0"}, records[4])
}

func TestTotalClicksByChannel(t *testing.T) {
	outputDir := t.TempDir()
	require.Nil(t, totalClicksByChannel(sampleTouchpoints(), nil, outputDir))

	records := readReport(t, filepath.Join(outputDir, TotalClicksByChannelReport))
	require.Len(t, records, 4)
	assert.Equal(t, []string{"email", "3"}, records[1])
	assert.Equal(t, []string{"facebook_ads", "5"}, records[2])
	assert.Equal(t, []string{"google_ads", "30"}, records[3])
}

func TestCTRTrendsSkipsNonAdChannels(t *testing.T) {
	outputDir := t.TempDir()
	require.Nil(t, ctrTrends(sampleTouchpoints(), nil, outputDir))

	records := readReport(t, filepath.Join(outputDir, CTRTrendsReport))
	require.Len(t, records, 3)
	// 2024-01-01 pools google and facebook; email rows never count.
	assert.Equal(t, []string{"2024-01-01", "15", "150", "0.1"}, records[1])
	assert.Equal(t, []string{"2024-01-02", "20", "200", "0.1"}, records[2])
}

func TestCTRTrendsUndefinedDay(t *testing.T) {
	outputDir := t.TempDir()
	touchpoints := []model.Touchpoint{
		{ClientID: "C1", Channel: model.ChannelGoogleAds, Date: day(1), Clicks: 3, Impressions: 0},
	}
	require.Nil(t, ctrTrends(touchpoints, nil, outputDir))

	records := readReport(t, filepath.Join(outputDir, CTRTrendsReport))
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2024-01-01", "3", "0", ""}, records[1])
}

func TestCampaignSummary(t *testing.T) {
	outputDir := t.TempDir()
	require.Nil(t, campaignSummary(sampleTouchpoints(), nil, outputDir))

	records := readReport(t, filepath.Join(outputDir, CampaignSummaryReport))
	require.Len(t, records, 4)
	assert.Equal(t, campaignSummaryHeader, records[0])
	// g-1 rows collapse to one campaign total.
	assert.Equal(t, []string{"C1", "g-1", "15", "30", "300", "100"}, records[1])
	assert.Equal(t, []string{"C2", "e-1", "0", "3", "30", "0"}, records[2])
	assert.Equal(t, []string{"C2", "fb-1", "4", "5", "50", "10"}, records[3])

	workbookPath := filepath.Join(outputDir, CampaignSummaryWorkbook)
	info, err := os.Stat(workbookPath)
	require.Nil(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestCrossChannelLift(t *testing.T) {
	outputDir := t.TempDir()
	summary := &model.RunSummary{Attribution: &model.AttributionStats{UnattributedTotal: 40}}
	require.Nil(t, crossChannelLift(sampleTouchpoints(), summary, outputDir))

	records := readReport(t, filepath.Join(outputDir, CrossChannelLiftReport))
	require.Len(t, records, 5)

	// Ordered by revenue per touchpoint: google 50, facebook 10, email 0.
	assert.Equal(t, "google_ads", records[1][0])
	assert.Equal(t, "50", records[1][6])
	assert.Equal(t, []string{"facebook_ads", "10", "4", "5", "50", "1", "10", "150"}, records[2])
	assert.Equal(t, "email", records[3][0])
	// Zero spend leaves ROI blank.
	assert.Equal(t, "", records[3][7])

	assert.Equal(t, "(unattributed)", records[4][0])
	assert.Equal(t, "40", records[4][1])
	assert.Equal(t, "", records[4][6])
}

func TestCrossChannelLiftWithoutUnattributed(t *testing.T) {
	outputDir := t.TempDir()
	summary := &model.RunSummary{Attribution: &model.AttributionStats{}}
	require.Nil(t, crossChannelLift(sampleTouchpoints(), summary, outputDir))

	records := readReport(t, filepath.Join(outputDir, CrossChannelLiftReport))
	require.Len(t, records, 4)
	for _, record := range records[1:] {
		assert.NotEqual(t, "(unattributed)", record[0])
	}
}

func TestGenerateAllWritesEveryReport(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "reports")
	summary := &model.RunSummary{Attribution: &model.AttributionStats{UnattributedTotal: 40}}
	require.Nil(t, GenerateAll(sampleTouchpoints(), summary, outputDir))

	for _, name := range []string{DailyClientSpendReport, TotalClicksByChannelReport,
		CTRTrendsReport, CampaignSummaryReport, CampaignSummaryWorkbook, CrossChannelLiftReport} {
		_, err := os.Stat(filepath.Join(outputDir, name))
		assert.Nil(t, err, name)
	}
}
