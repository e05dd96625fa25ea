package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martech/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analytics.db")
	sqlStore, err := NewSQLiteStore(dbPath, "marketing_analytics")
	require.Nil(t, err)
	defer sqlStore.Close()

	cpc := 0.5
	touchpoints := []model.Touchpoint{
		{ClientID: "C1", Channel: model.ChannelGoogleAds, CampaignID: "g-1",
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Impressions: 100, Clicks: 10, Spend: 5, CPC: &cpc,
			ClientKnown: true, AttributedRevenue: 50},
		{ClientID: "C2", Channel: model.ChannelEmail,
			Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Clicks: 2, Impressions: 20},
	}

	require.Nil(t, sqlStore.ReplaceTouchpoints(touchpoints))

	stored, err := sqlStore.ReadTouchpoints()
	require.Nil(t, err)
	require.Len(t, stored, 2)

	assert.Equal(t, "C1", stored[0].ClientID)
	assert.Equal(t, int64(10), stored[0].Clicks)
	require.NotNil(t, stored[0].CPC)
	assert.InDelta(t, 0.5, *stored[0].CPC, 1e-12)
	assert.InDelta(t, 50.0, stored[0].AttributedRevenue, 1e-9)

	assert.Equal(t, "C2", stored[1].ClientID)
	assert.Nil(t, stored[1].CPC)
	assert.False(t, stored[1].ClientKnown)
}

func TestSQLiteStoreReplaceIsWholesale(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analytics.db")
	sqlStore, err := NewSQLiteStore(dbPath, "marketing_analytics")
	require.Nil(t, err)
	defer sqlStore.Close()

	first := []model.Touchpoint{
		{ClientID: "C1", Channel: model.ChannelGoogleAds, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ClientID: "C2", Channel: model.ChannelEmail, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	require.Nil(t, sqlStore.ReplaceTouchpoints(first))

	second := []model.Touchpoint{
		{ClientID: "C3", Channel: model.ChannelWebOrganic, Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	require.Nil(t, sqlStore.ReplaceTouchpoints(second))

	stored, err := sqlStore.ReadTouchpoints()
	require.Nil(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "C3", stored[0].ClientID)
}
