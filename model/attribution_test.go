package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(yearDay int) time.Time {
	return time.Date(2024, 1, yearDay, 0, 0, 0, 0, time.UTC)
}

func testClients(ids ...string) map[string]Client {
	clients := make(map[string]Client, len(ids))
	for _, id := range ids {
		clients[id] = Client{ClientID: id, Name: "Client " + id}
	}
	return clients
}

func TestLinearAttributionEqualSplit(t *testing.T) {
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(1), Clicks: 10, Impressions: 100, Spend: 5.0},
		{ClientID: "C1", Channel: ChannelEmail, Date: day(3), Clicks: 2, Impressions: 20},
	}
	events := []RevenueEvent{{ClientID: "C1", Date: day(5), Amount: 100.0}}

	stats, err := ApplyLinearAttribution(touchpoints, events, testClients("C1"), 0)
	assert.Nil(t, err)
	assert.Equal(t, 1, stats.EventsAttributed)
	assert.Equal(t, 0, stats.EventsRejected)
	assert.InDelta(t, 50.0, touchpoints[0].AttributedRevenue, 1e-9)
	assert.InDelta(t, 50.0, touchpoints[1].AttributedRevenue, 1e-9)
	assert.InDelta(t, 100.0, stats.AttributedTotal, 1e-9)
	assert.Equal(t, 0.0, stats.UnattributedTotal)
}

func TestLinearAttributionConservation(t *testing.T) {
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(1)},
		{ClientID: "C1", Channel: ChannelFacebookAds, Date: day(2)},
		{ClientID: "C1", Channel: ChannelEmail, Date: day(4)},
		{ClientID: "C2", Channel: ChannelWebOrganic, Date: day(2)},
	}
	events := []RevenueEvent{
		{ClientID: "C1", Date: day(3), Amount: 99.99},
		{ClientID: "C1", Date: day(10), Amount: 10.0},
		{ClientID: "C2", Date: day(2), Amount: 7.77},
	}

	stats, err := ApplyLinearAttribution(touchpoints, events, testClients("C1", "C2"), 0)
	assert.Nil(t, err)

	var distributed float64
	for i := range touchpoints {
		distributed += touchpoints[i].AttributedRevenue
	}
	total := 99.99 + 10.0 + 7.77
	assert.InDelta(t, total, distributed, total*1e-9)
	assert.InDelta(t, total, stats.AttributedTotal, 1e-9)

	// First event splits over the two prior C1 touchpoints, the second over
	// all three; shares accumulate per touchpoint across events.
	assert.InDelta(t, 99.99/2+10.0/3, touchpoints[0].AttributedRevenue, 1e-9)
	assert.InDelta(t, 99.99/2+10.0/3, touchpoints[1].AttributedRevenue, 1e-9)
	assert.InDelta(t, 10.0/3, touchpoints[2].AttributedRevenue, 1e-9)
	assert.InDelta(t, 7.77, touchpoints[3].AttributedRevenue, 1e-9)
}

func TestLinearAttributionEligibilityByDate(t *testing.T) {
	// The touchpoint dated after the event gets nothing; same-day qualifies.
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(5)},
		{ClientID: "C1", Channel: ChannelEmail, Date: day(6)},
	}
	events := []RevenueEvent{{ClientID: "C1", Date: day(5), Amount: 30.0}}

	_, err := ApplyLinearAttribution(touchpoints, events, testClients("C1"), 0)
	assert.Nil(t, err)
	assert.InDelta(t, 30.0, touchpoints[0].AttributedRevenue, 1e-9)
	assert.Equal(t, 0.0, touchpoints[1].AttributedRevenue)
}

func TestLinearAttributionUnknownClient(t *testing.T) {
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(1)},
	}
	events := []RevenueEvent{{ClientID: "C99", Date: day(5), Amount: 40.0}}

	stats, err := ApplyLinearAttribution(touchpoints, events, testClients("C1"), 0)
	assert.Nil(t, err)
	assert.Equal(t, 1, stats.EventsRejected)
	assert.Equal(t, 1, stats.EventsUnattributed)
	assert.InDelta(t, 40.0, stats.UnattributedTotal, 1e-9)
	assert.Equal(t, 0.0, stats.AttributedTotal)
	assert.Equal(t, 0.0, touchpoints[0].AttributedRevenue)
}

func TestLinearAttributionNoEligibleTouchpoints(t *testing.T) {
	// Known client, but all marketing activity happened after the
	// conversion: the amount lands in the unattributed bucket, not nowhere.
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(10)},
	}
	events := []RevenueEvent{{ClientID: "C1", Date: day(5), Amount: 25.0}}

	stats, err := ApplyLinearAttribution(touchpoints, events, testClients("C1"), 0)
	assert.Nil(t, err)
	assert.Equal(t, 0, stats.EventsRejected)
	assert.Equal(t, 1, stats.EventsUnattributed)
	assert.InDelta(t, 25.0, stats.UnattributedTotal, 1e-9)
	assert.Equal(t, 0.0, touchpoints[0].AttributedRevenue)
}

func TestLinearAttributionMalformedAmount(t *testing.T) {
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(1)},
	}
	events := []RevenueEvent{
		{ClientID: "C1", Date: day(5), Amount: 0},
		{ClientID: "C1", Date: day(5), Amount: -10},
		{ClientID: "C1", Date: day(5), Amount: math.NaN()},
		{ClientID: "C1", Date: day(5), Amount: math.Inf(1)},
	}

	stats, err := ApplyLinearAttribution(touchpoints, events, testClients("C1"), 0)
	assert.Nil(t, err)
	assert.Equal(t, 4, stats.EventsRejected)
	assert.Equal(t, 0.0, touchpoints[0].AttributedRevenue)
	assert.Equal(t, 0.0, stats.AttributedTotal)
	assert.Equal(t, 0.0, stats.UnattributedTotal)
}

func TestLinearAttributionLookbackWindow(t *testing.T) {
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(1)},
		{ClientID: "C1", Channel: ChannelEmail, Date: day(8)},
		{ClientID: "C1", Channel: ChannelWebOrganic, Date: day(10)},
	}
	events := []RevenueEvent{{ClientID: "C1", Date: day(10), Amount: 60.0}}

	// Window boundary is inclusive: date >= event_date - lookback.
	stats, err := ApplyLinearAttribution(touchpoints, events, testClients("C1"), 2)
	assert.Nil(t, err)
	assert.Equal(t, 1, stats.EventsAttributed)
	assert.Equal(t, 0.0, touchpoints[0].AttributedRevenue)
	assert.InDelta(t, 30.0, touchpoints[1].AttributedRevenue, 1e-9)
	assert.InDelta(t, 30.0, touchpoints[2].AttributedRevenue, 1e-9)
}

func TestLinearAttributionRejectsDirtyTouchpoints(t *testing.T) {
	touchpoints := []Touchpoint{
		{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(1), AttributedRevenue: 12.5},
	}
	events := []RevenueEvent{{ClientID: "C1", Date: day(5), Amount: 10.0}}

	stats, err := ApplyLinearAttribution(touchpoints, events, testClients("C1"), 0)
	assert.Nil(t, stats)
	assert.Equal(t, ErrDirtyTouchpoints, err)
}

func TestLinearAttributionDeterministic(t *testing.T) {
	build := func() []Touchpoint {
		return []Touchpoint{
			{ClientID: "C1", Channel: ChannelGoogleAds, Date: day(1)},
			{ClientID: "C1", Channel: ChannelFacebookAds, Date: day(2)},
			{ClientID: "C2", Channel: ChannelEmail, Date: day(3)},
		}
	}
	events := []RevenueEvent{
		{ClientID: "C1", Date: day(4), Amount: 33.33},
		{ClientID: "C2", Date: day(4), Amount: 11.11},
	}
	clients := testClients("C1", "C2")

	first := build()
	second := build()
	_, err := ApplyLinearAttribution(first, events, clients, 0)
	assert.Nil(t, err)
	_, err = ApplyLinearAttribution(second, events, clients, 0)
	assert.Nil(t, err)
	assert.Equal(t, first, second)
}
