package model

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// SourceTables holds the normalized per-source tables the joiner unifies.
// A nil slice simply contributes no rows.
type SourceTables struct {
	GoogleAds   []AdsRow
	FacebookAds []AdsRow
	Email       []EmailRow
	Web         []WebRow
}

type JoinStats struct {
	TotalRows       int `json:"total_rows"`
	JoinGapRows     int `json:"join_gap_rows"`
	MissingClients  int `json:"missing_clients"`
	ClientTableRows int `json:"client_table_rows"`
}

// ClientIndex builds the client_id lookup used by the joiner and the
// attribution engine. Later duplicates win, matching load order.
func ClientIndex(clients []Client) map[string]Client {
	index := make(map[string]Client, len(clients))
	for _, client := range clients {
		index[client.ClientID] = client
	}
	return index
}

// webChannel classifies a web session by its referrer. Organic-equivalent
// referrers map to web_organic, anything else to web_referral.
func webChannel(referrerChannel string) string {
	switch strings.ToLower(referrerChannel) {
	case "", "organic", "direct":
		return ChannelWebOrganic
	default:
		return ChannelWebReferral
	}
}

// JoinTouchpoints concatenates the touchpoint sources in fixed order
// (google_ads, facebook_ads, email, web) preserving within-source input
// order, and left-joins client attributes on client_id. Touchpoints without
// a matching client are retained with null attributes and counted as join
// gaps. The sentinel policy for columns a source does not produce is applied
// here and only here: numeric zero, categorical null (empty string).
func JoinTouchpoints(sources *SourceTables, clients []Client) ([]Touchpoint, *JoinStats) {
	index := ClientIndex(clients)
	stats := &JoinStats{ClientTableRows: len(index)}
	missing := make(map[string]bool)

	touchpoints := make([]Touchpoint, 0,
		len(sources.GoogleAds)+len(sources.FacebookAds)+len(sources.Email)+len(sources.Web))

	appendRow := func(tp Touchpoint) {
		if client, exists := index[tp.ClientID]; exists {
			tp.ClientKnown = true
			tp.ClientName = client.Name
			tp.Industry = client.Industry
			tp.AccountManager = client.AccountManager
		} else {
			stats.JoinGapRows++
			missing[tp.ClientID] = true
		}
		touchpoints = append(touchpoints, tp)
	}

	for _, row := range sources.GoogleAds {
		appendRow(Touchpoint{ClientID: row.ClientID, Channel: ChannelGoogleAds,
			CampaignID: row.CampaignID, Date: row.Date, Impressions: row.Impressions,
			Clicks: row.Clicks, Spend: row.Spend, DeviceType: row.DeviceType, Geo: row.Geo})
	}
	for _, row := range sources.FacebookAds {
		appendRow(Touchpoint{ClientID: row.ClientID, Channel: ChannelFacebookAds,
			CampaignID: row.CampaignID, Date: row.Date, Impressions: row.Impressions,
			Clicks: row.Clicks, Spend: row.Spend, DeviceType: row.DeviceType, Geo: row.Geo})
	}
	for _, row := range sources.Email {
		// Deliveries count as impressions and link clicks as clicks on the
		// unified counters; email carries no spend.
		appendRow(Touchpoint{ClientID: row.ClientID, Channel: ChannelEmail,
			CampaignID: row.CampaignID, Date: row.Date, Impressions: row.Sent,
			Clicks: row.Clicked})
	}
	for _, row := range sources.Web {
		// A session is the click-equivalent interaction for web traffic.
		appendRow(Touchpoint{ClientID: row.ClientID, Channel: webChannel(row.ReferrerChannel),
			Date: row.Date, Clicks: row.Sessions})
	}

	stats.TotalRows = len(touchpoints)
	stats.MissingClients = len(missing)
	if stats.JoinGapRows > 0 {
		// Data-quality signal, not an error: the rows stay in the table.
		log.WithFields(log.Fields{"join_gap_rows": stats.JoinGapRows,
			"missing_clients": stats.MissingClients}).Warn(
			"Touchpoints without a matching client retained with null attributes.")
	}
	log.WithFields(log.Fields{"total_rows": stats.TotalRows,
		"clients": stats.ClientTableRows}).Info("Joined touchpoint sources with clients.")
	return touchpoints, stats
}
