package model

import (
	"time"
)

const (
	SourceGoogleAds      = "google_ads"
	SourceFacebookAds    = "facebook_ads"
	SourceEmailCampaigns = "email_campaigns"
	SourceWebTraffic     = "web_traffic"
	SourceClients        = "clients"
	SourceRevenue        = "revenue"

	ChannelGoogleAds   = "google_ads"
	ChannelFacebookAds = "facebook_ads"
	ChannelEmail       = "email"
	ChannelWebOrganic  = "web_organic"
	ChannelWebReferral = "web_referral"
)

// TouchpointSources is the fixed concatenation order of touchpoint-producing
// sources in the unified table. Output row order is this order, then the
// within-source input order.
var TouchpointSources = []string{SourceGoogleAds, SourceFacebookAds, SourceEmailCampaigns, SourceWebTraffic}

// Touchpoint is one client/channel/day interaction in the unified table.
// Empty string on categorical columns means null. Derived metric pointers are
// nil when the metric is undefined for the row's counters; nil is not zero.
type Touchpoint struct {
	ClientID    string    `gorm:"column:client_id" json:"client_id"`
	Channel     string    `gorm:"column:channel" json:"channel"`
	CampaignID  string    `gorm:"column:campaign_id" json:"campaign_id"`
	Date        time.Time `gorm:"column:date" json:"date"`
	Impressions int64     `gorm:"column:impressions" json:"impressions"`
	Clicks      int64     `gorm:"column:clicks" json:"clicks"`
	Spend       float64   `gorm:"column:spend" json:"spend"`
	DeviceType  string    `gorm:"column:device_type" json:"device_type"`
	Geo         string    `gorm:"column:geo" json:"geo"`

	// Client attributes added by the joiner. ClientKnown is false for rows
	// whose client_id had no match in the clients table; such rows are
	// retained with null attributes.
	ClientName     string `gorm:"column:client_name" json:"client_name"`
	Industry       string `gorm:"column:industry" json:"industry"`
	AccountManager string `gorm:"column:account_manager" json:"account_manager"`
	ClientKnown    bool   `gorm:"column:client_known" json:"client_known"`

	Interactions      int64    `gorm:"column:interactions" json:"interactions"`
	CTR               *float64 `gorm:"column:ctr" json:"ctr"`
	CPC               *float64 `gorm:"column:cpc" json:"cpc"`
	CPM               *float64 `gorm:"column:cpm" json:"cpm"`
	AttributedRevenue float64  `gorm:"column:attributed_revenue" json:"attributed_revenue"`
}

// Client carries enrichment attributes only, no behaviour.
type Client struct {
	ClientID       string    `json:"client_id"`
	Name           string    `json:"name"`
	Industry       string    `json:"industry"`
	AccountManager string    `json:"account_manager"`
	SignupDate     time.Time `json:"signup_date"`
}

// RevenueEvent is a revenue-producing conversion to be distributed across the
// client's preceding touchpoints.
type RevenueEvent struct {
	ClientID string    `json:"client_id"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
}

// AdsRow is the canonical per-row form of the ad platform sources.
type AdsRow struct {
	ClientID    string
	CampaignID  string
	Date        time.Time
	Impressions int64
	Clicks      int64
	Spend       float64
	DeviceType  string
	Geo         string
}

// EmailRow is the canonical per-row form of the email campaign source.
type EmailRow struct {
	ClientID   string
	CampaignID string
	Date       time.Time
	Sent       int64
	Opened     int64
	Clicked    int64
}

// WebRow is the canonical per-row form of the web traffic source.
type WebRow struct {
	ClientID        string
	Date            time.Time
	Sessions        int64
	ReferrerChannel string
}
