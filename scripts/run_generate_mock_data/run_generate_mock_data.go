package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	C "martech/config"
	U "martech/util"
)

// Writes a small self-consistent raw dataset for local pipeline runs. Raw
// column names intentionally differ per source the way the real exports do,
// so the generated files exercise the normalizer's mapping tables.
func main() {
	defaults := C.DefaultConfiguration()

	rawDataDir := flag.String("raw_data_dir", defaults.RawDataDir, "")
	days := flag.Int("days", 30, "Number of days of activity to generate.")
	numClients := flag.Int("num_clients", 8, "")
	seed := flag.Int64("seed", 42, "")
	flag.Parse()

	if err := os.MkdirAll(*rawDataDir, 0755); err != nil {
		log.WithError(err).Fatal("Failed to create raw data directory.")
	}

	rng := rand.New(rand.NewSource(*seed))
	start := U.BeginningOfDay(time.Now().UTC()).AddDate(0, 0, -*days)

	clientIDs := make([]string, 0, *numClients)
	for i := 0; i < *numClients; i++ {
		clientIDs = append(clientIDs, fmt.Sprintf("C%03d", 101+i))
	}
	campaignID := func() string { return uuid.New().String()[:8] }

	writeClients(*rawDataDir, clientIDs, start)
	writeGoogleAds(*rawDataDir, rng, clientIDs, start, *days, campaignID)
	writeFacebookAds(*rawDataDir, rng, clientIDs, start, *days, campaignID)
	writeEmailCampaigns(*rawDataDir, rng, clientIDs, start, *days, campaignID)
	writeWebTraffic(*rawDataDir, rng, clientIDs, start, *days)
	writeRevenue(*rawDataDir, rng, clientIDs, start, *days)

	log.WithField("raw_data_dir", *rawDataDir).Info("Successfully generated mock data.")
}

func writeCSVOrDie(filePath string, header []string, records [][]string) {
	file, err := os.Create(filePath)
	if err != nil {
		log.WithError(err).WithField("file", filePath).Fatal("Failed to create mock data file.")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write(header)
	writer.WriteAll(records)
	if err := writer.Error(); err != nil {
		log.WithError(err).WithField("file", filePath).Fatal("Failed to write mock data file.")
	}
	log.WithFields(log.Fields{"file": filePath, "rows": len(records)}).Info("Wrote mock data file.")
}

func writeClients(dir string, clientIDs []string, start time.Time) {
	industries := []string{"retail", "saas", "travel", "finance"}
	records := make([][]string, 0, len(clientIDs))
	for i, clientID := range clientIDs {
		records = append(records, []string{clientID,
			fmt.Sprintf("Client %s", clientID),
			industries[i%len(industries)],
			fmt.Sprintf("am-%d", i%3+1),
			U.DateOnly(start.AddDate(0, -i, 0))})
	}
	writeCSVOrDie(filepath.Join(dir, "clients.csv"),
		[]string{"client_id", "name", "industry", "account_manager", "signup_date"}, records)
}

func writeGoogleAds(dir string, rng *rand.Rand, clientIDs []string, start time.Time, days int, campaignID func() string) {
	devices := []string{"desktop", "mobile", "tablet"}
	geos := []string{"US", "DE", "GB", "FR"}
	var records [][]string
	for _, clientID := range clientIDs {
		campaign := campaignID()
		for day := 0; day < days; day++ {
			if rng.Float64() < 0.3 {
				continue
			}
			impressions := rng.Intn(5000)
			clicks := rng.Intn(impressions/10 + 1)
			records = append(records, []string{campaign, clientID,
				U.DateOnly(start.AddDate(0, 0, day)),
				fmt.Sprintf("%d", clicks), fmt.Sprintf("%d", impressions),
				fmt.Sprintf("%.2f", rng.Float64()*200),
				devices[rng.Intn(len(devices))], geos[rng.Intn(len(geos))]})
		}
	}
	writeCSVOrDie(filepath.Join(dir, "google_ads.csv"),
		[]string{"campaign_id", "client_id", "date", "clicks", "impressions", "cost_usd", "device_type", "geo"}, records)
}

func writeFacebookAds(dir string, rng *rand.Rand, clientIDs []string, start time.Time, days int, campaignID func() string) {
	type fbRecord struct {
		FBCampaignID string  `json:"fb_campaign_id"`
		Client       string  `json:"client"`
		Date         string  `json:"date"`
		Clicks       int     `json:"clicks"`
		Reach        int     `json:"reach"`
		Spend        float64 `json:"spend"`
		Platform     string  `json:"platform"`
		Geo          string  `json:"geo"`
	}
	platforms := []string{"feed", "stories", "reels"}
	geos := []string{"US", "DE", "GB"}

	var records []fbRecord
	for _, clientID := range clientIDs {
		campaign := campaignID()
		for day := 0; day < days; day++ {
			if rng.Float64() < 0.4 {
				continue
			}
			reach := rng.Intn(8000)
			records = append(records, fbRecord{
				FBCampaignID: campaign,
				Client:       clientID,
				Date:         U.DateOnly(start.AddDate(0, 0, day)),
				Clicks:       rng.Intn(reach/20 + 1),
				Reach:        reach,
				Spend:        float64(rng.Intn(15000)) / 100,
				Platform:     platforms[rng.Intn(len(platforms))],
				Geo:          geos[rng.Intn(len(geos))],
			})
		}
	}

	filePath := filepath.Join(dir, "facebook_ads.json")
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.WithError(err).Fatal("Failed to marshal facebook ads mock data.")
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).WithField("file", filePath).Fatal("Failed to write mock data file.")
	}
	log.WithFields(log.Fields{"file": filePath, "rows": len(records)}).Info("Wrote mock data file.")
}

func writeEmailCampaigns(dir string, rng *rand.Rand, clientIDs []string, start time.Time, days int, campaignID func() string) {
	var records [][]string
	for _, clientID := range clientIDs {
		campaign := campaignID()
		for day := 0; day < days; day += 7 {
			sent := 500 + rng.Intn(5000)
			opened := rng.Intn(sent / 2)
			records = append(records, []string{campaign, clientID,
				U.DateOnly(start.AddDate(0, 0, day)),
				fmt.Sprintf("%d", sent), fmt.Sprintf("%d", opened),
				fmt.Sprintf("%d", rng.Intn(opened+1))})
		}
	}
	writeCSVOrDie(filepath.Join(dir, "email_campaigns.csv"),
		[]string{"email_id", "client_id", "date", "emails_sent", "opens", "email_clicks"}, records)
}

func writeWebTraffic(dir string, rng *rand.Rand, clientIDs []string, start time.Time, days int) {
	referrers := []string{"organic", "direct", "newsletter", "partner_site", "organic"}
	var records [][]string
	for _, clientID := range clientIDs {
		for day := 0; day < days; day++ {
			records = append(records, []string{clientID,
				U.DateOnly(start.AddDate(0, 0, day)),
				fmt.Sprintf("%d", rng.Intn(900)+20),
				referrers[rng.Intn(len(referrers))]})
		}
	}
	writeCSVOrDie(filepath.Join(dir, "web_traffic.csv"),
		[]string{"client_id", "date", "sessions", "referrer_channel"}, records)
}

func writeRevenue(dir string, rng *rand.Rand, clientIDs []string, start time.Time, days int) {
	var records [][]string
	for _, clientID := range clientIDs {
		for day := 3; day < days; day += 2 + rng.Intn(5) {
			records = append(records, []string{clientID,
				U.DateOnly(start.AddDate(0, 0, day)),
				fmt.Sprintf("%.2f", 50+rng.Float64()*2000)})
		}
	}
	// One event for a client nobody knows, to exercise rejection accounting.
	records = append(records, []string{"C999",
		U.DateOnly(start.AddDate(0, 0, days-1)), "40.00"})

	writeCSVOrDie(filepath.Join(dir, "revenue.csv"),
		[]string{"client_id", "date", "amount"}, records)
}
