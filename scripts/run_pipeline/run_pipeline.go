package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	C "martech/config"
	"martech/task"
)

func main() {
	defaults := C.DefaultConfiguration()

	env := flag.String("env", C.DEVELOPMENT, "")
	rawDataDir := flag.String("raw_data_dir", defaults.RawDataDir, "Directory holding the raw source files.")
	reportsDir := flag.String("reports_dir", defaults.ReportsDir, "Directory the summary reports are written to.")
	loadFormat := flag.String("load_format", defaults.LoadFormat, "Sink for the unified table: sqlite or csv.")
	dbPath := flag.String("db_path", defaults.DBPath, "SQLite database path for the sqlite sink.")
	tableName := flag.String("table_name", defaults.TableName, "Table name for the sqlite sink.")
	outputFile := flag.String("output_file", defaults.OutputFile, "Output path for the csv sink.")
	lookbackDays := flag.Int("lookback_days", defaults.LookbackDays,
		"Attribution lookback window in days. Zero keeps the full history eligible.")
	mappingOverrides := flag.String("mapping_overrides", "", "Optional YAML file with extra column aliases per source.")

	googleAdsFile := flag.String("google_ads_file", defaults.Sources.GoogleAds, "")
	facebookAdsFile := flag.String("facebook_ads_file", defaults.Sources.FacebookAds, "")
	emailCampaignsFile := flag.String("email_campaigns_file", defaults.Sources.EmailCampaigns, "")
	webTrafficFile := flag.String("web_traffic_file", defaults.Sources.WebTraffic, "")
	clientsFile := flag.String("clients_file", defaults.Sources.Clients, "")
	revenueFile := flag.String("revenue_file", defaults.Sources.Revenue, "")

	flag.Parse()

	config := &C.Configuration{
		AppName:              "run_pipeline",
		Env:                  *env,
		RawDataDir:           *rawDataDir,
		ReportsDir:           *reportsDir,
		LoadFormat:           *loadFormat,
		DBPath:               *dbPath,
		TableName:            *tableName,
		OutputFile:           *outputFile,
		LookbackDays:         *lookbackDays,
		MappingOverridesFile: *mappingOverrides,
		Sources: C.SourceFiles{
			GoogleAds:      *googleAdsFile,
			FacebookAds:    *facebookAdsFile,
			EmailCampaigns: *emailCampaignsFile,
			WebTraffic:     *webTrafficFile,
			Clients:        *clientsFile,
			Revenue:        *revenueFile,
		},
	}

	if err := C.InitConf(config); err != nil {
		log.WithError(err).Fatal("Failed to initialize config.")
	}

	_, summary, err := task.RunPipeline(config)
	if err != nil {
		log.WithError(err).Error("Pipeline run failed.")
		os.Exit(1)
	}

	log.WithFields(log.Fields{
		"run_id":             summary.RunID,
		"touchpoints":        summary.TouchpointCount,
		"rejected_rows":      summary.TotalRejectedRows(),
		"unattributed_total": summary.UnattributedRevenue(),
	}).Info("Successfully completed pipeline run.")
}
