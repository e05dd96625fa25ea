package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	C "martech/config"
	"martech/store"
	"martech/task/reports"
)

// Regenerates the summary reports from an already-loaded analytics database
// without re-running the pipeline.
func main() {
	defaults := C.DefaultConfiguration()

	env := flag.String("env", C.DEVELOPMENT, "")
	dbPath := flag.String("db_path", defaults.DBPath, "SQLite database holding the unified table.")
	tableName := flag.String("table_name", defaults.TableName, "")
	reportsDir := flag.String("reports_dir", defaults.ReportsDir, "")
	flag.Parse()

	config := *defaults
	config.AppName = "run_create_reports"
	config.Env = *env
	config.DBPath = *dbPath
	config.TableName = *tableName
	config.ReportsDir = *reportsDir

	if err := C.InitConf(&config); err != nil {
		log.WithError(err).Fatal("Failed to initialize config.")
	}

	sqlStore, err := store.NewSQLiteStore(config.DBPath, config.TableName)
	if err != nil {
		log.WithError(err).Fatal("Failed to open analytics database.")
	}
	defer sqlStore.Close()

	touchpoints, err := sqlStore.ReadTouchpoints()
	if err != nil {
		log.WithError(err).Fatal("Failed to read touchpoints.")
	}

	if err := reports.GenerateAll(touchpoints, nil, config.ReportsDir); err != nil {
		log.WithError(err).Error("Report generation failed.")
		os.Exit(1)
	}

	log.WithFields(log.Fields{"rows": len(touchpoints),
		"reports_dir": config.ReportsDir}).Info("Successfully generated reports.")
}
