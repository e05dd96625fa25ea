package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	C "martech/config"
	"martech/ingestion"
	"martech/model"
	"martech/store"
	"martech/task/reports"
)

// RunPipeline executes one complete batch run: ingest raw sources, normalize
// each into its canonical schema, join into the unified touchpoint table,
// derive metrics, attribute revenue, load the result into the configured
// sink and emit the summary reports.
//
// Each stage fully consumes its input before the next begins. Only this
// orchestration layer touches files and databases; the model stages stay
// pure so a run is restartable from its inputs at any stage boundary.
func RunPipeline(cfg *C.Configuration) ([]model.Touchpoint, *model.RunSummary, error) {
	summary := &model.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	logCtx := log.WithField("run_id", summary.RunID)
	logCtx.WithField("app", cfg.AppName).Info("Starting pipeline run.")

	registry, err := model.NewSchemaRegistry()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build schema registry")
	}
	if cfg.MappingOverridesFile != "" {
		overrides, err := C.LoadMappingOverrides(cfg.MappingOverridesFile)
		if err != nil {
			return nil, nil, err
		}
		if err := registry.AddAliases(overrides); err != nil {
			return nil, nil, errors.Wrap(err, "failed to apply mapping overrides")
		}
	}

	batch := ingestion.ReadSources(ingestion.SourcePaths{
		GoogleAds:      cfg.Sources.GoogleAds,
		FacebookAds:    cfg.Sources.FacebookAds,
		EmailCampaigns: cfg.Sources.EmailCampaigns,
		WebTraffic:     cfg.Sources.WebTraffic,
		Clients:        cfg.Sources.Clients,
		Revenue:        cfg.Sources.Revenue,
	})
	for source, err := range batch.Errors {
		logCtx.WithError(err).WithField("source", source).Error(
			"Source failed to ingest, dropping its contribution from this run.")
		summary.FailedSources = append(summary.FailedSources, source)
	}

	sources, clients, events := normalizeBatch(registry, batch, summary, logCtx)

	touchpoints, joinStats := model.JoinTouchpoints(sources, clients)
	summary.Join = joinStats
	summary.TouchpointCount = len(touchpoints)

	model.ComputeMetrics(touchpoints)

	attributionStats, err := model.ApplyLinearAttribution(touchpoints, events,
		model.ClientIndex(clients), cfg.LookbackDays)
	if err != nil {
		return nil, nil, errors.Wrap(err, "attribution failed")
	}
	summary.Attribution = attributionStats

	if err := loadTouchpoints(cfg, touchpoints); err != nil {
		return nil, nil, err
	}

	if err := reports.GenerateAll(touchpoints, summary, cfg.ReportsDir); err != nil {
		return nil, nil, errors.Wrap(err, "report generation failed")
	}

	summary.FinishedAt = time.Now().UTC()
	summary.Log()
	return touchpoints, summary, nil
}

// normalizeBatch runs the normalizer over every ingested table. A
// structurally broken source (missing key columns) is dropped from the run
// with an error log; the remaining sources proceed.
func normalizeBatch(registry *model.SchemaRegistry, batch *ingestion.RawBatch,
	summary *model.RunSummary, logCtx *log.Entry) (*model.SourceTables, []model.Client, []model.RevenueEvent) {

	sources := &model.SourceTables{}
	var clients []model.Client
	var events []model.RevenueEvent

	fail := func(source string, err error) {
		logCtx.WithError(err).WithField("source", source).Error(
			"Source failed to normalize, dropping its contribution from this run.")
		summary.FailedSources = append(summary.FailedSources, source)
	}
	record := func(stats *model.NormalizeStats) {
		if stats != nil {
			summary.SourceStats = append(summary.SourceStats, stats)
		}
	}

	if raw := batch.Tables[model.SourceGoogleAds]; raw != nil {
		rows, stats, err := registry.NormalizeAds(model.SourceGoogleAds, raw)
		if err != nil {
			fail(model.SourceGoogleAds, err)
		} else {
			sources.GoogleAds = rows
			record(stats)
		}
	}
	if raw := batch.Tables[model.SourceFacebookAds]; raw != nil {
		rows, stats, err := registry.NormalizeAds(model.SourceFacebookAds, raw)
		if err != nil {
			fail(model.SourceFacebookAds, err)
		} else {
			sources.FacebookAds = rows
			record(stats)
		}
	}
	if raw := batch.Tables[model.SourceEmailCampaigns]; raw != nil {
		rows, stats, err := registry.NormalizeEmail(raw)
		if err != nil {
			fail(model.SourceEmailCampaigns, err)
		} else {
			sources.Email = rows
			record(stats)
		}
	}
	if raw := batch.Tables[model.SourceWebTraffic]; raw != nil {
		rows, stats, err := registry.NormalizeWeb(raw)
		if err != nil {
			fail(model.SourceWebTraffic, err)
		} else {
			sources.Web = rows
			record(stats)
		}
	}
	if raw := batch.Tables[model.SourceClients]; raw != nil {
		rows, stats, err := registry.NormalizeClients(raw)
		if err != nil {
			fail(model.SourceClients, err)
		} else {
			clients = rows
			record(stats)
		}
	}
	if raw := batch.Tables[model.SourceRevenue]; raw != nil {
		rows, stats, err := registry.NormalizeRevenue(raw)
		if err != nil {
			fail(model.SourceRevenue, err)
		} else {
			events = rows
			record(stats)
		}
	}

	return sources, clients, events
}

func loadTouchpoints(cfg *C.Configuration, touchpoints []model.Touchpoint) error {
	switch cfg.LoadFormat {
	case C.LoadFormatSQLite:
		sqlStore, err := store.NewSQLiteStore(cfg.DBPath, cfg.TableName)
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		return sqlStore.ReplaceTouchpoints(touchpoints)
	case C.LoadFormatCSV:
		return store.WriteTouchpointsCSV(cfg.OutputFile, touchpoints)
	default:
		return errors.Errorf("load format [ %s ] not recognised", cfg.LoadFormat)
	}
}
