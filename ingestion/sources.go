package ingestion

import (
	"martech/model"
)

// RawBatch is one run's worth of ingested-but-unnormalized source tables.
// A nil table means the source failed to ingest; Errors records why, keyed
// by source name, so one broken source never takes down the run.
type RawBatch struct {
	Tables map[string]*model.RawTable
	Errors map[string]error
}

// SourcePaths names the raw file per source for one run.
type SourcePaths struct {
	GoogleAds      string
	FacebookAds    string
	EmailCampaigns string
	WebTraffic     string
	Clients        string
	Revenue        string
}

type sourceReader struct {
	source string
	path   string
	read   func(string) (*model.RawTable, error)
}

// ReadSources ingests every configured source file. Failures are recorded
// per source and ingestion continues with the rest.
func ReadSources(paths SourcePaths) *RawBatch {
	batch := &RawBatch{
		Tables: make(map[string]*model.RawTable),
		Errors: make(map[string]error),
	}

	readers := []sourceReader{
		{source: model.SourceGoogleAds, path: paths.GoogleAds, read: ReadCSVTable},
		{source: model.SourceFacebookAds, path: paths.FacebookAds, read: ReadJSONTable},
		{source: model.SourceEmailCampaigns, path: paths.EmailCampaigns, read: ReadCSVTable},
		{source: model.SourceWebTraffic, path: paths.WebTraffic, read: ReadCSVTable},
		{source: model.SourceClients, path: paths.Clients, read: ReadCSVTable},
		{source: model.SourceRevenue, path: paths.Revenue, read: ReadCSVTable},
	}

	for _, reader := range readers {
		table, err := reader.read(reader.path)
		if err != nil {
			batch.Errors[reader.source] = err
			continue
		}
		batch.Tables[reader.source] = table
	}
	return batch
}
