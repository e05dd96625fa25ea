package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"martech/model"
	U "martech/util"
)

// touchpointHeader is the stable column order of the flat-file sink. Reports
// and downstream consumers depend on this schema, so additions go at the end.
var touchpointHeader = []string{
	"client_id", "channel", "campaign_id", "date",
	"impressions", "clicks", "spend", "device_type", "geo",
	"client_name", "industry", "account_manager", "client_known",
	"interactions", "ctr", "cpc", "cpm", "attributed_revenue",
}

func formatMetric(value *float64) string {
	if value == nil {
		// Undefined metrics stay empty in the file; zero would be a lie.
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

// WriteTouchpointsCSV writes the unified table as the flat-file alternative
// to the sqlite sink, preserving insertion order.
func WriteTouchpointsCSV(filePath string, touchpoints []model.Touchpoint) error {
	dir := filepath.Dir(filePath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create output file %s", filePath)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(touchpointHeader); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for i := range touchpoints {
		tp := &touchpoints[i]
		record := []string{
			tp.ClientID,
			tp.Channel,
			tp.CampaignID,
			U.DateOnly(tp.Date),
			strconv.FormatInt(tp.Impressions, 10),
			strconv.FormatInt(tp.Clicks, 10),
			strconv.FormatFloat(tp.Spend, 'f', -1, 64),
			tp.DeviceType,
			tp.Geo,
			tp.ClientName,
			tp.Industry,
			tp.AccountManager,
			strconv.FormatBool(tp.ClientKnown),
			strconv.FormatInt(tp.Interactions, 10),
			formatMetric(tp.CTR),
			formatMetric(tp.CPC),
			formatMetric(tp.CPM),
			strconv.FormatFloat(tp.AttributedRevenue, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "failed to flush csv writer")
	}

	log.WithFields(log.Fields{"file": filePath,
		"rows": len(touchpoints)}).Info("Wrote touchpoints to csv file.")
	return nil
}
