package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"martech/model"
)

// ReadCSVTable reads a headered CSV file into a raw table. Rows shorter than
// the header are padded with empty values; an empty file yields an empty
// table, not an error. No semantic validation happens here — the normalizer
// owns column meaning.
func ReadCSVTable(filePath string) (*model.RawTable, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open csv file %s", filePath)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		log.WithField("file", filePath).Warn("CSV file is empty.")
		return &model.RawTable{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read csv header from %s", filePath)
	}

	table := &model.RawTable{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read csv record from %s", filePath)
		}

		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	log.WithFields(log.Fields{"file": filePath, "rows": len(table.Rows)}).Info("Ingested CSV file.")
	return table, nil
}

// ReadJSONTable reads a JSON array of flat objects into a raw table. Numbers
// are kept in their literal form so the normalizer sees exactly what the
// export contained. The column set is the sorted union of keys across
// objects.
func ReadJSONTable(filePath string) (*model.RawTable, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open json file %s", filePath)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber()

	var records []map[string]interface{}
	if err := decoder.Decode(&records); err != nil {
		if err == io.EOF {
			log.WithField("file", filePath).Warn("JSON file is empty.")
			return &model.RawTable{}, nil
		}
		return nil, errors.Wrapf(err, "failed to decode json file %s", filePath)
	}

	columnSet := make(map[string]bool)
	table := &model.RawTable{}
	for _, record := range records {
		row := make(map[string]string, len(record))
		for key, value := range record {
			columnSet[key] = true
			row[key] = stringifyJSONValue(value)
		}
		table.Rows = append(table.Rows, row)
	}

	for column := range columnSet {
		table.Columns = append(table.Columns, column)
	}
	sort.Strings(table.Columns)

	log.WithFields(log.Fields{"file": filePath, "rows": len(table.Rows)}).Info("Ingested JSON file.")
	return table, nil
}

func stringifyJSONValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
