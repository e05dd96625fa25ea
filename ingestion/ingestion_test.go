package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martech/model"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSVTable(t *testing.T) {
	path := writeTempFile(t, "ads.csv",
		"client_id,date,clicks\nC1,2024-01-01,10\nC2,2024-01-02,\n")

	table, err := ReadCSVTable(path)
	require.Nil(t, err)
	assert.Equal(t, []string{"client_id", "date", "clicks"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "10", table.Rows[0]["clicks"])
	assert.Equal(t, "", table.Rows[1]["clicks"])
}

func TestReadCSVTableShortRecordPadded(t *testing.T) {
	path := writeTempFile(t, "ads.csv",
		"client_id,date,clicks\nC1,2024-01-01\n")

	table, err := ReadCSVTable(path)
	require.Nil(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0]["clicks"])
}

func TestReadCSVTableEmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "")

	table, err := ReadCSVTable(path)
	require.Nil(t, err)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestReadCSVTableMissingFile(t *testing.T) {
	_, err := ReadCSVTable(filepath.Join(t.TempDir(), "nope.csv"))
	assert.NotNil(t, err)
}

func TestReadJSONTable(t *testing.T) {
	path := writeTempFile(t, "fb.json", `[
		{"client": "C1", "date": "2024-01-01", "reach": 350, "spend": 12.5},
		{"client": "C2", "date": "2024-01-02", "reach": 10, "geo": "DE"}
	]`)

	table, err := ReadJSONTable(path)
	require.Nil(t, err)
	// Columns are the sorted union of keys across objects.
	assert.Equal(t, []string{"client", "date", "geo", "reach", "spend"}, table.Columns)
	require.Len(t, table.Rows, 2)

	// Numbers keep their literal form for the normalizer to coerce.
	assert.Equal(t, "350", table.Rows[0]["reach"])
	assert.Equal(t, "12.5", table.Rows[0]["spend"])
	assert.Equal(t, "DE", table.Rows[1]["geo"])
}

func TestReadSourcesIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	clientsPath := filepath.Join(dir, "clients.csv")
	require.Nil(t, os.WriteFile(clientsPath,
		[]byte("client_id,name\nC1,Acme\n"), 0644))

	batch := ReadSources(SourcePaths{
		GoogleAds:      filepath.Join(dir, "missing_google.csv"),
		FacebookAds:    filepath.Join(dir, "missing_fb.json"),
		EmailCampaigns: filepath.Join(dir, "missing_email.csv"),
		WebTraffic:     filepath.Join(dir, "missing_web.csv"),
		Clients:        clientsPath,
		Revenue:        filepath.Join(dir, "missing_revenue.csv"),
	})

	assert.Len(t, batch.Errors, 5)
	require.NotNil(t, batch.Tables[model.SourceClients])
	assert.Len(t, batch.Tables[model.SourceClients].Rows, 1)
	assert.Nil(t, batch.Tables[model.SourceGoogleAds])
}
