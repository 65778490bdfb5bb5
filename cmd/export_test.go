package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadval-cli/internal/model"
)

func sampleExportRecords() []model.ParsedValidation {
	nine, two := 9, 2
	rec := "PROCEED"
	return []model.ParsedValidation{
		{
			TaskID:            "00T1",
			WhoID:             "00Q1",
			Subject:           "Lead Validation Complete",
			LeadSource:        "Web",
			LeadCompany:       "Acme Corp",
			LeadEmail:         "jane@acme.com",
			QualityScore:      &nine,
			FraudScore:        &two,
			APIRecommendation: &rec,
			CreatedDate:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			TaskID:     "00T2",
			WhoID:      "00Q2",
			Subject:    "Lead Validation Complete",
			ParseError: "panic: bad report",
		},
	}
}

func TestWriteValidationsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeValidationsCSV(path, sampleExportRecords()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "00T1", rows[1][0])
	assert.Equal(t, "9", rows[1][7])
	assert.Equal(t, "PROCEED", rows[1][12])
	assert.Equal(t, "2025-06-01T10:00:00Z", rows[1][17])

	// Nil scores come out as empty cells.
	assert.Equal(t, "", rows[2][7])
	assert.Equal(t, "panic: bad report", rows[2][16])
}

func TestWriteValidationsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, writeValidationsXLSX(path, sampleExportRecords()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "validations", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "task_id", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "00T1", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "Acme Corp", sheet.Rows[1].Cells[4].String())
}

func TestValidationRowValues_Length(t *testing.T) {
	for _, rec := range sampleExportRecords() {
		assert.Len(t, validationRowValues(rec), len(exportHeaders))
	}
}
