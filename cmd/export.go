package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadval-cli/internal/model"
	"github.com/sells-group/leadval-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export parsed validations to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		source, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")

		if format != "csv" && format != "xlsx" {
			return eris.Errorf("unknown format %q (want csv or xlsx)", format)
		}
		if output == "" {
			output = fmt.Sprintf("validation_backup_%s.%s", time.Now().Format("20060102_150405"), format)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		// Error records are included so the backup keeps the full audit trail.
		recs, err := st.ListValidations(ctx, store.ValidationFilter{
			LeadSource: source,
			Limit:      limit,
		})
		if err != nil {
			return eris.Wrap(err, "export: list validations")
		}

		switch format {
		case "csv":
			err = writeValidationsCSV(output, recs)
		case "xlsx":
			err = writeValidationsXLSX(output, recs)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("file", output),
			zap.Int("records", len(recs)))
		fmt.Fprintf(os.Stdout, "Exported %d records to %s\n", len(recs), output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "csv", "export format: csv or xlsx")
	exportCmd.Flags().String("output", "", "output file path (default validation_backup_<timestamp>.<format>)")
	exportCmd.Flags().String("source", "", "filter by lead source")
	exportCmd.Flags().Int("limit", 0, "cap the number of exported records (0 = all)")
	rootCmd.AddCommand(exportCmd)
}

// exportHeaders are the columns included in both export formats.
var exportHeaders = []string{
	"task_id", "who_id", "subject", "lead_source", "lead_company", "lead_email",
	"lead_score", "quality_score", "fraud_score",
	"api_quality_score", "api_fraud_score", "api_lead_score",
	"api_recommendation", "api_quality_level", "api_fraud_risk_level",
	"api_market_segment", "parse_error", "created_date",
}

func validationRowValues(rec model.ParsedValidation) []string {
	return []string{
		rec.TaskID,
		rec.WhoID,
		rec.Subject,
		rec.LeadSource,
		rec.LeadCompany,
		rec.LeadEmail,
		intValue(rec.LeadScore),
		intValue(rec.QualityScore),
		intValue(rec.FraudScore),
		intValue(rec.APIQualityScore),
		intValue(rec.APIFraudScore),
		intValue(rec.APILeadScore),
		strValue(rec.APIRecommendation),
		strValue(rec.APIQualityLevel),
		strValue(rec.APIFraudRiskLevel),
		strValue(rec.APIMarketSegment),
		rec.ParseError,
		rec.CreatedDate.Format(time.RFC3339),
	}
}

func writeValidationsCSV(path string, recs []model.ParsedValidation) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(exportHeaders); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, rec := range recs {
		if err := w.Write(validationRowValues(rec)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

func writeValidationsXLSX(path string, recs []model.ParsedValidation) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("validations")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}
	for _, rec := range recs {
		row := sheet.AddRow()
		for _, v := range validationRowValues(rec) {
			row.AddCell().SetString(v)
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}

func intValue(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
