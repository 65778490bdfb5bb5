package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/leadval-cli/internal/fraud"
	"github.com/sells-group/leadval-cli/internal/model"
	"github.com/sells-group/leadval-cli/internal/rules"
	"github.com/sells-group/leadval-cli/pkg/salesforce"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate leads from a CSV file or straight from Salesforce",
	Long:  "Runs the local quality and fraud scoring rules over leads loaded from a CSV file, or over recent Salesforce leads when --source salesforce is set. The CSV path works entirely offline.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		csvPath, _ := cmd.Flags().GetString("csv")
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		source, _ := cmd.Flags().GetString("source")
		sinceDays, _ := cmd.Flags().GetInt("since")

		var leads []model.Lead
		switch source {
		case "csv":
			if err := cfg.Validate("validate"); err != nil {
				return err
			}
			if csvPath == "" {
				return eris.New("--csv is required")
			}
			var err error
			leads, err = readLeadsCSV(csvPath)
			if err != nil {
				return err
			}
		case "salesforce":
			if err := cfg.Validate("validate-sf"); err != nil {
				return err
			}
			client, err := initSalesforce()
			if err != nil {
				return err
			}
			var since *time.Time
			if sinceDays > 0 {
				cutoff := time.Now().UTC().AddDate(0, 0, -sinceDays)
				since = &cutoff
			}
			recs, err := salesforce.QueryRecentLeads(cmd.Context(), client, since, limit)
			if err != nil {
				return err
			}
			leads = leadsFromRecords(recs)
		default:
			return eris.Errorf("unknown source %q (want csv or salesforce)", source)
		}

		if limit > 0 && len(leads) > limit {
			leads = leads[:limit]
		}

		engine, err := buildRulesEngine()
		if err != nil {
			return err
		}

		results := make([]model.ValidationResult, len(leads))
		for i, lead := range leads {
			results[i] = engine.Validate(lead)
		}

		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		case "table":
			formatValidationResults(os.Stdout, leads, results)
			return nil
		default:
			return eris.Errorf("unknown format %q (want table or json)", format)
		}
	},
}

func init() {
	validateCmd.Flags().String("source", "csv", "lead source: csv or salesforce")
	validateCmd.Flags().String("csv", "", "path to a CSV file of leads (header row required)")
	validateCmd.Flags().Int("since", 0, "with --source salesforce, only leads created in the last N days (0 = no cutoff)")
	validateCmd.Flags().Int("limit", 0, "validate at most this many leads (0 = all)")
	validateCmd.Flags().String("format", "table", "output format: table or json")
	rootCmd.AddCommand(validateCmd)
}

// leadsFromRecords converts Salesforce lead rows to the validation model.
func leadsFromRecords(recs []salesforce.LeadRecord) []model.Lead {
	leads := make([]model.Lead, len(recs))
	for i, r := range recs {
		leads[i] = model.Lead{
			ID:         r.ID,
			FirstName:  r.FirstName,
			LastName:   r.LastName,
			Email:      r.Email,
			Phone:      r.Phone,
			Company:    r.Company,
			Status:     r.Status,
			Title:      r.Title,
			Industry:   r.Industry,
			LeadSource: r.LeadSource,
			City:       r.City,
			State:      r.State,
			Country:    r.Country,
		}
	}
	return leads
}

// buildRulesEngine assembles the rules engine from config, falling back to
// the built-in defaults for any unset list.
func buildRulesEngine() (*rules.Engine, error) {
	ind := fraud.DefaultIndicators()
	if cfg.Validation.IndicatorsPath != "" {
		loaded, err := fraud.LoadIndicators(cfg.Validation.IndicatorsPath)
		if err != nil {
			return nil, err
		}
		ind = loaded
	}
	fraudEngine, err := fraud.NewEngine(ind)
	if err != nil {
		return nil, err
	}

	rulesCfg := rules.DefaultConfig()
	if cfg.Validation.DefaultRegion != "" {
		rulesCfg.DefaultRegion = cfg.Validation.DefaultRegion
	}
	if len(cfg.Validation.RequiredFields) > 0 {
		rulesCfg.RequiredFields = cfg.Validation.RequiredFields
	}
	if len(cfg.Validation.ImportantFields) > 0 {
		rulesCfg.ImportantFields = cfg.Validation.ImportantFields
	}
	if len(cfg.Validation.CommonDomains) > 0 {
		rulesCfg.CommonDomains = cfg.Validation.CommonDomains
	}

	return rules.NewEngine(rulesCfg, fraudEngine), nil
}

// formatValidationResults writes one row per lead with a flagged-checks column.
func formatValidationResults(out io.Writer, leads []model.Lead, results []model.ValidationResult) {
	titler := cases.Title(language.English)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LEAD\tQUALITY\tFRAUD\tOVERALL\tSTATUS\tRISK\tFLAGGED")
	_, _ = fmt.Fprintln(w, "----\t-------\t-----\t-------\t------\t----\t-------")

	for i, r := range results {
		name := strings.TrimSpace(leads[i].FirstName + " " + leads[i].LastName)
		if name == "" {
			name = leads[i].Email
		}
		if name == "" {
			name = leads[i].ID
		}

		var flagged []string
		for key, check := range r.Checks {
			if !check.Valid {
				label := titler.String(strings.ReplaceAll(key, "_", " "))
				flagged = append(flagged, label)
			}
		}
		sort.Strings(flagged)

		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%s\t%s\t%s\n",
			name,
			r.QualityScore,
			r.FraudScore,
			r.OverallScore,
			r.Status,
			r.Fraud.Risk,
			strings.Join(flagged, ", "),
		)
	}
	_ = w.Flush()
}
