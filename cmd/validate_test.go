package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadval-cli/internal/config"
	"github.com/sells-group/leadval-cli/internal/model"
	"github.com/sells-group/leadval-cli/pkg/salesforce"
)

func TestBuildRulesEngine_Defaults(t *testing.T) {
	orig := cfg
	cfg = &config.Config{}
	t.Cleanup(func() { cfg = orig })

	engine, err := buildRulesEngine()
	require.NoError(t, err)
	require.NotNil(t, engine)

	// Smoke check: a clean lead scores high.
	result := engine.Validate(model.Lead{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace.hopper@acme.com",
		Phone:     "+12125551234",
		Company:   "Acme Corporation",
		Status:    "Open",
	})
	assert.Greater(t, result.OverallScore, 0.8)
}

func TestBuildRulesEngine_BadIndicatorsPath(t *testing.T) {
	orig := cfg
	cfg = &config.Config{}
	cfg.Validation.IndicatorsPath = "/nonexistent/indicators.yaml"
	t.Cleanup(func() { cfg = orig })

	_, err := buildRulesEngine()
	assert.Error(t, err)
}

func TestFormatValidationResults(t *testing.T) {
	leads := []model.Lead{
		{FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com"},
		{Email: "anon@acme.com"},
	}
	results := []model.ValidationResult{
		{
			LeadID:       "00Q1",
			ValidatedAt:  time.Now().UTC(),
			QualityScore: 0.95,
			FraudScore:   0.05,
			OverallScore: 0.92,
			Status:       model.StatusExcellent,
			Checks: map[string]model.CheckResult{
				"email": {Field: "Email", Valid: true, Score: 1.0},
			},
			Fraud: model.FraudAssessment{Risk: model.RiskMinimal},
		},
		{
			LeadID:       "00Q2",
			QualityScore: 0.30,
			FraudScore:   0.80,
			OverallScore: 0.27,
			Status:       model.StatusInvalid,
			Checks: map[string]model.CheckResult{
				"email":        {Field: "Email", Valid: false, Score: 0.1},
				"data_quality": {Field: "_record", Valid: false, Score: 0.5},
			},
			Fraud: model.FraudAssessment{Risk: model.RiskCritical},
		},
	}

	var buf bytes.Buffer
	formatValidationResults(&buf, leads, results)

	output := buf.String()
	assert.Contains(t, output, "Jane Doe")
	// Second lead has no name, so the email is shown instead.
	assert.Contains(t, output, "anon@acme.com")
	assert.Contains(t, output, "0.95")
	assert.Contains(t, output, string(model.StatusExcellent))
	assert.Contains(t, output, string(model.RiskCritical))
	// Failed checks are listed with friendly labels.
	assert.Contains(t, output, "Data Quality")
	assert.Contains(t, output, "Email")
}

func TestLeadsFromRecords(t *testing.T) {
	recs := []salesforce.LeadRecord{
		{
			ID:         "00Q1",
			FirstName:  "Jane",
			LastName:   "Doe",
			Email:      "jane@acme.com",
			Phone:      "+12125551234",
			Company:    "Acme Corp",
			Status:     "Open",
			Title:      "VP Engineering",
			Industry:   "Software",
			LeadSource: "Web",
			City:       "New York",
			State:      "NY",
			Country:    "US",
		},
		{ID: "00Q2"},
	}

	leads := leadsFromRecords(recs)
	require.Len(t, leads, 2)

	assert.Equal(t, "00Q1", leads[0].ID)
	assert.Equal(t, "Jane", leads[0].FirstName)
	assert.Equal(t, "jane@acme.com", leads[0].Email)
	assert.Equal(t, "Acme Corp", leads[0].Company)
	assert.Equal(t, "Web", leads[0].LeadSource)
	assert.Equal(t, "NY", leads[0].State)
	// Every named attribute round-trips through Field.
	assert.Equal(t, "VP Engineering", leads[0].Field("Title"))
	assert.Equal(t, "Software", leads[0].Field("Industry"))

	assert.Equal(t, "00Q2", leads[1].ID)
	assert.Empty(t, leads[1].Email)
}
