package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadval-cli/internal/model"
)

// taskColumns is the column order shared by both stores for validation_tasks.
var taskColumns = []string{
	"id", "who_id", "what_id", "subject", "description",
	"lead_source", "lead_company", "lead_email",
	"created_date", "last_modified_date", "extracted_at",
}

func taskRow(t model.Task) []any {
	return []any{
		t.ID, t.WhoID, t.WhatID, t.Subject, t.Description,
		t.LeadSource, t.LeadCompany, t.LeadEmail,
		t.CreatedDate, t.LastModifiedDate, t.ExtractedAt,
	}
}

// validationColumns is the column order shared by both stores for
// parsed_validations. validationRow and scanValidation must stay in sync
// with it.
var validationColumns = []string{
	"task_id", "who_id", "subject", "lead_source",
	"lead_score", "quality_score", "data_quality", "fraud_score",
	"recommendation", "quality_level", "fraud_risk", "market_segment",
	"phone_valid", "phone_carrier", "phone_type", "phone_national_format",
	"email_valid", "email_sendable", "bounce_likely", "gibberish_score",
	"total_emails", "valid_emails", "sendable_emails", "email_quality_score",
	"api_lead_score", "api_quality_score", "api_fraud_score", "api_data_quality_score",
	"api_recommendation", "api_quality_level", "api_fraud_risk_level", "api_market_segment",
	"api_phone_valid", "api_phone_carrier", "api_phone_location",
	"api_email_valid", "api_email_sendable", "api_bounce_likely",
	"api_gibberish_email", "api_fake_phone", "api_fake_lead", "api_disposable_email",
	"api_business_strength_score",
	"api_first_name", "api_last_name", "api_company", "api_email", "api_phone",
	"api_state", "api_postal_code",
	"api_total_emails", "api_valid_emails", "api_sendable_emails",
	"api_email_summary_quality_score",
	"api_quality_factors", "api_fraud_factors", "api_summary_notes",
	"lead_company", "lead_email",
	"raw_description", "raw_api_response", "parse_error",
	"created_date", "last_modified_date", "parsed_at",
}

func validationRow(rec model.ParsedValidation) ([]any, error) {
	rawJSON := []byte("{}")
	if rec.RawAPIResponse != nil {
		var err error
		rawJSON, err = json.Marshal(rec.RawAPIResponse)
		if err != nil {
			return nil, eris.Wrapf(err, "store: marshal raw api response for task %s", rec.TaskID)
		}
	}

	return []any{
		rec.TaskID, rec.WhoID, rec.Subject, rec.LeadSource,
		rec.LeadScore, rec.QualityScore, rec.DataQuality, rec.FraudScore,
		rec.Recommendation, rec.QualityLevel, rec.FraudRisk, rec.MarketSegment,
		rec.PhoneValid, rec.PhoneCarrier, rec.PhoneType, rec.PhoneNationalFormat,
		rec.EmailValid, rec.EmailSendable, rec.BounceLikely, rec.GibberishScore,
		rec.TotalEmails, rec.ValidEmails, rec.SendableEmails, rec.EmailQualityScore,
		rec.APILeadScore, rec.APIQualityScore, rec.APIFraudScore, rec.APIDataQualityScore,
		rec.APIRecommendation, rec.APIQualityLevel, rec.APIFraudRiskLevel, rec.APIMarketSegment,
		rec.APIPhoneValid, rec.APIPhoneCarrier, rec.APIPhoneLocation,
		rec.APIEmailValid, rec.APIEmailSendable, rec.APIBounceLikely,
		rec.APIGibberishEmail, rec.APIFakePhone, rec.APIFakeLead, rec.APIDisposableEmail,
		rec.APIBusinessStrengthScore,
		rec.APIFirstName, rec.APILastName, rec.APICompany, rec.APIEmail, rec.APIPhone,
		rec.APIState, rec.APIPostalCode,
		rec.APITotalEmails, rec.APIValidEmails, rec.APISendableEmails,
		rec.APIEmailSummaryQualityScore,
		rec.APIQualityFactors, rec.APIFraudFactors, rec.APISummaryNotes,
		rec.LeadCompany, rec.LeadEmail,
		rec.RawDescription, rawJSON, rec.ParseError,
		rec.CreatedDate, rec.LastModifiedDate, rec.ParsedAt,
	}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanValidation(row scannable) (*model.ParsedValidation, error) {
	var rec model.ParsedValidation
	var rawJSON []byte

	err := row.Scan(
		&rec.TaskID, &rec.WhoID, &rec.Subject, &rec.LeadSource,
		&rec.LeadScore, &rec.QualityScore, &rec.DataQuality, &rec.FraudScore,
		&rec.Recommendation, &rec.QualityLevel, &rec.FraudRisk, &rec.MarketSegment,
		&rec.PhoneValid, &rec.PhoneCarrier, &rec.PhoneType, &rec.PhoneNationalFormat,
		&rec.EmailValid, &rec.EmailSendable, &rec.BounceLikely, &rec.GibberishScore,
		&rec.TotalEmails, &rec.ValidEmails, &rec.SendableEmails, &rec.EmailQualityScore,
		&rec.APILeadScore, &rec.APIQualityScore, &rec.APIFraudScore, &rec.APIDataQualityScore,
		&rec.APIRecommendation, &rec.APIQualityLevel, &rec.APIFraudRiskLevel, &rec.APIMarketSegment,
		&rec.APIPhoneValid, &rec.APIPhoneCarrier, &rec.APIPhoneLocation,
		&rec.APIEmailValid, &rec.APIEmailSendable, &rec.APIBounceLikely,
		&rec.APIGibberishEmail, &rec.APIFakePhone, &rec.APIFakeLead, &rec.APIDisposableEmail,
		&rec.APIBusinessStrengthScore,
		&rec.APIFirstName, &rec.APILastName, &rec.APICompany, &rec.APIEmail, &rec.APIPhone,
		&rec.APIState, &rec.APIPostalCode,
		&rec.APITotalEmails, &rec.APIValidEmails, &rec.APISendableEmails,
		&rec.APIEmailSummaryQualityScore,
		&rec.APIQualityFactors, &rec.APIFraudFactors, &rec.APISummaryNotes,
		&rec.LeadCompany, &rec.LeadEmail,
		&rec.RawDescription, &rawJSON, &rec.ParseError,
		&rec.CreatedDate, &rec.LastModifiedDate, &rec.ParsedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &rec.RawAPIResponse); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal raw api response for task %s", rec.TaskID)
		}
	}
	if len(rec.RawAPIResponse) == 0 {
		rec.RawAPIResponse = nil
	}
	return &rec, nil
}

func scanTask(row scannable) (*model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.WhoID, &t.WhatID, &t.Subject, &t.Description,
		&t.LeadSource, &t.LeadCompany, &t.LeadEmail,
		&t.CreatedDate, &t.LastModifiedDate, &t.ExtractedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
