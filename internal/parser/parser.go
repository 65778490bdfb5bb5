package parser

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadval-cli/internal/model"
)

// Parser turns raw task descriptions into typed validation records.
type Parser struct{}

func New() *Parser { return &Parser{} }

// ParseTask parses one task's description into a ParsedValidation record.
// A task with an empty description still yields a metadata-only record so
// the task is not silently dropped from downstream views.
func (p *Parser) ParseTask(task model.Task) model.ParsedValidation {
	rec := model.ParsedValidation{
		TaskID:           task.ID,
		WhoID:            task.WhoID,
		Subject:          task.Subject,
		LeadSource:       task.LeadSource,
		LeadCompany:      task.LeadCompany,
		LeadEmail:        task.LeadEmail,
		RawDescription:   task.Description,
		CreatedDate:      task.CreatedDate,
		LastModifiedDate: task.LastModifiedDate,
		ParsedAt:         time.Now().UTC(),
	}
	if task.Description == "" {
		return rec
	}

	fields := ExtractSections(task.Description)

	payload := extractPayload(task.Description)
	if payload != nil {
		rec.RawAPIResponse = payload
		if msg, broken := payload["json_parse_error"]; broken {
			zap.L().Warn("api payload decode failed",
				zap.String("task_id", task.ID),
				zap.Any("error", msg))
		}
		for k, v := range flattenPayload(payload) {
			fields[k] = v
		}
	}

	rec.LeadScore = intField(fields, "lead_score")
	rec.QualityScore = intField(fields, "quality_score")
	rec.DataQuality = intField(fields, "data_quality")
	rec.FraudScore = intField(fields, "fraud_score")
	rec.Recommendation = stringField(fields, "recommendation")
	rec.QualityLevel = stringField(fields, "quality_level")
	rec.FraudRisk = stringField(fields, "fraud_risk")
	rec.MarketSegment = stringField(fields, "market_segment")

	rec.PhoneValid = boolField(fields, "phone_valid")
	rec.PhoneCarrier = stringField(fields, "phone_carrier")
	rec.PhoneType = stringField(fields, "phone_type")
	rec.PhoneNationalFormat = stringField(fields, "phone_national_format")

	rec.EmailValid = boolField(fields, "email_valid")
	rec.EmailSendable = boolField(fields, "email_sendable")
	rec.BounceLikely = boolField(fields, "bounce_likely")
	rec.GibberishScore = stringField(fields, "gibberish_score")

	rec.TotalEmails = intField(fields, "total_emails")
	rec.ValidEmails = intField(fields, "valid_emails")
	rec.SendableEmails = intField(fields, "sendable_emails")
	rec.EmailQualityScore = intField(fields, "email_quality_score")

	rec.APILeadScore = intField(fields, "api_lead_score")
	rec.APIQualityScore = intField(fields, "api_quality_score")
	rec.APIFraudScore = intField(fields, "api_fraud_score")
	rec.APIDataQualityScore = intField(fields, "api_data_quality_score")
	rec.APIRecommendation = stringField(fields, "api_recommendation")
	rec.APIQualityLevel = stringField(fields, "api_quality_level")
	rec.APIFraudRiskLevel = stringField(fields, "api_fraud_risk_level")
	rec.APIMarketSegment = stringField(fields, "api_market_segment")
	rec.APIPhoneValid = boolField(fields, "api_phone_valid")
	rec.APIPhoneCarrier = stringField(fields, "api_phone_carrier")
	rec.APIPhoneLocation = stringField(fields, "api_phone_location")
	rec.APIEmailValid = boolField(fields, "api_email_valid")
	rec.APIEmailSendable = boolField(fields, "api_email_sendable")
	rec.APIBounceLikely = boolField(fields, "api_bounce_likely")
	rec.APIGibberishEmail = boolField(fields, "api_gibberish_email")
	rec.APIFakePhone = boolField(fields, "api_fake_phone")
	rec.APIFakeLead = boolField(fields, "api_fake_lead")
	rec.APIDisposableEmail = boolField(fields, "api_disposable_email")
	rec.APIBusinessStrengthScore = intField(fields, "api_business_strength_score")
	rec.APIFirstName = stringField(fields, "api_first_name")
	rec.APILastName = stringField(fields, "api_last_name")
	rec.APICompany = stringField(fields, "api_company")
	rec.APIEmail = stringField(fields, "api_email")
	rec.APIPhone = stringField(fields, "api_phone")
	rec.APIState = stringField(fields, "api_state")
	rec.APIPostalCode = stringField(fields, "api_postal_code")

	rec.APITotalEmails = intField(fields, "api_total_emails")
	rec.APIValidEmails = intField(fields, "api_valid_emails")
	rec.APISendableEmails = intField(fields, "api_sendable_emails")
	rec.APIEmailSummaryQualityScore = intField(fields, "api_email_summary_quality_score")

	rec.APIQualityFactors = stringField(fields, "api_quality_factors")
	rec.APIFraudFactors = stringField(fields, "api_fraud_factors")
	rec.APISummaryNotes = stringField(fields, "api_summary_notes")

	return rec
}

// intField coerces a field value to *int. JSON numbers decode as float64;
// section values arrive as int. Anything else is treated as absent.
func intField(fields map[string]any, key string) *int {
	switch v := fields[key].(type) {
	case int:
		return &v
	case float64:
		n := int(v)
		return &n
	default:
		return nil
	}
}

func boolField(fields map[string]any, key string) *bool {
	if v, ok := fields[key].(bool); ok {
		return &v
	}
	return nil
}

func stringField(fields map[string]any, key string) *string {
	if v, ok := fields[key].(string); ok {
		return &v
	}
	return nil
}
