package model

import "time"

// ParsedValidation is the normalized output of parsing one Task description.
//
// Section fields come straight from the labeled text sections; the API* fields
// are flattened out of the embedded RAW API RESPONSE payload. Both families
// may carry a value for the same concept (e.g. QualityScore vs
// APIQualityScore) and may disagree; consumers that need a single value
// should prefer the payload-derived API* field and fall back to the section
// field. All score fields in this struct are on the report's 0-10 integer
// scale, not the engines' 0-1 scale.
//
// Pointer fields distinguish "absent from the text" (nil) from "present but
// zero/empty". ParseError is set only when processing the record failed; a
// record with ParseError set keeps its raw fields for audit but its derived
// fields are unreliable and it is excluded from aggregate views.
type ParsedValidation struct {
	TaskID     string `json:"task_id"`
	WhoID      string `json:"who_id"`
	Subject    string `json:"subject"`
	LeadSource string `json:"lead_source"`

	// Lead validation results section.
	LeadScore      *int    `json:"lead_score,omitempty"`
	QualityScore   *int    `json:"quality_score,omitempty"`
	DataQuality    *int    `json:"data_quality,omitempty"`
	FraudScore     *int    `json:"fraud_score,omitempty"`
	Recommendation *string `json:"recommendation,omitempty"`
	QualityLevel   *string `json:"quality_level,omitempty"`
	FraudRisk      *string `json:"fraud_risk,omitempty"`
	MarketSegment  *string `json:"market_segment,omitempty"`

	// Phone validation section.
	PhoneValid          *bool   `json:"phone_valid,omitempty"`
	PhoneCarrier        *string `json:"phone_carrier,omitempty"`
	PhoneType           *string `json:"phone_type,omitempty"`
	PhoneNationalFormat *string `json:"phone_national_format,omitempty"`

	// Email validation section.
	EmailValid     *bool   `json:"email_valid,omitempty"`
	EmailSendable  *bool   `json:"email_sendable,omitempty"`
	BounceLikely   *bool   `json:"bounce_likely,omitempty"`
	GibberishScore *string `json:"gibberish_score,omitempty"`

	// Email summary section.
	TotalEmails       *int `json:"total_emails,omitempty"`
	ValidEmails       *int `json:"valid_emails,omitempty"`
	SendableEmails    *int `json:"sendable_emails,omitempty"`
	EmailQualityScore *int `json:"email_quality_score,omitempty"`

	// Flattened RAW API RESPONSE fields.
	APILeadScore             *int    `json:"api_lead_score,omitempty"`
	APIQualityScore          *int    `json:"api_quality_score,omitempty"`
	APIFraudScore            *int    `json:"api_fraud_score,omitempty"`
	APIDataQualityScore      *int    `json:"api_data_quality_score,omitempty"`
	APIRecommendation        *string `json:"api_recommendation,omitempty"`
	APIQualityLevel          *string `json:"api_quality_level,omitempty"`
	APIFraudRiskLevel        *string `json:"api_fraud_risk_level,omitempty"`
	APIMarketSegment         *string `json:"api_market_segment,omitempty"`
	APIPhoneValid            *bool   `json:"api_phone_valid,omitempty"`
	APIPhoneCarrier          *string `json:"api_phone_carrier,omitempty"`
	APIPhoneLocation         *string `json:"api_phone_location,omitempty"`
	APIEmailValid            *bool   `json:"api_email_valid,omitempty"`
	APIEmailSendable         *bool   `json:"api_email_sendable,omitempty"`
	APIBounceLikely          *bool   `json:"api_bounce_likely,omitempty"`
	APIGibberishEmail        *bool   `json:"api_gibberish_email,omitempty"`
	APIFakePhone             *bool   `json:"api_fake_phone,omitempty"`
	APIFakeLead              *bool   `json:"api_fake_lead,omitempty"`
	APIDisposableEmail       *bool   `json:"api_disposable_email,omitempty"`
	APIBusinessStrengthScore *int    `json:"api_business_strength_score,omitempty"`
	APIFirstName             *string `json:"api_first_name,omitempty"`
	APILastName              *string `json:"api_last_name,omitempty"`
	APICompany               *string `json:"api_company,omitempty"`
	APIEmail                 *string `json:"api_email,omitempty"`
	APIPhone                 *string `json:"api_phone,omitempty"`
	APIState                 *string `json:"api_state,omitempty"`
	APIPostalCode            *string `json:"api_postal_code,omitempty"`

	// Email summary substructure of the payload.
	APITotalEmails              *int `json:"api_total_emails,omitempty"`
	APIValidEmails              *int `json:"api_valid_emails,omitempty"`
	APISendableEmails           *int `json:"api_sendable_emails,omitempty"`
	APIEmailSummaryQualityScore *int `json:"api_email_summary_quality_score,omitempty"`

	// Array-valued payload fields, joined into comma-separated text.
	APIQualityFactors *string `json:"api_quality_factors,omitempty"`
	APIFraudFactors   *string `json:"api_fraud_factors,omitempty"`
	APISummaryNotes   *string `json:"api_summary_notes,omitempty"`

	// Lead information copied from the task.
	LeadCompany string `json:"lead_company,omitempty"`
	LeadEmail   string `json:"lead_email,omitempty"`

	// Raw fields retained for audit.
	RawDescription string         `json:"raw_description,omitempty"`
	RawAPIResponse map[string]any `json:"raw_api_response,omitempty"`

	ParseError string `json:"parse_error,omitempty"`

	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
	ParsedAt         time.Time `json:"parsed_at"`
}
