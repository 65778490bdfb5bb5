package model

import "time"

// RiskLevel is the discrete fraud risk tier derived from a 0-1 fraud score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
	RiskMinimal  RiskLevel = "MINIMAL"
)

// Status is the five-tier validation status derived from a 0-1 overall score.
// Not to be confused with the 0-10 report-scale quality buckets used by the
// ETL summary; see rules.QualityBucket.
type Status string

const (
	StatusExcellent Status = "Excellent"
	StatusGood      Status = "Good"
	StatusFair      Status = "Fair"
	StatusPoor      Status = "Poor"
	StatusInvalid   Status = "Invalid"
)

// FraudAssessment is the fraud engine's verdict for one lead.
type FraudAssessment struct {
	Score      float64   `json:"fraud_score"`
	Indicators []string  `json:"fraud_indicators,omitempty"`
	LikelyFake bool      `json:"is_likely_fake"`
	Risk       RiskLevel `json:"risk_level"`
}

// CheckResult holds the outcome of a single validation dimension.
// Normalized, NationalFormat, IsMobile and IsLandline are only populated by
// the phone check; NormalizedEmail only by the email check.
type CheckResult struct {
	Field           string   `json:"field"`
	Value           string   `json:"value,omitempty"`
	Valid           bool     `json:"is_valid"`
	Score           float64  `json:"score"`
	Issues          []string `json:"issues,omitempty"`
	NormalizedEmail string   `json:"normalized_email,omitempty"`
	Normalized      string   `json:"normalized,omitempty"`
	NationalFormat  string   `json:"national_format,omitempty"`
	IsMobile        bool     `json:"is_mobile,omitempty"`
	IsLandline      bool     `json:"is_landline,omitempty"`
}

// ValidationResult is the full scoring output for one freshly-validated lead.
// All scores are on the engines' 0-1 scale.
type ValidationResult struct {
	LeadID       string                 `json:"lead_id"`
	ValidatedAt  time.Time              `json:"validated_at"`
	QualityScore float64                `json:"data_quality_score"`
	FraudScore   float64                `json:"fraud_score"`
	OverallScore float64                `json:"overall_score"`
	Status       Status                 `json:"validation_status"`
	Checks       map[string]CheckResult `json:"validation_details"`
	Fraud        FraudAssessment        `json:"fraud"`
}
