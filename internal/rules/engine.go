// Package rules validates individual leads: per-field checks, a weighted
// data-quality score, and a combined score folding in the fraud assessment.
package rules

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"github.com/nyaruka/phonenumbers"

	"github.com/sells-group/leadval-cli/internal/fraud"
	"github.com/sells-group/leadval-cli/internal/model"
)

// Config controls field sets and region handling for the checks.
type Config struct {
	// DefaultRegion is the region used when a phone number has no country
	// prefix.
	DefaultRegion string

	// RequiredFields and ImportantFields drive the completeness check.
	RequiredFields  []string
	ImportantFields []string

	// CommonDomains are checked for near-miss typos in email domains.
	CommonDomains []string
}

func DefaultConfig() Config {
	return Config{
		DefaultRegion:   "US",
		RequiredFields:  []string{"FirstName", "LastName", "Email", "Phone", "Company", "Status"},
		ImportantFields: []string{"Title", "Industry", "LeadSource", "City", "State", "Country"},
		CommonDomains:   []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"},
	}
}

// Engine runs the full validation rule set over leads.
type Engine struct {
	cfg   Config
	fraud *fraud.Engine
}

func NewEngine(cfg Config, fraudEngine *fraud.Engine) *Engine {
	return &Engine{cfg: cfg, fraud: fraudEngine}
}

// Validate runs every check against one lead and fuses the scores.
func (e *Engine) Validate(lead model.Lead) model.ValidationResult {
	checks := map[string]model.CheckResult{
		"email":        e.checkEmail(lead.Email),
		"phone":        e.checkPhone(lead.Phone),
		"name":         e.checkName(lead.FirstName, lead.LastName),
		"company":      e.checkCompany(lead.Company),
		"completeness": e.checkCompleteness(lead),
		"data_quality": e.checkDataQuality(lead),
	}

	quality := qualityScore(checks)
	fraudRes := e.fraud.Assess(lead)
	overall := Combine(quality, fraudRes.Score)

	return model.ValidationResult{
		LeadID:       lead.ID,
		ValidatedAt:  time.Now().UTC(),
		QualityScore: quality,
		FraudScore:   fraudRes.Score,
		OverallScore: overall,
		Status:       StatusFor(overall),
		Checks:       checks,
		Fraud:        fraudRes,
	}
}

func (e *Engine) checkEmail(email string) model.CheckResult {
	res := model.CheckResult{Field: "email", Value: email}

	if email == "" {
		res.Issues = append(res.Issues, "Email is required")
		return res
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		res.Issues = append(res.Issues, fmt.Sprintf("Invalid email format: %v", err))
		return res
	}

	res.Valid = true
	res.Score = 1.0
	res.NormalizedEmail = addr.Address

	if strings.Count(email, "@") != 1 {
		res.Issues = append(res.Issues, "Multiple @ symbols")
		res.Score *= 0.5
	}

	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	if suggestion := e.domainTypo(domain); suggestion != "" {
		res.Issues = append(res.Issues, fmt.Sprintf("Possible domain typo: %s", suggestion))
		res.Score *= 0.8
	}

	return res
}

// domainTypo returns a known domain the given one is suspiciously close to.
// Similarity below the band means a genuinely different domain; above it,
// the domain is correct.
func (e *Engine) domainTypo(domain string) string {
	for _, common := range e.cfg.CommonDomains {
		sim := levenshtein.Similarity(domain, common, nil)
		if sim >= 0.60 && sim < 0.90 {
			return common
		}
	}
	return ""
}

func (e *Engine) checkPhone(phone string) model.CheckResult {
	res := model.CheckResult{Field: "phone", Value: phone}

	if phone == "" {
		res.Issues = append(res.Issues, "Phone number is required")
		return res
	}

	parsed, err := phonenumbers.Parse(phone, e.cfg.DefaultRegion)
	if err != nil {
		res.Issues = append(res.Issues, fmt.Sprintf("Phone parsing error: %v", err))
		return res
	}
	if !phonenumbers.IsValidNumber(parsed) {
		res.Issues = append(res.Issues, "Invalid phone number")
		return res
	}

	res.Valid = true
	res.Score = 1.0
	res.Normalized = phonenumbers.Format(parsed, phonenumbers.E164)
	res.NationalFormat = phonenumbers.Format(parsed, phonenumbers.NATIONAL)

	switch phonenumbers.GetNumberType(parsed) {
	case phonenumbers.MOBILE:
		res.IsMobile = true
	case phonenumbers.FIXED_LINE:
		res.IsLandline = true
	}

	return res
}

var suspiciousNameTokens = []string{"test", "unknown", "n/a", "null", "admin"}

func (e *Engine) checkName(first, last string) model.CheckResult {
	res := model.CheckResult{Field: "name", Value: strings.TrimSpace(first + " " + last)}

	var components []float64

	if strings.TrimSpace(first) == "" {
		res.Issues = append(res.Issues, "First name is required")
	} else if len(strings.TrimSpace(first)) >= 2 {
		components = append(components, 0.5)
	} else {
		res.Issues = append(res.Issues, "First name too short")
		components = append(components, 0.25)
	}

	if strings.TrimSpace(last) == "" {
		res.Issues = append(res.Issues, "Last name is required")
	} else if len(strings.TrimSpace(last)) >= 2 {
		components = append(components, 0.5)
	} else {
		res.Issues = append(res.Issues, "Last name too short")
		components = append(components, 0.25)
	}

	if first != "" && last != "" {
		full := strings.ToLower(first + " " + last)
		for _, token := range suspiciousNameTokens {
			if strings.Contains(full, token) {
				res.Issues = append(res.Issues, "Suspicious name pattern detected")
				for i := range components {
					components[i] *= 0.5
				}
				break
			}
		}
	}

	for _, c := range components {
		res.Score += c
	}
	res.Valid = res.Score >= 0.8

	return res
}

var placeholderCompanies = []string{"test", "unknown", "n/a", "null", "none", "company"}

func (e *Engine) checkCompany(company string) model.CheckResult {
	res := model.CheckResult{Field: "company", Value: company}

	if company == "" {
		res.Issues = append(res.Issues, "Company name is required")
		return res
	}

	clean := strings.TrimSpace(company)
	if len(clean) < 2 {
		res.Issues = append(res.Issues, "Company name too short")
		res.Score = 0.2
	} else {
		res.Score = 0.8
		res.Valid = true
	}

	for _, placeholder := range placeholderCompanies {
		if strings.EqualFold(clean, placeholder) {
			res.Issues = append(res.Issues, "Suspicious company name")
			res.Score *= 0.3
			res.Valid = false
			break
		}
	}

	return res
}

// checkCompleteness scores field presence, weighted 70% required fields and
// 30% important fields.
func (e *Engine) checkCompleteness(lead model.Lead) model.CheckResult {
	res := model.CheckResult{Field: "completeness"}

	requiredFilled := 0
	for _, field := range e.cfg.RequiredFields {
		if strings.TrimSpace(lead.Field(field)) != "" {
			requiredFilled++
		} else {
			res.Issues = append(res.Issues, fmt.Sprintf("Missing required field: %s", field))
		}
	}
	requiredScore := 0.0
	if len(e.cfg.RequiredFields) > 0 {
		requiredScore = float64(requiredFilled) / float64(len(e.cfg.RequiredFields))
	}

	importantFilled := 0
	for _, field := range e.cfg.ImportantFields {
		if strings.TrimSpace(lead.Field(field)) != "" {
			importantFilled++
		}
	}
	importantScore := 0.0
	if len(e.cfg.ImportantFields) > 0 {
		importantScore = float64(importantFilled) / float64(len(e.cfg.ImportantFields))
	}

	res.Score = requiredScore*0.7 + importantScore*0.3
	res.Valid = res.Score >= 0.7

	return res
}

var placeholderValues = []string{"test", "unknown", "n/a", "null", "none", "tbd", "pending"}

// checkDataQuality scans every populated string field for placeholder values
// and sloppy formatting. Recorded for reporting but not part of the weighted
// quality score.
func (e *Engine) checkDataQuality(lead model.Lead) model.CheckResult {
	res := model.CheckResult{Field: "data_quality", Score: 1.0, Valid: true}

	issues := 0
	totalChecks := 0

	for field, value := range lead.StringFields() {
		totalChecks++

		lower := strings.ToLower(strings.TrimSpace(value))
		for _, placeholder := range placeholderValues {
			if lower == placeholder {
				issues++
				res.Issues = append(res.Issues, fmt.Sprintf("Placeholder value in %s: %s", field, value))
				break
			}
		}

		if len(value) > 10 && isAllUpper(value) {
			issues++
			res.Issues = append(res.Issues, fmt.Sprintf("All caps formatting in %s", field))
		}

		if strings.Contains(value, "  ") {
			issues++
			res.Issues = append(res.Issues, fmt.Sprintf("Multiple spaces in %s", field))
		}
	}

	if totalChecks > 0 {
		res.Score = max(0.0, 1.0-float64(issues)/float64(totalChecks))
	}
	res.Valid = res.Score >= 0.8

	return res
}

// isAllUpper reports whether the string has at least one letter and no
// lowercase letters.
func isAllUpper(s string) bool {
	return s != strings.ToLower(s) && s == strings.ToUpper(s)
}
