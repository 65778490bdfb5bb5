// Package parser extracts structured validation data from CRM task
// description text: labeled report sections and an embedded JSON payload.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Section header markers as they appear literally in the description text.
const (
	headerLeadValidation = "=== LEAD VALIDATION RESULTS ==="
	headerPhone          = "=== PHONE VALIDATION ==="
	headerEmail          = "=== EMAIL VALIDATION ==="
	headerEmailSummary   = "=== EMAIL SUMMARY ==="
	headerRawAPI         = "=== RAW API RESPONSE ==="
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindBool
)

// fieldSpec declares one extractable field: its output name, the pattern
// matching its "label: value" line, and how to coerce the captured value.
type fieldSpec struct {
	name string
	re   *regexp.Regexp
	kind fieldKind
}

var leadValidationFields = []fieldSpec{
	{"lead_score", regexp.MustCompile(`(?i)Lead Score:\s*(\d+)`), kindInt},
	{"quality_score", regexp.MustCompile(`(?i)Quality Score:\s*(\d+)`), kindInt},
	{"data_quality", regexp.MustCompile(`(?i)Data Quality:\s*(\d+)%`), kindInt},
	{"fraud_score", regexp.MustCompile(`(?i)Fraud Score:\s*(\d+)`), kindInt},
	{"recommendation", regexp.MustCompile(`(?i)Recommendation:\s*(\w+)`), kindString},
	{"quality_level", regexp.MustCompile(`(?i)Quality Level:\s*(\w+)`), kindString},
	{"fraud_risk", regexp.MustCompile(`(?i)Fraud Risk:\s*(\w+)`), kindString},
	{"market_segment", regexp.MustCompile(`(?i)Market Segment:\s*(.+)`), kindString},
}

var phoneValidationFields = []fieldSpec{
	{"phone_valid", regexp.MustCompile(`(?i)Phone Valid:\s*(true|false)`), kindBool},
	{"phone_carrier", regexp.MustCompile(`(?i)Carrier:\s*(.+)`), kindString},
	{"phone_type", regexp.MustCompile(`(?i)Type:\s*(.+)`), kindString},
	{"phone_national_format", regexp.MustCompile(`(?i)National Format:\s*(.+)`), kindString},
}

var emailValidationFields = []fieldSpec{
	{"email_valid", regexp.MustCompile(`(?i)Email Valid:\s*(true|false)`), kindBool},
	{"email_sendable", regexp.MustCompile(`(?i)Email Sendable:\s*(true|false)`), kindBool},
	{"bounce_likely", regexp.MustCompile(`(?i)Bounce Likely:\s*(true|false)`), kindBool},
	{"gibberish_score", regexp.MustCompile(`(?i)Gibberish Score:\s*(.+)`), kindString},
}

var emailSummaryFields = []fieldSpec{
	{"total_emails", regexp.MustCompile(`(?i)Total Emails:\s*(\d+)`), kindInt},
	{"valid_emails", regexp.MustCompile(`(?i)Valid Emails:\s*(\d+)`), kindInt},
	{"sendable_emails", regexp.MustCompile(`(?i)Sendable Emails:\s*(\d+)`), kindInt},
	{"email_quality_score", regexp.MustCompile(`(?i)Email Quality Score:\s*(\d+)`), kindInt},
}

// sectionBody returns the text between a header marker and the next header
// (or end of text), trimmed. ok is false when the header is absent.
func sectionBody(text, header string) (body string, ok bool) {
	i := strings.Index(text, header)
	if i < 0 {
		return "", false
	}
	body = text[i+len(header):]
	if j := strings.Index(body, "=== "); j >= 0 {
		body = body[:j]
	}
	return strings.TrimSpace(body), true
}

// extractSection applies a field table to one section's body. Fields whose
// pattern does not match are absent from the result. A literal "null" value
// (any case) yields a present key with a nil value; numeric fields that fail
// to parse keep the raw string.
func extractSection(text, header string, specs []fieldSpec) map[string]any {
	out := map[string]any{}
	body, ok := sectionBody(text, header)
	if !ok {
		return out
	}

	for _, spec := range specs {
		m := spec.re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		val := strings.TrimSpace(m[1])

		switch spec.kind {
		case kindInt:
			if n, err := strconv.Atoi(val); err == nil {
				out[spec.name] = n
			} else {
				out[spec.name] = val
			}
		case kindBool:
			out[spec.name] = strings.EqualFold(val, "true")
		default:
			if strings.EqualFold(val, "null") {
				out[spec.name] = nil
			} else {
				out[spec.name] = val
			}
		}
	}
	return out
}

// ExtractSections runs all four section tables over the description text and
// merges the results. Text with no section markers yields an empty map;
// that is not an error by itself.
func ExtractSections(text string) map[string]any {
	out := map[string]any{}
	for _, s := range []struct {
		header string
		specs  []fieldSpec
	}{
		{headerLeadValidation, leadValidationFields},
		{headerPhone, phoneValidationFields},
		{headerEmail, emailValidationFields},
		{headerEmailSummary, emailSummaryFields},
	} {
		for k, v := range extractSection(text, s.header, s.specs) {
			out[k] = v
		}
	}
	return out
}
