package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// apiFieldMap maps flattened output names to their key in the embedded JSON
// payload. Nested and array-valued payload fields are handled separately.
var apiFieldMap = map[string]string{
	"api_lead_score":              "leadScore",
	"api_quality_score":           "qualityScore",
	"api_fraud_score":             "fraudScore",
	"api_data_quality_score":      "dataQualityScore",
	"api_recommendation":          "recommendation",
	"api_quality_level":           "qualityLevel",
	"api_fraud_risk_level":        "fraudRiskLevel",
	"api_market_segment":          "marketSegment",
	"api_phone_valid":             "phoneValid",
	"api_phone_carrier":           "phoneCarrier",
	"api_phone_location":          "phoneLocation",
	"api_email_valid":             "emailValid",
	"api_email_sendable":          "emailSendable",
	"api_bounce_likely":           "isBounceLikely",
	"api_gibberish_email":         "isGibberishEmail",
	"api_fake_phone":              "isFakePhone",
	"api_fake_lead":               "isFakeLead",
	"api_disposable_email":        "isDisposable",
	"api_business_strength_score": "businessStrengthScore",
	"api_first_name":              "first_name",
	"api_last_name":               "last_name",
	"api_company":                 "company",
	"api_email":                   "email",
	"api_phone":                   "phone",
	"api_state":                   "state",
	"api_postal_code":             "postalCode",
}

// extractPayload pulls the JSON object out of the RAW API RESPONSE section.
// The payload is taken as everything from the first "{" through the last "}"
// so that trailing report text after the object does not break decoding.
// A decode failure is preserved as a marker map rather than dropped, so the
// raw content survives for inspection.
func extractPayload(text string) map[string]any {
	body, ok := sectionBody(text, headerRawAPI)
	if !ok {
		return nil
	}
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return nil
	}
	raw := body[start : end+1]

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return map[string]any{
			"json_parse_error": err.Error(),
			"raw_content":      raw,
		}
	}
	return payload
}

// flattenPayload lifts the payload fields the pipeline cares about into flat
// api_-prefixed keys. Numbers decode as float64 and are kept that way here;
// coercion to the typed record happens in ParseTask.
func flattenPayload(payload map[string]any) map[string]any {
	out := map[string]any{}
	if payload == nil {
		return out
	}
	if _, broken := payload["json_parse_error"]; broken {
		return out
	}

	for name, key := range apiFieldMap {
		if v, ok := payload[key]; ok && v != nil {
			out[name] = v
		}
	}

	if es, ok := payload["emailSummary"].(map[string]any); ok {
		for name, key := range map[string]string{
			"api_total_emails":                "totalEmails",
			"api_valid_emails":                "validEmails",
			"api_sendable_emails":             "sendableEmails",
			"api_email_summary_quality_score": "qualityScore",
		} {
			if v, ok := es[key]; ok && v != nil {
				out[name] = v
			}
		}
	}

	for name, key := range map[string]string{
		"api_quality_factors": "qualityFactors",
		"api_fraud_factors":   "fraudFactors",
		"api_summary_notes":   "summaryNotes",
	} {
		// Present-but-empty arrays still flatten, to the empty string, so the
		// stored field reflects that the payload carried the list.
		if arr, ok := payload[key].([]any); ok {
			parts := make([]string, 0, len(arr))
			for _, item := range arr {
				parts = append(parts, fmt.Sprint(item))
			}
			out[name] = strings.Join(parts, ", ")
		}
	}

	return out
}
