package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadval-cli/internal/model"
)

const sampleDescription = `Lead Validation Complete

=== LEAD VALIDATION RESULTS ===
Lead Score: 8
Quality Score: 7
Data Quality: 85%
Fraud Score: 1
Recommendation: ACCEPT
Quality Level: HIGH
Fraud Risk: MINIMAL
Market Segment: Enterprise SaaS

=== PHONE VALIDATION ===
Phone Valid: true
Carrier: Verizon Wireless
Type: mobile
National Format: (415) 555-2671

=== EMAIL VALIDATION ===
Email Valid: true
Email Sendable: true
Bounce Likely: false
Gibberish Score: null

=== EMAIL SUMMARY ===
Total Emails: 3
Valid Emails: 2
Sendable Emails: 2
Email Quality Score: 7

=== RAW API RESPONSE ===
{"leadScore": 8, "qualityScore": 9, "fraudScore": 1, "isFakeLead": false, "first_name": "Ada", "company": "Acme Corp", "emailSummary": {"totalEmails": 3, "validEmails": 2, "sendableEmails": 2, "qualityScore": 7}, "qualityFactors": ["valid email", "valid phone"], "summaryNotes": ["looks legitimate"]}
`

func TestParseTaskSections(t *testing.T) {
	p := New()
	rec := p.ParseTask(model.Task{
		ID:          "00T000000000001",
		WhoID:       "00Q000000000001",
		Subject:     "Lead Validation Results",
		LeadSource:  "Web",
		Description: sampleDescription,
	})

	require.NotNil(t, rec.LeadScore)
	assert.Equal(t, 8, *rec.LeadScore)
	require.NotNil(t, rec.DataQuality)
	assert.Equal(t, 85, *rec.DataQuality)
	require.NotNil(t, rec.Recommendation)
	assert.Equal(t, "ACCEPT", *rec.Recommendation)
	require.NotNil(t, rec.MarketSegment)
	assert.Equal(t, "Enterprise SaaS", *rec.MarketSegment)

	require.NotNil(t, rec.PhoneValid)
	assert.True(t, *rec.PhoneValid)
	require.NotNil(t, rec.PhoneCarrier)
	assert.Equal(t, "Verizon Wireless", *rec.PhoneCarrier)
	require.NotNil(t, rec.PhoneNationalFormat)
	assert.Equal(t, "(415) 555-2671", *rec.PhoneNationalFormat)

	require.NotNil(t, rec.BounceLikely)
	assert.False(t, *rec.BounceLikely)
	// "null" in the text means the field was emitted but has no value.
	assert.Nil(t, rec.GibberishScore)

	require.NotNil(t, rec.EmailQualityScore)
	assert.Equal(t, 7, *rec.EmailQualityScore)
}

func TestParseTaskPayload(t *testing.T) {
	rec := New().ParseTask(model.Task{ID: "00T1", Description: sampleDescription})

	require.NotNil(t, rec.RawAPIResponse)
	assert.Equal(t, float64(8), rec.RawAPIResponse["leadScore"])

	// Payload and section values for the same concept are both kept.
	require.NotNil(t, rec.QualityScore)
	assert.Equal(t, 7, *rec.QualityScore)
	require.NotNil(t, rec.APIQualityScore)
	assert.Equal(t, 9, *rec.APIQualityScore)

	require.NotNil(t, rec.APIFakeLead)
	assert.False(t, *rec.APIFakeLead)
	require.NotNil(t, rec.APIFirstName)
	assert.Equal(t, "Ada", *rec.APIFirstName)

	require.NotNil(t, rec.APITotalEmails)
	assert.Equal(t, 3, *rec.APITotalEmails)
	require.NotNil(t, rec.APIEmailSummaryQualityScore)
	assert.Equal(t, 7, *rec.APIEmailSummaryQualityScore)

	require.NotNil(t, rec.APIQualityFactors)
	assert.Equal(t, "valid email, valid phone", *rec.APIQualityFactors)
	require.NotNil(t, rec.APISummaryNotes)
	assert.Equal(t, "looks legitimate", *rec.APISummaryNotes)
	assert.Nil(t, rec.APIFraudFactors)
}

func TestParseTaskPayloadEmptyArrays(t *testing.T) {
	desc := `=== RAW API RESPONSE ===
{"leadScore": 6, "qualityFactors": [], "fraudFactors": ["velocity spike"]}`

	rec := New().ParseTask(model.Task{ID: "00T5", Description: desc})

	// An empty list flattens to the empty string; an absent one stays nil.
	require.NotNil(t, rec.APIQualityFactors)
	assert.Equal(t, "", *rec.APIQualityFactors)
	require.NotNil(t, rec.APIFraudFactors)
	assert.Equal(t, "velocity spike", *rec.APIFraudFactors)
	assert.Nil(t, rec.APISummaryNotes)
}

func TestParseTaskEmptyDescription(t *testing.T) {
	task := model.Task{
		ID:               "00T2",
		WhoID:            "00Q2",
		Subject:          "Lead Validation Results",
		LeadSource:       "Referral",
		CreatedDate:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LastModifiedDate: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
	rec := New().ParseTask(task)

	assert.Equal(t, "00T2", rec.TaskID)
	assert.Equal(t, "Referral", rec.LeadSource)
	assert.Equal(t, task.CreatedDate, rec.CreatedDate)
	assert.Nil(t, rec.LeadScore)
	assert.Nil(t, rec.RawAPIResponse)
	assert.Empty(t, rec.ParseError)
}

func TestParseTaskNoMarkers(t *testing.T) {
	rec := New().ParseTask(model.Task{ID: "00T3", Description: "Called the lead, left voicemail."})

	assert.Equal(t, "Called the lead, left voicemail.", rec.RawDescription)
	assert.Nil(t, rec.LeadScore)
	assert.Nil(t, rec.PhoneValid)
	assert.Nil(t, rec.RawAPIResponse)
}

func TestParseTaskBrokenPayload(t *testing.T) {
	desc := `=== LEAD VALIDATION RESULTS ===
Lead Score: 5

=== RAW API RESPONSE ===
{"leadScore": 5, "company": `

	rec := New().ParseTask(model.Task{ID: "00T4", Description: desc})

	require.NotNil(t, rec.LeadScore)
	assert.Equal(t, 5, *rec.LeadScore)
	require.NotNil(t, rec.RawAPIResponse)
	assert.Contains(t, rec.RawAPIResponse, "json_parse_error")
	assert.Contains(t, rec.RawAPIResponse, "raw_content")
	// Nothing gets flattened out of a broken payload.
	assert.Nil(t, rec.APILeadScore)
}

func TestSectionBody(t *testing.T) {
	body, ok := sectionBody(sampleDescription, headerPhone)
	require.True(t, ok)
	assert.Contains(t, body, "Phone Valid: true")
	assert.NotContains(t, body, "Email Valid")

	_, ok = sectionBody("no sections here", headerPhone)
	assert.False(t, ok)
}

func TestExtractPayloadSurroundingText(t *testing.T) {
	desc := `=== RAW API RESPONSE ===
Response received at 10:00:
{"leadScore": 4}
End of response.`

	payload := extractPayload(desc)
	require.NotNil(t, payload)
	assert.Equal(t, float64(4), payload["leadScore"])
}
