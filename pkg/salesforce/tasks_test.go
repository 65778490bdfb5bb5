package salesforce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTaskSOQL_Full(t *testing.T) {
	soql := BuildTaskSOQL(nil)

	assert.Contains(t, soql, "TYPEOF Who WHEN Lead THEN LeadSource, Company, Email END")
	assert.Contains(t, soql, "FROM Task")
	assert.Contains(t, soql, "WHERE Subject LIKE 'Lead Validation%'")
	assert.Contains(t, soql, "AND WhoId IN (SELECT Id FROM Lead)")
	assert.Contains(t, soql, "ORDER BY LastModifiedDate DESC")
	assert.NotContains(t, soql, "LastModifiedDate >=")
}

func TestBuildTaskSOQL_Incremental(t *testing.T) {
	since := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	soql := BuildTaskSOQL(&since)

	assert.Contains(t, soql, "AND LastModifiedDate >= 2025-06-01T10:30:00Z")
	assert.Contains(t, soql, "ORDER BY LastModifiedDate DESC")
}

func TestBuildTaskSOQL_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	since := time.Date(2025, 6, 1, 5, 0, 0, 0, loc)
	soql := BuildTaskSOQL(&since)

	assert.Contains(t, soql, "LastModifiedDate >= 2025-06-01T10:00:00Z")
}

func TestQueryValidationTasks_WrapsError(t *testing.T) {
	client := &mockClient{
		queryFn: func(ctx context.Context, soql string, out any) error {
			return assert.AnError
		},
	}

	_, err := QueryValidationTasks(context.Background(), client, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sf: query validation tasks")
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "salesforce offset format",
			input: "2025-06-01T10:00:00.000+0000",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "salesforce zulu format",
			input: "2025-06-01T10:00:00.000Z",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2025-06-01T10:00:00Z",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "offset converts to utc",
			input: "2025-06-01T05:00:00.000-0500",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseTime_Empty(t *testing.T) {
	got, err := ParseTime("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestParseTime_Invalid(t *testing.T) {
	_, err := ParseTime("June 1st 2025")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable datetime")
}

func TestEscapeSoql(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeSoql("O'Brien"))
	assert.Equal(t, "plain", escapeSoql("plain"))
}
