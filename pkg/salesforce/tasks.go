package salesforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// WhoLead carries the Lead fields resolved through the Task's polymorphic
// Who relationship. Only present when the Task points at a Lead.
type WhoLead struct {
	LeadSource string `json:"LeadSource"`
	Company    string `json:"Company"`
	Email      string `json:"Email"`
}

// TaskRecord is a raw validation Task row as Salesforce returns it. Dates
// stay strings here; ParseTime converts them.
type TaskRecord struct {
	ID               string   `json:"Id"`
	WhoID            string   `json:"WhoId"`
	WhatID           string   `json:"WhatId"`
	Subject          string   `json:"Subject"`
	Description      string   `json:"Description"`
	Who              *WhoLead `json:"Who"`
	CreatedDate      string   `json:"CreatedDate"`
	LastModifiedDate string   `json:"LastModifiedDate"`
}

// validationSubjectPrefix selects the tasks the validation service writes.
const validationSubjectPrefix = "Lead Validation"

// BuildTaskSOQL builds the extraction query for lead validation tasks. The
// TYPEOF clause resolves the polymorphic Who relationship to Lead fields.
// A nil since means a full extraction; otherwise only tasks modified at or
// after the cutoff are returned.
func BuildTaskSOQL(since *time.Time) string {
	var b strings.Builder
	b.WriteString("SELECT Id, WhoId, WhatId, ")
	b.WriteString("TYPEOF Who WHEN Lead THEN LeadSource, Company, Email END, ")
	b.WriteString("Subject, Description, CreatedDate, LastModifiedDate ")
	b.WriteString("FROM Task ")
	b.WriteString(fmt.Sprintf("WHERE Subject LIKE '%s%%' ", escapeSoql(validationSubjectPrefix)))
	b.WriteString("AND WhoId IN (SELECT Id FROM Lead) ")
	if since != nil {
		b.WriteString(fmt.Sprintf("AND LastModifiedDate >= %s ", since.UTC().Format("2006-01-02T15:04:05Z")))
	}
	b.WriteString("ORDER BY LastModifiedDate DESC")
	return b.String()
}

// QueryValidationTasks fetches validation tasks from Salesforce. Pagination
// is handled by the underlying client.
func QueryValidationTasks(ctx context.Context, c Client, since *time.Time) ([]TaskRecord, error) {
	var tasks []TaskRecord
	if err := c.Query(ctx, BuildTaskSOQL(since), &tasks); err != nil {
		return nil, eris.Wrap(err, "sf: query validation tasks")
	}
	return tasks, nil
}

// sfTimeLayouts covers the datetime formats Salesforce emits.
var sfTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000Z",
	time.RFC3339,
}

// ParseTime parses a Salesforce datetime string. An empty input yields the
// zero time with no error.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range sfTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("sf: unparseable datetime %q", s)
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
