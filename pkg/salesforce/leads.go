package salesforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// LeadRecord is a Salesforce Lead row with the attributes the validation
// rules inspect.
type LeadRecord struct {
	ID         string `json:"Id"`
	FirstName  string `json:"FirstName"`
	LastName   string `json:"LastName"`
	Email      string `json:"Email"`
	Phone      string `json:"Phone"`
	Company    string `json:"Company"`
	Status     string `json:"Status"`
	Title      string `json:"Title"`
	Industry   string `json:"Industry"`
	LeadSource string `json:"LeadSource"`
	City       string `json:"City"`
	State      string `json:"State"`
	Country    string `json:"Country"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "FirstName", "LastName", "Email", "Phone", "Company", "Status",
	"Title", "Industry", "LeadSource", "City", "State", "Country",
}

// QueryRecentLeads returns the most recently created leads, newest first.
func QueryRecentLeads(ctx context.Context, c Client, since *time.Time, limit int) ([]LeadRecord, error) {
	if limit <= 0 {
		limit = 200
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("SELECT %s FROM Lead", strings.Join(leadFields, ", ")))
	if since != nil {
		b.WriteString(fmt.Sprintf(" WHERE CreatedDate >= %s", since.UTC().Format("2006-01-02T15:04:05Z")))
	}
	b.WriteString(fmt.Sprintf(" ORDER BY CreatedDate DESC LIMIT %d", limit))

	var leads []LeadRecord
	if err := c.Query(ctx, b.String(), &leads); err != nil {
		return nil, eris.Wrap(err, "sf: query recent leads")
	}
	return leads, nil
}
