package salesforce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSFClient creates an sfClient backed by an httptest server.
func newTestSFClient(t *testing.T, handler http.Handler) (Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)

	sf, err := gosf.Init(gosf.Creds{
		AccessToken: "test-token",
		Domain:      ts.URL,
	},
		gosf.WithValidateAuthentication(false),
		gosf.WithRoundTripper(http.DefaultTransport),
	)
	require.NoError(t, err)
	require.NotNil(t, sf)

	return NewClient(sf), ts
}

func TestSFClient_Query(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/query")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]any{
				{
					"attributes":       map[string]any{"type": "Task"},
					"Id":               "00Txx",
					"WhoId":            "00Qxx",
					"Subject":          "Lead Validation Complete",
					"Description":      "=== LEAD VALIDATION RESULTS ===\nLead Score: 85/100",
					"CreatedDate":      "2025-06-01T10:00:00.000+0000",
					"LastModifiedDate": "2025-06-01T10:05:00.000+0000",
					"Who": map[string]any{
						"attributes": map[string]any{"type": "Lead"},
						"LeadSource": "Web",
						"Company":    "Acme Corp",
						"Email":      "jane@acme.com",
					},
				},
			},
		})
	})

	client, ts := newTestSFClient(t, handler)
	defer ts.Close()

	var tasks []TaskRecord
	err := client.Query(context.Background(), BuildTaskSOQL(nil), &tasks)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "00Txx", tasks[0].ID)
	assert.Equal(t, "00Qxx", tasks[0].WhoID)
	assert.Equal(t, "Lead Validation Complete", tasks[0].Subject)
	require.NotNil(t, tasks[0].Who)
	assert.Equal(t, "Web", tasks[0].Who.LeadSource)
	assert.Equal(t, "jane@acme.com", tasks[0].Who.Email)
}

func TestSFClient_Query_NoWho(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]any{
				{
					"attributes": map[string]any{"type": "Task"},
					"Id":         "00Tyy",
					"Subject":    "Lead Validation Complete",
					"Who":        nil,
				},
			},
		})
	})

	client, ts := newTestSFClient(t, handler)
	defer ts.Close()

	var tasks []TaskRecord
	err := client.Query(context.Background(), BuildTaskSOQL(nil), &tasks)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].Who)
}

func TestSFClient_Query_Error(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"message": "invalid SOQL", "errorCode": "MALFORMED_QUERY"},
		})
	})

	client, ts := newTestSFClient(t, handler)
	defer ts.Close()

	var tasks []TaskRecord
	err := client.Query(context.Background(), "INVALID SOQL", &tasks)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sf: query")
}

func TestQueryRecentLeads(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 2,
			"done":      true,
			"records": []map[string]any{
				{
					"attributes": map[string]any{"type": "Lead"},
					"Id":         "00Q01",
					"FirstName":  "Jane",
					"LastName":   "Doe",
					"Email":      "jane@acme.com",
					"Company":    "Acme Corp",
					"Status":     "Open",
				},
				{
					"attributes": map[string]any{"type": "Lead"},
					"Id":         "00Q02",
					"FirstName":  "John",
					"LastName":   "Smith",
					"Email":      "john@globex.com",
					"Company":    "Globex",
					"Status":     "Working",
				},
			},
		})
	})

	client, ts := newTestSFClient(t, handler)
	defer ts.Close()

	leads, err := QueryRecentLeads(context.Background(), client, nil, 50)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "00Q01", leads[0].ID)
	assert.Equal(t, "Jane", leads[0].FirstName)
	assert.Equal(t, "Globex", leads[1].Company)
}
