package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadval-cli/internal/model"
	"github.com/sells-group/leadval-cli/internal/store"
)

// stubStore records the filters it receives and returns canned data.
type stubStore struct {
	lastFilter store.ValidationFilter
	lastLimit  int
	err        error
}

func (s *stubStore) UpsertTasks(ctx context.Context, tasks []model.Task) (int64, error) {
	return 0, nil
}

func (s *stubStore) LoadTasks(ctx context.Context, limit int) ([]model.Task, error) {
	return nil, nil
}

func (s *stubStore) UpsertValidations(ctx context.Context, recs []model.ParsedValidation) (int64, error) {
	return 0, nil
}

func (s *stubStore) ListValidations(ctx context.Context, filter store.ValidationFilter) ([]model.ParsedValidation, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	return []model.ParsedValidation{
		{TaskID: "00T1", WhoID: "00Q1", LeadSource: "Web"},
		{TaskID: "00T2", WhoID: "00Q2", LeadSource: "Referral"},
	}, nil
}

func (s *stubStore) Summary(ctx context.Context) (*store.AggregateSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &store.AggregateSummary{
		TotalValidations: 42,
		HighQuality:      10,
		LowQuality:       32,
		ByStatus:         map[string]int{"Good": 10},
		TopSources:       []store.SourceCount{{LeadSource: "Web", Count: 30}},
	}, nil
}

func (s *stubStore) StartRun(ctx context.Context) (*model.EtlRun, error) { return nil, nil }

func (s *stubStore) CompleteRun(ctx context.Context, runID string, stats model.RunStats) error {
	return nil
}

func (s *stubStore) FailRun(ctx context.Context, runID string, cause error) error { return nil }

func (s *stubStore) ListRuns(ctx context.Context, limit int) ([]model.EtlRun, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return []model.EtlRun{
		{ID: "run-1", Status: model.RunStatusComplete, StartedAt: time.Now().UTC()},
	}, nil
}

func (s *stubStore) Migrate(ctx context.Context) error { return nil }
func (s *stubStore) Close() error                      { return nil }

func doRequest(t *testing.T, st store.Store, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	New(st).Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, &stubStore{}, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListValidations(t *testing.T) {
	st := &stubStore{}
	rec := doRequest(t, st, "/api/validations?source=Web&errors=true&limit=5&offset=10")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, store.ValidationFilter{
		LeadSource: "Web",
		Errors:     store.ErrorsOnly,
		Limit:      5,
		Offset:     10,
	}, st.lastFilter)

	var body struct {
		Count       int                      `json:"count"`
		Validations []model.ParsedValidation `json:"validations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Validations, 2)
	assert.Equal(t, "00T1", body.Validations[0].TaskID)
}

func TestListValidations_Defaults(t *testing.T) {
	st := &stubStore{}
	rec := doRequest(t, st, "/api/validations")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, defaultListLimit, st.lastFilter.Limit)
	assert.Equal(t, 0, st.lastFilter.Offset)
	// No errors param means error records are included.
	assert.Equal(t, store.ErrorsAll, st.lastFilter.Errors)
}

func TestListValidations_ExcludeErrors(t *testing.T) {
	st := &stubStore{}
	rec := doRequest(t, st, "/api/validations?errors=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.ErrorsNone, st.lastFilter.Errors)
}

func TestListValidations_BadLimitFallsBack(t *testing.T) {
	st := &stubStore{}
	rec := doRequest(t, st, "/api/validations?limit=abc&offset=-3")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, defaultListLimit, st.lastFilter.Limit)
	assert.Equal(t, 0, st.lastFilter.Offset)
}

func TestListValidations_StoreError(t *testing.T) {
	st := &stubStore{err: assert.AnError}
	rec := doRequest(t, st, "/api/validations")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestSummary(t *testing.T) {
	rec := doRequest(t, &stubStore{}, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary store.AggregateSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 42, summary.TotalValidations)
	assert.Equal(t, 10, summary.HighQuality)
	require.Len(t, summary.TopSources, 1)
	assert.Equal(t, "Web", summary.TopSources[0].LeadSource)
}

func TestListRuns(t *testing.T) {
	st := &stubStore{}
	rec := doRequest(t, st, "/api/runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, st.lastLimit)

	var body struct {
		Count int            `json:"count"`
		Runs  []model.EtlRun `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "run-1", body.Runs[0].ID)
}

func TestNotFound(t *testing.T) {
	rec := doRequest(t, &stubStore{}, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
