package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithRetryWait(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)
	return c, srv
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/only"} {
		_, err := NewClient(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c, err := NewClient("http://localhost:8080",
		WithHTTPClient(hc),
		WithUserAgent("custom-agent"),
		WithRetryMax(0),
	)
	require.NoError(t, err)

	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, "custom-agent", c.userAgent)
	assert.Equal(t, 0, c.retryMax)
}

func TestGetReview(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/reviews/r1", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text_index": "r1",
			"medication": "Humira (adalimumab) for Crohn's Disease, Maintenance",
			"comment": "helped a lot",
			"rate": 9,
			"treatment": "Humira",
			"disease": "Crohn's Disease",
			"antibody": "adalimumab",
			"treatment_type": "Maintenance",
			"tokens": ["helped", "lot"],
			"keywords": ["helped lot"],
			"run_id": "run-1"
		}`))
	}))

	got, err := c.GetReview(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, "Humira", got.Treatment)
	assert.Equal(t, "Crohn's Disease", got.Disease)
	assert.Equal(t, []string{"helped", "lot"}, got.Tokens)
}

func TestGetReview_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"REV_003","message":"review not found"}`))
	}))

	_, err := c.GetReview(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "REV_003", apiErr.Code)
	assert.Equal(t, "review not found", apiErr.Message)
}

func TestListMarkerEvents_Query(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/markers", r.URL.Path)
		assert.Equal(t, "pain", r.URL.Query().Get("topic"))
		assert.Equal(t, "Crohn's Disease", r.URL.Query().Get("disease"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[{"id":"e1","text_index":"r1","marker":"stomach cramps","topic":"pain","disease":"Crohn's Disease","run_id":"run-1"}],"count":1}`))
	}))

	events, err := c.ListMarkerEvents(context.Background(), ListOptions{
		Topic:   "pain",
		Disease: "Crohn's Disease",
		Limit:   25,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "stomach cramps", events[0].Marker)
}

func TestListChangeEvents_ScoreBounds(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/treatment-changes", r.URL.Path)
		assert.Equal(t, "-2", r.URL.Query().Get("min_score"))
		assert.Equal(t, "0", r.URL.Query().Get("max_score"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[{"id":"c1","text_index":"r2","previous_treatment":"Remicade","score":-1,"run_id":"run-1"}],"count":1}`))
	}))

	minScore, maxScore := -2, 0
	events, err := c.ListChangeEvents(context.Background(), ListOptions{MinScore: &minScore, MaxScore: &maxScore})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Remicade", events[0].PreviousTreatment)
	assert.Equal(t, -1, events[0].Score)
}

func TestCreateRun(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/runs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"source":"/data/reviews.csv","status":"accepted"}`))
	}))

	accepted, err := c.CreateRun(context.Background(), "/data/reviews.csv")
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)
	assert.Equal(t, "/data/reviews.csv", accepted.Source)
}

func TestCreateRun_EmptySource(t *testing.T) {
	c, err := NewClient("http://localhost:8080")
	require.NoError(t, err)

	_, err = c.CreateRun(context.Background(), "")
	assert.Error(t, err)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"run-1","source":"/data/reviews.csv","row_count":2,"status":"finished"}`))
	}))

	run, err := c.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.EqualValues(t, "run-1", run.ID)
	assert.Equal(t, 2, run.RowCount)
}

func TestDo_NoRetryOnClientError(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"COMMON_002","message":"bad request"}`))
	}))

	_, err := c.GetRun(context.Background(), "run-1")
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestDo_ExhaustedRetries(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"COMMON_001","message":"boom"}`))
	}))

	err := c.Health(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("access denied"))
	}))

	err := c.Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "access denied", apiErr.Message)
}

func TestHealth(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, c.Health(context.Background()))
}
