package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	alerts []models.Alert
	err    error

	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeStore) Insert(ctx context.Context, alert models.Alert) error {
	return nil
}

func (f *fakeStore) Query(ctx context.Context, from, to time.Time) ([]models.Alert, error) {
	f.gotFrom, f.gotTo = from, to
	return f.alerts, f.err
}

func sampleAlerts() []models.Alert {
	return []models.Alert{
		{ID: "c", Subreddit: "yoga", Sentiment: "negative", MatchedKeyword: "stress", Content: "so much stress", CreatedUTC: "2025-06-15T11:00:00"},
		{ID: "b", Subreddit: "Meditation", Sentiment: "positive", MatchedKeyword: "meditation", Content: "love meditation", CreatedUTC: "2025-06-15T10:00:00"},
		{ID: "a", Subreddit: "Meditation", Sentiment: "positive", MatchedKeyword: "yoga", Content: "yoga is calming", CreatedUTC: "2025-06-14T09:00:00"},
	}
}

func TestHandleAlerts_FiltersApplied(t *testing.T) {
	store := &fakeStore{alerts: sampleAlerts()}
	server := NewServer(store)

	req := httptest.NewRequest("GET", "/api/alerts?start=2025-06-14&end=2025-06-15&sentiment=positive", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	// Date range forwarded to the store.
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), store.gotFrom)
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC), store.gotTo)
}

func TestHandleAlerts_BadDateRejected(t *testing.T) {
	server := NewServer(&fakeStore{})

	req := httptest.NewRequest("GET", "/api/alerts?start=June-1st", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSummary(t *testing.T) {
	server := NewServer(&fakeStore{alerts: sampleAlerts()})

	req := httptest.NewRequest("GET", "/api/summary?start=2025-06-14&end=2025-06-15", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Sentiments["positive"])
	assert.Equal(t, 1, got.Sentiments["negative"])
	assert.Equal(t, 2, got.Subreddits["Meditation"])
	assert.Equal(t, 1, got.Heatmap["meditation"]["positive"])
	assert.Equal(t, 1, got.Heatmap["stress"]["negative"])
}

func TestBuildTrend(t *testing.T) {
	trend := BuildTrend(sampleAlerts())

	require.Len(t, trend, 2)
	assert.Equal(t, TrendPoint{Date: "2025-06-14", Positive: 1}, trend[0])
	assert.Equal(t, TrendPoint{Date: "2025-06-15", Positive: 1, Negative: 1}, trend[1])
}

func TestHandleExportCSV(t *testing.T) {
	server := NewServer(&fakeStore{alerts: sampleAlerts()})

	req := httptest.NewRequest("GET", "/export.csv?start=2025-06-14&end=2025-06-15", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "created_utc,sentiment,subreddit,matched_keyword,content,url", lines[0])
	assert.Contains(t, lines[1], "negative")
}

func TestHandleIndex_RendersTable(t *testing.T) {
	server := NewServer(&fakeStore{alerts: sampleAlerts()})

	req := httptest.NewRequest("GET", "/?start=2025-06-14&end=2025-06-15", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "3 alerts from 2025-06-14 to 2025-06-15")
	assert.Contains(t, body, "love meditation")
	assert.Contains(t, body, "r/yoga")
}

func TestHandleIndex_StoreErrorReported(t *testing.T) {
	server := NewServer(&fakeStore{err: assert.AnError})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
