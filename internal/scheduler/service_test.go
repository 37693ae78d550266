package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/config"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	alerts  []models.Alert
	queried bool
}

func (f *fakeStore) Insert(ctx context.Context, alert models.Alert) error {
	return nil
}

func (f *fakeStore) Query(ctx context.Context, from, to time.Time) ([]models.Alert, error) {
	f.queried = true
	return f.alerts, nil
}

type fakeNotifier struct {
	sent *models.Report
}

func (f *fakeNotifier) SendReport(report *models.Report) error {
	f.sent = report
	return nil
}

func TestStart_DisabledWithoutChannels(t *testing.T) {
	service := NewService(&config.Config{}, &fakeStore{}, &fakeNotifier{})

	require.NoError(t, service.Start())
	defer service.Stop()
}

func TestRunDigest_QueriesAndSends(t *testing.T) {
	store := &fakeStore{alerts: []models.Alert{
		{ID: "1", Subreddit: "Meditation", Sentiment: "positive", MatchedKeyword: "meditation"},
	}}
	notifier := &fakeNotifier{}

	service := NewService(&config.Config{WebhookURL: "https://hooks.example.com"}, store, notifier)

	require.NoError(t, service.runDigest())

	assert.True(t, store.queried)
	require.NotNil(t, notifier.sent)
	assert.Equal(t, 1, notifier.sent.TotalAlerts)
	assert.Equal(t, "daily", notifier.sent.Period)
}
