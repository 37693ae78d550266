package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// SupabaseStore persists alerts to a Supabase table through the PostgREST API
type SupabaseStore struct {
	baseURL string
	apiKey  string
	table   string
	client  *resty.Client
}

// Ensure SupabaseStore implements AlertStore
var _ AlertStore = (*SupabaseStore)(nil)

// NewSupabaseStore creates a new Supabase-backed alert store.
func NewSupabaseStore(baseURL, apiKey, table string) (*SupabaseStore, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase key is required")
	}

	return &SupabaseStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		table:   table,
		client:  resty.New().SetTimeout(30 * time.Second),
	}, nil
}

// Insert writes a single alert row. Re-sending an id merges into the existing
// row, so retries after transient failures cannot duplicate alerts.
func (s *SupabaseStore) Insert(ctx context.Context, alert models.Alert) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("apikey", s.apiKey).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody(alert).
		Post(fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table))

	if err != nil {
		return fmt.Errorf("failed to insert alert %s: %w", alert.ID, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("supabase returned status %d for alert %s: %s", resp.StatusCode(), alert.ID, string(resp.Body()))
	}

	logrus.Debugf("Inserted alert %s into %s", alert.ID, s.table)
	return nil
}

// Query returns alerts created within [from, to], newest first.
func (s *SupabaseStore) Query(ctx context.Context, from, to time.Time) ([]models.Alert, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("apikey", s.apiKey).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetQueryParam("select", "*").
		SetQueryParamsFromValues(url.Values{
			"created_utc": {
				"gte." + from.UTC().Format("2006-01-02T15:04:05"),
				"lte." + to.UTC().Format("2006-01-02T15:04:05"),
			},
		}).
		SetQueryParam("order", "created_utc.desc").
		Get(fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table))

	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("supabase returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var alerts []models.Alert
	if err := json.Unmarshal(resp.Body(), &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}

	return alerts, nil
}
