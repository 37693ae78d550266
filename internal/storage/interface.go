package storage

import (
	"context"
	"time"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
)

// AlertStore is the contract for the alert sink: one append-only table with
// insert-by-POST and range queries by creation time.
type AlertStore interface {
	Insert(ctx context.Context, alert models.Alert) error
	Query(ctx context.Context, from, to time.Time) ([]models.Alert, error)
}
