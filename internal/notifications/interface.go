package notifications

import "github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"

// Notifier is the contract for digest delivery channels
type Notifier interface {
	SendReport(report *models.Report) error
}
