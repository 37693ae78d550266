package sources

import (
	"context"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
)

// Source interface defines the contract for a monitored content source
type Source interface {
	GetName() string
	IsEnabled() bool
	FetchPosts(ctx context.Context, subreddit string, limit int) ([]models.Item, error)
	FetchComments(ctx context.Context, subreddit string, limit int) ([]models.Item, error)
}
