package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when Reddit answers 429 on a listing request.
var ErrRateLimited = fmt.Errorf("reddit API rate limited")

// RedditSource implements the Source interface against the Reddit OAuth API
type RedditSource struct {
	clientID     string
	clientSecret string
	userAgent    string
	client       *resty.Client
	limiter      *rate.Limiter

	authURL string
	apiURL  string

	accessToken string
	tokenExpiry time.Time
}

// Ensure RedditSource implements Source
var _ Source = (*RedditSource)(nil)

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Kind string     `json:"kind"` // "t3" for posts, "t1" for comments
			Data redditItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Selftext  string  `json:"selftext"`
	Body      string  `json:"body"`
	Author    string  `json:"author"`
	Subreddit string  `json:"subreddit"`
	Permalink string  `json:"permalink"`
	Created   float64 `json:"created_utc"`
}

// NewRedditSource creates a new Reddit source. The limiter keeps the client
// inside Reddit's 60 requests/minute quota for app-only OAuth clients.
func NewRedditSource(clientID, clientSecret, userAgent string) *RedditSource {
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		client:       resty.New().SetTimeout(30 * time.Second),
		limiter:      rate.NewLimiter(rate.Every(time.Minute/60), 1),
		authURL:      "https://www.reddit.com/api/v1/access_token",
		apiURL:       "https://oauth.reddit.com",
	}
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

func (r *RedditSource) IsEnabled() bool {
	return r.clientID != "" && r.clientSecret != ""
}

// FetchPosts returns the newest posts in a subreddit, newest first.
func (r *RedditSource) FetchPosts(ctx context.Context, subreddit string, limit int) ([]models.Item, error) {
	return r.fetchListing(ctx, subreddit, "new", models.KindPost, limit)
}

// FetchComments returns the newest comments in a subreddit, newest first.
func (r *RedditSource) FetchComments(ctx context.Context, subreddit string, limit int) ([]models.Item, error) {
	return r.fetchListing(ctx, subreddit, "comments", models.KindComment, limit)
}

func (r *RedditSource) fetchListing(ctx context.Context, subreddit, listing, kind string, limit int) ([]models.Item, error) {
	if !r.IsEnabled() {
		return nil, fmt.Errorf("reddit source disabled: missing credentials")
	}

	if err := r.ensureToken(ctx); err != nil {
		return nil, fmt.Errorf("reddit authentication failed: %w", err)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	listingURL := fmt.Sprintf("%s/r/%s/%s.json?limit=%d", r.apiURL, subreddit, listing, limit)

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.accessToken).
		SetHeader("User-Agent", r.userAgent).
		Get(listingURL)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch r/%s %s listing: %w", subreddit, listing, err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("r/%s %s listing: %w", subreddit, listing, ErrRateLimited)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("reddit API returned status %d for r/%s %s listing", resp.StatusCode(), subreddit, listing)
	}

	var parsed redditListing
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode r/%s %s listing: %w", subreddit, listing, err)
	}

	items := make([]models.Item, 0, len(parsed.Data.Children))
	for _, child := range parsed.Data.Children {
		data := child.Data

		item := models.Item{
			ID:        data.ID,
			Kind:      kind,
			Subreddit: data.Subreddit,
			Author:    data.Author,
			Permalink: data.Permalink,
			CreatedAt: time.Unix(int64(data.Created), 0).UTC(),
		}

		if kind == models.KindPost {
			item.Title = data.Title
			item.Body = data.Selftext
		} else {
			item.Body = data.Body
		}

		items = append(items, item)
	}

	logrus.Debugf("Fetched %d %ss from r/%s", len(items), kind, subreddit)
	return items, nil
}

// ensureToken authenticates with the client-credentials grant and caches the
// token until shortly before expiry.
func (r *RedditSource) ensureToken(ctx context.Context) error {
	if r.accessToken != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", r.userAgent).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post(r.authURL)

	if err != nil {
		return err
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("token endpoint returned status %d", resp.StatusCode())
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return err
	}

	if authResp.AccessToken == "" {
		return fmt.Errorf("token endpoint returned empty access token")
	}

	r.accessToken = authResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - time.Minute)
	return nil
}
