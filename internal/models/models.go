package models

import "time"

// Item kinds as reported by the Reddit listing endpoints.
const (
	KindPost    = "post"
	KindComment = "comment"
)

// Item represents a single post or comment pulled from a monitored subreddit
type Item struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "post" or "comment"
	Subreddit string    `json:"subreddit"`
	Title     string    `json:"title"` // empty for comments
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Permalink string    `json:"permalink"` // relative path, may be empty
	CreatedAt time.Time `json:"created_at"`
}

// Text returns the analyzable text of the item: title and body for posts,
// body alone for comments.
func (i Item) Text() string {
	if i.Kind == KindPost && i.Title != "" {
		if i.Body == "" {
			return i.Title
		}
		return i.Title + "\n\n" + i.Body
	}
	return i.Body
}

// URL returns the absolute Reddit URL for the item, or "" when the source
// supplied no permalink.
func (i Item) URL() string {
	if i.Permalink == "" {
		return ""
	}
	return "https://reddit.com" + i.Permalink
}

// Alert is the record persisted to the sink for a keyword-matched,
// sentiment-scored item. Field names match the Supabase table columns.
type Alert struct {
	ID             string `json:"id"`
	Subreddit      string `json:"subreddit"`
	Content        string `json:"content"`
	Sentiment      string `json:"sentiment"` // "positive" or "negative"
	MatchedKeyword string `json:"matched_keyword"`
	URL            string `json:"url"`
	CreatedUTC     string `json:"created_utc"` // ISO-8601, UTC, no offset
}

// Report summarizes a day's alerts for the digest notification.
type Report struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	Period         string         `json:"period"`
	TotalAlerts    int            `json:"total_alerts"`
	Alerts         []Alert        `json:"alerts"`
	SentimentCount map[string]int `json:"sentiment_count"`
	SubredditCount map[string]int `json:"subreddit_count"`
	KeywordCount   map[string]int `json:"keyword_count"`
}
