package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedditSource_GetName(t *testing.T) {
	source := NewRedditSource("client_id", "client_secret", "test-agent/1.0")
	assert.Equal(t, "reddit", source.GetName())
}

func TestRedditSource_IsEnabled(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		expected     bool
	}{
		{
			name:         "Both credentials provided",
			clientID:     "client_id",
			clientSecret: "client_secret",
			expected:     true,
		},
		{
			name:         "Missing client ID",
			clientID:     "",
			clientSecret: "client_secret",
			expected:     false,
		},
		{
			name:         "Missing client secret",
			clientID:     "client_id",
			clientSecret: "",
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewRedditSource(tt.clientID, tt.clientSecret, "test-agent/1.0")
			assert.Equal(t, tt.expected, source.IsEnabled())
		})
	}
}

// newTestSource points a RedditSource at local auth and API servers.
func newTestSource(t *testing.T, apiHandler http.HandlerFunc) *RedditSource {
	t.Helper()

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)

		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client_id", username)
		assert.Equal(t, "client_secret", password)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
	}))
	t.Cleanup(authServer.Close)

	apiServer := httptest.NewServer(apiHandler)
	t.Cleanup(apiServer.Close)

	source := NewRedditSource("client_id", "client_secret", "test-agent/1.0")
	source.authURL = authServer.URL
	source.apiURL = apiServer.URL
	return source
}

func TestRedditSource_FetchPosts(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/Meditation/new.json", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"data": {
				"children": [
					{
						"kind": "t3",
						"data": {
							"id": "post1",
							"title": "Morning meditation routine",
							"selftext": "I meditate every morning",
							"author": "user1",
							"subreddit": "Meditation",
							"permalink": "/r/Meditation/comments/post1",
							"created_utc": 1750000000
						}
					}
				]
			}
		}`)
	})

	posts, err := source.FetchPosts(context.Background(), "Meditation", 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, "post1", post.ID)
	assert.Equal(t, models.KindPost, post.Kind)
	assert.Equal(t, "Meditation", post.Subreddit)
	assert.Equal(t, "Morning meditation routine", post.Title)
	assert.Equal(t, "I meditate every morning", post.Body)
	assert.Equal(t, "user1", post.Author)
	assert.Equal(t, "/r/Meditation/comments/post1", post.Permalink)
	assert.Equal(t, time.Unix(1750000000, 0).UTC(), post.CreatedAt)
	assert.Equal(t, "Morning meditation routine\n\nI meditate every morning", post.Text())
}

func TestRedditSource_FetchComments(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/Meditation/comments.json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"data": {
				"children": [
					{
						"kind": "t1",
						"data": {
							"id": "comment1",
							"body": "meditation helps with stress",
							"author": "user2",
							"subreddit": "Meditation",
							"permalink": "/r/Meditation/comments/post1/comment1",
							"created_utc": 1750000100
						}
					}
				]
			}
		}`)
	})

	comments, err := source.FetchComments(context.Background(), "Meditation", 50)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	comment := comments[0]
	assert.Equal(t, "comment1", comment.ID)
	assert.Equal(t, models.KindComment, comment.Kind)
	assert.Equal(t, "meditation helps with stress", comment.Body)
	assert.Equal(t, "meditation helps with stress", comment.Text())
}

func TestRedditSource_RateLimitSurfaced(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := source.FetchPosts(context.Background(), "Meditation", 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestRedditSource_TokenReused(t *testing.T) {
	authCalls := 0

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
	}))
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"children":[]}}`)
	}))
	defer apiServer.Close()

	source := NewRedditSource("client_id", "client_secret", "test-agent/1.0")
	source.authURL = authServer.URL
	source.apiURL = apiServer.URL
	// Relax the limiter so the test doesn't wait on the real quota.
	source.limiter.SetLimit(1000)

	_, err := source.FetchPosts(context.Background(), "Meditation", 50)
	require.NoError(t, err)

	_, err = source.FetchComments(context.Background(), "Meditation", 50)
	require.NoError(t, err)

	assert.Equal(t, 1, authCalls)
}

func TestRedditSource_DisabledFetchFails(t *testing.T) {
	source := NewRedditSource("", "", "test-agent/1.0")

	_, err := source.FetchPosts(context.Background(), "Meditation", 50)
	assert.Error(t, err)
}
