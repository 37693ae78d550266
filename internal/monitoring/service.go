package monitoring

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/config"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/sentiment"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/sources"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

// Outcome is the per-item processing result. Every fetched item resolves to
// exactly one outcome, so skip and failure counts are observable in metrics
// instead of only in logs.
type Outcome string

const (
	OutcomeEmitted    Outcome = "emitted"
	OutcomeDuplicate  Outcome = "skipped_duplicate"
	OutcomeTooOld     Outcome = "skipped_too_old"
	OutcomeNoKeyword  Outcome = "skipped_no_keyword"
	OutcomeSuppressed Outcome = "skipped_neutral"
	OutcomeFailed     Outcome = "failed"
)

// Metrics holds monitoring metrics
type Metrics struct {
	CyclesCompleted    int             `json:"cycles_completed"`
	CycleErrors        int             `json:"cycle_errors"`
	LastRun            time.Time       `json:"last_run"`
	LastRunDuration    string          `json:"last_run_duration"`
	Outcomes           map[Outcome]int `json:"outcomes"`
	SentimentBreakdown map[string]int  `json:"sentiment_breakdown"`
	SubredditEmits     map[string]int  `json:"subreddit_emits"`
}

// Service runs the poll/dedup/classify/emit cycle. All loop state (the seen-id
// set, the day cutoff) lives here and is created once at startup.
type Service struct {
	config     *config.Config
	source     sources.Source
	store      storage.AlertStore
	classifier *sentiment.Classifier

	now      func() time.Time
	seen     map[string]struct{}
	dayStart time.Time

	metrics *Metrics
	mu      sync.RWMutex

	// cycleMu serializes cycles: the loop and a manual trigger must not
	// interleave over the seen set.
	cycleMu sync.Mutex
}

// NewService creates a new monitoring service. The day cutoff is captured here
// and intentionally never recomputed: a process started on Monday keeps gating
// against Monday's midnight until it is restarted.
func NewService(cfg *config.Config, source sources.Source, store storage.AlertStore, classifier *sentiment.Classifier) *Service {
	return newService(cfg, source, store, classifier, time.Now)
}

func newService(cfg *config.Config, source sources.Source, store storage.AlertStore, classifier *sentiment.Classifier, now func() time.Time) *Service {
	start := now().UTC()

	return &Service{
		config:     cfg,
		source:     source,
		store:      store,
		classifier: classifier,
		now:        now,
		seen:       make(map[string]struct{}),
		dayStart:   time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		metrics: &Metrics{
			Outcomes:           make(map[Outcome]int),
			SentimentBreakdown: make(map[string]int),
			SubredditEmits:     make(map[string]int),
		},
	}
}

// Run polls forever: one cycle over all subreddits, then a fixed sleep. A
// failed cycle sleeps the longer backoff and restarts from the first
// subreddit. Returns only when the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	logrus.Infof("Monitor started: %d subreddits, %d keywords, day cutoff %s",
		len(s.config.Subreddits), len(s.config.Keywords), s.dayStart.Format("2006-01-02"))

	for {
		sleep := s.config.PollInterval

		if err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.Errorf("Cycle failed: %v", err)
			sleep = s.config.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			logrus.Info("Monitor stopped")
			return
		case <-time.After(sleep):
		}
	}
}

// RunCycle performs one full pass over all configured subreddits. A listing
// fetch failure aborts the cycle; item-level failures do not.
func (s *Service) RunCycle(ctx context.Context) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := s.now()
	counts := make(map[Outcome]int)

	for _, subreddit := range s.config.Subreddits {
		posts, err := s.source.FetchPosts(ctx, subreddit, s.config.PageLimit)
		if err != nil {
			s.recordCycleError()
			return err
		}

		for _, item := range posts {
			counts[s.processItem(ctx, item)]++
		}

		comments, err := s.source.FetchComments(ctx, subreddit, s.config.PageLimit)
		if err != nil {
			s.recordCycleError()
			return err
		}

		for _, item := range comments {
			counts[s.processItem(ctx, item)]++
		}
	}

	s.recordCycle(counts, s.now().Sub(start))

	logrus.Infof("Cycle complete in %v: %d emitted, %d duplicate, %d too old, %d no keyword, %d neutral, %d failed",
		s.now().Sub(start), counts[OutcomeEmitted], counts[OutcomeDuplicate], counts[OutcomeTooOld],
		counts[OutcomeNoKeyword], counts[OutcomeSuppressed], counts[OutcomeFailed])

	return nil
}

// processItem runs a single item through dedup, the day gate, keyword
// matching, classification and the sink write.
func (s *Service) processItem(ctx context.Context, item models.Item) Outcome {
	if outcome, ok := s.admit(item); !ok {
		return outcome
	}

	text := item.Text()

	keyword, ok := s.matchKeyword(text)
	if !ok {
		return OutcomeNoKeyword
	}

	label, ok := s.classifier.Classify(text)
	if !ok {
		return OutcomeSuppressed
	}

	alert := s.buildAlert(item, text, keyword, label)

	if err := s.store.Insert(ctx, alert); err != nil {
		logrus.Errorf("Failed to write alert for %s %s: %v", item.Kind, item.ID, err)
		// Unmark so the next cycle retries; the sink upserts on id, so a
		// late-arriving duplicate merges instead of doubling up.
		s.forget(item.ID)
		return OutcomeFailed
	}

	s.recordEmit(alert)
	logrus.Infof("[LOGGED] %s | r/%s | %s | %s", strings.ToUpper(label), alert.Subreddit, keyword, alert.URL)
	return OutcomeEmitted
}

// admit applies the dedup set and the day gate. It returns ok exactly once per
// id per process lifetime, and only for items created on or after the day
// cutoff. Admitted ids are marked seen immediately.
func (s *Service) admit(item models.Item) (Outcome, bool) {
	if _, dup := s.seen[item.ID]; dup {
		return OutcomeDuplicate, false
	}

	if item.CreatedAt.Before(s.dayStart) {
		return OutcomeTooOld, false
	}

	s.seen[item.ID] = struct{}{}
	return "", true
}

func (s *Service) forget(id string) {
	delete(s.seen, id)
}

// matchKeyword returns the first configured keyword (in list order) contained
// in the lower-cased text. Later matches in the text do not win over earlier
// list positions.
func (s *Service) matchKeyword(text string) (string, bool) {
	lowered := strings.ToLower(text)

	for _, keyword := range s.config.Keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return keyword, true
		}
	}

	return "", false
}

func (s *Service) buildAlert(item models.Item, text, keyword, label string) models.Alert {
	content := text
	if runes := []rune(content); len(runes) > s.config.MaxContentLength {
		content = string(runes[:s.config.MaxContentLength])
	}

	return models.Alert{
		ID:             item.ID,
		Subreddit:      item.Subreddit,
		Content:        content,
		Sentiment:      label,
		MatchedKeyword: keyword,
		URL:            item.URL(),
		CreatedUTC:     item.CreatedAt.UTC().Format("2006-01-02T15:04:05"),
	}
}

func (s *Service) recordEmit(alert models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.SentimentBreakdown[alert.Sentiment]++
	s.metrics.SubredditEmits[alert.Subreddit]++
}

func (s *Service) recordCycle(counts map[Outcome]int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.CyclesCompleted++
	s.metrics.LastRun = s.now()
	s.metrics.LastRunDuration = duration.String()

	for outcome, n := range counts {
		s.metrics.Outcomes[outcome] += n
	}
}

func (s *Service) recordCycleError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.CycleErrors++
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
