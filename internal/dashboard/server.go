package dashboard

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

// Server renders the alert dashboard: an HTML table view over the sink plus
// JSON aggregate endpoints and a CSV export.
type Server struct {
	store  storage.AlertStore
	router *mux.Router
}

// Summary aggregates alert counts for the dashboard charts.
type Summary struct {
	Total      int                       `json:"total"`
	Sentiments map[string]int            `json:"sentiments"`
	Subreddits map[string]int            `json:"subreddits"`
	Keywords   map[string]int            `json:"keywords"`
	// Heatmap is keyword -> sentiment -> count.
	Heatmap map[string]map[string]int `json:"heatmap"`
}

// TrendPoint is one day's sentiment counts.
type TrendPoint struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

// NewServer creates a dashboard server over the given alert store.
func NewServer(store storage.AlertStore) *Server {
	s := &Server{
		store:  store,
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/api/alerts", s.handleAlerts).Methods("GET")
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/api/trend", s.handleTrend).Methods("GET")
	s.router.HandleFunc("/export.csv", s.handleExportCSV).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	return s
}

// Router returns the HTTP handler for the dashboard.
func (s *Server) Router() http.Handler {
	return s.router
}

// load fetches alerts for the date range and applies the in-memory
// sentiment/subreddit/keyword filters, mirroring the table view's sidebar.
func (s *Server) load(r *http.Request, params filterParams) ([]models.Alert, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	alerts, err := s.store.Query(ctx, params.start, params.end)
	if err != nil {
		return nil, err
	}

	return filterAlerts(alerts, params), nil
}

type filterParams struct {
	start     time.Time
	end       time.Time
	sentiment string
	subreddit string
	keyword   string
}

// parseFilters reads start/end dates (YYYY-MM-DD) and the optional value
// filters. The default range is today in UTC, like the original table view.
func parseFilters(r *http.Request) (filterParams, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	params := filterParams{
		start:     today,
		end:       today.Add(24*time.Hour - time.Second),
		sentiment: r.URL.Query().Get("sentiment"),
		subreddit: r.URL.Query().Get("subreddit"),
		keyword:   r.URL.Query().Get("keyword"),
	}

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return params, fmt.Errorf("invalid start date %q: %w", v, err)
		}
		params.start = parsed
	}

	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return params, fmt.Errorf("invalid end date %q: %w", v, err)
		}
		params.end = parsed.Add(24*time.Hour - time.Second)
	}

	return params, nil
}

func filterAlerts(alerts []models.Alert, params filterParams) []models.Alert {
	filtered := make([]models.Alert, 0, len(alerts))

	for _, alert := range alerts {
		if params.sentiment != "" && alert.Sentiment != params.sentiment {
			continue
		}
		if params.subreddit != "" && !strings.EqualFold(alert.Subreddit, params.subreddit) {
			continue
		}
		if params.keyword != "" && !strings.EqualFold(alert.MatchedKeyword, params.keyword) {
			continue
		}
		filtered = append(filtered, alert)
	}

	return filtered
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	params, err := parseFilters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := s.load(r, params)
	if err != nil {
		s.renderError(w, err)
		return
	}

	data := indexData{
		Alerts:  alerts,
		Total:   len(alerts),
		Start:   params.start.Format("2006-01-02"),
		End:     params.end.Format("2006-01-02"),
		Filters: params,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logrus.Errorf("Failed to render dashboard: %v", err)
	}
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	params, err := parseFilters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := s.load(r, params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, alerts)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	params, err := parseFilters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := s.load(r, params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, BuildSummary(alerts))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	params, err := parseFilters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := s.load(r, params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, BuildTrend(alerts))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	params, err := parseFilters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := s.load(r, params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reddit_alerts.csv"`)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"created_utc", "sentiment", "subreddit", "matched_keyword", "content", "url"})
	for _, alert := range alerts {
		writer.Write([]string{
			alert.CreatedUTC,
			alert.Sentiment,
			alert.Subreddit,
			alert.MatchedKeyword,
			alert.Content,
			alert.URL,
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

// BuildSummary computes the count breakdowns and the keyword-sentiment heatmap.
func BuildSummary(alerts []models.Alert) Summary {
	summary := Summary{
		Total:      len(alerts),
		Sentiments: make(map[string]int),
		Subreddits: make(map[string]int),
		Keywords:   make(map[string]int),
		Heatmap:    make(map[string]map[string]int),
	}

	for _, alert := range alerts {
		summary.Sentiments[alert.Sentiment]++
		summary.Subreddits[alert.Subreddit]++
		summary.Keywords[alert.MatchedKeyword]++

		if summary.Heatmap[alert.MatchedKeyword] == nil {
			summary.Heatmap[alert.MatchedKeyword] = make(map[string]int)
		}
		summary.Heatmap[alert.MatchedKeyword][alert.Sentiment]++
	}

	return summary
}

// BuildTrend computes per-day sentiment counts, oldest day first.
func BuildTrend(alerts []models.Alert) []TrendPoint {
	byDate := make(map[string]*TrendPoint)
	var order []string

	for i := len(alerts) - 1; i >= 0; i-- {
		alert := alerts[i]

		date := alert.CreatedUTC
		if len(date) >= 10 {
			date = date[:10]
		}

		point, ok := byDate[date]
		if !ok {
			point = &TrendPoint{Date: date}
			byDate[date] = point
			order = append(order, date)
		}

		switch alert.Sentiment {
		case "positive":
			point.Positive++
		case "negative":
			point.Negative++
		}
	}

	trend := make([]TrendPoint, 0, len(order))
	for _, date := range order {
		trend = append(trend, *byDate[date])
	}

	return trend
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	logrus.Errorf("Dashboard request failed: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	logrus.Errorf("Dashboard request failed: %v", err)
	w.WriteHeader(http.StatusBadGateway)
	fmt.Fprintf(w, "failed to load data: %v", err)
}
