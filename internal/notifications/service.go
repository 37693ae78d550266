package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/config"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service sends the daily digest via configured channels (email, webhook)
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// BuildDailyReport aggregates a day's alerts into a digest report.
func BuildDailyReport(alerts []models.Alert, generatedAt time.Time) *models.Report {
	report := &models.Report{
		GeneratedAt:    generatedAt,
		Period:         "daily",
		TotalAlerts:    len(alerts),
		Alerts:         alerts,
		SentimentCount: make(map[string]int),
		SubredditCount: make(map[string]int),
		KeywordCount:   make(map[string]int),
	}

	for _, alert := range alerts {
		report.SentimentCount[alert.Sentiment]++
		report.SubredditCount[alert.Subreddit]++
		report.KeywordCount[alert.MatchedKeyword]++
	}

	return report
}

// SendReport sends a report via all configured notification channels
func (s *Service) SendReport(report *models.Report) error {
	var errors []string

	if s.config.WebhookURL != "" {
		if err := s.sendToWebhook(report); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errors = append(errors, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent digest to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(report *models.Report) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(report).
		Post(s.config.WebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post digest: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("Reddit Sentiment Digest - %s (%d alerts)",
		report.GeneratedAt.Format("Jan 2, 2006"), report.TotalAlerts)

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailHTML(report *models.Report) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reddit Sentiment Digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #ff4500; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .alert { border-left: 4px solid #605e5c; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .alert-meta { color: #666; font-size: 0.9em; }
        .positive { border-left-color: #107c10; }
        .negative { border-left-color: #d13438; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Reddit Sentiment Digest</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Total Alerts:</strong> {{.TotalAlerts}}</p>
        {{range $sentiment, $count := .SentimentCount}}
            <p><strong>{{$sentiment | title}}:</strong> {{$count}}</p>
        {{end}}
    </div>

    {{if .Alerts}}
    <h2>Alerts</h2>
    {{range $index, $alert := .Alerts}}
        {{if lt $index 20}}
        <div class="alert {{$alert.Sentiment}}">
            <div class="alert-meta">
                r/{{$alert.Subreddit}} | {{$alert.MatchedKeyword}} | {{$alert.CreatedUTC}}
                {{if $alert.URL}} | <a href="{{$alert.URL}}">view</a>{{end}}
            </div>
            <p>{{$alert.Content | truncate 200}}</p>
        </div>
        {{end}}
    {{end}}
    {{end}}

    <hr>
    <p><small>This digest was generated automatically by the Reddit sentiment bot.</small></p>
</body>
</html>
`

	t := template.New("digest").Funcs(template.FuncMap{
		"title": strings.Title,
		"truncate": func(length int, s string) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
	})

	t, err := t.Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.Report) string {
	var text strings.Builder

	text.WriteString("Reddit Sentiment Digest\n")
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Alerts: %d\n", report.TotalAlerts))

	for sentiment, count := range report.SentimentCount {
		text.WriteString(fmt.Sprintf("%s: %d\n", strings.Title(sentiment), count))
	}

	if len(report.Alerts) > 0 {
		text.WriteString("\nALERTS\n")
		text.WriteString("======\n")

		limit := 20
		if len(report.Alerts) < limit {
			limit = len(report.Alerts)
		}

		for i := 0; i < limit; i++ {
			alert := report.Alerts[i]
			text.WriteString(fmt.Sprintf("\n%d. [%s] r/%s | %s | %s\n",
				i+1, strings.ToUpper(alert.Sentiment), alert.Subreddit, alert.MatchedKeyword, alert.CreatedUTC))

			content := alert.Content
			if len(content) > 200 {
				content = content[:200] + "..."
			}
			text.WriteString(fmt.Sprintf("   %s\n", content))

			if alert.URL != "" {
				text.WriteString(fmt.Sprintf("   %s\n", alert.URL))
			}
		}
	}

	text.WriteString("\n---\nThis digest was generated automatically by the Reddit sentiment bot.\n")

	return text.String()
}
