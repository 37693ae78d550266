package dashboard

import (
	"html/template"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/models"
)

type indexData struct {
	Alerts  []models.Alert
	Total   int
	Start   string
	End     string
	Filters filterParams
}

var indexTemplate = template.Must(template.New("index").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reddit Sentiment Alerts</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #ff4500; color: white; padding: 20px; border-radius: 5px; }
        form { margin: 20px 0; }
        input, select { margin-right: 10px; padding: 4px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; vertical-align: top; }
        th { background-color: #f5f5f5; }
        .positive { color: #107c10; font-weight: bold; }
        .negative { color: #d13438; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Reddit Sentiment Alert Dashboard</h1>
        <p>{{.Total}} alerts from {{.Start}} to {{.End}}</p>
    </div>

    <form method="GET" action="/">
        <label>Start <input type="date" name="start" value="{{.Start}}"></label>
        <label>End <input type="date" name="end" value="{{.End}}"></label>
        <label>Sentiment
            <select name="sentiment">
                <option value="">all</option>
                <option value="positive">positive</option>
                <option value="negative">negative</option>
            </select>
        </label>
        <label>Subreddit <input type="text" name="subreddit"></label>
        <label>Keyword <input type="text" name="keyword"></label>
        <button type="submit">Filter</button>
        <a href="/export.csv?start={{.Start}}&end={{.End}}">Download CSV</a>
    </form>

    {{if .Alerts}}
    <table>
        <tr>
            <th>Created (UTC)</th>
            <th>Sentiment</th>
            <th>Subreddit</th>
            <th>Keyword</th>
            <th>Content</th>
            <th>Link</th>
        </tr>
        {{range .Alerts}}
        <tr>
            <td>{{.CreatedUTC}}</td>
            <td class="{{.Sentiment}}">{{.Sentiment}}</td>
            <td>r/{{.Subreddit}}</td>
            <td>{{.MatchedKeyword}}</td>
            <td>{{.Content}}</td>
            <td>{{if .URL}}<a href="{{.URL}}">view</a>{{end}}</td>
        </tr>
        {{end}}
    </table>
    {{else}}
    <p>No alerts for the selected range.</p>
    {{end}}
</body>
</html>
`))
