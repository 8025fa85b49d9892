// Package reporter renders crawl results outside the core pipeline.
package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Render serializes a crawl result in the requested format ("json" or
// "html").
func Render(result *models.CrawlResult, format string) (string, error) {
	switch format {
	case "json":
		return renderJSON(result)
	case "html":
		return renderHTML(result)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func renderJSON(result *models.CrawlResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>SEO Crawl Report</title>
<style>
    body {
        font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
        line-height: 1.6;
        color: #333;
        max-width: 1100px;
        margin: 0 auto;
        padding: 20px;
        background: #f5f5f5;
    }
    .card {
        background: white;
        border-radius: 10px;
        padding: 1.5rem;
        margin-bottom: 1.5rem;
        box-shadow: 0 2px 10px rgba(0,0,0,0.1);
    }
    table { border-collapse: collapse; width: 100%; }
    th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #eee; }
    .warn { color: #b45309; }
    .err { color: #b91c1c; }
</style>
</head>
<body>
<div class="card">
    <h1>SEO Crawl Report</h1>
    <p>{{.CrawlMetrics.Pages}} pages in {{printf "%.2f" .TotalTime}}s
    {{if .Cancelled}}<strong class="err">(cancelled, partial result)</strong>{{end}}</p>
    <p>fetch {{.CrawlMetrics.FetchMSTotal}}ms &middot; parse {{.CrawlMetrics.ParseMSTotal}}ms
    &middot; skipped non-HTML: {{.CrawlMetrics.SkippedNonHTML}}</p>
</div>
<div class="card">
    <h2>Pages</h2>
    <table>
    <tr><th>URL</th><th>Title</th><th>Words</th><th>Warnings</th></tr>
    {{range .Pages}}
    <tr>
        <td>{{.URL}}</td><td>{{.Title}}</td><td>{{.WordCount}}</td>
        <td class="warn">{{range .Warnings}}{{.}}<br>{{end}}</td>
    </tr>
    {{end}}
    </table>
</div>
{{if .DuplicatePages}}
<div class="card">
    <h2>Duplicate content</h2>
    {{range .DuplicatePages}}
    <p><code>{{.ContentHash}}</code></p>
    <ul>{{range .URLs}}<li>{{.}}</li>{{end}}</ul>
    {{end}}
</div>
{{end}}
{{if .Keywords}}
<div class="card">
    <h2>Keywords</h2>
    <table>
    <tr><th>Term</th><th>Count</th></tr>
    {{range .Keywords}}<tr><td>{{.Term}}</td><td>{{.Count}}</td></tr>{{end}}
    </table>
</div>
{{end}}
{{if .Errors}}
<div class="card">
    <h2>Errors</h2>
    <table>
    <tr><th>URL</th><th>Kind</th><th>Message</th></tr>
    {{range .Errors}}<tr class="err"><td>{{.URL}}</td><td>{{.Kind}}</td><td>{{.Message}}</td></tr>{{end}}
    </table>
</div>
{{end}}
</body>
</html>
`))

func renderHTML(result *models.CrawlResult) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, result); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.String(), nil
}
