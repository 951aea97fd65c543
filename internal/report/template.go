package report

// ReportTemplate is the HTML template for the sentiment report.
// It is embedded as a Go constant with no external file dependencies.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 0 0 6px; }
  p { margin: 6px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }

  .article { background: var(--section-bg); border-radius: 8px; padding: 12px 16px; margin: 10px 0; }
  .badge { display: inline-block; padding: 1px 8px; border-radius: 3px; font-size: 0.8rem; font-weight: 600; }
  .badge.positive { background: #dcfce7; color: var(--green); }
  .badge.negative { background: #fef2f2; color: var(--red); }
  .badge.neutral { background: #f3f4f6; color: var(--muted); }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  .bar { height: 12px; border-radius: 2px; }
  .bar.positive { background: var(--green); }
  .bar.negative { background: var(--red); }
  .bar.neutral { background: var(--muted); }

  .verdict { background: #eff6ff; border-left: 5px solid var(--accent); padding: 16px; border-radius: 8px; font-size: 1.05rem; }
  .chart-container { margin: 12px 0; }
</style>
</head>
<body>

<div class="header">
  <h1>{{.Company}}</h1>
  <p class="muted">News sentiment report · Generated {{.GeneratedAt}}</p>
</div>

<!-- ═══════ ARTICLES ═══════ -->
<h2>Articles</h2>
{{range .Articles}}
<div class="article">
  <h3>{{.Index}}. {{.Title}}</h3>
  <p>{{.Summary}}</p>
  <p><span class="badge {{.SentimentClass}}">{{.Sentiment}}</span> <span class="muted">Topics: {{.Topics}}</span></p>
</div>
{{else}}
<p class="muted">No articles.</p>
{{end}}

<!-- ═══════ DISTRIBUTION ═══════ -->
<h2>Sentiment Distribution</h2>
<table>
  <thead><tr><th>Sentiment</th><th>Articles</th><th style="width:50%"></th></tr></thead>
  <tbody>
  {{range .Bars}}
  <tr>
    <td>{{.Label}}</td>
    <td>{{.Count}}</td>
    <td><div class="bar {{.Class}}" style="width: {{.Pct}}%"></div></td>
  </tr>
  {{end}}
  </tbody>
</table>
<div class="chart-container">{{.Chart}}</div>

<!-- ═══════ COVERAGE ═══════ -->
<h2>Coverage Differences</h2>
<table>
  <thead><tr><th>Comparison</th><th>Impact</th></tr></thead>
  <tbody>
  {{range .Differences}}
  <tr><td>{{.Comparison}}</td><td>{{.Impact}}</td></tr>
  {{end}}
  </tbody>
</table>

<!-- ═══════ TOPICS ═══════ -->
<h2>Topic Overlap</h2>
<table>
  <tbody>
  <tr><th>Common Topics</th><td>{{.Common}}</td></tr>
  {{range .Unique}}
  <tr><th>{{.Label}}</th><td>{{.Topics}}</td></tr>
  {{end}}
  </tbody>
</table>

<!-- ═══════ VERDICT ═══════ -->
<h2>Final Sentiment Analysis</h2>
<div class="verdict">{{.Final}}</div>
{{if .AudioURL}}
<p style="margin-top:12px"><audio controls src="{{.AudioURL}}"></audio> <a href="{{.AudioURL}}">Download audio</a></p>
{{end}}

</body>
</html>`
