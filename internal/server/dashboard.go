package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/splitstat/splitstat/internal/pipeline"
	"github.com/splitstat/splitstat/internal/store"
)

type dashboardData struct {
	HasReport bool
	Report    pipeline.Report
	Plots     []string
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"mulf": func(a, b float64) float64 { return a * b },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>splitstat dashboard</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 960px; margin: 2rem auto; color: #1a1a2e; }
h1 { font-size: 1.6rem; }
table { border-collapse: collapse; margin: 1rem 0; width: 100%; }
th, td { border: 1px solid #ddd; padding: 0.5rem 0.75rem; text-align: left; }
th { background: #f5f6fa; }
.rec { font-size: 1.2rem; font-weight: bold; padding: 0.75rem 1rem; border-radius: 6px; display: inline-block; }
.rec-ROLLOUT { background: #e3f6e8; color: #157a3b; }
.rec-MONITOR { background: #fdf3da; color: #9a7206; }
.rec-DO_NOT_ROLLOUT { background: #fde3dd; color: #b12a12; }
.sig { color: #157a3b; font-weight: bold; }
.nosig { color: #888; }
img { max-width: 100%; margin: 0.5rem 0; border: 1px solid #eee; }
.empty { color: #888; padding: 2rem 0; }
</style>
</head>
<body>
<h1>A/B Test Analysis</h1>
{{if not .HasReport}}
<p class="empty">No report yet. Run <code>POST /api/v1/generate</code> and <code>POST /api/v1/analyze</code> first.</p>
{{else}}
<p>{{.Report.DatasetInfo.TotalRows}} users, {{.Report.DatasetInfo.DateRange}}</p>

<p><span class="rec rec-{{.Report.BusinessInsights.Recommendation}}">{{.Report.BusinessInsights.Recommendation}}</span></p>
<p>{{.Report.BusinessInsights.Rationale}}</p>

<h2>Metrics</h2>
<table>
<tr><th>Metric</th><th>Control</th><th>Variant</th><th>Difference</th></tr>
<tr><td>Conversion rate</td><td>{{printf "%.2f%%" (mulf .Report.MetricsSummary.Control.ConversionRate 100.0)}}</td><td>{{printf "%.2f%%" (mulf .Report.MetricsSummary.Variant.ConversionRate 100.0)}}</td><td>{{printf "%.2f%%" (mulf .Report.MetricsSummary.Differences.ConversionRateDiff 100.0)}}</td></tr>
<tr><td>Avg time spent (min)</td><td>{{printf "%.4f" .Report.MetricsSummary.Control.AvgTimeSpent}}</td><td>{{printf "%.4f" .Report.MetricsSummary.Variant.AvgTimeSpent}}</td><td>{{printf "%.4f" .Report.MetricsSummary.Differences.TimeSpentDiff}}</td></tr>
<tr><td>Avg clicks</td><td>{{printf "%.4f" .Report.MetricsSummary.Control.AvgClicks}}</td><td>{{printf "%.4f" .Report.MetricsSummary.Variant.AvgClicks}}</td><td>{{printf "%.4f" .Report.MetricsSummary.Differences.ClicksDiff}}</td></tr>
</table>

<h2>Hypothesis tests</h2>
<table>
<tr><th>Metric</th><th>Test</th><th>Statistic</th><th>P-value</th><th>Result</th></tr>
{{range $name, $t := .Report.HypothesisTests}}
<tr><td>{{$name}}</td><td>{{$t.TestType}}</td><td>{{printf "%g" $t.Statistic}}</td><td>{{printf "%g" $t.PValue}}</td>
<td>{{if $t.Significant}}<span class="sig">significant</span>{{else}}<span class="nosig">not significant</span>{{end}}</td></tr>
{{end}}
</table>

<h2>Plots</h2>
{{range .Plots}}<img src="/api/v1/plots/{{.}}" alt="{{.}}">{{end}}
{{end}}
</body>
</html>`))

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{}

	saved, err := s.store.LatestReport(r.Context())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err == nil {
		var rpt pipeline.Report
		if err := json.Unmarshal(saved.Body, &rpt); err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		data.HasReport = true
		data.Report = rpt
		data.Plots = s.plotNames()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
	}
}
