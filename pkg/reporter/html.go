package reporter

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>TKGI Application Tracker Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #326ce5 0%, #1a4d8f 100%);
            color: white;
            padding: 50px 40px;
        }
        .header h1 {
            font-size: 2.8em;
            margin-bottom: 15px;
        }
        .header .meta {
            opacity: 0.95;
            font-size: 1.1em;
        }
        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(280px, 1fr));
            gap: 25px;
            padding: 40px;
            background: linear-gradient(to bottom, #f8f9fa 0%, #fff 100%);
        }
        .summary-card {
            background: white;
            padding: 30px;
            border-radius: 12px;
            border: 2px solid #e8eaed;
            box-shadow: 0 4px 12px rgba(0, 0, 0, 0.05);
        }
        .summary-card h3 {
            color: #5f6368;
            font-size: 0.85em;
            text-transform: uppercase;
            letter-spacing: 1.5px;
            margin-bottom: 15px;
            font-weight: 600;
        }
        .summary-card .value {
            font-size: 3em;
            font-weight: 700;
            color: #202124;
            line-height: 1;
        }
        .summary-card.ready {
            border-left: 6px solid #34a853;
        }
        .summary-card.ready .value {
            color: #34a853;
        }
        .summary-card.apps {
            border-left: 6px solid #326ce5;
        }
        .summary-card.apps .value {
            color: #326ce5;
        }
        .summary-card.active {
            border-left: 6px solid #fbbc04;
        }
        .summary-card.active .value {
            color: #fbbc04;
        }
        .section {
            padding: 50px 40px;
        }
        .section h2 {
            font-size: 2em;
            margin-bottom: 30px;
            color: #202124;
        }
        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(320px, 1fr));
            gap: 25px;
            margin-top: 25px;
        }
        .stat-card {
            background: white;
            padding: 25px;
            border-radius: 10px;
            border: 1px solid #e8eaed;
            box-shadow: 0 2px 6px rgba(0, 0, 0, 0.05);
        }
        .stat-card h4 {
            color: #202124;
            font-size: 1.3em;
            margin-bottom: 20px;
        }
        .stat-row {
            display: flex;
            justify-content: space-between;
            padding: 12px 0;
            border-bottom: 1px solid #f0f2f4;
        }
        .stat-row:last-child {
            border-bottom: none;
        }
        .stat-label {
            color: #5f6368;
            font-weight: 500;
        }
        .stat-value {
            font-weight: 700;
            color: #202124;
            font-size: 1.1em;
        }
        .apps-table {
            width: 100%;
            border-collapse: separate;
            border-spacing: 0;
            margin-top: 25px;
            background: white;
            border-radius: 8px;
            overflow: hidden;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.05);
        }
        .apps-table th {
            background: #326ce5;
            color: white;
            padding: 18px 15px;
            text-align: left;
            font-weight: 600;
            font-size: 0.95em;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        .apps-table td {
            padding: 18px 15px;
            border-bottom: 1px solid #f0f2f4;
        }
        .apps-table tbody tr:hover {
            background: #f8f9fa;
        }
        .apps-table tbody tr:last-child td {
            border-bottom: none;
        }
        .score-badge {
            padding: 7px 14px;
            border-radius: 6px;
            font-size: 0.85em;
            font-weight: 700;
            display: inline-block;
        }
        .score-high {
            background: #e6f4ea;
            color: #1e8e3e;
        }
        .score-medium {
            background: #fef7e0;
            color: #f9ab00;
        }
        .score-low {
            background: #fce8e6;
            color: #d93025;
        }
        .status-badge {
            padding: 6px 12px;
            border-radius: 6px;
            font-size: 0.75em;
            font-weight: 700;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            display: inline-block;
        }
        .status-active {
            background: #e8f0fe;
            color: #1a73e8;
        }
        .status-inactive {
            background: #f1f3f4;
            color: #5f6368;
        }
        .env-badge {
            padding: 5px 12px;
            border-radius: 6px;
            font-size: 0.7em;
            font-weight: 700;
            text-transform: uppercase;
            letter-spacing: 1px;
            display: inline-block;
        }
        .env-prod {
            background: #fce8e6;
            color: #d93025;
            border: 1px solid #d93025;
        }
        .env-nonprod {
            background: #e6f4ea;
            color: #1e8e3e;
            border: 1px solid #1e8e3e;
        }
        .env-lab {
            background: #fef7e0;
            color: #f9ab00;
            border: 1px solid #f9ab00;
        }
        .env-mixed, .env-unknown {
            background: #f1f3f4;
            color: #5f6368;
            border: 1px solid #9aa0a6;
        }
        .footer {
            background: #202124;
            color: #9aa0a6;
            padding: 40px;
            text-align: center;
        }
        .footer strong {
            color: #fff;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>TKGI Application Tracker Report</h1>
            <div class="meta">
                <p><strong>Run:</strong> {{.RunID}}</p>
                <p><strong>Generated:</strong> {{.GeneratedAt.Format "January 2, 2006 15:04:05 MST"}}</p>
            </div>
        </div>

        <div class="summary">
            <div class="summary-card apps">
                <h3>Total Applications</h3>
                <div class="value">{{.Summary.Totals.Applications}}</div>
            </div>
            <div class="summary-card active">
                <h3>Active Applications</h3>
                <div class="value">{{.Summary.Totals.ActiveApplications}}</div>
            </div>
            <div class="summary-card ready">
                <h3>Ready for Migration</h3>
                <div class="value">{{.Summary.Migration.ReadyForMigration}}</div>
            </div>
        </div>

        {{if .Foundations}}
        <div class="section">
            <h2>By Foundation</h2>
            <div class="stats-grid">
                {{range .Foundations}}
                <div class="stat-card">
                    <h4>{{.Name | upper}}</h4>
                    <div class="stat-row">
                        <span class="stat-label">Applications</span>
                        <span class="stat-value">{{.Applications}}</span>
                    </div>
                    <div class="stat-row">
                        <span class="stat-label">Active</span>
                        <span class="stat-value">{{.Active}}</span>
                    </div>
                    <div class="stat-row">
                        <span class="stat-label">Inactive</span>
                        <span class="stat-value">{{.Inactive}}</span>
                    </div>
                </div>
                {{end}}
            </div>
        </div>
        {{end}}

        <div class="section">
            <h2>Applications by Readiness</h2>
            <table class="apps-table">
                <thead>
                    <tr>
                        <th>Application</th>
                        <th>Environment</th>
                        <th>Status</th>
                        <th>Pods</th>
                        <th>Services</th>
                        <th>Score</th>
                        <th>Recommendation</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Applications}}
                    <tr>
                        <td><strong>{{.AppID}}</strong></td>
                        <td><span class="env-badge env-{{.Environments | envclass}}">{{.Environments | envlabel}}</span></td>
                        <td><span class="status-badge status-{{if .IsActive}}active{{else}}inactive{{end}}">{{if .IsActive}}Active{{else}}Inactive{{end}}</span></td>
                        <td>{{.PodCount}}</td>
                        <td>{{.ServiceCount}}</td>
                        <td><span class="score-badge score-{{.ReadinessScore | scoreclass}}">{{.ReadinessScore}}</span></td>
                        <td>{{.Recommendation}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>

        <div class="footer">
            <p>Generated by <strong>tkgi-app-tracker</strong></p>
        </div>
    </div>
</body>
</html>
`

type htmlFoundation struct {
	Name         string
	Applications int
	Active       int
	Inactive     int
}

type htmlReport struct {
	RunID        string
	GeneratedAt  time.Time
	Summary      models.ExecutiveSummary
	Foundations  []htmlFoundation
	Applications []models.ApplicationRollup
}

// GenerateHTML renders the analytics report as a standalone HTML page, with
// applications ordered by readiness score.
func GenerateHTML(report *models.AnalyticsReport, writer io.Writer) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"envclass": func(environments []string) string {
			return strings.ToLower(environmentLabel(environments))
		},
		"envlabel": environmentLabel,
		"scoreclass": func(score int) string {
			switch {
			case score >= 70:
				return "high"
			case score >= 40:
				return "medium"
			default:
				return "low"
			}
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	page := htmlReport{
		RunID:       report.RunID,
		GeneratedAt: report.GeneratedAt,
		Summary:     report.Summary,
	}
	for name, fs := range report.Summary.ByFoundation {
		page.Foundations = append(page.Foundations, htmlFoundation{
			Name:         name,
			Applications: fs.Applications,
			Active:       fs.Active,
			Inactive:     fs.Inactive,
		})
	}
	sort.Slice(page.Foundations, func(i, j int) bool { return page.Foundations[i].Name < page.Foundations[j].Name })

	page.Applications = make([]models.ApplicationRollup, len(report.Applications))
	copy(page.Applications, report.Applications)
	sort.SliceStable(page.Applications, func(i, j int) bool {
		if page.Applications[i].ReadinessScore != page.Applications[j].ReadinessScore {
			return page.Applications[i].ReadinessScore > page.Applications[j].ReadinessScore
		}
		return page.Applications[i].AppID < page.Applications[j].AppID
	})

	if err := tmpl.Execute(writer, page); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
