package validate

import (
	"fmt"
	"html/template"
	"io"

	igp "github.com/gofhir/igpublisher"
)

// reportTemplate renders the run's validation report as a standalone
// HTML page listing every artifact's issues.
var reportTemplate = template.Must(template.New("validation").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>Validation Report: {{.Guide}}</title>
  <style>
    body { font-family: sans-serif; margin: 2em; }
    h1 { border-bottom: 1px solid #ccc; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; vertical-align: top; }
    th { background: #f0f0f0; }
    .severity-fatal, .severity-error { color: maroon; font-weight: bold; }
    .severity-warning { color: #806000; }
    .severity-information { color: #404040; }
    .clean { color: #206020; }
  </style>
</head>
<body>
<h1>Validation Report: {{.Guide}}</h1>
<p>Run {{.RunID}}{{if .Version}} (FHIR {{.Version}}){{end}}, generated {{.Generated.Format "2006-01-02 15:04:05 MST"}}.
{{.ErrorCount}} error(s), {{.WarningCount}} warning(s).</p>
{{range .Outcomes}}
<h2>{{.Name}}{{if .Type}} ({{.Type}}){{end}}</h2>
{{if .Issues}}
<table>
  <tr><th>Severity</th><th>Type</th><th>Location</th><th>Details</th></tr>
  {{range .Issues}}
  <tr>
    <td class="severity-{{.Severity}}">{{.Severity}}</td>
    <td>{{.Code}}</td>
    <td>{{range .Location}}{{.}} {{end}}</td>
    <td>{{.Diagnostics}}{{if .ConstraintKey}} [{{.ConstraintKey}}]{{end}}</td>
  </tr>
  {{end}}
</table>
{{else}}
<p class="clean">No issues found.</p>
{{end}}
{{end}}
</body>
</html>
`))

// WriteReport renders the validation report to the given writer.
func WriteReport(w io.Writer, report *igp.Report) error {
	if err := reportTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("rendering validation report: %w", err)
	}
	return nil
}
