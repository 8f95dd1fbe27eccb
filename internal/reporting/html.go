package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

func WriteHTML(runID, outDir string, run *ruleset.Run) (string, error) {
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Head + styles
	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(runID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace}</style>")
	fmt.Fprint(f, "</head><body>")

	// Title + summary
	fmt.Fprintf(f, "<h1>rufflift report – <span class='mono'>%s</span></h1>", html.EscapeString(runID))
	fmt.Fprintf(f, "<p>Ruff: %s &nbsp; Catalog: %d rules &nbsp; Configured: %d</p>", html.EscapeString(run.RuffVersion), run.CatalogSize, len(run.Configured))
	fmt.Fprintf(f, "<p><b>Suggestions</b>: respected=%d &nbsp; autofixable=%d &nbsp; applicable=%d</p>", len(run.Respected), len(run.Autofixable), len(run.Applicable))

	// Repo/target banner
	if run.RepoName != "" || run.Target != "" {
		fmt.Fprintf(f, "<p class='dim'>Repo: %s &nbsp; Target: <span class='mono'>%s</span></p>", html.EscapeString(run.RepoName), html.EscapeString(run.Target))
	}

	// Toggle banner
	fmt.Fprintf(f, "<p class='dim'>Sometimes-fixable included: %t &nbsp; Preview included: %t", run.IncludeSometimesFixable, run.IncludePreview)
	if n := len(run.Snoozed); n > 0 {
		fmt.Fprintf(f, " &nbsp; Snoozed: %d", n)
	}
	fmt.Fprint(f, "</p>")

	if len(run.Respected) > 0 {
		fmt.Fprint(f, "<h2>Respected</h2><table><tr><th>Linter</th><th>Code</th><th>Name</th><th>Fixable</th><th>Preview</th></tr>")
		for _, r := range run.Respected {
			fmt.Fprintf(f, "<tr><td>%s</td><td class='mono'>%s</td><td><a href='%s'>%s</a></td><td>%s</td><td>%t</td></tr>",
				html.EscapeString(r.Linter),
				html.EscapeString(r.Code),
				r.DocsURL(),
				html.EscapeString(r.Name),
				r.Fix.Label(),
				r.Preview,
			)
		}
		fmt.Fprint(f, "</table>")
	}

	if len(run.Autofixable) > 0 {
		fmt.Fprint(f, "<h2>Autofixable</h2><table><tr><th>Linter</th><th>Code</th><th>Name</th><th>Fixable</th><th>Preview</th></tr>")
		for _, r := range run.Autofixable {
			fmt.Fprintf(f, "<tr><td>%s</td><td class='mono'>%s</td><td><a href='%s'>%s</a></td><td>%s</td><td>%t</td></tr>",
				html.EscapeString(r.Linter),
				html.EscapeString(r.Code),
				r.DocsURL(),
				html.EscapeString(r.Name),
				r.Fix.Label(),
				r.Preview,
			)
		}
		fmt.Fprint(f, "</table>")
	}

	if len(run.Applicable) > 0 {
		fmt.Fprint(f, "<h2>Applicable</h2><table><tr><th>Linter</th><th>Code</th><th>Name</th><th>Fixable</th><th>Preview</th><th>Violations</th></tr>")
		for _, vr := range run.Applicable {
			fmt.Fprintf(f, "<tr><td>%s</td><td class='mono'>%s</td><td><a href='%s'>%s</a></td><td>%s</td><td>%t</td><td>%d</td></tr>",
				html.EscapeString(vr.Linter),
				html.EscapeString(vr.Code),
				vr.DocsURL(),
				html.EscapeString(vr.Name),
				vr.Fix.Label(),
				vr.Preview,
				vr.Violations,
			)
		}
		fmt.Fprint(f, "</table>")
	}

	if len(run.Snoozed) > 0 {
		fmt.Fprint(f, "<h2>Snoozed</h2><table><tr><th>Linter</th><th>Code</th><th>Name</th><th>Bucket</th><th>Violations</th></tr>")
		for _, s := range run.Snoozed {
			fmt.Fprintf(f, "<tr><td>%s</td><td class='mono'>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>",
				html.EscapeString(s.Linter),
				html.EscapeString(s.Code),
				html.EscapeString(s.Name),
				html.EscapeString(s.Bucket),
				s.Violations,
			)
		}
		fmt.Fprint(f, "</table>")
	}

	if run.SuggestionCount() == 0 {
		fmt.Fprint(f, "<h2>Suggestions</h2><p class='dim'>Nothing to suggest – the configuration already covers every applicable rule.</p>")
	}

	fmt.Fprint(f, "</body></html>")
	return path, nil
}
