package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

// WriteMarkdown renders the adoption report to outDir/report.md.
func WriteMarkdown(outDir string, run *ruleset.Run) (string, error) {
	path := filepath.Join(outDir, "report.md")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	RenderMarkdown(f, run)
	return path, nil
}

// RenderMarkdown writes the report body. Sections only appear when they
// have rows; an empty run is just the title.
func RenderMarkdown(w io.Writer, run *ruleset.Run) {
	repo := ""
	if run.RepoName != "" {
		repo = "for " + run.RepoName + " "
	}
	fmt.Fprintf(w, "# rufflift report %s(ruff %s)\n", repo, run.RuffVersion)

	if n := len(run.Respected); n > 0 {
		fmt.Fprintf(w, "\n## Respected Ruff rules\n\n")
		fmt.Fprintf(w, "%d Ruff rules are already respected in the repo - they can be added right away 🚀\n\n", n)
		openDetails(w)
		ruleTableHeader(w, false)
		for _, r := range run.Respected {
			ruleRow(w, r, -1)
		}
		closeDetails(w)
	}

	if n := len(run.Autofixable); n > 0 {
		fmt.Fprintf(w, "\n## Autofixable Ruff rules\n\n")
		fmt.Fprintf(w, "%d Ruff rules are violated in the repo, but can be auto-fixed 🪄\n\n", n)
		openDetails(w)
		ruleTableHeader(w, false)
		for _, r := range run.Autofixable {
			ruleRow(w, r, -1)
		}
		closeDetails(w)
	}

	if n := len(run.Applicable); n > 0 {
		fmt.Fprintf(w, "\n## Applicable Rules\n\n")
		fmt.Fprintf(w, "%d other Ruff rules are not yet configured in the repository\n\n", n)
		openDetails(w)
		ruleTableHeader(w, true)
		for _, vr := range run.Applicable {
			ruleRow(w, vr.Rule, vr.Violations)
		}
		closeDetails(w)
	}

	if n := len(run.Snoozed); n > 0 {
		fmt.Fprintf(w, "\n## Snoozed rules\n\n")
		fmt.Fprintf(w, "%d suggestions are hidden by active snoozes\n\n", n)
		openDetails(w)
		fmt.Fprintln(w, "| Linter | Code | Name | Bucket | Violations |")
		fmt.Fprintln(w, "|--------|------|------|--------|------------|")
		for _, s := range run.Snoozed {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %d |\n", s.Linter, s.Code, clickable(s.Rule), s.Bucket, s.Violations)
		}
		closeDetails(w)
	}
}

func openDetails(w io.Writer) {
	fmt.Fprintln(w, "<details>")
	fmt.Fprintln(w, "<summary>Details</summary>")
	fmt.Fprintln(w)
}

func closeDetails(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "</details>")
}

func ruleTableHeader(w io.Writer, withViolations bool) {
	if withViolations {
		fmt.Fprintln(w, "| Linter | Code | Name | Fixable | Preview | Violations |")
		fmt.Fprintln(w, "|--------|------|------|---------|---------|------------|")
		return
	}
	fmt.Fprintln(w, "| Linter | Code | Name | Fixable | Preview |")
	fmt.Fprintln(w, "|--------|------|------|---------|---------|")
}

// ruleRow writes one table row; violations < 0 omits the column.
func ruleRow(w io.Writer, r ruleset.Rule, violations int) {
	if violations >= 0 {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %t | %d |\n", r.Linter, r.Code, clickable(r), r.Fix.Label(), r.Preview, violations)
		return
	}
	fmt.Fprintf(w, "| %s | %s | %s | %s | %t |\n", r.Linter, r.Code, clickable(r), r.Fix.Label(), r.Preview)
}

func clickable(r ruleset.Rule) string {
	return fmt.Sprintf("[%s](%s)", r.Name, r.DocsURL())
}
