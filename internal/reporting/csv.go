package reporting

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

// WriteCSVs writes one CSV per non-empty bucket, mirroring the Markdown
// tables column for column. Rule names stay plain here, no links.
func WriteCSVs(outDir string, run *ruleset.Run) ([]string, error) {
	var paths []string

	if len(run.Respected) > 0 {
		p := filepath.Join(outDir, "respected.csv")
		if err := writeRuleCSV(p, run.Respected); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if len(run.Autofixable) > 0 {
		p := filepath.Join(outDir, "autofixable.csv")
		if err := writeRuleCSV(p, run.Autofixable); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if len(run.Applicable) > 0 {
		p := filepath.Join(outDir, "applicable.csv")
		if err := writeViolatedCSV(p, run.Applicable); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeRuleCSV(path string, rules []ruleset.Rule) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Linter", "Code", "Name", "Fixable", "Preview"}); err != nil {
		return err
	}
	for _, r := range rules {
		rec := []string{r.Linter, r.Code, r.Name, r.Fix.Label(), strconv.FormatBool(r.Preview)}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeViolatedCSV(path string, rules []ruleset.ViolatedRule) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Linter", "Code", "Name", "Fixable", "Preview", "Violations"}); err != nil {
		return err
	}
	for _, vr := range rules {
		rec := []string{vr.Linter, vr.Code, vr.Name, vr.Fix.Label(), strconv.FormatBool(vr.Preview), strconv.Itoa(vr.Violations)}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
