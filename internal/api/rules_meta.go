package api

import (
	"net/http"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

// handleRules flattens the latest run into one rule inventory. The catalog
// lives in ruff itself, so the freshest stored run is the source of truth.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		Code       string `json:"code"`
		Linter     string `json:"linter"`
		Name       string `json:"name"`
		Summary    string `json:"summary,omitempty"`
		Fixable    string `json:"fixable"`
		Preview    bool   `json:"preview"`
		Bucket     string `json:"bucket"`
		Violations int    `json:"violations,omitempty"`
		Docs       string `json:"docs,omitempty"`
	}
	run, err := s.DB.LoadLatestRun()
	if err != nil {
		s.err(w, http.StatusNotFound, "no runs")
		return
	}

	asR := func(rule ruleset.Rule, bucket string, violations int) R {
		return R{
			Code: rule.Code, Linter: rule.Linter, Name: rule.Name,
			Summary: rule.Summary, Fixable: rule.Fix.Label(), Preview: rule.Preview,
			Bucket: bucket, Violations: violations, Docs: rule.DocsURL(),
		}
	}

	var out []R
	for _, rule := range run.Respected {
		out = append(out, asR(rule, ruleset.BucketRespected, 0))
	}
	for _, rule := range run.Autofixable {
		out = append(out, asR(rule, ruleset.BucketAutofixable, 0))
	}
	for _, vr := range run.Applicable {
		out = append(out, asR(vr.Rule, ruleset.BucketApplicable, vr.Violations))
	}
	// bucket order then in-bucket order is already stable from the run
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": run.ID, "items": out, "count": len(out),
	})
}
