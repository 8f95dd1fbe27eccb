package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

type diffPayload struct {
	BaseID  string      `json:"base_id"`
	HeadID  string      `json:"head_id"`
	Summary diffSummary `json:"summary"`

	Adopted   []diffRule    `json:"adopted,omitempty"`
	Fixed     []diffRule    `json:"fixed,omitempty"`
	Regressed []diffRule    `json:"regressed,omitempty"`
	New       []diffRule    `json:"new,omitempty"`
	Removed   []diffRule    `json:"removed,omitempty"`
	Changed   []diffChanged `json:"changed,omitempty"`
}

type diffSummary struct {
	AdoptedCount   int `json:"adopted"`
	FixedCount     int `json:"fixed"`
	RegressedCount int `json:"regressed"`
	NewCount       int `json:"new"`
	RemovedCount   int `json:"removed"`
	ChangedCount   int `json:"changed"`
}

type diffRule struct {
	Code       string `json:"code"`
	Linter     string `json:"linter,omitempty"`
	Name       string `json:"name,omitempty"`
	BaseBucket string `json:"base_bucket,omitempty"`
	HeadBucket string `json:"head_bucket,omitempty"`
}

type diffChanged struct {
	Code           string `json:"code"`
	BaseViolations int    `json:"base_violations"`
	HeadViolations int    `json:"head_violations"`
}

// bucketConfigured marks codes present in the resolved select set, so a
// suggestion that disappears because someone enabled the rule reads as
// adopted rather than removed.
const bucketConfigured = "configured"

type codeState struct {
	bucket     string
	violations int
	rule       ruleset.Rule
}

// WriteDiffJSON compares two stored runs bucket by bucket and writes the
// transitions to diff_<base>__<head>.json.
func WriteDiffJSON(baseID, headID, outDir string, base, head *ruleset.Run) (string, error) {
	path := filepath.Join(outDir, "diff_"+baseID+"__"+headID+".json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	bm := statesOf(base)
	hm := statesOf(head)

	var adopted, fixed, regressed, added, removed []diffRule
	var changed []diffChanged

	for k, hs := range hm {
		bs, ok := bm[k]
		if !ok {
			// only suggestions count as new; a freshly configured code
			// that never appeared in the base run is not actionable
			if hs.bucket != bucketConfigured {
				added = append(added, asDiffRule(k, codeState{}, hs))
			}
			continue
		}
		switch {
		case bs.bucket == hs.bucket:
			if bs.bucket == ruleset.BucketApplicable && bs.violations != hs.violations {
				changed = append(changed, diffChanged{Code: k, BaseViolations: bs.violations, HeadViolations: hs.violations})
			}
		case hs.bucket == bucketConfigured:
			if bs.bucket != bucketConfigured {
				adopted = append(adopted, asDiffRule(k, bs, hs))
			}
		case hs.bucket == ruleset.BucketRespected:
			if bs.bucket == ruleset.BucketAutofixable || bs.bucket == ruleset.BucketApplicable {
				fixed = append(fixed, asDiffRule(k, bs, hs))
			}
		case bs.bucket == ruleset.BucketRespected:
			regressed = append(regressed, asDiffRule(k, bs, hs))
		}
	}
	for k, bs := range bm {
		if _, ok := hm[k]; !ok && bs.bucket != bucketConfigured {
			removed = append(removed, asDiffRule(k, bs, codeState{}))
		}
	}

	// stable sort
	sort.Slice(adopted, func(i, j int) bool { return adopted[i].Code < adopted[j].Code })
	sort.Slice(fixed, func(i, j int) bool { return fixed[i].Code < fixed[j].Code })
	sort.Slice(regressed, func(i, j int) bool { return regressed[i].Code < regressed[j].Code })
	sort.Slice(added, func(i, j int) bool { return added[i].Code < added[j].Code })
	sort.Slice(removed, func(i, j int) bool { return removed[i].Code < removed[j].Code })
	sort.Slice(changed, func(i, j int) bool { return changed[i].Code < changed[j].Code })

	payload := diffPayload{
		BaseID: baseID, HeadID: headID,
		Summary: diffSummary{
			AdoptedCount:   len(adopted),
			FixedCount:     len(fixed),
			RegressedCount: len(regressed),
			NewCount:       len(added),
			RemovedCount:   len(removed),
			ChangedCount:   len(changed),
		},
		Adopted:   adopted,
		Fixed:     fixed,
		Regressed: regressed,
		New:       added,
		Removed:   removed,
		Changed:   changed,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

// statesOf indexes a run by upper-cased code. Snoozed entries rejoin their
// origin bucket so snoozing alone never shows up as a transition.
func statesOf(run *ruleset.Run) map[string]codeState {
	m := map[string]codeState{}
	for _, code := range run.Configured {
		m[norm(code)] = codeState{bucket: bucketConfigured}
	}
	for _, r := range run.Respected {
		m[norm(r.Code)] = codeState{bucket: ruleset.BucketRespected, rule: r}
	}
	for _, r := range run.Autofixable {
		m[norm(r.Code)] = codeState{bucket: ruleset.BucketAutofixable, rule: r}
	}
	for _, vr := range run.Applicable {
		m[norm(vr.Code)] = codeState{bucket: ruleset.BucketApplicable, violations: vr.Violations, rule: vr.Rule}
	}
	for _, s := range run.Snoozed {
		m[norm(s.Code)] = codeState{bucket: s.Bucket, violations: s.Violations, rule: s.Rule}
	}
	return m
}

func asDiffRule(code string, base, head codeState) diffRule {
	// metadata can come from either side; head wins when both carry it
	r := base.rule
	if head.rule.Code != "" {
		r = head.rule
	}
	return diffRule{
		Code:       code,
		Linter:     r.Linter,
		Name:       r.Name,
		BaseBucket: base.bucket,
		HeadBucket: head.bucket,
	}
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
