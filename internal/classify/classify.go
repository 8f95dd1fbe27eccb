package classify

import (
	"sort"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

// Options are the report toggles. Both default to off: only stable rules
// whose fix is always available count as autofixable.
type Options struct {
	IncludeSometimesFixable bool
	IncludePreview          bool
}

// Respected returns the rules with zero violations that the repo has not
// configured yet, sorted by code. Preview status does not matter here.
func Respected(cat ruleset.Catalog, violations []ruleset.Violation, configured map[string]ruleset.Rule) []ruleset.Rule {
	violated := violatedCodes(violations)

	var out []ruleset.Rule
	for _, r := range cat.Rules() {
		if _, ok := violated[r.Code]; ok {
			continue
		}
		if _, ok := configured[r.Code]; ok {
			continue
		}
		out = append(out, r)
	}
	// cat.Rules() is already sorted by code
	return out
}

// Autofixable returns the violated, unconfigured rules ruff can fix on its
// own, sorted by code. Sometimes-fixable and preview rules only count when
// the matching toggle is on.
func Autofixable(cat ruleset.Catalog, violations []ruleset.Violation, configured map[string]ruleset.Rule, opts Options) []ruleset.Rule {
	violated := violatedCodes(violations)

	var out []ruleset.Rule
	for _, r := range cat.Rules() {
		if _, ok := violated[r.Code]; !ok {
			continue
		}
		if _, ok := configured[r.Code]; ok {
			continue
		}
		if !r.Fixable() {
			continue
		}
		if r.Preview && !opts.IncludePreview {
			continue
		}
		if r.Fix != ruleset.FixAlways && !opts.IncludeSometimesFixable {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Applicable returns the remaining violated rules with their violation
// counts, ordered cheapest first: ascending count, then linter, then code.
// Violations whose code is unknown to the catalog are silently dropped.
func Applicable(cat ruleset.Catalog, violations []ruleset.Violation, excluded map[string]struct{}) []ruleset.ViolatedRule {
	counts := make(map[string]int)
	for _, v := range violations {
		counts[v.Code]++
	}

	var out []ruleset.ViolatedRule
	for code, n := range counts {
		if _, skip := excluded[code]; skip {
			continue
		}
		r, ok := cat.Get(code)
		if !ok {
			continue
		}
		out = append(out, ruleset.ViolatedRule{Rule: r, Violations: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Violations != b.Violations {
			return a.Violations < b.Violations
		}
		if a.Linter != b.Linter {
			return a.Linter < b.Linter
		}
		return a.Code < b.Code
	})
	return out
}

// Classify partitions the catalog into the three report buckets. Every rule
// lands in exactly one bucket or, when already configured, in none.
func Classify(cat ruleset.Catalog, violations []ruleset.Violation, configured map[string]ruleset.Rule, opts Options) (respected, autofixable []ruleset.Rule, applicable []ruleset.ViolatedRule) {
	respected = Respected(cat, violations, configured)
	autofixable = Autofixable(cat, violations, configured, opts)

	excluded := make(map[string]struct{}, len(configured)+len(respected)+len(autofixable))
	for code := range configured {
		excluded[code] = struct{}{}
	}
	for _, r := range respected {
		excluded[r.Code] = struct{}{}
	}
	for _, r := range autofixable {
		excluded[r.Code] = struct{}{}
	}
	applicable = Applicable(cat, violations, excluded)
	return respected, autofixable, applicable
}

func violatedCodes(violations []ruleset.Violation) map[string]struct{} {
	out := make(map[string]struct{}, len(violations))
	for _, v := range violations {
		out[v.Code] = struct{}{}
	}
	return out
}
