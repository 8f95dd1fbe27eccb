package classify

import (
	"strings"

	"github.com/codewithboateng/rufflift/internal/ruleset"
	"github.com/codewithboateng/rufflift/internal/storage"
)

// ApplySnoozes removes suggestions matching an active snooze from the run's
// three buckets and records them on run.Snoozed with their origin bucket.
// Returns the number of suggestions snoozed. Codes match case-insensitively.
func ApplySnoozes(run *ruleset.Run, snoozes []storage.Snooze) int {
	if len(snoozes) == 0 {
		return 0
	}
	codes := make(map[string]struct{}, len(snoozes))
	for _, s := range snoozes {
		codes[strings.ToUpper(strings.TrimSpace(s.Code))] = struct{}{}
	}
	hit := func(code string) bool {
		_, ok := codes[strings.ToUpper(code)]
		return ok
	}

	before := len(run.Snoozed)

	var respected []ruleset.Rule
	for _, r := range run.Respected {
		if hit(r.Code) {
			run.Snoozed = append(run.Snoozed, ruleset.SnoozedRule{Rule: r, Bucket: ruleset.BucketRespected})
			continue
		}
		respected = append(respected, r)
	}
	run.Respected = respected

	var autofixable []ruleset.Rule
	for _, r := range run.Autofixable {
		if hit(r.Code) {
			run.Snoozed = append(run.Snoozed, ruleset.SnoozedRule{Rule: r, Bucket: ruleset.BucketAutofixable})
			continue
		}
		autofixable = append(autofixable, r)
	}
	run.Autofixable = autofixable

	var applicable []ruleset.ViolatedRule
	for _, vr := range run.Applicable {
		if hit(vr.Code) {
			run.Snoozed = append(run.Snoozed, ruleset.SnoozedRule{Rule: vr.Rule, Bucket: ruleset.BucketApplicable, Violations: vr.Violations})
			continue
		}
		applicable = append(applicable, vr)
	}
	run.Applicable = applicable

	return len(run.Snoozed) - before
}
