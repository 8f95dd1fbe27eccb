package ruleset

import "time"

const (
	BucketRespected   = "respected"
	BucketAutofixable = "autofixable"
	BucketApplicable  = "applicable"
)

// ViolatedRule pairs a rule with the number of times it fires in the repo.
type ViolatedRule struct {
	Rule
	Violations int `json:"violations"`
}

// SnoozedRule is a suggestion removed from the report by an active snooze.
type SnoozedRule struct {
	Rule
	Bucket     string `json:"bucket"`
	Violations int    `json:"violations,omitempty"`
}

type Run struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	RepoName    string    `json:"repo_name,omitempty"`
	Target      string    `json:"target,omitempty"`
	RuffVersion string    `json:"ruff_version,omitempty"`

	IncludeSometimesFixable bool `json:"include_sometimes_fixable,omitempty"`
	IncludePreview          bool `json:"include_preview,omitempty"`

	CatalogSize int      `json:"catalog_size,omitempty"`
	Configured  []string `json:"configured_codes,omitempty"`

	Respected   []Rule         `json:"respected,omitempty"`
	Autofixable []Rule         `json:"autofixable,omitempty"`
	Applicable  []ViolatedRule `json:"applicable,omitempty"`
	Snoozed     []SnoozedRule  `json:"snoozed,omitempty"`
}

// SuggestionCount is the number of rules the run proposes adopting.
func (r *Run) SuggestionCount() int {
	return len(r.Respected) + len(r.Autofixable) + len(r.Applicable)
}
