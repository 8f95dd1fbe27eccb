package storage

import "time"

// RunRow is a lightweight listing row for /runs.
type RunRow struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	RepoName    string    `json:"repo_name,omitempty"`
	RuffVersion string    `json:"ruff_version,omitempty"`
	Suggestions int       `json:"suggestions"`
}

// SuggestionRow is one classified rule as stored per run.
type SuggestionRow struct {
	Code       string `json:"code"`
	Bucket     string `json:"bucket"`
	Linter     string `json:"linter,omitempty"`
	Name       string `json:"name,omitempty"`
	Fixable    string `json:"fixable,omitempty"`
	Preview    bool   `json:"preview"`
	Violations int    `json:"violations"`
}
