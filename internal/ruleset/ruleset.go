package ruleset

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FixAvailability is ruff's tri-state fix marker for a rule.
type FixAvailability int

const (
	FixNever FixAvailability = iota
	FixSometimes
	FixAlways
)

// Wire strings as emitted by `ruff rule --all --output-format=json`.
var fixWire = map[FixAvailability]string{
	FixNever:     "Fix is not available.",
	FixSometimes: "Fix is sometimes available.",
	FixAlways:    "Fix is always available.",
}

var fixFromWire = map[string]FixAvailability{
	"Fix is not available.":       FixNever,
	"Fix is sometimes available.": FixSometimes,
	"Fix is always available.":    FixAlways,
}

// Short labels used in tables and CSV cells.
var fixLabels = map[FixAvailability]string{
	FixNever:     "No",
	FixSometimes: "Sometimes",
	FixAlways:    "Always",
}

func (f FixAvailability) Label() string { return fixLabels[f] }

func (f FixAvailability) MarshalJSON() ([]byte, error) {
	s, ok := fixWire[f]
	if !ok {
		return nil, fmt.Errorf("unknown fix availability %d", int(f))
	}
	return json.Marshal(s)
}

func (f *FixAvailability) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fix availability: %w", err)
	}
	v, ok := fixFromWire[s]
	if !ok {
		return fmt.Errorf("unknown fix availability %q", s)
	}
	*f = v
	return nil
}

type Rule struct {
	Name           string          `json:"name"`
	Code           string          `json:"code"`
	Linter         string          `json:"linter"`
	Summary        string          `json:"summary"`
	MessageFormats []string        `json:"message_formats,omitempty"`
	Fix            FixAvailability `json:"fix"`
	Explanation    string          `json:"explanation,omitempty"`
	Preview        bool            `json:"preview"`
}

// Fixable reports whether ruff can fix the rule at least some of the time.
func (r Rule) Fixable() bool { return r.Fix == FixAlways || r.Fix == FixSometimes }

// DocsURL returns the rule's page on the ruff documentation site.
func (r Rule) DocsURL() string { return "https://docs.astral.sh/ruff/rules/" + r.Name }

// Catalog is the rule inventory of the ruff build that produced it.
// Rule identity is the code: duplicate codes collapse, last record wins.
type Catalog struct {
	byCode map[string]Rule
}

func NewCatalog(rules []Rule) (Catalog, error) {
	byCode := make(map[string]Rule, len(rules))
	for _, r := range rules {
		if r.Code == "" {
			return Catalog{}, fmt.Errorf("rule %q has no code", r.Name)
		}
		byCode[r.Code] = r
	}
	return Catalog{byCode: byCode}, nil
}

func (c Catalog) Len() int { return len(c.byCode) }

func (c Catalog) Get(code string) (Rule, bool) {
	r, ok := c.byCode[code]
	return r, ok
}

// Rules returns the catalog sorted by code.
func (c Catalog) Rules() []Rule {
	out := make([]Rule, 0, len(c.byCode))
	for _, r := range c.byCode {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
