package ruffconfig

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

// Resolve expands the code tokens of a select/ignore entry against the
// catalog. "ALL" selects everything. A token that is all letters or shorter
// than MinRuleCodeLen is a category prefix and selects every rule whose code
// minus the prefix is purely numeric. Anything else must match a catalog
// code exactly. The result is keyed by code, so duplicates collapse and
// token order never matters.
func Resolve(codes map[string]struct{}, cat ruleset.Catalog) (map[string]ruleset.Rule, error) {
	if _, ok := codes["ALL"]; ok {
		out := make(map[string]ruleset.Rule, cat.Len())
		for _, r := range cat.Rules() {
			out[r.Code] = r
		}
		return out, nil
	}

	out := make(map[string]ruleset.Rule)
	for code := range codes {
		if isAlpha(code) || len(code) < MinRuleCodeLen {
			for _, r := range cat.Rules() {
				if isNumeric(strings.TrimPrefix(r.Code, code)) {
					out[r.Code] = r
				}
			}
			continue
		}
		r, ok := cat.Get(code)
		if !ok {
			return nil, fmt.Errorf("unknown rule code %q", code)
		}
		out[r.Code] = r
	}
	return out, nil
}

// Config is a resolved ruff configuration: the rules the repo already
// selects and ignores, keyed by code.
type Config struct {
	Path     string
	Selected map[string]ruleset.Rule
	Ignored  map[string]ruleset.Rule
}

func FromPath(path string, cat ruleset.Catalog) (Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return Config{}, err
	}
	return FromRaw(raw, cat)
}

func FromRaw(raw Raw, cat ruleset.Catalog) (Config, error) {
	selected, err := Resolve(raw.Selected, cat)
	if err != nil {
		return Config{}, fmt.Errorf("%s: select: %w", filepath.Base(raw.Path), err)
	}
	ignored, err := Resolve(raw.Ignored, cat)
	if err != nil {
		return Config{}, fmt.Errorf("%s: ignore: %w", filepath.Base(raw.Path), err)
	}
	return Config{Path: raw.Path, Selected: selected, Ignored: ignored}, nil
}

// AllRules is the union of selected and ignored, keyed by code.
func (c Config) AllRules() map[string]ruleset.Rule {
	out := make(map[string]ruleset.Rule, len(c.Selected)+len(c.Ignored))
	for code, r := range c.Selected {
		out[code] = r
	}
	for code, r := range c.Ignored {
		out[code] = r
	}
	return out
}

// ConfiguredCodes returns the union's codes sorted.
func (c Config) ConfiguredCodes() []string {
	all := c.AllRules()
	out := make([]string, 0, len(all))
	for code := range all {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isNumeric is false for the empty string, so a category prefix equal to a
// full rule code does not select that rule.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
