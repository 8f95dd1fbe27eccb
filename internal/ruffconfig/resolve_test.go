package ruffconfig

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

func testCatalog(t *testing.T) ruleset.Catalog {
	t.Helper()
	cat, err := ruleset.NewCatalog([]ruleset.Rule{
		{Code: "E101", Name: "mixed-spaces-and-tabs", Linter: "pycodestyle"},
		{Code: "E501", Name: "line-too-long", Linter: "pycodestyle"},
		{Code: "F401", Name: "unused-import", Linter: "Pyflakes", Fix: ruleset.FixSometimes},
		{Code: "F841", Name: "unused-variable", Linter: "Pyflakes", Fix: ruleset.FixAlways},
		{Code: "RUF012", Name: "mutable-class-default", Linter: "Ruff-specific rules"},
		{Code: "RUF100", Name: "unused-noqa", Linter: "Ruff-specific rules", Fix: ruleset.FixAlways},
		{Code: "ASYNC100", Name: "cancel-scope-no-checkpoint", Linter: "flake8-async"},
		{Code: "CPY001", Name: "missing-copyright-notice", Linter: "flake8-copyright", Preview: true},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func set(codes ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		out[c] = struct{}{}
	}
	return out
}

func sortedCodes(rules map[string]ruleset.Rule) []string {
	out := make([]string, 0, len(rules))
	for c := range rules {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func expectCodes(t *testing.T, got map[string]ruleset.Rule, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected codes [%s]; got %v", strings.Join(want, " "), sortedCodes(got))
	}
	for _, c := range want {
		if _, ok := got[c]; !ok {
			t.Fatalf("expected %s in the result; got %v", c, sortedCodes(got))
		}
	}
}

func TestResolveAll(t *testing.T) {
	cat := testCatalog(t)
	got, err := Resolve(set("ALL"), cat)
	if err != nil {
		t.Fatalf("resolve ALL: %v", err)
	}
	if len(got) != cat.Len() {
		t.Fatalf("expected ALL to select all %d rules; got %d", cat.Len(), len(got))
	}
}

func TestResolveCategoryPrefix(t *testing.T) {
	cat := testCatalog(t)

	got, err := Resolve(set("E"), cat)
	if err != nil {
		t.Fatalf("resolve E: %v", err)
	}
	expectCodes(t, got, "E101", "E501")

	got, err = Resolve(set("RUF"), cat)
	if err != nil {
		t.Fatalf("resolve RUF: %v", err)
	}
	expectCodes(t, got, "RUF012", "RUF100")
}

func TestResolveLongAlphaPrefix(t *testing.T) {
	// ASYNC is 5 letters, past the exact-code length, but all-alpha
	// tokens are still category prefixes.
	got, err := Resolve(set("ASYNC"), testCatalog(t))
	if err != nil {
		t.Fatalf("resolve ASYNC: %v", err)
	}
	expectCodes(t, got, "ASYNC100")
}

func TestResolveNarrowPrefix(t *testing.T) {
	// E1 only covers rules whose remainder after the prefix is numeric.
	got, err := Resolve(set("E1"), testCatalog(t))
	if err != nil {
		t.Fatalf("resolve E1: %v", err)
	}
	expectCodes(t, got, "E101")
}

func TestResolveExactCode(t *testing.T) {
	got, err := Resolve(set("RUF012"), testCatalog(t))
	if err != nil {
		t.Fatalf("resolve RUF012: %v", err)
	}
	expectCodes(t, got, "RUF012")
}

func TestResolveUnknownCode(t *testing.T) {
	_, err := Resolve(set("RUF999"), testCatalog(t))
	if err == nil {
		t.Fatalf("expected an error for an unknown exact code")
	}
	if !strings.Contains(err.Error(), "RUF999") {
		t.Fatalf("expected the error to name the code; got %v", err)
	}
}

func TestResolveMixedLongTokenTakesExactPath(t *testing.T) {
	// PLR09 mixes letters and digits and is past the minimum code length,
	// so it resolves as an exact code even if the user meant the whole
	// PLR09xx family. It misses the catalog and errors instead of
	// expanding. Known quirk, kept on purpose.
	cat, err := ruleset.NewCatalog([]ruleset.Rule{
		{Code: "PLR0911", Name: "too-many-return-statements", Linter: "Pylint"},
		{Code: "PLR0912", Name: "too-many-branches", Linter: "Pylint"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if _, err := Resolve(set("PLR09"), cat); err == nil {
		t.Fatalf("expected the mixed token to miss as an exact code")
	}
	// the all-alpha spelling of the same family still expands
	got, err := Resolve(set("PLR"), cat)
	if err != nil {
		t.Fatalf("resolve PLR: %v", err)
	}
	expectCodes(t, got, "PLR0911", "PLR0912")
}

func TestResolveEmptyAndMisses(t *testing.T) {
	cat := testCatalog(t)
	got, err := Resolve(map[string]struct{}{}, cat)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected an empty resolution; got %v, %v", sortedCodes(got), err)
	}
	// a prefix with no matching rules is fine, just selects nothing
	got, err = Resolve(set("X"), cat)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no matches for X; got %v, %v", sortedCodes(got), err)
	}
}

func TestResolvePrefixNeverSelectsItself(t *testing.T) {
	cat, err := ruleset.NewCatalog([]ruleset.Rule{
		{Code: "E1", Name: "odd-short-code"},
		{Code: "E101", Name: "mixed-spaces-and-tabs"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	got, err := Resolve(set("E1"), cat)
	if err != nil {
		t.Fatalf("resolve E1: %v", err)
	}
	expectCodes(t, got, "E101")
}

func TestFromRaw(t *testing.T) {
	raw := Raw{
		Path:     "x/pyproject.toml",
		Selected: set("E"),
		Ignored:  set("F401"),
	}
	cfg, err := FromRaw(raw, testCatalog(t))
	if err != nil {
		t.Fatalf("from raw: %v", err)
	}
	expectCodes(t, cfg.Selected, "E101", "E501")
	expectCodes(t, cfg.Ignored, "F401")

	codes := cfg.ConfiguredCodes()
	want := []string{"E101", "E501", "F401"}
	if len(codes) != len(want) {
		t.Fatalf("expected configured codes %v; got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("expected configured codes %v; got %v", want, codes)
		}
	}
	if len(cfg.AllRules()) != 3 {
		t.Fatalf("expected 3 rules overall; got %d", len(cfg.AllRules()))
	}
}

func TestFromRawBadSelect(t *testing.T) {
	raw := Raw{Path: "repo/pyproject.toml", Selected: set("E999"), Ignored: set()}
	_, err := FromRaw(raw, testCatalog(t))
	if err == nil {
		t.Fatalf("expected an error for an unknown selected code")
	}
	if !strings.Contains(err.Error(), "pyproject.toml: select:") {
		t.Fatalf("expected the error to name the file and list; got %v", err)
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRawPyproject(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", `
[project]
name = "demo"

[tool.ruff]
select = ["E", "F401"]
ignore = ["E501"]
`)
	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := raw.Selected["E"]; !ok {
		t.Fatalf("expected E selected; got %v", raw.Selected)
	}
	if _, ok := raw.Selected["F401"]; !ok {
		t.Fatalf("expected F401 selected; got %v", raw.Selected)
	}
	if _, ok := raw.Ignored["E501"]; !ok {
		t.Fatalf("expected E501 ignored; got %v", raw.Ignored)
	}
}

func TestLoadRawPyprojectWithoutRuffSection(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", `
[project]
name = "demo"
`)
	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// no [tool.ruff] means ruff runs with its built-in defaults
	if len(raw.Selected) != 2 {
		t.Fatalf("expected the default select set; got %v", raw.Selected)
	}
	for _, c := range []string{"E", "F"} {
		if _, ok := raw.Selected[c]; !ok {
			t.Fatalf("expected default %s selected; got %v", c, raw.Selected)
		}
	}
	if len(raw.Ignored) != 0 {
		t.Fatalf("expected no default ignores; got %v", raw.Ignored)
	}
}

func TestLoadRawPyprojectEmptyRuffSection(t *testing.T) {
	// a present-but-empty [tool.ruff] is an explicit empty config,
	// not an invitation to fall back to defaults
	path := writeConfig(t, "pyproject.toml", `
[tool.ruff]
line-length = 100
`)
	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(raw.Selected) != 0 || len(raw.Ignored) != 0 {
		t.Fatalf("expected empty sets; got select=%v ignore=%v", raw.Selected, raw.Ignored)
	}
}

func TestLoadRawLintShadowsRoot(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", `
[tool.ruff]
select = ["E"]

[tool.ruff.lint]
select = ["F401"]
`)
	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(raw.Selected) != 1 {
		t.Fatalf("expected the lint table to shadow the root; got %v", raw.Selected)
	}
	if _, ok := raw.Selected["F401"]; !ok {
		t.Fatalf("expected F401 from the lint table; got %v", raw.Selected)
	}
}

func TestLoadRawRuffToml(t *testing.T) {
	path := writeConfig(t, "ruff.toml", `
select = ["RUF"]
ignore = ["RUF012"]
line-length = 88
`)
	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := raw.Selected["RUF"]; !ok {
		t.Fatalf("expected RUF selected; got %v", raw.Selected)
	}
	if _, ok := raw.Ignored["RUF012"]; !ok {
		t.Fatalf("expected RUF012 ignored; got %v", raw.Ignored)
	}
}

func TestLoadRawRejectsUnknownFilename(t *testing.T) {
	path := writeConfig(t, "setup.cfg", "[flake8]\n")
	_, err := LoadRaw(path)
	if err == nil {
		t.Fatalf("expected an error for a non-ruff config file")
	}
	if !strings.Contains(err.Error(), "setup.cfg") {
		t.Fatalf("expected the error to name the file; got %v", err)
	}
}

func TestSearchPrecedence(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ruff.toml", "pyproject.toml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	path, ok := Search(dir)
	if !ok {
		t.Fatalf("expected a config to be found")
	}
	if filepath.Base(path) != "pyproject.toml" {
		t.Fatalf("expected pyproject.toml to win; got %s", path)
	}
}

func TestSearchEmptyDir(t *testing.T) {
	if path, ok := Search(t.TempDir()); ok {
		t.Fatalf("expected no config in an empty dir; got %s", path)
	}
}
