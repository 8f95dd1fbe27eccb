package ruffconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Codes shorter than this are category prefixes, not full rule codes.
const MinRuleCodeLen = 4

// What ruff assumes when pyproject.toml has no [tool.ruff] section.
var defaultSelect = []string{"E", "F"}

// Raw holds the select/ignore code sets as written in the config file,
// before resolution against a catalog.
type Raw struct {
	Path     string
	Selected map[string]struct{}
	Ignored  map[string]struct{}
}

func DefaultRaw(path string) Raw {
	sel := make(map[string]struct{}, len(defaultSelect))
	for _, c := range defaultSelect {
		sel[c] = struct{}{}
	}
	return Raw{Path: path, Selected: sel, Ignored: map[string]struct{}{}}
}

// LoadRaw reads a ruff config file. pyproject.toml keeps its config under
// [tool.ruff], ruff.toml and .ruff.toml are the config table themselves.
// In either layout a `lint` subtable shadows the root for select/ignore.
func LoadRaw(path string) (Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Raw{}, fmt.Errorf("reading ruff config: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Raw{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	var table map[string]any
	switch filepath.Base(path) {
	case "pyproject.toml":
		tool, _ := doc["tool"].(map[string]any)
		ruff, ok := tool["ruff"].(map[string]any)
		if !ok {
			slog.Info("pyproject.toml has no [tool.ruff] section, assuming ruff defaults")
			return DefaultRaw(path), nil
		}
		table = ruff
	case "ruff.toml", ".ruff.toml":
		table = doc
	default:
		return Raw{}, fmt.Errorf("config file must be pyproject.toml, ruff.toml or .ruff.toml, got %s", filepath.Base(path))
	}

	// `lint` was added to ruff later, both spellings remain valid
	if lint, ok := table["lint"].(map[string]any); ok {
		table = lint
	}

	return Raw{
		Path:     path,
		Selected: codeSet(table["select"]),
		Ignored:  codeSet(table["ignore"]),
	}, nil
}

// Search probes dir for a ruff config file, in ruff's own precedence order.
func Search(dir string) (string, bool) {
	for _, name := range []string{"pyproject.toml", "ruff.toml", ".ruff.toml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			slog.Info("found ruff config", "path", p)
			return p, true
		}
	}
	return "", false
}

func codeSet(v any) map[string]struct{} {
	out := map[string]struct{}{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, it := range items {
		if s, ok := it.(string); ok {
			out[s] = struct{}{}
		}
	}
	return out
}
