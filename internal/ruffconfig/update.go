package ruffconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrAlreadySelected means every candidate code was already in the select list.
var ErrAlreadySelected = errors.New("all selected rules are already configured")

// AddSelected merges codes into the file's select list and rewrites only the
// select line, keeping the rest of the file untouched. Returns the size of
// the resulting select list.
func AddSelected(path string, codes []string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading ruff config: %w", err)
	}

	existing, err := currentSelect(path, data)
	if err != nil {
		return 0, err
	}

	merged := make(map[string]struct{}, len(existing)+len(codes))
	for _, c := range existing {
		merged[c] = struct{}{}
	}
	added := 0
	for _, c := range codes {
		if _, ok := merged[c]; !ok {
			merged[c] = struct{}{}
			added++
		}
	}
	if added == 0 {
		return len(merged), ErrAlreadySelected
	}

	update := make([]string, 0, len(merged))
	for c := range merged {
		update = append(update, c)
	}
	sort.Strings(update)

	out := rewriteSelect(path, string(data), update)
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return 0, fmt.Errorf("writing ruff config: %w", err)
	}
	return len(update), nil
}

// currentSelect reads the select list the same way LoadRaw does, except a
// pyproject.toml without a [tool.ruff] section is just an empty list here.
func currentSelect(path string, data []byte) ([]string, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	table := doc
	if filepath.Base(path) == "pyproject.toml" {
		tool, _ := doc["tool"].(map[string]any)
		ruff, _ := tool["ruff"].(map[string]any)
		table = ruff
	}
	if lint, ok := table["lint"].(map[string]any); ok {
		table = lint
	}
	var out []string
	if items, ok := table["select"].([]any); ok {
		for _, it := range items {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func rewriteSelect(path, content string, codes []string) string {
	pyproject := filepath.Base(path) == "pyproject.toml"
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	if i := findSelectLine(pyproject, lines); i != -1 {
		indent := lines[i][:len(lines[i])-len(strings.TrimLeft(lines[i], " \t"))]
		lines[i] = indent + formatSelect(codes) + "\n"
		return strings.Join(lines, "")
	}
	return insertSelect(pyproject, content, lines, codes)
}

func findSelectLine(pyproject bool, lines []string) int {
	inSection := false
	sawSection := false
	for i, line := range lines {
		isHeader := strings.HasPrefix(line, "[")
		if isHeader {
			sawSection = true
		}
		if pyproject {
			if strings.Contains(line, "[tool.ruff.lint]") || strings.Contains(line, "[tool.ruff]") {
				inSection = true
			} else if isHeader && !strings.Contains(line, "tool.ruff") {
				inSection = false
			}
			if inSection && isSelectAssignment(line) {
				return i
			}
		} else {
			if strings.Contains(line, "[lint]") {
				inSection = true
			} else if isHeader {
				inSection = false
			}
			// root-table keys before the first section header count too
			if (inSection || !sawSection) && isSelectAssignment(line) {
				return i
			}
		}
	}
	return -1
}

func insertSelect(pyproject bool, content string, lines []string, codes []string) string {
	line := formatSelect(codes) + "\n"

	if pyproject {
		if i := lineContaining(lines, "[tool.ruff.lint]"); i != -1 {
			return spliceAfter(lines, i, line)
		}
		if i := lineContaining(lines, "[tool.ruff]"); i != -1 {
			return spliceAfter(lines, i, line)
		}
		return appendSection(content, "[tool.ruff.lint]", line)
	}

	if i := lineContaining(lines, "[lint]"); i != -1 {
		return spliceAfter(lines, i, line)
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "[") {
			return appendSection(content, "[lint]", line)
		}
	}
	// no sections at all: the whole file is the root table
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line
}

func isSelectAssignment(line string) bool {
	eq := strings.Index(line, "=")
	if eq == -1 {
		return false
	}
	return strings.TrimSpace(line[:eq]) == "select"
}

func formatSelect(codes []string) string {
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = strconv.Quote(c)
	}
	return "select = [" + strings.Join(quoted, ", ") + "]"
}

func lineContaining(lines []string, sub string) int {
	for i, l := range lines {
		if strings.Contains(l, sub) {
			return i
		}
	}
	return -1
}

func spliceAfter(lines []string, i int, line string) string {
	if !strings.HasSuffix(lines[i], "\n") {
		lines[i] += "\n"
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:i+1]...)
	out = append(out, line)
	out = append(out, lines[i+1:]...)
	return strings.Join(out, "")
}

func appendSection(content, header, line string) string {
	if content == "" {
		return header + "\n" + line
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + header + "\n" + line
}
