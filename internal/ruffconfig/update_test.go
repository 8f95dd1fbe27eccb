package ruffconfig

import (
	"errors"
	"os"
	"testing"
)

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back %s: %v", path, err)
	}
	return string(data)
}

func TestAddSelectedRewritesExistingLine(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", "[project]\nname = \"demo\"\n\n[tool.ruff.lint]\n  select = [\"E\"]\nignore = [\"D100\"]\n")

	n, err := AddSelected(path, []string{"F401", "E"})
	if err != nil {
		t.Fatalf("add selected: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected a resulting select list of 2; got %d", n)
	}
	want := "[project]\nname = \"demo\"\n\n[tool.ruff.lint]\n  select = [\"E\", \"F401\"]\nignore = [\"D100\"]\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedInsertsAfterRuffHeader(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", "[tool.ruff]\nline-length = 100\n")

	n, err := AddSelected(path, []string{"F401"})
	if err != nil {
		t.Fatalf("add selected: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a resulting select list of 1; got %d", n)
	}
	want := "[tool.ruff]\nselect = [\"F401\"]\nline-length = 100\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedAppendsLintSection(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", "[project]\nname = \"demo\"\n")

	if _, err := AddSelected(path, []string{"F401"}); err != nil {
		t.Fatalf("add selected: %v", err)
	}
	want := "[project]\nname = \"demo\"\n\n[tool.ruff.lint]\nselect = [\"F401\"]\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedRuffTomlRootSelect(t *testing.T) {
	path := writeConfig(t, "ruff.toml", "select = [\"E\"]\nline-length = 88\n")

	n, err := AddSelected(path, []string{"RUF100"})
	if err != nil {
		t.Fatalf("add selected: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected a resulting select list of 2; got %d", n)
	}
	want := "select = [\"E\", \"RUF100\"]\nline-length = 88\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedRuffTomlLintSection(t *testing.T) {
	path := writeConfig(t, "ruff.toml", "line-length = 88\n\n[lint]\nselect = [\"E\"]\n")

	if _, err := AddSelected(path, []string{"W605"}); err != nil {
		t.Fatalf("add selected: %v", err)
	}
	want := "line-length = 88\n\n[lint]\nselect = [\"E\", \"W605\"]\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedRuffTomlBareRootTable(t *testing.T) {
	path := writeConfig(t, "ruff.toml", "line-length = 88\n")

	if _, err := AddSelected(path, []string{"E"}); err != nil {
		t.Fatalf("add selected: %v", err)
	}
	want := "line-length = 88\nselect = [\"E\"]\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedLeavesExtendSelectAlone(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", "[tool.ruff.lint]\nextend-select = [\"W\"]\n")

	if _, err := AddSelected(path, []string{"F401"}); err != nil {
		t.Fatalf("add selected: %v", err)
	}
	want := "[tool.ruff.lint]\nselect = [\"F401\"]\nextend-select = [\"W\"]\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected extend-select untouched:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedMergesAndSorts(t *testing.T) {
	path := writeConfig(t, "pyproject.toml", "[tool.ruff]\nselect = [\"F401\", \"B008\"]\n")

	n, err := AddSelected(path, []string{"E501", "B008"})
	if err != nil {
		t.Fatalf("add selected: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected a resulting select list of 3; got %d", n)
	}
	want := "[tool.ruff]\nselect = [\"B008\", \"E501\", \"F401\"]\n"
	if got := readBack(t, path); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestAddSelectedAlreadySelected(t *testing.T) {
	content := "[tool.ruff]\nselect = [\"E\", \"F401\"]\n"
	path := writeConfig(t, "pyproject.toml", content)

	n, err := AddSelected(path, []string{"F401"})
	if !errors.Is(err, ErrAlreadySelected) {
		t.Fatalf("expected ErrAlreadySelected; got %v", err)
	}
	if n != 2 {
		t.Fatalf("expected the current list size back; got %d", n)
	}
	if got := readBack(t, path); got != content {
		t.Fatalf("expected the file untouched:\n%s\ngot:\n%s", content, got)
	}
}

func TestAddSelectedBadTOML(t *testing.T) {
	path := writeConfig(t, "ruff.toml", "select = [unclosed\n")
	if _, err := AddSelected(path, []string{"E"}); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestAddSelectedMissingFile(t *testing.T) {
	if _, err := AddSelected("/no/such/dir/ruff.toml", []string{"E"}); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
