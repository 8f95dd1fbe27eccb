package interactive

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

var (
	ErrNotATTY  = errors.New("interactive pick needs a terminal")
	ErrCanceled = errors.New("canceled")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type entry struct {
	code       string
	name       string
	preview    bool
	violations int
}

func (e entry) label() string {
	l := fmt.Sprintf("%-8s %s", e.code, e.name)
	if e.violations > 0 {
		l += fmt.Sprintf(" (%d violations)", e.violations)
	}
	if e.preview {
		l += " [preview]"
	}
	return l
}

type category struct {
	name  string
	rules []entry
}

// Pick walks the run's suggestions category by category and returns the
// codes the user chose, sorted. It never touches the config file itself;
// the caller commits the selection once Pick returns.
func Pick(run *ruleset.Run, configPath string) ([]string, error) {
	// Fall back to an error for piped input; huh needs a real terminal.
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, ErrNotATTY
	}

	cats := categoriesOf(run)
	total := 0
	for _, c := range cats {
		total += len(c.rules)
	}
	if total == 0 {
		fmt.Println("No rules to add!")
		return nil, nil
	}

	var picked []string
	for _, c := range cats {
		if len(c.rules) == 0 {
			continue
		}
		codes, err := pickCategory(c)
		if err != nil {
			return nil, err
		}
		picked = append(picked, codes...)
	}
	if len(picked) == 0 {
		fmt.Println("Nothing selected.")
		return nil, nil
	}
	sort.Strings(picked)

	fmt.Println(headerStyle.Render(fmt.Sprintf("%d rules selected:", len(picked))))
	printRows(picked, 5)

	ok, err := confirm(fmt.Sprintf("Add these %d rules to %s?", len(picked), configPath))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCanceled
	}
	return picked, nil
}

func categoriesOf(run *ruleset.Run) []category {
	resp := category{name: "Respected"}
	for _, r := range run.Respected {
		resp.rules = append(resp.rules, entry{code: r.Code, name: r.Name, preview: r.Preview})
	}
	fix := category{name: "Autofixable"}
	for _, r := range run.Autofixable {
		fix.rules = append(fix.rules, entry{code: r.Code, name: r.Name, preview: r.Preview})
	}
	app := category{name: "Applicable"}
	for _, vr := range run.Applicable {
		app.rules = append(app.rules, entry{code: vr.Code, name: vr.Name, preview: vr.Preview, violations: vr.Violations})
	}
	return []category{resp, fix, app}
}

const (
	modeAll  = "all"
	modeSome = "specific"
	modeSkip = "skip"
)

func pickCategory(c category) ([]string, error) {
	explore, err := confirm(fmt.Sprintf("%s: %d rules. Have a look?", c.name, len(c.rules)))
	if err != nil {
		return nil, err
	}
	if !explore {
		return nil, nil
	}

	mode := modeAll
	err = huh.NewSelect[string]().
		Title(fmt.Sprintf("How should the %s rules be added?", strings.ToLower(c.name))).
		Options(
			huh.NewOption("Add all of them", modeAll),
			huh.NewOption("Pick specific rules", modeSome),
			huh.NewOption("Skip this category", modeSkip),
		).
		Value(&mode).
		Run()
	if err != nil {
		return nil, asCancel(err)
	}

	switch mode {
	case modeSkip:
		return nil, nil
	case modeAll:
		codes := make([]string, 0, len(c.rules))
		for _, e := range c.rules {
			codes = append(codes, e.code)
		}
		return codes, nil
	}

	opts := make([]huh.Option[string], 0, len(c.rules))
	for _, e := range c.rules {
		opts = append(opts, huh.NewOption(e.label(), e.code))
	}
	var codes []string
	err = huh.NewMultiSelect[string]().
		Title(fmt.Sprintf("%s rules", c.name)).
		Options(opts...).
		Value(&codes).
		Run()
	if err != nil {
		return nil, asCancel(err)
	}
	return codes, nil
}

func confirm(title string) (bool, error) {
	ok := false
	if err := huh.NewConfirm().Title(title).Value(&ok).Run(); err != nil {
		return false, asCancel(err)
	}
	return ok, nil
}

func asCancel(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCanceled
	}
	return err
}

// PromptPassword asks for a password without echoing it. Callers should
// fall back to a flag when no terminal is attached.
func PromptPassword(title string) (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", ErrNotATTY
	}
	var pw string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&pw).
		Run()
	if err != nil {
		return "", asCancel(err)
	}
	return pw, nil
}

// printRows prints codes five to a line so long selections stay scannable.
func printRows(codes []string, perRow int) {
	for i := 0; i < len(codes); i += perRow {
		end := i + perRow
		if end > len(codes) {
			end = len(codes)
		}
		row := make([]string, 0, perRow)
		for _, c := range codes[i:end] {
			row = append(row, fmt.Sprintf("%-8s", c))
		}
		fmt.Println(mutedStyle.Render(strings.TrimRight(strings.Join(row, " "), " ")))
	}
}
