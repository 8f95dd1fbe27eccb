package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codewithboateng/rufflift/internal/api"
	"github.com/codewithboateng/rufflift/internal/classify"
	"github.com/codewithboateng/rufflift/internal/interactive"
	"github.com/codewithboateng/rufflift/internal/reporting"
	"github.com/codewithboateng/rufflift/internal/ruff"
	"github.com/codewithboateng/rufflift/internal/ruffconfig"
	"github.com/codewithboateng/rufflift/internal/ruleset"
	"github.com/codewithboateng/rufflift/internal/security"
	"github.com/codewithboateng/rufflift/internal/shared"
	"github.com/codewithboateng/rufflift/internal/storage"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "report":
		reportCmd(os.Args[2:])
	case "pick":
		pickCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "snooze":
		snoozeCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "user":
		userCmd(os.Args[2:])
	case "version":
		fmt.Println("rufflift", version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `rufflift – Ruff rule adoption helper

Usage:
  rufflift report [--target .] [--out <dir>] [--db ./rufflift.db] [--ruff-config <file>] [--repo-name <name>] [--include-sometimes-fixable] [--include-preview] [--rules-json <file>] [--violations-json <file>] [--no-save] [--config <yaml>]
  rufflift pick   [--target .] [--scan] [--db ./rufflift.db] [--ruff-config <file>] [--config <yaml>]
  rufflift diff   --base <run-id> --head <run-id> [--out <dir>] [--db ./rufflift.db] [--config <yaml>]
  rufflift snooze add --code <CODE> --reason <text> [--expires 720h] [--by <name>] | list [--all] | revoke --id <N>
  rufflift serve  [--addr :8787] [--db ./rufflift.db] [--config <yaml>]
  rufflift user   add --username <name> [--password <pw>] [--role viewer|admin]
  rufflift version
`)
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	target := fs.String("target", ".", "Directory or file ruff should check")
	ruffConfig := fs.String("ruff-config", "", "Explicit Ruff config file (pyproject.toml, ruff.toml or .ruff.toml)")
	repoName := fs.String("repo-name", "", "Repository name shown in the report title")
	outDir := fs.String("out", "", "Output directory for reports")
	dbPath := fs.String("db", "", "SQLite database path")
	rulesJSON := fs.String("rules-json", "", "Read the rule catalog from a file instead of running ruff")
	violationsJSON := fs.String("violations-json", "", "Read violations from a file instead of running ruff")
	includeSometimes := fs.Bool("include-sometimes-fixable", false, "Count sometimes-fixable rules as autofixable")
	includePreview := fs.Bool("include-preview", false, "Let preview rules into the autofixable list")
	noSave := fs.Bool("no-save", false, "Skip persisting the run")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// precedence: flags > config > defaults
	if *outDir == "" {
		*outDir = cfg.Report.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *repoName == "" {
		*repoName = cfg.Report.RepoName
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "report: cannot create out dir:", err)
		os.Exit(1)
	}

	run, err := buildRun(cfg, runInputs{
		target:         *target,
		ruffConfig:     *ruffConfig,
		repoName:       *repoName,
		rulesJSON:      *rulesJSON,
		violationsJSON: *violationsJSON,
		opts: classify.Options{
			IncludeSometimesFixable: *includeSometimes,
			IncludePreview:          *includePreview,
		},
	})
	if err != nil {
		failRuff("report", err)
	}

	// Persist & report
	db := openStore(*dbPath)
	defer db.Close()

	snoozes, err := db.ListSnoozes(true)
	if err != nil {
		slog.Warn("snooze list error", "err", err)
	}
	if n := classify.ApplySnoozes(run, snoozes); n > 0 {
		slog.Info("suggestions snoozed", "count", n)
	}

	if !*noSave {
		if err := db.SaveRun(run); err != nil {
			slog.Error("db save run error", "err", err)
			os.Exit(1)
		}
	}

	mdPath, err := reporting.WriteMarkdown(*outDir, run)
	if err != nil {
		slog.Error("markdown write error", "err", err)
		os.Exit(1)
	}
	csvPaths, _ := reporting.WriteCSVs(*outDir, run)
	jsonPath, _ := reporting.WriteJSON(run.ID, *outDir, run)
	htmlPath, _ := reporting.WriteHTML(run.ID, *outDir, run)

	slog.Info("report complete",
		"run", run.ID,
		"suggestions", run.SuggestionCount(),
		"markdown", mdPath,
		"json", jsonPath,
		"html", htmlPath,
		"db", filepath.Clean(*dbPath),
	)
	csvLine := "(none)"
	if len(csvPaths) > 0 {
		csvLine = strings.Join(csvPaths, ", ")
	}
	fmt.Printf("Report OK\n  Run: %s\n  Markdown: %s\n  JSON: %s\n  HTML: %s\n  CSV: %s\n  DB: %s\n",
		run.ID, mdPath, jsonPath, htmlPath, csvLine, filepath.Clean(*dbPath))
}

func pickCmd(args []string) {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	target := fs.String("target", ".", "Directory or file ruff should check")
	ruffConfig := fs.String("ruff-config", "", "Explicit Ruff config file (pyproject.toml, ruff.toml or .ruff.toml)")
	dbPath := fs.String("db", "", "SQLite database path")
	scan := fs.Bool("scan", false, "Run the pipeline fresh instead of reusing the latest stored run")
	includeSometimes := fs.Bool("include-sometimes-fixable", false, "Count sometimes-fixable rules as autofixable")
	includePreview := fs.Bool("include-preview", false, "Let preview rules into the autofixable list")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	cfgPath, ok := ruffConfigPath(*ruffConfig, *target)
	if !ok {
		fmt.Fprintln(os.Stderr, "pick: no ruff config file found (pass --ruff-config)")
		os.Exit(1)
	}

	db := openStore(*dbPath)
	defer db.Close()

	var run ruleset.Run
	if *scan {
		r, err := buildRun(cfg, runInputs{
			target:     *target,
			ruffConfig: cfgPath,
			repoName:   cfg.Report.RepoName,
			opts: classify.Options{
				IncludeSometimesFixable: *includeSometimes,
				IncludePreview:          *includePreview,
			},
		})
		if err != nil {
			failRuff("pick", err)
		}
		if snoozes, err := db.ListSnoozes(true); err == nil {
			classify.ApplySnoozes(r, snoozes)
		}
		run = *r
	} else {
		latest, err := db.LoadLatestRun()
		if err != nil {
			fmt.Fprintln(os.Stderr, "pick: no stored runs yet (run `rufflift report` first, or pass --scan)")
			os.Exit(1)
		}
		run = latest
	}

	codes, err := interactive.Pick(&run, cfgPath)
	if err != nil {
		if errors.Is(err, interactive.ErrCanceled) {
			fmt.Println("Canceled, nothing written.")
			return
		}
		if errors.Is(err, interactive.ErrNotATTY) {
			fmt.Fprintln(os.Stderr, "pick: needs an interactive terminal")
			os.Exit(1)
		}
		slog.Error("pick error", "err", err)
		os.Exit(1)
	}
	if len(codes) == 0 {
		return
	}

	added, err := ruffconfig.AddSelected(cfgPath, codes)
	if err != nil {
		if errors.Is(err, ruffconfig.ErrAlreadySelected) {
			fmt.Printf("All %d selected rules are already configured in %s\n", len(codes), cfgPath)
			return
		}
		slog.Error("config update error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Pick OK\n  Added: %d rules\n  Config: %s\n", added, cfgPath)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base run ID")
	head := fs.String("head", "", "Head run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Report.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}
	db := openStore(*dbPath)
	defer db.Close()

	br, err := db.LoadRun(*base)
	if err != nil {
		slog.Error("load base run error", "err", err)
		os.Exit(1)
	}
	hr, err := db.LoadRun(*head)
	if err != nil {
		slog.Error("load head run error", "err", err)
		os.Exit(1)
	}
	path, err := reporting.WriteDiffJSON(*base, *head, *outDir, &br, &hr)
	if err != nil {
		slog.Error("diff write error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Diff OK\n  %s\n", path)
}

func snoozeCmd(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "snooze: expected add, list or revoke")
		os.Exit(2)
	}
	switch args[0] {
	case "add":
		snoozeAddCmd(args[1:])
	case "list":
		snoozeListCmd(args[1:])
	case "revoke":
		snoozeRevokeCmd(args[1:])
	default:
		fmt.Fprintln(os.Stderr, "snooze: expected add, list or revoke")
		os.Exit(2)
	}
}

func snoozeAddCmd(args []string) {
	fs := flag.NewFlagSet("snooze add", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	dbPath := fs.String("db", "", "SQLite database path")
	code := fs.String("code", "", "Rule code to snooze")
	reason := fs.String("reason", "", "Why the rule is snoozed")
	expires := fs.Duration("expires", 720*time.Hour, "How long the snooze lasts")
	by := fs.String("by", "", "Who created the snooze (defaults to $USER)")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *code == "" || *reason == "" {
		fmt.Fprintln(os.Stderr, "snooze add: --code and --reason are required")
		os.Exit(2)
	}
	creator := *by
	if creator == "" {
		creator = os.Getenv("USER")
	}
	if creator == "" {
		creator = "cli"
	}

	db := openStore(*dbPath)
	defer db.Close()

	exp := time.Now().UTC().Add(*expires)
	id, err := db.CreateSnooze(*code, *reason, creator, exp)
	if err != nil {
		slog.Error("snooze create error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Snooze OK\n  ID: %d\n  Code: %s\n  Expires: %s\n", id, *code, exp.Format(time.RFC3339))
}

func snoozeListCmd(args []string) {
	fs := flag.NewFlagSet("snooze list", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	dbPath := fs.String("db", "", "SQLite database path")
	all := fs.Bool("all", false, "Include expired and revoked snoozes")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db := openStore(*dbPath)
	defer db.Close()

	rows, err := db.ListSnoozes(!*all)
	if err != nil {
		slog.Error("snooze list error", "err", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Println("No snoozes.")
		return
	}
	now := time.Now()
	fmt.Printf("%-5s %-10s %-8s %-22s %-12s %s\n", "ID", "CODE", "STATUS", "EXPIRES", "BY", "REASON")
	for _, sn := range rows {
		status := "active"
		switch {
		case sn.RevokedAt != nil:
			status = "revoked"
		case sn.ExpiresAt.Before(now):
			status = "expired"
		}
		fmt.Printf("%-5d %-10s %-8s %-22s %-12s %s\n",
			sn.ID, sn.Code, status, sn.ExpiresAt.UTC().Format(time.RFC3339), sn.CreatedBy, sn.Reason)
	}
}

func snoozeRevokeCmd(args []string) {
	fs := flag.NewFlagSet("snooze revoke", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	dbPath := fs.String("db", "", "SQLite database path")
	id := fs.Int64("id", 0, "Snooze ID")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *id <= 0 {
		fmt.Fprintln(os.Stderr, "snooze revoke: --id is required")
		os.Exit(2)
	}

	db := openStore(*dbPath)
	defer db.Close()

	if err := db.RevokeSnooze(*id); err != nil {
		slog.Error("snooze revoke error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Revoke OK\n  ID: %d\n", *id)
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *addr == "" {
		*addr = cfg.API.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db := openStore(*dbPath)
	defer db.Close()

	if n, err := db.PruneSessions(); err == nil && n > 0 {
		slog.Info("pruned expired sessions", "count", n)
	}

	srv := &api.Server{
		DB:              db,
		UserStore:       db,
		Logger:          logger,
		AllowedOrigins:  cfg.API.AllowedOrigins,
		SessionDuration: time.Duration(cfg.API.SessionHours) * time.Hour,
	}
	slog.Info("api listening", "addr", *addr, "db", filepath.Clean(*dbPath))
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func userCmd(args []string) {
	if len(args) < 1 || args[0] != "add" {
		fmt.Fprintln(os.Stderr, "user: expected add subcommand")
		os.Exit(2)
	}
	fs := flag.NewFlagSet("user add", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	dbPath := fs.String("db", "", "SQLite database path")
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password (prompted when omitted)")
	role := fs.String("role", "viewer", "Role: viewer or admin")
	_ = fs.Parse(args[1:])

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *username == "" {
		fmt.Fprintln(os.Stderr, "user add: --username is required")
		os.Exit(2)
	}
	if *role != "viewer" && *role != "admin" {
		fmt.Fprintln(os.Stderr, "user add: --role must be viewer or admin")
		os.Exit(2)
	}
	if *password == "" {
		pw, err := interactive.PromptPassword("Password for " + *username)
		if err != nil {
			fmt.Fprintln(os.Stderr, "user add: no terminal for the password prompt (pass --password)")
			os.Exit(2)
		}
		*password = pw
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "user add: empty password")
		os.Exit(2)
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		slog.Error("hash error", "err", err)
		os.Exit(1)
	}

	db := openStore(*dbPath)
	defer db.Close()

	if _, err := db.CreateUser(*username, hash, *role); err != nil {
		slog.Error("user create error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("User OK\n  Username: %s\n  Role: %s\n", *username, *role)
}

type runInputs struct {
	target         string
	ruffConfig     string
	repoName       string
	rulesJSON      string
	violationsJSON string
	opts           classify.Options
}

// buildRun runs the classification pipeline: catalog and violations from
// ruff (or the offline JSON files), resolved config, then the three
// suggestion lists.
func buildRun(cfg shared.Config, in runInputs) (*ruleset.Run, error) {
	ctx := context.Background()

	var cl *ruff.Client
	ruffVersion := "unknown"
	if in.rulesJSON == "" || in.violationsJSON == "" {
		c, err := ruff.NewClient(cfg.Ruff.Bin, cfg.RuffTimeout())
		if err != nil {
			return nil, err
		}
		cl = c
		v, err := cl.Version(ctx)
		if err != nil {
			return nil, err
		}
		ruffVersion = v
	}

	var rules []ruleset.Rule
	var err error
	if in.rulesJSON != "" {
		rules, err = ruff.LoadRulesFile(in.rulesJSON)
	} else {
		rules, err = cl.Rules(ctx)
	}
	if err != nil {
		return nil, err
	}
	cat, err := ruleset.NewCatalog(rules)
	if err != nil {
		return nil, err
	}

	var violations []ruleset.Violation
	if in.violationsJSON != "" {
		violations, err = ruff.LoadViolationsFile(in.violationsJSON)
	} else {
		violations, err = cl.Check(ctx, in.target)
	}
	if err != nil {
		return nil, err
	}

	rcfg, err := resolveRuffConfig(in.ruffConfig, in.target, cat)
	if err != nil {
		return nil, err
	}

	respected, autofixable, applicable := classify.Classify(cat, violations, rcfg.AllRules(), in.opts)

	return &ruleset.Run{
		ID:          fmt.Sprintf("run-%d", time.Now().Unix()),
		StartedAt:   time.Now().UTC(),
		RepoName:    in.repoName,
		Target:      in.target,
		RuffVersion: ruffVersion,

		IncludeSometimesFixable: in.opts.IncludeSometimesFixable,
		IncludePreview:          in.opts.IncludePreview,

		CatalogSize: cat.Len(),
		Configured:  rcfg.ConfiguredCodes(),
		Respected:   respected,
		Autofixable: autofixable,
		Applicable:  applicable,
	}, nil
}

func ruffConfigPath(explicit, target string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	return ruffconfig.Search(searchDir(target))
}

func searchDir(target string) string {
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		return target
	}
	return filepath.Dir(target)
}

func resolveRuffConfig(explicit, target string, cat ruleset.Catalog) (ruffconfig.Config, error) {
	if p, ok := ruffConfigPath(explicit, target); ok {
		return ruffconfig.FromPath(p, cat)
	}
	slog.Info("no ruff config found, assuming ruff defaults")
	return ruffconfig.FromRaw(ruffconfig.DefaultRaw(""), cat)
}

func openStore(dbPath string) *storage.DB {
	db, err := storage.OpenSQLite(dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}
	return db
}

func failRuff(cmd string, err error) {
	if ruff.NotInstalled(err) {
		fmt.Fprintf(os.Stderr, "%s: ruff is not installed (https://docs.astral.sh/ruff/installation/)\n", cmd)
		os.Exit(3)
	}
	slog.Error(cmd+" error", "err", err)
	os.Exit(1)
}
