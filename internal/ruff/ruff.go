package ruff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/codewithboateng/rufflift/internal/ruleset"
)

const defaultTimeout = 2 * time.Minute

// Client invokes the ruff binary found on PATH.
type Client struct {
	bin     string
	timeout time.Duration
}

func NewClient(bin string, timeout time.Duration) (*Client, error) {
	if bin == "" {
		bin = "ruff"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("locating %s: %w", bin, err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{bin: path, timeout: timeout}, nil
}

// NotInstalled reports whether err means the ruff binary is absent from PATH.
func NotInstalled(err error) bool { return errors.Is(err, exec.ErrNotFound) }

// Version returns the bare version string, e.g. "0.6.4" from "ruff 0.6.4".
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	return parseVersion(string(out))
}

// Rules fetches the full rule catalog of the installed ruff build.
func (c *Client) Rules(ctx context.Context) ([]ruleset.Rule, error) {
	out, err := c.run(ctx, "rule", "--all", "--output-format=json")
	if err != nil {
		return nil, err
	}
	return DecodeRules(out)
}

// Check lints target with every rule enabled and returns the violations.
func (c *Client) Check(ctx context.Context, target string) ([]ruleset.Violation, error) {
	out, err := c.run(ctx, "check", target, "--output-format=json", "--select=ALL", "--exit-zero")
	if err != nil {
		return nil, err
	}
	return DecodeViolations(out)
}

// run executes ruff under the client timeout. Linters exit non-zero when they
// find issues, so a failed exit with output on stdout still counts as success.
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("ruff %s timed out after %s", args[0], c.timeout)
	}
	if err != nil && stdout.Len() == 0 {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("ruff %s: %s", args[0], msg)
	}
	slog.Debug("ruff finished", "args", strings.Join(args, " "), "duration", time.Since(start), "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

func parseVersion(out string) (string, error) {
	fs := strings.Fields(strings.TrimSpace(out))
	if len(fs) < 2 || fs[0] != "ruff" {
		return "", fmt.Errorf("unexpected ruff version output %q", strings.TrimSpace(out))
	}
	return fs[1], nil
}

func DecodeRules(data []byte) ([]ruleset.Rule, error) {
	var rules []ruleset.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decoding rule catalog: %w", err)
	}
	return rules, nil
}

func DecodeViolations(data []byte) ([]ruleset.Violation, error) {
	var vs []ruleset.Violation
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("decoding violations: %w", err)
	}
	return vs, nil
}

// LoadRulesFile reads a saved `ruff rule --all` JSON dump.
func LoadRulesFile(path string) ([]ruleset.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRules(data)
}

// LoadViolationsFile reads a saved `ruff check` JSON dump.
func LoadViolationsFile(path string) ([]ruleset.Violation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeViolations(data)
}
