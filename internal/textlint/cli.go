package textlint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// Invocation describes one run of the engine executable.
type Invocation struct {
	Dir   string
	Path  string
	Args  []string
	Stdin string
}

// Output is what the engine process produced. ExitCode is reported separately
// from the error because textlint exits with 1 when it finds problems.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes the engine.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

// ExecRunner runs the engine as a subprocess.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if inv.Stdin != "" {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}
	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}

// cliLinter drives the textlint command line with the JSON formatter.
type cliLinter struct {
	bin        string
	root       string
	configFile string
	ignoreFile string
	extensions []string
	runner     Runner
}

func (c *cliLinter) AvailableExtensions() []string {
	return slices.Clone(c.extensions)
}

func (c *cliLinter) baseArgs() []string {
	args := []string{"--format", "json"}
	if c.configFile != "" {
		args = append(args, "--config", c.configFile)
	}
	if c.ignoreFile != "" {
		args = append(args, "--ignore-path", c.ignoreFile)
	}
	return args
}

func (c *cliLinter) run(ctx context.Context, stdin string, args []string, out any) error {
	res, err := c.runner.Run(ctx, Invocation{
		Dir:   c.root,
		Path:  c.bin,
		Args:  args,
		Stdin: stdin,
	})
	if err != nil {
		return fmt.Errorf("run %s: %w", filepath.Base(c.bin), err)
	}
	// 0: clean, 1: problems found, anything else is a fatal engine error.
	if res.ExitCode != 0 && res.ExitCode != 1 {
		msg := strings.TrimSpace(string(res.Stderr))
		if msg == "" {
			msg = strings.TrimSpace(string(res.Stdout))
		}
		return fmt.Errorf("textlint exited with status %d: %s", res.ExitCode, msg)
	}
	payload := bytes.TrimSpace(res.Stdout)
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode textlint output: %w", err)
	}
	return nil
}

func (c *cliLinter) LintText(ctx context.Context, text, filePath string) (*Result, error) {
	args := append(c.baseArgs(), "--stdin", "--stdin-filename", filePath)
	var results []Result
	if err := c.run(ctx, text, args, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Result{FilePath: filePath}, nil
	}
	return &results[0], nil
}

func (c *cliLinter) LintFiles(ctx context.Context, files []string) ([]Result, error) {
	if len(files) == 0 {
		return nil, nil
	}
	args := append(c.baseArgs(), files...)
	var results []Result
	if err := c.run(ctx, "", args, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *cliLinter) FixText(ctx context.Context, text, filePath string) (*FixResult, error) {
	args := append(c.baseArgs(), "--fix", "--dry-run", "--stdin", "--stdin-filename", filePath)
	var results []FixResult
	if err := c.run(ctx, text, args, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &FixResult{FilePath: filePath, Output: text}, nil
	}
	return &results[0], nil
}

func (c *cliLinter) FixFiles(ctx context.Context, files []string) ([]FixResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	args := append(c.baseArgs(), "--fix", "--dry-run")
	args = append(args, files...)
	var results []FixResult
	if err := c.run(ctx, "", args, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// modernLinter adapts textlint v13 and later. It knows the ignore rules and
// can answer ScanFilePath without spawning the engine.
type modernLinter struct {
	*cliLinter
	ignore *IgnoreMatcher
}

func (m *modernLinter) ScanFilePath(_ context.Context, filePath string) (ScanResult, error) {
	if !slices.Contains(m.extensions, filepath.Ext(filePath)) {
		return ScanResult{Status: ScanIgnored}, nil
	}
	if m.ignore.Ignored(filePath) {
		return ScanResult{Status: ScanIgnored}, nil
	}
	return ScanResult{Status: ScanOK}, nil
}

// legacyLinter adapts textlint v12 and older, which predate scanFilePath.
type legacyLinter struct {
	*cliLinter
}
