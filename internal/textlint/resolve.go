package textlint

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// modernMajor is the first engine release with the createLinter API.
const modernMajor = 13

// Options configures engine discovery for one workspace root.
type Options struct {
	Root       string
	ConfigPath string
	IgnorePath string
	NodePath   string
	Extensions []string
	Runner     Runner
	LookPath   func(file string) (string, error)
}

// Engine is a configured linter bound to a workspace root.
type Engine struct {
	Root       string
	ConfigFile string
	IgnoreFile string
	Executable string
	Version    string
	Linter     Linter
	// Digest changes whenever the configuration or engine version changes.
	Digest string
}

// Configure discovers the configuration and the engine executable for
// opts.Root and returns an engine adapter matching the executable's version.
// It returns an error wrapping ErrNoConfig or ErrNoLibrary when discovery fails.
func Configure(ctx context.Context, opts Options) (*Engine, error) {
	configFile, err := LookupConfig(opts.Root, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	ignoreFile := LookupIgnore(opts.Root, opts.IgnorePath)

	bin, err := ResolveExecutable(opts.Root, opts.NodePath, opts.LookPath)
	if err != nil {
		return nil, err
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	version, major, err := detectVersion(ctx, runner, opts.Root, bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoLibrary, err)
	}

	exts, err := ConfigExtensions(configFile)
	if err != nil {
		// An unreadable config still lints with the default plugins.
		exts = DefaultExtensions
	}
	exts = MergeExtensions(exts, opts.Extensions)

	base := &cliLinter{
		bin:        bin,
		root:       opts.Root,
		configFile: configFile,
		ignoreFile: ignoreFile,
		extensions: exts,
		runner:     runner,
	}
	var linter Linter
	if major >= modernMajor {
		ignore, err := LoadIgnore(ignoreFile)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ignoreFile, err)
		}
		linter = &modernLinter{cliLinter: base, ignore: ignore}
	} else {
		linter = &legacyLinter{cliLinter: base}
	}
	return &Engine{
		Root:       opts.Root,
		ConfigFile: configFile,
		IgnoreFile: ignoreFile,
		Executable: bin,
		Version:    version,
		Linter:     linter,
		Digest:     configDigest(configFile) + "@" + version,
	}, nil
}

func executableName() string {
	if runtime.GOOS == "windows" {
		return "textlint.cmd"
	}
	return "textlint"
}

// ResolveExecutable finds the textlint executable: nodePath first (a file or
// a node_modules directory), then node_modules/.bin walking up from root,
// then $PATH.
func ResolveExecutable(root, nodePath string, lookPath func(string) (string, error)) (string, error) {
	name := executableName()
	if nodePath != "" {
		if isFile(nodePath) {
			return nodePath, nil
		}
		for _, candidate := range []string{
			filepath.Join(nodePath, ".bin", name),
			filepath.Join(nodePath, "node_modules", ".bin", name),
		} {
			if isFile(candidate) {
				return candidate, nil
			}
		}
	}
	for dir := root; dir != ""; {
		candidate := filepath.Join(dir, "node_modules", ".bin", name)
		if isFile(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath(name); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: no %s executable for %s", ErrNoLibrary, name, root)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var versionPattern = regexp.MustCompile(`v?(\d+)\.(\d+)\.(\d+)`)

func detectVersion(ctx context.Context, runner Runner, dir, bin string) (string, int, error) {
	out, err := runner.Run(ctx, Invocation{Dir: dir, Path: bin, Args: []string{"--version"}})
	if err != nil {
		return "", 0, err
	}
	if out.ExitCode != 0 {
		return "", 0, fmt.Errorf("%s --version exited with status %d", bin, out.ExitCode)
	}
	return parseVersion(string(out.Stdout))
}

func parseVersion(s string) (string, int, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", 0, fmt.Errorf("unrecognized textlint version %q", strings.TrimSpace(s))
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, err
	}
	return strings.TrimPrefix(m[0], "v"), major, nil
}
