package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"textlintls/internal/diag"
	"textlintls/internal/textlint"
)

var errFindings = errors.New("textlint reported errors")

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Lint documents with textlint",
	Long: `Lint files, directories or glob patterns with the textlint engine of the
project root. Directories are searched recursively for the extensions the
engine handles.`,
	RunE: runLintCmd,
}

func init() {
	lintCmd.Flags().String("root", "", "project root used to resolve textlint (default working directory)")
	lintCmd.Flags().IntP("jobs", "j", runtime.GOMAXPROCS(0), "number of files linted in parallel")
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runLintCmd(cmd *cobra.Command, args []string) error {
	rootFlag, err := cmd.Flags().GetString("root")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	ctx := cmd.Context()
	timer := newTimer(cmd)
	defer reportTimings(cmd, timer)
	root, err := workingRoot(rootFlag)
	if err != nil {
		return err
	}
	cache, err := openCache(settings)
	if err != nil {
		return err
	}
	done := timer.Track("configure")
	engine, err := openEngine(ctx, settings, root, cache)
	if err != nil {
		return err
	}
	done("textlint " + engine.Version)

	done = timer.Track("collect")
	files, err := collectFiles(ctx, engine.Linter, args)
	if err != nil {
		return err
	}
	done(fmt.Sprintf("%d file(s)", len(files)))

	done = timer.Track("lint")
	results, err := lintFiles(ctx, engine.Linter, files, jobs)
	if err != nil {
		return err
	}
	done("")

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printResults(out, root, results)
	}
	if summarize(results).errors > 0 {
		return errFindings
	}
	return nil
}

// lintFiles lints files with at most jobs engine calls in flight. Results
// keep the order of files.
func lintFiles(ctx context.Context, linter textlint.Linter, files []string, jobs int) ([]textlint.Result, error) {
	results := make([]textlint.Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, jobs))
	for i, file := range files {
		g.Go(func() error {
			text, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			res, err := linter.LintText(gctx, string(text), file)
			if err != nil {
				return fmt.Errorf("lint %s: %w", file, err)
			}
			results[i] = *res
			results[i].FilePath = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type lintSummary struct {
	errors   int
	warnings int
	infos    int
	fixable  int
}

func (s lintSummary) total() int {
	return s.errors + s.warnings + s.infos
}

func summarize(results []textlint.Result) lintSummary {
	var s lintSummary
	for _, r := range results {
		for _, m := range r.Messages {
			switch diag.SeverityFromLevel(m.Severity) {
			case diag.SevError:
				s.errors++
			case diag.SevWarning:
				s.warnings++
			default:
				s.infos++
			}
			if m.Fixable() {
				s.fixable++
			}
		}
	}
	return s
}

var severityColors = map[diag.Severity]*color.Color{
	diag.SevError:       color.New(color.FgRed, color.Bold),
	diag.SevWarning:     color.New(color.FgYellow, color.Bold),
	diag.SevInformation: color.New(color.FgCyan),
	diag.SevHint:        color.New(color.FgCyan),
}

// formatFinding renders one finding as "path:line:col: SEVERITY message (rule)".
func formatFinding(path string, m textlint.Message) string {
	_, d := diag.FromFinding(m)
	sev := d.Severity.String()
	if c, ok := severityColors[d.Severity]; ok {
		sev = c.Sprint(sev)
	}
	return fmt.Sprintf("%s:%d:%d: %s %s", path, d.Range.Start.Line+1, d.Range.Start.Character+1, sev, d.Message)
}

func printResults(out io.Writer, root string, results []textlint.Result) {
	for _, r := range results {
		msgs := append([]textlint.Message(nil), r.Messages...)
		sort.SliceStable(msgs, func(i, j int) bool {
			if msgs[i].Line != msgs[j].Line {
				return msgs[i].Line < msgs[j].Line
			}
			return msgs[i].Column < msgs[j].Column
		})
		path := displayPath(root, r.FilePath)
		for _, m := range msgs {
			fmt.Fprintln(out, formatFinding(path, m))
		}
	}
	s := summarize(results)
	if s.total() == 0 {
		fmt.Fprintln(out, color.GreenString("No problems found in %d file(s)", len(results)))
		return
	}
	fmt.Fprintf(out, "\n%d problem(s) (%d error(s), %d warning(s)), %d fixable with \"textlintls fix\"\n",
		s.total(), s.errors, s.warnings, s.fixable)
}
