package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"textlintls/internal/fix"
	"textlintls/internal/textlint"
	"textlintls/internal/ui"
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply textlint autofixes to documents",
	Long: `Apply the fixes textlint proposes, pass after pass, until no fixable
finding remains. Overlapping fixes are deferred to the next pass.`,
	RunE: runFixCmd,
}

func init() {
	fixCmd.Flags().String("root", "", "project root used to resolve textlint (default working directory)")
	fixCmd.Flags().IntP("jobs", "j", runtime.GOMAXPROCS(0), "number of files fixed in parallel")
	fixCmd.Flags().Int("passes", 10, "maximum lint passes per file")
	fixCmd.Flags().Bool("dry-run", false, "report fixes without writing files")
	fixCmd.Flags().Bool("native", false, "let textlint apply its own fixes instead of the fix registry")
	fixCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

type fixOptions struct {
	root   string
	jobs   int
	passes int
	dryRun bool
	native bool
}

// fileFix is the outcome of fixing one file.
type fileFix struct {
	path      string
	fixes     int
	remaining int
	changed   bool
	err       error
}

func runFixCmd(cmd *cobra.Command, args []string) error {
	var opts fixOptions
	rootFlag, _ := cmd.Flags().GetString("root")
	opts.jobs, _ = cmd.Flags().GetInt("jobs")
	opts.passes, _ = cmd.Flags().GetInt("passes")
	opts.dryRun, _ = cmd.Flags().GetBool("dry-run")
	opts.native, _ = cmd.Flags().GetBool("native")
	uiFlag, _ := cmd.Flags().GetString("ui")
	mode, err := parseProgressMode(uiFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	timer := newTimer(cmd)
	defer reportTimings(cmd, timer)
	if opts.root, err = workingRoot(rootFlag); err != nil {
		return err
	}
	cache, err := openCache(settings)
	if err != nil {
		return err
	}
	done := timer.Track("configure")
	engine, err := openEngine(ctx, settings, opts.root, cache)
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
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No files to fix")
		return nil
	}

	work := func(ctx context.Context, events chan<- ui.Event) ([]fileFix, error) {
		return fixFiles(ctx, engine.Linter, files, opts, events)
	}
	var results []fileFix
	done = timer.Track("fix")
	out := cmd.OutOrStdout()
	if useProgressView(mode, out) {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = displayPath(opts.root, f)
		}
		results, err = runFixWithUI(ctx, out, "textlint fix", names, work)
	} else {
		results, err = work(ctx, nil)
	}
	done("")
	printFixes(out, opts, results)
	return err
}

// fixFiles fixes files concurrently. A failing file does not stop the
// others; every failure is returned joined. Once ctx is done the remaining
// files are skipped and ctx.Err() is returned. events may be nil.
func fixFiles(ctx context.Context, linter textlint.Linter, files []string, opts fixOptions, events chan<- ui.Event) ([]fileFix, error) {
	results := make([]fileFix, len(files))
	emit := func(ev ui.Event) {
		if events != nil {
			events <- ev
		}
	}
	var g errgroup.Group
	g.SetLimit(max(1, opts.jobs))
	for i, file := range files {
		name := displayPath(opts.root, file)
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = fileFix{path: file, err: ctx.Err()}
				emit(ui.Event{File: name, Status: ui.StatusSkipped})
				return nil
			}
			emit(ui.Event{File: name, Status: ui.StatusLinting})
			res := fixFile(ctx, linter, file, opts)
			results[i] = res
			switch {
			case res.err != nil:
				emit(ui.Event{File: name, Status: ui.StatusError})
			case res.changed:
				emit(ui.Event{File: name, Status: ui.StatusFixed, Fixes: res.fixes})
			default:
				emit(ui.Event{File: name, Status: ui.StatusClean})
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	return results, errors.Join(errs...)
}

func fixFile(ctx context.Context, linter textlint.Linter, file string, opts fixOptions) fileFix {
	res := fileFix{path: file}
	info, err := os.Stat(file)
	if err != nil {
		res.err = err
		return res
	}
	data, err := os.ReadFile(file)
	if err != nil {
		res.err = err
		return res
	}
	text := string(data)

	var output string
	if opts.native {
		fr, err := linter.FixText(ctx, text, file)
		if err != nil {
			res.err = fmt.Errorf("fix %s: %w", file, err)
			return res
		}
		output = fr.Output
		res.fixes = len(fr.ApplyingMessages)
		res.remaining = len(fr.RemainingMessages)
	} else {
		out, err := fix.FixText(ctx, linter, text, file, opts.passes)
		if err != nil {
			res.err = fmt.Errorf("fix %s: %w", file, err)
			return res
		}
		output = out.Output
		res.fixes = len(out.Applied)
		res.remaining = out.Remaining
	}
	res.changed = output != text
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}
	if res.changed && !opts.dryRun {
		if err := os.WriteFile(file, []byte(output), info.Mode().Perm()); err != nil {
			res.err = err
		}
	}
	return res
}

func printFixes(out io.Writer, opts fixOptions, results []fileFix) {
	verb := "Applied"
	if opts.dryRun {
		verb = "Would apply"
	}
	fixed, total := 0, 0
	for _, r := range results {
		name := displayPath(opts.root, r.path)
		switch {
		case r.err != nil:
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("failed"), name, r.err)
		case r.changed:
			fixed++
			total += r.fixes
			fmt.Fprintf(out, "%s %d fix(es) to %s", verb, r.fixes, name)
			if r.remaining > 0 {
				fmt.Fprintf(out, " (%d finding(s) left)", r.remaining)
			}
			fmt.Fprintln(out)
		}
	}
	if fixed == 0 {
		fmt.Fprintln(out, "Nothing to fix")
		return
	}
	fmt.Fprintln(out, color.GreenString("%s %d fix(es) in %d file(s)", verb, total, fixed))
}
