package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"textlintls/internal/diag"
	"textlintls/internal/fix"
	"textlintls/internal/textlint"
	"textlintls/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve textlint lint and fix tools over MCP on stdio",
	SilenceUsage: true,
	RunE:         runMCP,
}

func init() {
	mcpCmd.Flags().String("root", "", "project root used to resolve textlint (default working directory)")
	mcpCmd.Flags().Int("passes", 10, "maximum lint passes for fix_text")
}

// Tool argument types.

type textArg struct {
	Text     string `json:"text" jsonschema:"the document content"`
	Filename string `json:"filename" jsonschema:"document path, used to pick rules and plugins by extension"`
}

type fixArg struct {
	Text     string `json:"text" jsonschema:"the document content"`
	Filename string `json:"filename" jsonschema:"document path, used to pick rules and plugins by extension"`
	Rule     string `json:"rule,omitempty" jsonschema:"only apply fixes proposed by this rule id"`
}

// mcpTools opens the engine lazily on the first tool call.
type mcpTools struct {
	root   string
	passes int
	open   func(ctx context.Context) (textlint.Linter, error)

	mu     sync.Mutex
	linter textlint.Linter
}

func runMCP(cmd *cobra.Command, _ []string) error {
	rootFlag, _ := cmd.Flags().GetString("root")
	passes, _ := cmd.Flags().GetInt("passes")
	root, err := workingRoot(rootFlag)
	if err != nil {
		return err
	}
	cache, err := openCache(settings)
	if err != nil {
		logger.Warnf("lint cache disabled: %v", err)
		cache = nil
	}
	tools := &mcpTools{
		root:   root,
		passes: passes,
		open: func(ctx context.Context) (textlint.Linter, error) {
			engine, err := openEngine(ctx, settings, root, cache)
			if err != nil {
				return nil, err
			}
			return engine.Linter, nil
		},
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    appName,
		Version: version.Version,
	}, nil)
	tools.register(server)
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}

func (t *mcpTools) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lint_text",
		Description: "Lint a document with the project's textlint configuration and list every finding.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args textArg) (*mcp.CallToolResult, any, error) {
		return t.lintText(ctx, args), nil, nil
	})
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fix_text",
		Description: "Apply every textlint autofix to a document and return the fixed content.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args fixArg) (*mcp.CallToolResult, any, error) {
		return t.fixText(ctx, args), nil, nil
	})
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fix_edits",
		Description: "List the non-overlapping textlint autofixes of a document as LSP text edits without applying them.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args fixArg) (*mcp.CallToolResult, any, error) {
		return t.fixEdits(ctx, args), nil, nil
	})
}

func (t *mcpTools) engineLinter(ctx context.Context) (textlint.Linter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.linter != nil {
		return t.linter, nil
	}
	l, err := t.open(ctx)
	if err != nil {
		return nil, err
	}
	t.linter = l
	return l, nil
}

func (t *mcpTools) path(filename string) string {
	if filename == "" {
		filename = "document.md"
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(t.root, filename)
}

func (t *mcpTools) lintText(ctx context.Context, args textArg) *mcp.CallToolResult {
	linter, err := t.engineLinter(ctx)
	if err != nil {
		return errResult(err)
	}
	path := t.path(args.Filename)
	res, err := linter.LintText(ctx, args.Text, path)
	if err != nil {
		return errResult(err)
	}
	if len(res.Messages) == 0 {
		return textResult("No problems found.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d problem(s):\n", len(res.Messages))
	name := displayPath(t.root, path)
	for _, m := range res.Messages {
		b.WriteString(formatFinding(name, m))
		if m.Fixable() {
			b.WriteString(" [fixable]")
		}
		b.WriteByte('\n')
	}
	return textResult(b.String())
}

func (t *mcpTools) fixText(ctx context.Context, args fixArg) *mcp.CallToolResult {
	linter, err := t.engineLinter(ctx)
	if err != nil {
		return errResult(err)
	}
	if args.Rule != "" {
		linter = ruleLinter{Linter: linter, rule: args.Rule}
	}
	out, err := fix.FixText(ctx, linter, args.Text, t.path(args.Filename), t.passes)
	if err != nil {
		return errResult(err)
	}
	if !out.Changed() {
		return textResult("Nothing to fix.")
	}
	header := fmt.Sprintf("Applied %d fix(es) in %d pass(es); %d finding(s) remain.\n\n", len(out.Applied), out.Passes, out.Remaining)
	return textResult(header + out.Output)
}

func (t *mcpTools) fixEdits(ctx context.Context, args fixArg) *mcp.CallToolResult {
	linter, err := t.engineLinter(ctx)
	if err != nil {
		return errResult(err)
	}
	res, err := linter.LintText(ctx, args.Text, t.path(args.Filename))
	if err != nil {
		return errResult(err)
	}
	reg := fix.NewRegistry()
	for _, m := range res.Messages {
		m, d := diag.FromFinding(m)
		reg.Register(0, d, m)
	}
	var filter func(fix.AutoFix) bool
	if args.Rule != "" {
		filter = fix.SameRule(args.Rule)
	}
	edits := fix.ToTextEdits(args.Text, reg.SeparatedValues(filter))
	payload, err := json.MarshalIndent(edits, "", "  ")
	if err != nil {
		return errResult(err)
	}
	return textResult(string(payload))
}

// ruleLinter drops findings of every rule but rule.
type ruleLinter struct {
	textlint.Linter
	rule string
}

func (l ruleLinter) LintText(ctx context.Context, text, filePath string) (*textlint.Result, error) {
	res, err := l.Linter.LintText(ctx, text, filePath)
	if err != nil {
		return nil, err
	}
	out := &textlint.Result{FilePath: res.FilePath}
	for _, m := range res.Messages {
		if m.RuleID == l.rule {
			out.Messages = append(out.Messages, m)
		}
	}
	return out, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}
}
