// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/reflow/indent"
	"github.com/spf13/cobra"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/formatter"
	"github.com/luthersystems/sembind/parser"
	"github.com/luthersystems/sembind/workspace"
)

// exprFile names the source of an expression given on the command line.
const exprFile = "<expr>"

type bindFlags struct {
	expr     string
	scope    string
	target   string
	syntax   bool
	json     bool
	excludes []string
}

// BindCommand creates the "bind" cobra command.
func BindCommand(opts ...Option) *cobra.Command {
	var flags bindFlags
	cmd := &cobra.Command{
		Use:   "bind [flags] [FILE...]",
		Short: "Print the bound tree of expressions",
		Long: `Bind the expressions of declaration files and print their bound trees.

Every expression declared in each file is bound in its scope. Each tree is
printed as an S-expression annotated with types and constant values, and
diagnostics are printed to stderr. Arguments ending in "/..." and
directories expand to every *.bind.yaml file beneath them.

With -e, a single expression is bound instead. It sees the declarations of
the one FILE given, if any, in the scope named by -s (the file's global
scope by default).

Examples:
  sembind bind app.bind.yaml              Bind every expression in a file
  sembind bind ./...                      Bind every file in a tree
  sembind bind -e '1 + 2L'                Bind an expression
  sembind bind -e 'w.Scale(2)' -s main app.bind.yaml
  sembind bind -e '1' -t long             Convert to a target type
  sembind bind --syntax app.bind.yaml     Print parse trees without binding
  sembind bind --json app.bind.yaml       Print results as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig(opts)
			if cmd.Flags().Changed("expr") {
				if len(args) > 1 {
					return usageError("-e accepts at most one declaration file")
				}
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				return bindExpr(cmd, cfg, &flags, path)
			}
			if flags.scope != "" || flags.target != "" {
				return usageError("--scope and --target require --expr")
			}
			if len(args) == 0 {
				return usageError("no declaration files given")
			}
			paths, err := expandArgs(args, flags.excludes)
			if err != nil {
				return usageError("%w", err)
			}
			return bindFiles(cmd, cfg, &flags, paths)
		},
	}
	cmd.Flags().StringVarP(&flags.expr, "expr", "e", "", "Bind `EXPR` instead of the declared expressions")
	cmd.Flags().StringVarP(&flags.scope, "scope", "s", "", "Scope to bind --expr in")
	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "Convert --expr to `TYPE`")
	cmd.Flags().BoolVar(&flags.syntax, "syntax", false, "Print parse trees without binding")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output results as JSON")
	cmd.Flags().StringSliceVar(&flags.excludes, "exclude", nil, "Glob patterns for files to skip (repeatable)")
	return cmd
}

func bindFiles(cmd *cobra.Command, cfg *cmdConfig, flags *bindFlags, paths []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		results = []jsonBinding{}
		failed  bool
	)
	for _, path := range paths {
		f := analysis.AnalyzeFile(ctx, path, cfg.analysisConfig(), cfg.workspaceOptions()...)
		if f.Result == nil {
			if err := fileError(f.Err); exitCode(err) == ExitUsage {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), f.Err)
			failed = true
			continue
		}
		diags := f.Diagnostics()
		if len(diags) > 0 {
			failed = true
			renderDiagnostics(cmd.ErrOrStderr(), diags)
		}
		if flags.json {
			results = append(results, jsonBindings(f.Result, flags.syntax)...)
			continue
		}
		for _, b := range f.Result.Bindings {
			printBinding(cmd.OutOrStdout(), f.Result, b, flags.syntax)
		}
	}
	if flags.json {
		if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	}
	if failed {
		return errDiagnostics
	}
	return nil
}

func bindExpr(cmd *cobra.Command, cfg *cmdConfig, flags *bindFlags, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ws, declDiags, err := loadWorkspace(path, cfg)
	if err != nil {
		return err
	}
	scope := ws.Global
	if flags.scope != "" {
		if scope = ws.Scope(flags.scope); scope == nil {
			return usageError("no scope named %q", flags.scope)
		}
	}
	syn, perr := parser.Parse(exprFile, []byte(flags.expr))
	e := &workspace.Expression{
		Name:   "-e",
		Text:   flags.expr,
		Syntax: syn,
		Err:    perr,
		Env:    scope.Env,
	}
	bag := diagnostic.NewBag()
	if flags.target != "" {
		ref, err := parser.ParseType(exprFile, flags.target)
		if err != nil {
			return usageError("invalid target type %q: %w", flags.target, err)
		}
		b := binder.New(ws.Table, binder.WithLogger(cfg.log), binder.WithProfiler(cfg.profiler))
		e.Target = b.BindType(ctx, e.Env, ref, bag)
	}
	ws.Expressions = []*workspace.Expression{e}
	result := analysis.AnalyzeContext(ctx, ws, cfg.analysisConfig())

	diags := append(declDiags, bag.Sorted()...)
	diags = append(diags, result.Diagnostics()...)
	if len(diags) > 0 {
		_ = rendererFor(map[string]string{exprFile: flags.expr}).RenderAll(cmd.ErrOrStderr(), diags)
	}
	if flags.json {
		if err := writeJSON(cmd.OutOrStdout(), jsonBindings(result, flags.syntax)); err != nil {
			return err
		}
	} else {
		printBinding(cmd.OutOrStdout(), result, result.Bindings[0], flags.syntax)
	}
	if len(diags) > 0 {
		return errDiagnostics
	}
	return nil
}

// printBinding writes the name of a binding followed by its indented tree.
// Bindings without a tree print their name only.
func printBinding(w io.Writer, r *analysis.Result, b *analysis.Binding, syntax bool) {
	fmt.Fprintln(w, b.Expression.Name)
	if tree := treeString(r, b, syntax); tree != "" {
		fmt.Fprintln(w, indent.String(tree, 2))
	}
}

func treeString(r *analysis.Result, b *analysis.Binding, syntax bool) string {
	if syntax {
		if b.Expression.Syntax == nil {
			return ""
		}
		return formatter.Syntax(b.Expression.Syntax, nil)
	}
	if b.Tree == nil {
		return ""
	}
	cfg := formatter.DefaultConfig()
	cfg.Table = r.Workspace.Table
	return formatter.Bound(b.Tree, cfg)
}

type jsonBinding struct {
	File        string           `json:"file"`
	Name        string           `json:"name"`
	Text        string           `json:"text"`
	Type        string           `json:"type,omitempty"`
	Constant    string           `json:"constant,omitempty"`
	Tree        string           `json:"tree,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonDiagnostic struct {
	Code     string   `json:"code,omitempty"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Col      int      `json:"col,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

func jsonBindings(r *analysis.Result, syntax bool) []jsonBinding {
	out := make([]jsonBinding, 0, len(r.Bindings))
	for _, b := range r.Bindings {
		jb := jsonBinding{
			File:        r.Workspace.Path,
			Name:        b.Expression.Name,
			Text:        b.Expression.Text,
			Tree:        treeString(r, b, syntax),
			Diagnostics: []jsonDiagnostic{},
		}
		if jb.File == "" {
			jb.File = r.Workspace.File
		}
		if b.Tree != nil {
			jb.Type = b.Tree.Type().String()
			if v := b.Tree.ConstantValue(); v != nil {
				jb.Constant = formatter.Constant(v)
			}
		}
		for _, d := range b.Diagnostics {
			jb.Diagnostics = append(jb.Diagnostics, toJSONDiagnostic(d))
		}
		out = append(out, jb)
	}
	return out
}

func toJSONDiagnostic(d diagnostic.Diagnostic) jsonDiagnostic {
	sp := d.Span()
	jd := jsonDiagnostic{
		Severity: d.Severity.String(),
		Message:  d.Message,
		Line:     sp.Line,
		Col:      sp.Col,
		Notes:    d.Notes,
	}
	if d.Code != 0 {
		jd.Code = d.Code.String()
	}
	return jd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
