// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/spf13/cobra"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/formatter"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// QueryCommand creates the "query" cobra command.
func QueryCommand(opts ...Option) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "query [flags] FILE LINE:COL",
		Short: "Show what an expression refers to at a position",
		Long: `Bind the expressions of a declaration file and describe the innermost
thing at a 1-based line and column of the file.

For a resolved name the symbol kind, signature, documentation and
definition are shown. For a name that failed to bind the lookup failure is
shown with the candidates that were considered. Elsewhere inside an
expression the type and constant value of the innermost bound node are
shown.

Examples:
  sembind query app.bind.yaml 19:38
  sembind query --json app.bind.yaml 21:43`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig(opts)
			line, col, err := parsePosition(args[1])
			if err != nil {
				return usageError("%w", err)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			f := analysis.AnalyzeFile(ctx, args[0], cfg.analysisConfig(), cfg.workspaceOptions()...)
			if f.Result == nil {
				return fileError(f.Err)
			}
			hit := f.Result.SymbolAtLine(line, col)
			if hit == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: no expression at position\n", args[0], line, col)
				return errDiagnostics
			}
			ans := describeHit(f.Result.Workspace.Table, hit)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ans)
			}
			ans.print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the answer as JSON")
	return cmd
}

// parsePosition parses a 1-based "LINE:COL" argument.
func parsePosition(s string) (line, col int, err error) {
	ls, cs, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("position %q is not LINE:COL", s)
	}
	if line, err = strconv.Atoi(ls); err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid line in %q", s)
	}
	if col, err = strconv.Atoi(cs); err != nil || col < 1 {
		return 0, 0, fmt.Errorf("invalid column in %q", s)
	}
	return line, col, nil
}

type answer struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	At         string   `json:"at,omitempty"`
	Signature  string   `json:"signature,omitempty"`
	Type       string   `json:"type,omitempty"`
	Constant   string   `json:"constant,omitempty"`
	Doc        string   `json:"doc,omitempty"`
	Definition string   `json:"definition,omitempty"`
	Lookup     string   `json:"lookup,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

func describeHit(tab *symbols.Table, hit *analysis.Hit) *answer {
	ans := &answer{At: locString(hit.Source())}
	switch {
	case hit.Reference != nil:
		sym := hit.Reference.Symbol
		ans.Kind = sym.Kind.String()
		ans.Name = tab.DisplayString(sym)
		ans.Signature = tab.Signature(sym)
		ans.Doc = sym.Doc
		ans.Definition = locString(sym.Source)
		if sym.Type != nil {
			ans.Type = sym.Type.String()
		}
		if sym.Constant != nil {
			ans.Constant = formatter.Constant(sym.Constant)
		}
	case hit.Unresolved != nil:
		u := hit.Unresolved
		ans.Kind = "unresolved"
		ans.Name = u.Name
		ans.Lookup = u.Kind.String()
		for _, c := range u.Candidates {
			ans.Candidates = append(ans.Candidates, tab.Signature(c))
		}
	default:
		ans.Kind = "expression"
		ans.Name = hit.Node.Kind().String()
		ans.Type = hit.Node.Type().String()
		if v := hit.Node.ConstantValue(); v != nil {
			ans.Constant = formatter.Constant(v)
		}
	}
	return ans
}

func (a *answer) print(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", a.Kind, a.Name)
	var sb strings.Builder
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", label, value)
		}
	}
	field("at", a.At)
	field("signature", a.Signature)
	field("type", a.Type)
	field("constant", a.Constant)
	field("lookup", a.Lookup)
	field("defined at", a.Definition)
	if len(a.Candidates) > 0 {
		sb.WriteString("candidates:\n")
		for _, c := range a.Candidates {
			fmt.Fprintf(&sb, "  %s\n", c)
		}
	}
	if a.Doc != "" {
		fmt.Fprintf(&sb, "\n%s\n", a.Doc)
	}
	fmt.Fprint(w, indent.String(sb.String(), 2))
}

func locString(loc *syntax.Location) string {
	if loc == nil || loc.Line == 0 {
		return ""
	}
	file := loc.File
	if loc.Path != "" {
		file = loc.Path
	}
	return fmt.Sprintf("%s:%d:%d", file, loc.Line, loc.Col)
}
