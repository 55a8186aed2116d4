// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/lint"
	"github.com/luthersystems/sembind/workspace"
)

type lintFlags struct {
	json     bool
	checks   string
	list     bool
	excludes []string
}

// LintCommand creates the "lint" cobra command.
func LintCommand(opts ...Option) *cobra.Command {
	var flags lintFlags
	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Run static analysis checks on declaration files",
		Long: `Run static analysis checks on declaration files.

The linter binds every expression of each file and reports likely mistakes
in code that binds without errors, similar to "go vet" for Go. Each check
is an independent analyzer that examines the bound trees. Binding errors
themselves are reported by "sembind bind".

With no files, reads a declaration file from stdin. With files, analyzes
each file and reports all findings to stderr.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment on the same line:
  - {name: half, text: "(int)x"}  # nolint:lossy-numeric-conversion

To suppress all checks on a line:
  - {name: half, text: "(int)x"}  # nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  sembind lint app.bind.yaml                          # Lint a single file
  sembind lint ./...                                  # Lint a tree
  sembind lint --json app.bind.yaml                   # Output diagnostics as JSON
  sembind lint --checks=redundant-cast app.bind.yaml  # Run only specific checks
  sembind lint --list                                 # List available checks
  sembind lint --exclude='build' ./...                # Exclude directories
  cat app.bind.yaml | sembind lint                    # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.list {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			cfg := resolveConfig(opts)
			analyzers, err := selectAnalyzers(flags.checks)
			if err != nil {
				return err
			}
			l := &lint.Linter{Analyzers: analyzers}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			var diags []lint.Diagnostic
			if len(args) == 0 {
				diags, err = lintStdin(ctx, l, cfg, cmd.InOrStdin())
				if err != nil {
					return usageError("%w", err)
				}
			} else {
				paths, err := expandArgs(args, flags.excludes)
				if err != nil {
					return usageError("%w", err)
				}
				for _, path := range paths {
					fileDiags, err := l.LintFile(ctx, path, cfg.analysisConfig(), cfg.workspaceOptions()...)
					if err != nil {
						return usageError("%w", err)
					}
					diags = append(diags, fileDiags...)
				}
			}
			return reportLint(cmd, diags, flags.json)
		},
	}
	cmd.Flags().BoolVar(&flags.json, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringVar(&flags.checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&flags.list, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&flags.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

// selectAnalyzers returns the default analyzers named in the
// comma-separated checks, or all of them when checks is empty.
func selectAnalyzers(checks string) ([]*lint.Analyzer, error) {
	analyzers := lint.DefaultAnalyzers()
	if checks == "" {
		return analyzers, nil
	}
	selected := make(map[string]bool)
	for _, name := range strings.Split(checks, ",") {
		selected[strings.TrimSpace(name)] = true
	}
	var filtered []*lint.Analyzer
	for _, a := range analyzers {
		if selected[a.Name] {
			filtered = append(filtered, a)
			delete(selected, a.Name)
		}
	}
	if len(selected) > 0 {
		unknown := make([]string, 0, len(selected))
		for name := range selected {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, usageError("unknown check: %s", strings.Join(unknown, ", "))
	}
	return filtered, nil
}

func lintStdin(ctx context.Context, l *lint.Linter, cfg *cmdConfig, stdin io.Reader) ([]lint.Diagnostic, error) {
	src, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	ws, err := workspace.Parse("<stdin>", src, cfg.workspaceOptions()...)
	if ws == nil {
		return nil, err
	}
	return l.Lint(analysis.AnalyzeContext(ctx, ws, cfg.analysisConfig()))
}

func reportLint(cmd *cobra.Command, diags []lint.Diagnostic, asJSON bool) error {
	if len(diags) == 0 {
		return nil
	}
	if asJSON {
		if err := lint.FormatJSON(cmd.OutOrStdout(), diags); err != nil {
			return err
		}
	} else {
		renderLintDiagnostics(cmd.ErrOrStderr(), diags)
	}
	return errDiagnostics
}
