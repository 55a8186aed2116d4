// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luthersystems/sembind/lsp"
)

// LSPCommand creates the "lsp" cobra command. Embedders can pass
// WithFeatures or WithProfiler to configure the analyses the server runs.
func LSPCommand(opts ...Option) *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the Language Server Protocol server",
		Long: `Start an LSP server for declaration files (*.bind.yaml).

The language server binds the expressions of each open file as it changes
and provides diagnostics (binding and lint), hover with types, constant
values and documentation, go-to-definition, find references, signature
help, document and workspace symbols, and code actions that suppress lint
findings.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  sembind lsp                        Start with stdio transport
  sembind lsp --stdio                Same as above (explicit)
  sembind lsp --port 7998            Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "sembind lsp --stdio" for *.bind.yaml files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := resolveConfig(opts)
			srv := lsp.New(
				lsp.WithLogger(cfg.log),
				lsp.WithFeatures(cfg.features),
				lsp.WithProfiler(cfg.profiler),
			)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				cfg.log.WithField("addr", addr).Info("sembind LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}
