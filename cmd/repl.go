// Copyright © 2018 The ELPS authors

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/luthersystems/sembind/repl"
)

// ReplCommand creates the "repl" cobra command.
func ReplCommand(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [FILE]",
		Short: "Start an interactive binding shell",
		Long: `Start an interactive shell that binds each line as an expression.

The declarations of FILE, if given, are in scope. Each line is bound in the
current scope and its bound tree is printed together with any diagnostics.
Line editing, completion of declared names and members, and command
history are supported via readline. Use Ctrl-D to exit.

Lines starting with ":" are commands:
  :scope NAME     Bind in the scope named NAME (":scope" for the global scope)
  :scopes         List the declared scopes
  :target TYPE    Convert results to TYPE (":target" to bind values)
  :syntax         Toggle printing of parse trees
  :help           List commands

Example session:
  sembind> 1 + 2
  (Binary + ... :int =3 (Literal 1 :int =1) (Literal 2 :int =2))
  sembind> :scope main
  main sembind> w.Scale(2)
  ...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig(opts)
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			ws, declDiags, err := loadWorkspace(path, cfg)
			if err != nil {
				return err
			}
			if len(declDiags) > 0 {
				renderDiagnostics(cmd.ErrOrStderr(), declDiags)
			}
			return repl.RunRepl(ws, "sembind> ",
				repl.WithLogger(cfg.log),
				repl.WithProfiler(cfg.profiler),
				repl.WithColor(colorMode()),
			)
		},
	}
}
