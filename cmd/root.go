// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/sembind/contract"
)

// Configuration keys. Each can also be set through the environment with
// the SEMBIND_ prefix, dots and dashes replaced by underscores (e.g.
// SEMBIND_TRACE_EXPORTER).
const (
	keyColor                     = "color"
	keyNonTrailingNamedArguments = "features.non-trailing-named-arguments"
	keyTraceExporter             = "trace.exporter"
	keyLogLevel                  = "log.level"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitDiagnostics = 1
	ExitUsage       = 2
	ExitInternal    = 3
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sembind",
	Short: "Bind C#-like expressions against declared symbols",
	Long: `sembind binds expressions written in a C#-like syntax against the types,
members and locals declared in YAML declaration files (*.bind.yaml). It
resolves names, extension members and overloads, classifies conversions and
reports diagnostics the way a compiler front end would.

Getting started:
  sembind bind app.bind.yaml             Print the bound tree of every expression
  sembind bind -e '1 + 2L'               Bind a single expression
  sembind query app.bind.yaml 12:31      Show the symbol at a position
  sembind lint ./...                     Run static checks on declaration files
  sembind doc -f app.bind.yaml App       Show the documentation of declared symbols
  sembind repl app.bind.yaml             Start an interactive binding shell
  sembind lsp                            Start the language server

Configuration is read from $HOME/.sembind.yaml (or --config) and from
SEMBIND_* environment variables:
  color                                  auto, always or never
  features.non-trailing-named-arguments  allow positional arguments after named ones
  trace.exporter                         none, otel or opencensus
  log.level                              panic ... trace (default warning)

Exit codes:
  0  Success
  1  Diagnostics were reported
  2  Bad invocation (invalid flags, unreadable files)
  3  Internal error`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the process exit status a command failed with. Errors
// that are not exitErrors are usage errors unless they are internal.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// errDiagnostics reports that diagnostics were printed. It carries no
// message of its own.
var errDiagnostics = &exitError{code: ExitDiagnostics}

func usageError(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

// exitCode maps the error returned by a command to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if contract.IsInternal(err) {
		return ExitInternal
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsage
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(run(rootCmd, os.Args[1:]))
}

func run(cmd *cobra.Command, args []string) (code int) {
	var err error
	defer func() {
		code = exitCode(err)
		switch {
		case code == ExitInternal:
			fmt.Fprintf(cmd.ErrOrStderr(), "internal error: %+v\n", err)
		case err != nil && !errors.Is(err, errDiagnostics):
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", cmd.Name(), err)
		}
	}()
	defer contract.Recover(&err)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sembind.yaml)")
	rootCmd.PersistentFlags().String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log binder decisions at debug level.")
	_ = viper.BindPFlag(keyColor, rootCmd.PersistentFlags().Lookup("color"))

	viper.SetDefault(keyColor, "auto")
	viper.SetDefault(keyTraceExporter, "none")
	viper.SetDefault(keyLogLevel, "warning")

	rootCmd.AddCommand(
		BindCommand(),
		QueryCommand(),
		LintCommand(),
		DocCommand(),
		ReplCommand(),
		LSPCommand(),
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".sembind" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".sembind")
	}

	viper.SetEnvPrefix("sembind")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		logrus.WithError(err).Warn("cannot read config file")
	}

	initLogging()
}

func initLogging() {
	level, err := logrus.ParseLevel(viper.GetString(keyLogLevel))
	if err != nil {
		logrus.WithError(err).Warn("invalid log.level")
		level = logrus.WarnLevel
	}
	if verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
}
