// Copyright © 2018 The ELPS authors

// Package repl binds expressions typed interactively in the environment of
// a declared scope and prints their bound trees.
package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ergochat/readline"
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/formatter"
	"github.com/luthersystems/sembind/parser"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/workspace"
)

type config struct {
	stdin    io.ReadCloser
	stderr   io.WriteCloser
	log      logrus.FieldLogger
	profiler binder.Profiler
	color    diagnostic.ColorMode
}

func newConfig(opts ...Option) *config {
	config := &config{
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithLogger sets the logger that receives binder tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithProfiler sets a profiler notified of every bind.
func WithProfiler(p binder.Profiler) Option {
	return func(c *config) {
		c.profiler = p
	}
}

// WithColor controls colored diagnostic output.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

const help = `Enter an expression to bind it in the current scope.
  :scope NAME   switch to a declared scope ("" for the file's global scope)
  :scopes       list the declared scopes
  :target TYPE  convert results to TYPE (:target with no type to clear)
  :syntax       toggle printing of the parsed syntax tree
  :help         show this message
`

// Session binds lines of input against a workspace.
type Session struct {
	ws       *workspace.Workspace
	binder   *binder.Binder
	scope    *workspace.Scope
	target   symbols.Type
	syntax   bool
	renderer *diagnostic.Renderer
	out      io.Writer
	// line is the text being bound, served to the renderer as the source
	// of the "stdin" file.
	line []byte
}

// NewSession returns a session bound to the global scope of ws that
// writes results to out.
func NewSession(ws *workspace.Workspace, out io.Writer, opts ...Option) *Session {
	cfg := newConfig(opts...)
	bopts := []binder.Option{binder.WithLogger(cfg.log)}
	if cfg.profiler != nil {
		bopts = append(bopts, binder.WithProfiler(cfg.profiler))
	}
	s := &Session{
		ws:     ws,
		binder: binder.New(ws.Table, bopts...),
		scope:  ws.Global,
		out:    out,
	}
	s.renderer = &diagnostic.Renderer{
		Color:        cfg.color,
		SourceReader: s.readSource,
	}
	return s
}

// Scope returns the name of the current scope, "" for the global scope.
func (s *Session) Scope() string {
	if s.scope == s.ws.Global {
		return ""
	}
	return s.scope.Name
}

func (s *Session) readSource(file string) ([]byte, error) {
	if file == stdinFile {
		return s.line, nil
	}
	if file == s.ws.File || file == s.ws.Path {
		return s.ws.Text, nil
	}
	return os.ReadFile(file) //nolint:gosec // paths come from diagnostics of loaded files
}

const stdinFile = "stdin"

// Eval handles one line of input: a command or an expression.
func (s *Session) Eval(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if strings.HasPrefix(line, ":") {
		s.command(ctx, line)
		return
	}
	s.line = []byte(line)
	e, err := parser.Parse(stdinFile, s.line)
	if err != nil {
		s.render(analysis.SyntaxDiagnostic(err))
		return
	}
	if s.syntax {
		fmt.Fprintln(s.out, formatter.Syntax(e, nil)) //nolint:errcheck // best-effort REPL output
	}
	bag := diagnostic.NewBag()
	env := s.scope.Env.WithFeatures(s.ws.Features)
	var tree bound.Expr
	if s.target != nil {
		tree = s.binder.BindTo(ctx, env, e, s.target, bag)
	} else {
		tree = s.binder.Bind(ctx, env, e, bag)
	}
	cfg := formatter.DefaultConfig()
	cfg.Table = s.ws.Table
	fmt.Fprintln(s.out, formatter.Bound(tree, cfg)) //nolint:errcheck // best-effort REPL output
	s.render(bag.Sorted()...)
}

func (s *Session) command(ctx context.Context, line string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "help":
		fmt.Fprint(s.out, help) //nolint:errcheck // best-effort REPL output
	case "scopes":
		names := make([]string, 0, len(s.ws.Scopes))
		for _, sc := range s.ws.Scopes {
			names = append(names, sc.Name)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintln(s.out, n) //nolint:errcheck // best-effort REPL output
		}
	case "scope":
		if arg == "" || arg == `""` {
			s.scope = s.ws.Global
			return
		}
		sc := s.ws.Scope(arg)
		if sc == nil {
			fmt.Fprintf(s.out, "no scope named %q\n", arg) //nolint:errcheck // best-effort REPL output
			return
		}
		s.scope = sc
	case "target":
		if arg == "" {
			s.target = nil
			return
		}
		s.line = []byte(arg)
		ref, err := parser.ParseType(stdinFile, arg)
		if err != nil {
			s.render(analysis.SyntaxDiagnostic(err))
			return
		}
		bag := diagnostic.NewBag()
		t := s.binder.BindType(ctx, s.scope.Env, ref, bag)
		if bag.Len() > 0 {
			s.render(bag.Sorted()...)
			return
		}
		s.target = t
	case "syntax":
		s.syntax = !s.syntax
	default:
		fmt.Fprintf(s.out, "unknown command :%s (try :help)\n", name) //nolint:errcheck // best-effort REPL output
	}
}

// RunRepl reads expressions from the terminal until EOF and binds each in
// the session's current scope.
func RunRepl(ws *workspace.Workspace, prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	var out io.Writer = os.Stderr
	if cfg.stderr != nil {
		out = cfg.stderr
	}
	s := NewSession(ws, out, opts...)

	hist := historyPath()
	ensureHistoryFilePermissions(hist)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       hist,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{session: s},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	ctx := context.Background()
	for {
		rl.SetPrompt(promptFor(prompt, s.Scope()))
		line, err := rl.ReadSlice()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		s.Eval(ctx, string(bytes.TrimSpace(line)))
	}
}

func promptFor(prompt, scope string) string {
	if scope == "" {
		return prompt
	}
	return scope + " " + prompt
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sembind_history")
}

// ensureHistoryFilePermissions creates the history file readable only by
// its owner, or restricts an existing one.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //nolint:gosec // path is under the user's home
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
