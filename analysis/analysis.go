// Copyright © 2024 The ELPS authors

// Package analysis binds the expressions of a loaded workspace and indexes
// the result for queries.
//
// The analyzer binds every expression in its declared environment, records
// the symbols each bound tree refers to, and keeps the failed lookups of
// error nodes together with the candidates that were considered. It is
// designed to be used by the lint, lsp and cmd packages for diagnostics,
// hover, definition and signature queries.
package analysis

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/profiler"
	"github.com/luthersystems/sembind/syntax"
	"github.com/luthersystems/sembind/workspace"
)

// Config controls the behavior of the analyzer.
type Config struct {
	// Logger receives binder tracing. Defaults to the logrus standard
	// logger.
	Logger logrus.FieldLogger

	// Profiler is notified of every top-level bind.
	Profiler binder.Profiler

	// Parallel bounds the number of expressions bound concurrently. Values
	// below two bind sequentially.
	Parallel int
}

// Result holds the output of analysis.
type Result struct {
	Workspace  *workspace.Workspace
	Bindings   []*Binding
	References []*Reference
	Unresolved []*UnresolvedRef
}

// Binding is the outcome of binding one workspace expression.
type Binding struct {
	Expression *workspace.Expression
	// Tree is nil when the expression text does not parse.
	Tree        bound.Expr
	Diagnostics []diagnostic.Diagnostic
}

// Diagnostics returns the diagnostics of every binding ordered by
// position.
func (r *Result) Diagnostics() []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, b := range r.Bindings {
		diags = append(diags, b.Diagnostics...)
	}
	diagnostic.SortByPosition(diags)
	return diags
}

// Binding returns the binding of the expression named name, or nil.
func (r *Result) Binding(name string) *Binding {
	for _, b := range r.Bindings {
		if b.Expression.Name == name {
			return b
		}
	}
	return nil
}

// Analyze binds every expression of ws. Expressions that do not parse get
// a syntax error diagnostic and no tree.
func Analyze(ws *workspace.Workspace, cfg *Config) *Result {
	return AnalyzeContext(context.Background(), ws, cfg)
}

// AnalyzeContext is Analyze with a context that is passed to the binder
// and its profiler.
func AnalyzeContext(ctx context.Context, ws *workspace.Workspace, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := binder.New(ws.Table, binder.WithLogger(log), binder.WithProfiler(cfg.Profiler))

	result := &Result{
		Workspace: ws,
		Bindings:  make([]*Binding, len(ws.Expressions)),
	}
	bindOne := func(i int) {
		result.Bindings[i] = bindExpression(ctx, b, ws.Expressions[i])
	}
	if cfg.Parallel > 1 {
		p := pool.New().WithMaxGoroutines(cfg.Parallel)
		for i := range ws.Expressions {
			i := i
			p.Go(func() { bindOne(i) })
		}
		p.Wait()
	} else {
		for i := range ws.Expressions {
			bindOne(i)
		}
	}

	// Index sequentially so that references keep source order.
	for _, binding := range result.Bindings {
		result.index(binding)
	}
	log.WithFields(logrus.Fields{
		"file":        ws.File,
		"expressions": len(result.Bindings),
		"references":  len(result.References),
		"unresolved":  len(result.Unresolved),
	}).Debug("analysis complete")
	return result
}

func bindExpression(ctx context.Context, b *binder.Binder, e *workspace.Expression) *Binding {
	binding := &Binding{Expression: e}
	if e.Syntax == nil {
		if e.Err != nil {
			binding.Diagnostics = []diagnostic.Diagnostic{SyntaxDiagnostic(e.Err)}
		}
		return binding
	}
	ctx = profiler.WithSpanLabel(ctx, e.Name)
	bag := diagnostic.NewBag()
	if e.Target != nil {
		binding.Tree = b.BindTo(ctx, e.Env, e.Syntax, e.Target, bag)
	} else {
		binding.Tree = b.Bind(ctx, e.Env, e.Syntax, bag)
	}
	binding.Diagnostics = bag.Sorted()
	return binding
}

// SyntaxDiagnostic converts a parse error into a diagnostic. Errors without
// a location are reported at the zero span.
func SyntaxDiagnostic(err error) diagnostic.Diagnostic {
	var locErr *syntax.LocationError
	if errors.As(err, &locErr) {
		return diagnostic.New(diagnostic.ErrSyntax, diagnostic.SpanOf(locErr.Source), locErr.Err.Error())
	}
	return diagnostic.New(diagnostic.ErrSyntax, diagnostic.Span{}, err.Error())
}

// DeclarationDiagnostics converts the error returned by workspace.Parse
// into one diagnostic per invalid declaration.
func DeclarationDiagnostics(err error) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, err := range multierr.Errors(err) {
		var locErr *syntax.LocationError
		if errors.As(err, &locErr) {
			diags = append(diags, diagnostic.New(diagnostic.ErrDeclaration, diagnostic.SpanOf(locErr.Source), locErr.Err.Error()))
			continue
		}
		diags = append(diags, diagnostic.New(diagnostic.ErrDeclaration, diagnostic.Span{}, err.Error()))
	}
	return diags
}
