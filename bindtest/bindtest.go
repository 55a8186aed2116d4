// Copyright © 2024 The ELPS authors

// Package bindtest loads declaration files for tests and checks the bound
// form of their expressions.
//
// Expressions in a fixture file may carry an expect block that RunFile
// checks after binding:
//
//	expressions:
//	  - name: sum
//	    text: "1 + 2"
//	    expect: {type: int, value: "3"}
//	  - name: missing
//	    text: "zz"
//	    expect: {codes: [B1001]}
package bindtest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/formatter"
	"github.com/luthersystems/sembind/parser"
	"github.com/luthersystems/sembind/workspace"
)

// Fixture is a declaration file loaded and analyzed for a test.
type Fixture struct {
	t         testing.TB
	Workspace *workspace.Workspace
	Result    *analysis.Result
	binder    *binder.Binder
}

// Load parses and analyzes a declaration file held in memory. The test
// fails immediately when the declarations are invalid.
func Load(t testing.TB, source string, opts ...workspace.Option) *Fixture {
	t.Helper()
	return load(t, "test"+workspace.Ext, []byte(source), opts)
}

// LoadFile is Load for a file on disk.
func LoadFile(t testing.TB, path string, opts ...workspace.Option) *Fixture {
	t.Helper()
	data, err := os.ReadFile(path) //#nosec G304
	require.NoError(t, err, "unable to read fixture")
	opts = append([]workspace.Option{workspace.WithPath(path)}, opts...)
	return load(t, filepath.Base(path), data, opts)
}

func load(t testing.TB, file string, data []byte, opts []workspace.Option) *Fixture {
	t.Helper()
	log := NewLogrus(t)
	opts = append([]workspace.Option{workspace.WithLogger(log)}, opts...)
	ws, err := workspace.Parse(file, data, opts...)
	require.NoError(t, err, "invalid declarations")
	return &Fixture{
		t:         t,
		Workspace: ws,
		Result:    analysis.Analyze(ws, &analysis.Config{Logger: log}),
		binder:    binder.New(ws.Table, binder.WithLogger(log)),
	}
}

// Binding returns the binding of the named expression. The test fails
// immediately when the file declares no such expression.
func (f *Fixture) Binding(name string) *analysis.Binding {
	f.t.Helper()
	b := f.Result.Binding(name)
	if b == nil {
		f.t.Fatalf("no expression named %q", name)
	}
	return b
}

// Bind returns the bound tree and diagnostics of the named expression.
func (f *Fixture) Bind(name string) (bound.Expr, []diagnostic.Diagnostic) {
	f.t.Helper()
	b := f.Binding(name)
	return b.Tree, b.Diagnostics
}

// BindText parses and binds text in the environment of a declared scope,
// or of the file's global scope when scope is empty.
func (f *Fixture) BindText(scope, text string) (bound.Expr, []diagnostic.Diagnostic) {
	f.t.Helper()
	env := f.Workspace.Global.Env
	if scope != "" {
		s := f.Workspace.Scope(scope)
		if s == nil {
			f.t.Fatalf("no scope named %q", scope)
		}
		env = s.Env
	}
	e, err := parser.Parse("text", []byte(text))
	require.NoError(f.t, err, "parse error")
	bag := diagnostic.NewBag()
	tree := f.binder.Bind(context.Background(), env, e, bag)
	return tree, bag.Sorted()
}

// Render prints a bound tree with qualified symbol names.
func (f *Fixture) Render(n bound.Node) string {
	cfg := formatter.DefaultConfig()
	cfg.Table = f.Workspace.Table
	return formatter.Bound(n, cfg)
}

// Codes returns the identifiers of the diagnostics' codes in order.
func Codes(diags []diagnostic.Diagnostic) []string {
	codes := make([]string, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, d.Code.String())
	}
	return codes
}

// Expect is the expected outcome of binding one fixture expression. Empty
// fields are not checked, except Codes: an expression with an expect block
// and no codes must bind without diagnostics.
type Expect struct {
	Type  string   `yaml:"type"`
	Value string   `yaml:"value"`
	Codes []string `yaml:"codes"`
	Tree  string   `yaml:"tree"`
}

type expectations struct {
	Expressions []struct {
		Expect *Expect `yaml:"expect"`
	} `yaml:"expressions"`
}

// RunFile loads the fixture at path and checks every expression that has
// an expect block in a subtest named after the expression.
func RunFile(t *testing.T, path string) {
	data, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return
	}
	var doc expectations
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Errorf("Unable to read expectations: %v", err)
		return
	}

	var f *Fixture
	ok := t.Run("$load", func(t *testing.T) {
		f = LoadFile(t, path)
	})
	if !ok {
		return
	}
	if !assert.Len(t, f.Workspace.Expressions, len(doc.Expressions), "expressions") {
		return
	}
	for i, e := range doc.Expressions {
		if e.Expect == nil {
			continue
		}
		b := f.Result.Bindings[i]
		// Each expectation is checked even when an earlier one fails.
		t.Run(b.Expression.Name, func(t *testing.T) {
			f.check(t, b, e.Expect)
		})
	}
}

// RunDir runs RunFile for every declaration file under dir.
func RunDir(t *testing.T, dir string) {
	paths, err := workspace.Scan(dir)
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no fixtures in %s", dir)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			RunFile(t, path)
		})
	}
}

func (f *Fixture) check(t *testing.T, b *analysis.Binding, want *Expect) {
	assert.Equal(t, nilIfEmpty(want.Codes), nilIfEmpty(Codes(b.Diagnostics)), "diagnostic codes")
	if b.Tree == nil {
		return
	}
	if want.Type != "" {
		assert.Equal(t, want.Type, b.Tree.Type().String(), "type")
	}
	if want.Value != "" {
		assert.Equal(t, want.Value, formatter.Constant(b.Tree.ConstantValue()), "constant value")
	}
	if want.Tree != "" {
		assert.Equal(t, strings.TrimSpace(want.Tree), strings.TrimSpace(f.Render(b.Tree)), "bound tree")
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
