// Copyright © 2024 The ELPS authors

// Package workspace loads declaration files. A declaration file is a YAML
// document that declares namespaces and types with their members, the
// lexical scopes expressions are bound in, and the expressions themselves.
// Loading produces a frozen symbol table and a binder environment for
// every expression.
//
//	module: app
//	usings: [System]
//	namespaces:
//	  - name: App
//	    types:
//	      - name: Widget
//	        kind: class
//	        members:
//	          - {kind: constructor, params: [{name: size, type: int}]}
//	          - {kind: method, name: Scale, returns: int, params: [{name: by, type: int}]}
//	scopes:
//	  - {name: main, namespace: App, locals: [{name: w, type: Widget}]}
//	expressions:
//	  - {name: scaled, scope: main, text: "w.Scale(2)", target: long}
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// Ext is the file name suffix of declaration files.
const Ext = ".bind.yaml"

// Workspace is a loaded declaration file.
type Workspace struct {
	// File is the display name of the declaration file and Path its
	// location on disk, if any.
	File string
	Path string
	// Text is the raw file content.
	Text        []byte
	Table       *symbols.Table
	Global      *Scope
	Scopes      []*Scope
	Expressions []*Expression
	// Features are enabled in the environment of every expression.
	Features binder.Features
}

// Scope is a named lexical scope declared by the file.
type Scope struct {
	Name   string
	Scope  *symbols.Scope
	Env    binder.Env
	Source *syntax.Location
}

// Expression is an expression to bind together with its environment.
type Expression struct {
	Name string
	Text string
	// Syntax is nil when the text does not parse; Err then holds the
	// syntax error.
	Syntax syntax.Expr
	Err    error
	Env    binder.Env
	// Target is the type the expression converts to, or nil to bind it as
	// a value.
	Target symbols.Type
	Source *syntax.Location
}

// Scope returns the scope named name, or nil.
func (ws *Workspace) Scope(name string) *Scope {
	for _, s := range ws.Scopes {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Expression returns the expression named name, or nil.
func (ws *Workspace) Expression(name string) *Expression {
	for _, e := range ws.Expressions {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// ExpressionAt returns the expression whose text contains the 1-based
// line and column, or nil.
func (ws *Workspace) ExpressionAt(line, col int) *Expression {
	for _, e := range ws.Expressions {
		if e.Source.ContainsLine(line, col) {
			return e
		}
	}
	return nil
}

// Option configures loading.
type Option func(*builder)

// WithLogger sets the logger for load tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *builder) {
		b.log = log
	}
}

// WithFeatures enables language features for every expression in addition
// to those the file requests.
func WithFeatures(f binder.Features) Option {
	return func(b *builder) {
		b.features |= f
	}
}

// WithPath records the on-disk location of a file parsed from memory.
func WithPath(path string) Option {
	return func(b *builder) {
		b.path = path
	}
}

// Load reads and loads the declaration file at path.
func Load(path string, opts ...Option) (*Workspace, error) {
	data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), data, append([]Option{WithPath(path)}, opts...)...)
}

// Parse loads a declaration file from memory. The file name is recorded in
// every location. When declarations are invalid the returned error
// combines every problem found and the workspace is still returned, with
// the offending declarations skipped, so that tools can report all of them
// at once. A nil workspace means the document could not be read at all.
func Parse(file string, data []byte, opts ...Option) (*Workspace, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	b := &builder{
		ctx:  context.Background(),
		file: file,
		data: data,
		doc:  &doc,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	ws := b.build()
	return ws, b.err
}

// Scan walks a directory tree and returns the paths of the declaration
// files in it. Hidden directories are skipped.
func Scan(root string) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, Ext) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func shouldSkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor"
}
