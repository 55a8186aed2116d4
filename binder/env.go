// Copyright © 2024 The ELPS authors

package binder

import (
	"github.com/luthersystems/sembind/symbols"
)

// Features is a set of optional language features.
type Features uint32

const (
	// FeatureNonTrailingNamedArguments allows positional arguments after a
	// named argument that is in its own position.
	FeatureNonTrailingNamedArguments Features = 1 << iota
)

// ParseFeature maps a feature name such as
// "non-trailing-named-arguments" to its flag.
func ParseFeature(name string) (Features, bool) {
	switch name {
	case "non-trailing-named-arguments":
		return FeatureNonTrailingNamedArguments, true
	}
	return 0, false
}

// Has reports whether every feature of f2 is enabled in f.
func (f Features) Has(f2 Features) bool { return f&f2 == f2 }

// Env is the context an expression is bound in. It is immutable; the With
// methods return modified copies.
type Env struct {
	Scope            *symbols.Scope
	ContainingType   *symbols.NamedType
	ContainingMember *symbols.Symbol
	// Static is set in static members, where there is no this.
	Static bool
	// ConstantInitializer is the name of the constant being initialized,
	// or "". The expression must then have a constant value.
	ConstantInitializer string
	// DefaultArgument is set while binding the default value of a
	// parameter.
	DefaultArgument bool
	Features        Features
}

// NewEnv returns the environment of scope. The containing type and member
// are taken from the scope chain; the context is static when the member is
// static or there is no containing type.
func NewEnv(scope *symbols.Scope) Env {
	env := Env{
		Scope:            scope,
		ContainingType:   scope.EnclosingType(),
		ContainingMember: scope.EnclosingMember(),
	}
	env.Static = env.ContainingType == nil || (env.ContainingMember != nil && env.ContainingMember.Static)
	return env
}

// WithScope returns env with the given scope.
func (env Env) WithScope(scope *symbols.Scope) Env {
	env.Scope = scope
	return env
}

// WithStatic returns env with the static flag set to static.
func (env Env) WithStatic(static bool) Env {
	env.Static = static
	return env
}

// WithConstantInitializer returns env for the initializer of constant name.
func (env Env) WithConstantInitializer(name string) Env {
	env.ConstantInitializer = name
	return env
}

// WithDefaultArgument returns env for a parameter default value.
func (env Env) WithDefaultArgument() Env {
	env.DefaultArgument = true
	return env
}

// WithFeatures returns env with features enabled in addition to the
// current ones.
func (env Env) WithFeatures(features Features) Env {
	env.Features |= features
	return env
}

// Within is the type used for accessibility checks.
func (env Env) Within() *symbols.NamedType {
	return env.ContainingType
}
