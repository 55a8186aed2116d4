// Copyright © 2024 The ELPS authors

package overload

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// Arguments is the analyzed argument list of one call site. The slices are
// parallel; Names and RefKinds may be nil when no argument has a name or a
// ref kind. Arguments are bound without a target type, so pending nodes
// stay pending.
type Arguments struct {
	Args     []bound.Node
	Names    []string
	NameLocs []*syntax.Location
	RefKinds []syntax.RefKind
	// HasErrors is set when an argument or the argument list itself is
	// erroneous. Diagnostics for failed resolution are then suppressed.
	HasErrors bool
}

// Len returns the number of arguments.
func (a *Arguments) Len() int { return len(a.Args) }

// Name returns the name of argument i or "".
func (a *Arguments) Name(i int) string {
	if i < len(a.Names) {
		return a.Names[i]
	}
	return ""
}

// NameLoc returns the location of the name of argument i, or nil.
func (a *Arguments) NameLoc(i int) *syntax.Location {
	if i < len(a.NameLocs) {
		return a.NameLocs[i]
	}
	return nil
}

// RefKind returns the passing mode of argument i.
func (a *Arguments) RefKind(i int) syntax.RefKind {
	if i < len(a.RefKinds) {
		return a.RefKinds[i]
	}
	return syntax.RefNone
}

// HasNames reports whether any argument is named.
func (a *Arguments) HasNames() bool {
	for _, n := range a.Names {
		if n != "" {
			return true
		}
	}
	return false
}

// Add appends an argument.
func (a *Arguments) Add(arg bound.Node, name string, nameLoc *syntax.Location, ref syntax.RefKind) {
	if name != "" || a.Names != nil {
		a.Names = pad(a.Names, len(a.Args))
		a.Names = append(a.Names, name)
		a.NameLocs = padLocs(a.NameLocs, len(a.Args))
		a.NameLocs = append(a.NameLocs, nameLoc)
	}
	if ref != syntax.RefNone || a.RefKinds != nil {
		a.RefKinds = padRefs(a.RefKinds, len(a.Args))
		a.RefKinds = append(a.RefKinds, ref)
	}
	a.Args = append(a.Args, arg)
	if arg.HasErrors() {
		a.HasErrors = true
	}
}

// WithReceiver returns a copy of a with recv prepended as an unnamed
// by-value argument, the shape of an extension method invocation.
func (a *Arguments) WithReceiver(recv bound.Expr) *Arguments {
	out := &Arguments{HasErrors: a.HasErrors || recv.HasErrors()}
	out.Args = append([]bound.Node{recv}, a.Args...)
	if a.Names != nil {
		out.Names = append([]string{""}, pad(a.Names, len(a.Args))...)
		out.NameLocs = append([]*syntax.Location{nil}, padLocs(a.NameLocs, len(a.Args))...)
	}
	if a.RefKinds != nil {
		out.RefKinds = append([]syntax.RefKind{syntax.RefNone}, padRefs(a.RefKinds, len(a.Args))...)
	}
	return out
}

// Types returns the types of the arguments, nil for pending ones.
func (a *Arguments) Types() []symbols.Type {
	out := make([]symbols.Type, len(a.Args))
	for i, arg := range a.Args {
		out[i] = bound.TypeOf(arg)
	}
	return out
}

func pad(s []string, n int) []string {
	for len(s) < n {
		s = append(s, "")
	}
	return s
}

func padLocs(s []*syntax.Location, n int) []*syntax.Location {
	for len(s) < n {
		s = append(s, nil)
	}
	return s
}

func padRefs(s []syntax.RefKind, n int) []syntax.RefKind {
	for len(s) < n {
		s = append(s, syntax.RefNone)
	}
	return s
}

// analysisKind is the outcome of mapping arguments to parameters.
type analysisKind uint8

const (
	analysisNormal analysisKind = iota
	analysisExpanded
	analysisNoCorrespondingParameter
	analysisNoCorrespondingNamedParameter
	analysisNameUsedForPositional
	analysisBadNonTrailingNamed
	analysisRequiredParameterMissing
)

// analysis maps each argument to a parameter ordinal.
type analysis struct {
	kind         analysisKind
	argsToParams []int
	// badArg is the offending argument, or -1.
	badArg int
	// badParam is the missing parameter, or -1.
	badParam int
	// defaultsUsed is set when an optional parameter was not supplied.
	defaultsUsed bool
}

func (a analysis) ok() bool {
	return a.kind == analysisNormal || a.kind == analysisExpanded
}

// analyzeArguments maps args to params in normal or expanded form. In
// expanded form every positional argument past the last fixed parameter
// maps to the params parameter, and a named argument cannot name it.
func analyzeArguments(args *Arguments, params []*symbols.Parameter, expanded bool) analysis {
	res := analysis{argsToParams: make([]int, args.Len()), badArg: -1, badParam: -1}
	last := len(params) - 1
	supplied := make([]bool, len(params))
	// outOfPosition is the first named argument not in its position, or -1.
	outOfPosition := -1

	for i := range args.Args {
		name := args.Name(i)
		if name == "" {
			if outOfPosition >= 0 {
				res.kind, res.badArg = analysisBadNonTrailingNamed, outOfPosition
				return res
			}
			p := i
			switch {
			case expanded && p >= last:
				p = last
			case p > last:
				res.kind, res.badArg = analysisNoCorrespondingParameter, i
				return res
			}
			res.argsToParams[i] = p
			supplied[p] = true
			continue
		}
		p := parameterNamed(params, name)
		if p < 0 || (expanded && p == last) {
			res.kind, res.badArg = analysisNoCorrespondingNamedParameter, i
			return res
		}
		if supplied[p] {
			res.kind, res.badArg = analysisNameUsedForPositional, i
			return res
		}
		if p != i && outOfPosition < 0 {
			outOfPosition = i
		}
		res.argsToParams[i] = p
		supplied[p] = true
	}

	for p, prm := range params {
		if supplied[p] {
			continue
		}
		if expanded && p == last {
			continue
		}
		if prm.IsOptional() {
			res.defaultsUsed = true
			continue
		}
		res.kind, res.badParam = analysisRequiredParameterMissing, p
		return res
	}
	if expanded {
		res.kind = analysisExpanded
	}
	return res
}

func parameterNamed(params []*symbols.Parameter, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
