// Copyright © 2024 The ELPS authors

// Package astutil provides shared syntax tree walking utilities.
//
// These helpers are used by the analysis, lsp and repl packages for
// traversing parsed expressions before or without binding them.
package astutil

import "github.com/luthersystems/sembind/syntax"

// Walk calls fn for every node in the tree, depth-first.
// parent is nil for top-level expressions.
func Walk(exprs []syntax.Expr, fn func(node syntax.Expr, parent syntax.Expr, depth int)) {
	for _, expr := range exprs {
		walkNode(expr, nil, 0, fn)
	}
}

func walkNode(node syntax.Expr, parent syntax.Expr, depth int, fn func(syntax.Expr, syntax.Expr, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range Children(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// Children returns the direct subexpressions of e in source order.
func Children(e syntax.Expr) []syntax.Expr {
	var out []syntax.Expr
	add := func(es ...syntax.Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	addArgs := func(args []*syntax.Argument) {
		for _, a := range args {
			add(a.Expr)
		}
	}
	switch e := e.(type) {
	case *syntax.MemberAccess:
		add(e.Receiver)
	case *syntax.Invocation:
		add(e.Callee)
		addArgs(e.Args)
	case *syntax.ObjectCreation:
		addArgs(e.Args)
	case *syntax.ElementAccess:
		add(e.Receiver)
		addArgs(e.Args)
	case *syntax.Parenthesized:
		add(e.Inner)
	case *syntax.Cast:
		add(e.Operand)
	case *syntax.Tuple:
		addArgs(e.Elements)
	case *syntax.Collection:
		for _, el := range e.Elements {
			add(el.Expr)
		}
	case *syntax.InterpolatedString:
		for _, part := range e.Parts {
			add(part.Expr)
		}
	case *syntax.Lambda:
		add(e.Body)
	case *syntax.Binary:
		add(e.Left, e.Right)
	case *syntax.Unary:
		add(e.Operand)
	case *syntax.Range:
		add(e.Start, e.End)
	}
	return out
}

// WalkCalls calls fn for every call-shaped node in the tree: invocations,
// object creations and element accesses.
func WalkCalls(exprs []syntax.Expr, fn func(call syntax.Expr, depth int)) {
	Walk(exprs, func(node syntax.Expr, _ syntax.Expr, depth int) {
		if isCall(node) {
			fn(node, depth)
		}
	})
}

func isCall(e syntax.Expr) bool {
	switch e.(type) {
	case *syntax.Invocation, *syntax.ObjectCreation, *syntax.ElementAccess:
		return true
	}
	return false
}

// HeadName returns the name a call-shaped node invokes, or "". Element
// accesses invoke "this".
func HeadName(call syntax.Expr) string {
	switch call := call.(type) {
	case *syntax.Invocation:
		return Name(call.Callee)
	case *syntax.ObjectCreation:
		if call.Type != nil {
			return call.Type.Name
		}
	case *syntax.ElementAccess:
		return "this"
	}
	return ""
}

// Name returns the simple name of a name-shaped node, or "".
func Name(e syntax.Expr) string {
	switch e := e.(type) {
	case *syntax.Identifier:
		return e.Name
	case *syntax.GenericName:
		return e.Name
	case *syntax.MemberAccess:
		return e.Name
	}
	return ""
}

// Args returns the argument list of a call-shaped node, or nil.
func Args(call syntax.Expr) []*syntax.Argument {
	switch call := call.(type) {
	case *syntax.Invocation:
		return call.Args
	case *syntax.ObjectCreation:
		return call.Args
	case *syntax.ElementAccess:
		return call.Args
	}
	return nil
}

// ArgCount returns the number of arguments of a call-shaped node.
func ArgCount(call syntax.Expr) int {
	return len(Args(call))
}

// NameLoc returns the best location to report a use of the symbol a node
// names: the member name of a member access, the callee name of an
// invocation, the type of an object creation, or the whole node.
func NameLoc(e syntax.Expr) *syntax.Location {
	switch e := e.(type) {
	case *syntax.MemberAccess:
		if e.NameLoc != nil {
			return e.NameLoc
		}
	case *syntax.Invocation:
		return NameLoc(e.Callee)
	case *syntax.ObjectCreation:
		if e.Type != nil && e.Type.Source != nil {
			return e.Type.Source
		}
	case *syntax.Parenthesized:
		return NameLoc(e.Inner)
	}
	if e == nil {
		return nil
	}
	return e.Location()
}

// PathTo returns the chain of nodes whose location contains the 1-based
// line and column, outermost first. It is empty when expr does not contain
// the position.
func PathTo(expr syntax.Expr, line, col int) []syntax.Expr {
	var path []syntax.Expr
	for node := expr; node != nil; {
		if !node.Location().ContainsLine(line, col) {
			break
		}
		path = append(path, node)
		var next syntax.Expr
		for _, child := range Children(node) {
			if child.Location().ContainsLine(line, col) {
				next = child
				break
			}
		}
		node = next
	}
	return path
}

// EnclosingCall returns the innermost call-shaped node on path whose
// argument list, rather than its callee, contains the position, together
// with the index of the argument the position is in. The index equals the
// number of arguments when the position follows the last one.
func EnclosingCall(path []syntax.Expr, line, col int) (syntax.Expr, int) {
	for i := len(path) - 1; i >= 0; i-- {
		call := path[i]
		if !isCall(call) {
			continue
		}
		if head(call).ContainsLine(line, col) {
			continue
		}
		args := Args(call)
		for j, a := range args {
			if a.Source.ContainsLine(line, col) || before(line, col, a.Source) {
				return call, j
			}
		}
		return call, len(args)
	}
	return nil, 0
}

// head returns the location of the part of a call that names what is
// called.
func head(call syntax.Expr) *syntax.Location {
	switch call := call.(type) {
	case *syntax.Invocation:
		return call.Callee.Location()
	case *syntax.ElementAccess:
		return call.Receiver.Location()
	case *syntax.ObjectCreation:
		if call.Type != nil {
			return call.Type.Source
		}
	}
	return nil
}

func before(line, col int, loc *syntax.Location) bool {
	if loc == nil {
		return false
	}
	return line < loc.Line || (line == loc.Line && col < loc.Col)
}
