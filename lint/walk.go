// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/syntax"
)

// Walk calls fn for every bound expression of every binding, depth-first.
// Bindings whose text did not parse are skipped.
func Walk(pass *Pass, fn func(b *analysis.Binding, node bound.Expr, depth int)) {
	for _, b := range pass.Result.Bindings {
		if b.Tree == nil {
			continue
		}
		walkNode(b, b.Tree, 0, fn)
	}
}

func walkNode(b *analysis.Binding, n bound.Node, depth int, fn func(*analysis.Binding, bound.Expr, int)) {
	if n == nil {
		return
	}
	if e, ok := n.(bound.Expr); ok {
		fn(b, e, depth)
	}
	for _, child := range bound.Children(n) {
		walkNode(b, child, depth+1, fn)
	}
}

// WalkConversions calls fn for every conversion node that bound without
// errors.
func WalkConversions(pass *Pass, fn func(b *analysis.Binding, conv *bound.Conversion)) {
	Walk(pass, func(b *analysis.Binding, node bound.Expr, _ int) {
		if conv, ok := node.(*bound.Conversion); ok && !conv.HasErrors() {
			fn(b, conv)
		}
	})
}

// SourceOf returns the best source location for a node.
// Prefers the node's own syntax, falls back to the binding's text.
func SourceOf(b *analysis.Binding, n bound.Node) *syntax.Location {
	if n != nil && n.Syntax() != nil {
		if loc := n.Syntax().Location(); loc != nil && loc.Line > 0 {
			return loc
		}
	}
	return b.Expression.Source
}
