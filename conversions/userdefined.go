// Copyright © 2024 The ELPS authors

package conversions

import (
	"github.com/luthersystems/sembind/symbols"
)

type userCandidate struct {
	op       *symbols.Symbol
	src, dst symbols.Type
	lifted   bool
}

// userDefined classifies a conversion through one user-defined operator
// with a standard conversion before and after it. The operators are those
// declared in the source type, the target type and their base classes.
func (c *Classifier) userDefined(from, to symbols.Type, explicit bool) Conversion {
	if from == nil || to == nil || symbols.IsErrorType(from) || symbols.IsErrorType(to) {
		return None
	}
	cands := c.userCandidates(from, to, explicit)
	if len(cands) == 0 {
		return None
	}

	srcs := make([]symbols.Type, len(cands))
	dsts := make([]symbols.Type, len(cands))
	for i, cand := range cands {
		srcs[i], dsts[i] = cand.src, cand.dst
	}
	sx := c.mostSpecificSource(from, srcs, explicit)
	tx := c.mostSpecificTarget(to, dsts, explicit)

	var picked []userCandidate
	if sx != nil && tx != nil {
		for _, cand := range cands {
			if symbols.Identical(cand.src, sx) && symbols.Identical(cand.dst, tx) {
				picked = append(picked, cand)
			}
		}
	}
	if len(picked) != 1 {
		conv := None
		if len(cands) > 1 {
			conv.Ambiguous = make([]*symbols.Symbol, len(cands))
			for i, cand := range cands {
				conv.Ambiguous[i] = cand.op
			}
		}
		return conv
	}

	best := picked[0]
	before := c.standard(from, best.src, explicit)
	after := c.standard(best.dst, to, explicit)
	kind := ImplicitUserDefined
	if explicit && (best.op.MethodKind == symbols.MethodExplicitConversion || before.IsExplicit() || after.IsExplicit()) {
		kind = ExplicitUserDefined
	}
	return Conversion{Kind: kind, Method: best.op, Before: &before, After: &after, Lifted: best.lifted}
}

// standard returns the standard implicit (or, when explicit, standard
// explicit) conversion from from to to.
func (c *Classifier) standard(from, to symbols.Type, explicit bool) Conversion {
	conv := c.standardImplicit(from, to, nil)
	if !conv.Exists() && explicit {
		conv = c.standardExplicit(from, to)
	}
	return conv
}

func (c *Classifier) encompassed(a, b symbols.Type) bool {
	return c.standardImplicit(a, b, nil).Exists()
}

func (c *Classifier) userCandidates(from, to symbols.Type, explicit bool) []userCandidate {
	var decls []*symbols.NamedType
	addChain := func(t symbols.Type) {
		if under := symbols.NullableUnderlying(t); under != nil {
			t = under
		}
		nt, ok := t.(*symbols.NamedType)
		if !ok || nt.TypeKind == symbols.TypeInterface {
			return
		}
		for cur := nt; cur != nil; cur = cur.BaseType() {
			dup := false
			for _, d := range decls {
				if symbols.Identical(d, cur) {
					dup = true
					break
				}
			}
			if !dup {
				decls = append(decls, cur)
			}
		}
	}
	addChain(from)
	addChain(to)

	// convertible reports whether a and b are related by a standard
	// conversion in the direction the conversion kind allows.
	convertible := func(a, b symbols.Type) bool {
		if c.encompassed(a, b) {
			return true
		}
		return explicit && c.encompassed(b, a)
	}

	var out []userCandidate
	names := []string{symbols.ImplicitName}
	if explicit {
		names = append(names, symbols.ExplicitName)
	}
	for _, d := range decls {
		for _, name := range names {
			for _, op := range c.tab.MembersOf(d, name) {
				if op.Kind != symbols.SymMethod || len(op.Params) != 1 || op.Type == nil {
					continue
				}
				p, r := op.Params[0].Type, op.Type
				if convertible(from, p) && convertible(r, to) {
					out = append(out, userCandidate{op: op, src: p, dst: r})
					continue
				}
				// Lifted form: T? -> U? for an operator T -> U on value types.
				if !symbols.IsNullable(from) || !symbols.IsValueType(p) || symbols.IsNullable(p) ||
					!symbols.IsValueType(r) || symbols.IsNullable(r) {
					continue
				}
				lp := &symbols.NullableType{Underlying: p}
				lr := &symbols.NullableType{Underlying: r}
				if convertible(from, lp) && convertible(lr, to) {
					out = append(out, userCandidate{op: op, src: lp, dst: lr, lifted: true})
				}
			}
		}
	}
	return out
}

// mostSpecificSource picks the source type of the user-defined operator to
// use: the source itself when an operator accepts it exactly, otherwise
// the most encompassed operator source.
func (c *Classifier) mostSpecificSource(from symbols.Type, srcs []symbols.Type, explicit bool) symbols.Type {
	for _, s := range srcs {
		if symbols.Identical(s, from) {
			return s
		}
	}
	if explicit {
		var encompassing []symbols.Type
		for _, s := range srcs {
			if c.encompassed(from, s) {
				encompassing = append(encompassing, s)
			}
		}
		if len(encompassing) > 0 {
			return c.mostEncompassed(encompassing)
		}
		return c.mostEncompassing(srcs)
	}
	return c.mostEncompassed(srcs)
}

// mostSpecificTarget picks the operator result type: the target itself
// when an operator produces it exactly, otherwise the most encompassing
// operator result.
func (c *Classifier) mostSpecificTarget(to symbols.Type, dsts []symbols.Type, explicit bool) symbols.Type {
	for _, d := range dsts {
		if symbols.Identical(d, to) {
			return d
		}
	}
	if explicit {
		var encompassed []symbols.Type
		for _, d := range dsts {
			if c.encompassed(d, to) {
				encompassed = append(encompassed, d)
			}
		}
		if len(encompassed) > 0 {
			return c.mostEncompassing(encompassed)
		}
		return c.mostEncompassed(dsts)
	}
	return c.mostEncompassing(dsts)
}

// mostEncompassed returns the type of ts that converts to every other, or
// nil when there is no unique such type.
func (c *Classifier) mostEncompassed(ts []symbols.Type) symbols.Type {
	var best symbols.Type
	for _, a := range ts {
		ok := true
		for _, b := range ts {
			if !c.encompassed(a, b) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if best != nil && !symbols.Identical(best, a) {
			return nil
		}
		best = a
	}
	return best
}

// mostEncompassing returns the type of ts every other converts to, or nil.
func (c *Classifier) mostEncompassing(ts []symbols.Type) symbols.Type {
	var best symbols.Type
	for _, a := range ts {
		ok := true
		for _, b := range ts {
			if !c.encompassed(b, a) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if best != nil && !symbols.Identical(best, a) {
			return nil
		}
		best = a
	}
	return best
}
