// Copyright © 2024 The ELPS authors

package conversions

import (
	"github.com/luthersystems/sembind/symbols"
)

var _ symbols.ConstraintOracle = (*Classifier)(nil)

// SatisfiesConstraints implements symbols.ConstraintOracle.
func (c *Classifier) SatisfiesConstraints(tp *symbols.TypeParameter, arg symbols.Type) bool {
	return c.SatisfiesConstraintsIn(tp, arg, nil)
}

// SatisfiesConstraintsIn checks arg against the constraints of tp after
// substituting subst into the constraint types, so that constraints may
// mention sibling type parameters.
func (c *Classifier) SatisfiesConstraintsIn(tp *symbols.TypeParameter, arg symbols.Type, subst symbols.Substitution) bool {
	if symbols.IsErrorType(arg) {
		return true
	}
	if tp.ReferenceConstraint && !symbols.IsReferenceType(arg) {
		return false
	}
	if tp.ValueConstraint && (!symbols.IsValueType(arg) || symbols.IsNullable(arg)) {
		return false
	}
	if tp.ConstructorConstraint && !c.hasPublicDefaultConstructor(arg) {
		return false
	}
	for _, ct := range tp.ConstraintTypes {
		ct = symbols.Substitute(ct, subst)
		switch c.standardImplicit(arg, ct, nil).Kind {
		case Identity, ImplicitReference, Boxing:
		default:
			return false
		}
	}
	return true
}

func (c *Classifier) hasPublicDefaultConstructor(t symbols.Type) bool {
	switch t := t.(type) {
	case *symbols.TypeParameter:
		return t.ConstructorConstraint || t.ValueConstraint
	case *symbols.NamedType:
		switch t.TypeKind {
		case symbols.TypeStruct, symbols.TypeEnum:
			return true
		case symbols.TypeClass:
			if t.Abstract || t.Static {
				return false
			}
			ctors := c.tab.MembersOf(t, symbols.ConstructorName)
			if len(ctors) == 0 {
				return true
			}
			for _, ctor := range ctors {
				if len(ctor.Params) == 0 && ctor.Access == symbols.Public {
					return true
				}
			}
		}
	}
	return false
}
