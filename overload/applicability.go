// Copyright © 2024 The ELPS authors

package overload

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// progress ranks how far a candidate got before failing. When both forms
// of a params method fail, the form that got further is reported.
func progress(k MemberKind) int {
	switch k {
	case MemberBadArgumentConversion, MemberBadArgRefKind:
		return 3
	case MemberTypeInferenceFailed:
		return 2
	case MemberApplicable:
		return 4
	}
	return 1
}

// checkApplicable fills m with the outcome of applicability in normal
// form and, when that fails for a params method, in expanded form.
func (r *Resolver) checkApplicable(m *MemberResult, args *Arguments, ctx Context) {
	sym := m.Member
	if len(ctx.TypeArgs) > 0 {
		if len(sym.TypeParams) != len(ctx.TypeArgs) {
			m.Kind = MemberWrongArity
			return
		}
		if sym.TypeArgs == nil {
			sym = symbols.ConstructMethod(sym, ctx.TypeArgs)
		}
		m.Member, m.TypeArgs = sym, ctx.TypeArgs
	}

	normal := *m
	r.tryForm(&normal, args, analyzeArguments(args, sym.Params, false), ctx)
	if normal.Kind == MemberApplicable || !sym.HasParamsArray() {
		*m = normal
		return
	}
	expanded := *m
	r.tryForm(&expanded, args, analyzeArguments(args, sym.Params, true), ctx)
	if progress(expanded.Kind) >= progress(normal.Kind) {
		*m = expanded
		return
	}
	*m = normal
}

// tryForm checks applicability for one argument mapping.
func (r *Resolver) tryForm(m *MemberResult, args *Arguments, an analysis, ctx Context) {
	m.ArgsToParams = an.argsToParams
	m.Expanded = an.kind == analysisExpanded
	m.DefaultsUsed = an.defaultsUsed
	if !an.ok() {
		m.Kind = analysisFailure(an.kind)
		m.BadParameter = an.badParam
		if an.badArg >= 0 {
			m.BadArguments = []int{an.badArg}
		}
		return
	}

	if m.Member.IsGenericMethod() && m.Member.TypeArgs == nil {
		inferred, ok := r.infer(m.Member, args, an)
		if !ok {
			m.Kind = MemberTypeInferenceFailed
			return
		}
		m.Member = symbols.ConstructMethod(m.Member, inferred)
		m.TypeArgs = inferred
	}

	m.Conversions = make([]conversions.Conversion, args.Len())
	m.BadArguments = nil
	kind := MemberApplicable
	for i, arg := range args.Args {
		p := m.Param(i)
		ak := args.RefKind(i)
		if !refCompatible(ak, p.RefKind) {
			m.BadArguments = append(m.BadArguments, i)
			if kind == MemberApplicable {
				kind = MemberBadArgRefKind
			}
			continue
		}
		c := r.classifyArgument(arg, m.ParamType(i), ak, ctx, i)
		m.Conversions[i] = c
		if !c.Exists() || !c.IsImplicit() {
			m.BadArguments = append(m.BadArguments, i)
			if kind == MemberApplicable {
				kind = MemberBadArgumentConversion
			}
		}
	}
	m.Kind = kind
}

func analysisFailure(k analysisKind) MemberKind {
	switch k {
	case analysisNoCorrespondingParameter:
		return MemberNoCorrespondingParameter
	case analysisNoCorrespondingNamedParameter:
		return MemberNoCorrespondingNamedParameter
	case analysisNameUsedForPositional:
		return MemberNameUsedForPositional
	case analysisBadNonTrailingNamed:
		return MemberBadNonTrailingNamed
	default:
		return MemberRequiredParameterMissing
	}
}

// classifyArgument classifies argument i against its parameter type.
// By-reference arguments need identical types.
func (r *Resolver) classifyArgument(arg bound.Node, target symbols.Type, ak syntax.RefKind, ctx Context, i int) conversions.Conversion {
	if target == nil {
		return conversions.None
	}
	at := bound.TypeOf(arg)
	switch {
	case ak == syntax.RefRef || ak == syntax.RefOut || ak == syntax.RefIn:
		if at != nil && symbols.Identical(at, target) {
			return conversions.Of(conversions.Identity)
		}
		return conversions.None
	case ctx.Extension && i == 0:
		if at != nil && r.conv.IsImplicitReferenceOrIdentity(at, target) {
			return r.conv.ClassifyImplicitTypes(at, target)
		}
		return conversions.None
	case ctx.DelegateConversion:
		if at == nil {
			return conversions.None
		}
		c := r.conv.ClassifyImplicitTypes(at, target)
		if c.IsIdentity() || c.Kind == conversions.ImplicitReference {
			return c
		}
		return conversions.None
	}
	return r.args.ClassifyArgument(arg, target)
}
