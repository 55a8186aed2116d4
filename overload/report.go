// Copyright © 2024 The ELPS authors

package overload

import (
	"fmt"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/syntax"
)

// SiteKind is the syntactic form of a call site.
type SiteKind uint8

const (
	SiteMethod SiteKind = iota
	SiteConstructor
	SiteIndexer
	SiteDelegate
)

// Site describes a call site for diagnostics.
type Site struct {
	Kind SiteKind
	// Name is the method name, or the type name for constructors.
	Name string
	Loc  *syntax.Location
	// TypeArgCount is the number of explicit type arguments.
	TypeArgCount int
}

// Report adds the diagnostics explaining why res did not succeed. Nothing
// is reported when the arguments already carry errors.
func (r *Resolver) Report(sink diagnostic.Sink, site Site, args *Arguments, res *Result) {
	if res.Kind == Succeeded || args.HasErrors {
		return
	}
	span := diagnostic.SpanOf(site.Loc)
	switch res.Kind {
	case Ambiguous:
		idx := res.AmbiguousIndexes
		a, b := res.Members[idx[0]].Member, res.Members[idx[1]].Member
		sink.Add(diagnostic.New(diagnostic.ErrAmbiguousCall, span, r.tab.DisplayString(a), r.tab.DisplayString(b)))
	case FailedFinalValidation:
		r.reportValidation(sink, span, res.Best())
	case NoApplicableCandidate:
		r.reportInapplicable(sink, span, site, args, res)
	}
}

func (r *Resolver) reportValidation(sink diagnostic.Sink, span diagnostic.Span, best *MemberResult) {
	name := r.tab.DisplayString(best.Member)
	switch best.Kind {
	case MemberInaccessible:
		sink.Add(diagnostic.New(diagnostic.ErrInaccessible, span, name))
	case MemberStaticInstanceMismatch:
		if best.Member.Static {
			sink.Add(diagnostic.New(diagnostic.ErrStaticViaInstance, span, name))
		} else {
			sink.Add(diagnostic.New(diagnostic.ErrInstanceRequired, span, name))
		}
	case MemberConstraintFailure:
		tp := best.BadTypeParameter
		sink.Add(diagnostic.New(diagnostic.ErrConstraint, span, best.TypeArgumentFor(tp).String(), tp.Name, name))
	}
}

// reportInapplicable reports the failure of the candidate that got
// furthest. When several candidates tie, a summary is reported with the
// candidate signatures as notes.
func (r *Resolver) reportInapplicable(sink diagnostic.Sink, span diagnostic.Span, site Site, args *Arguments, res *Result) {
	var live []*MemberResult
	for i := range res.Members {
		if res.Members[i].Kind != MemberDuplicate {
			live = append(live, &res.Members[i])
		}
	}
	if len(live) == 0 {
		r.reportArgCount(sink, span, site, args)
		return
	}
	top := 0
	for _, m := range live {
		if p := progress(m.Kind); p > top {
			top = p
		}
	}
	var furthest []*MemberResult
	arityOnly := true
	for _, m := range live {
		if progress(m.Kind) == top {
			furthest = append(furthest, m)
		}
		if m.Kind != MemberNoCorrespondingParameter && m.Kind != MemberRequiredParameterMissing {
			arityOnly = false
		}
	}
	if len(live) > 1 && arityOnly {
		r.reportArgCount(sink, span, site, args)
		return
	}
	if len(furthest) == 1 {
		r.reportMember(sink, span, site, args, furthest[0])
		return
	}
	notes := make([]string, len(furthest))
	for i, m := range furthest {
		notes[i] = fmt.Sprintf("candidate: %s (%s)", r.tab.Signature(m.Member), m.Kind)
	}
	sink.Add(diagnostic.New(diagnostic.ErrNoApplicable, span, site.Name).WithNotes(notes...))
}

func (r *Resolver) reportArgCount(sink diagnostic.Sink, span diagnostic.Span, site Site, args *Arguments) {
	if site.Kind == SiteConstructor {
		sink.Add(diagnostic.New(diagnostic.ErrNoConstructor, span, site.Name, args.Len()))
		return
	}
	sink.Add(diagnostic.New(diagnostic.ErrNoOverloadArgCount, span, site.Name, args.Len()))
}

// reportMember reports the specific failure of a single candidate.
func (r *Resolver) reportMember(sink diagnostic.Sink, span diagnostic.Span, site Site, args *Arguments, m *MemberResult) {
	name := r.tab.DisplayString(m.Member)
	badArg := -1
	if len(m.BadArguments) > 0 {
		badArg = m.BadArguments[0]
	}
	nameSpan := func() diagnostic.Span {
		if loc := args.NameLoc(badArg); loc != nil {
			return diagnostic.SpanOf(loc)
		}
		return span
	}
	switch m.Kind {
	case MemberWrongArity:
		sink.Add(diagnostic.New(diagnostic.ErrWrongArity, span, "method", site.Name, site.TypeArgCount))
	case MemberNoCorrespondingParameter:
		r.reportArgCount(sink, span, site, args)
	case MemberNoCorrespondingNamedParameter:
		sink.Add(diagnostic.New(diagnostic.ErrNoNamedParameter, nameSpan(), site.Name, args.Name(badArg)))
	case MemberNameUsedForPositional:
		sink.Add(diagnostic.New(diagnostic.ErrNamedAlreadyPositional, nameSpan(), args.Name(badArg)))
	case MemberBadNonTrailingNamed:
		sink.Add(diagnostic.New(diagnostic.ErrBadNonTrailingNamed, nameSpan(), args.Name(badArg)))
	case MemberRequiredParameterMissing:
		param := "?"
		if m.BadParameter >= 0 && m.BadParameter < len(m.Member.Params) {
			param = m.Member.Params[m.BadParameter].Name
		}
		sink.Add(diagnostic.New(diagnostic.ErrMissingArgument, span, param, name))
	case MemberTypeInferenceFailed:
		sink.Add(diagnostic.New(diagnostic.ErrTypeInference, span, name))
	case MemberBadArgumentConversion, MemberBadArgRefKind:
		for _, i := range m.BadArguments {
			r.reportArgument(sink, span, args, m, i)
		}
	}
}

func (r *Resolver) reportArgument(sink diagnostic.Sink, span diagnostic.Span, args *Arguments, m *MemberResult, i int) {
	arg := args.Args[i]
	if src := arg.Syntax(); src != nil && src.Location() != nil {
		span = diagnostic.SpanOf(src.Location())
	}
	p := m.Param(i)
	if p == nil {
		return
	}
	if ak := args.RefKind(i); !refCompatible(ak, p.RefKind) {
		sink.Add(diagnostic.New(diagnostic.ErrBadArgRefKind, span, i+1, refPhrase(p.RefKind, ak)))
		return
	}
	to := "?"
	if t := m.ParamType(i); t != nil {
		to = t.String()
	}
	sink.Add(diagnostic.New(diagnostic.ErrBadArgument, span, i+1, bound.Display(arg), to))
}

// refPhrase completes "argument N must be passed ...".
func refPhrase(pk, ak syntax.RefKind) string {
	if pk == syntax.RefNone {
		return fmt.Sprintf("without the '%s' keyword", ak)
	}
	return fmt.Sprintf("with the '%s' keyword", pk)
}

// Describe renders the resolution outcome of every candidate, one per
// line, for tracing and the query layer.
func (r *Resolver) Describe(res *Result) []string {
	out := make([]string, 0, len(res.Members))
	for i, m := range res.Members {
		mark := " "
		if i == res.BestIndex {
			mark = "*"
		}
		form := ""
		if m.Expanded {
			form = " [expanded]"
		}
		out = append(out, fmt.Sprintf("%s %s: %s%s", mark, r.tab.Signature(m.Member), m.Kind, form))
	}
	return out
}
