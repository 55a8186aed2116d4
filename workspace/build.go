// Copyright © 2024 The ELPS authors

package workspace

import (
	"bytes"
	"context"
	"fmt"
	"go/constant"
	"go/token"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/parser"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// declared is a type declaration in progress.
type declared struct {
	decl    *typeDecl
	ns      string
	nt      *symbols.NamedType
	tparams []*symbols.Symbol
	// scope resolves the names in member signatures. It is detached from
	// the namespace scope so that only the file's scopes are its children.
	scope *symbols.Scope
}

// builder turns a document into a workspace. Types are declared first so
// that signatures may refer to any of them, then headers (bases,
// interfaces, constraints) are resolved, then members, then the file's
// scopes and expressions. The table is frozen last.
type builder struct {
	ctx      context.Context
	file     string
	path     string
	data     []byte
	doc      *document
	log      logrus.FieldLogger
	features binder.Features
	err      error

	tab      *symbols.Table
	bind     *binder.Binder
	global   *symbols.Scope
	nsScopes map[string]*symbols.Scope
	types    []*declared
}

var typeKinds = map[string]symbols.TypeKind{
	"":          symbols.TypeClass,
	"class":     symbols.TypeClass,
	"struct":    symbols.TypeStruct,
	"interface": symbols.TypeInterface,
	"enum":      symbols.TypeEnum,
	"delegate":  symbols.TypeDelegate,
}

var callerInfos = map[string]symbols.CallerInfo{
	"":           symbols.CallerNone,
	"lineNumber": symbols.CallerLineNumber,
	"filePath":   symbols.CallerFilePath,
	"memberName": symbols.CallerMemberName,
}

var refKinds = map[string]syntax.RefKind{
	"":    syntax.RefNone,
	"ref": syntax.RefRef,
	"out": syntax.RefOut,
	"in":  syntax.RefIn,
}

func (b *builder) build() *Workspace {
	module := b.doc.Module
	if module == "" {
		module = strings.TrimSuffix(b.file, Ext)
	}
	b.tab = symbols.NewTable(module)
	b.bind = binder.New(b.tab, binder.WithLogger(b.log))
	b.global = symbols.NewScope(symbols.ScopeGlobal, nil)
	b.global.Namespace = b.tab.Global()
	b.nsScopes = map[string]*symbols.Scope{"": b.global}

	for _, ns := range b.doc.Namespaces {
		b.namespaceScope(ns.Name)
		for _, td := range ns.Types {
			b.declareType(ns.Name, td)
		}
	}
	b.global.Usings = b.usings(b.doc.Usings)
	for _, ns := range b.doc.Namespaces {
		s := b.namespaceScope(ns.Name)
		s.Usings = append(s.Usings, b.usings(ns.Usings)...)
	}
	for _, d := range b.types {
		b.header(d)
	}
	for _, d := range b.types {
		b.members(d)
	}

	ws := &Workspace{
		File:     b.file,
		Path:     b.path,
		Text:     b.data,
		Table:    b.tab,
		Features: b.features,
	}
	ws.Global = &Scope{Scope: b.global, Env: binder.NewEnv(b.global).WithFeatures(b.features)}
	for _, sd := range b.doc.Scopes {
		if ws.Scope(sd.Name) != nil {
			b.errorf(sd.at, "scope %s is declared twice", sd.Name)
			continue
		}
		if s := b.scope(sd); s != nil {
			ws.Scopes = append(ws.Scopes, s)
		}
	}
	for i, ed := range b.doc.Expressions {
		if e := b.expression(ws, i, ed); e != nil {
			ws.Expressions = append(ws.Expressions, e)
		}
	}
	b.tab.Freeze()
	b.log.WithFields(logrus.Fields{
		"file":        b.file,
		"types":       len(b.types),
		"scopes":      len(ws.Scopes),
		"expressions": len(ws.Expressions),
	}).Debug("workspace loaded")
	return ws
}

func (b *builder) namespaceScope(name string) *symbols.Scope {
	if s, ok := b.nsScopes[name]; ok {
		return s
	}
	s := symbols.NewScope(symbols.ScopeNamespace, b.global)
	s.Namespace = b.tab.Namespace(name)
	b.nsScopes[name] = s
	return s
}

func (b *builder) usings(names []scalar) []*symbols.Symbol {
	var out []*symbols.Symbol
	for _, name := range names {
		ns := b.tab.LookupNamespace(name.Value)
		if ns == nil {
			b.errorf(name.pos(), "namespace %s is not declared", name.Value)
			continue
		}
		out = append(out, ns)
	}
	return out
}

func (b *builder) declareType(ns string, td *typeDecl) {
	kind, ok := typeKinds[td.Kind]
	switch {
	case td.Name == "":
		b.errorf(td.at, "type without a name")
		return
	case !ok:
		b.errorf(td.at, "type %s: unknown kind %q", td.Name, td.Kind)
		return
	case b.tab.LookupType(ns, td.Name, len(td.TypeParams)) != nil:
		b.errorf(td.at, "type %s is declared twice", td.Name)
		return
	}
	names := make([]string, len(td.TypeParams))
	for i, tp := range td.TypeParams {
		names[i] = tp.Name
	}
	nt := b.tab.DeclareType(ns, td.Name, kind, names...)
	nt.Static = td.Static
	nt.Abstract = td.Abstract
	sym := b.tab.TypeSymbol(nt)
	sym.Access = b.access(td.at, td.Access)
	sym.Obsolete = obsolete(td.Obsolete)
	sym.Doc = td.Doc
	sym.Source = b.loc(td.at, len(td.Name))
	if td.WellKnown != "" {
		if wk, ok := symbols.ParseWellKnownType(td.WellKnown); ok {
			b.tab.SetWellKnown(wk, nt)
		} else {
			b.errorf(td.at, "type %s: unknown well-known role %q", td.Name, td.WellKnown)
		}
	}
	d := &declared{decl: td, ns: ns, nt: nt}
	d.scope = symbols.NewDetachedScope(symbols.ScopeType, b.namespaceScope(ns))
	d.scope.Type = nt
	for _, tp := range nt.TypeParams {
		tpSym := b.tab.AddLocal(symbols.NewTypeParameterSymbol(tp))
		d.tparams = append(d.tparams, tpSym)
		d.scope.Define(tpSym)
	}
	b.types = append(b.types, d)
	b.log.WithFields(logrus.Fields{
		"namespace": ns,
		"name":      td.Name,
		"kind":      kind.String(),
	}).Debug("type declared")
}

// header resolves the base type, interfaces, enum underlying type and type
// parameter constraints of a declared type.
func (b *builder) header(d *declared) {
	td, nt := d.decl, d.nt
	env := binder.NewEnv(d.scope)
	switch nt.TypeKind {
	case symbols.TypeClass:
		nt.Base = b.tab.Special(symbols.SpecialObject)
	case symbols.TypeStruct:
		nt.Base = b.tab.Special(symbols.SpecialValueType)
	case symbols.TypeEnum:
		nt.Base = b.tab.Special(symbols.SpecialEnum)
		nt.EnumUnderlying = b.tab.Special(symbols.SpecialInt32)
	case symbols.TypeDelegate:
		nt.Base = b.tab.Special(symbols.SpecialDelegate)
	}
	if td.Base != nil {
		if base, ok := b.namedType(env, td.Base); ok {
			switch {
			case nt.TypeKind != symbols.TypeClass:
				b.errorf(td.Base.pos(), "%s %s cannot declare a base type", nt.TypeKind, nt.Name)
			case base.TypeKind != symbols.TypeClass:
				b.errorf(td.Base.pos(), "base type %s is not a class", base)
			case symbols.IsDerivedFrom(base, nt):
				b.errorf(td.Base.pos(), "circular base type dependency involving %s", nt.Name)
			default:
				nt.Base = base
			}
		}
	}
	for i := range td.Interfaces {
		iface, ok := b.namedType(env, &td.Interfaces[i])
		if !ok {
			continue
		}
		if iface.TypeKind != symbols.TypeInterface {
			b.errorf(td.Interfaces[i].pos(), "%s is not an interface", iface)
			continue
		}
		nt.Interfaces = append(nt.Interfaces, iface)
	}
	if td.Underlying != nil {
		u, ok := b.namedType(env, td.Underlying)
		switch {
		case !ok:
		case nt.TypeKind != symbols.TypeEnum:
			b.errorf(td.Underlying.pos(), "only enums declare an underlying type")
		case !symbols.SpecialOf(u).IsIntegral():
			b.errorf(td.Underlying.pos(), "enum underlying type must be integral, not %s", u)
		default:
			nt.EnumUnderlying = u
		}
	}
	for i, tpd := range td.TypeParams {
		b.constrain(env, nt.TypeParams[i], tpd)
	}
}

func (b *builder) constrain(env binder.Env, tp *symbols.TypeParameter, d *typeParamDecl) {
	tp.ReferenceConstraint = d.Class
	tp.ValueConstraint = d.Struct
	tp.ConstructorConstraint = d.New
	if d.Class && d.Struct {
		b.errorf(d.at, "type parameter %s cannot be both class and struct", d.Name)
	}
	for i := range d.Constraints {
		tp.ConstraintTypes = append(tp.ConstraintTypes, b.resolve(env, &d.Constraints[i]))
	}
}

func (b *builder) members(d *declared) {
	env := binder.NewEnv(d.scope)
	switch d.nt.TypeKind {
	case symbols.TypeEnum:
		b.enumValues(env, d)
	case symbols.TypeDelegate:
		if d.decl.Invoke == nil {
			b.errorf(d.decl.at, "delegate %s has no invoke signature", d.nt.Name)
			break
		}
		md := d.decl.Invoke
		m := symbols.NewMethod(symbols.InvokeName, b.returnType(env, md), b.params(env, md.Params)...)
		m.MethodKind = symbols.MethodDelegateInvoke
		m.Source = d.decl.Invoke.loc(b)
		b.tab.AddMember(d.nt, m)
	}
	for _, md := range d.decl.Members {
		b.member(env, d, md)
	}
}

func (b *builder) enumValues(env binder.Env, d *declared) {
	next := constant.MakeInt64(0)
	for _, v := range d.decl.Values {
		val := next
		if v.Value != nil {
			c := b.constant(env.WithStatic(true).WithConstantInitializer(v.Name), v.Value, d.nt.EnumUnderlying)
			if c != nil {
				val = c
			}
		}
		f := symbols.NewField(v.Name, d.nt)
		f.Static = true
		f.Constant = val
		f.Source = b.loc(v.at, len(v.Name))
		b.tab.AddMember(d.nt, f)
		next = constant.BinaryOp(val, token.ADD, constant.MakeInt64(1))
	}
}

func (b *builder) member(env binder.Env, d *declared, md *memberDecl) {
	var sym *symbols.Symbol
	hasParams := true
	switch md.Kind {
	case "field":
		sym = symbols.NewField(md.Name, nil)
		hasParams = false
	case "property":
		sym = symbols.NewProperty(md.Name, nil)
		hasParams = md.Extension
	case "indexer":
		sym = symbols.NewIndexer(nil)
	case "method":
		sym = symbols.NewMethod(md.Name, nil)
	case "constructor":
		sym = symbols.NewConstructor()
	case "operator":
		name, ok := symbols.OperatorMethodName(md.Op)
		if !ok {
			b.errorf(md.at, "unknown operator %q", md.Op)
			return
		}
		sym = symbols.NewOperator(name, nil)
	default:
		b.errorf(md.at, "member %s: unknown kind %q", md.Name, md.Kind)
		return
	}
	if sym.Name == "" {
		b.errorf(md.at, "%s without a name", md.Kind)
		return
	}
	sym.Access = b.access(md.at, md.Access)
	sym.Static = sym.Static || md.Static || md.Extension
	sym.Abstract = md.Abstract
	sym.Virtual = md.Virtual
	sym.Extension = md.Extension
	sym.Obsolete = obsolete(md.Obsolete)
	sym.Doc = md.Doc
	sym.Source = md.loc(b)

	menv := env
	if len(md.TypeParams) > 0 {
		scope := symbols.NewDetachedScope(symbols.ScopeMethod, d.scope)
		scope.Member = sym
		for _, tpd := range md.TypeParams {
			tp := &symbols.TypeParameter{Name: tpd.Name}
			sym.TypeParams = append(sym.TypeParams, tp)
			scope.Define(b.tab.AddLocal(symbols.NewTypeParameterSymbol(tp)))
		}
		menv = binder.NewEnv(scope)
		for i, tpd := range md.TypeParams {
			b.constrain(menv, sym.TypeParams[i], tpd)
		}
	}

	switch sym.Kind {
	case symbols.SymMethod:
		if sym.MethodKind != symbols.MethodConstructor {
			sym.Type = b.returnType(menv, md)
		}
	default:
		sym.Type = b.typeOf(menv, md)
	}
	if hasParams {
		sym.Params = b.params(menv, md.Params)
	} else if len(md.Params) > 0 {
		b.errorf(md.at, "%s %s cannot declare parameters", md.Kind, md.Name)
	}
	if md.Const != nil {
		if sym.Kind != symbols.SymField {
			b.errorf(md.Const.pos(), "%s %s cannot be constant", md.Kind, md.Name)
		} else {
			sym.Static = true
			sym.Constant = b.constant(menv.WithStatic(true).WithConstantInitializer(md.Name), md.Const, sym.Type)
		}
	}
	if !b.checkMember(d, md, sym) {
		return
	}
	b.tab.AddMember(d.nt, sym)
}

// checkMember reports declarations the binder could not use.
func (b *builder) checkMember(d *declared, md *memberDecl, sym *symbols.Symbol) bool {
	ok := true
	fail := func(format string, args ...any) {
		b.errorf(md.at, format, args...)
		ok = false
	}
	switch {
	case sym.Extension && !d.nt.Static:
		fail("extension %s must be declared in a static type", sym.Name)
	case sym.Extension && len(sym.Params) == 0:
		fail("extension %s needs a receiver parameter", sym.Name)
	case sym.IsIndexer() && len(sym.Params) == 0:
		fail("indexer needs at least one parameter")
	case d.nt.Static && !sym.Static && sym.MethodKind != symbols.MethodConstructor:
		fail("static type %s cannot declare instance member %s", d.nt.Name, sym.Name)
	}
	if sym.Kind == symbols.SymMethod {
		switch sym.MethodKind {
		case symbols.MethodImplicitConversion, symbols.MethodExplicitConversion:
			if len(sym.Params) != 1 {
				fail("conversion operator needs one parameter")
			}
		case symbols.MethodOperator:
			want := 2
			if md.Op == "unary-" || md.Op == "!" {
				want = 1
			}
			if len(sym.Params) != want {
				fail("operator %s needs %d parameters", md.Op, want)
			}
		}
	}
	return ok
}

func (b *builder) params(env binder.Env, pds []*paramDecl) []*symbols.Parameter {
	out := make([]*symbols.Parameter, 0, len(pds))
	for i, pd := range pds {
		var typ symbols.Type = &symbols.ErrorType{Name: pd.Name}
		if pd.Type == nil {
			b.errorf(pd.at, "parameter %s has no type", pd.Name)
		} else {
			typ = b.resolve(env, pd.Type)
		}
		p := symbols.NewParam(pd.Name, typ)
		p.Source = b.loc(pd.at, len(pd.Name))
		if rk, ok := refKinds[pd.Ref]; ok {
			p.RefKind = rk
		} else {
			b.errorf(pd.at, "parameter %s: unknown ref kind %q", pd.Name, pd.Ref)
		}
		if pd.Params {
			p.IsParams = true
			if i != len(pds)-1 {
				b.errorf(pd.at, "params parameter %s must be last", pd.Name)
			}
			if _, ok := typ.(*symbols.ArrayType); !ok && !symbols.IsErrorType(typ) {
				b.errorf(pd.at, "params parameter %s must be an array", pd.Name)
			}
		}
		if ci, ok := callerInfos[pd.CallerInfo]; ok {
			p.CallerInfo = ci
		} else {
			b.errorf(pd.at, "parameter %s: unknown caller info %q", pd.Name, pd.CallerInfo)
		}
		if pd.Default != nil {
			p.HasDefault = true
			p.Default = b.constant(env.WithDefaultArgument(), pd.Default, typ)
		} else if p.CallerInfo != symbols.CallerNone {
			b.errorf(pd.at, "caller info parameter %s needs a default value", pd.Name)
		}
		out = append(out, p)
	}
	return out
}

func (b *builder) typeOf(env binder.Env, md *memberDecl) symbols.Type {
	if md.Type == nil {
		b.errorf(md.at, "%s %s has no type", md.Kind, md.Name)
		return &symbols.ErrorType{Name: md.Name}
	}
	return b.resolve(env, md.Type)
}

func (b *builder) returnType(env binder.Env, md *memberDecl) symbols.Type {
	if md.Returns == nil {
		return b.tab.Special(symbols.SpecialVoid)
	}
	return b.resolve(env, md.Returns)
}

func (b *builder) scope(sd *scopeDecl) *Scope {
	if sd.Name == "" {
		b.errorf(sd.at, "scope without a name")
		return nil
	}
	s, ok := b.nsScopes[sd.Namespace]
	if !ok {
		b.errorf(sd.at, "scope %s: namespace %s is not declared", sd.Name, sd.Namespace)
		return nil
	}
	if len(sd.Usings) > 0 {
		s = symbols.NewScope(symbols.ScopeNamespace, s)
		s.Usings = b.usings(sd.Usings)
	}
	switch {
	case sd.Type != "":
		d := b.declaredType(sd.Namespace, sd.Type)
		if d == nil {
			b.errorf(sd.at, "scope %s: type %s is not declared in namespace %q", sd.Name, sd.Type, sd.Namespace)
			return nil
		}
		s = symbols.NewScope(symbols.ScopeType, s)
		s.Type = d.nt
		for _, tp := range d.tparams {
			s.Define(tp)
		}
		if sd.Method != "" {
			m := b.method(sd, d)
			if m == nil {
				return nil
			}
			s = symbols.NewScope(symbols.ScopeMethod, s)
			s.Member = m
			for _, tp := range m.TypeParams {
				s.Define(b.tab.AddLocal(symbols.NewTypeParameterSymbol(tp)))
			}
			for _, p := range m.Params {
				s.Define(b.tab.AddLocal(symbols.NewParameterSymbol(p)))
			}
		}
	case sd.Method != "":
		b.errorf(sd.at, "scope %s: method %s needs a type", sd.Name, sd.Method)
		return nil
	}
	if len(sd.Locals) > 0 {
		s = symbols.NewScope(symbols.ScopeBlock, s)
		for _, ld := range sd.Locals {
			b.local(s, ld)
		}
	}
	env := binder.NewEnv(s).WithFeatures(b.features)
	if sd.Static != nil {
		env = env.WithStatic(*sd.Static)
	}
	return &Scope{Name: sd.Name, Scope: s, Env: env, Source: b.loc(sd.at, len(sd.Name))}
}

func (b *builder) declaredType(ns, name string) *declared {
	for _, d := range b.types {
		if d.ns == ns && d.nt.Name == name {
			return d
		}
	}
	return nil
}

func (b *builder) method(sd *scopeDecl, d *declared) *symbols.Symbol {
	var found []*symbols.Symbol
	for _, m := range d.nt.DeclaredMembersNamed(sd.Method) {
		if m.Kind == symbols.SymMethod {
			found = append(found, m)
		}
	}
	if sd.Method == "constructor" {
		found = append(found, d.nt.DeclaredMembersNamed(symbols.ConstructorName)...)
	}
	switch len(found) {
	case 0:
		b.errorf(sd.at, "scope %s: %s has no method %s", sd.Name, d.nt.Name, sd.Method)
		return nil
	case 1:
		return found[0]
	}
	b.errorf(sd.at, "scope %s: method %s of %s is overloaded", sd.Name, sd.Method, d.nt.Name)
	return nil
}

func (b *builder) local(block *symbols.Scope, ld *localDecl) {
	env := binder.NewEnv(block)
	var typ symbols.Type = &symbols.ErrorType{Name: ld.Name}
	if ld.Type == nil {
		b.errorf(ld.at, "local %s has no type", ld.Name)
	} else {
		typ = b.resolve(env, ld.Type)
	}
	local := symbols.NewLocal(ld.Name, typ)
	local.Source = b.loc(ld.at, len(ld.Name))
	if ld.Const != nil {
		local.Constant = b.constant(env.WithConstantInitializer(ld.Name), ld.Const, typ)
	}
	if len(block.LookupLocal(ld.Name)) > 0 {
		b.errorf(ld.at, "local %s is declared twice", ld.Name)
		return
	}
	block.Define(b.tab.AddLocal(local))
}

func (b *builder) expression(ws *Workspace, i int, ed *exprDecl) *Expression {
	name := ed.Name
	if name == "" {
		name = fmt.Sprintf("#%d", i+1)
	}
	env := ws.Global.Env
	if ed.Scope != "" {
		s := ws.Scope(ed.Scope)
		if s == nil {
			b.errorf(ed.at, "expression %s: scope %s is not declared", name, ed.Scope)
			return nil
		}
		env = s.Env
	}
	for _, f := range ed.Features {
		flag, ok := binder.ParseFeature(f)
		if !ok {
			b.errorf(ed.at, "expression %s: unknown feature %q", name, f)
			continue
		}
		env = env.WithFeatures(flag)
	}
	if ed.Constant != "" {
		env = env.WithConstantInitializer(ed.Constant)
	}
	e := &Expression{
		Name:   name,
		Text:   ed.Text.Value,
		Env:    env,
		Source: b.textLoc(&ed.Text),
	}
	e.Syntax, e.Err = b.parserFor(&ed.Text).Parse([]byte(ed.Text.Value))
	if ed.Target != nil {
		e.Target = b.resolve(env, ed.Target)
	}
	return e
}

// resolve binds a type reference written in the file.
func (b *builder) resolve(env binder.Env, s *scalar) symbols.Type {
	ref, err := b.parserFor(s).ParseType(s.Value)
	if err != nil {
		b.fail(err)
		return &symbols.ErrorType{Name: s.Value}
	}
	return b.bind.BindType(b.ctx, env, ref, b)
}

func (b *builder) namedType(env binder.Env, s *scalar) (*symbols.NamedType, bool) {
	t := b.resolve(env, s)
	nt, ok := t.(*symbols.NamedType)
	if !ok && !symbols.IsErrorType(t) {
		b.errorf(s.pos(), "%s is not a named type", t)
	}
	return nt, ok
}

// constant binds a constant expression written in the file and converts it
// to typ. It returns nil for null and default values and for expressions
// that fail to bind.
func (b *builder) constant(env binder.Env, s *scalar, typ symbols.Type) constant.Value {
	e, err := b.parserFor(s).Parse([]byte(s.Value))
	if err != nil {
		b.fail(err)
		return nil
	}
	out := b.bind.BindTo(b.ctx, env, e, typ, b)
	if out.HasErrors() {
		return nil
	}
	return out.ConstantValue()
}

// Add implements diagnostic.Sink for binds made while loading.
func (b *builder) Add(d diagnostic.Diagnostic) {
	if d.Severity != diagnostic.SeverityError {
		b.log.WithField("code", d.Code.String()).Debug(d.Message)
		return
	}
	sp := d.Span()
	end := sp.Col
	if sp.EndCol > 0 {
		end = sp.EndCol + 1
	}
	b.fail(&syntax.LocationError{
		Err:    fmt.Errorf("%s: %s", d.Code, d.Message),
		Source: &syntax.Location{File: b.file, Path: b.path, Line: sp.Line, Col: sp.Col, EndLine: sp.Line, EndCol: end},
	})
}

func (b *builder) parserFor(s *scalar) *parser.Parser {
	line, col := b.origin(s)
	return parser.New(b.file, parser.WithPath(b.path), parser.WithOrigin(line, col))
}

// origin returns the position of the first character of a scalar's text.
// Continuation lines of block scalars are not adjusted for indentation.
func (b *builder) origin(s *scalar) (int, int) {
	n := s.node
	switch {
	case n == nil:
		return 1, 1
	case n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
		return n.Line, n.Column + 1
	case n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
		return n.Line + 1, b.indent(n.Line+1) + 1
	}
	return n.Line, n.Column
}

func (b *builder) indent(line int) int {
	lines := bytes.SplitN(b.data, []byte("\n"), line+1)
	if line < 1 || line > len(lines) {
		return 0
	}
	l := lines[line-1]
	return len(l) - len(bytes.TrimLeft(l, " "))
}

func (b *builder) textLoc(s *scalar) *syntax.Location {
	line, col := b.origin(s)
	text := strings.TrimRight(s.Value, "\n")
	loc := &syntax.Location{
		File:    b.file,
		Path:    b.path,
		End:     len(text),
		Line:    line,
		Col:     col,
		EndLine: line,
		EndCol:  col + len(text),
	}
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		loc.EndLine = line + strings.Count(text, "\n")
		loc.EndCol = len(text) - i
	}
	return loc
}

func (b *builder) loc(at pos, width int) *syntax.Location {
	return &syntax.Location{
		File:    b.file,
		Path:    b.path,
		End:     width,
		Line:    at.Line,
		Col:     at.Column,
		EndLine: at.Line,
		EndCol:  at.Column + width,
	}
}

func (md *memberDecl) loc(b *builder) *syntax.Location {
	width := len(md.Name)
	switch {
	case md.Name == "" && md.Op != "":
		width = len(md.Op)
	case md.Name == "":
		width = len(md.Kind)
	}
	return b.loc(md.at, width)
}

func (b *builder) access(at pos, s string) symbols.Accessibility {
	a, ok := symbols.ParseAccessibility(s)
	if !ok {
		b.errorf(at, "unknown accessibility %q", s)
	}
	return a
}

func obsolete(d *obsoleteDecl) *symbols.Obsolete {
	if d == nil {
		return nil
	}
	return &symbols.Obsolete{Message: d.Message, IsError: d.Error}
}

func (b *builder) errorf(at pos, format string, args ...any) {
	b.fail(&syntax.LocationError{Err: fmt.Errorf(format, args...), Source: b.loc(at, 0)})
}

func (b *builder) fail(err error) {
	b.err = multierr.Append(b.err, err)
}
