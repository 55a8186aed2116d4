// Copyright © 2024 The ELPS authors

/*
Package parser reads the expression language used by the tooling front ends
into syntax trees.

	expr       := lambda | range
	lambda     := (IDENT | '(' [lparam {',' lparam}] ')') '=>' expr
	lparam     := [type] IDENT
	range      := [or] '..' [or] | or
	or         := and {'||' and}
	and        := eq {'&&' eq}
	eq         := rel {('==' | '!=') rel}
	rel        := add {('<=' | '>=' | '<' | '>') add}
	add        := mul {('+' | '-') mul}
	mul        := unary {('*' | '/' | '%') unary}
	unary      := ('-' | '!' | '^') unary | '(' type ')' unary | postfix
	postfix    := primary {'.' IDENT [typeargs] | '(' args ')' | '[' args ']'}
	primary    := literal | 'this' | 'new' type '(' args ')'
	            | 'default' ['(' type ')'] | '(' args ')' | '[' elems ']'
	            | IDENT typeargs | IDENT
	args       := [arg {',' arg}]
	arg        := [IDENT ':'] ['ref' | 'out' | 'in'] expr
	elems      := [elem {',' elem}]
	elem       := '..' expr | expr
	type       := NAME [typeargs] ['?'] {'[' {','} ']'}
	typeargs   := '<' type {',' type} '>'

A parenthesized argument list of one unnamed argument is a parenthesized
expression; anything else is a tuple literal. Type arguments on a simple name
or member are only recognized when followed by '(' or '.'.
*/
package parser

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	parsec "github.com/prataprc/goparsec"

	"github.com/luthersystems/sembind/syntax"
)

// ErrUnexpectedText is returned when text remains after a complete
// expression.
var ErrUnexpectedText = errors.New("unexpected source text")

// ErrNoExpression is returned when the text holds no expression.
var ErrNoExpression = errors.New("expected an expression")

// Parse parses text as a single expression. The file name is recorded in
// every location of the returned tree.
func Parse(file string, text []byte) (syntax.Expr, error) {
	return New(file).Parse(text)
}

// ParseType parses text as a type reference.
func ParseType(file string, text string) (*syntax.TypeRef, error) {
	return New(file).ParseType(text)
}

// Parser parses expressions embedded at a position inside a larger file.
type Parser struct {
	File string
	Path string
	// Line and Col position the first byte of parsed text. Zero values are
	// treated as 1.
	Line int
	Col  int
}

// Option configures a Parser.
type Option func(*Parser)

// WithOrigin positions parsed text at a 1-based line and column of the file.
func WithOrigin(line, col int) Option {
	return func(p *Parser) {
		p.Line, p.Col = line, col
	}
}

// WithPath records the on-disk path of the file in locations.
func WithPath(path string) Option {
	return func(p *Parser) {
		p.Path = path
	}
}

// New returns a Parser for the named file.
func New(file string, opts ...Option) *Parser {
	p := &Parser{File: file, Line: 1, Col: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text as a single expression.
func (p *Parser) Parse(text []byte) (syntax.Expr, error) {
	g := p.grammar(text)
	node, err := g.run(g.expr, text)
	if err != nil {
		return nil, err
	}
	e, ok := node.(syntax.Expr)
	if !ok {
		return nil, g.errorAt(0, ErrNoExpression)
	}
	return e, nil
}

// ParseType parses text as a type reference.
func (p *Parser) ParseType(text string) (*syntax.TypeRef, error) {
	g := p.grammar([]byte(text))
	node, err := g.run(g.typ, []byte(text))
	if err != nil {
		return nil, err
	}
	t, ok := node.(*syntax.TypeRef)
	if !ok {
		return nil, g.errorAt(0, fmt.Errorf("expected a type"))
	}
	return t, nil
}

func (p *Parser) grammar(text []byte) *grammar {
	src := &source{p: p, text: text, lines: []int{0}}
	for i, b := range text {
		if b == '\n' {
			src.lines = append(src.lines, i+1)
		}
	}
	return newGrammar(src, 0)
}

// source is the complete text being parsed, shared by the grammars of
// interpolation holes.
type source struct {
	p     *Parser
	text  []byte
	lines []int
}

func (src *source) location(start, end int) *syntax.Location {
	line, col := src.position(start)
	endLine, endCol := src.position(end)
	return &syntax.Location{
		File:    src.p.File,
		Path:    src.p.Path,
		Pos:     start,
		End:     end,
		Line:    line,
		Col:     col,
		EndLine: endLine,
		EndCol:  endCol,
	}
}

func (src *source) position(offset int) (line, col int) {
	i := sort.SearchInts(src.lines, offset+1) - 1
	if i < 0 {
		i = 0
	}
	line = nonzero(src.p.Line) + i
	col = offset - src.lines[i] + 1
	if i == 0 {
		col += nonzero(src.p.Col) - 1
	}
	return line, col
}

func nonzero(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

type grammar struct {
	src *source
	// offset of the scanned text inside src.text
	offset int
	err    error

	expr parsec.Parser
	typ  parsec.Parser
}

func (g *grammar) run(root parsec.Parser, text []byte) (parsec.ParsecNode, error) {
	s := parsec.NewScanner(text)
	node, s := root(s)
	if list, ok := node.([]parsec.ParsecNode); ok {
		node = nil
		if list = flatten(list); len(list) == 1 {
			node = list[0]
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	if node == nil {
		_, s = s.SkipWS()
		return nil, g.errorAt(s.GetCursor(), ErrNoExpression)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		cursor := s.GetCursor()
		b, _ := s.Match(`.{1,16}`)
		if len(b) > 15 {
			b = append(b[:15:15], []byte("...")...)
		}
		return nil, g.errorAt(cursor, fmt.Errorf("%w possibly starting: %s", ErrUnexpectedText, b))
	}
	return node, nil
}

func (g *grammar) errorAt(cursor int, err error) error {
	at := g.offset + cursor
	return &syntax.LocationError{Err: err, Source: g.src.location(at, at)}
}

func (g *grammar) fail(cursor int, err error) {
	if g.err == nil {
		g.err = g.errorAt(cursor, err)
	}
}

func (g *grammar) at(start, end int) *syntax.Location {
	return g.src.location(start, end)
}

const (
	identPattern = `@?[\pL_][\pL\pN_]*`
	intSuffix    = `(?:[uU][lL]?|[lL][uU]?)?`
)

var keywords = map[string]bool{
	"true":    true,
	"false":   true,
	"null":    true,
	"this":    true,
	"new":     true,
	"default": true,
	"ref":     true,
	"out":     true,
	"in":      true,
}

const predefinedTypes = `(?:sbyte|byte|short|ushort|int|uint|long|ulong|char|float|double|decimal|bool|string|object)\b`

func newGrammar(src *source, offset int) *grammar {
	g := &grammar{src: src, offset: offset}

	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	openB := parsec.Atom("[", "OPENB")
	closeB := parsec.Atom("]", "CLOSEB")
	lt := parsec.Atom("<", "LT")
	gt := parsec.Atom(">", "GT")
	comma := parsec.Atom(",", "COMMA")
	question := parsec.Atom("?", "QUESTION")
	arrow := parsec.Atom("=>", "ARROW")
	dots := parsec.Atom("..", "DOTDOT")

	ident := except(parsec.Token(identPattern, "IDENT"), keywords)
	typeName := parsec.Token(identPattern+`(?:\.`+identPattern+`)*`, "TYPENAME")
	rank := parsec.Token(`\[[\s,]*\]`, "RANK")

	var typ parsec.Parser
	typeArgs := parsec.And(nil, lt, list1(&typ, comma), gt)
	typ = parsec.And(g.typeNode, typeName, optional(typeArgs), optional(question), parsec.Kleene(nil, rank))

	literal := parsec.OrdChoice(g.literalNode,
		parsec.Token(`(?:(?:[0-9][0-9_]*)?\.[0-9][0-9_]*(?:[eE][+-]?[0-9]+)?[fFdDmM]?|[0-9][0-9_]*(?:[eE][+-]?[0-9]+[fFdDmM]?|[fFdDmM]))`, "REAL"),
		parsec.Token(`0[xX][0-9a-fA-F_]+`+intSuffix, "INTEGER"),
		parsec.Token(`0[bB][01_]+`+intSuffix, "INTEGER"),
		parsec.Token(`[0-9][0-9_]*`+intSuffix, "INTEGER"),
		parsec.Token(`"(?:[^"\\\n]|\\.)*"`, "STRING"),
		parsec.Token(`'(?:[^'\\\n]|\\.)*'`, "CHAR"),
		keyword("true"),
		keyword("false"),
		keyword("null"),
	)
	interpolated := parsec.And(g.interpolatedNode, parsec.Token(`\$"(?:[^"\\{]|\\.|\{\{|\{[^}]*\})*"`, "INTERPOLATED"))

	var expr, unary parsec.Parser

	refKind := parsec.Token(`(?:ref|out|in)\b`, "REFKIND")
	argName := parsec.Token(identPattern+`\s*:`, "ARGNAME")
	argument := parsec.And(g.argumentNode, optional(argName), optional(refKind), &expr)
	args := optional(list1(argument, comma))

	element := parsec.OrdChoice(nil,
		parsec.And(g.elementNode, dots, &expr),
		parsec.And(g.elementNode, &expr),
	)

	primary := parsec.OrdChoice(nil,
		literal,
		interpolated,
		parsec.And(g.thisNode, keyword("this")),
		parsec.And(g.newNode, keyword("new"), &typ, openP, args, closeP),
		parsec.And(g.defaultNode, keyword("default"), openP, &typ, closeP),
		parsec.And(g.defaultNode, keyword("default")),
		parsec.And(g.parenNode, openP, list1(argument, comma), closeP),
		parsec.And(g.collectionNode, openB, optional(list1(element, comma)), closeB),
		parsec.And(g.genericNameNode, ident, typeArgs, followedBy(`[(.]`)),
		parsec.And(g.identifierNode, ident),
	)

	suffix := parsec.OrdChoice(nil,
		parsec.And(g.memberSuffix, parsec.Token(`\.\s*`+identPattern, "MEMBER"), optional(parsec.And(nil, typeArgs, followedBy(`\(`)))),
		parsec.And(g.invokeSuffix, openP, args, closeP),
		parsec.And(g.indexSuffix, openB, args, closeB),
	)
	postfix := parsec.And(g.postfixNode, primary, parsec.Kleene(nil, suffix))

	cast := parsec.OrdChoice(nil,
		parsec.And(g.castNode, openP, followedBy(predefinedTypes+`\s*[?\[)]`), &typ, closeP, &unary),
		parsec.And(g.castNode, openP, &typ, closeP, followedBy(`[\pL\pN_@"'($]`), &unary),
	)
	unary = parsec.OrdChoice(nil,
		parsec.And(g.unaryNode, parsec.Token(`[-!^]`, "UNARYOP"), &unary),
		cast,
		postfix,
	)

	mul := parsec.And(g.binaryNode, unary, parsec.Kleene(nil, parsec.And(nil, parsec.Token(`[*/%]`, "BINOP"), unary)))
	add := parsec.And(g.binaryNode, mul, parsec.Kleene(nil, parsec.And(nil, parsec.Token(`[+-]`, "BINOP"), mul)))
	rel := parsec.And(g.binaryNode, add, parsec.Kleene(nil, parsec.And(nil, parsec.Token(`(?:<=|>=|<|>)`, "BINOP"), add)))
	eq := parsec.And(g.binaryNode, rel, parsec.Kleene(nil, parsec.And(nil, parsec.Token(`(?:==|!=)`, "BINOP"), rel)))
	and := parsec.And(g.binaryNode, eq, parsec.Kleene(nil, parsec.And(nil, parsec.Atom("&&", "BINOP"), eq)))
	or := parsec.And(g.binaryNode, and, parsec.Kleene(nil, parsec.And(nil, parsec.Atom("||", "BINOP"), and)))

	lparam := parsec.OrdChoice(nil,
		parsec.And(g.lambdaParamNode, &typ, ident),
		parsec.And(g.lambdaParamNode, ident),
	)
	lparams := parsec.OrdChoice(nil,
		parsec.And(nil, openP, optional(list1(lparam, comma)), closeP),
		parsec.And(g.lambdaParamNode, ident),
	)
	lambda := parsec.And(g.lambdaNode, lparams, arrow, &expr)

	expr = parsec.OrdChoice(nil, lambda, g.rangeOf(or, dots))

	g.expr = expr
	g.typ = typ
	return g
}

// marker is a zero-width node produced by optional and lookahead parsers.
type marker struct{}

func optional(p interface{}) parsec.Parser {
	inner := parsec.And(nil, p)
	return func(s parsec.Scanner) (parsec.ParsecNode, parsec.Scanner) {
		if n, news := inner(s); n != nil {
			return n, news
		}
		return marker{}, s
	}
}

func followedBy(pattern string) parsec.Parser {
	return func(s parsec.Scanner) (parsec.ParsecNode, parsec.Scanner) {
		news := s.Clone()
		news.SkipWS()
		if b, _ := news.Match(`^(?:` + pattern + `)`); b != nil {
			return marker{}, s
		}
		return nil, s
	}
}

// except rejects terminals whose value is in words.
func except(p parsec.Parser, words map[string]bool) parsec.Parser {
	return func(s parsec.Scanner) (parsec.ParsecNode, parsec.Scanner) {
		n, news := p(s)
		t, ok := n.(*parsec.Terminal)
		if !ok || words[t.GetValue()] {
			return nil, s
		}
		return n, news
	}
}

func keyword(word string) parsec.Parser {
	return parsec.Token(word+`\b`, strings.ToUpper(word))
}

// list1 matches one or more items separated by sep.
func list1(item interface{}, sep parsec.Parser) parsec.Parser {
	return parsec.And(nil, item, parsec.Kleene(nil, parsec.And(nil, sep, item)))
}

// rangeOf parses an optional range around operand without parsing the
// operand twice.
func (g *grammar) rangeOf(operand, dots parsec.Parser) parsec.Parser {
	return func(s parsec.Scanner) (parsec.ParsecNode, parsec.Scanner) {
		start, news := operand(s)
		if start == nil {
			news = s
		}
		d, after := dots(news)
		if d == nil {
			if start == nil {
				return nil, s
			}
			return start, news
		}
		end, rest := operand(after)
		if end == nil {
			rest = after
		}
		r := &syntax.Range{}
		r.Start, _ = start.(syntax.Expr)
		r.End, _ = end.(syntax.Expr)
		first, last := g.span([]parsec.ParsecNode{start, d, end})
		r.Source = g.at(first, last)
		return r, rest
	}
}

// flatten removes nesting and markers from a combinator's node list.
func flatten(nodes []parsec.ParsecNode) []parsec.ParsecNode {
	var out []parsec.ParsecNode
	for _, n := range nodes {
		switch n := n.(type) {
		case nil, marker:
		case []parsec.ParsecNode:
			out = append(out, flatten(n)...)
		default:
			out = append(out, n)
		}
	}
	return out
}

type located interface {
	Location() *syntax.Location
}

func (g *grammar) bounds(n parsec.ParsecNode) (int, int, bool) {
	switch n := n.(type) {
	case *parsec.Terminal:
		start := g.offset + n.Position
		return start, start + len(n.Value), true
	case located:
		if loc := n.Location(); loc != nil {
			return loc.Pos, loc.End, true
		}
	case *syntax.Argument:
		return n.Source.Pos, n.Source.End, true
	case *syntax.TypeRef:
		return n.Source.Pos, n.Source.End, true
	case *syntax.LambdaParam:
		return n.Source.Pos, n.Source.End, true
	case *syntax.CollectionElement:
		return n.Source.Pos, n.Source.End, true
	case *suffix:
		return n.start, n.end, true
	case []parsec.ParsecNode:
		start, end := g.span(n)
		return start, end, start >= 0
	}
	return 0, 0, false
}

// span returns the byte range covered by nodes, or -1 when no node has a
// position.
func (g *grammar) span(nodes []parsec.ParsecNode) (int, int) {
	start, end := -1, -1
	for _, n := range nodes {
		s, e, ok := g.bounds(n)
		if !ok {
			continue
		}
		if start < 0 || s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}
	return start, end
}

func (g *grammar) spanLoc(nodes []parsec.ParsecNode) *syntax.Location {
	start, end := g.span(nodes)
	return g.at(start, end)
}

func terminal(n parsec.ParsecNode, name string) *parsec.Terminal {
	t, ok := n.(*parsec.Terminal)
	if !ok || t.GetName() != name {
		return nil
	}
	return t
}

func exprs(nodes []parsec.ParsecNode) []syntax.Expr {
	var out []syntax.Expr
	for _, n := range nodes {
		if e, ok := n.(syntax.Expr); ok {
			out = append(out, e)
		}
	}
	return out
}

func arguments(nodes []parsec.ParsecNode) []*syntax.Argument {
	var out []*syntax.Argument
	for _, n := range nodes {
		if a, ok := n.(*syntax.Argument); ok {
			out = append(out, a)
		}
	}
	return out
}

func typeRefs(nodes []parsec.ParsecNode) []*syntax.TypeRef {
	var out []*syntax.TypeRef
	for _, n := range nodes {
		if t, ok := n.(*syntax.TypeRef); ok {
			out = append(out, t)
		}
	}
	return out
}

func (g *grammar) typeNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	t := &syntax.TypeRef{Source: g.spanLoc(nodes), TypeArgs: typeRefs(nodes)}
	for _, n := range nodes {
		term, ok := n.(*parsec.Terminal)
		if !ok {
			continue
		}
		switch term.GetName() {
		case "TYPENAME":
			t.Name = strings.TrimPrefix(term.GetValue(), "@")
		case "QUESTION":
			t.Nullable = true
		case "RANK":
			t.ArrayRanks = append(t.ArrayRanks, strings.Count(term.GetValue(), ",")+1)
		}
	}
	return t
}

func (g *grammar) literalNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	term := nodes[0].(*parsec.Terminal)
	lit := &syntax.Literal{Source: g.spanLoc(nodes), Text: term.GetValue()}
	switch term.GetName() {
	case "REAL":
		lit.LitKind = syntax.LitReal
	case "INTEGER":
		lit.LitKind = syntax.LitInteger
	case "STRING", "CHAR":
		lit.LitKind = syntax.LitString
		if term.GetName() == "CHAR" {
			lit.LitKind = syntax.LitChar
		}
		raw := term.GetValue()
		text, err := unescape(raw[1 : len(raw)-1])
		if err != nil {
			g.fail(term.Position, err)
		}
		lit.Text = text
	case "TRUE":
		lit.LitKind = syntax.LitTrue
	case "FALSE":
		lit.LitKind = syntax.LitFalse
	case "NULL":
		lit.LitKind = syntax.LitNull
	}
	return lit
}

// unescape interprets backslash escapes in a string or character literal
// body.
func unescape(body string) (string, error) {
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	for len(body) > 0 {
		if strings.HasPrefix(body, `\0`) && (len(body) == 2 || body[2] < '0' || body[2] > '9') {
			sb.WriteByte(0)
			body = body[2:]
			continue
		}
		if strings.HasPrefix(body, `\'`) || strings.HasPrefix(body, `\"`) {
			sb.WriteByte(body[1])
			body = body[2:]
			continue
		}
		r, _, tail, err := strconv.UnquoteChar(body, 0)
		if err != nil {
			return "", fmt.Errorf("invalid escape sequence in %q", body)
		}
		sb.WriteRune(r)
		body = tail
	}
	return sb.String(), nil
}

func (g *grammar) interpolatedNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	term := nodes[0].(*parsec.Terminal)
	n := &syntax.InterpolatedString{Source: g.spanLoc(nodes)}
	raw := term.GetValue()
	// Offsets below are relative to the scanned text.
	base := term.Position + 2
	body := raw[2 : len(raw)-1]
	var text strings.Builder
	flush := func() {
		if text.Len() == 0 {
			return
		}
		s, err := unescape(text.String())
		if err != nil {
			g.fail(base, err)
		}
		n.Parts = append(n.Parts, syntax.InterpolationPart{Text: s})
		text.Reset()
	}
	for i := 0; i < len(body); i++ {
		switch {
		case strings.HasPrefix(body[i:], "{{"), strings.HasPrefix(body[i:], "}}"):
			text.WriteByte(body[i])
			i++
		case body[i] == '\\' && i+1 < len(body):
			text.WriteString(body[i : i+2])
			i++
		case body[i] == '{':
			end := strings.IndexByte(body[i:], '}')
			flush()
			hole := holeExpr(body[i+1 : i+end])
			n.Parts = append(n.Parts, syntax.InterpolationPart{Expr: g.parseHole(hole, base+i+1)})
			i += end
		default:
			text.WriteByte(body[i])
		}
	}
	flush()
	return n
}

// holeExpr strips any alignment or format specifier from an interpolation
// hole.
func holeExpr(hole string) string {
	depth := 0
	quote := byte(0)
	for i := 0; i < len(hole); i++ {
		c := hole[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case depth == 0 && (c == ':' || c == ','):
			return hole[:i]
		}
	}
	return hole
}

func (g *grammar) parseHole(text string, cursor int) syntax.Expr {
	sub := newGrammar(g.src, g.offset+cursor)
	node, err := sub.run(sub.expr, []byte(text))
	if err != nil {
		if g.err == nil {
			g.err = err
		}
		return &syntax.Identifier{Source: g.at(g.offset+cursor, g.offset+cursor+len(text))}
	}
	return node.(syntax.Expr)
}

func (g *grammar) thisNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return &syntax.This{Source: g.spanLoc(flatten(nodes))}
}

func (g *grammar) newNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	n := &syntax.ObjectCreation{Source: g.spanLoc(nodes), Args: arguments(nodes)}
	if ts := typeRefs(nodes); len(ts) > 0 {
		n.Type = ts[0]
	}
	return n
}

func (g *grammar) defaultNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	n := &syntax.Default{Source: g.spanLoc(nodes)}
	if ts := typeRefs(nodes); len(ts) > 0 {
		n.Type = ts[0]
	}
	return n
}

func (g *grammar) parenNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	loc := g.spanLoc(nodes)
	args := arguments(nodes)
	if len(args) == 1 && args[0].Name == "" && args[0].RefKind == syntax.RefNone {
		return &syntax.Parenthesized{Source: loc, Inner: args[0].Expr}
	}
	return &syntax.Tuple{Source: loc, Elements: args}
}

func (g *grammar) collectionNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	n := &syntax.Collection{Source: g.spanLoc(nodes)}
	for _, e := range nodes {
		if e, ok := e.(*syntax.CollectionElement); ok {
			n.Elements = append(n.Elements, e)
		}
	}
	return n
}

func (g *grammar) elementNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	e := &syntax.CollectionElement{Source: g.spanLoc(nodes), Spread: terminal(nodes[0], "DOTDOT") != nil}
	if xs := exprs(nodes); len(xs) > 0 {
		e.Expr = xs[0]
	}
	return e
}

func (g *grammar) argumentNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	a := &syntax.Argument{Source: g.spanLoc(nodes)}
	for _, n := range nodes {
		switch n := n.(type) {
		case *parsec.Terminal:
			switch n.GetName() {
			case "ARGNAME":
				name := strings.TrimRight(strings.TrimSuffix(strings.TrimSpace(n.GetValue()), ":"), " \t\r\n")
				a.Name = strings.TrimPrefix(name, "@")
				start := g.offset + n.Position
				a.NameLoc = g.at(start, start+len(name))
			case "REFKIND":
				switch n.GetValue() {
				case "ref":
					a.RefKind = syntax.RefRef
				case "out":
					a.RefKind = syntax.RefOut
				case "in":
					a.RefKind = syntax.RefIn
				}
			}
		case syntax.Expr:
			a.Expr = n
		}
	}
	return a
}

func (g *grammar) genericNameNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	return &syntax.GenericName{
		Source:   g.spanLoc(nodes),
		Name:     strings.TrimPrefix(nodes[0].(*parsec.Terminal).GetValue(), "@"),
		TypeArgs: typeRefs(nodes),
	}
}

func (g *grammar) identifierNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	return &syntax.Identifier{
		Source: g.spanLoc(nodes),
		Name:   strings.TrimPrefix(nodes[0].(*parsec.Terminal).GetValue(), "@"),
	}
}

type suffixKind uint8

const (
	suffixMember suffixKind = iota
	suffixInvoke
	suffixIndex
)

// suffix is a postfix operation waiting for its receiver.
type suffix struct {
	kind     suffixKind
	start    int
	end      int
	name     string
	nameLoc  *syntax.Location
	typeArgs []*syntax.TypeRef
	args     []*syntax.Argument
}

func (g *grammar) memberSuffix(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	start, end := g.span(nodes)
	term := nodes[0].(*parsec.Terminal)
	value := term.GetValue()
	name := strings.TrimLeft(value[1:], " \t\r\n")
	nameStart := g.offset + term.Position + len(value) - len(name)
	return &suffix{
		kind:     suffixMember,
		start:    start,
		end:      end,
		name:     strings.TrimPrefix(name, "@"),
		nameLoc:  g.at(nameStart, nameStart+len(name)),
		typeArgs: typeRefs(nodes),
	}
}

func (g *grammar) invokeSuffix(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	start, end := g.span(nodes)
	return &suffix{kind: suffixInvoke, start: start, end: end, args: arguments(nodes)}
}

func (g *grammar) indexSuffix(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	start, end := g.span(nodes)
	return &suffix{kind: suffixIndex, start: start, end: end, args: arguments(nodes)}
}

func (g *grammar) postfixNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	recv := nodes[0].(syntax.Expr)
	for _, n := range nodes[1:] {
		sfx, ok := n.(*suffix)
		if !ok {
			continue
		}
		loc := g.at(recv.Location().Pos, sfx.end)
		switch sfx.kind {
		case suffixMember:
			recv = &syntax.MemberAccess{Source: loc, Receiver: recv, Name: sfx.name, NameLoc: sfx.nameLoc, TypeArgs: sfx.typeArgs}
		case suffixInvoke:
			recv = &syntax.Invocation{Source: loc, Callee: recv, Args: sfx.args}
		case suffixIndex:
			recv = &syntax.ElementAccess{Source: loc, Receiver: recv, Args: sfx.args}
		}
	}
	return recv
}

func (g *grammar) castNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	n := &syntax.Cast{Source: g.spanLoc(nodes)}
	if ts := typeRefs(nodes); len(ts) > 0 {
		n.Type = ts[0]
	}
	if xs := exprs(nodes); len(xs) > 0 {
		n.Operand = xs[0]
	}
	return n
}

func (g *grammar) unaryNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	n := &syntax.Unary{Source: g.spanLoc(nodes), Operand: exprs(nodes)[0]}
	switch nodes[0].(*parsec.Terminal).GetValue() {
	case "-":
		n.Op = syntax.OpNeg
	case "!":
		n.Op = syntax.OpNot
	case "^":
		n.Op = syntax.OpHat
	}
	return n
}

// binaryNode folds an operand chain into left associative binary nodes.
func (g *grammar) binaryNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	left := nodes[0].(syntax.Expr)
	for i := 1; i+1 < len(nodes); i += 2 {
		op, _ := syntax.ParseBinaryOp(nodes[i].(*parsec.Terminal).GetValue())
		right := nodes[i+1].(syntax.Expr)
		left = &syntax.Binary{
			Source: syntax.Merge(left.Location(), right.Location()),
			Op:     op,
			Left:   left,
			Right:  right,
		}
	}
	return left
}

func (g *grammar) lambdaParamNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	p := &syntax.LambdaParam{Source: g.spanLoc(nodes)}
	if ts := typeRefs(nodes); len(ts) > 0 {
		p.Type = ts[0]
	}
	if term := terminal(nodes[len(nodes)-1], "IDENT"); term != nil {
		p.Name = strings.TrimPrefix(term.GetValue(), "@")
	}
	return p
}

func (g *grammar) lambdaNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes = flatten(nodes)
	n := &syntax.Lambda{Source: g.spanLoc(nodes)}
	for _, x := range nodes {
		switch x := x.(type) {
		case *syntax.LambdaParam:
			n.Params = append(n.Params, x)
		case syntax.Expr:
			n.Body = x
		}
	}
	return n
}
