// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"sort"
)

// Code identifies a kind of binding diagnostic. Codes are stable; their
// printed form (B1001, ...) appears in CLI output and LSP diagnostics.
type Code int

// Lookup failures.
const (
	_ Code = iota
	ErrNameNotFound
	ErrMemberNotFound
	ErrAmbiguousName
	ErrInaccessible
	ErrWrongArity
	ErrNotAValue
	ErrNotInvocable
	ErrInstanceRequired
	ErrStaticViaInstance
	ErrThisInStatic
	ErrBadReceiver
	ErrAmbiguousExtension
	ErrTypeNotFound
)

// Overload resolution failures.
const (
	ErrNoOverloadArgCount Code = iota + 100
	ErrBadArgument
	ErrBadArgRefKind
	ErrAmbiguousCall
	ErrNoApplicable
	ErrTypeInference
	ErrNoNamedParameter
	ErrNamedAlreadyPositional
	ErrBadNonTrailingNamed
	ErrMissingArgument
	ErrConstraint
	ErrAbstractCreation
	ErrStaticCreation
	ErrNoConstructor
)

// Conversion failures.
const (
	ErrNoImplicitConversion Code = iota + 200
	ErrNoImplicitConversionExplicitExists
	ErrNoExplicitConversion
	ErrConstantOverflow
	ErrNoNaturalType
	ErrAmbiguousUserConversion
	ErrLambdaConversion
	ErrMethodGroupConversion
	ErrCollectionTarget
	ErrLiteralOutOfRange
	ErrBadLiteral
)

// Argument list failures.
const (
	ErrDuplicateNamedArgument Code = iota + 300
	ErrNamedBeforePositional
	ErrRefArgNotVariable
)

// Operator, context and pattern failures.
const (
	ErrBadBinaryOperands Code = iota + 400
	ErrAmbiguousBinaryOperator
	ErrBadUnaryOperand
	ErrDivideByZero
	ErrNotConstant
	ErrNotIndexable
	ErrBadIndexCount
	ErrMissingWellKnownType
	ErrTupleTooShort
)

// Use-site diagnostics.
const (
	WarnObsolete Code = iota + 500
	ErrObsolete
)

// Tooling diagnostics, reported before binding starts.
const (
	ErrSyntax Code = iota + 600
	ErrDeclaration
)

type codeInfo struct {
	id       string
	severity Severity
	format   string
}

var codeTable = map[Code]codeInfo{
	ErrNameNotFound:       {"B1001", SeverityError, "the name '%s' does not exist in the current context"},
	ErrMemberNotFound:     {"B1002", SeverityError, "'%s' does not contain a definition for '%s'"},
	ErrAmbiguousName:      {"B1003", SeverityError, "'%s' is an ambiguous reference between '%s' and '%s'"},
	ErrInaccessible:       {"B1004", SeverityError, "'%s' is inaccessible due to its protection level"},
	ErrWrongArity:         {"B1005", SeverityError, "the %s '%s' cannot be used with %d type argument(s)"},
	ErrNotAValue:          {"B1006", SeverityError, "'%s' is a %s, which is not valid in the given context"},
	ErrNotInvocable:       {"B1007", SeverityError, "non-invocable member '%s' cannot be used like a method"},
	ErrInstanceRequired:   {"B1008", SeverityError, "an object reference is required for the non-static member '%s'"},
	ErrStaticViaInstance:  {"B1009", SeverityError, "member '%s' cannot be accessed with an instance reference; qualify it with a type name instead"},
	ErrThisInStatic:       {"B1010", SeverityError, "keyword 'this' is not valid in a static context"},
	ErrBadReceiver:        {"B1011", SeverityError, "operator '.' cannot be applied to operand of type '%s'"},
	ErrAmbiguousExtension: {"B1012", SeverityError, "the call is ambiguous between extension method '%s' and extension property '%s'"},
	ErrTypeNotFound:       {"B1013", SeverityError, "the type or namespace name '%s' could not be found"},

	ErrNoOverloadArgCount:     {"B2001", SeverityError, "no overload for method '%s' takes %d arguments"},
	ErrBadArgument:            {"B2002", SeverityError, "argument %d: cannot convert from '%s' to '%s'"},
	ErrBadArgRefKind:          {"B2003", SeverityError, "argument %d must be passed %s"},
	ErrAmbiguousCall:          {"B2004", SeverityError, "the call is ambiguous between the following methods or properties: '%s' and '%s'"},
	ErrNoApplicable:           {"B2005", SeverityError, "no overload of '%s' is applicable to the given arguments"},
	ErrTypeInference:          {"B2006", SeverityError, "the type arguments for method '%s' cannot be inferred from the usage; try specifying the type arguments explicitly"},
	ErrNoNamedParameter:       {"B2007", SeverityError, "the best overload for '%s' does not have a parameter named '%s'"},
	ErrNamedAlreadyPositional: {"B2008", SeverityError, "named argument '%s' specifies a parameter for which a positional argument has already been given"},
	ErrBadNonTrailingNamed:    {"B2009", SeverityError, "named argument '%s' is used out-of-position but is followed by an unnamed argument"},
	ErrMissingArgument:        {"B2010", SeverityError, "there is no argument given that corresponds to the required parameter '%s' of '%s'"},
	ErrConstraint:             {"B2011", SeverityError, "the type '%s' does not satisfy the constraints of type parameter '%s' in '%s'"},
	ErrAbstractCreation:       {"B2012", SeverityError, "cannot create an instance of the abstract type or interface '%s'"},
	ErrStaticCreation:         {"B2013", SeverityError, "cannot create an instance of the static class '%s'"},
	ErrNoConstructor:          {"B2014", SeverityError, "'%s' does not contain a constructor that takes %d arguments"},

	ErrNoImplicitConversion:               {"B3001", SeverityError, "cannot implicitly convert type '%s' to '%s'"},
	ErrNoImplicitConversionExplicitExists: {"B3002", SeverityError, "cannot implicitly convert type '%s' to '%s'; an explicit conversion exists (are you missing a cast?)"},
	ErrNoExplicitConversion:               {"B3003", SeverityError, "cannot convert type '%s' to '%s'"},
	ErrConstantOverflow:                   {"B3004", SeverityError, "constant value '%s' cannot be converted to a '%s'"},
	ErrNoNaturalType:                      {"B3005", SeverityError, "%s has no natural type"},
	ErrAmbiguousUserConversion:            {"B3006", SeverityError, "ambiguous user defined conversions '%s' and '%s' when converting from '%s' to '%s'"},
	ErrLambdaConversion:                   {"B3007", SeverityError, "cannot convert lambda expression to type '%s' because %s"},
	ErrMethodGroupConversion:              {"B3008", SeverityError, "no overload for '%s' matches delegate '%s'"},
	ErrCollectionTarget:                   {"B3009", SeverityError, "cannot initialize type '%s' with a collection expression"},
	ErrLiteralOutOfRange:                  {"B3010", SeverityError, "integral constant '%s' is too large"},
	ErrBadLiteral:                         {"B3011", SeverityError, "invalid literal '%s'"},

	ErrDuplicateNamedArgument: {"B4001", SeverityError, "named argument '%s' cannot be specified multiple times"},
	ErrNamedBeforePositional:  {"B4002", SeverityError, "named argument specifications must appear after all fixed arguments have been specified"},
	ErrRefArgNotVariable:      {"B4003", SeverityError, "a ref or out value must be an assignable variable"},

	ErrBadBinaryOperands:       {"B5001", SeverityError, "operator '%s' cannot be applied to operands of type '%s' and '%s'"},
	ErrAmbiguousBinaryOperator: {"B5002", SeverityError, "operator '%s' is ambiguous on operands of type '%s' and '%s'"},
	ErrBadUnaryOperand:         {"B5003", SeverityError, "operator '%s' cannot be applied to operand of type '%s'"},
	ErrDivideByZero:            {"B5004", SeverityError, "division by constant zero"},
	ErrNotConstant:             {"B5005", SeverityError, "the expression being assigned to '%s' must be constant"},
	ErrNotIndexable:            {"B5006", SeverityError, "cannot apply indexing with [] to an expression of type '%s'"},
	ErrBadIndexCount:           {"B5007", SeverityError, "wrong number of indices inside []; expected %d"},
	ErrMissingWellKnownType:    {"B5008", SeverityError, "predefined type '%s' is not defined or imported"},
	ErrTupleTooShort:           {"B5009", SeverityError, "tuple must contain at least two elements"},

	WarnObsolete: {"B6001", SeverityWarning, "'%s' is obsolete: '%s'"},
	ErrObsolete:  {"B6002", SeverityError, "'%s' is obsolete: '%s'"},

	ErrSyntax:      {"B7001", SeverityError, "syntax error: %s"},
	ErrDeclaration: {"B7002", SeverityError, "%s"},
}

// String returns the stable identifier of c, such as "B1001".
func (c Code) String() string {
	if info, ok := codeTable[c]; ok {
		return info.id
	}
	return fmt.Sprintf("B%04d", int(c))
}

// Severity returns the default severity of c.
func (c Code) Severity() Severity {
	if info, ok := codeTable[c]; ok {
		return info.severity
	}
	return SeverityError
}

// Format returns the message template of c.
func (c Code) Format() string {
	if info, ok := codeTable[c]; ok {
		return info.format
	}
	return "%v"
}

// Codes returns every registered code in ascending order.
func Codes() []Code {
	codes := make([]Code, 0, len(codeTable))
	for c := range codeTable {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
