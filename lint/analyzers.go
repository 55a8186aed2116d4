// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/symbols"
)

// AnalyzerImplicitBoxing reports value-type operands that are converted to
// object, an interface or another reference type without a cast.
var AnalyzerImplicitBoxing = &Analyzer{
	Name:     "implicit-boxing",
	Severity: SeverityInfo,
	Doc:      "Report implicit boxing conversions.\n\nPassing a struct, enum or numeric value where object or an interface is expected allocates a box on every evaluation. A cast makes the allocation visible at the use site.",
	Run: func(pass *Pass) error {
		WalkConversions(pass, func(b *analysis.Binding, conv *bound.Conversion) {
			if conv.Explicit || !conv.Conversion.IsBoxing() {
				return
			}
			pass.Reportf(SourceOf(b, conv.Operand), "value of type %s is implicitly boxed to %s",
				conv.Operand.Type(), conv.Type())
		})
		return nil
	},
}

// AnalyzerRedundantCast reports casts to the type the operand already has.
var AnalyzerRedundantCast = &Analyzer{
	Name:     "redundant-cast",
	Severity: SeverityWarning,
	Doc:      "Report casts that convert a value to its own type.\n\nAn identity cast has no effect and usually survives a refactoring that changed the operand's type.",
	Run: func(pass *Pass) error {
		WalkConversions(pass, func(b *analysis.Binding, conv *bound.Conversion) {
			if !conv.Explicit || conv.Conversion.Kind != conversions.Identity {
				return
			}
			pass.ReportWithNotes(Diagnostic{
				Pos:     PositionOf(SourceOf(b, conv)),
				End:     EndOf(SourceOf(b, conv)),
				Message: "redundant cast to " + conv.Type().String(),
			}, "the operand already has type "+conv.Operand.Type().String())
		})
		return nil
	},
}

// AnalyzerLossyNumericConversion reports numeric conversions of
// non-constant values that can silently lose information.
var AnalyzerLossyNumericConversion = &Analyzer{
	Name:     "lossy-numeric-conversion",
	Severity: SeverityWarning,
	Doc:      "Report numeric conversions that can lose information.\n\nImplicit conversions from int, uint, long or ulong to float, and from long or ulong to double, are allowed but round large values. Casts from floating point or decimal values to integral types discard the fractional part. Constant operands are checked by the compiler and not reported.",
	Run: func(pass *Pass) error {
		WalkConversions(pass, func(b *analysis.Binding, conv *bound.Conversion) {
			if conv.Operand.ConstantValue() != nil {
				return
			}
			kind := numericKind(conv.Conversion)
			from := specialOf(conv.Operand.Type())
			to := specialOf(conv.Type())
			switch {
			case kind == conversions.ImplicitNumeric && !conv.Explicit && losesPrecision(from, to):
				pass.Reportf(SourceOf(b, conv.Operand), "implicit conversion from %s to %s may lose precision",
					conv.Operand.Type(), conv.Type())
			case kind == conversions.ExplicitNumeric && truncates(from, to):
				pass.ReportWithNotes(Diagnostic{
					Pos:     PositionOf(SourceOf(b, conv)),
					End:     EndOf(SourceOf(b, conv)),
					Message: "cast from " + conv.Operand.Type().String() + " to " + conv.Type().String() + " truncates the fractional part",
				}, "use Math.Round or Math.Floor to make the rounding explicit")
			}
		})
		return nil
	},
}

// numericKind returns the kind of the numeric conversion underlying
// nullable conversions.
func numericKind(c conversions.Conversion) conversions.Kind {
	if (c.Kind == conversions.ImplicitNullable || c.Kind == conversions.ExplicitNullable) && len(c.Nested) > 0 {
		return c.Nested[0].Kind
	}
	return c.Kind
}

func specialOf(t symbols.Type) symbols.SpecialType {
	if u := symbols.NullableUnderlying(t); u != nil {
		t = u
	}
	return symbols.SpecialOf(t)
}

func losesPrecision(from, to symbols.SpecialType) bool {
	switch to {
	case symbols.SpecialSingle:
		switch from {
		case symbols.SpecialInt32, symbols.SpecialUInt32, symbols.SpecialInt64, symbols.SpecialUInt64:
			return true
		}
	case symbols.SpecialDouble:
		return from == symbols.SpecialInt64 || from == symbols.SpecialUInt64
	}
	return false
}

func truncates(from, to symbols.SpecialType) bool {
	fractional := from.IsFloating() || from == symbols.SpecialDecimal
	return fractional && to.IsIntegral()
}
