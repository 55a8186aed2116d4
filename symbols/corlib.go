// Copyright © 2024 The ELPS authors

package symbols

import (
	"go/constant"
	"math"
)

// declareCore declares a type in the core module.
func (t *Table) declareCore(ns, name string, kind TypeKind, typeParams ...string) *NamedType {
	nt := t.DeclareType(ns, name, kind, typeParams...)
	t.TypeSymbol(nt).Module = CoreModule
	return nt
}

func (t *Table) addCoreMember(owner *NamedType, sym *Symbol) *Symbol {
	sym.Module = CoreModule
	return t.AddMember(owner, sym)
}

func (t *Table) addSpecialTypes() {
	special := func(st SpecialType, kind TypeKind, base *NamedType) *NamedType {
		nt := t.declareCore("System", specialNames[st].metadata, kind)
		nt.Special = st
		nt.Base = base
		t.special[st] = nt
		return nt
	}
	object := special(SpecialObject, TypeClass, nil)
	valueType := special(SpecialValueType, TypeClass, object)
	valueType.Abstract = true
	enum := special(SpecialEnum, TypeClass, valueType)
	enum.Abstract = true
	delegate := special(SpecialDelegate, TypeClass, object)
	delegate.Abstract = true
	array := special(SpecialArray, TypeClass, object)
	array.Abstract = true
	str := special(SpecialString, TypeClass, object)
	for st := SpecialBool; st <= SpecialDecimal; st++ {
		special(st, TypeStruct, valueType)
	}
	special(SpecialVoid, TypeStruct, valueType)

	integer := t.special[SpecialInt32]
	boolean := t.special[SpecialBool]

	toString := NewMethod("ToString", str)
	toString.Virtual = true
	t.addCoreMember(object, toString)
	equals := NewMethod("Equals", boolean, NewParam("obj", object))
	equals.Virtual = true
	t.addCoreMember(object, equals)
	hash := NewMethod("GetHashCode", integer)
	hash.Virtual = true
	t.addCoreMember(object, hash)

	t.addCoreMember(array, NewProperty("Length", integer))

	t.addCoreMember(str, NewProperty("Length", integer))
	t.addCoreMember(str, NewIndexer(t.special[SpecialChar], NewParam("index", integer)))
	t.addCoreMember(str, NewMethod("Substring", str, NewParam("startIndex", integer), NewParam("length", integer)))
	empty := NewField("Empty", str)
	empty.Static = true
	t.addCoreMember(str, empty)
	t.addCoreMember(str, NewStaticMethod("IsNullOrEmpty", boolean, NewParam("value", str)))
	formatArgs := NewParam("args", &ArrayType{Elem: object, Rank: 1})
	formatArgs.IsParams = true
	t.addCoreMember(str, NewStaticMethod("Format", str, NewParam("format", str), formatArgs))
	t.addCoreMember(str, NewStaticMethod("Concat", str, NewParam("str0", str), NewParam("str1", str)))

	limits := []struct {
		st       SpecialType
		min, max constant.Value
	}{
		{SpecialInt32, constant.MakeInt64(math.MinInt32), constant.MakeInt64(math.MaxInt32)},
		{SpecialInt64, constant.MakeInt64(math.MinInt64), constant.MakeInt64(math.MaxInt64)},
		{SpecialByte, constant.MakeInt64(0), constant.MakeInt64(math.MaxUint8)},
	}
	for _, l := range limits {
		nt := t.special[l.st]
		minField := NewField("MinValue", nt)
		minField.Static = true
		minField.Constant = l.min
		t.addCoreMember(nt, minField)
		maxField := NewField("MaxValue", nt)
		maxField.Static = true
		maxField.Constant = l.max
		t.addCoreMember(nt, maxField)
	}
	t.addCoreMember(integer, NewStaticMethod("Parse", integer, NewParam("s", str)))
}

func (t *Table) addWellKnownTypes() {
	object := t.special[SpecialObject]
	valueType := t.special[SpecialValueType]
	integer := t.special[SpecialInt32]
	boolean := t.special[SpecialBool]
	str := t.special[SpecialString]
	void := t.special[SpecialVoid]

	const collections = "System.Collections.Generic"

	ienum := t.declareCore(collections, "IEnumerable", TypeInterface, "T")
	t.wellKnown[WellKnownIEnumerable] = ienum

	rolist := t.declareCore(collections, "IReadOnlyList", TypeInterface, "T")
	rolist.Interfaces = []*NamedType{Construct(ienum, []Type{rolist.TypeParams[0]})}
	t.addCoreMember(rolist, NewProperty("Count", integer))
	t.addCoreMember(rolist, NewIndexer(rolist.TypeParams[0], NewParam("index", integer)))
	t.wellKnown[WellKnownIReadOnlyList] = rolist

	list := t.declareCore(collections, "List", TypeClass, "T")
	list.Base = object
	list.Interfaces = []*NamedType{Construct(rolist, []Type{list.TypeParams[0]})}
	t.addCoreMember(list, NewConstructor())
	t.addCoreMember(list, NewMethod("Add", void, NewParam("item", list.TypeParams[0])))
	t.addCoreMember(list, NewProperty("Count", integer))
	t.addCoreMember(list, NewIndexer(list.TypeParams[0], NewParam("index", integer)))
	t.wellKnown[WellKnownList] = list

	for _, wk := range []WellKnownType{WellKnownSpan, WellKnownReadOnlySpan} {
		name := "Span"
		if wk == WellKnownReadOnlySpan {
			name = "ReadOnlySpan"
		}
		span := t.declareCore("System", name, TypeStruct, "T")
		span.Base = valueType
		self := Construct(span, []Type{span.TypeParams[0]})
		t.addCoreMember(span, NewProperty("Length", integer))
		t.addCoreMember(span, NewIndexer(span.TypeParams[0], NewParam("index", integer)))
		t.addCoreMember(span, NewMethod("Slice", self, NewParam("start", integer), NewParam("length", integer)))
		t.wellKnown[wk] = span
	}

	index := t.declareCore("System", "Index", TypeStruct)
	index.Base = valueType
	fromEnd := NewParam("fromEnd", boolean)
	fromEnd.HasDefault = true
	fromEnd.Default = constant.MakeBool(false)
	t.addCoreMember(index, NewConstructor(NewParam("value", integer), fromEnd))
	t.addCoreMember(index, NewProperty("Value", integer))
	t.addCoreMember(index, NewProperty("IsFromEnd", boolean))
	indexFromInt := NewOperator(ImplicitName, index, NewParam("value", integer))
	t.addCoreMember(index, indexFromInt)
	t.wellKnown[WellKnownIndex] = index

	rng := t.declareCore("System", "Range", TypeStruct)
	rng.Base = valueType
	t.addCoreMember(rng, NewConstructor(NewParam("start", index), NewParam("end", index)))
	t.addCoreMember(rng, NewProperty("Start", index))
	t.addCoreMember(rng, NewProperty("End", index))
	t.wellKnown[WellKnownRange] = rng

	formattable := t.declareCore("System", "IFormattable", TypeInterface)
	t.wellKnown[WellKnownIFormattable] = formattable
	fstr := t.declareCore("System", "FormattableString", TypeClass)
	fstr.Base = object
	fstr.Abstract = true
	fstr.Interfaces = []*NamedType{formattable}
	t.addCoreMember(fstr, NewProperty("Format", str))
	t.wellKnown[WellKnownFormattableString] = fstr

	// Func<..., TResult> and Action<...> for up to two parameters.
	for n := 0; n <= 2; n++ {
		tps := make([]string, 0, n+1)
		for i := 1; i <= n; i++ {
			if n == 1 {
				tps = append(tps, "T")
			} else {
				tps = append(tps, "T"+string(rune('0'+i)))
			}
		}
		action := t.declareCore("System", "Action", TypeDelegate, tps...)
		action.Base = t.special[SpecialDelegate]
		t.addCoreMember(action, delegateInvoke(void, action.TypeParams))

		fn := t.declareCore("System", "Func", TypeDelegate, append(tps, "TResult")...)
		fn.Base = t.special[SpecialDelegate]
		t.addCoreMember(fn, delegateInvoke(fn.TypeParams[n], fn.TypeParams[:n]))
	}
}

func delegateInvoke(ret Type, params []*TypeParameter) *Symbol {
	m := NewMethod(InvokeName, ret)
	m.MethodKind = MethodDelegateInvoke
	for i, tp := range params {
		m.Params = append(m.Params, NewParam("arg"+string(rune('1'+i)), tp))
	}
	return m
}
