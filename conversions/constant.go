// Copyright © 2024 The ELPS authors

package conversions

import (
	"go/constant"
	"math"

	"fortio.org/safecast"

	"github.com/luthersystems/sembind/symbols"
)

// FitsIntegral reports whether the integer constant v is representable in
// the integral special type st.
func FitsIntegral(v constant.Value, st symbols.SpecialType) bool {
	if v == nil || v.Kind() != constant.Int {
		return false
	}
	if i, exact := constant.Int64Val(v); exact {
		var err error
		switch st {
		case symbols.SpecialSByte:
			_, err = safecast.Convert[int8](i)
		case symbols.SpecialByte:
			_, err = safecast.Convert[uint8](i)
		case symbols.SpecialInt16:
			_, err = safecast.Convert[int16](i)
		case symbols.SpecialUInt16, symbols.SpecialChar:
			_, err = safecast.Convert[uint16](i)
		case symbols.SpecialInt32:
			_, err = safecast.Convert[int32](i)
		case symbols.SpecialUInt32:
			_, err = safecast.Convert[uint32](i)
		case symbols.SpecialInt64:
		case symbols.SpecialUInt64:
			_, err = safecast.Convert[uint64](i)
		default:
			return false
		}
		return err == nil
	}
	_, exact := constant.Uint64Val(v)
	return exact && st == symbols.SpecialUInt64
}

// ConvertConstant converts the constant v to the value representation of
// the special type st, as a cast would. ok is false when the value is out
// of range for an integral target or cannot be represented at all.
func ConvertConstant(v constant.Value, st symbols.SpecialType) (constant.Value, bool) {
	if v == nil || v.Kind() == constant.Unknown {
		return nil, false
	}
	switch {
	case st.IsIntegral():
		iv := v
		if v.Kind() == constant.Float {
			f, _ := constant.Float64Val(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, false
			}
			iv = constant.MakeFloat64(math.Trunc(f))
		}
		iv = constant.ToInt(iv)
		if iv.Kind() != constant.Int || !FitsIntegral(iv, st) {
			return nil, false
		}
		return iv, true
	case st == symbols.SpecialSingle:
		fv := constant.ToFloat(v)
		if fv.Kind() != constant.Float {
			return nil, false
		}
		f, _ := constant.Float32Val(fv)
		if math.IsInf(float64(f), 0) {
			return nil, false
		}
		return constant.MakeFloat64(float64(f)), true
	case st == symbols.SpecialDouble, st == symbols.SpecialDecimal:
		fv := constant.ToFloat(v)
		if fv.Kind() != constant.Float {
			return nil, false
		}
		return fv, true
	case st == symbols.SpecialBool:
		return v, v.Kind() == constant.Bool
	case st == symbols.SpecialString:
		return v, v.Kind() == constant.String
	}
	return nil, false
}

// IsZero reports whether v is a numeric zero.
func IsZero(v constant.Value) bool {
	if v == nil {
		return false
	}
	switch v.Kind() {
	case constant.Int, constant.Float:
		return constant.Sign(v) == 0
	}
	return false
}
