package value

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	_ Value = Bool(false)
	_ Value = List(nil)
	_ Value = Map(nil)
	_ Value = Null{}
	_ Value = Number(0)
	_ Value = String("")
)

// Value is a formula runtime value. The set of implementations is closed.
type Value interface {
	isValue()
}

type (
	Bool   bool
	List   []Value
	Map    map[string]Value
	Null   struct{}
	Number float64
	String string
)

func (v Bool) isValue()   {}
func (v List) isValue()   {}
func (v Map) isValue()    {}
func (v Null) isValue()   {}
func (v Number) isValue() {}
func (v String) isValue() {}

type Type string

const (
	TypeBool   Type = "bool"
	TypeList   Type = "list"
	TypeMap    Type = "map"
	TypeNull   Type = "null"
	TypeNumber Type = "number"
	TypeString Type = "string"
)

func TypeOf(v Value) Type {
	switch v.(type) {
	case Bool:
		return TypeBool

	case List:
		return TypeList

	case Map:
		return TypeMap

	case Number:
		return TypeNumber

	case String:
		return TypeString

	default:
		return TypeNull
	}
}

// Normalize maps a nil interface to Null so callers never see a bare nil.
func Normalize(v Value) Value {
	if v == nil {
		return Null{}
	}

	return v
}

func Truthy(v Value) bool {
	switch v := v.(type) {
	case Bool:
		return bool(v)

	case Number:
		return v != 0 && !math.IsNaN(float64(v))

	case String:
		return v != ""

	case List:
		return len(v) > 0

	case Map:
		return len(v) > 0

	default:
		return false
	}
}

// ToNumber converts v using loose numeric coercion. The boolean is false when
// v has no numeric interpretation.
func ToNumber(v Value) (float64, bool) {
	switch v := v.(type) {
	case Number:
		return float64(v), true

	case Bool:
		if v {
			return 1, true
		}

		return 0, true

	case Null:
		return 0, true

	case String:
		trimmed := strings.TrimSpace(string(v))
		if trimmed == "" {
			return 0, true
		}

		number, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}

		return number, true

	default:
		return 0, false
	}
}

func ToString(v Value) string {
	switch v := v.(type) {
	case String:
		return string(v)

	case Number:
		return FormatNumber(float64(v))

	case Bool:
		if v {
			return "true"
		}

		return "false"

	case List:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, ToString(item))
		}

		return strings.Join(parts, ",")

	case Map:
		data, err := Encode(v)
		if err != nil {
			return "{}"
		}

		return string(data)

	default:
		return "null"
	}
}

func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"

	case math.IsInf(f, 1):
		return "Infinity"

	case math.IsInf(f, -1):
		return "-Infinity"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StrictEqual reports whether a and b have the same variant and the same
// contents. Lists and maps compare element-wise.
func StrictEqual(a, b Value) bool {
	a, b = Normalize(a), Normalize(b)

	switch a := a.(type) {
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b

	case Number:
		b, ok := b.(Number)
		return ok && a == b

	case String:
		b, ok := b.(String)
		return ok && a == b

	case Null:
		_, ok := b.(Null)
		return ok

	case List:
		b, ok := b.(List)
		if !ok || len(a) != len(b) {
			return false
		}

		for i := range a {
			if !StrictEqual(a[i], b[i]) {
				return false
			}
		}

		return true

	case Map:
		b, ok := b.(Map)
		if !ok || len(a) != len(b) {
			return false
		}

		for key, left := range a {
			right, ok := b[key]
			if !ok || !StrictEqual(left, right) {
				return false
			}
		}

		return true

	default:
		return false
	}
}

// LooseEqual compares with scalar coercion: null only equals null, and a
// number, string or bool pair is compared numerically. A string that is not
// numeric never equals a number or bool.
func LooseEqual(a, b Value) bool {
	a, b = Normalize(a), Normalize(b)

	if TypeOf(a) == TypeOf(b) {
		return StrictEqual(a, b)
	}

	if !isScalar(a) || !isScalar(b) {
		return false
	}

	if TypeOf(a) == TypeNull || TypeOf(b) == TypeNull {
		return false
	}

	left, ok := ToNumber(a)
	if !ok {
		return false
	}

	right, ok := ToNumber(b)
	if !ok {
		return false
	}

	return left == right
}

// Compare orders a and b for the relational operators. Two strings compare
// lexicographically, anything else numerically. The boolean is false when
// the pair is not comparable.
func Compare(a, b Value) (int, bool) {
	a, b = Normalize(a), Normalize(b)

	if left, ok := a.(String); ok {
		if right, ok := b.(String); ok {
			return strings.Compare(string(left), string(right)), true
		}
	}

	if !isScalar(a) || !isScalar(b) {
		return 0, false
	}

	left, ok := ToNumber(a)
	if !ok {
		return 0, false
	}

	right, ok := ToNumber(b)
	if !ok {
		return 0, false
	}

	if math.IsNaN(left) || math.IsNaN(right) {
		return 0, false
	}

	switch {
	case left < right:
		return -1, true

	case left > right:
		return 1, true

	default:
		return 0, true
	}
}

// Copy returns a deep copy so that containers are never shared between
// variables.
func Copy(v Value) Value {
	switch v := v.(type) {
	case List:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = Copy(item)
		}

		return out

	case Map:
		out := make(Map, len(v))
		for key, item := range v {
			out[key] = Copy(item)
		}

		return out

	default:
		return Normalize(v)
	}
}

// Keys returns the keys of m in sorted order.
func Keys(m Map) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func isScalar(v Value) bool {
	switch v.(type) {
	case Bool, Number, String, Null:
		return true

	default:
		return false
	}
}
