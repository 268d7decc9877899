package jpath

import (
	"fmt"

	omap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the concrete shape a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Object is an insertion-ordered string-keyed map of Values. Iteration order
// always matches the order keys were first seen, which is what lets deep
// descent and key-selection produce reproducible, document-order results.
type Object = omap.OrderedMap[string, *Value]

// NewObject returns an empty, insertion-ordered Object.
func NewObject() *Object {
	return omap.New[string, *Value]()
}

// Value is the tagged union every jpath tree node is built from: a JSON/YAML
// document is nothing more than a Value whose Kind is Array or Object,
// recursively holding more Values.
type Value struct {
	kind Kind

	b bool
	i int64
	f float64
	s string
	a []*Value
	o *Object
}

// Null returns a null Value (a new allocation on every call).
func Null() *Value { return &Value{kind: KindNull} }

// NewBool wraps a bool.
func NewBool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// NewInt wraps an int64.
func NewInt(i int64) *Value { return &Value{kind: KindInt, i: i} }

// NewFloat wraps a float64.
func NewFloat(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// NewString wraps a string.
func NewString(s string) *Value { return &Value{kind: KindString, s: s} }

// NewArray wraps a slice of Values. The slice is used directly, not copied.
func NewArray(items []*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: KindArray, a: items}
}

// NewObjectValue wraps an *Object.
func NewObjectValue(o *Object) *Value {
	if o == nil {
		o = NewObject()
	}
	return &Value{kind: KindObject, o: o}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool    { return v.Kind() == KindNull }
func (v *Value) IsBool() bool    { return v.Kind() == KindBool }
func (v *Value) IsInt() bool     { return v.Kind() == KindInt }
func (v *Value) IsFloat() bool   { return v.Kind() == KindFloat }
func (v *Value) IsNumber() bool  { return v.Kind() == KindInt || v.Kind() == KindFloat }
func (v *Value) IsString() bool  { return v.Kind() == KindString }
func (v *Value) IsArray() bool   { return v.Kind() == KindArray }
func (v *Value) IsObject() bool  { return v.Kind() == KindObject }
func (v *Value) IsContainer() bool { return v.IsArray() || v.IsObject() }

// Bool returns the wrapped bool. Calling it on a non-bool Value panics, the
// same contract every other typed accessor below follows: callers that
// reached a Value via the AST already know its shape, and coercions go
// through AsFloat/Raw/Truthy (or the toint/toflt/tostr functions) instead.
func (v *Value) Bool() bool {
	v.mustBe(KindBool)
	return v.b
}

func (v *Value) Int() int64 {
	v.mustBe(KindInt)
	return v.i
}

func (v *Value) Float() float64 {
	v.mustBe(KindFloat)
	return v.f
}

func (v *Value) String() string {
	switch v.Kind() {
	case KindString:
		return v.s
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}

// Raw unwraps a string Value to its bare contents; non-strings fall back to
// String(). Kept distinct from String() because some functions (startswith,
// instr, ...) only make sense against the literal text, never its %g-ish
// rendering.
func (v *Value) Raw() string {
	if v.Kind() == KindString {
		return v.s
	}
	return v.String()
}

func (v *Value) Array() []*Value {
	v.mustBe(KindArray)
	return v.a
}

func (v *Value) ObjectValue() *Object {
	v.mustBe(KindObject)
	return v.o
}

func (v *Value) mustBe(k Kind) {
	if v.Kind() != k {
		panic(fmt.Sprintf("jpath: value is %s, not %s", v.Kind(), k))
	}
}

// Truthy implements the boolean-coercion rule used by filters and AND/OR:
// null and false are falsey, zero numbers and empty
// strings/arrays/objects are falsey, everything else is truthy.
func (v *Value) Truthy() bool {
	if v == nil {
		return false
	}
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.a) > 0
	case KindObject:
		return v.o.Len() > 0
	default:
		return false
	}
}

// AsFloat returns the numeric value as a float64 regardless of whether it
// was stored as KindInt or KindFloat. It panics on non-numeric Values.
func (v *Value) AsFloat() float64 {
	switch v.Kind() {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		panic(fmt.Sprintf("jpath: value is %s, not numeric", v.Kind()))
	}
}

// Equal implements scalar equality (=) between two Values: numbers compare
// across Int/Float by numeric value, everything else compares by Kind and
// content. Containers are never equal to anything, including each other --
// the grammar's comparison operators are scalar-only.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == nil && other == nil
	}
	if v.IsNumber() && other.IsNumber() {
		return v.AsFloat() == other.AsFloat()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	default:
		return false
	}
}

// DeepEqual compares two Values structurally, including Array and Object
// contents in order. Used by tests and by functions like inval/initems that
// need to compare whole values rather than scalars.
func (v *Value) DeepEqual(other *Value) bool {
	if v == nil || other == nil {
		return v == nil && other == nil
	}
	if v.IsNumber() && other.IsNumber() {
		return v.AsFloat() == other.AsFloat()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].DeepEqual(other.a[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.o.Len() != other.o.Len() {
			return false
		}
		for pair := v.o.Oldest(); pair != nil; pair = pair.Next() {
			ov, ok := other.o.Get(pair.Key)
			if !ok || !pair.Value.DeepEqual(ov) {
				return false
			}
		}
		return true
	default:
		return v.Equal(other)
	}
}
