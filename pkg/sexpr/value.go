// Package sexpr implements the extension language used by update payloads:
// a small symbolic-expression language with lexical scoping, a fixed set of
// primitives, and a per-run evaluation step budget.
package sexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindUndefined Kind = iota
	KindInt
	KindFloat
	KindBool
	KindStr
	KindSymbol
	KindList
	KindPrimitive
	KindLambda
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindStr:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindList:
		return "list"
	case KindPrimitive:
		return "primitive"
	case KindLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// Value is the tagged-union runtime representation. Exactly one variant
// field is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	// Str holds string-literal content for KindStr and the symbol name for
	// KindSymbol.
	Str    string
	List   []Value
	Prim   *Primitive
	Lambda *Lambda
}

// Primitive is a built-in function seeded into the global environment.
type Primitive struct {
	Name string
	Fn   func(in *Interp, args []Value) (Value, error)
}

// Lambda is a user-defined function closing over its defining environment.
type Lambda struct {
	Params []string
	Body   Value
	Env    *Env
}

// Constructors.

func Undefined() Value         { return Value{Kind: KindUndefined} }
func Int(i int64) Value        { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value    { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value        { return Value{Kind: KindBool, Bool: b} }
func Str(s string) Value       { return Value{Kind: KindStr, Str: s} }
func Symbol(name string) Value { return Value{Kind: KindSymbol, Str: name} }
func ListOf(vs ...Value) Value { return Value{Kind: KindList, List: vs} }
func EmptyList() Value         { return Value{Kind: KindList} }

// Truthy reports whether the value counts as true in a conditional.
// Only #f and undefined are false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindUndefined:
		return false
	default:
		return true
	}
}

// IsNumber reports whether the value is an int or a float.
func (v Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// AsFloat returns the numeric value widened to float64.
// Callers must check IsNumber first.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// Equal reports structural equality between two values. Numbers compare
// numerically across int/float; functions compare by identity.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		return v.AsFloat() == other.AsFloat()
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindUndefined:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindStr, KindSymbol:
		return v.Str == other.Str
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case KindPrimitive:
		return v.Prim == other.Prim
	case KindLambda:
		return v.Lambda == other.Lambda
	default:
		return false
	}
}

// String renders the value in source form.
func (v Value) String() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "#t"
		}
		return "#f"
	case KindStr:
		return strconv.Quote(v.Str)
	case KindSymbol:
		return v.Str
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case KindPrimitive:
		return fmt.Sprintf("#<primitive %s>", v.Prim.Name)
	case KindLambda:
		return "#<lambda>"
	default:
		return "#<invalid>"
	}
}
