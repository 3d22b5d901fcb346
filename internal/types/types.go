// Package types implements the interned structural type system of the IR.
//
// Every Type is canonicalized through a process-wide pool keyed by its
// structural shape, so two structurally equal types are always the same
// *Type value: equality and hashing are pointer identity after interning.
package types

import (
	"fmt"
	"strings"
	"sync"
)

// Kind distinguishes the structural shape of a Type.
type Kind int

const (
	Void Kind = iota
	Int
	Float
	Double
	Ptr
	Array
	Vec
	Struct
	Fn
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	case Ptr:
		return "ptr"
	case Array:
		return "array"
	case Vec:
		return "vec"
	case Struct:
		return "struct"
	case Fn:
		return "fn"
	default:
		return "invalid"
	}
}

// Type is an interned, immutable structural type. The zero value is not a
// valid Type; construct one with the package-level constructors.
type Type struct {
	kind   Kind
	width  int     // Int: bit width
	length int     // Array, Vec: element count
	elem   *Type   // Array, Vec: element type
	fields []*Type // Struct: field types, in order
	ret    *Type   // Fn: return type
	params []*Type // Fn: parameter types, in order
}

// Kind reports the structural kind of t.
func (t *Type) Kind() Kind { return t.kind }

// Width returns the bit width of an Int type. Panics on any other kind.
func (t *Type) Width() int {
	if t.kind != Int {
		panic(fmt.Sprintf("types: Width on non-Int kind %s", t.kind))
	}
	return t.width
}

// Len returns the element count of an Array or Vec type.
func (t *Type) Len() int {
	if t.kind != Array && t.kind != Vec {
		panic(fmt.Sprintf("types: Len on kind %s", t.kind))
	}
	return t.length
}

// Elem returns the element type of an Array or Vec type.
func (t *Type) Elem() *Type {
	if t.kind != Array && t.kind != Vec {
		panic(fmt.Sprintf("types: Elem on kind %s", t.kind))
	}
	return t.elem
}

// Fields returns the field types of a Struct type, in declaration order.
func (t *Type) Fields() []*Type {
	if t.kind != Struct {
		panic(fmt.Sprintf("types: Fields on kind %s", t.kind))
	}
	return t.fields
}

// Ret returns the return type of a Fn type.
func (t *Type) Ret() *Type {
	if t.kind != Fn {
		panic(fmt.Sprintf("types: Ret on kind %s", t.kind))
	}
	return t.ret
}

// Params returns the parameter types of a Fn type, in declaration order.
func (t *Type) Params() []*Type {
	if t.kind != Fn {
		panic(fmt.Sprintf("types: Params on kind %s", t.kind))
	}
	return t.params
}

// IsInt reports whether t is an Int type of any width.
func IsInt(t *Type) bool { return t.kind == Int }

// IsFloat reports whether t is Float or Double.
func IsFloat(t *Type) bool { return t.kind == Float || t.kind == Double }

// Size is the number of structural components: scalars are 0, Array/Vec are
// 1, Struct is its field count, Fn is 1 + its parameter count.
func (t *Type) Size() int {
	switch t.kind {
	case Array, Vec:
		return 1
	case Struct:
		return len(t.fields)
	case Fn:
		return 1 + len(t.params)
	default:
		return 0
	}
}

// Equal reports whether t and other are the same interned type. Since every
// Type is interned, this is pointer equality.
func (t *Type) Equal(other *Type) bool { return t == other }

// String renders t using LLVM-style spellings.
func (t *Type) String() string {
	switch t.kind {
	case Void:
		return "void"
	case Int:
		return fmt.Sprintf("i%d", t.width)
	case Float:
		return "float"
	case Double:
		return "double"
	case Ptr:
		return "ptr"
	case Array:
		return fmt.Sprintf("[%d x %s]", t.length, t.elem.String())
	case Vec:
		return fmt.Sprintf("<%d x %s>", t.length, t.elem.String())
	case Struct:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = f.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Fn:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("%s (%s)", t.ret.String(), strings.Join(parts, ", "))
	default:
		return "<invalid type>"
	}
}

// pool is the process-wide, append-only interning pool.
var (
	poolMu sync.Mutex
	pool   = map[string]*Type{}
)

func intern(key string, build func() *Type) *Type {
	poolMu.Lock()
	defer poolMu.Unlock()
	if existing, ok := pool[key]; ok {
		return existing
	}
	t := build()
	pool[key] = t
	return t
}

// ResetPool clears the interning pool. Tests that rely on pointer identity
// across otherwise-independent cases call this between runs; production
// callers never need it.
func ResetPool() {
	poolMu.Lock()
	defer poolMu.Unlock()
	pool = map[string]*Type{}
}

// VoidType returns the interned void type.
func VoidType() *Type {
	return intern("void", func() *Type { return &Type{kind: Void} })
}

// IntType returns the interned n-bit integer type. Panics if n < 1.
func IntType(n int) *Type {
	if n < 1 {
		panic("types: invalid integer bit width")
	}
	key := fmt.Sprintf("i%d", n)
	return intern(key, func() *Type { return &Type{kind: Int, width: n} })
}

// FloatType returns the interned 32-bit float type.
func FloatType() *Type {
	return intern("float", func() *Type { return &Type{kind: Float} })
}

// DoubleType returns the interned 64-bit float type.
func DoubleType() *Type {
	return intern("double", func() *Type { return &Type{kind: Double} })
}

// PtrType returns the interned opaque pointer type.
func PtrType() *Type {
	return intern("ptr", func() *Type { return &Type{kind: Ptr} })
}

// ArrayType returns the interned [n x elem] array type. Panics if elem is void.
func ArrayType(n int, elem *Type) *Type {
	if elem.kind == Void {
		panic("types: array element type cannot be void")
	}
	key := fmt.Sprintf("[%d x %p]", n, elem)
	return intern(key, func() *Type { return &Type{kind: Array, length: n, elem: elem} })
}

// VecType returns the interned <n x elem> vector type. Panics if elem is void.
func VecType(n int, elem *Type) *Type {
	if elem.kind == Void {
		panic("types: vector element type cannot be void")
	}
	key := fmt.Sprintf("<%d x %p>", n, elem)
	return intern(key, func() *Type { return &Type{kind: Vec, length: n, elem: elem} })
}

// StructType returns the interned struct type with the given field types in
// order. Panics if any field is void.
func StructType(fields []*Type) *Type {
	var b strings.Builder
	b.WriteString("{")
	for _, f := range fields {
		if f.kind == Void {
			panic("types: struct field type cannot be void")
		}
		fmt.Fprintf(&b, "%p,", f)
	}
	b.WriteString("}")
	frozen := append([]*Type(nil), fields...)
	return intern(b.String(), func() *Type { return &Type{kind: Struct, fields: frozen} })
}

// FnType returns the interned function type with the given return and
// parameter types. Panics if any parameter is void.
func FnType(ret *Type, params []*Type) *Type {
	var b strings.Builder
	fmt.Fprintf(&b, "fn(%p;", ret)
	for _, p := range params {
		if p.kind == Void {
			panic("types: function parameter type cannot be void")
		}
		fmt.Fprintf(&b, "%p,", p)
	}
	b.WriteString(")")
	frozen := append([]*Type(nil), params...)
	return intern(b.String(), func() *Type { return &Type{kind: Fn, ret: ret, params: frozen} })
}
