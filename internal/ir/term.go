package ir

import (
	"fmt"
	"hash/fnv"
	"math/big"

	"github.com/hassan/olivine/internal/diag"
	"github.com/hassan/olivine/internal/types"
)

// Tag identifies the shape of a Term. The zero Tag is never produced by a
// constructor; it exists only as the zero value of an uninitialized Term.
type Tag int

const (
	tagInvalid Tag = iota

	TagNull
	TagInt
	TagFloat
	TagVar
	TagLabel
	TagGlobalRef

	TagAdd
	TagSub
	TagMul
	TagUDiv
	TagSDiv
	TagURem
	TagSRem
	TagAnd
	TagOr
	TagXor
	TagShl
	TagLShr
	TagAShr

	TagFAdd
	TagFSub
	TagFMul
	TagFDiv
	TagFRem
	TagFNeg

	TagEq
	TagULt
	TagULe
	TagSLt
	TagSLe
	TagNot

	TagFEq
	TagFLt
	TagFLe

	TagCast
	TagSCast

	TagLoad
	TagElementPtr
	TagFieldPtr

	TagArray
	TagTuple
	TagVec

	TagCall

	// TagTypeWitness carries a type with no value, used as the "element
	// type" operand of Alloca/ElementPtr/FieldPtr.
	TagTypeWitness
)

var tagNames = map[Tag]string{
	TagNull: "Null", TagInt: "Int", TagFloat: "Float", TagVar: "Var",
	TagLabel: "Label", TagGlobalRef: "GlobalRef",
	TagAdd: "Add", TagSub: "Sub", TagMul: "Mul", TagUDiv: "UDiv", TagSDiv: "SDiv",
	TagURem: "URem", TagSRem: "SRem", TagAnd: "And", TagOr: "Or", TagXor: "Xor",
	TagShl: "Shl", TagLShr: "LShr", TagAShr: "AShr",
	TagFAdd: "FAdd", TagFSub: "FSub", TagFMul: "FMul", TagFDiv: "FDiv", TagFRem: "FRem", TagFNeg: "FNeg",
	TagEq: "Eq", TagULt: "ULt", TagULe: "ULe", TagSLt: "SLt", TagSLe: "SLe", TagNot: "Not",
	TagFEq: "FEq", TagFLt: "FLt", TagFLe: "FLe",
	TagCast: "Cast", TagSCast: "SCast",
	TagLoad: "Load", TagElementPtr: "ElementPtr", TagFieldPtr: "FieldPtr",
	TagArray: "Array", TagTuple: "Tuple", TagVec: "Vec",
	TagCall: "Call", TagTypeWitness: "TypeWitness",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Invalid"
}

// intBinOps are the fixed-width binary arithmetic/bitwise tags: same-type
// Int operands, same-type Int result.
var intBinOps = map[Tag]bool{
	TagAdd: true, TagSub: true, TagMul: true, TagUDiv: true, TagSDiv: true,
	TagURem: true, TagSRem: true, TagAnd: true, TagOr: true, TagXor: true,
	TagShl: true, TagLShr: true, TagAShr: true,
}

// floatBinOps are the floating binary arithmetic tags: same-type Float or
// Double operands, same-type result.
var floatBinOps = map[Tag]bool{
	TagFAdd: true, TagFSub: true, TagFMul: true, TagFDiv: true, TagFRem: true,
}

// intCmpOps compare two same-type Int operands and produce Int(1).
var intCmpOps = map[Tag]bool{
	TagEq: true, TagULt: true, TagULe: true, TagSLt: true, TagSLe: true,
}

// floatCmpOps compare two same-type Float/Double operands and produce Int(1).
var floatCmpOps = map[Tag]bool{
	TagFEq: true, TagFLt: true, TagFLe: true,
}

// Term is a typed, immutable value or expression node. Terms compare and
// hash by content, not by identity: two independently constructed terms
// with equal content are interchangeable.
type Term struct {
	tag      Tag
	typ      *types.Type
	hasRef   bool
	ref      Ref
	intVal   *big.Int
	floatStr string
	children []*Term
}

// Tag reports t's tag.
func (t *Term) Tag() Tag { return t.tag }

// Type reports t's static type.
func (t *Term) Type() *types.Type { return t.typ }

// Ref returns t's Ref and whether one is present (Var, Label, GlobalRef).
func (t *Term) Ref() (Ref, bool) { return t.ref, t.hasRef }

// IntValue returns the arbitrary-precision payload of an Int constant.
// Panics on any other tag.
func (t *Term) IntValue() *big.Int {
	if t.tag != TagInt {
		panic("ir: IntValue on non-Int term")
	}
	return t.intVal
}

// FloatText returns the preserved textual form of a Float constant. Panics
// on any other tag.
func (t *Term) FloatText() string {
	if t.tag != TagFloat {
		panic("ir: FloatText on non-Float term")
	}
	return t.floatStr
}

// NumChildren reports the number of operand/child terms.
func (t *Term) NumChildren() int { return len(t.children) }

// Child returns the i'th child term.
func (t *Term) Child(i int) *Term { return t.children[i] }

// Children returns the child terms in order. Callers must not mutate the
// returned slice.
func (t *Term) Children() []*Term { return t.children }

// Equal reports structural equality: same tag, type, ref/payload, and
// pointwise-equal children.
func (t *Term) Equal(o *Term) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.tag != o.tag || t.typ != o.typ || t.hasRef != o.hasRef {
		return false
	}
	if t.hasRef && !t.ref.Equal(o.ref) {
		return false
	}
	if t.tag == TagInt {
		if (t.intVal == nil) != (o.intVal == nil) {
			return false
		}
		if t.intVal != nil && t.intVal.Cmp(o.intVal) != 0 {
			return false
		}
	}
	if t.tag == TagFloat && t.floatStr != o.floatStr {
		return false
	}
	if len(t.children) != len(o.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// Hash returns a content-based hash combining tag, type, ref, payload, and
// child hashes, suitable for maps/sets of Term.
func (t *Term) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%p|", t.tag, t.typ)
	if t.hasRef {
		fmt.Fprintf(h, "%s|", t.ref.key())
	}
	if t.tag == TagInt && t.intVal != nil {
		fmt.Fprintf(h, "%s|", t.intVal.String())
	}
	if t.tag == TagFloat {
		fmt.Fprintf(h, "%s|", t.floatStr)
	}
	for _, c := range t.children {
		fmt.Fprintf(h, "(%d)|", c.Hash())
	}
	return h.Sum64()
}

// Key returns a canonical string uniquely determined by t's content,
// suitable as a Go map key where pointer identity of *Term is not reliable
// (terms built by different constructors are not interned).
func (t *Term) Key() string {
	var b []byte
	b = appendTermKey(b, t)
	return string(b)
}

func appendTermKey(b []byte, t *Term) []byte {
	b = append(b, byte(t.tag))
	b = append(b, []byte(fmt.Sprintf("|%p|", t.typ))...)
	if t.hasRef {
		b = append(b, []byte(t.ref.key())...)
	}
	if t.tag == TagInt && t.intVal != nil {
		b = append(b, []byte(t.intVal.String())...)
	}
	if t.tag == TagFloat {
		b = append(b, []byte(t.floatStr)...)
	}
	b = append(b, '[')
	for _, c := range t.children {
		b = appendTermKey(b, c)
		b = append(b, ',')
	}
	b = append(b, ']')
	return b
}

func typeError(format string, args ...interface{}) error {
	return diag.New(diag.TypeErr, format, args...)
}

// TypeWitness builds a value-less term that carries typ, used where the
// grammar needs to name a type as an operand (Alloca's element type,
// ElementPtr/FieldPtr's indexed-into type).
func TypeWitness(typ *types.Type) *Term {
	return &Term{tag: TagTypeWitness, typ: typ}
}

// NullTerm builds the Ptr-typed null constant.
func NullTerm() *Term {
	return &Term{tag: TagNull, typ: types.PtrType()}
}

// IntTerm builds an Int constant of the given declared type and
// arbitrary-precision value. The value is stored as given; truncation to the
// declared width is the consumer's responsibility (see package bits).
func IntTerm(typ *types.Type, v *big.Int) (*Term, error) {
	if typ.Kind() != types.Int {
		return nil, typeError("Int constant requires an Int type, got %s", typ)
	}
	return &Term{tag: TagInt, typ: typ, intVal: new(big.Int).Set(v)}, nil
}

// FloatTerm builds a Float/Double constant preserving its source text.
func FloatTerm(typ *types.Type, text string) (*Term, error) {
	if typ.Kind() != types.Float && typ.Kind() != types.Double {
		return nil, typeError("Float constant requires a Float or Double type, got %s", typ)
	}
	return &Term{tag: TagFloat, typ: typ, floatStr: text}, nil
}

// VarTerm builds a local-variable reference term.
func VarTerm(ref Ref, typ *types.Type) *Term {
	return &Term{tag: TagVar, typ: typ, ref: ref, hasRef: true}
}

// LabelTerm builds a block-label reference term; its type is Ptr by
// convention.
func LabelTerm(ref Ref) *Term {
	return &Term{tag: TagLabel, typ: types.PtrType(), ref: ref, hasRef: true}
}

// GlobalRefTerm builds a module-level name reference term of the given type.
func GlobalRefTerm(ref Ref, typ *types.Type) *Term {
	return &Term{tag: TagGlobalRef, typ: typ, ref: ref, hasRef: true}
}

// BinOp builds an integer or floating arithmetic/bitwise term. Both operands
// must share the same Int (for int ops) or Float/Double (for float ops) type;
// the result has that same type.
func BinOp(tag Tag, a, b *Term) (*Term, error) {
	switch {
	case intBinOps[tag]:
		if a.typ.Kind() != types.Int {
			return nil, typeError("%s requires Int operands, got %s", tag, a.typ)
		}
		if a.typ != b.typ {
			return nil, typeError("%s operand types differ: %s vs %s", tag, a.typ, b.typ)
		}
		return &Term{tag: tag, typ: a.typ, children: []*Term{a, b}}, nil
	case floatBinOps[tag]:
		if !types.IsFloat(a.typ) {
			return nil, typeError("%s requires Float/Double operands, got %s", tag, a.typ)
		}
		if a.typ != b.typ {
			return nil, typeError("%s operand types differ: %s vs %s", tag, a.typ, b.typ)
		}
		return &Term{tag: tag, typ: a.typ, children: []*Term{a, b}}, nil
	default:
		return nil, typeError("%s is not a binary arithmetic tag", tag)
	}
}

// FNeg builds a unary floating negation term.
func FNeg(a *Term) (*Term, error) {
	if !types.IsFloat(a.typ) {
		return nil, typeError("FNeg requires a Float/Double operand, got %s", a.typ)
	}
	return &Term{tag: TagFNeg, typ: a.typ, children: []*Term{a}}, nil
}

// Cmp builds an integer or floating comparison term, whose result is
// always Int(1).
func Cmp(tag Tag, a, b *Term) (*Term, error) {
	switch {
	case intCmpOps[tag]:
		if a.typ.Kind() != types.Int {
			return nil, typeError("%s requires Int operands, got %s", tag, a.typ)
		}
		if a.typ != b.typ {
			return nil, typeError("%s operand types differ: %s vs %s", tag, a.typ, b.typ)
		}
	case floatCmpOps[tag]:
		if !types.IsFloat(a.typ) {
			return nil, typeError("%s requires Float/Double operands, got %s", tag, a.typ)
		}
		if a.typ != b.typ {
			return nil, typeError("%s operand types differ: %s vs %s", tag, a.typ, b.typ)
		}
	default:
		return nil, typeError("%s is not a comparison tag", tag)
	}
	return &Term{tag: tag, typ: types.IntType(1), children: []*Term{a, b}}, nil
}

// Not builds the boolean negation term. Its operand and result are Int(1).
func Not(a *Term) (*Term, error) {
	if a.typ != types.IntType(1) {
		return nil, typeError("Not requires an Int(1) operand, got %s", a.typ)
	}
	return &Term{tag: TagNot, typ: types.IntType(1), children: []*Term{a}}, nil
}

// Cast builds a bit-preserving/unsigned conversion term to resultType.
func Cast(a *Term, resultType *types.Type) (*Term, error) {
	return &Term{tag: TagCast, typ: resultType, children: []*Term{a}}, nil
}

// SCast builds a signed conversion term to resultType.
func SCast(a *Term, resultType *types.Type) (*Term, error) {
	return &Term{tag: TagSCast, typ: resultType, children: []*Term{a}}, nil
}

// Load builds a term that reads through a Ptr operand, yielding resultType.
func Load(ptr *Term, resultType *types.Type) (*Term, error) {
	if ptr.typ.Kind() != types.Ptr {
		return nil, typeError("Load requires a Ptr operand, got %s", ptr.typ)
	}
	return &Term{tag: TagLoad, typ: resultType, children: []*Term{ptr}}, nil
}

// elementPtrLike builds ElementPtr/FieldPtr: elemWitness carries the
// pointee/field type being indexed (its own type is not otherwise used),
// base must be Ptr, index must be Int. Result is always Ptr.
func elementPtrLike(tag Tag, elemWitness, base, index *Term) (*Term, error) {
	if base.typ.Kind() != types.Ptr {
		return nil, typeError("%s requires a Ptr base operand, got %s", tag, base.typ)
	}
	if index.typ.Kind() != types.Int {
		return nil, typeError("%s requires an Int index operand, got %s", tag, index.typ)
	}
	return &Term{tag: tag, typ: types.PtrType(), children: []*Term{elemWitness, base, index}}, nil
}

// ElementPtr builds an array/vector-style pointer-arithmetic term.
func ElementPtr(elemWitness, base, index *Term) (*Term, error) {
	return elementPtrLike(TagElementPtr, elemWitness, base, index)
}

// FieldPtr builds a struct-field pointer-arithmetic term.
func FieldPtr(elemWitness, base, index *Term) (*Term, error) {
	return elementPtrLike(TagFieldPtr, elemWitness, base, index)
}

// ArrayTerm builds an Array(n, T) aggregate; every child must have type T.
func ArrayTerm(elem *types.Type, children []*Term) (*Term, error) {
	for i, c := range children {
		if c.typ != elem {
			return nil, typeError("Array element %d has type %s, want %s", i, c.typ, elem)
		}
	}
	return &Term{tag: TagArray, typ: types.ArrayType(len(children), elem), children: append([]*Term(nil), children...)}, nil
}

// TupleTerm builds a Struct-typed aggregate; children must match the
// struct's field types pointwise.
func TupleTerm(structType *types.Type, children []*Term) (*Term, error) {
	if structType.Kind() != types.Struct {
		return nil, typeError("Tuple requires a Struct type, got %s", structType)
	}
	fields := structType.Fields()
	if len(fields) != len(children) {
		return nil, typeError("Tuple has %d children, struct type has %d fields", len(children), len(fields))
	}
	for i, c := range children {
		if c.typ != fields[i] {
			return nil, typeError("Tuple field %d has type %s, want %s", i, c.typ, fields[i])
		}
	}
	return &Term{tag: TagTuple, typ: structType, children: append([]*Term(nil), children...)}, nil
}

// VecTerm builds a Vec(n, T) aggregate; every child must have type T.
func VecTerm(elem *types.Type, children []*Term) (*Term, error) {
	for i, c := range children {
		if c.typ != elem {
			return nil, typeError("Vec element %d has type %s, want %s", i, c.typ, elem)
		}
	}
	return &Term{tag: TagVec, typ: types.VecType(len(children), elem), children: append([]*Term(nil), children...)}, nil
}

// CallTerm builds a call term: fn must have Fn type, args must match its
// parameter types pointwise, and the result type is the function's return
// type.
func CallTerm(fn *Term, args []*Term) (*Term, error) {
	if fn.typ.Kind() != types.Fn {
		return nil, typeError("Call requires a Fn-typed callee, got %s", fn.typ)
	}
	params := fn.typ.Params()
	if len(params) != len(args) {
		return nil, typeError("Call has %d arguments, function type has %d parameters", len(args), len(params))
	}
	for i, a := range args {
		if a.typ != params[i] {
			return nil, typeError("Call argument %d has type %s, want %s", i, a.typ, params[i])
		}
	}
	children := make([]*Term, 0, 1+len(args))
	children = append(children, fn)
	children = append(children, args...)
	return &Term{tag: TagCall, typ: fn.typ.Ret(), children: children}, nil
}

// Rebuild reconstructs a term of the same tag/type/ref/payload with a new
// child list, used by the substitution transform. It bypasses the smart
// constructors' validation since the caller is responsible for substituting
// type-preserving replacements.
func (t *Term) Rebuild(children []*Term) *Term {
	return &Term{tag: t.tag, typ: t.typ, hasRef: t.hasRef, ref: t.ref, intVal: t.intVal, floatStr: t.floatStr, children: children}
}
