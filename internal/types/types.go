package types

import "fmt"

// TyIdx identifies a type inside a Table. Two TyIdx are the same type iff
// they are equal; names are never compared past type checking.
type TyIdx uint32

// Kind enumerates the resolved type shapes.
type Kind uint8

const (
	KindIncomplete Kind = iota
	KindPrimitive
	KindStruct
	KindUnion
	KindEnum
	KindTagged
	KindAlias
	KindPun
	KindArray
	KindRef
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindIncomplete:
		return "incomplete"
	case KindPrimitive:
		return "primitive"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindTagged:
		return "tagged"
	case KindAlias:
		return "alias"
	case KindPun:
		return "pun"
	case KindArray:
		return "array"
	case KindRef:
		return "ref"
	case KindEmpty:
		return "empty"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Nominal reports whether types of this kind get one identity per
// declaration rather than per shape.
func (k Kind) Nominal() bool {
	switch k {
	case KindStruct, KindUnion, KindEnum, KindTagged, KindAlias, KindPun:
		return true
	}
	return false
}

// Primitive enumerates the builtin scalar types.
type Primitive uint8

const (
	I8 Primitive = iota
	I16
	I32
	I64
	I128
	I256
	U8
	U16
	U32
	U64
	U128
	U256
	F16
	F32
	F64
	F128
	Bool
	Ptr
)

var primitiveNames = [...]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128", I256: "i256",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128", U256: "u256",
	F16: "f16", F32: "f32", F64: "f64", F128: "f128",
	Bool: "bool", Ptr: "ptr",
}

// Primitives lists every primitive in declaration order.
func Primitives() []Primitive {
	out := make([]Primitive, len(primitiveNames))
	for i := range primitiveNames {
		out[i] = Primitive(i)
	}
	return out
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("Primitive(%d)", p)
}

// ParsePrimitive maps a builtin name to its Primitive.
func ParsePrimitive(name string) (Primitive, bool) {
	for i, n := range primitiveNames {
		if n == name {
			return Primitive(i), true
		}
	}
	return 0, false
}
