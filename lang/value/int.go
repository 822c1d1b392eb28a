package value

import "strconv"

// Byte, Int16, Int32 and Int64 are the four tagged integer widths // requires, ordered Byte ⊂ Int16 ⊂ Int32 ⊂ Int64 in the promotion lattice of
// .
type (
	Byte  uint8
	Int16 int16
	Int32 int32
	Int64 int64
)

func (b Byte) Kind() Kind      { return KindByte }
func (b Byte) String() string  { return strconv.FormatUint(uint64(b), 10) }
func (i Int16) Kind() Kind     { return KindInt16 }
func (i Int16) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int32) Kind() Kind     { return KindInt32 }
func (i Int32) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int64) Kind() Kind     { return KindInt64 }
func (i Int64) String() string { return strconv.FormatInt(int64(i), 10) }

// AsInt64 widens any of the four tagged integer kinds to an int64, the
// lattice's integer ceiling. It panics if v is not one of those four kinds,
// which is always a VM dispatch bug (the caller must check Kind().IsInteger()
// first).
func AsInt64(v Value) int64 {
	switch x := v.(type) {
	case Byte:
		return int64(x)
	case Int16:
		return int64(x)
	case Int32:
		return int64(x)
	case Int64:
		return int64(x)
	}
	panic("value: AsInt64 called on a non-integer Value")
}

// FromInt64 narrows n back to the integer Kind requested, truncating (wrapping)
// silently, matching plain fixed-width integer semantics.
func FromInt64(k Kind, n int64) Value {
	switch k {
	case KindByte:
		return Byte(n)
	case KindInt16:
		return Int16(n)
	case KindInt32:
		return Int32(n)
	case KindInt64:
		return Int64(n)
	}
	panic("value: FromInt64 called with a non-integer Kind")
}
