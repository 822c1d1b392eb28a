package value

import "github.com/smile-lang/smile/lang/decimal"

// Real32, Real64 and Real128 are the three IEEE-754-2008 decimal-float
// widths /§6 requires, each a thin Value wrapper around the
// opaque decimal backend in lang/decimal.
type (
	Real32  struct{ d decimal.Decimal }
	Real64  struct{ d decimal.Decimal }
	Real128 struct{ d decimal.Decimal }
)

func NewReal32(d decimal.Decimal) Real32   { return Real32{d} }
func NewReal64(d decimal.Decimal) Real64   { return Real64{d} }
func NewReal128(d decimal.Decimal) Real128 { return Real128{d} }

func (r Real32) Decimal() decimal.Decimal  { return r.d }
func (r Real64) Decimal() decimal.Decimal  { return r.d }
func (r Real128) Decimal() decimal.Decimal { return r.d }

func (r Real32) Kind() Kind     { return KindReal32 }
func (r Real32) String() string { return r.d.ToString() }
func (r Real32) IsZeroValue() bool {
	return r.d.IsZero() && !r.d.IsNaN()
}

func (r Real64) Kind() Kind     { return KindReal64 }
func (r Real64) String() string { return r.d.ToString() }
func (r Real64) IsZeroValue() bool {
	return r.d.IsZero() && !r.d.IsNaN()
}

func (r Real128) Kind() Kind     { return KindReal128 }
func (r Real128) String() string { return r.d.ToString() }
func (r Real128) IsZeroValue() bool {
	return r.d.IsZero() && !r.d.IsNaN()
}

// AsDecimal extracts the underlying decimal.Decimal from any of the three
// decimal Kinds. It panics if v is not a decimal value, always a VM dispatch
// bug (callers must check Kind().IsDecimal() first).
func AsDecimal(v Value) decimal.Decimal {
	switch x := v.(type) {
	case Real32:
		return x.d
	case Real64:
		return x.d
	case Real128:
		return x.d
	}
	panic("value: AsDecimal called on a non-decimal Value")
}

// FromDecimal rewraps d at the requested decimal Kind.
func FromDecimal(k Kind, d decimal.Decimal) Value {
	switch k {
	case KindReal32:
		return Real32{d}
	case KindReal64:
		return Real64{d}
	case KindReal128:
		return Real128{d}
	}
	panic("value: FromDecimal called with a non-decimal Kind")
}

// WidthOf maps a decimal Kind to the decimal package's Width selector.
func WidthOf(k Kind) decimal.Width {
	switch k {
	case KindReal32:
		return decimal.Width32
	case KindReal128:
		return decimal.Width128
	default:
		return decimal.Width64
	}
}
