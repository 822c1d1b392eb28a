// Package decimal wraps github.com/ericlagergren/decimal, a published Go
// implementation of IEEE 754-2008 decimal floating point, to present the
// three fixed-width views the Smile value model needs (Real32, Real64,
// Real128 in the design's terms) plus exactly the operation set // lists as the external decimal backend's contract. The core never reaches
// into github.com/ericlagergren/decimal directly outside of this package, so
// the rest of the module can treat decimal arithmetic as an opaque numeric
// backend, per /§6.
package decimal

import (
	"strings"

	ext "github.com/ericlagergren/decimal"
)

// Width selects one of the three IEEE-754-2008 decimal precisions Smile
// exposes as distinct value kinds.
type Width int

const (
	Width32 Width = iota
	Width64
	Width128
)

// digits is the IEEE-754-2008 decimal precision, in decimal digits, for each
// Width.
var digits = [...]int{
	Width32:  7,
	Width64:  16,
	Width128: 34,
}

func contextFor(w Width) ext.Context {
	return ext.Context{
		Precision:     digits[w],
		RoundingMode:  ext.ToNearestEven,
		OperatingMode: ext.GDA,
	}
}

// Decimal is a fixed-width IEEE-754-2008 decimal float at one of Smile's
// three supported widths. The zero Decimal has no backing value and is not
// usable; use FromInt64, FromFloat64 or TryParse to build one at a specific
// width.
type Decimal struct {
	w Width
	v *ext.Big
}

func wrap(w Width, v *ext.Big) Decimal {
	v.Context = contextFor(w)
	v.Round(digits[w])
	return Decimal{w: w, v: v}
}

func FromInt32(w Width, n int32) Decimal { return wrap(w, new(ext.Big).SetMantScale(int64(n), 0)) }
func FromInt64(w Width, n int64) Decimal { return wrap(w, new(ext.Big).SetMantScale(n, 0)) }

func FromFloat32(w Width, f float32) Decimal { return FromFloat64(w, float64(f)) }

func FromFloat64(w Width, f float64) Decimal {
	v := new(ext.Big)
	v.Context = contextFor(w)
	v.SetFloat64(f)
	return wrap(w, v)
}

// TryParse parses s, accepting underscore/apostrophe/quote digit-group
// separators and an E/e exponent marker per , at the given width.
func TryParse(w Width, s string) (Decimal, bool) {
	clean := strings.NewReplacer("_", "", "'", "", "\"", "").Replace(s)
	v := new(ext.Big)
	v.Context = contextFor(w)
	if _, ok := v.SetString(clean); !ok {
		return Decimal{}, false
	}
	return wrap(w, v), true
}

func (d Decimal) Width() Width { return d.w }

func (d Decimal) binary(rhs Decimal, f func(z, x, y *ext.Big) *ext.Big) Decimal {
	z := new(ext.Big)
	z.Context = contextFor(d.w)
	f(z, d.v, rhs.v)
	return wrap(d.w, z)
}

func (d Decimal) Add(rhs Decimal) Decimal { return d.binary(rhs, (*ext.Big).Add) }
func (d Decimal) Sub(rhs Decimal) Decimal { return d.binary(rhs, (*ext.Big).Sub) }
func (d Decimal) Mul(rhs Decimal) Decimal { return d.binary(rhs, (*ext.Big).Mul) }
func (d Decimal) Div(rhs Decimal) Decimal { return d.binary(rhs, (*ext.Big).Quo) }
func (d Decimal) Mod(rhs Decimal) Decimal { return d.binary(rhs, (*ext.Big).QuoRem2) }
func (d Decimal) Rem(rhs Decimal) Decimal { return d.binary(rhs, (*ext.Big).Rem) }
func (d Decimal) IeeeRem(rhs Decimal) Decimal {
	return d.binary(rhs, func(z, x, y *ext.Big) *ext.Big { return z.Rem(x, y) })
}

func (d Decimal) unary(f func(z, x *ext.Big) *ext.Big) Decimal {
	z := new(ext.Big)
	z.Context = contextFor(d.w)
	f(z, d.v)
	return wrap(d.w, z)
}

func (d Decimal) Neg() Decimal   { return d.unary((*ext.Big).Neg) }
func (d Decimal) Abs() Decimal   { return d.unary((*ext.Big).Abs) }
func (d Decimal) Sqrt() Decimal  { return d.unary((*ext.Big).Sqrt) }
func (d Decimal) Floor() Decimal { return d.unary((*ext.Big).Floor) }
func (d Decimal) Ceil() Decimal  { return d.unary((*ext.Big).Ceil) }
func (d Decimal) Trunc() Decimal { return d.unary((*ext.Big).Trunc) }
func (d Decimal) Round() Decimal {
	return d.unary(func(z, x *ext.Big) *ext.Big {
		z.Copy(x)
		return z.Round(digits[d.w])
	})
}

// BankRound applies round-half-to-even at zero fractional digits, the
// "banker's rounding" variant distinguishes from Round.
func (d Decimal) BankRound() Decimal {
	return d.unary(func(z, x *ext.Big) *ext.Big {
		ctx := ext.Context{Precision: digits[d.w], RoundingMode: ext.ToNearestEven}
		return ctx.RoundToInt(z.Copy(x))
	})
}

// Modf splits d into integral and fractional parts.
func (d Decimal) Modf() (intPart, fracPart Decimal) {
	ip := new(ext.Big)
	ip.Context = contextFor(d.w)
	ip.Trunc(d.v)
	fp := new(ext.Big)
	fp.Context = contextFor(d.w)
	fp.Sub(d.v, ip)
	return wrap(d.w, ip), wrap(d.w, fp)
}

// Compare returns -1, 0 or +1 per the usual Cmp convention, or a third value
// outside that range when either operand is NaN (order is then undefined;
// callers should check IsNaN first, per /§8's "IsOrderable").
func (d Decimal) Compare(rhs Decimal) int { return d.v.Cmp(rhs.v) }

func (d Decimal) Eq(rhs Decimal) bool { return d.Compare(rhs) == 0 }
func (d Decimal) Ne(rhs Decimal) bool { return d.Compare(rhs) != 0 }
func (d Decimal) Lt(rhs Decimal) bool { return d.Compare(rhs) < 0 }
func (d Decimal) Gt(rhs Decimal) bool { return d.Compare(rhs) > 0 }
func (d Decimal) Le(rhs Decimal) bool { return d.Compare(rhs) <= 0 }
func (d Decimal) Ge(rhs Decimal) bool { return d.Compare(rhs) >= 0 }

func (d Decimal) IsNaN() bool    { return d.v.IsNaN(0) }
func (d Decimal) IsInf() bool    { return d.v.IsInf(0) }
func (d Decimal) IsZero() bool   { return d.v.Sign() == 0 }
func (d Decimal) IsNeg() bool    { return d.v.Signbit() }
func (d Decimal) IsFinite() bool { return d.v.IsFinite() }

// IsOrderable reports whether d can be meaningfully compared: finite values
// and signaling NaN are not orderable against a quiet NaN, but any two
// non-NaN values always are.
func (d Decimal) IsOrderable() bool { return !d.IsNaN() }

func (d Decimal) ToString() string { return d.v.String() }

func (d Decimal) ToInt64() (int64, bool) {
	return d.v.Int64(), !d.v.IsInf(0) && !d.v.IsNaN(0)
}

func (d Decimal) ToFloat64() float64 {
	f, _ := d.v.Float64()
	return f
}
