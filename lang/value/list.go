package value

import "strings"

// List is a cons cell: First is the head element, Rest is the tail (either
// another *List or Nil). The empty list is represented by Nil itself, not by
// a *List, per "empty list and null are the same value"
// invariant.
type List struct {
	First Value
	Rest  Value
}

func (l *List) Kind() Kind { return KindList }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	var cur Value = l
	for {
		switch c := cur.(type) {
		case *List:
			if !first {
				sb.WriteByte(' ')
			}
			first = false
			sb.WriteString(c.First.String())
			cur = c.Rest
		case Null:
			sb.WriteByte(']')
			return sb.String()
		default:
			// improper list: dotted tail
			sb.WriteString(" . ")
			sb.WriteString(c.String())
			sb.WriteByte(']')
			return sb.String()
		}
	}
}

// NewList builds a proper list from elems, returning Nil for an empty slice.
func NewList(elems []Value) Value {
	var result Value = Nil
	for i := len(elems) - 1; i >= 0; i-- {
		result = &List{First: elems[i], Rest: result}
	}
	return result
}

// ListToSlice flattens a proper list (or Nil) into a Go slice. It returns
// ok=false if v is not Nil and not a proper (non-dotted) list.
func ListToSlice(v Value) (elems []Value, ok bool) {
	cur := v
	for {
		switch c := cur.(type) {
		case Null:
			return elems, true
		case *List:
			elems = append(elems, c.First)
			cur = c.Rest
		default:
			return nil, false
		}
	}
}

// ListLen returns the number of elements in the proper list v, or -1 if v is
// not Nil and not a proper list.
func ListLen(v Value) int {
	n := 0
	cur := v
	for {
		switch c := cur.(type) {
		case Null:
			return n
		case *List:
			n++
			cur = c.Rest
		default:
			return -1
		}
	}
}

// Pair holds two named values, distinct from a two-element List.
type Pair struct {
	First  Value
	Second Value
}

func (p *Pair) Kind() Kind     { return KindPair }
func (p *Pair) String() string { return "(" + p.First.String() + " . " + p.Second.String() + ")" }
