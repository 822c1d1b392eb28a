package value

import "strconv"

// String is Smile's immutable byte-sequence string kind. It is distinct from
// Symbol even when their textual content matches.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) String() string { return strconv.Quote(string(s)) }

// Text returns the raw, unquoted byte content of s.
func (s String) Text() string { return string(s) }
