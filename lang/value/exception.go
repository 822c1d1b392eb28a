package value

import "github.com/smile-lang/smile/lang/symbol"

// Exception is the language-visible error value /§7 describes:
// {kind: Symbol, message: String, stack_trace: List}. It also implements the
// Go error interface so the VM's internal plumbing can carry it the same way
// as any other Go error, only converting to the bytecode-visible Object
// shape when it needs to be pushed onto the operand stack.
type Exception struct {
	ExcKind    symbol.Symbol
	Message    String
	StackTrace Value // always Nil: no code in this module fills it in
}

func (e *Exception) Kind() Kind { return KindObject }
func (e *Exception) String() string {
	return "#<exception " + string(e.Message) + ">"
}
func (e *Exception) Error() string { return string(e.Message) }

// NewException builds an Exception with the given kind/message and no
// stack trace. The VM raises it as is: it does not walk the dynamic call
// chain, and StackTrace stays Nil.
func NewException(kind symbol.Symbol, message string) *Exception {
	return &Exception{ExcKind: kind, Message: String(message), StackTrace: Nil}
}
