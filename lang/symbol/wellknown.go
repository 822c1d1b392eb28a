package symbol

// wellKnownNames lists the names that must be interned, in this fixed order,
// at table-creation time, so that their ids are stable across runs. This
// supports the compiler's fast-path dispatch tables: the
// compiler can compare against a Symbol constant instead of re-interning a
// string literal on every special-form or operator-method dispatch.
//
// Order matters: appending to the end is safe, reordering or removing is not,
// since the constants below are derived from each name's position.
var wellKnownNames = []string{
	// binary operators
	"+", "-", "*", "/", "<", ">", "<=", ">=", "==", "!=", "<<<", ">>>",

	// special forms
	"$progn", "$set", "$if", "$while", "$till", "$fn", "$quote", "$dot", "$index",

	// till/when sugar
	"till", "when",

	// primitive method names
	"parse", "string", "each", "map", "where", "any?", "all?", "first",
	"contains?", "index-of", "count", "empty?", "null?",

	// error kinds raised by the VM
	"divide-by-zero", "unknown-method", "arity", "type-mismatch",
	"name-not-defined", "stack-overflow",
}

// Well-known, process-stable symbols. These are interned into every *Table
// returned by NewWellKnownTable, always at the same ids, because
// wellKnownNames is iterated in a fixed order starting from a fresh table.
var (
	SymPlus  Symbol
	SymMinus Symbol
	SymStar  Symbol
	SymSlash Symbol
	SymLt    Symbol
	SymGt    Symbol
	SymLe    Symbol
	SymGe    Symbol
	SymEq    Symbol
	SymNe    Symbol
	SymShl   Symbol
	SymShr   Symbol

	SymProgn Symbol
	SymSet   Symbol
	SymIf    Symbol
	SymWhile Symbol
	SymTill  Symbol
	SymFn    Symbol
	SymQuote Symbol
	SymDot   Symbol
	SymIndex Symbol

	SymTillLower Symbol
	SymWhen      Symbol

	SymParse    Symbol
	SymString   Symbol
	SymEach     Symbol
	SymMap      Symbol
	SymWhere    Symbol
	SymAnyQ     Symbol
	SymAllQ     Symbol
	SymFirst    Symbol
	SymContains Symbol
	SymIndexOf  Symbol
	SymCount    Symbol
	SymEmptyQ   Symbol
	SymNullQ    Symbol

	SymDivideByZero  Symbol
	SymUnknownMethod Symbol
	SymArity         Symbol
	SymTypeMismatch  Symbol
	SymNameNotFound  Symbol
	SymStackOverflow Symbol
)

var wellKnownTargets = []*Symbol{
	&SymPlus, &SymMinus, &SymStar, &SymSlash, &SymLt, &SymGt, &SymLe, &SymGe,
	&SymEq, &SymNe, &SymShl, &SymShr,
	&SymProgn, &SymSet, &SymIf, &SymWhile, &SymTill, &SymFn, &SymQuote, &SymDot, &SymIndex,
	&SymTillLower, &SymWhen,
	&SymParse, &SymString, &SymEach, &SymMap, &SymWhere, &SymAnyQ, &SymAllQ,
	&SymFirst, &SymContains, &SymIndexOf, &SymCount, &SymEmptyQ, &SymNullQ,
	&SymDivideByZero, &SymUnknownMethod, &SymArity, &SymTypeMismatch,
	&SymNameNotFound, &SymStackOverflow,
}

// NewWellKnownTable returns a fresh Table with every well-known symbol
// preloaded, so the package-level Sym* constants above resolve correctly for
// this table's lifetime. Callers that need more than one independent symbol
// table (e.g. running two Smile programs in the same process, per // / §9's explicit-inputs recommendation) can each call this and will get
// compatible ids for well-known names, as long as only one such table exists
// at a time setting the package-level vars; for true multi-table isolation,
// use Table.GetSymbol directly instead of the Sym* package vars.
func NewWellKnownTable() *Table {
	t := NewTable()
	for i, name := range wellKnownNames {
		*wellKnownTargets[i] = t.GetSymbol(name)
	}
	return t
}

func init() {
	NewWellKnownTable()
}
