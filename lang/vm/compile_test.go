package vm_test

import (
	"context"
	"testing"

	"github.com/smile-lang/smile/internal/diag"
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/stdlib"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
	"github.com/smile-lang/smile/lang/vm"
	"github.com/stretchr/testify/require"
)

// compileAndRun takes a syntax tree (built directly out of value.Value, not
// parsed from source text) through compiler.Compile and then vm.Thread.Run,
// exercising the same entry point EvalInScope uses. Unlike the rest of this
// package's tests, which hand-assemble bytecode with compiler.Asm, these
// drive the compiler itself end to end.
func compileAndRun(t *testing.T, reg *symbol.Table, tree value.Value) (value.Value, error) {
	t.Helper()
	diags := diag.NewList(false)
	tables := &compiler.CompiledTables{}
	compiler.Compile(tables, reg, tree, diags)
	require.False(t, diags.HasErrors(), "%v", diags.Items())

	m := vm.NewMachine(reg)
	th := m.NewThread(context.Background())
	res, err := th.Run(tables)
	if err != nil {
		return nil, err
	}
	require.Equal(t, vm.EvalReturn, res.Kind)
	return res.Value, nil
}

func L(elems ...value.Value) value.Value { return value.NewList(elems) }

func TestCompileLiteral(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	v, err := compileAndRun(t, reg, value.Int64(1))
	require.NoError(t, err)
	require.Equal(t, value.Int64(1), v)
}

// (-3 + 2*5) * 7 == 49
func TestCompileArithmeticPrecedence(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	tree := L(value.Symbol(symbol.SymStar),
		L(value.Symbol(symbol.SymPlus),
			value.Int64(-3),
			L(value.Symbol(symbol.SymStar), value.Int64(2), value.Int64(5))),
		value.Int64(7))
	v, err := compileAndRun(t, reg, tree)
	require.NoError(t, err)
	require.Equal(t, value.Int64(49), v)
}

// Counts how many times 12345678 can be right-shifted by 1 before it
// reaches zero, exercising $while's pre/cond/post reduction: n and the
// counter are seeded by $set before the loop (pre is null), cond keeps
// going while n is non-zero, post shifts n and bumps the counter, and the
// loop's own value (unused here) is the last value post produced.
func TestCompileWhileCountsShifts(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	n := value.Symbol(reg.GetSymbol("n"))
	log := value.Symbol(reg.GetSymbol("log"))

	tree := L(value.Symbol(symbol.SymProgn),
		L(value.Symbol(symbol.SymSet), n, value.Int64(12345678)),
		L(value.Symbol(symbol.SymSet), log, value.Int64(0)),
		L(value.Symbol(symbol.SymWhile),
			value.Nil,
			n,
			L(value.Symbol(symbol.SymProgn),
				L(value.Symbol(symbol.SymSet), n, L(value.Symbol(symbol.SymShr), n, value.Int64(1))),
				L(value.Symbol(symbol.SymSet), log, L(value.Symbol(symbol.SymPlus), log, value.Int64(1))))),
		log)

	v, err := compileAndRun(t, reg, tree)
	require.NoError(t, err)
	require.Equal(t, value.Int64(24), v)
}

// (fact 10) == 3628800, exercising a recursive $fn bound via $set: fact
// must resolve its own name as a free variable captured from the toplevel
// local $set declared it into, before the $fn body that references it has
// finished compiling.
func TestCompileRecursiveFactorial(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	n := value.Symbol(reg.GetSymbol("n"))
	fact := value.Symbol(reg.GetSymbol("fact"))

	fn := L(value.Symbol(symbol.SymFn),
		L(n),
		L(value.Symbol(symbol.SymIf),
			L(value.Symbol(symbol.SymLe), n, value.Int64(1)),
			value.Int64(1),
			L(value.Symbol(symbol.SymStar), n, L(fact, L(value.Symbol(symbol.SymMinus), n, value.Int64(1))))))

	tree := L(value.Symbol(symbol.SymProgn),
		L(value.Symbol(symbol.SymSet), fact, fn),
		L(fact, value.Int64(10)))

	v, err := compileAndRun(t, reg, tree)
	require.NoError(t, err)
	require.Equal(t, value.Int64(3628800), v)
}

// (quote (1..10)).map(|x| x*x), exercising $dot's primitive-method path
// down into lang/stdlib's list "map", which itself calls back into a
// user-supplied closure per element.
func TestCompileMapSquares(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	stdlib.Register(reg)
	x := value.Symbol(reg.GetSymbol("x"))

	nums := make([]value.Value, 10)
	for i := range nums {
		nums[i] = value.Int64(i + 1)
	}

	tree := L(value.Symbol(symbol.SymDot),
		L(value.Symbol(symbol.SymQuote), value.NewList(nums)),
		value.Symbol(symbol.SymMap),
		L(value.Symbol(symbol.SymFn), L(x), L(value.Symbol(symbol.SymStar), x, x)))

	v, err := compileAndRun(t, reg, tree)
	require.NoError(t, err)

	want := make([]value.Value, 10)
	for i := range want {
		want[i] = value.Int64((i + 1) * (i + 1))
	}
	got, ok := value.ListToSlice(v)
	require.True(t, ok)
	require.Equal(t, want, got)
}

// A $till declaring two named escape targets; a $when reaches the
// innermost one once a loop counter hits 4, and the second target's $when
// is never reached, confirming findTill's membership search picks the
// right one among several live labels.
func TestCompileTillWhenMultiLabel(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	found := value.Symbol(reg.GetSymbol("found"))
	notFound := value.Symbol(reg.GetSymbol("not-found"))
	i := value.Symbol(reg.GetSymbol("i"))

	body := L(value.Symbol(symbol.SymProgn),
		L(value.Symbol(symbol.SymSet), i, value.Int64(0)),
		L(value.Symbol(symbol.SymWhile),
			value.Nil,
			L(value.Symbol(symbol.SymLt), i, value.Int64(10)),
			L(value.Symbol(symbol.SymProgn),
				L(value.Symbol(symbol.SymIf),
					L(value.Symbol(symbol.SymEq), i, value.Int64(4)),
					L(value.Symbol(symbol.SymWhen), found, i)),
				L(value.Symbol(symbol.SymSet), i, L(value.Symbol(symbol.SymPlus), i, value.Int64(1))))),
		L(value.Symbol(symbol.SymWhen), notFound, value.Int64(-1)))

	tree := L(value.Symbol(symbol.SymTill), L(found, notFound), body)

	v, err := compileAndRun(t, reg, tree)
	require.NoError(t, err)
	require.Equal(t, value.Int64(4), v)
}

// ((fn (a (b . (+ a 1))) (+ a b)) 10) == 21: b's default reads the
// already-bound a out of the new frame, the same way a nested $fn literal
// captures an enclosing local.
func TestCompileFnDefaultReferencesEarlierParam(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	a := value.Symbol(reg.GetSymbol("a"))
	b := value.Symbol(reg.GetSymbol("b"))

	params := L(a, &value.Pair{First: b, Second: L(value.Symbol(symbol.SymPlus), a, value.Int64(1))})
	fn := L(value.Symbol(symbol.SymFn), params, L(value.Symbol(symbol.SymPlus), a, b))
	tree := L(fn, value.Int64(10))

	v, err := compileAndRun(t, reg, tree)
	require.NoError(t, err)
	require.Equal(t, value.Int64(21), v)
}
