package vm_test

import (
	"context"
	"testing"

	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
	"github.com/smile-lang/smile/lang/vm"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	reg := symbol.NewWellKnownTable()
	tables, err := compiler.Asm([]byte(src), reg)
	require.NoError(t, err)
	m := vm.NewMachine(reg)
	th := m.NewThread(context.Background())
	res, err := th.Run(tables)
	if err != nil {
		return nil, err
	}
	require.Equal(t, vm.EvalReturn, res.Kind)
	return res.Value, nil
}

func TestArithmetic(t *testing.T) {
	v, err := run(t, `
program:

function: top 2 0
	constants:
		int 3
		int 4
	code:
		ld64 0
		ld64 1
		binary 1
		ret 0
`)
	require.NoError(t, err)
	require.Equal(t, value.Int64(7), v)
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	v, err := run(t, `
program:

function: top 3 0
	constants:
		int 10
		int 5
		func adder
	locals:
		x
	code:
		ld64 0
		stloc0 0
		ldobj 2
		ld64 1
		call 1
		ret 0
function: adder 2 1
	locals:
		y
	freevars:
		x local 0
	code:
		ldlocn 0
		ldloc0 0
		binary 1
		ret 0
`)
	require.NoError(t, err)
	require.Equal(t, value.Int64(15), v)
}

func TestArityErrorOnTooFewArgs(t *testing.T) {
	_, err := run(t, `
program:

function: top 2 0
	constants:
		func adder
	code:
		ldobj 0
		call 0
		ret 0
function: adder 1 2
	locals:
		a
		b
	code:
		ldloc0 0
		ret 0
`)
	require.Error(t, err)
	var arityErr *value.ArityError
	require.ErrorAs(t, err, &arityErr)
	require.Equal(t, "adder", arityErr.Name)
	require.Equal(t, 0, arityErr.Got)
	require.Equal(t, 2, arityErr.Min)
}

// TestTillEscapeSkipsBodyTail exercises the pc-repair in the TillBegin
// opcode handler: after a TillDo panics out of the middle of a $till body,
// the resumed outer code must land exactly past the matching TillEnd rather
// than walking into the unexecuted tail of the body.
func TestTillEscapeSkipsBodyTail(t *testing.T) {
	v, err := run(t, `
program:

function: top 2 0
	constants:
		labels -
		int 99
	code:
		tillbegin 0
		ld64 1
		tilldo 2
		pop1
		ldnull
		tillend 0
		ret 0
`)
	require.NoError(t, err)
	require.Equal(t, value.Int64(99), v)
}

// TestTillFallsThroughNormally checks the non-escaping completion path: the
// till body's last value becomes the till expression's result and
// execution continues after TillEnd.
func TestTillFallsThroughNormally(t *testing.T) {
	v, err := run(t, `
program:

function: top 2 0
	constants:
		labels -
		int 7
	code:
		tillbegin 0
		ld64 1
		tillend 0
		ld64 1
		binary 1
		ret 0
`)
	require.NoError(t, err)
	require.Equal(t, value.Int64(14), v)
}

// TestBreakpointSuspendsEvaluation checks that a raw Brk instruction
// suspends the whole evaluation as an EvalBreak result rather than being
// caught by any enclosing $till scope.
func TestBreakpointSuspendsEvaluation(t *testing.T) {
	reg := symbol.NewWellKnownTable()
	tables, err := compiler.Asm([]byte(`
program:

function: top 2 0
	constants:
		labels -
		int 42
	code:
		tillbegin 0
		ld64 1
		brk 0
		ldnull
		tillend 0
		ret 0
`), reg)
	require.NoError(t, err)
	m := vm.NewMachine(reg)
	th := m.NewThread(context.Background())
	res, err := th.Run(tables)
	require.NoError(t, err)
	require.Equal(t, vm.EvalBreak, res.Kind)
	require.Equal(t, value.Int64(42), res.BreakValue)
}

func TestUndefinedGlobalNameError(t *testing.T) {
	_, err := run(t, `
program:

function: top 1 0
	code:
		ldx 999999
		ret 0
`)
	require.Error(t, err)
}
