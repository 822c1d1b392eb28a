package compiler_test

import (
	"testing"

	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/stretchr/testify/require"
)

func TestAsmErrors(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		err  string // error "contains" this err string, no error if empty
	}{
		{"empty", ``, "expected program section"},
		{"not program", `function:`, "expected program section"},
		{"program only", `program:`, "missing at least one function"},

		{"invalid function header", `
			program:
			function: MissingFields
		`, "invalid function header"},

		{"missing code", `
			program:
			function: top 0 0
		`, "expected code section"},

		{"unexpected section", `
			program:
			function: top 0 0
				code:
					ldnull
					ret 0
			locals:
		`, "unexpected section"},

		{"invalid opcode", `
			program:
			function: top 0 0
				code:
					foobar
		`, "invalid opcode: foobar"},

		{"missing opcode arg", `
			program:
			function: top 0 0
				code:
					ldbool
		`, "requires an argument"},

		{"unknown function reference", `
			program:
			function: top 1 0
				constants:
					func missing
				code:
					ldobj 0
					pop1
					ldnull
					ret 0
		`, `undefined function reference "missing"`},

		{"minimally valid", `
			program:
			function: top 0 0
				code:
					ldnull
					ret 0
		`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			reg := symbol.NewWellKnownTable()
			_, err := compiler.Asm([]byte(tc.in), reg)
			if tc.err == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.err)
		})
	}
}

// TestAsmDasmRoundTrip checks that disassembling and reassembling a program
// reproduces byte-identical text, exercising cross-function "func" constant
// references and the locals/code sections together.
func TestAsmDasmRoundTrip(t *testing.T) {
	src := `program:

function: top 2 0
	constants:
		int 7
		func adder
	locals:
		x
	code:
		ldobj 1
		stloc0 0
		ld64 0
		ldloc0 0
		call 1
		ret 0
function: adder 2 2
	locals:
		a
		b
	code:
		ldloc0 0
		ldloc0 1
		binary 0
		ret 0
`
	reg := symbol.NewWellKnownTable()
	tables, err := compiler.Asm([]byte(src), reg)
	require.NoError(t, err)
	require.Equal(t, "top", tables.Toplevel.Name)
	require.Len(t, tables.Functions, 1)
	require.Equal(t, "adder", tables.Functions[0].Name)

	out, err := compiler.Dasm(tables, reg)
	require.NoError(t, err)

	tables2, err := compiler.Asm(out, reg)
	require.NoError(t, err)
	out2, err := compiler.Dasm(tables2, reg)
	require.NoError(t, err)
	require.Equal(t, string(out), string(out2))
}
