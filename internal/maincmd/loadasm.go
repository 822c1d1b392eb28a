package maincmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
	"github.com/smile-lang/smile/lang/vm"
)

// loadFiles assembles every path in order, threading a single symbol table
// through all of them so a "func" constant in one file can never collide
// with the same name asserted in another (each call to compiler.Asm starts
// a fresh CompiledTables, there is no cross-file linking here). Only the
// last file's tables are returned: Smile has no #syntax-style multi-file
// program concept, out of scope, so additional paths are assembled purely
// to validate them alongside the one that will actually run.
func loadFiles(reg *symbol.Table, paths []string) (*compiler.CompiledTables, error) {
	var tables *compiler.CompiledTables
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		t, err := compiler.Asm(b, reg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		tables = t
	}
	return tables, nil
}

// parseDefines splits a "-D" flag value of the form "name=value[,name=value]"
// into global bindings, recognizing int, bool, null and quoted-string
// literals; anything else becomes a String holding the raw text. There is no expression
// evaluator here (lexing/parsing a general Smile literal is out of scope),
// so this only covers the handful of constant shapes a command-line
// invocation plausibly needs.
func parseDefines(reg *symbol.Table, raw string) (map[symbol.Symbol]value.Value, error) {
	out := make(map[symbol.Symbol]value.Value)
	if raw == "" {
		return out, nil
	}
	for _, part := range strings.Split(raw, ",") {
		name, lit, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid -D value %q, expected name=value", part)
		}
		out[reg.GetSymbol(name)] = parseDefineLiteral(lit)
	}
	return out, nil
}

func parseDefineLiteral(lit string) value.Value {
	switch lit {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null":
		return value.Nil
	}
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return value.Int64(n)
	}
	if len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"' {
		return value.String(lit[1 : len(lit)-1])
	}
	return value.String(lit)
}

// applyDefines binds every define directly into m's global namespace, ahead
// of running anything. The textual bytecode format has no "global" section
// of its own (globals are addressed purely by interned Symbol, resolved at
// LdX/StX time against whatever the Machine happens to hold), so this is
// the only way -Dname=value can reach a running program.
func applyDefines(m *vm.Machine, defines map[symbol.Symbol]value.Value) {
	for sym, v := range defines {
		m.Globals[sym] = v
	}
}
