package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
)

// Asm assembles each given file and, unless -c/--check was given, prints the
// canonical disassembly of the last one (round-tripping through Dasm is
// also the cheapest way to confirm Asm parsed it into a well-formed
// compiler.CompiledTables, since Dasm walks every field Asm populated).
func (c *Cmd) Asm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	reg := symbol.NewWellKnownTable()
	tables, err := loadFiles(reg, args)
	if err != nil {
		return printError(stdio, err)
	}

	if c.Check {
		if !c.Quiet {
			fmt.Fprintf(stdio.Stdout, "%s: ok\n", args[len(args)-1])
		}
		return nil
	}

	out, err := compiler.Dasm(tables, reg)
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprint(stdio.Stdout, string(out))
	return nil
}
