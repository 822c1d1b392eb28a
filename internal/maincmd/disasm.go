package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
)

// Disasm assembles each given file and prints a raw, address-annotated
// instruction listing of the last one's functions (see
// compiler.Disassemble), a lower-level view than "asm"'s canonical,
// reassemblable disassembly.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	reg := symbol.NewWellKnownTable()
	tables, err := loadFiles(reg, args)
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprint(stdio.Stdout, compiler.Disassemble(tables))
	return nil
}
