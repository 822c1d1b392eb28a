package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/vm"
)

// Run assembles the last given file and evaluates its top-level function
// with no arguments, printing the result per the -n/-p/-o flags (-p, print
// the result's Value.String form, is the default).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	reg := symbol.NewWellKnownTable()
	tables, err := loadFiles(reg, args)
	if err != nil {
		return printError(stdio, err)
	}

	defines, err := parseDefines(reg, c.Defines)
	if err != nil {
		return printError(stdio, err)
	}

	m := vm.NewMachine(reg)
	applyDefines(m, defines)
	th := m.NewThread(ctx)

	if c.Verbose && !c.Quiet {
		fmt.Fprintf(stdio.Stderr, "running %s\n", args[len(args)-1])
	}

	res, err := th.Run(tables)
	if err != nil {
		return printError(stdio, err)
	}

	if res.Kind == vm.EvalBreak {
		fmt.Fprintf(stdio.Stdout, "#<break %s pc=%d>\n", res.BreakClosure.Name(), res.BreakPC)
		return nil
	}

	switch {
	case c.NoPrint || c.Quiet:
		// nothing to print
	case c.PrintDump:
		fmt.Fprintf(stdio.Stdout, "#<%s %s>\n", res.Value.Kind(), res.Value.String())
	default:
		fmt.Fprintln(stdio.Stdout, res.Value.String())
	}
	return nil
}
