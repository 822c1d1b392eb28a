package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "smile"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...] [-- <arg>...]
       %[1]s -h|--help
       %[1]s --version

Bytecode assembler, disassembler and VM driver for the %[1]s execution core.
There is no surface-syntax front end here: every command's <path> arguments
name ".smasm" textual bytecode files (see lang/compiler's Asm/Dasm).

The <command> can be one of:
       asm                       Assemble the given file(s), validating
                                 them, and print the canonical
                                 disassembly of the result.
       run                       Assemble and execute the given file's
                                 top-level function, printing its result.
       disasm                    Assemble the given file(s) and print a
                                 raw, address-annotated instruction
                                 listing of every function (lower-level
                                 than "asm"'s canonical round-trip form).

Valid flag options are:
       -h --help                 Show this help and exit.
       --version                 Print version and exit.
       -q --quiet                Suppress non-error output.
       -V --verbose              Print extra diagnostic information.
       -c --check                Assemble and validate only; do not run
                                 or print a disassembly.
       -D name=value             Define a global constant before running
                                 (repeatable, comma-separated). Only
                                 int, string, bool and null literals
                                 are recognized.
       --warnings-as-errors      Accepted, but has no effect: asm, run
                                 and disasm emit no warnings.

Valid flag options for the <run> command are:
       -n                        Discard the result; print nothing on
                                 success.
       -p                        Print the result using its Value.String
                                 form (the default).
       -o                        Print the result as a disassembly-style
                                 #<kind ...> dump instead.

More information on the %[1]s module:
       https://github.com/smile-lang/smile
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"version"`

	Quiet   bool `flag:"q,quiet"`
	Verbose bool `flag:"V,verbose"`

	Check   bool   `flag:"c,check"`
	Defines string `flag:"D"`

	// WarningsAsErrors is accepted for forward compatibility with a future
	// command that runs compiler.Compile (and so accumulates a
	// diag.List); asm/run/disasm go through compiler.Asm instead, which
	// has no notion of a non-fatal diagnostic, so this has no effect yet.
	WarningsAsErrors bool `flag:"warnings-as-errors"`

	NoPrint    bool `flag:"n"`
	PrintValue bool `flag:"p"`
	PrintDump  bool `flag:"o"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}

	if cmdName != "run" && (c.flags["n"] || c.flags["p"] || c.flags["o"]) {
		return fmt.Errorf("%s: flags -n, -p and -o are only valid for the run command", cmdName)
	}
	if n := boolCount(c.NoPrint, c.PrintValue, c.PrintDump); n > 1 {
		return errors.New("run: at most one of -n, -p, -o may be given")
	}

	return nil
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false, // leaving this here for now in case some flags can use this
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
