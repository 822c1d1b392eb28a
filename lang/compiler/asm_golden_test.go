package compiler_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/smile-lang/smile/internal/filetest"
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/symbol"
)

var testUpdateGolden = flag.Bool("test.update-golden-tests", false, "update the lang/compiler golden disassembly files")

// TestAsmGolden disassembles every testdata/*.smasm file and compares the
// result against its golden *.smasm.want sibling using the
// internal/filetest golden-file harness.
func TestAsmGolden(t *testing.T) {
	const dir = "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".smasm") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}
			reg := symbol.NewWellKnownTable()
			tables, err := compiler.Asm(src, reg)
			if err != nil {
				t.Fatal(err)
			}
			out, err := compiler.Dasm(tables, reg)
			if err != nil {
				t.Fatal(err)
			}
			filetest.DiffOutput(t, fi, string(out), dir, testUpdateGolden)
		})
	}
}
