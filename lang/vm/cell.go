package vm

import "github.com/smile-lang/smile/lang/value"

// Cell is a heap-boxed local variable slot, used whenever a local is
// captured by a nested function literal (its index appears in the owning
// UserFunctionInfo.Cells) so the captured value outlives the frame it was
// declared in.
type Cell struct {
	Value value.Value
}

func newCell(v value.Value) *Cell { return &Cell{Value: v} }
