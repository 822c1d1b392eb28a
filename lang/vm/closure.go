package vm

import (
	"github.com/smile-lang/smile/lang/compiler"
	"github.com/smile-lang/smile/lang/value"
)

// Closure is the concrete realization of value.UserFunction: a compiled
// function plus the free-variable cells it captured when it was created.
// It needs a compiled function and a call frame to reference, and is
// therefore defined here in lang/vm rather than lang/value (see
// value.UserFunction's doc comment).
type Closure struct {
	Info     *compiler.UserFunctionInfo
	Captured []*Cell // parallel to Info.Freevars
}

func (c *Closure) Kind() value.Kind { return value.KindUserFunction }
func (c *Closure) String() string   { return "#<fn " + c.Info.Name + ">" }
func (c *Closure) Name() string     { return c.Info.Name }

// makeClosure builds a Closure from tmpl's compiled function, capturing its
// free variables out of the currently executing frame fr.
func makeClosure(fr *frame, tmpl *compiler.FuncTemplate) *Closure {
	return closureFrom(fr, tmpl.Info)
}

// closureFrom builds a Closure for info, capturing each of its Freevars out
// of the currently executing frame: either a cell already boxed in frame's
// Locals (ParentLocal) or a cell already captured by frame's own Closure
// (ParentFree). This flattens captures eagerly at creation time rather than
// walking live frame chains at access time, copying straight from the
// enclosing function's Locals/Freevars into the new function value. Shared
// by loadObj's $fn literals and newFrame's per-parameter default-value
// functions, both of which capture out of a partially or fully built frame
// the same way.
func closureFrom(fr *frame, info *compiler.UserFunctionInfo) *Closure {
	captured := make([]*Cell, len(info.Freevars))
	for i, fv := range info.Freevars {
		if fv.ParentLocal >= 0 {
			captured[i] = fr.cells[fv.ParentLocal]
		} else {
			captured[i] = fr.closure.Captured[fv.ParentFree]
		}
	}
	return &Closure{Info: info, Captured: captured}
}
