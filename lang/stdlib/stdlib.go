// Package stdlib registers a small, representative slice of Smile's
// standard library of built-in methods: arithmetic is handled directly by
// the value model (lang/value), but list/string operations like "each",
// "map", "where", "first", "count" and numeric predicate methods like
// "even?" need a host to register them. This package is that host,
// dispatching through the symbol-keyed per-kind vtable lang/value exposes
// rather than a string-keyed attribute lookup.
package stdlib

import (
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
)

// Register installs the built-in method set into the global per-kind vtable.
// It is idempotent and should be called once during process startup, not
// per VM.
func Register(tbl *symbol.Table) {
	registerListMethods(tbl)
	registerStringMethods(tbl)
	registerNumberMethods(tbl)
}

func sym(tbl *symbol.Table, name string) symbol.Symbol { return tbl.GetSymbol(name) }

func registerListMethods(tbl *symbol.Table) {
	value.RegisterMethod(value.KindList, sym(tbl, "count"), func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
		return value.Int64(value.ListLen(recv)), nil
	})
	value.RegisterMethod(value.KindNull, sym(tbl, "count"), func(_ value.Caller, _ value.Value, _ []value.Value) (value.Value, error) {
		return value.Int64(0), nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "empty?"), func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(value.ListLen(recv) == 0), nil
	})
	value.RegisterMethod(value.KindNull, sym(tbl, "empty?"), func(_ value.Caller, _ value.Value, _ []value.Value) (value.Value, error) {
		return value.True, nil
	})
	value.RegisterMethod(value.KindNull, sym(tbl, "null?"), func(_ value.Caller, _ value.Value, _ []value.Value) (value.Value, error) {
		return value.True, nil
	})
	for k := value.Kind(0); int(k) < 16; k++ {
		if k == value.KindNull {
			continue
		}
		value.RegisterMethod(k, sym(tbl, "null?"), func(_ value.Caller, _ value.Value, _ []value.Value) (value.Value, error) {
			return value.False, nil
		})
	}

	value.RegisterMethod(value.KindList, sym(tbl, "first"), func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
		return recv.(*value.List).First, nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "map"), func(c value.Caller, recv value.Value, args []value.Value) (value.Value, error) {
		elems, _ := value.ListToSlice(recv)
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			r, err := c.Call(args[0], []value.Value{e})
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return value.NewList(out), nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "where"), func(c value.Caller, recv value.Value, args []value.Value) (value.Value, error) {
		elems, _ := value.ListToSlice(recv)
		var out []value.Value
		for _, e := range elems {
			r, err := c.Call(args[0], []value.Value{e})
			if err != nil {
				return nil, err
			}
			if value.Truthy(r) {
				out = append(out, e)
			}
		}
		return value.NewList(out), nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "each"), func(c value.Caller, recv value.Value, args []value.Value) (value.Value, error) {
		elems, _ := value.ListToSlice(recv)
		var last value.Value = value.Nil
		for _, e := range elems {
			r, err := c.Call(args[0], []value.Value{e})
			if err != nil {
				return nil, err
			}
			last = r
		}
		return last, nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "any?"), func(c value.Caller, recv value.Value, args []value.Value) (value.Value, error) {
		elems, _ := value.ListToSlice(recv)
		for _, e := range elems {
			r, err := c.Call(args[0], []value.Value{e})
			if err != nil {
				return nil, err
			}
			if value.Truthy(r) {
				return value.True, nil
			}
		}
		return value.False, nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "all?"), func(c value.Caller, recv value.Value, args []value.Value) (value.Value, error) {
		elems, _ := value.ListToSlice(recv)
		for _, e := range elems {
			r, err := c.Call(args[0], []value.Value{e})
			if err != nil {
				return nil, err
			}
			if !value.Truthy(r) {
				return value.False, nil
			}
		}
		return value.True, nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "contains?"), func(_ value.Caller, recv value.Value, args []value.Value) (value.Value, error) {
		elems, _ := value.ListToSlice(recv)
		for _, e := range elems {
			if value.Equal(e, args[0]) {
				return value.True, nil
			}
		}
		return value.False, nil
	})

	value.RegisterMethod(value.KindList, sym(tbl, "index-of"), func(_ value.Caller, recv value.Value, args []value.Value) (value.Value, error) {
		elems, _ := value.ListToSlice(recv)
		for i, e := range elems {
			if value.Equal(e, args[0]) {
				return value.Int64(i), nil
			}
		}
		return value.Int64(-1), nil
	})
}

func registerStringMethods(tbl *symbol.Table) {
	value.RegisterMethod(value.KindString, sym(tbl, "count"), func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
		return value.Int64(len(recv.(value.String))), nil
	})
	value.RegisterMethod(value.KindString, sym(tbl, "empty?"), func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(len(recv.(value.String)) == 0), nil
	})
	value.RegisterMethod(value.KindString, sym(tbl, "string"), func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
		return recv, nil
	})
}

func registerNumberMethods(tbl *symbol.Table) {
	evenSym := sym(tbl, "even?")
	for _, k := range []value.Kind{value.KindByte, value.KindInt16, value.KindInt32, value.KindInt64} {
		value.RegisterMethod(k, evenSym, func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
			return value.Bool(value.AsInt64(recv)%2 == 0), nil
		})
	}

	strSym := sym(tbl, "string")
	for _, k := range []value.Kind{value.KindByte, value.KindInt16, value.KindInt32, value.KindInt64, value.KindReal32, value.KindReal64, value.KindReal128, value.KindBool, value.KindSymbol, value.KindNull} {
		value.RegisterMethod(k, strSym, func(_ value.Caller, recv value.Value, _ []value.Value) (value.Value, error) {
			return value.String(recv.String()), nil
		})
	}
}
