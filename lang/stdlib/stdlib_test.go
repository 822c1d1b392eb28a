package stdlib_test

import (
	"testing"

	"github.com/smile-lang/smile/lang/stdlib"
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
	"github.com/stretchr/testify/require"
)

// fakeCaller lets the builtin methods under test invoke the NativeFunction
// blocks passed to "map"/"where"/"each"/"any?"/"all?", standing in for the
// real lang/vm.Thread those methods are normally called with.
type fakeCaller struct{}

func (fakeCaller) Call(fn value.Value, args []value.Value) (value.Value, error) {
	return fn.(*value.NativeFunction).Invoke(fakeCaller{}, args)
}

func ints(ns ...int64) []value.Value {
	out := make([]value.Value, len(ns))
	for i, n := range ns {
		out[i] = value.Int64(n)
	}
	return out
}

func TestListMethods(t *testing.T) {
	tbl := symbol.NewWellKnownTable()
	stdlib.Register(tbl)

	list := value.NewList(ints(1, 2, 3, 4))

	countResult, err := value.CallMethod(list, tbl.GetSymbol("count"), nil)
	require.NoError(t, err)
	require.Equal(t, value.Int64(4), countResult)

	emptyResult, err := value.CallMethod(value.Nil, tbl.GetSymbol("empty?"), nil)
	require.NoError(t, err)
	require.Equal(t, value.True, emptyResult)

	doubler := value.NewNativeFunction("double", func(_ value.Caller, args []value.Value) (value.Value, error) {
		return value.Int64(value.AsInt64(args[0]) * 2), nil
	})
	mapped, err := value.CallMethodWith(fakeCaller{}, list, tbl.GetSymbol("map"), []value.Value{doubler})
	require.NoError(t, err)
	elems, ok := value.ListToSlice(mapped)
	require.True(t, ok)
	require.Equal(t, ints(2, 4, 6, 8), elems)

	isEven := value.NewNativeFunction("even", func(_ value.Caller, args []value.Value) (value.Value, error) {
		return value.Bool(value.AsInt64(args[0])%2 == 0), nil
	})
	filtered, err := value.CallMethodWith(fakeCaller{}, list, tbl.GetSymbol("where"), []value.Value{isEven})
	require.NoError(t, err)
	elems, ok = value.ListToSlice(filtered)
	require.True(t, ok)
	require.Equal(t, ints(2, 4), elems)

	anyResult, err := value.CallMethodWith(fakeCaller{}, list, tbl.GetSymbol("any?"), []value.Value{isEven})
	require.NoError(t, err)
	require.Equal(t, value.True, anyResult)

	allResult, err := value.CallMethodWith(fakeCaller{}, list, tbl.GetSymbol("all?"), []value.Value{isEven})
	require.NoError(t, err)
	require.Equal(t, value.False, allResult)

	containsResult, err := value.CallMethod(list, tbl.GetSymbol("contains?"), []value.Value{value.Int64(3)})
	require.NoError(t, err)
	require.Equal(t, value.True, containsResult)

	idxResult, err := value.CallMethod(list, tbl.GetSymbol("index-of"), []value.Value{value.Int64(3)})
	require.NoError(t, err)
	require.Equal(t, value.Int64(2), idxResult)

	idxMissing, err := value.CallMethod(list, tbl.GetSymbol("index-of"), []value.Value{value.Int64(99)})
	require.NoError(t, err)
	require.Equal(t, value.Int64(-1), idxMissing)
}

func TestNumberMethods(t *testing.T) {
	tbl := symbol.NewWellKnownTable()
	stdlib.Register(tbl)

	even, err := value.CallMethod(value.Int64(4), tbl.GetSymbol("even?"), nil)
	require.NoError(t, err)
	require.Equal(t, value.True, even)

	odd, err := value.CallMethod(value.Int64(5), tbl.GetSymbol("even?"), nil)
	require.NoError(t, err)
	require.Equal(t, value.False, odd)

	str, err := value.CallMethod(value.Int64(42), tbl.GetSymbol("string"), nil)
	require.NoError(t, err)
	require.Equal(t, value.String("42"), str)
}

func TestStringMethods(t *testing.T) {
	tbl := symbol.NewWellKnownTable()
	stdlib.Register(tbl)

	n, err := value.CallMethod(value.String("hello"), tbl.GetSymbol("count"), nil)
	require.NoError(t, err)
	require.Equal(t, value.Int64(5), n)

	empty, err := value.CallMethod(value.String(""), tbl.GetSymbol("empty?"), nil)
	require.NoError(t, err)
	require.Equal(t, value.True, empty)
}
