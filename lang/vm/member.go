package vm

import (
	"github.com/smile-lang/smile/lang/symbol"
	"github.com/smile-lang/smile/lang/value"
)

// loadProp implements LdProp (the $dot form with no call arguments): a
// named property read, meaningful only on Object values (the property-bag
// kind sets aside for user-defined record/"class" shapes).
// Reading an undeclared property yields Null rather than an error, matching
// a dynamically-typed language's usual "absent means null" convention.
func loadProp(recv value.Value, name symbol.Symbol) (value.Value, error) {
	obj, ok := recv.(*value.Object)
	if !ok {
		return nil, &value.TypeMismatchError{Op: "dot", X: recv.Kind(), Y: recv.Kind()}
	}
	if v, ok := obj.Get(name); ok {
		return v, nil
	}
	return value.Nil, nil
}

func storeProp(recv value.Value, name symbol.Symbol, v value.Value) error {
	obj, ok := recv.(*value.Object)
	if !ok {
		return &value.TypeMismatchError{Op: "dot", X: recv.Kind(), Y: recv.Kind()}
	}
	obj.Set(name, v)
	return nil
}

// loadMember implements LdMember: index access into a List by integer
// position, or into an Object by a Symbol key (an alternative spelling of
// property access). Only a single key is supported, the only arity the
// compiler ever emits ($index is always a 2-argument form); an
// out-of-range List index yields Null rather than an error, again favoring
// a dynamic language's lenient-read convention over a hard fault.
func loadMember(coll value.Value, keys []value.Value) (value.Value, error) {
	if len(keys) != 1 {
		return nil, &value.TypeMismatchError{Op: "index", X: coll.Kind(), Y: coll.Kind()}
	}
	key := keys[0]
	switch c := coll.(type) {
	case *value.List, value.Null:
		if !key.Kind().IsInteger() {
			return nil, &value.TypeMismatchError{Op: "index", X: coll.Kind(), Y: key.Kind()}
		}
		n := value.AsInt64(key)
		cur := coll
		for n > 0 {
			lst, ok := cur.(*value.List)
			if !ok {
				return value.Nil, nil
			}
			cur = lst.Rest
			n--
		}
		if lst, ok := cur.(*value.List); ok {
			return lst.First, nil
		}
		return value.Nil, nil
	case *value.Object:
		sym, ok := key.(value.Symbol)
		if !ok {
			return nil, &value.TypeMismatchError{Op: "index", X: coll.Kind(), Y: key.Kind()}
		}
		if v, ok := c.Get(symbol.Symbol(sym)); ok {
			return v, nil
		}
		return value.Nil, nil
	default:
		return nil, &value.TypeMismatchError{Op: "index", X: coll.Kind(), Y: key.Kind()}
	}
}

func storeMember(coll value.Value, keys []value.Value, v value.Value) error {
	if len(keys) != 1 {
		return &value.TypeMismatchError{Op: "index", X: coll.Kind(), Y: coll.Kind()}
	}
	obj, ok := coll.(*value.Object)
	if !ok {
		return &value.TypeMismatchError{Op: "index", X: coll.Kind(), Y: coll.Kind()}
	}
	sym, ok := keys[0].(value.Symbol)
	if !ok {
		return &value.TypeMismatchError{Op: "index", X: coll.Kind(), Y: keys[0].Kind()}
	}
	obj.Set(symbol.Symbol(sym), v)
	return nil
}
