package hooks

import (
	lua "github.com/yuin/gopher-lua"
)

// Kind discriminates the payload carried by a Value, the tagged sum type
// spec.md §9 prescribes for script context values ("Dynamic-typed
// scripting values -> tagged variant").
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindTable
)

// Value is one entry in a Table passed to or returned from a script.
// Exactly the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Table Table
}

// Table is a context table: a string-keyed map of Values, nestable.
type Table map[string]Value

func B(v bool) Value    { return Value{Kind: KindBool, Bool: v} }
func I(v int64) Value   { return Value{Kind: KindInt, Int: v} }
func F(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func S(v string) Value  { return Value{Kind: KindString, Str: v} }
func T(v Table) Value   { return Value{Kind: KindTable, Table: v} }

// AsString returns v's string payload, with ok=false for every Kind other
// than KindString (numbers and booleans are not converted) — used by
// callers reading a declared-string return.
func (v Value) AsString() (string, bool) {
	switch v.Kind {
	case KindString:
		return v.Str, true
	default:
		return "", false
	}
}

// AsInt returns v's value coerced to int64, ok=false if v isn't numeric.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindFloat:
		return int64(v.Float), true
	default:
		return 0, false
	}
}

// toLua converts a Value into the equivalent lua.LValue.
func toLua(L *lua.LState, v Value) lua.LValue {
	switch v.Kind {
	case KindBool:
		return lua.LBool(v.Bool)
	case KindInt:
		return lua.LNumber(v.Int)
	case KindFloat:
		return lua.LNumber(v.Float)
	case KindString:
		return lua.LString(v.Str)
	case KindTable:
		return toLuaTable(L, v.Table)
	default:
		return lua.LNil
	}
}

// toLuaTable converts a context Table into a populated *lua.LTable.
func toLuaTable(L *lua.LState, t Table) *lua.LTable {
	lt := L.NewTable()
	for k, v := range t {
		lt.RawSetString(k, toLua(L, v))
	}
	return lt
}

// fromLua converts a returned lua.LValue back into a tagged Value. Used to
// read filter/widget return values without reflection — the explicit
// downcast spec.md §9 calls for.
func fromLua(lv lua.LValue) (Value, bool) {
	switch x := lv.(type) {
	case lua.LBool:
		return B(bool(x)), true
	case lua.LNumber:
		f := float64(x)
		if f == float64(int64(f)) {
			return I(int64(f)), true
		}
		return F(f), true
	case lua.LString:
		return S(string(x)), true
	case *lua.LTable:
		out := Table{}
		x.ForEach(func(k, val lua.LValue) {
			key, ok := k.(lua.LString)
			if !ok {
				return
			}
			if v, ok := fromLua(val); ok {
				out[string(key)] = v
			}
		})
		return T(out), true
	default:
		return Value{}, false
	}
}
