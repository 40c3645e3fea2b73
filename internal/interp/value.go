package interp

import (
	"fmt"
	"strings"

	"shkola/internal/types"
)

// Value is any runtime value this language can hold: int64, bool, rune,
// string, or *Array. Arrays are reference types (spec.md §4.5: "arrays are
// values with reference semantics").
type Value any

// Array is a fixed-size, mutable container. Two variables holding the same
// *Array alias the same storage, matching the reference interpreter's
// choice documented in spec.md §4.5.
type Array struct {
	Elem types.Type
	Data []Value
}

// Default returns the zero value for t, per spec.md §3's default-value
// table.
func Default(t types.Type) Value {
	switch t.Kind {
	case types.KindInteger:
		return int64(0)
	case types.KindBoolean:
		return false
	case types.KindChar:
		return rune(0)
	case types.KindString:
		return ""
	case types.KindArray:
		data := make([]Value, t.Size)
		for i := range data {
			data[i] = Default(*t.Elem)
		}
		return &Array{Elem: *t.Elem, Data: data}
	default:
		return nil
	}
}

// Format renders a value the way the builtin `print` does (spec.md §6):
// integers decimal, booleans as the source language's truth words, chars
// as the bare rune, strings verbatim.
func Format(v Value) string {
	switch x := v.(type) {
	case int64:
		return fmt.Sprintf("%d", x)
	case bool:
		if x {
			return "да"
		}
		return "нет"
	case rune:
		return string(x)
	case string:
		return x
	case *Array:
		parts := make([]string, len(x.Data))
		for i, e := range x.Data {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", x)
	}
}
