package bytecode

import (
	"fmt"
	"strings"

	"shkola/internal/types"
)

// ArrayValue is the bytecode engine's runtime representation of an array:
// a fixed-size, mutable, reference-typed container (spec.md §4.5: "arrays
// are values with reference semantics"). Two variables holding the same
// *ArrayValue alias the same backing storage.
type ArrayValue struct {
	Data []any
}

// Clone deep-copies an array (recursively, since an element may itself be
// an array). Used by PushConst when the constant is an array template:
// every VarDecl execution needs its own independent storage even though
// all instances share one constant-table entry.
func (a *ArrayValue) Clone() *ArrayValue {
	data := make([]any, len(a.Data))
	for i, v := range a.Data {
		data[i] = cloneValue(v)
	}
	return &ArrayValue{Data: data}
}

func cloneValue(v any) any {
	if arr, ok := v.(*ArrayValue); ok {
		return arr.Clone()
	}
	return v
}

// DefaultForType returns the zero value of t, per spec.md §3's default
// value table, suitable either for direct Push* emission (scalars) or for
// interning as an array-template constant (arrays).
func DefaultForType(t types.Type) any {
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
		data := make([]any, t.Size)
		for i := range data {
			data[i] = DefaultForType(*t.Elem)
		}
		return &ArrayValue{Data: data}
	default:
		return nil
	}
}

// Format renders v the way the builtin `print` does (spec.md §6).
func Format(v any) string {
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
	case *ArrayValue:
		return formatArray(x)
	default:
		return ""
	}
}

func formatArray(a *ArrayValue) string {
	parts := make([]string, len(a.Data))
	for i, v := range a.Data {
		parts[i] = Format(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
