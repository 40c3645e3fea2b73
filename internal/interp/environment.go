package interp

// Environment is one frame in the lexical environment chain (spec.md §4.2):
// a name→value mapping with a parent pointer. A block pushes a fresh frame;
// a function call pushes a frame whose parent is the global frame, not the
// caller's frame — this language has no closures (spec.md §1 Non-goals).
type Environment struct {
	vars   map[string]Value
	parent *Environment
}

// NewEnvironment creates a frame with the given parent (nil for the global
// frame).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{vars: map[string]Value{}, parent: parent}
}

// Declare binds name in this frame directly, overwriting any existing
// binding in this same frame (used once per VarDecl execution).
func (e *Environment) Declare(name string, v Value) {
	e.vars[name] = v
}

// Get resolves name by walking up the parent chain.
func (e *Environment) Get(name string) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set assigns to the nearest enclosing binding of name. It reports whether
// a binding was found; callers that already passed semantic analysis
// should never see false.
func (e *Environment) Set(name string, v Value) bool {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = v
			return true
		}
	}
	return false
}
