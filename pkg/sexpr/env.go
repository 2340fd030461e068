package sexpr

// Env is one frame of the lexical environment chain. Symbol lookup walks
// parent links toward the global frame; define always targets the current
// frame while set! targets the nearest frame that already owns the symbol.
type Env struct {
	vars   map[string]Value
	parent *Env
}

// NewEnv creates a frame with the given parent. A nil parent makes a root
// (global) frame.
func NewEnv(parent *Env) *Env {
	return &Env{
		vars:   make(map[string]Value),
		parent: parent,
	}
}

// Lookup resolves a symbol by walking the chain outward.
func (e *Env) Lookup(name string) (Value, bool) {
	for frame := e; frame != nil; frame = frame.parent {
		if v, ok := frame.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Define binds or overwrites name in this frame.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Set mutates name in the nearest enclosing frame that owns it. It reports
// false when no frame in the chain owns the symbol.
func (e *Env) Set(name string, v Value) bool {
	for frame := e; frame != nil; frame = frame.parent {
		if _, ok := frame.vars[name]; ok {
			frame.vars[name] = v
			return true
		}
	}
	return false
}
