package lang

import (
	"iter"
	"slices"
)

// Env maps variable names to values.
//
// An Env is immutable: [Env.Bind] returns a new overlay whose lookups fall
// through to the receiver, so extending scope for one sub-evaluation never
// affects siblings that share the same parent. The nil *Env is the empty
// environment.
type Env struct {
	parent *Env
	name   string
	value  Value
	depth  int
}

// NewEnv returns an environment holding the given bindings in order.
// Later bindings shadow earlier ones with the same name.
func NewEnv(bindings ...Binding) *Env {
	var env *Env
	for _, b := range bindings {
		env = env.Bind(b.Name, b.Value)
	}

	return env
}

// Binding is a single name-to-value association.
type Binding struct {
	Name  string
	Value Value
}

// Bind returns a new environment in which name resolves to v.
func (e *Env) Bind(name string, v Value) *Env {
	return &Env{parent: e, name: name, value: v, depth: e.Len() + 1}
}

// Lookup returns the innermost value bound to name.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if env.name == name {
			return env.value, true
		}
	}

	return Value{}, false
}

// Len returns the number of overlays, counting shadowed bindings.
func (e *Env) Len() int {
	if e == nil {
		return 0
	}

	return e.depth
}

// All returns an iterator over the visible bindings, innermost first.
// Shadowed bindings are skipped.
func (e *Env) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		seen := make(map[string]struct{})

		for env := e; env != nil; env = env.parent {
			if _, ok := seen[env.name]; ok {
				continue
			}

			seen[env.name] = struct{}{}

			if !yield(env.name, env.value) {
				return
			}
		}
	}
}

// Map returns the visible bindings as a name-to-value map.
func (e *Env) Map() map[string]Value {
	m := make(map[string]Value)
	for name, v := range e.All() {
		m[name] = v
	}

	return m
}

// Names returns the visible binding names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, e.Len())
	for name := range e.All() {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
