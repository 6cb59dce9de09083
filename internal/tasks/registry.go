package tasks

import (
	"fmt"
	"sync"
)

// Registry holds task types in registration order.
//
// It is assembled once by the composition root and handed to the generation
// engine. Types are never removed or replaced.
type Registry struct {
	mu     sync.RWMutex
	types  []TaskType
	byName map[string]TaskType
	byCost map[int]TaskType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]TaskType{},
		byCost: map[int]TaskType{},
	}
}

// Register appends t. It fails when t's complexity is not positive or when
// its name or complexity collides with an already registered type.
func (r *Registry) Register(t TaskType) error {
	if t == nil {
		return fmt.Errorf("tasks: task type is required")
	}
	if t.Complexity() <= 0 {
		return &TaskError{Kind: ErrInvalidComplexity, Task: t.Name(), Msg: fmt.Sprintf("got %d", t.Complexity())}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[t.Name()]; exists {
		return &TaskError{Kind: ErrDuplicateName, Task: t.Name()}
	}
	if prev, exists := r.byCost[t.Complexity()]; exists {
		return &TaskError{
			Kind: ErrDuplicateComplexity,
			Task: t.Name(),
			Msg:  fmt.Sprintf("complexity %d already used by %s", t.Complexity(), prev.Name()),
		}
	}
	r.types = append(r.types, t)
	r.byName[t.Name()] = t
	r.byCost[t.Complexity()] = t
	return nil
}

// MustRegister panics if registration fails. A collision is a startup defect.
func (r *Registry) MustRegister(t TaskType) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []TaskType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TaskType, len(r.types))
	copy(out, r.types)
	return out
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (TaskType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Builtins returns the built-in task types in their canonical order.
func Builtins() []TaskType {
	return []TaskType{
		Range{},
		NegativeRange{},
		AwaitKeyword{},
		Iterator{},
		Fibonacci{},
	}
}

// RegisterBuiltins installs every built-in task type into reg.
func RegisterBuiltins(reg *Registry) error {
	for _, t := range Builtins() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// NewBuiltinRegistry returns a registry holding the built-in task types.
func NewBuiltinRegistry() (*Registry, error) {
	reg := NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
