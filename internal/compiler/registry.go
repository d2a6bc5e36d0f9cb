package compiler

import (
	"fmt"
	"slices"
	"sync"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/recordselect/internal/ir"
)

// Registry holds validated record types by name.
//
// Thread-safety: Registry is safe for concurrent use. Lookups take a
// read lock; Register takes the write lock.
type Registry struct {
	mu    sync.RWMutex
	types map[string]ir.RecordType
	order []string
}

// NewRegistry creates a registry holding types, in the given order.
func NewRegistry(types ...ir.RecordType) (*Registry, error) {
	r := &Registry{types: make(map[string]ir.RecordType)}
	for _, rt := range types {
		if err := r.Register(rt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates rt and adds it. A name may be registered once.
func (r *Registry) Register(rt ir.RecordType) error {
	if errs := Validate(rt); len(errs) > 0 {
		return fmt.Errorf("record %s: %w", rt.Name, errs[0])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[rt.Name]; ok {
		return ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("duplicate record name: %q", rt.Name),
			Code:    ErrDuplicateName,
		}
	}
	r.types[rt.Name] = rt
	r.order = append(r.order, rt.Name)
	return nil
}

// Lookup returns the record type registered under name.
func (r *Registry) Lookup(name string) (ir.RecordType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.types[name]
	return rt, ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Types returns registered types in registration order.
func (r *Registry) Types() []ir.RecordType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ir.RecordType, len(r.order))
	for i, name := range r.order {
		out[i] = r.types[name]
	}
	return out
}

// LoadDir compiles the CUE package in dir and returns its record types.
func LoadDir(dir string) ([]ir.RecordType, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileRecords(value)
}
