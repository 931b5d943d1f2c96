package verification

import (
	"context"
	"sync"

	"credentialing/pkg/types"
)

type Request struct {
	CaseID           string
	VerificationType string
}

// Result is what an adapter reports. Evidence is validated before anything
// is persisted.
type Result struct {
	Source   string
	Pass     bool
	Evidence types.Evidence
}

// Adapter runs one external check.
type Adapter interface {
	Name() string
	Run(ctx context.Context, req Request) (Result, error)
}

// Registry maps verification types to adapters. Types with no registered
// adapter get a MockAdapter named after the type.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Set registers adapter for verificationType. A nil adapter removes the
// registration.
func (r *Registry) Set(verificationType string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter == nil {
		delete(r.adapters, verificationType)
		return
	}
	r.adapters[verificationType] = adapter
}

func (r *Registry) Adapter(verificationType string) Adapter {
	r.mu.RLock()
	adapter, ok := r.adapters[verificationType]
	r.mu.RUnlock()

	if ok {
		return adapter
	}
	return NewMockAdapter(verificationType)
}
