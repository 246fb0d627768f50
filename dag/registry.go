package dag

import (
	"sort"
	"sync"

	"github.com/kbukum/graphx/ops"
)

// Function kinds held by a Registry.
const (
	FuncMapper  = "mapper"
	FuncFolder  = "folder"
	FuncReducer = "reducer"
)

// Registry provides named function lookup for YAML jobs.
type Registry struct {
	mu       sync.RWMutex
	mappers  map[string]ops.Mapper
	folders  map[string]ops.Folder
	reducers map[string]ops.Reducer
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		mappers:  make(map[string]ops.Mapper),
		folders:  make(map[string]ops.Folder),
		reducers: make(map[string]ops.Reducer),
	}
}

// RegisterMapper adds a mapper, replacing any previous one of that name.
func (r *Registry) RegisterMapper(name string, fn ops.Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[name] = fn
}

// RegisterFolder adds a folder.
func (r *Registry) RegisterFolder(name string, fn ops.Folder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders[name] = fn
}

// RegisterReducer adds a reducer.
func (r *Registry) RegisterReducer(name string, fn ops.Reducer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reducers[name] = fn
}

// Mapper retrieves a mapper by name.
func (r *Registry) Mapper(name string) (ops.Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.mappers[name]
	return fn, ok
}

// Folder retrieves a folder by name.
func (r *Registry) Folder(name string) (ops.Folder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.folders[name]
	return fn, ok
}

// Reducer retrieves a reducer by name.
func (r *Registry) Reducer(name string) (ops.Reducer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.reducers[name]
	return fn, ok
}

// List returns the sorted names of all registered functions of kind.
func (r *Registry) List(kind string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	switch kind {
	case FuncMapper:
		names = keys(r.mappers)
	case FuncFolder:
		names = keys(r.folders)
	case FuncReducer:
		names = keys(r.reducers)
	}
	sort.Strings(names)
	return names
}

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}
