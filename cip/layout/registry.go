package layout

import (
	"sort"
	"strings"
	"sync"
)

// Scope identifies the table whose layout a Directory describes. Field UUIDs
// are only meaningful within one catalog table.
type Scope struct {
	Catalog string
	Table   string
}

// NewScope trims catalog and table into a Scope.
func NewScope(catalog, table string) Scope {
	return Scope{Catalog: strings.TrimSpace(catalog), Table: strings.TrimSpace(table)}
}

// IsZero reports whether the scope names no catalog.
func (s Scope) IsZero() bool {
	return s.Catalog == ""
}

func (s Scope) String() string {
	if s.Table == "" {
		return s.Catalog
	}
	return s.Catalog + "/" + s.Table
}

// Registry holds one Directory per Scope.
type Registry struct {
	mu   sync.RWMutex
	dirs map[Scope]*Directory
}

// NewRegistry allocates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dirs: make(map[Scope]*Directory)}
}

// Directory returns the directory for scope, creating it on first use.
func (r *Registry) Directory(scope Scope) *Directory {
	r.mu.RLock()
	dir, ok := r.dirs[scope]
	r.mu.RUnlock()
	if ok {
		return dir
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if dir, ok := r.dirs[scope]; ok {
		return dir
	}
	if r.dirs == nil {
		r.dirs = make(map[Scope]*Directory)
	}
	dir = NewDirectory()
	r.dirs[scope] = dir
	return dir
}

// Lookup returns the directory for scope if one has been created.
func (r *Registry) Lookup(scope Scope) (*Directory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dir, ok := r.dirs[scope]
	return dir, ok
}

// Scopes returns the known scopes in sorted order.
func (r *Registry) Scopes() []Scope {
	r.mu.RLock()
	scopes := make([]Scope, 0, len(r.dirs))
	for scope := range r.dirs {
		scopes = append(scopes, scope)
	}
	r.mu.RUnlock()

	sort.Slice(scopes, func(i, j int) bool {
		return scopes[i].String() < scopes[j].String()
	})
	return scopes
}
