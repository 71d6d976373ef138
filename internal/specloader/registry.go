package specloader

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/EpicWink/seddy/internal/dag"
	"github.com/EpicWink/seddy/internal/errs"
)

// registryKey identifies a Workflow by its (name, version) identity
// (spec.md §3).
type registryKey struct {
	name    string
	version string
}

// Registry is a bounded cache of parsed workflows, keyed by (name,
// version), so a long-running Decider Loop (spec.md §4.7) can hold many
// loaded spec versions without growing memory unboundedly.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[registryKey, *dag.Workflow]
}

// NewRegistry builds a Registry holding at most size parsed workflows,
// evicting least-recently-used entries once full.
func NewRegistry(size int) (*Registry, error) {
	cache, err := lru.New[registryKey, *dag.Workflow](size)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "building spec registry")
	}
	return &Registry{cache: cache}, nil
}

// LoadDocument parses data as a spec document and adds every workflow it
// contains to the registry, returning them.
func (r *Registry) LoadDocument(data []byte, format Format) ([]*dag.Workflow, error) {
	workflows, err := Load(data, format)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range workflows {
		r.cache.Add(registryKey{name: w.Name, version: w.Version}, w)
	}
	return workflows, nil
}

// Get looks up a previously loaded workflow by (name, version).
func (r *Registry) Get(name, version string) (*dag.Workflow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Get(registryKey{name: name, version: version})
}

// Len reports how many workflows are currently cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
