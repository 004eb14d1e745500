package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/model"
)

// Entry identifies the generated bindings that own an address.
type Entry struct {
	Alias      string
	ImportPath string
}

// Registry holds the addresses registered in one session. Writes take the
// exclusive lock, lookups the shared one.
type Registry struct {
	mu        sync.RWMutex
	byAddress map[model.Address]Entry
	byAlias   map[string]mapset.Set[model.Address]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byAddress: make(map[model.Address]Entry),
		byAlias:   make(map[string]mapset.Set[model.Address]),
	}
}

// Register records that the bindings under alias own addrs. An address
// already owned by another alias moves to the new one with a warning.
func (r *Registry) Register(ctx context.Context, alias, importPath string, addrs []model.Address) {
	logger := ctxlog.FromContext(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()

	own, ok := r.byAlias[alias]
	if !ok {
		own = mapset.NewThreadUnsafeSet[model.Address]()
		r.byAlias[alias] = own
	}
	for _, a := range addrs {
		if prev, ok := r.byAddress[a]; ok && prev.Alias != alias {
			logger.Warn("Address already registered by another package, the later one wins.",
				"address", a.ShortString(), "previous", prev.Alias, "alias", alias)
			r.byAlias[prev.Alias].Remove(a)
		}
		r.byAddress[a] = Entry{Alias: alias, ImportPath: importPath}
		own.Add(a)
	}
	logger.Debug("Registered package.", "alias", alias, "import_path", importPath, "addresses", len(addrs))
}

// Lookup returns the owner of addr.
func (r *Registry) Lookup(addr model.Address) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byAddress[addr]
	return e, ok
}

// Has reports whether alias has been registered.
func (r *Registry) Has(alias string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byAlias[alias]
	return ok
}

// Addresses returns the addresses currently owned by alias, sorted.
func (r *Registry) Addresses(alias string) []model.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	own, ok := r.byAlias[alias]
	if !ok {
		return nil
	}
	out := own.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Aliases lists every registered alias, sorted.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byAlias))
	for a := range r.byAlias {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// NewBuildContext returns the resolution context for generating the package
// under alias. Every dependency must already be registered.
func (r *Registry) NewBuildContext(alias, importPath string, own []model.Address, deps []string) (*BuildContext, error) {
	var missing []string
	for _, d := range deps {
		if d == alias {
			return nil, fmt.Errorf("package %q lists itself as a dependency", alias)
		}
		if !r.Has(d) {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("package %q depends on %q, which has not been generated", alias, missing)
	}
	return &BuildContext{
		reg:        r,
		alias:      alias,
		importPath: importPath,
		own:        mapset.NewThreadUnsafeSet(own...),
		deps:       mapset.NewThreadUnsafeSet(deps...),
	}, nil
}
