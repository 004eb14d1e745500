package registry

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vk/movegen/internal/model"
)

// UnknownPackageError reports a datatype address that neither the package
// being generated nor any of its declared dependencies owns.
type UnknownPackageError struct {
	Address model.Address
	Alias   string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("package %q refers to a datatype at %s, which is not owned by it or any of its declared dependencies",
		e.Alias, e.Address.ShortString())
}

// BuildContext answers address lookups for one package generation.
type BuildContext struct {
	reg        *Registry
	alias      string
	importPath string
	own        mapset.Set[model.Address]
	deps       mapset.Set[string]
}

// Alias is the alias of the package being generated.
func (c *BuildContext) Alias() string { return c.alias }

// ImportPath is the import path of the package being generated.
func (c *BuildContext) ImportPath() string { return c.importPath }

// IsOwn reports whether addr belongs to the package being generated.
func (c *BuildContext) IsOwn(addr model.Address) bool {
	return c.own.Contains(addr)
}

// Resolve returns the bindings that own addr. Only the current package and
// its declared dependencies are consulted.
func (c *BuildContext) Resolve(addr model.Address) (Entry, error) {
	if c.own.Contains(addr) {
		return Entry{Alias: c.alias, ImportPath: c.importPath}, nil
	}
	if e, ok := c.reg.Lookup(addr); ok && c.deps.Contains(e.Alias) {
		return e, nil
	}
	return Entry{}, &UnknownPackageError{Address: addr, Alias: c.alias}
}
