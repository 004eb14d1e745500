package codegen

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// names hands out identifiers within one Go scope. A clash is settled by
// appending suffix until the name is free, so the first claimant keeps the
// natural name.
type names struct {
	taken  mapset.Set[string]
	suffix string
}

func newNames(suffix string, reserved ...string) *names {
	return &names{taken: mapset.NewThreadUnsafeSet(reserved...), suffix: suffix}
}

// claim returns name, or name with suffixes, and marks the result taken.
func (n *names) claim(name string) string {
	for n.taken.Contains(name) {
		name += n.suffix
	}
	n.taken.Add(name)
	return name
}

// Identifiers every module file declares.
var moduleLevelNames = []string{"PackageAddress", "ModuleName", "PackageID"}
