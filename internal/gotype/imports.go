package gotype

import (
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Import is one entry of a file's import block.
type Import struct {
	Name string
	Path string
}

// Explicit reports whether the import needs a name in front of its path.
func (i Import) Explicit() bool {
	return i.Name != pathBase(i.Path)
}

// Imports assigns package names to the import paths used by one file.
// Pinned paths are named first, then the rest in sorted path order, so the
// result does not depend on the order in which paths were added.
type Imports struct {
	self   string
	paths  mapset.Set[string]
	pinned []string
	taken  mapset.Set[string]
	names  map[string]string
}

// NewImports starts the import set of the file for package self.
func NewImports(self string) *Imports {
	return &Imports{
		self:  self,
		paths: mapset.NewThreadUnsafeSet[string](),
		taken: mapset.NewThreadUnsafeSet[string](),
	}
}

// Reserve keeps names free for identifiers declared in the file.
func (im *Imports) Reserve(names ...string) {
	im.taken.Append(names...)
	im.names = nil
}

// Pin gives paths priority for their natural names. Pinning does not add
// the path to the import block.
func (im *Imports) Pin(paths ...string) {
	im.pinned = append(im.pinned, paths...)
	im.names = nil
}

// Add records the paths e refers to.
func (im *Imports) Add(e Expr) {
	for _, p := range e.Paths() {
		im.AddPath(p)
	}
}

// AddPath records one import path. The file's own package is ignored.
func (im *Imports) AddPath(path string) {
	if path == im.self {
		return
	}
	im.paths.Add(path)
	im.names = nil
}

func (im *Imports) assign() {
	if im.names != nil {
		return
	}
	im.names = make(map[string]string, im.paths.Cardinality())
	taken := im.taken.Clone()
	order := make([]string, 0, len(im.pinned)+im.paths.Cardinality())
	for _, p := range im.pinned {
		if im.paths.Contains(p) {
			order = append(order, p)
		}
	}
	order = append(order, im.Paths()...)
	for _, p := range order {
		if _, done := im.names[p]; done {
			continue
		}
		base := pathBase(p)
		name := base
		if taken.Contains(name) {
			parent := pathBase(strings.TrimSuffix(p, "/"+base))
			name = parent + "_" + base
			for i := 2; taken.Contains(name); i++ {
				name = parent + "_" + base + strconv.Itoa(i)
			}
		}
		taken.Add(name)
		im.names[p] = name
	}
}

// Paths returns the recorded paths, sorted.
func (im *Imports) Paths() []string {
	out := im.paths.ToSlice()
	sort.Strings(out)
	return out
}

// Name returns the name the file uses for path. It is the Qualifier of the
// file.
func (im *Imports) Name(path string) string {
	if path == im.self {
		return ""
	}
	im.assign()
	if n, ok := im.names[path]; ok {
		return n
	}
	return pathBase(path)
}

// List returns the import block entries, sorted by path.
func (im *Imports) List() []Import {
	im.assign()
	paths := im.Paths()
	out := make([]Import, len(paths))
	for i, p := range paths {
		out[i] = Import{Name: im.names[p], Path: p}
	}
	return out
}

func pathBase(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}
