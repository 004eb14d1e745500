// Package session runs one generation. It walks the manifest's bindings in
// order, fetching each package and turning it into rendered files. Nothing
// is written here; the caller hands the files to the output package once
// the whole run has succeeded.
package session

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/vk/movegen/internal/codegen"
	"github.com/vk/movegen/internal/config"
	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/output"
	"github.com/vk/movegen/internal/registry"
	"github.com/vk/movegen/internal/render"
)

// Result is what generating one binding produced.
type Result struct {
	Alias      string
	ImportPath string
	Address    model.Address
	Version    uint64
	Modules    int
	Files      []output.File
}

// Session holds the state shared by the bindings of one run: the address
// registry and the open network backends.
type Session struct {
	importPath string
	dial       Dialer
	registry   *registry.Registry
	backends   map[string]*Backend
}

// New returns a session generating under importPath. Networks are dialed on
// first use.
func New(importPath string, dial Dialer) *Session {
	return &Session{
		importPath: importPath,
		dial:       dial,
		registry:   registry.New(),
		backends:   map[string]*Backend{},
	}
}

// Registry returns the session's registry. This is primarily for testing.
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

// Backend returns the backend of the named network, dialing it once.
func (s *Session) Backend(ctx context.Context, name string) (*Backend, error) {
	if be, ok := s.backends[name]; ok {
		return be, nil
	}
	be, err := s.dial(ctx, name)
	if err != nil {
		return nil, err
	}
	s.backends[name] = be
	return be, nil
}

// Run generates every binding in order and stops at the first failure.
func (s *Session) Run(ctx context.Context, bindings []*config.Binding) ([]*Result, error) {
	results := make([]*Result, 0, len(bindings))
	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.Generate(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Alias, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Generate produces the files of one binding. Its dependencies must have
// been generated earlier in the session.
func (s *Session) Generate(ctx context.Context, b *config.Binding) (*Result, error) {
	ctx, logger := ctxlog.With(ctx, "alias", b.Alias)
	logger.Info("Generating bindings.", "package", b.Package, "network", b.Network)

	be, err := s.Backend(ctx, b.Network)
	if err != nil {
		return nil, err
	}
	addr, err := be.Resolver.Resolve(ctx, b.Package)
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved package reference.", "address", addr.ShortString())

	pkg, err := be.Fetcher.Fetch(ctx, addr)
	if err != nil {
		return nil, err
	}

	importPath := path.Join(s.importPath, gotype.PackageName(b.Alias))
	own := pkg.OwnAddresses()
	s.registry.Register(ctx, b.Alias, importPath, own)
	bc, err := s.registry.NewBuildContext(b.Alias, importPath, own, b.Deps)
	if err != nil {
		return nil, err
	}

	files, err := codegen.Generate(ctx, pkg, bc)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Alias:      b.Alias,
		ImportPath: importPath,
		Address:    pkg.Address,
		Version:    pkg.Version,
		Modules:    len(files) - 1,
	}
	for _, f := range files {
		src, err := render.File(f)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, output.File{Path: filepath.Join(f.Dir, f.Name), Content: src})
	}
	logger.Info("Generated bindings.", "address", pkg.Address.ShortString(), "version", pkg.Version, "files", len(res.Files))
	return res, nil
}

// Close releases every backend the session dialed.
func (s *Session) Close() error {
	names := lo.Keys(s.backends)
	sort.Strings(names)
	var errs *multierror.Error
	for _, name := range names {
		if err := s.backends[name].Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close network %q: %w", name, err))
		}
	}
	s.backends = map[string]*Backend{}
	return errs.ErrorOrNil()
}

// Files collects the files of every result, in order.
func Files(results []*Result) []output.File {
	return lo.FlatMap(results, func(r *Result, _ int) []output.File { return r.Files })
}
