package codegen

import (
	"context"
	"fmt"
	"path"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/typemap"
)

// Target is where a package's bindings go and how their datatypes are
// resolved. *registry.BuildContext implements it.
type Target interface {
	typemap.Resolver
	Alias() string
	ImportPath() string
}

type moduleGen struct {
	pkg      *model.Package
	mod      *model.Module
	mapper   *typemap.Mapper
	declared mapset.Set[string]
}

// Generate builds the files for pkg. The first file is the package file;
// one file follows for every module that declares anything, in module name
// order.
func Generate(ctx context.Context, pkg *model.Package, target Target) ([]*File, error) {
	logger := ctxlog.FromContext(ctx).With("alias", target.Alias())
	mapper := typemap.New(target)
	root := gotype.PackageName(target.Alias())

	files := []*File{{
		Dir:        root,
		Name:       root + ".go",
		Package:    root,
		ImportPath: target.ImportPath(),
		Doc: []string{
			fmt.Sprintf("Package %s holds bindings for the Move package at %s.", root, pkg.Address.ShortString()),
			"Each Move module is a sub-package.",
		},
		PackageHeader: &PackageHeader{Address: pkg.Address, Version: pkg.Version},
	}}

	for _, m := range pkg.Modules {
		if m.Empty() {
			logger.Debug("Skipping module with nothing to generate.", "module", m.Name)
			continue
		}
		g := &moduleGen{pkg: pkg, mod: m, mapper: mapper, declared: mapset.NewThreadUnsafeSet(moduleLevelNames...)}
		f, err := g.file(root, target.ImportPath())
		if err != nil {
			return nil, err
		}
		logger.Debug("Generated module.", "module", m.Name, "types", len(f.Types), "funcs", len(f.Funcs))
		files = append(files, f)
	}
	return files, nil
}

func (g *moduleGen) file(root, importRoot string) (*File, error) {
	name := gotype.PackageName(g.mod.Name)
	f := &File{
		Dir:        path.Join(root, name),
		Name:       name + ".go",
		Package:    name,
		ImportPath: typemap.ModulePath(importRoot, g.mod.Name),
		Doc: []string{
			fmt.Sprintf("Package %s holds bindings for the Move module %s::%s.", name, g.mod.Address.ShortString(), g.mod.Name),
		},
		ModuleHeader: &ModuleHeader{Address: g.mod.Address, Module: g.mod.Name},
	}

	for _, n := range g.mod.DatatypeNames() {
		goName := g.typeName(n)
		if lo.Contains(moduleLevelNames, goName) {
			return nil, &UnsupportedPatternError{Module: g.mod.Name, Declaration: n,
				Reason: fmt.Sprintf("Go name %s is reserved for the module header", goName)}
		}
		if g.declared.Contains(goName) {
			return nil, &UnsupportedPatternError{Module: g.mod.Name, Declaration: n,
				Reason: fmt.Sprintf("Go name %s is used by another datatype", goName)}
		}
		g.declared.Add(goName)
	}

	for _, s := range g.mod.Structs {
		td, err := g.structDecl(s)
		if err != nil {
			return nil, err
		}
		f.Types = append(f.Types, td)
	}
	for _, e := range g.mod.Enums {
		tds, err := g.enumDecls(e)
		if err != nil {
			return nil, err
		}
		f.Types = append(f.Types, tds...)
	}

	funcNames := newNames("Call", moduleLevelNames...)
	funcNames.taken.Append(g.declared.ToSlice()...)
	for _, fn := range g.mod.Functions {
		decl, err := g.funcDecl(fn, funcNames.claim(gotype.Exported(fn.Name)))
		if err != nil {
			return nil, err
		}
		f.Funcs = append(f.Funcs, decl)
	}
	return f, nil
}
