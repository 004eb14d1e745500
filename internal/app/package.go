package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/movegen/internal/dump"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/session"
)

func (a *App) backend(ctx context.Context) (*session.Backend, error) {
	table, err := a.config.endpoints()
	if err != nil {
		return nil, err
	}
	return session.NetworkDialer(table)(ctx, a.config.Network)
}

// Resolve returns the address ref names on the configured network.
func (a *App) Resolve(ctx context.Context, ref string) (model.Address, error) {
	ctx = a.context(ctx)
	be, err := a.backend(ctx)
	if err != nil {
		return model.Address{}, err
	}
	defer be.Close()
	return be.Resolver.Resolve(ctx, ref)
}

// Fetch resolves ref and downloads its decoded schema.
func (a *App) Fetch(ctx context.Context, ref string) (*model.Package, error) {
	ctx = a.context(ctx)
	be, err := a.backend(ctx)
	if err != nil {
		return nil, err
	}
	defer be.Close()

	addr, err := be.Resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return be.Fetcher.Fetch(ctx, addr)
}

// Dump fetches ref and stores its schema at path. The file is replaced
// atomically.
func (a *App) Dump(ctx context.Context, ref, path string) (*model.Package, error) {
	pkg, err := a.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".movegen-dump-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())

	if err := dump.Write(f, pkg); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to write dump: %w", err)
	}
	a.logger.Info("Wrote package dump.", "path", path, "address", pkg.Address.ShortString())
	return pkg, nil
}

// Inspect reads a dump written by Dump.
func (a *App) Inspect(path string) (*model.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dump.Read(f)
}
