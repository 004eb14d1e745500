package session

import (
	"context"

	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/network"
	"github.com/vk/movegen/internal/provider"
	"github.com/vk/movegen/internal/resolver"
)

// Resolver turns a package reference into an address.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (model.Address, error)
}

// Fetcher downloads and decodes a package.
type Fetcher interface {
	Fetch(ctx context.Context, addr model.Address) (*model.Package, error)
}

// Backend is the pair of services used for one network.
type Backend struct {
	Resolver Resolver
	Fetcher  Fetcher
	close    func() error
}

// Close releases the backend's HTTP client, if it owns one.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Dialer opens the backend of a network.
type Dialer func(ctx context.Context, network string) (*Backend, error)

// NetworkDialer dials the networks of table. Each network gets its own HTTP
// client shared by its resolver and provider.
func NetworkDialer(table network.Table) Dialer {
	return func(ctx context.Context, name string) (*Backend, error) {
		e, err := table.Lookup(name)
		if err != nil {
			return nil, err
		}
		client := network.NewClient(e)
		ctxlog.FromContext(ctx).Debug("Opened network client.", "network", name, "graphql", e.GraphQL, "mvr", e.MVR)
		return &Backend{
			Resolver: resolver.New(client, e.MVR),
			Fetcher:  provider.New(client, e.GraphQL),
			close:    client.Close,
		}, nil
	}
}
