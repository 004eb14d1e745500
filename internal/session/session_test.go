package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/movegen/internal/config"
	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/network"
	"github.com/vk/movegen/internal/output"
	"github.com/vk/movegen/internal/provider"
	"github.com/vk/movegen/internal/registry"
	"github.com/vk/movegen/internal/resolver"
	"github.com/vk/movegen/internal/testutil"
)

const importRoot = "example.com/app/bindings"

func newServer(t *testing.T) *testutil.SuiServer {
	t.Helper()
	srv := testutil.NewSuiServer(t, testutil.FrameworkPackage(), testutil.AppPackage())
	srv.Name("@app/core", testutil.AppAddress)
	return srv
}

func newSession(srv *testutil.SuiServer) *Session {
	return New(importRoot, NetworkDialer(network.Table{
		network.Mainnet: {GraphQL: srv.GraphQLURL(), MVR: srv.MVRURL()},
	}))
}

func bindings(appDeps ...string) []*config.Binding {
	return []*config.Binding{
		{Alias: "sui", Network: network.Mainnet, Package: "0x2"},
		{Alias: "app", Network: network.Mainnet, Package: "@app/core", Deps: appDeps},
	}
}

func fileMap(files []output.File) map[string]string {
	out := map[string]string{}
	for _, f := range files {
		out[f.Path] = string(f.Content)
	}
	return out
}

func TestRun_GeneratesBindingsInOrder(t *testing.T) {
	// --- Arrange ---
	ctx := ctxlog.Discard(context.Background())
	srv := newServer(t)
	s := newSession(srv)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	// --- Act ---
	results, err := s.Run(ctx, bindings("sui"))

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, results, 2)

	sui, app := results[0], results[1]
	assert.Equal(t, "sui", sui.Alias)
	assert.Equal(t, importRoot+"/sui", sui.ImportPath)
	assert.Equal(t, uint64(3), sui.Version)
	assert.Equal(t, 5, sui.Modules)

	assert.Equal(t, testutil.AppAddress, app.Address)
	assert.Equal(t, uint64(2), app.Version)
	assert.Equal(t, 2, app.Modules, "the empty math module emits nothing")

	files := fileMap(app.Files)
	assert.ElementsMatch(t, []string{"app/app.go", "app/events/events.go", "app/pool/pool.go"}, keys(files))
	assert.Contains(t, files["app/app.go"], "PackageVersion uint64 = 2")
	assert.Contains(t, files["app/pool/pool.go"], `"example.com/app/bindings/sui/coin"`)

	all := fileMap(Files(results))
	assert.Len(t, all, len(sui.Files)+len(app.Files))
	assert.Contains(t, all, "sui/coin/coin.go")

	entry, ok := s.Registry().Lookup(testutil.AppOriginalAddress)
	require.True(t, ok)
	assert.Equal(t, registry.Entry{Alias: "app", ImportPath: importRoot + "/app"}, entry)

	assert.Equal(t, int32(1), srv.MVRRequests.Load(), "only the name is looked up")
	assert.Equal(t, int32(2), srv.GraphQLRequests.Load())
}

func TestRun_UndeclaredDependencyFails(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	s := newSession(newServer(t))
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	results, err := s.Run(ctx, bindings())
	require.Error(t, err)
	assert.Nil(t, results)

	var unknown *registry.UnknownPackageError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, testutil.FrameworkAddress, unknown.Address)
	assert.Equal(t, "app", unknown.Alias)
	assert.True(t, strings.HasPrefix(err.Error(), `binding "app": `))
}

func TestRun_RegenerationIsByteIdentical(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	srv := newServer(t)

	first := newSession(srv)
	a, err := first.Run(ctx, bindings("sui"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newSession(srv)
	b, err := second.Run(ctx, bindings("sui"))
	require.NoError(t, err)
	require.NoError(t, second.Close())

	assert.Equal(t, Files(a), Files(b))
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	srv := newServer(t)
	s := newSession(srv)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	_, err := s.Run(ctx, []*config.Binding{
		{Alias: "missing", Network: network.Mainnet, Package: "0xdead"},
		{Alias: "sui", Network: network.Mainnet, Package: "0x2"},
	})
	var fetchErr *provider.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "package not found", fetchErr.Reason)
	assert.Equal(t, int32(1), srv.GraphQLRequests.Load(), "later bindings are not fetched")

	_, err = s.Run(ctx, []*config.Binding{{Alias: "x", Network: network.Mainnet, Package: "@nobody/here"}})
	var resErr *resolver.ResolutionError
	require.ErrorAs(t, err, &resErr)
}

func TestSession_BackendIsDialedOnce(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	dials := 0
	closed := 0
	s := New(importRoot, func(_ context.Context, name string) (*Backend, error) {
		if name != network.Mainnet {
			return nil, errors.New("no such network")
		}
		dials++
		return &Backend{close: func() error { closed++; return nil }}, nil
	})

	a, err := s.Backend(ctx, network.Mainnet)
	require.NoError(t, err)
	b, err := s.Backend(ctx, network.Mainnet)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, dials)

	_, err = s.Backend(ctx, network.Testnet)
	require.Error(t, err)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, closed)
}

func TestNetworkDialer_UnknownNetwork(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	_, err := NetworkDialer(network.DefaultTable())(ctx, "devnet")
	require.ErrorContains(t, err, `unknown network "devnet"`)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
