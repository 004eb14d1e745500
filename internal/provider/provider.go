// Package provider fetches the schema of one on-chain package through the
// Sui GraphQL service and decodes it into a model.Package.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"github.com/vk/movegen/internal/bytecode"
	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/pkg/movetypes"
	"github.com/vk/movegen/pkg/movetypes/bcs"
)

// FetchError reports a failed schema query.
type FetchError struct {
	Address model.Address
	Reason  string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch package %s: %s", e.Address.ShortString(), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

const packageQuery = `{package(address: %q) {moduleBcs, typeOrigins {module, struct, definingId}, version}}`

type graphqlRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Package *packageData `json:"package"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type packageData struct {
	ModuleBcs   string `json:"moduleBcs"`
	TypeOrigins []struct {
		Module     string `json:"module"`
		Struct     string `json:"struct"`
		DefiningID string `json:"definingId"`
	} `json:"typeOrigins"`
	Version uint64 `json:"version"`
}

// Provider queries one GraphQL endpoint.
type Provider struct {
	client     *resty.Client
	graphqlURL string
}

// New returns a provider that posts queries to graphqlURL with client.
func New(client *resty.Client, graphqlURL string) *Provider {
	return &Provider{client: client, graphqlURL: graphqlURL}
}

// Fetch returns the decoded schema of the package at addr. Datatype
// references inside the package carry their defining address.
func (p *Provider) Fetch(ctx context.Context, addr model.Address) (*model.Package, error) {
	logger := ctxlog.FromContext(ctx).With("package", addr.ShortString())

	req := graphqlRequest{Query: fmt.Sprintf(packageQuery, addr.String())}
	var out graphqlResponse
	res, err := p.client.R().
		SetContext(ctx).
		SetContentType("application/json").
		SetBody(req).
		SetResult(&out).
		Post(p.graphqlURL)
	if err != nil {
		return nil, &FetchError{Address: addr, Reason: "request failed", Err: err}
	}
	if res.IsError() {
		return nil, &FetchError{Address: addr, Reason: fmt.Sprintf("service returned %s", res.Status())}
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			msgs[i] = e.Message
		}
		return nil, &FetchError{Address: addr, Reason: "query failed: " + strings.Join(msgs, "; ")}
	}
	if out.Data.Package == nil {
		return nil, &FetchError{Address: addr, Reason: "package not found"}
	}
	logger.Debug("Fetched package schema.", "version", out.Data.Package.Version, "origins", len(out.Data.Package.TypeOrigins))

	pkg, err := decode(ctx, addr, out.Data.Package)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", addr.ShortString(), err)
	}
	logger.Debug("Decoded package schema.", "modules", len(pkg.Modules))
	return pkg, nil
}

func decodeError(format string, args ...any) *bytecode.DecodeError {
	return &bytecode.DecodeError{Offset: -1, Reason: fmt.Sprintf(format, args...)}
}

// decode turns a raw query result into a model.Package.
func decode(ctx context.Context, addr model.Address, data *packageData) (*model.Package, error) {
	raw, err := base64.StdEncoding.DecodeString(data.ModuleBcs)
	if err != nil {
		return nil, decodeError("module map is not valid base64: %v", err)
	}
	var payloads map[string][]byte
	if err := bcs.Unmarshal(raw, &payloads); err != nil {
		return nil, decodeError("module map is not a valid BCS map: %v", err)
	}

	origins := make([]model.TypeOrigin, 0, len(data.TypeOrigins))
	for _, o := range data.TypeOrigins {
		def, err := movetypes.ParseAddress(o.DefiningID)
		if err != nil {
			return nil, decodeError("type origin %s::%s: %v", o.Module, o.Struct, err)
		}
		origins = append(origins, model.TypeOrigin{Module: o.Module, Datatype: o.Struct, DefiningID: def})
	}
	table, err := model.NewTypeOriginTable(origins)
	if err != nil {
		return nil, decodeError("%v", err)
	}

	modules, err := decodeModules(ctx, payloads)
	if err != nil {
		return nil, err
	}

	pkg := &model.Package{
		Address:     addr,
		Version:     data.Version,
		Modules:     modules,
		TypeOrigins: table,
	}
	if err := resolveOrigins(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// decodeModules decodes every payload in parallel. The result is sorted by
// module name.
func decodeModules(ctx context.Context, payloads map[string][]byte) ([]*model.Module, error) {
	names := make([]string, 0, len(payloads))
	for n := range payloads {
		names = append(names, n)
	}
	sort.Strings(names)

	modules := make([]*model.Module, len(names))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			m, err := bytecode.Decode(payloads[name])
			if err != nil {
				return fmt.Errorf("module %s: %w", name, err)
			}
			if m.Name != name {
				return decodeError("module %s: payload declares module %s", name, m.Name)
			}
			modules[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return modules, nil
}

// resolveOrigins rewrites every reference to a datatype of pkg to the
// datatype's defining address and moves the modules to the package address.
func resolveOrigins(pkg *model.Package) error {
	self := map[model.Address]struct{}{}
	for _, m := range pkg.Modules {
		self[m.Address] = struct{}{}
		for _, name := range m.DatatypeNames() {
			if _, ok := pkg.TypeOrigins.Lookup(m.Name, name); !ok {
				return decodeError("no type origin for %s::%s", m.Name, name)
			}
		}
	}

	var missing error
	rewrite := func(t model.Type) model.Type {
		return t.Map(func(ref model.DatatypeRef) model.DatatypeRef {
			if _, ok := self[ref.Address]; !ok {
				return ref
			}
			def, ok := pkg.TypeOrigins.Lookup(ref.Module, ref.Name)
			if !ok {
				if missing == nil {
					missing = decodeError("no type origin for %s::%s", ref.Module, ref.Name)
				}
				return ref
			}
			ref.Address = def
			return ref
		})
	}
	rewriteFields := func(fields []model.Field) {
		for i := range fields {
			fields[i].Type = rewrite(fields[i].Type)
		}
	}
	rewriteTypes := func(types []model.Type) {
		for i := range types {
			types[i] = rewrite(types[i])
		}
	}

	for _, m := range pkg.Modules {
		m.Address = pkg.Address
		for _, s := range m.Structs {
			rewriteFields(s.Fields)
		}
		for _, e := range m.Enums {
			for i := range e.Variants {
				rewriteFields(e.Variants[i].Fields)
			}
		}
		for _, f := range m.Functions {
			rewriteTypes(f.Parameters)
			rewriteTypes(f.Return)
		}
	}
	return missing
}
