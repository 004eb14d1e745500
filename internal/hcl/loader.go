package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/movegen/internal/config"
	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/fsutil"
	"github.com/vk/movegen/internal/network"
	"github.com/vk/movegen/internal/schema"
)

// DefaultOutputDir is used when the output block sets no dir.
const DefaultOutputDir = "bindings"

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	env map[string]string
}

// NewLoader returns a loader whose manifests see env as the `env` object.
func NewLoader(env map[string]string) *Loader {
	return &Loader{env: env}
}

// Load parses every manifest file found under paths and merges them. The
// result is not validated; call Manifest.Validate.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findManifestFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	evalCtx, err := evalContext(l.env)
	if err != nil {
		return nil, err
	}

	m := &config.Manifest{Networks: network.DefaultTable()}
	var outputRange *hcl.Range
	var diags hcl.Diagnostics
	parser := hclparse.NewParser()

	for _, file := range files {
		f, fileDiags := parser.ParseHCLFile(file)
		diags = diags.Extend(fileDiags)
		if fileDiags.HasErrors() {
			continue
		}
		content, contentDiags := f.Body.Content(schema.Root)
		diags = diags.Extend(contentDiags)

		for _, blk := range content.Blocks {
			switch blk.Type {
			case schema.OutputBlock:
				if outputRange != nil {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Duplicate output block",
						Detail:   fmt.Sprintf("The output block was already declared at %s.", outputRange),
						Subject:  blk.DefRange.Ptr(),
					})
					continue
				}
				outputRange = blk.DefRange.Ptr()
				var o schema.Output
				diags = diags.Extend(gohcl.DecodeBody(blk.Body, evalCtx, &o))
				m.Output = translateOutput(&o, filepath.Dir(file))

			case schema.NetworkBlock:
				n := schema.Network{Name: blk.Labels[0]}
				diags = diags.Extend(gohcl.DecodeBody(blk.Body, evalCtx, &n))
				e, d := translateNetwork(&n, blk.Body)
				diags = diags.Extend(d)
				m.Networks.Override(n.Name, e)
				logger.Debug("Network endpoints overridden.", "network", n.Name)

			case schema.BindingBlock:
				b := schema.Binding{Alias: blk.Labels[0]}
				d := gohcl.DecodeBody(blk.Body, evalCtx, &b)
				diags = diags.Extend(d)
				if d.HasErrors() {
					continue
				}
				binding, d := translateBinding(ctx, &b, blk.DefRange)
				diags = diags.Extend(d)
				m.Bindings = append(m.Bindings, binding)
			}
		}
	}

	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to load manifest: %w", diags)
	}
	if outputRange == nil {
		return nil, errors.New("failed to load manifest: no output block declared")
	}
	logger.Debug("HCL loading complete.", "bindings", len(m.Bindings), "networks", len(m.Networks))
	return m, nil
}

func translateOutput(o *schema.Output, base string) config.Output {
	dir := o.Dir
	if dir == "" {
		dir = DefaultOutputDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	return config.Output{Dir: dir, ImportPath: o.ImportPath}
}

func translateNetwork(n *schema.Network, body hcl.Body) (network.Endpoints, hcl.Diagnostics) {
	e := network.Endpoints{GraphQL: n.GraphQL, MVR: n.MVR}
	if n.Timeout == "" {
		return e, nil
	}
	d, err := time.ParseDuration(n.Timeout)
	if err != nil || d < 0 {
		return e, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid timeout",
			Detail:   fmt.Sprintf("The timeout of network %q must be a non-negative duration such as \"30s\", got %q.", n.Name, n.Timeout),
			Subject:  body.MissingItemRange().Ptr(),
		}}
	}
	e.Timeout = d
	return e, nil
}

func translateBinding(ctx context.Context, b *schema.Binding, rng hcl.Range) (*config.Binding, hcl.Diagnostics) {
	out := &config.Binding{
		Alias:   b.Alias,
		Network: b.Network,
		Package: b.Package,
		Source:  rng.String(),
	}
	if out.Network == "" {
		out.Network = network.Mainnet
	}
	deps, diags := depAliases(ctx, b.Deps)
	out.Deps = deps
	return out, diags
}

// findManifestFiles expands directories into the .hcl files they contain.
// Files of one directory are returned in name order.
func findManifestFiles(paths []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("error accessing manifest path %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error searching %s for manifest files: %w", p, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no manifest files found")
	}
	return files, nil
}
