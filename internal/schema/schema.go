// Package schema describes the HCL syntax of a movegen manifest: the
// top-level blocks of a file and the gohcl-tagged structs each block body
// decodes into. The hcl package translates them into the format-agnostic
// config model.
package schema

import "github.com/hashicorp/hcl/v2"

const (
	OutputBlock  = "output"
	NetworkBlock = "network"
	BindingBlock = "binding"
)

// Root lists the blocks allowed at the top of a manifest file.
var Root = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: OutputBlock},
		{Type: NetworkBlock, LabelNames: []string{"name"}},
		{Type: BindingBlock, LabelNames: []string{"alias"}},
	},
}

// Output is the body of the `output` block.
type Output struct {
	Dir        string `hcl:"dir,optional"`
	ImportPath string `hcl:"import_path"`
}

// Network is the body of a `network "name"` block, which overrides or adds
// endpoints. Name comes from the label.
type Network struct {
	Name    string
	GraphQL string `hcl:"graphql,optional"`
	MVR     string `hcl:"mvr,optional"`
	Timeout string `hcl:"timeout,optional"`
}

// Binding is the body of a `binding "alias"` block. Alias comes from the
// label. Deps is kept as an expression because its elements are traversals
// such as binding.sui, not values.
type Binding struct {
	Alias   string
	Network string         `hcl:"network,optional"`
	Package string         `hcl:"package"`
	Deps    hcl.Expression `hcl:"deps,optional"`
}
