package config

import (
	"context"

	"github.com/vk/movegen/internal/network"
)

// Loader reads a manifest from one or more paths.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Manifest, error)
}

// Manifest is everything one generation run needs.
type Manifest struct {
	Output   Output
	Networks network.Table
	// Bindings are generated in order. A binding may only depend on
	// bindings listed before it.
	Bindings []*Binding
}

// Output says where generated packages go.
type Output struct {
	// Dir is the directory holding one sub-directory per binding.
	Dir string `validate:"required"`
	// ImportPath is the Go import path of Dir.
	ImportPath string `validate:"required"`
}

// Binding asks for the bindings of one Move package.
type Binding struct {
	// Alias names the generated Go package.
	Alias string
	// Network is the network the package is read from.
	Network string
	// Package is an address or an MVR name.
	Package string
	// Deps are the aliases of earlier bindings whose datatypes this
	// package may reference.
	Deps []string
	// Source is where the binding was declared, for error messages.
	Source string
}
