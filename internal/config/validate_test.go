package config

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/movegen/internal/network"
)

func validManifest() *Manifest {
	return &Manifest{
		Output:   Output{Dir: "bindings", ImportPath: "example.com/app/bindings"},
		Networks: network.DefaultTable(),
		Bindings: []*Binding{
			{Alias: "sui", Network: network.Mainnet, Package: "0x2"},
			{Alias: "app", Network: network.Testnet, Package: "@app/core", Deps: []string{"sui"}},
		},
	}
}

func TestManifest_Validate_Valid(t *testing.T) {
	require.NoError(t, validManifest().Validate())
}

func TestManifest_Validate_ReportsEveryProblem(t *testing.T) {
	m := validManifest()
	m.Output.ImportPath = ""
	m.Networks.Override("local", network.Endpoints{GraphQL: "not a url"})
	m.Bindings = []*Binding{
		{Alias: "app", Network: network.Mainnet, Package: "0xa", Deps: []string{"sui"}, Source: "movegen.hcl:5,1-15"},
		{Alias: "sui", Network: "devnet", Package: ""},
		{Alias: "sui", Network: network.Mainnet, Package: "0x2"},
		{Alias: "Sui", Network: network.Mainnet, Package: "0x2"},
		{Alias: "my-pkg", Network: network.Mainnet, Package: "0x3", Deps: []string{"my-pkg", "sui", "sui"}},
	}

	err := m.Validate()
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)

	var msgs []string
	for _, e := range merr.Errors {
		msgs = append(msgs, e.Error())
	}
	assert.ElementsMatch(t, []string{
		`output: ImportPath is required`,
		`network "local": GraphQL fails the "url" rule`,
		`network "local": MVR is required`,
		`binding "app" (movegen.hcl:5,1-15): dependency "sui" is not declared before it`,
		`binding "sui": unknown network "devnet"`,
		`binding "sui": package is required`,
		`binding "sui": alias is declared more than once`,
		`binding "Sui": alias maps to the same Go package as "sui"`,
		`binding "my-pkg": alias is not a valid Go identifier`,
		`binding "my-pkg": binding depends on itself`,
		`binding "my-pkg": dependency "sui" is listed twice`,
	}, msgs)
}

func TestManifest_Validate_NoBindings(t *testing.T) {
	m := validManifest()
	m.Bindings = nil
	require.ErrorContains(t, m.Validate(), "manifest declares no bindings")
}

func TestManifest_Validate_MainAlias(t *testing.T) {
	m := validManifest()
	m.Bindings = append(m.Bindings, &Binding{Alias: "main", Network: network.Mainnet, Package: "0x3"})
	require.NoError(t, m.Validate(), "main is generated as main_")

	m.Bindings = append(m.Bindings, &Binding{Alias: "main_", Network: network.Mainnet, Package: "0x4"})
	assert.ErrorContains(t, m.Validate(), `binding "main_": alias maps to the same Go package as "main"`)
}
