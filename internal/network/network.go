// Package network names the Sui networks movegen can read from and the
// service endpoints used for each, and builds the HTTP client shared by the
// resolver and the provider.
package network

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// Endpoints are the services consulted for one network. A zero Timeout
// means requests do not time out.
type Endpoints struct {
	GraphQL string        `validate:"required,url"`
	MVR     string        `validate:"required,url"`
	Timeout time.Duration `validate:"gte=0"`
}

// Table maps a network name to its endpoints.
type Table map[string]Endpoints

// DefaultTable returns the public endpoints of mainnet and testnet.
func DefaultTable() Table {
	return Table{
		Mainnet: {
			GraphQL: "https://sui-mainnet.mystenlabs.com/graphql",
			MVR:     "https://mainnet.mvr.mystenlabs.com",
		},
		Testnet: {
			GraphQL: "https://sui-testnet.mystenlabs.com/graphql",
			MVR:     "https://testnet.mvr.mystenlabs.com",
		},
	}
}

// Lookup returns the endpoints of the named network.
func (t Table) Lookup(name string) (Endpoints, error) {
	e, ok := t[name]
	if !ok {
		return Endpoints{}, fmt.Errorf("unknown network %q (known: %s)", name, strings.Join(t.Names(), ", "))
	}
	return e, nil
}

// Override merges the non-zero fields of e into the named entry, adding the
// network if it is not known yet.
func (t Table) Override(name string, e Endpoints) {
	cur := t[name]
	if e.GraphQL != "" {
		cur.GraphQL = e.GraphQL
	}
	if e.MVR != "" {
		cur.MVR = e.MVR
	}
	if e.Timeout != 0 {
		cur.Timeout = e.Timeout
	}
	t[name] = cur
}

// Names lists the known networks in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewClient returns an HTTP client configured for e. The caller closes it.
func NewClient(e Endpoints) *resty.Client {
	c := resty.New().
		SetHeader("User-Agent", "movegen").
		SetHeader("Accept", "application/json")
	if e.Timeout > 0 {
		c.SetTimeout(e.Timeout)
	}
	return c
}
