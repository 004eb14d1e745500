// Package resolver turns a package reference into a canonical package
// address. A reference is either a hex address or a Move Registry name such
// as "@mysten/sui" or "app.sui/core".
package resolver

import (
	"context"
	"fmt"
	"strings"

	"resty.dev/v3"

	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/pkg/movetypes"
)

// ResolutionError reports a reference that could not be turned into an
// address.
type ResolutionError struct {
	Ref    string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolve package %q: %s", e.Ref, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// IsName reports whether ref is a Move Registry name rather than an address.
func IsName(ref string) bool {
	return strings.Contains(ref, "@") || strings.Contains(ref, ".sui")
}

// Resolver looks names up in one Move Registry instance. Every call performs
// a fresh lookup.
type Resolver struct {
	client *resty.Client
	mvrURL string
}

// New returns a resolver that queries the registry at mvrURL with client.
func New(client *resty.Client, mvrURL string) *Resolver {
	return &Resolver{client: client, mvrURL: strings.TrimRight(mvrURL, "/")}
}

type resolution struct {
	PackageID string `json:"package_id"`
}

// Resolve returns the address ref names.
func (r *Resolver) Resolve(ctx context.Context, ref string) (model.Address, error) {
	logger := ctxlog.FromContext(ctx)

	if !IsName(ref) {
		addr, err := movetypes.ParseAddress(ref)
		if err != nil {
			return model.Address{}, &ResolutionError{Ref: ref, Reason: "malformed address", Err: err}
		}
		return addr, nil
	}

	url := r.mvrURL + "/v1/resolution/" + ref
	logger.Debug("Resolving package name.", "name", ref, "url", url)

	var out resolution
	res, err := r.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(url)
	if err != nil {
		return model.Address{}, &ResolutionError{Ref: ref, Reason: "registry request failed", Err: err}
	}
	if res.IsError() {
		return model.Address{}, &ResolutionError{Ref: ref, Reason: fmt.Sprintf("registry returned %s", res.Status())}
	}
	if out.PackageID == "" {
		return model.Address{}, &ResolutionError{Ref: ref, Reason: "registry response has no package_id"}
	}
	addr, err := movetypes.ParseAddress(out.PackageID)
	if err != nil {
		return model.Address{}, &ResolutionError{Ref: ref, Reason: "registry returned a malformed address", Err: err}
	}
	logger.Debug("Resolved package name.", "name", ref, "address", addr.String())
	return addr, nil
}
