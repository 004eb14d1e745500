package config

import (
	"errors"
	"fmt"
	"go/token"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/vk/movegen/internal/gotype"
)

var validate = validator.New()

// validateStruct checks the `validate` tags of v and returns one error per
// failed field, prefixed with scope.
func validateStruct(scope string, v any) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{fmt.Errorf("%s: %w", scope, err)}
	}
	out := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			out = append(out, fmt.Errorf("%s: %s is required", scope, fe.Field()))
			continue
		}
		out = append(out, fmt.Errorf("%s: %s fails the %q rule", scope, fe.Field(), fe.Tag()))
	}
	return out
}

func (b *Binding) scope() string {
	if b.Source == "" {
		return fmt.Sprintf("binding %q", b.Alias)
	}
	return fmt.Sprintf("binding %q (%s)", b.Alias, b.Source)
}

// Validate reports every problem in m. The result is nil or a
// *multierror.Error.
func (m *Manifest) Validate() error {
	var errs *multierror.Error
	for _, err := range validateStruct("output", m.Output) {
		errs = multierror.Append(errs, err)
	}
	for _, name := range m.Networks.Names() {
		for _, err := range validateStruct(fmt.Sprintf("network %q", name), m.Networks[name]) {
			errs = multierror.Append(errs, err)
		}
	}
	if len(m.Bindings) == 0 {
		errs = multierror.Append(errs, errors.New("manifest declares no bindings"))
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	dirs := map[string]string{}
	for _, b := range m.Bindings {
		scope := b.scope()
		if !token.IsIdentifier(b.Alias) {
			errs = multierror.Append(errs, fmt.Errorf("%s: alias is not a valid Go identifier", scope))
		}
		if seen.Contains(b.Alias) {
			errs = multierror.Append(errs, fmt.Errorf("%s: alias is declared more than once", scope))
		} else if other, ok := dirs[gotype.PackageName(b.Alias)]; ok {
			errs = multierror.Append(errs, fmt.Errorf("%s: alias maps to the same Go package as %q", scope, other))
		}
		if _, ok := m.Networks[b.Network]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("%s: unknown network %q", scope, b.Network))
		}
		if b.Package == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s: package is required", scope))
		}

		deps := mapset.NewThreadUnsafeSet[string]()
		for _, d := range b.Deps {
			switch {
			case d == b.Alias:
				errs = multierror.Append(errs, fmt.Errorf("%s: binding depends on itself", scope))
			case deps.Contains(d):
				errs = multierror.Append(errs, fmt.Errorf("%s: dependency %q is listed twice", scope, d))
			case !seen.Contains(d):
				errs = multierror.Append(errs, fmt.Errorf("%s: dependency %q is not declared before it", scope, d))
			}
			deps.Add(d)
		}

		seen.Add(b.Alias)
		dirs[gotype.PackageName(b.Alias)] = b.Alias
	}
	return errs.ErrorOrNil()
}
