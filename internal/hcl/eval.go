package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/schema"
)

// evalContext exposes env to manifest expressions as a map of strings.
func evalContext(env map[string]string) (*hcl.EvalContext, error) {
	if env == nil {
		env = map[string]string{}
	}
	val, err := gocty.ToCtyValue(env, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("convert environment: %w", err)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": val}}, nil
}

// isExprDefined reports whether expr was written in the source. gohcl fills
// an omitted optional expression with a placeholder whose range is empty.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	defined := rng.End.Byte > rng.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checked whether attribute is set.", "attribute", attrName, "range", rng.String(), "defined", defined)
	return defined
}

// depAliases reads a deps list such as [binding.sui, binding.app] and
// returns the referenced aliases in order.
func depAliases(ctx context.Context, expr hcl.Expression) ([]string, hcl.Diagnostics) {
	if !isExprDefined(ctx, expr, "deps") {
		return nil, nil
	}
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}

	aliases := make([]string, 0, len(items))
	for _, item := range items {
		alias, ok := bindingRef(item)
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid dependency",
				Detail:   fmt.Sprintf("A dependency must reference an earlier binding, such as %s.sui.", schema.BindingBlock),
				Subject:  item.Range().Ptr(),
			})
			continue
		}
		aliases = append(aliases, alias)
	}
	return aliases, diags
}

func bindingRef(expr hcl.Expression) (string, bool) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(trav) != 2 || trav.RootName() != schema.BindingBlock {
		return "", false
	}
	attr, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}
