// Package render prints codegen Files as formatted Go source.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/vk/movegen/internal/codegen"
	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/typemap"
)

// Header is the first line of every generated file.
const Header = "// Code generated by movegen. DO NOT EDIT."

// Identifiers used by call stub bodies. Imports never take these names.
var stubLocals = []string{"b", "scope", "call", "res", "err", "v"}

var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

type printer struct {
	sb      strings.Builder
	imports *gotype.Imports
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) expr(e gotype.Expr) string {
	return e.Format(p.imports.Name)
}

func (p *printer) runtime(name string) string {
	return p.imports.Name(typemap.MovetypesPath) + "." + name
}

func (p *printer) ptb(name string) string {
	return p.imports.Name(typemap.PTBPath) + "." + name
}

// File returns the formatted source of f.
func File(f *codegen.File) ([]byte, error) {
	p := &printer{imports: collectImports(f)}

	p.line("%s", Header)
	p.line("")
	for _, d := range f.Doc {
		p.line("// %s", d)
	}
	p.line("package %s", f.Package)
	p.line("")

	if list := p.imports.List(); len(list) > 0 {
		p.line("import (")
		for _, im := range list {
			if im.Explicit() {
				p.line("\t%s %q", im.Name, im.Path)
			} else {
				p.line("\t%q", im.Path)
			}
		}
		p.line(")")
		p.line("")
	}

	switch {
	case f.PackageHeader != nil:
		p.packageHeader(f.PackageHeader)
	case f.ModuleHeader != nil:
		p.moduleHeader(f.ModuleHeader)
	}
	for _, td := range f.Types {
		p.typeDecl(td)
	}
	for _, fn := range f.Funcs {
		p.funcDecl(fn)
	}

	out, err := imports.Process(f.Dir+"/"+f.Name, []byte(p.sb.String()), formatOptions)
	if err != nil {
		return nil, fmt.Errorf("format %s/%s: %w", f.Dir, f.Name, err)
	}
	return out, nil
}

func collectImports(f *codegen.File) *gotype.Imports {
	im := gotype.NewImports(f.ImportPath)
	im.Pin(typemap.MovetypesPath, typemap.PTBPath)
	im.Reserve(stubLocals...)
	if f.ModuleHeader != nil || len(f.Types) > 0 {
		im.AddPath(typemap.MovetypesPath)
	}
	for _, td := range f.Types {
		for _, tp := range td.TypeParams {
			im.Add(tp.Constraint)
		}
		for _, fd := range td.Fields {
			im.Add(fd.Type)
		}
	}
	for _, fn := range f.Funcs {
		im.AddPath(typemap.PTBPath)
		for _, tp := range fn.TypeParams {
			im.Add(tp.Constraint)
		}
		for _, prm := range fn.Params {
			im.Reserve(prm.Name)
			im.Add(prm.Type)
		}
		for _, r := range fn.Results {
			im.Add(r.Type)
		}
	}
	return im
}

func (p *printer) packageHeader(h *codegen.PackageHeader) {
	p.line("const (")
	p.line("\t// PackageAddress is the on-chain address of this package version.")
	p.line("\tPackageAddress = %q", h.Address.String())
	p.line("\t// PackageVersion is the version of the package the bindings were generated from.")
	p.line("\tPackageVersion uint64 = %d", h.Version)
	p.line(")")
	p.line("")
}

func (p *printer) moduleHeader(h *codegen.ModuleHeader) {
	p.line("const (")
	p.line("\t// PackageAddress is the address calls are sent to.")
	p.line("\tPackageAddress = %q", h.Address.String())
	p.line("\t// ModuleName is the name of the Move module.")
	p.line("\tModuleName = %q", h.Module)
	p.line(")")
	p.line("")
	p.line("// PackageID is PackageAddress in parsed form.")
	p.line("var PackageID = %s(PackageAddress)", p.runtime("MustParseAddress"))
	p.line("")
}

func typeParamList(params []codegen.TypeParam, q func(gotype.Expr) string) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, tp := range params {
		parts[i] = tp.Name + " " + q(tp.Constraint)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func typeArgList(params []codegen.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, tp := range params {
		names[i] = tp.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func fieldTag(f codegen.Field) string {
	if f.Skipped() {
		return "`bcs:\"-\" json:\"-\"`"
	}
	json := f.JSON
	if f.OmitEmpty {
		json += ",omitempty"
	}
	return "`json:" + strconv.Quote(json) + "`"
}

func (p *printer) typeDecl(td *codegen.TypeDecl) {
	p.line("// %s", td.Doc)
	if len(td.Fields) == 0 {
		p.line("type %s%s struct{}", td.Name, typeParamList(td.TypeParams, p.expr))
	} else {
		p.line("type %s%s struct {", td.Name, typeParamList(td.TypeParams, p.expr))
		for _, f := range td.Fields {
			p.line("\t%s %s %s", f.Name, p.expr(f.Type), fieldTag(f))
		}
		p.line("}")
	}
	p.line("")

	self := td.Name + typeArgList(td.TypeParams)
	if td.Enum {
		p.line("// IsMoveEnum marks %s as a Move enum for BCS.", td.Name)
		p.line("func (%s) IsMoveEnum() {}", self)
		p.line("")
	}
	if id := td.Identity; id != nil {
		origin := fmt.Sprintf("%s(%q)", p.runtime("MustParseAddress"), id.Origin.String())
		p.line("// TypeOriginID returns the address of the package that first defined %s.", td.Name)
		p.line("func (%s) TypeOriginID() %s {", self, p.runtime("Address"))
		p.line("\treturn %s", origin)
		p.line("}")
		p.line("")

		p.line("// StructTag returns the Move type of %s.", td.Name)
		p.line("func (%s) StructTag() %s {", self, p.runtime("StructTag"))
		p.line("\treturn %s{", p.runtime("StructTag"))
		p.line("\t\tAddress: %s,", origin)
		p.line("\t\tModule: ModuleName,")
		p.line("\t\tName: %q,", id.Name)
		if len(td.TypeParams) > 0 {
			p.line("\t\tTypeParams: []%s{", p.runtime("TypeTag"))
			for _, tp := range td.TypeParams {
				p.line("\t\t\t%s[%s](),", p.runtime("MustTypeTagOf"), tp.Name)
			}
			p.line("\t\t},")
		}
		p.line("\t}")
		p.line("}")
		p.line("")
	}
	if td.IDField != "" {
		p.line("// ID returns the object ID of the %s.", td.Name)
		p.line("func (v %s) ID() %s {", self, p.runtime("ObjectID"))
		p.line("\treturn v.%s", td.IDField)
		p.line("}")
		p.line("")
	}
}

// resultType is the Go type a stub returns for r.
func (p *printer) resultType(r codegen.Result) string {
	inner := p.expr(r.Type)
	switch r.Kind {
	case codegen.Borrowed:
		return p.ptb("Ref") + "[" + inner + "]"
	case codegen.MutablyBorrowed:
		return p.ptb("MutRef") + "[" + inner + "]"
	}
	return "*" + p.ptb("Arg") + "[" + inner + "]"
}

func (p *printer) zeroResult(r codegen.Result) string {
	if r.Kind == codegen.Owned {
		return "nil"
	}
	return p.resultType(r) + "{}"
}

// wrapResult converts nested result i into the stub's return type.
func (p *printer) wrapResult(r codegen.Result, i int) string {
	inner := p.expr(r.Type)
	switch r.Kind {
	case codegen.Borrowed:
		return fmt.Sprintf("%s[%s](scope, res[%d])", p.ptb("RefOf"), inner, i)
	case codegen.MutablyBorrowed:
		return fmt.Sprintf("%s[%s](scope, res[%d])", p.ptb("MutRefOf"), inner, i)
	}
	return fmt.Sprintf("%s[%s](res[%d])", p.ptb("Handle"), inner, i)
}

func (p *printer) funcDecl(fn *codegen.Func) {
	params := []string{"b *" + p.ptb("Builder")}
	if fn.Scoped {
		params = append(params, "scope *"+p.ptb("Scope"))
	}
	for _, prm := range fn.Params {
		params = append(params, prm.Name+" "+p.expr(prm.Type))
	}

	results := make([]string, 0, len(fn.Results)+1)
	for _, r := range fn.Results {
		results = append(results, p.resultType(r))
	}
	results = append(results, "error")
	resultList := results[0]
	if len(results) > 1 {
		resultList = "(" + strings.Join(results, ", ") + ")"
	}

	p.line("// %s", fn.Doc)
	p.line("func %s%s(%s) %s {", fn.Name, typeParamList(fn.TypeParams, p.expr), strings.Join(params, ", "), resultList)

	chain := []string{fmt.Sprintf("%s(b, PackageID, ModuleName, %q)", p.ptb("NewCall"), fn.MoveName)}
	if fn.Scoped {
		chain = append(chain, "Within(scope)")
	}
	if len(fn.TypeParams) > 0 {
		tags := make([]string, len(fn.TypeParams))
		for i, tp := range fn.TypeParams {
			tags[i] = fmt.Sprintf("%s[%s]", p.runtime("TypeTagOf"), tp.Name)
		}
		chain = append(chain, "TypeArgs("+strings.Join(tags, ", ")+")")
	}
	if len(fn.Params) > 0 {
		names := make([]string, len(fn.Params))
		for i, prm := range fn.Params {
			names[i] = prm.Name
		}
		chain = append(chain, "Args("+strings.Join(names, ", ")+")")
	}
	p.line("\tcall := %s", strings.Join(chain, ".\n\t\t"))

	switch len(fn.Results) {
	case 0:
		p.line("\treturn call.Exec()")
	case 1:
		r := fn.Results[0]
		helper := "ResultArg"
		switch r.Kind {
		case codegen.Borrowed:
			helper = "ResultRef"
		case codegen.MutablyBorrowed:
			helper = "ResultMutRef"
		}
		p.line("\treturn %s[%s](call)", p.ptb(helper), p.expr(r.Type))
	default:
		zeros := make([]string, len(fn.Results))
		wrapped := make([]string, len(fn.Results))
		for i, r := range fn.Results {
			zeros[i] = p.zeroResult(r)
			wrapped[i] = p.wrapResult(r, i)
		}
		p.line("\tres, err := call.InvokeN(%d)", len(fn.Results))
		p.line("\tif err != nil {")
		p.line("\t\treturn %s, err", strings.Join(zeros, ", "))
		p.line("\t}")
		p.line("\treturn %s, nil", strings.Join(wrapped, ", "))
	}
	p.line("}")
	p.line("")
}
