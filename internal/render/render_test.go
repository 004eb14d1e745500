package render

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/movegen/internal/codegen"
	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/registry"
	"github.com/vk/movegen/internal/testutil"
)

const (
	suiRoot = "example.com/bindings/sui"
	appRoot = "example.com/bindings/app"
)

func generateApp(t *testing.T) []*codegen.File {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	pkg := testutil.AppPackage().Model()
	reg := registry.New()
	reg.Register(ctx, "sui", suiRoot, []model.Address{testutil.FrameworkAddress})
	bc, err := reg.NewBuildContext("app", appRoot, pkg.OwnAddresses(), []string{"sui"})
	require.NoError(t, err)
	files, err := codegen.Generate(ctx, pkg, bc)
	require.NoError(t, err)
	return files
}

// squash collapses runs of whitespace so assertions ignore gofmt alignment.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parse(t *testing.T, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.ParseComments)
	require.NoError(t, err, "generated source:\n%s", src)
	return f
}

func importPaths(f *ast.File) map[string]string {
	out := map[string]string{}
	for _, im := range f.Imports {
		p, _ := strconv.Unquote(im.Path.Value)
		name := ""
		if im.Name != nil {
			name = im.Name.Name
		}
		out[p] = name
	}
	return out
}

func TestFile_PackageFile(t *testing.T) {
	files := generateApp(t)
	src, err := File(files[0])
	require.NoError(t, err)

	f := parse(t, src)
	assert.Equal(t, "app", f.Name.Name)
	assert.Empty(t, f.Imports)
	assert.True(t, strings.HasPrefix(string(src), Header+"\n"))

	s := squash(string(src))
	assert.Contains(t, s, `PackageAddress = "0x00000000000000000000000000000000000000000000000000000000000000a2"`)
	assert.Contains(t, s, "PackageVersion uint64 = 2")
	assert.Contains(t, s, "// Package app holds bindings for the Move package at 0xa2.")
}

func TestFile_ModuleFile(t *testing.T) {
	files := generateApp(t)
	src, err := File(files[2])
	require.NoError(t, err)

	f := parse(t, src)
	assert.Equal(t, "pool", f.Name.Name)
	assert.Equal(t, map[string]string{
		"example.com/bindings/sui/balance":    "",
		"example.com/bindings/sui/coin":       "",
		"github.com/vk/movegen/pkg/movetypes": "",
		"github.com/vk/movegen/pkg/ptb":       "",
	}, importPaths(f))

	s := squash(string(src))
	for _, want := range []string{
		`ModuleName = "pool"`,
		"var PackageID = movetypes.MustParseAddress(PackageAddress)",
		"type Pool[T0 any, T1 any] struct {",
		"Id movetypes.ObjectID `json:\"id\"`",
		"ReserveX balance.Balance[T0] `json:\"reserve_x\"`",
		"Config Config `json:\"config\"`",
		"func (Pool[T0, T1]) TypeOriginID() movetypes.Address {",
		`Address: movetypes.MustParseAddress("0x00000000000000000000000000000000000000000000000000000000000000a1"),`,
		`Name: "Pool",`,
		"movetypes.MustTypeTagOf[T1](),",
		"func (v Pool[T0, T1]) ID() movetypes.ObjectID { return v.Id }",
		"Phantom0 movetypes.Phantom[T0] `bcs:\"-\" json:\"-\"`",
		"type Action[T0 any] struct { Deposit *ActionDeposit[T0] `json:\"Deposit,omitempty\"`",
		"func (Action[T0]) IsMoveEnum() {}",
		"type ActionClose[T0 any] struct{}",
		"V1 T0 `json:\"pos1\"`",
	} {
		assert.Contains(t, s, want)
	}
	assert.NotContains(t, s, "func (ActionSwap[T0]) StructTag()", "variant payloads have no Move identity")
}

func TestFile_CallStubs(t *testing.T) {
	files := generateApp(t)
	src, err := File(files[2])
	require.NoError(t, err)
	s := squash(string(src))

	for _, want := range []string{
		// Borrowed parameter, owned result, TxContext dropped.
		"func Deposit[T0 movetypes.MoveType, T1 movetypes.MoveType](b *ptb.Builder, scope *ptb.Scope, p0 ptb.MutRef[Pool[T0, T1]], p1 *ptb.Arg[coin.Coin[T0]]) (*ptb.Arg[Receipt[T0]], error) {",
		`call := ptb.NewCall(b, PackageID, ModuleName, "deposit"). Within(scope). TypeArgs(movetypes.TypeTagOf[T0], movetypes.TypeTagOf[T1]). Args(p0, p1)`,
		"return ptb.ResultArg[Receipt[T0]](call)",
		// No references: no scope.
		"func New[T0 movetypes.MoveType, T1 movetypes.MoveType](b *ptb.Builder, p0 *ptb.Arg[uint64]) (*ptb.Arg[Pool[T0, T1]], error) {",
		// No results.
		"func Touch(b *ptb.Builder, p1 *ptb.Arg[Config]) error {",
		"return call.Exec()",
		// Reference result.
		"return ptb.ResultRef[movetypes.Option[movetypes.Address]](call)",
		// Several results.
		"(*ptb.Arg[uint64], *ptb.Arg[uint64], error) {",
		"res, err := call.InvokeN(2) if err != nil { return nil, nil, err } return ptb.Handle[uint64](res[0]), ptb.Handle[uint64](res[1]), nil",
		// Key constraint.
		"func Wrap[T0 movetypes.Key](b *ptb.Builder, p0 *ptb.Arg[T0]) (*ptb.Arg[movetypes.ObjectID], error) {",
	} {
		assert.Contains(t, s, want)
	}
}

func TestFile_ModuleNamedLikeRuntime(t *testing.T) {
	f := &codegen.File{
		Dir:          "app/ptb",
		Name:         "ptb.go",
		Package:      "ptb",
		ImportPath:   appRoot + "/ptb",
		ModuleHeader: &codegen.ModuleHeader{Address: testutil.AppAddress, Module: "ptb"},
		Funcs: []*codegen.Func{{
			Doc:      "Go records a call.",
			Name:     "Go",
			MoveName: "go",
		}},
	}
	src, err := File(f)
	require.NoError(t, err)

	parsed := parse(t, src)
	assert.Equal(t, "ptb", parsed.Name.Name)
	assert.Equal(t, "", importPaths(parsed)["github.com/vk/movegen/pkg/ptb"],
		"the runtime keeps its name; the file's own package never imports itself")
	assert.Contains(t, squash(string(src)), "func Go(b *ptb.Builder) error {")
}

func TestFile_IsDeterministic(t *testing.T) {
	first := generateApp(t)
	again := generateApp(t)
	for i := range first {
		a, err := File(first[i])
		require.NoError(t, err)
		b, err := File(again[i])
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}
