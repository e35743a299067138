package resolve_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"dhall-lang.org/go/internal/core/resolve"
	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

// fakeRoot resolves Local imports from an in-memory file set, keyed by the
// path joined with "/", so tests don't need a real filesystem.
type fakeRoot map[string]string

func (f fakeRoot) Resolve(loc syntax.ImportLocation) (io.Reader, error) {
	if loc.Kind != syntax.LocalImport {
		return nil, derrors.Newf(derrors.ImportUnexpected, syntax.Pos{}, "not local")
	}
	key := strings.Join(loc.Path, "/")
	src, ok := f[key]
	if !ok {
		return nil, derrors.Newf(derrors.ImportIO, syntax.Pos{}, "no such file %s", key)
	}
	return strings.NewReader(src), nil
}

// fakeParse treats every source string as a Natural literal, avoiding any
// dependency on a real parser for these tests.
func fakeParse(src []byte, _ string) (syntax.Expr, error) {
	var n uint64
	if _, err := fmt.Sscanf(string(src), "%d", &n); err != nil {
		return nil, err
	}
	return &syntax.NaturalLitExpr{Value: n}, nil
}

func localImport(path ...string) *syntax.ImportExpr {
	return &syntax.ImportExpr{Import: syntax.Import{
		Mode:     syntax.Code,
		Location: syntax.ImportLocation{Kind: syntax.LocalImport, Prefix: syntax.Here, Path: path},
	}}
}

func TestResolveReplacesImportWithParsedValue(t *testing.T) {
	root := fakeRoot{"a.dhall": "5"}
	got, err := resolve.Resolve(context.Background(), root, fakeParse, localImport("a.dhall"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	lit, ok := got.(*syntax.NaturalLitExpr)
	if !ok || lit.Value != 5 {
		t.Fatalf("want NaturalLitExpr{5}, got %#v", got)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	root := fakeRoot{
		"a.dhall": "./b.dhall",
		"b.dhall": "./a.dhall",
	}
	parseImport := func(src []byte, _ string) (syntax.Expr, error) {
		name := strings.TrimPrefix(strings.TrimSpace(string(src)), "./")
		return localImport(name), nil
	}
	_, err := resolve.Resolve(context.Background(), root, parseImport, localImport("a.dhall"))
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	ie, ok := err.(*derrors.ImportError)
	if !ok {
		t.Fatalf("expected *derrors.ImportError, got %T", err)
	}
	if ie.Code() != derrors.ImportCycle {
		t.Errorf("got code %s, want import cycle", ie.Code())
	}
}

func TestResolveImportAltFallsBackOnFailure(t *testing.T) {
	root := fakeRoot{} // no files at all
	e := &syntax.BinOpExpr{
		Op: syntax.ImportAlt,
		L:  localImport("missing.dhall"),
		R:  &syntax.NaturalLitExpr{Value: 42},
	}
	got, err := resolve.Resolve(context.Background(), root, fakeParse, e)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	lit, ok := got.(*syntax.NaturalLitExpr)
	if !ok || lit.Value != 42 {
		t.Fatalf("want the fallback NaturalLitExpr{42}, got %#v", got)
	}
}

func TestResolveRawTextImport(t *testing.T) {
	root := fakeRoot{"name.txt": "hello"}
	e := &syntax.ImportExpr{Import: syntax.Import{
		Mode:     syntax.RawText,
		Location: syntax.ImportLocation{Kind: syntax.LocalImport, Prefix: syntax.Here, Path: []string{"name.txt"}},
	}}
	got, err := resolve.Resolve(context.Background(), root, fakeParse, e)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	text, ok := got.(*syntax.TextLitExpr)
	if !ok || len(text.Chunks) != 1 || text.Chunks[0].Raw != "hello" {
		t.Fatalf("want a one-chunk Text literal \"hello\", got %#v", got)
	}
}

func TestLocalDirRootRejectsRemoteImport(t *testing.T) {
	root := resolve.LocalDirRoot{Dir: "."}
	_, err := root.Resolve(syntax.ImportLocation{Kind: syntax.RemoteImport, URL: "https://example.com"})
	if err == nil {
		t.Fatal("expected an error resolving a remote import through LocalDirRoot")
	}
	ie, ok := err.(derrors.Error)
	if !ok || ie.Code() != derrors.ImportUnexpected {
		t.Fatalf("expected ImportUnexpected, got %v", err)
	}
}
