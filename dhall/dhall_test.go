package dhall_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"dhall-lang.org/go/dhall"
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/resolve"
	"dhall-lang.org/go/syntax"
	"github.com/kr/pretty"
)

func natLit(n uint64) syntax.Expr { return &syntax.NaturalLitExpr{Value: n} }

// noImportsRoot is a resolve.Root that never has an import to serve; every
// test expression here is already import-free, so any Resolve call is a
// bug.
type noImportsRoot struct{}

func (noImportsRoot) Resolve(loc syntax.ImportLocation) (io.Reader, error) {
	return nil, fmt.Errorf("no imports expected in this test, got %v", loc)
}

// identityParse ignores src and returns the expression under test as
// the parse result: ParseAndResolve's own text-parsing stage is an
// external collaborator this module never implements (spec.md 1), so
// these tests stand one in for it rather than exercising real Dhall
// source syntax.
func identityParse(e syntax.Expr) resolve.ParseFunc {
	return func(src []byte, filename string) (syntax.Expr, error) {
		return e, nil
	}
}

func TestParseAndResolveNoImports(t *testing.T) {
	want := &syntax.BinOpExpr{Op: syntax.NaturalPlus, L: natLit(1), R: natLit(2)}
	got, err := dhall.ParseAndResolve(context.Background(), noImportsRoot{}, identityParse(want), nil, "<test>")
	if err != nil {
		t.Fatalf("ParseAndResolve: unexpected error: %v", err)
	}
	if _, ok := got.(*syntax.BinOpExpr); !ok {
		t.Fatalf("ParseAndResolve returned %# v, want *BinOpExpr", pretty.Formatter(got))
	}
}

func TestTypecheckAndNormalizeIdentityLambda(t *testing.T) {
	// (\(x : Natural) -> x) 5 : Natural, reduces to 5.
	e := &syntax.AppExpr{
		Fn: &syntax.LambdaExpr{
			Label: "x",
			Type:  &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin},
			Body:  &syntax.VarExpr{V: syntax.NewV("x")},
		},
		Arg: natLit(5),
	}

	typ, err := dhall.Typecheck(e)
	if err != nil {
		t.Fatalf("Typecheck: unexpected error: %v", err)
	}
	if b, ok := typ.Form().(adt.BuiltinF); !ok || b.Builtin != syntax.NaturalBuiltin {
		t.Fatalf("Typecheck result = %# v, want Natural", pretty.Formatter(typ))
	}

	v := dhall.Normalize(e)
	nat, ok := v.Form().(adt.NaturalLitF)
	if !ok || nat.Value != 5 {
		t.Fatalf("Normalize result = %# v, want NaturalLit 5", pretty.Formatter(v))
	}
}

func TestTypecheckRejectsIllTyped(t *testing.T) {
	// True + 1 : type mismatch, NaturalPlus wants Natural on both sides.
	e := &syntax.BinOpExpr{Op: syntax.NaturalPlus, L: &syntax.BoolLitExpr{Value: true}, R: natLit(1)}
	if _, err := dhall.Typecheck(e); err == nil {
		t.Fatal("Typecheck: expected an error for an ill-typed BinOpExpr, got success")
	}
}

func TestNormalizeNeverFailsOnIllTyped(t *testing.T) {
	// Per spec.md 7, Normalize has no error return at all: an ill-typed
	// term just normalizes to a stuck neutral form instead of panicking.
	e := &syntax.BinOpExpr{Op: syntax.NaturalPlus, L: &syntax.BoolLitExpr{Value: true}, R: natLit(1)}
	v := dhall.Normalize(e)
	if v == nil {
		t.Fatal("Normalize returned nil for an ill-typed term")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := &syntax.LambdaExpr{
		Label: "x",
		Type:  &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin},
		Body:  &syntax.VarExpr{V: syntax.NewV("x")},
	}
	v := dhall.Normalize(e)
	b, err := dhall.Encode(v)
	if err != nil {
		t.Fatalf("Encode: unexpected error: %v", err)
	}
	got, err := dhall.Decode(b)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	lam, ok := got.(*syntax.LambdaExpr)
	if !ok || lam.Label != "x" {
		t.Fatalf("Decode(Encode(v)) = %# v, want a Lambda bound to x", pretty.Formatter(got))
	}
}
