// Package dhall is the module's public surface: the four entry points of
// spec.md section 6 (parse-and-resolve, typecheck, normalize, encode and
// decode), composed from internal/core's resolve, typecheck, normalize and
// binary packages. It holds no logic of its own beyond sequencing those
// four stages in the order spec.md 2's data-flow diagram names:
// Parsed -> Resolved -> Typed -> Normalized.
package dhall

import (
	"context"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/binary"
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/internal/core/resolve"
	"dhall-lang.org/go/internal/core/typecheck"
	"dhall-lang.org/go/syntax"
)

// ParseAndResolve turns source bytes into a fully Resolved expression: no
// syntax.ImportExpr or ImportAlt operator survives in the result (spec.md
// 8's "no import nodes remain" property). Grammar and parsing are named in
// spec.md 1 as an external collaborator the core never implements, so the
// caller supplies parse, the same callback resolve.Resolve itself uses to
// turn an import's bytes into a tree recursively; src/filename are parsed
// through it exactly once, for the entry expression, before resolution
// begins. context.Context is threaded here, and only here, because this is
// the one entry point that may perform external I/O via root.
func ParseAndResolve(ctx context.Context, root resolve.Root, parse resolve.ParseFunc, src []byte, filename string) (syntax.Expr, error) {
	e, err := parse(src, filename)
	if err != nil {
		return nil, err
	}
	return resolve.Resolve(ctx, root, parse, e)
}

// Typecheck infers e's type under an empty context, returning it as a
// *adt.Value - the semantic representation judgmental equality and
// further typechecking both operate over, per spec.md 4.5. A non-nil
// error is always an *internal/errors.Error naming one of the TypeError
// codes in spec.md 7.
func Typecheck(e syntax.Expr) (*adt.Value, error) {
	return typecheck.Infer(nil, e)
}

// Normalize evaluates e to a fully normal *adt.Value under an empty
// environment. Per spec.md 7, normalization cannot fail: an ill-typed term
// may normalize to a stuck neutral form, but Normalize never returns an
// error or panics on account of e's well-typedness - callers that need
// totality must call Typecheck first.
func Normalize(e syntax.Expr) *adt.Value {
	return normalize.FullNormalize(normalize.Eval(nil, e))
}

// Encode renders a normalized Value as this module's canonical binary
// form (internal/core/binary), by first quoting it back to a closed
// syntax.Expr.
func Encode(v *adt.Value) ([]byte, error) {
	return binary.Encode(normalize.Quote(v))
}

// Decode parses b as the module's binary form, producing a (not yet
// resolved, typechecked or normalized) Parsed expression - the same stage
// a freshly parsed source file would be at.
func Decode(b []byte) (syntax.Expr, error) {
	return binary.Decode(b)
}
