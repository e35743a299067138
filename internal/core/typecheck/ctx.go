// Package typecheck implements the bidirectional inference and checking
// rules of spec.md 4.5 over the syntax.Expr produced by resolution:
// universe inference for the three-level hierarchy Type:Kind:Sort,
// per-construct typing rules, and judgmental equality delegated to
// internal/core/normalize's evaluator.
//
// Like normalize sits above adt, typecheck sits above normalize: it calls
// normalize.Eval/Force/AlphaEquivalent to evaluate terms and compare
// types, but owns no reduction rule of its own.
package typecheck

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/syntax"
)

// Ctx is the Go name for spec's TypecheckCtx: a scoped, immutable,
// copy-on-extend association from Label to the type of the binder
// introduced for it, paired with the normalize.Env needed to evaluate
// expressions in this same scope (so that, for instance, a let-bound
// value's type can be computed once and its normalized form reused
// inside later type positions, per 4.5's Let rule).
//
// Per spec.md 4.5 and 9 ("Context equality is trivialized"), two Ctx
// values are never compared structurally; nothing in this package ever
// does so, since every comparison needed for judgmental equality happens
// on *adt.Value, not on Ctx.
type Ctx struct {
	parent *Ctx
	label  syntax.Label
	kept   bool
	depth  int // count of kept entries at and below this one
	typ    *adt.Value
	env    *normalize.Env
}

// Env returns the normalize.Env matching this scope, for evaluating an
// Expr encountered at this point in the tree.
func (c *Ctx) Env() *normalize.Env {
	if c == nil {
		return nil
	}
	return c.env
}

func (c *Ctx) keptDepth() int {
	if c == nil {
		return 0
	}
	return c.depth
}

// ExtendKept introduces a fresh bound variable of type typ, as when
// entering the body of a lambda or pi whose domain evaluated to typ.
func (c *Ctx) ExtendKept(label syntax.Label, typ *adt.Value) *Ctx {
	return &Ctx{parent: c, label: label, kept: true, depth: c.keptDepth() + 1, typ: typ, env: c.Env().ExtendKept(label)}
}

// ExtendReplaced binds label to value (of type typ) directly, as when
// entering the body of a `let`: later occurrences both typecheck against
// typ and beta-reduce to value during normalization, per 4.5's Let rule.
func (c *Ctx) ExtendReplaced(label syntax.Label, value, typ *adt.Value) *Ctx {
	return &Ctx{parent: c, label: label, depth: c.keptDepth(), typ: typ, env: c.Env().ExtendReplaced(label, value)}
}

// shiftEntry relocates an entry's stored type from the kept depth it was
// evaluated at to the lookup site's current depth, so that any bound
// variable it mentions keeps its meaning under the binders introduced
// since. A Kept entry's type was evaluated just before the entry's own
// binder existed (one below its recorded depth); a Replaced entry's type
// was evaluated at the entry's own depth. This mirrors the shift
// normalize.Lookup applies to a Replaced binding's value.
func (c *Ctx) shiftEntry(cur *Ctx) *adt.Value {
	evalDepth := cur.depth
	if cur.kept {
		evalDepth--
	}
	shifted, ok := adt.Shift(cur.typ, 0, c.keptDepth()-evalDepth)
	if !ok {
		panic("typecheck: shift of a context entry produced a negative index")
	}
	return shifted
}

// Lookup resolves a surface V the same way normalize.Lookup resolves one
// for values: walking outward, counting same-label entries regardless of
// Kept/Replaced. It reports false for a genuinely unbound variable.
func Lookup(c *Ctx, v syntax.V) (*adt.Value, bool) {
	n := v.Index
	for cur := c; cur != nil; cur = cur.parent {
		if cur.label != v.Label {
			continue
		}
		if n > 0 {
			n--
			continue
		}
		return c.shiftEntry(cur), true
	}
	return nil, false
}

// typeOfAbsolute resolves the type of the bound variable at the given
// label-agnostic absolute index (the n-th innermost Kept entry), for
// callers that hold an adt.VarF rather than a surface V.
func (c *Ctx) typeOfAbsolute(n int) (*adt.Value, bool) {
	k := 0
	for cur := c; cur != nil; cur = cur.parent {
		if !cur.kept {
			continue
		}
		if k == n {
			return c.shiftEntry(cur), true
		}
		k++
	}
	return nil, false
}
