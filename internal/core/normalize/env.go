// Package normalize evaluates a resolved syntax.Expr to a semantic
// internal/core/adt.Value: weak-head normal form on demand (call-by-need),
// full normal form recursively, alpha-normal form for canonical comparison,
// and judgmental (alpha-beta) equality between two values.
//
// Reduction lives here rather than in adt because it needs a reduction
// strategy (which rule fires first, how builtins saturate) on top of the
// data adt defines; adt has no notion of "how to reduce", only "what a
// reduced shape looks like".
package normalize

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

type entryKind int8

const (
	kindKept entryKind = iota
	kindReplaced
)

// Env is the Go name for spec's NormalizationCtx: an immutable, scoped,
// copy-on-extend association list from Label to either a fresh bound
// variable (Kept) or a concrete Value (Replaced). It is represented as a
// linked list rather than a map so that extending it never mutates or
// copies an outer scope still referenced elsewhere.
type Env struct {
	parent *Env
	label  syntax.Label
	kind   entryKind
	depth  int // count of Kept entries at and below this one
	value  *adt.Value
}

// keptDepth reports how many Kept (lambda/pi) binders are in scope; it is
// the absolute index a brand new Kept entry, or a free variable, would be
// numbered relative to.
func (e *Env) keptDepth() int {
	if e == nil {
		return 0
	}
	return e.depth
}

// ExtendKept introduces a fresh bound variable for label, as when
// entering a lambda or pi body.
func (e *Env) ExtendKept(label syntax.Label) *Env {
	return &Env{parent: e, label: label, kind: kindKept, depth: e.keptDepth() + 1}
}

// ExtendReplaced binds label to value directly, as when entering the body
// of a `let` - later occurrences of label beta-reduce to value without an
// intervening neutral variable.
func (e *Env) ExtendReplaced(label syntax.Label, value *adt.Value) *Env {
	return &Env{parent: e, label: label, kind: kindReplaced, depth: e.keptDepth(), value: value}
}

// Lookup resolves a surface V (label, per-label relative index) against
// the environment, walking outward and counting same-label entries
// regardless of whether they are Kept or Replaced - exactly as the
// surface binding rule requires ("the n-th enclosing binder named x").
//
// A Replaced entry's stored value is shifted up by the number of Kept
// binders introduced between its capture and this lookup, so that its own
// free variables keep denoting the same thing now that it sits under
// additional binders; see shift.go's doc comment for why this must be
// lazy.
func Lookup(env *Env, v syntax.V) *adt.Value {
	n := v.Index
	baseDepth := env.keptDepth()
	for cur := env; cur != nil; cur = cur.parent {
		if cur.label != v.Label {
			continue
		}
		if n > 0 {
			n--
			continue
		}
		switch cur.kind {
		case kindReplaced:
			delta := baseDepth - cur.depth
			shifted, ok := adt.Shift(cur.value, 0, delta)
			if !ok {
				panic("normalize: shift of a replaced binding produced a negative index")
			}
			return shifted
		default: // kindKept
			absolute := baseDepth - cur.depth
			return adt.NewWHNF(adt.VarF{Var: syntax.AlphaVar{Label: v.Label, Absolute: absolute}}, unknownType)
		}
	}
	// A genuinely free variable: numbered above every bound variable in
	// scope so it can never collide with one, per DESIGN.md.
	return adt.NewWHNF(adt.VarF{Var: syntax.AlphaVar{Label: v.Label, Absolute: v.Index + baseDepth}}, unknownType)
}

// unknownType is used where evaluation alone cannot name a Value's type;
// typecheck never reads it back off a Value (it tracks types separately
// in TypecheckCtx), so this is only ever a safety net against an
// accidental call.
func unknownType() *adt.Value {
	panic("normalize: type requested for a value normalization does not track")
}
