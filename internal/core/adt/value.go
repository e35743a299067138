// Package adt holds the semantic value representation that normalization
// and typechecking operate over: ValueF (one layer of a value's shape),
// Value (the memoizing, interior-mutable cell around a ValueF), and the
// Shift/Subst primitives that let values move across binders without
// losing meaning.
//
// This package intentionally holds data and the small amount of mechanical
// bookkeeping (shift, subst) that the data needs to be self-consistent; the
// variable environment used to evaluate an Expr is normalize.Env. The reduction strategy itself - which shapes fire which
// rewrite, when a builtin is saturated, how full normal form is produced -
// lives one layer up, in internal/core/normalize, which imports this
// package rather than the reverse.
package adt

import "dhall-lang.org/go/syntax"

// State records how far a Value has been forced.
type State int8

const (
	// Unevaluated means Form is not valid; Thunk must be forced instead.
	Unevaluated State = iota
	// WHNF means the outermost constructor is final, but children may
	// still be Unevaluated.
	WHNF
	// NF means every reachable descendant is itself in state NF.
	NF
)

func (s State) String() string {
	switch s {
	case Unevaluated:
		return "unevaluated"
	case WHNF:
		return "whnf"
	case NF:
		return "nf"
	default:
		return "state(?)"
	}
}

// Thunker produces the WHNF of a deferred computation. Apart from the
// deferred shift/subst wrappers in this package, the normalize package
// supplies the implementation (an Expr paired with the Env it closes
// over); adt depends only on this interface, which is what
// lets Value stay in this package while evaluation lives in normalize.
type Thunker interface {
	Force() *Value
}

// Value is a sharable, interior-mutable cell. Its Form may be replaced in
// place as its State advances (Unevaluated -> WHNF -> NF), but its identity
// - and, once computed, its cached type - are stable across advances, so
// that anyone holding a *Value sees every later refinement of it.
//
// A Value in state NF must contain only Values in state NF; callers that
// construct one (normalize.FullNormalize) are responsible for the
// invariant, it is not checked here.
type Value struct {
	state State
	form  ValueF
	thunk Thunker // valid only while state == Unevaluated

	typeFn   func() *Value // lazy; nil once resolved, always nil for Sort
	typeVal  *Value
	hasType  bool // true once typeVal is meaningful (including Sort's "no type")
	typeSort bool // true if this Value denotes Sort, which has no type at all

	forcing bool // guards against illegal recursive self-force
}

// NewThunk builds a Value that defers its WHNF to t. typeFn is called at
// most once, lazily, the first time Type is observed.
func NewThunk(t Thunker, typeFn func() *Value) *Value {
	return &Value{state: Unevaluated, thunk: t, typeFn: typeFn}
}

// NewWHNF builds a Value already reduced to weak-head normal form.
func NewWHNF(form ValueF, typeFn func() *Value) *Value {
	return &Value{state: WHNF, form: form, typeFn: typeFn}
}

// NewNF builds a Value already in full normal form. Callers must ensure
// every Value reachable from form is itself NF.
func NewNF(form ValueF, typeFn func() *Value) *Value {
	return &Value{state: NF, form: form, typeFn: typeFn}
}

// NewSort builds the single Value denoting the constant Sort, which has no
// type; calling Type on it is a bug in the caller, not a recoverable error.
func NewSort() *Value {
	return &Value{state: NF, form: ConstF{Const: syntax.Sort}, typeSort: true, hasType: true}
}

// State reports how far the Value has been forced.
func (v *Value) State() State { return v.state }

// Thunk returns the deferred computation, valid only while State is
// Unevaluated.
func (v *Value) Thunk() Thunker { return v.thunk }

// Form returns the current shape. It is meaningful only when State is not
// Unevaluated; callers must force first.
func (v *Value) Form() ValueF { return v.form }

// BeginForce marks the Value as being actively forced, so that a
// reentrant force - which would indicate a cyclic term, impossible by
// construction, or an evaluator bug - panics instead of deadlocking or
// infinitely looping.
func (v *Value) BeginForce() {
	if v.forcing {
		panic("adt: recursive force of a Value being forced")
	}
	v.forcing = true
}

// EndForce clears the forcing guard set by BeginForce.
func (v *Value) EndForce() { v.forcing = false }

// Advance replaces the Value's shape and records a new State. It is the
// only way State and Form change after construction; identity (the
// pointer) and the type cache are preserved.
func (v *Value) Advance(state State, form ValueF) {
	v.state = state
	v.form = form
	v.thunk = nil
}

// HasType reports whether calling Type is safe; it is false only for Sort.
func (v *Value) HasType() bool { return !v.typeSort }

// Type returns the Value's type, computing and caching it on first use.
// The type function is invoked lazily and only once so that mutually
// referential types (e.g. a List whose element type is itself a List) do
// not force each other eagerly during construction - see DESIGN.md.
func (v *Value) Type() *Value {
	if v.typeSort {
		panic("adt: Sort has no type")
	}
	if !v.hasType {
		v.typeVal = v.typeFn()
		v.typeFn = nil
		v.hasType = true
	}
	return v.typeVal
}

// ValueF is the shape of one layer of a Value: the same space of node
// kinds as syntax.Expr, but with sub-terms replaced by *Value and, for
// binders, the parameter type already evaluated.
type ValueF interface {
	valueF()
}

func (ConstF) valueF()            {}
func (VarF) valueF()              {}
func (BuiltinF) valueF()          {}
func (LambdaF) valueF()           {}
func (PiF) valueF()               {}
func (AppF) valueF()              {}
func (IfF) valueF()               {}
func (BoolLitF) valueF()          {}
func (NaturalLitF) valueF()       {}
func (IntegerLitF) valueF()       {}
func (DoubleLitF) valueF()        {}
func (BinOpF) valueF()            {}
func (EmptyListF) valueF()        {}
func (ListLitF) valueF()          {}
func (SomeF) valueF()             {}
func (OptionalNoneF) valueF()     {}
func (RecordTypeF) valueF()       {}
func (RecordLitF) valueF()        {}
func (UnionTypeF) valueF()        {}
func (UnionConstructorF) valueF() {}
func (UnionValF) valueF()         {}
func (TextLitF) valueF()          {}
func (FieldF) valueF()            {}
func (ProjectF) valueF()          {}
func (MergeF) valueF()            {}

// ConstF is one of Type, Kind, Sort.
type ConstF struct{ Const syntax.Const }

// VarF is a neutral (stuck) free variable, addressed by a label-agnostic,
// absolute De Bruijn index - see Shift/Subst in shift.go for why.
type VarF struct{ Var syntax.AlphaVar }

// BuiltinF is a reference to a reserved built-in, not yet applied to
// enough arguments to fire its native semantics.
type BuiltinF struct{ Builtin syntax.Builtin }

// LambdaF is a term-level function value. Body is evaluated lazily under
// an environment extended with a fresh placeholder for Label.
type LambdaF struct {
	Label  syntax.Label
	Domain *Value
	Body   *Value
}

// PiF is a function type value.
type PiF struct {
	Label    syntax.Label
	Domain   *Value
	Codomain *Value
}

// AppF is a neutral application: Fn is stuck (a variable, a
// not-yet-saturated builtin, or another stuck application) so the
// application itself cannot reduce further.
type AppF struct {
	Fn  *Value
	Arg *Value
}

// IfF is a neutral `if` whose condition is not a literal Bool.
type IfF struct{ Cond, Then, Else *Value }

type BoolLitF struct{ Value bool }
type NaturalLitF struct{ Value uint64 }
type IntegerLitF struct{ Value int64 }
type DoubleLitF struct{ Value float64 }

// BinOpF is a neutral binary operator application: at least one operand
// is not concrete enough for the rewrite table in 4.4 to fire.
type BinOpF struct {
	Op   syntax.Op
	L, R *Value
}

type EmptyListF struct{ ElemType *Value }
type ListLitF struct{ Elements []*Value }
type SomeF struct{ Value *Value }

// OptionalNoneF is `None T`, the empty Optional of element type ElemType.
type OptionalNoneF struct{ ElemType *Value }

type RecordTypeF struct{ Fields *syntax.Fields[*Value] }
type RecordLitF struct{ Fields *syntax.Fields[*Value] }

// UnionTypeF's Fields maps each alternative to its payload type, or to nil
// for a payload-less alternative.
type UnionTypeF struct{ Alternatives *syntax.Fields[*Value] }

// UnionConstructorF is a union type's alternative selected as a function
// awaiting its payload, e.g. `(< Foo : Natural >).Foo`.
type UnionConstructorF struct {
	Type *Value
	Alt  syntax.Label
}

// UnionValF is a fully-formed union value: an alternative of Type, with
// Payload nil iff the alternative carries none.
type UnionValF struct {
	Type    *Value
	Alt     syntax.Label
	Payload *Value
}

// TextPiece is one piece of a normalized text literal.
type TextPiece struct {
	Raw   string
	Embed *Value // nil for a raw piece
}

// TextLitF is a (possibly interpolated) text value; WHNF guarantees no two
// adjacent Raw pieces and no nested TextLitF among the Embeds.
type TextLitF struct{ Chunks []TextPiece }

// FieldF is a neutral field selection: Record is not a record literal (or
// a literal merge of one).
type FieldF struct {
	Record *Value
	Label  syntax.Label
}

// ProjectF is a neutral projection by label set.
type ProjectF struct {
	Record *Value
	Labels []syntax.Label
}

// MergeF is a neutral merge: Union is not a union value.
type MergeF struct {
	Handlers *Value
	Union    *Value
	Annot    *Value // nil if the source merge had none
}

func (NativeFuncF) valueF() {}

// NativeFuncF is a host-implemented single-argument function, used by the
// normalizer to give Natural/build, List/build and Optional/build a
// concrete successor/cons/some function to call without synthesizing a
// throwaway syntax.Expr lambda for one. It has no surface-syntax
// counterpart and never appears in a fully reduced program's output,
// only transiently while a /build call is unrolling.
type NativeFuncF struct {
	Name  string
	Apply func(arg *Value) *Value
}
