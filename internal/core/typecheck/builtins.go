package typecheck

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/syntax"
)

// builtinTypes gives the ground (closed, context-free) type of every
// syntax.Builtin per spec.md 4.4.1's argument lists - exactly the types
// the Dhall standard assigns each built-in, e.g. `Natural/even :
// Natural -> Bool`. Each entry is written as an ordinary syntax.Expr (the
// same surface grammar a user could write) and evaluated once through
// normalize.Eval/Force, rather than hand-assembling adt.PiF/VarF nodes
// directly, so that the de Bruijn bookkeeping for the polymorphic
// builtins (List/fold's `a`, Optional/build's `optional`, ...) is done by
// the same machinery that handles every other binder instead of a
// second, error-prone hand-rolled path.
var builtinTypes = map[syntax.Builtin]*adt.Value{}

func init() {
	for b, e := range builtinTypeExprs() {
		builtinTypes[b] = normalize.Force(normalize.Eval(nil, e))
	}
}

// TypeOf returns the ground type of a built-in constant or function, or
// false if b names a builtin with no standalone type (there are none at
// present, but the lookup stays explicit rather than panicking on a
// missing map entry so a future builtin addition fails loudly here
// instead of with a nil-pointer deep inside Infer).
func TypeOf(b syntax.Builtin) (*adt.Value, bool) {
	t, ok := builtinTypes[b]
	return t, ok
}

func builtinTypeExprs() map[syntax.Builtin]syntax.Expr {
	typ := constExpr(syntax.Type)
	nat := builtinExpr(syntax.NaturalBuiltin)
	integer := builtinExpr(syntax.IntegerBuiltin)
	dbl := builtinExpr(syntax.DoubleBuiltin)
	text := builtinExpr(syntax.TextBuiltin)
	boolT := builtinExpr(syntax.BoolBuiltin)

	list := func(elem syntax.Expr) syntax.Expr {
		return &syntax.AppExpr{Fn: builtinExpr(syntax.ListBuiltin), Arg: elem}
	}
	optional := func(elem syntax.Expr) syntax.Expr {
		return &syntax.AppExpr{Fn: builtinExpr(syntax.OptionalBuiltin), Arg: elem}
	}
	arrow := func(from, to syntax.Expr) syntax.Expr {
		return &syntax.PiExpr{Label: "_", Type: from, Body: to}
	}
	forall := func(label syntax.Label, domain, body syntax.Expr) syntax.Expr {
		return &syntax.PiExpr{Label: label, Type: domain, Body: body}
	}
	v := func(label syntax.Label) syntax.Expr { return &syntax.VarExpr{V: syntax.NewV(label)} }

	// indexedRecord is the element type List/indexed wraps each entry in:
	// { index : Natural, value : a }.
	indexedRecord := func(a syntax.Expr) syntax.Expr {
		fields, _ := syntax.NewFields([]syntax.LabelValue[syntax.Expr]{
			{Label: "index", Value: nat},
			{Label: "value", Value: a},
		})
		return &syntax.RecordTypeExpr{Fields: fields}
	}

	return map[syntax.Builtin]syntax.Expr{
		syntax.NaturalBuiltin:  typ,
		syntax.IntegerBuiltin:  typ,
		syntax.DoubleBuiltin:   typ,
		syntax.TextBuiltin:     typ,
		syntax.BoolBuiltin:     typ,
		syntax.ListBuiltin:     arrow(typ, typ),
		syntax.OptionalBuiltin: arrow(typ, typ),

		syntax.BoolTrue:  boolT,
		syntax.BoolFalse: boolT,

		// Natural/fold : Natural -> ∀(natural : Type) -> ∀(succ : natural
		// -> natural) -> ∀(zero : natural) -> natural
		syntax.NaturalFold: arrow(nat, forall("natural", typ,
			arrow(arrow(v("natural"), v("natural")),
				arrow(v("natural"), v("natural"))))),
		syntax.NaturalBuild: arrow(
			forall("natural", typ, arrow(arrow(v("natural"), v("natural")), arrow(v("natural"), v("natural")))),
			nat),
		syntax.NaturalIsZero:    arrow(nat, boolT),
		syntax.NaturalEven:      arrow(nat, boolT),
		syntax.NaturalOdd:       arrow(nat, boolT),
		syntax.NaturalToInteger: arrow(nat, integer),
		syntax.NaturalShow:      arrow(nat, text),
		syntax.NaturalSubtract:  arrow(nat, arrow(nat, nat)),

		syntax.IntegerToDouble: arrow(integer, dbl),
		syntax.IntegerShow:     arrow(integer, text),
		syntax.IntegerNegate:   arrow(integer, integer),
		syntax.IntegerClamp:    arrow(integer, nat),

		syntax.DoubleShow: arrow(dbl, text),

		syntax.TextShow: arrow(text, text),

		// List/build : ∀(a : Type) -> (∀(list : Type) -> ∀(cons : a ->
		// list -> list) -> ∀(nil : list) -> list) -> List a
		syntax.ListBuild: forall("a", typ, arrow(
			forall("list", typ, arrow(arrow(v("a"), arrow(v("list"), v("list"))), arrow(v("list"), v("list")))),
			list(v("a")))),
		syntax.ListFold: forall("a", typ, arrow(list(v("a")), forall("list", typ,
			arrow(arrow(v("a"), arrow(v("list"), v("list"))), arrow(v("list"), v("list")))))),
		syntax.ListLength:  forall("a", typ, arrow(list(v("a")), nat)),
		syntax.ListHead:    forall("a", typ, arrow(list(v("a")), optional(v("a")))),
		syntax.ListLast:    forall("a", typ, arrow(list(v("a")), optional(v("a")))),
		syntax.ListIndexed: forall("a", typ, arrow(list(v("a")), list(indexedRecord(v("a"))))),
		syntax.ListReverse: forall("a", typ, arrow(list(v("a")), list(v("a")))),

		syntax.OptionalFold: forall("a", typ, arrow(optional(v("a")), forall("optional", typ,
			arrow(arrow(v("a"), v("optional")), arrow(v("optional"), v("optional")))))),
		syntax.OptionalBuild: forall("a", typ, arrow(
			forall("optional", typ, arrow(arrow(v("a"), v("optional")), arrow(v("optional"), v("optional")))),
			optional(v("a")))),
		syntax.OptionalNone: forall("a", typ, optional(v("a"))),
	}
}

func constExpr(c syntax.Const) syntax.Expr    { return &syntax.ConstExpr{Const: c} }
func builtinExpr(b syntax.Builtin) syntax.Expr { return &syntax.BuiltinExpr{Builtin: b} }
