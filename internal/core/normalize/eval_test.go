package normalize_test

import (
	"testing"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/syntax"
)

func natLit(n uint64) syntax.Expr  { return &syntax.NaturalLitExpr{Value: n} }
func boolLit(b bool) syntax.Expr   { return &syntax.BoolLitExpr{Value: b} }
func varE(l syntax.Label) syntax.Expr {
	return &syntax.VarExpr{V: syntax.NewV(l)}
}
func builtinE(b syntax.Builtin) syntax.Expr { return &syntax.BuiltinExpr{Builtin: b} }

func lam(label syntax.Label, typ, body syntax.Expr) syntax.Expr {
	return &syntax.LambdaExpr{Label: label, Type: typ, Body: body}
}

func app(fn syntax.Expr, args ...syntax.Expr) syntax.Expr {
	for _, a := range args {
		fn = &syntax.AppExpr{Fn: fn, Arg: a}
	}
	return fn
}

func binop(op syntax.Op, l, r syntax.Expr) syntax.Expr {
	return &syntax.BinOpExpr{Op: op, L: l, R: r}
}

func fieldsOf(pairs ...syntax.LabelValue[syntax.Expr]) *syntax.Fields[syntax.Expr] {
	f, err := syntax.NewFields(pairs)
	if err != nil {
		panic(err)
	}
	return f
}

func lv(label syntax.Label, v syntax.Expr) syntax.LabelValue[syntax.Expr] {
	return syntax.LabelValue[syntax.Expr]{Label: label, Value: v}
}

func recLit(pairs ...syntax.LabelValue[syntax.Expr]) syntax.Expr {
	return &syntax.RecordLitExpr{Fields: fieldsOf(pairs...)}
}

func eval(e syntax.Expr) *adt.Value {
	return normalize.FullNormalize(normalize.Eval(nil, e))
}

func wantNat(t *testing.T, v *adt.Value, n uint64) {
	t.Helper()
	lit, ok := v.Form().(adt.NaturalLitF)
	if !ok || lit.Value != n {
		t.Fatalf("want Natural %d, got %#v", n, v.Form())
	}
}

func TestNormalizeLetAddition(t *testing.T) {
	// let x = 1 in x + 2  ->  3
	e := &syntax.LetExpr{
		Label: "x",
		Value: natLit(1),
		Body:  binop(syntax.NaturalPlus, varE("x"), natLit(2)),
	}
	wantNat(t, eval(e), 3)
}

func TestNormalizePlusZeroIdentity(t *testing.T) {
	// \(x : Natural) -> x + 0 normalizes to \(x : Natural) -> x.
	e := lam("x", builtinE(syntax.NaturalBuiltin), binop(syntax.NaturalPlus, varE("x"), natLit(0)))
	v := eval(e)
	f, ok := v.Form().(adt.LambdaF)
	if !ok {
		t.Fatalf("want a lambda, got %#v", v.Form())
	}
	body, ok := f.Body.Form().(adt.VarF)
	if !ok || body.Var.Absolute != 0 {
		t.Fatalf("want the bare bound variable as the body, got %#v", f.Body.Form())
	}
}

func TestAlphaNormalizeRewritesBoundLabels(t *testing.T) {
	e := lam("x", builtinE(syntax.NaturalBuiltin), varE("x"))
	v := normalize.AlphaNormalize(eval(e))
	f, ok := v.Form().(adt.LambdaF)
	if !ok || f.Label != "_" {
		t.Fatalf("alpha normalization should rename the binder to _, got %#v", v.Form())
	}
}

func TestAlphaNormalizeRecursesIntoUnionAlternatives(t *testing.T) {
	// < A : forall(x : Natural) -> Natural > carries its binder inside an
	// alternative's payload type; alpha normalization must still reach it.
	ut := &syntax.UnionTypeExpr{Alternatives: fieldsOf(
		lv("A", &syntax.PiExpr{
			Label: "x",
			Type:  builtinE(syntax.NaturalBuiltin),
			Body:  builtinE(syntax.NaturalBuiltin),
		}),
	)}
	v := normalize.AlphaNormalize(eval(ut))
	f, ok := v.Form().(adt.UnionTypeF)
	if !ok {
		t.Fatalf("want a union type, got %#v", v.Form())
	}
	alt, _ := f.Alternatives.Get("A")
	pi, ok := alt.Form().(adt.PiF)
	if !ok || pi.Label != "_" {
		t.Fatalf("nested binder should be renamed to _, got %#v", alt.Form())
	}
}

func TestAlphaEquivalenceIgnoresBoundLabels(t *testing.T) {
	a := eval(lam("x", builtinE(syntax.NaturalBuiltin), varE("x")))
	b := eval(lam("y", builtinE(syntax.NaturalBuiltin), varE("y")))
	if !normalize.AlphaEquivalent(a, b) {
		t.Error("lambdas differing only in their binder label must be alpha-equivalent")
	}
}

func TestNormalizeRightBiasedMerge(t *testing.T) {
	// { a = 1, b = 2 } // { b = 3, c = 4 }  ->  { a = 1, b = 3, c = 4 }
	e := binop(syntax.RightBiasedMerge,
		recLit(lv("a", natLit(1)), lv("b", natLit(2))),
		recLit(lv("b", natLit(3)), lv("c", natLit(4))),
	)
	v := eval(e)
	rec, ok := v.Form().(adt.RecordLitF)
	if !ok || rec.Fields.Len() != 3 {
		t.Fatalf("want a 3-field record, got %#v", v.Form())
	}
	for field, want := range map[syntax.Label]uint64{"a": 1, "b": 3, "c": 4} {
		fv, ok := rec.Fields.Get(field)
		if !ok {
			t.Fatalf("missing field %s", field)
		}
		wantNat(t, fv, want)
	}
}

func TestNormalizeRecursiveRecordMerge(t *testing.T) {
	// { a = { x = 1 } } /\ { a = { y = 2 } }  ->  { a = { x = 1, y = 2 } }
	e := binop(syntax.RecordMerge,
		recLit(lv("a", recLit(lv("x", natLit(1))))),
		recLit(lv("a", recLit(lv("y", natLit(2))))),
	)
	v := eval(e)
	rec := v.Form().(adt.RecordLitF)
	inner, ok := rec.Fields.Get("a")
	if !ok {
		t.Fatal("missing field a")
	}
	innerRec, ok := inner.Form().(adt.RecordLitF)
	if !ok || innerRec.Fields.Len() != 2 {
		t.Fatalf("colliding record fields should merge recursively, got %#v", inner.Form())
	}
}

func TestNormalizeMergeScalarCollisionStaysStuck(t *testing.T) {
	// { x = { y = 1 } } /\ { x = 1 } is ill-typed; normalization must not
	// panic on it, the colliding field just stays a neutral merge.
	e := binop(syntax.RecordMerge,
		recLit(lv("x", recLit(lv("y", natLit(1))))),
		recLit(lv("x", natLit(1))),
	)
	v := eval(e)
	rec, ok := v.Form().(adt.RecordLitF)
	if !ok {
		t.Fatalf("want a record with a stuck field, got %#v", v.Form())
	}
	fv, _ := rec.Fields.Get("x")
	if _, ok := fv.Form().(adt.BinOpF); !ok {
		t.Fatalf("colliding non-record fields should stay neutral, got %#v", fv.Form())
	}
}

func TestNormalizeMergeOptional(t *testing.T) {
	// merge { Some = \(x : Natural) -> x, None = 0 } (Some 5)  ->  5
	handlers := recLit(
		lv("Some", lam("x", builtinE(syntax.NaturalBuiltin), varE("x"))),
		lv("None", natLit(0)),
	)
	some := &syntax.MergeExpr{Handlers: handlers, Union: &syntax.SomeExpr{Value: natLit(5)}}
	wantNat(t, eval(some), 5)

	none := &syntax.MergeExpr{Handlers: handlers, Union: app(&syntax.NoneExpr{}, builtinE(syntax.NaturalBuiltin))}
	wantNat(t, eval(none), 0)
}

func TestNormalizeMergeUnion(t *testing.T) {
	ut := &syntax.UnionTypeExpr{Alternatives: fieldsOf(
		lv("Foo", builtinE(syntax.NaturalBuiltin)),
		lv("Bar", nil),
	)}
	handlers := recLit(
		lv("Foo", lam("n", builtinE(syntax.NaturalBuiltin), binop(syntax.NaturalPlus, varE("n"), natLit(1)))),
		lv("Bar", natLit(0)),
	)
	e := &syntax.MergeExpr{
		Handlers: handlers,
		Union:    app(&syntax.FieldExpr{Record: ut, Label: "Foo"}, natLit(41)),
	}
	wantNat(t, eval(e), 42)
}

func TestNormalizeIfBranchesAreLazy(t *testing.T) {
	// The untaken branch is never evaluated; an unresolved import in it
	// would panic the evaluator if it were.
	poison := &syntax.ImportExpr{Import: syntax.Import{
		Location: syntax.ImportLocation{Kind: syntax.MissingImport},
	}}
	e := &syntax.IfExpr{Cond: boolLit(true), Then: natLit(1), Else: poison}
	wantNat(t, eval(e), 1)
}

func TestNormalizeIfCollapses(t *testing.T) {
	// if c then True else False -> c, for a stuck condition c.
	e := lam("c", builtinE(syntax.BoolBuiltin),
		&syntax.IfExpr{Cond: varE("c"), Then: boolLit(true), Else: boolLit(false)})
	f := eval(e).Form().(adt.LambdaF)
	if _, ok := f.Body.Form().(adt.VarF); !ok {
		t.Fatalf("if c then True else False should collapse to c, got %#v", f.Body.Form())
	}
}

func TestNormalizeBoolShortCircuit(t *testing.T) {
	// True || x -> True without looking at x; False && x -> False.
	or := lam("x", builtinE(syntax.BoolBuiltin), binop(syntax.BoolOr, boolLit(true), varE("x")))
	f := eval(or).Form().(adt.LambdaF)
	if b, ok := f.Body.Form().(adt.BoolLitF); !ok || !b.Value {
		t.Fatalf("True || x should normalize to True, got %#v", f.Body.Form())
	}

	and := lam("x", builtinE(syntax.BoolBuiltin), binop(syntax.BoolAnd, boolLit(false), varE("x")))
	f = eval(and).Form().(adt.LambdaF)
	if b, ok := f.Body.Form().(adt.BoolLitF); !ok || b.Value {
		t.Fatalf("False && x should normalize to False, got %#v", f.Body.Form())
	}
}

func TestNormalizeTextInterpolation(t *testing.T) {
	// "a${"b"}c" flattens to the single raw chunk "abc".
	e := &syntax.TextLitExpr{Chunks: []syntax.TextChunk{
		{Raw: "a"},
		{Expr: &syntax.TextLitExpr{Chunks: []syntax.TextChunk{{Raw: "b"}}}},
		{Raw: "c"},
	}}
	v := eval(e)
	tl, ok := v.Form().(adt.TextLitF)
	if !ok || len(tl.Chunks) != 1 || tl.Chunks[0].Raw != "abc" {
		t.Fatalf("want one flattened raw chunk \"abc\", got %#v", v.Form())
	}
}

func TestNormalizeListAppend(t *testing.T) {
	lit := func(ns ...uint64) syntax.Expr {
		elems := make([]syntax.Expr, len(ns))
		for i, n := range ns {
			elems[i] = natLit(n)
		}
		return &syntax.ListLitExpr{Elements: elems}
	}
	empty := &syntax.EmptyListExpr{ElemType: builtinE(syntax.NaturalBuiltin)}

	v := eval(binop(syntax.ListAppend, lit(1), lit(2, 3)))
	ll, ok := v.Form().(adt.ListLitF)
	if !ok || len(ll.Elements) != 3 {
		t.Fatalf("want a 3-element list, got %#v", v.Form())
	}

	// [] is the identity on either side.
	v = eval(binop(syntax.ListAppend, empty, lit(7)))
	ll, ok = v.Form().(adt.ListLitF)
	if !ok || len(ll.Elements) != 1 {
		t.Fatalf("[] # xs should reduce to xs, got %#v", v.Form())
	}
}

func TestNaturalSubtractClampsAtZero(t *testing.T) {
	// Natural/subtract 5 3 -> 0 (subtracts the first from the second).
	wantNat(t, eval(app(builtinE(syntax.NaturalSubtract), natLit(5), natLit(3))), 0)
	wantNat(t, eval(app(builtinE(syntax.NaturalSubtract), natLit(3), natLit(5))), 2)
}

func TestNaturalFoldUnrolls(t *testing.T) {
	// Natural/fold 3 Natural (\(n : Natural) -> n + 2) 0 -> 6
	succ := lam("n", builtinE(syntax.NaturalBuiltin), binop(syntax.NaturalPlus, varE("n"), natLit(2)))
	e := app(builtinE(syntax.NaturalFold), natLit(3), builtinE(syntax.NaturalBuiltin), succ, natLit(0))
	wantNat(t, eval(e), 6)
}

func TestNaturalBuildComputes(t *testing.T) {
	// Natural/build (\(natural : Type) -> \(succ : natural -> natural) ->
	// \(zero : natural) -> succ (succ zero)) -> 2
	natural := varE("natural")
	g := lam("natural", &syntax.ConstExpr{Const: syntax.Type},
		lam("succ", &syntax.PiExpr{Label: "_", Type: natural, Body: natural},
			lam("zero", natural,
				app(varE("succ"), app(varE("succ"), varE("zero"))))))
	wantNat(t, eval(app(builtinE(syntax.NaturalBuild), g)), 2)
}

func TestListBuildComputes(t *testing.T) {
	// List/build Natural (\(list : Type) -> \(cons : Natural -> list ->
	// list) -> \(nil : list) -> cons 1 (cons 2 nil)) -> [1, 2]
	list := varE("list")
	consT := &syntax.PiExpr{Label: "_", Type: builtinE(syntax.NaturalBuiltin),
		Body: &syntax.PiExpr{Label: "_", Type: list, Body: list}}
	g := lam("list", &syntax.ConstExpr{Const: syntax.Type},
		lam("cons", consT,
			lam("nil", list,
				app(varE("cons"), natLit(1), app(varE("cons"), natLit(2), varE("nil"))))))
	v := eval(app(builtinE(syntax.ListBuild), builtinE(syntax.NaturalBuiltin), g))
	ll, ok := v.Form().(adt.ListLitF)
	if !ok || len(ll.Elements) != 2 {
		t.Fatalf("want [1, 2], got %#v", v.Form())
	}
	wantNat(t, ll.Elements[0], 1)
	wantNat(t, ll.Elements[1], 2)
}

func TestListBuiltinsOnLiterals(t *testing.T) {
	nat := builtinE(syntax.NaturalBuiltin)
	xs := &syntax.ListLitExpr{Elements: []syntax.Expr{natLit(10), natLit(20)}}
	empty := &syntax.EmptyListExpr{ElemType: nat}

	wantNat(t, eval(app(builtinE(syntax.ListLength), nat, xs)), 2)
	wantNat(t, eval(app(builtinE(syntax.ListLength), nat, empty)), 0)

	v := eval(app(builtinE(syntax.ListHead), nat, xs))
	some, ok := v.Form().(adt.SomeF)
	if !ok {
		t.Fatalf("List/head of a non-empty list should be Some, got %#v", v.Form())
	}
	wantNat(t, some.Value, 10)

	v = eval(app(builtinE(syntax.ListHead), nat, empty))
	if _, ok := v.Form().(adt.OptionalNoneF); !ok {
		t.Fatalf("List/head of [] should be None, got %#v", v.Form())
	}

	v = eval(app(builtinE(syntax.ListIndexed), nat, xs))
	ll := v.Form().(adt.ListLitF)
	entry := ll.Elements[1].Form().(adt.RecordLitF)
	idx, _ := entry.Fields.Get("index")
	wantNat(t, idx, 1)
	val, _ := entry.Fields.Get("value")
	wantNat(t, val, 20)
}

func TestTextShowEscapes(t *testing.T) {
	e := app(builtinE(syntax.TextShow), &syntax.TextLitExpr{Chunks: []syntax.TextChunk{{Raw: "a\"b\n"}}})
	v := eval(e)
	tl, ok := v.Form().(adt.TextLitF)
	if !ok || len(tl.Chunks) != 1 {
		t.Fatalf("Text/show should produce a single raw chunk, got %#v", v.Form())
	}
	if got, want := tl.Chunks[0].Raw, `"a\"b\n"`; got != want {
		t.Errorf("Text/show escaping: got %q, want %q", got, want)
	}
}

func TestFullNormalizeIsIdempotent(t *testing.T) {
	e := lam("x", builtinE(syntax.NaturalBuiltin),
		binop(syntax.NaturalPlus, varE("x"), binop(syntax.NaturalPlus, natLit(1), natLit(2))))
	once := eval(e)
	twice := normalize.FullNormalize(once)
	if !normalize.AlphaEquivalent(once, twice) {
		t.Error("normalization must be idempotent")
	}
	if twice.State() != adt.NF {
		t.Errorf("re-normalizing an NF value should keep it NF, got %s", twice.State())
	}
}

func TestQuotePreservesBinderLabels(t *testing.T) {
	// Quoting a normalized lambda reconstructs its original binder label
	// and resolves shadowing with per-label indices.
	e := lam("x", builtinE(syntax.NaturalBuiltin),
		lam("y", builtinE(syntax.NaturalBuiltin),
			binop(syntax.NaturalPlus, varE("x"), varE("y"))))
	q := normalize.Quote(eval(e))
	outer, ok := q.(*syntax.LambdaExpr)
	if !ok || outer.Label != "x" {
		t.Fatalf("want the outer binder quoted as x, got %#v", q)
	}
	inner, ok := outer.Body.(*syntax.LambdaExpr)
	if !ok || inner.Label != "y" {
		t.Fatalf("want the inner binder quoted as y, got %#v", outer.Body)
	}
	sum, ok := inner.Body.(*syntax.BinOpExpr)
	if !ok {
		t.Fatalf("want the quoted sum back, got %#v", inner.Body)
	}
	if l, ok := sum.L.(*syntax.VarExpr); !ok || l.V != (syntax.V{Label: "x", Index: 0}) {
		t.Errorf("left operand should quote to x, got %#v", sum.L)
	}
	if r, ok := sum.R.(*syntax.VarExpr); !ok || r.V != (syntax.V{Label: "y", Index: 0}) {
		t.Errorf("right operand should quote to y, got %#v", sum.R)
	}
}

func TestQuoteShadowedBinder(t *testing.T) {
	// \(x : Natural) -> \(x : Natural) -> x@1 quotes back with the outer
	// occurrence's shadowing index intact.
	e := lam("x", builtinE(syntax.NaturalBuiltin),
		lam("x", builtinE(syntax.NaturalBuiltin),
			&syntax.VarExpr{V: syntax.V{Label: "x", Index: 1}}))
	q := normalize.Quote(eval(e))
	outer := q.(*syntax.LambdaExpr)
	inner := outer.Body.(*syntax.LambdaExpr)
	got, ok := inner.Body.(*syntax.VarExpr)
	if !ok || got.V != (syntax.V{Label: "x", Index: 1}) {
		t.Fatalf("want x@1 quoted back, got %#v", inner.Body)
	}
}
