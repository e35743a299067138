package typecheck_test

import (
	"testing"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/typecheck"
	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

func constExpr(c syntax.Const) syntax.Expr     { return &syntax.ConstExpr{Const: c} }
func builtinExpr(b syntax.Builtin) syntax.Expr { return &syntax.BuiltinExpr{Builtin: b} }
func varExpr(label syntax.Label) syntax.Expr   { return &syntax.VarExpr{V: syntax.NewV(label)} }
func natLit(n uint64) syntax.Expr              { return &syntax.NaturalLitExpr{Value: n} }
func boolLit(b bool) syntax.Expr               { return &syntax.BoolLitExpr{Value: b} }

func arrow(from, to syntax.Expr) syntax.Expr {
	return &syntax.PiExpr{Label: "_", Type: from, Body: to}
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

func infer(t *testing.T, e syntax.Expr) *adt.Value {
	t.Helper()
	v, err := typecheck.Infer(nil, e)
	if err != nil {
		t.Fatalf("Infer(%v): unexpected error: %v", e, err)
	}
	return v
}

func wantTypeError(t *testing.T, err error, code derrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got success", code)
	}
	te, ok := err.(*derrors.TypeError)
	if !ok {
		t.Fatalf("expected *derrors.TypeError, got %T (%v)", err, err)
	}
	if te.Code() != code {
		t.Errorf("got error code %s, want %s (%v)", te.Code(), code, err)
	}
}

func TestInferIdentityLambda(t *testing.T) {
	// \(x : Natural) -> x : Natural -> Natural
	e := &syntax.LambdaExpr{Label: "x", Type: builtinExpr(syntax.NaturalBuiltin), Body: varExpr("x")}
	got := infer(t, e)
	pi, ok := got.Form().(adt.PiF)
	if !ok {
		t.Fatalf("identity lambda's type is not a Pi: %v", got.Form())
	}
	if _, ok := pi.Domain.Form().(adt.BuiltinF); !ok {
		t.Errorf("domain is not Natural: %v", pi.Domain.Form())
	}
}

func TestInferPiUniverse(t *testing.T) {
	// Natural -> Natural has type Type.
	e := arrow(builtinExpr(syntax.NaturalBuiltin), builtinExpr(syntax.NaturalBuiltin))
	got := infer(t, e)
	c, ok := got.Form().(adt.ConstF)
	if !ok || c.Const != syntax.Type {
		t.Fatalf("Natural -> Natural should have type Type, got %v", got.Form())
	}
}

func TestInferApplication(t *testing.T) {
	// (\(x : Natural) -> x) 5 : Natural
	id := &syntax.LambdaExpr{Label: "x", Type: builtinExpr(syntax.NaturalBuiltin), Body: varExpr("x")}
	app := &syntax.AppExpr{Fn: id, Arg: natLit(5)}
	got := infer(t, app)
	if _, ok := got.Form().(adt.BuiltinF); !ok {
		t.Fatalf("application result type is not Natural: %v", got.Form())
	}
}

func TestInferApplicationOfNonFunctionFails(t *testing.T) {
	app := &syntax.AppExpr{Fn: natLit(1), Arg: natLit(2)}
	_, err := typecheck.Infer(nil, app)
	wantTypeError(t, err, derrors.TypeNotAFunction)
}

func TestInferIfRequiresMatchingBranches(t *testing.T) {
	ifExpr := &syntax.IfExpr{Cond: boolLit(true), Then: natLit(1), Else: boolLit(false)}
	_, err := typecheck.Infer(nil, ifExpr)
	wantTypeError(t, err, derrors.TypeMismatch)
}

func TestInferIfOk(t *testing.T) {
	ifExpr := &syntax.IfExpr{Cond: boolLit(true), Then: natLit(1), Else: natLit(2)}
	got := infer(t, ifExpr)
	if _, ok := got.Form().(adt.BuiltinF); !ok {
		t.Fatalf("if result type is not Natural: %v", got.Form())
	}
}

func TestInferRecordLitAndProjection(t *testing.T) {
	rec := &syntax.RecordLitExpr{Fields: fieldsOf(
		lv("a", natLit(1)),
		lv("b", boolLit(true)),
	)}
	proj := &syntax.ProjectExpr{Record: rec, Labels: []syntax.Label{"a"}}
	got := infer(t, proj)
	rt, ok := got.Form().(adt.RecordTypeF)
	if !ok || rt.Fields.Len() != 1 {
		t.Fatalf("projection result should be a one-field record type, got %v", got.Form())
	}
}

func TestInferProjectionOfMissingFieldFails(t *testing.T) {
	rec := &syntax.RecordLitExpr{Fields: fieldsOf(lv("a", natLit(1)))}
	proj := &syntax.ProjectExpr{Record: rec, Labels: []syntax.Label{"missing"}}
	_, err := typecheck.Infer(nil, proj)
	wantTypeError(t, err, derrors.TypeInvalidField)
}

func TestInferRecordMergeRejectsScalarCollision(t *testing.T) {
	l := &syntax.RecordLitExpr{Fields: fieldsOf(lv("a", natLit(1)))}
	r := &syntax.RecordLitExpr{Fields: fieldsOf(lv("a", natLit(2)))}
	op := &syntax.BinOpExpr{Op: syntax.RecordMerge, L: l, R: r}
	_, err := typecheck.Infer(nil, op)
	wantTypeError(t, err, derrors.TypeMismatch)
}

func TestInferRecordMergeRecursesOnNestedRecords(t *testing.T) {
	l := &syntax.RecordLitExpr{Fields: fieldsOf(lv("a", &syntax.RecordLitExpr{Fields: fieldsOf(lv("x", natLit(1)))}))}
	r := &syntax.RecordLitExpr{Fields: fieldsOf(lv("a", &syntax.RecordLitExpr{Fields: fieldsOf(lv("y", natLit(2)))}))}
	op := &syntax.BinOpExpr{Op: syntax.RecordMerge, L: l, R: r}
	got := infer(t, op)
	rt := got.Form().(adt.RecordTypeF)
	inner, ok := rt.Fields.Get("a")
	if !ok {
		t.Fatal("merged record is missing field a")
	}
	innerRt, ok := inner.Form().(adt.RecordTypeF)
	if !ok || innerRt.Fields.Len() != 2 {
		t.Fatalf("nested merge should combine both inner fields, got %v", inner.Form())
	}
}

func TestInferRightBiasedMergeLetsRightWin(t *testing.T) {
	l := &syntax.RecordLitExpr{Fields: fieldsOf(lv("a", natLit(1)))}
	r := &syntax.RecordLitExpr{Fields: fieldsOf(lv("a", boolLit(true)))}
	op := &syntax.BinOpExpr{Op: syntax.RightBiasedMerge, L: l, R: r}
	got := infer(t, op)
	rt := got.Form().(adt.RecordTypeF)
	fv, _ := rt.Fields.Get("a")
	if _, ok := fv.Form().(adt.BuiltinF); !ok {
		t.Fatalf("right-biased merge should take the right side's type for a, got %v", fv.Form())
	}
}

func unionType(alts ...syntax.LabelValue[syntax.Expr]) *syntax.UnionTypeExpr {
	return &syntax.UnionTypeExpr{Alternatives: fieldsOf(alts...)}
}

func TestInferUnionConstructorWithPayload(t *testing.T) {
	ut := unionType(lv("Foo", builtinExpr(syntax.NaturalBuiltin)), lv("Bar", nil))
	ctor := &syntax.FieldExpr{Record: ut, Label: "Foo"}
	got := infer(t, ctor)
	pi, ok := got.Form().(adt.PiF)
	if !ok {
		t.Fatalf("payload-bearing constructor should have a Pi type, got %v", got.Form())
	}
	if _, ok := pi.Domain.Form().(adt.BuiltinF); !ok {
		t.Errorf("constructor domain should be Natural, got %v", pi.Domain.Form())
	}
}

func TestInferUnionConstructorWithoutPayload(t *testing.T) {
	ut := unionType(lv("Foo", builtinExpr(syntax.NaturalBuiltin)), lv("Bar", nil))
	ctor := &syntax.FieldExpr{Record: ut, Label: "Bar"}
	got := infer(t, ctor)
	if _, ok := got.Form().(adt.UnionTypeF); !ok {
		t.Fatalf("payload-less constructor's type should be the union type itself, got %v", got.Form())
	}
}

func TestInferUnionConstructorPayloadInDependentScope(t *testing.T) {
	// \(a : Type) -> \(x : a) -> (< L : a >.L x : < L : a >). The
	// constructor's Pi codomain sits one binder deeper than the union
	// type it was built from, so applying it must give back < L : a >
	// with a still denoting the outer type variable.
	ut := unionType(lv("L", varExpr("a")))
	e := &syntax.LambdaExpr{
		Label: "a", Type: constExpr(syntax.Type),
		Body: &syntax.LambdaExpr{
			Label: "x", Type: varExpr("a"),
			Body: &syntax.AnnotExpr{
				Value: &syntax.AppExpr{Fn: &syntax.FieldExpr{Record: ut, Label: "L"}, Arg: varExpr("x")},
				Type:  ut,
			},
		},
	}
	infer(t, e)
}

func TestInferMergeOk(t *testing.T) {
	ut := unionType(lv("Foo", builtinExpr(syntax.NaturalBuiltin)), lv("Bar", nil))
	handlers := &syntax.RecordLitExpr{Fields: fieldsOf(
		lv("Foo", &syntax.LambdaExpr{Label: "n", Type: builtinExpr(syntax.NaturalBuiltin), Body: boolLit(true)}),
		lv("Bar", boolLit(false)),
	)}
	union := &syntax.FieldExpr{Record: ut, Label: "Bar"}
	merge := &syntax.MergeExpr{Handlers: handlers, Union: union}
	got := infer(t, merge)
	if _, ok := got.Form().(adt.BuiltinF); !ok {
		t.Fatalf("merge result should be Bool, got %v", got.Form())
	}
}

func TestInferMergeMissingHandlerFails(t *testing.T) {
	ut := unionType(lv("Foo", nil), lv("Bar", nil))
	handlers := &syntax.RecordLitExpr{Fields: fieldsOf(lv("Foo", boolLit(true)))}
	union := &syntax.FieldExpr{Record: ut, Label: "Bar"}
	merge := &syntax.MergeExpr{Handlers: handlers, Union: union}
	_, err := typecheck.Infer(nil, merge)
	wantTypeError(t, err, derrors.TypeHandlerMissing)
}

func TestInferMergeExtraHandlerFails(t *testing.T) {
	ut := unionType(lv("Foo", nil))
	handlers := &syntax.RecordLitExpr{Fields: fieldsOf(
		lv("Foo", boolLit(true)),
		lv("Bar", boolLit(false)),
	)}
	union := &syntax.FieldExpr{Record: ut, Label: "Foo"}
	merge := &syntax.MergeExpr{Handlers: handlers, Union: union}
	_, err := typecheck.Infer(nil, merge)
	wantTypeError(t, err, derrors.TypeHandlerExtra)
}

func TestInferAssertOk(t *testing.T) {
	// assert : (1 + 1) ≡ 2
	eq := &syntax.BinOpExpr{
		Op: syntax.Equivalent,
		L:  &syntax.BinOpExpr{Op: syntax.NaturalPlus, L: natLit(1), R: natLit(1)},
		R:  natLit(2),
	}
	assert := &syntax.AssertExpr{Annot: eq}
	infer(t, assert)
}

func TestInferAssertMismatchFails(t *testing.T) {
	eq := &syntax.BinOpExpr{Op: syntax.Equivalent, L: natLit(1), R: natLit(2)}
	assert := &syntax.AssertExpr{Annot: eq}
	_, err := typecheck.Infer(nil, assert)
	wantTypeError(t, err, derrors.TypeAssertMismatch)
}

func TestCheckLambdaAgainstPi(t *testing.T) {
	lam := &syntax.LambdaExpr{Label: "x", Type: builtinExpr(syntax.NaturalBuiltin), Body: varExpr("x")}
	expected := typecheck.Eval(nil, arrow(builtinExpr(syntax.NaturalBuiltin), builtinExpr(syntax.NaturalBuiltin)))
	if err := typecheck.Check(nil, lam, expected); err != nil {
		t.Fatalf("Check: unexpected error: %v", err)
	}
}

func TestCheckLambdaDomainMismatch(t *testing.T) {
	lam := &syntax.LambdaExpr{Label: "x", Type: builtinExpr(syntax.BoolBuiltin), Body: varExpr("x")}
	expected := typecheck.Eval(nil, arrow(builtinExpr(syntax.NaturalBuiltin), builtinExpr(syntax.NaturalBuiltin)))
	err := typecheck.Check(nil, lam, expected)
	wantTypeError(t, err, derrors.TypeMismatch)
}

func TestInferPolymorphicIdentity(t *testing.T) {
	// \(a : Type) -> \(x : a) -> x : forall(a : Type) -> a -> a
	e := &syntax.LambdaExpr{
		Label: "a", Type: constExpr(syntax.Type),
		Body: &syntax.LambdaExpr{Label: "x", Type: varExpr("a"), Body: varExpr("x")},
	}
	got := infer(t, e)
	outer, ok := got.Form().(adt.PiF)
	if !ok {
		t.Fatalf("want a Pi, got %v", got.Form())
	}
	inner, ok := outer.Codomain.Form().(adt.PiF)
	if !ok {
		t.Fatalf("want a nested Pi, got %v", outer.Codomain.Form())
	}
	if _, ok := inner.Domain.Form().(adt.VarF); !ok {
		t.Errorf("inner domain should be the bound type variable, got %v", inner.Domain.Form())
	}
}

func TestInferPolymorphicApplication(t *testing.T) {
	// \(a : Type) -> \(f : a -> a) -> \(x : a) -> f x. The types of f and
	// x are captured at different binder depths; applying f to x only
	// typechecks if both are compared at the application site's depth.
	e := &syntax.LambdaExpr{
		Label: "a", Type: constExpr(syntax.Type),
		Body: &syntax.LambdaExpr{
			Label: "f", Type: arrow(varExpr("a"), varExpr("a")),
			Body: &syntax.LambdaExpr{
				Label: "x", Type: varExpr("a"),
				Body: &syntax.AppExpr{Fn: varExpr("f"), Arg: varExpr("x")},
			},
		},
	}
	infer(t, e)
}

func TestInferAppliedPolymorphicIdentity(t *testing.T) {
	// (\(a : Type) -> \(x : a) -> x) Natural 5 : Natural
	id := &syntax.LambdaExpr{
		Label: "a", Type: constExpr(syntax.Type),
		Body: &syntax.LambdaExpr{Label: "x", Type: varExpr("a"), Body: varExpr("x")},
	}
	e := &syntax.AppExpr{
		Fn:  &syntax.AppExpr{Fn: id, Arg: builtinExpr(syntax.NaturalBuiltin)},
		Arg: natLit(5),
	}
	got := infer(t, e)
	if b, ok := got.Form().(adt.BuiltinF); !ok || b.Builtin != syntax.NaturalBuiltin {
		t.Fatalf("want Natural, got %v", got.Form())
	}
}

func TestInferMergeOptional(t *testing.T) {
	// merge { Some = \(x : Natural) -> x, None = 0 } (Some 5) : Natural
	handlers := &syntax.RecordLitExpr{Fields: fieldsOf(
		lv("Some", &syntax.LambdaExpr{Label: "x", Type: builtinExpr(syntax.NaturalBuiltin), Body: varExpr("x")}),
		lv("None", natLit(0)),
	)}
	merge := &syntax.MergeExpr{Handlers: handlers, Union: &syntax.SomeExpr{Value: natLit(5)}}
	got := infer(t, merge)
	if b, ok := got.Form().(adt.BuiltinF); !ok || b.Builtin != syntax.NaturalBuiltin {
		t.Fatalf("merge over an Optional should infer the handlers' result type, got %v", got.Form())
	}
}

func TestInferUnboundVariableFails(t *testing.T) {
	_, err := typecheck.Infer(nil, varExpr("x"))
	wantTypeError(t, err, derrors.TypeUnbound)
}

func TestInferEmptyListRequiresTypeUniverse(t *testing.T) {
	e := &syntax.EmptyListExpr{ElemType: constExpr(syntax.Type)}
	_, err := typecheck.Infer(nil, e)
	wantTypeError(t, err, derrors.TypeMismatch)
}

func TestInferListLitMismatchedElements(t *testing.T) {
	e := &syntax.ListLitExpr{Elements: []syntax.Expr{natLit(1), boolLit(true)}}
	_, err := typecheck.Infer(nil, e)
	wantTypeError(t, err, derrors.TypeMismatch)
}
