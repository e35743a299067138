package adt_test

import (
	"testing"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

func TestSubstReplacesMatchingIndex(t *testing.T) {
	repl := adt.NewNF(adt.NaturalLitF{Value: 42}, func() *adt.Value { return natType() })
	v := varNF("x", 0)

	out := adt.Subst(v, 0, repl)
	if lit, ok := out.Form().(adt.NaturalLitF); !ok || lit.Value != 42 {
		t.Fatalf("want the replacement literal, got %#v", out.Form())
	}
}

func TestSubstShiftsHigherIndicesDown(t *testing.T) {
	repl := adt.NewNF(adt.NaturalLitF{Value: 0}, func() *adt.Value { return natType() })
	v := varNF("y", 3)

	out := adt.Subst(v, 0, repl)
	form, ok := out.Form().(adt.VarF)
	if !ok {
		t.Fatalf("expected a variable to survive, got %#v", out.Form())
	}
	if form.Var.Absolute != 2 {
		t.Errorf("want index shifted down to 2, got %d", form.Var.Absolute)
	}
}

func TestSubstLeavesLowerIndicesAlone(t *testing.T) {
	repl := adt.NewNF(adt.NaturalLitF{Value: 0}, func() *adt.Value { return natType() })
	v := varNF("z", 1)

	out := adt.Subst(v, 2, repl)
	form, ok := out.Form().(adt.VarF)
	if !ok {
		t.Fatalf("expected a variable to survive, got %#v", out.Form())
	}
	if form.Var.Absolute != 1 {
		t.Errorf("index below cutoff must not move, got %d", form.Var.Absolute)
	}
}

func TestSubstShiftsReplacementUnderBinders(t *testing.T) {
	// Substitute the free variable "outer" (index 0) for x, which sits at
	// index 1 outside \(y : Natural) -> x. Inside the lambda x is at index
	// 2, and the replacement must be shifted up by one to skip the newly
	// introduced y.
	repl := varNF("outer", 0)
	body := varNF("x", 2) // x, counted from inside the lambda's own y
	lam := adt.NewNF(adt.LambdaF{Label: "y", Domain: natType(), Body: body}, nil)

	out := adt.Subst(lam, 1, repl)
	form := out.Form().(adt.LambdaF)
	gotVar := form.Body.Form().(adt.VarF)
	if gotVar.Var.Absolute != 1 || gotVar.Var.Label != "outer" {
		t.Errorf("replacement should be shifted to index 1 inside the new binder, got %d", gotVar.Var.Absolute)
	}
}

func TestSubstRecordFields(t *testing.T) {
	repl := adt.NewNF(adt.NaturalLitF{Value: 7}, func() *adt.Value { return natType() })
	fields, err := syntax.NewFields([]syntax.LabelValue[*adt.Value]{
		{Label: "a", Value: varNF("x", 0)},
		{Label: "b", Value: natType()},
	})
	if err != nil {
		t.Fatal(err)
	}
	rec := adt.NewNF(adt.RecordLitF{Fields: fields}, nil)

	out := adt.Subst(rec, 0, repl)
	got := out.Form().(adt.RecordLitF)
	av, _ := got.Fields.Get("a")
	if lit, ok := av.Form().(adt.NaturalLitF); !ok || lit.Value != 7 {
		t.Errorf("field a should have been substituted, got %#v", av.Form())
	}
}

func TestSubstDefersForUnevaluatedValues(t *testing.T) {
	forced := false
	thunk := thunkFunc(func() *adt.Value {
		forced = true
		return varNF("x", 0)
	})
	v := adt.NewThunk(thunk, func() *adt.Value { return natType() })
	repl := adt.NewNF(adt.NaturalLitF{Value: 9}, func() *adt.Value { return natType() })

	out := adt.Subst(v, 0, repl)
	if forced {
		t.Fatal("substituting into an unevaluated value must not force it eagerly")
	}
	if out.State() != adt.Unevaluated {
		t.Fatalf("result should stay unevaluated until forced, got %s", out.State())
	}

	got := out.Thunk().Force()
	if !forced {
		t.Fatal("forcing should run the deferred substitution")
	}
	if lit, ok := got.Form().(adt.NaturalLitF); !ok || lit.Value != 9 {
		t.Errorf("want the replacement literal after forcing, got %#v", got.Form())
	}
}
