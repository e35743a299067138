package binary_test

import (
	"testing"

	"dhall-lang.org/go/internal/core/binary"
	"dhall-lang.org/go/syntax"
	"github.com/google/go-cmp/cmp"
)

// roundTrip asserts spec.md 8's encode/decode property for exprs that
// contain no bound-variable labels worth comparing by alpha-equivalence;
// these are all closed, label-free-enough shapes that a structural diff
// on the decoded Expr tree is a faithful enough equality check without
// pulling in the normalizer just for these structural tests.
func roundTrip(t *testing.T, e syntax.Expr) syntax.Expr {
	t.Helper()
	b, err := binary.Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := binary.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestRoundTripScalars(t *testing.T) {
	cases := []syntax.Expr{
		&syntax.ConstExpr{Const: syntax.Type},
		&syntax.ConstExpr{Const: syntax.Kind},
		&syntax.ConstExpr{Const: syntax.Sort},
		&syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin},
		&syntax.BuiltinExpr{Builtin: syntax.NaturalFold},
		&syntax.BoolLitExpr{Value: true},
		&syntax.BoolLitExpr{Value: false},
		&syntax.NaturalLitExpr{Value: 42},
		&syntax.NaturalLitExpr{Value: 0},
		&syntax.IntegerLitExpr{Value: -7},
		&syntax.IntegerLitExpr{Value: 7},
		&syntax.DoubleLitExpr{Value: 3.5},
		&syntax.DoubleLitExpr{Value: -0.0},
		&syntax.NoneExpr{},
	}
	for _, want := range cases {
		got := roundTrip(t, want)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestRoundTripVariable(t *testing.T) {
	cases := []*syntax.VarExpr{
		{V: syntax.V{Label: "_", Index: 0}},
		{V: syntax.V{Label: "_", Index: 3}},
		{V: syntax.V{Label: "x", Index: 0}},
		{V: syntax.V{Label: "x", Index: 2}},
	}
	for _, want := range cases {
		got := roundTrip(t, want)
		gv, ok := got.(*syntax.VarExpr)
		if !ok {
			t.Fatalf("got %#v, want *VarExpr", got)
		}
		if gv.V != want.V {
			t.Errorf("got %+v, want %+v", gv.V, want.V)
		}
	}
}

func TestRoundTripLambdaAndPi(t *testing.T) {
	lam := &syntax.LambdaExpr{
		Label: "x",
		Type:  &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin},
		Body:  &syntax.VarExpr{V: syntax.V{Label: "x", Index: 0}},
	}
	got := roundTrip(t, lam)
	gl, ok := got.(*syntax.LambdaExpr)
	if !ok || gl.Label != "x" {
		t.Fatalf("got %#v", got)
	}

	pi := &syntax.PiExpr{
		Label: "_",
		Type:  &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin},
		Body:  &syntax.BuiltinExpr{Builtin: syntax.BoolBuiltin},
	}
	got = roundTrip(t, pi)
	if _, ok := got.(*syntax.PiExpr); !ok {
		t.Fatalf("got %#v, want *PiExpr", got)
	}
}

func TestRoundTripApplicationSpine(t *testing.T) {
	// f a b c, nested as ((f a) b) c - Encode must flatten this into one
	// array and Decode must rebuild the identical left-nested shape.
	nat := func(n uint64) syntax.Expr { return &syntax.NaturalLitExpr{Value: n} }
	e := &syntax.AppExpr{
		Fn: &syntax.AppExpr{
			Fn:  &syntax.AppExpr{Fn: &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin}, Arg: nat(1)},
			Arg: nat(2),
		},
		Arg: nat(3),
	}
	got := roundTrip(t, e)
	app, ok := got.(*syntax.AppExpr)
	if !ok {
		t.Fatalf("got %#v, want *AppExpr", got)
	}
	if n, ok := app.Arg.(*syntax.NaturalLitExpr); !ok || n.Value != 3 {
		t.Fatalf("outermost arg = %#v, want Natural 3", app.Arg)
	}
	inner, ok := app.Fn.(*syntax.AppExpr)
	if !ok {
		t.Fatalf("app.Fn = %#v, want *AppExpr", app.Fn)
	}
	if n, ok := inner.Arg.(*syntax.NaturalLitExpr); !ok || n.Value != 2 {
		t.Fatalf("middle arg = %#v, want Natural 2", inner.Arg)
	}
}

func TestRoundTripOperator(t *testing.T) {
	e := &syntax.BinOpExpr{Op: syntax.NaturalPlus, L: &syntax.NaturalLitExpr{Value: 1}, R: &syntax.NaturalLitExpr{Value: 2}}
	got := roundTrip(t, e)
	op, ok := got.(*syntax.BinOpExpr)
	if !ok || op.Op != syntax.NaturalPlus {
		t.Fatalf("got %#v", got)
	}
}

func TestRoundTripList(t *testing.T) {
	empty := &syntax.EmptyListExpr{ElemType: &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin}}
	got := roundTrip(t, empty)
	if _, ok := got.(*syntax.EmptyListExpr); !ok {
		t.Fatalf("got %#v, want *EmptyListExpr", got)
	}

	lit := &syntax.ListLitExpr{Elements: []syntax.Expr{
		&syntax.NaturalLitExpr{Value: 1}, &syntax.NaturalLitExpr{Value: 2},
	}}
	got = roundTrip(t, lit)
	ll, ok := got.(*syntax.ListLitExpr)
	if !ok || len(ll.Elements) != 2 {
		t.Fatalf("got %#v", got)
	}
}

func TestRoundTripSome(t *testing.T) {
	e := &syntax.SomeExpr{Value: &syntax.NaturalLitExpr{Value: 5}}
	got := roundTrip(t, e)
	s, ok := got.(*syntax.SomeExpr)
	if !ok {
		t.Fatalf("got %#v, want *SomeExpr", got)
	}
	if n, ok := s.Value.(*syntax.NaturalLitExpr); !ok || n.Value != 5 {
		t.Fatalf("Some payload = %#v", s.Value)
	}
}

func TestRoundTripRecordAndUnion(t *testing.T) {
	fields, err := syntax.NewFields([]syntax.LabelValue[syntax.Expr]{
		{Label: "a", Value: &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin}},
		{Label: "b", Value: &syntax.BuiltinExpr{Builtin: syntax.BoolBuiltin}},
	})
	if err != nil {
		t.Fatal(err)
	}
	rt := &syntax.RecordTypeExpr{Fields: fields}
	got := roundTrip(t, rt)
	gr, ok := got.(*syntax.RecordTypeExpr)
	if !ok || gr.Fields.Len() != 2 {
		t.Fatalf("got %#v", got)
	}
	if v, ok := gr.Fields.Get("a"); !ok || v == nil {
		t.Errorf("missing field a")
	}

	alts, err := syntax.NewFields([]syntax.LabelValue[syntax.Expr]{
		{Label: "Foo", Value: &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin}},
		{Label: "Bar", Value: nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	ut := &syntax.UnionTypeExpr{Alternatives: alts}
	got = roundTrip(t, ut)
	gu, ok := got.(*syntax.UnionTypeExpr)
	if !ok {
		t.Fatalf("got %#v, want *UnionTypeExpr", got)
	}
	if v, ok := gu.Alternatives.Get("Bar"); !ok || v != nil {
		t.Errorf("Bar alternative should decode with a nil payload, got %#v", v)
	}
}

func TestRoundTripFieldAndProject(t *testing.T) {
	rec := &syntax.RecordLitExpr{}
	field := &syntax.FieldExpr{Record: rec, Label: "x"}
	got := roundTrip(t, field)
	if f, ok := got.(*syntax.FieldExpr); !ok || f.Label != "x" {
		t.Fatalf("got %#v", got)
	}

	proj := &syntax.ProjectExpr{Record: rec, Labels: []syntax.Label{"x", "y"}}
	got = roundTrip(t, proj)
	p, ok := got.(*syntax.ProjectExpr)
	if !ok || len(p.Labels) != 2 {
		t.Fatalf("got %#v", got)
	}
}

func TestRoundTripText(t *testing.T) {
	e := &syntax.TextLitExpr{Chunks: []syntax.TextChunk{
		{Raw: "hello "},
		{Expr: &syntax.VarExpr{V: syntax.V{Label: "name", Index: 0}}},
		{Raw: "!"},
	}}
	got := roundTrip(t, e)
	tl, ok := got.(*syntax.TextLitExpr)
	if !ok || len(tl.Chunks) != 3 {
		t.Fatalf("got %#v", got)
	}
	if tl.Chunks[0].Raw != "hello " || tl.Chunks[2].Raw != "!" {
		t.Errorf("raw chunks mismatch: %+v", tl.Chunks)
	}
	if tl.Chunks[1].Expr == nil {
		t.Errorf("middle chunk should be an embedded expression")
	}
}

func TestRoundTripMergeAssertAnnotLet(t *testing.T) {
	merge := &syntax.MergeExpr{
		Handlers: &syntax.RecordLitExpr{},
		Union:    &syntax.VarExpr{V: syntax.V{Label: "u", Index: 0}},
	}
	got := roundTrip(t, merge)
	if m, ok := got.(*syntax.MergeExpr); !ok || m.Annot != nil {
		t.Fatalf("got %#v", got)
	}

	mergeAnnot := &syntax.MergeExpr{
		Handlers: &syntax.RecordLitExpr{},
		Union:    &syntax.VarExpr{V: syntax.V{Label: "u", Index: 0}},
		Annot:    &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin},
	}
	got = roundTrip(t, mergeAnnot)
	if m, ok := got.(*syntax.MergeExpr); !ok || m.Annot == nil {
		t.Fatalf("got %#v, want an Annot", got)
	}

	assert := &syntax.AssertExpr{Annot: &syntax.BinOpExpr{
		Op: syntax.Equivalent,
		L:  &syntax.NaturalLitExpr{Value: 1},
		R:  &syntax.NaturalLitExpr{Value: 1},
	}}
	got = roundTrip(t, assert)
	if _, ok := got.(*syntax.AssertExpr); !ok {
		t.Fatalf("got %#v, want *AssertExpr", got)
	}

	annot := &syntax.AnnotExpr{Value: &syntax.NaturalLitExpr{Value: 1}, Type: &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin}}
	got = roundTrip(t, annot)
	if _, ok := got.(*syntax.AnnotExpr); !ok {
		t.Fatalf("got %#v, want *AnnotExpr", got)
	}

	let := &syntax.LetExpr{
		Label: "x",
		Value: &syntax.NaturalLitExpr{Value: 1},
		Body: &syntax.LetExpr{
			Label: "y",
			Annot: &syntax.BuiltinExpr{Builtin: syntax.NaturalBuiltin},
			Value: &syntax.NaturalLitExpr{Value: 2},
			Body:  &syntax.VarExpr{V: syntax.V{Label: "x", Index: 0}},
		},
	}
	got = roundTrip(t, let)
	l1, ok := got.(*syntax.LetExpr)
	if !ok || l1.Label != "x" || l1.Annot != nil {
		t.Fatalf("got %#v", got)
	}
	l2, ok := l1.Body.(*syntax.LetExpr)
	if !ok || l2.Label != "y" || l2.Annot == nil {
		t.Fatalf("inner let = %#v", l1.Body)
	}
}

func TestDecodeRejectsUnknownDiscriminator(t *testing.T) {
	// [99] : an array whose sole element is an out-of-range discriminator.
	_, err := binary.Decode([]byte{0x81, 0x18, 99})
	if err == nil {
		t.Fatal("expected a decode error for an unknown discriminator")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	_, err := binary.Decode([]byte{0x81})
	if err == nil {
		t.Fatal("expected a decode error for truncated input")
	}
}
