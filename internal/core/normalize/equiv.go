package normalize

import (
	"math"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

// AlphaEquivalent decides judgmental equality's structural half: whether a
// and b denote the same value up to bound-variable naming. Both sides are
// forced to WHNF (never full NF) as the comparison descends, so two
// infinite or merely expensive-to-fully-reduce terms can still compare
// equal without normalizing either one completely - the same laziness
// whnf itself relies on.
//
// Because VarF already carries a label-agnostic absolute index (see
// shift.go), comparing two variables is just comparing that index: no
// separate de-Bruijn-renumbering pass is needed the way a named-variable
// representation would require.
func AlphaEquivalent(a, b *adt.Value) bool {
	av := Force(a)
	bv := Force(b)
	return formEquivalent(av.Form(), bv.Form())
}

func formEquivalent(a, b adt.ValueF) bool {
	switch af := a.(type) {
	case adt.ConstF:
		bf, ok := b.(adt.ConstF)
		return ok && af.Const == bf.Const

	case adt.VarF:
		bf, ok := b.(adt.VarF)
		return ok && af.Var.Equal(bf.Var)

	case adt.BuiltinF:
		bf, ok := b.(adt.BuiltinF)
		return ok && af.Builtin == bf.Builtin

	case adt.LambdaF:
		bf, ok := b.(adt.LambdaF)
		return ok && AlphaEquivalent(af.Domain, bf.Domain) && AlphaEquivalent(af.Body, bf.Body)

	case adt.PiF:
		bf, ok := b.(adt.PiF)
		return ok && AlphaEquivalent(af.Domain, bf.Domain) && AlphaEquivalent(af.Codomain, bf.Codomain)

	case adt.AppF:
		bf, ok := b.(adt.AppF)
		return ok && AlphaEquivalent(af.Fn, bf.Fn) && AlphaEquivalent(af.Arg, bf.Arg)

	case adt.IfF:
		bf, ok := b.(adt.IfF)
		return ok && AlphaEquivalent(af.Cond, bf.Cond) &&
			AlphaEquivalent(af.Then, bf.Then) && AlphaEquivalent(af.Else, bf.Else)

	case adt.BoolLitF:
		bf, ok := b.(adt.BoolLitF)
		return ok && af.Value == bf.Value

	case adt.NaturalLitF:
		bf, ok := b.(adt.NaturalLitF)
		return ok && af.Value == bf.Value

	case adt.IntegerLitF:
		bf, ok := b.(adt.IntegerLitF)
		return ok && af.Value == bf.Value

	case adt.DoubleLitF:
		// Dhall's Double equality is the IEEE bit pattern, not Go's ==,
		// so that two NaN literals (including distinct payloads encoded
		// the same way here) compare equal to themselves.
		bf, ok := b.(adt.DoubleLitF)
		return ok && math.Float64bits(af.Value) == math.Float64bits(bf.Value)

	case adt.BinOpF:
		bf, ok := b.(adt.BinOpF)
		return ok && af.Op == bf.Op && AlphaEquivalent(af.L, bf.L) && AlphaEquivalent(af.R, bf.R)

	case adt.EmptyListF:
		bf, ok := b.(adt.EmptyListF)
		return ok && AlphaEquivalent(af.ElemType, bf.ElemType)

	case adt.ListLitF:
		bf, ok := b.(adt.ListLitF)
		if !ok || len(af.Elements) != len(bf.Elements) {
			return false
		}
		for i := range af.Elements {
			if !AlphaEquivalent(af.Elements[i], bf.Elements[i]) {
				return false
			}
		}
		return true

	case adt.SomeF:
		bf, ok := b.(adt.SomeF)
		return ok && AlphaEquivalent(af.Value, bf.Value)

	case adt.OptionalNoneF:
		bf, ok := b.(adt.OptionalNoneF)
		return ok && AlphaEquivalent(af.ElemType, bf.ElemType)

	case adt.RecordTypeF:
		bf, ok := b.(adt.RecordTypeF)
		return ok && fieldsEquivalent(af.Fields, bf.Fields)

	case adt.RecordLitF:
		bf, ok := b.(adt.RecordLitF)
		return ok && fieldsEquivalent(af.Fields, bf.Fields)

	case adt.UnionTypeF:
		bf, ok := b.(adt.UnionTypeF)
		return ok && fieldsEquivalent(af.Alternatives, bf.Alternatives)

	case adt.UnionConstructorF:
		bf, ok := b.(adt.UnionConstructorF)
		return ok && af.Alt == bf.Alt && AlphaEquivalent(af.Type, bf.Type)

	case adt.UnionValF:
		bf, ok := b.(adt.UnionValF)
		if !ok || af.Alt != bf.Alt || !AlphaEquivalent(af.Type, bf.Type) {
			return false
		}
		if (af.Payload == nil) != (bf.Payload == nil) {
			return false
		}
		return af.Payload == nil || AlphaEquivalent(af.Payload, bf.Payload)

	case adt.TextLitF:
		bf, ok := b.(adt.TextLitF)
		if !ok || len(af.Chunks) != len(bf.Chunks) {
			return false
		}
		for i := range af.Chunks {
			ap, bp := af.Chunks[i], bf.Chunks[i]
			if (ap.Embed == nil) != (bp.Embed == nil) {
				return false
			}
			if ap.Embed != nil {
				if !AlphaEquivalent(ap.Embed, bp.Embed) {
					return false
				}
				continue
			}
			if ap.Raw != bp.Raw {
				return false
			}
		}
		return true

	case adt.FieldF:
		bf, ok := b.(adt.FieldF)
		return ok && af.Label == bf.Label && AlphaEquivalent(af.Record, bf.Record)

	case adt.ProjectF:
		bf, ok := b.(adt.ProjectF)
		if !ok || len(af.Labels) != len(bf.Labels) {
			return false
		}
		for i := range af.Labels {
			if af.Labels[i] != bf.Labels[i] {
				return false
			}
		}
		return AlphaEquivalent(af.Record, bf.Record)

	case adt.MergeF:
		bf, ok := b.(adt.MergeF)
		if !ok || !AlphaEquivalent(af.Handlers, bf.Handlers) || !AlphaEquivalent(af.Union, bf.Union) {
			return false
		}
		if (af.Annot == nil) != (bf.Annot == nil) {
			return false
		}
		return af.Annot == nil || AlphaEquivalent(af.Annot, bf.Annot)

	default:
		return false
	}
}

func fieldsEquivalent(a, b *syntax.Fields[*adt.Value]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.Keys() {
		av, _ := a.Get(k)
		bv, bok := b.Get(k)
		if !bok {
			return false
		}
		if (av == nil) != (bv == nil) {
			return false
		}
		if av == nil {
			continue
		}
		if !AlphaEquivalent(av, bv) {
			return false
		}
	}
	return true
}
