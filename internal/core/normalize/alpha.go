package normalize

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

// FullNormalize forces v and every Value reachable from it to NF,
// recursing under binders the way spec.md 4.4's full-normal-form pass
// does. It never changes a Value already in state NF, so repeated calls
// are cheap (full_normalize . full_normalize == full_normalize).
func FullNormalize(v *adt.Value) *adt.Value {
	forced := Force(v)
	if forced.State() == adt.NF {
		return forced
	}
	form := fullNormalizeForm(forced.Form())
	forced.Advance(adt.NF, form)
	return forced
}

func fullNormalizeForm(form adt.ValueF) adt.ValueF {
	switch f := form.(type) {
	case adt.ConstF, adt.VarF, adt.BuiltinF, adt.BoolLitF, adt.NaturalLitF, adt.IntegerLitF, adt.DoubleLitF:
		return form

	case adt.LambdaF:
		return adt.LambdaF{Label: f.Label, Domain: FullNormalize(f.Domain), Body: FullNormalize(f.Body)}
	case adt.PiF:
		return adt.PiF{Label: f.Label, Domain: FullNormalize(f.Domain), Codomain: FullNormalize(f.Codomain)}
	case adt.AppF:
		return adt.AppF{Fn: FullNormalize(f.Fn), Arg: FullNormalize(f.Arg)}
	case adt.IfF:
		return adt.IfF{Cond: FullNormalize(f.Cond), Then: FullNormalize(f.Then), Else: FullNormalize(f.Else)}
	case adt.BinOpF:
		return adt.BinOpF{Op: f.Op, L: FullNormalize(f.L), R: FullNormalize(f.R)}
	case adt.EmptyListF:
		return adt.EmptyListF{ElemType: FullNormalize(f.ElemType)}
	case adt.ListLitF:
		elems := make([]*adt.Value, len(f.Elements))
		for i, e := range f.Elements {
			elems[i] = FullNormalize(e)
		}
		return adt.ListLitF{Elements: elems}
	case adt.SomeF:
		return adt.SomeF{Value: FullNormalize(f.Value)}
	case adt.OptionalNoneF:
		return adt.OptionalNoneF{ElemType: FullNormalize(f.ElemType)}
	case adt.RecordTypeF:
		fields, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *adt.Value) (*adt.Value, bool) {
			return FullNormalize(v), true
		})
		return adt.RecordTypeF{Fields: fields}
	case adt.RecordLitF:
		fields, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *adt.Value) (*adt.Value, bool) {
			return FullNormalize(v), true
		})
		return adt.RecordLitF{Fields: fields}
	case adt.UnionTypeF:
		alts, _ := syntax.MapFieldsOK(f.Alternatives, func(_ syntax.Label, v *adt.Value) (*adt.Value, bool) {
			if v == nil {
				return nil, true
			}
			return FullNormalize(v), true
		})
		return adt.UnionTypeF{Alternatives: alts}
	case adt.UnionConstructorF:
		return adt.UnionConstructorF{Type: FullNormalize(f.Type), Alt: f.Alt}
	case adt.UnionValF:
		var payload *adt.Value
		if f.Payload != nil {
			payload = FullNormalize(f.Payload)
		}
		return adt.UnionValF{Type: FullNormalize(f.Type), Alt: f.Alt, Payload: payload}
	case adt.TextLitF:
		chunks := make([]adt.TextPiece, len(f.Chunks))
		for i, c := range f.Chunks {
			if c.Embed == nil {
				chunks[i] = c
				continue
			}
			chunks[i] = adt.TextPiece{Embed: FullNormalize(c.Embed)}
		}
		return adt.TextLitF{Chunks: chunks}
	case adt.FieldF:
		return adt.FieldF{Record: FullNormalize(f.Record), Label: f.Label}
	case adt.ProjectF:
		return adt.ProjectF{Record: FullNormalize(f.Record), Labels: f.Labels}
	case adt.MergeF:
		var annot *adt.Value
		if f.Annot != nil {
			annot = FullNormalize(f.Annot)
		}
		return adt.MergeF{Handlers: FullNormalize(f.Handlers), Union: FullNormalize(f.Union), Annot: annot}
	case adt.NativeFuncF:
		return form
	default:
		return form
	}
}

// AlphaNormalize rewrites every bound label in v's shape to "_", per
// spec.md 4.4/9: only labels introduced by a binder change, a free
// variable's label is left alone since it names something outside the
// term being normalized. AlphaVar's absolute index - the only thing
// judgmental equality actually compares, see equiv.go - is untouched;
// this pass exists for canonical rendering, not for deciding equality.
func AlphaNormalize(v *adt.Value) *adt.Value {
	forced := Force(v)
	form := alphaNormalizeForm(forced.Form())
	return adt.NewWHNF(form, unknownType)
}

func alphaNormalizeForm(form adt.ValueF) adt.ValueF {
	switch f := form.(type) {
	case adt.LambdaF:
		return adt.LambdaF{Label: "_", Domain: AlphaNormalize(f.Domain), Body: AlphaNormalize(f.Body)}
	case adt.PiF:
		return adt.PiF{Label: "_", Domain: AlphaNormalize(f.Domain), Codomain: AlphaNormalize(f.Codomain)}
	case adt.AppF:
		return adt.AppF{Fn: AlphaNormalize(f.Fn), Arg: AlphaNormalize(f.Arg)}
	case adt.IfF:
		return adt.IfF{Cond: AlphaNormalize(f.Cond), Then: AlphaNormalize(f.Then), Else: AlphaNormalize(f.Else)}
	case adt.BinOpF:
		return adt.BinOpF{Op: f.Op, L: AlphaNormalize(f.L), R: AlphaNormalize(f.R)}
	case adt.EmptyListF:
		return adt.EmptyListF{ElemType: AlphaNormalize(f.ElemType)}
	case adt.ListLitF:
		elems := make([]*adt.Value, len(f.Elements))
		for i, e := range f.Elements {
			elems[i] = AlphaNormalize(e)
		}
		return adt.ListLitF{Elements: elems}
	case adt.SomeF:
		return adt.SomeF{Value: AlphaNormalize(f.Value)}
	case adt.OptionalNoneF:
		return adt.OptionalNoneF{ElemType: AlphaNormalize(f.ElemType)}
	case adt.RecordTypeF:
		fields, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *adt.Value) (*adt.Value, bool) {
			return AlphaNormalize(v), true
		})
		return adt.RecordTypeF{Fields: fields}
	case adt.RecordLitF:
		fields, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *adt.Value) (*adt.Value, bool) {
			return AlphaNormalize(v), true
		})
		return adt.RecordLitF{Fields: fields}
	case adt.UnionTypeF:
		alts, _ := syntax.MapFieldsOK(f.Alternatives, func(_ syntax.Label, v *adt.Value) (*adt.Value, bool) {
			if v == nil {
				return nil, true
			}
			return AlphaNormalize(v), true
		})
		return adt.UnionTypeF{Alternatives: alts}
	case adt.UnionConstructorF:
		return adt.UnionConstructorF{Type: AlphaNormalize(f.Type), Alt: f.Alt}
	case adt.UnionValF:
		var payload *adt.Value
		if f.Payload != nil {
			payload = AlphaNormalize(f.Payload)
		}
		return adt.UnionValF{Type: AlphaNormalize(f.Type), Alt: f.Alt, Payload: payload}
	case adt.TextLitF:
		chunks := make([]adt.TextPiece, len(f.Chunks))
		for i, c := range f.Chunks {
			if c.Embed == nil {
				chunks[i] = c
				continue
			}
			chunks[i] = adt.TextPiece{Embed: AlphaNormalize(c.Embed)}
		}
		return adt.TextLitF{Chunks: chunks}
	case adt.FieldF:
		return adt.FieldF{Record: AlphaNormalize(f.Record), Label: f.Label}
	case adt.ProjectF:
		return adt.ProjectF{Record: AlphaNormalize(f.Record), Labels: f.Labels}
	case adt.MergeF:
		var annot *adt.Value
		if f.Annot != nil {
			annot = AlphaNormalize(f.Annot)
		}
		return adt.MergeF{Handlers: AlphaNormalize(f.Handlers), Union: AlphaNormalize(f.Union), Annot: annot}
	default:
		// Leaf shapes only: consts, variables, builtins, literals, and
		// the builtin-internal NativeFuncF.
		return form
	}
}
