package normalize

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

// Quote reifies a semantic Value back into a syntax.Expr, the inverse of
// Eval for a Value's shape. Bound variables keep their original binder
// labels; the per-label shadowing index each occurrence needs in surface
// syntax is recomputed from the stack of binder labels entered during
// quoting, since a VarF only carries the label-agnostic absolute index
// (see syntax.AlphaVar). Quoting is exact for closed values - the only
// values the resolver and the binary encoder ever quote - and
// best-effort for the label of a variable free beyond the quote root,
// which only the diagnostic printer ever encounters.
func Quote(v *adt.Value) syntax.Expr {
	return quote(nil, v)
}

func quote(stack []syntax.Label, v *adt.Value) syntax.Expr {
	fv := Force(v)
	switch f := fv.Form().(type) {
	case adt.ConstF:
		return &syntax.ConstExpr{Const: f.Const}

	case adt.VarF:
		return &syntax.VarExpr{V: quoteVar(stack, f.Var)}

	case adt.BuiltinF:
		return &syntax.BuiltinExpr{Builtin: f.Builtin}

	case adt.LambdaF:
		return &syntax.LambdaExpr{
			Label: f.Label,
			Type:  quote(stack, f.Domain),
			Body:  quote(append(stack, f.Label), f.Body),
		}

	case adt.PiF:
		return &syntax.PiExpr{
			Label: f.Label,
			Type:  quote(stack, f.Domain),
			Body:  quote(append(stack, f.Label), f.Codomain),
		}

	case adt.AppF:
		return &syntax.AppExpr{Fn: quote(stack, f.Fn), Arg: quote(stack, f.Arg)}

	case adt.IfF:
		return &syntax.IfExpr{Cond: quote(stack, f.Cond), Then: quote(stack, f.Then), Else: quote(stack, f.Else)}

	case adt.BoolLitF:
		return &syntax.BoolLitExpr{Value: f.Value}
	case adt.NaturalLitF:
		return &syntax.NaturalLitExpr{Value: f.Value}
	case adt.IntegerLitF:
		return &syntax.IntegerLitExpr{Value: f.Value}
	case adt.DoubleLitF:
		return &syntax.DoubleLitExpr{Value: f.Value}

	case adt.BinOpF:
		return &syntax.BinOpExpr{Op: f.Op, L: quote(stack, f.L), R: quote(stack, f.R)}

	case adt.EmptyListF:
		return &syntax.EmptyListExpr{ElemType: quote(stack, f.ElemType)}

	case adt.ListLitF:
		elems := make([]syntax.Expr, len(f.Elements))
		for i, e := range f.Elements {
			elems[i] = quote(stack, e)
		}
		return &syntax.ListLitExpr{Elements: elems}

	case adt.SomeF:
		return &syntax.SomeExpr{Value: quote(stack, f.Value)}

	case adt.OptionalNoneF:
		return &syntax.AppExpr{
			Fn:  &syntax.BuiltinExpr{Builtin: syntax.OptionalNone},
			Arg: quote(stack, f.ElemType),
		}

	case adt.RecordTypeF:
		fields, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *adt.Value) (syntax.Expr, bool) {
			return quote(stack, v), true
		})
		return &syntax.RecordTypeExpr{Fields: fields}

	case adt.RecordLitF:
		fields, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *adt.Value) (syntax.Expr, bool) {
			return quote(stack, v), true
		})
		return &syntax.RecordLitExpr{Fields: fields}

	case adt.UnionTypeF:
		alts, _ := syntax.MapFieldsOK(f.Alternatives, func(_ syntax.Label, v *adt.Value) (syntax.Expr, bool) {
			if v == nil {
				return nil, true
			}
			return quote(stack, v), true
		})
		return &syntax.UnionTypeExpr{Alternatives: alts}

	case adt.UnionConstructorF:
		return &syntax.FieldExpr{Record: quote(stack, f.Type), Label: f.Alt}

	case adt.UnionValF:
		if f.Payload == nil {
			return &syntax.FieldExpr{Record: quote(stack, f.Type), Label: f.Alt}
		}
		return &syntax.AppExpr{
			Fn:  &syntax.FieldExpr{Record: quote(stack, f.Type), Label: f.Alt},
			Arg: quote(stack, f.Payload),
		}

	case adt.TextLitF:
		chunks := make([]syntax.TextChunk, len(f.Chunks))
		for i, c := range f.Chunks {
			if c.Embed == nil {
				chunks[i] = syntax.TextChunk{Raw: c.Raw}
				continue
			}
			chunks[i] = syntax.TextChunk{Expr: quote(stack, c.Embed)}
		}
		return &syntax.TextLitExpr{Chunks: chunks}

	case adt.FieldF:
		return &syntax.FieldExpr{Record: quote(stack, f.Record), Label: f.Label}

	case adt.ProjectF:
		return &syntax.ProjectExpr{Record: quote(stack, f.Record), Labels: f.Labels}

	case adt.MergeF:
		var annot syntax.Expr
		if f.Annot != nil {
			annot = quote(stack, f.Annot)
		}
		return &syntax.MergeExpr{Handlers: quote(stack, f.Handlers), Union: quote(stack, f.Union), Annot: annot}

	case adt.NativeFuncF:
		panic("normalize: quote of a native builtin-internal function, never meant to escape a /build call")

	default:
		panic("normalize: quote of unhandled value shape")
	}
}

// quoteVar converts a label-agnostic absolute index back into the surface
// (label, shadowing-index) form: the binder is the Absolute-th innermost
// entry of stack, and the index is how many binders with the same label
// sit between it and the occurrence.
func quoteVar(stack []syntax.Label, av syntax.AlphaVar) syntax.V {
	n := av.Absolute
	if n < len(stack) {
		label := stack[len(stack)-1-n]
		idx := 0
		for _, l := range stack[len(stack)-n:] {
			if l == label {
				idx++
			}
		}
		return syntax.V{Label: label, Index: idx}
	}
	// Free beyond the quote root: keep the label, and account for any
	// quoted binders that shadow it on the way out.
	idx := n - len(stack)
	for _, l := range stack {
		if l == av.Label {
			idx++
		}
	}
	return syntax.V{Label: av.Label, Index: idx}
}
