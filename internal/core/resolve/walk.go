package resolve

import (
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/syntax"
)

// resolveExpr rebuilds e with every import replaced, recursing into every
// child position. It is the traversal the original implementation calls
// `traverse_resolve_mut`; this package writes it as an explicit switch
// (matching infer.go's style) rather than a generic visitor, since Expr
// carries no fold/map method of its own.
func (r *resolver) resolveExpr(root Root, e syntax.Expr) (syntax.Expr, error) {
	switch e := e.(type) {
	case *syntax.ImportExpr:
		v, err := r.resolveImport(root, e.Import)
		if err != nil {
			return nil, err
		}
		return normalize.Quote(v), nil

	case *syntax.BinOpExpr:
		if e.Op == syntax.ImportAlt {
			l, err := r.resolveExpr(root, e.L)
			if err == nil {
				return l, nil
			}
			return r.resolveExpr(root, e.R)
		}
		l, err := r.resolveExpr(root, e.L)
		if err != nil {
			return nil, err
		}
		rr, err := r.resolveExpr(root, e.R)
		if err != nil {
			return nil, err
		}
		return &syntax.BinOpExpr{Pos_: e.Pos_, Op: e.Op, L: l, R: rr}, nil

	case *syntax.ConstExpr, *syntax.VarExpr, *syntax.BuiltinExpr,
		*syntax.BoolLitExpr, *syntax.NaturalLitExpr, *syntax.IntegerLitExpr,
		*syntax.DoubleLitExpr, *syntax.NoneExpr:
		return e, nil

	case *syntax.LambdaExpr:
		typ, err := r.resolveExpr(root, e.Type)
		if err != nil {
			return nil, err
		}
		body, err := r.resolveExpr(root, e.Body)
		if err != nil {
			return nil, err
		}
		return &syntax.LambdaExpr{Pos_: e.Pos_, Label: e.Label, Type: typ, Body: body}, nil

	case *syntax.PiExpr:
		typ, err := r.resolveExpr(root, e.Type)
		if err != nil {
			return nil, err
		}
		body, err := r.resolveExpr(root, e.Body)
		if err != nil {
			return nil, err
		}
		return &syntax.PiExpr{Pos_: e.Pos_, Label: e.Label, Type: typ, Body: body}, nil

	case *syntax.LetExpr:
		var annot syntax.Expr
		if e.Annot != nil {
			a, err := r.resolveExpr(root, e.Annot)
			if err != nil {
				return nil, err
			}
			annot = a
		}
		val, err := r.resolveExpr(root, e.Value)
		if err != nil {
			return nil, err
		}
		body, err := r.resolveExpr(root, e.Body)
		if err != nil {
			return nil, err
		}
		return &syntax.LetExpr{Pos_: e.Pos_, Label: e.Label, Annot: annot, Value: val, Body: body}, nil

	case *syntax.AppExpr:
		fn, err := r.resolveExpr(root, e.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := r.resolveExpr(root, e.Arg)
		if err != nil {
			return nil, err
		}
		return &syntax.AppExpr{Pos_: e.Pos_, Fn: fn, Arg: arg}, nil

	case *syntax.IfExpr:
		cond, err := r.resolveExpr(root, e.Cond)
		if err != nil {
			return nil, err
		}
		then, err := r.resolveExpr(root, e.Then)
		if err != nil {
			return nil, err
		}
		els, err := r.resolveExpr(root, e.Else)
		if err != nil {
			return nil, err
		}
		return &syntax.IfExpr{Pos_: e.Pos_, Cond: cond, Then: then, Else: els}, nil

	case *syntax.EmptyListExpr:
		elem, err := r.resolveExpr(root, e.ElemType)
		if err != nil {
			return nil, err
		}
		return &syntax.EmptyListExpr{Pos_: e.Pos_, ElemType: elem}, nil

	case *syntax.ListLitExpr:
		elems := make([]syntax.Expr, len(e.Elements))
		for i, el := range e.Elements {
			v, err := r.resolveExpr(root, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &syntax.ListLitExpr{Pos_: e.Pos_, Elements: elems}, nil

	case *syntax.SomeExpr:
		v, err := r.resolveExpr(root, e.Value)
		if err != nil {
			return nil, err
		}
		return &syntax.SomeExpr{Pos_: e.Pos_, Value: v}, nil

	case *syntax.RecordTypeExpr:
		fields, err := syntax.MapFields(e.Fields, func(_ syntax.Label, v syntax.Expr) (syntax.Expr, error) {
			return r.resolveExpr(root, v)
		})
		if err != nil {
			return nil, err
		}
		return &syntax.RecordTypeExpr{Pos_: e.Pos_, Fields: fields}, nil

	case *syntax.RecordLitExpr:
		fields, err := syntax.MapFields(e.Fields, func(_ syntax.Label, v syntax.Expr) (syntax.Expr, error) {
			return r.resolveExpr(root, v)
		})
		if err != nil {
			return nil, err
		}
		return &syntax.RecordLitExpr{Pos_: e.Pos_, Fields: fields}, nil

	case *syntax.UnionTypeExpr:
		alts, err := syntax.MapFields(e.Alternatives, func(_ syntax.Label, v syntax.Expr) (syntax.Expr, error) {
			if v == nil {
				return nil, nil
			}
			return r.resolveExpr(root, v)
		})
		if err != nil {
			return nil, err
		}
		return &syntax.UnionTypeExpr{Pos_: e.Pos_, Alternatives: alts}, nil

	case *syntax.TextLitExpr:
		chunks := make([]syntax.TextChunk, len(e.Chunks))
		for i, c := range e.Chunks {
			if c.Expr == nil {
				chunks[i] = c
				continue
			}
			v, err := r.resolveExpr(root, c.Expr)
			if err != nil {
				return nil, err
			}
			chunks[i] = syntax.TextChunk{Expr: v}
		}
		return &syntax.TextLitExpr{Pos_: e.Pos_, Chunks: chunks}, nil

	case *syntax.FieldExpr:
		rec, err := r.resolveExpr(root, e.Record)
		if err != nil {
			return nil, err
		}
		return &syntax.FieldExpr{Pos_: e.Pos_, Record: rec, Label: e.Label}, nil

	case *syntax.ProjectExpr:
		rec, err := r.resolveExpr(root, e.Record)
		if err != nil {
			return nil, err
		}
		return &syntax.ProjectExpr{Pos_: e.Pos_, Record: rec, Labels: e.Labels}, nil

	case *syntax.MergeExpr:
		handlers, err := r.resolveExpr(root, e.Handlers)
		if err != nil {
			return nil, err
		}
		union, err := r.resolveExpr(root, e.Union)
		if err != nil {
			return nil, err
		}
		var annot syntax.Expr
		if e.Annot != nil {
			a, err := r.resolveExpr(root, e.Annot)
			if err != nil {
				return nil, err
			}
			annot = a
		}
		return &syntax.MergeExpr{Pos_: e.Pos_, Handlers: handlers, Union: union, Annot: annot}, nil

	case *syntax.AnnotExpr:
		val, err := r.resolveExpr(root, e.Value)
		if err != nil {
			return nil, err
		}
		typ, err := r.resolveExpr(root, e.Type)
		if err != nil {
			return nil, err
		}
		return &syntax.AnnotExpr{Pos_: e.Pos_, Value: val, Type: typ}, nil

	case *syntax.AssertExpr:
		annot, err := r.resolveExpr(root, e.Annot)
		if err != nil {
			return nil, err
		}
		return &syntax.AssertExpr{Pos_: e.Pos_, Annot: annot}, nil

	default:
		return e, nil
	}
}
