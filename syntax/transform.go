package syntax

// MapChildren applies fn to each immediate child expression of e and
// rebuilds e with the results, preserving e's source span. It does not
// recurse; callers that want a full-tree rewrite call MapChildren from
// within fn, post- or pre-order as needed. An error from fn aborts the
// rebuild and is returned unchanged.
func MapChildren(e Expr, fn func(Expr) (Expr, error)) (Expr, error) {
	m := func(x Expr) (Expr, error) {
		if x == nil {
			return nil, nil
		}
		return fn(x)
	}
	switch e := e.(type) {
	case *ConstExpr, *VarExpr, *BuiltinExpr, *BoolLitExpr, *NaturalLitExpr,
		*IntegerLitExpr, *DoubleLitExpr, *NoneExpr, *ImportExpr:
		return e, nil

	case *LambdaExpr:
		typ, err := m(e.Type)
		if err != nil {
			return nil, err
		}
		body, err := m(e.Body)
		if err != nil {
			return nil, err
		}
		return &LambdaExpr{e.Pos_, e.Label, typ, body}, nil

	case *PiExpr:
		typ, err := m(e.Type)
		if err != nil {
			return nil, err
		}
		body, err := m(e.Body)
		if err != nil {
			return nil, err
		}
		return &PiExpr{e.Pos_, e.Label, typ, body}, nil

	case *LetExpr:
		annot, err := m(e.Annot)
		if err != nil {
			return nil, err
		}
		val, err := m(e.Value)
		if err != nil {
			return nil, err
		}
		body, err := m(e.Body)
		if err != nil {
			return nil, err
		}
		return &LetExpr{e.Pos_, e.Label, annot, val, body}, nil

	case *AppExpr:
		fnE, err := m(e.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := m(e.Arg)
		if err != nil {
			return nil, err
		}
		return &AppExpr{e.Pos_, fnE, arg}, nil

	case *IfExpr:
		c, err := m(e.Cond)
		if err != nil {
			return nil, err
		}
		t, err := m(e.Then)
		if err != nil {
			return nil, err
		}
		f, err := m(e.Else)
		if err != nil {
			return nil, err
		}
		return &IfExpr{e.Pos_, c, t, f}, nil

	case *BinOpExpr:
		l, err := m(e.L)
		if err != nil {
			return nil, err
		}
		r, err := m(e.R)
		if err != nil {
			return nil, err
		}
		return &BinOpExpr{e.Pos_, e.Op, l, r}, nil

	case *EmptyListExpr:
		t, err := m(e.ElemType)
		if err != nil {
			return nil, err
		}
		return &EmptyListExpr{e.Pos_, t}, nil

	case *ListLitExpr:
		elems := make([]Expr, len(e.Elements))
		for i, el := range e.Elements {
			v, err := m(el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &ListLitExpr{e.Pos_, elems}, nil

	case *SomeExpr:
		v, err := m(e.Value)
		if err != nil {
			return nil, err
		}
		return &SomeExpr{e.Pos_, v}, nil

	case *RecordTypeExpr:
		f, err := MapFields(e.Fields, func(_ Label, v Expr) (Expr, error) { return m(v) })
		if err != nil {
			return nil, err
		}
		return &RecordTypeExpr{e.Pos_, f}, nil

	case *RecordLitExpr:
		f, err := MapFields(e.Fields, func(_ Label, v Expr) (Expr, error) { return m(v) })
		if err != nil {
			return nil, err
		}
		return &RecordLitExpr{e.Pos_, f}, nil

	case *UnionTypeExpr:
		f, err := MapFields(e.Alternatives, func(_ Label, v Expr) (Expr, error) { return m(v) })
		if err != nil {
			return nil, err
		}
		return &UnionTypeExpr{e.Pos_, f}, nil

	case *TextLitExpr:
		chunks := make([]TextChunk, len(e.Chunks))
		for i, c := range e.Chunks {
			if c.Expr == nil {
				chunks[i] = c
				continue
			}
			v, err := m(c.Expr)
			if err != nil {
				return nil, err
			}
			chunks[i] = TextChunk{Expr: v}
		}
		return &TextLitExpr{e.Pos_, chunks}, nil

	case *FieldExpr:
		r, err := m(e.Record)
		if err != nil {
			return nil, err
		}
		return &FieldExpr{e.Pos_, r, e.Label}, nil

	case *ProjectExpr:
		r, err := m(e.Record)
		if err != nil {
			return nil, err
		}
		return &ProjectExpr{e.Pos_, r, e.Labels}, nil

	case *MergeExpr:
		h, err := m(e.Handlers)
		if err != nil {
			return nil, err
		}
		u, err := m(e.Union)
		if err != nil {
			return nil, err
		}
		a, err := m(e.Annot)
		if err != nil {
			return nil, err
		}
		return &MergeExpr{e.Pos_, h, u, a}, nil

	case *AnnotExpr:
		v, err := m(e.Value)
		if err != nil {
			return nil, err
		}
		t, err := m(e.Type)
		if err != nil {
			return nil, err
		}
		return &AnnotExpr{e.Pos_, v, t}, nil

	case *AssertExpr:
		a, err := m(e.Annot)
		if err != nil {
			return nil, err
		}
		return &AssertExpr{e.Pos_, a}, nil

	default:
		return e, nil
	}
}

// TraverseResolve rewrites every ImportExpr node in e, post-order, by
// calling resolve on it and substituting its result in place. BinOpExpr
// nodes are walked like any other, so `a ? import` and imports nested
// under other operators are reached uniformly and `?` gets no fallback
// treatment here. The import resolver in internal/core/resolve does not
// call it; it walks the tree with its own per-node switch.
func TraverseResolve(e Expr, resolve func(*ImportExpr) (Expr, error)) (Expr, error) {
	rewritten, err := MapChildren(e, func(c Expr) (Expr, error) {
		return TraverseResolve(c, resolve)
	})
	if err != nil {
		return nil, err
	}
	if imp, ok := rewritten.(*ImportExpr); ok {
		return resolve(imp)
	}
	return rewritten, nil
}
