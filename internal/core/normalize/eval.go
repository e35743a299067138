package normalize

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

// Eval builds the (lazy) Value an expression denotes under env. Nothing is
// forced: the result is always a fresh Unevaluated Value deferring to
// whnf, so that evaluating a let-bound expression never does more work
// than its actual uses require.
func Eval(env *Env, e syntax.Expr) *adt.Value {
	t := &thunk{env: env, expr: e}
	return adt.NewThunk(t, unknownType)
}

type thunk struct {
	env  *Env
	expr syntax.Expr
}

func (t *thunk) Force() *adt.Value {
	return Force(whnf(t.env, t.expr))
}

// Force drives v to weak-head normal form, memoizing the result in place
// (Value.Advance) so that every other reference to v observes the same
// reduced shape without redoing the work.
func Force(v *adt.Value) *adt.Value {
	if v.State() != adt.Unevaluated {
		return v
	}
	v.BeginForce()
	result := forceFully(v.Thunk())
	v.EndForce()
	v.Advance(result.State(), result.Form())
	return v
}

func forceFully(t adt.Thunker) *adt.Value {
	r := t.Force()
	for r.State() == adt.Unevaluated {
		r = forceFully(r.Thunk())
	}
	return r
}

func wh(form adt.ValueF) *adt.Value { return adt.NewWHNF(form, unknownType) }
func nf(form adt.ValueF) *adt.Value { return adt.NewNF(form, unknownType) }

// whnf performs exactly the reductions spec.md 4.4 documents, evaluating
// and forcing only as much of e's structure as each rule needs.
func whnf(env *Env, e syntax.Expr) *adt.Value {
	switch e := e.(type) {
	case *syntax.ConstExpr:
		return nf(adt.ConstF{Const: e.Const})

	case *syntax.VarExpr:
		return Lookup(env, e.V)

	case *syntax.BuiltinExpr:
		return nf(adt.BuiltinF{Builtin: e.Builtin})

	case *syntax.LambdaExpr:
		domain := Eval(env, e.Type)
		body := Eval(env.ExtendKept(e.Label), e.Body)
		return wh(adt.LambdaF{Label: e.Label, Domain: domain, Body: body})

	case *syntax.PiExpr:
		domain := Eval(env, e.Type)
		codomain := Eval(env.ExtendKept(e.Label), e.Body)
		return wh(adt.PiF{Label: e.Label, Domain: domain, Codomain: codomain})

	case *syntax.LetExpr:
		rhs := Eval(env, e.Value)
		return whnf(env.ExtendReplaced(e.Label, rhs), e.Body)

	case *syntax.AppExpr:
		fn := Eval(env, e.Fn)
		arg := Eval(env, e.Arg)
		return applyVal(fn, arg)

	case *syntax.IfExpr:
		return evalIf(env, e)

	case *syntax.BinOpExpr:
		return evalBinOp(env, e)

	case *syntax.BoolLitExpr:
		return nf(adt.BoolLitF{Value: e.Value})
	case *syntax.NaturalLitExpr:
		return nf(adt.NaturalLitF{Value: e.Value})
	case *syntax.IntegerLitExpr:
		return nf(adt.IntegerLitF{Value: e.Value})
	case *syntax.DoubleLitExpr:
		return nf(adt.DoubleLitF{Value: e.Value})

	case *syntax.EmptyListExpr:
		return wh(adt.EmptyListF{ElemType: Eval(env, e.ElemType)})

	case *syntax.ListLitExpr:
		elems := make([]*adt.Value, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = Eval(env, el)
		}
		return wh(adt.ListLitF{Elements: elems})

	case *syntax.SomeExpr:
		return wh(adt.SomeF{Value: Eval(env, e.Value)})

	case *syntax.NoneExpr:
		return nf(adt.BuiltinF{Builtin: syntax.OptionalNone})

	case *syntax.RecordTypeExpr:
		fields, _ := syntax.MapFields(e.Fields, func(_ syntax.Label, v syntax.Expr) (*adt.Value, error) {
			return Eval(env, v), nil
		})
		return wh(adt.RecordTypeF{Fields: fields})

	case *syntax.RecordLitExpr:
		fields, _ := syntax.MapFields(e.Fields, func(_ syntax.Label, v syntax.Expr) (*adt.Value, error) {
			return Eval(env, v), nil
		})
		return wh(adt.RecordLitF{Fields: fields})

	case *syntax.UnionTypeExpr:
		alts, _ := syntax.MapFields(e.Alternatives, func(_ syntax.Label, v syntax.Expr) (*adt.Value, error) {
			if v == nil {
				return nil, nil
			}
			return Eval(env, v), nil
		})
		return wh(adt.UnionTypeF{Alternatives: alts})

	case *syntax.TextLitExpr:
		return evalText(env, e)

	case *syntax.FieldExpr:
		return evalField(env, e)

	case *syntax.ProjectExpr:
		return evalProject(env, e)

	case *syntax.MergeExpr:
		return evalMerge(env, e)

	case *syntax.AnnotExpr:
		return whnf(env, e.Value)

	case *syntax.AssertExpr:
		return Eval(env, e.Annot)

	case *syntax.ImportExpr:
		panic("normalize: unresolved import reached the normalizer")

	default:
		panic("normalize: unhandled expression node")
	}
}

func evalIf(env *Env, e *syntax.IfExpr) *adt.Value {
	cond := Force(Eval(env, e.Cond))
	if b, ok := cond.Form().(adt.BoolLitF); ok {
		if b.Value {
			return whnf(env, e.Then)
		}
		return whnf(env, e.Else)
	}

	thenV := Force(Eval(env, e.Then))
	elseV := Force(Eval(env, e.Else))

	if tb, ok := thenV.Form().(adt.BoolLitF); ok {
		if eb, ok2 := elseV.Form().(adt.BoolLitF); ok2 && tb.Value && !eb.Value {
			return cond
		}
	}
	if AlphaEquivalent(thenV, elseV) {
		return thenV
	}
	return wh(adt.IfF{Cond: cond, Then: thenV, Else: elseV})
}

// collectSpine walks a chain of neutral applications back to its head,
// returning the head together with every argument in application order.
func collectSpine(v *adt.Value) (*adt.Value, []*adt.Value) {
	if af, ok := v.Form().(adt.AppF); ok {
		head, args := collectSpine(Force(af.Fn))
		return head, append(args, af.Arg)
	}
	return v, nil
}

// Apply applies fn to arg, firing beta-reduction, builtin saturation, or
// union-constructor application exactly as whnf's AppExpr case would; it
// is exported so internal/core/typecheck can build applied type-former
// Values (`List a`, `Optional a`, `Some e`'s type) without duplicating
// this package's reduction logic.
func Apply(fn, arg *adt.Value) *adt.Value { return applyVal(fn, arg) }

func applyVal(fnLazy, argLazy *adt.Value) *adt.Value {
	fn := Force(fnLazy)

	switch f := fn.Form().(type) {
	case adt.LambdaF:
		return betaApply(f, argLazy)
	case adt.UnionConstructorF:
		return wh(adt.UnionValF{Type: f.Type, Alt: f.Alt, Payload: argLazy})
	case adt.NativeFuncF:
		return Force(f.Apply(argLazy))
	}

	head, args := collectSpine(fn)
	args = append(args, argLazy)
	if bf, ok := head.Form().(adt.BuiltinF); ok {
		if arity, ok2 := syntax.Arity[bf.Builtin]; ok2 && len(args) >= arity {
			if result, ok3 := applyBuiltin(bf.Builtin, args[:arity]); ok3 {
				for _, extra := range args[arity:] {
					result = applyVal(result, extra)
				}
				return Force(result)
			}
		}
	}
	return wh(adt.AppF{Fn: fn, Arg: argLazy})
}

// betaApply applies a lambda value to an argument by instantiating its
// body with argLazy in place of the bound variable - see Instantiate for
// why this re-evaluates rather than structurally substitutes whenever it
// can.
func betaApply(f adt.LambdaF, argLazy *adt.Value) *adt.Value {
	return Instantiate(f.Label, f.Body, argLazy)
}

// Instantiate replaces label's bound-variable placeholder inside body
// (itself a Value produced by evaluating some Expr under
// env.ExtendKept(label)) with argLazy, producing the Value that results
// from substituting a concrete argument for that binder. This is the one
// operation a lambda application and a Pi's result-type instantiation
// both need - exported so internal/core/typecheck can compute an
// application's result type from a PiF's Codomain the same way this
// package computes a beta-reduced lambda body.
//
// When body has not yet been forced, and was produced by this package's
// own thunk (always true except when a caller hand-builds a value some
// other way), it re-evaluates the underlying expression under an
// environment that replaces the bound variable outright - re-entering
// whnf so that rewrites the argument now makes possible (a literal
// Natural where there was a variable, say) fire for real, rather than
// structurally substituting into an already-reduced shape that no longer
// consults the rewrite table. If body has already been forced (shared
// from an earlier, argument-free observation), there is no expression
// left to re-evaluate, so this falls back to a structural Subst - safe
// because a WHNF shape that is already stuck cannot un-stick from a
// substitution alone without the same rewrite table also re-examining
// it, which Subst alone cannot do; this path is believed unreachable for
// a lambda body (only ever forced through application) but does happen
// for a Pi's Codomain, which the typechecker may have already forced to
// inspect its outer shape before an application needs its instantiated
// form - Subst is exactly the right fallback there, since a type being
// substituted into never itself needs to fire a value-level rewrite
// rule.
func Instantiate(label syntax.Label, body *adt.Value, argLazy *adt.Value) *adt.Value {
	if body.State() == adt.Unevaluated {
		if t, ok := body.Thunk().(*thunk); ok {
			return Force(whnf(t.env.parent.ExtendReplaced(label, argLazy), t.expr))
		}
	}
	return Force(adt.Subst(body, 0, argLazy))
}

func evalField(env *Env, e *syntax.FieldExpr) *adt.Value {
	rec := Force(Eval(env, e.Record))
	if v, ok := projectField(rec, e.Label); ok {
		return Force(v)
	}
	// e.Record can itself denote a union type (rather than a record value),
	// in which case `.Label` selects one of its alternatives: a bare
	// UnionValF if that alternative carries no payload, or a
	// UnionConstructorF function awaiting one.
	if ut, ok := rec.Form().(adt.UnionTypeF); ok {
		if payloadT, has := ut.Alternatives.Get(e.Label); has {
			if payloadT == nil {
				return wh(adt.UnionValF{Type: rec, Alt: e.Label})
			}
			return wh(adt.UnionConstructorF{Type: rec, Alt: e.Label})
		}
	}
	return wh(adt.FieldF{Record: rec, Label: e.Label})
}

// projectField looks a label up through record literals and through the
// merge operators that can still expose one without further reduction:
// right-biased merge favors its right operand, recursive merge combines
// both sides' same-label fields recursively.
func projectField(rec *adt.Value, label syntax.Label) (*adt.Value, bool) {
	switch f := rec.Form().(type) {
	case adt.RecordLitF:
		return f.Fields.Get(label)
	case adt.BinOpF:
		switch f.Op {
		case syntax.RightBiasedMerge:
			r := Force(f.R)
			if v, ok := projectField(r, label); ok {
				return v, true
			}
			l := Force(f.L)
			return projectField(l, label)
		case syntax.RecordMerge:
			l := Force(f.L)
			r := Force(f.R)
			lv, lok := projectField(l, label)
			rv, rok := projectField(r, label)
			switch {
			case lok && rok:
				return mergeRecordsOp(syntax.RecordMerge, lv, rv), true
			case lok:
				return lv, true
			case rok:
				return rv, true
			}
		}
	}
	return nil, false
}

func evalProject(env *Env, e *syntax.ProjectExpr) *adt.Value {
	rec := Force(Eval(env, e.Record))
	if lit, ok := rec.Form().(adt.RecordLitF); ok {
		pairs := make([]syntax.LabelValue[*adt.Value], 0, len(e.Labels))
		for _, l := range e.Labels {
			v, _ := lit.Fields.Get(l)
			pairs = append(pairs, syntax.LabelValue[*adt.Value]{Label: l, Value: v})
		}
		fields := syntax.NewFieldsUnchecked(append([]syntax.Label(nil), e.Labels...), toMap(pairs))
		return wh(adt.RecordLitF{Fields: fields})
	}
	return wh(adt.ProjectF{Record: rec, Labels: e.Labels})
}

func toMap(pairs []syntax.LabelValue[*adt.Value]) map[syntax.Label]*adt.Value {
	m := make(map[syntax.Label]*adt.Value, len(pairs))
	for _, p := range pairs {
		m[p.Label] = p.Value
	}
	return m
}

func evalMerge(env *Env, e *syntax.MergeExpr) *adt.Value {
	handlers := Force(Eval(env, e.Handlers))
	union := Force(Eval(env, e.Union))
	var annot *adt.Value
	if e.Annot != nil {
		annot = Eval(env, e.Annot)
	}

	stuck := func() *adt.Value {
		return wh(adt.MergeF{Handlers: handlers, Union: union, Annot: annot})
	}
	hl, ok := handlers.Form().(adt.RecordLitF)
	if !ok {
		return stuck()
	}

	// An Optional scrutinee dispatches like a two-alternative union over
	// Some and None.
	var alt syntax.Label
	var payload *adt.Value
	switch uf := union.Form().(type) {
	case adt.UnionValF:
		alt, payload = uf.Alt, uf.Payload
	case adt.SomeF:
		alt, payload = "Some", uf.Value
	case adt.OptionalNoneF:
		alt = "None"
	default:
		return stuck()
	}

	handler, ok := hl.Fields.Get(alt)
	if !ok {
		return stuck()
	}
	if payload == nil {
		return Force(handler)
	}
	return applyVal(handler, payload)
}

func evalText(env *Env, e *syntax.TextLitExpr) *adt.Value {
	var pieces []adt.TextPiece
	for _, c := range e.Chunks {
		if c.Expr == nil {
			pieces = appendRaw(pieces, c.Raw)
			continue
		}
		v := Force(Eval(env, c.Expr))
		if tl, ok := v.Form().(adt.TextLitF); ok {
			for _, p := range tl.Chunks {
				if p.Embed == nil {
					pieces = appendRaw(pieces, p.Raw)
				} else {
					pieces = append(pieces, p)
				}
			}
			continue
		}
		pieces = append(pieces, adt.TextPiece{Embed: v})
	}
	if len(pieces) == 1 && pieces[0].Embed != nil {
		return pieces[0].Embed
	}
	return wh(adt.TextLitF{Chunks: pieces})
}

func appendRaw(pieces []adt.TextPiece, raw string) []adt.TextPiece {
	if raw == "" {
		return pieces
	}
	if n := len(pieces); n > 0 && pieces[n-1].Embed == nil {
		pieces[n-1].Raw += raw
		return pieces
	}
	return append(pieces, adt.TextPiece{Raw: raw})
}
