package typecheck

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

// inferLambda implements 4.5's function-introduction rule: the domain
// annotation must itself be a type, and the resulting Pi must satisfy
// syntax.Rule the same way a written-out Pi would.
func inferLambda(ctx *Ctx, e *syntax.LambdaExpr) (*adt.Value, error) {
	domainT, err := Infer(ctx, e.Type)
	if err != nil {
		return nil, err
	}
	domainConst, ok := normalize.Force(domainT).Form().(adt.ConstF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeInvalidInput, e.Pos(), "function input type must be a type")
	}
	domainVal := Eval(ctx, e.Type)
	bodyCtx := ctx.ExtendKept(e.Label, domainVal)

	codomainVal, err := Infer(bodyCtx, e.Body)
	if err != nil {
		return nil, err
	}
	codomainConst, err := universeOf(bodyCtx, e.Pos(), codomainVal)
	if err != nil {
		return nil, derrors.NewTypeError(derrors.TypeInvalidOutput, e.Pos(), "function output type must be a type")
	}
	if _, ok := syntax.Rule(domainConst.Const, codomainConst); !ok {
		return nil, derrors.NewTypeError(derrors.TypeInvalidOutput, e.Pos(),
			"function type not allowed: %s -> %s", domainConst.Const, codomainConst)
	}
	return adt.NewWHNF(adt.PiF{Label: e.Label, Domain: domainVal, Codomain: codomainVal}, panicType), nil
}

// inferPi implements 4.5's function-type-formation rule via the
// predicative-with-impredicative-Type table in syntax.Rule.
func inferPi(ctx *Ctx, e *syntax.PiExpr) (*adt.Value, error) {
	domainT, err := Infer(ctx, e.Type)
	if err != nil {
		return nil, err
	}
	c1, ok := normalize.Force(domainT).Form().(adt.ConstF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeInvalidInput, e.Pos(), "function input type must be a type")
	}
	domainVal := Eval(ctx, e.Type)
	bodyCtx := ctx.ExtendKept(e.Label, domainVal)
	codomainT, err := Infer(bodyCtx, e.Body)
	if err != nil {
		return nil, err
	}
	c2, ok := normalize.Force(codomainT).Form().(adt.ConstF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeInvalidOutput, e.Pos(), "function output type must be a type")
	}
	c3, ok := syntax.Rule(c1.Const, c2.Const)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeInvalidOutput, e.Pos(),
			"function type not allowed: %s -> %s", c1.Const, c2.Const)
	}
	return constVal(c3), nil
}

// inferLet implements 4.5's Let rule: the bound value both typechecks
// against its optional annotation and is substituted, not merely kept
// abstract, in the body - so later occurrences see it beta-reduced.
func inferLet(ctx *Ctx, e *syntax.LetExpr) (*adt.Value, error) {
	var valT *adt.Value
	if e.Annot != nil {
		annotT, err := Infer(ctx, e.Annot)
		if err != nil {
			return nil, err
		}
		if _, ok := normalize.Force(annotT).Form().(adt.ConstF); !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "let annotation is not a type")
		}
		valT = Eval(ctx, e.Annot)
		if err := Check(ctx, e.Value, valT); err != nil {
			return nil, err
		}
	} else {
		t, err := Infer(ctx, e.Value)
		if err != nil {
			return nil, err
		}
		valT = t
	}
	rhsVal := Eval(ctx, e.Value)
	bodyCtx := ctx.ExtendReplaced(e.Label, rhsVal, valT)
	return Infer(bodyCtx, e.Body)
}

// inferApp implements 4.5's application rule: the function position must
// infer to a Pi, the argument must check against its domain, and the
// result type is the codomain instantiated with the evaluated argument.
func inferApp(ctx *Ctx, e *syntax.AppExpr) (*adt.Value, error) {
	fnT, err := Infer(ctx, e.Fn)
	if err != nil {
		return nil, err
	}
	pi, ok := normalize.Force(fnT).Form().(adt.PiF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeNotAFunction, e.Pos(), "%s is not a function", describe(fnT))
	}
	if err := Check(ctx, e.Arg, normalize.Force(pi.Domain)); err != nil {
		return nil, err
	}
	argVal := Eval(ctx, e.Arg)
	return normalize.Instantiate(pi.Label, pi.Codomain, argVal), nil
}

// inferIf implements 4.5's conditional rule: the predicate must be Bool,
// both branches must share a type, and that type's own universe must be
// Type - an if cannot return a type or kind.
func inferIf(ctx *Ctx, e *syntax.IfExpr) (*adt.Value, error) {
	if err := Check(ctx, e.Cond, builtinVal(syntax.BoolBuiltin)); err != nil {
		return nil, derrors.NewTypeError(derrors.TypeInvalidPredicate, e.Pos(), "if predicate must have type Bool")
	}
	thenT, err := Infer(ctx, e.Then)
	if err != nil {
		return nil, err
	}
	if c, err := universeOf(ctx, e.Pos(), thenT); err != nil || c != syntax.Type {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "if branches must have universe Type")
	}
	if err := Check(ctx, e.Else, thenT); err != nil {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "if branches must have the same type")
	}
	return thenT, nil
}

// inferBinOp dispatches each of the thirteen operators to its own typing
// rule per 4.5; the three record-combining operators are involved enough
// to live in their own helpers below.
func inferBinOp(ctx *Ctx, e *syntax.BinOpExpr) (*adt.Value, error) {
	switch e.Op {
	case syntax.BoolOr, syntax.BoolAnd, syntax.BoolEQ, syntax.BoolNE:
		boolT := builtinVal(syntax.BoolBuiltin)
		if err := Check(ctx, e.L, boolT); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "%s operand must be Bool", e.Op)
		}
		if err := Check(ctx, e.R, boolT); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "%s operand must be Bool", e.Op)
		}
		return boolT, nil

	case syntax.NaturalPlus, syntax.NaturalTimes:
		natT := builtinVal(syntax.NaturalBuiltin)
		if err := Check(ctx, e.L, natT); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "%s operand must be Natural", e.Op)
		}
		if err := Check(ctx, e.R, natT); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "%s operand must be Natural", e.Op)
		}
		return natT, nil

	case syntax.TextAppend:
		textT := builtinVal(syntax.TextBuiltin)
		if err := Check(ctx, e.L, textT); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "++ operand must be Text")
		}
		if err := Check(ctx, e.R, textT); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "++ operand must be Text")
		}
		return textT, nil

	case syntax.ListAppend:
		lT, err := Infer(ctx, e.L)
		if err != nil {
			return nil, err
		}
		if _, ok := asListType(lT); !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "# operand must be a List")
		}
		if err := Check(ctx, e.R, normalize.Force(lT)); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "# operands must share an element type")
		}
		return lT, nil

	case syntax.RecordMerge:
		return inferRecordMerge(ctx, e)
	case syntax.RightBiasedMerge:
		return inferRightBiasedMerge(ctx, e)
	case syntax.RecordTypeMerge:
		return inferRecordTypeMerge(ctx, e)

	case syntax.Equivalent:
		lT, err := Infer(ctx, e.L)
		if err != nil {
			return nil, err
		}
		if err := Check(ctx, e.R, normalize.Force(lT)); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "≡ operands must have the same type")
		}
		return constVal(syntax.Type), nil

	case syntax.ImportAlt:
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "? operator must be resolved away before typechecking")

	default:
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "unhandled operator %s", e.Op)
	}
}

func asListType(v *adt.Value) (*adt.Value, bool) {
	return asAppliedBuiltin(v, syntax.ListBuiltin)
}

func asOptionalType(v *adt.Value) (*adt.Value, bool) {
	return asAppliedBuiltin(v, syntax.OptionalBuiltin)
}

func asAppliedBuiltin(v *adt.Value, want syntax.Builtin) (*adt.Value, bool) {
	app, ok := normalize.Force(v).Form().(adt.AppF)
	if !ok {
		return nil, false
	}
	b, ok := normalize.Force(app.Fn).Form().(adt.BuiltinF)
	if !ok || b.Builtin != want {
		return nil, false
	}
	return app.Arg, true
}

// mergeAlternatives views merge's scrutinee type as a set of
// (alternative, payload-type-or-nil) pairs: the union type's own
// alternatives, or the two-alternative Some/None view of an Optional,
// which merge dispatches over the same way.
func mergeAlternatives(unionT *adt.Value) (*syntax.Fields[*adt.Value], bool) {
	if ut, ok := normalize.Force(unionT).Form().(adt.UnionTypeF); ok {
		return ut.Alternatives, true
	}
	if elemT, ok := asOptionalType(unionT); ok {
		alts, _ := syntax.NewFields([]syntax.LabelValue[*adt.Value]{
			{Label: "Some", Value: elemT},
			{Label: "None", Value: nil},
		})
		return alts, true
	}
	return nil, false
}

func maxConst(a, b syntax.Const) syntax.Const {
	if b > a {
		return b
	}
	return a
}

// inferRecordMerge types `l ∧ r`: both operands must be record values
// whose types recursively merge under ⩓ - colliding scalar fields are a
// type error there, which is exactly the check this delegates to.
func inferRecordMerge(ctx *Ctx, e *syntax.BinOpExpr) (*adt.Value, error) {
	lT, err := Infer(ctx, e.L)
	if err != nil {
		return nil, err
	}
	rT, err := Infer(ctx, e.R)
	if err != nil {
		return nil, err
	}
	if _, ok := normalize.Force(lT).Form().(adt.RecordTypeF); !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "∧ operand must be a record")
	}
	if _, ok := normalize.Force(rT).Form().(adt.RecordTypeF); !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "∧ operand must be a record")
	}
	return mergeRecordTypes(e.Pos(), normalize.Force(lT), normalize.Force(rT))
}

// inferRecordTypeMerge types `l ⩓ r`, the type-level analogue of ∧: both
// operands must themselves be record *types*.
func inferRecordTypeMerge(ctx *Ctx, e *syntax.BinOpExpr) (*adt.Value, error) {
	lT, err := Infer(ctx, e.L)
	if err != nil {
		return nil, err
	}
	rT, err := Infer(ctx, e.R)
	if err != nil {
		return nil, err
	}
	lc, ok := normalize.Force(lT).Form().(adt.ConstF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "⩓ operand must be a record type")
	}
	rc, ok := normalize.Force(rT).Form().(adt.ConstF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "⩓ operand must be a record type")
	}
	lVal := Eval(ctx, e.L)
	rVal := Eval(ctx, e.R)
	if _, ok := lVal.Form().(adt.RecordTypeF); !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "⩓ operand must be a record type")
	}
	if _, ok := rVal.Form().(adt.RecordTypeF); !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "⩓ operand must be a record type")
	}
	if _, err := mergeRecordTypes(e.Pos(), lVal, rVal); err != nil {
		return nil, err
	}
	return constVal(maxConst(lc.Const, rc.Const)), nil
}

// mergeRecordTypes recursively combines two record-type Values field by
// field, requiring that any field present in both sides be itself a
// record type on both sides (so it can recurse) - a collision on a
// scalar field is a type error, per ∧/⩓'s shared semantics.
func mergeRecordTypes(pos syntax.Pos, l, r *adt.Value) (*adt.Value, error) {
	lf := l.Form().(adt.RecordTypeF).Fields
	rf := r.Form().(adt.RecordTypeF).Fields

	keys := append([]syntax.Label(nil), lf.Keys()...)
	seen := make(map[syntax.Label]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range rf.Keys() {
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	values := make(map[syntax.Label]*adt.Value, len(keys))
	for _, k := range keys {
		lv, lhas := lf.Get(k)
		rv, rhas := rf.Get(k)
		switch {
		case lhas && rhas:
			lvf := normalize.Force(lv)
			rvf := normalize.Force(rv)
			if _, ok := lvf.Form().(adt.RecordTypeF); !ok {
				return nil, derrors.NewTypeError(derrors.TypeMismatch, pos, "field %s collides on a non-record type", k)
			}
			if _, ok := rvf.Form().(adt.RecordTypeF); !ok {
				return nil, derrors.NewTypeError(derrors.TypeMismatch, pos, "field %s collides on a non-record type", k)
			}
			merged, err := mergeRecordTypes(pos, lvf, rvf)
			if err != nil {
				return nil, err
			}
			values[k] = merged
		case lhas:
			values[k] = lv
		default:
			values[k] = rv
		}
	}
	return adt.NewWHNF(adt.RecordTypeF{Fields: syntax.NewFieldsUnchecked(keys, values)}, panicType), nil
}

// inferRightBiasedMerge types `l ⫽ r`: both operands must be record
// values; unlike ∧, a field present on both sides never needs to
// recurse - the right operand's type for that field simply wins.
func inferRightBiasedMerge(ctx *Ctx, e *syntax.BinOpExpr) (*adt.Value, error) {
	lT, err := Infer(ctx, e.L)
	if err != nil {
		return nil, err
	}
	rT, err := Infer(ctx, e.R)
	if err != nil {
		return nil, err
	}
	lf, ok := normalize.Force(lT).Form().(adt.RecordTypeF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "⫽ operand must be a record")
	}
	rf, ok := normalize.Force(rT).Form().(adt.RecordTypeF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "⫽ operand must be a record")
	}

	keys := append([]syntax.Label(nil), lf.Fields.Keys()...)
	seen := make(map[syntax.Label]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range rf.Fields.Keys() {
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	values := make(map[syntax.Label]*adt.Value, len(keys))
	for _, k := range keys {
		if v, ok := rf.Fields.Get(k); ok {
			values[k] = v
			continue
		}
		v, _ := lf.Fields.Get(k)
		values[k] = v
	}
	return adt.NewWHNF(adt.RecordTypeF{Fields: syntax.NewFieldsUnchecked(keys, values)}, panicType), nil
}

// inferRecordType implements 4.5's record-type-formation rule: the
// result universe is the maximum over every field's own universe, with
// an empty record defaulting to Type.
func inferRecordType(ctx *Ctx, e *syntax.RecordTypeExpr) (*adt.Value, error) {
	result := syntax.Type
	for _, k := range e.Fields.Keys() {
		fv, _ := e.Fields.Get(k)
		t, err := Infer(ctx, fv)
		if err != nil {
			return nil, err
		}
		c, ok := normalize.Force(t).Form().(adt.ConstF)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "field %s is not a type", k)
		}
		result = maxConst(result, c.Const)
	}
	return constVal(result), nil
}

// inferRecordLit infers each field's own type; the field set cannot
// contain a duplicate since syntax.Fields already rejects one at parse
// time.
func inferRecordLit(ctx *Ctx, e *syntax.RecordLitExpr) (*adt.Value, error) {
	fieldTypes, err := syntax.MapFields(e.Fields, func(_ syntax.Label, v syntax.Expr) (*adt.Value, error) {
		return Infer(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return adt.NewWHNF(adt.RecordTypeF{Fields: fieldTypes}, panicType), nil
}

// inferUnionType implements 4.5's union-type-formation rule: every
// alternative that carries a payload must name a type, and the result
// universe is their max (Type if no alternative carries one).
func inferUnionType(ctx *Ctx, e *syntax.UnionTypeExpr) (*adt.Value, error) {
	result := syntax.Type
	for _, k := range e.Alternatives.Keys() {
		v, _ := e.Alternatives.Get(k)
		if v == nil {
			continue
		}
		t, err := Infer(ctx, v)
		if err != nil {
			return nil, err
		}
		c, ok := normalize.Force(t).Form().(adt.ConstF)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "alternative %s is not a type", k)
		}
		result = maxConst(result, c.Const)
	}
	return constVal(result), nil
}

// inferTextLit requires every interpolated chunk to itself be Text; raw
// chunks carry no separate type obligation.
func inferTextLit(ctx *Ctx, e *syntax.TextLitExpr) (*adt.Value, error) {
	textT := builtinVal(syntax.TextBuiltin)
	for _, c := range e.Chunks {
		if c.Expr == nil {
			continue
		}
		if err := Check(ctx, c.Expr, textT); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, c.Expr.Pos(), "text interpolation must have type Text")
		}
	}
	return textT, nil
}

// inferEmptyList requires the element-type annotation to itself have
// universe Type, since a list of types or kinds is not representable.
func inferEmptyList(ctx *Ctx, e *syntax.EmptyListExpr) (*adt.Value, error) {
	t, err := Infer(ctx, e.ElemType)
	if err != nil {
		return nil, err
	}
	if c, ok := normalize.Force(t).Form().(adt.ConstF); !ok || c.Const != syntax.Type {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "list element type must have universe Type")
	}
	elemT := Eval(ctx, e.ElemType)
	return normalize.Apply(builtinVal(syntax.ListBuiltin), elemT), nil
}

// inferListLit takes its element type from the first element, then
// requires every other element to check against it.
func inferListLit(ctx *Ctx, e *syntax.ListLitExpr) (*adt.Value, error) {
	elemT, err := Infer(ctx, e.Elements[0])
	if err != nil {
		return nil, err
	}
	if c, err := universeOf(ctx, e.Pos(), elemT); err != nil || c != syntax.Type {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "list element type must have universe Type")
	}
	for _, el := range e.Elements[1:] {
		if err := Check(ctx, el, normalize.Force(elemT)); err != nil {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, el.Pos(), "list elements must all have the same type")
		}
	}
	return normalize.Apply(builtinVal(syntax.ListBuiltin), elemT), nil
}

// inferField handles both of `.`'s two uses: ordinary record field
// selection, and selecting an alternative out of a union type value
// (which yields either the union value directly, for a payload-less
// alternative, or a constructor function awaiting its payload).
func inferField(ctx *Ctx, e *syntax.FieldExpr) (*adt.Value, error) {
	recT, err := Infer(ctx, e.Record)
	if err != nil {
		return nil, err
	}
	switch t := normalize.Force(recT).Form().(type) {
	case adt.RecordTypeF:
		ft, ok := t.Fields.Get(e.Label)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeInvalidField, e.Pos(), "record has no field %s", e.Label)
		}
		return ft, nil

	case adt.ConstF:
		unionVal := normalize.Force(Eval(ctx, e.Record))
		ut, ok := unionVal.Form().(adt.UnionTypeF)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeInvalidField, e.Pos(), "%s is not a record or union type", e.Label)
		}
		payload, ok := ut.Alternatives.Get(e.Label)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeInvalidField, e.Pos(), "union has no alternative %s", e.Label)
		}
		if payload == nil {
			return unionVal, nil
		}
		// The codomain sits under the Pi's own binder, one deeper than the
		// depth unionVal was evaluated at; a positive shift cannot fail.
		cod, _ := adt.Shift(unionVal, 0, 1)
		return adt.NewWHNF(adt.PiF{Label: "_", Domain: normalize.Force(payload), Codomain: cod}, panicType), nil

	default:
		return nil, derrors.NewTypeError(derrors.TypeInvalidField, e.Pos(), "%s is not a record or union", e.Label)
	}
}

// inferProject implements label-set projection: every named label must
// exist in the record's type, and no label may repeat.
func inferProject(ctx *Ctx, e *syntax.ProjectExpr) (*adt.Value, error) {
	recT, err := Infer(ctx, e.Record)
	if err != nil {
		return nil, err
	}
	rt, ok := normalize.Force(recT).Form().(adt.RecordTypeF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "%s is not a record", describe(recT))
	}
	seen := make(map[syntax.Label]bool, len(e.Labels))
	keys := make([]syntax.Label, 0, len(e.Labels))
	values := make(map[syntax.Label]*adt.Value, len(e.Labels))
	for _, l := range e.Labels {
		if seen[l] {
			return nil, derrors.NewTypeError(derrors.TypeDuplicateField, e.Pos(), "duplicate projection label %s", l)
		}
		seen[l] = true
		ft, ok := rt.Fields.Get(l)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeInvalidField, e.Pos(), "record has no field %s", l)
		}
		keys = append(keys, l)
		values[l] = ft
	}
	return adt.NewWHNF(adt.RecordTypeF{Fields: syntax.NewFieldsUnchecked(keys, values)}, panicType), nil
}

// inferMerge implements 4.5's merge rule: the handler record must name
// exactly the union's alternatives (TypeHandlerMissing/TypeHandlerExtra
// for any mismatch), each handler's shape must match whether its
// alternative carries a payload, a dependent handler result is
// rejected, and every handler must agree on the result type.
func inferMerge(ctx *Ctx, e *syntax.MergeExpr) (*adt.Value, error) {
	handlersT, err := Infer(ctx, e.Handlers)
	if err != nil {
		return nil, err
	}
	handlerFields, ok := normalize.Force(handlersT).Form().(adt.RecordTypeF)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "merge handlers must be a record")
	}
	unionT, err := Infer(ctx, e.Union)
	if err != nil {
		return nil, err
	}
	alternatives, ok := mergeAlternatives(unionT)
	if !ok {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "merge's second argument must be a union or an Optional")
	}

	for _, alt := range alternatives.Keys() {
		if _, ok := handlerFields.Fields.Get(alt); !ok {
			return nil, derrors.NewTypeError(derrors.TypeHandlerMissing, e.Pos(), "missing handler for %s", alt)
		}
	}
	for _, h := range handlerFields.Fields.Keys() {
		if _, ok := alternatives.Get(h); !ok {
			return nil, derrors.NewTypeError(derrors.TypeHandlerExtra, e.Pos(), "unused handler for %s", h)
		}
	}

	var resultT *adt.Value
	for _, alt := range alternatives.Keys() {
		payloadT, _ := alternatives.Get(alt)
		handlerT, _ := handlerFields.Fields.Get(alt)
		var altResult *adt.Value
		if payloadT == nil {
			altResult = normalize.Force(handlerT)
		} else {
			pi, ok := normalize.Force(handlerT).Form().(adt.PiF)
			if !ok {
				return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "handler for %s must be a function", alt)
			}
			if !normalize.AlphaEquivalent(normalize.Force(pi.Domain), normalize.Force(payloadT)) {
				return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "handler for %s has the wrong input type", alt)
			}
			if _, ok := adt.Shift(pi.Codomain, 0, -1); !ok {
				return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(),
					"handler for %s's result type must not depend on its argument", alt)
			}
			altResult = normalize.Force(pi.Codomain)
		}
		if resultT == nil {
			resultT = altResult
			continue
		}
		if !normalize.AlphaEquivalent(resultT, altResult) {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "merge handlers must all return the same type")
		}
	}

	if e.Annot != nil {
		annotT, err := Infer(ctx, e.Annot)
		if err != nil {
			return nil, err
		}
		if _, ok := normalize.Force(annotT).Form().(adt.ConstF); !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "merge annotation is not a type")
		}
		annotVal := Eval(ctx, e.Annot)
		if resultT != nil && !normalize.AlphaEquivalent(resultT, annotVal) {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "merge annotation does not match the handlers' result type")
		}
		return annotVal, nil
	}
	if resultT == nil {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "merge of an empty union needs a result-type annotation")
	}
	return resultT, nil
}

// inferAssert implements 4.5's assert rule: the annotation must be an
// equivalence of two terms of the same type whose fully normalized forms
// are alpha-equivalent.
func inferAssert(ctx *Ctx, e *syntax.AssertExpr) (*adt.Value, error) {
	bin, ok := e.Annot.(*syntax.BinOpExpr)
	if !ok || bin.Op != syntax.Equivalent {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "assert annotation must be an equivalence")
	}
	lT, err := Infer(ctx, bin.L)
	if err != nil {
		return nil, err
	}
	if err := Check(ctx, bin.R, normalize.Force(lT)); err != nil {
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "assert operands have different types")
	}
	lNF := normalize.FullNormalize(Eval(ctx, bin.L))
	rNF := normalize.FullNormalize(Eval(ctx, bin.R))
	if !normalize.AlphaEquivalent(lNF, rNF) {
		return nil, derrors.NewTypeError(derrors.TypeAssertMismatch, e.Pos(),
			"assertion failed: %s is not equivalent to %s", describe(lNF), describe(rNF))
	}
	return adt.NewWHNF(adt.BinOpF{Op: syntax.Equivalent, L: lNF, R: rNF}, panicType), nil
}
