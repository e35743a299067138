package typecheck

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

// Infer implements the synthesis (⇒) direction of spec.md 4.5's
// bidirectional rules: given a context and a term, produce the term's
// type, or a *derrors.TypeError naming why it doesn't have one. It is the
// sole place that pattern-matches over every syntax.Expr variant; Check
// only switches to its own logic for the handful of constructs where
// checking against an expected type gives a sharper error.
func Infer(ctx *Ctx, e syntax.Expr) (*adt.Value, error) {
	switch e := e.(type) {
	case *syntax.ConstExpr:
		switch e.Const {
		case syntax.Type:
			return constVal(syntax.Kind), nil
		case syntax.Kind:
			return constVal(syntax.Sort), nil
		default:
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "Sort has no type")
		}

	case *syntax.VarExpr:
		t, ok := Lookup(ctx, e.V)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeUnbound, e.Pos(), "unbound variable %s", e.V.Label)
		}
		return t, nil

	case *syntax.BuiltinExpr:
		t, ok := TypeOf(e.Builtin)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "unknown builtin %s", e.Builtin)
		}
		return t, nil

	case *syntax.LambdaExpr:
		return inferLambda(ctx, e)

	case *syntax.PiExpr:
		return inferPi(ctx, e)

	case *syntax.LetExpr:
		return inferLet(ctx, e)

	case *syntax.AppExpr:
		return inferApp(ctx, e)

	case *syntax.IfExpr:
		return inferIf(ctx, e)

	case *syntax.BinOpExpr:
		return inferBinOp(ctx, e)

	case *syntax.BoolLitExpr:
		return builtinVal(syntax.BoolBuiltin), nil
	case *syntax.NaturalLitExpr:
		return builtinVal(syntax.NaturalBuiltin), nil
	case *syntax.IntegerLitExpr:
		return builtinVal(syntax.IntegerBuiltin), nil
	case *syntax.DoubleLitExpr:
		return builtinVal(syntax.DoubleBuiltin), nil

	case *syntax.EmptyListExpr:
		return inferEmptyList(ctx, e)

	case *syntax.ListLitExpr:
		return inferListLit(ctx, e)

	case *syntax.SomeExpr:
		elemT, err := Infer(ctx, e.Value)
		if err != nil {
			return nil, err
		}
		return normalize.Apply(builtinVal(syntax.OptionalBuiltin), elemT), nil

	case *syntax.NoneExpr:
		t, ok := TypeOf(syntax.OptionalNone)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "unknown builtin None")
		}
		return t, nil

	case *syntax.RecordTypeExpr:
		return inferRecordType(ctx, e)

	case *syntax.RecordLitExpr:
		return inferRecordLit(ctx, e)

	case *syntax.UnionTypeExpr:
		return inferUnionType(ctx, e)

	case *syntax.TextLitExpr:
		return inferTextLit(ctx, e)

	case *syntax.FieldExpr:
		return inferField(ctx, e)

	case *syntax.ProjectExpr:
		return inferProject(ctx, e)

	case *syntax.MergeExpr:
		return inferMerge(ctx, e)

	case *syntax.AnnotExpr:
		annotT, err := Infer(ctx, e.Type)
		if err != nil {
			return nil, err
		}
		if _, ok := normalize.Force(annotT).Form().(adt.ConstF); !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "annotation is not a type")
		}
		annotVal := Eval(ctx, e.Type)
		if err := Check(ctx, e.Value, annotVal); err != nil {
			return nil, err
		}
		return annotVal, nil

	case *syntax.AssertExpr:
		return inferAssert(ctx, e)

	case *syntax.ImportExpr:
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "unresolved import reached the typechecker")

	default:
		return nil, derrors.NewTypeError(derrors.TypeMismatch, e.Pos(), "unhandled expression node")
	}
}

// Check implements the analysis (⇐) direction: verify e against an
// already-known expected type. The default case defers to Infer and
// compares the two types for judgmental equality; LambdaExpr gets a
// dedicated case because checking a lambda against an expected Pi gives a
// much sharper error (and avoids re-deriving the Pi from the lambda's own
// annotation) than inferring the lambda in isolation would.
func Check(ctx *Ctx, e syntax.Expr, expected *adt.Value) error {
	if lam, ok := e.(*syntax.LambdaExpr); ok {
		if pi, ok := normalize.Force(expected).Form().(adt.PiF); ok {
			domainT, err := Infer(ctx, lam.Type)
			if err != nil {
				return err
			}
			if _, ok := normalize.Force(domainT).Form().(adt.ConstF); !ok {
				return derrors.NewTypeError(derrors.TypeInvalidInput, lam.Pos(), "function input type must be a type")
			}
			domainVal := Eval(ctx, lam.Type)
			if !normalize.AlphaEquivalent(domainVal, pi.Domain) {
				return derrors.NewTypeError(derrors.TypeMismatch, lam.Pos(),
					"function input type %s does not match annotation %s", describe(pi.Domain), describe(domainVal))
			}
			bodyCtx := ctx.ExtendKept(lam.Label, domainVal)
			// pi.Codomain was itself evaluated under ctx.Env().ExtendKept(pi's
			// own label) - the same shape bodyCtx.Env() now has - so it is
			// already the exact type lam.Body must check against, with no
			// further instantiation needed.
			return Check(bodyCtx, lam.Body, normalize.Force(pi.Codomain))
		}
	}
	got, err := Infer(ctx, e)
	if err != nil {
		return err
	}
	if !normalize.AlphaEquivalent(got, expected) {
		return derrors.NewTypeError(derrors.TypeMismatch, e.Pos(),
			"expected type %s, got %s", describe(expected), describe(got))
	}
	return nil
}

// Eval evaluates e in ctx's normalize.Env, forcing it to WHNF - the
// typechecker only ever needs a type Value's outer shape to pattern
// match on, never its full normal form.
func Eval(ctx *Ctx, e syntax.Expr) *adt.Value {
	return normalize.Force(normalize.Eval(ctx.Env(), e))
}

func constVal(c syntax.Const) *adt.Value {
	return adt.NewNF(adt.ConstF{Const: c}, panicType)
}

func builtinVal(b syntax.Builtin) *adt.Value {
	return adt.NewNF(adt.BuiltinF{Builtin: b}, panicType)
}

// panicType backs every Value this package constructs directly (rather
// than through normalize.Eval): typechecking never reads a type Value's
// own .Type(), only its .Form(), so the lazy type thunk is never invoked.
func panicType() *adt.Value {
	panic("typecheck: type of a type-level constant was requested; typecheck never reads Value.Type()")
}
