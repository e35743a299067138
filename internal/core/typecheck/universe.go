package typecheck

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

// universeOf computes the Const classifying typ - the type of a type -
// directly over typ's Value structure, resolving variables through ctx.
// It exists because several rules (function formation, `if` branches,
// list elements) need the universe of a type that only exists as a
// Value, never as a syntax.Expr that Infer could be re-run on.
func universeOf(ctx *Ctx, pos syntax.Pos, typ *adt.Value) (syntax.Const, error) {
	t, err := synthTypeOfType(ctx, pos, typ)
	if err != nil {
		return 0, err
	}
	c, ok := normalize.Force(t).Form().(adt.ConstF)
	if !ok {
		return 0, derrors.NewTypeError(derrors.TypeMismatch, pos, "%s is not a type", describe(typ))
	}
	return c.Const, nil
}

// synthTypeOfType synthesizes the type of a type-shaped Value: the same
// judgment Infer makes for an Expr, restricted to the Value shapes that
// can classify a term (universes, variables, builtins and their
// applications, pis, record/union types, and field selection into a
// record of types). Any other shape cannot be a term's type and is
// rejected.
func synthTypeOfType(ctx *Ctx, pos syntax.Pos, v *adt.Value) (*adt.Value, error) {
	switch f := normalize.Force(v).Form().(type) {
	case adt.ConstF:
		switch f.Const {
		case syntax.Type:
			return constVal(syntax.Kind), nil
		case syntax.Kind:
			return constVal(syntax.Sort), nil
		default:
			return nil, derrors.NewTypeError(derrors.TypeMismatch, pos, "Sort has no type")
		}

	case adt.VarF:
		t, ok := ctx.typeOfAbsolute(f.Var.Absolute)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeUnbound, pos, "unbound variable %s", f.Var.Label)
		}
		return t, nil

	case adt.BuiltinF:
		t, ok := TypeOf(f.Builtin)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeMismatch, pos, "unknown builtin %s", f.Builtin)
		}
		return t, nil

	case adt.AppF:
		fnT, err := synthTypeOfType(ctx, pos, f.Fn)
		if err != nil {
			return nil, err
		}
		pi, ok := normalize.Force(fnT).Form().(adt.PiF)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeNotAFunction, pos, "%s is not a function", describe(fnT))
		}
		return normalize.Instantiate(pi.Label, pi.Codomain, f.Arg), nil

	case adt.PiF:
		cA, err := universeOf(ctx, pos, f.Domain)
		if err != nil {
			return nil, err
		}
		cB, err := universeOf(ctx.ExtendKept(f.Label, f.Domain), pos, f.Codomain)
		if err != nil {
			return nil, err
		}
		c, ok := syntax.Rule(cA, cB)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeInvalidOutput, pos,
				"function type not allowed: %s -> %s", cA, cB)
		}
		return constVal(c), nil

	case adt.RecordTypeF:
		result := syntax.Type
		for _, k := range f.Fields.Keys() {
			fv, _ := f.Fields.Get(k)
			c, err := universeOf(ctx, pos, fv)
			if err != nil {
				return nil, err
			}
			result = maxConst(result, c)
		}
		return constVal(result), nil

	case adt.UnionTypeF:
		result := syntax.Type
		for _, k := range f.Alternatives.Keys() {
			av, _ := f.Alternatives.Get(k)
			if av == nil {
				continue
			}
			c, err := universeOf(ctx, pos, av)
			if err != nil {
				return nil, err
			}
			result = maxConst(result, c)
		}
		return constVal(result), nil

	case adt.FieldF:
		recT, err := synthTypeOfType(ctx, pos, f.Record)
		if err != nil {
			return nil, err
		}
		rt, ok := normalize.Force(recT).Form().(adt.RecordTypeF)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeInvalidField, pos, "%s is not a record", describe(recT))
		}
		ft, ok := rt.Fields.Get(f.Label)
		if !ok {
			return nil, derrors.NewTypeError(derrors.TypeInvalidField, pos, "record has no field %s", f.Label)
		}
		return ft, nil

	default:
		return nil, derrors.NewTypeError(derrors.TypeMismatch, pos, "%s is not a type", describe(v))
	}
}
