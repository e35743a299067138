package adt

import "dhall-lang.org/go/syntax"

// Subst replaces the free AlphaVar at index cutoff in v with repl, and
// shifts every other free index above cutoff down by one to account for
// the binder that substitution removes. This is the standard combined
// substitute-and-shift-down step; unlike Shift it has no failure mode,
// since substituting a closed repl for a bound variable can never produce
// a dangling index.
//
// As with Shift, an Unevaluated v is not forced eagerly: the substitution
// is deferred behind a Thunker so that a binder whose body never uses its
// parameter never forces that parameter's replacement.
func Subst(v *Value, cutoff int, repl *Value) *Value {
	if v == nil {
		return nil
	}
	if v.State() == Unevaluated {
		inner := v.Thunk()
		typeFn := func() *Value { return Subst(v.Type(), cutoff, repl) }
		return NewThunk(&substThunk{inner: inner, cutoff: cutoff, repl: repl}, typeFn)
	}
	return substForced(v, cutoff, repl)
}

type substThunk struct {
	inner  Thunker
	cutoff int
	repl   *Value
}

func (s *substThunk) Force() *Value {
	return substForced(s.inner.Force(), s.cutoff, s.repl)
}

// substForced substitutes into an already-forced Value, which may itself
// turn out to be exactly the variable being replaced.
func substForced(v *Value, cutoff int, repl *Value) *Value {
	if vr, ok := v.Form().(VarF); ok {
		switch {
		case vr.Var.Absolute == cutoff:
			return repl
		case vr.Var.Absolute > cutoff:
			form := VarF{Var: syntax.AlphaVar{Label: vr.Var.Label, Absolute: vr.Var.Absolute - 1}}
			return rewrap(v, form, cutoff, repl)
		default:
			return v
		}
	}
	form := substForm(v.Form(), cutoff, repl)
	return rewrap(v, form, cutoff, repl)
}

func rewrap(v *Value, form ValueF, cutoff int, repl *Value) *Value {
	typeFn := func() *Value { return Subst(v.Type(), cutoff, repl) }
	switch v.State() {
	case NF:
		return NewNF(form, typeFn)
	default:
		return NewWHNF(form, typeFn)
	}
}

func substForm(form ValueF, cutoff int, repl *Value) ValueF {
	su := func(v *Value) *Value { return Subst(v, cutoff, repl) }
	suUnder := func(v *Value) *Value {
		shifted, ok := Shift(repl, 0, 1)
		if !ok {
			panic("adt: shift of substitution replacement produced a negative index")
		}
		return Subst(v, cutoff+1, shifted)
	}

	switch f := form.(type) {
	case ConstF, BuiltinF, BoolLitF, NaturalLitF, IntegerLitF, DoubleLitF, VarF:
		return f

	case LambdaF:
		return LambdaF{Label: f.Label, Domain: su(f.Domain), Body: suUnder(f.Body)}

	case PiF:
		return PiF{Label: f.Label, Domain: su(f.Domain), Codomain: suUnder(f.Codomain)}

	case AppF:
		return AppF{Fn: su(f.Fn), Arg: su(f.Arg)}

	case IfF:
		return IfF{Cond: su(f.Cond), Then: su(f.Then), Else: su(f.Else)}

	case BinOpF:
		return BinOpF{Op: f.Op, L: su(f.L), R: su(f.R)}

	case EmptyListF:
		return EmptyListF{ElemType: su(f.ElemType)}

	case ListLitF:
		elems := make([]*Value, len(f.Elements))
		for i, e := range f.Elements {
			elems[i] = su(e)
		}
		return ListLitF{Elements: elems}

	case SomeF:
		return SomeF{Value: su(f.Value)}

	case OptionalNoneF:
		return OptionalNoneF{ElemType: su(f.ElemType)}

	case RecordTypeF:
		fs, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *Value) (*Value, bool) { return su(v), true })
		return RecordTypeF{Fields: fs}

	case RecordLitF:
		fs, _ := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *Value) (*Value, bool) { return su(v), true })
		return RecordLitF{Fields: fs}

	case UnionTypeF:
		fs, _ := syntax.MapFieldsOK(f.Alternatives, func(_ syntax.Label, v *Value) (*Value, bool) {
			if v == nil {
				return nil, true
			}
			return su(v), true
		})
		return UnionTypeF{Alternatives: fs}

	case UnionConstructorF:
		return UnionConstructorF{Type: su(f.Type), Alt: f.Alt}

	case UnionValF:
		var p *Value
		if f.Payload != nil {
			p = su(f.Payload)
		}
		return UnionValF{Type: su(f.Type), Alt: f.Alt, Payload: p}

	case TextLitF:
		chunks := make([]TextPiece, len(f.Chunks))
		for i, c := range f.Chunks {
			if c.Embed == nil {
				chunks[i] = c
				continue
			}
			chunks[i] = TextPiece{Embed: su(c.Embed)}
		}
		return TextLitF{Chunks: chunks}

	case FieldF:
		return FieldF{Record: su(f.Record), Label: f.Label}

	case ProjectF:
		return ProjectF{Record: su(f.Record), Labels: f.Labels}

	case MergeF:
		var a *Value
		if f.Annot != nil {
			a = su(f.Annot)
		}
		return MergeF{Handlers: su(f.Handlers), Union: su(f.Union), Annot: a}

	default:
		return form
	}
}
