package adt

import "dhall-lang.org/go/syntax"

// Shift adjusts every free AlphaVar in v whose index is at least cutoff by
// delta, so that v keeps denoting the same thing after being relocated
// across |delta| additional binders. AlphaVar indices are label-agnostic
// (they count every enclosing binder, not just same-named ones - see
// syntax.AlphaVar), which is what makes this a plain, well-understood
// shift instead of the per-label bookkeeping the surface V syntax needs.
//
// A negative delta can fail: if it would drive some free index below
// zero, the variable would no longer make sense once relocated, and Shift
// reports that by returning ok=false. Shift never forces an Unevaluated
// Value for a non-negative delta; it instead defers the shift lazily so
// that forcing a term never forces more of it than normalization already
// would have.
func Shift(v *Value, cutoff, delta int) (*Value, bool) {
	if v == nil {
		return nil, true
	}
	if delta == 0 {
		return v, true
	}
	if v.State() == Unevaluated {
		if delta < 0 {
			// Negative shifts only ever originate from the typechecker
			// asking whether a term escapes a binder it is about to drop;
			// those terms are already in WHNF by the time that question is
			// asked, so eagerly forcing here does not cost us any
			// laziness the rest of the implementation relies on.
			forced := v.Thunk().Force()
			return shiftForced(forced, cutoff, delta)
		}
		inner := v.Thunk()
		typeFn := func() *Value {
			t, _ := Shift(v.Type(), cutoff, delta)
			return t
		}
		return NewThunk(&shiftThunk{inner: inner, cutoff: cutoff, delta: delta}, typeFn), true
	}
	return shiftForced(v, cutoff, delta)
}

type shiftThunk struct {
	inner         Thunker
	cutoff, delta int
}

func (s *shiftThunk) Force() *Value {
	forced := s.inner.Force()
	v, ok := shiftForced(forced, s.cutoff, s.delta)
	if !ok {
		panic("adt: shift of forced value produced a negative index")
	}
	return v
}

func shiftForced(v *Value, cutoff, delta int) (*Value, bool) {
	form, ok := shiftForm(v.Form(), cutoff, delta)
	if !ok {
		return nil, false
	}
	typeFn := func() *Value {
		t, _ := Shift(v.Type(), cutoff, delta)
		return t
	}
	switch v.State() {
	case NF:
		return NewNF(form, typeFn), true
	default:
		return NewWHNF(form, typeFn), true
	}
}

func shiftForm(form ValueF, cutoff, delta int) (ValueF, bool) {
	sh := func(v *Value) (*Value, bool) { return Shift(v, cutoff, delta) }
	shUnder := func(v *Value) (*Value, bool) { return Shift(v, cutoff+1, delta) }

	switch f := form.(type) {
	case ConstF, BuiltinF, BoolLitF, NaturalLitF, IntegerLitF, DoubleLitF:
		return f, true

	case VarF:
		if f.Var.Absolute < cutoff {
			return f, true
		}
		idx := f.Var.Absolute + delta
		if idx < 0 {
			return nil, false
		}
		return VarF{Var: syntax.AlphaVar{Label: f.Var.Label, Absolute: idx}}, true

	case LambdaF:
		d, ok := sh(f.Domain)
		if !ok {
			return nil, false
		}
		b, ok := shUnder(f.Body)
		if !ok {
			return nil, false
		}
		return LambdaF{Label: f.Label, Domain: d, Body: b}, true

	case PiF:
		d, ok := sh(f.Domain)
		if !ok {
			return nil, false
		}
		c, ok := shUnder(f.Codomain)
		if !ok {
			return nil, false
		}
		return PiF{Label: f.Label, Domain: d, Codomain: c}, true

	case AppF:
		fn, ok := sh(f.Fn)
		if !ok {
			return nil, false
		}
		arg, ok := sh(f.Arg)
		if !ok {
			return nil, false
		}
		return AppF{Fn: fn, Arg: arg}, true

	case IfF:
		c, ok := sh(f.Cond)
		if !ok {
			return nil, false
		}
		t, ok := sh(f.Then)
		if !ok {
			return nil, false
		}
		e, ok := sh(f.Else)
		if !ok {
			return nil, false
		}
		return IfF{Cond: c, Then: t, Else: e}, true

	case BinOpF:
		l, ok := sh(f.L)
		if !ok {
			return nil, false
		}
		r, ok := sh(f.R)
		if !ok {
			return nil, false
		}
		return BinOpF{Op: f.Op, L: l, R: r}, true

	case EmptyListF:
		t, ok := sh(f.ElemType)
		if !ok {
			return nil, false
		}
		return EmptyListF{ElemType: t}, true

	case ListLitF:
		elems := make([]*Value, len(f.Elements))
		for i, e := range f.Elements {
			v, ok := sh(e)
			if !ok {
				return nil, false
			}
			elems[i] = v
		}
		return ListLitF{Elements: elems}, true

	case SomeF:
		v, ok := sh(f.Value)
		if !ok {
			return nil, false
		}
		return SomeF{Value: v}, true

	case OptionalNoneF:
		t, ok := sh(f.ElemType)
		if !ok {
			return nil, false
		}
		return OptionalNoneF{ElemType: t}, true

	case RecordTypeF:
		fs, ok := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *Value) (*Value, bool) { return sh(v) })
		if !ok {
			return nil, false
		}
		return RecordTypeF{Fields: fs}, true

	case RecordLitF:
		fs, ok := syntax.MapFieldsOK(f.Fields, func(_ syntax.Label, v *Value) (*Value, bool) { return sh(v) })
		if !ok {
			return nil, false
		}
		return RecordLitF{Fields: fs}, true

	case UnionTypeF:
		fs, ok := syntax.MapFieldsOK(f.Alternatives, func(_ syntax.Label, v *Value) (*Value, bool) {
			if v == nil {
				return nil, true
			}
			return sh(v)
		})
		if !ok {
			return nil, false
		}
		return UnionTypeF{Alternatives: fs}, true

	case UnionConstructorF:
		t, ok := sh(f.Type)
		if !ok {
			return nil, false
		}
		return UnionConstructorF{Type: t, Alt: f.Alt}, true

	case UnionValF:
		t, ok := sh(f.Type)
		if !ok {
			return nil, false
		}
		var p *Value
		if f.Payload != nil {
			p, ok = sh(f.Payload)
			if !ok {
				return nil, false
			}
		}
		return UnionValF{Type: t, Alt: f.Alt, Payload: p}, true

	case TextLitF:
		chunks := make([]TextPiece, len(f.Chunks))
		for i, c := range f.Chunks {
			if c.Embed == nil {
				chunks[i] = c
				continue
			}
			v, ok := sh(c.Embed)
			if !ok {
				return nil, false
			}
			chunks[i] = TextPiece{Embed: v}
		}
		return TextLitF{Chunks: chunks}, true

	case FieldF:
		r, ok := sh(f.Record)
		if !ok {
			return nil, false
		}
		return FieldF{Record: r, Label: f.Label}, true

	case ProjectF:
		r, ok := sh(f.Record)
		if !ok {
			return nil, false
		}
		return ProjectF{Record: r, Labels: f.Labels}, true

	case MergeF:
		h, ok := sh(f.Handlers)
		if !ok {
			return nil, false
		}
		u, ok := sh(f.Union)
		if !ok {
			return nil, false
		}
		var a *Value
		if f.Annot != nil {
			a, ok = sh(f.Annot)
			if !ok {
				return nil, false
			}
		}
		return MergeF{Handlers: h, Union: u, Annot: a}, true

	default:
		return form, true
	}
}
