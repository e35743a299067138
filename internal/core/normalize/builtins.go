package normalize

import (
	"strconv"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

// applyBuiltin fires a builtin's native semantics once it has been
// supplied exactly syntax.Arity[b] arguments. It returns ok=false when the
// arguments aren't concrete enough yet (per spec.md 4.4.1, "defined only
// when ... arguments are literal"), leaving the caller to build a neutral
// application instead.
func applyBuiltin(b syntax.Builtin, args []*adt.Value) (*adt.Value, bool) {
	switch b {
	case syntax.NaturalIsZero:
		n, ok := forceNat(args[0])
		if !ok {
			return nil, false
		}
		return nf(adt.BoolLitF{Value: n == 0}), true

	case syntax.NaturalEven:
		n, ok := forceNat(args[0])
		if !ok {
			return nil, false
		}
		return nf(adt.BoolLitF{Value: n%2 == 0}), true

	case syntax.NaturalOdd:
		n, ok := forceNat(args[0])
		if !ok {
			return nil, false
		}
		return nf(adt.BoolLitF{Value: n%2 != 0}), true

	case syntax.NaturalToInteger:
		n, ok := forceNat(args[0])
		if !ok {
			return nil, false
		}
		return nf(adt.IntegerLitF{Value: int64(n)}), true

	case syntax.NaturalShow:
		n, ok := forceNat(args[0])
		if !ok {
			return nil, false
		}
		return textLit(strconv.FormatUint(n, 10)), true

	case syntax.NaturalSubtract:
		m, mok := forceNat(args[0])
		n, nok := forceNat(args[1])
		if mok && m == 0 {
			return args[1], true
		}
		if !mok || !nok {
			return nil, false
		}
		if n <= m {
			return nf(adt.NaturalLitF{Value: 0}), true
		}
		return nf(adt.NaturalLitF{Value: n - m}), true

	case syntax.NaturalFold:
		return naturalFold(args[0], args[1], args[2], args[3])

	case syntax.NaturalBuild:
		return naturalBuild(args[0]), true

	case syntax.IntegerToDouble:
		i, ok := forceInt(args[0])
		if !ok {
			return nil, false
		}
		return nf(adt.DoubleLitF{Value: float64(i)}), true

	case syntax.IntegerShow:
		i, ok := forceInt(args[0])
		if !ok {
			return nil, false
		}
		sign := "+"
		if i < 0 {
			sign = ""
		}
		return textLit(sign + strconv.FormatInt(i, 10)), true

	case syntax.IntegerNegate:
		i, ok := forceInt(args[0])
		if !ok {
			return nil, false
		}
		return nf(adt.IntegerLitF{Value: -i}), true

	case syntax.IntegerClamp:
		i, ok := forceInt(args[0])
		if !ok {
			return nil, false
		}
		if i < 0 {
			return nf(adt.NaturalLitF{Value: 0}), true
		}
		return nf(adt.NaturalLitF{Value: uint64(i)}), true

	case syntax.DoubleShow:
		d := Force(args[0])
		lit, ok := d.Form().(adt.DoubleLitF)
		if !ok {
			return nil, false
		}
		return textLit(formatDouble(lit.Value)), true

	case syntax.TextShow:
		t := Force(args[0])
		tl, ok := t.Form().(adt.TextLitF)
		if !ok || len(tl.Chunks) > 1 || (len(tl.Chunks) == 1 && tl.Chunks[0].Embed != nil) {
			return nil, false
		}
		raw := ""
		if len(tl.Chunks) == 1 {
			raw = tl.Chunks[0].Raw
		}
		return textLit(escapeDhallText(raw)), true

	case syntax.ListLength:
		elems, ok := asListElements(Force(args[1]))
		if !ok {
			return nil, false
		}
		return nf(adt.NaturalLitF{Value: uint64(len(elems))}), true

	case syntax.ListHead:
		return listHeadOrLast(args[0], args[1], true)

	case syntax.ListLast:
		return listHeadOrLast(args[0], args[1], false)

	case syntax.ListReverse:
		elems, ok := asListElements(Force(args[1]))
		if !ok {
			return nil, false
		}
		rev := make([]*adt.Value, len(elems))
		for i, e := range elems {
			rev[len(rev)-1-i] = e
		}
		return wh(adt.ListLitF{Elements: rev}), true

	case syntax.ListIndexed:
		return listIndexed(args[0], args[1])

	case syntax.ListFold:
		return listFold(args[0], args[1], args[2], args[3], args[4])

	case syntax.ListBuild:
		return listBuild(args[0], args[1]), true

	case syntax.OptionalFold:
		return optionalFold(args[0], args[1], args[2], args[3], args[4])

	case syntax.OptionalBuild:
		return optionalBuild(args[0], args[1]), true

	case syntax.OptionalNone:
		return wh(adt.OptionalNoneF{ElemType: args[0]}), true

	default:
		return nil, false
	}
}

func forceNat(v *adt.Value) (uint64, bool) {
	f := Force(v)
	n, ok := f.Form().(adt.NaturalLitF)
	return n.Value, ok
}

func forceInt(v *adt.Value) (int64, bool) {
	f := Force(v)
	n, ok := f.Form().(adt.IntegerLitF)
	return n.Value, ok
}

func textLit(s string) *adt.Value {
	return wh(adt.TextLitF{Chunks: []adt.TextPiece{{Raw: s}}})
}

func naturalFold(n, typ, succ, zero *adt.Value) (*adt.Value, bool) {
	count, ok := forceNat(n)
	if !ok {
		return nil, false
	}
	_ = typ
	acc := zero
	for i := uint64(0); i < count; i++ {
		acc = applyVal(succ, acc)
	}
	return acc, true
}

func naturalBuild(g *adt.Value) *adt.Value {
	succ := adt.NewWHNF(adt.NativeFuncF{Name: "Natural/build/succ", Apply: func(arg *adt.Value) *adt.Value {
		a := Force(arg)
		if n, ok := a.Form().(adt.NaturalLitF); ok {
			return nf(adt.NaturalLitF{Value: n.Value + 1})
		}
		return wh(adt.BinOpF{Op: syntax.NaturalPlus, L: a, R: nf(adt.NaturalLitF{Value: 1})})
	}}, unknownType)
	zero := nf(adt.NaturalLitF{Value: 0})
	natType := nf(adt.BuiltinF{Builtin: syntax.NaturalBuiltin})
	return applyVal(applyVal(applyVal(g, natType), succ), zero)
}

func listHeadOrLast(typ, xs *adt.Value, head bool) (*adt.Value, bool) {
	elems, ok := asListElements(Force(xs))
	if !ok {
		return nil, false
	}
	if len(elems) == 0 {
		return wh(adt.OptionalNoneF{ElemType: typ}), true
	}
	idx := 0
	if !head {
		idx = len(elems) - 1
	}
	return wh(adt.SomeF{Value: elems[idx]}), true
}

func listIndexed(typ, xs *adt.Value) (*adt.Value, bool) {
	src, ok := asListElements(Force(xs))
	if !ok {
		return nil, false
	}
	elems := make([]*adt.Value, len(src))
	for i, e := range src {
		fields := syntax.NewFieldsUnchecked(
			[]syntax.Label{"index", "value"},
			map[syntax.Label]*adt.Value{
				"index": nf(adt.NaturalLitF{Value: uint64(i)}),
				"value": e,
			},
		)
		elems[i] = wh(adt.RecordLitF{Fields: fields})
	}
	_ = typ
	return wh(adt.ListLitF{Elements: elems}), true
}

func listFold(typ, xs, u, cons, nilV *adt.Value) (*adt.Value, bool) {
	elems, ok := asListElements(Force(xs))
	if !ok {
		return nil, false
	}
	_, _ = typ, u
	acc := nilV
	for i := len(elems) - 1; i >= 0; i-- {
		acc = applyVal(applyVal(cons, elems[i]), acc)
	}
	return acc, true
}

func listBuild(typ, g *adt.Value) *adt.Value {
	cons := adt.NewWHNF(adt.NativeFuncF{Name: "List/build/cons", Apply: func(x *adt.Value) *adt.Value {
		return adt.NewWHNF(adt.NativeFuncF{Name: "List/build/cons/2", Apply: func(xs *adt.Value) *adt.Value {
			rest := Force(xs)
			if elems, ok := asListElements(rest); ok {
				return wh(adt.ListLitF{Elements: append([]*adt.Value{x}, elems...)})
			}
			return wh(adt.BinOpF{Op: syntax.ListAppend, L: wh(adt.ListLitF{Elements: []*adt.Value{x}}), R: rest})
		}}, unknownType)
	}}, unknownType)
	nilV := wh(adt.EmptyListF{ElemType: typ})
	listT := wh(adt.AppF{Fn: nf(adt.BuiltinF{Builtin: syntax.ListBuiltin}), Arg: typ})
	return applyVal(applyVal(applyVal(g, listT), cons), nilV)
}

func optionalFold(typ, o, u, some, none *adt.Value) (*adt.Value, bool) {
	v := Force(o)
	_, _ = typ, u
	switch f := v.Form().(type) {
	case adt.SomeF:
		return applyVal(some, f.Value), true
	case adt.OptionalNoneF:
		return none, true
	}
	return nil, false
}

func optionalBuild(typ, g *adt.Value) *adt.Value {
	some := adt.NewWHNF(adt.NativeFuncF{Name: "Optional/build/some", Apply: func(x *adt.Value) *adt.Value {
		return wh(adt.SomeF{Value: x})
	}}, unknownType)
	none := wh(adt.OptionalNoneF{ElemType: typ})
	optT := wh(adt.AppF{Fn: nf(adt.BuiltinF{Builtin: syntax.OptionalBuiltin}), Arg: typ})
	return applyVal(applyVal(applyVal(g, optT), some), none)
}
