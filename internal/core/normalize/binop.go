package normalize

import (
	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/syntax"
)

// evalBinOp implements the per-operator rewrite table of spec.md 4.4. Each
// operator decides for itself how much of its operands it needs to force;
// `||`/`&&`/`?` in particular must not force more than their short-circuit
// semantics require, or a lazily-unused branch (e.g. an import-alt
// fallback that is never taken) could force a term that legitimately
// never needs evaluating.
func evalBinOp(env *Env, e *syntax.BinOpExpr) *adt.Value {
	l := Eval(env, e.L)
	r := Eval(env, e.R)

	switch e.Op {
	case syntax.BoolOr:
		return boolOp(l, r, true)
	case syntax.BoolAnd:
		return boolOp(l, r, false)
	case syntax.BoolEQ:
		return boolEq(l, r, true)
	case syntax.BoolNE:
		return boolEq(l, r, false)
	case syntax.NaturalPlus:
		return naturalPlus(l, r)
	case syntax.NaturalTimes:
		return naturalTimes(l, r)
	case syntax.TextAppend:
		return textAppend(l, r)
	case syntax.ListAppend:
		return listAppend(l, r)
	case syntax.RecordMerge:
		return mergeRecordsLazy(syntax.RecordMerge, l, r)
	case syntax.RightBiasedMerge:
		return rightBiasedMerge(l, r)
	case syntax.RecordTypeMerge:
		return mergeRecordsLazy(syntax.RecordTypeMerge, l, r)
	case syntax.Equivalent:
		return wh(adt.BinOpF{Op: syntax.Equivalent, L: Force(l), R: Force(r)})
	case syntax.ImportAlt:
		// Imports are gone by the time the normalizer runs; an ImportAlt
		// that survives resolution always keeps its left operand.
		return Force(l)
	default:
		panic("normalize: unhandled binary operator")
	}
}

func boolOp(l, r *adt.Value, isOr bool) *adt.Value {
	lv := Force(l)
	if b, ok := lv.Form().(adt.BoolLitF); ok {
		if b.Value == isOr {
			return lv // True || x -> True ; False && x -> False
		}
		return Force(r) // False || x -> x ; True && x -> x
	}
	rv := Force(r)
	if b, ok := rv.Form().(adt.BoolLitF); ok {
		if b.Value == isOr {
			return rv
		}
		return lv
	}
	if AlphaEquivalent(lv, rv) {
		return lv
	}
	op := syntax.BoolAnd
	if isOr {
		op = syntax.BoolOr
	}
	return wh(adt.BinOpF{Op: op, L: lv, R: rv})
}

func boolEq(l, r *adt.Value, isEq bool) *adt.Value {
	lv := Force(l)
	rv := Force(r)
	if b, ok := lv.Form().(adt.BoolLitF); ok {
		if (isEq && b.Value) || (!isEq && !b.Value) {
			return rv
		}
	}
	if b, ok := rv.Form().(adt.BoolLitF); ok {
		if (isEq && b.Value) || (!isEq && !b.Value) {
			return lv
		}
	}
	if AlphaEquivalent(lv, rv) {
		return nf(adt.BoolLitF{Value: isEq})
	}
	op := syntax.BoolEQ
	if !isEq {
		op = syntax.BoolNE
	}
	return wh(adt.BinOpF{Op: op, L: lv, R: rv})
}

func naturalPlus(l, r *adt.Value) *adt.Value {
	lv := Force(l)
	rv := Force(r)
	ln, lok := lv.Form().(adt.NaturalLitF)
	rn, rok := rv.Form().(adt.NaturalLitF)
	switch {
	case lok && rok:
		return nf(adt.NaturalLitF{Value: ln.Value + rn.Value})
	case lok && ln.Value == 0:
		return rv
	case rok && rn.Value == 0:
		return lv
	}
	return wh(adt.BinOpF{Op: syntax.NaturalPlus, L: lv, R: rv})
}

func naturalTimes(l, r *adt.Value) *adt.Value {
	lv := Force(l)
	rv := Force(r)
	ln, lok := lv.Form().(adt.NaturalLitF)
	rn, rok := rv.Form().(adt.NaturalLitF)
	switch {
	case lok && rok:
		return nf(adt.NaturalLitF{Value: ln.Value * rn.Value})
	case lok && ln.Value == 0:
		return lv
	case rok && rn.Value == 0:
		return rv
	case lok && ln.Value == 1:
		return rv
	case rok && rn.Value == 1:
		return lv
	}
	return wh(adt.BinOpF{Op: syntax.NaturalTimes, L: lv, R: rv})
}

func textAppend(l, r *adt.Value) *adt.Value {
	lv := Force(l)
	rv := Force(r)
	lt, lok := asTextChunks(lv)
	rt, rok := asTextChunks(rv)
	if lok && rok {
		pieces := append(append([]adt.TextPiece(nil), lt...), rt...)
		merged := make([]adt.TextPiece, 0, len(pieces))
		for _, p := range pieces {
			if p.Embed == nil {
				merged = appendRaw(merged, p.Raw)
			} else {
				merged = append(merged, p)
			}
		}
		if len(merged) == 1 && merged[0].Embed != nil {
			return merged[0].Embed
		}
		return wh(adt.TextLitF{Chunks: merged})
	}
	return wh(adt.BinOpF{Op: syntax.TextAppend, L: lv, R: rv})
}

func asTextChunks(v *adt.Value) ([]adt.TextPiece, bool) {
	tl, ok := v.Form().(adt.TextLitF)
	if !ok {
		return nil, false
	}
	return tl.Chunks, true
}

// asListElements extracts the element slice of a list Value regardless of
// whether it arrived as a non-empty ListLitF or as EmptyListF - the two
// shapes the evaluator ever produces for a list (`[]: List T` always
// builds EmptyListF; the parser never hands whnf a ListLitExpr with zero
// elements, `[]` parses to the dedicated empty-list node), so every list
// builtin and operator needs to treat them as the same case or it will
// silently fail to recognize a literal empty list as literal.
func asListElements(v *adt.Value) ([]*adt.Value, bool) {
	switch f := v.Form().(type) {
	case adt.ListLitF:
		return f.Elements, true
	case adt.EmptyListF:
		return nil, true
	}
	return nil, false
}

func listAppend(l, r *adt.Value) *adt.Value {
	lv := Force(l)
	rv := Force(r)
	le, lok := asListElements(lv)
	re, rok := asListElements(rv)
	switch {
	case lok && len(le) == 0:
		return rv
	case rok && len(re) == 0:
		return lv
	case lok && rok:
		elems := append(append([]*adt.Value(nil), le...), re...)
		return wh(adt.ListLitF{Elements: elems})
	}
	return wh(adt.BinOpF{Op: syntax.ListAppend, L: lv, R: rv})
}

func mergeRecordsLazy(op syntax.Op, l, r *adt.Value) *adt.Value {
	lv := Force(l)
	rv := Force(r)
	if _, lok := recordFields(lv); !lok {
		return wh(adt.BinOpF{Op: op, L: lv, R: rv})
	}
	if _, rok := recordFields(rv); !rok {
		return wh(adt.BinOpF{Op: op, L: lv, R: rv})
	}
	return mergeRecordsOp(op, lv, rv)
}

func recordFields(v *adt.Value) (*syntax.Fields[*adt.Value], bool) {
	switch f := v.Form().(type) {
	case adt.RecordLitF:
		return f.Fields, true
	case adt.RecordTypeF:
		return f.Fields, true
	}
	return nil, false
}

// mergeRecordsOp performs the structural merge of RecordMerge (∧) and
// RecordTypeMerge (⩓), recursing into colliding fields; RightBiasedMerge
// (⫽) - handled separately in rightBiasedMerge - never recurses. A
// collision on a non-record operand is a type error, but normalization
// must not fail (an ill-typed term gets stuck, it never panics), so the
// merge stays a neutral BinOpF in that case rather than recursing into a
// shape that has no fields.
func mergeRecordsOp(op syntax.Op, lv, rv *adt.Value) *adt.Value {
	lf, lok := recordFields(lv)
	rf, rok := recordFields(rv)
	if !lok || !rok {
		return wh(adt.BinOpF{Op: op, L: lv, R: rv})
	}

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
		lval, lhas := lf.Get(k)
		rval, rhas := rf.Get(k)
		switch {
		case lhas && rhas:
			values[k] = mergeRecordsOp(op, Force(lval), Force(rval))
		case lhas:
			values[k] = lval
		default:
			values[k] = rval
		}
	}
	fields := syntax.NewFieldsUnchecked(keys, values)
	if _, isType := lv.Form().(adt.RecordTypeF); isType {
		return wh(adt.RecordTypeF{Fields: fields})
	}
	return wh(adt.RecordLitF{Fields: fields})
}

func rightBiasedMerge(l, r *adt.Value) *adt.Value {
	lv := Force(l)
	rv := Force(r)
	lf, lok := lv.Form().(adt.RecordLitF)
	rf, rok := rv.Form().(adt.RecordLitF)
	if !lok || !rok {
		return wh(adt.BinOpF{Op: syntax.RightBiasedMerge, L: lv, R: rv})
	}
	if lf.Fields.Len() == 0 {
		return rv
	}
	if rf.Fields.Len() == 0 {
		return lv
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
	return wh(adt.RecordLitF{Fields: syntax.NewFieldsUnchecked(keys, values)})
}
