package binary

import (
	"math/big"

	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
	"golang.org/x/text/unicode/norm"
)

// normLabel NFC-normalizes s before wrapping it as a syntax.Label, the same
// point cue/internal/compile normalizes ast.Ident text when it first
// turns source identifiers into internal Features: two labels that
// differ only in Unicode normalization form should still compare equal
// as the same bound variable or field name everywhere later in the
// pipeline (shift/subst, Fields lookups, judgmental equality) that
// relies on Go string equality rather than re-normalizing each time.
func normLabel(s string) syntax.Label {
	return syntax.Label(norm.NFC.String(s))
}

// Decode parses b as this package's binary form, the inverse of Encode.
// Every failure - truncated input, an unrecognized discriminator, a shape
// that doesn't match any case decodeItem below knows about - is reported
// as a *derrors.Error with code DecodeFailure, per spec.md 7 ("fails with
// a decode error for malformed structure or unknown discriminants").
func Decode(b []byte) (syntax.Expr, error) {
	r := &reader{b: b}
	it, err := r.readItem()
	if err != nil {
		return nil, derrors.Newf(derrors.DecodeFailure, syntax.NoPos, "%s", err)
	}
	if r.pos != len(r.b) {
		return nil, derrors.Newf(derrors.DecodeFailure, syntax.NoPos, "trailing bytes after a complete expression")
	}
	e, err := decodeItem(it)
	if err != nil {
		return nil, derrors.Newf(derrors.DecodeFailure, syntax.NoPos, "%s", err)
	}
	return e, nil
}

func fail(format string, args ...any) error {
	return derrors.Newf(derrors.DecodeFailure, syntax.NoPos, format, args...)
}

func decodeItem(it item) (syntax.Expr, error) {
	switch it.major {
	case majorUint:
		return &syntax.VarExpr{V: syntax.V{Label: "_", Index: int(it.uint)}}, nil

	case majorNInt:
		return nil, fail("a bare negative integer is not a valid top-level expression shape")

	case majorTStr:
		return decodeIdentifier(it.text)

	case majorSimp:
		return decodeSimple(it)

	case majorArr:
		return decodeArray(it.arr)

	default:
		return nil, fail("unexpected CBOR shape (major type %d) for an expression", it.major)
	}
}

func decodeSimple(it item) (syntax.Expr, error) {
	switch it.simp {
	case simpleBool:
		return &syntax.BoolLitExpr{Value: it.b}, nil
	case simpleFloat:
		return &syntax.DoubleLitExpr{Value: it.flt}, nil
	default:
		return nil, fail("unexpected null where an expression was expected")
	}
}

func decodeIdentifier(name string) (syntax.Expr, error) {
	switch name {
	case "Type":
		return &syntax.ConstExpr{Const: syntax.Type}, nil
	case "Kind":
		return &syntax.ConstExpr{Const: syntax.Kind}, nil
	case "Sort":
		return &syntax.ConstExpr{Const: syntax.Sort}, nil
	case string(syntax.OptionalNone):
		return &syntax.NoneExpr{}, nil
	}
	if b, ok := syntax.IsBuiltin(syntax.Label(name)); ok {
		return &syntax.BuiltinExpr{Builtin: b}, nil
	}
	return nil, fail("unknown identifier %q", name)
}

func decodeArray(arr []item) (syntax.Expr, error) {
	if len(arr) == 0 {
		return nil, fail("empty array is not a valid expression")
	}
	head := arr[0]

	// A [label, index] variable is the one array shape not tagged by a
	// leading small-integer discriminator (its own leading element is a
	// label, a text string), so it is recognized structurally instead.
	if head.major == majorTStr && len(arr) == 2 && arr[1].major != majorArr {
		idx, ok := smallInt(arr[1])
		if !ok {
			return nil, fail("variable index is not an integer")
		}
		return &syntax.VarExpr{V: syntax.V{Label: normLabel(head.text), Index: idx}}, nil
	}

	tag, ok := smallInt(head)
	if !ok {
		return nil, fail("array's leading element is not a discriminator or a variable label")
	}

	switch tag {
	case tagApp:
		return decodeApp(arr)
	case tagLambda:
		return decodeBinder(arr, "Lambda")
	case tagPi:
		return decodeBinder(arr, "Pi")
	case tagOp:
		if len(arr) != 4 {
			return nil, fail("operator node needs 4 elements, got %d", len(arr))
		}
		op, ok := smallInt(arr[1])
		if !ok || op < 0 || op > int(syntax.ImportAlt) {
			return nil, fail("invalid operator code")
		}
		l, err := decodeItem(arr[2])
		if err != nil {
			return nil, err
		}
		r, err := decodeItem(arr[3])
		if err != nil {
			return nil, err
		}
		return &syntax.BinOpExpr{Op: syntax.Op(op), L: l, R: r}, nil
	case tagList:
		return decodeList(arr)
	case tagSome:
		if len(arr) != 2 {
			return nil, fail("Some node needs 2 elements, got %d", len(arr))
		}
		v, err := decodeItem(arr[1])
		if err != nil {
			return nil, err
		}
		return &syntax.SomeExpr{Value: v}, nil
	case tagMerge:
		return decodeMerge(arr)
	case tagRecordT:
		return decodeFieldMap(arr, false)
	case tagRecordV:
		return decodeFieldMap(arr, false)
	case tagField:
		if len(arr) != 3 {
			return nil, fail("field-selection node needs 3 elements, got %d", len(arr))
		}
		rec, err := decodeItem(arr[1])
		if err != nil {
			return nil, err
		}
		if arr[2].major != majorTStr {
			return nil, fail("field-selection label is not a string")
		}
		return &syntax.FieldExpr{Record: rec, Label: normLabel(arr[2].text)}, nil
	case tagProject:
		return decodeProject(arr)
	case tagUnionT:
		return decodeUnionType(arr)
	case tagIf:
		if len(arr) != 4 {
			return nil, fail("if-node needs 4 elements, got %d", len(arr))
		}
		cond, err := decodeItem(arr[1])
		if err != nil {
			return nil, err
		}
		then, err := decodeItem(arr[2])
		if err != nil {
			return nil, err
		}
		els, err := decodeItem(arr[3])
		if err != nil {
			return nil, err
		}
		return &syntax.IfExpr{Cond: cond, Then: then, Else: els}, nil
	case tagNatural:
		if len(arr) != 2 {
			return nil, fail("Natural-literal node needs 2 elements, got %d", len(arr))
		}
		n, ok := decodeUnsignedNatural(arr[1])
		if !ok {
			return nil, fail("Natural literal is out of this implementation's supported range")
		}
		return &syntax.NaturalLitExpr{Value: n}, nil
	case tagInteger:
		if len(arr) != 2 {
			return nil, fail("Integer-literal node needs 2 elements, got %d", len(arr))
		}
		n, ok := decodeSignedInteger(arr[1])
		if !ok {
			return nil, fail("Integer literal is out of this implementation's supported range")
		}
		return &syntax.IntegerLitExpr{Value: n}, nil
	case tagText:
		return decodeText(arr)
	case tagAssert:
		if len(arr) != 2 {
			return nil, fail("assert-node needs 2 elements, got %d", len(arr))
		}
		annot, err := decodeItem(arr[1])
		if err != nil {
			return nil, err
		}
		return &syntax.AssertExpr{Annot: annot}, nil
	case tagAnnot:
		if len(arr) != 3 {
			return nil, fail("annotation node needs 3 elements, got %d", len(arr))
		}
		v, err := decodeItem(arr[1])
		if err != nil {
			return nil, err
		}
		t, err := decodeItem(arr[2])
		if err != nil {
			return nil, err
		}
		return &syntax.AnnotExpr{Value: v, Type: t}, nil
	case tagLet:
		return decodeLet(arr)
	case tagImport:
		return decodeImport(arr)
	default:
		return nil, fail("unknown discriminator %d", tag)
	}
}

func decodeApp(arr []item) (syntax.Expr, error) {
	if len(arr) < 3 {
		return nil, fail("application node needs at least 3 elements, got %d", len(arr))
	}
	fn, err := decodeItem(arr[1])
	if err != nil {
		return nil, err
	}
	for _, a := range arr[2:] {
		arg, err := decodeItem(a)
		if err != nil {
			return nil, err
		}
		fn = &syntax.AppExpr{Fn: fn, Arg: arg}
	}
	return fn, nil
}

func decodeBinder(arr []item, what string) (syntax.Expr, error) {
	var label syntax.Label
	var typIdx, bodyIdx int
	switch len(arr) {
	case 3:
		label, typIdx, bodyIdx = "_", 1, 2
	case 4:
		if arr[1].major != majorTStr {
			return nil, fail("%s label is not a string", what)
		}
		label, typIdx, bodyIdx = normLabel(arr[1].text), 2, 3
	default:
		return nil, fail("%s node needs 3 or 4 elements, got %d", what, len(arr))
	}
	typ, err := decodeItem(arr[typIdx])
	if err != nil {
		return nil, err
	}
	body, err := decodeItem(arr[bodyIdx])
	if err != nil {
		return nil, err
	}
	if what == "Pi" {
		return &syntax.PiExpr{Label: label, Type: typ, Body: body}, nil
	}
	return &syntax.LambdaExpr{Label: label, Type: typ, Body: body}, nil
}

func decodeLet(arr []item) (syntax.Expr, error) {
	if len(arr) < 5 || (len(arr)-2)%3 != 0 {
		return nil, fail("let-node has a malformed element count %d", len(arr))
	}
	type binding struct {
		label syntax.Label
		annot syntax.Expr
		value syntax.Expr
	}
	n := (len(arr) - 2) / 3
	bindings := make([]binding, n)
	idx := 1
	for i := 0; i < n; i++ {
		if arr[idx].major != majorTStr {
			return nil, fail("let binding name is not a string")
		}
		label := normLabel(arr[idx].text)
		idx++
		var annot syntax.Expr
		if !arr[idx].null {
			a, err := decodeItem(arr[idx])
			if err != nil {
				return nil, err
			}
			annot = a
		}
		idx++
		v, err := decodeItem(arr[idx])
		if err != nil {
			return nil, err
		}
		idx++
		bindings[i] = binding{label: label, annot: annot, value: v}
	}
	body, err := decodeItem(arr[idx])
	if err != nil {
		return nil, err
	}
	for i := n - 1; i >= 0; i-- {
		b := bindings[i]
		body = &syntax.LetExpr{Label: b.label, Annot: b.annot, Value: b.value, Body: body}
	}
	return body, nil
}

func decodeList(arr []item) (syntax.Expr, error) {
	switch {
	case len(arr) == 2:
		elemType, err := decodeItem(arr[1])
		if err != nil {
			return nil, err
		}
		return &syntax.EmptyListExpr{ElemType: elemType}, nil
	case len(arr) >= 3 && arr[1].null:
		elems := make([]syntax.Expr, len(arr)-2)
		for i, it := range arr[2:] {
			e, err := decodeItem(it)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &syntax.ListLitExpr{Elements: elems}, nil
	default:
		return nil, fail("malformed list-literal node")
	}
}

func decodeMerge(arr []item) (syntax.Expr, error) {
	if len(arr) != 3 && len(arr) != 4 {
		return nil, fail("merge-node needs 3 or 4 elements, got %d", len(arr))
	}
	h, err := decodeItem(arr[1])
	if err != nil {
		return nil, err
	}
	u, err := decodeItem(arr[2])
	if err != nil {
		return nil, err
	}
	var annot syntax.Expr
	if len(arr) == 4 {
		annot, err = decodeItem(arr[3])
		if err != nil {
			return nil, err
		}
	}
	return &syntax.MergeExpr{Handlers: h, Union: u, Annot: annot}, nil
}

func decodeFieldMap(arr []item, allowNil bool) (syntax.Expr, error) {
	if len(arr) != 2 || arr[1].major != majorMap {
		return nil, fail("record node needs a trailing field map")
	}
	pairs := make([]syntax.LabelValue[syntax.Expr], len(arr[1].kv))
	for i, p := range arr[1].kv {
		if p.val.null {
			if !allowNil {
				return nil, fail("field %q has no value", p.key)
			}
			pairs[i] = syntax.LabelValue[syntax.Expr]{Label: normLabel(p.key), Value: nil}
			continue
		}
		v, err := decodeItem(p.val)
		if err != nil {
			return nil, err
		}
		pairs[i] = syntax.LabelValue[syntax.Expr]{Label: normLabel(p.key), Value: v}
	}
	fields, err := syntax.NewFields(pairs)
	if err != nil {
		return nil, fail("%s", err)
	}
	if allowNil {
		return &syntax.UnionTypeExpr{Alternatives: fields}, nil
	}
	return recordExprFromTag(arr, fields)
}

// recordExprFromTag distinguishes RecordType from RecordLit; both share
// decodeFieldMap's body, so the caller (decodeArray) passes which shape it
// expects in by re-checking the already-known discriminator.
func recordExprFromTag(arr []item, fields *syntax.Fields[syntax.Expr]) (syntax.Expr, error) {
	tag, _ := smallInt(arr[0])
	if tag == tagRecordT {
		return &syntax.RecordTypeExpr{Fields: fields}, nil
	}
	return &syntax.RecordLitExpr{Fields: fields}, nil
}

func decodeUnionType(arr []item) (syntax.Expr, error) {
	e, err := decodeFieldMap(arr, true)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func decodeProject(arr []item) (syntax.Expr, error) {
	if len(arr) < 2 {
		return nil, fail("projection node needs at least 2 elements")
	}
	rec, err := decodeItem(arr[1])
	if err != nil {
		return nil, err
	}
	labels := make([]syntax.Label, len(arr)-2)
	for i, it := range arr[2:] {
		if it.major != majorTStr {
			return nil, fail("projection label is not a string")
		}
		labels[i] = normLabel(it.text)
	}
	return &syntax.ProjectExpr{Record: rec, Labels: labels}, nil
}

func decodeText(arr []item) (syntax.Expr, error) {
	if len(arr) < 2 || len(arr)%2 != 0 {
		return nil, fail("text-literal node has a malformed element count %d", len(arr))
	}
	var chunks []syntax.TextChunk
	i := 1
	for i < len(arr) {
		if arr[i].major != majorTStr {
			return nil, fail("text-literal chunk is not a string")
		}
		// Encode writes an empty raw string before every embedded
		// expression and after the last chunk; those carry no text.
		if arr[i].text != "" {
			chunks = append(chunks, syntax.TextChunk{Raw: arr[i].text})
		}
		i++
		if i >= len(arr) {
			break
		}
		if arr[i].null {
			i++
			continue
		}
		e, err := decodeItem(arr[i])
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, syntax.TextChunk{Expr: e})
		i++
	}
	return &syntax.TextLitExpr{Chunks: chunks}, nil
}

func decodeImport(arr []item) (syntax.Expr, error) {
	if len(arr) != 6 {
		return nil, fail("import node needs 6 elements, got %d", len(arr))
	}
	var imp syntax.Import
	if !arr[1].null {
		if len(arr[1].text) != 32 {
			return nil, fail("import hash is not 32 bytes")
		}
		var h syntax.SHA256
		copy(h[:], arr[1].text)
		imp.Hash = &h
	}
	mode, ok := smallInt(arr[2])
	if !ok {
		return nil, fail("import mode is not an integer")
	}
	imp.Mode = syntax.ImportMode(mode)
	kind, ok := smallInt(arr[3])
	if !ok {
		return nil, fail("import kind is not an integer")
	}
	imp.Location.Kind = syntax.ImportKind(kind)
	switch imp.Location.Kind {
	case syntax.LocalImport:
		prefix, ok := smallInt(arr[4])
		if !ok {
			return nil, fail("import prefix is not an integer")
		}
		imp.Location.Prefix = syntax.FilePrefix(prefix)
		if arr[5].major != majorArr {
			return nil, fail("import path is not an array")
		}
		path := make([]string, len(arr[5].arr))
		for i, p := range arr[5].arr {
			if p.major != majorTStr {
				return nil, fail("import path component is not a string")
			}
			path[i] = p.text
		}
		imp.Location.Path = path
	case syntax.RemoteImport:
		if arr[5].major != majorTStr {
			return nil, fail("import URL is not a string")
		}
		imp.Location.URL = arr[5].text
	case syntax.EnvImport:
		if arr[5].major != majorTStr {
			return nil, fail("import env name is not a string")
		}
		imp.Location.EnvName = arr[5].text
	}
	return &syntax.ImportExpr{Import: imp}, nil
}

func smallInt(it item) (int, bool) {
	switch it.major {
	case majorUint:
		return int(it.uint), true
	case majorNInt:
		return -int(it.uint) - 1, true
	default:
		return 0, false
	}
}

// decodeUnsignedNatural reads a Natural literal's payload. Only a plain
// CBOR unsigned integer is accepted: Natural is a uint64 in this module's
// data model (spec.md 1's Non-goals exclude arbitrary-precision numbers),
// so there is no bignum-tagged form for Encode to ever have produced.
func decodeUnsignedNatural(it item) (uint64, bool) {
	if it.major != majorUint {
		return 0, false
	}
	return it.uint, true
}

func decodeSignedInteger(it item) (int64, bool) {
	switch it.major {
	case majorUint:
		if it.uint > uint64(1<<63-1) {
			return 0, false
		}
		return int64(it.uint), true
	case majorNInt:
		n := new(big.Int).SetUint64(it.uint)
		n.Neg(n)
		n.Sub(n, big.NewInt(1))
		if !n.IsInt64() {
			return 0, false
		}
		return n.Int64(), true
	default:
		return 0, false
	}
}
