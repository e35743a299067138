package binary

import (
	"fmt"

	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

// Discriminator tags for the leading array element of a compound node,
// following spec.md 6's "arrays tagged by leading small-integer
// discriminators". No byte-for-byte reference encoding exists anywhere in
// the retrieval corpus (see DESIGN.md), so this table is this module's own
// self-consistent convention rather than a transcription of an external
// standard; what matters, per spec.md 8's testable property, is that
// Decode(Encode(e)) == e up to alpha, which this package's tests exercise
// directly.
const (
	tagApp      = 0
	tagLambda   = 1
	tagPi       = 2
	tagOp       = 3
	tagList     = 4
	tagSome     = 5
	tagMerge    = 6
	tagRecordT  = 7
	tagRecordV  = 8
	tagField    = 9
	tagProject  = 10
	tagUnionT   = 11
	tagImport   = 24
	tagIf       = 14
	tagNatural  = 15
	tagInteger  = 16
	tagText     = 18
	tagAssert   = 19
	tagLet      = 25
	tagAnnot    = 26
)

// Encode renders e as the module's canonical binary form. Every Expr shape
// spec.md's data model lists has a case below; a shape with no case here
// would be a bug in this package, not a legitimate encode failure, so the
// default branch panics rather than returning an EncodeFailure.
func Encode(e syntax.Expr) ([]byte, error) {
	w := &writer{}
	if err := encodeExpr(w, e); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

func encodeExpr(w *writer, e syntax.Expr) error {
	switch e := e.(type) {
	case *syntax.ConstExpr:
		w.writeTextString(e.Const.String())
		return nil

	case *syntax.BuiltinExpr:
		w.writeTextString(string(e.Builtin))
		return nil

	case nil:
		return derrors.Newf(derrors.EncodeFailure, syntax.NoPos, "cannot encode a nil expression")

	case *syntax.VarExpr:
		if e.V.Label == "_" {
			w.writeInt(int64(e.V.Index))
			return nil
		}
		w.writeArrLen(2)
		w.writeTextString(string(e.V.Label))
		w.writeInt(int64(e.V.Index))
		return nil

	case *syntax.LambdaExpr:
		return encodeBinder(w, tagLambda, e.Label, e.Type, e.Body)

	case *syntax.PiExpr:
		return encodeBinder(w, tagPi, e.Label, e.Type, e.Body)

	case *syntax.LetExpr:
		// A let-chain desugars to nested LetExprs; encode it the same way
		// Dhall's standard binary form does, as one flattened array of
		// (label, annot-or-null, value) triples terminated by the body -
		// this keeps an arbitrarily long `let` chain from nesting arrays
		// as deep as it nests source syntax.
		var lets []*syntax.LetExpr
		var body syntax.Expr = e
		for {
			le, ok := body.(*syntax.LetExpr)
			if !ok {
				break
			}
			lets = append(lets, le)
			body = le.Body
		}
		w.writeArrLen(1 + 3*len(lets) + 1)
		w.writeUint(tagLet)
		for _, le := range lets {
			w.writeTextString(string(le.Label))
			if le.Annot == nil {
				w.writeNull()
			} else if err := encodeExpr(w, le.Annot); err != nil {
				return err
			}
			if err := encodeExpr(w, le.Value); err != nil {
				return err
			}
		}
		return encodeExpr(w, body)

	case *syntax.AppExpr:
		return encodeApp(w, e)

	case *syntax.IfExpr:
		w.writeArrLen(4)
		w.writeUint(tagIf)
		for _, sub := range []syntax.Expr{e.Cond, e.Then, e.Else} {
			if err := encodeExpr(w, sub); err != nil {
				return err
			}
		}
		return nil

	case *syntax.BinOpExpr:
		w.writeArrLen(4)
		w.writeUint(tagOp)
		w.writeUint(uint64(e.Op))
		if err := encodeExpr(w, e.L); err != nil {
			return err
		}
		return encodeExpr(w, e.R)

	case *syntax.BoolLitExpr:
		w.writeBool(e.Value)
		return nil

	case *syntax.NaturalLitExpr:
		w.writeArrLen(2)
		w.writeUint(tagNatural)
		w.writeUint(e.Value)
		return nil

	case *syntax.IntegerLitExpr:
		w.writeArrLen(2)
		w.writeUint(tagInteger)
		w.writeInt(e.Value)
		return nil

	case *syntax.DoubleLitExpr:
		w.writeFloat64(e.Value)
		return nil

	case *syntax.EmptyListExpr:
		w.writeArrLen(2)
		w.writeUint(tagList)
		return encodeExpr(w, e.ElemType)

	case *syntax.ListLitExpr:
		w.writeArrLen(2 + len(e.Elements))
		w.writeUint(tagList)
		w.writeNull()
		for _, el := range e.Elements {
			if err := encodeExpr(w, el); err != nil {
				return err
			}
		}
		return nil

	case *syntax.SomeExpr:
		w.writeArrLen(2)
		w.writeUint(tagSome)
		return encodeExpr(w, e.Value)

	case *syntax.NoneExpr:
		w.writeTextString(string(syntax.OptionalNone))
		return nil

	case *syntax.RecordTypeExpr:
		return encodeFieldMap(w, tagRecordT, e.Fields, false)

	case *syntax.RecordLitExpr:
		return encodeFieldMap(w, tagRecordV, e.Fields, false)

	case *syntax.UnionTypeExpr:
		return encodeFieldMap(w, tagUnionT, e.Alternatives, true)

	case *syntax.TextLitExpr:
		w.writeArrLen(1 + 2*len(e.Chunks)+1)
		w.writeUint(tagText)
		for _, c := range e.Chunks {
			if c.Expr == nil {
				w.writeTextString(c.Raw)
				w.writeNull()
				continue
			}
			w.writeTextString("")
			if err := encodeExpr(w, c.Expr); err != nil {
				return err
			}
		}
		w.writeTextString("")
		return nil

	case *syntax.FieldExpr:
		w.writeArrLen(3)
		w.writeUint(tagField)
		if err := encodeExpr(w, e.Record); err != nil {
			return err
		}
		w.writeTextString(string(e.Label))
		return nil

	case *syntax.ProjectExpr:
		w.writeArrLen(2 + len(e.Labels))
		w.writeUint(tagProject)
		if err := encodeExpr(w, e.Record); err != nil {
			return err
		}
		for _, l := range e.Labels {
			w.writeTextString(string(l))
		}
		return nil

	case *syntax.MergeExpr:
		n := 3
		if e.Annot != nil {
			n = 4
		}
		w.writeArrLen(n)
		w.writeUint(tagMerge)
		if err := encodeExpr(w, e.Handlers); err != nil {
			return err
		}
		if err := encodeExpr(w, e.Union); err != nil {
			return err
		}
		if e.Annot != nil {
			return encodeExpr(w, e.Annot)
		}
		return nil

	case *syntax.AnnotExpr:
		w.writeArrLen(3)
		w.writeUint(tagAnnot)
		if err := encodeExpr(w, e.Value); err != nil {
			return err
		}
		return encodeExpr(w, e.Type)

	case *syntax.AssertExpr:
		w.writeArrLen(2)
		w.writeUint(tagAssert)
		return encodeExpr(w, e.Annot)

	case *syntax.ImportExpr:
		return encodeImport(w, e)

	default:
		panic(fmt.Sprintf("binary: Encode: unhandled expression type %T", e))
	}
}

func encodeBinder(w *writer, tag int, label syntax.Label, typ, body syntax.Expr) error {
	if label == "_" {
		w.writeArrLen(3)
		w.writeUint(uint64(tag))
	} else {
		w.writeArrLen(4)
		w.writeUint(uint64(tag))
		w.writeTextString(string(label))
	}
	if err := encodeExpr(w, typ); err != nil {
		return err
	}
	return encodeExpr(w, body)
}

// encodeApp flattens a left-nested chain of AppExprs (f a b c, stored as
// ((f a) b) c) into one array [0, f, a, b, c], matching how the decode
// side rebuilds the same chain - see decodeApp.
func encodeApp(w *writer, e *syntax.AppExpr) error {
	var args []syntax.Expr
	var fn syntax.Expr = e
	for {
		app, ok := fn.(*syntax.AppExpr)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		fn = app.Fn
	}
	w.writeArrLen(2 + len(args))
	w.writeUint(tagApp)
	if err := encodeExpr(w, fn); err != nil {
		return err
	}
	for i := len(args) - 1; i >= 0; i-- {
		if err := encodeExpr(w, args[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeFieldMap(w *writer, tag int, fields *syntax.Fields[syntax.Expr], allowNil bool) error {
	keys := fields.SortedKeys()
	w.writeArrLen(2)
	w.writeUint(uint64(tag))
	w.writeMapLen(len(keys))
	for _, k := range keys {
		w.writeTextString(string(k))
		v, _ := fields.Get(k)
		if v == nil {
			if !allowNil {
				return derrors.Newf(derrors.EncodeFailure, syntax.NoPos, "field %q has no value", k)
			}
			w.writeNull()
			continue
		}
		if err := encodeExpr(w, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeImport(w *writer, e *syntax.ImportExpr) error {
	imp := e.Import
	w.writeArrLen(6)
	w.writeUint(tagImport)
	if imp.Hash == nil {
		w.writeNull()
	} else {
		w.writeHead(majorBStr, uint64(len(imp.Hash)))
		w.buf.Write(imp.Hash[:])
	}
	w.writeUint(uint64(imp.Mode))
	w.writeUint(uint64(imp.Location.Kind))
	switch imp.Location.Kind {
	case syntax.LocalImport:
		w.writeUint(uint64(imp.Location.Prefix))
		w.writeArrLen(len(imp.Location.Path))
		for _, p := range imp.Location.Path {
			w.writeTextString(p)
		}
	case syntax.RemoteImport:
		w.writeUint(0)
		w.writeTextString(imp.Location.URL)
	case syntax.EnvImport:
		w.writeUint(0)
		w.writeTextString(imp.Location.EnvName)
	default:
		w.writeUint(0)
		w.writeNull()
	}
	return nil
}
