package typecheck

import (
	"fmt"
	"strconv"
	"strings"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/syntax"
)

// describe renders a type Value as a short, human-readable string for
// error messages, by quoting it back to a syntax.Expr and printing that
// with a compact, non-reparseable grammar. It is diagnostic-quality
// only - a real pretty-printer producing valid Dhall source is out of
// this package's scope.
func describe(v *adt.Value) string {
	return describeExpr(normalize.Quote(v))
}

// Describe is describe's exported form, for callers outside this package
// (the CLI's typecheck/normalize commands) that want the same
// diagnostic-quality rendering this package's own error messages use.
func Describe(v *adt.Value) string {
	return describe(v)
}

// DescribeExpr is describeExpr's exported form, for a caller (the CLI's
// decode command) that already has a syntax.Expr - an unresolved import
// tree, say - rather than an evaluated Value to quote first.
func DescribeExpr(e syntax.Expr) string {
	return describeExpr(e)
}

func describeExpr(e syntax.Expr) string {
	switch e := e.(type) {
	case *syntax.ConstExpr:
		return e.Const.String()
	case *syntax.VarExpr:
		if e.V.Index == 0 {
			return string(e.V.Label)
		}
		return fmt.Sprintf("%s@%d", e.V.Label, e.V.Index)
	case *syntax.BuiltinExpr:
		return string(e.Builtin)
	case *syntax.LambdaExpr:
		return fmt.Sprintf("λ(%s : %s) -> %s", e.Label, describeExpr(e.Type), describeExpr(e.Body))
	case *syntax.PiExpr:
		if e.Label == "_" {
			return fmt.Sprintf("%s -> %s", describeExpr(e.Type), describeExpr(e.Body))
		}
		return fmt.Sprintf("∀(%s : %s) -> %s", e.Label, describeExpr(e.Type), describeExpr(e.Body))
	case *syntax.AppExpr:
		return fmt.Sprintf("%s %s", describeExpr(e.Fn), describeExpr(e.Arg))
	case *syntax.IfExpr:
		return fmt.Sprintf("if %s then %s else %s", describeExpr(e.Cond), describeExpr(e.Then), describeExpr(e.Else))
	case *syntax.BinOpExpr:
		return fmt.Sprintf("%s %s %s", describeExpr(e.L), e.Op, describeExpr(e.R))
	case *syntax.BoolLitExpr:
		if e.Value {
			return "True"
		}
		return "False"
	case *syntax.NaturalLitExpr:
		return fmt.Sprintf("%d", e.Value)
	case *syntax.IntegerLitExpr:
		return fmt.Sprintf("%+d", e.Value)
	case *syntax.DoubleLitExpr:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *syntax.EmptyListExpr:
		return fmt.Sprintf("[] : List %s", describeExpr(e.ElemType))
	case *syntax.ListLitExpr:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = describeExpr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *syntax.SomeExpr:
		return "Some " + describeExpr(e.Value)
	case *syntax.NoneExpr:
		return "None"
	case *syntax.RecordTypeExpr:
		return "{ " + describeFields(e.Fields, ":") + " }"
	case *syntax.RecordLitExpr:
		return "{ " + describeFields(e.Fields, "=") + " }"
	case *syntax.UnionTypeExpr:
		keys := e.Alternatives.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			v, _ := e.Alternatives.Get(k)
			if v == nil {
				parts[i] = string(k)
				continue
			}
			parts[i] = fmt.Sprintf("%s : %s", k, describeExpr(v))
		}
		return "< " + strings.Join(parts, " | ") + " >"
	case *syntax.TextLitExpr:
		var b strings.Builder
		b.WriteByte('"')
		for _, c := range e.Chunks {
			if c.Expr == nil {
				b.WriteString(c.Raw)
				continue
			}
			fmt.Fprintf(&b, "${%s}", describeExpr(c.Expr))
		}
		b.WriteByte('"')
		return b.String()
	case *syntax.FieldExpr:
		return fmt.Sprintf("%s.%s", describeExpr(e.Record), e.Label)
	case *syntax.ProjectExpr:
		labels := make([]string, len(e.Labels))
		for i, l := range e.Labels {
			labels[i] = string(l)
		}
		return fmt.Sprintf("%s.{ %s }", describeExpr(e.Record), strings.Join(labels, ", "))
	case *syntax.MergeExpr:
		if e.Annot != nil {
			return fmt.Sprintf("merge %s %s : %s", describeExpr(e.Handlers), describeExpr(e.Union), describeExpr(e.Annot))
		}
		return fmt.Sprintf("merge %s %s", describeExpr(e.Handlers), describeExpr(e.Union))
	case *syntax.AnnotExpr:
		return fmt.Sprintf("%s : %s", describeExpr(e.Value), describeExpr(e.Type))
	case *syntax.AssertExpr:
		return "assert : " + describeExpr(e.Annot)
	default:
		return "<?>"
	}
}

func describeFields(fields *syntax.Fields[syntax.Expr], sep string) string {
	keys := fields.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := fields.Get(k)
		parts[i] = fmt.Sprintf("%s %s %s", k, sep, describeExpr(v))
	}
	return strings.Join(parts, ", ")
}
