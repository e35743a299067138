package syntax

// Expr is implemented by every expression node in the surface syntax tree.
// The tree is produced by an external parser and is immutable from the
// point the core pipeline receives it; every node carries an optional
// source Pos used only for diagnostics.
type Expr interface {
	Pos() Pos
	exprNode()
}

func (*ConstExpr) exprNode()     {}
func (*VarExpr) exprNode()       {}
func (*LambdaExpr) exprNode()    {}
func (*PiExpr) exprNode()        {}
func (*LetExpr) exprNode()       {}
func (*AppExpr) exprNode()       {}
func (*IfExpr) exprNode()        {}
func (*BinOpExpr) exprNode()     {}
func (*BoolLitExpr) exprNode()   {}
func (*NaturalLitExpr) exprNode() {}
func (*IntegerLitExpr) exprNode() {}
func (*DoubleLitExpr) exprNode()  {}
func (*EmptyListExpr) exprNode()  {}
func (*ListLitExpr) exprNode()    {}
func (*SomeExpr) exprNode()       {}
func (*NoneExpr) exprNode()       {}
func (*RecordTypeExpr) exprNode() {}
func (*RecordLitExpr) exprNode()  {}
func (*UnionTypeExpr) exprNode()  {}
func (*TextLitExpr) exprNode()    {}
func (*FieldExpr) exprNode()      {}
func (*ProjectExpr) exprNode()    {}
func (*MergeExpr) exprNode()      {}
func (*AnnotExpr) exprNode()      {}
func (*AssertExpr) exprNode()     {}
func (*BuiltinExpr) exprNode()    {}
func (*ImportExpr) exprNode()     {}

// ConstExpr is one of the three universe constants Type, Kind, Sort.
type ConstExpr struct {
	Pos_  Pos
	Const Const
}

func (e *ConstExpr) Pos() Pos { return e.Pos_ }

// VarExpr is a De Bruijn-indexed variable occurrence.
type VarExpr struct {
	Pos_ Pos
	V    V
}

func (e *VarExpr) Pos() Pos { return e.Pos_ }

// BuiltinExpr names a reserved built-in constant or function.
type BuiltinExpr struct {
	Pos_    Pos
	Builtin Builtin
}

func (e *BuiltinExpr) Pos() Pos { return e.Pos_ }

// LambdaExpr is a term-level function: λ(Label : Type). Body.
type LambdaExpr struct {
	Pos_  Pos
	Label Label
	Type  Expr
	Body  Expr
}

func (e *LambdaExpr) Pos() Pos { return e.Pos_ }

// PiExpr is a function type: Π(Label : Type). Body. An anonymous, non
// dependent arrow A -> B is sugar for Π(_ : A). B.
type PiExpr struct {
	Pos_  Pos
	Label Label
	Type  Expr
	Body  Expr
}

func (e *PiExpr) Pos() Pos { return e.Pos_ }

// LetExpr is a single let-binding: let Label [: Annot] = Value in Body.
// A chain of `let`s as written in source is represented as nested LetExprs.
type LetExpr struct {
	Pos_   Pos
	Label  Label
	Annot  Expr // nil if the binding carries no type annotation
	Value  Expr
	Body   Expr
}

func (e *LetExpr) Pos() Pos { return e.Pos_ }

// AppExpr is function application Fn Arg.
type AppExpr struct {
	Pos_ Pos
	Fn   Expr
	Arg  Expr
}

func (e *AppExpr) Pos() Pos { return e.Pos_ }

// IfExpr is `if Cond then Then else Else`.
type IfExpr struct {
	Pos_            Pos
	Cond, Then, Else Expr
}

func (e *IfExpr) Pos() Pos { return e.Pos_ }

// BinOpExpr applies one of the thirteen binary operators.
type BinOpExpr struct {
	Pos_  Pos
	Op    Op
	L, R  Expr
}

func (e *BinOpExpr) Pos() Pos { return e.Pos_ }

// BoolLitExpr is a literal True or False.
type BoolLitExpr struct {
	Pos_  Pos
	Value bool
}

func (e *BoolLitExpr) Pos() Pos { return e.Pos_ }

// NaturalLitExpr is a literal natural number, represented as a fixed-width
// uint64; per this implementation's non-goals, Natural values beyond the
// 64-bit range are not supported in arithmetic (only in the binary codec's
// decode path, which may reject them - see internal/core/binary).
type NaturalLitExpr struct {
	Pos_  Pos
	Value uint64
}

func (e *NaturalLitExpr) Pos() Pos { return e.Pos_ }

// IntegerLitExpr is a literal signed integer, `+N` or `-N`.
type IntegerLitExpr struct {
	Pos_  Pos
	Value int64
}

func (e *IntegerLitExpr) Pos() Pos { return e.Pos_ }

// DoubleLitExpr is a literal IEEE-754 binary64 floating point number.
type DoubleLitExpr struct {
	Pos_  Pos
	Value float64
}

func (e *DoubleLitExpr) Pos() Pos { return e.Pos_ }

// EmptyListExpr is `[] : List ElemType`; the empty list must carry its
// element type since it cannot be inferred from elements.
type EmptyListExpr struct {
	Pos_     Pos
	ElemType Expr
}

func (e *EmptyListExpr) Pos() Pos { return e.Pos_ }

// ListLitExpr is a non-empty list literal `[a, b, ...]`.
type ListLitExpr struct {
	Pos_     Pos
	Elements []Expr
}

func (e *ListLitExpr) Pos() Pos { return e.Pos_ }

// SomeExpr wraps a present Optional value: `Some e`.
type SomeExpr struct {
	Pos_  Pos
	Value Expr
}

func (e *SomeExpr) Pos() Pos { return e.Pos_ }

// NoneExpr is the polymorphic absent-Optional constructor `None`, applied
// to an element type to produce a concrete `Optional T` value.
type NoneExpr struct {
	Pos_ Pos
}

func (e *NoneExpr) Pos() Pos { return e.Pos_ }

// RecordTypeExpr is `{ k1 : T1, k2 : T2, ... }` as a type.
type RecordTypeExpr struct {
	Pos_   Pos
	Fields *Fields[Expr]
}

func (e *RecordTypeExpr) Pos() Pos { return e.Pos_ }

// RecordLitExpr is `{ k1 = v1, k2 = v2, ... }` as a value.
type RecordLitExpr struct {
	Pos_   Pos
	Fields *Fields[Expr]
}

func (e *RecordLitExpr) Pos() Pos { return e.Pos_ }

// UnionTypeExpr is `< A : T1 | B | C : T3 >`; an alternative with a nil
// Expr is a bare constructor with no payload.
type UnionTypeExpr struct {
	Pos_          Pos
	Alternatives  *Fields[Expr] // value is nil for a payload-less alternative
}

func (e *UnionTypeExpr) Pos() Pos { return e.Pos_ }

// TextChunk is one piece of a text literal: either a raw string run, or an
// interpolated sub-expression (exactly one of the two is set).
type TextChunk struct {
	Raw  string
	Expr Expr // nil for a raw chunk
}

// TextLitExpr is a (possibly interpolated) text literal.
type TextLitExpr struct {
	Pos_   Pos
	Chunks []TextChunk
}

func (e *TextLitExpr) Pos() Pos { return e.Pos_ }

// FieldExpr is record field selection `Record.Label`.
type FieldExpr struct {
	Pos_   Pos
	Record Expr
	Label  Label
}

func (e *FieldExpr) Pos() Pos { return e.Pos_ }

// ProjectExpr is projection by an explicit label set `Record.{ a, b, c }`.
// Projection by a record-type expression is out of scope (see Non-goals).
type ProjectExpr struct {
	Pos_   Pos
	Record Expr
	Labels []Label
}

func (e *ProjectExpr) Pos() Pos { return e.Pos_ }

// MergeExpr is `merge Handlers Union [: Annot]`.
type MergeExpr struct {
	Pos_     Pos
	Handlers Expr
	Union    Expr
	Annot    Expr // nil if the merge carries no result-type annotation
}

func (e *MergeExpr) Pos() Pos { return e.Pos_ }

// AnnotExpr is a type ascription `Value : Type`.
type AnnotExpr struct {
	Pos_  Pos
	Value Expr
	Type  Expr
}

func (e *AnnotExpr) Pos() Pos { return e.Pos_ }

// AssertExpr is `assert : T ≡ U`; Annot is the equivalence BinOpExpr that
// must typecheck and whose two sides must be judgmentally equal.
type AssertExpr struct {
	Pos_  Pos
	Annot Expr
}

func (e *AssertExpr) Pos() Pos { return e.Pos_ }

// ImportExpr is a reference to an external expression; Resolve replaces
// every ImportExpr node (and every ImportAlt BinOpExpr) before typechecking
// ever sees the tree.
type ImportExpr struct {
	Pos_   Pos
	Import Import
}

func (e *ImportExpr) Pos() Pos { return e.Pos_ }
