// Package errors defines the error taxonomy shared by every stage of the
// core pipeline: resolution, typechecking and binary encoding. Every error
// the core returns implements the Error interface below, which adds a
// source position and an error code to the plain error interface; no error
// is ever recovered internally, all are reported upward.
package errors

import (
	"fmt"
	"strings"

	"dhall-lang.org/go/syntax"
)

// Code classifies an error for callers that want to branch on error kind
// without string-matching messages.
type Code int8

const (
	_ Code = iota

	// Import errors.
	ImportCycle
	ImportRecursive
	ImportUnexpected
	ImportIO

	// Type errors.
	TypeMismatch
	TypeNotAFunction
	TypeUnbound
	TypeInvalidInput
	TypeInvalidOutput
	TypeInvalidPredicate
	TypeHandlerMissing
	TypeHandlerExtra
	TypeAssertMismatch
	TypeDuplicateField
	TypeInvalidField

	// Codec errors.
	EncodeFailure
	DecodeFailure
)

func (c Code) String() string {
	switch c {
	case ImportCycle:
		return "import cycle"
	case ImportRecursive:
		return "import recursive"
	case ImportUnexpected:
		return "unexpected import"
	case ImportIO:
		return "import io"
	case TypeMismatch:
		return "type mismatch"
	case TypeNotAFunction:
		return "not a function"
	case TypeUnbound:
		return "unbound variable"
	case TypeInvalidInput:
		return "invalid function input type"
	case TypeInvalidOutput:
		return "invalid function output type"
	case TypeInvalidPredicate:
		return "invalid if predicate"
	case TypeHandlerMissing:
		return "missing merge handler"
	case TypeHandlerExtra:
		return "unused merge handler"
	case TypeAssertMismatch:
		return "assertion failed"
	case TypeDuplicateField:
		return "duplicate field"
	case TypeInvalidField:
		return "invalid field"
	case EncodeFailure:
		return "encode error"
	case DecodeFailure:
		return "decode error"
	default:
		return "error"
	}
}

// Error is the interface implemented by every error the core reports.
type Error interface {
	error
	Code() Code
	Pos() syntax.Pos
}

type baseErr struct {
	code Code
	pos  syntax.Pos
	msg  string
}

func (e *baseErr) Error() string {
	if e.pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.pos, e.code, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *baseErr) Code() Code      { return e.code }
func (e *baseErr) Pos() syntax.Pos { return e.pos }

// Newf builds an Error of the given code at pos with a formatted message.
func Newf(code Code, pos syntax.Pos, format string, args ...any) Error {
	return &baseErr{code: code, pos: pos, msg: fmt.Sprintf(format, args...)}
}

// ImportError wraps an error encountered while resolving an import. Cycle
// errors additionally carry the import stack at the point of detection, so
// that callers can render the full cycle rather than just its closing edge.
type ImportError struct {
	*baseErr
	Stack []syntax.Import
}

// NewImportCycle reports a cycle, naming the stack of imports on the
// recursion path (outermost first) that led back to imp.
func NewImportCycle(pos syntax.Pos, stack []syntax.Import, imp syntax.Import) *ImportError {
	names := make([]string, 0, len(stack)+1)
	for _, s := range stack {
		names = append(names, importName(s))
	}
	names = append(names, importName(imp))
	return &ImportError{
		baseErr: &baseErr{
			code: ImportCycle,
			pos:  pos,
			msg:  "cycle: " + strings.Join(names, " -> "),
		},
		Stack: append(append([]syntax.Import{}, stack...), imp),
	}
}

func importName(imp syntax.Import) string {
	switch imp.Location.Kind {
	case syntax.LocalImport:
		return strings.Join(imp.Location.Path, "/")
	case syntax.RemoteImport:
		return imp.Location.URL
	case syntax.EnvImport:
		return "env:" + imp.Location.EnvName
	default:
		return "missing"
	}
}

// TypeError is the error type returned by the typechecker.
type TypeError struct {
	*baseErr
}

// NewTypeError builds a TypeError of the given code.
func NewTypeError(code Code, pos syntax.Pos, format string, args ...any) *TypeError {
	return &TypeError{baseErr: &baseErr{code: code, pos: pos, msg: fmt.Sprintf(format, args...)}}
}
