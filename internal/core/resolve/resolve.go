package resolve

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dhall-lang.org/go/internal/core/adt"
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/internal/core/typecheck"
	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

// ParseFunc parses a byte slice (already read through a Root) into an
// expression tree, the same entry point a top-level ParseAndResolve call
// receives its own source through. Resolution is parser-agnostic: it only
// needs this one callback to turn an imported file's bytes into something
// it can keep resolving.
type ParseFunc func(src []byte, filename string) (syntax.Expr, error)

// resolver carries the state one top-level Resolve call threads through
// its recursion: the cache of already-resolved imports (keyed by
// importKey, since Import itself embeds a []string path and so is not a
// valid map key) and the stack of imports currently being resolved, used
// for cycle detection via Import.Equal.
type resolver struct {
	ctx   context.Context
	root  Root
	parse ParseFunc
	cache map[string]*adt.Value
	stack []syntax.Import
}

// Resolve replaces every ImportExpr (and Import-Alt fallback) under e with
// its resolved, typechecked, normalized contents, reading external bytes
// through root and parsing them with parse. It reports the first
// ImportError it encounters, except where a `?` fallback catches one.
func Resolve(ctx context.Context, root Root, parse ParseFunc, e syntax.Expr) (syntax.Expr, error) {
	r := &resolver{ctx: ctx, root: root, parse: parse, cache: map[string]*adt.Value{}}
	return r.resolveExpr(root, e)
}

// importKey renders an Import as a string uniquely identifying its
// resolution per Import.Equal's own fields, so it can serve as a map key
// (Import itself isn't one: ImportLocation.Path is a slice).
func importKey(imp syntax.Import) string {
	switch imp.Location.Kind {
	case syntax.LocalImport:
		return fmt.Sprintf("%d:local:%d:%s", imp.Mode, imp.Location.Prefix, strings.Join(imp.Location.Path, "/"))
	case syntax.RemoteImport:
		return fmt.Sprintf("%d:remote:%s", imp.Mode, imp.Location.URL)
	case syntax.EnvImport:
		return fmt.Sprintf("%d:env:%s", imp.Mode, imp.Location.EnvName)
	default:
		return fmt.Sprintf("%d:missing", imp.Mode)
	}
}

func (r *resolver) resolveImport(root Root, imp syntax.Import) (*adt.Value, error) {
	for _, s := range r.stack {
		if s.Equal(imp) {
			return nil, derrors.NewImportCycle(syntax.Pos{}, r.stack, imp)
		}
	}
	key := importKey(imp)
	if v, ok := r.cache[key]; ok {
		return v, nil
	}
	if err := r.ctx.Err(); err != nil {
		return nil, derrors.Newf(derrors.ImportIO, syntax.Pos{}, "%s", err)
	}

	if imp.Mode == syntax.Location {
		// A Location import only describes where it points; its bytes are
		// never fetched.
		return locationValue(imp.Location), nil
	}

	rc, err := root.Resolve(imp.Location)
	if err != nil {
		// A Root's own classified error (LocalDirRoot's ImportIO or
		// ImportUnexpected) passes through; a bare one is wrapped.
		if _, ok := err.(derrors.Error); ok {
			return nil, err
		}
		return nil, derrors.Newf(derrors.ImportIO, syntax.Pos{}, "reading %s: %s", importDisplayName(imp), err)
	}
	data, err := io.ReadAll(rc)
	if c, ok := rc.(io.Closer); ok {
		c.Close()
	}
	if err != nil {
		return nil, derrors.Newf(derrors.ImportIO, syntax.Pos{}, "reading %s: %s", importDisplayName(imp), err)
	}

	v, err := r.loadImport(root, imp, data)
	if err != nil {
		// A failure already classified by a deeper stage - a cycle further
		// down the chain, a type error, a parse error reported as one of
		// our own codes - keeps its own code and position; only a plain,
		// unclassified error (e.g. a parser returning a bare error) gets
		// wrapped here as this import's own IO failure.
		if _, ok := err.(derrors.Error); ok {
			return nil, err
		}
		return nil, derrors.Newf(derrors.ImportIO, syntax.Pos{},
			"resolving %s: %s", importDisplayName(imp), err)
	}
	r.cache[key] = v
	return v, nil
}

// loadImport turns an imported file's bytes into a value per its mode:
// Code parses and fully resolves/typechecks/normalizes them (pushing imp
// onto the cycle stack for the duration), RawText wraps them as a Text
// literal, Location produces the `< Local | Remote | Environment | Missing
// >` description without reading the mode any further.
func (r *resolver) loadImport(root Root, imp syntax.Import, data []byte) (*adt.Value, error) {
	switch imp.Mode {
	case syntax.RawText:
		return adt.NewWHNF(adt.TextLitF{Chunks: []adt.TextPiece{{Raw: string(data)}}}, func() *adt.Value {
			return adt.NewNF(adt.BuiltinF{Builtin: syntax.TextBuiltin}, nil)
		}), nil

	case syntax.Location:
		return locationValue(imp.Location), nil

	default: // syntax.Code
		parsed, err := r.parse(data, importDisplayName(imp))
		if err != nil {
			return nil, err
		}
		childRoot := dirOf(root, imp.Location)
		r.stack = append(r.stack, imp)
		resolved, err := r.resolveExpr(childRoot, parsed)
		r.stack = r.stack[:len(r.stack)-1]
		if err != nil {
			return nil, err
		}
		if _, err := typecheck.Infer(nil, resolved); err != nil {
			return nil, err
		}
		return normalize.FullNormalize(normalize.Eval(nil, resolved)), nil
	}
}

// locationValue builds the `< Local | Remote | Environment | Missing >`
// alternative an import-by-Location mode evaluates to; each alternative's
// payload mirrors the textual rendering dhall-lang's standard prelude
// expects (the path joined by "/", the URL, or the variable name).
func locationValue(loc syntax.ImportLocation) *adt.Value {
	textT := func() *adt.Value { return adt.NewNF(adt.BuiltinF{Builtin: syntax.TextBuiltin}, nil) }
	unionType := func() *adt.Value {
		fields, _ := syntax.NewFields([]syntax.LabelValue[*adt.Value]{
			{Label: "Local", Value: adt.NewNF(adt.BuiltinF{Builtin: syntax.TextBuiltin}, nil)},
			{Label: "Remote", Value: adt.NewNF(adt.BuiltinF{Builtin: syntax.TextBuiltin}, nil)},
			{Label: "Environment", Value: adt.NewNF(adt.BuiltinF{Builtin: syntax.TextBuiltin}, nil)},
			{Label: "Missing", Value: nil},
		})
		return adt.NewNF(adt.UnionTypeF{Alternatives: fields}, nil)
	}
	text := func(s string) *adt.Value {
		return adt.NewWHNF(adt.TextLitF{Chunks: []adt.TextPiece{{Raw: s}}}, textT)
	}

	switch loc.Kind {
	case syntax.LocalImport:
		return adt.NewWHNF(adt.UnionValF{Type: unionType(), Alt: "Local", Payload: text(importDisplayNameFromPath(loc.Path))}, unionType)
	case syntax.RemoteImport:
		return adt.NewWHNF(adt.UnionValF{Type: unionType(), Alt: "Remote", Payload: text(loc.URL)}, unionType)
	case syntax.EnvImport:
		return adt.NewWHNF(adt.UnionValF{Type: unionType(), Alt: "Environment", Payload: text(loc.EnvName)}, unionType)
	default:
		return adt.NewWHNF(adt.UnionValF{Type: unionType(), Alt: "Missing"}, unionType)
	}
}

func importDisplayNameFromPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}
