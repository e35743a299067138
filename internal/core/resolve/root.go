// Package resolve implements import resolution: replacing every
// syntax.ImportExpr (and the `?` fallback operator) in a parsed tree with
// the fully resolved, typechecked and normalized expression it denotes,
// detecting cycles along the way.
package resolve

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	derrors "dhall-lang.org/go/internal/errors"
	"dhall-lang.org/go/syntax"
)

// Root is the external-fetch boundary an import resolves through: given a
// location, produce the bytes it names. Resolve never touches the
// filesystem, network, or environment directly - every external read goes
// through a Root, the same seam cue's loader puts between its AST and the
// filesystem via its own fileSystem abstraction.
type Root interface {
	Resolve(loc syntax.ImportLocation) (io.Reader, error)
}

// LocalDirRoot resolves Local imports (Absolute, Here, Parent and Home
// prefixes) relative to Dir, the directory the entry expression was loaded
// from. Remote and Env imports are out of scope (see spec's transport
// Non-goal) and report ImportUnexpected.
type LocalDirRoot struct {
	Dir string
}

// Resolve implements Root.
func (r LocalDirRoot) Resolve(loc syntax.ImportLocation) (io.Reader, error) {
	if loc.Kind != syntax.LocalImport {
		return nil, derrors.Newf(derrors.ImportUnexpected, syntax.Pos{},
			"%s imports are not supported", locationKindName(loc.Kind))
	}
	path, err := r.localPath(loc)
	if err != nil {
		return nil, derrors.Newf(derrors.ImportIO, syntax.Pos{}, "%s", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, derrors.Newf(derrors.ImportIO, syntax.Pos{}, "%s", err)
	}
	return f, nil
}

func (r LocalDirRoot) localPath(loc syntax.ImportLocation) (string, error) {
	rel := filepath.Join(loc.Path...)
	switch loc.Prefix {
	case syntax.Absolute:
		return filepath.Join(string(filepath.Separator), rel), nil
	case syntax.Here:
		return filepath.Join(r.Dir, rel), nil
	case syntax.Parent:
		return filepath.Join(filepath.Dir(r.Dir), rel), nil
	case syntax.Home:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rel), nil
	default:
		return "", fmt.Errorf("unknown file prefix %d", loc.Prefix)
	}
}

// dirOf reports the directory a Local import's own path should anchor
// further relative (Here/Parent) imports from, mirroring how the original
// implementation's ImportRoot follows the directory of whichever file is
// currently being resolved rather than staying pinned to the entry point.
func dirOf(root Root, loc syntax.ImportLocation) Root {
	ldr, ok := root.(LocalDirRoot)
	if !ok || loc.Kind != syntax.LocalImport {
		return root
	}
	path, err := ldr.localPath(loc)
	if err != nil {
		return root
	}
	return LocalDirRoot{Dir: filepath.Dir(path)}
}

func locationKindName(k syntax.ImportKind) string {
	switch k {
	case syntax.RemoteImport:
		return "remote"
	case syntax.EnvImport:
		return "environment"
	case syntax.MissingImport:
		return "missing"
	default:
		return "unknown"
	}
}

// importDisplayName renders an Import for cycle-error messages; it does
// not need to be parseable, only readable.
func importDisplayName(imp syntax.Import) string {
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
