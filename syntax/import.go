package syntax

// ImportMode selects how an imported file's contents are interpreted.
type ImportMode int8

const (
	// Code parses the imported bytes as Dhall source (or binary) and
	// recursively resolves, typechecks and normalizes them.
	Code ImportMode = iota
	// RawText imports the bytes verbatim as a Text literal.
	RawText
	// Location imports a description of where the import came from,
	// without reading it, as a `< Local | Remote | Environment | Missing >`
	// union value.
	Location
)

// FilePrefix anchors a Local import path.
type FilePrefix int8

const (
	Absolute FilePrefix = iota // /foo/bar
	Here                       // ./foo/bar
	Parent                     // ../foo/bar
	Home                       // ~/foo/bar
)

// ImportKind discriminates the location variants of an Import.
type ImportKind int8

const (
	LocalImport ImportKind = iota
	RemoteImport
	EnvImport
	MissingImport
)

// ImportLocation names where an import's bytes come from. Exactly one of
// the fields is meaningful, selected by Kind.
type ImportLocation struct {
	Kind ImportKind

	// LocalImport
	Prefix FilePrefix
	Path   []string // path components, "here"-relative or otherwise

	// RemoteImport
	URL string

	// EnvImport
	EnvName string
}

// SHA256 is a 32-byte digest used to pin an import's expected content hash.
type SHA256 [32]byte

// Import is a node identifying an external expression to be substituted in
// by the resolver. It carries no payload itself; Resolve replaces each
// Import node with the resolved, normalized expression it denotes.
type Import struct {
	Mode     ImportMode
	Location ImportLocation
	Hash     *SHA256
}

// Equal reports whether two imports denote the same resolution, which is
// the key used by the resolver's cycle stack and cache.
func (i Import) Equal(o Import) bool {
	if i.Mode != o.Mode || i.Location.Kind != o.Location.Kind {
		return false
	}
	switch i.Location.Kind {
	case LocalImport:
		if i.Location.Prefix != o.Location.Prefix || len(i.Location.Path) != len(o.Location.Path) {
			return false
		}
		for k := range i.Location.Path {
			if i.Location.Path[k] != o.Location.Path[k] {
				return false
			}
		}
		return true
	case RemoteImport:
		return i.Location.URL == o.Location.URL
	case EnvImport:
		return i.Location.EnvName == o.Location.EnvName
	case MissingImport:
		return true
	default:
		return false
	}
}
