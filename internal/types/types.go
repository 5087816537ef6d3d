// Package types defines the core data model shared across CodeCortX-MCP:
// symbols, references, locations and file metadata produced by the
// extractor and consumed by the store, the ranking index and the query
// surface.
package types

import "fmt"

// FileID identifies an indexed file for the lifetime of a process. IDs are
// assigned sequentially as files are first seen and are never reused, even
// after a file is removed from the index.
type FileID uint32

// SymbolID identifies a symbol for the lifetime of a process. It is derived
// from a stable hash of (path, kind, start byte, name) so that re-indexing
// an unchanged file produces the same ID across runs, regardless of the
// order in which files were allocated a FileID.
type SymbolID uint64

// Kind enumerates the syntactic categories a symbol can belong to. The set
// is intentionally coarse: language-specific concepts (e.g. Rust traits,
// TypeScript interfaces) are folded into the closest cross-language bucket
// so that callers can reason about code uniformly.
type Kind uint8

const (
	KindOther Kind = iota
	KindFunction
	KindMethod
	KindClass
	KindStruct
	KindEnum
	KindInterface
	KindTypeAlias
	KindConstant
	KindStatic
	KindVariable
	KindModule
	KindImport
	KindProperty
	KindField
	KindConstructor
	KindMacro
)

var kindNames = map[Kind]string{
	KindOther:       "other",
	KindFunction:    "function",
	KindMethod:      "method",
	KindClass:       "class",
	KindStruct:      "struct",
	KindEnum:        "enum",
	KindInterface:   "interface",
	KindTypeAlias:   "type_alias",
	KindConstant:    "constant",
	KindStatic:      "static",
	KindVariable:    "variable",
	KindModule:      "module",
	KindImport:      "import",
	KindProperty:    "property",
	KindField:       "field",
	KindConstructor: "constructor",
	KindMacro:       "macro",
}

// String returns the lower_snake_case wire form of the kind, used in MCP
// tool responses and cache serialization.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "other"
}

// ParseKind parses the wire form produced by String back into a Kind.
// Unknown values decode to KindOther rather than erroring, so that a cache
// written by a newer binary degrades gracefully when read by an older one.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindOther
}

// Visibility records whether a symbol is part of a package's public
// surface. Languages without an explicit visibility modifier (plain
// JavaScript, Python) default to VisibilityPublic, except for names with
// a leading underscore.
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
)

func (v Visibility) String() string {
	if v == VisibilityPrivate {
		return "private"
	}
	return "public"
}

// Location pins a span of source text to a file and a 1-based line/column
// range. Columns are byte offsets within the line, matching tree-sitter's
// point convention. StartByte is the definition's byte offset into the
// file, the input to the symbol id hash (see store.symbolID).
type Location struct {
	FileID    FileID
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	StartByte uint32
}

// Symbol is a single definition discovered by the extractor: a function,
// type, constant or similar named entity.
type Symbol struct {
	ID         SymbolID
	Name       string
	Kind       Kind
	Visibility Visibility
	Location   Location
	Namespace  string // dotted path of enclosing modules/classes, empty at top level
	Signature  string // best-effort one-line declaration text, empty if unavailable
	DocComment string // leading comment attached to the declaration, if any
}

// ReferenceKind classifies how a name is used at a given site.
type ReferenceKind uint8

const (
	ReferenceDefinition ReferenceKind = iota
	ReferenceUsage
	ReferenceImport
	ReferenceDeclaration
)

func (r ReferenceKind) String() string {
	switch r {
	case ReferenceDefinition:
		return "definition"
	case ReferenceImport:
		return "import"
	case ReferenceDeclaration:
		return "declaration"
	default:
		return "usage"
	}
}

// Reference is an occurrence of a symbol's name in source text: its
// definition site, or a later use, import or declaration.
type Reference struct {
	SymbolName string
	Kind       ReferenceKind
	Location   Location
}

// ParseStatus records the outcome of extracting symbols from a file.
type ParseStatus uint8

const (
	ParseOK ParseStatus = iota
	ParseFailed
	ParseSkippedUnsupported
	ParseSkippedTooLarge
)

func (p ParseStatus) String() string {
	switch p {
	case ParseFailed:
		return "failed"
	case ParseSkippedUnsupported:
		return "skipped_unsupported"
	case ParseSkippedTooLarge:
		return "skipped_too_large"
	default:
		return "ok"
	}
}

// FileInfo is the per-file bookkeeping record kept by the store: enough to
// detect whether a file changed since it was last indexed, and a summary of
// what extraction produced.
type FileInfo struct {
	ID           FileID
	Path         string // project-relative, forward-slash separated
	ContentHash  [32]byte
	Language     string
	SymbolCount  int
	ParseStatus  ParseStatus
	SizeBytes    int64
	ModifiedUnix int64
}

// String renders the file for diagnostics.
func (f FileInfo) String() string {
	return fmt.Sprintf("%s (%s, %d symbols, %s)", f.Path, f.Language, f.SymbolCount, f.ParseStatus)
}
