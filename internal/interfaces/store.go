// Package interfaces defines the abstraction boundaries between the
// indexing pipeline, the symbol store and the query surface, so the MCP
// server and the CLI can depend on behavior rather than concrete types.
package interfaces

import (
	"context"

	"github.com/kensave/CodeCortX-MCP/internal/bm25"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

// Store is the read/write surface a single project's index exposes. The
// indexing pipeline is the only writer; the query surface and search index
// are readers.
type Store interface {
	// SymbolsByName returns all symbols with an exact name match.
	SymbolsByName(name string) []*types.Symbol
	// SymbolsByPrefix returns symbols whose name starts with prefix, up to limit.
	SymbolsByPrefix(prefix string, limit int) []*types.Symbol
	// References returns all recorded references to symbolName.
	References(symbolName string) []types.Reference
	// FileInfo returns bookkeeping for a previously indexed file.
	FileInfo(fileID types.FileID) (types.FileInfo, bool)
	// FileInfoByPath resolves a project-relative path to its FileInfo.
	FileInfoByPath(path string) (types.FileInfo, bool)
	// FileSymbols returns every symbol defined in a file, in source order.
	FileSymbols(fileID types.FileID) []*types.Symbol
	// Content returns the retained raw source for fileID, if still resident.
	Content(fileID types.FileID) ([]byte, bool)
	// IterFiles calls fn for every indexed file; fn returning false stops iteration.
	IterFiles(fn func(types.FileInfo) bool)
	// ReplaceFile atomically swaps out a file's symbols, references and content.
	ReplaceFile(info types.FileInfo, symbols []*types.Symbol, refs []types.Reference, content []byte)
	// RemoveFile deletes a file and everything indexed for it.
	RemoveFile(fileID types.FileID)
	// TotalSymbols returns the number of live symbols in the store.
	TotalSymbols() int
	// TotalFiles returns the number of live files in the store.
	TotalFiles() int
	// MemoryBytes returns an estimate of the store's resident memory use.
	MemoryBytes() int64
}

// Indexer drives the walk-parse-store pipeline over a project directory.
type Indexer interface {
	IndexDirectory(ctx context.Context) (IndexStats, error)
	IndexFile(ctx context.Context, absPath string) error
	RemoveFile(relPath string)
	Stats() IndexStats
}

// IndexStats summarizes the outcome of an indexing run.
type IndexStats struct {
	FileCount      int
	SymbolCount    int
	FailedCount    int
	TotalSizeBytes int64
	IndexTimeMs    int64
}

// Recency receives access notifications so the LRU eviction manager can
// keep query-touched files resident longest. The query surface promotes a
// file every time it renders one of its symbols or reads its content.
type Recency interface {
	Touch(fileID types.FileID, path string)
}

// Searcher ranks files or symbols against a free-text BM25 query.
type Searcher interface {
	Search(query string, limit, ctxLines int) []SearchHit
	Index(fileID types.FileID, path string, content []byte)
	Remove(fileID types.FileID)
}

// SearchHit aliases bm25.Hit so *bm25.Index satisfies Searcher without an
// adapter: the query surface depends on this interface, not the concrete
// index type.
type SearchHit = bm25.Hit
