// Package query implements the query surface (component C9): seven pure
// operations over the store and BM25 index, exposed as direct Go APIs here
// and wrapped as MCP tools by internal/mcpserver.
//
// Apart from IndexCode, which drives the indexing pipeline through
// interfaces.Indexer, every operation reads from Store and Search only;
// indexing and eviction logic stay in internal/indexing and internal/lru.
package query

import (
	"context"
	"os"
	"sort"
	"strings"

	internalerrors "github.com/kensave/CodeCortX-MCP/internal/errors"
	"github.com/kensave/CodeCortX-MCP/internal/idcodec"
	"github.com/kensave/CodeCortX-MCP/internal/interfaces"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

// Engine answers the seven C9 operations against one project's store, BM25
// index and indexing pipeline, depending on their interfaces rather than
// the concrete internal/store, internal/bm25 and internal/indexing types —
// project.Open is the only place that wires in the real implementations.
type Engine struct {
	Root     string
	Store    interfaces.Store
	Search   interfaces.Searcher
	Pipeline interfaces.Indexer

	// Recency, when set, is promoted on every file a query touches so the
	// eviction manager keeps the working set resident. Nil in tests that
	// don't exercise eviction.
	Recency interfaces.Recency
}

// New builds an Engine over an already-constructed store/search/pipeline
// triple, the same objects the indexing pipeline writes into.
func New(root string, st interfaces.Store, search interfaces.Searcher, pipeline interfaces.Indexer) *Engine {
	return &Engine{Root: root, Store: st, Search: search, Pipeline: pipeline}
}

// IndexResult is the pipeline summary returned by IndexCode.
type IndexResult struct {
	FilesIndexed int   `json:"files_indexed"`
	TotalSymbols int   `json:"total_symbols"`
	FailedCount  int   `json:"failed_count"`
	DurationMs   int64 `json:"duration_ms"`
}

// IndexCode runs the indexing pipeline (C6) for path. A file path indexes
// that one file; any directory path, like an empty path, re-indexes the
// whole project root rather than only that directory.
func (e *Engine) IndexCode(ctx context.Context, path string) (IndexResult, error) {
	target := path
	if target == "" {
		target = e.Root
	}

	info, err := os.Stat(target)
	if err != nil {
		return IndexResult{}, internalerrors.NewFileError("stat", target, err)
	}

	if !info.IsDir() {
		if err := e.Pipeline.IndexFile(ctx, target); err != nil {
			return IndexResult{}, err
		}
		return IndexResult{FilesIndexed: 1, TotalSymbols: e.Store.TotalSymbols()}, nil
	}

	stats, err := e.Pipeline.IndexDirectory(ctx)
	if err != nil {
		if _, ok := err.(*internalerrors.MultiError); !ok {
			return IndexResult{}, err
		}
	}
	return IndexResult{
		FilesIndexed: stats.FileCount,
		TotalSymbols: stats.SymbolCount,
		FailedCount:  stats.FailedCount,
		DurationMs:   stats.IndexTimeMs,
	}, nil
}

// SymbolResult is the caller-facing rendering of a types.Symbol: an encoded
// display id, a project-relative path, and optionally its source text.
type SymbolResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Visibility string `json:"visibility"`
	Namespace  string `json:"namespace,omitempty"`
	File       string `json:"file"`
	StartLine  int    `json:"start_line"`
	StartCol   int    `json:"start_col"`
	EndLine    int    `json:"end_line"`
	EndCol     int    `json:"end_col"`
	Signature  string `json:"signature,omitempty"`
	DocComment string `json:"doc_comment,omitempty"`
	Source     string `json:"source,omitempty"`
}

func (e *Engine) touch(info types.FileInfo) {
	if e.Recency != nil && info.Path != "" {
		e.Recency.Touch(info.ID, info.Path)
	}
}

func (e *Engine) render(sym *types.Symbol, includeSource bool) SymbolResult {
	info, _ := e.Store.FileInfo(sym.Location.FileID)
	e.touch(info)
	res := SymbolResult{
		ID:         idcodec.EncodeSymbolID(sym.ID),
		Name:       sym.Name,
		Kind:       sym.Kind.String(),
		Visibility: sym.Visibility.String(),
		Namespace:  sym.Namespace,
		File:       info.Path,
		StartLine:  sym.Location.StartLine,
		StartCol:   sym.Location.StartCol,
		EndLine:    sym.Location.EndLine,
		EndCol:     sym.Location.EndCol,
		Signature:  sym.Signature,
		DocComment: sym.DocComment,
	}
	if includeSource {
		res.Source = e.sourceSlice(sym)
	}
	return res
}

// sourceSlice extracts the lines spanning a symbol's location from its
// file's retained content, returning "" if no content is retained for it.
func (e *Engine) sourceSlice(sym *types.Symbol) string {
	content, ok := e.Store.Content(sym.Location.FileID)
	if !ok {
		return ""
	}
	lines := strings.Split(string(content), "\n")
	start := sym.Location.StartLine - 1
	end := sym.Location.EndLine
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

// GetSymbol returns every symbol with an exact name match, optionally
// attaching each one's source text.
func (e *Engine) GetSymbol(name string, includeSource bool) []SymbolResult {
	syms := e.Store.SymbolsByName(name)
	out := make([]SymbolResult, 0, len(syms))
	for _, sym := range syms {
		out = append(out, e.render(sym, includeSource))
	}
	return out
}

// ReferenceResult is the caller-facing rendering of a types.Reference.
type ReferenceResult struct {
	SymbolName string `json:"symbol_name"`
	Kind       string `json:"kind"`
	File       string `json:"file"`
	StartLine  int    `json:"start_line"`
	StartCol   int    `json:"start_col"`
	EndLine    int    `json:"end_line"`
	EndCol     int    `json:"end_col"`
}

// ReferencesResult bundles the reference list with its total count.
type ReferencesResult struct {
	References []ReferenceResult `json:"references"`
	Total      int               `json:"total"`
}

// GetSymbolReferences returns every recorded reference to name plus the
// total count.
func (e *Engine) GetSymbolReferences(name string) ReferencesResult {
	refs := e.Store.References(name)
	out := make([]ReferenceResult, 0, len(refs))
	for _, ref := range refs {
		info, _ := e.Store.FileInfo(ref.Location.FileID)
		out = append(out, ReferenceResult{
			SymbolName: ref.SymbolName,
			Kind:       ref.Kind.String(),
			File:       info.Path,
			StartLine:  ref.Location.StartLine,
			StartCol:   ref.Location.StartCol,
			EndLine:    ref.Location.EndLine,
			EndCol:     ref.Location.EndCol,
		})
	}
	return ReferencesResult{References: out, Total: len(out)}
}

// FindSymbols matches query against every symbol name (case-insensitive),
// optionally filtered by kind. Results are ranked with exact matches before
// prefix-only matches, and within each group shorter names before longer —
// both groups are always computed rather than choosing one strategy up
// front, so a bare identifier still surfaces its longer prefix siblings.
func (e *Engine) FindSymbols(query string, kind string) []SymbolResult {
	if query == "" {
		return nil
	}

	var wantKind types.Kind
	filterByKind := kind != ""
	if filterByKind {
		wantKind = types.ParseKind(kind)
	}

	candidates := e.Store.SymbolsByPrefix(query, 0)

	var exact, prefix []*types.Symbol
	for _, sym := range candidates {
		if filterByKind && sym.Kind != wantKind {
			continue
		}
		if strings.EqualFold(sym.Name, query) {
			exact = append(exact, sym)
		} else {
			prefix = append(prefix, sym)
		}
	}

	byLenThenName := func(syms []*types.Symbol) {
		sort.SliceStable(syms, func(i, j int) bool {
			if len(syms[i].Name) != len(syms[j].Name) {
				return len(syms[i].Name) < len(syms[j].Name)
			}
			return syms[i].Name < syms[j].Name
		})
	}
	byLenThenName(exact)
	byLenThenName(prefix)

	out := make([]SymbolResult, 0, len(exact)+len(prefix))
	for _, sym := range exact {
		out = append(out, e.render(sym, false))
	}
	for _, sym := range prefix {
		out = append(out, e.render(sym, false))
	}
	return out
}

// SearchHit is the caller-facing rendering of a bm25.Hit.
type SearchHit struct {
	Path     string  `json:"path"`
	Language string  `json:"language"`
	Score    float64 `json:"score"`
	Line     int     `json:"line"`
	Snippet  string  `json:"snippet"`
}

// CodeSearch delegates to the BM25 index, defaulting maxResults to 10 when
// it is not positive and contextLines to 2 when it is negative (zero
// context lines is kept as asked).
func (e *Engine) CodeSearch(query string, maxResults, contextLines int) []SearchHit {
	if maxResults <= 0 {
		maxResults = 10
	}
	if contextLines < 0 {
		contextLines = 2
	}

	hits := e.Search.Search(query, maxResults, contextLines)
	out := make([]SearchHit, 0, len(hits))
	for _, hit := range hits {
		info, _ := e.Store.FileInfo(hit.FileID)
		out = append(out, SearchHit{
			Path:     hit.Path,
			Language: info.Language,
			Score:    hit.Score,
			Line:     hit.Line,
			Snippet:  hit.Snippet,
		})
	}
	return out
}
