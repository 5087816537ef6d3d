// Package project assembles one project's store, BM25 index, indexing
// pipeline and query engine into a single handle, and wires the binary
// cache (C7) in: Open restores a warm start from disk when a valid cache
// exists, and Save persists the current in-memory state back to it.
//
// Grounded on the same store+bm25+pipeline construction order used
// throughout internal/indexing's own tests.
package project

import (
	"context"
	"fmt"
	"time"

	"github.com/kensave/CodeCortX-MCP/internal/bm25"
	"github.com/kensave/CodeCortX-MCP/internal/cache"
	"github.com/kensave/CodeCortX-MCP/internal/config"
	"github.com/kensave/CodeCortX-MCP/internal/indexing"
	"github.com/kensave/CodeCortX-MCP/internal/query"
	"github.com/kensave/CodeCortX-MCP/internal/store"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

// Project bundles the store/search/pipeline/engine quadruple for one
// project root, plus the cache path it warm-starts from and persists to.
type Project struct {
	Root      string
	Cfg       *config.Config
	Store     *store.Store
	Search    *bm25.Index
	Pipeline  *indexing.Pipeline
	Engine    *query.Engine
	CachePath string
}

// Open loads configuration for root, restores a cache warm start if one
// exists and validates, and returns an assembled Project ready to index or
// query. A missing or invalid cache is not an error: the project starts
// from an empty store and a full index picks up the slack.
func Open(root string) (*Project, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("project: load config: %w", err)
	}

	st := store.New()
	search := bm25.New()
	pipeline := indexing.New(cfg.Project.Root, cfg, st, search)
	engine := query.New(cfg.Project.Root, st, search, pipeline)
	engine.Recency = pipeline.Evictor.Tracker

	cachePath, err := cache.PathFor(cfg.Project.Root)
	if err != nil {
		return nil, fmt.Errorf("project: resolve cache path: %w", err)
	}

	p := &Project{
		Root:      cfg.Project.Root,
		Cfg:       cfg,
		Store:     st,
		Search:    search,
		Pipeline:  pipeline,
		Engine:    engine,
		CachePath: cachePath,
	}

	snapshot, ok, err := cache.Load(cachePath)
	if err == nil && ok {
		p.restore(snapshot)
	}
	return p, nil
}

// restore replays a loaded snapshot's symbols, references and file
// bookkeeping into Store, and its term statistics into Search, without
// retained file content (the store part of the payload carries no raw
// source; the next index of an unchanged file reattaches it through the
// content-hash skip).
func (p *Project) restore(snapshot cache.Snapshot) {
	bySymFile := make(map[types.FileID][]*types.Symbol, len(snapshot.Files))
	for _, sym := range snapshot.Symbols {
		bySymFile[sym.Location.FileID] = append(bySymFile[sym.Location.FileID], sym)
	}
	byRefName := make(map[types.FileID][]types.Reference, len(snapshot.Files))
	for _, ref := range snapshot.References {
		byRefName[ref.Location.FileID] = append(byRefName[ref.Location.FileID], ref)
	}

	for _, info := range snapshot.Files {
		p.Store.ReserveFileID(info.ID)
		p.Store.ReplaceFile(info, bySymFile[info.ID], byRefName[info.ID], nil)
	}
	p.Search.Import(snapshot.BM25State)
}

// Save persists the current store and BM25 state to CachePath.
func (p *Project) Save() error {
	var files []types.FileInfo
	var symbols []*types.Symbol
	p.Store.IterFiles(func(info types.FileInfo) bool {
		files = append(files, info)
		symbols = append(symbols, p.Store.FileSymbols(info.ID)...)
		return true
	})

	var refs []types.Reference
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if seen[sym.Name] {
			continue
		}
		seen[sym.Name] = true
		refs = append(refs, p.Store.References(sym.Name)...)
	}

	snapshot := cache.Snapshot{
		CreatedUnix: time.Now().Unix(),
		RootPath:    p.Root,
		Files:       files,
		Symbols:     symbols,
		References:  refs,
		BM25State:   p.Search.Export(),
	}
	return cache.Save(p.CachePath, snapshot)
}

// IndexAll runs a full directory index over Root and persists the result
// to the cache.
func (p *Project) IndexAll(ctx context.Context) error {
	if _, err := p.Engine.IndexCode(ctx, p.Root); err != nil {
		return err
	}
	return p.Save()
}

// Watch starts a file watcher over Root that keeps Store and Search in
// sync as files change on disk.
func (p *Project) Watch() (*indexing.Watcher, error) {
	w, err := indexing.NewWatcher(p.Pipeline)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
