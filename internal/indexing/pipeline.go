// Package indexing implements the indexing pipeline (component C6) and the
// file watcher (component C8): walking a project directory, extracting
// symbols with bounded worker concurrency, and keeping the store and BM25
// index in sync as files change on disk.
package indexing

import (
	"context"
	"crypto/sha256"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kensave/CodeCortX-MCP/internal/bm25"
	"github.com/kensave/CodeCortX-MCP/internal/config"
	internalerrors "github.com/kensave/CodeCortX-MCP/internal/errors"
	"github.com/kensave/CodeCortX-MCP/internal/extractor"
	"github.com/kensave/CodeCortX-MCP/internal/interfaces"
	"github.com/kensave/CodeCortX-MCP/internal/langregistry"
	"github.com/kensave/CodeCortX-MCP/internal/lru"
	"github.com/kensave/CodeCortX-MCP/internal/store"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

const pathStripes = 64

// Pipeline walks a project directory and extracts symbols from every file
// the registry supports, writing the results into Store and BM25.
//
// Writers on the same path are serialized by a striped per-path lock that
// spans both the store replacement and the BM25 update, so a racing pair
// (directory walk vs. a debounced watcher re-index) can never leave the
// two indexes reflecting different generations of the same file.
type Pipeline struct {
	Root     string
	Cfg      *config.Config
	Excluder *config.Excluder
	Registry *langregistry.Registry
	Store    *store.Store
	Search   *bm25.Index
	Evictor  *lru.Manager

	stripes     [pathStripes]sync.Mutex
	concurrency int
}

// New builds a Pipeline for root using cfg. Worker concurrency is clamped
// to [2, 16] the way a CPU-bound parsing pool should be sized regardless of
// how many cores the host happens to have.
func New(root string, cfg *config.Config, st *store.Store, search *bm25.Index) *Pipeline {
	return &Pipeline{
		Root:        root,
		Cfg:         cfg,
		Excluder:    config.NewExcluder(cfg),
		Registry:    langregistry.New(),
		Store:       st,
		Search:      search,
		Evictor:     lru.NewManager(cfg.Memory.MaxMemoryMB, cfg.Memory.EvictionThreshold),
		concurrency: clamp(runtime.NumCPU(), 2, 16),
	}
}

func (p *Pipeline) pathLock(relPath string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(relPath))
	return &p.stripes[h.Sum32()%pathStripes]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IndexDirectory walks p.Root, indexing every supported file not excluded
// by configuration, with up to p.concurrency files in flight at once.
func (p *Pipeline) IndexDirectory(ctx context.Context) (interfaces.IndexStats, error) {
	started := time.Now()

	paths, err := p.discover()
	if err != nil {
		return interfaces.IndexStats{}, fmt.Errorf("indexing: discover files: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	var mu sync.Mutex
	var stats interfaces.IndexStats
	var failures []error

	for _, path := range paths {
		path := path
		g.Go(func() error {
			err := p.IndexFile(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				stats.FailedCount++
				return nil // one bad file does not abort the walk
			}
			stats.FileCount++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.SymbolCount = p.Store.TotalSymbols()
	stats.IndexTimeMs = time.Since(started).Milliseconds()
	if len(failures) > 0 {
		return stats, internalerrors.NewMultiError(failures)
	}
	return stats, nil
}

// discover walks Root collecting every regular file whose extension is
// supported and which the configured include/exclude rules admit.
// Symlinked directories are followed one level, with resolved real paths
// tracked so a link cycle terminates instead of recursing forever. Only an
// unreadable root is an error; unreadable subtrees are skipped.
func (p *Pipeline) discover() ([]string, error) {
	walker := &dirWalker{
		root:     p.Root,
		excluder: p.Excluder,
		visited:  make(map[string]bool),
		admit: func(path string, size int64) bool {
			return p.Registry.Supported(filepath.Ext(path)) && size <= p.Cfg.Index.MaxFileSize
		},
		maxFiles: p.Cfg.Index.MaxFileCount,
	}
	if err := walker.walk(p.Root, true); err != nil {
		return nil, err
	}
	return walker.paths, nil
}

// IndexFile parses a single file and replaces its contribution in Store and
// Search. Files whose content hash is unchanged since the last index are
// skipped (touching only their LRU recency). The per-path lock is held
// from the hash check through the paired store and BM25 writes; eviction
// runs after it is released, since a sweep may need a colliding stripe for
// its victim.
func (p *Pipeline) IndexFile(ctx context.Context, absPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return internalerrors.NewFileError("read", absPath, err)
	}

	rel, err := filepath.Rel(p.Root, absPath)
	if err != nil {
		rel = absPath
	}
	rel = filepath.ToSlash(rel)

	hash := sha256.Sum256(content)
	fileID := p.Store.AllocateFileID(rel)

	lock := p.pathLock(rel)
	lock.Lock()
	indexErr := p.replaceLocked(fileID, rel, hash, content, filepath.Ext(absPath))
	lock.Unlock()

	if p.Evictor != nil {
		p.Evictor.Tracker.Touch(fileID, rel)
		p.Evictor.EvictIfNeeded(evictAdapter{p})
	}
	return indexErr
}

// replaceLocked applies one file's indexing outcome to the store and the
// BM25 index as a single generation. The caller holds the path's stripe.
func (p *Pipeline) replaceLocked(fileID types.FileID, rel string, hash [32]byte, content []byte, ext string) error {
	if existing, ok := p.Store.FileInfo(fileID); ok && existing.ContentHash == hash {
		p.Store.SetContentIfMissing(fileID, content)
		return nil
	}

	info := types.FileInfo{
		ID:           fileID,
		Path:         rel,
		ContentHash:  hash,
		SizeBytes:    int64(len(content)),
		ModifiedUnix: time.Now().Unix(),
	}

	lang, err := p.Registry.Get(ext)
	if err != nil {
		info.ParseStatus = types.ParseSkippedUnsupported
		p.Store.ReplaceFile(info, nil, nil, nil)
		p.Search.Remove(fileID)
		return nil
	}
	info.Language = lang.Name

	result, err := extractor.Extract(lang, fileID, content)
	if err != nil {
		info.ParseStatus = types.ParseFailed
		p.Store.ReplaceFile(info, nil, nil, nil)
		p.Search.Remove(fileID)
		return internalerrors.NewParseError(fileID, rel, 0, 0, "", err)
	}

	info.ParseStatus = types.ParseOK
	info.SymbolCount = len(result.Symbols)

	p.Store.ReplaceFile(info, result.Symbols, result.References, content)
	p.Search.Index(fileID, rel, content)
	return nil
}

// RemoveFile drops relPath from the store and search index, e.g. in
// response to a filesystem delete event.
func (p *Pipeline) RemoveFile(relPath string) {
	relPath = filepath.ToSlash(relPath)
	info, ok := p.Store.FileInfoByPath(relPath)
	if !ok {
		return
	}

	lock := p.pathLock(relPath)
	lock.Lock()
	p.Store.RemoveFile(info.ID)
	p.Search.Remove(info.ID)
	lock.Unlock()

	if p.Evictor != nil {
		p.Evictor.Tracker.Remove(info.ID)
	}
}

// Stats reports the current size of the index.
func (p *Pipeline) Stats() interfaces.IndexStats {
	var total int64
	p.Store.IterFiles(func(info types.FileInfo) bool {
		total += info.SizeBytes
		return true
	})
	return interfaces.IndexStats{
		FileCount:      p.Store.TotalFiles(),
		SymbolCount:    p.Store.TotalSymbols(),
		TotalSizeBytes: total,
	}
}

// StartEvictionLoop runs an opportunistic background eviction sweep every
// interval until ctx is canceled, complementing the synchronous check after
// each write: a store left idle under memory pressure still drains back
// under budget.
func (p *Pipeline) StartEvictionLoop(ctx context.Context, interval time.Duration) {
	if p.Evictor == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Evictor.EvictIfNeeded(evictAdapter{p})
			}
		}
	}()
}

// evictAdapter bridges lru.MemorySource to the pipeline so the eviction
// manager removes a file from the store and search index in lockstep,
// under the victim path's stripe. Callers must not hold any stripe when a
// sweep runs: the victim may hash to the same one.
type evictAdapter struct {
	p *Pipeline
}

func (a evictAdapter) MemoryBytes() int64 { return a.p.Store.MemoryBytes() }

func (a evictAdapter) RemoveFile(fileID types.FileID) {
	info, ok := a.p.Store.FileInfo(fileID)
	if !ok {
		return
	}
	lock := a.p.pathLock(info.Path)
	lock.Lock()
	a.p.Store.RemoveFile(fileID)
	a.p.Search.Remove(fileID)
	lock.Unlock()
}
