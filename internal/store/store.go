// Package store implements the symbol store (component C4): the
// concurrent, in-memory index of symbols, references and file metadata
// that the query surface reads and the indexing pipeline writes.
//
// Each mutation is one critical section, so readers never observe a
// half-updated file: a re-index removes the old file's contribution from
// every map before inserting the new one. Serializing contending writers
// on the same path — and keeping the BM25 index in lockstep with the
// store — is the indexing pipeline's job, via its per-path striped locks.
package store

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/kensave/CodeCortX-MCP/internal/types"
)

// Store is the concurrent symbol/reference/file index for one project.
type Store struct {
	mu         sync.RWMutex // guards the maps below against concurrent resize/iterate
	byName     map[string][]*types.Symbol
	byID       map[types.SymbolID]*types.Symbol
	refsByName map[string][]types.Reference
	files      map[types.FileID]types.FileInfo
	pathToID   map[string]types.FileID
	fileSyms   map[types.FileID][]types.SymbolID
	contents   map[types.FileID][]byte // raw source, retained for outline/snippet rendering; LRU-evictable

	nextFileID uint32

	symbolCount  int64 // atomic
	contentBytes int64 // atomic, sum of len(contents[*])
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byName:     make(map[string][]*types.Symbol),
		byID:       make(map[types.SymbolID]*types.Symbol),
		refsByName: make(map[string][]types.Reference),
		files:      make(map[types.FileID]types.FileInfo),
		pathToID:   make(map[string]types.FileID),
		fileSyms:   make(map[types.FileID][]types.SymbolID),
		contents:   make(map[types.FileID][]byte),
	}
}

// AllocateFileID assigns a stable FileID to path, reusing the existing one
// if path has already been seen.
func (s *Store) AllocateFileID(path string) types.FileID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.pathToID[path]; ok {
		return id
	}
	s.nextFileID++
	id := types.FileID(s.nextFileID)
	s.pathToID[path] = id
	return id
}

// ReserveFileID ensures subsequent AllocateFileID calls never reuse id. The
// cache restore path seeds the store with FileInfo whose IDs were assigned
// by a previous process; without this, a freshly allocated ID for a new
// path could collide with one of those restored IDs.
func (s *Store) ReserveFileID(id types.FileID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint32(id) > s.nextFileID {
		s.nextFileID = uint32(id)
	}
}

// symbolID derives a stable id from (path, name, kind, start byte): the
// same source shape must yield the same id across runs, which rules out
// hashing anything derived from run-order state such as the numeric
// FileID (FileID is assigned from an incrementing counter in first-seen
// order, and extraction runs on concurrent goroutines whose completion
// order is not deterministic across runs). Path is hashed instead, since
// it is stable across a cold-start re-index of the same directory
// regardless of worker scheduling.
func symbolID(path string, kind types.Kind, startByte uint32, name string) types.SymbolID {
	h := xxhash.New()
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0}) // separator: avoids "ab"+"c" colliding with "a"+"bc"
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte{byte(kind)})
	var buf [4]byte
	buf[0] = byte(startByte)
	buf[1] = byte(startByte >> 8)
	buf[2] = byte(startByte >> 16)
	buf[3] = byte(startByte >> 24)
	_, _ = h.Write(buf[:])
	return types.SymbolID(h.Sum64())
}

// ReplaceFile atomically swaps a file's symbols, references and retained
// content. The old contribution, if any, is fully removed before the new
// one is inserted, so no reader ever sees a mix of old and new data for the
// same file. content may be nil (e.g. a parse failure still records
// FileInfo with no symbols and no retained bytes).
func (s *Store) ReplaceFile(info types.FileInfo, symbols []*types.Symbol, refs []types.Reference, content []byte) {
	for i, sym := range symbols {
		sym.Location.FileID = info.ID
		sym.ID = symbolID(info.Path, sym.Kind, sym.Location.StartByte, sym.Name)
		symbols[i] = sym
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFileLocked(info.ID)

	s.files[info.ID] = info
	s.pathToID[info.Path] = info.ID
	if len(content) > 0 {
		s.contents[info.ID] = content
		atomic.AddInt64(&s.contentBytes, int64(len(content)))
	}

	ids := make([]types.SymbolID, 0, len(symbols))
	for _, sym := range symbols {
		s.byName[sym.Name] = append(s.byName[sym.Name], sym)
		s.byID[sym.ID] = sym
		ids = append(ids, sym.ID)
	}
	s.fileSyms[info.ID] = ids
	atomic.AddInt64(&s.symbolCount, int64(len(symbols)))

	for _, ref := range refs {
		s.refsByName[ref.SymbolName] = append(s.refsByName[ref.SymbolName], ref)
	}
}

// RemoveFile deletes everything indexed for fileID.
func (s *Store) RemoveFile(fileID types.FileID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFileLocked(fileID)
}

// removeFileLocked assumes s.mu is held for writing.
func (s *Store) removeFileLocked(fileID types.FileID) {
	info, ok := s.files[fileID]
	if !ok {
		return
	}

	for _, id := range s.fileSyms[fileID] {
		sym, ok := s.byID[id]
		if !ok {
			continue
		}
		delete(s.byID, id)
		s.byName[sym.Name] = removeSymbol(s.byName[sym.Name], id)
		if len(s.byName[sym.Name]) == 0 {
			delete(s.byName, sym.Name)
		}
		atomic.AddInt64(&s.symbolCount, -1)
	}

	for name, refs := range s.refsByName {
		filtered := refs[:0]
		for _, r := range refs {
			if r.Location.FileID != fileID {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) == 0 {
			delete(s.refsByName, name)
		} else {
			s.refsByName[name] = filtered
		}
	}

	if content, ok := s.contents[fileID]; ok {
		atomic.AddInt64(&s.contentBytes, -int64(len(content)))
		delete(s.contents, fileID)
	}

	delete(s.fileSyms, fileID)
	delete(s.files, fileID)
	delete(s.pathToID, info.Path)
}

func removeSymbol(syms []*types.Symbol, id types.SymbolID) []*types.Symbol {
	out := syms[:0]
	for _, s := range syms {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// SymbolsByName returns every symbol with an exact name match.
func (s *Store) SymbolsByName(name string) []*types.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*types.Symbol(nil), s.byName[name]...)
}

// SymbolsByPrefix returns symbols whose name starts with prefix
// (case-insensitive), sorted by name and capped at limit (0 means
// unlimited).
func (s *Store) SymbolsByPrefix(prefix string, limit int) []*types.Symbol {
	lowerPrefix := strings.ToLower(prefix)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.byName {
		if strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []*types.Symbol
	for _, name := range names {
		out = append(out, s.byName[name]...)
		if limit > 0 && len(out) >= limit {
			return out[:limit]
		}
	}
	return out
}

// References returns every recorded reference to symbolName.
func (s *Store) References(symbolName string) []types.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Reference(nil), s.refsByName[symbolName]...)
}

// FileInfo returns bookkeeping for fileID.
func (s *Store) FileInfo(fileID types.FileID) (types.FileInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.files[fileID]
	return info, ok
}

// FileInfoByPath resolves path to its FileInfo.
func (s *Store) FileInfoByPath(path string) (types.FileInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pathToID[path]
	if !ok {
		return types.FileInfo{}, false
	}
	info, ok := s.files[id]
	return info, ok
}

// FileSymbols returns every symbol defined in fileID.
func (s *Store) FileSymbols(fileID types.FileID) []*types.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.fileSyms[fileID]
	out := make([]*types.Symbol, 0, len(ids))
	for _, id := range ids {
		if sym, ok := s.byID[id]; ok {
			out = append(out, sym)
		}
	}
	return out
}

// SetContentIfMissing restores a file's retained source without re-running
// extraction. The indexing pipeline calls this on its content-hash-skip
// path: the file is unchanged so no new symbols are produced, but it may
// have been recorded without content (a cache restore carries none) and
// outline/snippet rendering needs it back.
func (s *Store) SetContentIfMissing(fileID types.FileID, content []byte) {
	if len(content) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[fileID]; !ok {
		return
	}
	if _, ok := s.contents[fileID]; ok {
		return
	}
	s.contents[fileID] = content
	atomic.AddInt64(&s.contentBytes, int64(len(content)))
}

// Content returns the retained raw source for fileID, if present. A file
// can be recorded without content (a cache restore, or a file that was not
// parsed); LRU eviction removes content together with the rest of the file.
// A miss here means the caller should treat source slices/snippets as
// unavailable without re-indexing.
func (s *Store) Content(fileID types.FileID) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.contents[fileID]
	return b, ok
}

// IterFiles calls fn for every indexed file; fn returning false stops iteration.
func (s *Store) IterFiles(fn func(types.FileInfo) bool) {
	s.mu.RLock()
	infos := make([]types.FileInfo, 0, len(s.files))
	for _, info := range s.files {
		infos = append(infos, info)
	}
	s.mu.RUnlock()

	for _, info := range infos {
		if !fn(info) {
			return
		}
	}
}

// TotalSymbols returns the number of live symbols in the store.
func (s *Store) TotalSymbols() int {
	return int(atomic.LoadInt64(&s.symbolCount))
}

// TotalFiles returns the number of live files in the store.
func (s *Store) TotalFiles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// MemoryBytes estimates resident memory: the retained raw content (the
// dominant cost for real repositories) plus a fixed per-symbol and per-file
// overhead, close enough for the eviction manager's budget check without
// walking every string.
func (s *Store) MemoryBytes() int64 {
	const perSymbol = 256
	const perFile = 128
	s.mu.RLock()
	defer s.mu.RUnlock()
	return atomic.LoadInt64(&s.contentBytes) + int64(len(s.byID))*perSymbol + int64(len(s.files))*perFile
}
