// Package cache implements the binary cache (component C7): a persisted
// snapshot of a project's symbol store that lets a subsequent run skip
// re-parsing files whose content hash hasn't changed.
//
// On-disk framing is magic bytes plus a format version plus a
// length-prefixed gob payload, written to a sibling temp file and renamed
// into place so a crash mid-write leaves either the previous cache or
// none.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kensave/CodeCortX-MCP/internal/bm25"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

var magic = [4]byte{'C', 'C', 'M', 'C'}

const formatVersion uint16 = 1

// Snapshot is the full payload written to and read from the cache file:
// the store's symbols/references/file bookkeeping plus the BM25 index's
// term statistics, so a warm start restores code_search results
// identically without re-tokenizing every file.
type Snapshot struct {
	CreatedUnix int64
	RootPath    string
	Files       []types.FileInfo
	Symbols     []*types.Symbol
	References  []types.Reference
	BM25State   []bm25.DocState
}

// Save writes snapshot to path atomically: the payload is written to a
// temp file in the same directory, then renamed into place so a reader
// never observes a partially-written cache.
func Save(path string, snapshot Snapshot) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(snapshot); err != nil {
		return fmt.Errorf("cache: encode snapshot: %w", err)
	}

	var framed bytes.Buffer
	framed.Write(magic[:])
	if err := binary.Write(&framed, binary.LittleEndian, formatVersion); err != nil {
		return fmt.Errorf("cache: write version: %w", err)
	}
	if err := binary.Write(&framed, binary.LittleEndian, uint64(payload.Len())); err != nil {
		return fmt.Errorf("cache: write length: %w", err)
	}
	framed.Write(payload.Bytes())

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(framed.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("cache: rename into place: %w", err)
	}
	return nil
}

// Load reads and validates a cache file written by Save. A missing file
// returns (Snapshot{}, false, nil); a corrupt or version-mismatched one
// returns an error so the caller can fall back to a full re-index.
func Load(path string) (Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("cache: read %s: %w", path, err)
	}

	if len(data) < 4+2+8 {
		return Snapshot{}, false, fmt.Errorf("cache: truncated header")
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return Snapshot{}, false, fmt.Errorf("cache: bad magic")
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != formatVersion {
		return Snapshot{}, false, fmt.Errorf("cache: unsupported version %d", version)
	}
	length := binary.LittleEndian.Uint64(data[6:14])
	if uint64(len(data)-14) != length {
		return Snapshot{}, false, fmt.Errorf("cache: length mismatch")
	}

	var snapshot Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data[14:])).Decode(&snapshot); err != nil {
		return Snapshot{}, false, fmt.Errorf("cache: decode snapshot: %w", err)
	}

	if err := validate(snapshot); err != nil {
		return Snapshot{}, false, fmt.Errorf("cache: integrity check failed: %w", err)
	}
	return snapshot, true, nil
}

// validate checks that every symbol references a file present in the
// snapshot. A dangling symbol invalidates the whole cache rather than
// being silently dropped, since it indicates the snapshot was corrupted or
// hand-edited.
func validate(s Snapshot) error {
	known := make(map[types.FileID]bool, len(s.Files))
	for _, f := range s.Files {
		known[f.ID] = true
	}
	for _, sym := range s.Symbols {
		if !known[sym.Location.FileID] {
			return fmt.Errorf("symbol %q references unknown file id %d", sym.Name, sym.Location.FileID)
		}
	}
	return nil
}

// KeyFor derives the cache file name for a project root: SHA-256 of the
// canonical absolute path, truncated to 16 hex characters.
func KeyFor(rootPath string) string {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		abs = rootPath
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return fmt.Sprintf("%x", sum)[:16]
}

// DefaultDir returns the platform cache directory for CodeCortX-MCP,
// honoring CODECORTX_CACHE_DIR when set.
func DefaultDir() (string, error) {
	if dir := os.Getenv("CODECORTX_CACHE_DIR"); dir != "" {
		return dir, nil
	}

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Caches", "codecortext-mcp"), nil
	case "windows":
		if dir, err := os.UserCacheDir(); err == nil {
			return filepath.Join(dir, "codecortext-mcp"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Local", "codecortext-mcp"), nil
	default:
		if dir, err := os.UserCacheDir(); err == nil {
			return filepath.Join(dir, "codecortext-mcp"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".cache", "codecortext-mcp"), nil
	}
}

// PathFor returns the full cache file path for rootPath.
func PathFor(rootPath string) (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, KeyFor(rootPath)+".ccmc"), nil
}
