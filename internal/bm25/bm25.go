// Package bm25 implements the BM25 ranking index (component C3): a
// concurrent, incrementally-updatable full-text index over source files,
// scored with the classic Okapi BM25 formula (k1=1.2, b=0.75).
//
// The term index is hand-rolled rather than delegated to a search-engine
// library: the document statistics (term frequency, document frequency,
// average document length) need to be inspectable for the snippet
// extraction and score rendering the query surface reports, and the cache
// persists them verbatim for warm starts.
package bm25

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/kensave/CodeCortX-MCP/internal/types"
)

const (
	k1 = 1.2
	b  = 0.75
)

type document struct {
	fileID   types.FileID
	path     string
	lines    []string
	termFreq map[string]int
	length   int
}

// Index is a concurrent BM25 index over file contents.
type Index struct {
	mu         sync.RWMutex
	docs       map[types.FileID]*document
	docFreq    map[string]int // number of documents containing a term
	totalTerms int64
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		docs:    make(map[types.FileID]*document),
		docFreq: make(map[string]int),
	}
}

// Index tokenizes content and adds it under fileID, replacing any existing
// document for that file.
func (idx *Index) Index(fileID types.FileID, path string, content []byte) {
	idx.Remove(fileID)

	lines := strings.Split(string(content), "\n")
	tokens := tokenize(string(content))

	termFreq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		termFreq[tok]++
	}

	doc := &document{
		fileID:   fileID,
		path:     path,
		lines:    lines,
		termFreq: termFreq,
		length:   len(tokens),
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs[fileID] = doc
	for term := range termFreq {
		idx.docFreq[term]++
	}
	idx.totalTerms += int64(doc.length)
}

// Remove drops a file's document from the index.
func (idx *Index) Remove(fileID types.FileID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	doc, ok := idx.docs[fileID]
	if !ok {
		return
	}
	for term := range doc.termFreq {
		idx.docFreq[term]--
		if idx.docFreq[term] <= 0 {
			delete(idx.docFreq, term)
		}
	}
	idx.totalTerms -= int64(doc.length)
	delete(idx.docs, fileID)
}

// Hit is a single scored search result.
type Hit struct {
	FileID  types.FileID
	Path    string
	Score   float64
	Line    int
	Snippet string
}

// Search ranks every indexed document against query and returns the top
// limit hits, highest score first, with each snippet spanning ctxLines of
// surrounding context on either side of the first matching line.
func (idx *Index) Search(query string, limit, ctxLines int) []Hit {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	docCount := len(idx.docs)
	if docCount == 0 {
		return nil
	}
	avgDocLen := float64(idx.totalTerms) / float64(docCount)
	if avgDocLen == 0 {
		avgDocLen = 1
	}

	var hits []Hit
	for _, doc := range idx.docs {
		score := 0.0
		for _, term := range queryTerms {
			tf := doc.termFreq[term]
			if tf == 0 {
				continue
			}
			df := idx.docFreq[term]
			idf := math.Log(1 + (float64(docCount)-float64(df)+0.5)/(float64(df)+0.5))
			numerator := float64(tf) * (k1 + 1)
			denominator := float64(tf) + k1*(1-b+b*float64(doc.length)/avgDocLen)
			score += idf * numerator / denominator
		}
		if score <= 0 {
			continue
		}
		line, snippet := extractSnippet(doc, queryTerms, ctxLines)
		hits = append(hits, Hit{
			FileID:  doc.fileID,
			Path:    doc.path,
			Score:   score,
			Line:    line,
			Snippet: snippet,
		})
	}

	sortHitsByScoreDesc(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func sortHitsByScoreDesc(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Score > hits[j-1].Score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// extractSnippet returns the first line matching any query term (plus
// ctxLines of surrounding context), falling back to the top of the file
// when no single line contains a term.
func extractSnippet(doc *document, queryTerms []string, ctxLines int) (int, string) {
	if ctxLines < 0 {
		ctxLines = 0
	}
	for i, line := range doc.lines {
		lower := strings.ToLower(line)
		for _, term := range queryTerms {
			if strings.Contains(lower, term) {
				return i + 1, joinContext(doc.lines, i, ctxLines)
			}
		}
	}
	end := ctxLines*2 + 1
	if end > len(doc.lines) {
		end = len(doc.lines)
	}
	return 1, strings.Join(doc.lines[:end], "\n")
}

func joinContext(lines []string, center, ctxLines int) string {
	start := center - ctxLines
	if start < 0 {
		start = 0
	}
	end := center + ctxLines + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// DocState is the exported form of one indexed document, used to persist
// and restore the index's term statistics across a process restart without
// re-tokenizing file content (component C7's bm25_state payload).
type DocState struct {
	FileID   types.FileID
	Path     string
	Lines    []string
	TermFreq map[string]int
	Length   int
}

// Export snapshots every indexed document's term statistics.
func (idx *Index) Export() []DocState {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]DocState, 0, len(idx.docs))
	for _, doc := range idx.docs {
		termFreq := make(map[string]int, len(doc.termFreq))
		for term, n := range doc.termFreq {
			termFreq[term] = n
		}
		out = append(out, DocState{
			FileID:   doc.fileID,
			Path:     doc.path,
			Lines:    append([]string(nil), doc.lines...),
			TermFreq: termFreq,
			Length:   doc.length,
		})
	}
	return out
}

// Import replaces the index's contents with docs, restoring doc frequencies
// and total term counts without re-tokenizing the underlying files.
func (idx *Index) Import(docs []DocState) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs = make(map[types.FileID]*document, len(docs))
	idx.docFreq = make(map[string]int)
	idx.totalTerms = 0

	for _, d := range docs {
		doc := &document{
			fileID:   d.FileID,
			path:     d.Path,
			lines:    d.Lines,
			termFreq: d.TermFreq,
			length:   d.Length,
		}
		idx.docs[d.FileID] = doc
		for term := range d.TermFreq {
			idx.docFreq[term]++
		}
		idx.totalTerms += int64(d.Length)
	}
}

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// tokenize lowercases and splits on non-identifier characters, then further
// splits camelCase and snake_case identifiers into sub-tokens so that a
// search for "http" matches "HTTPClient" or "http_client".
func tokenize(s string) []string {
	raw := tokenPattern.FindAllString(s, -1)
	tokens := make([]string, 0, len(raw)*2)
	for _, tok := range raw {
		lower := strings.ToLower(tok)
		tokens = append(tokens, lower)
		for _, part := range splitIdentifier(tok) {
			if part != lower {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

// splitIdentifier breaks camelCase and snake_case identifiers into
// lowercase parts, e.g. "HTTPClient" -> ["http", "client"].
func splitIdentifier(tok string) []string {
	var parts []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}

	runes := []rune(tok)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-':
			flush()
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') || (prev >= 'A' && prev <= 'Z' && nextLower) {
					flush()
				}
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return parts
}
