// Package langregistry is the language registry (component C1): it maps
// file extensions to tree-sitter grammars and to the query that the
// extractor runs over each parsed tree. Each extension's language is
// initialized lazily and only once, the first time a file with that
// extension is seen.
package langregistry

import (
	"fmt"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Language bundles a grammar and its compiled symbol/reference query.
// A tree-sitter Parser is not safe for concurrent Parse calls, so the
// Language does not hold one: extraction workers create a short-lived
// parser per file via NewParser, while the compiled Query (which is
// read-only once built) is shared.
type Language struct {
	Name    string
	Grammar *tree_sitter.Language
	Query   *tree_sitter.Query
}

// NewParser returns a fresh parser configured for this language. The
// caller owns it and must Close it when done.
func (l *Language) NewParser() (*tree_sitter.Parser, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(l.Grammar); err != nil {
		parser.Close()
		return nil, fmt.Errorf("langregistry: set language %s: %w", l.Name, err)
	}
	return parser, nil
}

type setupFunc func() *Language

// Registry maps file extensions onto lazily-initialized Languages. A single
// Registry is shared by every worker in the indexing pool; the Language
// values it hands out are safe to share because parsing state lives in the
// per-call parsers from Language.NewParser, not in the Language itself.
type Registry struct {
	mu     sync.Mutex
	setups map[string]setupFunc
	langs  map[string]*Language
	failed map[string]bool
}

// New builds a Registry with every built-in language pre-registered but not
// yet initialized.
func New() *Registry {
	r := &Registry{
		setups: make(map[string]setupFunc),
		langs:  make(map[string]*Language),
		failed: make(map[string]bool),
	}
	r.register([]string{".go"}, setupGo)
	r.register([]string{".js", ".jsx", ".mjs", ".cjs"}, setupJavaScript)
	r.register([]string{".ts", ".tsx"}, setupTypeScript)
	r.register([]string{".py"}, setupPython)
	r.register([]string{".rs"}, setupRust)
	r.register([]string{".java"}, setupJava)
	r.register([]string{".cs"}, setupCSharp)
	r.register([]string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"}, setupCpp)
	r.register([]string{".php"}, setupPHP)
	return r
}

func (r *Registry) register(exts []string, fn setupFunc) {
	for _, ext := range exts {
		r.setups[ext] = fn
	}
}

// Supported reports whether ext has a registered grammar, without forcing
// initialization.
func (r *Registry) Supported(ext string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.setups[ext]
	return ok
}

// Get returns the Language for ext, initializing its grammar and query on
// first use. Initialization failures are cached so a broken grammar binding
// is only attempted once.
func (r *Registry) Get(ext string) (*Language, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lang, ok := r.langs[ext]; ok {
		return lang, nil
	}
	if r.failed[ext] {
		return nil, fmt.Errorf("langregistry: %s previously failed to initialize", ext)
	}

	fn, ok := r.setups[ext]
	if !ok {
		return nil, fmt.Errorf("langregistry: unsupported extension %s", ext)
	}

	lang := fn()
	if lang == nil {
		r.failed[ext] = true
		return nil, fmt.Errorf("langregistry: failed to initialize grammar for %s", ext)
	}
	r.langs[ext] = lang
	return lang, nil
}

func newLanguage(name string, languagePtr unsafe.Pointer, query string) *Language {
	grammar := tree_sitter.NewLanguage(languagePtr)
	q, _ := tree_sitter.NewQuery(grammar, query)
	// The tree-sitter Go binding can return a typed-nil error on success;
	// the only reliable success signal is a non-nil query.
	if q == nil {
		return nil
	}
	return &Language{Name: name, Grammar: grammar, Query: q}
}
