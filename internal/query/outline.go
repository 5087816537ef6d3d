package query

import (
	"fmt"
	"sort"
	"strings"

	internalerrors "github.com/kensave/CodeCortX-MCP/internal/errors"
	"github.com/kensave/CodeCortX-MCP/internal/types"
	"github.com/kensave/CodeCortX-MCP/pkg/pathutil"
)

// outlineOrder is the fixed display order for get_file_outline and
// get_directory_outline: modules, then classes/structs/interfaces, then
// functions/methods, then constants/variables.
var outlineOrder = []types.Kind{
	types.KindModule,
	types.KindImport,
	types.KindClass,
	types.KindStruct,
	types.KindInterface,
	types.KindEnum,
	types.KindTypeAlias,
	types.KindFunction,
	types.KindMethod,
	types.KindConstructor,
	types.KindConstant,
	types.KindStatic,
	types.KindVariable,
	types.KindProperty,
	types.KindField,
	types.KindMacro,
	types.KindOther,
}

// FileOutline is a file's symbols grouped by kind in display order.
type FileOutline struct {
	Path    string         `json:"path"`
	Groups  []OutlineGroup `json:"groups"`
	Text    string         `json:"text"`
	Symbols int            `json:"symbol_count"`
}

// OutlineGroup is every symbol of one kind in a file or directory outline.
type OutlineGroup struct {
	Kind    string         `json:"kind"`
	Symbols []SymbolResult `json:"symbols"`
}

// GetFileOutline groups filePath's symbols by kind in a fixed display
// order and renders a stable textual tree with line ranges and signatures.
func (e *Engine) GetFileOutline(filePath string) (FileOutline, error) {
	rel := e.normalize(filePath)
	info, ok := e.Store.FileInfoByPath(rel)
	if !ok {
		return FileOutline{}, internalerrors.NewNotIndexedError(filePath, fmt.Errorf("file %q is not indexed", rel))
	}
	e.touch(info)

	syms := e.Store.FileSymbols(info.ID)
	groups := groupByKind(syms, func(sym *types.Symbol) SymbolResult {
		return e.render(sym, false)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rel)
	for _, g := range groups {
		fmt.Fprintf(&b, "  %s:\n", g.Kind)
		for _, sym := range g.Symbols {
			writeSymbolLine(&b, sym, "    ")
		}
	}

	return FileOutline{Path: rel, Groups: groups, Text: b.String(), Symbols: len(syms)}, nil
}

// DirectoryOutline is a file-by-file grouped listing restricted to the
// requested kinds, with a summary symbol count.
type DirectoryOutline struct {
	Directory string        `json:"directory"`
	Files     []FileOutline `json:"files"`
	Text      string        `json:"text"`
	Total     int           `json:"total_symbols"`
}

// GetDirectoryOutline walks the store's files under directoryPath, emitting
// a per-file grouped listing restricted to includes (kinds). An empty
// includes list defaults to class/struct/interface.
func (e *Engine) GetDirectoryOutline(directoryPath string, includes []string) DirectoryOutline {
	dir := e.normalize(directoryPath)
	if dir != "" && dir != "." {
		dir = strings.TrimSuffix(dir, "/") + "/"
	} else {
		dir = ""
	}

	wantKinds := includes
	if len(wantKinds) == 0 {
		wantKinds = []string{"class", "struct", "interface"}
	}
	kindSet := make(map[types.Kind]bool, len(wantKinds))
	for _, k := range wantKinds {
		kindSet[types.ParseKind(k)] = true
	}

	var infos []types.FileInfo
	e.Store.IterFiles(func(info types.FileInfo) bool {
		if dir == "" || strings.HasPrefix(info.Path, dir) {
			infos = append(infos, info)
		}
		return true
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })

	var b strings.Builder
	label := directoryPath
	if label == "" {
		label = "."
	}
	fmt.Fprintf(&b, "%s\n", label)

	var files []FileOutline
	total := 0
	for _, info := range infos {
		syms := e.Store.FileSymbols(info.ID)
		var filtered []*types.Symbol
		for _, sym := range syms {
			if kindSet[sym.Kind] {
				filtered = append(filtered, sym)
			}
		}
		if len(filtered) == 0 {
			continue
		}
		groups := groupByKind(filtered, func(sym *types.Symbol) SymbolResult {
			return e.render(sym, false)
		})

		fmt.Fprintf(&b, "  %s\n", info.Path)
		for _, g := range groups {
			fmt.Fprintf(&b, "    %s:\n", g.Kind)
			for _, sym := range g.Symbols {
				writeSymbolLine(&b, sym, "      ")
			}
		}

		files = append(files, FileOutline{Path: info.Path, Groups: groups, Symbols: len(filtered)})
		total += len(filtered)
	}
	fmt.Fprintf(&b, "%d symbols in %d files\n", total, len(files))

	return DirectoryOutline{Directory: label, Files: files, Text: b.String(), Total: total}
}

// normalize converts a possibly-absolute caller path to the project-relative
// form the store keys files by.
func (e *Engine) normalize(p string) string {
	if p == "" {
		return ""
	}
	return pathutil.ToRelative(p, e.Root)
}

func groupByKind(syms []*types.Symbol, render func(*types.Symbol) SymbolResult) []OutlineGroup {
	byKind := make(map[types.Kind][]*types.Symbol)
	for _, sym := range syms {
		byKind[sym.Kind] = append(byKind[sym.Kind], sym)
	}

	var groups []OutlineGroup
	for _, kind := range outlineOrder {
		members := byKind[kind]
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Location.StartLine < members[j].Location.StartLine
		})
		results := make([]SymbolResult, 0, len(members))
		for _, sym := range members {
			results = append(results, render(sym))
		}
		groups = append(groups, OutlineGroup{Kind: kind.String(), Symbols: results})
	}
	return groups
}

func writeSymbolLine(b *strings.Builder, sym SymbolResult, indent string) {
	fmt.Fprintf(b, "%s%s (%d-%d)", indent, sym.Name, sym.StartLine, sym.EndLine)
	if sym.Signature != "" {
		fmt.Fprintf(b, " %s", sym.Signature)
	}
	b.WriteString("\n")
}
