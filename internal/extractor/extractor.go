// Package extractor is the syntactic extractor (component C2): given raw
// source bytes and a language from the registry, it parses the file and
// runs the language's query over the tree, producing the Symbol and
// Reference slices the store indexes, following the capture naming
// contract documented in internal/langregistry.
package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kensave/CodeCortX-MCP/internal/langregistry"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

// Result holds everything extracted from a single file.
type Result struct {
	Symbols    []*types.Symbol
	References []types.Reference
}

// Extract parses content with lang's grammar and runs lang's query over the
// resulting tree, returning the symbols and references it finds. A fresh
// parser is created per call: tree-sitter parsers carry mutable state and
// must not be shared across the concurrent extraction workers.
func Extract(lang *langregistry.Language, fileID types.FileID, content []byte) (*Result, error) {
	parser, err := lang.NewParser()
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errParseFailed
	}
	defer tree.Close()

	return ExtractFromTree(lang, tree, fileID, content), nil
}

// candidate is a symbol match still subject to the first-pattern-wins
// tie-break: when two patterns capture a definition at the same (name,
// start byte), the one earlier in the query source is kept.
type candidate struct {
	symbol       *types.Symbol
	defRefLoc    types.Location
	patternIndex uint
}

type symbolKey struct {
	name      string
	startByte uint32
}

// ExtractFromTree runs lang's query over an already-parsed tree. A partial
// tree from a recovering parse is walked as-is: whatever the parser
// salvaged still yields symbols.
func ExtractFromTree(lang *langregistry.Language, tree *tree_sitter.Tree, fileID types.FileID, content []byte) *Result {
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(lang.Query, tree.RootNode(), content)
	captureNames := lang.Query.CaptureNames()

	res := &Result{}
	seen := make(map[symbolKey]*candidate)
	var order []symbolKey

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		// Resolve each ".name" sub-capture in this match up front so the
		// definition capture can attach the right identifier text.
		names := make(map[string]string, 4)
		nameNodes := make(map[string]tree_sitter.Node, 4)
		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			if strings.HasSuffix(captureName, ".name") {
				node := c.Node
				names[captureName] = nodeText(&node, content)
				nameNodes[captureName] = node
			}
		}

		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			node := c.Node

			switch {
			case strings.HasSuffix(captureName, ".definition"):
				kindName := strings.TrimSuffix(captureName, ".definition")
				kind := types.ParseKind(kindName)
				name := names[kindName+".name"]
				if name == "" {
					continue
				}
				if kind == types.KindImport {
					res.References = append(res.References, types.Reference{
						SymbolName: trimQuotes(name),
						Kind:       types.ReferenceImport,
						Location:   locationOf(&node, fileID),
					})
					continue
				}

				key := symbolKey{name: name, startByte: uint32(node.StartByte())}
				if prev, ok := seen[key]; ok {
					if uint(match.PatternIndex) >= prev.patternIndex {
						continue
					}
				} else {
					order = append(order, key)
				}

				nameNode, hasNameNode := nameNodes[kindName+".name"]
				defLoc := locationOf(&node, fileID)
				refNode := &node
				if hasNameNode {
					refNode = &nameNode
				}
				seen[key] = &candidate{
					patternIndex: uint(match.PatternIndex),
					defRefLoc:    locationOf(refNode, fileID),
					symbol: &types.Symbol{
						Name:       name,
						Kind:       kind,
						Visibility: visibilityOf(&node, name, lang.Name, content),
						Location:   defLoc,
						Namespace:  namespaceOf(&node, content),
						Signature:  firstLine(nodeText(&node, content)),
						DocComment: docCommentOf(&node, content),
					},
				}

			case captureName == "reference.name":
				res.References = append(res.References, types.Reference{
					SymbolName: nodeText(&node, content),
					Kind:       types.ReferenceUsage,
					Location:   locationOf(&node, fileID),
				})
			}
		}
	}

	res.Symbols = make([]*types.Symbol, 0, len(order))
	for _, key := range order {
		c := seen[key]
		res.Symbols = append(res.Symbols, c.symbol)
		res.References = append(res.References, types.Reference{
			SymbolName: c.symbol.Name,
			Kind:       types.ReferenceDefinition,
			Location:   c.defRefLoc,
		})
	}
	return res
}

func nodeText(n *tree_sitter.Node, content []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func trimQuotes(s string) string {
	return strings.Trim(s, "\"'`<>")
}

func locationOf(n *tree_sitter.Node, fileID types.FileID) types.Location {
	start := n.StartPosition()
	end := n.EndPosition()
	return types.Location{
		FileID:    fileID,
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
		StartByte: uint32(n.StartByte()),
	}
}

// namespaceKinds are the node kinds whose names contribute to a symbol's
// enclosing dotted namespace path, across every supported grammar.
var namespaceKinds = map[string]bool{
	"class_definition":      true, // python
	"class_declaration":     true, // js/ts/java/c#/php
	"class_specifier":       true, // c++
	"mod_item":              true, // rust
	"impl_item":             true, // rust
	"trait_item":            true, // rust
	"namespace_declaration": true, // c#
	"namespace_definition":  true, // c++/php
	"interface_declaration": true,
	"enum_declaration":      true,
}

// namespaceOf walks def's ancestors collecting the names of enclosing
// module/class-like nodes, outermost first, joined with dots. Languages
// without syntactic nesting (Go top-level declarations) produce "".
func namespaceOf(def *tree_sitter.Node, content []byte) string {
	var parts []string
	for n := def.Parent(); n != nil; n = n.Parent() {
		if !namespaceKinds[n.Kind()] {
			continue
		}
		name := n.ChildByFieldName("name")
		if name == nil {
			// Rust impl blocks name their type via the "type" field.
			name = n.ChildByFieldName("type")
		}
		if name == nil {
			continue
		}
		parts = append(parts, nodeText(name, content))
	}
	// Reverse: ancestors were collected innermost first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// docCommentOf collects the contiguous run of comment siblings immediately
// preceding def, joined with newlines in source order.
func docCommentOf(def *tree_sitter.Node, content []byte) string {
	var comments []string
	expectLine := def.StartPosition().Row
	for n := def.PrevSibling(); n != nil; n = n.PrevSibling() {
		if !strings.Contains(n.Kind(), "comment") {
			break
		}
		// A blank line between the comment and the definition detaches it.
		if n.EndPosition().Row+1 < expectLine {
			break
		}
		comments = append(comments, nodeText(n, content))
		expectLine = n.StartPosition().Row
	}
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return strings.Join(comments, "\n")
}

// visibilityOf inspects the definition node for an explicit visibility
// modifier (Rust pub, Java/C#/PHP access modifiers). Absent one, a Rust
// item is private, a leading underscore marks a name private, Go falls back
// to the identifier's leading case, and anything else is public.
func visibilityOf(def *tree_sitter.Node, name, langName string, content []byte) types.Visibility {
	for i := uint(0); i < def.ChildCount(); i++ {
		child := def.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "visibility_modifier", "modifiers", "modifier":
			text := nodeText(child, content)
			if strings.Contains(text, "private") || strings.Contains(text, "protected") {
				return types.VisibilityPrivate
			}
			if child.Kind() == "visibility_modifier" || strings.Contains(text, "public") {
				return types.VisibilityPublic
			}
		}
	}
	if name == "" {
		return types.VisibilityPublic
	}
	if langName == "rust" || strings.HasPrefix(name, "_") {
		return types.VisibilityPrivate
	}
	if r := name[0]; langName == "go" && r >= 'a' && r <= 'z' {
		return types.VisibilityPrivate
	}
	return types.VisibilityPublic
}
