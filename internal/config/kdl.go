package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Overlay is a partially-specified configuration parsed from one
// .codecortx.kdl file. Every field is a pointer (or a slice) so that a
// setting the file does not mention stays unset and cannot clobber the
// value it would otherwise override — a file that says nothing about
// respect_gitignore must not switch it off.
type Overlay struct {
	ProjectRoot       *string
	ProjectName       *string
	MaxFileSize       *int64
	MaxFileCount      *int
	RespectGitignore  *bool
	WatchMode         *bool
	WatchDebounceMs   *int
	MaxMemoryMB       *int
	EvictionThreshold *float64
	Include           []string
	Exclude           []string
}

// LoadKDL reads and parses fileName under dir, returning nil if the file
// does not exist. A read or parse error is returned as-is; Load skips a
// file that fails either way and merges the remaining layers.
func LoadKDL(dir, fileName string) (*Overlay, error) {
	path := filepath.Join(dir, fileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (*Overlay, error) {
	o := &Overlay{}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse kdl config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						o.ProjectRoot = &s
					}
				case "name":
					if s, ok := firstStringArg(cn); ok {
						o.ProjectName = &s
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						size := int64(v)
						o.MaxFileSize = &size
					}
				case "max_file_count":
					if v, ok := firstIntArg(cn); ok {
						o.MaxFileCount = &v
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						o.RespectGitignore = &b
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						o.WatchMode = &b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						o.WatchDebounceMs = &v
					}
				}
			}
		case "memory":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_memory_mb":
					if v, ok := firstIntArg(cn); ok {
						o.MaxMemoryMB = &v
					}
				case "eviction_threshold":
					if f, ok := firstFloatArg(cn); ok {
						o.EvictionThreshold = &f
					}
				}
			}
		case "include":
			o.Include = append(o.Include, collectStringArgs(n)...)
		case "exclude":
			o.Exclude = append(o.Exclude, collectStringArgs(n)...)
		}
	}

	return o, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func parseIntEnv(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloatEnv(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
