package utils

import (
	"path"
	"sort"
	"strings"
)

// FileNode represents a node in the file tree.
type FileNode struct {
	Name     string
	Path     string // slash path from the tree root (only set on file nodes)
	IsFile   bool
	Children map[string]*FileNode
}

// addChild adds (or retrieves) a child node.
func (n *FileNode) addChild(name string, isFile bool) *FileNode {
	if n.Children == nil {
		n.Children = make(map[string]*FileNode)
	}
	if child, ok := n.Children[name]; ok {
		return child
	}
	child := &FileNode{
		Name:   name,
		IsFile: isFile,
	}
	n.Children[name] = child
	return child
}

// BuildFileTree builds a tree from slash-separated relative paths.
func BuildFileTree(paths []string) *FileNode {
	root := &FileNode{Children: make(map[string]*FileNode)}
	for _, p := range paths {
		clean := path.Clean(strings.ReplaceAll(p, `\`, "/"))
		if clean == "." || clean == "" {
			continue
		}
		parts := strings.Split(clean, "/")
		current := root
		for i, part := range parts {
			isFile := i == len(parts)-1
			child := current.addChild(part, isFile)
			if isFile {
				child.Path = clean
			}
			current = child
		}
	}
	return root
}

// AnnotateFunc returns a suffix for a file path, or "" for none.
type AnnotateFunc func(path string) string

// TreeOptions controls RenderFileTree output.
type TreeOptions struct {
	// Emoji prefixes directories with 📂 and files with 📜.
	Emoji bool
	// Annotate, when set, is appended after file names.
	Annotate AnnotateFunc
	// Indent prefixes every line.
	Indent string
}

// RenderFileTree renders the children of root with branch characters,
// directories first, each group sorted by name.
func RenderFileTree(root *FileNode, opts TreeOptions) string {
	var b strings.Builder
	renderChildren(&b, root, opts.Indent, opts)
	return b.String()
}

func renderChildren(b *strings.Builder, node *FileNode, prefix string, opts TreeOptions) {
	names := sortedChildren(node)
	for i, name := range names {
		child := node.Children[name]
		isLast := i == len(names)-1

		branch := "┣ "
		next := prefix + "┃  "
		if isLast {
			branch = "┗ "
			next = prefix + "   "
		}

		b.WriteString(prefix)
		b.WriteString(branch)
		if opts.Emoji {
			if child.IsFile {
				b.WriteString("📜 ")
			} else {
				b.WriteString("📂 ")
			}
		}
		b.WriteString(child.Name)
		if child.IsFile && opts.Annotate != nil {
			if note := opts.Annotate(child.Path); note != "" {
				b.WriteString(" ")
				b.WriteString(note)
			}
		}
		b.WriteString("\n")

		if !child.IsFile {
			renderChildren(b, child, next, opts)
		}
	}
}

func sortedChildren(node *FileNode) []string {
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := node.Children[names[i]], node.Children[names[j]]
		if a.IsFile != b.IsFile {
			return !a.IsFile
		}
		return names[i] < names[j]
	})
	return names
}
