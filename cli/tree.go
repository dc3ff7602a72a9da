// Directory tree display.
//
// Information Hiding:
// - Depth limiting through walk pruning
// - Connector layout for pre-order entries

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/richinex/replica/walker"
)

type treeNode struct {
	name  string
	depth int
	isDir bool
}

// collectTree walks root to maxDepth levels. Directories at maxDepth are
// listed but not descended into. Files are listed only when they would be
// part of a snapshot.
func collectTree(ctx context.Context, w walker.Walker, rules walker.SkipRules, root string, maxDepth int) ([]treeNode, error) {
	var nodes []treeNode
	err := w.Walk(ctx, root, func(e walker.Entry) bool {
		if e.RelPath == "." || e.RelPath == "" {
			return true
		}
		depth := strings.Count(e.RelPath, "/") + 1
		if !e.IsDir {
			if skip, _ := rules.SkipFile(e.Name, e.RelPath); !skip {
				nodes = append(nodes, treeNode{name: e.Name, depth: depth})
			}
			return true
		}
		nodes = append(nodes, treeNode{name: e.Name, depth: depth, isDir: true})
		return maxDepth <= 0 || depth < maxDepth
	})
	return nodes, err
}

// renderTree writes nodes with box-drawing connectors. nodes must be in
// pre-order.
func renderTree(out io.Writer, rootName string, nodes []treeNode) {
	fmt.Fprintln(out, dirStyle.Render(rootName+"/"))

	// open[d] reports whether the ancestor at depth d has later siblings.
	var open []bool
	for i, n := range nodes {
		last := isLastSibling(nodes, i)

		var prefix strings.Builder
		for d := 1; d < n.depth; d++ {
			if d-1 < len(open) && open[d-1] {
				prefix.WriteString("│   ")
			} else {
				prefix.WriteString("    ")
			}
		}
		if last {
			prefix.WriteString("└── ")
		} else {
			prefix.WriteString("├── ")
		}

		name := n.name
		if n.isDir {
			name = dirStyle.Render(name + "/")
		}
		fmt.Fprintln(out, prefix.String()+name)

		for len(open) < n.depth {
			open = append(open, false)
		}
		open = open[:n.depth]
		open[n.depth-1] = !last
	}
}

func isLastSibling(nodes []treeNode, i int) bool {
	for _, n := range nodes[i+1:] {
		if n.depth < nodes[i].depth {
			return true
		}
		if n.depth == nodes[i].depth {
			return false
		}
	}
	return true
}

func treeRootName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return filepath.Base(abs)
}
