package btree

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// LabelFunc renders an item for debug output.
type LabelFunc func(item []byte) string

func hexLabel(item []byte) string {
	return hex.EncodeToString(item)
}

type nodeids struct {
	idTable map[*node]int
	max     int
}

func newtable() nodeids {
	return nodeids{
		idTable: make(map[*node]int),
		max:     1,
	}
}

func (ids *nodeids) alloc(nd *node) int {
	if id := ids.idTable[nd]; id > 0 {
		return id
	}
	ids.idTable[nd] = ids.max
	ids.max++
	return ids.max - 1
}

// ToDot outputs the internal structure of a tree in Graphviz DOT format
// (for debugging purposes). label renders items; nil selects hex output.
//
// Nodes shared with other tree handles are drawn highlighted.
func (t *Tree) ToDot(w io.Writer, label LabelFunc) {
	if label == nil {
		label = hexLabel
	}
	io.WriteString(w, "strict digraph {\n")
	io.WriteString(w, "\tnode [fontname=Arial,fontsize=12,shape=record];\n")
	if t != nil && t.root != nil {
		ids := newtable()
		var nodelist, edgelist strings.Builder
		t.walkNodes(t.root, 0, func(nd *node, depth int) {
			id := ids.alloc(nd)
			fields := make([]string, nd.n)
			for i := range fields {
				fields[i] = dotEscape(label(t.item(nd, i)))
			}
			fmt.Fprintf(&nodelist, "\t\"%d\" [label=\"%s\" %s];\n", id,
				strings.Join(fields, " | "), nodeDotStyles(nd))
			for _, child := range nd.children {
				fmt.Fprintf(&edgelist, "\t\"%d\" -> \"%d\";\n", id, ids.alloc(child))
			}
		})
		io.WriteString(w, nodelist.String())
		io.WriteString(w, edgelist.String())
	}
	io.WriteString(w, "}\n")
}

// Dump writes an indented outline of the tree, one node per line.
// label renders items; nil selects hex output.
func (t *Tree) Dump(w io.Writer, label LabelFunc) {
	if label == nil {
		label = hexLabel
	}
	if t == nil || t.root == nil {
		io.WriteString(w, "(empty)\n")
		return
	}
	t.walkNodes(t.root, 0, func(nd *node, depth int) {
		kind := "internal"
		if nd.leaf {
			kind = "leaf"
		}
		keys := make([]string, nd.n)
		for i := range keys {
			keys[i] = label(t.item(nd, i))
		}
		fmt.Fprintf(w, "%s- %s (size %d) [%s]", strings.Repeat("  ", depth), kind, nd.n,
			strings.Join(keys, " "))
		if nd.shared() {
			fmt.Fprintf(w, " shared=%d", nd.rc.Load())
		}
		io.WriteString(w, "\n")
	})
}

// walkNodes calls fn for every node in pre-order.
func (t *Tree) walkNodes(nd *node, depth int, fn func(nd *node, depth int)) {
	fn(nd, depth)
	if nd.leaf {
		return
	}
	for _, child := range nd.children {
		t.walkNodes(child, depth+1, fn)
	}
}

func nodeDotStyles(nd *node) string {
	s := ",style=filled"
	if nd.leaf {
		s += ",fillcolor=white"
	} else {
		s += ",color=black,fillcolor=\"#a3d7e4\""
	}
	if nd.shared() {
		s += ",fillcolor=\"#FFBB88\""
	}
	return s
}

func dotEscape(s string) string {
	r := strings.NewReplacer(`"`, `\"`, `|`, `\|`, `{`, `\{`, `}`, `\}`, `<`, `\<`, `>`, `\>`)
	return r.Replace(s)
}
