package ast

import (
	"fmt"
	"strings"
)

// Print renders the tree as the indented XML-like form the `.outast`
// artifact uses: `<kind token="…">…</kind>`, one tag per line, children
// indented two spaces under their parent. A node with no children
// renders as a self-closing tag, carrying its token attribute if it has
// one.
func Print(root *Node) string {
	var b strings.Builder
	print(&b, root, 0)
	return b.String()
}

func print(b *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	attr := ""
	if n.Token != nil {
		attr = fmt.Sprintf(" token=%q", n.Token.Escaped())
	}
	if len(n.Children) == 0 {
		fmt.Fprintf(b, "%s<%s%s/>\n", indent, n.Kind, attr)
		return
	}
	fmt.Fprintf(b, "%s<%s%s>\n", indent, n.Kind, attr)
	for _, c := range n.Children {
		print(b, c, depth+1)
	}
	fmt.Fprintf(b, "%s</%s>\n", indent, n.Kind)
}
