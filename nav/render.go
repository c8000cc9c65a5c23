package nav

import (
	"fmt"
	"strings"

	"github.com/arborworks/arbor/tree"
)

const previewLength = 60

// describe summarizes a node for status strings: role plus a one-line
// content preview.
func describe(n *tree.Node) string {
	if !n.Populated() {
		return "(empty node)"
	}

	preview := strings.Join(strings.Fields(n.Content()), " ")
	if len(preview) > previewLength {
		preview = preview[:previewLength] + "..."
	}
	return fmt.Sprintf("[%s] %s", n.Role(), preview)
}

// Render produces a full read-only display of a node: role, labels,
// content, and a numbered list of its children. It never mutates the tree.
func Render(n *tree.Node) string {
	var b strings.Builder

	fmt.Fprintf(&b, "role: %s\n", n.Role())
	if labels := n.Labels(); len(labels) > 0 {
		fmt.Fprintf(&b, "labels: %s\n", strings.Join(labels, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n", n.Content())

	children := n.Children()
	if len(children) > 0 {
		fmt.Fprintf(&b, "\n%d continuations:\n", len(children))
		for i, child := range children {
			fmt.Fprintf(&b, "  [%d] %s\n", i+1, describe(child))
		}
	}
	return b.String()
}
