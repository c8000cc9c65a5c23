package tree

import "github.com/arborworks/arbor/core/protocol"

// RestoreNode rebuilds a node from its portable form, preserving its
// identifier and label set. When parent is non-nil the node is appended to
// the parent's children, so callers restoring a snapshot reproduce children
// order by restoring in order. An unpopulated record recreates the empty
// lifecycle state.
func RestoreNode(parent *Node, id string, role protocol.Role, content string, extras map[string]any, labels []string, populated bool) *Node {
	n := &Node{
		id:        id,
		role:      role,
		content:   content,
		extras:    extras,
		parent:    parent,
		populated: populated,
	}
	for _, name := range labels {
		n.AddLabel(name)
	}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}
