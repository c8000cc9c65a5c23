// Package tree implements the branching conversation history: an append-only
// tree of turns where each node is one role's message and each child is one
// alternative continuation of its parent.
//
// Nodes follow a two-state lifecycle. A node created empty (RoleEmpty, no
// content) is populated in place exactly once by the first Attach that
// targets it; after that its role, content, and extras are immutable and only
// its children sequence may grow. The tree never shrinks — pruning is out of
// scope for this package.
//
// Mutating operations are not safe for concurrent callers on the same parent
// without external serialization; the session layer provides that boundary
// for parallel work.
package tree

import (
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/arborworks/arbor/core/protocol"
)

// Extras keys recognized by Path when building provider messages. Everything
// else in Extras is opaque adapter bookkeeping.
const (
	ExtrasToolCalls  = "tool_calls"   // []protocol.ToolCall on assistant nodes
	ExtrasToolCallID = "tool_call_id" // string on tool result nodes
)

// Node is one turn in the conversation tree.
type Node struct {
	id        string
	role      protocol.Role
	content   string
	extras    map[string]any
	parent    *Node
	children  []*Node
	labels    map[string]struct{}
	populated bool
}

// NewRoot creates a populated, parentless node.
func NewRoot(role protocol.Role, content string, extras map[string]any) *Node {
	return &Node{
		id:        uuid.NewString(),
		role:      role,
		content:   content,
		extras:    extras,
		populated: true,
	}
}

// NewEmptyRoot creates a parentless node in the empty lifecycle state. The
// first Attach targeting it populates it in place.
func NewEmptyRoot() *Node {
	return &Node{id: uuid.NewString()}
}

// ID returns the node's stable identifier, preserved across snapshots.
func (n *Node) ID() string { return n.id }

// Role returns the node's role, or protocol.RoleEmpty before population.
func (n *Node) Role() protocol.Role { return n.role }

// Content returns the node's text content.
func (n *Node) Content() string { return n.content }

// Extras returns the adapter-owned payload attached at population time.
// Callers must treat the returned map as read-only.
func (n *Node) Extras() map[string]any { return n.extras }

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered children sequence.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ChildCount returns the number of children without copying.
func (n *Node) ChildCount() int { return len(n.children) }

// Populated reports whether the node has received content.
func (n *Node) Populated() bool { return n.populated }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// IsFork reports whether the node has more than one child.
func (n *Node) IsFork() bool { return len(n.children) > 1 }

// Index returns the node's position among its siblings, or 0 for the root.
func (n *Node) Index() int {
	if n.parent == nil {
		return 0
	}
	return slices.Index(n.parent.children, n)
}

// AddLabel attaches a label to the node. Labels survive snapshots.
func (n *Node) AddLabel(name string) {
	if n.labels == nil {
		n.labels = make(map[string]struct{})
	}
	n.labels[name] = struct{}{}
}

// HasLabel reports whether the node carries the named label.
func (n *Node) HasLabel(name string) bool {
	_, ok := n.labels[name]
	return ok
}

// Labels returns the node's labels sorted by name.
func (n *Node) Labels() []string {
	if len(n.labels) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.labels))
	for name := range n.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attach adds a turn under parent. If parent is still empty it is populated
// in place and returned; otherwise a new child is created, appended to
// parent's children, and returned.
func Attach(parent *Node, role protocol.Role, content string, extras map[string]any) *Node {
	if !parent.populated {
		parent.role = role
		parent.content = content
		parent.extras = extras
		parent.populated = true
		return parent
	}

	child := &Node{
		id:        uuid.NewString(),
		role:      role,
		content:   content,
		extras:    extras,
		parent:    parent,
		populated: true,
	}
	parent.children = append(parent.children, child)
	return child
}

// AttachDetached creates a populated child whose parent back-reference is set
// but which is not yet appended to parent's children. Parallel workers build
// private continuations this way; the coordinator later makes the child
// visible with Splice. The empty-parent populate transition never happens on
// this path.
func AttachDetached(parent *Node, role protocol.Role, content string, extras map[string]any) *Node {
	return &Node{
		id:        uuid.NewString(),
		role:      role,
		content:   content,
		extras:    extras,
		parent:    parent,
		populated: true,
	}
}

// Splice appends a detached node to its parent's children sequence, making a
// privately built continuation reachable from the shared tree. Callers must
// serialize Splice invocations against the same tree.
func Splice(n *Node) {
	if n.parent == nil {
		return
	}
	if slices.Contains(n.parent.children, n) {
		return
	}
	n.parent.children = append(n.parent.children, n)
}
