package tree

import "github.com/arborworks/arbor/core/protocol"

// Root walks parent links from n to the parentless node. O(depth).
func Root(n *Node) *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Count returns the number of nodes in n's whole tree, counted from the
// root rather than from n. Diagnostic helper.
func Count(n *Node) int {
	total := 0
	stack := []*Node{Root(n)}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total++
		stack = append(stack, cur.children...)
	}
	return total
}

// Leaves collects the childless nodes reachable from n, depth-first in
// children order. The traversal does not mutate the tree and is safe to
// recompute at any time.
func Leaves(n *Node) []*Node {
	var leaves []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(cur.children) == 0 {
			leaves = append(leaves, cur)
			continue
		}
		// Push in reverse so children pop in array order.
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
	return leaves
}

// PreviousFork walks strictly upward from n and returns the nearest ancestor
// with more than one child. The second result is false when the root is
// reached without finding a fork.
func PreviousFork(n *Node) (*Node, bool) {
	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur.IsFork() {
			return cur, true
		}
	}
	return nil, false
}

// NextFork searches strictly downward from n (excluding n itself) for the
// nearest descendant with more than one child. Breadth-first order guarantees
// the fewest-edges match, with ties broken by children-array order. The
// second result is false when no descendant forks.
func NextFork(n *Node) (*Node, bool) {
	queue := append([]*Node(nil), n.children...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.IsFork() {
			return cur, true
		}
		queue = append(queue, cur.children...)
	}
	return nil, false
}

// Sibling moves delta steps among n's siblings, wrapping around at the ends
// rather than clamping. A single child wraps to itself. The second result is
// false when n has no parent.
func Sibling(n *Node, delta int) (*Node, bool) {
	if n.parent == nil {
		return nil, false
	}
	count := len(n.parent.children)
	idx := (n.Index() + delta) % count
	if idx < 0 {
		idx += count
	}
	return n.parent.children[idx], true
}

// Path builds the root-to-n message sequence handed to providers. Empty
// nodes are skipped. The ExtrasToolCalls and ExtrasToolCallID keys, when
// present, populate the tool fields of the corresponding message.
func Path(n *Node) []protocol.Message {
	var rev []*Node
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur)
	}

	msgs := make([]protocol.Message, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		node := rev[i]
		if !node.populated {
			continue
		}
		msg := protocol.Message{Role: node.role, Content: node.content}
		if calls, ok := node.extras[ExtrasToolCalls].([]protocol.ToolCall); ok {
			msg.ToolCalls = calls
		}
		if id, ok := node.extras[ExtrasToolCallID].(string); ok {
			msg.ToolCallID = id
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
