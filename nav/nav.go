// Package nav exposes cursor navigation over a session for interactive
// presentation layers. Every operation returns a short, display-ready status
// string and repositions the cursor on success. Expected edge conditions —
// at root, no siblings, no fork found — are statuses, never errors.
package nav

import (
	"context"
	"fmt"

	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

// Navigator drives cursor movement on a session.
type Navigator struct {
	s *session.Session
}

// New creates a Navigator over the given session.
func New(s *session.Session) *Navigator {
	return &Navigator{s: s}
}

// Up moves the cursor to its parent.
func (n *Navigator) Up() (string, bool) {
	parent := n.s.Current().Parent()
	if parent == nil {
		return "at root", false
	}
	n.s.MoveTo(parent)
	return fmt.Sprintf("moved up to %s", describe(parent)), true
}

// Down moves the cursor to its first child.
func (n *Navigator) Down() (string, bool) {
	children := n.s.Current().Children()
	if len(children) == 0 {
		return "at leaf: no children below", false
	}
	n.s.MoveTo(children[0])
	return fmt.Sprintf("moved down to %s", describe(children[0])), true
}

// Left moves the cursor to the previous sibling, wrapping around at the
// first one.
func (n *Navigator) Left() (string, bool) {
	return n.step(-1)
}

// Right moves the cursor to the next sibling, wrapping around at the last
// one.
func (n *Navigator) Right() (string, bool) {
	return n.step(+1)
}

func (n *Navigator) step(delta int) (string, bool) {
	cur := n.s.Current()
	target, ok := tree.Sibling(cur, delta)
	if !ok {
		return "at root: no siblings", false
	}
	if target == cur {
		return "no siblings", false
	}
	n.s.MoveTo(target)
	return fmt.Sprintf("moved to sibling %d of %d",
		target.Index()+1, target.Parent().ChildCount()), true
}

// Root moves the cursor to the tree root.
func (n *Navigator) Root() (string, bool) {
	n.s.MoveTo(n.s.Root())
	return "moved to root", true
}

// PreviousFork moves the cursor to the nearest ancestor with more than one
// child.
func (n *Navigator) PreviousFork() (string, bool) {
	fork, ok := tree.PreviousFork(n.s.Current())
	if !ok {
		return "no fork above", false
	}
	n.s.MoveTo(fork)
	return fmt.Sprintf("moved to fork with %d branches", fork.ChildCount()), true
}

// NextFork moves the cursor to the nearest descendant with more than one
// child.
func (n *Navigator) NextFork() (string, bool) {
	fork, ok := tree.NextFork(n.s.Current())
	if !ok {
		return "no fork below", false
	}
	n.s.MoveTo(fork)
	return fmt.Sprintf("moved to fork with %d branches", fork.ChildCount()), true
}

// ListLeaves refreshes the session's leaf cache and returns a numbered
// listing for display.
func (n *Navigator) ListLeaves() (string, bool) {
	leaves := n.s.RefreshLeaves()
	if len(leaves) == 0 {
		return "no leaves", false
	}

	out := fmt.Sprintf("%d leaves:\n", len(leaves))
	for i, leaf := range leaves {
		out += fmt.Sprintf("  [%d] %s\n", i+1, describe(leaf))
	}
	return out, true
}

// JumpToLeaf moves the cursor to leaf number i (1-based) from the last
// ListLeaves call.
func (n *Navigator) JumpToLeaf(i int) (string, bool) {
	leaves := n.s.CachedLeaves()
	if len(leaves) == 0 {
		return "no leaves listed: run leaves first", false
	}
	if i < 1 || i > len(leaves) {
		return fmt.Sprintf("no such leaf: %d (have %d)", i, len(leaves)), false
	}
	n.s.MoveTo(leaves[i-1])
	return fmt.Sprintf("jumped to leaf %d: %s", i, describe(leaves[i-1])), true
}

// Label names the cursor node. Naming an existing label navigates to it
// instead.
func (n *Navigator) Label(name string) (string, bool) {
	if created := n.s.Label(context.Background(), name); !created {
		return fmt.Sprintf("label %q exists: moved to it", name), true
	}
	return fmt.Sprintf("labeled current node %q", name), true
}

// Goto moves the cursor to the node carrying the named label.
func (n *Navigator) Goto(name string) (string, bool) {
	if !n.s.GotoLabel(name) {
		return fmt.Sprintf("unknown label %q", name), false
	}
	return fmt.Sprintf("moved to label %q", name), true
}
