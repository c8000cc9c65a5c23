package tree_test

import (
	"testing"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/tree"
)

func TestNewRoot_Populated(t *testing.T) {
	root := tree.NewRoot(protocol.RoleSystem, "be helpful", nil)

	if !root.Populated() {
		t.Error("NewRoot should produce a populated node")
	}
	if root.Role() != protocol.RoleSystem {
		t.Errorf("got role %q, want %q", root.Role(), protocol.RoleSystem)
	}
	if root.Parent() != nil {
		t.Error("root should have no parent")
	}
	if root.ID() == "" {
		t.Error("root ID should not be empty")
	}
}

func TestAttach_PopulatesEmptyRootInPlace(t *testing.T) {
	root := tree.NewEmptyRoot()
	if root.Populated() {
		t.Fatal("empty root should start unpopulated")
	}

	got := tree.Attach(root, protocol.RoleUser, "hello", nil)

	if got != root {
		t.Error("attaching to an empty node should populate it in place, not create a child")
	}
	if !root.Populated() {
		t.Error("node should be populated after Attach")
	}
	if root.Content() != "hello" {
		t.Errorf("got content %q, want %q", root.Content(), "hello")
	}
	if root.ChildCount() != 0 {
		t.Errorf("got %d children, want 0", root.ChildCount())
	}
}

func TestAttach_PopulateHappensExactlyOnce(t *testing.T) {
	root := tree.NewEmptyRoot()
	first := tree.Attach(root, protocol.RoleUser, "first", nil)
	second := tree.Attach(root, protocol.RoleAssistant, "second", nil)

	if first != root {
		t.Error("first attach should populate in place")
	}
	if second == root {
		t.Error("second attach should create a child, not repopulate")
	}
	if root.Content() != "first" {
		t.Errorf("population should be immutable: got %q, want %q", root.Content(), "first")
	}
	if second.Parent() != root {
		t.Error("second attach should parent under the root")
	}
}

func TestAttach_ChildrenOrder(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)

	a := tree.Attach(root, protocol.RoleAssistant, "a", nil)
	b := tree.Attach(root, protocol.RoleAssistant, "b", nil)
	c := tree.Attach(root, protocol.RoleAssistant, "c", nil)

	children := root.Children()
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	for i, want := range []*tree.Node{a, b, c} {
		if children[i] != want {
			t.Errorf("child %d: got %q, want %q", i, children[i].Content(), want.Content())
		}
	}
	if b.Index() != 1 {
		t.Errorf("got index %d, want 1", b.Index())
	}
}

func TestSibling_Wraparound(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	a := tree.Attach(root, protocol.RoleAssistant, "a", nil)
	b := tree.Attach(root, protocol.RoleAssistant, "b", nil)
	c := tree.Attach(root, protocol.RoleAssistant, "c", nil)

	if got, _ := tree.Sibling(c, +1); got != a {
		t.Errorf("next from last: got %q, want %q", got.Content(), a.Content())
	}
	if got, _ := tree.Sibling(a, -1); got != c {
		t.Errorf("previous from first: got %q, want %q", got.Content(), c.Content())
	}
	if got, _ := tree.Sibling(a, +1); got != b {
		t.Errorf("next from first: got %q, want %q", got.Content(), b.Content())
	}
}

func TestSibling_SingleChildWrapsToSelf(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	only := tree.Attach(root, protocol.RoleAssistant, "only", nil)

	got, ok := tree.Sibling(only, +1)
	if !ok {
		t.Fatal("single child should still resolve a sibling")
	}
	if got != only {
		t.Error("single child should wrap to itself")
	}
}

func TestSibling_RootHasNone(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)

	if _, ok := tree.Sibling(root, +1); ok {
		t.Error("parentless node should report no siblings")
	}
}

func TestRoot_FromDeepNode(t *testing.T) {
	root := tree.NewRoot(protocol.RoleSystem, "sys", nil)
	mid := tree.Attach(root, protocol.RoleUser, "mid", nil)
	leaf := tree.Attach(mid, protocol.RoleAssistant, "leaf", nil)

	if got := tree.Root(leaf); got != root {
		t.Error("Root should walk back to the parentless node")
	}
}

func TestCount_WholeTreeFromAnyNode(t *testing.T) {
	root := tree.NewRoot(protocol.RoleSystem, "sys", nil)
	a := tree.Attach(root, protocol.RoleUser, "a", nil)
	tree.Attach(root, protocol.RoleUser, "b", nil)
	leaf := tree.Attach(a, protocol.RoleAssistant, "leaf", nil)

	for _, n := range []*tree.Node{root, a, leaf} {
		if got := tree.Count(n); got != 4 {
			t.Errorf("Count from %q: got %d, want 4", n.Content(), got)
		}
	}
}

func TestLeaves_DepthFirstOrder(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	a := tree.Attach(root, protocol.RoleAssistant, "a", nil)
	b := tree.Attach(root, protocol.RoleAssistant, "b", nil)
	a1 := tree.Attach(a, protocol.RoleUser, "a1", nil)
	a2 := tree.Attach(a, protocol.RoleUser, "a2", nil)

	leaves := tree.Leaves(root)
	want := []*tree.Node{a1, a2, b}
	if len(leaves) != len(want) {
		t.Fatalf("got %d leaves, want %d", len(leaves), len(want))
	}
	for i := range want {
		if leaves[i] != want[i] {
			t.Errorf("leaf %d: got %q, want %q", i, leaves[i].Content(), want[i].Content())
		}
	}
}

func TestPreviousFork_NearestAncestor(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	tree.Attach(root, protocol.RoleAssistant, "x", nil)
	fork := tree.Attach(root, protocol.RoleAssistant, "fork-branch", nil)
	under := tree.Attach(fork, protocol.RoleUser, "under", nil)

	got, ok := tree.PreviousFork(under)
	if !ok {
		t.Fatal("expected a fork above")
	}
	if got != root {
		t.Errorf("got %q, want the root fork", got.Content())
	}

	if _, ok := tree.PreviousFork(root); ok {
		t.Error("root should have no fork above")
	}
}

func TestNextFork_BreadthFirst(t *testing.T) {
	// A deep fork along the first branch and a shallow fork along the
	// second: breadth-first search must find the shallow one.
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	left := tree.Attach(root, protocol.RoleAssistant, "left", nil)
	right := tree.Attach(root, protocol.RoleAssistant, "right", nil)

	leftChild := tree.Attach(left, protocol.RoleUser, "left-child", nil)
	deepFork := tree.Attach(leftChild, protocol.RoleAssistant, "deep", nil)
	tree.Attach(deepFork, protocol.RoleUser, "d1", nil)
	tree.Attach(deepFork, protocol.RoleUser, "d2", nil)

	tree.Attach(right, protocol.RoleUser, "r1", nil)
	tree.Attach(right, protocol.RoleUser, "r2", nil)

	got, ok := tree.NextFork(root)
	if !ok {
		t.Fatal("expected a fork below")
	}
	if got != right {
		t.Errorf("got %q, want the shallower fork %q", got.Content(), right.Content())
	}
}

func TestNextFork_ExcludesSelf(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	tree.Attach(root, protocol.RoleAssistant, "a", nil)
	tree.Attach(root, protocol.RoleAssistant, "b", nil)

	if _, ok := tree.NextFork(root); ok {
		t.Error("NextFork should not return the starting node itself")
	}
}

func TestPath_RootToNode(t *testing.T) {
	root := tree.NewRoot(protocol.RoleSystem, "sys", nil)
	q := tree.Attach(root, protocol.RoleUser, "question", nil)
	a := tree.Attach(q, protocol.RoleAssistant, "answer", nil)

	path := tree.Path(a)
	wantRoles := []protocol.Role{protocol.RoleSystem, protocol.RoleUser, protocol.RoleAssistant}
	if len(path) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(path), len(wantRoles))
	}
	for i, role := range wantRoles {
		if path[i].Role != role {
			t.Errorf("message %d: got role %q, want %q", i, path[i].Role, role)
		}
	}
	if path[2].Content != "answer" {
		t.Errorf("got content %q, want %q", path[2].Content, "answer")
	}
}

func TestPath_SkipsUnpopulatedNodes(t *testing.T) {
	root := tree.NewEmptyRoot()
	// Populate the root, then attach under it; only populated turns appear.
	first := tree.Attach(root, protocol.RoleUser, "hello", nil)
	reply := tree.Attach(first, protocol.RoleAssistant, "hi", nil)

	path := tree.Path(reply)
	if len(path) != 2 {
		t.Fatalf("got %d messages, want 2", len(path))
	}

	empty := tree.NewEmptyRoot()
	if got := tree.Path(empty); len(got) != 0 {
		t.Errorf("path of an unpopulated root: got %d messages, want 0", len(got))
	}
}

func TestPath_ToolExtras(t *testing.T) {
	calls := []protocol.ToolCall{{ID: "call_1", Name: "get_weather", Arguments: `{"city":"NYC"}`}}

	root := tree.NewRoot(protocol.RoleUser, "weather?", nil)
	assistant := tree.Attach(root, protocol.RoleAssistant, "", map[string]any{
		tree.ExtrasToolCalls: calls,
	})
	result := tree.Attach(assistant, protocol.RoleTool, `{"temp": 72}`, map[string]any{
		tree.ExtrasToolCallID: "call_1",
	})

	path := tree.Path(result)
	if len(path) != 3 {
		t.Fatalf("got %d messages, want 3", len(path))
	}
	if len(path[1].ToolCalls) != 1 || path[1].ToolCalls[0].ID != "call_1" {
		t.Errorf("assistant message should carry the tool call, got %+v", path[1].ToolCalls)
	}
	if path[2].ToolCallID != "call_1" {
		t.Errorf("got tool_call_id %q, want %q", path[2].ToolCallID, "call_1")
	}
}

func TestAttachDetached_InvisibleUntilSplice(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)

	detached := tree.AttachDetached(root, protocol.RoleAssistant, "private", nil)

	if detached.Parent() != root {
		t.Error("detached node should reference its parent")
	}
	if root.ChildCount() != 0 {
		t.Errorf("detached node should be invisible: got %d children, want 0", root.ChildCount())
	}

	tree.Splice(detached)
	if root.ChildCount() != 1 {
		t.Fatalf("after splice: got %d children, want 1", root.ChildCount())
	}
	if root.Children()[0] != detached {
		t.Error("spliced node should appear in the children sequence")
	}
}

func TestSplice_Idempotent(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	detached := tree.AttachDetached(root, protocol.RoleAssistant, "private", nil)

	tree.Splice(detached)
	tree.Splice(detached)

	if root.ChildCount() != 1 {
		t.Errorf("double splice: got %d children, want 1", root.ChildCount())
	}
}

func TestSplice_OrderFollowsCallOrder(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	first := tree.AttachDetached(root, protocol.RoleAssistant, "first", nil)
	second := tree.AttachDetached(root, protocol.RoleAssistant, "second", nil)

	// Splice in reverse creation order; children order follows splice order.
	tree.Splice(second)
	tree.Splice(first)

	children := root.Children()
	if children[0] != second || children[1] != first {
		t.Error("children order should follow splice order")
	}
}

func TestLabels_SortedAndQueryable(t *testing.T) {
	n := tree.NewRoot(protocol.RoleUser, "origin", nil)
	n.AddLabel("zeta")
	n.AddLabel("alpha")

	if !n.HasLabel("zeta") || !n.HasLabel("alpha") {
		t.Error("labels should be queryable after AddLabel")
	}
	if n.HasLabel("missing") {
		t.Error("HasLabel should be false for unknown labels")
	}

	labels := n.Labels()
	if len(labels) != 2 || labels[0] != "alpha" || labels[1] != "zeta" {
		t.Errorf("got labels %v, want [alpha zeta]", labels)
	}
}

func TestRestoreNode_PreservesIdentityAndOrder(t *testing.T) {
	root := tree.RestoreNode(nil, "id-root", protocol.RoleSystem, "sys", nil, []string{"start"}, true)
	a := tree.RestoreNode(root, "id-a", protocol.RoleUser, "a", nil, nil, true)
	tree.RestoreNode(root, "id-b", protocol.RoleUser, "b", nil, nil, true)

	if root.ID() != "id-root" {
		t.Errorf("got ID %q, want %q", root.ID(), "id-root")
	}
	if !root.HasLabel("start") {
		t.Error("restored node should keep its labels")
	}
	children := root.Children()
	if len(children) != 2 || children[0] != a {
		t.Error("restore order should reproduce children order")
	}

	empty := tree.RestoreNode(nil, "id-e", protocol.RoleEmpty, "", nil, nil, false)
	if empty.Populated() {
		t.Error("restoring an empty record should recreate the empty state")
	}
}

func TestChildren_DefensiveCopy(t *testing.T) {
	root := tree.NewRoot(protocol.RoleUser, "origin", nil)
	tree.Attach(root, protocol.RoleAssistant, "a", nil)

	children := root.Children()
	children[0] = nil

	if root.Children()[0] == nil {
		t.Error("mutating the returned slice should not affect the tree")
	}
}
