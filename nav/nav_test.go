package nav_test

import (
	"context"
	"strings"
	"testing"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/nav"
	"github.com/arborworks/arbor/provider"
	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

type echoProvider struct{}

func (echoProvider) Generate(_ context.Context, path []protocol.Message) (provider.Reply, error) {
	return provider.Reply{
		Text: "re: " + path[len(path)-1].Content,
		Role: protocol.RoleAssistant,
	}, nil
}

func (echoProvider) HasPendingToolCalls() bool { return false }

func (echoProvider) ClearPendingToolState() {}

func (p echoProvider) Fork() provider.Provider { return p }

// forkedSession builds sys → {a, b, c} with the cursor back at the root.
func forkedSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(echoProvider{}, session.WithSystemPrompt("sys"))
	for _, prompt := range []string{"a", "b", "c"} {
		if _, err := s.Advance(context.Background(), prompt, protocol.RoleUser); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		s.MoveTo(s.Root())
	}
	return s
}

func TestUp_AtRoot(t *testing.T) {
	s := session.New(echoProvider{}, session.WithSystemPrompt("sys"))
	n := nav.New(s)

	status, ok := n.Up()
	if ok {
		t.Error("Up at root should not move")
	}
	if status != "at root" {
		t.Errorf("got status %q, want %q", status, "at root")
	}
}

func TestUpDown_RoundTrip(t *testing.T) {
	s := forkedSession(t)
	n := nav.New(s)

	status, ok := n.Down()
	if !ok {
		t.Fatalf("Down failed: %s", status)
	}
	if s.Current().Content() != "a" {
		t.Errorf("Down should land on the first child, got %q", s.Current().Content())
	}

	if _, ok := n.Up(); !ok {
		t.Fatal("Up should succeed below the root")
	}
	if s.Current() != s.Root() {
		t.Error("Up should return to the root")
	}
}

func TestDown_AtLeaf(t *testing.T) {
	s := session.New(echoProvider{}, session.WithSystemPrompt("sys"))
	n := nav.New(s)

	status, ok := n.Down()
	if ok {
		t.Error("Down at a leaf should not move")
	}
	if !strings.Contains(status, "no children") {
		t.Errorf("got status %q, want a no-children status", status)
	}
}

func TestLeftRight_Wraparound(t *testing.T) {
	s := forkedSession(t)
	n := nav.New(s)
	n.Down() // on "a"

	if _, ok := n.Left(); !ok {
		t.Fatal("Left should wrap")
	}
	if s.Current().Content() != "c" {
		t.Errorf("Left from first should wrap to last, got %q", s.Current().Content())
	}

	if _, ok := n.Right(); !ok {
		t.Fatal("Right should wrap")
	}
	if s.Current().Content() != "a" {
		t.Errorf("Right from last should wrap to first, got %q", s.Current().Content())
	}
}

func TestLeftRight_EdgeStatuses(t *testing.T) {
	s := session.New(echoProvider{}, session.WithSystemPrompt("sys"))
	n := nav.New(s)

	status, ok := n.Right()
	if ok {
		t.Error("Right at root should not move")
	}
	if status != "at root: no siblings" {
		t.Errorf("got status %q, want %q", status, "at root: no siblings")
	}

	// Single child: wraps to itself, reported as having no siblings.
	if _, err := s.Advance(context.Background(), "only", protocol.RoleUser); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	s.MoveTo(s.Root().Children()[0])

	status, ok = n.Right()
	if ok {
		t.Error("single child should not move")
	}
	if status != "no siblings" {
		t.Errorf("got status %q, want %q", status, "no siblings")
	}
}

func TestRootNavigation(t *testing.T) {
	s := forkedSession(t)
	n := nav.New(s)
	n.Down()

	status, ok := n.Root()
	if !ok || s.Current() != s.Root() {
		t.Errorf("Root should always succeed, got %q", status)
	}
}

func TestForkNavigation(t *testing.T) {
	s := forkedSession(t)
	n := nav.New(s)

	// Move to a reply leaf, then jump back up to the fork.
	n.Down()
	n.Down()

	status, ok := n.PreviousFork()
	if !ok {
		t.Fatalf("PreviousFork failed: %s", status)
	}
	if s.Current() != s.Root() {
		t.Error("PreviousFork should land on the forking root")
	}

	status, ok = n.NextFork()
	if ok {
		t.Errorf("no fork below the root's children, got %q", status)
	}
	if status != "no fork below" {
		t.Errorf("got status %q, want %q", status, "no fork below")
	}
}

func TestPreviousFork_NoForkAbove(t *testing.T) {
	s := session.New(echoProvider{}, session.WithSystemPrompt("sys"))
	nvg := nav.New(s)
	if _, err := s.Advance(context.Background(), "turn", protocol.RoleUser); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	status, ok := nvg.PreviousFork()
	if ok {
		t.Error("linear history has no fork above")
	}
	if status != "no fork above" {
		t.Errorf("got status %q, want %q", status, "no fork above")
	}
}

func TestLeavesAndJump(t *testing.T) {
	s := forkedSession(t)
	n := nav.New(s)

	status, ok := n.ListLeaves()
	if !ok {
		t.Fatalf("ListLeaves failed: %s", status)
	}
	if !strings.Contains(status, "3 leaves") {
		t.Errorf("got %q, want a 3-leaf listing", status)
	}

	status, ok = n.JumpToLeaf(2)
	if !ok {
		t.Fatalf("JumpToLeaf failed: %s", status)
	}
	if s.Current().Content() != "re: b" {
		t.Errorf("got %q, want the second leaf", s.Current().Content())
	}

	if _, ok := n.JumpToLeaf(9); ok {
		t.Error("out-of-range jump should fail")
	}
}

func TestJumpToLeaf_RequiresListing(t *testing.T) {
	s := forkedSession(t)
	n := nav.New(s)

	status, ok := n.JumpToLeaf(1)
	if ok {
		t.Error("jump before listing should fail")
	}
	if !strings.Contains(status, "run leaves first") {
		t.Errorf("got status %q, want a run-leaves hint", status)
	}
}

func TestLabelAndGoto(t *testing.T) {
	s := forkedSession(t)
	n := nav.New(s)
	n.Down()

	if status, ok := n.Label("branch-a"); !ok {
		t.Fatalf("Label failed: %s", status)
	}

	n.Root()
	status, ok := n.Goto("branch-a")
	if !ok {
		t.Fatalf("Goto failed: %s", status)
	}
	if s.Current().Content() != "a" {
		t.Errorf("got %q, want the labeled node", s.Current().Content())
	}

	status, ok = n.Goto("missing")
	if ok {
		t.Error("unknown label should fail")
	}
	if !strings.Contains(status, "unknown label") {
		t.Errorf("got status %q, want an unknown-label status", status)
	}
}

func TestRender_ReadOnly(t *testing.T) {
	s := forkedSession(t)
	root := s.Root()
	before := tree.Count(root)

	out := nav.Render(root)
	if !strings.Contains(out, "sys") {
		t.Error("render should include the node content")
	}
	if !strings.Contains(out, "3 continuations") {
		t.Errorf("render should list children, got:\n%s", out)
	}
	if tree.Count(root) != before {
		t.Error("Render must not mutate the tree")
	}
}
