package session

import (
	"context"
	"time"

	"github.com/arborworks/arbor/observability"
	"github.com/arborworks/arbor/tree"
)

// Label attaches name to the cursor node and records it in the session's
// label map. When the name already exists the cursor navigates to the
// previously labeled node instead; the return value reports whether a new
// label was created.
func (s *Session) Label(ctx context.Context, name string) bool {
	if existing, ok := s.labels[name]; ok {
		s.current = existing
		return false
	}

	s.current.AddLabel(name)
	s.labels[name] = s.current

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventLabel,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "session.Label",
		Data:      map[string]any{"session_id": s.id, "label": name},
	})
	return true
}

// GotoLabel repositions the cursor at the node carrying name. Returns false
// when the label is unknown.
func (s *Session) GotoLabel(name string) bool {
	n, ok := s.labels[name]
	if !ok {
		return false
	}
	s.current = n
	return true
}

// ResolveLabel returns the node a label points at without moving the cursor.
func (s *Session) ResolveLabel(name string) (*tree.Node, bool) {
	n, ok := s.labels[name]
	return n, ok
}

// RestoreLabel re-binds a label name to a node without moving the cursor.
// Snapshot restoration uses this to rebuild the label map from node labels.
func (s *Session) RestoreLabel(name string, n *tree.Node) {
	if n == nil {
		return
	}
	s.labels[name] = n
}

// RefreshLeaves recomputes and caches the leaf list for the whole tree, in
// depth-first children order. The cache backs numbered leaf jumps in
// interactive navigation and is never consulted by parallel primitives.
func (s *Session) RefreshLeaves() []*tree.Node {
	s.leaves = tree.Leaves(s.root)
	return append([]*tree.Node(nil), s.leaves...)
}

// CachedLeaves returns the leaf list from the last RefreshLeaves call.
func (s *Session) CachedLeaves() []*tree.Node {
	return append([]*tree.Node(nil), s.leaves...)
}
