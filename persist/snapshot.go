// Package persist converts conversation trees to and from a portable JSON
// form that preserves children order, roles, content, extras, labels, node
// identity, and the cursor position — enough to reconstruct an identical
// tree. Snapshots are stored through a pluggable Store with in-memory and
// filesystem backends.
package persist

import (
	"encoding/json"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/provider"
	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

// NodeRecord is the portable form of one tree node. Children nest in order.
type NodeRecord struct {
	ID       string         `json:"id"`
	Role     protocol.Role  `json:"role,omitempty"`
	Content  string         `json:"content,omitempty"`
	Extras   map[string]any `json:"extras,omitempty"`
	Labels   []string       `json:"labels,omitempty"`
	Empty    bool           `json:"empty,omitempty"`
	Children []NodeRecord   `json:"children,omitempty"`
}

// Snapshot is the portable form of a whole session tree.
type Snapshot struct {
	SessionID string     `json:"session_id"`
	CursorID  string     `json:"cursor_id"`
	Root      NodeRecord `json:"root"`
}

// Capture renders the session's tree and cursor into a Snapshot.
func Capture(s *session.Session) Snapshot {
	return Snapshot{
		SessionID: s.ID(),
		CursorID:  s.Current().ID(),
		Root:      captureNode(s.Root()),
	}
}

func captureNode(n *tree.Node) NodeRecord {
	rec := NodeRecord{
		ID:      n.ID(),
		Role:    n.Role(),
		Content: n.Content(),
		Extras:  n.Extras(),
		Labels:  n.Labels(),
		Empty:   !n.Populated(),
	}
	for _, child := range n.Children() {
		rec.Children = append(rec.Children, captureNode(child))
	}
	return rec
}

// Restore rebuilds a session from a Snapshot, rebinding it to the given
// provider. The cursor returns to the persisted node; labels are restored
// into the session's label map.
func Restore(snap Snapshot, prov provider.Provider, opts ...session.Option) (*session.Session, error) {
	root := restoreNode(nil, snap.Root)

	var cursor *tree.Node
	walk(root, func(n *tree.Node) {
		if n.ID() == snap.CursorID {
			cursor = n
		}
	})
	if cursor == nil {
		return nil, ErrCursorNotFound
	}

	opts = append([]session.Option{
		session.WithID(snap.SessionID),
		session.WithRoot(root, cursor),
	}, opts...)
	s := session.New(prov, opts...)

	walk(root, func(n *tree.Node) {
		for _, name := range n.Labels() {
			s.RestoreLabel(name, n)
		}
	})

	return s, nil
}

func restoreNode(parent *tree.Node, rec NodeRecord) *tree.Node {
	n := tree.RestoreNode(parent, rec.ID, rec.Role, rec.Content,
		normalizeExtras(rec.Extras), rec.Labels, !rec.Empty)
	for _, child := range rec.Children {
		restoreNode(n, child)
	}
	return n
}

func walk(n *tree.Node, fn func(*tree.Node)) {
	fn(n)
	for _, child := range n.Children() {
		walk(child, fn)
	}
}

// normalizeExtras re-types values that lose their Go type through a JSON
// round trip. Tool-call records come back as []any of maps; they are decoded
// into []protocol.ToolCall so tree.Path sees the canonical type.
func normalizeExtras(extras map[string]any) map[string]any {
	raw, ok := extras[tree.ExtrasToolCalls]
	if !ok {
		return extras
	}
	if _, already := raw.([]protocol.ToolCall); already {
		return extras
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return extras
	}
	var calls []protocol.ToolCall
	if err := json.Unmarshal(data, &calls); err != nil {
		return extras
	}
	extras[tree.ExtrasToolCalls] = calls
	return extras
}
