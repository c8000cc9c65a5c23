// Package session binds a conversation tree to a provider: it owns the
// cursor ("current"), performs generation rounds, and provides the isolation
// boundary that parallel orchestration relies on.
//
// A Session is single-threaded. Parallel primitives never share one: each
// unit of work runs against a Fork — a session positioned at the same node
// whose new turns stay invisible to the shared tree until the coordinator
// calls Splice. Forks read the shared tree (parent links and populated nodes
// are immutable) but never append to shared children sequences.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/observability"
	"github.com/arborworks/arbor/provider"
	"github.com/arborworks/arbor/tree"
)

// Session holds the cursor into a conversation tree and the capability to
// perform one generation round via the provider.
type Session struct {
	id       string
	root     *tree.Node
	current  *tree.Node
	prov     provider.Provider
	observer observability.Observer

	// labels maps session-scoped label names to nodes. Names are unique;
	// labeling an existing name navigates instead of overwriting.
	labels map[string]*tree.Node

	// leaves is the cached leaf list used by interactive navigation.
	// Refreshed explicitly, never touched by parallel primitives.
	leaves []*tree.Node

	// mu serializes splices onto the shared tree. Forks of the same tree
	// share the pointer.
	mu *sync.Mutex

	// detached marks a fork: attaches under shared nodes stay off the
	// shared children sequence until Splice.
	detached bool
	private  map[*tree.Node]bool
	heads    []*tree.Node
}

// Option configures a Session created by New.
type Option func(*Session)

// WithObserver sets the observability sink. Defaults to NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithSystemPrompt starts the tree with a populated system root instead of
// an empty one.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		s.root = tree.NewRoot(protocol.RoleSystem, prompt, nil)
		s.current = s.root
	}
}

// WithRoot adopts an existing tree, positioning the cursor at cursor if it
// is non-nil and at root otherwise. Used when restoring snapshots.
func WithRoot(root, cursor *tree.Node) Option {
	return func(s *Session) {
		s.root = root
		if cursor != nil {
			s.current = cursor
		} else {
			s.current = root
		}
	}
}

// WithID overrides the generated session identifier. Used when restoring
// snapshots so a restored session keeps its persisted identity.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New creates a Session over a fresh tree. The default root is an empty node
// that the first Advance populates in place.
func New(prov provider.Provider, opts ...Option) *Session {
	s := &Session{
		id:       uuid.Must(uuid.NewV7()).String(),
		prov:     prov,
		observer: observability.NoOpObserver{},
		labels:   make(map[string]*tree.Node),
		mu:       &sync.Mutex{},
	}
	s.root = tree.NewEmptyRoot()
	s.current = s.root

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Observer returns the session's observability sink. Never nil.
func (s *Session) Observer() observability.Observer { return s.observer }

// Root returns the tree root.
func (s *Session) Root() *tree.Node { return s.root }

// Current returns the cursor position.
func (s *Session) Current() *tree.Node { return s.current }

// MoveTo repositions the cursor. The node must belong to this session's tree.
func (s *Session) MoveTo(n *tree.Node) {
	if n != nil {
		s.current = n
	}
}

// Advance appends prompt as a child of the cursor with the given role,
// triggers one generation round over the resulting path, appends the reply,
// and returns the new cursor position. Generation failures propagate to the
// caller; the prompt node remains attached and holds the cursor.
func (s *Session) Advance(ctx context.Context, prompt string, role protocol.Role) (*tree.Node, error) {
	if !role.Valid() {
		role = protocol.RoleUser
	}

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventAdvanceStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "session.Advance",
		Data: map[string]any{
			"session_id":    s.id,
			"role":          string(role),
			"prompt_length": len(prompt),
		},
	})

	promptNode := s.attach(s.current, role, prompt, nil)
	s.current = promptNode

	reply, err := s.prov.Generate(ctx, tree.Path(promptNode))
	if err != nil {
		s.observer.OnEvent(ctx, observability.Event{
			Type:      EventAdvanceError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "session.Advance",
			Data:      map[string]any{"session_id": s.id, "error": err.Error()},
		})
		return nil, err
	}

	replyNode := s.attach(promptNode, reply.Role, reply.Text, reply.Extras)
	s.current = replyNode

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventAdvanceComplete,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "session.Advance",
		Data: map[string]any{
			"session_id":      s.id,
			"response_length": len(reply.Text),
			"pending_tools":   s.prov.HasPendingToolCalls(),
		},
	})

	return replyNode, nil
}

// Query runs one generation round over the cursor's path plus an ephemeral
// user prompt, without attaching anything to the tree. Recombination
// strategies use Query for their judging and merging rounds.
func (s *Session) Query(ctx context.Context, prompt string) (provider.Reply, error) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventQuery,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "session.Query",
		Data:      map[string]any{"session_id": s.id, "prompt_length": len(prompt)},
	})

	path := append(tree.Path(s.current), protocol.NewMessage(protocol.RoleUser, prompt))
	return s.prov.Generate(ctx, path)
}

// Fork returns an isolated session positioned at the same cursor with a
// forked provider. The fork's new turns are held off the shared tree until
// the owning session splices them in.
func (s *Session) Fork() *Session {
	return &Session{
		id:       uuid.Must(uuid.NewV7()).String(),
		root:     s.root,
		current:  s.current,
		prov:     s.prov.Fork(),
		observer: s.observer,
		labels:   make(map[string]*tree.Node),
		mu:       s.mu,
		detached: true,
		private:  make(map[*tree.Node]bool),
	}
}

// Commit splices every detached subtree this fork created onto the shared
// tree, in creation order, then forgets them. The critical section is the
// only point where parallel results touch shared children sequences; the
// orchestration coordinator invokes Commit for each fork sequentially in
// input order.
func (s *Session) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, head := range s.heads {
		tree.Splice(head)
	}
	s.heads = nil
}

// Heads returns the detached subtree roots a fork has produced so far.
func (s *Session) Heads() []*tree.Node {
	return append([]*tree.Node(nil), s.heads...)
}

// HasPendingToolCalls reports whether the provider's last round left
// unsatisfied tool requests.
func (s *Session) HasPendingToolCalls() bool {
	return s.prov.HasPendingToolCalls()
}

// ClearPendingToolState drops the provider's per-round scratch state. Callers
// must do this between independent rounds.
func (s *Session) ClearPendingToolState() {
	s.prov.ClearPendingToolState()
}

// attach routes tree growth through the fork isolation rules: in a fork,
// children of shared nodes are created detached and recorded as heads;
// everything else attaches normally.
func (s *Session) attach(parent *tree.Node, role protocol.Role, content string, extras map[string]any) *tree.Node {
	if s.detached && !s.private[parent] {
		n := tree.AttachDetached(parent, role, content, extras)
		s.private[n] = true
		s.heads = append(s.heads, n)
		return n
	}

	n := tree.Attach(parent, role, content, extras)
	if s.detached {
		s.private[n] = true
	}
	return n
}
