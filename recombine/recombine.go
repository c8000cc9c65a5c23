// Package recombine collapses the outcomes of multiple branches into one.
//
// A Strategy is best-effort aggregation: it never returns an error. When a
// strategy needs an extra generation round (judging, voting, merging) and
// that round fails, it degrades to a safe fallback — the first candidate, or
// a concatenation — instead of propagating the failure.
//
// Every strategy pairs its chosen text with the FIRST candidate's node; a
// synthesized or judged text is not written back into the node the cursor
// ends up on. This mirrors long-standing behavior that callers may depend
// on; see DESIGN.md for the recorded decision.
package recombine

import (
	"context"
	"time"

	"github.com/arborworks/arbor/observability"
	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

// Outcome is a recombined result: the chosen text and the node the cursor
// should move to.
type Outcome struct {
	Text string
	Node *tree.Node
}

// Strategy collapses candidate branch outcomes into a single Outcome.
// texts and nodes are parallel slices; a zero slot (empty text, nil node)
// marks a branch whose generation failed. Strategies may run extra
// generation rounds through session.Query, which never touches the tree.
type Strategy func(ctx context.Context, s *session.Session, texts []string, nodes []*tree.Node) Outcome

// EventRecombine is emitted once per Recombine call.
const EventRecombine observability.EventType = "recombine.apply"

// Recombine applies the strategy and repositions the session cursor at the
// chosen node — its only side effect beyond computing the outcome.
func Recombine(ctx context.Context, s *session.Session, strategy Strategy, texts []string, nodes []*tree.Node) Outcome {
	out := strategy(ctx, s, texts, nodes)
	if out.Node != nil {
		s.MoveTo(out.Node)
	}

	s.Observer().OnEvent(ctx, observability.Event{
		Type:      EventRecombine,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "recombine.Recombine",
		Data: map[string]any{
			"candidates": len(texts),
			"chose_node": out.Node != nil,
		},
	})

	return out
}

// firstCandidate returns the fallback outcome: the first non-zero slot.
func firstCandidate(texts []string, nodes []*tree.Node) Outcome {
	for i := range nodes {
		if nodes[i] != nil {
			return Outcome{Text: texts[i], Node: nodes[i]}
		}
	}
	return Outcome{}
}

// anchorNode returns the node every strategy pairs its text with: the first
// candidate's.
func anchorNode(nodes []*tree.Node) *tree.Node {
	for _, n := range nodes {
		if n != nil {
			return n
		}
	}
	return nil
}
