package orchestrate

import (
	"context"

	"github.com/arborworks/arbor/recombine"
	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

// TreeOfThought branches the prompts under the cursor, then recombines the
// branch outcomes with the given strategy. The cursor ends at the node the
// strategy chose. A generation failure during branching propagates without
// recombining.
func TreeOfThought(ctx context.Context, s *session.Session, prompts []string, strategy recombine.Strategy) (recombine.Outcome, error) {
	steps, err := Branch(ctx, s, prompts)
	if err != nil {
		return recombine.Outcome{}, err
	}

	texts := make([]string, len(steps))
	nodes := make([]*tree.Node, len(steps))
	for i, step := range steps {
		texts[i] = step.Text
		nodes[i] = step.Node
	}

	return recombine.Recombine(ctx, s, strategy, texts, nodes), nil
}
